package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"book-inventory-backend/inventory/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrMissingTenant = errors.New("no active tenant for this session")

// CandidateInput is one pre-parsed JSON row. Keys are dictionary headers or
// canonical field keys; nested objects such as {"price": {"sale": 10}} are
// flattened to dotted keys.
type CandidateInput []RawField

func (in *CandidateInput) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("each row must be a JSON object: %w", err)
	}

	var fields []RawField
	if err := flattenInput("", obj, &fields); err != nil {
		return err
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	*in = fields
	return nil
}

func flattenInput(prefix string, obj map[string]json.RawMessage, out *[]RawField) error {
	for key, raw := range obj {
		if prefix != "" {
			key = prefix + "." + key
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(trimmed, &nested); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			if err := flattenInput(key, nested, out); err != nil {
				return err
			}
			continue
		}
		var cell Cell
		if err := json.Unmarshal(trimmed, &cell); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		*out = append(*out, RawField{Key: key, Cell: cell})
	}
	return nil
}

// ImportRequest is the JSON entry mode body; "books" is accepted as an alias.
type ImportRequest struct {
	Rows  []CandidateInput `json:"rows"`
	Books []CandidateInput `json:"books"`
}

func (r ImportRequest) Candidates() []CandidateInput {
	if len(r.Rows) > 0 {
		return r.Rows
	}
	return r.Books
}

// ImportService runs the import pipeline: build, validate, reconcile, aggregate.
type ImportService struct {
	reconciler *Reconciler
	logger     *zap.Logger
}

func NewImportService(repo repositories.InventoryRepository, indexer ItemIndexer, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		reconciler: NewReconciler(repo, indexer, logger),
		logger:     logger,
	}
}

// ImportWorkbook imports an uploaded xlsx or csv file. Errors returned here are
// fatal; row problems are inside the report.
func (s *ImportService) ImportWorkbook(ctx context.Context, id Identity, r io.Reader, filename string) (*BatchReport, error) {
	if id.TenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}

	sheet, err := ReadWorkbook(r, filename)
	if err != nil {
		s.logger.Warn("Rejected import file",
			zap.String("tenant_id", id.TenantID.String()),
			zap.String("filename", filename),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Importing workbook",
		zap.String("tenant_id", id.TenantID.String()),
		zap.String("sheet", sheet.Name),
		zap.Int("rows", len(sheet.Rows)),
	)
	return s.processRows(ctx, id, sheet.Rows)
}

// ImportCandidates imports client-parsed rows. Row numbers are 1-based positions
// in the submitted list.
func (s *ImportService) ImportCandidates(ctx context.Context, id Identity, candidates []CandidateInput) (*BatchReport, error) {
	if id.TenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}
	if len(candidates) == 0 {
		return nil, ErrNoDataRows
	}

	rows := make([]ImportRow, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, ImportRow{Number: i + 1, Fields: []RawField(c)})
	}

	s.logger.Info("Importing JSON rows",
		zap.String("tenant_id", id.TenantID.String()),
		zap.Int("rows", len(rows)),
	)
	return s.processRows(ctx, id, rows)
}

// processRows handles rows strictly in order so errors keep source order.
func (s *ImportService) processRows(ctx context.Context, id Identity, rows []ImportRow) (*BatchReport, error) {
	report := newBatchReport()

	for _, row := range rows {
		rec := BuildRecord(row)
		if rec == nil {
			continue
		}

		if rowErrs := ValidateRecord(rec); len(rowErrs) > 0 {
			report.recordFailed(rowErrs...)
			continue
		}

		if _, rowErr := s.reconciler.Reconcile(ctx, id, rec); rowErr != nil {
			report.recordFailed(*rowErr)
			continue
		}
		report.recordWritten()
	}

	if report.TotalRows == 0 {
		return nil, ErrNoDataRows
	}

	s.logger.Info("Import finished",
		zap.String("tenant_id", id.TenantID.String()),
		zap.String("outcome", string(report.Outcome())),
		zap.Int("inserted", report.InsertedCount),
		zap.Int("failed", report.ErrorCount),
	)
	return report, nil
}

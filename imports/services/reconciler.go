package services

import (
	"context"
	"errors"
	"fmt"

	"book-inventory-backend/db/models"
	"book-inventory-backend/inventory/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity is the resolved caller: the active tenant and the acting user.
type Identity struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

// ItemIndexer receives every item written by an import.
type ItemIndexer interface {
	IndexItem(item *models.InventoryItem) error
}

// Reconciler writes accepted records with an upsert keyed on (tenant, sku).
type Reconciler struct {
	repo    repositories.InventoryRepository
	indexer ItemIndexer
	logger  *zap.Logger
}

func NewReconciler(repo repositories.InventoryRepository, indexer ItemIndexer, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{repo: repo, indexer: indexer, logger: logger}
}

// Reconcile writes one record. A failure is returned as a RowError and never
// aborts the caller's batch.
func (r *Reconciler) Reconcile(ctx context.Context, id Identity, rec *CandidateRecord) (*models.InventoryItem, *RowError) {
	item := rec.Item
	item.TenantID = id.TenantID
	if id.UserID != uuid.Nil {
		userID := id.UserID
		item.AddedBy = &userID
	}

	stored, err := r.repo.UpsertBySKU(ctx, &item, rec.Columns)
	if err != nil {
		r.logger.Warn("Import row write failed",
			zap.Int("row", rec.Row),
			zap.String("tenant_id", id.TenantID.String()),
			zap.String("sku", item.SKU),
			zap.Error(err),
		)
		return nil, &RowError{
			Line:    rec.Row,
			SKU:     item.SKU,
			Title:   item.Title,
			Message: writeFailureMessage(item.SKU, err),
		}
	}

	if r.indexer != nil {
		if err := r.indexer.IndexItem(stored); err != nil {
			r.logger.Error("Failed to index imported item",
				zap.String("id", stored.ID.String()),
				zap.Error(err),
			)
		}
	}
	return stored, nil
}

func writeFailureMessage(sku string, err error) string {
	switch {
	case errors.Is(err, repositories.ErrDuplicateSKU):
		return fmt.Sprintf("SKU '%s' already exists for this store", sku)
	case errors.Is(err, repositories.ErrValidation):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "the import was interrupted before this row was saved"
	default:
		return fmt.Sprintf("failed to save item: %v", err)
	}
}

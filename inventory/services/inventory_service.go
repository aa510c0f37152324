package services

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"book-inventory-backend/db/models"
	"book-inventory-backend/inventory/repositories"
	"book-inventory-backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InputError carries every problem found in a create or update body.
type InputError struct {
	Problems []string
}

func (e *InputError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

// ItemIndex is the search index the service keeps in step with the store.
type ItemIndex interface {
	IndexItem(item *models.InventoryItem) error
	DeleteItem(id string) error
}

// CacheResource is the cache key prefix of a tenant's list pages.
func CacheResource(tenantID uuid.UUID) string {
	return "inventory:" + tenantID.String()
}

type ListResult struct {
	Items []models.InventoryItem `json:"items"`
	Total int64                  `json:"total"`
}

type InventoryService struct {
	repo     repositories.InventoryRepository
	index    ItemIndex
	cache    *utils.ResponseCache
	validate *validator.Validate
	logger   *zap.Logger
}

// NewInventoryService accepts a nil index and cache.
func NewInventoryService(repo repositories.InventoryRepository, index ItemIndex, cache *utils.ResponseCache, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	// Report json names, nested as price.sale / stock.own
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &InventoryService{repo: repo, index: index, cache: cache, validate: v, logger: logger}
}

func (s *InventoryService) check(in *ItemInput) error {
	var problems []string
	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describeFieldError(fe))
		}
	}
	problems = append(problems, in.priceProblems()...)
	if len(problems) > 0 {
		return &InputError{Problems: problems}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "ItemInput.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "url":
		return field + " must be a valid URL"
	case "gte", "gt", "lte", "max":
		return field + " must be " + fe.Tag() + " " + fe.Param()
	default:
		return field + " is invalid"
	}
}

func (s *InventoryService) afterWrite(item *models.InventoryItem) {
	if s.index != nil {
		if err := s.index.IndexItem(item); err != nil {
			s.logger.Error("Error indexing inventory item", zap.String("item_id", item.ID.String()), zap.Error(err))
		}
	}
	s.InvalidateTenant(item.TenantID)
}

// InvalidateTenant drops the cached list pages of a tenant.
func (s *InventoryService) InvalidateTenant(tenantID uuid.UUID) {
	s.cache.InvalidateCacheAsync(CacheResource(tenantID))
}

func (s *InventoryService) Create(ctx context.Context, tenantID, userID uuid.UUID, in *ItemInput) (*models.InventoryItem, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{TenantID: tenantID}
	in.applyTo(item, userID)

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Inventory item created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sku", created.SKU))
	s.afterWrite(created)
	return created, nil
}

func (s *InventoryService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// Update replaces the mutable fields of an existing item.
func (s *InventoryService) Update(ctx context.Context, tenantID, userID, id uuid.UUID, in *ItemInput) (*models.InventoryItem, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(item, userID)

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	s.afterWrite(updated)
	return updated, nil
}

func (s *InventoryService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteItem(id.String()); err != nil {
			s.logger.Error("Error removing inventory item from index", zap.String("item_id", id.String()), zap.Error(err))
		}
	}
	s.InvalidateTenant(tenantID)
	return nil
}

// List serves a page of the tenant's items, from the cache when possible.
func (s *InventoryService) List(ctx context.Context, tenantID uuid.UUID, params repositories.ListParams) (*ListResult, error) {
	key := utils.GenerateKey(CacheResource(tenantID), map[string]string{
		"search": params.Search,
		"status": params.Status,
	}, params.Page, params.PageSize)

	var cached ListResult
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.repo.List(ctx, tenantID, params)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.InventoryItem{}
	}

	result := &ListResult{Items: items, Total: total}
	s.cache.SetJSON(ctx, key, result)
	return result, nil
}

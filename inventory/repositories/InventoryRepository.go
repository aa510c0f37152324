package repositories

import (
	"context"

	"book-inventory-backend/db/models"

	"github.com/google/uuid"
)

// ListParams filters and pages a tenant's inventory.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

func (p ListParams) offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// InventoryRepository is the tenant-scoped inventory store. Every method that
// takes a tenant ID only ever sees that tenant's items.
type InventoryRepository interface {
	// EnsureSchema creates tables, indexes and validators.
	EnsureSchema(ctx context.Context) error
	// UpsertBySKU writes item keyed on (item.TenantID, item.SKU). When the pair
	// exists only columns are overwritten; otherwise item is inserted with
	// defaults. The stored item is returned.
	UpsertBySKU(ctx context.Context, item *models.InventoryItem, columns []string) (*models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error)
	GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]models.InventoryItem, int64, error)
	// FindAll walks every tenant; used to rebuild the search index.
	FindAll(ctx context.Context) ([]models.InventoryItem, error)
}

package repositories

import (
	"context"
	"strings"

	"book-inventory-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository stores inventory in PostgreSQL.
func NewGormInventoryRepository(db *gorm.DB) InventoryRepository {
	return &gormInventoryRepository{
		db: db,
	}
}

func (r *gormInventoryRepository) EnsureSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.InventoryItem{})
}

// UpsertBySKU relies on the unique (tenant_id, sku) index: INSERT ... ON CONFLICT
// DO UPDATE of the provided columns, RETURNING the stored row.
func (r *gormInventoryRepository) UpsertBySKU(ctx context.Context, item *models.InventoryItem, columns []string) (*models.InventoryItem, error) {
	item.ApplyDefaults()
	if err := r.upsert(ctx, item, columns).Error; err != nil {
		return nil, classifyGormError(err)
	}
	return item, nil
}

// upsert runs the statement; on a DryRun session it only builds it.
func (r *gormInventoryRepository) upsert(ctx context.Context, item *models.InventoryItem, columns []string) *gorm.DB {
	updates := make([]string, 0, len(columns)+2)
	updates = append(updates, columns...)
	updates = append(updates, models.ColumnAddedBy, models.ColumnUpdatedAt)

	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "sku"}},
				DoUpdates: clause.AssignmentColumns(updates),
			},
			clause.Returning{},
		).
		Create(item)
}

func (r *gormInventoryRepository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	item.ApplyDefaults()
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, classifyGormError(err)
	}
	return item, nil
}

func (r *gormInventoryRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error
	if err != nil {
		return nil, classifyGormError(err)
	}
	return &item, nil
}

func (r *gormInventoryRepository) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&item).Error
	if err != nil {
		return nil, classifyGormError(err)
	}
	return &item, nil
}

// Update overwrites every mutable column of an existing item.
func (r *gormInventoryRepository) Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	result := r.db.WithContext(ctx).
		Model(item).
		Where("tenant_id = ?", item.TenantID).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(item)
	if result.Error != nil {
		return nil, classifyGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return item, nil
}

func (r *gormInventoryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.InventoryItem{})
	if result.Error != nil {
		return classifyGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormInventoryRepository) List(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]models.InventoryItem, int64, error) {
	var items []models.InventoryItem
	var total int64

	db := r.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("tenant_id = ?", tenantID)

	if search := strings.TrimSpace(params.Search); search != "" {
		like := "%" + search + "%"
		db = db.Where("title ILIKE ? OR sku ILIKE ? OR isbn ILIKE ? OR authors::text ILIKE ?", like, like, like, like)
	}
	if params.Status != "" {
		db = db.Where("status = ?", params.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, classifyGormError(err)
	}

	err := db.Order("created_at DESC").
		Limit(params.PageSize).
		Offset(params.offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, classifyGormError(err)
	}

	return items, total, nil
}

func (r *gormInventoryRepository) FindAll(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, classifyGormError(err)
	}
	return items, nil
}

package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"book-inventory-backend/db/models"

	"github.com/google/uuid"
)

// memoryInventoryRepository keeps items in process memory. It backs
// STORE_DRIVER=memory for local runs and the HTTP tests.
type memoryInventoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.InventoryItem
}

func NewMemoryInventoryRepository() InventoryRepository {
	return &memoryInventoryRepository{items: make(map[uuid.UUID]*models.InventoryItem)}
}

func (r *memoryInventoryRepository) EnsureSchema(ctx context.Context) error { return nil }

func (r *memoryInventoryRepository) findSKU(tenantID uuid.UUID, sku string) *models.InventoryItem {
	for _, it := range r.items {
		if it.TenantID == tenantID && it.SKU == sku {
			return it
		}
	}
	return nil
}

// copyColumns overwrites the named columns of dst with the values from src.
func copyColumns(dst, src *models.InventoryItem, columns []string) {
	for _, column := range columns {
		switch column {
		case models.ColumnTitle:
			dst.Title = src.Title
		case models.ColumnAuthors:
			dst.Authors = src.Authors
		case models.ColumnPublisher:
			dst.Publisher = src.Publisher
		case models.ColumnYear:
			dst.Year = src.Year
		case models.ColumnISBN:
			dst.ISBN = src.ISBN
		case models.ColumnPageCount:
			dst.PageCount = src.PageCount
		case models.ColumnSubjects:
			dst.Subjects = src.Subjects
		case models.ColumnDescription:
			dst.Description = src.Description
		case models.ColumnCoverImageURL:
			dst.CoverImageURL = src.CoverImageURL
		case models.ColumnCondition:
			dst.Condition = src.Condition
		case models.ColumnBinding:
			dst.Binding = src.Binding
		case models.ColumnLanguage:
			dst.Language = src.Language
		case models.ColumnPriceSale:
			dst.PriceSale = src.PriceSale
		case models.ColumnPriceCost:
			dst.PriceCost = src.PriceCost
		case models.ColumnDiscountType:
			dst.DiscountType = src.DiscountType
		case models.ColumnDiscountValue:
			dst.DiscountValue = src.DiscountValue
		case models.ColumnStockOwn:
			dst.StockOwn = src.StockOwn
		case models.ColumnStockConsigned:
			dst.StockConsigned = src.StockConsigned
		case models.ColumnWeightGrams:
			dst.WeightGrams = src.WeightGrams
		case models.ColumnStatus:
			dst.Status = src.Status
		case models.ColumnLabel:
			dst.Label = src.Label
		}
	}
}

func validated(item *models.InventoryItem) error {
	if err := item.Validate(); err != nil {
		return classifyGormError(err)
	}
	return nil
}

func (r *memoryInventoryRepository) UpsertBySKU(ctx context.Context, item *models.InventoryItem, columns []string) (*models.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing := r.findSKU(item.TenantID, item.SKU); existing != nil {
		next := *existing
		copyColumns(&next, item, columns)
		next.AddedBy = item.AddedBy
		next.UpdatedAt = now
		if err := validated(&next); err != nil {
			return nil, err
		}
		*existing = next
		stored := next
		return &stored, nil
	}

	item.ApplyDefaults()
	if err := validated(item); err != nil {
		return nil, err
	}
	item.CreatedAt, item.UpdatedAt = now, now
	stored := *item
	r.items[stored.ID] = &stored
	return item, nil
}

func (r *memoryInventoryRepository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findSKU(item.TenantID, item.SKU) != nil {
		return nil, ErrDuplicateSKU
	}
	item.ApplyDefaults()
	if err := validated(item); err != nil {
		return nil, err
	}
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now
	stored := *item
	r.items[stored.ID] = &stored
	return item, nil
}

func (r *memoryInventoryRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok || it.TenantID != tenantID {
		return nil, ErrNotFound
	}
	c := *it
	return &c, nil
}

func (r *memoryInventoryRepository) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it := r.findSKU(tenantID, sku)
	if it == nil {
		return nil, ErrNotFound
	}
	c := *it
	return &c, nil
}

func (r *memoryInventoryRepository) Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok || existing.TenantID != item.TenantID {
		return nil, ErrNotFound
	}
	if other := r.findSKU(item.TenantID, item.SKU); other != nil && other.ID != item.ID {
		return nil, ErrDuplicateSKU
	}
	if err := validated(item); err != nil {
		return nil, err
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	stored := *item
	r.items[item.ID] = &stored
	return item, nil
}

func (r *memoryInventoryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok || it.TenantID != tenantID {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func matchesSearch(it *models.InventoryItem, search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	fields := []string{it.Title, it.SKU, strings.Join(it.Authors, " ")}
	if it.ISBN != nil {
		fields = append(fields, *it.ISBN)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func (r *memoryInventoryRepository) List(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]models.InventoryItem, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.TrimSpace(params.Search)
	var matched []models.InventoryItem
	for _, it := range r.items {
		if it.TenantID != tenantID || !matchesSearch(it, search) {
			continue
		}
		if params.Status != "" && string(it.Status) != params.Status {
			continue
		}
		matched = append(matched, *it)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := params.offset()
	if start >= len(matched) {
		return []models.InventoryItem{}, total, nil
	}
	end := len(matched)
	if params.PageSize > 0 && start+params.PageSize < end {
		end = start + params.PageSize
	}
	return matched[start:end], total, nil
}

func (r *memoryInventoryRepository) FindAll(ctx context.Context) ([]models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.InventoryItem, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, *it)
	}
	return out, nil
}

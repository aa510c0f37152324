package services_test

import (
	"context"
	"sync"

	"book-inventory-backend/db/models"
	"book-inventory-backend/inventory/repositories"

	"github.com/google/uuid"
)

// memoryRepo is an in-memory InventoryRepository keyed on (tenant, sku).
type memoryRepo struct {
	mu      sync.Mutex
	items   map[string]*models.InventoryItem
	failSKU map[string]error
	writes  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		items:   make(map[string]*models.InventoryItem),
		failSKU: make(map[string]error),
	}
}

func key(tenantID uuid.UUID, sku string) string {
	return tenantID.String() + "|" + sku
}

func (m *memoryRepo) EnsureSchema(ctx context.Context) error { return nil }

func (m *memoryRepo) UpsertBySKU(ctx context.Context, item *models.InventoryItem, columns []string) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	if err, ok := m.failSKU[item.SKU]; ok {
		return nil, err
	}
	item.ApplyDefaults()
	if err := item.Validate(); err != nil {
		return nil, repositories.ErrValidation
	}

	k := key(item.TenantID, item.SKU)
	if existing, ok := m.items[k]; ok {
		item.ID = existing.ID
	}
	stored := *item
	m.items[k] = &stored
	return &stored, nil
}

func (m *memoryRepo) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(item.TenantID, item.SKU)
	if _, ok := m.items[k]; ok {
		return nil, repositories.ErrDuplicateSKU
	}
	item.ApplyDefaults()
	stored := *item
	m.items[k] = &stored
	return &stored, nil
}

func (m *memoryRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID == id && it.TenantID == tenantID {
			c := *it
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memoryRepo) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[key(tenantID, sku)]; ok {
		c := *it
		return &c, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memoryRepo) Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(item.TenantID, item.SKU)
	if _, ok := m.items[k]; !ok {
		return nil, repositories.ErrNotFound
	}
	stored := *item
	m.items[k] = &stored
	return &stored, nil
}

func (m *memoryRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, it := range m.items {
		if it.ID == id && it.TenantID == tenantID {
			delete(m.items, k)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *memoryRepo) List(ctx context.Context, tenantID uuid.UUID, params repositories.ListParams) ([]models.InventoryItem, int64, error) {
	items, _ := m.FindAll(ctx)
	var out []models.InventoryItem
	for _, it := range items {
		if it.TenantID == tenantID {
			out = append(out, it)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryRepo) FindAll(ctx context.Context) ([]models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.InventoryItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it)
	}
	return out, nil
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type recordingIndexer struct {
	indexed []string
	err     error
}

func (r *recordingIndexer) IndexItem(item *models.InventoryItem) error {
	r.indexed = append(r.indexed, item.SKU)
	return r.err
}

package repositories

import (
	"context"
	"testing"

	"book-inventory-backend/db/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryItem(tenantID uuid.UUID, sku string) *models.InventoryItem {
	return &models.InventoryItem{
		TenantID:  tenantID,
		SKU:       sku,
		Title:     "Dom Casmurro",
		Condition: models.UsedCondition,
		PriceSale: decimal.NewFromInt(10),
	}
}

func TestMemoryUpsertOverwritesOnlyProvidedColumns(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()
	tenantID := uuid.New()

	first := memoryItem(tenantID, "A1")
	first.StockOwn = 4
	created, err := repo.Create(ctx, first)
	require.NoError(t, err)

	next := memoryItem(tenantID, "A1")
	next.Title = "Dom Casmurro (2ª ed.)"
	next.PriceSale = decimal.NewFromInt(20)
	stored, err := repo.UpsertBySKU(ctx, next, []string{models.ColumnTitle, models.ColumnPriceSale})
	require.NoError(t, err)

	assert.Equal(t, created.ID, stored.ID)
	assert.Equal(t, "Dom Casmurro (2ª ed.)", stored.Title)
	assert.Equal(t, 4, stored.StockOwn, "stock was not provided and keeps its value")
}

func TestMemoryUpsertValidatesAtWriteTime(t *testing.T) {
	repo := NewMemoryInventoryRepository()
	item := memoryItem(uuid.New(), "B1")
	item.PriceSale = decimal.Zero

	_, err := repo.UpsertBySKU(context.Background(), item, []string{models.ColumnPriceSale})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMemoryCreateAndUpdateRejectDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()
	tenantID := uuid.New()

	_, err := repo.Create(ctx, memoryItem(tenantID, "A1"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, memoryItem(tenantID, "A1"))
	assert.ErrorIs(t, err, ErrDuplicateSKU)

	_, err = repo.Create(ctx, memoryItem(uuid.New(), "A1"))
	assert.NoError(t, err, "another tenant may reuse the sku")

	b, err := repo.Create(ctx, memoryItem(tenantID, "B1"))
	require.NoError(t, err)
	b.SKU = "A1"
	_, err = repo.Update(ctx, b)
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestMemoryListIsTenantScopedAndPaged(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()
	tenantID := uuid.New()

	for _, sku := range []string{"A", "B", "C"} {
		_, err := repo.Create(ctx, memoryItem(tenantID, sku))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, memoryItem(uuid.New(), "D"))
	require.NoError(t, err)

	items, total, err := repo.List(ctx, tenantID, ListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 1)

	items, total, err = repo.List(ctx, tenantID, ListParams{Page: 1, PageSize: 10, Search: "b"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "B", items[0].SKU)
}

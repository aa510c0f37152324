package repositories

import (
	"testing"

	indexing "book-inventory-backend/bleve/services"
	"book-inventory-backend/db/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newMemRepo(t *testing.T) *BleveRepository {
	t.Helper()
	svc := indexing.NewIndexingService(nil, "")
	t.Cleanup(func() { svc.Close() })
	return NewBleveRepository(svc, nil)
}

func book(tenantID uuid.UUID, sku, title, author string) models.InventoryItem {
	isbn := "978-85-359-0277-8"
	return models.InventoryItem{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SKU:       sku,
		Title:     title,
		Authors:   datatypes.JSONSlice[string]{author},
		ISBN:      &isbn,
		Condition: models.UsedCondition,
		Status:    models.AvailableStatus,
		PriceSale: decimal.NewFromInt(10),
	}
}

func hitIDs(t *testing.T, repo *BleveRepository, params SearchParams) []string {
	t.Helper()
	result, err := repo.SearchInventory(params)
	require.NoError(t, err)
	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids
}

func TestSearchInventoryIsTenantScoped(t *testing.T) {
	repo := newMemRepo(t)
	tenantA, tenantB := uuid.New(), uuid.New()

	a := book(tenantA, "ABC123", "Dom Casmurro", "Machado de Assis")
	b := book(tenantB, "XYZ", "Dom Casmurro", "Machado de Assis")
	require.NoError(t, repo.IndexExistingItems([]models.InventoryItem{a, b}))

	ids := hitIDs(t, repo, SearchParams{TenantID: tenantA.String(), Query: "casmurro"})
	assert.Equal(t, []string{a.ID.String()}, ids)
}

func TestSearchInventoryMatchesIdentifiersAndFilters(t *testing.T) {
	repo := newMemRepo(t)
	tenantID := uuid.New()

	a := book(tenantID, "ABC123", "Dom Casmurro", "Machado de Assis")
	b := book(tenantID, "IRA-1", "Iracema", "José de Alencar")
	b.Status = models.SoldStatus
	require.NoError(t, repo.IndexItem(&a))
	require.NoError(t, repo.IndexItem(&b))

	assert.Equal(t, []string{a.ID.String()}, hitIDs(t, repo, SearchParams{TenantID: tenantID.String(), Query: "ABC123"}))
	assert.Equal(t, []string{b.ID.String()}, hitIDs(t, repo, SearchParams{TenantID: tenantID.String(), Query: "alencar"}))
	assert.Len(t, hitIDs(t, repo, SearchParams{TenantID: tenantID.String()}), 2, "empty query lists the tenant")
	assert.Equal(t, []string{b.ID.String()}, hitIDs(t, repo, SearchParams{TenantID: tenantID.String(), Status: "sold"}))

	require.NoError(t, repo.DeleteItem(b.ID.String()))
	assert.Equal(t, []string{a.ID.String()}, hitIDs(t, repo, SearchParams{TenantID: tenantID.String()}))
}

func TestSearchInventoryRequiresTenant(t *testing.T) {
	_, err := newMemRepo(t).SearchInventory(SearchParams{Query: "x"})
	assert.Error(t, err)
}

func TestGetItemDocument(t *testing.T) {
	repo := newMemRepo(t)
	tenantID := uuid.New()
	item := book(tenantID, "ABC123", "Dom Casmurro", "Machado de Assis")
	require.NoError(t, repo.IndexItem(&item))

	fields, err := repo.GetItemDocument(tenantID.String(), item.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ABC123", fields["sku"])
	assert.Equal(t, "9788535902778", fields["isbn"])

	_, err = repo.GetItemDocument(uuid.NewString(), item.ID.String())
	assert.ErrorIs(t, err, indexing.ErrDocumentNotFound, "other tenants cannot read the item")

	require.NoError(t, repo.ResetIndex())
	_, err = repo.GetItemDocument(tenantID.String(), item.ID.String())
	assert.ErrorIs(t, err, indexing.ErrDocumentNotFound)
}

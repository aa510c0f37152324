package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"book-inventory-backend/db/models"
	"book-inventory-backend/inventory/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validBody = `{
	"sku": "ABC123",
	"title": "Dom Casmurro",
	"authors": "Machado de Assis; Outro Autor",
	"subjects": ["Romance", " ", "Clássico"],
	"condition": "used",
	"price": {"sale": "17.95", "cost": 5},
	"stock": {"own": 2}
}`

func decodeInput(t *testing.T, body string) *ItemInput {
	t.Helper()
	var in ItemInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return &in
}

func TestCreateSplitsListsAndIndexes(t *testing.T) {
	repo := new(MockInventoryRepository)
	index := new(MockItemIndex)
	svc := NewInventoryService(repo, index, nil, nil)
	tenantID, userID := uuid.New(), uuid.New()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.InventoryItem")).
		Return(func(_ context.Context, item *models.InventoryItem) *models.InventoryItem { return item }, nil).Once()
	index.On("IndexItem", mock.AnythingOfType("*models.InventoryItem")).Return(nil).Once()

	item, err := svc.Create(context.Background(), tenantID, userID, decodeInput(t, validBody))
	require.NoError(t, err)

	assert.Equal(t, tenantID, item.TenantID)
	assert.Equal(t, userID, *item.AddedBy)
	assert.Equal(t, []string{"Machado de Assis", "Outro Autor"}, []string(item.Authors))
	assert.Equal(t, []string{"Romance", "Clássico"}, []string(item.Subjects))
	assert.True(t, decimal.RequireFromString("17.95").Equal(item.PriceSale))
	assert.Equal(t, models.AvailableStatus, item.Status)
	assert.Equal(t, models.OtherBinding, item.Binding)
	assert.Equal(t, 2, item.StockOwn)
	repo.AssertExpectations(t)
	index.AssertExpectations(t)
}

func TestCreateReportsEveryInputProblem(t *testing.T) {
	repo := new(MockInventoryRepository)
	svc := NewInventoryService(repo, nil, nil, nil)

	in := decodeInput(t, `{"title": "x", "condition": "mint", "price": {"sale": 0}, "stock": {"own": -1}}`)
	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), in)

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, inputErr.Problems, "sku is required")
	assert.Contains(t, inputErr.Problems, "condition must be one of: new used")
	assert.Contains(t, inputErr.Problems, "stock.own must be gte 0")
	assert.Contains(t, inputErr.Problems, "price.sale must be greater than zero")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePropagatesDuplicateSKU(t *testing.T) {
	repo := new(MockInventoryRepository)
	svc := NewInventoryService(repo, nil, nil, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, repositories.ErrDuplicateSKU).Once()

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), decodeInput(t, validBody))
	assert.ErrorIs(t, err, repositories.ErrDuplicateSKU)
}

func TestUpdateKeepsIdentity(t *testing.T) {
	repo := new(MockInventoryRepository)
	svc := NewInventoryService(repo, nil, nil, nil)
	tenantID, id := uuid.New(), uuid.New()

	existing := &models.InventoryItem{ID: id, TenantID: tenantID, SKU: "OLD", Status: models.SoldStatus}
	repo.On("GetByID", mock.Anything, tenantID, id).Return(existing, nil).Once()
	repo.On("Update", mock.Anything, existing).Return(existing, nil).Once()

	updated, err := svc.Update(context.Background(), tenantID, uuid.New(), id, decodeInput(t, validBody))
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "ABC123", updated.SKU)
	assert.Equal(t, models.SoldStatus, updated.Status, "status is kept when the body omits it")
	repo.AssertExpectations(t)
}

func TestUpdateMissingItem(t *testing.T) {
	repo := new(MockInventoryRepository)
	svc := NewInventoryService(repo, nil, nil, nil)
	repo.On("GetByID", mock.Anything, mock.Anything, mock.Anything).Return(nil, repositories.ErrNotFound).Once()

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), uuid.New(), decodeInput(t, validBody))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteRemovesFromIndexEvenWhenIndexFails(t *testing.T) {
	repo := new(MockInventoryRepository)
	index := new(MockItemIndex)
	svc := NewInventoryService(repo, index, nil, nil)
	tenantID, id := uuid.New(), uuid.New()

	repo.On("Delete", mock.Anything, tenantID, id).Return(nil).Once()
	index.On("DeleteItem", id.String()).Return(errors.New("index closed")).Once()

	require.NoError(t, svc.Delete(context.Background(), tenantID, id))
	index.AssertExpectations(t)
}

func TestListNeverReturnsNilItems(t *testing.T) {
	repo := new(MockInventoryRepository)
	svc := NewInventoryService(repo, nil, nil, nil)
	tenantID := uuid.New()
	params := repositories.ListParams{Page: 1, PageSize: 10}

	repo.On("List", mock.Anything, tenantID, params).Return([]models.InventoryItem(nil), int64(0), nil).Once()

	result, err := svc.List(context.Background(), tenantID, params)
	require.NoError(t, err)
	assert.NotNil(t, result.Items)
	assert.Zero(t, result.Total)
}

func TestFlexibleListRejectsObjects(t *testing.T) {
	var l FlexibleList
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &l))
}

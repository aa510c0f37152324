package repositories

import (
	"testing"
	"time"

	"book-inventory-backend/db/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/datatypes"
)

func sampleItem() *models.InventoryItem {
	publisher := "Companhia das Letras"
	cost := decimal.RequireFromString("5.50")
	addedBy := uuid.New()
	item := &models.InventoryItem{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		SKU:       "ABC123",
		Title:     "Dom Casmurro",
		Authors:   datatypes.JSONSlice[string]{"Machado de Assis"},
		Publisher: &publisher,
		Condition: models.UsedCondition,
		Binding:   models.PaperbackBinding,
		Language:  models.PortugueseLanguage,
		PriceSale: decimal.RequireFromString("17.95"),
		PriceCost: &cost,
		StockOwn:  1,
		Status:    models.AvailableStatus,
		AddedBy:   &addedBy,
	}
	item.SetDiscount(&models.Discount{Type: models.PercentageDiscount, Value: decimal.NewFromInt(10)})
	return item
}

func TestDocumentRoundTripKeepsValues(t *testing.T) {
	item := sampleItem()

	doc := toDocument(item)
	back, err := doc.toModel()
	require.NoError(t, err)

	assert.Equal(t, item.ID, back.ID)
	assert.Equal(t, item.TenantID, back.TenantID)
	assert.Equal(t, item.SKU, back.SKU)
	assert.True(t, item.PriceSale.Equal(back.PriceSale))
	require.NotNil(t, back.PriceCost)
	assert.True(t, item.PriceCost.Equal(*back.PriceCost))
	require.NotNil(t, back.Discount())
	assert.Equal(t, models.PercentageDiscount, back.Discount().Type)
	assert.Equal(t, *item.AddedBy, *back.AddedBy)
	assert.Equal(t, []string{"Machado de Assis"}, []string(back.Authors))
}

func TestBuildUpsertKeepsSetAndSetOnInsertDisjoint(t *testing.T) {
	item := sampleItem()
	doc := toDocument(item)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	update := buildUpsert(&doc, []string{models.ColumnTitle, models.ColumnPriceSale, models.ColumnBinding}, now)

	set := update["$set"].(bson.M)
	setOnInsert := update["$setOnInsert"].(bson.M)

	assert.Equal(t, "Dom Casmurro", set["title"])
	assert.Contains(t, set, "price.sale")
	assert.Contains(t, set, "binding")
	assert.Contains(t, set, "addedBy")
	assert.Equal(t, now, set["updatedAt"])

	assert.Equal(t, "available", setOnInsert["status"])
	assert.Equal(t, 1, setOnInsert["stock.own"])
	assert.Contains(t, setOnInsert, "_id")
	assert.Contains(t, setOnInsert, "createdAt")

	for path := range set {
		assert.NotContains(t, setOnInsert, path)
	}
}

func TestBuildUpsertSkipsAbsentOptionalFields(t *testing.T) {
	item := sampleItem()
	item.Publisher = nil
	item.SetDiscount(nil)
	doc := toDocument(item)

	update := buildUpsert(&doc, []string{models.ColumnPublisher}, time.Now())

	assert.NotContains(t, update["$set"].(bson.M), "publisher")
	assert.NotContains(t, update["$setOnInsert"].(bson.M), "publisher")
	assert.NotContains(t, update["$setOnInsert"].(bson.M), "price.discount")
}

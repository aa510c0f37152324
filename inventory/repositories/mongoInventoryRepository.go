package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"book-inventory-backend/db/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
)

const (
	InventoryCollection = "inventory"

	mongoNamespaceExists = 48
)

type mongoInventoryRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoInventoryRepository stores inventory as documents in db.
func NewMongoInventoryRepository(db *mongo.Database) InventoryRepository {
	return &mongoInventoryRepository{
		db:         db,
		collection: db.Collection(InventoryCollection),
	}
}

type discountDocument struct {
	Type  string               `bson:"type"`
	Value primitive.Decimal128 `bson:"value"`
}

type priceDocument struct {
	Sale     primitive.Decimal128  `bson:"sale"`
	Cost     *primitive.Decimal128 `bson:"cost,omitempty"`
	Discount *discountDocument     `bson:"discount,omitempty"`
}

type stockDocument struct {
	Own       int `bson:"own"`
	Consigned int `bson:"consigned"`
}

type inventoryDocument struct {
	ID            string        `bson:"_id"`
	TenantID      string        `bson:"tenantId"`
	SKU           string        `bson:"sku"`
	Title         string        `bson:"title"`
	Authors       []string      `bson:"authors"`
	Publisher     *string       `bson:"publisher,omitempty"`
	Year          *int          `bson:"year,omitempty"`
	ISBN          *string       `bson:"isbn,omitempty"`
	PageCount     *int          `bson:"pageCount,omitempty"`
	Subjects      []string      `bson:"subjects"`
	Description   *string       `bson:"description,omitempty"`
	CoverImageURL *string       `bson:"coverImageUrl,omitempty"`
	Condition     string        `bson:"condition"`
	Binding       string        `bson:"binding"`
	Language      string        `bson:"language"`
	Price         priceDocument `bson:"price"`
	Stock         stockDocument `bson:"stock"`
	WeightGrams   *int          `bson:"weightGrams,omitempty"`
	Status        string        `bson:"status"`
	Label         *string       `bson:"label,omitempty"`
	AddedBy       *string       `bson:"addedBy,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt"`
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toDocument(item *models.InventoryItem) inventoryDocument {
	doc := inventoryDocument{
		ID:            item.ID.String(),
		TenantID:      item.TenantID.String(),
		SKU:           item.SKU,
		Title:         item.Title,
		Authors:       []string(item.Authors),
		Publisher:     item.Publisher,
		Year:          item.Year,
		ISBN:          item.ISBN,
		PageCount:     item.PageCount,
		Subjects:      []string(item.Subjects),
		Description:   item.Description,
		CoverImageURL: item.CoverImageURL,
		Condition:     string(item.Condition),
		Binding:       string(item.Binding),
		Language:      string(item.Language),
		Price:         priceDocument{Sale: toDecimal128(item.PriceSale)},
		Stock:         stockDocument{Own: item.StockOwn, Consigned: item.StockConsigned},
		WeightGrams:   item.WeightGrams,
		Status:        string(item.Status),
		Label:         item.Label,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
	if doc.Authors == nil {
		doc.Authors = []string{}
	}
	if doc.Subjects == nil {
		doc.Subjects = []string{}
	}
	if item.PriceCost != nil {
		cost := toDecimal128(*item.PriceCost)
		doc.Price.Cost = &cost
	}
	if d := item.Discount(); d != nil {
		doc.Price.Discount = &discountDocument{Type: string(d.Type), Value: toDecimal128(d.Value)}
	}
	if item.AddedBy != nil {
		addedBy := item.AddedBy.String()
		doc.AddedBy = &addedBy
	}
	return doc
}

func (d *inventoryDocument) toModel() (*models.InventoryItem, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid inventory id %q: %w", d.ID, err)
	}
	tenantID, err := uuid.Parse(d.TenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant id %q: %w", d.TenantID, err)
	}

	item := &models.InventoryItem{
		ID:             id,
		TenantID:       tenantID,
		SKU:            d.SKU,
		Title:          d.Title,
		Authors:        datatypes.JSONSlice[string](d.Authors),
		Publisher:      d.Publisher,
		Year:           d.Year,
		ISBN:           d.ISBN,
		PageCount:      d.PageCount,
		Subjects:       datatypes.JSONSlice[string](d.Subjects),
		Description:    d.Description,
		CoverImageURL:  d.CoverImageURL,
		Condition:      models.Condition(d.Condition),
		Binding:        models.Binding(d.Binding),
		Language:       models.Language(d.Language),
		PriceSale:      fromDecimal128(d.Price.Sale),
		StockOwn:       d.Stock.Own,
		StockConsigned: d.Stock.Consigned,
		WeightGrams:    d.WeightGrams,
		Status:         models.ItemStatus(d.Status),
		Label:          d.Label,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.Price.Cost != nil {
		cost := fromDecimal128(*d.Price.Cost)
		item.PriceCost = &cost
	}
	if d.Price.Discount != nil {
		item.SetDiscount(&models.Discount{
			Type:  models.DiscountType(d.Price.Discount.Type),
			Value: fromDecimal128(d.Price.Discount.Value),
		})
	}
	if d.AddedBy != nil {
		if addedBy, err := uuid.Parse(*d.AddedBy); err == nil {
			item.AddedBy = &addedBy
		}
	}
	return item, nil
}

// upsertColumns are the item columns that may appear in $set or $setOnInsert.
var upsertColumns = []string{
	models.ColumnTitle,
	models.ColumnAuthors,
	models.ColumnPublisher,
	models.ColumnYear,
	models.ColumnISBN,
	models.ColumnPageCount,
	models.ColumnSubjects,
	models.ColumnDescription,
	models.ColumnCoverImageURL,
	models.ColumnCondition,
	models.ColumnBinding,
	models.ColumnLanguage,
	models.ColumnPriceSale,
	models.ColumnPriceCost,
	models.ColumnDiscountType,
	models.ColumnStockOwn,
	models.ColumnStockConsigned,
	models.ColumnWeightGrams,
	models.ColumnStatus,
	models.ColumnLabel,
}

// fieldFor returns the document path and value of a column. A nil value means
// the field is absent.
func (d *inventoryDocument) fieldFor(column string) (string, interface{}) {
	switch column {
	case models.ColumnTitle:
		return "title", d.Title
	case models.ColumnAuthors:
		return "authors", d.Authors
	case models.ColumnPublisher:
		return "publisher", optional(d.Publisher)
	case models.ColumnYear:
		return "year", optionalInt(d.Year)
	case models.ColumnISBN:
		return "isbn", optional(d.ISBN)
	case models.ColumnPageCount:
		return "pageCount", optionalInt(d.PageCount)
	case models.ColumnSubjects:
		return "subjects", d.Subjects
	case models.ColumnDescription:
		return "description", optional(d.Description)
	case models.ColumnCoverImageURL:
		return "coverImageUrl", optional(d.CoverImageURL)
	case models.ColumnCondition:
		return "condition", d.Condition
	case models.ColumnBinding:
		return "binding", d.Binding
	case models.ColumnLanguage:
		return "language", d.Language
	case models.ColumnPriceSale:
		return "price.sale", d.Price.Sale
	case models.ColumnPriceCost:
		if d.Price.Cost == nil {
			return "price.cost", nil
		}
		return "price.cost", *d.Price.Cost
	case models.ColumnDiscountType, models.ColumnDiscountValue:
		if d.Price.Discount == nil {
			return "price.discount", nil
		}
		return "price.discount", *d.Price.Discount
	case models.ColumnStockOwn:
		return "stock.own", d.Stock.Own
	case models.ColumnStockConsigned:
		return "stock.consigned", d.Stock.Consigned
	case models.ColumnWeightGrams:
		return "weightGrams", optionalInt(d.WeightGrams)
	case models.ColumnStatus:
		return "status", d.Status
	case models.ColumnLabel:
		return "label", optional(d.Label)
	case models.ColumnAddedBy:
		return "addedBy", optional(d.AddedBy)
	}
	return "", nil
}

func optional(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func optionalInt(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}

// buildUpsert splits the document into $set (provided columns) and
// $setOnInsert (defaults for new documents). The two never share a path.
func buildUpsert(doc *inventoryDocument, columns []string, now time.Time) bson.M {
	provided := make([]string, 0, len(columns)+1)
	provided = append(provided, columns...)
	provided = append(provided, models.ColumnAddedBy)

	set := bson.M{"updatedAt": now}
	for _, column := range provided {
		path, value := doc.fieldFor(column)
		if path == "" || value == nil {
			continue
		}
		set[path] = value
	}

	setOnInsert := bson.M{"_id": doc.ID, "createdAt": now}
	for _, column := range upsertColumns {
		path, value := doc.fieldFor(column)
		if path == "" || value == nil {
			continue
		}
		if _, taken := set[path]; taken {
			continue
		}
		setOnInsert[path] = value
	}

	return bson.M{"$set": set, "$setOnInsert": setOnInsert}
}

// inventoryValidator mirrors the InventoryItem constraints so the server
// rejects invalid writes too.
func inventoryValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"tenantId", "sku", "title", "condition", "binding", "language", "price", "stock", "status"},
			"properties": bson.M{
				"tenantId":  bson.M{"bsonType": "string", "minLength": 1},
				"sku":       bson.M{"bsonType": "string", "minLength": 1},
				"title":     bson.M{"bsonType": "string", "minLength": 1},
				"authors":   bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"subjects":  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"condition": bson.M{"enum": []string{"new", "used"}},
				"binding":   bson.M{"enum": []string{"paperback", "hardcover", "spiral", "other"}},
				"language":  bson.M{"enum": []string{"pt", "en", "es", "other"}},
				"status":    bson.M{"enum": []string{"available", "reserved", "sold", "delisted"}},
				"price": bson.M{
					"bsonType": "object",
					"required": []string{"sale"},
					"properties": bson.M{
						"sale": bson.M{"bsonType": "decimal", "minimum": 0, "exclusiveMinimum": true},
						"cost": bson.M{"bsonType": "decimal", "minimum": 0},
						"discount": bson.M{
							"bsonType": "object",
							"required": []string{"type", "value"},
							"properties": bson.M{
								"type":  bson.M{"enum": []string{"percentage", "fixed"}},
								"value": bson.M{"bsonType": "decimal"},
							},
						},
					},
				},
				"stock": bson.M{
					"bsonType": "object",
					"required": []string{"own", "consigned"},
					"properties": bson.M{
						"own":       bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
						"consigned": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
					},
				},
			},
		},
	}
}

func (r *mongoInventoryRepository) EnsureSchema(ctx context.Context) error {
	validator := inventoryValidator()

	opts := options.CreateCollection().
		SetValidator(validator).
		SetValidationLevel("strict").
		SetValidationAction("error")
	err := r.db.CreateCollection(ctx, InventoryCollection, opts)
	if err != nil {
		var cmdErr mongo.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Code != mongoNamespaceExists {
			return fmt.Errorf("create %s collection: %w", InventoryCollection, err)
		}
		cmd := bson.D{
			{Key: "collMod", Value: InventoryCollection},
			{Key: "validator", Value: validator},
			{Key: "validationLevel", Value: "strict"},
		}
		if err := r.db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("update %s validator: %w", InventoryCollection, err)
		}
	}

	_, err = r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_inventory_tenant_sku"),
		},
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_inventory_tenant_status"),
		},
	})
	if err != nil {
		return fmt.Errorf("create %s indexes: %w", InventoryCollection, err)
	}
	return nil
}

func (r *mongoInventoryRepository) UpsertBySKU(ctx context.Context, item *models.InventoryItem, columns []string) (*models.InventoryItem, error) {
	item.ApplyDefaults()
	if err := item.Validate(); err != nil {
		return nil, classifyMongoError(err)
	}

	doc := toDocument(item)
	filter := bson.M{"tenantId": doc.TenantID, "sku": doc.SKU}
	update := buildUpsert(&doc, columns, time.Now().UTC())

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored inventoryDocument
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, classifyMongoError(err)
	}
	return stored.toModel()
}

func (r *mongoInventoryRepository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	item.ApplyDefaults()
	if err := item.Validate(); err != nil {
		return nil, classifyMongoError(err)
	}

	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now

	if _, err := r.collection.InsertOne(ctx, toDocument(item)); err != nil {
		return nil, classifyMongoError(err)
	}
	return item, nil
}

func (r *mongoInventoryRepository) findOne(ctx context.Context, filter bson.M) (*models.InventoryItem, error) {
	var doc inventoryDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, classifyMongoError(err)
	}
	return doc.toModel()
}

func (r *mongoInventoryRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error) {
	return r.findOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()})
}

func (r *mongoInventoryRepository) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.InventoryItem, error) {
	return r.findOne(ctx, bson.M{"tenantId": tenantID.String(), "sku": sku})
}

func (r *mongoInventoryRepository) Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := item.Validate(); err != nil {
		return nil, classifyMongoError(err)
	}
	item.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": item.ID.String(), "tenantId": item.TenantID.String()}
	result, err := r.collection.ReplaceOne(ctx, filter, toDocument(item))
	if err != nil {
		return nil, classifyMongoError(err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return item, nil
}

func (r *mongoInventoryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "tenantId": tenantID.String()})
	if err != nil {
		return classifyMongoError(err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoInventoryRepository) List(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]models.InventoryItem, int64, error) {
	filter := bson.M{"tenantId": tenantID.String()}
	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"sku": pattern},
			bson.M{"isbn": pattern},
			bson.M{"authors": pattern},
		}
	}
	if params.Status != "" {
		filter["status"] = params.Status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, classifyMongoError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(params.offset())).
		SetLimit(int64(params.PageSize))

	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *mongoInventoryRepository) FindAll(ctx context.Context) ([]models.InventoryItem, error) {
	return r.find(ctx, bson.M{}, options.Find())
}

func (r *mongoInventoryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.InventoryItem, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, classifyMongoError(err)
	}
	defer cursor.Close(ctx)

	var docs []inventoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classifyMongoError(err)
	}

	items := make([]models.InventoryItem, 0, len(docs))
	for i := range docs {
		item, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

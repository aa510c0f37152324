package repositories

import (
	"fmt"
	"strings"

	indexing "book-inventory-backend/bleve/services"
	"book-inventory-backend/db/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
)

const InventoryIndex = "inventory"

// DefaultSearchSize caps the hits returned by one search.
const DefaultSearchSize = 50

type BleveRepositoryInterface interface {
	IndexItem(item *models.InventoryItem) error
	IndexExistingItems(items []models.InventoryItem) error
	DeleteItem(id string) error
	SearchInventory(params SearchParams) (*bleve.SearchResult, error)
	GetItemDocument(tenantID, id string) (map[string]interface{}, error)
	ResetIndex() error
}

type BleveRepository struct {
	indexer indexing.IndexingServiceInterface
	logger  *zap.Logger
}

// SearchParams narrows a search to one tenant and optional filters.
type SearchParams struct {
	TenantID  string
	Query     string
	Status    string
	Condition string
	Size      int
}

func NewBleveRepository(indexer indexing.IndexingServiceInterface, logger *zap.Logger) *BleveRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	indexer.RegisterMapping(InventoryIndex, inventoryMapping())
	return &BleveRepository{indexer: indexer, logger: logger}
}

// inventoryMapping keeps identifiers and enums unanalyzed so they match exactly.
func inventoryMapping() mapping.IndexMapping {
	keyword := bleve.NewKeywordFieldMapping()
	text := bleve.NewTextFieldMapping()
	number := bleve.NewNumericFieldMapping()

	doc := bleve.NewDocumentMapping()
	for _, field := range []string{"id", "tenant_id", "sku", "isbn", "condition", "status", "binding", "language"} {
		doc.AddFieldMappingsAt(field, keyword)
	}
	for _, field := range []string{"title", "authors", "publisher", "subjects", "description", "label"} {
		doc.AddFieldMappingsAt(field, text)
	}
	doc.AddFieldMappingsAt("price_sale", number)
	doc.AddFieldMappingsAt("stock_own", number)
	doc.AddFieldMappingsAt("year", number)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

type inventoryDocument struct {
	ID          string  `json:"id"`
	TenantID    string  `json:"tenant_id"`
	SKU         string  `json:"sku"`
	Title       string  `json:"title"`
	Authors     string  `json:"authors"`
	Publisher   string  `json:"publisher"`
	ISBN        string  `json:"isbn"`
	Subjects    string  `json:"subjects"`
	Description string  `json:"description"`
	Label       string  `json:"label"`
	Condition   string  `json:"condition"`
	Status      string  `json:"status"`
	Binding     string  `json:"binding"`
	Language    string  `json:"language"`
	Year        float64 `json:"year,omitempty"`
	PriceSale   float64 `json:"price_sale"`
	StockOwn    float64 `json:"stock_own"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toIndexDocument(item *models.InventoryItem) inventoryDocument {
	doc := inventoryDocument{
		ID:          item.ID.String(),
		TenantID:    item.TenantID.String(),
		SKU:         item.SKU,
		Title:       item.Title,
		Authors:     strings.Join(item.Authors, "; "),
		Publisher:   deref(item.Publisher),
		ISBN:        normalizeISBN(deref(item.ISBN)),
		Subjects:    strings.Join(item.Subjects, "; "),
		Description: deref(item.Description),
		Label:       deref(item.Label),
		Condition:   string(item.Condition),
		Status:      string(item.Status),
		Binding:     string(item.Binding),
		Language:    string(item.Language),
		PriceSale:   item.PriceSale.InexactFloat64(),
		StockOwn:    float64(item.StockOwn),
	}
	if item.Year != nil {
		doc.Year = float64(*item.Year)
	}
	return doc
}

// IndexItem indexes or re-indexes a single item.
func (r *BleveRepository) IndexItem(item *models.InventoryItem) error {
	if item == nil {
		return fmt.Errorf("cannot index nil item")
	}
	if err := r.indexer.IndexDocument(InventoryIndex, item.ID.String(), toIndexDocument(item)); err != nil {
		r.logger.Error("Failed to index inventory item", zap.String("sku", item.SKU), zap.Error(err))
		return err
	}
	return nil
}

func (r *BleveRepository) IndexExistingItems(items []models.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	docs := make(map[string]interface{}, len(items))
	for i := range items {
		docs[items[i].ID.String()] = toIndexDocument(&items[i])
	}
	return r.indexer.BulkIndexDocuments(InventoryIndex, docs)
}

func (r *BleveRepository) DeleteItem(id string) error {
	return r.indexer.DeleteDocument(InventoryIndex, id)
}

// GetItemDocument returns the indexed fields of one item. Items of other
// tenants are reported as not found.
func (r *BleveRepository) GetItemDocument(tenantID, id string) (map[string]interface{}, error) {
	fields, err := r.indexer.GetDocument(InventoryIndex, id)
	if err != nil {
		return nil, err
	}
	if owner, _ := fields["tenant_id"].(string); owner != tenantID {
		return nil, fmt.Errorf("%w: %s", indexing.ErrDocumentNotFound, id)
	}
	return fields, nil
}

// ResetIndex drops the inventory index so it can be rebuilt from the store.
func (r *BleveRepository) ResetIndex() error {
	return r.indexer.DeleteIndex(InventoryIndex)
}

func keywordTerm(field, value string) *query.TermQuery {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}

// SearchInventory runs a tenant-scoped search. An empty query lists the tenant's items.
func (r *BleveRepository) SearchInventory(params SearchParams) (*bleve.SearchResult, error) {
	if params.TenantID == "" {
		return nil, fmt.Errorf("tenant is required for search")
	}
	size := params.Size
	if size <= 0 || size > DefaultSearchSize {
		size = DefaultSearchSize
	}

	boolQuery := bleve.NewBooleanQuery()
	boolQuery.AddMust(keywordTerm("tenant_id", params.TenantID))
	if params.Status != "" {
		boolQuery.AddMust(keywordTerm("status", params.Status))
	}
	if params.Condition != "" {
		boolQuery.AddMust(keywordTerm("condition", params.Condition))
	}

	text := strings.TrimSpace(params.Query)
	if text != "" {
		var should []query.Query

		// Exact identifiers rank first
		skuQuery := keywordTerm("sku", text)
		skuQuery.SetBoost(10.0)
		should = append(should, skuQuery)

		isbnQuery := keywordTerm("isbn", normalizeISBN(text))
		isbnQuery.SetBoost(8.0)
		should = append(should, isbnQuery)

		titleMatch := bleve.NewMatchQuery(text)
		titleMatch.SetField("title")
		titleMatch.SetBoost(5.0)
		should = append(should, titleMatch)

		authorMatch := bleve.NewMatchQuery(text)
		authorMatch.SetField("authors")
		authorMatch.SetBoost(4.0)
		should = append(should, authorMatch)

		publisherMatch := bleve.NewMatchQuery(text)
		publisherMatch.SetField("publisher")
		publisherMatch.SetBoost(2.0)
		should = append(should, publisherMatch)

		subjectMatch := bleve.NewMatchQuery(text)
		subjectMatch.SetField("subjects")
		should = append(should, subjectMatch)

		lower := strings.ToLower(text)
		titlePrefix := bleve.NewPrefixQuery(lower)
		titlePrefix.SetField("title")
		titlePrefix.SetBoost(3.0)
		should = append(should, titlePrefix)

		if len(text) > 3 {
			titleFuzzy := bleve.NewFuzzyQuery(lower)
			titleFuzzy.SetField("title")
			titleFuzzy.SetFuzziness(1)
			should = append(should, titleFuzzy)

			authorFuzzy := bleve.NewFuzzyQuery(lower)
			authorFuzzy.SetField("authors")
			authorFuzzy.SetFuzziness(1)
			should = append(should, authorFuzzy)
		}

		disjunction := bleve.NewDisjunctionQuery(should...)
		disjunction.SetMin(1)
		boolQuery.AddMust(disjunction)
	}

	result, err := r.indexer.SearchIndex(InventoryIndex, boolQuery, size)
	if err != nil {
		r.logger.Error("Inventory search failed", zap.String("query", text), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func normalizeISBN(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(s), "-", ""), " ", "")
}

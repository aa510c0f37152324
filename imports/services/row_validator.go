package services

import (
	"fmt"
	"strings"

	"book-inventory-backend/db/models"
)

// RowError is one problem of one source row, shaped for the import response.
type RowError struct {
	Line    int    `json:"line,omitempty"`
	SKU     string `json:"sku,omitempty"`
	Title   string `json:"title,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"error"`
}

type requiredCheck struct {
	field   Field
	missing func(item *models.InventoryItem) bool
}

// requiredForImport is checked in this order; errors follow it.
var requiredForImport = []requiredCheck{
	{FieldTitle, func(i *models.InventoryItem) bool {
		return strings.TrimSpace(i.Title) == ""
	}},
	{FieldAuthor, func(i *models.InventoryItem) bool {
		return len(i.Authors) == 0 || strings.TrimSpace(i.Authors[0]) == ""
	}},
	{FieldPublisher, func(i *models.InventoryItem) bool {
		return i.Publisher == nil || strings.TrimSpace(*i.Publisher) == ""
	}},
	{FieldCondition, func(i *models.InventoryItem) bool {
		return !models.IsValidCondition(i.Condition)
	}},
	{FieldSKU, func(i *models.InventoryItem) bool {
		return strings.TrimSpace(i.SKU) == ""
	}},
	{FieldBinding, func(i *models.InventoryItem) bool {
		return !models.IsValidBinding(i.Binding)
	}},
	{FieldLanguage, func(i *models.InventoryItem) bool {
		return !models.IsValidLanguage(i.Language)
	}},
	{FieldPriceSale, func(i *models.InventoryItem) bool {
		return !i.PriceSale.IsPositive()
	}},
}

type rowErrors struct {
	rec    *CandidateRecord
	seen   map[string]struct{}
	errors []RowError
}

// add keeps at most one error per label.
func (r *rowErrors) add(f Field, message string) {
	label := f.Label()
	if _, dup := r.seen[label]; dup {
		return
	}
	r.seen[label] = struct{}{}
	r.errors = append(r.errors, RowError{
		Line:    r.rec.Row,
		SKU:     r.rec.Item.SKU,
		Title:   r.rec.Item.Title,
		Field:   label,
		Message: message,
	})
}

// ValidateRecord returns the row errors of rec. An empty result means the
// record is accepted for reconciliation.
func ValidateRecord(rec *CandidateRecord) []RowError {
	re := &rowErrors{rec: rec, seen: make(map[string]struct{})}
	item := &rec.Item

	for _, check := range requiredForImport {
		if err := rec.FieldErr(check.field); err != nil {
			re.add(check.field, fmt.Sprintf("%s: %v", check.field.Label(), err))
			continue
		}
		if check.missing(item) {
			re.add(check.field, requiredMessage(check.field))
		}
	}

	// Normalization failures on optional fields still reject the row.
	for _, fe := range rec.Errors {
		re.add(fe.Field, fmt.Sprintf("%s: %v", fe.Field.Label(), fe.Err))
	}

	if item.PriceCost != nil && item.PriceCost.IsNegative() {
		re.add(FieldPriceCost, "cost price cannot be negative")
	}
	if item.StockOwn < 0 {
		re.add(FieldStockOwn, "own stock cannot be negative")
	}
	if item.StockConsigned < 0 {
		re.add(FieldStockConsigned, "consigned stock cannot be negative")
	}

	return re.errors
}

func requiredMessage(f Field) string {
	switch f {
	case FieldPriceSale:
		return fmt.Sprintf("%s must be greater than zero", f.Label())
	case FieldSKU:
		return fmt.Sprintf("SKU not found in %s", FieldSKUExtraction.Label())
	default:
		return fmt.Sprintf("%s is required", f.Label())
	}
}

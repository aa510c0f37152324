package services

import (
	"book-inventory-backend/db/models"

	"gorm.io/datatypes"
)

// RawField is one (key, cell) pair of an import row. Key is the original
// header text for files and a header or canonical key for JSON rows.
type RawField struct {
	Key  string
	Cell Cell
}

// ImportRow is one data line before normalization.
type ImportRow struct {
	Number int
	Fields []RawField
}

// IsBlank reports whether every cell of the row is empty.
func (r ImportRow) IsBlank() bool {
	for _, f := range r.Fields {
		if !f.Cell.IsEmpty() {
			return false
		}
	}
	return true
}

// FieldError is a normalization failure localized to one field.
type FieldError struct {
	Field Field
	Err   error
}

// CandidateRecord is a typed, not yet validated item built from one row.
type CandidateRecord struct {
	Row  int
	Item models.InventoryItem
	// Columns lists the item columns this row provided; only these are
	// overwritten when the SKU already exists.
	Columns []string
	Errors  []FieldError
}

func (r *CandidateRecord) provide(column string) {
	for _, c := range r.Columns {
		if c == column {
			return
		}
	}
	r.Columns = append(r.Columns, column)
}

func (r *CandidateRecord) fail(f Field, err error) {
	r.Errors = append(r.Errors, FieldError{Field: f, Err: err})
}

// FieldErr returns the normalization error recorded for f, if any.
func (r *CandidateRecord) FieldErr(f Field) error {
	for _, e := range r.Errors {
		if e.Field == f {
			return e.Err
		}
	}
	return nil
}

// buildOrder fixes the processing order so errors come out deterministically.
// An explicit description wins over the one left by SKU extraction, and an
// explicit sku wins over the extracted one.
var buildOrder = []Field{
	FieldTitle,
	FieldAuthor,
	FieldPublisher,
	FieldYear,
	FieldISBN,
	FieldSKU,
	FieldDescription,
	FieldSKUExtraction,
	FieldCondition,
	FieldBinding,
	FieldLanguage,
	FieldPriceSale,
	FieldPriceCost,
	FieldDiscount,
	FieldStockOwn,
	FieldStockConsigned,
	FieldWeight,
	FieldPageCount,
	FieldCategory,
	FieldLabel,
	FieldCoverImageURL,
}

// BuildRecord normalizes one row. It returns nil for blank rows, which are
// skipped without error. A failing field never stops the others.
func BuildRecord(row ImportRow) *CandidateRecord {
	if row.IsBlank() {
		return nil
	}

	cells := make(map[Field]Cell, len(row.Fields))
	for _, rf := range row.Fields {
		if f, ok := resolveKey(rf.Key); ok {
			cells[f] = rf.Cell
		}
	}

	rec := &CandidateRecord{Row: row.Number}
	item := &rec.Item

	for _, f := range buildOrder {
		cell, present := cells[f]

		switch f {
		case FieldBinding:
			// Always ends with a value, "other" when absent.
			item.Binding = NormalizeBinding(cell)
			rec.provide(models.ColumnBinding)
			continue
		case FieldLanguage:
			item.Language = NormalizeLanguage(cell)
			rec.provide(models.ColumnLanguage)
			continue
		}

		if !present || cell.IsEmpty() {
			continue
		}
		text := cell.TrimmedText()

		switch f {
		case FieldTitle:
			item.Title = text
			rec.provide(models.ColumnTitle)
		case FieldAuthor:
			item.Authors = datatypes.JSONSlice[string]{text}
			rec.provide(models.ColumnAuthors)
		case FieldPublisher:
			item.Publisher = &text
			rec.provide(models.ColumnPublisher)
		case FieldYear:
			n, err := ParseInteger(cell)
			if err != nil {
				rec.fail(f, err)
				continue
			}
			item.Year = n
			rec.provide(models.ColumnYear)
		case FieldISBN:
			item.ISBN = &text
			rec.provide(models.ColumnISBN)
		case FieldSKU:
			item.SKU = text
		case FieldDescription:
			item.Description = &text
			rec.provide(models.ColumnDescription)
		case FieldSKUExtraction:
			sku, description := ExtractSKU(text)
			if sku != "" && item.SKU == "" {
				item.SKU = sku
			}
			if description != "" && item.Description == nil {
				item.Description = &description
				rec.provide(models.ColumnDescription)
			}
		case FieldCondition:
			c, err := NormalizeCondition(cell)
			if err != nil {
				rec.fail(f, err)
				continue
			}
			item.Condition = c
			rec.provide(models.ColumnCondition)
		case FieldPriceSale:
			d, err := ParseCurrency(cell)
			if err != nil {
				rec.fail(f, err)
				continue
			}
			item.PriceSale = *d
			rec.provide(models.ColumnPriceSale)
		case FieldPriceCost:
			d, err := ParseCurrency(cell)
			if err != nil {
				rec.fail(f, err)
				continue
			}
			item.PriceCost = d
			rec.provide(models.ColumnPriceCost)
		case FieldDiscount:
			if d := ParseDiscount(cell); d != nil {
				item.SetDiscount(d)
				rec.provide(models.ColumnDiscountType)
				rec.provide(models.ColumnDiscountValue)
			}
		case FieldStockOwn:
			n, err := ParseInteger(cell)
			if err != nil {
				rec.fail(f, err)
				continue
			}
			item.StockOwn = *n
			rec.provide(models.ColumnStockOwn)
		case FieldStockConsigned:
			n, err := ParseInteger(cell)
			if err != nil {
				rec.fail(f, err)
				continue
			}
			item.StockConsigned = *n
			rec.provide(models.ColumnStockConsigned)
		case FieldWeight:
			n, err := ParseInteger(cell)
			if err != nil {
				rec.fail(f, err)
				continue
			}
			item.WeightGrams = n
			rec.provide(models.ColumnWeightGrams)
		case FieldPageCount:
			n, err := ParseInteger(cell)
			if err != nil {
				rec.fail(f, err)
				continue
			}
			item.PageCount = n
			rec.provide(models.ColumnPageCount)
		case FieldCategory:
			item.Subjects = datatypes.JSONSlice[string]{text}
			rec.provide(models.ColumnSubjects)
		case FieldLabel:
			item.Label = &text
			rec.provide(models.ColumnLabel)
		case FieldCoverImageURL:
			item.CoverImageURL = &text
			rec.provide(models.ColumnCoverImageURL)
		}
	}

	return rec
}

package services

import "strings"

// Field is the canonical key a column or JSON property maps to.
type Field string

const (
	FieldISBN          Field = "isbn"
	FieldAuthor        Field = "author"
	FieldTitle         Field = "title"
	FieldPublisher     Field = "publisher"
	FieldYear          Field = "year"
	FieldPriceSale     Field = "price.sale"
	FieldSKUExtraction Field = "[sku-extraction]"
	FieldWeight        Field = "weight"
	FieldCondition     Field = "condition"
	FieldLanguage      Field = "language"
	FieldBinding       Field = "binding"
	FieldDiscount      Field = "price.discount"
	FieldCategory      Field = "category"
	FieldLabel         Field = "label"

	// Only reachable through JSON rows.
	FieldSKU            Field = "sku"
	FieldDescription    Field = "description"
	FieldPriceCost      Field = "price.cost"
	FieldStockOwn       Field = "stock.own"
	FieldStockConsigned Field = "stock.consigned"
	FieldPageCount      Field = "pageCount"
	FieldCoverImageURL  Field = "coverImageUrl"
)

// HeaderColumn is one entry of the spreadsheet header dictionary.
type HeaderColumn struct {
	Header string
	Field  Field
}

// headerColumns is the published header dictionary, in template order.
// Lookups are case-sensitive.
var headerColumns = []HeaderColumn{
	{Header: "ISBN/ISSN", Field: FieldISBN},
	{Header: "Título*", Field: FieldTitle},
	{Header: "Autor*", Field: FieldAuthor},
	{Header: "Editora*", Field: FieldPublisher},
	{Header: "Ano*", Field: FieldYear},
	{Header: "Preço*", Field: FieldPriceSale},
	{Header: "Conservação:Descrição*", Field: FieldSKUExtraction},
	{Header: "Peso(g)", Field: FieldWeight},
	{Header: "Tipo:Novo/Usado*", Field: FieldCondition},
	{Header: "Idioma", Field: FieldLanguage},
	{Header: "Acabamento", Field: FieldBinding},
	{Header: "Desconto(%)", Field: FieldDiscount},
	{Header: "Assunto", Field: FieldCategory},
	{Header: "Localização", Field: FieldLabel},
}

var headerDictionary = func() map[string]Field {
	m := make(map[string]Field, len(headerColumns))
	for _, c := range headerColumns {
		m[c.Header] = c.Field
	}
	return m
}()

var canonicalFields = map[Field]struct{}{
	FieldISBN: {}, FieldAuthor: {}, FieldTitle: {}, FieldPublisher: {}, FieldYear: {},
	FieldPriceSale: {}, FieldSKUExtraction: {}, FieldWeight: {}, FieldCondition: {},
	FieldLanguage: {}, FieldBinding: {}, FieldDiscount: {}, FieldCategory: {}, FieldLabel: {},
	FieldSKU: {}, FieldDescription: {}, FieldPriceCost: {}, FieldStockOwn: {},
	FieldStockConsigned: {}, FieldPageCount: {}, FieldCoverImageURL: {},
}

// fieldLabels are the names users see in row errors.
var fieldLabels = map[Field]string{
	FieldISBN:           "ISBN/ISSN",
	FieldTitle:          "Título*",
	FieldAuthor:         "Autor*",
	FieldPublisher:      "Editora*",
	FieldYear:           "Ano*",
	FieldPriceSale:      "Preço*",
	FieldSKUExtraction:  "Conservação:Descrição*",
	FieldSKU:            "SKU (extracted)",
	FieldWeight:         "Peso(g)",
	FieldCondition:      "Tipo:Novo/Usado*",
	FieldLanguage:       "Idioma",
	FieldBinding:        "Acabamento",
	FieldDiscount:       "Desconto(%)",
	FieldCategory:       "Assunto",
	FieldLabel:          "Localização",
	FieldDescription:    "description",
	FieldPriceCost:      "price.cost",
	FieldStockOwn:       "stock.own",
	FieldStockConsigned: "stock.consigned",
	FieldPageCount:      "pageCount",
	FieldCoverImageURL:  "coverImageUrl",
}

// Label returns the user-facing name of a field.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// MapHeader looks a spreadsheet header up in the dictionary. Surrounding
// whitespace is ignored, case is not.
func MapHeader(header string) (Field, bool) {
	f, ok := headerDictionary[strings.TrimSpace(header)]
	return f, ok
}

// resolveKey maps a row key that is either a dictionary header or, for JSON
// rows, a canonical field key.
func resolveKey(key string) (Field, bool) {
	if f, ok := MapHeader(key); ok {
		return f, true
	}
	f := Field(strings.TrimSpace(key))
	_, ok := canonicalFields[f]
	return f, ok
}

// TemplateHeaders lists the dictionary headers in template order.
func TemplateHeaders() []string {
	headers := make([]string, len(headerColumns))
	for i, c := range headerColumns {
		headers[i] = c.Header
	}
	return headers
}

// HasKnownHeader reports whether at least one header maps to a field.
func HasKnownHeader(headers []string) bool {
	for _, h := range headers {
		if _, ok := MapHeader(h); ok {
			return true
		}
	}
	return false
}

var templateExample = map[Field]interface{}{
	FieldISBN:          "978-85-359-0277-8",
	FieldTitle:         "Dom Casmurro",
	FieldAuthor:        "Machado de Assis",
	FieldPublisher:     "Garnier",
	FieldYear:          1899,
	FieldPriceSale:     "R$ 17,95",
	FieldSKUExtraction: "SKU: ABC123, capa levemente amassada",
	FieldWeight:        320,
	FieldCondition:     "Usado",
	FieldLanguage:      "Português",
	FieldBinding:       "Brochura",
	FieldDiscount:      "10%",
	FieldCategory:      "Romance",
	FieldLabel:         "Estante 3",
}

// TemplateExampleRow is a sample row aligned with TemplateHeaders.
func TemplateExampleRow() []interface{} {
	row := make([]interface{}, len(headerColumns))
	for i, c := range headerColumns {
		row[i] = templateExample[c.Field]
	}
	return row
}

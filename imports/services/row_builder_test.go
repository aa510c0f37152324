package services_test

import (
	"testing"

	"book-inventory-backend/db/models"
	"book-inventory-backend/imports/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(number int, pairs ...interface{}) services.ImportRow {
	r := services.ImportRow{Number: number}
	for i := 0; i+1 < len(pairs); i += 2 {
		var cell services.Cell
		switch v := pairs[i+1].(type) {
		case string:
			cell = services.StringValue(v)
		case float64:
			cell = services.NumberValue(v)
		case services.Cell:
			cell = v
		}
		r.Fields = append(r.Fields, services.RawField{Key: pairs[i].(string), Cell: cell})
	}
	return r
}

func validRow(number int, sku string) services.ImportRow {
	return row(number,
		"Título*", "Dom Casmurro",
		"Autor*", "Machado de Assis",
		"Editora*", "Garnier",
		"Ano*", 1899.0,
		"Preço*", "R$ 17,95",
		"Conservação:Descrição*", "SKU: "+sku+", levemente amassado",
		"Tipo:Novo/Usado*", "Usado",
		"Idioma", "Português",
		"Acabamento", "Brochura",
	)
}

func TestMapHeader(t *testing.T) {
	f, ok := services.MapHeader("  Título*  ")
	assert.True(t, ok)
	assert.Equal(t, services.FieldTitle, f)

	_, ok = services.MapHeader("título*")
	assert.False(t, ok, "lookup is case-sensitive")

	_, ok = services.MapHeader("Observações")
	assert.False(t, ok)

	assert.Len(t, services.TemplateHeaders(), 14)
}

func TestBuildRecordSkipsBlankRows(t *testing.T) {
	assert.Nil(t, services.BuildRecord(row(4, "Título*", "", "Autor*", "   ")))
	assert.Nil(t, services.BuildRecord(services.ImportRow{Number: 5}))
}

func TestBuildRecordNormalizesEveryColumn(t *testing.T) {
	r := validRow(2, "ABC123")
	r.Fields = append(r.Fields,
		services.RawField{Key: "Desconto(%)", Cell: services.StringValue("10%")},
		services.RawField{Key: "Assunto", Cell: services.StringValue("Romance; Clássico")},
		services.RawField{Key: "Localização", Cell: services.StringValue("Estante 3")},
		services.RawField{Key: "Peso(g)", Cell: services.NumberValue(320)},
		services.RawField{Key: "Coluna extra", Cell: services.StringValue("ignored")},
	)

	rec := services.BuildRecord(r)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Errors)
	assert.Equal(t, 2, rec.Row)

	item := rec.Item
	assert.Equal(t, "Dom Casmurro", item.Title)
	assert.Equal(t, []string{"Machado de Assis"}, []string(item.Authors))
	assert.Equal(t, "Garnier", *item.Publisher)
	assert.Equal(t, 1899, *item.Year)
	assert.Equal(t, "17.95", item.PriceSale.String())
	assert.Equal(t, "ABC123", item.SKU)
	assert.Equal(t, "levemente amassado", *item.Description)
	assert.Equal(t, models.UsedCondition, item.Condition)
	assert.Equal(t, models.PortugueseLanguage, item.Language)
	assert.Equal(t, models.PaperbackBinding, item.Binding)
	assert.Equal(t, []string{"Romance; Clássico"}, []string(item.Subjects), "no delimiter splitting on import")
	assert.Equal(t, "Estante 3", *item.Label)
	assert.Equal(t, 320, *item.WeightGrams)
	require.NotNil(t, item.Discount())
	assert.Equal(t, "10", item.Discount().Value.String())

	assert.Contains(t, rec.Columns, models.ColumnPriceSale)
	assert.Contains(t, rec.Columns, models.ColumnDiscountValue)
	assert.NotContains(t, rec.Columns, models.ColumnStockOwn)
	assert.NotContains(t, rec.Columns, models.ColumnStatus)
}

func TestBuildRecordDefaultsBindingAndLanguageWhenAbsent(t *testing.T) {
	rec := services.BuildRecord(row(3, "Título*", "Sem acabamento"))
	require.NotNil(t, rec)
	assert.Equal(t, models.OtherBinding, rec.Item.Binding)
	assert.Equal(t, models.OtherLanguage, rec.Item.Language)
	assert.Contains(t, rec.Columns, models.ColumnBinding)
	assert.Contains(t, rec.Columns, models.ColumnLanguage)
}

func TestBuildRecordKeepsGoingAfterAFieldFails(t *testing.T) {
	rec := services.BuildRecord(row(7,
		"Ano*", "mil novecentos",
		"Preço*", "caro",
		"Título*", "Ainda lido",
	))
	require.NotNil(t, rec)
	assert.Equal(t, "Ainda lido", rec.Item.Title)
	assert.ErrorIs(t, rec.FieldErr(services.FieldYear), services.ErrInvalidNumber)
	assert.ErrorIs(t, rec.FieldErr(services.FieldPriceSale), services.ErrInvalidNumber)
}

func TestBuildRecordExplicitDescriptionWins(t *testing.T) {
	rec := services.BuildRecord(row(1,
		"description", "Primeira edição",
		"Conservação:Descrição*", "SKU: K9, capa solta",
	))
	require.NotNil(t, rec)
	assert.Equal(t, "K9", rec.Item.SKU)
	assert.Equal(t, "Primeira edição", *rec.Item.Description)
}

func TestBuildRecordAcceptsCanonicalKeys(t *testing.T) {
	rec := services.BuildRecord(row(1,
		"title", "O Alienista",
		"sku", "ALN-1",
		"stock.own", 2.0,
		"stock.consigned", "1",
		"price.cost", "4,00",
	))
	require.NotNil(t, rec)
	assert.Equal(t, "ALN-1", rec.Item.SKU)
	assert.Equal(t, 2, rec.Item.StockOwn)
	assert.Equal(t, 1, rec.Item.StockConsigned)
	assert.Equal(t, "4", rec.Item.PriceCost.String())
}

func TestBuildRecordRejectsOutOfRangeWeight(t *testing.T) {
	r := validRow(2, "W1")
	r.Fields = append(r.Fields, services.RawField{Key: "Peso(g)", Cell: services.NumberValue(1e300)})

	rec := services.BuildRecord(r)
	require.NotNil(t, rec)
	assert.Nil(t, rec.Item.WeightGrams)
	assert.ErrorIs(t, rec.FieldErr(services.FieldWeight), services.ErrInvalidNumber)

	errs := services.ValidateRecord(rec)
	require.Len(t, errs, 1)
	assert.Equal(t, "Peso(g)", errs[0].Field)
}

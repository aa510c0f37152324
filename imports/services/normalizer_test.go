package services_test

import (
	"testing"

	"book-inventory-backend/db/models"
	"book-inventory-backend/imports/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   services.Cell
		want string
	}{
		{"brazilian with symbol", services.StringValue("R$ 17,95"), "17.95"},
		{"thousands separator", services.StringValue("1.234,56"), "1234.56"},
		{"dot decimal", services.StringValue("17.95"), "17.95"},
		{"dollar symbol", services.StringValue("US$ 3.50"), "3.5"},
		{"euro no space", services.StringValue("€9,90"), "9.9"},
		{"numeric cell", services.NumberValue(42.5), "42.5"},
		{"padded", services.StringValue("  R$   5  "), "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := services.ParseCurrency(tt.in)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseCurrencyEmptyIsAbsent(t *testing.T) {
	for _, c := range []services.Cell{services.StringValue(""), services.StringValue("   "), services.EmptyValue()} {
		got, err := services.ParseCurrency(c)
		assert.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestParseCurrencyRejectsGarbage(t *testing.T) {
	for _, in := range []string{"abc", "R$", "12,34,56", "1 000"} {
		_, err := services.ParseCurrency(services.StringValue(in))
		assert.ErrorIs(t, err, services.ErrInvalidNumber, in)
	}
	_, err := services.ParseCurrency(services.BoolValue(true))
	assert.ErrorIs(t, err, services.ErrInvalidNumber)
}

func TestParseInteger(t *testing.T) {
	n, err := services.ParseInteger(services.StringValue(" 1998 "))
	require.NoError(t, err)
	assert.Equal(t, 1998, *n)

	n, err = services.ParseInteger(services.NumberValue(350))
	require.NoError(t, err)
	assert.Equal(t, 350, *n)

	n, err = services.ParseInteger(services.EmptyValue())
	assert.NoError(t, err)
	assert.Nil(t, n)

	_, err = services.ParseInteger(services.StringValue("12.5"))
	assert.ErrorIs(t, err, services.ErrInvalidNumber)

	_, err = services.ParseInteger(services.NumberValue(12.5))
	assert.ErrorIs(t, err, services.ErrInvalidNumber)

	for _, huge := range []float64{1e300, -1e300, 1e19, 9223372036854775808} {
		_, err = services.ParseInteger(services.NumberValue(huge))
		assert.ErrorIs(t, err, services.ErrInvalidNumber, "%v", huge)
	}

	_, err = services.ParseInteger(services.StringValue("99999999999999999999"))
	assert.ErrorIs(t, err, services.ErrInvalidNumber)
}

func TestNormalizeBinding(t *testing.T) {
	tests := map[string]models.Binding{
		"CapaDura":   models.HardcoverBinding,
		"capa dura":  models.HardcoverBinding,
		" Brochura ": models.PaperbackBinding,
		"ESPIRAL":    models.SpiralBinding,
		"":           models.OtherBinding,
		"grampeado":  models.OtherBinding,
	}
	for in, want := range tests {
		assert.Equal(t, want, services.NormalizeBinding(services.StringValue(in)), in)
	}
	assert.Equal(t, models.OtherBinding, services.NormalizeBinding(services.EmptyValue()))
}

func TestNormalizeLanguageFoldsAccents(t *testing.T) {
	assert.Equal(t, models.PortugueseLanguage, services.NormalizeLanguage(services.StringValue("Português")))
	assert.Equal(t, models.PortugueseLanguage, services.NormalizeLanguage(services.StringValue("portugues")))
	assert.Equal(t, models.EnglishLanguage, services.NormalizeLanguage(services.StringValue("Inglês")))
	assert.Equal(t, models.SpanishLanguage, services.NormalizeLanguage(services.StringValue("Español")))
	assert.Equal(t, models.OtherLanguage, services.NormalizeLanguage(services.StringValue("Alemão")))
}

func TestNormalizeConditionIsStrict(t *testing.T) {
	c, err := services.NormalizeCondition(services.StringValue("Usado"))
	require.NoError(t, err)
	assert.Equal(t, models.UsedCondition, c)

	c, err = services.NormalizeCondition(services.StringValue("novo"))
	require.NoError(t, err)
	assert.Equal(t, models.NewCondition, c)

	_, err = services.NormalizeCondition(services.StringValue(""))
	assert.ErrorIs(t, err, services.ErrUnrecognized)

	_, err = services.NormalizeCondition(services.StringValue("seminovo"))
	assert.ErrorIs(t, err, services.ErrUnrecognized)
}

func TestExtractSKU(t *testing.T) {
	tests := []struct {
		in          string
		sku         string
		description string
	}{
		{"SKU: ABC123, levemente amassado", "ABC123", "levemente amassado"},
		{"sku XYZ-9 capa rasgada", "XYZ-9", "capa rasgada"},
		{"Bom estado. SKU:B77", "B77", "Bom estado."},
		{"SKU:Q1.", "Q1", ""},
		{"sem código algum", "", "sem código algum"},
	}

	for _, tt := range tests {
		sku, description := services.ExtractSKU(tt.in)
		assert.Equal(t, tt.sku, sku, tt.in)
		assert.Equal(t, tt.description, description, tt.in)
	}
}

func TestParseDiscount(t *testing.T) {
	d := services.ParseDiscount(services.StringValue("15%"))
	require.NotNil(t, d)
	assert.Equal(t, models.PercentageDiscount, d.Type)
	assert.Equal(t, "15", d.Value.String())

	d = services.ParseDiscount(services.StringValue("12,5"))
	require.NotNil(t, d)
	assert.Equal(t, "12.5", d.Value.String())

	d = services.ParseDiscount(services.Cell{Kind: services.NumberCell, Number: 0.1, Text: "10%"})
	require.NotNil(t, d)
	assert.Equal(t, "10", d.Value.String())

	assert.Nil(t, services.ParseDiscount(services.StringValue("metade")))
	assert.Nil(t, services.ParseDiscount(services.EmptyValue()))
}

package services

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"book-inventory-backend/db/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidNumber = errors.New("invalid number")
	ErrUnrecognized  = errors.New("unrecognized value")
)

// Longest symbols first so "US$" is not read as "$".
var currencySymbols = []string{"R$", "US$", "$", "€", "£"}

// ParseCurrency turns a price cell into a decimal. "R$ 17,95", "1.234,56", "17.95"
// and numeric cells are accepted; a comma is always the decimal separator and
// dots are then thousands separators. An empty cell yields (nil, nil).
func ParseCurrency(c Cell) (*decimal.Decimal, error) {
	if c.IsEmpty() {
		return nil, nil
	}

	switch c.Kind {
	case NumberCell:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, c.Number)
		}
		d := decimal.NewFromFloat(c.Number)
		return &d, nil
	case StringCell:
	default:
		return nil, fmt.Errorf("%w: %s cell", ErrInvalidNumber, c.Kind)
	}

	s := strings.TrimSpace(c.Text)
	for _, symbol := range currencySymbols {
		if strings.HasPrefix(s, symbol) {
			s = strings.TrimSpace(strings.TrimPrefix(s, symbol))
			break
		}
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, c.Text)
	}
	return &d, nil
}

// ParseInteger reads a whole number. Fractional values are rejected.
// An empty cell yields (nil, nil).
func ParseInteger(c Cell) (*int, error) {
	if c.IsEmpty() {
		return nil, nil
	}

	switch c.Kind {
	case NumberCell:
		if c.Number != math.Trunc(c.Number) || math.IsInf(c.Number, 0) {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidNumber, c.Number)
		}
		// float64(math.MaxInt) rounds up to 2^63, which int cannot hold
		if c.Number >= float64(math.MaxInt) || c.Number < float64(math.MinInt) {
			return nil, fmt.Errorf("%w: %v is out of range", ErrInvalidNumber, c.Number)
		}
		n := int(c.Number)
		return &n, nil
	case StringCell:
		s := strings.Join(strings.Fields(c.Text), "")
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidNumber, c.Text)
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("%w: %s cell", ErrInvalidNumber, c.Kind)
	}
}

// EnumPolicy decides what happens to input that matches no synonym.
type EnumPolicy int

const (
	// Strict rejects empty or unknown input.
	Strict EnumPolicy = iota
	// LenientWithDefault maps empty or unknown input to a fallback value.
	LenientWithDefault
)

type enumNormalizer struct {
	name     string
	policy   EnumPolicy
	fallback string
	synonyms map[string]string
}

func (n enumNormalizer) normalize(c Cell) (string, error) {
	key := foldKey(c.TrimmedText())
	if canonical, ok := n.synonyms[key]; ok {
		return canonical, nil
	}
	if n.policy == LenientWithDefault {
		return n.fallback, nil
	}
	if key == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrUnrecognized, n.name)
	}
	return "", fmt.Errorf("%w: %s %q", ErrUnrecognized, n.name, c.TrimmedText())
}

var conditionNormalizer = enumNormalizer{
	name:   "condition",
	policy: Strict,
	synonyms: map[string]string{
		"novo":  string(models.NewCondition),
		"nova":  string(models.NewCondition),
		"new":   string(models.NewCondition),
		"usado": string(models.UsedCondition),
		"usada": string(models.UsedCondition),
		"used":  string(models.UsedCondition),
	},
}

var bindingNormalizer = enumNormalizer{
	name:     "binding",
	policy:   LenientWithDefault,
	fallback: string(models.OtherBinding),
	synonyms: map[string]string{
		"brochura":   string(models.PaperbackBinding),
		"brochado":   string(models.PaperbackBinding),
		"capa mole":  string(models.PaperbackBinding),
		"capa comum": string(models.PaperbackBinding),
		"paperback":  string(models.PaperbackBinding),
		"capa dura":  string(models.HardcoverBinding),
		"capadura":   string(models.HardcoverBinding),
		"hardcover":  string(models.HardcoverBinding),
		"hard cover": string(models.HardcoverBinding),
		"espiral":    string(models.SpiralBinding),
		"spiral":     string(models.SpiralBinding),
		"outro":      string(models.OtherBinding),
		"outros":     string(models.OtherBinding),
		"other":      string(models.OtherBinding),
	},
}

var languageNormalizer = enumNormalizer{
	name:     "language",
	policy:   LenientWithDefault,
	fallback: string(models.OtherLanguage),
	synonyms: map[string]string{
		"portugues":  string(models.PortugueseLanguage),
		"portuguese": string(models.PortugueseLanguage),
		"pt":         string(models.PortugueseLanguage),
		"pt-br":      string(models.PortugueseLanguage),
		"pt_br":      string(models.PortugueseLanguage),
		"ingles":     string(models.EnglishLanguage),
		"english":    string(models.EnglishLanguage),
		"en":         string(models.EnglishLanguage),
		"espanhol":   string(models.SpanishLanguage),
		"espanol":    string(models.SpanishLanguage),
		"spanish":    string(models.SpanishLanguage),
		"castelhano": string(models.SpanishLanguage),
		"es":         string(models.SpanishLanguage),
		"outro":      string(models.OtherLanguage),
		"other":      string(models.OtherLanguage),
	},
}

// NormalizeCondition applies the strict policy: there is no default condition.
func NormalizeCondition(c Cell) (models.Condition, error) {
	v, err := conditionNormalizer.normalize(c)
	if err != nil {
		return "", err
	}
	return models.Condition(v), nil
}

func NormalizeBinding(c Cell) models.Binding {
	v, _ := bindingNormalizer.normalize(c)
	return models.Binding(v)
}

func NormalizeLanguage(c Cell) models.Language {
	v, _ := languageNormalizer.normalize(c)
	return models.Language(v)
}

// foldKey lower-cases, strips accents and collapses inner whitespace.
// Transformers are stateful, so they are built per call.
func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Lower(language.Und).String(folded)
	return strings.Join(strings.Fields(folded), " ")
}

var skuPattern = regexp.MustCompile(`(?i)SKU:?\s*([^\s,.]+)`)

// ExtractSKU splits a "Conservação:Descrição" cell into the SKU it embeds and the
// remaining description. Without a match the whole text is the description.
func ExtractSKU(text string) (sku string, description string) {
	loc := skuPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", strings.TrimSpace(text)
	}

	sku = text[loc[2]:loc[3]]
	if before, _, found := strings.Cut(sku, ","); found {
		sku = before
	}

	rest := text[:loc[0]] + text[loc[1]:]
	description = strings.TrimLeft(rest, " \t\r\n,.;:-")
	description = strings.TrimSpace(description)
	return sku, description
}

// ParseDiscount reads "10%", "12,5" or a numeric cell as a percentage discount.
// Anything unparseable is dropped without error.
func ParseDiscount(c Cell) *models.Discount {
	if c.IsEmpty() {
		return nil
	}

	var value decimal.Decimal
	text := strings.TrimSpace(c.Text)
	switch {
	case c.Kind == NumberCell && !strings.HasSuffix(text, "%"):
		value = decimal.NewFromFloat(c.Number)
	case c.Kind == StringCell || c.Kind == NumberCell:
		// Percent-formatted numeric cells are read from their displayed text.
		s := strings.TrimSpace(strings.TrimSuffix(text, "%"))
		s = strings.Replace(s, ",", ".", 1)
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil
		}
		value = d
	default:
		return nil
	}

	if value.IsNegative() {
		return nil
	}
	return &models.Discount{Type: models.PercentageDiscount, Value: value}
}

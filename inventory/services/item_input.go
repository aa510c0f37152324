package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"book-inventory-backend/db/models"
	"book-inventory-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlexibleList accepts either a JSON array or a single string separated by
// ';' or ','.
type FlexibleList []string

func (l *FlexibleList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = utils.SplitList(single)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected a string or a list of strings")
	}
	out := make([]string, 0, len(many))
	for _, v := range many {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}

type PriceInput struct {
	Sale     decimal.Decimal  `json:"sale"`
	Cost     *decimal.Decimal `json:"cost"`
	Discount *models.Discount `json:"discount"`
}

type StockInput struct {
	Own       int `json:"own" validate:"gte=0"`
	Consigned int `json:"consigned" validate:"gte=0"`
}

// ItemInput is the body of a manual create or update.
type ItemInput struct {
	SKU           string       `json:"sku" validate:"required,max=64"`
	Title         string       `json:"title" validate:"required,max=500"`
	Authors       FlexibleList `json:"authors"`
	Publisher     string       `json:"publisher"`
	Year          *int         `json:"year" validate:"omitempty,gte=0,lte=2100"`
	ISBN          string       `json:"isbn" validate:"omitempty,max=20"`
	PageCount     *int         `json:"page_count" validate:"omitempty,gt=0"`
	Subjects      FlexibleList `json:"subjects"`
	Description   string       `json:"description"`
	CoverImageURL string       `json:"cover_image_url" validate:"omitempty,url"`
	Condition     string       `json:"condition" validate:"required,oneof=new used"`
	Binding       string       `json:"binding" validate:"omitempty,oneof=paperback hardcover spiral other"`
	Language      string       `json:"language" validate:"omitempty,oneof=pt en es other"`
	Status        string       `json:"status" validate:"omitempty,oneof=available reserved sold delisted"`
	Price         PriceInput   `json:"price"`
	Stock         StockInput   `json:"stock"`
	WeightGrams   *int         `json:"weight_grams" validate:"omitempty,gte=0"`
	Label         string       `json:"label"`
}

// priceProblems covers the decimal rules the struct tags cannot express.
func (in *ItemInput) priceProblems() []string {
	var problems []string
	if !in.Price.Sale.IsPositive() {
		problems = append(problems, "price.sale must be greater than zero")
	}
	if in.Price.Cost != nil && in.Price.Cost.IsNegative() {
		problems = append(problems, "price.cost must not be negative")
	}
	if d := in.Price.Discount; d != nil {
		if d.Type != models.PercentageDiscount && d.Type != models.FixedDiscount {
			problems = append(problems, "price.discount.type must be percentage or fixed")
		}
		if d.Value.IsNegative() {
			problems = append(problems, "price.discount.value must not be negative")
		}
	}
	return problems
}

// applyTo copies the input onto item, leaving identity and timestamps alone.
func (in *ItemInput) applyTo(item *models.InventoryItem, userID uuid.UUID) {
	item.SKU = strings.TrimSpace(in.SKU)
	item.Title = strings.TrimSpace(in.Title)
	item.Authors = []string(in.Authors)
	item.Publisher = utils.TrimmedStringPtr(in.Publisher)
	item.Year = in.Year
	item.ISBN = utils.TrimmedStringPtr(in.ISBN)
	item.PageCount = in.PageCount
	item.Subjects = []string(in.Subjects)
	item.Description = utils.TrimmedStringPtr(in.Description)
	item.CoverImageURL = utils.TrimmedStringPtr(in.CoverImageURL)
	item.Condition = models.Condition(in.Condition)
	item.Binding = models.Binding(in.Binding)
	item.Language = models.Language(in.Language)
	if in.Status != "" {
		item.Status = models.ItemStatus(in.Status)
	}
	item.PriceSale = in.Price.Sale
	item.PriceCost = in.Price.Cost
	item.SetDiscount(in.Price.Discount)
	item.StockOwn = in.Stock.Own
	item.StockConsigned = in.Stock.Consigned
	item.WeightGrams = in.WeightGrams
	item.Label = utils.TrimmedStringPtr(in.Label)
	if userID != uuid.Nil {
		item.AddedBy = &userID
	}
	item.ApplyDefaults()
}

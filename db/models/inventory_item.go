package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Condition of a physical exemplar.
type Condition string

const (
	NewCondition  Condition = "new"
	UsedCondition Condition = "used"
)

// Binding is the book finish ("acabamento").
type Binding string

const (
	PaperbackBinding Binding = "paperback"
	HardcoverBinding Binding = "hardcover"
	SpiralBinding    Binding = "spiral"
	OtherBinding     Binding = "other"
)

type Language string

const (
	PortugueseLanguage Language = "pt"
	EnglishLanguage    Language = "en"
	SpanishLanguage    Language = "es"
	OtherLanguage      Language = "other"
)

type ItemStatus string

const (
	AvailableStatus ItemStatus = "available"
	ReservedStatus  ItemStatus = "reserved"
	SoldStatus      ItemStatus = "sold"
	DelistedStatus  ItemStatus = "delisted"
)

type DiscountType string

const (
	PercentageDiscount DiscountType = "percentage"
	FixedDiscount      DiscountType = "fixed"
)

// Discount is an optional markdown on the sale price.
type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Column names of InventoryItem. The reconciliation upsert overwrites only the
// columns a candidate actually provided, so callers pass these around explicitly.
const (
	ColumnTitle          = "title"
	ColumnAuthors        = "authors"
	ColumnPublisher      = "publisher"
	ColumnYear           = "year"
	ColumnISBN           = "isbn"
	ColumnPageCount      = "page_count"
	ColumnSubjects       = "subjects"
	ColumnDescription    = "description"
	ColumnCoverImageURL  = "cover_image_url"
	ColumnCondition      = "condition"
	ColumnBinding        = "binding"
	ColumnLanguage       = "language"
	ColumnPriceSale      = "price_sale"
	ColumnPriceCost      = "price_cost"
	ColumnDiscountType   = "discount_type"
	ColumnDiscountValue  = "discount_value"
	ColumnStockOwn       = "stock_own"
	ColumnStockConsigned = "stock_consigned"
	ColumnWeightGrams    = "weight_grams"
	ColumnStatus         = "status"
	ColumnLabel          = "label"
	ColumnAddedBy        = "added_by"
	ColumnUpdatedAt      = "updated_at"
)

// InventoryItem is one physical exemplar owned by exactly one tenant.
// (TenantID, SKU) is unique.
type InventoryItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_tenant_sku,priority:1" json:"tenant_id"`
	SKU      string    `gorm:"not null;uniqueIndex:idx_inventory_tenant_sku,priority:2" json:"sku"`

	// Book metadata
	Title         string                      `gorm:"not null;index" json:"title"`
	Authors       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"authors"`
	Publisher     *string                     `json:"publisher"`
	Year          *int                        `json:"year"`
	ISBN          *string                     `gorm:"index" json:"isbn"`
	PageCount     *int                        `json:"page_count"`
	Subjects      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"subjects"`
	Description   *string                     `gorm:"type:text" json:"description"`
	CoverImageURL *string                     `json:"cover_image_url"`

	// Exemplar
	Condition      Condition        `gorm:"type:varchar(10);not null;check:chk_inventory_condition,condition IN ('new','used')" json:"condition"`
	Binding        Binding          `gorm:"type:varchar(20);not null;default:'other';check:chk_inventory_binding,binding IN ('paperback','hardcover','spiral','other')" json:"binding"`
	Language       Language         `gorm:"type:varchar(10);not null;default:'other';check:chk_inventory_language,language IN ('pt','en','es','other')" json:"language"`
	PriceSale      decimal.Decimal  `gorm:"type:decimal(12,2);not null;check:chk_inventory_price_sale,price_sale > 0" json:"price_sale"`
	PriceCost      *decimal.Decimal `gorm:"type:decimal(12,2);check:chk_inventory_price_cost,price_cost IS NULL OR price_cost >= 0" json:"price_cost"`
	DiscountType   *DiscountType    `gorm:"type:varchar(12)" json:"discount_type"`
	DiscountValue  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_value"`
	StockOwn       int              `gorm:"not null;default:0;check:chk_inventory_stock_own,stock_own >= 0" json:"stock_own"`
	StockConsigned int              `gorm:"not null;default:0;check:chk_inventory_stock_consigned,stock_consigned >= 0" json:"stock_consigned"`
	WeightGrams    *int             `json:"weight_grams"`
	Status         ItemStatus       `gorm:"type:varchar(12);not null;default:'available';index;check:chk_inventory_status,status IN ('available','reserved','sold','delisted')" json:"status"`
	Label          *string          `json:"label"`
	AddedBy        *uuid.UUID       `gorm:"type:uuid" json:"added_by"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ItemValidationError lists every schema problem found on an item.
type ItemValidationError struct {
	Problems []string
}

func (e *ItemValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, ", ")
}

// Discount returns the discount as a value, nil when none is set.
func (i *InventoryItem) Discount() *Discount {
	if i.DiscountType == nil || i.DiscountValue == nil {
		return nil
	}
	return &Discount{Type: *i.DiscountType, Value: *i.DiscountValue}
}

// SetDiscount stores d (nil clears it).
func (i *InventoryItem) SetDiscount(d *Discount) {
	if d == nil {
		i.DiscountType, i.DiscountValue = nil, nil
		return
	}
	t, v := d.Type, d.Value
	i.DiscountType, i.DiscountValue = &t, &v
}

// ApplyDefaults fills the values a freshly inserted item gets when none were given.
func (i *InventoryItem) ApplyDefaults() {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = AvailableStatus
	}
	if i.Binding == "" {
		i.Binding = OtherBinding
	}
	if i.Language == "" {
		i.Language = OtherLanguage
	}
	if i.Authors == nil {
		i.Authors = datatypes.JSONSlice[string]{}
	}
	if i.Subjects == nil {
		i.Subjects = datatypes.JSONSlice[string]{}
	}
}

// Validate enforces the write-time schema: required fields, enums and numeric bounds.
func (i *InventoryItem) Validate() error {
	var problems []string

	if i.TenantID == uuid.Nil {
		problems = append(problems, "tenant is required")
	}
	if strings.TrimSpace(i.SKU) == "" {
		problems = append(problems, "sku is required")
	}
	if strings.TrimSpace(i.Title) == "" {
		problems = append(problems, "title is required")
	}
	if !IsValidCondition(i.Condition) {
		problems = append(problems, fmt.Sprintf("condition %q is not one of new, used", i.Condition))
	}
	if i.Binding != "" && !IsValidBinding(i.Binding) {
		problems = append(problems, fmt.Sprintf("binding %q is not supported", i.Binding))
	}
	if i.Language != "" && !IsValidLanguage(i.Language) {
		problems = append(problems, fmt.Sprintf("language %q is not supported", i.Language))
	}
	if i.Status != "" && !IsValidStatus(i.Status) {
		problems = append(problems, fmt.Sprintf("status %q is not supported", i.Status))
	}
	if !i.PriceSale.IsPositive() {
		problems = append(problems, "sale price must be greater than zero")
	}
	if i.PriceCost != nil && i.PriceCost.IsNegative() {
		problems = append(problems, "cost price cannot be negative")
	}
	if i.DiscountType != nil && *i.DiscountType != PercentageDiscount && *i.DiscountType != FixedDiscount {
		problems = append(problems, fmt.Sprintf("discount type %q is not supported", *i.DiscountType))
	}
	if i.StockOwn < 0 {
		problems = append(problems, "own stock cannot be negative")
	}
	if i.StockConsigned < 0 {
		problems = append(problems, "consigned stock cannot be negative")
	}

	if len(problems) > 0 {
		return &ItemValidationError{Problems: problems}
	}
	return nil
}

// BeforeSave runs the schema validation on every gorm write, upserts included.
func (i *InventoryItem) BeforeSave(tx *gorm.DB) error {
	return i.Validate()
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func IsValidCondition(c Condition) bool {
	return c == NewCondition || c == UsedCondition
}

func IsValidBinding(b Binding) bool {
	switch b {
	case PaperbackBinding, HardcoverBinding, SpiralBinding, OtherBinding:
		return true
	}
	return false
}

func IsValidLanguage(l Language) bool {
	switch l {
	case PortugueseLanguage, EnglishLanguage, SpanishLanguage, OtherLanguage:
		return true
	}
	return false
}

func IsValidStatus(s ItemStatus) bool {
	switch s {
	case AvailableStatus, ReservedStatus, SoldStatus, DelistedStatus:
		return true
	default:
		return false
	}
}

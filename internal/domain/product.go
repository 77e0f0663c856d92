package domain

import (
	"time"
)

// PricingMethod is how a product's current price is meant to be derived.
// The value is stored only; nothing in this service computes prices.
type PricingMethod string

const (
	PricingFixed   PricingMethod = "fixed"
	PricingDynamic PricingMethod = "dynamic"
	PricingAI      PricingMethod = "ai"
)

// Valid reports whether m is one of the known pricing methods
func (m PricingMethod) Valid() bool {
	switch m {
	case PricingFixed, PricingDynamic, PricingAI:
		return true
	}
	return false
}

// DefaultUnit is applied when a product is created without a unit
const DefaultUnit = "kg"

// Product represents a product in the catalog
type Product struct {
	ID            int64         `json:"id" db:"id"`
	Name          string        `json:"name" db:"name"`
	Description   *string       `json:"description" db:"description"`
	CategoryID    int64         `json:"categoryId" db:"category_id"`
	BasePrice     Money         `json:"basePrice" db:"base_price"`
	CurrentPrice  Money         `json:"currentPrice" db:"current_price"`
	CostPrice     Money         `json:"costPrice" db:"cost_price"`
	Stock         int           `json:"stock" db:"stock"`
	InitialStock  int           `json:"initialStock" db:"initial_stock"`
	Unit          string        `json:"unit" db:"unit"`
	ExpiryDate    Date          `json:"expiryDate" db:"expiry_date"`
	ShelfLife     int           `json:"shelfLife" db:"shelf_life"`
	PricingMethod PricingMethod `json:"pricingMethod" db:"pricing_method"`
	Image         *string       `json:"image" db:"image"`
	ImagePublicID *string       `json:"imagePublicId" db:"image_public_id"`
	IsActive      bool          `json:"isActive" db:"is_active"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
	Category      *CategoryRef  `json:"category,omitempty"`
}

// ProductFilter narrows a product listing. Nil fields do not filter;
// set fields are combined with AND.
type ProductFilter struct {
	CategoryID    *int64
	PricingMethod *PricingMethod
	IsActive      *bool
	Search        string
}

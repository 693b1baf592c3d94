package models

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical pharmacy location customers can pick orders up from.
type Branch struct {
	BaseModel
	Name        string  `json:"name"`
	AddressLine string  `json:"address_line"`
	City        string  `json:"city"`
	Phone       string  `json:"phone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	IsActive    bool    `json:"is_active"`
}

// Product is a sellable pharmacy item. Pricing lives on the presentations.
type Product struct {
	BaseModel
	Slug             string                `gorm:"uniqueIndex" json:"slug"`
	Name             string                `json:"name"`
	ShortDescription string                `json:"short_description"`
	Laboratory       string                `json:"laboratory"`
	ActiveIngredient string                `json:"active_ingredient"`
	RequiresRx       bool                  `json:"requires_rx"`
	HeroImage        string                `json:"hero_image"`
	CategoryID       *uuid.UUID            `gorm:"type:uuid" json:"category_id"`
	Category         *Category             `json:"category,omitempty"`
	Presentations    []ProductPresentation `json:"presentations,omitempty"`
}

// ProductPresentation is one purchasable form of a product (box of 10,
// bottle of 120ml, ...). Prices are stored in minor currency units.
type ProductPresentation struct {
	BaseModel
	ProductID       uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	SKU             string    `json:"sku"`
	Label           string    `json:"label"`
	UnitPrice       float64   `json:"unit_price"`
	DiscountPercent float64   `json:"discount_percent"`
	Stock           int       `json:"stock"`
	Image           string    `json:"image"`
}

// Category groups products for browsing.
type Category struct {
	BaseModel
	Name     string    `json:"name"`
	Slug     string    `gorm:"uniqueIndex" json:"slug"`
	Image    string    `json:"image"`
	Products []Product `json:"products,omitempty"`
}

// Coupon is a server-owned discount code. Discount is an absolute amount in
// minor currency units, applied after the line-level discount.
type Coupon struct {
	BaseModel
	Code           string    `gorm:"uniqueIndex" json:"code"`
	Discount       float64   `json:"discount"`
	ExpirationDate time.Time `json:"expiration_date"`
	IsActive       bool      `json:"is_active"`
}

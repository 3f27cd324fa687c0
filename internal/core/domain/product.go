package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a merchant-scoped catalog entry.
type Product struct {
	ID             uuid.UUID `json:"id"`
	MerchantID     uuid.UUID `json:"merchantId"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	UnitPrice      int64     `json:"unitPrice"`
	CostPrice      int64     `json:"costPrice"`
	StockQuantity  int       `json:"stockQuantity"`
	MinStockLevel  int       `json:"minStockLevel"`
	IsActive       bool      `json:"isActive"`
	TaxRate        float64   `json:"taxRate"`
	Dimensions     string    `json:"dimensions"`
	Weight         float64   `json:"weight"`
	ImageURL       string    `json:"imageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// IsLowStock reports whether the product has fallen at or below its reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

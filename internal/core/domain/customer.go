package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionMethod records how a customer record came into being.
type ExtractionMethod string

const (
	ExtractionMethodManual ExtractionMethod = "manual"
	ExtractionMethodAuto   ExtractionMethod = "auto"
)

// Customer is a merchant-scoped contact resolved by CustomerMatcher.
type Customer struct {
	ID               uuid.UUID        `json:"id"`
	MerchantID       uuid.UUID        `json:"merchantId"`
	Name             string           `json:"name"`
	Email            *string          `json:"email,omitempty"`
	Phone            *string          `json:"phone,omitempty"`
	Address          string           `json:"address"`
	FirstInvoiceDate *time.Time       `json:"firstInvoiceDate,omitempty"`
	LastInvoiceDate  *time.Time       `json:"lastInvoiceDate,omitempty"`
	InvoiceCount     int              `json:"invoiceCount"`
	TotalSpent       int64            `json:"totalSpent"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// CustomerAggregate decorates a Customer with derived cross-entity statistics,
// computed by Store.SearchCustomers in a single round-trip.
type CustomerAggregate struct {
	Customer
	OrderCount    int        `json:"orderCount"`
	LastOrderDate *time.Time `json:"lastOrderDate,omitempty"`
}

// CustomerMatch is the input shape CustomerMatcher resolves against a merchant's customers.
type CustomerMatch struct {
	Name  string
	Email string
	Phone string
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem mirrors an InvoiceItem at the point the order was created.
type OrderItem struct {
	ProductName string  `json:"productName"`
	SKU         string  `json:"sku"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   int64   `json:"unitPrice"`
	LineTotal   int64   `json:"lineTotal"`
}

// Order is created automatically the moment an invoice is fully paid.
// At most one Order may exist per SourceInvoiceID; InvoiceLifecycle enforces
// this idempotently so a retried webhook or a racing reconciliation sweep
// never produces a duplicate.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	MerchantID      uuid.UUID   `json:"merchantId"`
	OrderNumber     string      `json:"orderNumber"`
	SourceInvoiceID uuid.UUID   `json:"sourceInvoiceId"`
	CustomerID      *uuid.UUID  `json:"customerId,omitempty"`
	CustomerName    string      `json:"customerName"`
	GrandTotal      int64       `json:"grandTotal"`
	Currency        string      `json:"currency"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

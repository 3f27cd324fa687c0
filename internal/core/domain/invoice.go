package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus is the top-level lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusDPPaid    InvoiceStatus = "dp_paid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// PaymentStage tracks which leg of a (possibly scheduled) payment is outstanding.
type PaymentStage string

const (
	PaymentStageFull         PaymentStage = "full_payment"
	PaymentStageDownPayment  PaymentStage = "down_payment"
	PaymentStageFinalPayment PaymentStage = "final_payment"
	PaymentStageCompleted    PaymentStage = "completed"
)

// PaymentStatus is the customer-facing payment progress indicator.
type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "pending"
	PaymentStatusConfirmationPending PaymentStatus = "confirmation_pending"
	PaymentStatusPartial             PaymentStatus = "partial"
	PaymentStatusPaid                PaymentStatus = "paid"
)

// ConfirmationStatus is the merchant review state of an uploaded payment proof.
type ConfirmationStatus string

const (
	ConfirmationStatusNone     ConfirmationStatus = ""
	ConfirmationStatusPending  ConfirmationStatus = "pending"
	ConfirmationStatusApproved ConfirmationStatus = "approved"
	ConfirmationStatusRejected ConfirmationStatus = "rejected"
)

// InvoiceItem is a single billed line.
type InvoiceItem struct {
	ProductName string  `json:"productName"`
	SKU         string  `json:"sku"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   int64   `json:"unitPrice"`
	LineTotal   int64   `json:"lineTotal"`
	TaxRate     float64 `json:"taxRate"`
	TaxAmount   int64   `json:"taxAmount"`
}

// ScheduleLeg is one half of a down-payment schedule.
type ScheduleLeg struct {
	Amount     int64      `json:"amount"`
	Percentage float64    `json:"percentage,omitempty"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Status     string     `json:"status"` // "pending" | "paid"
	PaidDate   *time.Time `json:"paidDate,omitempty"`
}

// PaymentSchedule describes a down-payment / remaining-balance split.
// ScheduleType is always "down_payment" when present; a nil PaymentSchedule
// means the invoice is billed as a single full payment.
type PaymentSchedule struct {
	ScheduleType     string      `json:"scheduleType"`
	DownPayment      ScheduleLeg `json:"downPayment"`
	RemainingBalance ScheduleLeg `json:"remainingBalance"`
}

// Invoice is the central billing document and state machine subject.
type Invoice struct {
	ID            uuid.UUID `json:"id"`
	MerchantID    uuid.UUID `json:"merchantId"`
	InvoiceNumber string    `json:"invoiceNumber"`

	// Customer snapshot, taken at creation time and never back-filled.
	CustomerID      *uuid.UUID `json:"customerId,omitempty"`
	CustomerName    string     `json:"customerName"`
	CustomerEmail   string     `json:"customerEmail"`
	CustomerPhone   string     `json:"customerPhone"`
	CustomerAddress string     `json:"customerAddress"`

	// Merchant snapshot, taken at creation time and never back-filled.
	MerchantSnapshotName  string `json:"merchantName"`
	MerchantSnapshotEmail string `json:"merchantEmail"`

	InvoiceDate      time.Time  `json:"invoiceDate"`
	DueDate          time.Time  `json:"dueDate"`
	OriginalDueDate  time.Time  `json:"originalDueDate"`

	Status        InvoiceStatus `json:"status"`
	PaymentStage  PaymentStage  `json:"paymentStage"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`

	Subtotal     int64  `json:"subtotal"`
	TaxAmount    int64  `json:"taxAmount"`
	ShippingCost int64  `json:"shippingCost"`
	Discount     int64  `json:"discount"`
	GrandTotal   int64  `json:"grandTotal"`
	Currency     string `json:"currency"`

	PaymentTerms string        `json:"paymentTerms"`
	Notes        string        `json:"notes"`
	Items        []InvoiceItem `json:"items"`

	PaymentSchedule *PaymentSchedule `json:"paymentSchedule,omitempty"`

	CustomerToken     string  `json:"customerToken"`
	FinalPaymentToken *string `json:"finalPaymentToken,omitempty"`

	PaymentConfirmationFile  *string             `json:"paymentConfirmationFile,omitempty"`
	PaymentConfirmationNotes *string             `json:"paymentConfirmationNotes,omitempty"`
	PaymentConfirmationDate  *time.Time          `json:"paymentConfirmationDate,omitempty"`
	ConfirmationStatus       ConfirmationStatus  `json:"confirmationStatus,omitempty"`
	MerchantNotes            *string             `json:"merchantNotes,omitempty"`
	ReviewedDate             *time.Time          `json:"reviewedDate,omitempty"`

	SentAt                     *time.Time `json:"sentAt,omitempty"`
	PaidAt                     *time.Time `json:"paidAt,omitempty"`
	DPConfirmedDate            *time.Time `json:"dpConfirmedDate,omitempty"`
	FinalPaymentConfirmedDate  *time.Time `json:"finalPaymentConfirmedDate,omitempty"`

	// Fingerprint used for lost-update detection: a caller reads (Status, UpdatedAt)
	// and must present the same pair back to Store.UpdateInvoiceStatus.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsTerminal reports whether no further status transition is permitted.
func (i *Invoice) IsTerminal() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled
}

// IsEditable reports whether the invoice may still be edited in place.
// Per spec: draft or sent only; dp_paid and beyond are immutable.
func (i *Invoice) IsEditable() bool {
	return i.Status == InvoiceStatusDraft || i.Status == InvoiceStatusSent
}

// HasDownPayment reports whether this invoice was scheduled with a DP split.
func (i *Invoice) HasDownPayment() bool {
	return i.PaymentSchedule != nil && i.PaymentSchedule.ScheduleType == "down_payment"
}

// Fingerprint returns the optimistic-concurrency token for this invoice:
// a caller presents the same (status, updatedAt) pair back to the Store on
// write; a mismatch means another writer raced ahead and the caller must retry.
func (i *Invoice) Fingerprint() (InvoiceStatus, time.Time) {
	return i.Status, i.UpdatedAt
}

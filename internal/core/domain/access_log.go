package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccessAction identifies what a customer-portal token access was used for.
type AccessAction string

const (
	AccessActionView             AccessAction = "view"
	AccessActionUploadConfirm    AccessAction = "upload_confirmation"
	AccessActionFinalPaymentView AccessAction = "final_payment_view"
)

// AccessLog records a single customer-portal access against a token-gated
// invoice route, for merchant-facing audit and abuse detection.
type AccessLog struct {
	ID        uuid.UUID    `json:"id"`
	InvoiceID uuid.UUID    `json:"invoiceId"`
	Action    AccessAction `json:"action"`
	IPAddress string       `json:"ipAddress"`
	UserAgent string       `json:"userAgent"`
	AccessedAt time.Time   `json:"accessedAt"`
}

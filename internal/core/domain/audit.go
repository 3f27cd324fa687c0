package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionRegister          AuditAction = "REGISTER"
	AuditActionLogin             AuditAction = "LOGIN"
	AuditActionPasswordReset     AuditAction = "PASSWORD_RESET"
	AuditActionPasswordChange    AuditAction = "PASSWORD_CHANGE"
	AuditActionProfileUpdate     AuditAction = "PROFILE_UPDATE"
	AuditActionInvoiceCreate     AuditAction = "INVOICE_CREATE"
	AuditActionInvoiceSend       AuditAction = "INVOICE_SEND"
	AuditActionInvoiceCancel     AuditAction = "INVOICE_CANCEL"
	AuditActionPaymentConfirm    AuditAction = "PAYMENT_CONFIRM"
	AuditActionPaymentReject     AuditAction = "PAYMENT_REJECT"
	AuditActionOrderSync         AuditAction = "ORDER_SYNC"
	AuditActionPaymentMethodSave AuditAction = "PAYMENT_METHOD_SAVE"
	AuditActionLogoUpload        AuditAction = "LOGO_UPLOAD"
	AuditActionLogoRemove        AuditAction = "LOGO_REMOVE"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	MerchantID   *uuid.UUID  `json:"merchant_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}

package middleware

import (
	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations,
// mapping HTTP method+path to an audit action.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var merchantID *uuid.UUID
		if mid, exists := c.Get(CtxMerchantID); exists {
			if id, ok := mid.(uuid.UUID); ok {
				merchantID = &id
			}
		}

		details := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}

		auditSvc.Log(c.Request.Context(), merchantID, action, resourceType, c.Param("id"), c.ClientIP(), details)
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/auth/register" && method == "POST":
		return domain.AuditActionRegister, "merchant"
	case path == "/api/v1/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	case path == "/api/v1/auth/password-reset" && method == "POST":
		return domain.AuditActionPasswordReset, "merchant"
	case path == "/api/v1/auth/change-password" && method == "POST":
		return domain.AuditActionPasswordChange, "merchant"
	case path == "/api/v1/merchants/me" && method == "PUT":
		return domain.AuditActionProfileUpdate, "merchant"
	case path == "/api/v1/invoices" && method == "POST":
		return domain.AuditActionInvoiceCreate, "invoice"
	case (method == "POST" || method == "PUT") && matchesInvoiceSubpath(path, "send"):
		return domain.AuditActionInvoiceSend, "invoice"
	case (method == "POST" || method == "PUT") && matchesInvoiceSubpath(path, "cancel"):
		return domain.AuditActionInvoiceCancel, "invoice"
	case (method == "POST" || method == "PUT") && matchesInvoiceSubpath(path, "approve-payment"):
		return domain.AuditActionPaymentConfirm, "invoice"
	case (method == "POST" || method == "PUT") && matchesInvoiceSubpath(path, "reject-payment"):
		return domain.AuditActionPaymentReject, "invoice"
	case path == "/api/v1/orders/sync" && method == "POST":
		return domain.AuditActionOrderSync, "order"
	case path == "/api/v1/business/payment-methods" && method == "POST":
		return domain.AuditActionPaymentMethodSave, "payment_method"
	case path == "/api/v1/business/logo" && method == "POST":
		return domain.AuditActionLogoUpload, "business_settings"
	case path == "/api/v1/business/logo" && method == "DELETE":
		return domain.AuditActionLogoRemove, "business_settings"
	}
	return "", ""
}

// matchesInvoiceSubpath checks whether path is /api/v1/invoices/{id}/<suffix>.
func matchesInvoiceSubpath(path, suffix string) bool {
	prefix := "/api/v1/invoices/"
	if len(path) <= len(prefix) {
		return false
	}
	return len(path) > len(prefix)+len(suffix) && path[len(path)-len(suffix):] == suffix
}

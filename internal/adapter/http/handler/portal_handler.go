package handler

import (
	"invoicing-backend/internal/adapter/http/dto"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"
	"invoicing-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// PortalHandler handles the unauthenticated, token-gated customer-facing
// endpoints: viewing an invoice and submitting proof of payment.
type PortalHandler struct {
	lifecycle ports.InvoiceLifecycleService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(lifecycle ports.InvoiceLifecycleService) *PortalHandler {
	return &PortalHandler{lifecycle: lifecycle}
}

// GetByCustomerToken handles GET /api/v1/portal/invoices/:token.
func (h *PortalHandler) GetByCustomerToken(c *gin.Context) {
	inv, err := h.lifecycle.GetByCustomerToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// GetByFinalPaymentToken handles GET /api/v1/portal/final-payment/:token.
func (h *PortalHandler) GetByFinalPaymentToken(c *gin.Context) {
	inv, err := h.lifecycle.GetByFinalPaymentToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// SubmitPaymentConfirmation handles POST /api/v1/portal/invoices/:token/payment-confirmation.
func (h *PortalHandler) SubmitPaymentConfirmation(c *gin.Context) {
	var req dto.PaymentConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	inv, err := h.lifecycle.SubmitPaymentConfirmation(c.Request.Context(), c.Param("token"), ports.PaymentConfirmationRequest{
		FileURL: req.FileURL,
		Notes:   req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

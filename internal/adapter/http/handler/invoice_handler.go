package handler

import (
	"net/http"

	"invoicing-backend/internal/adapter/http/dto"
	"invoicing-backend/internal/adapter/http/middleware"
	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"
	"invoicing-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles merchant-facing invoice lifecycle endpoints.
type InvoiceHandler struct {
	lifecycle ports.InvoiceLifecycleService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(lifecycle ports.InvoiceLifecycleService) *InvoiceHandler {
	return &InvoiceHandler{lifecycle: lifecycle}
}

func toPreviewRequest(req dto.InvoiceRequest) (ports.InvoicePreviewRequest, error) {
	items := make([]ports.InvoiceLineInput, 0, len(req.Items))
	for _, it := range req.Items {
		line := ports.InvoiceLineInput{
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
		if it.ProductID != nil {
			id, err := uuid.Parse(*it.ProductID)
			if err != nil {
				return ports.InvoicePreviewRequest{}, apperror.Validation("invalid productId")
			}
			line.ProductID = &id
		}
		items = append(items, line)
	}

	return ports.InvoicePreviewRequest{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		DueDate:         req.DueDate,
		PaymentTerms:    req.PaymentTerms,
		Notes:           req.Notes,
		Items:           items,
		ShippingCost:            req.ShippingCost,
		Discount:                req.Discount,
		DownPaymentPct:          req.DownPaymentPct,
		RemainingBalanceDueDate: req.RemainingBalanceDueDate,
	}, nil
}

func merchantIDFromCtx(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func invoiceIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// Preview handles POST /api/v1/invoices/preview.
func (h *InvoiceHandler) Preview(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	previewReq, err := toPreviewRequest(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	inv, err := h.lifecycle.Preview(c.Request.Context(), merchantID, previewReq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// Create handles POST /api/v1/invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	previewReq, err := toPreviewRequest(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	inv, err := h.lifecycle.Create(c.Request.Context(), merchantID, previewReq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inv)
}

// Send handles POST /api/v1/invoices/:id/send.
func (h *InvoiceHandler) Send(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	invoiceID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid invoice id"))
		return
	}

	inv, err := h.lifecycle.Send(c.Request.Context(), merchantID, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// Cancel handles POST /api/v1/invoices/:id/cancel.
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	invoiceID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid invoice id"))
		return
	}

	inv, err := h.lifecycle.Cancel(c.Request.Context(), merchantID, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// Get handles GET /api/v1/invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	invoiceID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid invoice id"))
		return
	}

	inv, err := h.lifecycle.Get(c.Request.Context(), merchantID, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// GetByNumber handles GET /api/v1/invoices/number/:number.
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	inv, err := h.lifecycle.GetByInvoiceNumber(c.Request.Context(), merchantID, c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// List handles GET /api/v1/invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := parsePageParams(c.Query("page"), c.Query("pageSize"))
	params := ports.InvoiceListParams{
		MerchantID: merchantID,
		Page:       page,
		PageSize:   pageSize,
	}
	if s := c.Query("status"); s != "" {
		st := domain.InvoiceStatus(s)
		params.Status = &st
	}
	if cid := c.Query("customerId"); cid != "" {
		if id, err := uuid.Parse(cid); err == nil {
			params.CustomerID = &id
		}
	}

	invoices, total, err := h.lifecycle.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PaginatedResponse{
		Items:      invoices,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}

// ApprovePaymentConfirmation handles POST /api/v1/invoices/:id/approve-payment.
func (h *InvoiceHandler) ApprovePaymentConfirmation(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	invoiceID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid invoice id"))
		return
	}

	var req dto.ReviewRequest
	_ = c.ShouldBindJSON(&req)
	dto.SanitizeStruct(&req)

	inv, err := h.lifecycle.ApprovePaymentConfirmation(c.Request.Context(), merchantID, invoiceID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// RejectPaymentConfirmation handles POST /api/v1/invoices/:id/reject-payment.
func (h *InvoiceHandler) RejectPaymentConfirmation(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	invoiceID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid invoice id"))
		return
	}

	var req dto.ReviewRequest
	_ = c.ShouldBindJSON(&req)
	dto.SanitizeStruct(&req)

	inv, err := h.lifecycle.RejectPaymentConfirmation(c.Request.Context(), merchantID, invoiceID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// ConfirmDownPayment handles POST /api/v1/invoices/:id/confirm-down-payment.
func (h *InvoiceHandler) ConfirmDownPayment(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	invoiceID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid invoice id"))
		return
	}

	inv, err := h.lifecycle.ConfirmDownPayment(c.Request.Context(), merchantID, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inv)
}

// GatewayWebhook handles POST /api/v1/webhooks/gateway — the inbound
// payment-gateway notification. Authenticated by HMAC signature, not JWT.
func (h *InvoiceHandler) GatewayWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, apperror.Validation("unreadable payload"))
		return
	}
	signature := c.GetHeader("X-Gateway-Signature")

	if err := h.lifecycle.HandleGatewayWebhook(c.Request.Context(), payload, signature); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

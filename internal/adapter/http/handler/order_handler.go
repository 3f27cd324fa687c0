package handler

import (
	"invoicing-backend/internal/adapter/http/dto"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"
	"invoicing-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderHandler handles merchant-facing order query endpoints.
type OrderHandler struct {
	orderSvc  ports.OrderService
	lifecycle ports.InvoiceLifecycleService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc ports.OrderService, lifecycle ports.InvoiceLifecycleService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc, lifecycle: lifecycle}
}

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	orderID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	order, err := h.orderSvc.Get(c.Request.Context(), merchantID, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, order)
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := parsePageParams(c.Query("page"), c.Query("pageSize"))
	orders, total, err := h.orderSvc.List(c.Request.Context(), merchantID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PaginatedResponse{
		Items:      orders,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}

// Sync handles POST /api/v1/orders/sync — reconciles any paid invoice that
// has not yet produced an order, for merchants recovering from a missed
// webhook delivery.
func (h *OrderHandler) Sync(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	count, err := h.lifecycle.SyncPaidInvoicesToOrders(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"synced": count})
}

package handler

import (
	"invoicing-backend/internal/adapter/http/dto"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"
	"invoicing-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// CustomerHandler handles merchant-facing customer query endpoints.
type CustomerHandler struct {
	customerSvc ports.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerSvc ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerSvc: customerSvc}
}

// Search handles GET /api/v1/customers.
func (h *CustomerHandler) Search(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := parsePageParams(c.Query("page"), c.Query("pageSize"))
	customers, total, err := h.customerSvc.Search(c.Request.Context(), ports.CustomerSearchParams{
		MerchantID: merchantID,
		Query:      c.Query("q"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PaginatedResponse{
		Items:      customers,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}

// Get handles GET /api/v1/customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	customerID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer id"))
		return
	}

	customer, err := h.customerSvc.Get(c.Request.Context(), merchantID, customerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, customer)
}

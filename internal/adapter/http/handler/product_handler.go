package handler

import (
	"invoicing-backend/internal/adapter/http/dto"
	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"
	"invoicing-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProductHandler handles merchant catalog endpoints.
type ProductHandler struct {
	productSvc ports.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productSvc ports.ProductService) *ProductHandler {
	return &ProductHandler{productSvc: productSvc}
}

func productFromRequest(req dto.ProductRequest) *domain.Product {
	return &domain.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Category:      req.Category,
		UnitPrice:     req.UnitPrice,
		CostPrice:     req.CostPrice,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
		IsActive:      req.IsActive,
		TaxRate:       req.TaxRate,
		Dimensions:    req.Dimensions,
		Weight:        req.Weight,
		ImageURL:      req.ImageURL,
	}
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	product := productFromRequest(req)
	product.MerchantID = merchantID

	if err := h.productSvc.Create(c.Request.Context(), product); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, product)
}

// Update handles PUT /api/v1/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	productID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid product id"))
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	product := productFromRequest(req)
	product.ID = productID
	product.MerchantID = merchantID

	if err := h.productSvc.Update(c.Request.Context(), product); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, product)
}

// Delete handles DELETE /api/v1/products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	productID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid product id"))
		return
	}

	if err := h.productSvc.Delete(c.Request.Context(), merchantID, productID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "product deleted"})
}

// Get handles GET /api/v1/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	productID, err := invoiceIDParam(c)
	if err != nil {
		response.Error(c, apperror.Validation("invalid product id"))
		return
	}

	product, err := h.productSvc.Get(c.Request.Context(), merchantID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, product)
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(c *gin.Context) {
	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := parsePageParams(c.Query("page"), c.Query("pageSize"))
	params := ports.ProductListParams{
		MerchantID: merchantID,
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		ActiveOnly: c.Query("activeOnly") == "true",
		Page:       page,
		PageSize:   pageSize,
	}

	products, total, err := h.productSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PaginatedResponse{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}

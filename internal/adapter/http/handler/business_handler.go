package handler

import (
	"io"

	"invoicing-backend/internal/adapter/http/dto"
	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"
	"invoicing-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// BusinessHandler handles merchant business-settings, branding and
// payment-method configuration endpoints.
type BusinessHandler struct {
	profileSvc ports.MerchantProfileService
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(profileSvc ports.MerchantProfileService) *BusinessHandler {
	return &BusinessHandler{profileSvc: profileSvc}
}

// unconfigured reports whether the underlying blob storage credentials are
// missing, in which case branding/logo/settings endpoints have nothing to
// call into.
func (h *BusinessHandler) unconfigured(c *gin.Context) bool {
	if h.profileSvc != nil {
		return false
	}
	response.Error(c, apperror.ErrUpstream("blob storage", nil))
	return true
}

// GetSettings handles GET /api/v1/business/settings.
func (h *BusinessHandler) GetSettings(c *gin.Context) {
	if h.unconfigured(c) {
		return
	}

	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	settings, err := h.profileSvc.GetSettings(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// UpdateTax handles PUT /api/v1/business/tax.
func (h *BusinessHandler) UpdateTax(c *gin.Context) {
	if h.unconfigured(c) {
		return
	}

	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TaxConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	settings, err := h.profileSvc.UpdateTax(c.Request.Context(), merchantID, domain.TaxConfig{
		Enabled: req.Enabled,
		Rate:    req.Rate,
		Name:    req.Label,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// UpdateBranding handles PUT /api/v1/business/branding.
func (h *BusinessHandler) UpdateBranding(c *gin.Context) {
	if h.unconfigured(c) {
		return
	}

	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.BrandingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	settings, err := h.profileSvc.UpdateBranding(c.Request.Context(), merchantID, domain.BrandingConfig{
		CustomHeaderText: req.FooterText,
		CustomHeaderBgColor: req.PrimaryColor,
		CustomFooterBgColor: req.AccentColor,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// maxLogoSize bounds an uploaded logo to 5 MiB before it reaches BlobService.
const maxLogoSize = 5 << 20

// UploadLogo handles POST /api/v1/business/logo (multipart/form-data, field "logo").
func (h *BusinessHandler) UploadLogo(c *gin.Context) {
	if h.unconfigured(c) {
		return
	}

	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		response.Error(c, apperror.Validation("logo file is required"))
		return
	}
	if fileHeader.Size > maxLogoSize {
		response.Error(c, apperror.Validation("logo exceeds the 5MB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxLogoSize+1))
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	logo, err := h.profileSvc.UploadLogo(c.Request.Context(), merchantID, fileHeader.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, logo)
}

// RemoveLogo handles DELETE /api/v1/business/logo.
func (h *BusinessHandler) RemoveLogo(c *gin.Context) {
	if h.unconfigured(c) {
		return
	}

	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.profileSvc.RemoveLogo(c.Request.Context(), merchantID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "logo removed"})
}

// SavePaymentMethod handles POST /api/v1/business/payment-methods.
func (h *BusinessHandler) SavePaymentMethod(c *gin.Context) {
	if h.unconfigured(c) {
		return
	}

	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	cfg := domain.PaymentMethodConfig{
		MerchantID: merchantID,
		MethodType: domain.PaymentMethodType(req.MethodType),
		Enabled:    req.Enabled,
		Config:     req.Config,
	}

	if err := h.profileSvc.SavePaymentMethod(c.Request.Context(), cfg); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cfg)
}

// ListPaymentMethods handles GET /api/v1/business/payment-methods.
func (h *BusinessHandler) ListPaymentMethods(c *gin.Context) {
	if h.unconfigured(c) {
		return
	}

	merchantID, ok := merchantIDFromCtx(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	methods, err := h.profileSvc.ListPaymentMethods(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"paymentMethods": methods})
}

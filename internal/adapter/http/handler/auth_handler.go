package handler

import (
	"net/http"

	"invoicing-backend/internal/adapter/http/dto"
	"invoicing-backend/internal/adapter/http/middleware"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"
	"invoicing-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles merchant authentication and account endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.authSvc.Register(c.Request.Context(), ports.RegisterRequest{
		Email:        req.Email,
		Password:     req.Password,
		BusinessName: req.BusinessName,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.MerchantProfile{
		ID:            merchant.ID.String(),
		Email:         merchant.Email,
		BusinessName:  merchant.BusinessName,
		ContactName:   merchant.ContactName,
		ContactPhone:  merchant.ContactPhone,
		EmailVerified: merchant.EmailVerified,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	token, expiresAt, merchant, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Merchant: dto.MerchantProfile{
			ID:            merchant.ID.String(),
			Email:         merchant.Email,
			BusinessName:  merchant.BusinessName,
			ContactName:   merchant.ContactName,
			ContactPhone:  merchant.ContactPhone,
			EmailVerified: merchant.EmailVerified,
		},
	})
}

// VerifyEmail handles GET /api/v1/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, apperror.Validation("token is required"))
		return
	}
	if err := h.authSvc.VerifyEmail(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "email verified"})
}

// ResendVerification handles POST /api/v1/auth/resend-verification.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.RequestPasswordResetRequest // same {email} shape
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.authSvc.ResendVerification(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "verification email sent"})
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "password reset email sent"})
}

// ResetPassword handles POST /api/v1/auth/password-reset/confirm.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "password reset"})
}

// ChangePassword handles POST /api/v1/auth/change-password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), merchantID.(uuid.UUID), req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "password changed"})
}

// GetProfile handles GET /api/v1/merchants/me.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	merchant, err := h.authSvc.GetProfile(c.Request.Context(), merchantID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MerchantProfile{
		ID:            merchant.ID.String(),
		Email:         merchant.Email,
		BusinessName:  merchant.BusinessName,
		ContactName:   merchant.ContactName,
		ContactPhone:  merchant.ContactPhone,
		EmailVerified: merchant.EmailVerified,
	})
}

// UpdateProfile handles PUT /api/v1/merchants/me.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.authSvc.UpdateProfile(c.Request.Context(), merchantID.(uuid.UUID), ports.UpdateProfileRequest{
		BusinessName: req.BusinessName,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MerchantProfile{
		ID:            merchant.ID.String(),
		Email:         merchant.Email,
		BusinessName:  merchant.BusinessName,
		ContactName:   merchant.ContactName,
		ContactPhone:  merchant.ContactPhone,
		EmailVerified: merchant.EmailVerified,
	})
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

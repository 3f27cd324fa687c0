package dto

import "time"

// RegisterRequest is the request body for merchant registration.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=128"`
	BusinessName string `json:"businessName" binding:"required,min=1,max=150"`
	ContactName  string `json:"contactName" binding:"required,min=1,max=150"`
	ContactPhone string `json:"contactPhone"`
}

// LoginRequest is the request body for merchant login.
type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Merchant  MerchantProfile `json:"merchant"`
}

// MerchantProfile is the public-facing merchant shape.
type MerchantProfile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	BusinessName string `json:"businessName"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
	EmailVerified bool  `json:"emailVerified"`
}

// UpdateProfileRequest is the request body for partial profile updates.
type UpdateProfileRequest struct {
	BusinessName *string `json:"businessName,omitempty"`
	ContactName  *string `json:"contactName,omitempty"`
	ContactPhone *string `json:"contactPhone,omitempty"`
}

// ChangePasswordRequest is the request body for an authenticated password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=128"`
}

// RequestPasswordResetRequest requests an email-delivered reset link.
type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset using the emailed token.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=128"`
}

// InvoiceLineInputRequest is one requested invoice line prior to pricing.
type InvoiceLineInputRequest struct {
	ProductID *string  `json:"productId,omitempty"`
	SKU       string   `json:"sku"`
	Name      string   `json:"name"`
	Quantity  float64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice *int64   `json:"unitPrice,omitempty"`
}

// InvoiceRequest is the request body to preview/create an invoice.
type InvoiceRequest struct {
	CustomerName    string                    `json:"customerName" binding:"required"`
	CustomerEmail   string                    `json:"customerEmail"`
	CustomerPhone   string                    `json:"customerPhone"`
	CustomerAddress string                    `json:"customerAddress"`
	DueDate         time.Time                 `json:"dueDate" binding:"required"`
	PaymentTerms    string                    `json:"paymentTerms"`
	Notes           string                    `json:"notes"`
	Items           []InvoiceLineInputRequest `json:"items" binding:"required,min=1,dive"`
	ShippingCost    int64                     `json:"shippingCost"`
	Discount        int64                     `json:"discount"`
	DownPaymentPct  *float64                  `json:"downPaymentPct,omitempty"`
	// RemainingBalanceDueDate sets the due date of the remaining-balance
	// leg of a down-payment schedule; ignored when DownPaymentPct is nil.
	RemainingBalanceDueDate *time.Time `json:"remainingBalanceDueDate,omitempty"`
}

// PaymentConfirmationRequest is a customer-submitted proof of payment.
type PaymentConfirmationRequest struct {
	FileURL string `json:"fileUrl" binding:"required"`
	Notes   string `json:"notes"`
}

// ReviewRequest is a merchant's approve/reject note on a payment confirmation.
type ReviewRequest struct {
	Notes string `json:"notes"`
}

// ProductRequest is the request body to create/update a catalog product.
type ProductRequest struct {
	SKU           string  `json:"sku" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Category      string  `json:"category"`
	UnitPrice     int64   `json:"unitPrice" binding:"required,gte=0"`
	CostPrice     int64   `json:"costPrice"`
	StockQuantity int     `json:"stockQuantity"`
	MinStockLevel int     `json:"minStockLevel"`
	IsActive      bool    `json:"isActive"`
	TaxRate       float64 `json:"taxRate"`
	Dimensions    string  `json:"dimensions"`
	Weight        float64 `json:"weight"`
	ImageURL      string  `json:"imageUrl"`
}

// TaxConfigRequest updates a merchant's tax settings.
type TaxConfigRequest struct {
	Enabled bool    `json:"enabled"`
	Rate    float64 `json:"rate"`
	Label   string  `json:"label"`
}

// BrandingConfigRequest updates a merchant's invoice branding.
type BrandingConfigRequest struct {
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
	FooterText   string `json:"footerText"`
}

// PaymentMethodRequest configures one payment method for a merchant.
type PaymentMethodRequest struct {
	MethodType string         `json:"methodType" binding:"required"`
	Enabled    bool           `json:"enabled"`
	Config     map[string]any `json:"config"`
}

// PaginatedResponse wraps any paginated listing.
type PaginatedResponse struct {
	Items      any   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// MerchantStatus represents the state of a merchant account.
type MerchantStatus string

const (
	MerchantStatusActive   MerchantStatus = "active"
	MerchantStatusInactive MerchantStatus = "inactive"
)

// SubscriptionPlan represents the merchant's billing tier.
type SubscriptionPlan string

const (
	SubscriptionPlanFree    SubscriptionPlan = "free"
	SubscriptionPlanPremium SubscriptionPlan = "premium"
)

// Merchant represents a registered tenant account.
type Merchant struct {
	ID                      uuid.UUID        `json:"id"`
	Email                   string           `json:"email"`
	PasswordHash            string           `json:"-"`
	BusinessName            string           `json:"businessName"`
	ContactName             string           `json:"contactName"`
	ContactPhone            string           `json:"contactPhone"`
	Status                  MerchantStatus   `json:"status"`
	EmailVerified           bool             `json:"emailVerified"`
	EmailVerificationToken  *string          `json:"-"`
	ResetToken              *string          `json:"-"`
	ResetTokenExpires       *time.Time       `json:"-"`
	LastLogin               *time.Time       `json:"lastLogin,omitempty"`
	LoginAttempts           int              `json:"-"`
	LockedUntil             *time.Time       `json:"-"`
	SubscriptionPlan        SubscriptionPlan `json:"subscriptionPlan"`
	CreatedAt               time.Time        `json:"createdAt"`
	UpdatedAt               time.Time        `json:"updatedAt"`
}

// IsActive reports whether the merchant account can authenticate.
func (m *Merchant) IsActive() bool {
	return m.Status == MerchantStatusActive
}

// LogoInfo holds the current logo asset for a business.
type LogoInfo struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Filename string `json:"filename"`
}

// TaxConfig holds the merchant's tax settings.
type TaxConfig struct {
	Enabled     bool    `json:"enabled"`
	Rate        float64 `json:"rate"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

// BrandingConfig holds premium branding customization.
type BrandingConfig struct {
	CustomHeaderText       string  `json:"customHeaderText"`
	CustomHeaderBgColor    string  `json:"customHeaderBgColor"`
	CustomFooterBgColor    string  `json:"customFooterBgColor"`
	CustomHeaderLogoURL    string  `json:"customHeaderLogoUrl"`
	CustomHeaderLogoPublic string  `json:"customHeaderLogoPublicId"`
	CustomFooterLogoURL    string  `json:"customFooterLogoUrl"`
	CustomFooterLogoPublic string  `json:"customFooterLogoPublicId"`
	HideAspreeBranding     bool    `json:"hideAspreeBranding"`
	PremiumActive          bool    `json:"premiumActive"`
}

// IsActive reports whether any premium branding customization is present.
func (b *BrandingConfig) IsActive() bool {
	return b.PremiumActive && (b.CustomHeaderText != "" || b.CustomHeaderLogoURL != "" || b.CustomFooterLogoURL != "")
}

// BusinessSettings is the 1:1 profile row for a merchant.
type BusinessSettings struct {
	MerchantID  uuid.UUID      `json:"merchantId"`
	Tax         TaxConfig      `json:"tax"`
	Logo        *LogoInfo      `json:"logo,omitempty"`
	Branding    BrandingConfig `json:"branding"`
	Terms       string         `json:"terms"`
	BusinessCode string        `json:"businessCode"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// PaymentMethodType enumerates the payment collection channels a merchant can configure.
type PaymentMethodType string

const (
	PaymentMethodBankTransfer PaymentMethodType = "bank_transfer"
	PaymentMethodGateway      PaymentMethodType = "gateway"
)

// PaymentMethodConfig is an upserted per-(merchant, method) configuration row.
// Config is opaque JSON; gateway secrets embedded within it are encrypted at rest.
type PaymentMethodConfig struct {
	MerchantID uuid.UUID         `json:"merchantId"`
	MethodType PaymentMethodType `json:"methodType"`
	Enabled    bool              `json:"enabled"`
	Config     map[string]any    `json:"config"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

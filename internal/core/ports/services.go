package ports

import (
	"context"
	"time"

	"invoicing-backend/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption of secrets at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	IsEncrypted(value string) bool
}

// SignatureService handles HMAC-SHA256 signing and verification, used to
// authenticate inbound payment-gateway webhooks.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles merchant-session JWT operations.
type TokenService interface {
	Generate(merchantID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	MerchantID uuid.UUID
	Email      string
}

// IdMinterService mints collision-checked human-facing identifiers and
// opaque customer-portal access tokens.
type IdMinterService interface {
	NextInvoiceNumber(ctx context.Context, merchantID uuid.UUID) (string, error)
	NextOrderNumber(ctx context.Context, merchantID uuid.UUID) (string, error)
	CustomerToken() (string, error)
	FinalPaymentToken() (string, error)
}

// CacheService is the in-process idempotency / lookup cache.
type CacheService interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Stats() (hits, misses int64)
}

// AsyncQueueService schedules best-effort background work (notifications,
// reconciliation nudges) off the request path.
type AsyncQueueService interface {
	Enqueue(job func(ctx context.Context))
}

// MetricsService collects in-process operational counters.
type MetricsService interface {
	RecordRequest(path string, status int, latency time.Duration)
	Snapshot() MetricsSnapshot
}

// MetricsSnapshot is a point-in-time read of collected metrics.
type MetricsSnapshot struct {
	UptimeSeconds   int64
	TotalRequests   int64
	ErrorCount      int64
	AvgLatencyMs    float64
	CacheHits       int64
	CacheMisses     int64
	MemoryAllocMB   float64
}

// BlobService stores and removes merchant-uploaded assets (logos, payment
// confirmation attachments) in an external object store.
type BlobService interface {
	Upload(ctx context.Context, folder string, filename string, data []byte) (url string, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}

// NotifierService sends transactional email to merchants and customers.
type NotifierService interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
	SendInvoiceEmail(ctx context.Context, toEmail string, invoice *domain.Invoice) error
}

// CustomerMatcherService resolves an invoice's billing details to a stable
// merchant-scoped Customer record.
type CustomerMatcherService interface {
	Resolve(ctx context.Context, merchantID uuid.UUID, match domain.CustomerMatch) (*domain.Customer, error)
}

// PaymentGatewayService is the outbound adapter to a hosted payment gateway
// (hosted-invoice creation, webhook signature and event parsing).
type PaymentGatewayService interface {
	TestConnection(ctx context.Context, apiKey string) error
	CreateHostedInvoice(ctx context.Context, cfg domain.PaymentMethodConfig, inv *domain.Invoice) (hostedURL string, err error)
	VerifyWebhookSignature(payload []byte, signature string, secret string) bool
	ParseWebhookEvent(payload []byte) (*GatewayEvent, error)
}

// GatewayEvent is the normalized shape of an inbound payment-gateway webhook.
type GatewayEvent struct {
	ExternalID string
	Status     string
	AmountPaid int64
	Currency   string
}

// --- Service Ports (Business Logic) ---

// AuthService defines merchant authentication and account lifecycle logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Merchant, error)
	Login(ctx context.Context, email, password string) (string, time.Time, *domain.Merchant, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, merchantID uuid.UUID, oldPassword, newPassword string) error
	GetProfile(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error)
	UpdateProfile(ctx context.Context, merchantID uuid.UUID, req UpdateProfileRequest) (*domain.Merchant, error)
}

// RegisterRequest holds input for merchant registration.
type RegisterRequest struct {
	Email        string
	Password     string
	BusinessName string
	ContactName  string
	ContactPhone string
}

// UpdateProfileRequest holds the mutable subset of a merchant profile.
type UpdateProfileRequest struct {
	BusinessName *string
	ContactName  *string
	ContactPhone *string
}

// InvoiceLifecycleService defines the invoice state machine and its
// supporting operations.
type InvoiceLifecycleService interface {
	Preview(ctx context.Context, merchantID uuid.UUID, req InvoicePreviewRequest) (*domain.Invoice, error)
	Create(ctx context.Context, merchantID uuid.UUID, req InvoicePreviewRequest) (*domain.Invoice, error)
	Send(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error)
	Cancel(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error)
	Get(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error)
	GetByInvoiceNumber(ctx context.Context, merchantID uuid.UUID, number string) (*domain.Invoice, error)
	GetByCustomerToken(ctx context.Context, token string) (*domain.Invoice, error)
	GetByFinalPaymentToken(ctx context.Context, token string) (*domain.Invoice, error)
	List(ctx context.Context, params InvoiceListParams) ([]domain.Invoice, int64, error)
	SubmitPaymentConfirmation(ctx context.Context, token string, req PaymentConfirmationRequest) (*domain.Invoice, error)
	ApprovePaymentConfirmation(ctx context.Context, merchantID, invoiceID uuid.UUID, notes string) (*domain.Invoice, error)
	RejectPaymentConfirmation(ctx context.Context, merchantID, invoiceID uuid.UUID, notes string) (*domain.Invoice, error)
	ConfirmDownPayment(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error)
	HandleGatewayWebhook(ctx context.Context, payload []byte, signature string) error
	SyncPaidInvoicesToOrders(ctx context.Context, merchantID uuid.UUID) (int, error)
}

// InvoicePreviewRequest holds validated input to price and (optionally) persist an invoice.
type InvoicePreviewRequest struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	DueDate         time.Time
	PaymentTerms    string
	Notes           string
	Items           []InvoiceLineInput
	ShippingCost    int64
	Discount        int64
	DownPaymentPct  *float64 // nil = full payment, else a down-payment schedule
	// RemainingBalanceDueDate is the due date for the remaining-balance leg
	// of a down-payment schedule; nil leaves the leg's due date unset.
	RemainingBalanceDueDate *time.Time
}

// InvoiceLineInput is one requested invoice line prior to pricing.
type InvoiceLineInput struct {
	ProductID *uuid.UUID
	SKU       string
	Name      string
	Quantity  float64
	UnitPrice *int64 // nil = resolve from product catalog
}

// PaymentConfirmationRequest holds a customer-submitted proof of payment.
type PaymentConfirmationRequest struct {
	FileURL string
	Notes   string
}

// OrderService defines order query operations derived from paid invoices.
type OrderService interface {
	Get(ctx context.Context, merchantID, orderID uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, merchantID uuid.UUID, page, pageSize int) ([]domain.Order, int64, error)
}

// CustomerService defines merchant-facing customer query operations.
type CustomerService interface {
	Search(ctx context.Context, params CustomerSearchParams) ([]domain.CustomerAggregate, int64, error)
	Get(ctx context.Context, merchantID, customerID uuid.UUID) (*domain.Customer, error)
}

// ProductService defines catalog management operations.
type ProductService interface {
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, merchantID, id uuid.UUID) error
	Get(ctx context.Context, merchantID, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, params ProductListParams) ([]domain.Product, int64, error)
}

// MerchantProfileService defines business-settings and branding operations.
type MerchantProfileService interface {
	GetSettings(ctx context.Context, merchantID uuid.UUID) (*domain.BusinessSettings, error)
	UpdateTax(ctx context.Context, merchantID uuid.UUID, cfg domain.TaxConfig) (*domain.BusinessSettings, error)
	UpdateBranding(ctx context.Context, merchantID uuid.UUID, cfg domain.BrandingConfig) (*domain.BusinessSettings, error)
	UploadLogo(ctx context.Context, merchantID uuid.UUID, filename string, data []byte) (*domain.LogoInfo, error)
	RemoveLogo(ctx context.Context, merchantID uuid.UUID) error
	SavePaymentMethod(ctx context.Context, cfg domain.PaymentMethodConfig) error
	ListPaymentMethods(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentMethodConfig, error)
}

// AuditService defines audit-trail recording.
type AuditService interface {
	Log(ctx context.Context, merchantID *uuid.UUID, action domain.AuditAction, resourceType, resourceID, ipAddress string, details any)
	List(ctx context.Context, merchantID *uuid.UUID, page, pageSize int) ([]domain.AuditLog, int64, error)
}

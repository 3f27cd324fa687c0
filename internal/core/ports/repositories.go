package ports

import (
	"context"

	"invoicing-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MerchantRepository defines persistence operations for merchants.
// Every method is merchant-scoped except the lookups a merchant must
// reach before authentication establishes its own identity.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Merchant, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.Merchant, error)
	GetByResetToken(ctx context.Context, token string) (*domain.Merchant, error)
	Update(ctx context.Context, merchant *domain.Merchant) error
}

// BusinessSettingsRepository persists the 1:1 business profile row.
type BusinessSettingsRepository interface {
	GetByMerchantID(ctx context.Context, merchantID uuid.UUID) (*domain.BusinessSettings, error)
	Upsert(ctx context.Context, settings *domain.BusinessSettings) error
	GetByBusinessCode(ctx context.Context, code string) (*domain.BusinessSettings, error)
}

// PaymentMethodRepository persists per-(merchant, method) configuration.
type PaymentMethodRepository interface {
	Upsert(ctx context.Context, cfg *domain.PaymentMethodConfig) error
	List(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentMethodConfig, error)
	Get(ctx context.Context, merchantID uuid.UUID, methodType domain.PaymentMethodType) (*domain.PaymentMethodConfig, error)
}

// ProductRepository defines persistence operations for the merchant catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Product, error)
	GetBySKU(ctx context.Context, merchantID uuid.UUID, sku string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, merchantID, id uuid.UUID) error
	List(ctx context.Context, params ProductListParams) ([]domain.Product, int64, error)
}

// ProductListParams holds filter + pagination for listing products.
type ProductListParams struct {
	MerchantID uuid.UUID
	Search     string
	Category   string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// CustomerRepository defines persistence operations for resolved customers.
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Customer, error)
	GetByEmail(ctx context.Context, merchantID uuid.UUID, email string) (*domain.Customer, error)
	GetByPhone(ctx context.Context, merchantID uuid.UUID, phone string) (*domain.Customer, error)
	ListForMatching(ctx context.Context, merchantID uuid.UUID) ([]domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	RecordInvoice(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, invoiceDate int64, amount int64) error
	Search(ctx context.Context, params CustomerSearchParams) ([]domain.CustomerAggregate, int64, error)
}

// CustomerSearchParams holds filter + pagination for customer search.
type CustomerSearchParams struct {
	MerchantID uuid.UUID
	Query      string
	Page       int
	PageSize   int
}

// InvoiceRepository defines persistence operations for invoices.
// UpdateStatus takes the caller's observed fingerprint and returns false
// (no error) when it no longer matches the stored row, signalling a lost
// race the caller must resolve by re-reading and retrying.
type InvoiceRepository interface {
	Create(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Invoice, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Invoice, error)
	GetByCustomerToken(ctx context.Context, token string) (*domain.Invoice, error)
	GetByFinalPaymentToken(ctx context.Context, token string) (*domain.Invoice, error)
	GetByInvoiceNumber(ctx context.Context, merchantID uuid.UUID, number string) (*domain.Invoice, error)
	// GetByInvoiceNumberUnscoped is the one documented exception to
	// merchant-scoping: a payment-gateway webhook arrives unauthenticated,
	// with only the invoice number recovered from its external_id, so the
	// invoice itself is the scoping key until the invoice (and its
	// merchant) is resolved.
	GetByInvoiceNumberUnscoped(ctx context.Context, number string) (*domain.Invoice, error)
	Update(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, fingerprint domain.InvoiceStatus, fingerprintAt int64, inv *domain.Invoice) (bool, error)
	List(ctx context.Context, params InvoiceListParams) ([]domain.Invoice, int64, error)
	ListPaidUnsynced(ctx context.Context, merchantID uuid.UUID) ([]domain.Invoice, error)
	// NumberExists checks uniqueness globally across merchants: invoice
	// numbers are a system-wide namespace, not a per-merchant one.
	NumberExists(ctx context.Context, number string) (bool, error)
}

// InvoiceListParams holds filter + pagination for listing invoices.
type InvoiceListParams struct {
	MerchantID uuid.UUID
	Status     *domain.InvoiceStatus
	CustomerID *uuid.UUID
	From       *int64
	To         *int64
	Page       int
	PageSize   int
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error
	GetBySourceInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*domain.Order, error)
	GetByIDForMerchant(ctx context.Context, merchantID, id uuid.UUID) (*domain.Order, error)
	// NumberExists checks uniqueness globally: order numbers share the
	// system-wide namespace with invoice numbers.
	NumberExists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, merchantID uuid.UUID, page, pageSize int) ([]domain.Order, int64, error)
}

// AccessLogRepository defines persistence for customer-portal access logs.
type AccessLogRepository interface {
	Create(ctx context.Context, log *domain.AccessLog) error
	ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.AccessLog, error)
}

// AuditLogRepository defines persistence for audit trail entries.
type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, merchantID *uuid.UUID, page, pageSize int) ([]domain.AuditLog, int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

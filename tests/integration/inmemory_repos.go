package integration

import (
	"context"
	"fmt"
	"sync"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.merchants {
		if existing.Email == m.Email {
			return fmt.Errorf("email already exists")
		}
	}
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMerchantRepo) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) GetByVerificationToken(ctx context.Context, token string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.EmailVerificationToken != nil && *m.EmailVerificationToken == token {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) GetByResetToken(ctx context.Context, token string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.ResetToken != nil && *m.ResetToken == token {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[m.ID]; !ok {
		return fmt.Errorf("merchant not found")
	}
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

// --- In-Memory Business Settings Repo ---

type inMemoryBusinessSettingsRepo struct {
	mu       sync.RWMutex
	settings map[uuid.UUID]*domain.BusinessSettings
}

func newInMemoryBusinessSettingsRepo() *inMemoryBusinessSettingsRepo {
	return &inMemoryBusinessSettingsRepo{settings: make(map[uuid.UUID]*domain.BusinessSettings)}
}

func (r *inMemoryBusinessSettingsRepo) GetByMerchantID(ctx context.Context, merchantID uuid.UUID) (*domain.BusinessSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[merchantID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *inMemoryBusinessSettingsRepo) Upsert(ctx context.Context, s *domain.BusinessSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.settings[s.MerchantID] = &cp
	return nil
}

func (r *inMemoryBusinessSettingsRepo) GetByBusinessCode(ctx context.Context, code string) (*domain.BusinessSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.settings {
		if s.BusinessCode == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Payment Method Repo ---

type inMemoryPaymentMethodRepo struct {
	mu      sync.RWMutex
	configs map[string]*domain.PaymentMethodConfig
}

func newInMemoryPaymentMethodRepo() *inMemoryPaymentMethodRepo {
	return &inMemoryPaymentMethodRepo{configs: make(map[string]*domain.PaymentMethodConfig)}
}

func paymentMethodKey(merchantID uuid.UUID, methodType domain.PaymentMethodType) string {
	return merchantID.String() + ":" + string(methodType)
}

func (r *inMemoryPaymentMethodRepo) Upsert(ctx context.Context, cfg *domain.PaymentMethodConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	r.configs[paymentMethodKey(cfg.MerchantID, cfg.MethodType)] = &cp
	return nil
}

func (r *inMemoryPaymentMethodRepo) List(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentMethodConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PaymentMethodConfig
	for _, cfg := range r.configs {
		if cfg.MerchantID == merchantID {
			out = append(out, *cfg)
		}
	}
	return out, nil
}

func (r *inMemoryPaymentMethodRepo) Get(ctx context.Context, merchantID uuid.UUID, methodType domain.PaymentMethodType) (*domain.PaymentMethodConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[paymentMethodKey(merchantID, methodType)]
	if !ok {
		return nil, nil
	}
	cp := *cfg
	return &cp, nil
}

// --- In-Memory Product Repo ---

type inMemoryProductRepo struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
}

func newInMemoryProductRepo() *inMemoryProductRepo {
	return &inMemoryProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (r *inMemoryProductRepo) Create(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *inMemoryProductRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok || p.MerchantID != merchantID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryProductRepo) GetBySKU(ctx context.Context, merchantID uuid.UUID, sku string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.MerchantID == merchantID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryProductRepo) Update(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return fmt.Errorf("product not found")
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *inMemoryProductRepo) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *inMemoryProductRepo) List(ctx context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Product
	for _, p := range r.products {
		if p.MerchantID != params.MerchantID {
			continue
		}
		out = append(out, *p)
	}
	return paginateProducts(out, params.Page, params.PageSize)
}

func paginateProducts(in []domain.Product, page, pageSize int) ([]domain.Product, int64, error) {
	total := int64(len(in))
	start := (page - 1) * pageSize
	if start >= len(in) {
		return []domain.Product{}, total, nil
	}
	end := start + pageSize
	if end > len(in) {
		end = len(in)
	}
	return in[start:end], total, nil
}

// --- In-Memory Customer Repo ---

type inMemoryCustomerRepo struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]*domain.Customer
}

func newInMemoryCustomerRepo() *inMemoryCustomerRepo {
	return &inMemoryCustomerRepo{customers: make(map[uuid.UUID]*domain.Customer)}
}

func (r *inMemoryCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *inMemoryCustomerRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok || c.MerchantID != merchantID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryCustomerRepo) GetByEmail(ctx context.Context, merchantID uuid.UUID, email string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if c.MerchantID == merchantID && c.Email != nil && *c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryCustomerRepo) GetByPhone(ctx context.Context, merchantID uuid.UUID, phone string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if c.MerchantID == merchantID && c.Phone != nil && *c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryCustomerRepo) ListForMatching(ctx context.Context, merchantID uuid.UUID) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Customer
	for _, c := range r.customers {
		if c.MerchantID == merchantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *inMemoryCustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *inMemoryCustomerRepo) RecordInvoice(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, invoiceDate int64, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return fmt.Errorf("customer not found")
	}
	c.InvoiceCount++
	c.TotalSpent += amount
	return nil
}

func (r *inMemoryCustomerRepo) Search(ctx context.Context, params ports.CustomerSearchParams) ([]domain.CustomerAggregate, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.CustomerAggregate
	for _, c := range r.customers {
		if c.MerchantID != params.MerchantID {
			continue
		}
		out = append(out, domain.CustomerAggregate{Customer: *c})
	}
	total := int64(len(out))
	start := (params.Page - 1) * params.PageSize
	if start >= len(out) {
		return []domain.CustomerAggregate{}, total, nil
	}
	end := start + params.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

// --- In-Memory Invoice Repo ---

type inMemoryInvoiceRepo struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]*domain.Invoice
}

func newInMemoryInvoiceRepo() *inMemoryInvoiceRepo {
	return &inMemoryInvoiceRepo{invoices: make(map[uuid.UUID]*domain.Invoice)}
}

func (r *inMemoryInvoiceRepo) Create(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *inMemoryInvoiceRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok || inv.MerchantID != merchantID {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *inMemoryInvoiceRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *inMemoryInvoiceRepo) GetByCustomerToken(ctx context.Context, token string) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invoices {
		if inv.CustomerToken == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryInvoiceRepo) GetByFinalPaymentToken(ctx context.Context, token string) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invoices {
		if inv.FinalPaymentToken != nil && *inv.FinalPaymentToken == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryInvoiceRepo) GetByInvoiceNumber(ctx context.Context, merchantID uuid.UUID, number string) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invoices {
		if inv.MerchantID == merchantID && inv.InvoiceNumber == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryInvoiceRepo) GetByInvoiceNumberUnscoped(ctx context.Context, number string) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryInvoiceRepo) Update(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[inv.ID]; !ok {
		return fmt.Errorf("invoice not found")
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *inMemoryInvoiceRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, fingerprint domain.InvoiceStatus, fingerprintAt int64, inv *domain.Invoice) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.invoices[id]
	if !ok {
		return false, fmt.Errorf("invoice not found")
	}
	if existing.Status != fingerprint || existing.UpdatedAt.Unix() != fingerprintAt {
		return false, nil
	}
	cp := *inv
	r.invoices[id] = &cp
	return true, nil
}

func (r *inMemoryInvoiceRepo) List(ctx context.Context, params ports.InvoiceListParams) ([]domain.Invoice, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Invoice
	for _, inv := range r.invoices {
		if inv.MerchantID != params.MerchantID {
			continue
		}
		if params.Status != nil && inv.Status != *params.Status {
			continue
		}
		if params.CustomerID != nil && (inv.CustomerID == nil || *inv.CustomerID != *params.CustomerID) {
			continue
		}
		out = append(out, *inv)
	}
	total := int64(len(out))
	start := (params.Page - 1) * params.PageSize
	if start >= len(out) {
		return []domain.Invoice{}, total, nil
	}
	end := start + params.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *inMemoryInvoiceRepo) ListPaidUnsynced(ctx context.Context, merchantID uuid.UUID) ([]domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Invoice
	for _, inv := range r.invoices {
		if inv.MerchantID == merchantID && inv.Status == domain.InvoiceStatusPaid {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *inMemoryInvoiceRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *inMemoryOrderRepo) GetBySourceInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.SourceInvoiceID == invoiceID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryOrderRepo) GetByIDForMerchant(ctx context.Context, merchantID, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok || o.MerchantID != merchantID {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryOrderRepo) List(ctx context.Context, merchantID uuid.UUID, page, pageSize int) ([]domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.MerchantID == merchantID {
			out = append(out, *o)
		}
	}
	total := int64(len(out))
	start := (page - 1) * pageSize
	if start >= len(out) {
		return []domain.Order{}, total, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

// --- In-Memory Access Log Repo ---

type inMemoryAccessLogRepo struct {
	mu   sync.RWMutex
	logs []domain.AccessLog
}

func newInMemoryAccessLogRepo() *inMemoryAccessLogRepo {
	return &inMemoryAccessLogRepo{}
}

func (r *inMemoryAccessLogRepo) Create(ctx context.Context, log *domain.AccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *inMemoryAccessLogRepo) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AccessLog
	for _, l := range r.logs {
		if l.InvoiceID == invoiceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- In-Memory Audit Log Repo ---

type inMemoryAuditLogRepo struct {
	mu   sync.RWMutex
	logs []domain.AuditLog
}

func newInMemoryAuditLogRepo() *inMemoryAuditLogRepo {
	return &inMemoryAuditLogRepo{}
}

func (r *inMemoryAuditLogRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *inMemoryAuditLogRepo) List(ctx context.Context, merchantID *uuid.UUID, page, pageSize int) ([]domain.AuditLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AuditLog
	for _, l := range r.logs {
		if merchantID != nil && (l.MerchantID == nil || *l.MerchantID != *merchantID) {
			continue
		}
		out = append(out, l)
	}
	total := int64(len(out))
	start := (page - 1) * pageSize
	if start >= len(out) {
		return []domain.AuditLog{}, total, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

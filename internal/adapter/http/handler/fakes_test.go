package handler

import (
	"context"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"

	"github.com/google/uuid"
)

// fakeInvoiceLifecycleService is a hand-rolled stand-in for
// ports.InvoiceLifecycleService, shared across this package's handler tests.
// Each method defaults to returning its configured canned result; tests set
// only the fields relevant to the call under test.
type fakeInvoiceLifecycleService struct {
	invoice    *domain.Invoice
	invoices   []domain.Invoice
	total      int64
	syncedN    int
	err        error
	lastMethod string
}

func (f *fakeInvoiceLifecycleService) Preview(ctx context.Context, merchantID uuid.UUID, req ports.InvoicePreviewRequest) (*domain.Invoice, error) {
	f.lastMethod = "Preview"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) Create(ctx context.Context, merchantID uuid.UUID, req ports.InvoicePreviewRequest) (*domain.Invoice, error) {
	f.lastMethod = "Create"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) Send(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	f.lastMethod = "Send"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) Cancel(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	f.lastMethod = "Cancel"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) Get(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	f.lastMethod = "Get"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) GetByCustomerToken(ctx context.Context, token string) (*domain.Invoice, error) {
	f.lastMethod = "GetByCustomerToken"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) GetByFinalPaymentToken(ctx context.Context, token string) (*domain.Invoice, error) {
	f.lastMethod = "GetByFinalPaymentToken"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) List(ctx context.Context, params ports.InvoiceListParams) ([]domain.Invoice, int64, error) {
	f.lastMethod = "List"
	return f.invoices, f.total, f.err
}

func (f *fakeInvoiceLifecycleService) SubmitPaymentConfirmation(ctx context.Context, token string, req ports.PaymentConfirmationRequest) (*domain.Invoice, error) {
	f.lastMethod = "SubmitPaymentConfirmation"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) ApprovePaymentConfirmation(ctx context.Context, merchantID, invoiceID uuid.UUID, notes string) (*domain.Invoice, error) {
	f.lastMethod = "ApprovePaymentConfirmation"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) RejectPaymentConfirmation(ctx context.Context, merchantID, invoiceID uuid.UUID, notes string) (*domain.Invoice, error) {
	f.lastMethod = "RejectPaymentConfirmation"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) ConfirmDownPayment(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	f.lastMethod = "ConfirmDownPayment"
	return f.invoice, f.err
}

func (f *fakeInvoiceLifecycleService) HandleGatewayWebhook(ctx context.Context, payload []byte, signature string) error {
	f.lastMethod = "HandleGatewayWebhook"
	return f.err
}

func (f *fakeInvoiceLifecycleService) SyncPaidInvoicesToOrders(ctx context.Context, merchantID uuid.UUID) (int, error) {
	f.lastMethod = "SyncPaidInvoicesToOrders"
	return f.syncedN, f.err
}

// fakeOrderServiceForHandler is a hand-rolled stand-in for ports.OrderService.
type fakeOrderServiceForHandler struct {
	order  *domain.Order
	orders []domain.Order
	total  int64
	err    error
}

func (f *fakeOrderServiceForHandler) Get(ctx context.Context, merchantID, orderID uuid.UUID) (*domain.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderServiceForHandler) List(ctx context.Context, merchantID uuid.UUID, page, pageSize int) ([]domain.Order, int64, error) {
	return f.orders, f.total, f.err
}

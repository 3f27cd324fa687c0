package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(merchantID uuid.UUID) *domain.Invoice {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Invoice{
		ID:                    uuid.New(),
		MerchantID:            merchantID,
		InvoiceNumber:         "INV-202601-0001",
		CustomerName:          "Acme Corp",
		CustomerEmail:         "buyer@example.com",
		CustomerPhone:         "+62123456789",
		CustomerAddress:       "123 Main St",
		MerchantSnapshotName:  "Seller Co",
		MerchantSnapshotEmail: "seller@example.com",
		InvoiceDate:           now,
		DueDate:               now.Add(14 * 24 * time.Hour),
		OriginalDueDate:       now.Add(14 * 24 * time.Hour),
		Status:                domain.InvoiceStatusSent,
		PaymentStage:          domain.PaymentStageFull,
		PaymentStatus:         domain.PaymentStatusPending,
		Subtotal:              30000,
		GrandTotal:            30000,
		Currency:              "IDR",
		PaymentTerms:          "net14",
		Items:                 []domain.InvoiceItem{{SKU: "SKU-1", ProductName: "Widget", Quantity: 2, UnitPrice: 15000}},
		CustomerToken:         "cust-token-abc",
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func invoiceRowColumns() []string {
	return []string{"id", "merchant_id", "invoice_number", "customer_id", "customer_name", "customer_email",
		"customer_phone", "customer_address", "merchant_snapshot_name", "merchant_snapshot_email",
		"invoice_date", "due_date", "original_due_date", "status", "payment_stage", "payment_status",
		"subtotal", "tax_amount", "shipping_cost", "discount", "grand_total", "currency", "payment_terms", "notes",
		"items", "payment_schedule", "customer_token", "final_payment_token",
		"payment_confirmation_file", "payment_confirmation_notes", "payment_confirmation_date",
		"confirmation_status", "merchant_notes", "reviewed_date", "sent_at", "paid_at",
		"dp_confirmed_date", "final_payment_confirmed_date", "created_at", "updated_at"}
}

func invoiceRow(inv *domain.Invoice) *pgxmock.Rows {
	itemsJSON, _ := json.Marshal(inv.Items)
	var scheduleJSON []byte
	if inv.PaymentSchedule != nil {
		scheduleJSON, _ = json.Marshal(inv.PaymentSchedule)
	}
	return pgxmock.NewRows(invoiceRowColumns()).AddRow(
		inv.ID, inv.MerchantID, inv.InvoiceNumber, inv.CustomerID, inv.CustomerName, inv.CustomerEmail,
		inv.CustomerPhone, inv.CustomerAddress, inv.MerchantSnapshotName, inv.MerchantSnapshotEmail,
		inv.InvoiceDate, inv.DueDate, inv.OriginalDueDate, inv.Status, inv.PaymentStage, inv.PaymentStatus,
		inv.Subtotal, inv.TaxAmount, inv.ShippingCost, inv.Discount, inv.GrandTotal, inv.Currency, inv.PaymentTerms, inv.Notes,
		itemsJSON, scheduleJSON, inv.CustomerToken, inv.FinalPaymentToken,
		inv.PaymentConfirmationFile, inv.PaymentConfirmationNotes, inv.PaymentConfirmationDate,
		inv.ConfirmationStatus, inv.MerchantNotes, inv.ReviewedDate, inv.SentAt, inv.PaidAt,
		inv.DPConfirmedDate, inv.FinalPaymentConfirmedDate, inv.CreatedAt, inv.UpdatedAt,
	)
}

func TestInvoiceRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, inv)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_GetByID_Found(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM invoices WHERE merchant_id.+AND id").
		WithArgs(inv.MerchantID, inv.ID).
		WillReturnRows(invoiceRow(inv))

	result, err := repo.GetByID(context.Background(), inv.MerchantID, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, inv.InvoiceNumber, result.InvoiceNumber)
	require.Len(t, result.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	merchantID, id := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT .+ FROM invoices WHERE merchant_id.+AND id").
		WithArgs(merchantID, id).
		WillReturnRows(pgxmock.NewRows(invoiceRowColumns()))

	result, err := repo.GetByID(context.Background(), merchantID, id)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_GetByCustomerToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM invoices WHERE customer_token").
		WithArgs(inv.CustomerToken).
		WillReturnRows(invoiceRow(inv))

	result, err := repo.GetByCustomerToken(context.Background(), inv.CustomerToken)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, inv.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice(uuid.New())
	inv.Status = domain.InvoiceStatusPaid

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invoices SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), tx, inv)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_UpdateStatus_FingerprintMatches(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice(uuid.New())
	inv.Status = domain.InvoiceStatusPaid

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invoices SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.UpdateStatus(context.Background(), tx, inv.ID, domain.InvoiceStatusSent, inv.UpdatedAt.Unix(), inv)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_UpdateStatus_FingerprintMismatchReturnsFalse(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invoices SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.UpdateStatus(context.Background(), tx, inv.ID, domain.InvoiceStatusSent, inv.UpdatedAt.Unix(), inv)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_List_FiltersByStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	merchantID := uuid.New()
	inv := newTestInvoice(merchantID)
	status := domain.InvoiceStatusSent

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM invoices").
		WithArgs(merchantID, status).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery("SELECT .+ FROM invoices").
		WithArgs(merchantID, status, 20, 0).
		WillReturnRows(invoiceRow(inv))

	results, total, err := repo.List(context.Background(), ports.InvoiceListParams{
		MerchantID: merchantID,
		Status:     &status,
		Page:       1,
		PageSize:   20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, inv.InvoiceNumber, results[0].InvoiceNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_NumberExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("INV-20260101-ABCD").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.NumberExists(context.Background(), "INV-20260101-ABCD")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_GetByInvoiceNumberUnscoped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM invoices WHERE invoice_number=\\$1").
		WithArgs(inv.InvoiceNumber).
		WillReturnRows(invoiceRow(inv))

	got, err := repo.GetByInvoiceNumberUnscoped(context.Background(), inv.InvoiceNumber)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, inv.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

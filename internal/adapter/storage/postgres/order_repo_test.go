package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"invoicing-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(merchantID uuid.UUID) *domain.Order {
	customerID := uuid.New()
	return &domain.Order{
		ID:              uuid.New(),
		MerchantID:      merchantID,
		OrderNumber:     "ORD-202601-0001",
		SourceInvoiceID: uuid.New(),
		CustomerID:      &customerID,
		CustomerName:    "Acme Corp",
		GrandTotal:      30000,
		Currency:        "IDR",
		Items:           []domain.OrderItem{{SKU: "SKU-1", ProductName: "Widget", Quantity: 2, UnitPrice: 15000}},
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
}

func orderRowColumns() []string {
	return []string{"id", "merchant_id", "order_number", "source_invoice_id", "customer_id", "customer_name",
		"grand_total", "currency", "items", "created_at", "updated_at"}
}

func orderRow(o *domain.Order) *pgxmock.Rows {
	itemsJSON, _ := json.Marshal(o.Items)
	return pgxmock.NewRows(orderRowColumns()).AddRow(
		o.ID, o.MerchantID, o.OrderNumber, o.SourceInvoiceID, o.CustomerID, o.CustomerName,
		o.GrandTotal, o.Currency, itemsJSON, o.CreatedAt, o.UpdatedAt,
	)
}

func TestOrderRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, o.MerchantID, o.OrderNumber, o.SourceInvoiceID, o.CustomerID, o.CustomerName,
			o.GrandTotal, o.Currency, pgxmock.AnyArg(), o.CreatedAt, o.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetBySourceInvoiceID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	invoiceID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE source_invoice_id").
		WithArgs(invoiceID).
		WillReturnRows(pgxmock.NewRows(orderRowColumns()))

	result, err := repo.GetBySourceInvoiceID(context.Background(), invoiceID)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetByIDForMerchant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM orders WHERE merchant_id.+AND id").
		WithArgs(o.MerchantID, o.ID).
		WillReturnRows(orderRow(o))

	result, err := repo.GetByIDForMerchant(context.Background(), o.MerchantID, o.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, o.OrderNumber, result.OrderNumber)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "SKU-1", result.Items[0].SKU)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_NumberExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ORD-20260101-ABCD").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.NumberExists(context.Background(), "ORD-20260101-ABCD")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	merchantID := uuid.New()
	o := newTestOrder(merchantID)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders").
		WithArgs(merchantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery("SELECT .+ FROM orders WHERE merchant_id").
		WithArgs(merchantID, 20, 0).
		WillReturnRows(orderRow(o))

	results, total, err := repo.List(context.Background(), merchantID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, o.OrderNumber, results[0].OrderNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

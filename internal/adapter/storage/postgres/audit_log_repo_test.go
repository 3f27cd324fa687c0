package postgres

import (
	"context"
	"testing"
	"time"

	"invoicing-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuditLog(merchantID *uuid.UUID) *domain.AuditLog {
	return &domain.AuditLog{
		ID:           uuid.New(),
		MerchantID:   merchantID,
		Action:       domain.AuditActionInvoiceCreate,
		ResourceType: "invoice",
		ResourceID:   uuid.New().String(),
		Details:      `{"invoiceNumber":"INV-202601-0001"}`,
		IPAddress:    "203.0.113.10",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func auditLogRowColumns() []string {
	return []string{"id", "merchant_id", "action", "resource_type", "resource_id", "details", "ip_address", "created_at"}
}

func auditLogRow(l *domain.AuditLog) *pgxmock.Rows {
	return pgxmock.NewRows(auditLogRowColumns()).AddRow(
		l.ID, l.MerchantID, l.Action, l.ResourceType, l.ResourceID, l.Details, l.IPAddress, l.CreatedAt,
	)
}

func TestAuditLogRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditLogRepo(mock)
	merchantID := uuid.New()
	l := newTestAuditLog(&merchantID)

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(l.ID, l.MerchantID, l.Action, l.ResourceType, l.ResourceID, l.Details, l.IPAddress, l.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepo_List_ScopedToMerchant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditLogRepo(mock)
	merchantID := uuid.New()
	l := newTestAuditLog(&merchantID)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM audit_logs").
		WithArgs(merchantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery("SELECT .+ FROM audit_logs").
		WithArgs(merchantID, 20, 0).
		WillReturnRows(auditLogRow(l))

	results, total, err := repo.List(context.Background(), &merchantID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, domain.AuditActionInvoiceCreate, results[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepo_List_PlatformWideWhenMerchantNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditLogRepo(mock)
	l := newTestAuditLog(nil)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM audit_logs").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery("SELECT .+ FROM audit_logs").
		WithArgs(20, 0).
		WillReturnRows(auditLogRow(l))

	results, total, err := repo.List(context.Background(), nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

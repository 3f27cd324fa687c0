package postgres

import (
	"context"
	"fmt"

	"invoicing-backend/internal/core/domain"

	"github.com/google/uuid"
)

// AccessLogRepo implements ports.AccessLogRepository.
type AccessLogRepo struct {
	pool Pool
}

// NewAccessLogRepo creates a new AccessLogRepo.
func NewAccessLogRepo(pool Pool) *AccessLogRepo {
	return &AccessLogRepo{pool: pool}
}

// Create inserts a single customer-portal access record.
func (r *AccessLogRepo) Create(ctx context.Context, log *domain.AccessLog) error {
	query := `INSERT INTO access_logs (id, invoice_id, action, ip_address, user_agent, accessed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Exec(ctx, query, log.ID, log.InvoiceID, log.Action, log.IPAddress, log.UserAgent, log.AccessedAt)
	if err != nil {
		return fmt.Errorf("insert access log: %w", err)
	}
	return nil
}

// ListForInvoice returns every recorded access against a single invoice,
// newest first.
func (r *AccessLogRepo) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.AccessLog, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, invoice_id, action, ip_address, user_agent, accessed_at
		FROM access_logs WHERE invoice_id=$1 ORDER BY accessed_at DESC`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list access logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AccessLog
	for rows.Next() {
		var l domain.AccessLog
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Action, &l.IPAddress, &l.UserAgent, &l.AccessedAt); err != nil {
			return nil, fmt.Errorf("scan access log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

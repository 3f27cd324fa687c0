package postgres

import (
	"context"
	"fmt"

	"invoicing-backend/internal/core/domain"

	"github.com/google/uuid"
)

const auditLogColumns = `id, merchant_id, action, resource_type, resource_id, details, ip_address, created_at`

// AuditLogRepo implements ports.AuditLogRepository.
type AuditLogRepo struct {
	pool Pool
}

// NewAuditLogRepo creates a new AuditLogRepo.
func NewAuditLogRepo(pool Pool) *AuditLogRepo {
	return &AuditLogRepo{pool: pool}
}

// Create inserts a single audit trail entry.
func (r *AuditLogRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	query := `INSERT INTO audit_logs (` + auditLogColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		log.ID, log.MerchantID, log.Action, log.ResourceType, log.ResourceID, log.Details, log.IPAddress, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns a paginated audit trail, scoped to merchantID when non-nil
// and spanning every merchant (a platform-admin view) when nil.
func (r *AuditLogRepo) List(ctx context.Context, merchantID *uuid.UUID, page, pageSize int) ([]domain.AuditLog, int64, error) {
	where := ""
	args := []any{}
	if merchantID != nil {
		where = "WHERE merchant_id=$1"
		args = append(args, *merchantID)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	page, pageSize = normalizePage(page, pageSize)
	limitIdx := len(args) + 1
	offsetIdx := len(args) + 2
	query := fmt.Sprintf(`SELECT %s FROM audit_logs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		auditLogColumns, where, limitIdx, offsetIdx)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(&l.ID, &l.MerchantID, &l.Action, &l.ResourceType, &l.ResourceID, &l.Details, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type auditService struct {
	repo ports.AuditLogRepository
	log  zerolog.Logger
}

// NewAuditService creates a new audit service.
// If repo is nil, audit logs are only written to the logger.
func NewAuditService(repo ports.AuditLogRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Log records an audit entry asynchronously (fire-and-forget).
func (s *auditService) Log(ctx context.Context, merchantID *uuid.UUID, action domain.AuditAction, resourceType, resourceID, ipAddress string, details any) {
	var detailsJSON string
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = string(b)
		}
	}

	entry := &domain.AuditLog{
		ID:           uuid.New(),
		MerchantID:   merchantID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      detailsJSON,
		IPAddress:    ipAddress,
		CreatedAt:    time.Now(),
	}

	go func() {
		s.log.Info().
			Str("action", string(entry.Action)).
			Str("resource_type", entry.ResourceType).
			Str("resource_id", entry.ResourceID).
			Str("ip", entry.IPAddress).
			Msg("audit")

		if s.repo != nil {
			if err := s.repo.Create(context.Background(), entry); err != nil {
				s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("failed to persist audit log")
			}
		}
	}()
}

// List returns a page of audit entries, optionally filtered to one merchant.
func (s *auditService) List(ctx context.Context, merchantID *uuid.UUID, page, pageSize int) ([]domain.AuditLog, int64, error) {
	if s.repo == nil {
		return nil, 0, nil
	}
	return s.repo.List(ctx, merchantID, page, pageSize)
}

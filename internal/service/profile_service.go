package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"

	"github.com/google/uuid"
)

type profileService struct {
	settingsRepo ports.BusinessSettingsRepository
	methodRepo   ports.PaymentMethodRepository
	encSvc       ports.EncryptionService
	blobSvc      ports.BlobService
	auditSvc     ports.AuditService
}

// NewMerchantProfileService creates a new business-profile management service.
func NewMerchantProfileService(
	settingsRepo ports.BusinessSettingsRepository,
	methodRepo ports.PaymentMethodRepository,
	encSvc ports.EncryptionService,
	blobSvc ports.BlobService,
	auditSvc ports.AuditService,
) ports.MerchantProfileService {
	return &profileService{
		settingsRepo: settingsRepo,
		methodRepo:   methodRepo,
		encSvc:       encSvc,
		blobSvc:      blobSvc,
		auditSvc:     auditSvc,
	}
}

func (s *profileService) GetSettings(ctx context.Context, merchantID uuid.UUID) (*domain.BusinessSettings, error) {
	settings, err := s.settingsRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if settings == nil {
		code, err := generateBusinessCode()
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("generate business code: %w", err))
		}
		now := time.Now().UTC()
		settings = &domain.BusinessSettings{
			MerchantID:   merchantID,
			BusinessCode: code,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
			return nil, apperror.InternalError(err)
		}
	}
	return settings, nil
}

func (s *profileService) UpdateTax(ctx context.Context, merchantID uuid.UUID, cfg domain.TaxConfig) (*domain.BusinessSettings, error) {
	settings, err := s.GetSettings(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	settings.Tax = cfg
	settings.UpdatedAt = time.Now().UTC()
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, apperror.InternalError(err)
	}
	return settings, nil
}

func (s *profileService) UpdateBranding(ctx context.Context, merchantID uuid.UUID, cfg domain.BrandingConfig) (*domain.BusinessSettings, error) {
	settings, err := s.GetSettings(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if cfg.IsActive() && !settings.Branding.PremiumActive {
		return nil, apperror.ErrForbidden("custom branding requires an active premium subscription")
	}
	settings.Branding = cfg
	settings.UpdatedAt = time.Now().UTC()
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, apperror.InternalError(err)
	}
	return settings, nil
}

func (s *profileService) UploadLogo(ctx context.Context, merchantID uuid.UUID, filename string, data []byte) (*domain.LogoInfo, error) {
	settings, err := s.GetSettings(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	if settings.Logo != nil && settings.Logo.PublicID != "" {
		_ = s.blobSvc.Delete(ctx, settings.Logo.PublicID)
	}

	folder := fmt.Sprintf("merchants/%s/logo", merchantID.String())
	url, publicID, err := s.blobSvc.Upload(ctx, folder, filename, data)
	if err != nil {
		return nil, apperror.ErrUpstream("blob storage", err)
	}

	logo := &domain.LogoInfo{URL: url, PublicID: publicID, Filename: filename}
	settings.Logo = logo
	settings.UpdatedAt = time.Now().UTC()
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, apperror.InternalError(err)
	}

	s.auditSvc.Log(ctx, &merchantID, domain.AuditActionLogoUpload, "business_settings", merchantID.String(), "", nil)

	return logo, nil
}

func (s *profileService) RemoveLogo(ctx context.Context, merchantID uuid.UUID) error {
	settings, err := s.GetSettings(ctx, merchantID)
	if err != nil {
		return err
	}
	if settings.Logo == nil {
		return nil
	}
	if err := s.blobSvc.Delete(ctx, settings.Logo.PublicID); err != nil {
		return apperror.ErrUpstream("blob storage", err)
	}
	settings.Logo = nil
	settings.UpdatedAt = time.Now().UTC()
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return apperror.InternalError(err)
	}

	s.auditSvc.Log(ctx, &merchantID, domain.AuditActionLogoRemove, "business_settings", merchantID.String(), "", nil)

	return nil
}

func (s *profileService) SavePaymentMethod(ctx context.Context, cfg domain.PaymentMethodConfig) error {
	if cfg.MethodType == domain.PaymentMethodGateway {
		if secret, ok := cfg.Config["apiKey"].(string); ok && secret != "" && !s.encSvc.IsEncrypted(secret) {
			enc, err := s.encSvc.Encrypt(secret)
			if err != nil {
				return apperror.InternalError(fmt.Errorf("encrypt gateway credential: %w", err))
			}
			cfg.Config["apiKey"] = enc
		}
	}
	cfg.UpdatedAt = time.Now().UTC()
	if err := s.methodRepo.Upsert(ctx, &cfg); err != nil {
		return apperror.InternalError(err)
	}

	s.auditSvc.Log(ctx, &cfg.MerchantID, domain.AuditActionPaymentMethodSave, "payment_method", string(cfg.MethodType), "", nil)

	return nil
}

func (s *profileService) ListPaymentMethods(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentMethodConfig, error) {
	methods, err := s.methodRepo.List(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return methods, nil
}

// generateBusinessCode derives a short, unique customer-facing business code.
func generateBusinessCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

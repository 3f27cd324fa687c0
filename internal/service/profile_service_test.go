package service

import (
	"context"
	"strings"
	"testing"

	"invoicing-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBusinessSettingsRepo struct {
	byMerchant map[uuid.UUID]*domain.BusinessSettings
}

func newFakeBusinessSettingsRepo() *fakeBusinessSettingsRepo {
	return &fakeBusinessSettingsRepo{byMerchant: map[uuid.UUID]*domain.BusinessSettings{}}
}

func (f *fakeBusinessSettingsRepo) GetByMerchantID(ctx context.Context, merchantID uuid.UUID) (*domain.BusinessSettings, error) {
	if s, ok := f.byMerchant[merchantID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeBusinessSettingsRepo) Upsert(ctx context.Context, settings *domain.BusinessSettings) error {
	cp := *settings
	f.byMerchant[settings.MerchantID] = &cp
	return nil
}

func (f *fakeBusinessSettingsRepo) GetByBusinessCode(ctx context.Context, code string) (*domain.BusinessSettings, error) {
	for _, s := range f.byMerchant {
		if s.BusinessCode == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

type fakePaymentMethodRepo struct {
	configs []domain.PaymentMethodConfig
}

func (f *fakePaymentMethodRepo) Upsert(ctx context.Context, cfg *domain.PaymentMethodConfig) error {
	for i := range f.configs {
		if f.configs[i].MerchantID == cfg.MerchantID && f.configs[i].MethodType == cfg.MethodType {
			f.configs[i] = *cfg
			return nil
		}
	}
	f.configs = append(f.configs, *cfg)
	return nil
}

func (f *fakePaymentMethodRepo) List(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentMethodConfig, error) {
	var out []domain.PaymentMethodConfig
	for _, c := range f.configs {
		if c.MerchantID == merchantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakePaymentMethodRepo) Get(ctx context.Context, merchantID uuid.UUID, methodType domain.PaymentMethodType) (*domain.PaymentMethodConfig, error) {
	for _, c := range f.configs {
		if c.MerchantID == merchantID && c.MethodType == methodType {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeEncryptionService struct{}

func (fakeEncryptionService) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }
func (fakeEncryptionService) Decrypt(ciphertext string) (string, error) {
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}
func (fakeEncryptionService) IsEncrypted(value string) bool { return strings.HasPrefix(value, "enc:") }

type fakeBlobService struct {
	deletedPublicIDs []string
	uploadErr        error
}

func (f *fakeBlobService) Upload(ctx context.Context, folder, filename string, data []byte) (string, string, error) {
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	return "https://blob.test/" + folder + "/" + filename, folder + "/" + filename, nil
}

func (f *fakeBlobService) Delete(ctx context.Context, publicID string) error {
	f.deletedPublicIDs = append(f.deletedPublicIDs, publicID)
	return nil
}

type fakeProfileAuditService struct {
	logged []domain.AuditAction
}

func (f *fakeProfileAuditService) Log(ctx context.Context, merchantID *uuid.UUID, action domain.AuditAction, resourceType, resourceID, ipAddress string, details any) {
	f.logged = append(f.logged, action)
}

func (f *fakeProfileAuditService) List(ctx context.Context, merchantID *uuid.UUID, page, pageSize int) ([]domain.AuditLog, int64, error) {
	return nil, 0, nil
}

func newTestProfileService() (*profileService, *fakeBusinessSettingsRepo, *fakePaymentMethodRepo, *fakeBlobService, *fakeProfileAuditService) {
	settingsRepo := newFakeBusinessSettingsRepo()
	methodRepo := &fakePaymentMethodRepo{}
	blobSvc := &fakeBlobService{}
	auditSvc := &fakeProfileAuditService{}
	svc := &profileService{
		settingsRepo: settingsRepo,
		methodRepo:   methodRepo,
		encSvc:       fakeEncryptionService{},
		blobSvc:      blobSvc,
		auditSvc:     auditSvc,
	}
	return svc, settingsRepo, methodRepo, blobSvc, auditSvc
}

func TestProfileService_GetSettings_CreatesDefaultsOnFirstAccess(t *testing.T) {
	svc, repo, _, _, _ := newTestProfileService()
	merchantID := uuid.New()

	settings, err := svc.GetSettings(context.Background(), merchantID)
	require.NoError(t, err)
	assert.NotEmpty(t, settings.BusinessCode)
	assert.Len(t, repo.byMerchant, 1)
}

func TestProfileService_GetSettings_ReusesExisting(t *testing.T) {
	svc, repo, _, _, _ := newTestProfileService()
	merchantID := uuid.New()

	first, err := svc.GetSettings(context.Background(), merchantID)
	require.NoError(t, err)
	second, err := svc.GetSettings(context.Background(), merchantID)
	require.NoError(t, err)

	assert.Equal(t, first.BusinessCode, second.BusinessCode)
	assert.Len(t, repo.byMerchant, 1)
}

func TestProfileService_UpdateTax(t *testing.T) {
	svc, _, _, _, _ := newTestProfileService()
	merchantID := uuid.New()

	settings, err := svc.UpdateTax(context.Background(), merchantID, domain.TaxConfig{Enabled: true, Rate: 0.11, Name: "PPN"})
	require.NoError(t, err)
	assert.True(t, settings.Tax.Enabled)
	assert.Equal(t, 0.11, settings.Tax.Rate)
}

func TestProfileService_UpdateBranding_RejectsWithoutPremium(t *testing.T) {
	svc, _, _, _, _ := newTestProfileService()
	merchantID := uuid.New()

	_, err := svc.UpdateBranding(context.Background(), merchantID, domain.BrandingConfig{CustomHeaderText: "Acme", PremiumActive: true})
	assert.Error(t, err)
}

func TestProfileService_UpdateBranding_AllowsWhenAlreadyPremium(t *testing.T) {
	svc, repo, _, _, _ := newTestProfileService()
	merchantID := uuid.New()

	_, err := svc.GetSettings(context.Background(), merchantID)
	require.NoError(t, err)
	existing := repo.byMerchant[merchantID]
	existing.Branding.PremiumActive = true

	settings, err := svc.UpdateBranding(context.Background(), merchantID, domain.BrandingConfig{CustomHeaderText: "Acme", PremiumActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Acme", settings.Branding.CustomHeaderText)
}

func TestProfileService_UploadLogo_ReplacesExisting(t *testing.T) {
	svc, repo, _, blob, audit := newTestProfileService()
	merchantID := uuid.New()

	_, err := svc.UploadLogo(context.Background(), merchantID, "first.png", []byte("a"))
	require.NoError(t, err)

	logo, err := svc.UploadLogo(context.Background(), merchantID, "second.png", []byte("b"))
	require.NoError(t, err)

	assert.Contains(t, logo.Filename, "second.png")
	assert.Len(t, blob.deletedPublicIDs, 1)
	assert.Contains(t, audit.logged, domain.AuditActionLogoUpload)
	assert.Equal(t, logo, repo.byMerchant[merchantID].Logo)
}

func TestProfileService_RemoveLogo_NoopWhenAbsent(t *testing.T) {
	svc, _, _, blob, audit := newTestProfileService()
	merchantID := uuid.New()

	err := svc.RemoveLogo(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Empty(t, blob.deletedPublicIDs)
	assert.Empty(t, audit.logged)
}

func TestProfileService_SavePaymentMethod_EncryptsGatewayAPIKey(t *testing.T) {
	svc, _, methodRepo, _, audit := newTestProfileService()
	merchantID := uuid.New()

	cfg := domain.PaymentMethodConfig{
		MerchantID: merchantID,
		MethodType: domain.PaymentMethodGateway,
		Config:     map[string]any{"apiKey": "plain-secret"},
	}
	err := svc.SavePaymentMethod(context.Background(), cfg)
	require.NoError(t, err)

	saved := methodRepo.configs[0]
	assert.Equal(t, "enc:plain-secret", saved.Config["apiKey"])
	assert.Contains(t, audit.logged, domain.AuditActionPaymentMethodSave)
}

func TestProfileService_SavePaymentMethod_SkipsReencryptingAlreadyEncrypted(t *testing.T) {
	svc, _, methodRepo, _, _ := newTestProfileService()
	merchantID := uuid.New()

	cfg := domain.PaymentMethodConfig{
		MerchantID: merchantID,
		MethodType: domain.PaymentMethodGateway,
		Config:     map[string]any{"apiKey": "enc:already-encrypted"},
	}
	err := svc.SavePaymentMethod(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "enc:already-encrypted", methodRepo.configs[0].Config["apiKey"])
}

func TestProfileService_ListPaymentMethods(t *testing.T) {
	svc, _, methodRepo, _, _ := newTestProfileService()
	merchantID := uuid.New()
	methodRepo.configs = []domain.PaymentMethodConfig{{MerchantID: merchantID, MethodType: domain.PaymentMethodGateway}}

	methods, err := svc.ListPaymentMethods(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Len(t, methods, 1)
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
	"unicode"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	merchantRepo ports.MerchantRepository
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
	notifier     ports.NotifierService
	auditSvc     ports.AuditService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	merchantRepo ports.MerchantRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	notifier ports.NotifierService,
	auditSvc ports.AuditService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		merchantRepo: merchantRepo,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
		notifier:     notifier,
		auditSvc:     auditSvc,
	}
}

// Register creates a new merchant account and sends a verification email.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.Merchant, error) {
	existing, err := s.merchantRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	if err := validatePasswordPolicy(req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	verificationToken, err := generateRandomHex(32)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate verification token: %w", err))
	}

	now := time.Now().UTC()
	merchant := &domain.Merchant{
		ID:                     uuid.New(),
		Email:                  req.Email,
		PasswordHash:           passwordHash,
		BusinessName:           req.BusinessName,
		ContactName:            req.ContactName,
		ContactPhone:           req.ContactPhone,
		Status:                 domain.MerchantStatusActive,
		EmailVerified:          false,
		EmailVerificationToken: &verificationToken,
		SubscriptionPlan:       domain.SubscriptionPlanFree,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create merchant: %w", err))
	}

	if s.notifier != nil {
		_ = s.notifier.SendVerificationEmail(ctx, merchant.Email, verificationToken)
	}

	s.auditSvc.Log(ctx, &merchant.ID, domain.AuditActionRegister, "merchant", merchant.ID.String(), "", nil)

	return merchant, nil
}

// Login validates credentials and returns a session JWT.
// Lockout-after-failed-attempts is deliberately not enforced: the spec
// treats brute-force mitigation as the rate limiter's job, not the
// merchant record's.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("find merchant: %w", err))
	}
	if merchant == nil {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, merchant.PasswordHash)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	if !merchant.IsActive() {
		return "", time.Time{}, nil, apperror.ErrMerchantInactive()
	}

	token, expiry, err := s.tokenSvc.Generate(merchant.ID, merchant.Email)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	now := time.Now().UTC()
	merchant.LastLogin = &now
	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("update last login: %w", err))
	}

	s.auditSvc.Log(ctx, &merchant.ID, domain.AuditActionLogin, "merchant", merchant.ID.String(), "", nil)

	return token, expiry, merchant, nil
}

// VerifyEmail marks the merchant email verified and clears the token.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	merchant, err := s.merchantRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find merchant by token: %w", err))
	}
	if merchant == nil {
		return apperror.ErrInvalidToken()
	}

	merchant.EmailVerified = true
	merchant.EmailVerificationToken = nil
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return apperror.InternalError(fmt.Errorf("update merchant: %w", err))
	}

	return nil
}

// ResendVerification issues a fresh verification token and re-sends the email.
func (s *AuthServiceImpl) ResendVerification(ctx context.Context, email string) error {
	merchant, err := s.merchantRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find merchant: %w", err))
	}
	if merchant == nil || merchant.EmailVerified {
		// Do not reveal account existence or verification state.
		return nil
	}

	token, err := generateRandomHex(32)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	merchant.EmailVerificationToken = &token
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return apperror.InternalError(fmt.Errorf("update merchant: %w", err))
	}

	if s.notifier != nil {
		_ = s.notifier.SendVerificationEmail(ctx, merchant.Email, token)
	}

	return nil
}

// RequestPasswordReset issues a reset token valid for one hour.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	merchant, err := s.merchantRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find merchant: %w", err))
	}
	if merchant == nil {
		return nil
	}

	token, err := generateRandomHex(32)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	expires := time.Now().UTC().Add(time.Hour)
	merchant.ResetToken = &token
	merchant.ResetTokenExpires = &expires
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return apperror.InternalError(fmt.Errorf("update merchant: %w", err))
	}

	if s.notifier != nil {
		_ = s.notifier.SendPasswordResetEmail(ctx, merchant.Email, token)
	}

	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	merchant, err := s.merchantRepo.GetByResetToken(ctx, token)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find merchant by token: %w", err))
	}
	if merchant == nil || merchant.ResetTokenExpires == nil || time.Now().UTC().After(*merchant.ResetTokenExpires) {
		return apperror.ErrInvalidToken()
	}

	if err := validatePasswordPolicy(newPassword); err != nil {
		return err
	}

	hash, err := s.hashSvc.Hash(newPassword)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	merchant.PasswordHash = hash
	merchant.ResetToken = nil
	merchant.ResetTokenExpires = nil
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return apperror.InternalError(fmt.Errorf("update merchant: %w", err))
	}

	s.auditSvc.Log(ctx, &merchant.ID, domain.AuditActionPasswordReset, "merchant", merchant.ID.String(), "", nil)

	return nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, merchantID uuid.UUID, oldPassword, newPassword string) error {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find merchant: %w", err))
	}
	if merchant == nil {
		return apperror.ErrNotFound("merchant")
	}

	valid, err := s.hashSvc.Verify(oldPassword, merchant.PasswordHash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return apperror.ErrInvalidCredentials()
	}

	if err := validatePasswordPolicy(newPassword); err != nil {
		return err
	}

	hash, err := s.hashSvc.Hash(newPassword)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	merchant.PasswordHash = hash
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return apperror.InternalError(fmt.Errorf("update merchant: %w", err))
	}

	s.auditSvc.Log(ctx, &merchant.ID, domain.AuditActionPasswordChange, "merchant", merchant.ID.String(), "", nil)

	return nil
}

// GetProfile returns the merchant record.
func (s *AuthServiceImpl) GetProfile(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	return merchant, nil
}

// UpdateProfile patches the mutable subset of a merchant profile.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, merchantID uuid.UUID, req ports.UpdateProfileRequest) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}

	if req.BusinessName != nil {
		merchant.BusinessName = *req.BusinessName
	}
	if req.ContactName != nil {
		merchant.ContactName = *req.ContactName
	}
	if req.ContactPhone != nil {
		merchant.ContactPhone = *req.ContactPhone
	}
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update merchant: %w", err))
	}

	s.auditSvc.Log(ctx, &merchant.ID, domain.AuditActionProfileUpdate, "merchant", merchant.ID.String(), "", nil)

	return merchant, nil
}

// validatePasswordPolicy enforces length >= 8 and at least two of the four
// character classes (lower, upper, digit, symbol).
func validatePasswordPolicy(password string) error {
	if len(password) < 8 {
		return apperror.Validation("password must be at least 8 characters")
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	classes := 0
	for _, present := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if present {
			classes++
		}
	}
	if classes < 2 {
		return apperror.Validation("password must contain at least two of: lowercase, uppercase, digit, symbol")
	}

	return nil
}

// generateRandomHex generates a random hex string of n bytes.
func generateRandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

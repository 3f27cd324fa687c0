package postgres

import (
	"context"
	"errors"
	"fmt"

	"invoicing-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const merchantColumns = `id, email, password_hash, business_name, contact_name, contact_phone,
	status, email_verified, email_verification_token, reset_token, reset_token_expires,
	last_login, login_attempts, locked_until, subscription_plan, created_at, updated_at`

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

func scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	m := &domain.Merchant{}
	err := row.Scan(
		&m.ID, &m.Email, &m.PasswordHash, &m.BusinessName, &m.ContactName, &m.ContactPhone,
		&m.Status, &m.EmailVerified, &m.EmailVerificationToken, &m.ResetToken, &m.ResetTokenExpires,
		&m.LastLogin, &m.LoginAttempts, &m.LockedUntil, &m.SubscriptionPlan, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Create inserts a new merchant into the database.
func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	query := `INSERT INTO merchants (` + merchantColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.Email, m.PasswordHash, m.BusinessName, m.ContactName, m.ContactPhone,
		m.Status, m.EmailVerified, m.EmailVerificationToken, m.ResetToken, m.ResetTokenExpires,
		m.LastLogin, m.LoginAttempts, m.LockedUntil, m.SubscriptionPlan, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// GetByID fetches a merchant by its UUID.
func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+merchantColumns+` FROM merchants WHERE id=$1`, id)
	m, err := scanMerchant(row)
	if err != nil {
		return nil, fmt.Errorf("get merchant by id: %w", err)
	}
	return m, nil
}

// GetByEmail fetches a merchant by email address.
func (r *MerchantRepo) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+merchantColumns+` FROM merchants WHERE email=$1`, email)
	m, err := scanMerchant(row)
	if err != nil {
		return nil, fmt.Errorf("get merchant by email: %w", err)
	}
	return m, nil
}

// GetByVerificationToken fetches a merchant by its pending email-verification token.
func (r *MerchantRepo) GetByVerificationToken(ctx context.Context, token string) (*domain.Merchant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+merchantColumns+` FROM merchants WHERE email_verification_token=$1`, token)
	m, err := scanMerchant(row)
	if err != nil {
		return nil, fmt.Errorf("get merchant by verification token: %w", err)
	}
	return m, nil
}

// GetByResetToken fetches a merchant by its pending password-reset token.
func (r *MerchantRepo) GetByResetToken(ctx context.Context, token string) (*domain.Merchant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+merchantColumns+` FROM merchants WHERE reset_token=$1`, token)
	m, err := scanMerchant(row)
	if err != nil {
		return nil, fmt.Errorf("get merchant by reset token: %w", err)
	}
	return m, nil
}

// Update persists mutable merchant fields.
func (r *MerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	query := `UPDATE merchants SET
		password_hash=$1, business_name=$2, contact_name=$3, contact_phone=$4, status=$5,
		email_verified=$6, email_verification_token=$7, reset_token=$8, reset_token_expires=$9,
		last_login=$10, login_attempts=$11, locked_until=$12, subscription_plan=$13, updated_at=$14
		WHERE id=$15`

	_, err := r.pool.Exec(ctx, query,
		m.PasswordHash, m.BusinessName, m.ContactName, m.ContactPhone, m.Status,
		m.EmailVerified, m.EmailVerificationToken, m.ResetToken, m.ResetTokenExpires,
		m.LastLogin, m.LoginAttempts, m.LockedUntil, m.SubscriptionPlan, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"invoicing-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BusinessSettingsRepo implements ports.BusinessSettingsRepository.
type BusinessSettingsRepo struct {
	pool Pool
}

// NewBusinessSettingsRepo creates a new BusinessSettingsRepo.
func NewBusinessSettingsRepo(pool Pool) *BusinessSettingsRepo {
	return &BusinessSettingsRepo{pool: pool}
}

func scanBusinessSettings(row pgx.Row) (*domain.BusinessSettings, error) {
	var s domain.BusinessSettings
	var taxJSON, brandingJSON []byte
	var logoJSON *[]byte

	err := row.Scan(&s.MerchantID, &taxJSON, &logoJSON, &brandingJSON, &s.Terms, &s.BusinessCode, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(taxJSON, &s.Tax); err != nil {
		return nil, fmt.Errorf("unmarshal tax config: %w", err)
	}
	if err := json.Unmarshal(brandingJSON, &s.Branding); err != nil {
		return nil, fmt.Errorf("unmarshal branding config: %w", err)
	}
	if logoJSON != nil {
		var logo domain.LogoInfo
		if err := json.Unmarshal(*logoJSON, &logo); err != nil {
			return nil, fmt.Errorf("unmarshal logo info: %w", err)
		}
		s.Logo = &logo
	}

	return &s, nil
}

// GetByMerchantID fetches the business settings row for a merchant.
func (r *BusinessSettingsRepo) GetByMerchantID(ctx context.Context, merchantID uuid.UUID) (*domain.BusinessSettings, error) {
	row := r.pool.QueryRow(ctx, `SELECT merchant_id, tax, logo, branding, terms, business_code, created_at, updated_at
		FROM business_settings WHERE merchant_id=$1`, merchantID)
	s, err := scanBusinessSettings(row)
	if err != nil {
		return nil, fmt.Errorf("get business settings: %w", err)
	}
	return s, nil
}

// GetByBusinessCode resolves settings by their public business code.
func (r *BusinessSettingsRepo) GetByBusinessCode(ctx context.Context, code string) (*domain.BusinessSettings, error) {
	row := r.pool.QueryRow(ctx, `SELECT merchant_id, tax, logo, branding, terms, business_code, created_at, updated_at
		FROM business_settings WHERE business_code=$1`, code)
	s, err := scanBusinessSettings(row)
	if err != nil {
		return nil, fmt.Errorf("get business settings by code: %w", err)
	}
	return s, nil
}

// Upsert inserts or updates the 1:1 business settings row for a merchant.
func (r *BusinessSettingsRepo) Upsert(ctx context.Context, s *domain.BusinessSettings) error {
	taxJSON, err := json.Marshal(s.Tax)
	if err != nil {
		return fmt.Errorf("marshal tax config: %w", err)
	}
	brandingJSON, err := json.Marshal(s.Branding)
	if err != nil {
		return fmt.Errorf("marshal branding config: %w", err)
	}
	var logoJSON []byte
	if s.Logo != nil {
		logoJSON, err = json.Marshal(s.Logo)
		if err != nil {
			return fmt.Errorf("marshal logo info: %w", err)
		}
	}

	query := `INSERT INTO business_settings (merchant_id, tax, logo, branding, terms, business_code, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (merchant_id) DO UPDATE SET
			tax=$2, logo=$3, branding=$4, terms=$5, business_code=$6, updated_at=$8`

	_, err = r.pool.Exec(ctx, query, s.MerchantID, taxJSON, logoJSON, brandingJSON, s.Terms, s.BusinessCode, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert business settings: %w", err)
	}
	return nil
}

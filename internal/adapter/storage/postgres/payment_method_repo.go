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

// PaymentMethodRepo implements ports.PaymentMethodRepository.
type PaymentMethodRepo struct {
	pool Pool
}

// NewPaymentMethodRepo creates a new PaymentMethodRepo.
func NewPaymentMethodRepo(pool Pool) *PaymentMethodRepo {
	return &PaymentMethodRepo{pool: pool}
}

func scanPaymentMethod(row pgx.Row) (*domain.PaymentMethodConfig, error) {
	var c domain.PaymentMethodConfig
	var configJSON []byte

	err := row.Scan(&c.MerchantID, &c.MethodType, &c.Enabled, &configJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(configJSON, &c.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Upsert inserts or updates a per-(merchant, method) configuration row.
func (r *PaymentMethodRepo) Upsert(ctx context.Context, cfg *domain.PaymentMethodConfig) error {
	configJSON, err := json.Marshal(cfg.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	query := `INSERT INTO payment_methods (merchant_id, method_type, enabled, config, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (merchant_id, method_type) DO UPDATE SET
			enabled=$3, config=$4, updated_at=$6`

	_, err = r.pool.Exec(ctx, query, cfg.MerchantID, cfg.MethodType, cfg.Enabled, configJSON, cfg.CreatedAt, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert payment method: %w", err)
	}
	return nil
}

// List returns every configured payment method for a merchant.
func (r *PaymentMethodRepo) List(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentMethodConfig, error) {
	rows, err := r.pool.Query(ctx, `SELECT merchant_id, method_type, enabled, config, created_at, updated_at
		FROM payment_methods WHERE merchant_id=$1`, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethodConfig
	for rows.Next() {
		c, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, *c)
	}
	return methods, rows.Err()
}

// Get returns a single merchant's configuration for one method type.
func (r *PaymentMethodRepo) Get(ctx context.Context, merchantID uuid.UUID, methodType domain.PaymentMethodType) (*domain.PaymentMethodConfig, error) {
	row := r.pool.QueryRow(ctx, `SELECT merchant_id, method_type, enabled, config, created_at, updated_at
		FROM payment_methods WHERE merchant_id=$1 AND method_type=$2`, merchantID, methodType)
	c, err := scanPaymentMethod(row)
	if err != nil {
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	return c, nil
}

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

const orderColumns = `id, merchant_id, order_number, source_invoice_id, customer_id, customer_name,
	grand_total, currency, items, created_at, updated_at`

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var itemsJSON []byte

	err := row.Scan(
		&o.ID, &o.MerchantID, &o.OrderNumber, &o.SourceInvoiceID, &o.CustomerID, &o.CustomerName,
		&o.GrandTotal, &o.Currency, &itemsJSON, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &o, nil
}

// Create inserts a new order inside the caller's transaction. Callers must
// check GetBySourceInvoiceID first; this repository does not itself enforce
// the one-order-per-invoice invariant beyond a unique index on the column.
func (r *OrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err = tx.Exec(ctx, query,
		o.ID, o.MerchantID, o.OrderNumber, o.SourceInvoiceID, o.CustomerID, o.CustomerName,
		o.GrandTotal, o.Currency, itemsJSON, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetBySourceInvoiceID is the idempotency check every order-creation path
// must perform before inserting.
func (r *OrderRepo) GetBySourceInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE source_invoice_id=$1`, invoiceID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("get order by source invoice: %w", err)
	}
	return o, nil
}

// GetByIDForMerchant fetches a merchant-scoped order by ID.
func (r *OrderRepo) GetByIDForMerchant(ctx context.Context, merchantID, id uuid.UUID) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE merchant_id=$1 AND id=$2`, merchantID, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// NumberExists reports whether any order, for any merchant, already carries number.
func (r *OrderRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE order_number=$1)`,
		number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order number exists: %w", err)
	}
	return exists, nil
}

// List returns a merchant-scoped, paginated order list.
func (r *OrderRepo) List(ctx context.Context, merchantID uuid.UUID, page, pageSize int) ([]domain.Order, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE merchant_id=$1`, merchantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	page, pageSize = normalizePage(page, pageSize)
	query := `SELECT ` + orderColumns + ` FROM orders WHERE merchant_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, merchantID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

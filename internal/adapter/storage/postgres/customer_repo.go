package postgres

import (
	"context"
	"errors"
	"fmt"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, merchant_id, name, email, phone, address, first_invoice_date,
	last_invoice_date, invoice_count, total_spent, extraction_method, created_at, updated_at`

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	pool Pool
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(pool Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(
		&c.ID, &c.MerchantID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.FirstInvoiceDate,
		&c.LastInvoiceDate, &c.InvoiceCount, &c.TotalSpent, &c.ExtractionMethod, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Create inserts a new resolved customer.
func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (` + customerColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.MerchantID, c.Name, c.Email, c.Phone, c.Address, c.FirstInvoiceDate,
		c.LastInvoiceDate, c.InvoiceCount, c.TotalSpent, c.ExtractionMethod, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID fetches a merchant-scoped customer by ID.
func (r *CustomerRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE merchant_id=$1 AND id=$2`, merchantID, id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetByEmail fetches a merchant-scoped customer by exact email match.
func (r *CustomerRepo) GetByEmail(ctx context.Context, merchantID uuid.UUID, email string) (*domain.Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE merchant_id=$1 AND email=$2`, merchantID, email)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return c, nil
}

// GetByPhone fetches a merchant-scoped customer by normalized phone match.
func (r *CustomerRepo) GetByPhone(ctx context.Context, merchantID uuid.UUID, phone string) (*domain.Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE merchant_id=$1 AND phone=$2`, merchantID, phone)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("get customer by phone: %w", err)
	}
	return c, nil
}

// ListForMatching returns every customer for a merchant, for the fuzzy-name
// matching pass. Merchant catalogs are small enough that this is a single
// bounded round-trip rather than a paginated scan.
func (r *CustomerRepo) ListForMatching(ctx context.Context, merchantID uuid.UUID) ([]domain.Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers WHERE merchant_id=$1`, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list customers for matching: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// Update persists a modified customer.
func (r *CustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET name=$1, email=$2, phone=$3, address=$4, first_invoice_date=$5,
		last_invoice_date=$6, invoice_count=$7, total_spent=$8, updated_at=$9
		WHERE merchant_id=$10 AND id=$11`
	_, err := r.pool.Exec(ctx, query,
		c.Name, c.Email, c.Phone, c.Address, c.FirstInvoiceDate, c.LastInvoiceDate,
		c.InvoiceCount, c.TotalSpent, c.UpdatedAt, c.MerchantID, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// RecordInvoice bumps a customer's invoice statistics inside an invoice-create transaction.
func (r *CustomerRepo) RecordInvoice(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, invoiceDate int64, amount int64) error {
	query := `UPDATE customers SET
		invoice_count = invoice_count + 1,
		total_spent = total_spent + $1,
		first_invoice_date = COALESCE(first_invoice_date, to_timestamp($2)),
		last_invoice_date = to_timestamp($2),
		updated_at = NOW()
		WHERE id=$3`
	_, err := tx.Exec(ctx, query, amount, invoiceDate, customerID)
	if err != nil {
		return fmt.Errorf("record invoice on customer: %w", err)
	}
	return nil
}

// Search returns a page of customers decorated with derived order statistics.
func (r *CustomerRepo) Search(ctx context.Context, params ports.CustomerSearchParams) ([]domain.CustomerAggregate, int64, error) {
	where := `WHERE c.merchant_id=$1`
	args := []any{params.MerchantID}
	argN := 2

	if params.Query != "" {
		where += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.email ILIKE $%d)", argN, argN)
		args = append(args, "%"+params.Query+"%")
		argN++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers c `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	page, pageSize := normalizePage(params.Page, params.PageSize)
	query := fmt.Sprintf(`SELECT %s,
			COALESCE(o.order_count, 0), o.last_order_date
		FROM customers c
		LEFT JOIN (
			SELECT customer_id, COUNT(*) AS order_count, MAX(created_at) AS last_order_date
			FROM orders GROUP BY customer_id
		) o ON o.customer_id = c.id
		%s
		ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`,
		prefixColumns("c", customerColumns), where, argN, argN+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	var results []domain.CustomerAggregate
	for rows.Next() {
		var agg domain.CustomerAggregate
		err := rows.Scan(
			&agg.ID, &agg.MerchantID, &agg.Name, &agg.Email, &agg.Phone, &agg.Address, &agg.FirstInvoiceDate,
			&agg.LastInvoiceDate, &agg.InvoiceCount, &agg.TotalSpent, &agg.ExtractionMethod, &agg.CreatedAt, &agg.UpdatedAt,
			&agg.OrderCount, &agg.LastOrderDate,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer aggregate: %w", err)
		}
		results = append(results, agg)
	}
	return results, total, rows.Err()
}

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

const productColumns = `id, merchant_id, sku, name, category, unit_price, cost_price, stock_quantity,
	min_stock_level, is_active, tax_rate, dimensions, weight, image_url, created_at, updated_at`

// ProductRepo implements ports.ProductRepository.
type ProductRepo struct {
	pool Pool
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(pool Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID, &p.MerchantID, &p.SKU, &p.Name, &p.Category, &p.UnitPrice, &p.CostPrice, &p.StockQuantity,
		&p.MinStockLevel, &p.IsActive, &p.TaxRate, &p.Dimensions, &p.Weight, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Create inserts a new catalog product.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (` + productColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.MerchantID, p.SKU, p.Name, p.Category, p.UnitPrice, p.CostPrice, p.StockQuantity,
		p.MinStockLevel, p.IsActive, p.TaxRate, p.Dimensions, p.Weight, p.ImageURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID fetches a merchant-scoped product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE merchant_id=$1 AND id=$2`, merchantID, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU fetches a merchant-scoped product by SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, merchantID uuid.UUID, sku string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE merchant_id=$1 AND sku=$2`, merchantID, sku)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// Update persists a modified product.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET sku=$1, name=$2, category=$3, unit_price=$4, cost_price=$5,
		stock_quantity=$6, min_stock_level=$7, is_active=$8, tax_rate=$9, dimensions=$10,
		weight=$11, image_url=$12, updated_at=$13
		WHERE merchant_id=$14 AND id=$15`
	_, err := r.pool.Exec(ctx, query,
		p.SKU, p.Name, p.Category, p.UnitPrice, p.CostPrice, p.StockQuantity, p.MinStockLevel,
		p.IsActive, p.TaxRate, p.Dimensions, p.Weight, p.ImageURL, p.UpdatedAt, p.MerchantID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes a merchant-scoped product.
func (r *ProductRepo) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE merchant_id=$1 AND id=$2`, merchantID, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// List returns a filtered, paginated page of a merchant's catalog.
func (r *ProductRepo) List(ctx context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
	where := `WHERE merchant_id=$1`
	args := []any{params.MerchantID}
	argN := 2

	if params.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d)", argN, argN)
		args = append(args, "%"+params.Search+"%")
		argN++
	}
	if params.Category != "" {
		where += fmt.Sprintf(" AND category=$%d", argN)
		args = append(args, params.Category)
		argN++
	}
	if params.ActiveOnly {
		where += " AND is_active=true"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page, pageSize := normalizePage(params.Page, params.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, argN, argN+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

// normalizePage applies the default page/page-size bounds shared by every
// paginated list query.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

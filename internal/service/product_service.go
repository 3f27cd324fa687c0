package service

import (
	"context"
	"fmt"
	"time"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"

	"github.com/google/uuid"
)

// productService implements ports.ProductService over ProductRepository.
type productService struct {
	repo ports.ProductRepository
}

// NewProductService creates a new productService.
func NewProductService(repo ports.ProductRepository) ports.ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, p *domain.Product) error {
	existing, err := s.repo.GetBySKU(ctx, p.MerchantID, p.SKU)
	if err != nil {
		return fmt.Errorf("check existing sku: %w", err)
	}
	if existing != nil {
		return apperror.ErrConflict("a product with this SKU already exists")
	}

	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *productService) Update(ctx context.Context, p *domain.Product) error {
	existing, err := s.repo.GetByID(ctx, p.MerchantID, p.ID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if existing == nil {
		return apperror.ErrNotFound("product")
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (s *productService) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, merchantID, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *productService) Get(ctx context.Context, merchantID, id uuid.UUID) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, apperror.ErrNotFound("product")
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
	products, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

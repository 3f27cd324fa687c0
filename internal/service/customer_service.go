package service

import (
	"context"
	"fmt"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"

	"github.com/google/uuid"
)

// customerService implements ports.CustomerService as a thin merchant-facing
// read layer over CustomerRepository; resolution/creation is CustomerMatcher's job.
type customerService struct {
	repo ports.CustomerRepository
}

// NewCustomerService creates a new customerService.
func NewCustomerService(repo ports.CustomerRepository) ports.CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Search(ctx context.Context, params ports.CustomerSearchParams) ([]domain.CustomerAggregate, int64, error) {
	results, total, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("search customers: %w", err)
	}
	return results, total, nil
}

func (s *customerService) Get(ctx context.Context, merchantID, customerID uuid.UUID) (*domain.Customer, error) {
	c, err := s.repo.GetByID(ctx, merchantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if c == nil {
		return nil, apperror.ErrNotFound("customer")
	}
	return c, nil
}

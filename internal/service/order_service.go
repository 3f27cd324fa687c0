package service

import (
	"context"
	"fmt"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"

	"github.com/google/uuid"
)

// orderService implements ports.OrderService as a read-only view over
// orders auto-created by InvoiceLifecycle; nothing here mutates an order.
type orderService struct {
	repo ports.OrderRepository
}

// NewOrderService creates a new orderService.
func NewOrderService(repo ports.OrderRepository) ports.OrderService {
	return &orderService{repo: repo}
}

func (s *orderService) Get(ctx context.Context, merchantID, orderID uuid.UUID) (*domain.Order, error) {
	o, err := s.repo.GetByIDForMerchant(ctx, merchantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, apperror.ErrNotFound("order")
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context, merchantID uuid.UUID, page, pageSize int) ([]domain.Order, int64, error) {
	orders, total, err := s.repo.List(ctx, merchantID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

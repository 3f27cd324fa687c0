package service

import (
	"context"
	"testing"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrderRepo is a hand-rolled in-memory stand-in for ports.OrderRepository.
type fakeOrderRepo struct {
	orders []domain.Order
}

func (f *fakeOrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	f.orders = append(f.orders, *o)
	return nil
}

func (f *fakeOrderRepo) GetBySourceInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.SourceInvoiceID == invoiceID {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) GetByIDForMerchant(ctx context.Context, merchantID, id uuid.UUID) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.MerchantID == merchantID && o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	for _, o := range f.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, merchantID uuid.UUID, page, pageSize int) ([]domain.Order, int64, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.MerchantID == merchantID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func TestOrderService_Get_Found(t *testing.T) {
	merchantID := uuid.New()
	id := uuid.New()
	repo := &fakeOrderRepo{orders: []domain.Order{{ID: id, MerchantID: merchantID, OrderNumber: "ORD-202601-0001"}}}
	svc := NewOrderService(repo)

	o, err := svc.Get(context.Background(), merchantID, id)
	require.NoError(t, err)
	assert.Equal(t, "ORD-202601-0001", o.OrderNumber)
}

func TestOrderService_Get_NotFound(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewOrderService(repo)

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrNotFound("order").Code, appErr.Code)
}

func TestOrderService_List_FiltersByMerchant(t *testing.T) {
	merchantID := uuid.New()
	repo := &fakeOrderRepo{orders: []domain.Order{
		{ID: uuid.New(), MerchantID: merchantID},
		{ID: uuid.New(), MerchantID: uuid.New()},
	}}
	svc := NewOrderService(repo)

	orders, total, err := svc.List(context.Background(), merchantID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, orders, 1)
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"invoicing-backend/internal/core/ports"

	"github.com/google/uuid"
)

const maxNumberCollisionAttempts = 100

const numberSuffixCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const tokenCharset = "0123456789abcdefghijklmnopqrstuvwxyz"

// IdMinterServiceImpl mints human-facing invoice/order numbers and opaque
// customer-portal tokens.
type IdMinterServiceImpl struct {
	invoiceRepo ports.InvoiceRepository
	orderRepo   ports.OrderRepository
}

// NewIdMinterService creates a new IdMinterServiceImpl.
func NewIdMinterService(invoiceRepo ports.InvoiceRepository, orderRepo ports.OrderRepository) *IdMinterServiceImpl {
	return &IdMinterServiceImpl{invoiceRepo: invoiceRepo, orderRepo: orderRepo}
}

// NextInvoiceNumber mints an invoice number of the form INV-YYYYMMDD-XXXX,
// where XXXX is a fresh random uppercase-alphanumeric suffix on every
// collision-probe attempt. Invoice and order numbers share one global
// namespace, so both tables are probed before a candidate is accepted.
func (s *IdMinterServiceImpl) NextInvoiceNumber(ctx context.Context, merchantID uuid.UUID) (string, error) {
	return s.nextNumber(ctx, "INV")
}

// NextOrderNumber mints an order number of the form ORD-YYYYMMDD-XXXX using
// the same global collision-probe strategy as invoice numbers.
func (s *IdMinterServiceImpl) NextOrderNumber(ctx context.Context, merchantID uuid.UUID) (string, error) {
	return s.nextNumber(ctx, "ORD")
}

func (s *IdMinterServiceImpl) nextNumber(ctx context.Context, prefix string) (string, error) {
	datePart := time.Now().UTC().Format("20060102")
	for attempt := 0; attempt < maxNumberCollisionAttempts; attempt++ {
		suffix, err := randomString(4, numberSuffixCharset)
		if err != nil {
			return "", fmt.Errorf("generate number suffix: %w", err)
		}
		candidate := fmt.Sprintf("%s-%s-%s", prefix, datePart, suffix)
		taken, err := s.numberTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("mint %s number: exhausted %d collision attempts", prefix, maxNumberCollisionAttempts)
}

// numberTaken probes both the invoice and order tables: invoice numbers and
// order numbers are unique across the whole system, not merely within one
// merchant or one document type.
func (s *IdMinterServiceImpl) numberTaken(ctx context.Context, number string) (bool, error) {
	invExists, err := s.invoiceRepo.NumberExists(ctx, number)
	if err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	if invExists {
		return true, nil
	}
	orderExists, err := s.orderRepo.NumberExists(ctx, number)
	if err != nil {
		return false, fmt.Errorf("check order number: %w", err)
	}
	return orderExists, nil
}

// CustomerToken mints an opaque customer-portal token of the form
// inv_<9 random base36 chars>_<base36 mint timestamp>.
func (s *IdMinterServiceImpl) CustomerToken() (string, error) {
	random, err := randomString(9, tokenCharset)
	if err != nil {
		return "", fmt.Errorf("generate customer token: %w", err)
	}
	stamp := strconv.FormatInt(time.Now().UTC().UnixMilli(), 36)
	return fmt.Sprintf("inv_%s_%s", random, stamp), nil
}

// FinalPaymentToken mints an opaque 32-byte hex token for the final-payment sub-flow.
func (s *IdMinterServiceImpl) FinalPaymentToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate final payment token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func randomString(n int, charset string) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out), nil
}

package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
)

// fuzzyNameThreshold is the minimum name-similarity score (1 - normalized
// edit distance) above which two names are considered the same customer.
const fuzzyNameThreshold = 0.80

var nonDigitPattern = regexp.MustCompile(`\D`)

// CustomerMatcherServiceImpl resolves an invoice's billing details to a
// stable merchant-scoped Customer record via an email -> phone -> fuzzy-name
// -> create hierarchy.
type CustomerMatcherServiceImpl struct {
	customerRepo ports.CustomerRepository
}

// NewCustomerMatcherService creates a new CustomerMatcherServiceImpl.
func NewCustomerMatcherService(customerRepo ports.CustomerRepository) *CustomerMatcherServiceImpl {
	return &CustomerMatcherServiceImpl{customerRepo: customerRepo}
}

// Resolve finds an existing customer for the merchant matching on email,
// then normalized phone, then fuzzy name similarity, creating a new
// auto-extracted customer only when none of those match.
func (s *CustomerMatcherServiceImpl) Resolve(ctx context.Context, merchantID uuid.UUID, match domain.CustomerMatch) (*domain.Customer, error) {
	if match.Email != "" {
		existing, err := s.customerRepo.GetByEmail(ctx, merchantID, strings.ToLower(strings.TrimSpace(match.Email)))
		if err != nil {
			return nil, fmt.Errorf("lookup by email: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	normalizedPhone := normalizePhone(match.Phone)
	if normalizedPhone != "" {
		existing, err := s.customerRepo.GetByPhone(ctx, merchantID, normalizedPhone)
		if err != nil {
			return nil, fmt.Errorf("lookup by phone: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	if match.Name != "" {
		candidates, err := s.customerRepo.ListForMatching(ctx, merchantID)
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		if best := bestNameMatch(match.Name, candidates); best != nil {
			return best, nil
		}
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:               uuid.New(),
		MerchantID:       merchantID,
		Name:             match.Name,
		Address:          "",
		ExtractionMethod: domain.ExtractionMethodAuto,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if match.Email != "" {
		email := strings.ToLower(strings.TrimSpace(match.Email))
		customer.Email = &email
	}
	if normalizedPhone != "" {
		customer.Phone = &normalizedPhone
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	return customer, nil
}

// bestNameMatch returns the candidate whose name most closely matches name by
// normalized Levenshtein similarity, or nil if none clears fuzzyNameThreshold.
func bestNameMatch(name string, candidates []domain.Customer) *domain.Customer {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return nil
	}

	var best *domain.Customer
	bestScore := 0.0

	for i := range candidates {
		candidateName := strings.ToLower(strings.TrimSpace(candidates[i].Name))
		if candidateName == "" {
			continue
		}
		score := nameSimilarity(target, candidateName)
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	if bestScore > fuzzyNameThreshold {
		return best
	}
	return nil
}

// nameSimilarity returns 1 - (edit distance / max length), in [0, 1].
func nameSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

// normalizePhone strips every non-digit character so differently formatted
// representations of the same phone number compare equal.
func normalizePhone(phone string) string {
	return nonDigitPattern.ReplaceAllString(phone, "")
}

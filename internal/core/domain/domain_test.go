package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMerchant_IsActive(t *testing.T) {
	tests := []struct {
		name   string
		status MerchantStatus
		want   bool
	}{
		{"active", MerchantStatusActive, true},
		{"inactive", MerchantStatusInactive, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Merchant{Status: tt.status}
			assert.Equal(t, tt.want, m.IsActive())
		})
	}
}

func TestBrandingConfig_IsActive(t *testing.T) {
	tests := []struct {
		name string
		cfg  BrandingConfig
		want bool
	}{
		{"inactive plan", BrandingConfig{PremiumActive: false, CustomHeaderText: "Hi"}, false},
		{"active with no customization", BrandingConfig{PremiumActive: true}, false},
		{"active with header text", BrandingConfig{PremiumActive: true, CustomHeaderText: "Hi"}, true},
		{"active with header logo", BrandingConfig{PremiumActive: true, CustomHeaderLogoURL: "https://x/logo.png"}, true},
		{"active with footer logo", BrandingConfig{PremiumActive: true, CustomFooterLogoURL: "https://x/logo.png"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.IsActive())
		})
	}
}

func TestProduct_IsLowStock(t *testing.T) {
	tests := []struct {
		name          string
		qty, minLevel int
		want          bool
	}{
		{"above threshold", 10, 5, false},
		{"at threshold", 5, 5, true},
		{"below threshold", 2, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{StockQuantity: tt.qty, MinStockLevel: tt.minLevel}
			assert.Equal(t, tt.want, p.IsLowStock())
		})
	}
}

func TestInvoice_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status InvoiceStatus
		want   bool
	}{
		{"draft", InvoiceStatusDraft, false},
		{"sent", InvoiceStatusSent, false},
		{"dp paid", InvoiceStatusDPPaid, false},
		{"paid", InvoiceStatusPaid, true},
		{"cancelled", InvoiceStatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Invoice{Status: tt.status}
			assert.Equal(t, tt.want, i.IsTerminal())
		})
	}
}

func TestInvoice_IsEditable(t *testing.T) {
	tests := []struct {
		name   string
		status InvoiceStatus
		want   bool
	}{
		{"draft", InvoiceStatusDraft, true},
		{"sent", InvoiceStatusSent, true},
		{"dp paid", InvoiceStatusDPPaid, false},
		{"paid", InvoiceStatusPaid, false},
		{"cancelled", InvoiceStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Invoice{Status: tt.status}
			assert.Equal(t, tt.want, i.IsEditable())
		})
	}
}

func TestInvoice_HasDownPayment(t *testing.T) {
	assert.False(t, (&Invoice{}).HasDownPayment())
	assert.False(t, (&Invoice{PaymentSchedule: &PaymentSchedule{ScheduleType: "other"}}).HasDownPayment())
	assert.True(t, (&Invoice{PaymentSchedule: &PaymentSchedule{ScheduleType: "down_payment"}}).HasDownPayment())
}

func TestInvoice_Fingerprint(t *testing.T) {
	now := time.Now().UTC()
	i := &Invoice{Status: InvoiceStatusSent, UpdatedAt: now}

	status, updatedAt := i.Fingerprint()
	assert.Equal(t, InvoiceStatusSent, status)
	assert.True(t, now.Equal(updatedAt))
}

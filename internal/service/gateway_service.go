package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient is the minimal interface the gateway service needs from net/http,
// kept narrow so tests can substitute a fake transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// gatewayStatusPaid is the upstream status value that maps to a fully paid hosted invoice.
const gatewayStatusPaid = "PAID"

// gatewayCreateResponse is the subset of the hosted-invoice creation response this adapter reads.
type gatewayCreateResponse struct {
	ID          string `json:"id"`
	InvoiceURL  string `json:"invoice_url"`
	Status      string `json:"status"`
}

// gatewayWebhookPayload is the subset of the inbound webhook this adapter reads.
type gatewayWebhookPayload struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	AmountPaid int64  `json:"paid_amount"`
	Currency   string `json:"currency"`
}

// GatewayServiceImpl implements ports.PaymentGatewayService against a hosted
// payment-gateway HTTP API.
type GatewayServiceImpl struct {
	baseURL    string
	httpClient HTTPClient
	sigSvc     ports.SignatureService
	log        zerolog.Logger
}

// NewGatewayService creates a new GatewayServiceImpl.
func NewGatewayService(baseURL string, httpClient HTTPClient, sigSvc ports.SignatureService, log zerolog.Logger) *GatewayServiceImpl {
	return &GatewayServiceImpl{
		baseURL:    baseURL,
		httpClient: httpClient,
		sigSvc:     sigSvc,
		log:        log,
	}
}

// TestConnection validates an API key against the gateway's account endpoint.
func (s *GatewayServiceImpl) TestConnection(ctx context.Context, apiKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v2/balance", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(apiKey, "")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// CreateHostedInvoice asks the gateway to create a hosted payment page for the invoice.
func (s *GatewayServiceImpl) CreateHostedInvoice(ctx context.Context, cfg domain.PaymentMethodConfig, inv *domain.Invoice) (string, error) {
	apiKey, _ := cfg.Config["apiKey"].(string)
	if apiKey == "" {
		return "", fmt.Errorf("gateway api key not configured")
	}

	// external_id carries the invoice number so an inbound webhook can
	// resolve the invoice without prior merchant context; the millisecond
	// suffix disambiguates retried hosted-invoice creation for the same invoice.
	body, err := json.Marshal(map[string]any{
		"external_id": fmt.Sprintf("%s-%d", inv.InvoiceNumber, time.Now().UnixMilli()),
		"amount":      inv.GrandTotal,
		"currency":    inv.Currency,
		"payer_email": inv.CustomerEmail,
		"description": fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= len(waitBeforeRetry); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(waitBeforeRetry[attempt-1]):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			s.log.Warn().Err(lastErr).Int("attempt", attempt+1).Msg("gateway: retrying hosted invoice creation")
		}

		invoiceURL, err := s.doCreateHostedInvoice(ctx, apiKey, body)
		if err == nil {
			return invoiceURL, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("create hosted invoice: %w", lastErr)
}

func (s *GatewayServiceImpl) doCreateHostedInvoice(ctx context.Context, apiKey string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v2/invoices", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(apiKey, "")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var parsed gatewayCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}

	return parsed.InvoiceURL, nil
}

// VerifyWebhookSignature checks an inbound webhook's HMAC-SHA256 signature.
func (s *GatewayServiceImpl) VerifyWebhookSignature(payload []byte, signature string, secret string) bool {
	return s.sigSvc.Verify(secret, string(payload), signature)
}

// ParseWebhookEvent normalizes a gateway webhook body into a GatewayEvent.
func (s *GatewayServiceImpl) ParseWebhookEvent(payload []byte) (*ports.GatewayEvent, error) {
	var parsed gatewayWebhookPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal webhook payload: %w", err)
	}

	status := "pending"
	if parsed.Status == gatewayStatusPaid {
		status = "paid"
	}

	return &ports.GatewayEvent{
		ExternalID: parsed.ID,
		Status:     status,
		AmountPaid: parsed.AmountPaid,
		Currency:   parsed.Currency,
	}, nil
}

// waitBeforeRetry mirrors the teacher's delivery backoff cadence for outbound
// gateway calls; CreateHostedInvoice sleeps these intervals between attempts.
var waitBeforeRetry = []time.Duration{
	2 * time.Second,
	5 * time.Second,
	15 * time.Second,
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxFingerprintRetries = 3

// InvoiceLifecycleServiceImpl implements ports.InvoiceLifecycleService: the
// invoice state machine, payment-confirmation sub-flow, idempotent
// auto-order creation and the gateway webhook entrypoint.
type InvoiceLifecycleServiceImpl struct {
	invoiceRepo  ports.InvoiceRepository
	orderRepo    ports.OrderRepository
	productRepo  ports.ProductRepository
	settingsRepo ports.BusinessSettingsRepository
	methodRepo   ports.PaymentMethodRepository
	merchantRepo ports.MerchantRepository
	idMinter     ports.IdMinterService
	matcher      ports.CustomerMatcherService
	gateway      ports.PaymentGatewayService
	queue        ports.AsyncQueueService
	auditSvc     ports.AuditService
	transactor   ports.DBTransactor
	encSvc       ports.EncryptionService
	log          zerolog.Logger
}

// NewInvoiceLifecycleService creates a new InvoiceLifecycleServiceImpl.
func NewInvoiceLifecycleService(
	invoiceRepo ports.InvoiceRepository,
	orderRepo ports.OrderRepository,
	productRepo ports.ProductRepository,
	settingsRepo ports.BusinessSettingsRepository,
	methodRepo ports.PaymentMethodRepository,
	merchantRepo ports.MerchantRepository,
	idMinter ports.IdMinterService,
	matcher ports.CustomerMatcherService,
	gateway ports.PaymentGatewayService,
	queue ports.AsyncQueueService,
	auditSvc ports.AuditService,
	transactor ports.DBTransactor,
	encSvc ports.EncryptionService,
	log zerolog.Logger,
) *InvoiceLifecycleServiceImpl {
	return &InvoiceLifecycleServiceImpl{
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		settingsRepo: settingsRepo,
		methodRepo:   methodRepo,
		merchantRepo: merchantRepo,
		idMinter:     idMinter,
		matcher:      matcher,
		gateway:      gateway,
		queue:        queue,
		auditSvc:     auditSvc,
		transactor:   transactor,
		encSvc:       encSvc,
		log:          log,
	}
}

// Preview prices a requested invoice without persisting it.
func (s *InvoiceLifecycleServiceImpl) Preview(ctx context.Context, merchantID uuid.UUID, req ports.InvoicePreviewRequest) (*domain.Invoice, error) {
	return s.price(ctx, merchantID, req)
}

// Create prices and persists a new invoice in draft status.
func (s *InvoiceLifecycleServiceImpl) Create(ctx context.Context, merchantID uuid.UUID, req ports.InvoicePreviewRequest) (*domain.Invoice, error) {
	inv, err := s.price(ctx, merchantID, req)
	if err != nil {
		return nil, err
	}

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}

	customer, err := s.matcher.Resolve(ctx, merchantID, domain.CustomerMatch{
		Name:  req.CustomerName,
		Email: req.CustomerEmail,
		Phone: req.CustomerPhone,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve customer: %w", err))
	}

	number, err := s.idMinter.NextInvoiceNumber(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mint invoice number: %w", err))
	}

	customerToken, err := s.idMinter.CustomerToken()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mint customer token: %w", err))
	}

	now := time.Now().UTC()
	inv.ID = uuid.New()
	inv.MerchantID = merchantID
	inv.InvoiceNumber = number
	inv.CustomerID = &customer.ID
	inv.MerchantSnapshotName = merchant.BusinessName
	inv.MerchantSnapshotEmail = merchant.Email
	inv.InvoiceDate = now
	inv.OriginalDueDate = req.DueDate
	inv.Status = domain.InvoiceStatusDraft
	inv.PaymentStatus = domain.PaymentStatusPending
	inv.CustomerToken = customerToken
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if inv.HasDownPayment() {
		inv.PaymentStage = domain.PaymentStageDownPayment
	} else {
		inv.PaymentStage = domain.PaymentStageFull
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.invoiceRepo.Create(ctx, dbTx, inv); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create invoice: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.auditSvc.Log(ctx, &merchantID, domain.AuditActionInvoiceCreate, "invoice", inv.ID.String(), "", nil)

	return inv, nil
}

// price computes subtotal, tax, grand total and (if requested) the down-payment
// schedule for a set of invoice lines, resolving unit prices against the
// product catalog where the caller didn't supply one explicitly.
func (s *InvoiceLifecycleServiceImpl) price(ctx context.Context, merchantID uuid.UUID, req ports.InvoicePreviewRequest) (*domain.Invoice, error) {
	if len(req.Items) == 0 {
		return nil, apperror.Validation("invoice must have at least one line item")
	}

	settings, err := s.settingsRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load business settings: %w", err))
	}

	items := make([]domain.InvoiceItem, 0, len(req.Items))
	var subtotal, taxTotal int64

	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, apperror.Validation("line item quantity must be positive")
		}

		unitPrice := int64(0)
		name := line.Name
		sku := line.SKU
		taxRate := 0.0
		if settings != nil && settings.Tax.Enabled {
			taxRate = settings.Tax.Rate
		}

		if line.ProductID != nil {
			product, err := s.productRepo.GetByID(ctx, merchantID, *line.ProductID)
			if err != nil {
				return nil, apperror.InternalError(fmt.Errorf("load product: %w", err))
			}
			if product == nil {
				return nil, apperror.ErrNotFound("product")
			}
			unitPrice = product.UnitPrice
			name = product.Name
			sku = product.SKU
			taxRate = product.TaxRate
		}
		if line.UnitPrice != nil {
			unitPrice = *line.UnitPrice
		}
		if unitPrice <= 0 {
			return nil, apperror.Validation("line item unit price must be resolvable and positive")
		}

		lineTotal := int64(line.Quantity * float64(unitPrice))
		lineTax := int64(float64(lineTotal) * taxRate / 100)

		items = append(items, domain.InvoiceItem{
			ProductName: name,
			SKU:         sku,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
			TaxRate:     taxRate,
			TaxAmount:   lineTax,
		})

		subtotal += lineTotal
		taxTotal += lineTax
	}

	grandTotal := subtotal + taxTotal + req.ShippingCost - req.Discount
	if grandTotal < 0 {
		return nil, apperror.Validation("discount and shipping cannot drive grand total negative")
	}

	inv := &domain.Invoice{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		DueDate:         req.DueDate,
		PaymentTerms:    req.PaymentTerms,
		Notes:           req.Notes,
		Items:           items,
		Subtotal:        subtotal,
		TaxAmount:       taxTotal,
		ShippingCost:    req.ShippingCost,
		Discount:        req.Discount,
		GrandTotal:      grandTotal,
		Currency:        "IDR",
	}

	if req.DownPaymentPct != nil {
		pct := *req.DownPaymentPct
		if pct <= 0 || pct >= 100 {
			return nil, apperror.Validation("down payment percentage must be between 0 and 100")
		}
		dpAmount := int64(float64(grandTotal) * pct / 100)
		inv.PaymentSchedule = &domain.PaymentSchedule{
			ScheduleType: "down_payment",
			DownPayment: domain.ScheduleLeg{
				Amount:     dpAmount,
				Percentage: pct,
				Status:     "pending",
			},
			RemainingBalance: domain.ScheduleLeg{
				Amount:  grandTotal - dpAmount,
				Status:  "pending",
				DueDate: req.RemainingBalanceDueDate,
			},
		}
	}

	return inv, nil
}

// Send transitions a draft invoice to sent.
func (s *InvoiceLifecycleServiceImpl) Send(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.Get(ctx, merchantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return nil, apperror.ErrImmutable("only a draft invoice can be sent")
	}

	now := time.Now().UTC()
	return s.transitionWithRetry(ctx, inv, func(i *domain.Invoice) {
		i.Status = domain.InvoiceStatusSent
		i.SentAt = &now
	}, domain.AuditActionInvoiceSend)
}

// Cancel transitions an editable invoice to cancelled.
func (s *InvoiceLifecycleServiceImpl) Cancel(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.Get(ctx, merchantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.IsEditable() {
		return nil, apperror.ErrImmutable("invoice can no longer be cancelled")
	}

	return s.transitionWithRetry(ctx, inv, func(i *domain.Invoice) {
		i.Status = domain.InvoiceStatusCancelled
	}, domain.AuditActionInvoiceCancel)
}

// Get returns a merchant-scoped invoice.
func (s *InvoiceLifecycleServiceImpl) Get(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, merchantID, invoiceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find invoice: %w", err))
	}
	if inv == nil {
		return nil, apperror.ErrNotFound("invoice")
	}
	return inv, nil
}

// GetByInvoiceNumber resolves a merchant-scoped invoice by its human-facing number.
func (s *InvoiceLifecycleServiceImpl) GetByInvoiceNumber(ctx context.Context, merchantID uuid.UUID, number string) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByInvoiceNumber(ctx, merchantID, number)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find invoice by number: %w", err))
	}
	if inv == nil {
		return nil, apperror.ErrNotFound("invoice")
	}
	return inv, nil
}

// GetByCustomerToken resolves an invoice via its opaque customer-portal token.
func (s *InvoiceLifecycleServiceImpl) GetByCustomerToken(ctx context.Context, token string) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByCustomerToken(ctx, token)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find invoice by token: %w", err))
	}
	if inv == nil {
		return nil, apperror.ErrNotFound("invoice")
	}
	return inv, nil
}

// GetByFinalPaymentToken resolves an invoice via its opaque final-payment token.
func (s *InvoiceLifecycleServiceImpl) GetByFinalPaymentToken(ctx context.Context, token string) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByFinalPaymentToken(ctx, token)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find invoice by token: %w", err))
	}
	if inv == nil {
		return nil, apperror.ErrNotFound("invoice")
	}
	return inv, nil
}

// List returns a merchant-scoped, filtered, paginated invoice list.
func (s *InvoiceLifecycleServiceImpl) List(ctx context.Context, params ports.InvoiceListParams) ([]domain.Invoice, int64, error) {
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list invoices: %w", err))
	}
	return invoices, total, nil
}

// SubmitPaymentConfirmation records a customer-uploaded proof of payment,
// moving the invoice into confirmation_pending for merchant review.
func (s *InvoiceLifecycleServiceImpl) SubmitPaymentConfirmation(ctx context.Context, token string, req ports.PaymentConfirmationRequest) (*domain.Invoice, error) {
	inv, err := s.GetByCustomerToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvoiceStatusSent && inv.Status != domain.InvoiceStatusDPPaid {
		return nil, apperror.ErrImmutable("invoice is not awaiting payment confirmation")
	}

	now := time.Now().UTC()
	return s.transitionWithRetry(ctx, inv, func(i *domain.Invoice) {
		i.PaymentConfirmationFile = &req.FileURL
		i.PaymentConfirmationNotes = &req.Notes
		i.PaymentConfirmationDate = &now
		i.ConfirmationStatus = domain.ConfirmationStatusPending
		i.PaymentStatus = domain.PaymentStatusConfirmationPending
	}, "")
}

// ApprovePaymentConfirmation accepts a pending confirmation, advancing the
// invoice to dp_paid (if a down-payment leg remains) or paid (otherwise),
// triggering idempotent auto-order creation on the final transition to paid.
func (s *InvoiceLifecycleServiceImpl) ApprovePaymentConfirmation(ctx context.Context, merchantID, invoiceID uuid.UUID, notes string) (*domain.Invoice, error) {
	inv, err := s.Get(ctx, merchantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.ConfirmationStatus != domain.ConfirmationStatusPending {
		return nil, apperror.ErrImmutable("invoice has no pending payment confirmation")
	}

	now := time.Now().UTC()
	finishingDownPayment := inv.HasDownPayment() && inv.PaymentStage == domain.PaymentStageDownPayment

	updated, err := s.transitionWithRetry(ctx, inv, func(i *domain.Invoice) {
		i.ConfirmationStatus = domain.ConfirmationStatusApproved
		if notes != "" {
			i.MerchantNotes = &notes
		}
		i.ReviewedDate = &now

		if finishingDownPayment {
			i.Status = domain.InvoiceStatusDPPaid
			i.PaymentStage = domain.PaymentStageFinalPayment
			i.PaymentStatus = domain.PaymentStatusPartial
			i.DPConfirmedDate = &now
			i.PaymentSchedule.DownPayment.Status = "paid"
			i.PaymentSchedule.DownPayment.PaidDate = &now
			if i.PaymentSchedule.RemainingBalance.DueDate != nil {
				i.DueDate = *i.PaymentSchedule.RemainingBalance.DueDate
			}
		} else {
			i.Status = domain.InvoiceStatusPaid
			i.PaymentStage = domain.PaymentStageCompleted
			i.PaymentStatus = domain.PaymentStatusPaid
			i.PaidAt = &now
			if i.HasDownPayment() {
				i.FinalPaymentConfirmedDate = &now
				i.PaymentSchedule.RemainingBalance.Status = "paid"
				i.PaymentSchedule.RemainingBalance.PaidDate = &now
			}
		}
	}, domain.AuditActionPaymentConfirm)
	if err != nil {
		return nil, err
	}

	if finishingDownPayment {
		token, mintErr := s.idMinter.FinalPaymentToken()
		if mintErr == nil {
			updated.FinalPaymentToken = &token
			dbTx, txErr := s.transactor.Begin(ctx)
			if txErr == nil {
				_ = s.invoiceRepo.Update(ctx, dbTx, updated)
				_ = dbTx.Commit(ctx)
			}
		}
	}

	if updated.Status == domain.InvoiceStatusPaid {
		invoiceID := updated.ID
		merchantID := updated.MerchantID
		s.queue.Enqueue(func(jobCtx context.Context) {
			if _, err := s.createOrderForInvoice(jobCtx, merchantID, invoiceID); err != nil {
				s.log.Warn().Err(err).Str("invoice_id", invoiceID.String()).Msg("auto order creation failed")
			}
		})
	}

	return updated, nil
}

// RejectPaymentConfirmation declines a pending confirmation, reverting the
// invoice to awaiting payment.
func (s *InvoiceLifecycleServiceImpl) RejectPaymentConfirmation(ctx context.Context, merchantID, invoiceID uuid.UUID, notes string) (*domain.Invoice, error) {
	inv, err := s.Get(ctx, merchantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.ConfirmationStatus != domain.ConfirmationStatusPending {
		return nil, apperror.ErrImmutable("invoice has no pending payment confirmation")
	}

	now := time.Now().UTC()
	return s.transitionWithRetry(ctx, inv, func(i *domain.Invoice) {
		i.ConfirmationStatus = domain.ConfirmationStatusRejected
		if notes != "" {
			i.MerchantNotes = &notes
		}
		i.ReviewedDate = &now
		if i.HasDownPayment() && i.PaymentStage == domain.PaymentStageFinalPayment {
			i.PaymentStatus = domain.PaymentStatusPartial
		} else {
			i.PaymentStatus = domain.PaymentStatusPending
		}
	}, domain.AuditActionPaymentReject)
}

// ConfirmDownPayment lets a merchant manually confirm receipt of a down
// payment (e.g. for bank-transfer methods with no uploaded proof), bypassing
// the customer-submitted confirmation queue.
func (s *InvoiceLifecycleServiceImpl) ConfirmDownPayment(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.Get(ctx, merchantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.HasDownPayment() || inv.PaymentStage != domain.PaymentStageDownPayment {
		return nil, apperror.ErrImmutable("invoice has no pending down payment")
	}

	now := time.Now().UTC()
	updated, err := s.transitionWithRetry(ctx, inv, func(i *domain.Invoice) {
		i.Status = domain.InvoiceStatusDPPaid
		i.PaymentStage = domain.PaymentStageFinalPayment
		i.PaymentStatus = domain.PaymentStatusPartial
		i.DPConfirmedDate = &now
		i.ConfirmationStatus = domain.ConfirmationStatusApproved
		i.PaymentSchedule.DownPayment.Status = "paid"
		i.PaymentSchedule.DownPayment.PaidDate = &now
		if i.PaymentSchedule.RemainingBalance.DueDate != nil {
			i.DueDate = *i.PaymentSchedule.RemainingBalance.DueDate
		}
	}, domain.AuditActionPaymentConfirm)
	if err != nil {
		return nil, err
	}

	token, mintErr := s.idMinter.FinalPaymentToken()
	if mintErr == nil {
		updated.FinalPaymentToken = &token
		dbTx, txErr := s.transactor.Begin(ctx)
		if txErr == nil {
			_ = s.invoiceRepo.Update(ctx, dbTx, updated)
			_ = dbTx.Commit(ctx)
		}
	}

	return updated, nil
}

// HandleGatewayWebhook resolves, verifies and applies an inbound
// payment-gateway event. The invoice is resolved before the signature is
// checked because the webhook carries no merchant context of its own: the
// invoice number recovered from external_id is what tells us whose secret
// to verify against. No state is mutated until that verification passes.
func (s *InvoiceLifecycleServiceImpl) HandleGatewayWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhookEvent(payload)
	if err != nil {
		return apperror.Validation(fmt.Sprintf("invalid webhook payload: %v", err))
	}

	invoiceNumber, err := invoiceNumberFromExternalID(event.ExternalID)
	if err != nil {
		return apperror.Validation("invalid external id in webhook payload")
	}

	inv, err := s.invoiceRepo.GetByInvoiceNumberUnscoped(ctx, invoiceNumber)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find invoice by number: %w", err))
	}
	if inv == nil {
		return apperror.ErrNotFound("invoice")
	}

	if err := s.verifyWebhookSignature(ctx, inv.MerchantID, payload, signature); err != nil {
		return err
	}

	if event.Status != "paid" {
		return nil
	}

	if inv.IsTerminal() {
		return nil
	}

	now := time.Now().UTC()
	_, err = s.transitionWithRetry(ctx, inv, func(i *domain.Invoice) {
		i.Status = domain.InvoiceStatusPaid
		i.PaymentStage = domain.PaymentStageCompleted
		i.PaymentStatus = domain.PaymentStatusPaid
		i.ConfirmationStatus = domain.ConfirmationStatusApproved
		i.PaidAt = &now
	}, domain.AuditActionPaymentConfirm)
	if err != nil {
		return err
	}

	merchantID := inv.MerchantID
	invoiceID := inv.ID
	s.queue.Enqueue(func(jobCtx context.Context) {
		if _, err := s.createOrderForInvoice(jobCtx, merchantID, invoiceID); err != nil {
			s.log.Warn().Err(err).Str("invoice_id", invoiceID.String()).Msg("auto order creation failed")
		}
	})

	return nil
}

// verifyWebhookSignature loads the merchant's configured gateway secret and
// checks it against the raw webhook payload, returning ErrInvalidSignature
// whenever the merchant has no gateway configured or the signature doesn't match.
func (s *InvoiceLifecycleServiceImpl) verifyWebhookSignature(ctx context.Context, merchantID uuid.UUID, payload []byte, signature string) error {
	cfg, err := s.methodRepo.Get(ctx, merchantID, domain.PaymentMethodGateway)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load gateway config: %w", err))
	}
	if cfg == nil {
		return apperror.ErrInvalidSignature()
	}

	secret, _ := cfg.Config["apiKey"].(string)
	if secret == "" {
		return apperror.ErrInvalidSignature()
	}
	if s.encSvc.IsEncrypted(secret) {
		decrypted, err := s.encSvc.Decrypt(secret)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("decrypt gateway secret: %w", err))
		}
		secret = decrypted
	}

	if !s.gateway.VerifyWebhookSignature(payload, signature, secret) {
		return apperror.ErrInvalidSignature()
	}
	return nil
}

// invoiceNumberFromExternalID recovers the invoice number portion of a
// "<invoice_number>-<ms_epoch>" external_id, the shape CreateHostedInvoice mints.
func invoiceNumberFromExternalID(externalID string) (string, error) {
	idx := strings.LastIndex(externalID, "-")
	if idx <= 0 || idx == len(externalID)-1 {
		return "", fmt.Errorf("malformed external id: %s", externalID)
	}
	number, epoch := externalID[:idx], externalID[idx+1:]
	if _, err := strconv.ParseInt(epoch, 10, 64); err != nil {
		return "", fmt.Errorf("malformed external id epoch: %s", externalID)
	}
	return number, nil
}

// SyncPaidInvoicesToOrders reconciles any paid invoice missing its order,
// idempotently: a source invoice with an existing order is skipped.
func (s *InvoiceLifecycleServiceImpl) SyncPaidInvoicesToOrders(ctx context.Context, merchantID uuid.UUID) (int, error) {
	unsynced, err := s.invoiceRepo.ListPaidUnsynced(ctx, merchantID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("list unsynced invoices: %w", err))
	}

	created := 0
	for _, inv := range unsynced {
		order, err := s.createOrderForInvoice(ctx, merchantID, inv.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("invoice_id", inv.ID.String()).Msg("sync: order creation failed")
			continue
		}
		if order != nil {
			created++
		}
	}

	s.auditSvc.Log(ctx, &merchantID, domain.AuditActionOrderSync, "order", "", "", map[string]int{"created": created})

	return created, nil
}

// createOrderForInvoice creates the order for a paid invoice exactly once:
// an existing order for the same source invoice short-circuits the call.
func (s *InvoiceLifecycleServiceImpl) createOrderForInvoice(ctx context.Context, merchantID, invoiceID uuid.UUID) (*domain.Order, error) {
	existing, err := s.orderRepo.GetBySourceInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("check existing order: %w", err)
	}
	if existing != nil {
		return nil, nil
	}

	inv, err := s.invoiceRepo.GetByID(ctx, merchantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	if inv == nil || inv.Status != domain.InvoiceStatusPaid {
		return nil, nil
	}

	number, err := s.idMinter.NextOrderNumber(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("mint order number: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, domain.OrderItem{
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New(),
		MerchantID:      merchantID,
		OrderNumber:      number,
		SourceInvoiceID: invoiceID,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		GrandTotal:      inv.GrandTotal,
		Currency:        inv.Currency,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.orderRepo.Create(ctx, dbTx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return order, nil
}

// transitionWithRetry applies mutate to a fresh copy of inv and persists it
// via the conditional-update-with-fingerprint path, retrying on a lost race
// up to maxFingerprintRetries times by re-reading the row before re-applying
// mutate.
func (s *InvoiceLifecycleServiceImpl) transitionWithRetry(ctx context.Context, inv *domain.Invoice, mutate func(*domain.Invoice), action domain.AuditAction) (*domain.Invoice, error) {
	current := inv

	for attempt := 0; attempt < maxFingerprintRetries; attempt++ {
		fingerprint, fingerprintAt := current.Fingerprint()

		updated := *current
		mutate(&updated)
		updated.UpdatedAt = time.Now().UTC()

		dbTx, err := s.transactor.Begin(ctx)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
		}

		ok, err := s.invoiceRepo.UpdateStatus(ctx, dbTx, updated.ID, fingerprint, fingerprintAt.Unix(), &updated)
		if err != nil {
			dbTx.Rollback(ctx) //nolint:errcheck
			return nil, apperror.InternalError(fmt.Errorf("update invoice: %w", err))
		}
		if !ok {
			dbTx.Rollback(ctx) //nolint:errcheck
			fresh, err := s.invoiceRepo.GetByID(ctx, current.MerchantID, current.ID)
			if err != nil {
				return nil, apperror.InternalError(fmt.Errorf("re-read invoice: %w", err))
			}
			if fresh == nil {
				return nil, apperror.ErrNotFound("invoice")
			}
			current = fresh
			continue
		}

		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}

		if action != "" {
			s.auditSvc.Log(ctx, &updated.MerchantID, action, "invoice", updated.ID.String(), "", nil)
		}

		return &updated, nil
	}

	return nil, apperror.ErrConflict("invoice was updated concurrently, please retry")
}

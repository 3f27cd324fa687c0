package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"invoicing-backend/internal/core/domain"
	"invoicing-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const invoiceColumns = `id, merchant_id, invoice_number, customer_id, customer_name, customer_email,
	customer_phone, customer_address, merchant_snapshot_name, merchant_snapshot_email,
	invoice_date, due_date, original_due_date, status, payment_stage, payment_status,
	subtotal, tax_amount, shipping_cost, discount, grand_total, currency, payment_terms, notes,
	items, payment_schedule, customer_token, final_payment_token,
	payment_confirmation_file, payment_confirmation_notes, payment_confirmation_date,
	confirmation_status, merchant_notes, reviewed_date, sent_at, paid_at,
	dp_confirmed_date, final_payment_confirmed_date, created_at, updated_at`

// InvoiceRepo implements ports.InvoiceRepository.
type InvoiceRepo struct {
	pool Pool
}

// NewInvoiceRepo creates a new InvoiceRepo.
func NewInvoiceRepo(pool Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	var itemsJSON []byte
	var scheduleJSON *[]byte

	err := row.Scan(
		&inv.ID, &inv.MerchantID, &inv.InvoiceNumber, &inv.CustomerID, &inv.CustomerName, &inv.CustomerEmail,
		&inv.CustomerPhone, &inv.CustomerAddress, &inv.MerchantSnapshotName, &inv.MerchantSnapshotEmail,
		&inv.InvoiceDate, &inv.DueDate, &inv.OriginalDueDate, &inv.Status, &inv.PaymentStage, &inv.PaymentStatus,
		&inv.Subtotal, &inv.TaxAmount, &inv.ShippingCost, &inv.Discount, &inv.GrandTotal, &inv.Currency, &inv.PaymentTerms, &inv.Notes,
		&itemsJSON, &scheduleJSON, &inv.CustomerToken, &inv.FinalPaymentToken,
		&inv.PaymentConfirmationFile, &inv.PaymentConfirmationNotes, &inv.PaymentConfirmationDate,
		&inv.ConfirmationStatus, &inv.MerchantNotes, &inv.ReviewedDate, &inv.SentAt, &inv.PaidAt,
		&inv.DPConfirmedDate, &inv.FinalPaymentConfirmedDate, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &inv.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if scheduleJSON != nil {
		var schedule domain.PaymentSchedule
		if err := json.Unmarshal(*scheduleJSON, &schedule); err != nil {
			return nil, fmt.Errorf("unmarshal payment schedule: %w", err)
		}
		inv.PaymentSchedule = &schedule
	}

	return &inv, nil
}

// Create inserts a new invoice inside the caller's transaction.
func (r *InvoiceRepo) Create(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error {
	itemsJSON, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	var scheduleJSON []byte
	if inv.PaymentSchedule != nil {
		scheduleJSON, err = json.Marshal(inv.PaymentSchedule)
		if err != nil {
			return fmt.Errorf("marshal payment schedule: %w", err)
		}
	}

	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,
			$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,$39)`

	_, err = tx.Exec(ctx, query,
		inv.ID, inv.MerchantID, inv.InvoiceNumber, inv.CustomerID, inv.CustomerName, inv.CustomerEmail,
		inv.CustomerPhone, inv.CustomerAddress, inv.MerchantSnapshotName, inv.MerchantSnapshotEmail,
		inv.InvoiceDate, inv.DueDate, inv.OriginalDueDate, inv.Status, inv.PaymentStage, inv.PaymentStatus,
		inv.Subtotal, inv.TaxAmount, inv.ShippingCost, inv.Discount, inv.GrandTotal, inv.Currency, inv.PaymentTerms, inv.Notes,
		itemsJSON, scheduleJSON, inv.CustomerToken, inv.FinalPaymentToken,
		inv.PaymentConfirmationFile, inv.PaymentConfirmationNotes, inv.PaymentConfirmationDate,
		inv.ConfirmationStatus, inv.MerchantNotes, inv.ReviewedDate, inv.SentAt, inv.PaidAt,
		inv.DPConfirmedDate, inv.FinalPaymentConfirmedDate, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	return nil
}

// GetByID fetches a merchant-scoped invoice.
func (r *InvoiceRepo) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*domain.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE merchant_id=$1 AND id=$2`, merchantID, id)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByIDForUpdate fetches an invoice row-locked for update within tx.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Invoice, error) {
	row := tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1 FOR UPDATE`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("get invoice for update: %w", err)
	}
	return inv, nil
}

// GetByCustomerToken resolves an invoice via its opaque customer-portal token.
func (r *InvoiceRepo) GetByCustomerToken(ctx context.Context, token string) (*domain.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE customer_token=$1`, token)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("get invoice by customer token: %w", err)
	}
	return inv, nil
}

// GetByFinalPaymentToken resolves an invoice via its opaque final-payment token.
func (r *InvoiceRepo) GetByFinalPaymentToken(ctx context.Context, token string) (*domain.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE final_payment_token=$1`, token)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("get invoice by final payment token: %w", err)
	}
	return inv, nil
}

// GetByInvoiceNumber resolves a merchant-scoped invoice by its human-facing number.
func (r *InvoiceRepo) GetByInvoiceNumber(ctx context.Context, merchantID uuid.UUID, number string) (*domain.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE merchant_id=$1 AND invoice_number=$2`, merchantID, number)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("get invoice by number: %w", err)
	}
	return inv, nil
}

// GetByInvoiceNumberUnscoped resolves an invoice by its human-facing number
// with no merchant scoping, the one path a payment-gateway webhook can use
// before a merchant is known.
func (r *InvoiceRepo) GetByInvoiceNumberUnscoped(ctx context.Context, number string) (*domain.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number=$1`, number)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("get invoice by number: %w", err)
	}
	return inv, nil
}

// Update persists a modified invoice unconditionally; use UpdateStatus for
// any write that must guard against a concurrent transition.
func (r *InvoiceRepo) Update(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error {
	itemsJSON, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	var scheduleJSON []byte
	if inv.PaymentSchedule != nil {
		scheduleJSON, err = json.Marshal(inv.PaymentSchedule)
		if err != nil {
			return fmt.Errorf("marshal payment schedule: %w", err)
		}
	}

	query := `UPDATE invoices SET
		status=$1, payment_stage=$2, payment_status=$3, items=$4, payment_schedule=$5,
		final_payment_token=$6, payment_confirmation_file=$7, payment_confirmation_notes=$8,
		payment_confirmation_date=$9, confirmation_status=$10, merchant_notes=$11, reviewed_date=$12,
		sent_at=$13, paid_at=$14, dp_confirmed_date=$15, final_payment_confirmed_date=$16, updated_at=$17
		WHERE id=$18`

	_, err = tx.Exec(ctx, query,
		inv.Status, inv.PaymentStage, inv.PaymentStatus, itemsJSON, scheduleJSON,
		inv.FinalPaymentToken, inv.PaymentConfirmationFile, inv.PaymentConfirmationNotes,
		inv.PaymentConfirmationDate, inv.ConfirmationStatus, inv.MerchantNotes, inv.ReviewedDate,
		inv.SentAt, inv.PaidAt, inv.DPConfirmedDate, inv.FinalPaymentConfirmedDate, inv.UpdatedAt, inv.ID,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// UpdateStatus applies the full row from inv, but only if the row's current
// (status, updated_at) still matches the caller's observed fingerprint.
// Returns ok=false (no error) when the fingerprint no longer matches,
// signalling the caller lost a race and must re-read and retry.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, fingerprint domain.InvoiceStatus, fingerprintAt int64, inv *domain.Invoice) (bool, error) {
	itemsJSON, err := json.Marshal(inv.Items)
	if err != nil {
		return false, fmt.Errorf("marshal items: %w", err)
	}
	var scheduleJSON []byte
	if inv.PaymentSchedule != nil {
		scheduleJSON, err = json.Marshal(inv.PaymentSchedule)
		if err != nil {
			return false, fmt.Errorf("marshal payment schedule: %w", err)
		}
	}

	query := `UPDATE invoices SET
		status=$1, payment_stage=$2, payment_status=$3, items=$4, payment_schedule=$5,
		final_payment_token=$6, payment_confirmation_file=$7, payment_confirmation_notes=$8,
		payment_confirmation_date=$9, confirmation_status=$10, merchant_notes=$11, reviewed_date=$12,
		sent_at=$13, paid_at=$14, dp_confirmed_date=$15, final_payment_confirmed_date=$16, updated_at=$17
		WHERE id=$18 AND status=$19 AND extract(epoch from updated_at)::bigint=$20`

	tag, err := tx.Exec(ctx, query,
		inv.Status, inv.PaymentStage, inv.PaymentStatus, itemsJSON, scheduleJSON,
		inv.FinalPaymentToken, inv.PaymentConfirmationFile, inv.PaymentConfirmationNotes,
		inv.PaymentConfirmationDate, inv.ConfirmationStatus, inv.MerchantNotes, inv.ReviewedDate,
		inv.SentAt, inv.PaidAt, inv.DPConfirmedDate, inv.FinalPaymentConfirmedDate, inv.UpdatedAt,
		id, fingerprint, fingerprintAt,
	)
	if err != nil {
		return false, fmt.Errorf("conditional update invoice: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// List returns a merchant-scoped, filtered, paginated invoice list.
func (r *InvoiceRepo) List(ctx context.Context, params ports.InvoiceListParams) ([]domain.Invoice, int64, error) {
	where := `WHERE merchant_id=$1`
	args := []any{params.MerchantID}
	argN := 2

	if params.Status != nil {
		where += fmt.Sprintf(" AND status=$%d", argN)
		args = append(args, *params.Status)
		argN++
	}
	if params.CustomerID != nil {
		where += fmt.Sprintf(" AND customer_id=$%d", argN)
		args = append(args, *params.CustomerID)
		argN++
	}
	if params.From != nil {
		where += fmt.Sprintf(" AND invoice_date >= to_timestamp($%d)", argN)
		args = append(args, *params.From)
		argN++
	}
	if params.To != nil {
		where += fmt.Sprintf(" AND invoice_date <= to_timestamp($%d)", argN)
		args = append(args, *params.To)
		argN++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	page, pageSize := normalizePage(params.Page, params.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM invoices %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, where, argN, argN+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, total, rows.Err()
}

// ListPaidUnsynced returns paid invoices with no corresponding order row yet.
func (r *InvoiceRepo) ListPaidUnsynced(ctx context.Context, merchantID uuid.UUID) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices i
		WHERE i.merchant_id=$1 AND i.status='paid'
		AND NOT EXISTS (SELECT 1 FROM orders o WHERE o.source_invoice_id = i.id)`

	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list unsynced invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// NumberExists reports whether any invoice, for any merchant, already carries number.
func (r *InvoiceRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invoices WHERE invoice_number=$1)`,
		number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check invoice number exists: %w", err)
	}
	return exists, nil
}

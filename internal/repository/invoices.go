package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"aegis/internal/database"
	apperrors "aegis/internal/errors"
	"aegis/internal/models"
)

type InvoiceRepository struct {
	db *database.DB
}

func NewInvoiceRepository(db *database.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, invoice_number, booking_id, amount, deposit_amount, status,
	       due_date, paid_date, processor_id, created_at, updated_at`

func scanInvoice(row interface{ Scan(...any) error }, inv *models.Invoice) error {
	return row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.BookingID,
		&inv.Amount,
		&inv.DepositAmount,
		&inv.Status,
		&inv.DueDate,
		&inv.PaidDate,
		&inv.ProcessorID,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (invoice_number, booking_id, amount, deposit_amount, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		invoice.InvoiceNumber,
		invoice.BookingID,
		invoice.Amount,
		invoice.DepositAmount,
		invoice.Status,
		invoice.DueDate,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return fmt.Errorf("%w: invoice number %s", apperrors.ErrConflict, invoice.InvoiceNumber)
	}

	return err
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	err := scanInvoice(r.db.QueryRowContext(ctx, query, id), invoice)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return invoice, err
}

func (r *InvoiceRepository) List(ctx context.Context) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// MarkSent transitions a draft invoice to sent and stores the processor id.
// The status guard in the WHERE clause makes a duplicate send a no-op at the
// database level.
func (r *InvoiceRepository) MarkSent(ctx context.Context, id int64, processorID string) (bool, error) {
	query := `
		UPDATE invoices
		SET status = $1, processor_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`

	res, err := r.db.ExecContext(ctx, query,
		models.InvoiceStatusSent, processorID, id, models.InvoiceStatusDraft)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected == 1, err
}

// MarkOverdue flips sent invoices past their due date to overdue and returns
// the affected rows for event publishing.
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND due_date < $3
		RETURNING ` + invoiceColumns

	rows, err := r.db.QueryContext(ctx, query,
		models.InvoiceStatusOverdue, models.InvoiceStatusSent, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status string, paidDate *time.Time) error {
	query := `
		UPDATE invoices
		SET status = $1, paid_date = $2, updated_at = NOW()
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, paidDate, id)
	return err
}

func collectInvoices(rows *sql.Rows) ([]models.Invoice, error) {
	var invoices []models.Invoice
	for rows.Next() {
		var invoice models.Invoice
		if err := scanInvoice(rows, &invoice); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

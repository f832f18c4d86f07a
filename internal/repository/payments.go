package repository

import (
	"context"
	"database/sql"

	"aegis/internal/database"
	"aegis/internal/models"
)

type PaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (booking_id, total_amount, deposit_amount, paid_amount, status, method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		payment.BookingID,
		payment.TotalAmount,
		payment.DepositAmount,
		payment.PaidAmount,
		payment.Status,
		payment.Method,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)

	return err
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `
		SELECT p.id, p.booking_id, p.total_amount, p.deposit_amount, p.paid_amount,
		       p.status, p.method, p.created_at, p.updated_at, b.reference, b.client_name
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE p.id = $1`

	err := scanPayment(r.db.QueryRowContext(ctx, query, id), payment)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return payment, err
}

// List returns all payments with their booking reference and client name for
// the admin payments table.
func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	query := `
		SELECT p.id, p.booking_id, p.total_amount, p.deposit_amount, p.paid_amount,
		       p.status, p.method, p.created_at, p.updated_at, b.reference, b.client_name
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

// ListByEmail returns the payments belonging to a client's bookings
func (r *PaymentRepository) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	query := `
		SELECT p.id, p.booking_id, p.total_amount, p.deposit_amount, p.paid_amount,
		       p.status, p.method, p.created_at, p.updated_at, b.reference, b.client_name
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE LOWER(b.client_email) = LOWER($1)
		ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

// RecordAmount adds a received amount to paid_amount and stores the method
func (r *PaymentRepository) RecordAmount(ctx context.Context, id int64, amount float64, method string) error {
	query := `
		UPDATE payments
		SET paid_amount = paid_amount + $1, method = $2, updated_at = NOW()
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, amount, method, id)
	return err
}

// UpdateStatus sets the payment status explicitly; status is never derived
// from the amount fields.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *PaymentRepository) UpdateTotals(ctx context.Context, id int64, total, deposit float64) error {
	query := `
		UPDATE payments
		SET total_amount = $1, deposit_amount = $2, updated_at = NOW()
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, total, deposit, id)
	return err
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `
		SELECT p.id, p.booking_id, p.total_amount, p.deposit_amount, p.paid_amount,
		       p.status, p.method, p.created_at, p.updated_at, b.reference, b.client_name
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE p.booking_id = $1`

	err := scanPayment(r.db.QueryRowContext(ctx, query, bookingID), payment)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return payment, err
}

func scanPayment(row interface{ Scan(...any) error }, p *models.Payment) error {
	return row.Scan(
		&p.ID,
		&p.BookingID,
		&p.TotalAmount,
		&p.DepositAmount,
		&p.PaidAmount,
		&p.Status,
		&p.Method,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.BookingReference,
		&p.ClientName,
	)
}

func collectPayments(rows *sql.Rows) ([]models.Payment, error) {
	var payments []models.Payment
	for rows.Next() {
		var payment models.Payment
		if err := scanPayment(rows, &payment); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

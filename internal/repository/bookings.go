package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"aegis/internal/database"
	"aegis/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, reference, client_name, client_email, client_phone, service_type,
	       event_date, start_time, end_time, venue, guard_count, notes, status,
	       created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }, b *models.Booking) error {
	return row.Scan(
		&b.ID,
		&b.Reference,
		&b.ClientName,
		&b.ClientEmail,
		&b.ClientPhone,
		&b.ServiceType,
		&b.EventDate,
		&b.StartTime,
		&b.EndTime,
		&b.Venue,
		&b.GuardCount,
		&b.Notes,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (reference, client_name, client_email, client_phone, service_type,
		                      event_date, start_time, end_time, venue, guard_count, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		booking.Reference,
		booking.ClientName,
		booking.ClientEmail,
		booking.ClientPhone,
		booking.ServiceType,
		booking.EventDate,
		booking.StartTime,
		booking.EndTime,
		booking.Venue,
		booking.GuardCount,
		booking.Notes,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	err := scanBooking(r.db.QueryRowContext(ctx, query, id), booking)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`

	err := scanBooking(r.db.QueryRowContext(ctx, query, reference), booking)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) GetByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE LOWER(client_email) = LOWER($1)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// escapeLike escapes LIKE metacharacters so a search for a literal % or _
// matches only itself.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// List returns a page of bookings for the admin table. The query filter is
// the SQL fallback used when the search index is unavailable.
func (r *BookingRepository) List(ctx context.Context, status, query string, page, pageSize int) ([]models.Booking, error) {
	sqlQuery := `SELECT ` + bookingColumns + ` FROM bookings`
	var conditions []string
	var args []any

	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if query != "" {
		args = append(args, "%"+escapeLike(query)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(client_name ILIKE $%d OR venue ILIKE $%d OR reference ILIKE $%d)", n, n, n))
	}

	for i, cond := range conditions {
		if i == 0 {
			sqlQuery += " WHERE " + cond
		} else {
			sqlQuery += " AND " + cond
		}
	}

	args = append(args, pageSize, (page-1)*pageSize)
	sqlQuery += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

// CountByStatus returns booking counts grouped by status for the dashboard
func (r *BookingRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM bookings GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

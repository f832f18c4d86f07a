package service

import (
	"context"
	"time"

	"aegis/internal/external"
	"aegis/internal/models"
)

// Store interfaces let the services be exercised against fakes in tests; the
// SQL repositories are the production implementations.

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)
	GetByEmail(ctx context.Context, email string) ([]models.Booking, error)
	List(ctx context.Context, status, query string, page, pageSize int) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id int64) (*models.Payment, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*models.Payment, error)
	List(ctx context.Context) ([]models.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]models.Payment, error)
	RecordAmount(ctx context.Context, id int64, amount float64, method string) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateTotals(ctx context.Context, id int64, total, deposit float64) error
}

type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id int64) (*models.Invoice, error)
	List(ctx context.Context) ([]models.Invoice, error)
	MarkSent(ctx context.Context, id int64, processorID string) (bool, error)
	MarkOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status string, paidDate *time.Time) error
}

type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// Publisher publishes domain events; failures are logged, never fatal
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// BillingGateway is the external processor that hosts invoices for payment
type BillingGateway interface {
	RegisterInvoice(invoiceNumber string, amount float64, dueDate time.Time, clientEmail, description string) (*external.RegisterInvoiceResponse, error)
	CancelInvoice(processorID, reason string) error
}

// BookingIndex is the optional search index behind the admin bookings table
type BookingIndex interface {
	IndexBooking(ctx context.Context, booking *models.Booking) error
	SearchBookings(ctx context.Context, query, status string, page, pageSize int) ([]models.Booking, error)
}

package repository

import (
	"aegis/internal/database"
)

type Repositories struct {
	Bookings *BookingRepository
	Payments *PaymentRepository
	Invoices *InvoiceRepository
	Admins   *AdminRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Bookings: NewBookingRepository(db),
		Payments: NewPaymentRepository(db),
		Invoices: NewInvoiceRepository(db),
		Admins:   NewAdminRepository(db),
	}
}

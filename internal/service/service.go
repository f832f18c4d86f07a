package service

import (
	"aegis/internal/auth"
	"aegis/internal/repository"
	"aegis/internal/search"
)

type Services struct {
	Auth     *AuthService
	Bookings *BookingService
	Payments *PaymentService
	Invoices *InvoiceService
	Clients  *ClientService
}

// NewServices wires the production dependencies. The search index may be nil
// when Elasticsearch is disabled; the booking service then falls back to SQL.
func NewServices(repos *repository.Repositories, nats Publisher, billing BillingGateway, es *search.ElasticsearchClient, tokens *auth.Manager) *Services {
	var index BookingIndex
	if es != nil {
		index = es
	}

	bookingService := NewBookingService(repos.Bookings, repos.Payments, index, nats)
	paymentService := NewPaymentService(repos.Payments, repos.Invoices, repos.Bookings, nats)
	invoiceService := NewInvoiceService(repos.Invoices, repos.Bookings, repos.Payments, billing, nats)
	authService := NewAuthService(repos.Admins, repos.Bookings, tokens)
	clientService := NewClientService(repos.Bookings, repos.Payments)

	return &Services{
		Auth:     authService,
		Bookings: bookingService,
		Payments: paymentService,
		Invoices: invoiceService,
		Clients:  clientService,
	}
}

package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/stan.go"

	"aegis/internal/external"
	"aegis/internal/models"
	"aegis/internal/money"
	"aegis/internal/repository"
)

type Handlers struct {
	repos        *repository.Repositories
	notifyClient *external.NotifyClient
}

func NewHandlers(repos *repository.Repositories, notifyClient *external.NotifyClient) *Handlers {
	return &Handlers{
		repos:        repos,
		notifyClient: notifyClient,
	}
}

func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		return
	}

	slog.Info("Processing booking created event", "booking_id", event.BookingID, "reference", event.Reference)

	h.sendEmail(event.ClientEmail, "Booking received", "booking_received", map[string]string{
		"reference":    event.Reference,
		"service_type": event.ServiceType,
	})

	m.Ack()
}

func (h *Handlers) HandleBookingStatusChanged(m *stan.Msg) {
	var event models.BookingStatusChangedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking status changed event", "error", err)
		return
	}

	slog.Info("Processing booking status changed event",
		"booking_id", event.BookingID,
		"old_status", event.OldStatus,
		"new_status", event.NewStatus)

	// Clients only hear about decisions, not internal transitions
	switch event.NewStatus {
	case models.BookingStatusApproved, models.BookingStatusRejected, models.BookingStatusCancelled:
		h.sendEmail(event.ClientEmail, "Booking update", "booking_status_changed", map[string]string{
			"reference": event.Reference,
			"status":    event.NewStatus,
		})
	}

	m.Ack()
}

func (h *Handlers) HandlePaymentRecorded(m *stan.Msg) {
	var event models.PaymentRecordedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment recorded event", "error", err)
		return
	}

	slog.Info("Processing payment recorded event",
		"payment_id", event.PaymentID,
		"amount", event.Amount,
		"method", event.Method)

	booking, err := h.getBooking(event.BookingID)
	if err != nil {
		slog.Error("Failed to get booking for payment receipt", "booking_id", event.BookingID, "error", err)
		return
	}

	h.sendEmail(booking.ClientEmail, "Payment received", "payment_received", map[string]string{
		"reference": booking.Reference,
		"amount":    money.Format(event.Amount),
		"method":    event.Method,
	})

	m.Ack()
}

func (h *Handlers) HandleInvoiceCreated(m *stan.Msg) {
	var event models.InvoiceCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal invoice created event", "error", err)
		return
	}

	// Draft invoices are internal; nothing goes to the client yet
	slog.Info("Processing invoice created event",
		"invoice_id", event.InvoiceID,
		"invoice_number", event.InvoiceNumber)

	m.Ack()
}

func (h *Handlers) HandleInvoiceSent(m *stan.Msg) {
	var event models.InvoiceSentEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal invoice sent event", "error", err)
		return
	}

	slog.Info("Processing invoice sent event",
		"invoice_id", event.InvoiceID,
		"invoice_number", event.InvoiceNumber,
		"processor_id", event.ProcessorID)

	booking, err := h.getBooking(event.BookingID)
	if err != nil {
		slog.Error("Failed to get booking for invoice email", "booking_id", event.BookingID, "error", err)
		return
	}

	h.sendEmail(booking.ClientEmail, "Invoice "+event.InvoiceNumber, "invoice_sent", map[string]string{
		"reference":      booking.Reference,
		"invoice_number": event.InvoiceNumber,
	})

	m.Ack()
}

func (h *Handlers) HandleInvoiceOverdue(m *stan.Msg) {
	var event models.InvoiceOverdueEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal invoice overdue event", "error", err)
		return
	}

	slog.Info("Processing invoice overdue event",
		"invoice_id", event.InvoiceID,
		"invoice_number", event.InvoiceNumber,
		"due_date", event.DueDate)

	booking, err := h.getBooking(event.BookingID)
	if err != nil {
		slog.Error("Failed to get booking for overdue reminder", "booking_id", event.BookingID, "error", err)
		return
	}

	h.sendEmail(booking.ClientEmail, "Invoice "+event.InvoiceNumber+" is overdue", "invoice_overdue", map[string]string{
		"reference":      booking.Reference,
		"invoice_number": event.InvoiceNumber,
		"due_date":       event.DueDate.Format("2006-01-02"),
	})

	m.Ack()
}

func (h *Handlers) getBooking(id int64) (*models.Booking, error) {
	booking, err := h.repos.Bookings.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %d not found", id)
	}
	return booking, nil
}

// sendEmail delivers a notification; failures are logged, never retried here.
// The gateway has its own retry queue.
func (h *Handlers) sendEmail(to, subject, template string, params map[string]string) {
	if _, err := h.notifyClient.SendEmail(to, subject, template, params); err != nil {
		slog.Error("Failed to send notification email",
			"error", err,
			"template", template,
			"to", to)
	}
}

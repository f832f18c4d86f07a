package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "aegis/internal/errors"
	"aegis/internal/logger"
	"aegis/internal/metrics"
	"aegis/internal/models"
	"aegis/internal/validation"
)

type InvoiceService struct {
	invoiceRepo InvoiceStore
	bookingRepo BookingStore
	paymentRepo PaymentStore
	billing     BillingGateway
	natsClient  Publisher
}

func NewInvoiceService(invoiceRepo InvoiceStore, bookingRepo BookingStore, paymentRepo PaymentStore, billing BillingGateway, natsClient Publisher) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		billing:     billing,
		natsClient:  natsClient,
	}
}

func (s *InvoiceService) List(ctx context.Context) (*models.ListInvoicesResponse, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return &models.ListInvoicesResponse{Invoices: invoices}, nil
}

// Create records a draft invoice from the admin form. Amount fields arrive
// as free-text strings and are parsed here; a duplicate invoice number is a
// conflict, not a second invoice.
func (s *InvoiceService) Create(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreateInvoiceResponse, error) {
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		return nil, fmt.Errorf("%w: invoice_number is required", apperrors.ErrValidation)
	}

	amount, err := validation.Amount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	deposit, err := validation.Amount("deposit_amount", req.DepositAmount)
	if err != nil {
		return nil, err
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD", apperrors.ErrValidation)
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %d", apperrors.ErrNotFound, req.BookingID)
	}

	invoice := &models.Invoice{
		InvoiceNumber: number,
		BookingID:     booking.ID,
		Amount:        amount,
		DepositAmount: deposit,
		Status:        models.InvoiceStatusDraft,
		DueDate:       dueDate,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	// The invoice amounts become the quote on the booking's payment record
	payment, err := s.paymentRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment record: %w", err)
	}
	if payment != nil {
		if err := s.paymentRepo.UpdateTotals(ctx, payment.ID, amount, deposit); err != nil {
			return nil, fmt.Errorf("failed to update payment totals: %w", err)
		}
	}

	event := models.InvoiceCreatedEvent{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		BookingID:     invoice.BookingID,
		Amount:        invoice.Amount,
		Timestamp:     time.Now(),
	}
	if err := s.natsClient.Publish(models.EventInvoiceCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish invoice created event",
			"error", err,
			"invoice_id", invoice.ID,
			"event_type", models.EventInvoiceCreated)
	}

	return &models.CreateInvoiceResponse{ID: invoice.ID, InvoiceNumber: invoice.InvoiceNumber}, nil
}

// Send registers a draft invoice with the billing processor and marks it
// sent. Only draft invoices can be sent, so a double click cannot dispatch
// the same invoice twice.
func (s *InvoiceService) Send(ctx context.Context, id int64) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %d", apperrors.ErrNotFound, id)
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: invoice %s is already %s", apperrors.ErrConflict, invoice.InvoiceNumber, invoice.Status)
	}

	booking, err := s.bookingRepo.GetByID(ctx, invoice.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %d", apperrors.ErrNotFound, invoice.BookingID)
	}

	description := fmt.Sprintf("Security services for booking %s", booking.Reference)
	registration, err := s.billing.RegisterInvoice(invoice.InvoiceNumber, invoice.Amount, invoice.DueDate, booking.ClientEmail, description)
	if err != nil {
		return nil, fmt.Errorf("failed to register invoice with billing processor: %w", err)
	}

	sent, err := s.invoiceRepo.MarkSent(ctx, invoice.ID, registration.ProcessorID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invoice sent: %w", err)
	}
	if !sent {
		// Lost the race against a concurrent send
		return nil, fmt.Errorf("%w: invoice %s was already sent", apperrors.ErrConflict, invoice.InvoiceNumber)
	}

	invoice.Status = models.InvoiceStatusSent
	invoice.ProcessorID = &registration.ProcessorID
	metrics.InvoiceSent()

	event := models.InvoiceSentEvent{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		BookingID:     invoice.BookingID,
		ProcessorID:   registration.ProcessorID,
		Timestamp:     time.Now(),
	}
	if err := s.natsClient.Publish(models.EventInvoiceSent, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish invoice sent event",
			"error", err,
			"invoice_id", invoice.ID,
			"event_type", models.EventInvoiceSent)
	}

	return invoice, nil
}

// SetStatus applies an admin invoice status change. Only the terminal
// transitions are manual: marking a dispatched invoice paid, or cancelling
// one. Cancelling a registered invoice voids it at the processor first.
func (s *InvoiceService) SetStatus(ctx context.Context, id int64, status string) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %d", apperrors.ErrNotFound, id)
	}

	var paidDate *time.Time
	switch status {
	case models.InvoiceStatusPaid:
		if invoice.Status != models.InvoiceStatusSent && invoice.Status != models.InvoiceStatusOverdue {
			return nil, fmt.Errorf("%w: invoice %s is %s, only sent or overdue invoices can be marked paid",
				apperrors.ErrConflict, invoice.InvoiceNumber, invoice.Status)
		}
		now := time.Now()
		paidDate = &now
	case models.InvoiceStatusCancelled:
		if invoice.Status == models.InvoiceStatusPaid || invoice.Status == models.InvoiceStatusCancelled {
			return nil, fmt.Errorf("%w: invoice %s is already %s",
				apperrors.ErrConflict, invoice.InvoiceNumber, invoice.Status)
		}
		if invoice.ProcessorID != nil {
			if err := s.billing.CancelInvoice(*invoice.ProcessorID, "cancelled by administrator"); err != nil {
				return nil, fmt.Errorf("failed to cancel invoice with billing processor: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("%w: invoice status can only be set to paid or cancelled", apperrors.ErrValidation)
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, id, status, paidDate); err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}

	invoice.Status = status
	invoice.PaidDate = paidDate
	return invoice, nil
}

// MarkOverdue flips sent invoices past their due date to overdue and
// publishes an event per invoice. Run periodically by the consumer worker.
func (s *InvoiceService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.invoiceRepo.MarkOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}

	for _, invoice := range overdue {
		event := models.InvoiceOverdueEvent{
			InvoiceID:     invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			BookingID:     invoice.BookingID,
			DueDate:       invoice.DueDate,
			Timestamp:     now,
		}
		if err := s.natsClient.Publish(models.EventInvoiceOverdue, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish invoice overdue event",
				"error", err,
				"invoice_id", invoice.ID,
				"event_type", models.EventInvoiceOverdue)
		}
	}

	return len(overdue), nil
}

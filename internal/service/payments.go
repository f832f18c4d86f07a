package service

import (
	"context"
	"fmt"
	"time"

	apperrors "aegis/internal/errors"
	"aegis/internal/logger"
	"aegis/internal/models"
	"aegis/internal/money"
)

type PaymentService struct {
	paymentRepo PaymentStore
	invoiceRepo InvoiceStore
	bookingRepo BookingStore
	natsClient  Publisher
}

func NewPaymentService(paymentRepo PaymentStore, invoiceRepo InvoiceStore, bookingRepo BookingStore, natsClient Publisher) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		bookingRepo: bookingRepo,
		natsClient:  natsClient,
	}
}

// List returns the admin payments table with the derived remaining balance
// on every row.
func (s *PaymentService) List(ctx context.Context) (*models.ListPaymentsResponse, error) {
	payments, err := s.paymentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &models.ListPaymentsResponse{Payments: toPaymentItems(payments)}, nil
}

// Record adds a received amount to a payment. The status field is not
// touched: it is set explicitly by admins, never derived from amounts.
func (s *PaymentService) Record(ctx context.Context, id int64, req *models.RecordPaymentRequest) (*models.Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	switch req.Method {
	case "bank_transfer", "card", "cash":
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, req.Method)
	}

	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: payment %d", apperrors.ErrNotFound, id)
	}

	if err := s.paymentRepo.RecordAmount(ctx, id, req.Amount, req.Method); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	payment.PaidAmount += req.Amount
	payment.Method = &req.Method

	event := models.PaymentRecordedEvent{
		PaymentID: payment.ID,
		BookingID: payment.BookingID,
		Amount:    req.Amount,
		Method:    req.Method,
		Timestamp: time.Now(),
	}
	if err := s.natsClient.Publish(models.EventPaymentRecorded, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment recorded event",
			"error", err,
			"payment_id", payment.ID,
			"event_type", models.EventPaymentRecorded)
	}

	return payment, nil
}

// SetStatus sets the authoritative payment status
func (s *PaymentService) SetStatus(ctx context.Context, id int64, status string) error {
	if !models.ValidPaymentStatus(status) {
		return fmt.Errorf("%w: unknown payment status %q", apperrors.ErrValidation, status)
	}

	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return fmt.Errorf("%w: payment %d", apperrors.ErrNotFound, id)
	}

	if err := s.paymentRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return nil
}

// DashboardStats assembles the admin dashboard aggregates
func (s *PaymentService) DashboardStats(ctx context.Context) (*models.StatsResponse, error) {
	payments, err := s.paymentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	bookingCounts, err := s.bookingRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	stats := BuildStats(payments, invoices, bookingCounts)
	return &stats, nil
}

// BuildStats computes the dashboard aggregates in a single pass over the
// payment and invoice records.
func BuildStats(payments []models.Payment, invoices []models.Invoice, bookingCounts map[string]int) models.StatsResponse {
	stats := models.StatsResponse{
		BookingsByStatus: bookingCounts,
	}
	if stats.BookingsByStatus == nil {
		stats.BookingsByStatus = map[string]int{}
	}

	for _, p := range payments {
		stats.TotalRevenue += p.PaidAmount
		switch p.Status {
		case models.PaymentStatusPending:
			stats.PendingCount++
		case models.PaymentStatusOverdue:
			stats.OverdueCount++
		}
	}

	for _, inv := range invoices {
		if inv.Status == models.InvoiceStatusSent {
			stats.ActiveInvoiceCount++
		}
	}

	stats.TotalRevenueDisplay = money.Format(stats.TotalRevenue)
	return stats
}

func toPaymentItems(payments []models.Payment) []models.PaymentListItem {
	items := make([]models.PaymentListItem, len(payments))
	for i, p := range payments {
		remaining := money.Remaining(p.TotalAmount, p.PaidAmount)
		items[i] = models.PaymentListItem{
			Payment:          p,
			Remaining:        remaining,
			RemainingDisplay: money.Format(remaining),
		}
	}
	return items
}

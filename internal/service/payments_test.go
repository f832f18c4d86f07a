package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "aegis/internal/errors"
	"aegis/internal/models"
)

func TestRecordPayment(t *testing.T) {
	payments := newFakePaymentStore()
	publisher := &fakePublisher{}
	svc := NewPaymentService(payments, newFakeInvoiceStore(), newFakeBookingStore(), publisher)

	seed := &models.Payment{BookingID: 1, TotalAmount: 2000, Status: models.PaymentStatusPending}
	require.NoError(t, payments.Create(context.Background(), seed))

	updated, err := svc.Record(context.Background(), seed.ID, &models.RecordPaymentRequest{
		Amount: 500,
		Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, updated.PaidAmount)
	// Status stays whatever the admin last set it to
	assert.Equal(t, models.PaymentStatusPending, updated.Status)

	assert.Equal(t, []string{models.EventPaymentRecorded}, publisher.subjects())
}

func TestRecordPaymentValidation(t *testing.T) {
	payments := newFakePaymentStore()
	svc := NewPaymentService(payments, newFakeInvoiceStore(), newFakeBookingStore(), &fakePublisher{})

	seed := &models.Payment{BookingID: 1, Status: models.PaymentStatusPending}
	require.NoError(t, payments.Create(context.Background(), seed))

	_, err := svc.Record(context.Background(), seed.ID, &models.RecordPaymentRequest{Amount: -10, Method: "cash"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Record(context.Background(), seed.ID, &models.RecordPaymentRequest{Amount: 10, Method: "barter"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Record(context.Background(), 99, &models.RecordPaymentRequest{Amount: 10, Method: "cash"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSetPaymentStatus(t *testing.T) {
	payments := newFakePaymentStore()
	svc := NewPaymentService(payments, newFakeInvoiceStore(), newFakeBookingStore(), &fakePublisher{})

	seed := &models.Payment{BookingID: 1, TotalAmount: 2000, PaidAmount: 500, Status: models.PaymentStatusPending}
	require.NoError(t, payments.Create(context.Background(), seed))

	require.NoError(t, svc.SetStatus(context.Background(), seed.ID, models.PaymentStatusPaid))

	// The amounts say partial; the explicit status wins
	stored, err := payments.GetByID(context.Background(), seed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.Status)

	err = svc.SetStatus(context.Background(), seed.ID, "refunded")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = svc.SetStatus(context.Background(), 99, models.PaymentStatusPaid)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListPaymentsRemainingBalance(t *testing.T) {
	payments := newFakePaymentStore()
	svc := NewPaymentService(payments, newFakeInvoiceStore(), newFakeBookingStore(), &fakePublisher{})

	underpaid := &models.Payment{BookingID: 1, TotalAmount: 2000, PaidAmount: 500, Status: models.PaymentStatusPartial}
	overpaid := &models.Payment{BookingID: 2, TotalAmount: 2000, PaidAmount: 2500, Status: models.PaymentStatusPaid}
	require.NoError(t, payments.Create(context.Background(), underpaid))
	require.NoError(t, payments.Create(context.Background(), overpaid))

	resp, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Payments, 2)

	assert.Equal(t, 1500.0, resp.Payments[0].Remaining)
	assert.Equal(t, "$1,500.00", resp.Payments[0].RemainingDisplay)

	// Overpayment clamps at zero, never goes negative
	assert.Equal(t, 0.0, resp.Payments[1].Remaining)
	assert.Equal(t, "$0.00", resp.Payments[1].RemainingDisplay)
}

func TestBuildStats(t *testing.T) {
	payments := []models.Payment{
		{PaidAmount: 1500, Status: models.PaymentStatusPaid},
		{PaidAmount: 500, Status: models.PaymentStatusPartial},
		{PaidAmount: 0, Status: models.PaymentStatusPending},
		{PaidAmount: 0, Status: models.PaymentStatusOverdue},
	}
	invoices := []models.Invoice{
		{Status: models.InvoiceStatusSent, DueDate: time.Now()},
		{Status: models.InvoiceStatusDraft},
		{Status: models.InvoiceStatusPaid},
	}
	bookingCounts := map[string]int{
		models.BookingStatusPending:  2,
		models.BookingStatusApproved: 1,
	}

	stats := BuildStats(payments, invoices, bookingCounts)

	assert.Equal(t, 2000.0, stats.TotalRevenue)
	assert.Equal(t, "$2,000.00", stats.TotalRevenueDisplay)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 1, stats.OverdueCount)
	assert.Equal(t, 1, stats.ActiveInvoiceCount)
	assert.Equal(t, 2, stats.BookingsByStatus[models.BookingStatusPending])
}

func TestBuildStatsEmpty(t *testing.T) {
	stats := BuildStats(nil, nil, nil)

	assert.Equal(t, 0.0, stats.TotalRevenue)
	assert.Equal(t, "$0.00", stats.TotalRevenueDisplay)
	assert.NotNil(t, stats.BookingsByStatus)
}

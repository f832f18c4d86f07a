package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "aegis/internal/errors"
	"aegis/internal/external"
	"aegis/internal/models"
)

// In-memory stores backing the service tests. They mirror the SQL
// repositories' contracts: not-found lookups return nil, nil.

type fakeBookingStore struct {
	nextID   int64
	bookings map[int64]*models.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: map[int64]*models.Booking{}}
}

func (f *fakeBookingStore) Create(_ context.Context, booking *models.Booking) error {
	f.nextID++
	booking.ID = f.nextID
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingStore) GetByReference(_ context.Context, reference string) (*models.Booking, error) {
	for _, b := range f.bookings {
		if b.Reference == reference {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingStore) GetByEmail(_ context.Context, email string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if strings.EqualFold(b.ClientEmail, email) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeBookingStore) List(_ context.Context, status, query string, page, pageSize int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if status != "" && b.Status != status {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(b.ClientName), strings.ToLower(query)) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, id int64, status string) error {
	b, ok := f.bookings[id]
	if !ok {
		return fmt.Errorf("booking %d not found", id)
	}
	b.Status = status
	return nil
}

func (f *fakeBookingStore) CountByStatus(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, b := range f.bookings {
		counts[b.Status]++
	}
	return counts, nil
}

type fakePaymentStore struct {
	nextID   int64
	payments map[int64]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[int64]*models.Payment{}}
}

func (f *fakePaymentStore) Create(_ context.Context, payment *models.Payment) error {
	f.nextID++
	payment.ID = f.nextID
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentStore) GetByID(_ context.Context, id int64) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePaymentStore) GetByBookingID(_ context.Context, bookingID int64) (*models.Payment, error) {
	for _, p := range f.payments {
		if p.BookingID == bookingID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentStore) List(_ context.Context) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePaymentStore) ListByEmail(_ context.Context, _ string) ([]models.Payment, error) {
	return f.List(context.Background())
}

func (f *fakePaymentStore) RecordAmount(_ context.Context, id int64, amount float64, method string) error {
	p, ok := f.payments[id]
	if !ok {
		return fmt.Errorf("payment %d not found", id)
	}
	p.PaidAmount += amount
	p.Method = &method
	return nil
}

func (f *fakePaymentStore) UpdateStatus(_ context.Context, id int64, status string) error {
	p, ok := f.payments[id]
	if !ok {
		return fmt.Errorf("payment %d not found", id)
	}
	p.Status = status
	return nil
}

func (f *fakePaymentStore) UpdateTotals(_ context.Context, id int64, total, deposit float64) error {
	p, ok := f.payments[id]
	if !ok {
		return fmt.Errorf("payment %d not found", id)
	}
	p.TotalAmount = total
	p.DepositAmount = deposit
	return nil
}

type fakeInvoiceStore struct {
	nextID   int64
	invoices map[int64]*models.Invoice
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{invoices: map[int64]*models.Invoice{}}
}

func (f *fakeInvoiceStore) Create(_ context.Context, invoice *models.Invoice) error {
	for _, inv := range f.invoices {
		if inv.InvoiceNumber == invoice.InvoiceNumber {
			return fmt.Errorf("%w: invoice number %s already exists", apperrors.ErrConflict, invoice.InvoiceNumber)
		}
	}
	f.nextID++
	invoice.ID = f.nextID
	copied := *invoice
	f.invoices[invoice.ID] = &copied
	return nil
}

func (f *fakeInvoiceStore) GetByID(_ context.Context, id int64) (*models.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInvoiceStore) List(_ context.Context) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range f.invoices {
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeInvoiceStore) MarkSent(_ context.Context, id int64, processorID string) (bool, error) {
	inv, ok := f.invoices[id]
	if !ok || inv.Status != models.InvoiceStatusDraft {
		return false, nil
	}
	inv.Status = models.InvoiceStatusSent
	inv.ProcessorID = &processorID
	return true, nil
}

func (f *fakeInvoiceStore) MarkOverdue(_ context.Context, now time.Time) ([]models.Invoice, error) {
	var flipped []models.Invoice
	for _, inv := range f.invoices {
		if inv.Status == models.InvoiceStatusSent && inv.DueDate.Before(now) {
			inv.Status = models.InvoiceStatusOverdue
			flipped = append(flipped, *inv)
		}
	}
	return flipped, nil
}

func (f *fakeInvoiceStore) UpdateStatus(_ context.Context, id int64, status string, paidDate *time.Time) error {
	inv, ok := f.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %d not found", id)
	}
	inv.Status = status
	inv.PaidDate = paidDate
	return nil
}

type fakeAdminStore struct {
	admins map[string]*models.Admin
}

func (f *fakeAdminStore) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	a, ok := f.admins[username]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

type publishedEvent struct {
	subject string
	data    interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(subject string, data interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{subject: subject, data: data})
	return nil
}

func (f *fakePublisher) subjects() []string {
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.subject
	}
	return out
}

type fakeBillingGateway struct {
	calls     int
	cancelled []string
	err       error
}

func (f *fakeBillingGateway) RegisterInvoice(invoiceNumber string, _ float64, _ time.Time, _, _ string) (*external.RegisterInvoiceResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &external.RegisterInvoiceResponse{
		Success:     true,
		ProcessorID: "proc-" + invoiceNumber,
		Status:      "NEW",
	}, nil
}

func (f *fakeBillingGateway) CancelInvoice(processorID, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.cancelled = append(f.cancelled, processorID)
	return nil
}

type fakeBookingIndex struct {
	indexed []int64
	results []models.Booking
	err     error
}

func (f *fakeBookingIndex) IndexBooking(_ context.Context, booking *models.Booking) error {
	f.indexed = append(f.indexed, booking.ID)
	return nil
}

func (f *fakeBookingIndex) SearchBookings(_ context.Context, _, _ string, _, _ int) ([]models.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

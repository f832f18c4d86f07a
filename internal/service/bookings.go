package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "aegis/internal/errors"
	"aegis/internal/logger"
	"aegis/internal/metrics"
	"aegis/internal/models"
	"aegis/internal/validation"
)

type BookingService struct {
	bookingRepo BookingStore
	paymentRepo PaymentStore
	index       BookingIndex
	natsClient  Publisher
}

func NewBookingService(bookingRepo BookingStore, paymentRepo PaymentStore, index BookingIndex, natsClient Publisher) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		index:       index,
		natsClient:  natsClient,
	}
}

// Submit handles a public booking form submission. A zero-value payment
// record is opened alongside the booking so the admin payments table always
// has a row to work against.
func (s *BookingService) Submit(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if err := validation.Email(req.ClientEmail); err != nil {
		return nil, err
	}
	if err := validation.GuardCount(req.GuardCount); err != nil {
		return nil, err
	}
	if !models.ValidServiceType(req.ServiceType) {
		return nil, fmt.Errorf("%w: unknown service type %q", apperrors.ErrValidation, req.ServiceType)
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%w: event_date must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	for _, t := range []string{req.StartTime, req.EndTime} {
		if _, err := time.Parse("15:04", t); err != nil {
			return nil, fmt.Errorf("%w: times must be HH:MM", apperrors.ErrValidation)
		}
	}

	booking := &models.Booking{
		Reference:   newBookingReference(),
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientEmail: strings.ToLower(strings.TrimSpace(req.ClientEmail)),
		ClientPhone: strings.TrimSpace(req.ClientPhone),
		ServiceType: req.ServiceType,
		EventDate:   eventDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Venue:       strings.TrimSpace(req.Venue),
		GuardCount:  req.GuardCount,
		Status:      models.BookingStatusPending,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		booking.Notes = &notes
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	payment := &models.Payment{
		BookingID: booking.ID,
		Status:    models.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to open payment record: %w", err)
	}

	s.indexBooking(ctx, booking)
	metrics.BookingCreated()

	event := models.BookingCreatedEvent{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		ClientEmail: booking.ClientEmail,
		ServiceType: booking.ServiceType,
		Timestamp:   time.Now(),
	}
	if err := s.natsClient.Publish(models.EventBookingCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking created event",
			"error", err,
			"booking_id", booking.ID,
			"event_type", models.EventBookingCreated)
	}

	return &models.CreateBookingResponse{ID: booking.ID, Reference: booking.Reference}, nil
}

// List serves the admin bookings table. Free-text queries go through the
// search index when it is configured; everything else hits SQL directly.
func (s *BookingService) List(ctx context.Context, status, query string, page, pageSize int) ([]models.Booking, error) {
	if query != "" && s.index != nil {
		bookings, err := s.index.SearchBookings(ctx, query, status, page, pageSize)
		if err == nil {
			return bookings, nil
		}
		logger.WithContext(ctx).Error("Search index query failed, falling back to SQL",
			"error", err, "query", query)
	}

	bookings, err := s.bookingRepo.List(ctx, status, query, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus applies an admin status change and publishes the transition
func (s *BookingService) UpdateStatus(ctx context.Context, id int64, status string) (*models.Booking, error) {
	if !models.ValidBookingStatus(status) {
		return nil, fmt.Errorf("%w: unknown booking status %q", apperrors.ErrValidation, status)
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %d", apperrors.ErrNotFound, id)
	}

	oldStatus := booking.Status
	if err := s.bookingRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	booking.Status = status

	s.indexBooking(ctx, booking)

	event := models.BookingStatusChangedEvent{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		ClientEmail: booking.ClientEmail,
		OldStatus:   oldStatus,
		NewStatus:   status,
		Timestamp:   time.Now(),
	}
	if err := s.natsClient.Publish(models.EventBookingStatusChanged, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking status changed event",
			"error", err,
			"booking_id", booking.ID,
			"event_type", models.EventBookingStatusChanged)
	}

	return booking, nil
}

func (s *BookingService) indexBooking(ctx context.Context, booking *models.Booking) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexBooking(ctx, booking); err != nil {
		logger.WithContext(ctx).Error("Failed to index booking",
			"error", err, "booking_id", booking.ID)
	}
}

// newBookingReference generates the client-facing booking id: 8 alphanumeric
// characters derived from a UUID.
func newBookingReference() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "aegis/internal/errors"
	"aegis/internal/models"
)

type ClientService struct {
	bookingRepo BookingStore
	paymentRepo PaymentStore
}

func NewClientService(bookingRepo BookingStore, paymentRepo PaymentStore) *ClientService {
	return &ClientService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
	}
}

// Profile builds the client read-model from the client's bookings
func (s *ClientService) Profile(ctx context.Context, email string) (*models.ClientProfile, error) {
	bookings, err := s.bookingRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get client bookings: %w", err)
	}
	if len(bookings) == 0 {
		return nil, fmt.Errorf("%w: client %s", apperrors.ErrNotFound, email)
	}
	return buildClientProfile(strings.ToLower(email), bookings), nil
}

// Bookings returns every booking made under the client's email
func (s *ClientService) Bookings(ctx context.Context, email string) (*models.ListBookingsResponse, error) {
	bookings, err := s.bookingRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get client bookings: %w", err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return &models.ListBookingsResponse{Bookings: bookings}, nil
}

// Payments returns the payment records across the client's bookings
func (s *ClientService) Payments(ctx context.Context, email string) (*models.ListPaymentsResponse, error) {
	payments, err := s.paymentRepo.ListByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get client payments: %w", err)
	}
	return &models.ListPaymentsResponse{Payments: toPaymentItems(payments)}, nil
}

// buildClientProfile derives name and phone from the most recent booking.
// Bookings come back ordered newest first.
func buildClientProfile(email string, bookings []models.Booking) *models.ClientProfile {
	profile := &models.ClientProfile{
		Email:             email,
		BookingReferences: make([]string, 0, len(bookings)),
	}
	if len(bookings) > 0 {
		profile.Name = bookings[0].ClientName
		profile.Phone = bookings[0].ClientPhone
	}
	for _, b := range bookings {
		profile.BookingReferences = append(profile.BookingReferences, b.Reference)
		if b.Status == models.BookingStatusPending || b.Status == models.BookingStatusApproved {
			profile.ActiveBookingCount++
		}
	}
	return profile
}

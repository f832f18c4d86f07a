package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"aegis/internal/auth"
	apperrors "aegis/internal/errors"
	"aegis/internal/models"
	"aegis/internal/validation"
)

type AuthService struct {
	adminRepo   AdminStore
	bookingRepo BookingStore
	tokens      *auth.Manager
}

func NewAuthService(adminRepo AdminStore, bookingRepo BookingStore, tokens *auth.Manager) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		bookingRepo: bookingRepo,
		tokens:      tokens,
	}
}

// AdminLogin verifies staff credentials and issues an admin token. The same
// message is returned for unknown usernames and bad passwords.
func (s *AuthService) AdminLogin(ctx context.Context, req *models.AdminLoginRequest) (*models.AdminLoginResponse, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return nil, fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(admin.Username, auth.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.AdminLoginResponse{Token: token, Admin: admin}, nil
}

// ClientLogin verifies a client by email plus booking reference and issues a
// client token scoped to that email.
func (s *AuthService) ClientLogin(ctx context.Context, req *models.ClientLoginRequest) (*models.ClientLoginResponse, error) {
	if err := validation.Email(req.Email); err != nil {
		return nil, err
	}
	if err := validation.BookingReference(req.BookingID); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByReference(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil || !strings.EqualFold(booking.ClientEmail, req.Email) {
		return nil, fmt.Errorf("%w: no booking found for that email and booking ID", apperrors.ErrUnauthorized)
	}

	email := strings.ToLower(req.Email)
	token, err := s.tokens.Issue(email, auth.RoleClient)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	bookings, err := s.bookingRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get client bookings: %w", err)
	}

	return &models.ClientLoginResponse{
		Token:  token,
		Client: buildClientProfile(email, bookings),
	}, nil
}

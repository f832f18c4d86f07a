// Package validation holds the input rules shared by the public booking form,
// the client portal login and the admin invoice form.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	apperrors "aegis/internal/errors"
)

var (
	bookingReferencePattern = regexp.MustCompile(`^[a-zA-Z0-9]{6,12}$`)
	emailPattern            = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// BookingReference validates a client-facing booking reference: alphanumeric,
// 6 to 12 characters.
func BookingReference(ref string) error {
	if !bookingReferencePattern.MatchString(ref) {
		return fmt.Errorf("%w: booking reference must be 6-12 letters or digits", apperrors.ErrValidation)
	}
	return nil
}

// Email validates an email address. The rule matches the portal forms: a local
// part, an @, and a domain with at least one dot.
func Email(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", apperrors.ErrValidation)
	}
	return nil
}

// Amount parses a free-text currency amount from the admin invoice form.
// Values must be non-negative numbers.
func Amount(field, value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", apperrors.ErrValidation, field)
	}
	// ParseFloat accepts "NaN" and "Inf"; neither survives JSON encoding
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number", apperrors.ErrValidation, field)
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: %s must be non-negative", apperrors.ErrValidation, field)
	}

	return amount, nil
}

// GuardCount validates the requested number of guards for a booking.
func GuardCount(count int) error {
	if count < 1 || count > 100 {
		return fmt.Errorf("%w: guard count must be between 1 and 100", apperrors.ErrValidation)
	}
	return nil
}

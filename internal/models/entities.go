package models

import (
	"time"
)

// Booking statuses
const (
	BookingStatusPending   = "pending"
	BookingStatusApproved  = "approved"
	BookingStatusRejected  = "rejected"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
	PaymentStatusOverdue = "overdue"
)

// Invoice statuses
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Service types offered by the company
const (
	ServiceEventSecurity      = "event_security"
	ServicePersonalProtection = "personal_protection"
	ServiceCorporateSecurity  = "corporate_security"
	ServiceResidentialPatrol  = "residential_patrol"
	ServiceAssetEscort        = "asset_escort"
)

// Booking represents a client's request for a security service
type Booking struct {
	ID          int64     `json:"id" db:"id"`
	Reference   string    `json:"reference" db:"reference"`
	ClientName  string    `json:"client_name" db:"client_name"`
	ClientEmail string    `json:"client_email" db:"client_email"`
	ClientPhone string    `json:"client_phone" db:"client_phone"`
	ServiceType string    `json:"service_type" db:"service_type"`
	EventDate   time.Time `json:"event_date" db:"event_date"`
	StartTime   string    `json:"start_time" db:"start_time"`
	EndTime     string    `json:"end_time" db:"end_time"`
	Venue       string    `json:"venue" db:"venue"`
	GuardCount  int       `json:"guard_count" db:"guard_count"`
	Notes       *string   `json:"notes" db:"notes"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Payment is the running record of amounts owed and paid against a booking
type Payment struct {
	ID            int64     `json:"id" db:"id"`
	BookingID     int64     `json:"booking_id" db:"booking_id"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	DepositAmount float64   `json:"deposit_amount" db:"deposit_amount"`
	PaidAmount    float64   `json:"paid_amount" db:"paid_amount"`
	Status        string    `json:"status" db:"status"`
	Method        *string   `json:"method" db:"method"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// Joined from bookings, not stored on the payments row
	BookingReference string `json:"booking_reference,omitempty"`
	ClientName       string `json:"client_name,omitempty"`
}

// Invoice is a billing document sent to a client for payment
type Invoice struct {
	ID            int64      `json:"id" db:"id"`
	InvoiceNumber string     `json:"invoice_number" db:"invoice_number"`
	BookingID     int64      `json:"booking_id" db:"booking_id"`
	Amount        float64    `json:"amount" db:"amount"`
	DepositAmount float64    `json:"deposit_amount" db:"deposit_amount"`
	Status        string     `json:"status" db:"status"`
	DueDate       time.Time  `json:"due_date" db:"due_date"`
	PaidDate      *time.Time `json:"paid_date" db:"paid_date"`
	ProcessorID   *string    `json:"processor_id" db:"processor_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Admin represents an internal staff account
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ValidBookingStatus reports whether s is a known booking status
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusPending, BookingStatusApproved, BookingStatusRejected,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	}
	return false
}

// ValidServiceType reports whether s is a service the company offers
func ValidServiceType(s string) bool {
	switch s {
	case ServiceEventSecurity, ServicePersonalProtection, ServiceCorporateSecurity,
		ServiceResidentialPatrol, ServiceAssetEscort:
		return true
	}
	return false
}

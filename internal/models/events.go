package models

import "time"

// NATS Event Types
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventPaymentRecorded      = "payment.recorded"
	EventInvoiceCreated       = "invoice.created"
	EventInvoiceSent          = "invoice.sent"
	EventInvoiceOverdue       = "invoice.overdue"
)

// BookingCreatedEvent represents a public booking submission
type BookingCreatedEvent struct {
	BookingID   int64     `json:"booking_id"`
	Reference   string    `json:"reference"`
	ClientEmail string    `json:"client_email"`
	ServiceType string    `json:"service_type"`
	Timestamp   time.Time `json:"timestamp"`
}

// BookingStatusChangedEvent represents an admin status change
type BookingStatusChangedEvent struct {
	BookingID   int64     `json:"booking_id"`
	Reference   string    `json:"reference"`
	ClientEmail string    `json:"client_email"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	Timestamp   time.Time `json:"timestamp"`
}

// PaymentRecordedEvent represents an amount received against a payment
type PaymentRecordedEvent struct {
	PaymentID int64     `json:"payment_id"`
	BookingID int64     `json:"booking_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
}

// InvoiceCreatedEvent represents a new invoice record
type InvoiceCreatedEvent struct {
	InvoiceID     int64     `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	BookingID     int64     `json:"booking_id"`
	Amount        float64   `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// InvoiceSentEvent represents an invoice dispatched to the client
type InvoiceSentEvent struct {
	InvoiceID     int64     `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	BookingID     int64     `json:"booking_id"`
	ProcessorID   string    `json:"processor_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// InvoiceOverdueEvent represents an invoice past its due date
type InvoiceOverdueEvent struct {
	InvoiceID     int64     `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	BookingID     int64     `json:"booking_id"`
	DueDate       time.Time `json:"due_date"`
	Timestamp     time.Time `json:"timestamp"`
}

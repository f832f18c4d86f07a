package models

// CreateBookingRequest - public booking form submission
type CreateBookingRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientEmail string `json:"client_email" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ServiceType string `json:"service_type" binding:"required"`
	EventDate   string `json:"event_date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	Venue       string `json:"venue" binding:"required"`
	GuardCount  int    `json:"guard_count" binding:"required"`
	Notes       string `json:"notes,omitempty"`
}

// CreateBookingResponse - returned to the public site after submission
type CreateBookingResponse struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
}

// UpdateBookingStatusRequest - admin status change
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminLoginRequest - admin portal login
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse carries the bearer token and the admin profile
type AdminLoginResponse struct {
	Token string `json:"token"`
	Admin *Admin `json:"admin"`
}

// ClientLoginRequest - client portal login by email and booking reference
type ClientLoginRequest struct {
	Email     string `json:"email" binding:"required"`
	BookingID string `json:"bookingId" binding:"required"`
}

// ClientLoginResponse carries the bearer token and the client read-model
type ClientLoginResponse struct {
	Token  string         `json:"token"`
	Client *ClientProfile `json:"client"`
}

// ClientProfile is the denormalized client read-model served to the portal
type ClientProfile struct {
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	ActiveBookingCount int      `json:"active_booking_count"`
	BookingReferences  []string `json:"booking_references"`
}

// PaymentListItem is an admin payments table row with the derived balance
type PaymentListItem struct {
	Payment
	Remaining        float64 `json:"remaining"`
	RemainingDisplay string  `json:"remaining_display"`
}

// ListPaymentsResponse - admin payments view payload
type ListPaymentsResponse struct {
	Payments []PaymentListItem `json:"payments"`
}

// ListInvoicesResponse - admin invoices view payload
type ListInvoicesResponse struct {
	Invoices []Invoice `json:"invoices"`
}

// ListBookingsResponse - admin bookings table payload
type ListBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
}

// RecordPaymentRequest - admin records an amount received against a payment
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Method string  `json:"method" binding:"required"`
}

// UpdatePaymentStatusRequest - admin sets the payment status explicitly
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateInvoiceStatusRequest - admin marks an invoice paid or cancels it
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateInvoiceRequest - admin invoice form. Amount fields arrive as free-text
// strings from the form and are parsed server-side.
type CreateInvoiceRequest struct {
	BookingID     int64  `json:"booking_id" binding:"required"`
	InvoiceNumber string `json:"invoice_number" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	DepositAmount string `json:"deposit_amount,omitempty"`
	DueDate       string `json:"due_date" binding:"required"`
}

// CreateInvoiceResponse - returned after invoice creation
type CreateInvoiceResponse struct {
	ID            int64  `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
}

// StatsResponse - admin dashboard aggregates
type StatsResponse struct {
	TotalRevenue        float64        `json:"total_revenue"`
	TotalRevenueDisplay string         `json:"total_revenue_display"`
	PendingCount        int            `json:"pending_count"`
	OverdueCount        int            `json:"overdue_count"`
	ActiveInvoiceCount  int            `json:"active_invoice_count"`
	BookingsByStatus    map[string]int `json:"bookings_by_status"`
}

// ServiceCatalogItem describes one service type for the public site
type ServiceCatalogItem struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MinGuards   int    `json:"min_guards"`
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"aegis/internal/auth"
	"aegis/internal/external"
	"aegis/internal/middleware"
	"aegis/internal/models"
	"aegis/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Minimal in-memory stores so the full handler stack can run without
// Postgres. Not-found lookups return nil, nil like the SQL repositories.

type memBookings struct {
	nextID int64
	items  map[int64]*models.Booking
}

func (m *memBookings) Create(_ context.Context, b *models.Booking) error {
	m.nextID++
	b.ID = m.nextID
	copied := *b
	m.items[b.ID] = &copied
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (m *memBookings) GetByReference(_ context.Context, ref string) (*models.Booking, error) {
	for _, b := range m.items {
		if b.Reference == ref {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memBookings) GetByEmail(_ context.Context, email string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range m.items {
		if strings.EqualFold(b.ClientEmail, email) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memBookings) List(_ context.Context, status, _ string, _, _ int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range m.items {
		if status == "" || b.Status == status {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id int64, status string) error {
	b, ok := m.items[id]
	if !ok {
		return fmt.Errorf("booking %d not found", id)
	}
	b.Status = status
	return nil
}

func (m *memBookings) CountByStatus(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, b := range m.items {
		counts[b.Status]++
	}
	return counts, nil
}

type memPayments struct {
	nextID int64
	items  map[int64]*models.Payment
}

func (m *memPayments) Create(_ context.Context, p *models.Payment) error {
	m.nextID++
	p.ID = m.nextID
	copied := *p
	m.items[p.ID] = &copied
	return nil
}

func (m *memPayments) GetByID(_ context.Context, id int64) (*models.Payment, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (m *memPayments) GetByBookingID(_ context.Context, bookingID int64) (*models.Payment, error) {
	for _, p := range m.items {
		if p.BookingID == bookingID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memPayments) List(_ context.Context) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.items {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPayments) ListByEmail(ctx context.Context, _ string) ([]models.Payment, error) {
	return m.List(ctx)
}

func (m *memPayments) RecordAmount(_ context.Context, id int64, amount float64, method string) error {
	p, ok := m.items[id]
	if !ok {
		return fmt.Errorf("payment %d not found", id)
	}
	p.PaidAmount += amount
	p.Method = &method
	return nil
}

func (m *memPayments) UpdateStatus(_ context.Context, id int64, status string) error {
	p, ok := m.items[id]
	if !ok {
		return fmt.Errorf("payment %d not found", id)
	}
	p.Status = status
	return nil
}

func (m *memPayments) UpdateTotals(_ context.Context, id int64, total, deposit float64) error {
	p, ok := m.items[id]
	if !ok {
		return fmt.Errorf("payment %d not found", id)
	}
	p.TotalAmount = total
	p.DepositAmount = deposit
	return nil
}

type memInvoices struct {
	nextID int64
	items  map[int64]*models.Invoice
}

func (m *memInvoices) Create(_ context.Context, inv *models.Invoice) error {
	m.nextID++
	inv.ID = m.nextID
	copied := *inv
	m.items[inv.ID] = &copied
	return nil
}

func (m *memInvoices) GetByID(_ context.Context, id int64) (*models.Invoice, error) {
	inv, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (m *memInvoices) List(_ context.Context) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range m.items {
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memInvoices) MarkSent(_ context.Context, id int64, processorID string) (bool, error) {
	inv, ok := m.items[id]
	if !ok || inv.Status != models.InvoiceStatusDraft {
		return false, nil
	}
	inv.Status = models.InvoiceStatusSent
	inv.ProcessorID = &processorID
	return true, nil
}

func (m *memInvoices) MarkOverdue(_ context.Context, now time.Time) ([]models.Invoice, error) {
	var flipped []models.Invoice
	for _, inv := range m.items {
		if inv.Status == models.InvoiceStatusSent && inv.DueDate.Before(now) {
			inv.Status = models.InvoiceStatusOverdue
			flipped = append(flipped, *inv)
		}
	}
	return flipped, nil
}

func (m *memInvoices) UpdateStatus(_ context.Context, id int64, status string, paidDate *time.Time) error {
	inv, ok := m.items[id]
	if !ok {
		return fmt.Errorf("invoice %d not found", id)
	}
	inv.Status = status
	inv.PaidDate = paidDate
	return nil
}

type memAdmins struct {
	items map[string]*models.Admin
}

func (m *memAdmins) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	a, ok := m.items[username]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) error { return nil }

// memCache stands in for the Valkey client and records invalidations.
type memCache struct {
	stats         []byte
	profiles      map[string][]byte
	invalidations int
}

func newMemCache() *memCache {
	return &memCache{profiles: map[string][]byte{}}
}

func (m *memCache) GetStatsRaw(context.Context) ([]byte, error) { return m.stats, nil }

func (m *memCache) SetStats(_ context.Context, stats any) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	m.stats = raw
	return nil
}

func (m *memCache) InvalidateStats(context.Context) error {
	m.stats = nil
	m.invalidations++
	return nil
}

func (m *memCache) GetProfileRaw(_ context.Context, email string) ([]byte, error) {
	return m.profiles[email], nil
}

func (m *memCache) SetProfile(_ context.Context, email string, profile any) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	m.profiles[email] = raw
	return nil
}

type stubBilling struct{}

func (stubBilling) RegisterInvoice(invoiceNumber string, _ float64, _ time.Time, _, _ string) (*external.RegisterInvoiceResponse, error) {
	return &external.RegisterInvoiceResponse{Success: true, ProcessorID: "proc-" + invoiceNumber}, nil
}

func (stubBilling) CancelInvoice(string, string) error { return nil }

type testEnv struct {
	router   *gin.Engine
	bookings *memBookings
	payments *memPayments
	invoices *memInvoices
	cache    *memCache
	tokens   *auth.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	bookings := &memBookings{items: map[int64]*models.Booking{}}
	payments := &memPayments{items: map[int64]*models.Payment{}}
	invoices := &memInvoices{items: map[int64]*models.Invoice{}}

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	admins := &memAdmins{items: map[string]*models.Admin{
		"ops": {ID: 1, Username: "ops", PasswordHash: string(hash), DisplayName: "Operations", Role: "admin"},
	}}

	tokens := auth.NewManager("test-secret", time.Hour)
	publisher := noopPublisher{}

	services := &service.Services{
		Auth:     service.NewAuthService(admins, bookings, tokens),
		Bookings: service.NewBookingService(bookings, payments, nil, publisher),
		Payments: service.NewPaymentService(payments, invoices, bookings, publisher),
		Invoices: service.NewInvoiceService(invoices, bookings, payments, stubBilling{}, publisher),
		Clients:  service.NewClientService(bookings, payments),
	}
	statsCache := newMemCache()
	h := NewHandlers(services, statsCache)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/services", h.GetServices)
	api.POST("/bookings", h.CreateBooking)
	api.POST("/admin/login", h.AdminLogin)
	api.POST("/client/login", h.ClientLogin)

	admin := api.Group("/", middleware.BearerAuth(tokens, auth.RoleAdmin))
	admin.GET("admin/bookings", h.ListBookings)
	admin.PATCH("bookings/:id/status", h.UpdateBookingStatus)
	admin.GET("admin/payments", h.ListPayments)
	admin.POST("admin/payments/:id/record", h.RecordPayment)
	admin.PATCH("admin/payments/:id/status", h.UpdatePaymentStatus)
	admin.GET("admin/invoices", h.ListInvoices)
	admin.PATCH("admin/invoices/:id/status", h.UpdateInvoiceStatus)
	admin.POST("payments/create-invoice", h.CreateInvoice)
	admin.POST("payments/send-invoice/:id", h.SendInvoice)
	admin.GET("admin/stats", h.GetStats)

	client := api.Group("/client", middleware.BearerAuth(tokens, auth.RoleClient))
	client.GET("/profile", h.GetClientProfile)
	client.GET("/bookings", h.GetClientBookings)
	client.GET("/payments", h.GetClientPayments)

	return &testEnv{
		router:   router,
		bookings: bookings,
		payments: payments,
		invoices: invoices,
		cache:    statsCache,
		tokens:   tokens,
	}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.Issue("ops", auth.RoleAdmin)
	require.NoError(t, err)
	return token
}

func (e *testEnv) clientToken(t *testing.T, email string) string {
	t.Helper()
	token, err := e.tokens.Issue(email, auth.RoleClient)
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedBooking(t *testing.T, email string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		Reference:   "ref" + fmt.Sprintf("%05d", e.bookings.nextID+1),
		ClientName:  "Dana Reed",
		ClientEmail: email,
		ClientPhone: "+1-555-0142",
		ServiceType: models.ServiceEventSecurity,
		Status:      models.BookingStatusPending,
	}
	require.NoError(t, e.bookings.Create(context.Background(), booking))
	return booking
}

func TestCreateBookingEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/bookings", "", models.CreateBookingRequest{
		ClientName:  "Dana Reed",
		ClientEmail: "dana.reed@example.com",
		ClientPhone: "+1-555-0142",
		ServiceType: models.ServiceEventSecurity,
		EventDate:   "2026-10-12",
		StartTime:   "18:00",
		EndTime:     "23:30",
		Venue:       "Riverside Convention Center",
		GuardCount:  4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Reference, 8)
}

func TestCreateBookingEndpointRejectsBadEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/bookings", "", models.CreateBookingRequest{
		ClientName:  "Dana Reed",
		ClientEmail: "not-an-email",
		ClientPhone: "+1-555-0142",
		ServiceType: models.ServiceEventSecurity,
		EventDate:   "2026-10-12",
		StartTime:   "18:00",
		EndTime:     "23:30",
		Venue:       "Riverside",
		GuardCount:  4,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/admin/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A client token is not enough for admin routes
	w = env.request(t, http.MethodGet, "/api/admin/bookings", env.clientToken(t, "dana@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/admin/login", "", models.AdminLoginRequest{
		Username: "ops", Password: "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AdminLoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	w = env.request(t, http.MethodPost, "/api/admin/login", "", models.AdminLoginRequest{
		Username: "ops", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "token")
}

func TestClientLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, "dana.reed@example.com")

	w := env.request(t, http.MethodPost, "/api/client/login", "", models.ClientLoginRequest{
		Email: "dana.reed@example.com", BookingID: booking.Reference,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ClientLoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Client)
	assert.Equal(t, 1, resp.Client.ActiveBookingCount)

	w = env.request(t, http.MethodPost, "/api/client/login", "", models.ClientLoginRequest{
		Email: "other@example.com", BookingID: booking.Reference,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateBookingStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, "dana.reed@example.com")
	token := env.adminToken(t)

	path := fmt.Sprintf("/api/bookings/%d/status", booking.ID)
	w := env.request(t, http.MethodPatch, path, token, models.UpdateBookingStatusRequest{Status: "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodPatch, path, token, models.UpdateBookingStatusRequest{Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPatch, "/api/bookings/999/status", token, models.UpdateBookingStatusRequest{Status: "approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBookingsEndpointValidatesPaging(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.request(t, http.MethodGet, "/api/admin/bookings?page=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodGet, "/api/admin/bookings?pageSize=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodGet, "/api/admin/bookings", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecordPaymentEndpoint(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, "dana.reed@example.com")
	payment := &models.Payment{BookingID: booking.ID, TotalAmount: 2000, Status: models.PaymentStatusPending}
	require.NoError(t, env.payments.Create(context.Background(), payment))
	token := env.adminToken(t)

	path := fmt.Sprintf("/api/admin/payments/%d/record", payment.ID)
	w := env.request(t, http.MethodPost, path, token, models.RecordPaymentRequest{Amount: 500, Method: "card"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodPost, path, token, models.RecordPaymentRequest{Amount: -5, Method: "card"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentsEndpointShowsClampedRemaining(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, "dana.reed@example.com")
	payment := &models.Payment{BookingID: booking.ID, TotalAmount: 2000, PaidAmount: 2500, Status: models.PaymentStatusPaid}
	require.NoError(t, env.payments.Create(context.Background(), payment))

	w := env.request(t, http.MethodGet, "/api/admin/payments", env.adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ListPaymentsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, 0.0, resp.Payments[0].Remaining)
	assert.Equal(t, "$0.00", resp.Payments[0].RemainingDisplay)
}

func TestInvoiceLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, "dana.reed@example.com")
	token := env.adminToken(t)

	w := env.request(t, http.MethodPost, "/api/payments/create-invoice", token, models.CreateInvoiceRequest{
		BookingID:     booking.ID,
		InvoiceNumber: "INV-2026-001",
		Amount:        "1500",
		DueDate:       "2026-11-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.CreateInvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Duplicate invoice number is a conflict, not a second invoice
	w = env.request(t, http.MethodPost, "/api/payments/create-invoice", token, models.CreateInvoiceRequest{
		BookingID:     booking.ID,
		InvoiceNumber: "INV-2026-001",
		Amount:        "1500",
		DueDate:       "2026-11-01",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	sendPath := fmt.Sprintf("/api/payments/send-invoice/%d", created.ID)
	w = env.request(t, http.MethodPost, sendPath, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodPost, sendPath, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	statusPath := fmt.Sprintf("/api/admin/invoices/%d/status", created.ID)
	w = env.request(t, http.MethodPatch, statusPath, token, models.UpdateInvoiceStatusRequest{Status: "paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodPatch, statusPath, token, models.UpdateInvoiceStatusRequest{Status: "cancelled"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, "dana.reed@example.com")
	require.NoError(t, env.payments.Create(context.Background(), &models.Payment{
		BookingID: booking.ID, TotalAmount: 2000, PaidAmount: 1500, Status: models.PaymentStatusPartial,
	}))

	w := env.request(t, http.MethodGet, "/api/admin/stats", env.adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1500.0, stats.TotalRevenue)
	assert.Equal(t, "$1,500.00", stats.TotalRevenueDisplay)
	assert.Equal(t, 1, stats.BookingsByStatus[models.BookingStatusPending])
}

func TestStatsCacheDroppedOnNewBooking(t *testing.T) {
	env := newTestEnv(t)
	env.seedBooking(t, "dana.reed@example.com")

	w := env.request(t, http.MethodGet, "/api/admin/stats", env.adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.cache.stats)

	w = env.request(t, http.MethodPost, "/api/bookings", "", models.CreateBookingRequest{
		ClientName:  "Omar Castillo",
		ClientEmail: "omar.castillo@example.com",
		ClientPhone: "+1-555-0177",
		ServiceType: models.ServicePersonalProtection,
		EventDate:   "2026-11-02",
		StartTime:   "09:00",
		EndTime:     "17:00",
		Venue:       "Downtown Office Tower",
		GuardCount:  1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, env.cache.invalidations)

	w = env.request(t, http.MethodGet, "/api/admin/stats", env.adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.BookingsByStatus[models.BookingStatusPending])
}

func TestClientPortalEndpoints(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, "dana.reed@example.com")
	require.NoError(t, env.payments.Create(context.Background(), &models.Payment{
		BookingID: booking.ID, TotalAmount: 2000, PaidAmount: 500, Status: models.PaymentStatusPartial,
	}))
	token := env.clientToken(t, "dana.reed@example.com")

	w := env.request(t, http.MethodGet, "/api/client/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var profile models.ClientProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Dana Reed", profile.Name)
	assert.Equal(t, []string{booking.Reference}, profile.BookingReferences)

	w = env.request(t, http.MethodGet, "/api/client/bookings", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/client/payments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payments models.ListPaymentsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payments))
	require.Len(t, payments.Payments, 1)
	assert.Equal(t, 1500.0, payments.Payments[0].Remaining)

	// Expired or garbage tokens are rejected so the portal can clear state
	w = env.request(t, http.MethodGet, "/api/client/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServicesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/services", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.ServiceEventSecurity)
}

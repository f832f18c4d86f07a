package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"aegis/internal/auth"
	"aegis/internal/cache"
	"aegis/internal/config"
	"aegis/internal/database"
	"aegis/internal/external"
	"aegis/internal/handlers"
	"aegis/internal/logger"
	"aegis/internal/messaging"
	"aegis/internal/metrics"
	"aegis/internal/middleware"
	"aegis/internal/repository"
	"aegis/internal/search"
	"aegis/internal/service"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	handlers *handlers.Handlers
}

// NewServer wires the full HTTP stack. Valkey and Elasticsearch are
// optional; their absence degrades to direct DB reads.
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	valkey, err := cache.NewValkeyClient(cfg.Cache)
	if err != nil {
		logger.Get().Warn("Valkey unavailable, caching disabled", "error", err)
		valkey = nil
	}

	var es *search.ElasticsearchClient
	if cfg.Elasticsearch.Enabled {
		es, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, search disabled", "error", err)
			es = nil
		}
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	billing := external.NewBillingClient(cfg.Billing)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, billing, es, tokens)

	// A typed nil inside the interface would defeat the handlers' nil checks.
	var respCache handlers.ResponseCache
	if valkey != nil {
		respCache = valkey
	}
	h := handlers.NewHandlers(services, respCache)

	server := &Server{
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkey,
		handlers: h,
	}
	server.setupRouter(tokens)

	return server, nil
}

func (s *Server) setupRouter(tokens *auth.Manager) {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(metrics.Middleware())

	router.GET("/health", s.healthCheck)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	{
		api.GET("/services", s.handlers.GetServices)
		api.POST("/bookings", s.handlers.CreateBooking)
		api.POST("/admin/login", s.handlers.AdminLogin)
		api.POST("/client/login", s.handlers.ClientLogin)

		admin := api.Group("/", middleware.BearerAuth(tokens, auth.RoleAdmin))
		{
			admin.GET("admin/bookings", s.handlers.ListBookings)
			admin.PATCH("bookings/:id/status", s.handlers.UpdateBookingStatus)
			admin.GET("admin/payments", s.handlers.ListPayments)
			admin.POST("admin/payments/:id/record", s.handlers.RecordPayment)
			admin.PATCH("admin/payments/:id/status", s.handlers.UpdatePaymentStatus)
			admin.GET("admin/invoices", s.handlers.ListInvoices)
			admin.PATCH("admin/invoices/:id/status", s.handlers.UpdateInvoiceStatus)
			admin.POST("payments/create-invoice", s.handlers.CreateInvoice)
			admin.POST("payments/send-invoice/:id", s.handlers.SendInvoice)
			admin.GET("admin/stats", s.handlers.GetStats)
		}

		client := api.Group("/client", middleware.BearerAuth(tokens, auth.RoleClient))
		{
			client.GET("/profile", s.handlers.GetClientProfile)
			client.GET("/bookings", s.handlers.GetClientBookings)
			client.GET("/payments", s.handlers.GetClientPayments)
		}
	}

	s.router = router
}

func (s *Server) healthCheck(c *gin.Context) {
	health := s.db.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":   health.Status,
		"database": health,
	})
}

// GetRouter exposes the router for the HTTP server and tests
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the server's connections
func (s *Server) Cleanup() {
	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Failed to close Valkey client", "error", err)
		}
	}
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Failed to close NATS connection", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Failed to close database connection", "error", err)
		}
	}
}

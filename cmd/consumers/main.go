package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aegis/cmd/consumers/jobs"
	"aegis/internal/config"
	"aegis/internal/consumers"
	"aegis/internal/external"
	"aegis/internal/logger"
	"aegis/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting consumers service...")

	// Consumers need their own NATS client ID
	cfg.NATS.ClientID = "aegis-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	repos := consumerService.Repositories()
	billing := external.NewBillingClient(cfg.Billing)
	invoiceService := service.NewInvoiceService(repos.Invoices, repos.Bookings, repos.Payments, billing, consumerService.NATS())

	overdueJob := jobs.NewInvoiceOverdueJob(invoiceService)
	overdueJob.Start(context.Background())

	log.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service...")

	overdueJob.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}

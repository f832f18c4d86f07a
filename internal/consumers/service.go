package consumers

import (
	"context"
	"log/slog"

	"aegis/internal/config"
	"aegis/internal/database"
	"aegis/internal/external"
	"aegis/internal/messaging"
	"aegis/internal/models"
	"aegis/internal/repository"
)

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	repos := repository.NewRepositories(db)
	notifyClient := external.NewNotifyClient(cfg.Notify)
	handlers := NewHandlers(repos, notifyClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

// NATS exposes the messaging client so jobs can share the connection
func (cs *ConsumerService) NATS() *messaging.NATSClient {
	return cs.nats
}

// Repositories exposes the repository set for background jobs
func (cs *ConsumerService) Repositories() *repository.Repositories {
	return cs.repos
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	if _, err := cs.nats.SubscribeQueue(models.EventBookingCreated, "consumers", cs.handlers.HandleBookingCreated); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventBookingStatusChanged, "consumers", cs.handlers.HandleBookingStatusChanged); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPaymentRecorded, "consumers", cs.handlers.HandlePaymentRecorded); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventInvoiceCreated, "consumers", cs.handlers.HandleInvoiceCreated); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventInvoiceSent, "consumers", cs.handlers.HandleInvoiceSent); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventInvoiceOverdue, "consumers", cs.handlers.HandleInvoiceOverdue); err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}

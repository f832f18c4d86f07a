package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"aegis/internal/config"
	"aegis/internal/database"
	"aegis/internal/models"
	"aegis/internal/repository"
)

var (
	adminUser     = flag.String("admin-user", "admin", "Username for the seeded admin account")
	adminPassword = flag.String("admin-password", "", "Password for the seeded admin account (required)")
	sampleCount   = flag.Int("bookings", 0, "Number of sample bookings to generate")
	dryRun        = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

type seeder struct {
	repos *repository.Repositories
}

func main() {
	flag.Parse()

	if *adminPassword == "" {
		fmt.Fprintln(os.Stderr, "usage: generator -admin-password <password> [-admin-user admin] [-bookings N]")
		os.Exit(2)
	}

	slog.Info("Starting data generator...")

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		slog.Info("Dry run: would seed admin and sample bookings",
			"admin_user", *adminUser,
			"bookings", *sampleCount)
		return
	}

	s := &seeder{repos: repository.NewRepositories(db)}
	ctx := context.Background()

	if err := s.seedAdmin(ctx, *adminUser, *adminPassword); err != nil {
		slog.Error("Failed to seed admin", "error", err)
		os.Exit(1)
	}

	if *sampleCount > 0 {
		if err := s.seedBookings(ctx, *sampleCount); err != nil {
			slog.Error("Failed to seed bookings", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Data generation completed successfully!")
}

func (s *seeder) seedAdmin(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  "Administrator",
		Role:         "admin",
	}
	if err := s.repos.Admins.Create(ctx, admin); err != nil {
		return err
	}

	slog.Info("Seeded admin account", "username", username)
	return nil
}

var sampleNames = []string{
	"Dana Reed", "Marcus Cole", "Priya Shah", "Tomás Herrera", "Yuki Tanaka",
	"Lena Fischer", "Omar Haddad", "Grace Okafor",
}

var sampleVenues = []string{
	"Riverside Convention Center", "Harborview Hotel", "Westgate Business Park",
	"Lakeside Estate", "Summit Tower",
}

var serviceTypes = []string{
	models.ServiceEventSecurity, models.ServicePersonalProtection,
	models.ServiceCorporateSecurity, models.ServiceResidentialPatrol,
	models.ServiceAssetEscort,
}

func (s *seeder) seedBookings(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		name := sampleNames[rand.Intn(len(sampleNames))]
		email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"

		booking := &models.Booking{
			Reference:   strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
			ClientName:  name,
			ClientEmail: email,
			ClientPhone: fmt.Sprintf("+1-555-%04d", rand.Intn(10000)),
			ServiceType: serviceTypes[rand.Intn(len(serviceTypes))],
			EventDate:   time.Now().AddDate(0, 0, rand.Intn(60)+7),
			StartTime:   "18:00",
			EndTime:     "23:00",
			Venue:       sampleVenues[rand.Intn(len(sampleVenues))],
			GuardCount:  rand.Intn(8) + 1,
			Status:      models.BookingStatusPending,
		}
		if err := s.repos.Bookings.Create(ctx, booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		payment := &models.Payment{
			BookingID: booking.ID,
			Status:    models.PaymentStatusPending,
		}
		if err := s.repos.Payments.Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		// Quote the job the way an admin would after review
		total := float64((rand.Intn(40) + 10) * 100)
		if err := s.repos.Payments.UpdateTotals(ctx, payment.ID, total, total*0.2); err != nil {
			return fmt.Errorf("failed to set payment totals: %w", err)
		}

		slog.Info("Seeded booking", "reference", booking.Reference, "client", name)
	}

	return nil
}

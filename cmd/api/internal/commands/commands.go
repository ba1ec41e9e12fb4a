package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tablereservations/config"
	"tablereservations/internal/database"
	"tablereservations/internal/domain"
	"tablereservations/internal/repository/memory"
	"tablereservations/internal/repository/postgres"
)

type Globals struct {
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

// repositories is the storage selected by STORAGE.
type repositories struct {
	customers    domain.CustomerRepository
	reservations domain.ReservationRepository
	admins       domain.AdminRepository
	close        func() error
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*repositories, error) {
	if cfg.Storage == "memory" {
		logger.Warn("using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		return &repositories{
			customers:    store.Customers(),
			reservations: store.Reservations(),
			admins:       store.Admins(),
			close:        func() error { return nil },
		}, nil
	}

	if migrate {
		if err := database.RunMigrations(cfg.DBUrl); err != nil {
			return nil, err
		}
		logger.Info("database migrations completed")
	}
	db, err := database.Open(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	return postgresRepositories(db), nil
}

func postgresRepositories(db *sql.DB) *repositories {
	return &repositories{
		customers:    postgres.NewCustomerRepository(db),
		reservations: postgres.NewReservationRepository(db),
		admins:       postgres.NewAdminRepository(db),
		close:        db.Close,
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, config.NewLogger(), nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"tablereservations/internal/adapters/auth"
	"tablereservations/internal/adapters/email"
	httpdelivery "tablereservations/internal/delivery/http"
	"tablereservations/internal/delivery/http/middleware"
	"tablereservations/internal/metrics"
	"tablereservations/internal/services"
)

type ServeCmd struct {
	ShutdownTimeout time.Duration `help:"time allowed for in-flight requests and notifications on shutdown" default:"15s" env:"SHUTDOWN_TIMEOUT"`
	NoMigrate       bool          `help:"skip applying database migrations on startup" env:"NO_MIGRATE"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("starting server", "version", globals.Version, "env", cfg.Environment, "storage", cfg.Storage, "tables", cfg.TableCount)

	repos, err := openRepositories(ctx, cfg, logger, !c.NoMigrate)
	if err != nil {
		return err
	}
	defer repos.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(reg)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}
	notifier := services.NewNotificationService(mailer, renderer, cfg.Email.AdminNotifyAddress, logger)

	reservations := services.NewReservationService(
		repos.reservations,
		services.NewCustomerService(repos.customers),
		notifier,
		recorder,
		logger,
		services.ReservationConfig{
			TableCount:    cfg.TableCount,
			MinPartySize:  cfg.MinPartySize,
			MaxPartySize:  cfg.MaxPartySize,
			Location:      cfg.Location,
			NotifyTimeout: cfg.NotifyTimeout,
		},
	)
	admins := services.NewAdminService(repos.admins, auth.NewBcryptHasher(0), auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry)

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	}, logger)
	defer rl.Stop()

	handler := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Logger:             logger,
		Reservations:       reservations,
		Admins:             admins,
		Verifier:           auth.NewJWTVerifier(cfg.JWTSecret),
		RateLimiter:        rl,
		Gatherer:           reg,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	srv := configureHTTPServer(":"+cfg.Port, handler)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	if err := reservations.Drain(shutdownCtx); err != nil {
		logger.Warn("notifications still in flight at shutdown", "err", err)
	}
	logger.Info("server stopped")
	return nil
}

package commands

import (
	"context"
	"errors"
	"fmt"

	"tablereservations/internal/adapters/auth"
	"tablereservations/internal/domain"
	"tablereservations/internal/services"
)

type CreateAdminCmd struct {
	Username string `help:"admin username" required:"" env:"ADMIN_USERNAME"`
	Password string `help:"admin password (at least 8 characters)" required:"" env:"ADMIN_PASSWORD"`
}

func (c *CreateAdminCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage == "memory" {
		return errors.New("create-admin requires STORAGE=postgres; in-memory admins vanish on exit")
	}

	repos, err := openRepositories(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer repos.close()

	svc := services.NewAdminService(repos.admins, auth.NewBcryptHasher(0), auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry)
	admin, err := svc.CreateAdmin(ctx, c.Username, c.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return fmt.Errorf("admin %q already exists", c.Username)
		}
		return err
	}
	logger.Info("admin created", "id", admin.ID, "username", admin.Username, "app_version", globals.Version)
	return nil
}

package commands

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"

	"tablereservations/internal/database"
)

type MigrateCmd struct {
	Down  bool `help:"roll back every migration instead of applying them"`
	Steps int  `help:"apply (positive) or roll back (negative) this many migrations" default:"0"`
}

func (c *MigrateCmd) Run(globals *Globals) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage == "memory" {
		return errors.New("migrate requires STORAGE=postgres")
	}

	m, err := database.NewMigrator(cfg.DBUrl)
	if err != nil {
		return err
	}
	defer m.Close()

	switch {
	case c.Steps != 0:
		err = m.Steps(c.Steps)
	case c.Down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("migrations complete", "version", version, "dirty", dirty, "app_version", globals.Version)
	return nil
}

package database

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablereservations/internal/domain"
)

func TestMigrationsFS_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestMigrationsFS_SourceReadable(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestMigrations_ReservationUniqueness(t *testing.T) {
	raw, err := fs.ReadFile(migrationsFS, "migrations/000002_create_reservations.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "reservations_time_slot_table_number_key UNIQUE (time_slot, table_number)")
}

func TestMigrations_CustomerColumnWidths(t *testing.T) {
	raw, err := fs.ReadFile(migrationsFS, "migrations/000001_create_customers.up.sql")
	require.NoError(t, err)
	sql := string(raw)

	assert.Regexp(t, fmt.Sprintf(`name\s+VARCHAR\(%d\)`, domain.MaxCustomerNameLength), sql)
	assert.Regexp(t, fmt.Sprintf(`email\s+VARCHAR\(%d\)`, domain.MaxEmailLength), sql)
	assert.Regexp(t, fmt.Sprintf(`phone\s+VARCHAR\(%d\)`, domain.MaxPhoneLength), sql)
}

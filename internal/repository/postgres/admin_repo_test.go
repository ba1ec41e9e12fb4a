package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablereservations/internal/domain"
)

func TestAdminRepository_Create(t *testing.T) {
	ctx := context.Background()
	admin := &domain.Admin{ID: "adm-1", Username: "root", PasswordHash: "h", Salt: "s", CreatedAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO admins \(id, username, password_hash, salt, created_at\)`).
					WithArgs("adm-1", "root", "h", "s", admin.CreatedAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate username",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO admins`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "admins_username_key"})
			},
			wantErr: domain.ErrDuplicateUsername,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewAdminRepository(db).Create(ctx, admin)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdminRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "username", "password_hash", "salt", "created_at"}
	mock.ExpectQuery(`FROM admins\s+WHERE username = \$1`).
		WithArgs("root").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("adm-1", "root", "h", "s", time.Now()))
	mock.ExpectQuery(`FROM admins\s+WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(cols))

	repo := NewAdminRepository(db)
	a, err := repo.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, "adm-1", a.ID)
	assert.Equal(t, "h", a.PasswordHash)

	_, err = repo.GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tablereservations/internal/domain"
)

type adminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(db *sql.DB) domain.AdminRepository {
	return &adminRepository{DB: db}
}

func (r *adminRepository) Create(ctx context.Context, a *domain.Admin) error {
	query := `
		INSERT INTO admins (id, username, password_hash, salt, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query, a.ID, a.Username, a.PasswordHash, a.Salt, a.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok && constraint == adminsUsernameKey {
			return domain.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	query := `
		SELECT id, username, password_hash, salt, created_at
		FROM admins
		WHERE username = $1
	`
	a := &domain.Admin{}
	err := r.DB.QueryRowContext(ctx, query, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Salt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

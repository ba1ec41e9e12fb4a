package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tablereservations/internal/domain"
)

type customerRepository struct {
	DB *sql.DB
}

func NewCustomerRepository(db *sql.DB) domain.CustomerRepository {
	return &customerRepository{DB: db}
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, phone, newsletter_signup, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.Name, c.Email, nullString(c.Phone), c.NewsletterSignup, c.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok && constraint == customersEmailKey {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `
		SELECT id, name, email, phone, newsletter_signup, created_at
		FROM customers
		WHERE email = $1
	`
	c := &domain.Customer{}
	var phone sql.NullString
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&c.ID, &c.Name, &c.Email, &phone, &c.NewsletterSignup, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Phone = stringPtr(phone)
	return c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

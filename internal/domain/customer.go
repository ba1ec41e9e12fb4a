package domain

import (
	"context"
	"time"
)

// Widths of the customers columns. VARCHAR(n) counts characters, so callers compare rune counts.
const (
	MaxCustomerNameLength = 120
	MaxEmailLength        = 120
	MaxPhoneLength        = 20
)

// Customer is a diner identified by a unique email address.
// swagger:model Customer
type Customer struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            *string   `json:"phone"`
	NewsletterSignup bool      `json:"newsletter_signup"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewCustomer returns a new Customer with the given fields.
func NewCustomer(id, name, email string, phone *string, createdAt time.Time) *Customer {
	return &Customer{
		ID:        id,
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: createdAt,
	}
}

// CustomerRepository defines storage operations for customers.
type CustomerRepository interface {
	// Create inserts the customer. Returns ErrDuplicateEmail if the email is already taken.
	Create(ctx context.Context, customer *Customer) error
	// GetByEmail is an exact, case-sensitive lookup. Returns ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*Customer, error)
}

// CustomerService resolves booking contact details to a stable customer identity.
type CustomerService interface {
	// ResolveOrCreate returns the customer registered under email, creating it when absent.
	// An existing customer is returned unchanged; name and phone are only used on creation.
	ResolveOrCreate(ctx context.Context, name, email string, phone *string) (*Customer, error)
}

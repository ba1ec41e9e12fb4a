package domain

import (
	"context"
	"slices"
	"time"
)

// RoleAdmin is the role carried by admin credentials.
const RoleAdmin = "admin"

// Admin is a back-office operator allowed to manage all reservations.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the verified identity behind a bearer credential.
type Principal struct {
	Subject string
	Roles   []string
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && slices.Contains(p.Roles, RoleAdmin)
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues signed credentials for an authenticated subject.
type TokenIssuer interface {
	Issue(subject string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a credential without consulting process-local state.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// AdminRepository defines storage operations for admins.
type AdminRepository interface {
	// Create inserts the admin. Returns ErrDuplicateUsername if the username is taken.
	Create(ctx context.Context, admin *Admin) error
	GetByUsername(ctx context.Context, username string) (*Admin, error)
}

// AdminService authenticates admins and provisions new ones.
type AdminService interface {
	// Login returns a signed admin token. Unknown usernames and wrong passwords both return ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (token string, expiresIn time.Duration, err error)
	CreateAdmin(ctx context.Context, username, password string) (*Admin, error)
}

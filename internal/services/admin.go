package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tablereservations/internal/domain"
)

const minPasswordLen = 8

type adminService struct {
	repo        domain.AdminRepository
	hasher      domain.PasswordHasher
	issuer      domain.TokenIssuer
	tokenExpiry time.Duration
}

// NewAdminService creates an AdminService that signs tokens valid for tokenExpiry.
func NewAdminService(repo domain.AdminRepository, hasher domain.PasswordHasher, issuer domain.TokenIssuer, tokenExpiry time.Duration) domain.AdminService {
	return &adminService{
		repo:        repo,
		hasher:      hasher,
		issuer:      issuer,
		tokenExpiry: tokenExpiry,
	}
}

func (s *adminService) Login(ctx context.Context, username, password string) (string, time.Duration, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", 0, domain.ErrInvalidCredentials
	}
	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", 0, domain.ErrInvalidCredentials
		}
		return "", 0, fmt.Errorf("failed to load admin: %w", err)
	}
	if err := s.hasher.Compare(admin.PasswordHash, admin.Salt, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return "", 0, domain.ErrInvalidCredentials
		}
		return "", 0, fmt.Errorf("failed to verify password: %w", err)
	}
	token, err := s.issuer.Issue(admin.ID, []string{domain.RoleAdmin}, s.tokenExpiry)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, s.tokenExpiry, nil
}

func (s *adminService) CreateAdmin(ctx context.Context, username, password string) (*domain.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "is required")
	}
	if len(password) < minPasswordLen {
		return nil, domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &domain.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}

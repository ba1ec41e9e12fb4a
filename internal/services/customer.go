package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tablereservations/internal/domain"
)

type customerService struct {
	repo domain.CustomerRepository
	now  func() time.Time
}

// NewCustomerService returns the customer directory backed by repo.
func NewCustomerService(repo domain.CustomerRepository) domain.CustomerService {
	return &customerService{repo: repo, now: time.Now}
}

func (s *customerService) ResolveOrCreate(ctx context.Context, name, email string, phone *string) (*domain.Customer, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	c := domain.NewCustomer(uuid.NewString(), name, email, phone, s.now().UTC())
	if err := s.repo.Create(ctx, c); err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, fmt.Errorf("failed to create customer: %w", err)
		}
		// lost a concurrent first booking for the same email
		existing, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to look up customer: %w", err)
		}
		return existing, nil
	}
	return c, nil
}

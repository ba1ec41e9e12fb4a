// Package memory provides in-memory repositories for development and testing.
// All three repositories share one Store so reservation reads can join customers.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"tablereservations/internal/domain"
)

type slotKey struct {
	slot  int64
	table int
}

func keyOf(slot time.Time, table int) slotKey {
	return slotKey{slot: slot.UnixMicro(), table: table}
}

// Store holds customers, reservations, and admins behind a single lock.
type Store struct {
	mu           sync.RWMutex
	customers    map[string]*domain.Customer
	emails       map[string]string
	reservations map[string]*domain.Reservation
	slots        map[slotKey]string
	admins       map[string]*domain.Admin
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		customers:    make(map[string]*domain.Customer),
		emails:       make(map[string]string),
		reservations: make(map[string]*domain.Reservation),
		slots:        make(map[slotKey]string),
		admins:       make(map[string]*domain.Admin),
	}
}

// Customers returns the customer repository view of the store.
func (s *Store) Customers() domain.CustomerRepository { return customerRepository{s} }

// Reservations returns the reservation repository view of the store.
func (s *Store) Reservations() domain.ReservationRepository { return reservationRepository{s} }

// Admins returns the admin repository view of the store.
func (s *Store) Admins() domain.AdminRepository { return adminRepository{s} }

func copyCustomer(c *domain.Customer) *domain.Customer {
	cp := *c
	if c.Phone != nil {
		p := *c.Phone
		cp.Phone = &p
	}
	return &cp
}

type customerRepository struct{ s *Store }

func (r customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.emails[c.Email]; exists {
		return domain.ErrDuplicateEmail
	}
	r.s.customers[c.ID] = copyCustomer(c)
	r.s.emails[c.Email] = c.ID
	return nil
}

func (r customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyCustomer(r.s.customers[id]), nil
}

type adminRepository struct{ s *Store }

func (r adminRepository) Create(ctx context.Context, a *domain.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.admins[a.Username]; exists {
		return domain.ErrDuplicateUsername
	}
	cp := *a
	r.s.admins[a.Username] = &cp
	return nil
}

func (r adminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.admins[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type reservationRepository struct{ s *Store }

func (r reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.reservations[res.ID]; exists {
		return fmt.Errorf("reservation %s already exists", res.ID)
	}
	if _, ok := r.s.customers[res.CustomerID]; !ok {
		return fmt.Errorf("customer %s does not exist", res.CustomerID)
	}
	key := keyOf(res.TimeSlot, res.TableNumber)
	if _, taken := r.s.slots[key]; taken {
		return domain.ErrTableTaken
	}
	cp := *res
	r.s.reservations[res.ID] = &cp
	r.s.slots[key] = res.ID
	return nil
}

func (r reservationRepository) OccupiedTables(ctx context.Context, slot time.Time) ([]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	micros := slot.UnixMicro()
	tables := []int{}
	for k := range r.s.slots {
		if k.slot == micros {
			tables = append(tables, k.table)
		}
	}
	slices.Sort(tables)
	return tables, nil
}

// detail must be called with the lock held.
func (s *Store) detail(res *domain.Reservation) *domain.ReservationDetail {
	d := domain.NewReservationDetail(res, copyCustomer(s.customers[res.CustomerID]))
	d.TimeSlot = d.TimeSlot.UTC()
	return d
}

func (r reservationRepository) GetDetail(ctx context.Context, id string) (*domain.ReservationDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.s.detail(res), nil
}

func (r reservationRepository) Update(ctx context.Context, id string, patch domain.ReservationPatch, updatedAt time.Time) (*domain.ReservationDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := *cur
	if patch.Apply(&next) {
		key := keyOf(next.TimeSlot, next.TableNumber)
		if holder, taken := r.s.slots[key]; taken && holder != id {
			return nil, domain.ErrTableConflict
		}
		delete(r.s.slots, keyOf(cur.TimeSlot, cur.TableNumber))
		r.s.slots[key] = id
	}
	next.UpdatedAt = updatedAt
	r.s.reservations[id] = &next
	return r.s.detail(&next), nil
}

func (r reservationRepository) Delete(ctx context.Context, id string) (*domain.ReservationDetail, error) {
	return r.delete(id, nil)
}

func (r reservationRepository) DeleteOwned(ctx context.Context, id, email string) (*domain.ReservationDetail, error) {
	return r.delete(id, &email)
}

func (r reservationRepository) delete(id string, email *string) (*domain.ReservationDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if email != nil && r.s.customers[res.CustomerID].Email != *email {
		return nil, domain.ErrNotFound
	}
	d := r.s.detail(res)
	delete(r.s.reservations, id)
	delete(r.s.slots, keyOf(res.TimeSlot, res.TableNumber))
	return d, nil
}

// sorted must be called with the lock held.
func (s *Store) sorted() []*domain.ReservationDetail {
	items := make([]*domain.ReservationDetail, 0, len(s.reservations))
	for _, res := range s.reservations {
		items = append(items, s.detail(res))
	}
	slices.SortFunc(items, func(a, b *domain.ReservationDetail) int {
		if c := a.TimeSlot.Compare(b.TimeSlot); c != 0 {
			return c
		}
		return cmp.Compare(a.TableNumber, b.TableNumber)
	})
	return items
}

func (r reservationRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.ReservationDetail, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.sorted()
	start := min(params.Offset(), len(all))
	end := len(all)
	if params.PageSize > 0 {
		end = min(start+params.PageSize, len(all))
	}
	return all[start:end], len(all), nil
}

func (r reservationRepository) ListAll(ctx context.Context) ([]*domain.ReservationDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.sorted(), nil
}

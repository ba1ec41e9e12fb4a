package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"tablereservations/internal/domain"
	"tablereservations/internal/metrics"
)

// Word characters include any Unicode letter or digit, so josé@example.com is accepted.
var emailRegexp = regexp.MustCompile(`^[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+\.[\p{L}\p{N}_]+$`)

// Slot strings without an offset are read in the restaurant's location.
var localSlotLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var exportHeader = []string{"id", "customer_name", "email", "phone", "time_slot", "table_number", "number_of_guests"}

// ReservationConfig holds the allocator's capacity and validation limits.
type ReservationConfig struct {
	TableCount    int
	MinPartySize  int
	MaxPartySize  int
	Location      *time.Location
	NotifyTimeout time.Duration
}

// ReservationOption customises a reservation service.
type ReservationOption func(*reservationService)

// WithClock replaces time.Now, which decides whether a requested slot is in the future.
func WithClock(now func() time.Time) ReservationOption {
	return func(s *reservationService) { s.now = now }
}

// WithRetryBackOff replaces the delay policy between optimistic insert attempts.
func WithRetryBackOff(newBackOff func() backoff.BackOff) ReservationOption {
	return func(s *reservationService) { s.newBackOff = newBackOff }
}

type reservationService struct {
	reservations domain.ReservationRepository
	customers    domain.CustomerService
	notifier     domain.ReservationNotifier
	recorder     metrics.Recorder
	logger       *slog.Logger
	cfg          ReservationConfig

	now        func() time.Time
	newBackOff func() backoff.BackOff
	locks      *slotLocker
	inflight   sync.WaitGroup
}

// NewReservationService returns the table allocator. notifier may be nil to disable notifications.
func NewReservationService(
	reservations domain.ReservationRepository,
	customers domain.CustomerService,
	notifier domain.ReservationNotifier,
	recorder metrics.Recorder,
	logger *slog.Logger,
	cfg ReservationConfig,
	opts ...ReservationOption,
) domain.ReservationService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 10 * time.Second
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	s := &reservationService{
		reservations: reservations,
		customers:    customers,
		notifier:     notifier,
		recorder:     recorder,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
		newBackOff:   defaultBackOff,
		locks:        newSlotLocker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	return b
}

// parseTimeSlot accepts RFC 3339 or a zone-less local timestamp and normalises to UTC microseconds,
// the precision the store keeps.
func parseTimeSlot(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.NewValidationError("time_slot", "is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC().Truncate(time.Microsecond), nil
	}
	for _, layout := range localSlotLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC().Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, domain.NewValidationError("time_slot", "must be an ISO-8601 timestamp")
}

func (s *reservationService) validatePartySize(n int) error {
	if n < s.cfg.MinPartySize || n > s.cfg.MaxPartySize {
		return domain.NewValidationError("number_of_guests",
			fmt.Sprintf("must be between %d and %d", s.cfg.MinPartySize, s.cfg.MaxPartySize))
	}
	return nil
}

func (s *reservationService) Book(ctx context.Context, req domain.BookingRequest) (*domain.ReservationDetail, error) {
	slot, err := parseTimeSlot(req.TimeSlot, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	if !slot.After(s.now()) {
		return nil, domain.NewValidationError("time_slot", "must be in the future")
	}
	if err := s.validatePartySize(req.NumberOfGuests); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, domain.NewValidationError("customer_name", "is required")
	}
	if err := maxLength("customer_name", name, domain.MaxCustomerNameLength); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, domain.NewValidationError("email", "is required")
	}
	if err := maxLength("email", email, domain.MaxEmailLength); err != nil {
		return nil, err
	}
	if !emailRegexp.MatchString(email) {
		return nil, domain.NewValidationError("email", "invalid email format")
	}
	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		if err := maxLength("phone", p, domain.MaxPhoneLength); err != nil {
			return nil, err
		}
		phone = &p
	}

	customer, err := s.customers.ResolveOrCreate(ctx, name, email, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	res, err := s.allocate(ctx, customer.ID, slot, req.NumberOfGuests)
	if err != nil {
		if errors.Is(err, domain.ErrSlotFull) {
			s.recorder.RecordSlotFull()
		}
		return nil, err
	}
	s.recorder.RecordBooked()

	detail := domain.NewReservationDetail(res, customer)
	s.notify(ctx, TemplateReservationConfirmation, detail)
	s.notify(ctx, TemplateAdminNewReservation, detail)
	return detail, nil
}

func maxLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return domain.NewValidationError(field, fmt.Sprintf("must be at most %d characters", limit))
	}
	return nil
}

// allocate picks a uniformly random free table for slot and inserts the reservation.
// The slot lock keeps bookings in this process from racing each other; the store's
// (time_slot, table_number) constraint catches races with other processes, which are retried
// against fresh occupancy. Every lost race means one more table is taken, so TableCount+1
// attempts are enough to either succeed or observe a full slot.
func (s *reservationService) allocate(ctx context.Context, customerID string, slot time.Time, guests int) (*domain.Reservation, error) {
	unlock := s.locks.Lock(slot)
	defer unlock()

	id := uuid.NewString()
	now := s.now().UTC()
	attempt := func() (*domain.Reservation, error) {
		occupied, err := s.reservations.OccupiedTables(ctx, slot)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to load occupancy: %w", err))
		}
		free := freeTables(s.cfg.TableCount, occupied)
		if len(free) == 0 {
			return nil, backoff.Permanent(domain.ErrSlotFull)
		}
		res := domain.NewReservation(id, customerID, slot, free[rand.IntN(len(free))], guests, now, now)
		if err := s.reservations.Create(ctx, res); err != nil {
			if errors.Is(err, domain.ErrTableTaken) {
				s.recorder.RecordTableCollision()
				return nil, err
			}
			return nil, backoff.Permanent(fmt.Errorf("failed to create reservation: %w", err))
		}
		return res, nil
	}

	res, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(uint(s.cfg.TableCount+1)),
	)
	if errors.Is(err, domain.ErrTableTaken) {
		return nil, domain.ErrSlotFull
	}
	return res, err
}

// freeTables returns 1..tableCount minus occupied, ascending.
func freeTables(tableCount int, occupied []int) []int {
	free := make([]int, 0, tableCount)
	for n := 1; n <= tableCount; n++ {
		if !slices.Contains(occupied, n) {
			free = append(free, n)
		}
	}
	return free
}

func (s *reservationService) Availability(ctx context.Context, timeSlot string) (*domain.Availability, error) {
	slot, err := parseTimeSlot(timeSlot, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	occupied, err := s.reservations.OccupiedTables(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupancy: %w", err)
	}
	return &domain.Availability{
		TimeSlot:   slot,
		TableCount: s.cfg.TableCount,
		Occupied:   occupied,
		Available:  freeTables(s.cfg.TableCount, occupied),
	}, nil
}

// canonicalID reports whether id is a UUID and returns it in the form the store keeps.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// ownerArgs checks the self-service inputs. A malformed id can never match, so it is NotFound.
func ownerArgs(id, email string) (string, string, error) {
	id, email = strings.TrimSpace(id), strings.TrimSpace(email)
	if email == "" {
		return "", "", domain.NewValidationError("email", "is required")
	}
	if id == "" {
		return "", "", domain.NewValidationError("reservation_id", "is required")
	}
	id, ok := canonicalID(id)
	if !ok {
		return "", "", domain.ErrNotFound
	}
	return id, email, nil
}

func (s *reservationService) Lookup(ctx context.Context, id, email string) (*domain.ReservationDetail, error) {
	id, email, err := ownerArgs(id, email)
	if err != nil {
		return nil, err
	}
	d, err := s.reservations.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if d.Email != email {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

// Cancel deletes the reservation when email owns it and returns what was removed.
func (s *reservationService) Cancel(ctx context.Context, id, email string) (*domain.ReservationDetail, error) {
	id, email, err := ownerArgs(id, email)
	if err != nil {
		return nil, err
	}
	d, err := s.reservations.DeleteOwned(ctx, id, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}
	s.recorder.RecordCancelled("customer")
	s.notify(ctx, TemplateReservationCancellation, d)
	return d, nil
}

func (s *reservationService) buildPatch(req domain.UpdateRequest) (domain.ReservationPatch, error) {
	var patch domain.ReservationPatch
	if req.TimeSlot != nil {
		slot, err := parseTimeSlot(*req.TimeSlot, s.cfg.Location)
		if err != nil {
			return patch, err
		}
		patch.TimeSlot = &slot
	}
	if req.TableNumber != nil {
		if n := *req.TableNumber; n < 1 || n > s.cfg.TableCount {
			return patch, domain.NewValidationError("table_number", fmt.Sprintf("must be between 1 and %d", s.cfg.TableCount))
		}
		patch.TableNumber = req.TableNumber
	}
	if req.NumberOfGuests != nil {
		if err := s.validatePartySize(*req.NumberOfGuests); err != nil {
			return patch, err
		}
		patch.NumberOfGuests = req.NumberOfGuests
	}
	if patch.IsEmpty() {
		return patch, domain.NewValidationError("body", "at least one of time_slot, table_number, number_of_guests is required")
	}
	return patch, nil
}

func (s *reservationService) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.ReservationDetail, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	patch, err := s.buildPatch(req)
	if err != nil {
		return nil, err
	}
	d, err := s.reservations.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrTableConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	s.recorder.RecordUpdated()
	s.notify(ctx, TemplateReservationUpdated, d)
	return d, nil
}

func (s *reservationService) AdminDelete(ctx context.Context, id string) (*domain.ReservationDetail, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	d, err := s.reservations.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete reservation: %w", err)
	}
	s.recorder.RecordCancelled("admin")
	s.notify(ctx, TemplateReservationCancellation, d)
	return d, nil
}

func (s *reservationService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.ReservationDetail, int, error) {
	items, total, err := s.reservations.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	return items, total, nil
}

func (s *reservationService) ExportCSV(ctx context.Context, w io.Writer) error {
	items, err := s.reservations.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reservations: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, d := range items {
		phone := ""
		if d.Phone != nil {
			phone = *d.Phone
		}
		record := []string{
			d.ID,
			d.CustomerName,
			d.Email,
			phone,
			d.TimeSlot.UTC().Format(time.RFC3339),
			strconv.Itoa(d.TableNumber),
			strconv.Itoa(d.NumberOfGuests),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// notify sends the kind message on its own goroutine, detached from the request's cancellation.
// Failures are logged and counted, never returned.
func (s *reservationService) notify(ctx context.Context, kind string, d *domain.ReservationDetail) {
	if s.notifier == nil {
		return
	}
	data := domain.NewReservationEmailData(d, s.cfg.Location)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	s.inflight.Go(func() {
		defer cancel()
		if err := s.send(ctx, kind, data); err != nil {
			s.recorder.RecordNotificationFailure(kind)
			s.logger.WarnContext(ctx, "notification failed", "kind", kind, "reservation_id", d.ID, "err", err)
		}
	})
}

func (s *reservationService) send(ctx context.Context, kind string, data *domain.ReservationEmailData) error {
	switch kind {
	case TemplateReservationConfirmation:
		return s.notifier.SendReservationConfirmation(ctx, data)
	case TemplateAdminNewReservation:
		return s.notifier.SendAdminNewReservation(ctx, data)
	case TemplateReservationUpdated:
		return s.notifier.SendReservationUpdate(ctx, data)
	case TemplateReservationCancellation:
		return s.notifier.SendReservationCancellation(ctx, data)
	}
	return fmt.Errorf("unknown notification kind %q", kind)
}

func (s *reservationService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"tablereservations/internal/domain"
	"tablereservations/internal/repository/memory"
)

var (
	testNow  = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)
	testSlot = "2030-06-01T19:00:00Z"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() ReservationConfig {
	return ReservationConfig{
		TableCount:    30,
		MinPartySize:  1,
		MaxPartySize:  20,
		Location:      time.UTC,
		NotifyTimeout: time.Second,
	}
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

// fakeRecorder implements metrics.Recorder for tests.
type fakeRecorder struct {
	mu         sync.Mutex
	booked     int
	slotFull   int
	collisions int
	updated    int
	cancelled  map[string]int
	failures   map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{cancelled: map[string]int{}, failures: map[string]int{}}
}

func (f *fakeRecorder) RecordBooked()         { f.mu.Lock(); f.booked++; f.mu.Unlock() }
func (f *fakeRecorder) RecordSlotFull()       { f.mu.Lock(); f.slotFull++; f.mu.Unlock() }
func (f *fakeRecorder) RecordTableCollision() { f.mu.Lock(); f.collisions++; f.mu.Unlock() }
func (f *fakeRecorder) RecordUpdated()        { f.mu.Lock(); f.updated++; f.mu.Unlock() }
func (f *fakeRecorder) RecordCancelled(by string) {
	f.mu.Lock()
	f.cancelled[by]++
	f.mu.Unlock()
}
func (f *fakeRecorder) RecordNotificationFailure(kind string) {
	f.mu.Lock()
	f.failures[kind]++
	f.mu.Unlock()
}

// fakeNotifier implements domain.ReservationNotifier and records every call.
type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	ids   []string
	err   error
	block chan struct{}
}

func (f *fakeNotifier) record(kind string, data *domain.ReservationEmailData) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, kind)
	f.ids = append(f.ids, data.ReservationID)
	return f.err
}

func (f *fakeNotifier) SendReservationConfirmation(_ context.Context, d *domain.ReservationEmailData) error {
	return f.record(TemplateReservationConfirmation, d)
}
func (f *fakeNotifier) SendReservationCancellation(_ context.Context, d *domain.ReservationEmailData) error {
	return f.record(TemplateReservationCancellation, d)
}
func (f *fakeNotifier) SendReservationUpdate(_ context.Context, d *domain.ReservationEmailData) error {
	return f.record(TemplateReservationUpdated, d)
}
func (f *fakeNotifier) SendAdminNewReservation(_ context.Context, d *domain.ReservationEmailData) error {
	return f.record(TemplateAdminNewReservation, d)
}

func (f *fakeNotifier) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// racingRepo simulates another process that grabs the chosen table just before our insert.
type racingRepo struct {
	domain.ReservationRepository
	mu     sync.Mutex
	steals int
	seq    int
}

func (r *racingRepo) Create(ctx context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	steal := r.steals > 0
	if steal {
		r.steals--
		r.seq++
	}
	seq := r.seq
	r.mu.Unlock()
	if steal {
		rival := *res
		rival.ID = fmt.Sprintf("%s-rival-%d", res.ID, seq)
		if err := r.ReservationRepository.Create(ctx, &rival); err != nil {
			return err
		}
	}
	return r.ReservationRepository.Create(ctx, res)
}

// alwaysTakenRepo reports every insert as a lost race without ever filling the slot.
type alwaysTakenRepo struct {
	domain.ReservationRepository
	mu       sync.Mutex
	attempts int
}

func (r *alwaysTakenRepo) Create(context.Context, *domain.Reservation) error {
	r.mu.Lock()
	r.attempts++
	r.mu.Unlock()
	return domain.ErrTableTaken
}

// brokenRepo fails every call.
type brokenRepo struct {
	domain.ReservationRepository
}

var errStorage = errors.New("connection refused")

func (brokenRepo) OccupiedTables(context.Context, time.Time) ([]int, error) { return nil, errStorage }
func (brokenRepo) GetDetail(context.Context, string) (*domain.ReservationDetail, error) {
	return nil, errStorage
}

// fixture wires a reservation service to a memory store.
type fixture struct {
	store    *memory.Store
	svc      domain.ReservationService
	notifier *fakeNotifier
	recorder *fakeRecorder
}

func newFixture(repo func(domain.ReservationRepository) domain.ReservationRepository, cfg ReservationConfig) *fixture {
	store := memory.NewStore()
	reservations := store.Reservations()
	if repo != nil {
		reservations = repo(reservations)
	}
	f := &fixture{
		store:    store,
		notifier: &fakeNotifier{},
		recorder: newFakeRecorder(),
	}
	f.svc = NewReservationService(
		reservations,
		NewCustomerService(store.Customers()),
		f.notifier,
		f.recorder,
		discardLogger(),
		cfg,
		WithClock(func() time.Time { return testNow }),
		WithRetryBackOff(zeroBackOff),
	)
	return f
}

func booking(email string, guests int) domain.BookingRequest {
	return domain.BookingRequest{
		TimeSlot:       testSlot,
		NumberOfGuests: guests,
		CustomerName:   "Guest",
		Email:          email,
		Phone:          "555-0100",
	}
}

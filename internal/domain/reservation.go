package domain

import (
	"context"
	"io"
	"time"
)

// Reservation is one party's claim on a table at an exact time slot.
// swagger:model Reservation
type Reservation struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	TimeSlot       time.Time `json:"time_slot"`
	TableNumber    int       `json:"table_number"`
	NumberOfGuests int       `json:"number_of_guests"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewReservation returns a new Reservation with the given fields.
func NewReservation(id, customerID string, timeSlot time.Time, tableNumber, numberOfGuests int, createdAt, updatedAt time.Time) *Reservation {
	return &Reservation{
		ID:             id,
		CustomerID:     customerID,
		TimeSlot:       timeSlot,
		TableNumber:    tableNumber,
		NumberOfGuests: numberOfGuests,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// ReservationDetail is a reservation joined with its owning customer's contact details.
// swagger:model ReservationDetail
type ReservationDetail struct {
	ID             string    `json:"id"`
	CustomerName   string    `json:"customer_name"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone"`
	TimeSlot       time.Time `json:"time_slot"`
	TableNumber    int       `json:"table_number"`
	NumberOfGuests int       `json:"number_of_guests"`
}

// NewReservationDetail joins r with customer c.
func NewReservationDetail(r *Reservation, c *Customer) *ReservationDetail {
	return &ReservationDetail{
		ID:             r.ID,
		CustomerName:   c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		TimeSlot:       r.TimeSlot,
		TableNumber:    r.TableNumber,
		NumberOfGuests: r.NumberOfGuests,
	}
}

// ReservationPatch holds the fields an admin update may change. Nil fields are left untouched.
type ReservationPatch struct {
	TimeSlot       *time.Time
	TableNumber    *int
	NumberOfGuests *int
}

// IsEmpty reports whether the patch changes nothing.
func (p ReservationPatch) IsEmpty() bool {
	return p.TimeSlot == nil && p.TableNumber == nil && p.NumberOfGuests == nil
}

// Apply writes the patch onto r and reports whether the (time_slot, table_number) pair changed.
func (p ReservationPatch) Apply(r *Reservation) (moved bool) {
	if p.TimeSlot != nil && !p.TimeSlot.Equal(r.TimeSlot) {
		r.TimeSlot = *p.TimeSlot
		moved = true
	}
	if p.TableNumber != nil && *p.TableNumber != r.TableNumber {
		r.TableNumber = *p.TableNumber
		moved = true
	}
	if p.NumberOfGuests != nil {
		r.NumberOfGuests = *p.NumberOfGuests
	}
	return moved
}

// Availability summarises table occupancy for one time slot.
// swagger:model Availability
type Availability struct {
	TimeSlot   time.Time `json:"time_slot"`
	TableCount int       `json:"table_count"`
	Occupied   []int     `json:"occupied"`
	Available  []int     `json:"available"`
}

// ReservationRepository defines storage operations for reservations.
// Implementations must enforce uniqueness of (time_slot, table_number).
type ReservationRepository interface {
	// Create inserts r. Returns ErrTableTaken if another reservation holds the same slot and table.
	Create(ctx context.Context, r *Reservation) error
	// OccupiedTables returns the table numbers held at exactly slot, in ascending order.
	OccupiedTables(ctx context.Context, slot time.Time) ([]int, error)
	GetDetail(ctx context.Context, id string) (*ReservationDetail, error)
	// Update applies patch atomically. Returns ErrNotFound or ErrTableConflict.
	Update(ctx context.Context, id string, patch ReservationPatch, updatedAt time.Time) (*ReservationDetail, error)
	// Delete removes the reservation and returns what was deleted. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) (*ReservationDetail, error)
	// DeleteOwned removes the reservation only if its customer's email equals email.
	// A missing reservation and an email mismatch both return ErrNotFound.
	DeleteOwned(ctx context.Context, id, email string) (*ReservationDetail, error)
	List(ctx context.Context, params PaginationParams) ([]*ReservationDetail, int, error)
	ListAll(ctx context.Context) ([]*ReservationDetail, error)
}

// BookingRequest is the raw input of a booking; the service validates every field.
type BookingRequest struct {
	TimeSlot       string
	NumberOfGuests int
	CustomerName   string
	Email          string
	Phone          string
}

// UpdateRequest is the raw input of an admin update. Nil fields are left untouched.
type UpdateRequest struct {
	TimeSlot       *string
	TableNumber    *int
	NumberOfGuests *int
}

// ReservationService is the table allocator and the self-service gateway.
type ReservationService interface {
	Book(ctx context.Context, req BookingRequest) (*ReservationDetail, error)
	Availability(ctx context.Context, timeSlot string) (*Availability, error)
	Lookup(ctx context.Context, id, email string) (*ReservationDetail, error)
	// Cancel and AdminDelete return the removed reservation, keyed by its canonical id.
	Cancel(ctx context.Context, id, email string) (*ReservationDetail, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*ReservationDetail, error)
	AdminDelete(ctx context.Context, id string) (*ReservationDetail, error)
	List(ctx context.Context, params PaginationParams) ([]*ReservationDetail, int, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	// Drain waits for in-flight notifications or until ctx is done.
	Drain(ctx context.Context) error
}

package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := fmt.Errorf("book: %w", NewValidationError("email", "invalid email format"))

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrNotFound)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)
	assert.Equal(t, "email: invalid email format", verr.Error())
}

func TestReservationPatch_Apply(t *testing.T) {
	slot := time.Date(2030, 1, 1, 19, 0, 0, 0, time.UTC)
	later := slot.Add(time.Hour)
	table := 7
	same := 3
	guests := 6

	tests := []struct {
		name      string
		patch     ReservationPatch
		wantMoved bool
		wantSlot  time.Time
		wantTable int
		wantGuest int
	}{
		{"empty patch", ReservationPatch{}, false, slot, 3, 2},
		{"guests only", ReservationPatch{NumberOfGuests: &guests}, false, slot, 3, 6},
		{"same table", ReservationPatch{TableNumber: &same}, false, slot, 3, 2},
		{"new table", ReservationPatch{TableNumber: &table}, true, slot, 7, 2},
		{"new slot", ReservationPatch{TimeSlot: &later}, true, later, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{TimeSlot: slot, TableNumber: 3, NumberOfGuests: 2}
			moved := tt.patch.Apply(r)
			assert.Equal(t, tt.wantMoved, moved)
			assert.True(t, tt.wantSlot.Equal(r.TimeSlot))
			assert.Equal(t, tt.wantTable, r.TableNumber)
			assert.Equal(t, tt.wantGuest, r.NumberOfGuests)
		})
	}
	assert.True(t, ReservationPatch{}.IsEmpty())
	assert.False(t, ReservationPatch{NumberOfGuests: &guests}.IsEmpty())
}

func TestPrincipal_IsAdmin(t *testing.T) {
	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.IsAdmin())
	assert.False(t, (&Principal{Subject: "a", Roles: []string{"staff"}}).IsAdmin())
	assert.True(t, (&Principal{Subject: "a", Roles: []string{"staff", RoleAdmin}}).IsAdmin())
}

func TestNewReservationEmailData(t *testing.T) {
	phone := "555-0100"
	d := &ReservationDetail{
		ID:             "r1",
		CustomerName:   "Ada",
		Email:          "ada@example.com",
		Phone:          &phone,
		TimeSlot:       time.Date(2030, 3, 4, 18, 30, 0, 0, time.UTC),
		TableNumber:    12,
		NumberOfGuests: 4,
	}

	data := NewReservationEmailData(d, nil)
	assert.Equal(t, "March 04, 2030 at 06:30 PM", data.FormattedTime)
	assert.Equal(t, "555-0100", data.Phone)
	assert.Equal(t, 12, data.TableNumber)

	d.Phone = nil
	assert.Empty(t, NewReservationEmailData(d, time.UTC).Phone)
}

func TestPaginationParams_Offset(t *testing.T) {
	assert.Equal(t, 0, PaginationParams{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 0, PaginationParams{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, PaginationParams{Page: 3, PageSize: 20}.Offset())
}

func TestPaginationParams_TotalPages(t *testing.T) {
	p := PaginationParams{Page: 1, PageSize: 30}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(30))
	assert.Equal(t, 2, p.TotalPages(31))
	assert.Equal(t, 0, PaginationParams{Page: 1}.TotalPages(31))
}

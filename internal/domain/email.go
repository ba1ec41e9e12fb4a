package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ReservationEmailData holds the reservation and customer payload for every reservation email.
type ReservationEmailData struct {
	ReservationID  string
	CustomerName   string
	Email          string
	Phone          string
	TimeSlot       time.Time
	FormattedTime  string
	TableNumber    int
	NumberOfGuests int
}

// NewReservationEmailData builds the email payload for d, formatting the slot in loc.
func NewReservationEmailData(d *ReservationDetail, loc *time.Location) *ReservationEmailData {
	if loc == nil {
		loc = time.UTC
	}
	data := &ReservationEmailData{
		ReservationID:  d.ID,
		CustomerName:   d.CustomerName,
		Email:          d.Email,
		TimeSlot:       d.TimeSlot,
		FormattedTime:  d.TimeSlot.In(loc).Format("January 02, 2006 at 03:04 PM"),
		TableNumber:    d.TableNumber,
		NumberOfGuests: d.NumberOfGuests,
	}
	if d.Phone != nil {
		data.Phone = *d.Phone
	}
	return data
}

// ReservationNotifier sends reservation lifecycle messages. Callers treat it as best-effort.
type ReservationNotifier interface {
	SendReservationConfirmation(ctx context.Context, data *ReservationEmailData) error
	SendReservationCancellation(ctx context.Context, data *ReservationEmailData) error
	SendReservationUpdate(ctx context.Context, data *ReservationEmailData) error
	SendAdminNewReservation(ctx context.Context, data *ReservationEmailData) error
}

package controllers

import (
	"log/slog"
	"net/http"

	"tablereservations/internal/delivery/http/helpers"
	"tablereservations/internal/domain"
)

// BookReservationRequest is the request body for POST /api/reservations.
type BookReservationRequest struct {
	TimeSlot       string `json:"time_slot" example:"2030-06-01T19:00:00Z"`
	NumberOfGuests int    `json:"number_of_guests" example:"4"`
	CustomerName   string `json:"customer_name" example:"Ada Lovelace"`
	Email          string `json:"email" example:"ada@example.com"`
	Phone          string `json:"phone,omitempty" example:"+44 20 7946 0000"`
}

// ReservationSuccessResponse is the success envelope for endpoints returning one reservation.
type ReservationSuccessResponse struct {
	Data  *domain.ReservationDetail `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// AvailabilitySuccessResponse is the success envelope for GET /api/reservations/availability.
type AvailabilitySuccessResponse struct {
	Data  *domain.Availability `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CancelReservationRequest is the request body for DELETE /api/reservations/lookup.
type CancelReservationRequest struct {
	Email         string `json:"email"`
	ReservationID string `json:"reservation_id"`
}

// CancelResult is returned after a successful cancellation or deletion.
type CancelResult struct {
	ID     string `json:"id"`
	Status string `json:"status" example:"cancelled"`
}

// CancelSuccessResponse is the success envelope for cancellation endpoints.
type CancelSuccessResponse struct {
	Data  CancelResult      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ReservationController serves the public booking and self-service endpoints.
type ReservationController struct {
	Logger  *slog.Logger
	Service domain.ReservationService
}

func NewReservationController(logger *slog.Logger, svc domain.ReservationService) *ReservationController {
	return &ReservationController{
		Logger:  logger,
		Service: svc,
	}
}

// Book godoc
// @Summary Book a table
// @Description Reserves a random free table at the exact time slot. The slot must be in the future; number_of_guests must be within the configured party range.
// @Tags reservations
// @Accept json
// @Produce json
// @Param reservation body BookReservationRequest true "Booking details"
// @Success 201 {object} controllers.ReservationSuccessResponse "data contains the reservation with its assigned table"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (message names the field)"
// @Failure 409 {object} helpers.APIResponse "error.code: slot_full"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reservations [post]
func (c *ReservationController) Book(w http.ResponseWriter, r *http.Request) {
	var req BookReservationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	detail, err := c.Service.Book(r.Context(), domain.BookingRequest{
		TimeSlot:       req.TimeSlot,
		NumberOfGuests: req.NumberOfGuests,
		CustomerName:   req.CustomerName,
		Email:          req.Email,
		Phone:          req.Phone,
	})
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, detail)
}

// Availability godoc
// @Summary Table availability for a time slot
// @Description Lists occupied and free tables at exactly the given instant. Read-only.
// @Tags reservations
// @Produce json
// @Param time_slot query string true "ISO-8601 timestamp"
// @Success 200 {object} controllers.AvailabilitySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reservations/availability [get]
func (c *ReservationController) Availability(w http.ResponseWriter, r *http.Request) {
	a, err := c.Service.Availability(r.Context(), r.URL.Query().Get("time_slot"))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, a)
}

// Lookup godoc
// @Summary Look up a reservation
// @Description Returns the reservation when the email matches its owner. A wrong email and an unknown id both return 404.
// @Tags reservations
// @Produce json
// @Param email query string true "Email used when booking"
// @Param reservation_id query string true "Reservation ID (UUID)"
// @Success 200 {object} controllers.ReservationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reservations/lookup [get]
func (c *ReservationController) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	detail, err := c.Service.Lookup(r.Context(), q.Get("reservation_id"), q.Get("email"))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// Cancel godoc
// @Summary Cancel a reservation
// @Description Deletes the reservation when the email matches its owner. A wrong email and an unknown id both return 404.
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body CancelReservationRequest true "Owner email and reservation id"
// @Success 200 {object} controllers.CancelSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /reservations/lookup [delete]
func (c *ReservationController) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelReservationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	d, err := c.Service.Cancel(r.Context(), req.ReservationID, req.Email)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CancelResult{ID: d.ID, Status: "cancelled"})
}

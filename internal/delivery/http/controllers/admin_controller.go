package controllers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"tablereservations/internal/delivery/http/helpers"
	"tablereservations/internal/domain"
)

// LoginRequest is the request body for POST /api/admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Username) == "" {
		errs = append(errs, "username is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse carries the admin bearer token.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type" example:"Bearer"`
	ExpiresIn int64  `json:"expires_in" example:"86400"`
}

// LoginSuccessResponse is the success envelope for POST /api/admin/login.
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateReservationRequest is the request body for PUT /api/admin/reservations/{id}.
// Omitted fields are unchanged.
type UpdateReservationRequest struct {
	TimeSlot       *string `json:"time_slot,omitempty"`
	TableNumber    *int    `json:"table_number,omitempty"`
	NumberOfGuests *int    `json:"number_of_guests,omitempty"`
}

// ReservationListResponse is one page of reservations.
type ReservationListResponse struct {
	Items      []*domain.ReservationDetail `json:"items"`
	Pagination helpers.PaginationMeta      `json:"pagination"`
}

// ReservationListSuccessResponse is the success envelope for GET /api/admin/reservations.
type ReservationListSuccessResponse struct {
	Data  ReservationListResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// AdminController serves admin login and the admin-only reservation endpoints.
type AdminController struct {
	Logger       *slog.Logger
	Admins       domain.AdminService
	Reservations domain.ReservationService
}

func NewAdminController(logger *slog.Logger, admins domain.AdminService, reservations domain.ReservationService) *AdminController {
	return &AdminController{
		Logger:       logger,
		Admins:       admins,
		Reservations: reservations,
	}
}

// Login godoc
// @Summary Admin login
// @Description Exchanges admin credentials for a signed bearer token. Wrong username and wrong password both return 401.
// @Tags admin
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Admin credentials"
// @Success 200 {object} controllers.LoginSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/login [post]
func (c *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, expiresIn, err := c.Admins.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(expiresIn.Seconds()),
	})
}

// ListReservations godoc
// @Summary List all reservations
// @Description Paginated, ordered by time slot then table number.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param page_size query int false "Items per page (max 100)" default(30)
// @Success 200 {object} controllers.ReservationListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/reservations [get]
func (c *AdminController) ListReservations(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	items, total, err := c.Reservations.List(r.Context(), params)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReservationListResponse{
		Items:      items,
		Pagination: helpers.NewPaginationMeta(params, total),
	})
}

// ExportReservations godoc
// @Summary Export reservations as CSV
// @Tags admin
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV with header id,customer_name,email,phone,time_slot,table_number,number_of_guests"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/reservations/export [get]
func (c *AdminController) ExportReservations(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := c.Reservations.ExportCSV(r.Context(), &buf); err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment;filename=reservations.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// UpdateReservation godoc
// @Summary Update a reservation
// @Description Changes time slot, table, or party size. Moving onto a (time_slot, table_number) pair held by another reservation returns 409.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID (UUID)"
// @Param patch body UpdateReservationRequest true "Fields to change"
// @Success 200 {object} controllers.ReservationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: table_conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/reservations/{id} [put]
func (c *AdminController) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	var req UpdateReservationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	detail, err := c.Reservations.Update(r.Context(), r.PathValue("id"), domain.UpdateRequest{
		TimeSlot:       req.TimeSlot,
		TableNumber:    req.TableNumber,
		NumberOfGuests: req.NumberOfGuests,
	})
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// DeleteReservation godoc
// @Summary Delete a reservation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID (UUID)"
// @Success 200 {object} controllers.CancelSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/reservations/{id} [delete]
func (c *AdminController) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	d, err := c.Reservations.AdminDelete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CancelResult{ID: d.ID, Status: "deleted"})
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	"tablereservations/internal/delivery/http/controllers"
	"tablereservations/internal/delivery/http/middleware"
	"tablereservations/internal/domain"
	"tablereservations/internal/metrics"
)

// RouterDeps holds everything NewRouter wires into routes.
type RouterDeps struct {
	Logger             *slog.Logger
	Reservations       domain.ReservationService
	Admins             domain.AdminService
	Verifier           domain.TokenVerifier
	RateLimiter        *middleware.RateLimiter
	Gatherer           prometheus.Gatherer
	CORSAllowedOrigins []string
}

// NewRouter initializes the HTTP handler with all application routes and the middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	reservationController := controllers.NewReservationController(deps.Logger, deps.Reservations)
	adminController := controllers.NewAdminController(deps.Logger, deps.Admins, deps.Reservations)
	admin := middleware.RequireAdmin(deps.Verifier, deps.Logger)
	limit := func(next http.HandlerFunc) http.HandlerFunc { return next }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Limit
	}

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("POST /api/reservations", limit(reservationController.Book))
	mux.HandleFunc("GET /api/reservations/availability", limit(reservationController.Availability))
	mux.HandleFunc("GET /api/reservations/lookup", limit(reservationController.Lookup))
	mux.HandleFunc("DELETE /api/reservations/lookup", limit(reservationController.Cancel))

	// Admin
	mux.HandleFunc("POST /api/admin/login", limit(adminController.Login))
	mux.HandleFunc("GET /api/admin/reservations", admin(adminController.ListReservations))
	mux.HandleFunc("GET /api/admin/reservations/export", admin(adminController.ExportReservations))
	mux.HandleFunc("PUT /api/admin/reservations/{id}", admin(adminController.UpdateReservation))
	mux.HandleFunc("DELETE /api/admin/reservations/{id}", admin(adminController.DeleteReservation))

	// Ops
	mux.HandleFunc("GET /health", controllers.Health)
	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(deps.Gatherer))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(deps.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(deps.Logger, handler)
	handler = middleware.Recovery(deps.Logger, handler)
	return handler
}

package controllers

import (
	"net/http"

	"tablereservations/internal/delivery/http/helpers"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status string `json:"status" example:"ok"`
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthStatus{Status: "ok"})
}

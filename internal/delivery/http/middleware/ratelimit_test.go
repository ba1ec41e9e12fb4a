package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablereservations/internal/delivery/http/helpers"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRateLimiter_Limit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 60, Burst: 3, CleanupInterval: time.Minute}, discardLogger())
	defer rl.Stop()

	calls := 0
	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/reservations", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler(rr, req)
		return rr
	}

	for i := range 3 {
		require.Equal(t, http.StatusOK, do("10.0.0.1:5000").Code, "request %d", i)
	}

	// a new port on the same host shares the bucket
	rr := do("10.0.0.1:6000")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.NotNil(t, env.Error)
	assert.Equal(t, helpers.ErrCodeRateLimited, env.Error.Code)

	require.Equal(t, http.StatusOK, do("10.0.0.2:5000").Code)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 2, rl.ClientCount())
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 60, Burst: 1, CleanupInterval: time.Hour}, discardLogger())
	defer rl.Stop()

	rl.limiter("10.0.0.1")
	rl.limiter("10.0.0.2")
	require.Equal(t, 2, rl.ClientCount())

	rl.cleanup(time.Now())
	assert.Equal(t, 2, rl.ClientCount(), "recent clients are kept")

	rl.cleanup(time.Now().Add(3 * time.Hour))
	assert.Equal(t, 0, rl.ClientCount())

	rl.Stop()
}

package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablereservations/internal/domain"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var env APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
		known      bool
	}{
		{"validation names field", domain.NewValidationError("email", "invalid email format"), http.StatusBadRequest, ErrCodeBadRequest, "email: invalid email format", true},
		{"wrapped not found hides detail", fmt.Errorf("lookup: %w", domain.ErrNotFound), http.StatusNotFound, ErrCodeNotFound, MsgReservationNotFound, true},
		{"slot full", domain.ErrSlotFull, http.StatusConflict, ErrCodeSlotFull, domain.ErrSlotFull.Error(), true},
		{"table conflict", domain.ErrTableConflict, http.StatusConflict, ErrCodeTableConflict, domain.ErrTableConflict.Error(), true},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials", true},
		{"storage failure is generic", errors.New("pq: connection refused"), http.StatusInternalServerError, ErrCodeInternalError, "internal server error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			known := WriteDomainError(rr, tt.err)

			assert.Equal(t, tt.known, known)
			require.Equal(t, tt.wantStatus, rr.Code)
			env := decodeEnvelope(t, rr)
			require.NotNil(t, env.Error)
			assert.Nil(t, env.Data)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.Equal(t, tt.wantMsg, env.Error.Message)
		})
	}
}

type sampleRequest struct {
	Name string `json:"name"`
}

func (s sampleRequest) Validate() []string {
	if s.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
		msg    string
	}{
		{"valid", `{"name":"ada"}`, true, ""},
		{"unknown field", `{"name":"ada","admin":true}`, false, "unknown field"},
		{"malformed", `{"name":`, false, "invalid request body"},
		{"validation failure", `{}`, false, "name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest sampleRequest

			ok := DecodeAndValidate(rr, req, &dest)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
				env := decodeEnvelope(t, rr)
				assert.Contains(t, env.Error.Message, tt.msg)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  domain.PaginationParams
	}{
		{"", domain.PaginationParams{Page: 1, PageSize: DefaultPageSize}},
		{"page=3&page_size=10", domain.PaginationParams{Page: 3, PageSize: 10}},
		{"page=0&page_size=-1", domain.PaginationParams{Page: 1, PageSize: DefaultPageSize}},
		{"page=x&page_size=1000", domain.PaginationParams{Page: 1, PageSize: MaxPageSize}},
		{"page=2&page_size=abc", domain.PaginationParams{Page: 2, PageSize: DefaultPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(req))
		})
	}
	assert.Equal(t, PaginationMeta{Page: 3, PageSize: 20, Total: 41, TotalPages: 3},
		NewPaginationMeta(domain.PaginationParams{Page: 3, PageSize: 20}, 41))
	assert.Equal(t, 0, NewPaginationMeta(domain.PaginationParams{Page: 1}, 41).TotalPages)
}

package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"validation", aura.ErrInvalidAmount, http.StatusBadRequest, "InvalidAmount"},
		{"state", aura.ErrCannotStake, http.StatusBadRequest, "CannotStake"},
		{"insufficient", aura.ErrInsufficientAura, http.StatusBadRequest, "InsufficientAura"},
		{"conflict", aura.ErrAlreadyStaked, http.StatusConflict, "AlreadyStaked"},
		{"authorization", aura.ErrNotChatMember, http.StatusForbidden, "NotChatMember"},
		{"not found", aura.ErrBetNotFound, http.StatusNotFound, "BetNotFound"},
		{"wrapped", fmt.Errorf("placing stake: %w", aura.ErrContention), http.StatusConflict, "Contention"},
		{"unclassified", assert.AnError, http.StatusInternalServerError, "InternalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			Error(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body api.Error
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Error)
		})
	}
}

func TestCaller(t *testing.T) {
	rr := httptest.NewRecorder()

	_, ok := Caller(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

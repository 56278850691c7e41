package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pscheid92/swipedeck/internal/domain"
	apperrors "github.com/pscheid92/swipedeck/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleProfiles_Count(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{"default deck size", "", 12},
		{"explicit", "?count=3", 3},
		{"minimum", "?count=1", 1},
		{"maximum", "?count=50", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &stubProfiles{}
			srv, _ := newTestServer(t, withProfiles(source))

			rec := do(srv, http.MethodGet, "/api/profiles"+tt.query)

			require.Equal(t, http.StatusOK, rec.Code)
			var body profilesResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCount, body.Count)
			assert.Len(t, body.Profiles, tt.wantCount)
			assert.Equal(t, []int{tt.wantCount}, source.requested)
		})
	}
}

func TestHandleProfiles_InvalidCount(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{"zero", "?count=0", "invalid count"},
		{"negative", "?count=-1", "invalid count"},
		{"too large", "?count=51", "invalid count"},
		{"not a number", "?count=abc", "count must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &stubProfiles{}
			srv, _ := newTestServer(t, withProfiles(source))

			rec := do(srv, http.MethodGet, "/api/profiles"+tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, apperrors.TypeValidation, resp.Type)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.Empty(t, source.requested)
		})
	}
}

type emptySource struct{}

func (emptySource) Generate(int) []domain.Profile { return nil }

func TestHandleProfiles_EmptySourceIsInternalError(t *testing.T) {
	srv, _ := newTestServer(t, withProfiles(emptySource{}))

	rec := do(srv, http.MethodGet, "/api/profiles")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.TypeInternal, resp.Type)
}

func TestHandleProfiles_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.APIRate = 0.01
	cfg.APIBurst = 1
	srv, _ := newTestServer(t, withConfig(cfg))

	first := do(srv, http.MethodGet, "/api/profiles?count=1")
	second := do(srv, http.MethodGet, "/api/profiles?count=1")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestServer_WebSocketRouteDelegates(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(srv, http.MethodGet, "/ws")

	assert.Equal(t, http.StatusSwitchingProtocols, rec.Code)
}

func TestServer_MetricsRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	do(srv, http.MethodGet, "/api/profiles?count=2")

	rec := do(srv, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swipedeck_http_requests_total")
}

package httpserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/swipedeck/internal/adapter/metrics"
	"github.com/pscheid92/swipedeck/internal/domain"
	"github.com/pscheid92/swipedeck/internal/platform/config"
)

type stubProfiles struct {
	requested []int
}

func (s *stubProfiles) Generate(count int) []domain.Profile {
	s.requested = append(s.requested, count)
	out := make([]domain.Profile, count)
	for i := range out {
		out[i] = domain.Profile{ID: fmt.Sprintf("p%d", i), Name: "Sam", Age: 25}
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:    "test",
		Port:      "0",
		DeckSize:  12,
		APIRate:   100,
		APIBurst:  100,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

type serverOption func(*serverDeps)

type serverDeps struct {
	cfg          *config.Config
	clock        clockwork.Clock
	profiles     domain.ProfileSource
	ws           http.Handler
	registry     *prometheus.Registry
	healthChecks []HealthCheck
}

func withHealthChecks(checks ...HealthCheck) serverOption {
	return func(d *serverDeps) { d.healthChecks = checks }
}

func withProfiles(p domain.ProfileSource) serverOption {
	return func(d *serverDeps) { d.profiles = p }
}

func withConfig(cfg *config.Config) serverOption {
	return func(d *serverDeps) { d.cfg = cfg }
}

func withClock(clock clockwork.Clock) serverOption {
	return func(d *serverDeps) { d.clock = clock }
}

func newTestServer(t *testing.T, opts ...serverOption) (*Server, *prometheus.Registry) {
	t.Helper()
	d := &serverDeps{
		cfg:      testConfig(),
		clock:    clockwork.NewFakeClock(),
		profiles: &stubProfiles{},
		ws: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusSwitchingProtocols)
		}),
		registry: metrics.NewRegistry(),
	}
	for _, opt := range opts {
		opt(d)
	}

	srv := NewServer(d.cfg, d.clock, d.profiles, d.ws, metrics.Handler(d.registry), metrics.NewHTTPMetrics(d.registry), d.healthChecks)
	return srv, d.registry
}

func do(srv *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = testRemoteAddr
	srv.ServeHTTP(rec, req)
	return rec
}

package websocket

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCheckOrigin(t *testing.T) {
	appURL := "https://swipe.example.com/deck"

	tests := []struct {
		name          string
		appURL        string
		origin        string
		isDevelopment bool
		want          bool
	}{
		{"empty origin", appURL, "", false, true},
		{"app origin", appURL, "https://swipe.example.com", false, true},

		{"different host", appURL, "https://evil.com", false, false},
		{"different port", appURL, "https://swipe.example.com:9090", false, false},
		{"http instead of https", appURL, "http://swipe.example.com", false, false},
		{"subdomain", appURL, "https://cdn.swipe.example.com", false, false},
		{"no app url configured", "", "https://swipe.example.com", false, false},

		{"localhost dev", appURL, "http://localhost:8080", true, true},
		{"127.0.0.1 dev", appURL, "http://127.0.0.1:3000", true, true},
		{"ipv6 loopback dev", appURL, "http://[::1]:8080", true, true},
		{"localhost prod rejected", appURL, "http://localhost:8080", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewCheckOrigin(tt.appURL, tt.isDevelopment)
			r, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, checker(r))
		})
	}
}

func TestExtractOrigin(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
	}{
		{"full URL with path", "https://example.com/deck", "https://example.com"},
		{"URL with port", "https://example.com:8443/path", "https://example.com:8443"},
		{"empty string", "", ""},
		{"no host", "mailto:user@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractOrigin(tt.rawURL))
		})
	}
}

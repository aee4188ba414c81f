// Package auth guards the gateway with a shared client secret.
package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/platform/httpx"
)

// Header names carrying the caller credentials.
const (
	HeaderClientID     = "x-client-id"
	HeaderClientSecret = "x-client-secret"
)

// SharedSecret checks callers against one configured client id and secret.
type SharedSecret struct {
	ClientID     string
	ClientSecret string
	// Exempt paths skip the check.
	Exempt []string
	Logger *slog.Logger
}

// Enabled reports whether both values are configured. With either one
// missing the gateway runs open.
func (s SharedSecret) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// Verify reports whether the request carries the configured credentials.
func (s SharedSecret) Verify(r *http.Request) bool {
	if !s.Enabled() {
		return true
	}
	id := r.Header.Get(HeaderClientID)
	secret := r.Header.Get(HeaderClientSecret)
	idOK := subtle.ConstantTimeCompare([]byte(id), []byte(s.ClientID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(secret), []byte(s.ClientSecret)) == 1
	return idOK && secretOK
}

// Middleware rejects requests without valid credentials with 401.
func (s SharedSecret) Middleware(next http.Handler) http.Handler {
	if !s.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.exempt(r.URL.Path) || s.Verify(r) {
			next.ServeHTTP(w, r)
			return
		}
		if s.Logger != nil {
			s.Logger.Warn("rejected client credentials",
				slog.String("path", r.URL.Path),
				slog.Bool("client_id_present", r.Header.Get(HeaderClientID) != ""),
			)
		}
		httpx.RespondError(w, httpx.Unauthorized())
	})
}

func (s SharedSecret) exempt(path string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, p := range s.Exempt {
		if path == strings.TrimSuffix(p, "/") {
			return true
		}
	}
	return false
}

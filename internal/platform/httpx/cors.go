package httpx

import "net/http"

const (
	headerAllowOrigin  = "Access-Control-Allow-Origin"
	headerAllowMethods = "Access-Control-Allow-Methods"
	headerAllowHeaders = "Access-Control-Allow-Headers"

	allowOrigin  = "*"
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders = "Content-Type, x-client-id, x-client-secret"
)

// Preflight answers every OPTIONS request with 204 and the CORS headers
// before any routing, authentication or body processing happens.
func Preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := w.Header()
		h.Set(headerAllowOrigin, allowOrigin)
		h.Set(headerAllowMethods, allowMethods)
		h.Set(headerAllowHeaders, allowHeaders)
		w.WriteHeader(http.StatusNoContent)
	})
}

package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
)

// ErrUnauthorized is returned when the supplied admin secret is missing or wrong.
var ErrUnauthorized = errors.New("unauthorized")

// AdminPasswordHeader is the header alternative to the password query parameter.
const AdminPasswordHeader = "X-Admin-Password"

// AdminGate checks a caller-supplied secret against one configured value.
// There are no sessions or tokens: every admin call is checked again.
type AdminGate struct {
	secret []byte
}

// NewAdminGate creates a gate for the given shared secret.
func NewAdminGate(secret string) *AdminGate {
	return &AdminGate{secret: []byte(secret)}
}

// Check returns ErrUnauthorized unless supplied matches the configured secret exactly.
func (g *AdminGate) Check(supplied string) error {
	if supplied == "" || len(g.secret) == 0 {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(supplied), g.secret) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Require rejects requests without the admin secret with 401 before next runs.
func (g *AdminGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Check(SecretFromRequest(r)); err != nil {
			WriteUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SecretFromRequest reads the admin secret from the password query
// parameter, falling back to the X-Admin-Password header.
func SecretFromRequest(r *http.Request) string {
	if p := r.URL.Query().Get("password"); p != "" {
		return p
	}
	return r.Header.Get(AdminPasswordHeader)
}

// WriteUnauthorized answers a rejected admin request.
func WriteUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

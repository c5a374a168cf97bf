package api

import (
	"crypto/subtle"
	"net/http"

	"storecrew/internal/config"
)

// BasicAuth protects the admin endpoints with a single credential pair.
// Both comparisons run in constant time and failures are indistinguishable,
// so probing cannot tell a wrong username from a wrong password.
type BasicAuth struct {
	username string
	password string
}

func NewBasicAuth(cfg config.AdminConfig) *BasicAuth {
	return &BasicAuth{username: cfg.Username, password: cfg.Password}
}

func (a *BasicAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !a.valid(username, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="storecrew admin"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *BasicAuth) valid(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

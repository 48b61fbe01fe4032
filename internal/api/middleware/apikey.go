package middleware

import (
	"net/http"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/advisorly/review-engine-backend/internal/api/response"
)

// tokenTTL bounds how long an issued API token stays valid.
const tokenTTL = 24 * time.Hour

// APIKey returns a middleware that requires a valid fernet token in the
// X-API-Key header, verified against the configured key. An empty key
// disables the check entirely. A configured key that does not decode
// rejects every request rather than letting a typo open the endpoints.
func APIKey(key string) func(http.Handler) http.Handler {
	var keys []*fernet.Key
	var malformed bool
	if key != "" {
		k, err := fernet.DecodeKey(key)
		if err != nil {
			malformed = true
		} else {
			keys = []*fernet.Key{k}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if malformed {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "API key misconfigured")
				return
			}

			if keys == nil {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-API-Key")
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
				return
			}

			if msg := fernet.VerifyAndDecrypt([]byte(token), tokenTTL, keys); msg == nil {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fernet/fernet-go"

	"github.com/advisorly/review-engine-backend/internal/api/middleware"
)

func generateKey(t *testing.T) *fernet.Key {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate fernet key: %v", err)
	}
	return &key
}

// TestAPIKey tests the API-key middleware.
//
// WHY: The report endpoints are internal-only; a request without a valid
// token must be rejected before any handler runs, while an unset key keeps
// the middleware out of the way for local development.
func TestAPIKey(t *testing.T) {
	okHandler := func(called *bool) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			*called = true
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("rejects request without API key", func(t *testing.T) {
		key := generateKey(t)
		handlerCalled := false
		mw := middleware.APIKey(key.Encode())(okHandler(&handlerCalled))

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected request not to reach the handler")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}

		var response map[string]string
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response["details"] != "Missing API key" {
			t.Errorf("Expected 'Missing API key', got '%s'", response["details"])
		}
	})

	t.Run("rejects request with invalid token", func(t *testing.T) {
		key := generateKey(t)
		handlerCalled := false
		mw := middleware.APIKey(key.Encode())(okHandler(&handlerCalled))

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("X-API-Key", "not-a-fernet-token")
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected request not to reach the handler")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("rejects token signed with a different key", func(t *testing.T) {
		key := generateKey(t)
		other := generateKey(t)

		token, err := fernet.EncryptAndSign([]byte("internal"), other)
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}

		handlerCalled := false
		mw := middleware.APIKey(key.Encode())(okHandler(&handlerCalled))

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("X-API-Key", string(token))
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected request not to reach the handler")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("accepts a valid token", func(t *testing.T) {
		key := generateKey(t)

		token, err := fernet.EncryptAndSign([]byte("internal"), key)
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}

		handlerCalled := false
		mw := middleware.APIKey(key.Encode())(okHandler(&handlerCalled))

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("X-API-Key", string(token))
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if !handlerCalled {
			t.Error("Expected request to reach the handler")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("malformed configured key rejects every request", func(t *testing.T) {
		handlerCalled := false
		mw := middleware.APIKey("not-a-valid-fernet-key")(okHandler(&handlerCalled))

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if handlerCalled {
			t.Error("Expected request not to reach the handler with a broken key")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}

		var response map[string]string
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response["details"] != "API key misconfigured" {
			t.Errorf("Expected 'API key misconfigured', got '%s'", response["details"])
		}
	})

	t.Run("empty key disables the check", func(t *testing.T) {
		handlerCalled := false
		mw := middleware.APIKey("")(okHandler(&handlerCalled))

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if !handlerCalled {
			t.Error("Expected request to reach the handler with auth disabled")
		}
	})
}

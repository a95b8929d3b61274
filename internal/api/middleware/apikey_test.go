package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAllowsValidKey(t *testing.T) {
	h := APIKey("X-API-Key", "secret")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calls", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyRejectsWrongOrMissingKey(t *testing.T) {
	h := APIKey("X-API-Key", "secret")(okHandler())

	for _, key := range []string{"", "wrong", "Secret"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calls", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "key %q", key)
	}
}

func TestAPIKeyEmptyConfigDisablesCheck(t *testing.T) {
	h := APIKey("X-API-Key", "")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calls", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTwilioSignatureDisabledPassesThrough(t *testing.T) {
	h := TwilioSignature("token", "https://host.test", false)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/voice/intro", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTwilioSignatureRejectsUnsigned(t *testing.T) {
	h := TwilioSignature("token", "https://host.test", true)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/voice/intro", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

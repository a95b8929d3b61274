package middleware

import (
	"log/slog"
	"net/http"

	twilioclient "github.com/twilio/twilio-go/client"
)

// TwilioSignature rejects webhook posts that don't carry a valid
// X-Twilio-Signature for this service's public URL. enabled=false skips the
// check for local testing.
func TwilioSignature(authToken, publicBaseURL string, enabled bool) func(http.Handler) http.Handler {
	validator := twilioclient.NewRequestValidator(authToken)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			if err := r.ParseForm(); err != nil {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			params := make(map[string]string, len(r.PostForm))
			for k, v := range r.PostForm {
				if len(v) > 0 {
					params[k] = v[0]
				}
			}

			url := publicBaseURL + r.URL.RequestURI()
			if !validator.Validate(url, params, r.Header.Get("X-Twilio-Signature")) {
				slog.Warn("rejected webhook with bad signature", "path", r.URL.Path)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

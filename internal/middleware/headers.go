package middleware

import (
	"net/http"
	"strings"
)

// Values of the Server and Via headers added to every response.
const (
	ServerName = "apichallenges"
	ViaValue   = "1.1 apichallenges"
)

// WithMandatoryHeaders sets the headers every response must carry:
// Connection, Content-Type (JSON unless the handler overrides it),
// X-CHALLENGER (echoed from the request), Server and Via. Date is added by
// net/http.
func WithMandatoryHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Server", ServerName)
		h.Set("Via", ViaValue)
		h.Set("Content-Type", "application/json")
		if strings.EqualFold(r.Header.Get("Connection"), "close") {
			h.Set("Connection", "close")
		} else {
			h.Set("Connection", "keep-alive")
		}
		if token := r.Header.Get(ChallengerHeader); token != "" {
			h.Set(ChallengerHeader, token)
		}
		next.ServeHTTP(w, r)
	})
}

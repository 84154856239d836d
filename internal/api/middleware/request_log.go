package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/slotswap-api/internal/redact"
)

// NewRequestLogger returns chi's access logger writing to out, with the
// access_token query parameter masked before the request line is formatted.
func NewRequestLogger(out chimw.LoggerInterface) func(http.Handler) http.Handler {
	return chimw.RequestLogger(&tokenScrubbingFormatter{
		next: &chimw.DefaultLogFormatter{Logger: out, NoColor: true},
	})
}

type tokenScrubbingFormatter struct {
	next chimw.LogFormatter
}

// NewLogEntry implements chimw.LogFormatter. The request handed to the
// wrapped formatter is a copy; the original still carries the token.
func (f *tokenScrubbingFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	query := r.URL.Query()
	if !query.Has(AccessTokenQueryParam) {
		return f.next.NewLogEntry(r)
	}

	query.Set(AccessTokenQueryParam, redact.RedactedJWTPlaceholder)
	scrubbed := r.Clone(r.Context())
	scrubbed.URL.RawQuery = query.Encode()
	scrubbed.RequestURI = scrubbed.URL.RequestURI()
	return f.next.NewLogEntry(scrubbed)
}

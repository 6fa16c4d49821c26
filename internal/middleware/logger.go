package middleware

import (
	"io"
	"log"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// redacted replaces secret query values in access log lines.
const redacted = "REDACTED"

// secretQueryParams may carry credentials. Websocket clients pass the bearer
// token as ?token= on the upgrade request.
var secretQueryParams = []string{"token"}

// AccessLogger is chi's request logger with credentials removed from the
// logged request URI. Handlers still see the original request.
func AccessLogger(out io.Writer) func(http.Handler) http.Handler {
	return chimw.RequestLogger(&redactingFormatter{
		next: &chimw.DefaultLogFormatter{Logger: log.New(out, "", log.LstdFlags), NoColor: true},
	})
}

type redactingFormatter struct {
	next chimw.LogFormatter
}

func (f *redactingFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	return f.next.NewLogEntry(redactQuery(r))
}

// redactQuery returns a shallow copy of r whose URL hides secret query values.
func redactQuery(r *http.Request) *http.Request {
	query := r.URL.Query()
	found := false
	for _, key := range secretQueryParams {
		if query.Has(key) {
			query.Set(key, redacted)
			found = true
		}
	}
	if !found {
		return r
	}

	u := *r.URL
	u.RawQuery = query.Encode()
	clone := r.WithContext(r.Context())
	clone.URL = &u
	clone.RequestURI = u.RequestURI()
	return clone
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/terraconstructs/skillshare/internal/telemetry"
)

// Metrics records request count, latency and in-flight requests. The route
// attribute is the matched chi pattern, so ids do not explode cardinality.
func Metrics(m *telemetry.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			m.RequestStarted(ctx)
			defer m.RequestFinished(ctx)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := float64(time.Since(start).Microseconds()) / 1000
			m.RecordRequest(ctx, r.Method, route, strconv.Itoa(status), elapsed)
		})
	}
}

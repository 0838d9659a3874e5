package middlewares

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/authbridge/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// WithMetrics instrumenta requests HTTP (contadores, latencia, inflight).
// Usa el route pattern de chi cuando existe; si no, el path normalizado.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			inflightLabel := metrics.NormalizePath(r.URL.Path)

			metrics.HTTPInflight.WithLabelValues(method, inflightLabel).Inc()
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				metrics.HTTPInflight.WithLabelValues(method, inflightLabel).Dec()

				pathLabel := inflightLabel
				if rc := chi.RouteContext(r.Context()); rc != nil {
					if p := rc.RoutePattern(); p != "" {
						pathLabel = p
					}
				}
				metrics.HTTPDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())
				metrics.HTTPRequests.WithLabelValues(method, pathLabel, strconv.Itoa(rec.status)).Inc()
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

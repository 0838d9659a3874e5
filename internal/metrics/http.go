package metrics

import (
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo por método y ruta",
	}, []string{"method", "path"})
)

// RegisterHTTP registers the HTTP metrics on reg (default registerer if nil).
func RegisterHTTP(reg prometheus.Registerer) error {
	return register(reg, HTTPRequests, HTTPDuration, HTTPInflight)
}

var (
	reOpaque = regexp.MustCompile(`^[A-Za-z0-9_\-\.]{24,}$`)
	reDigits = regexp.MustCompile(`^[0-9]+$`)
)

// NormalizePath colapsa segmentos de alta cardinalidad para las labels.
// Los providers se mantienen (son pocos y conocidos).
func NormalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segs {
		switch {
		case reDigits.MatchString(s):
			segs[i] = ":n"
		case reOpaque.MatchString(s):
			segs[i] = ":id"
		}
	}
	return "/" + strings.Join(segs, "/")
}

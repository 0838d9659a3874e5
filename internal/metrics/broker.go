package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Broker metrics. Standalone package so broker, signon and http can all
// record without import cycles.

var (
	FlowTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authbridge_flow_transitions_total",
		Help: "Transiciones del flujo de autorización por provider y fase",
	}, []string{"provider", "phase"})

	Redemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authbridge_redemptions_total",
		Help: "Canjes de resource codes por provider y resultado",
	}, []string{"provider", "result"}) // ok|not_found|expired

	SignOns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authbridge_signon_total",
		Help: "Intentos de custom sign-on por método y resultado",
	}, []string{"method", "result"}) // ok|rejected|error

	TokensIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authbridge_tokens_issued_total",
		Help: "Identity tokens emitidos por origen",
	}, []string{"source"}) // signon|api|cli

	UpstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "authbridge_upstream_duration_seconds",
		Help:    "Latencia de las llamadas al provider (exchange + profile)",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "result"})

	StoreEvictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authbridge_store_evictions_total",
		Help: "Entradas vencidas barridas por el janitor, por tabla",
	}, []string{"store"})
)

// RegisterBroker registers the broker metrics on reg (default registerer if nil).
func RegisterBroker(reg prometheus.Registerer) error {
	return register(reg,
		FlowTransitions,
		Redemptions,
		SignOns,
		TokensIssued,
		UpstreamLatency,
		StoreEvictions,
	)
}

func register(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

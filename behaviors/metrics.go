package behaviors

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Metrics records a counter and a latency histogram per request type.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ cmed.Behavior = (*Metrics)(nil)

// NewMetrics registers the mediator collectors with reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests sent through the mediator by outcome.",
		}, []string{"request", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent in the behavior chain and handler.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"request"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register mediator metrics: %w", err)
		}
	}

	return m, nil
}

func (m *Metrics) Handle(ctx context.Context, call *cmed.Call, next cmed.Next[any]) (any, error) {
	start := time.Now()
	v, err := next(ctx)

	m.duration.WithLabelValues(call.RequestType).Observe(time.Since(start).Seconds())
	m.requests.WithLabelValues(call.RequestType, outcome(v, err)).Inc()

	return v, err
}

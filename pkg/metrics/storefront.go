package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// StorefrontMetrics records cart, checkout and upstream API activity.
type StorefrontMetrics struct {
	cartMutations    *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	submitDuration   prometheus.Histogram
	upstreamRequests *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	submitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Duration of order submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	upstreamRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_requests_total",
		Help: "Calls to the storefront REST API by operation and outcome.",
	}, []string{"operation", "outcome"})
	breakerState := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storefront_api_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, []string{"breaker"})
	reg.MustRegister(cartMutations, submissions, submitDuration, upstreamRequests, breakerState)
	return &StorefrontMetrics{
		cartMutations:    cartMutations,
		submissions:      submissions,
		submitDuration:   submitDuration,
		upstreamRequests: upstreamRequests,
		breakerState:     breakerState,
	}
}

// IncCartMutation counts one cart mutation of the given kind.
func (m *StorefrontMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveSubmission records the outcome and latency of one order submission.
func (m *StorefrontMetrics) ObserveSubmission(success bool, duration time.Duration) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(outcome(success)).Inc()
	m.submitDuration.Observe(duration.Seconds())
}

// IncUpstream counts a storefront API call.
func (m *StorefrontMetrics) IncUpstream(operation string, success bool) {
	if m == nil || m.upstreamRequests == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(normalizeLabel(operation), outcome(success)).Inc()
}

// SetBreakerState publishes the numeric breaker state.
func (m *StorefrontMetrics) SetBreakerState(breaker string, state int) {
	if m == nil || m.breakerState == nil {
		return
	}
	m.breakerState.WithLabelValues(normalizeLabel(breaker)).Set(float64(state))
}

func outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

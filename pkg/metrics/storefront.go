package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records upstream traffic and shopper-facing flow outcomes.
type Storefront struct {
	upstreamDuration *prometheus.HistogramVec
	upstreamStatus   *prometheus.CounterVec
	checkout         *prometheus.CounterVec
	paymentResult    *prometheus.CounterVec
	chatSend         *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of requests proxied to backend services.",
		Buckets: prometheus.DefBuckets,
	}, []string{"upstream", "method"})
	upstreamStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_responses_total",
		Help: "Backend responses by status code; status 0 means no response was received.",
	}, []string{"upstream", "status"})
	checkout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by payment method and outcome.",
	}, []string{"method", "outcome"})
	paymentResult := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_results_total",
		Help: "Payment result page resolutions by state.",
	}, []string{"state"})
	chatSend := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Chat messages sent to the assistant by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(upstreamDuration, upstreamStatus, checkout, paymentResult, chatSend)
	return &Storefront{
		upstreamDuration: upstreamDuration,
		upstreamStatus:   upstreamStatus,
		checkout:         checkout,
		paymentResult:    paymentResult,
		chatSend:         chatSend,
	}
}

// ObserveUpstream records one backend round trip.
func (s *Storefront) ObserveUpstream(upstream, method string, status int, duration time.Duration) {
	if s == nil || s.upstreamDuration == nil {
		return
	}
	upstream = normalizeLabel(upstream)
	s.upstreamDuration.WithLabelValues(upstream, normalizeLabel(method)).Observe(duration.Seconds())
	s.upstreamStatus.WithLabelValues(upstream, strconv.Itoa(status)).Inc()
}

// IncCheckout counts a checkout submission outcome.
func (s *Storefront) IncCheckout(method, outcome string) {
	if s == nil || s.checkout == nil {
		return
	}
	s.checkout.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncPaymentResult counts a payment result resolution.
func (s *Storefront) IncPaymentResult(state string) {
	if s == nil || s.paymentResult == nil {
		return
	}
	s.paymentResult.WithLabelValues(normalizeLabel(state)).Inc()
}

// IncChatSend counts a chat send outcome.
func (s *Storefront) IncChatSend(outcome string) {
	if s == nil || s.chatSend == nil {
		return
	}
	s.chatSend.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

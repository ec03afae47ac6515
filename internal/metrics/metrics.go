// Package metrics provides Prometheus instrumentation for the session engine.
//
// Collectors are registered with the default registry at init time and exposed
// by Handler at GET /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ── Onboarding ────────────────────────────────────────────────────────────────

// OnboardingTransitions counts gate state changes.
var OnboardingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dishuflix_onboarding_transitions_total",
	Help: "Onboarding gate transitions by source and target state.",
}, []string{"from", "to"})

// InviteRejections counts rejected invite input by reason (invalid_char, mismatch).
var InviteRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dishuflix_invite_rejections_total",
	Help: "Rejected invite code input.",
}, []string{"reason"})

// PaymentOutcomes counts outcomes reported by the payment surface.
var PaymentOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dishuflix_payment_outcomes_total",
	Help: "Payment outcomes by provider and result.",
}, []string{"provider", "outcome"})

// ── User state ────────────────────────────────────────────────────────────────

// StorageErrors counts failed durable reads and writes by slot.
var StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dishuflix_storage_errors_total",
	Help: "Durable storage failures by slot and operation.",
}, []string{"slot", "op"})

// Intents counts presentation intents handled by the orchestrator.
var Intents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dishuflix_intents_total",
	Help: "Presentation intents by kind.",
}, []string{"intent"})

// ── Search ────────────────────────────────────────────────────────────────────

// SearchRecomputes counts debounced suggestion recomputes that were applied.
var SearchRecomputes = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dishuflix_search_recomputes_total",
	Help: "Suggestion recomputes applied.",
})

// SearchSuperseded counts debounced recomputes dropped because a newer query arrived.
var SearchSuperseded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dishuflix_search_superseded_total",
	Help: "Suggestion recomputes cancelled or discarded as stale.",
})

// SearchCacheHits counts suggestion lookups served from the memo cache.
var SearchCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dishuflix_search_cache_hits_total",
	Help: "Suggestion lookups served from cache.",
})

// ── HTTP ──────────────────────────────────────────────────────────────────────

// HTTPRequests counts HTTP requests by method, route and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dishuflix_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks HTTP request latency.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dishuflix_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

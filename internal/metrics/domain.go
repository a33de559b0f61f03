package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Matching and vibe collectors. They are safe to use before Register is called;
// unregistered collectors simply are not exported.
var (
	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_requests_total",
			Help:      "Matching runs by outcome",
		},
		[]string{"status"}, // "ok" / "error"
	)

	MatchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_candidates",
			Help:      "Number of catalog properties scored per matching run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	MatchPersistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_persist_failures_total",
			Help:      "Top-N match results that failed to persist",
		},
	)

	VibeGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vibe_generations_total",
			Help:      "LLM vibe score generations by outcome",
		},
		[]string{"status"},
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_total",
			Help:      "Cache lookups by cache and result",
		},
		[]string{"cache", "result"}, // result: "hit" / "miss" / "error"
	)
)

var registerOnce sync.Once

// Register registers every collector with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			MatchRequestsTotal,
			MatchCandidates,
			MatchPersistFailuresTotal,
			VibeGenerationsTotal,
			CacheTotal,
		)
	})
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debug_http_requests_total",
			Help: "Total number of requests to the local debug server",
		},
		[]string{"route", "method", "code"},
	)

	StoriesPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stories_published_total",
			Help: "Total number of stories published from this client",
		},
	)

	StoriesViewedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stories_viewed_total",
			Help: "Total number of stories marked viewed by this client",
		},
	)

	ReactionsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reactions_sent_total",
			Help: "Total number of reactions sent",
		},
	)

	UploadFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upload_failures_total",
			Help: "Total number of failed media uploads",
		},
	)

	AdvanceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_advance_total",
			Help: "Total number of player navigation transitions",
		},
		[]string{"direction"},
	)

	EffectsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effects_failed_total",
			Help: "Total number of side effects dropped after retries",
		},
		[]string{"kind"},
	)

	EffectLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "effect_latency_seconds",
			Help:    "Side effect dispatch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

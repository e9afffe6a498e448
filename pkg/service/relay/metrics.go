package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "counsellor",
		Subsystem: "chat",
		Name:      "sessions_total",
		Help:      "Number of chat sessions by terminal status.",
	}, []string{"status"})

	sessionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "counsellor",
		Subsystem: "chat",
		Name:      "session_duration_seconds",
		Help:      "Duration of chat sessions by terminal status.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"status"})

	fragmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "counsellor",
		Subsystem: "chat",
		Name:      "fragments_forwarded_total",
		Help:      "Number of fragments written to clients.",
	})

	persistFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "counsellor",
		Subsystem: "chat",
		Name:      "persist_failures_total",
		Help:      "Number of failed chat history writes by phase (snapshot or final).",
	}, []string{"phase"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "counsellor",
		Subsystem: "chat",
		Name:      "upstream_errors_total",
		Help:      "Number of upstream failures by class.",
	}, []string{"class"})
)

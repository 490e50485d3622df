package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolveTotal считает вычисления набора по результату: ok, invisible, unavailable
	ResolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "review_submit_resolve_total",
		Help: "Total number of submission set resolutions by outcome",
	}, []string{"outcome"})

	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "review_submit_resolve_duration_seconds",
		Help:    "Duration of submission set resolution",
		Buckets: prometheus.DefBuckets,
	})

	ResolveIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "review_submit_resolve_iterations",
		Help:    "Number of frontier iterations per resolution",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})

	SubmissionSetSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "review_submit_set_size",
		Help:    "Number of required changes in a resolved submission set",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})

	// SubmitTotal считает вызовы Submit по результату
	SubmitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "review_submit_submit_total",
		Help: "Total number of submit operations by outcome",
	}, []string{"outcome"})

	CrossProjectSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "review_submit_cross_project_total",
		Help: "Submissions that span more than one project",
	})
)

const (
	OutcomeOK          = "ok"
	OutcomeInvisible   = "invisible"
	OutcomeUnavailable = "unavailable"
	OutcomeClosed      = "closed"
	OutcomeError       = "error"
)

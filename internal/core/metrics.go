package core

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agenthands/factcheck/internal/provider"
)

var (
	pairsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factcheck_pairs_total",
		Help: "Evaluated paragraph pairs by classification",
	}, []string{"classification"})

	pairDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "factcheck_pair_duration_seconds",
		Help:    "Time spent per evaluation stage",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"stage"})

	providerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factcheck_provider_errors_total",
		Help: "Failed provider calls by provider",
	}, []string{"provider"})
)

func observeProviderError(err error) {
	var ue *provider.UnavailableError
	if errors.As(err, &ue) {
		providerErrors.WithLabelValues(ue.Provider).Inc()
		return
	}
	providerErrors.WithLabelValues("unknown").Inc()
}

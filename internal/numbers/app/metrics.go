package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "virtnum",
			Name:      "purchases_total",
			Help:      "Total number purchase attempts.",
		},
		[]string{"result"}, // "success", "insufficient_funds", "unknown_offer", "provider_unavailable", "error"
	)

	numbersExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "virtnum",
			Name:      "numbers_expired_total",
			Help:      "Total numbers transitioned to expired by the sweeper.",
		},
	)

	providerRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "virtnum",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of provider client calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"}, // "list_catalog", "order"
	)
)

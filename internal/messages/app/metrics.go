package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var inboundMessagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "virtnum",
		Name:      "inbound_messages_total",
		Help:      "Inbound SMS events by outcome.",
	},
	[]string{"outcome"}, // "received", "stored", "malformed", "unknown_order", "error"
)

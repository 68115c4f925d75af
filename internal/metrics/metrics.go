// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled API requests by route and status class.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatrelay_requests_total",
		Help: "API requests handled, by route and HTTP status.",
	}, []string{"route", "status"})

	// RelayCallsTotal counts outbound relay calls by outcome.
	RelayCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatrelay_relay_calls_total",
		Help: "Outbound bot relay calls, by outcome (ok, error).",
	}, []string{"outcome"})
)

// Package metrics exposes prometheus counters for the bridge. Exposition
// (an HTTP /metrics handler) is left to the embedding application; the
// counters register on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokenRefresh counts credential refresh attempts by result
	// ("success" or "failure").
	TokenRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adkbridge_token_refresh_total",
		Help: "Credential refresh attempts by result",
	}, []string{"result"})

	// DiscardedLines counts stream lines dropped because they did not
	// parse as JSON fragments.
	DiscardedLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adkbridge_stream_discarded_lines_total",
		Help: "Stream lines discarded as unparseable",
	})

	// Queries counts completed reasoning engine queries by verdict.
	Queries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adkbridge_queries_total",
		Help: "Completed queries by verdict",
	}, []string{"verdict"})
)

// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package metrics declares the prometheus collectors shared by the proxy and the dashboard
// pollers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cyberdash"

var (
	// ProxyRequests counts handled proxy requests by endpoint and response status code.
	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Total number of proxy requests",
		},
		[]string{"endpoint", "code"},
	)

	// ProxyRequestDuration measures the time spent serving a proxy request.
	ProxyRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "request_duration_seconds",
			Help:      "Duration of proxy requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// ProxyCacheResults counts response cache lookups by endpoint and result (hit, miss).
	ProxyCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "cache_results_total",
			Help:      "Total number of response cache lookups",
		},
		[]string{"endpoint", "result"},
	)

	// UpstreamFailures counts failed upstream calls by upstream name.
	UpstreamFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "upstream_failures_total",
			Help:      "Total number of failed upstream calls",
		},
		[]string{"upstream"},
	)

	// PollerFetches counts completed widget fetches by category and outcome (success, error).
	PollerFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "fetches_total",
			Help:      "Total number of completed widget fetches",
		},
		[]string{"category", "outcome"},
	)

	// PollerDiscarded counts fetch results dropped because the poller was deactivated.
	PollerDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "discarded_total",
			Help:      "Total number of stale fetch results discarded after deactivation",
		},
		[]string{"category"},
	)

	// PollerFetchDuration measures how long a widget fetch took.
	PollerFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of widget fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"category"},
	)
)

// Package metrics defines the prometheus counters shared across the
// pipeline and the bot. They are registered on the default registry and
// exposed by the HTTP server at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesCrawled counts pages collected by the crawler, including
	// failed fetches (they occupy a crawl slot).
	PagesCrawled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iitubot_pages_crawled_total",
		Help: "Pages collected during crawls, including failed fetches.",
	})

	// CrawlErrors counts per-page fetch or parse failures.
	CrawlErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iitubot_crawl_errors_total",
		Help: "Per-page crawl failures recorded in page records.",
	})

	// SearchFailures distinguishes knowledge-store infrastructure failures
	// from genuine retrieval misses; the external contract stays
	// degrade-to-empty either way.
	SearchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iitubot_search_failures_total",
		Help: "Knowledge store searches that failed and degraded to empty.",
	})

	// Answers counts replies by path taken through the retrieval gate.
	Answers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iitubot_answers_total",
		Help: "Answers produced, labelled by gate outcome.",
	}, []string{"source"})

	// EnhancerFallbacks counts enhancement calls that degraded to the
	// original text.
	EnhancerFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iitubot_enhancer_fallbacks_total",
		Help: "Enhancement calls that failed and returned raw text.",
	})

	// Refinements counts accepted query refinement attempts.
	Refinements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iitubot_refinements_total",
		Help: "Query refinement attempts accepted within the retry budget.",
	})
)

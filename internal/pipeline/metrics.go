package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pagesFetched tracks match pages successfully retrieved.
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facrcrawl_pages_fetched_total",
		Help: "The total number of match pages successfully fetched.",
	})
	// fetchErrors tracks fetches that failed after retries.
	fetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facrcrawl_fetch_errors_total",
		Help: "The total number of match pages that could not be fetched.",
	})
	// parseErrors tracks pages that yielded no usable match.
	parseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facrcrawl_parse_errors_total",
		Help: "The total number of unusable match pages.",
	})
	// parseWarnings tracks degraded extractions on committed matches.
	parseWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facrcrawl_parse_warnings_total",
		Help: "The total number of partial-parse warnings.",
	})
	// matchesCommitted tracks matches written to the store.
	matchesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facrcrawl_matches_committed_total",
		Help: "The total number of matches committed to the database.",
	})
	// commitErrors tracks per-match transaction failures.
	commitErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facrcrawl_commit_errors_total",
		Help: "The total number of failed match commits.",
	})
)

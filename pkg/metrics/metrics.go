// Package metrics provides Prometheus metrics for the ingestion pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Custom registry to avoid the default Go runtime collectors.
var registry = prometheus.NewRegistry()

var (
	jobsStarted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "rankpipe", Subsystem: "ingest",
		Name: "jobs_started_total", Help: "Ingestion jobs accepted.",
	})
	jobsSucceeded = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "rankpipe", Subsystem: "ingest",
		Name: "jobs_succeeded_total", Help: "Ingestion jobs completed successfully.",
	})
	jobsFailed = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "rankpipe", Subsystem: "ingest",
		Name: "jobs_failed_total", Help: "Ingestion jobs that failed.",
	})
	duplicateGames = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "rankpipe", Subsystem: "ingest",
		Name: "duplicate_games_total", Help: "Games skipped by the signature dedup check.",
	})
	linesParsed = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "rankpipe", Subsystem: "parser",
		Name: "lines_total", Help: "Log lines seen by the parser.",
	})
	linesSkipped = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "rankpipe", Subsystem: "parser",
		Name: "lines_skipped_total", Help: "Malformed or unrecognized log lines.",
	})
	anomalousDamage = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "rankpipe", Subsystem: "tracker",
		Name: "anomalous_damage_total", Help: "Attack events with clamped damage.",
	})
	identityFallbacks = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "rankpipe", Subsystem: "identity",
		Name: "fallback_matches_total", Help: "Low-confidence nickname-prefix identity matches.",
	})
	queueDepth = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "rankpipe", Subsystem: "ingest",
		Name: "queue_depth", Help: "Jobs waiting for a worker.",
	})
)

func RecordJobStarted() { jobsStarted.Inc() }

func RecordJobSucceeded() { jobsSucceeded.Inc() }

func RecordJobFailed() { jobsFailed.Inc() }

func RecordDuplicateGame() { duplicateGames.Inc() }

func RecordLines(total, skipped int) {
	linesParsed.Add(float64(total))
	linesSkipped.Add(float64(skipped))
}

func RecordAnomalousDamage(n int) { anomalousDamage.Add(float64(n)) }

func RecordIdentityFallbacks(n int) { identityFallbacks.Add(float64(n)) }

func UpdateQueueDepth(n int) { queueDepth.Set(float64(n)) }

// Handler serves the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

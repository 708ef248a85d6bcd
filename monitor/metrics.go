// Package monitor exposes Prometheus metrics for the generation pipeline
// and the HTTP surface.
package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scriptgen",
		Name:      "generations_total",
		Help:      "Generation attempts by data source and outcome (success or failed stage).",
	}, []string{"source", "outcome"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scriptgen",
		Name:      "generation_duration_seconds",
		Help:      "End-to-end generation latency.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"source"})

	promptTokens = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scriptgen",
		Name:      "prompt_tokens",
		Help:      "Estimated prompt token counts per generation.",
		Buckets:   prometheus.ExponentialBuckets(128, 2, 8),
	})

	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scriptgen",
		Name:      "uploads_total",
		Help:      "Accepted template and spreadsheet uploads.",
	})
)

// ObserveGeneration records one finished generation attempt. outcome is
// "success" or the failed stage name.
func ObserveGeneration(source, outcome string, elapsed time.Duration) {
	generationsTotal.WithLabelValues(source, outcome).Inc()
	generationDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObservePromptTokens records the estimated size of an assembled prompt.
func ObservePromptTokens(n int) {
	promptTokens.Observe(float64(n))
}

// CountUpload records one accepted upload.
func CountUpload() {
	uploadsTotal.Inc()
}

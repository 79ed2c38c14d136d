// Package metrics declares the Prometheus counters exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssistantOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onepage_assistant_outcomes_total",
			Help: "Assistant turns by path taken (completed, or the fallback reason)",
		},
		[]string{"outcome"},
	)

	IntentsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onepage_intents_executed_total",
			Help: "Offline copywriter intents executed",
		},
		[]string{"intent"},
	)

	PatchesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onepage_patches_total",
			Help: "Patch batches applied to documents by result",
		},
		[]string{"result"},
	)

	Renders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onepage_renders_total",
			Help: "Documents rendered by layout",
		},
		[]string{"layout"},
	)

	Compositions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onepage_compositions_total",
			Help: "Image compositions by frame and result",
		},
		[]string{"frame", "result"},
	)

	CompositionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "onepage_composition_duration_seconds",
			Help:    "Time spent compositing an image, excluding the settle delay",
			Buckets: prometheus.DefBuckets,
		},
	)

	ProjectSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onepage_project_saves_total",
			Help: "Project save attempts by result",
		},
		[]string{"result"},
	)
)

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

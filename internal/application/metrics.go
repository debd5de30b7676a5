package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("notegraph/mirror")

var (
	syncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notegraph",
		Name:      "sync_total",
		Help:      "Mirror sync attempts by outcome",
	}, []string{"outcome"})

	syncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "notegraph",
		Name:      "sync_duration_seconds",
		Help:      "Wall time of mirror sync attempts",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	rowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notegraph",
		Name:      "mirror_rows_written_total",
		Help:      "Rows written to the mirror store by kind",
	}, []string{"kind"})

	annotationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "notegraph",
		Name:      "mirror_annotation_failures_total",
		Help:      "Failures while recording a sync error in the mirror state",
	})

	traversalTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notegraph",
		Name:      "traversal_total",
		Help:      "Completed traversals by truncation",
	}, []string{"truncated"})

	traversalNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "notegraph",
		Name:      "traversal_nodes",
		Help:      "Nodes returned per traversal",
		Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160, 400},
	})
)

package clientimport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

var (
	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "client_import",
		Name:      "batches_total",
		Help:      "Batches handled, by mode and result.",
	}, []string{"mode", "result"})

	rowsClassifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "client_import",
		Name:      "rows_classified_total",
		Help:      "Rows classified during preview, simulation or import.",
	}, []string{"mode", "kind"})

	rowsCommittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "client_import",
		Name:      "rows_committed_total",
		Help:      "Import outcomes per row.",
	}, []string{"outcome"})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "client_import",
		Name:      "batch_duration_seconds",
		Help:      "Time spent on one batch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode"})
)

func observeClassification(mode domain.RunMode, summary domain.PreviewSummary) {
	m := string(mode)
	rowsClassifiedTotal.WithLabelValues(m, KindNew).Add(float64(summary.NewCount))
	rowsClassifiedTotal.WithLabelValues(m, KindDuplicate).Add(float64(summary.DuplicateCount))
	rowsClassifiedTotal.WithLabelValues(m, KindError).Add(float64(summary.ErrorCount))
}

func observeResult(result domain.ImportResult) {
	rowsCommittedTotal.WithLabelValues(string(domain.OutcomeCreated)).Add(float64(result.Created))
	rowsCommittedTotal.WithLabelValues(string(domain.OutcomeUpdated)).Add(float64(result.Updated))
	rowsCommittedTotal.WithLabelValues(string(domain.OutcomeSkipped)).Add(float64(result.Skipped))
	rowsCommittedTotal.WithLabelValues(string(domain.OutcomeFailed)).Add(float64(result.Failed))
}

// Package metrics exposes the server's prometheus counters. They register on
// the default registry and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts completed uploads by mode ("single" or "chunked").
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Completed file uploads",
		},
		[]string{"mode"},
	)

	// UploadFailuresTotal counts failed uploads by failing unit
	// ("chunk", "whole_file", "merge", "metadata").
	UploadFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Subsystem: "uploads",
			Name:      "failures_total",
			Help:      "Failed file uploads",
		},
		[]string{"unit"},
	)

	// ChunksUploadedTotal counts part objects successfully stored.
	ChunksUploadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Subsystem: "uploads",
			Name:      "chunks_total",
			Help:      "Part objects successfully uploaded",
		},
	)

	// OrphanedChunksTotal counts part objects left behind by a failed
	// upload. Cleanup is best effort; a non-zero rate here means the store
	// is accumulating garbage an operator should sweep.
	OrphanedChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Subsystem: "uploads",
			Name:      "orphaned_chunks_total",
			Help:      "Part objects orphaned by failed uploads",
		},
	)

	// OrphanCleanupFailuresTotal counts orphaned parts the best-effort
	// cleanup could not delete.
	OrphanCleanupFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Subsystem: "uploads",
			Name:      "orphan_cleanup_failures_total",
			Help:      "Orphaned part objects that could not be deleted",
		},
	)

	// DeleteFailuresTotal counts backing objects that could not be removed
	// while deleting a file record.
	DeleteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Subsystem: "files",
			Name:      "delete_failures_total",
			Help:      "Backing objects that failed to delete",
		},
	)
)

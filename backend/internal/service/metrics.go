package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deptTreeCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "org_admin",
		Subsystem: "dept_cache",
		Name:      "requests_total",
		Help:      "Total number of department tree cache lookups broken down by hit/miss.",
	}, []string{"result"})

	deptTreeCacheInvalidate = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "org_admin",
		Subsystem: "dept_cache",
		Name:      "invalidate_total",
		Help:      "Total number of department tree cache invalidations broken down by reason.",
	}, []string{"reason"})

	deptWriteConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "org_admin",
		Subsystem: "dept_write",
		Name:      "conflicts_total",
		Help:      "Total number of department optimistic lock conflicts broken down by operation.",
	}, []string{"op"})

	deptMoveCascadeRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "org_admin",
		Subsystem: "dept_write",
		Name:      "move_cascade_rows",
		Help:      "Number of descendant rows rewritten by a department move.",
		Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
	})
)

func recordCacheRequest(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	deptTreeCacheRequests.WithLabelValues(result).Inc()
}

func recordCacheInvalidate(reason string) {
	if reason == "" {
		reason = "manual"
	}
	deptTreeCacheInvalidate.WithLabelValues(reason).Inc()
}

func recordWriteConflict(op string) {
	if op == "" {
		op = "other"
	}
	deptWriteConflicts.WithLabelValues(op).Inc()
}

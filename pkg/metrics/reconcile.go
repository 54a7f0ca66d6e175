package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReconcileMetrics counts inventory reconciliation outcomes.
type ReconcileMetrics struct {
	updated prometheus.Counter
	skipped prometheus.Counter
	failed  prometheus.Counter
}

// NewReconcileMetrics registers the reconciliation counters on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	updated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reconcile_updated_total",
		Help: "Inventory rows updated by reconciliation.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reconcile_skipped_total",
		Help: "Reconciliation deltas skipped as unmatched or invalid.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reconcile_failed_total",
		Help: "Reconciliation writes that failed at the store.",
	})
	reg.MustRegister(updated, skipped, failed)
	return &ReconcileMetrics{
		updated: updated,
		skipped: skipped,
		failed:  failed,
	}
}

// ObserveResult adds one reconciliation outcome to the counters.
func (m *ReconcileMetrics) ObserveResult(updated, skipped, failed int) {
	if m == nil || m.updated == nil {
		return
	}
	m.updated.Add(float64(updated))
	m.skipped.Add(float64(skipped))
	m.failed.Add(float64(failed))
}

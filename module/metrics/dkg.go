package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/onflow/flow-epochs/module"
)

// DKGCollector reports metrics of the DKG coordinator.
type DKGCollector struct {
	roundsStarted    prometheus.Counter
	roundsCompleted  prometheus.Counter
	roundsFailed     prometheus.Counter
	roundSize        prometheus.Gauge
	messagesPosted   prometheus.Counter
	resultsSubmitted prometheus.Counter
}

var _ module.DKGMetrics = (*DKGCollector)(nil)

// NewDKGCollector creates a new DKG collector and registers its metrics.
func NewDKGCollector(registerer prometheus.Registerer) *DKGCollector {
	dc := &DKGCollector{
		roundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceEpochs,
			Subsystem: subsystemCoordinator,
			Name:      "rounds_started_total",
			Help:      "the number of DKG rounds started",
		}),
		roundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceEpochs,
			Subsystem: subsystemCoordinator,
			Name:      "rounds_completed_total",
			Help:      "the number of DKG rounds that ended at their submission threshold",
		}),
		roundsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceEpochs,
			Subsystem: subsystemCoordinator,
			Name:      "rounds_failed_total",
			Help:      "the number of DKG rounds force-ended below their submission threshold",
		}),
		roundSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceEpochs,
			Subsystem: subsystemCoordinator,
			Name:      "round_size",
			Help:      "the number of participants registered for the current round",
		}),
		messagesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceEpochs,
			Subsystem: subsystemCoordinator,
			Name:      "whiteboard_messages_total",
			Help:      "the number of messages posted to the whiteboard",
		}),
		resultsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceEpochs,
			Subsystem: subsystemCoordinator,
			Name:      "results_submitted_total",
			Help:      "the number of final results submitted",
		}),
	}
	registerer.MustRegister(
		dc.roundsStarted,
		dc.roundsCompleted,
		dc.roundsFailed,
		dc.roundSize,
		dc.messagesPosted,
		dc.resultsSubmitted,
	)
	return dc
}

func (dc *DKGCollector) DKGRoundStarted(participants int) {
	dc.roundsStarted.Inc()
	dc.roundSize.Set(float64(participants))
}

func (dc *DKGCollector) DKGMessagePosted() {
	dc.messagesPosted.Inc()
}

func (dc *DKGCollector) DKGResultSubmitted() {
	dc.resultsSubmitted.Inc()
}

func (dc *DKGCollector) DKGRoundEnded(completed bool) {
	if completed {
		dc.roundsCompleted.Inc()
		return
	}
	dc.roundsFailed.Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/module"
)

// EpochCollector reports metrics of the epoch controller.
type EpochCollector struct {
	currentEpochCounter prometheus.Gauge
	currentEpochPhase   prometheus.Gauge
	transitions         prometheus.Counter
	lastTransitionView  prometheus.Gauge
}

var _ module.EpochMetrics = (*EpochCollector)(nil)

// NewEpochCollector creates a new epoch collector and registers its metrics.
func NewEpochCollector(registerer prometheus.Registerer) *EpochCollector {
	currentEpochCounter := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceEpochs,
		Subsystem: subsystemController,
		Name:      "current_epoch_counter",
		Help:      "counter of the epoch underway",
	})
	currentEpochPhase := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceEpochs,
		Subsystem: subsystemController,
		Name:      "current_epoch_phase",
		Help:      "active phase of the epoch underway",
	})
	transitions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceEpochs,
		Subsystem: subsystemController,
		Name:      "phase_transitions_total",
		Help:      "the number of epoch phase transitions",
	})
	lastTransitionView := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceEpochs,
		Subsystem: subsystemController,
		Name:      "last_transition_view",
		Help:      "view at which the last phase transition fired",
	})
	registerer.MustRegister(currentEpochCounter, currentEpochPhase, transitions, lastTransitionView)
	return &EpochCollector{
		currentEpochCounter: currentEpochCounter,
		currentEpochPhase:   currentEpochPhase,
		transitions:         transitions,
		lastTransitionView:  lastTransitionView,
	}
}

func (ec *EpochCollector) CurrentEpochCounter(counter uint64) {
	ec.currentEpochCounter.Set(float64(counter))
}

func (ec *EpochCollector) CurrentEpochPhase(phase flow.EpochPhase) {
	ec.currentEpochPhase.Set(float64(phase))
}

func (ec *EpochCollector) EpochTransition(view uint64) {
	ec.transitions.Inc()
	ec.lastTransitionView.Set(float64(view))
}

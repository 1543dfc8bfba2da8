package metrics

import (
	"github.com/onflow/flow-epochs/model/flow"
)

// NoopCollector implements all metrics interfaces with no-ops, for use in
// tests and tools that do not report metrics.
type NoopCollector struct{}

func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

func (nc *NoopCollector) CurrentEpochCounter(counter uint64)      {}
func (nc *NoopCollector) CurrentEpochPhase(phase flow.EpochPhase) {}
func (nc *NoopCollector) EpochTransition(view uint64)             {}
func (nc *NoopCollector) DKGRoundStarted(participants int)        {}
func (nc *NoopCollector) DKGMessagePosted()                       {}
func (nc *NoopCollector) DKGResultSubmitted()                     {}
func (nc *NoopCollector) DKGRoundEnded(completed bool)            {}

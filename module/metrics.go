package module

import (
	"github.com/onflow/flow-epochs/model/flow"
)

// EpochMetrics exposes metrics of the epoch controller.
type EpochMetrics interface {

	// CurrentEpochCounter reports the current epoch counter.
	CurrentEpochCounter(counter uint64)

	// CurrentEpochPhase reports the current phase of the epoch.
	CurrentEpochPhase(phase flow.EpochPhase)

	// EpochTransition reports a phase transition at the given view.
	EpochTransition(view uint64)
}

// DKGMetrics exposes metrics of the DKG coordinator.
type DKGMetrics interface {

	// DKGRoundStarted reports the start of a round with the given number of
	// participants.
	DKGRoundStarted(participants int)

	// DKGMessagePosted reports a message appended to the whiteboard.
	DKGMessagePosted()

	// DKGResultSubmitted reports a final result submission.
	DKGResultSubmitted()

	// DKGRoundEnded reports the end of a round and whether it reached its
	// submission threshold.
	DKGRoundEnded(completed bool)
}

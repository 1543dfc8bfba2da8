package protocol

import (
	"github.com/onflow/flow-epochs/model/epoch"
)

// Consumer defines a set of events related to the epoch lifecycle that other
// components can subscribe to.
//
// Consumer implementations must be non-blocking: the epoch controller invokes
// them synchronously while holding its lock, once per transition.
type Consumer interface {

	// EpochTransition is called once the first epoch view boundary wraps
	// around, when the new epoch begins its staking auction phase. The
	// metadata record of the new epoch is passed along.
	EpochTransition(first *epoch.Metadata)

	// EpochSetupPhaseStarted is called when an epoch moves from the staking
	// auction phase to the setup phase.
	EpochSetupPhaseStarted(counter uint64)

	// EpochCommittedPhaseStarted is called when an epoch moves from the
	// setup phase to the committed phase.
	EpochCommittedPhaseStarted(counter uint64)
}

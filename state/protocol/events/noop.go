package events

import (
	"github.com/onflow/flow-epochs/model/epoch"
	"github.com/onflow/flow-epochs/state/protocol"
)

// Noop implements protocol.Consumer with no-op methods. It can be embedded
// by consumers that only care about a subset of events.
type Noop struct{}

var _ protocol.Consumer = (*Noop)(nil)

func (n Noop) EpochTransition(*epoch.Metadata)   {}
func (n Noop) EpochSetupPhaseStarted(uint64)     {}
func (n Noop) EpochCommittedPhaseStarted(uint64) {}

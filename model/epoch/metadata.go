package epoch

import (
	"fmt"

	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/model/messages"
)

// Metadata is the per-epoch record kept by the epoch controller. One record
// is created for every epoch counter at the moment the epoch begins, with
// the phase boundary views derived from the configuration in force at that
// moment. Records are append-only history; only the Phase and DKG result
// fields change after creation.
type Metadata struct {
	// Counter is the unique, monotonically increasing epoch counter.
	Counter uint64
	// Phase is the currently active phase of this epoch.
	Phase flow.EpochPhase
	// Config is the configuration snapshot the boundary views were derived
	// from. Immutable once the record is created.
	Config Config

	// FirstView is the first view of the epoch.
	FirstView uint64
	// StakingAuctionFinalView is the last view of the staking auction phase.
	StakingAuctionFinalView uint64
	// DKGPhaseFinalViews are the last views of DKG phases 1, 2 and 3. The
	// DKG occupies the epoch setup phase, so DKGPhaseFinalViews[2] is also
	// the last view of the setup phase.
	DKGPhaseFinalViews [DKGPhases]uint64
	// FinalView is the last view of the epoch (and of the committed phase).
	FinalView uint64

	// DKGCompleted records whether the DKG round for the next epoch reached
	// its submission threshold before this epoch was committed.
	DKGCompleted bool
	// DKGResult is the canonical result vector of the completed DKG round,
	// empty unless DKGCompleted is set.
	DKGResult messages.ResultVector
}

// NewMetadata creates the metadata record for the epoch with the given
// counter and first view, deriving all phase boundary views from the given
// configuration. The epoch starts in the staking auction phase.
func NewMetadata(counter uint64, firstView uint64, conf Config) (*Metadata, error) {
	err := conf.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid epoch configuration: %w", err)
	}
	meta := &Metadata{
		Counter:                 counter,
		Phase:                   flow.EpochPhaseStaking,
		Config:                  conf,
		FirstView:               firstView,
		StakingAuctionFinalView: firstView + conf.NumViewsInStakingAuction - 1,
		FinalView:               firstView + conf.NumViewsInEpoch - 1,
	}
	for i := 0; i < DKGPhases; i++ {
		meta.DKGPhaseFinalViews[i] = meta.StakingAuctionFinalView + uint64(i+1)*conf.NumViewsInDKGPhase
	}
	return meta, nil
}

// SetupFinalView returns the last view of the epoch setup phase, which
// coincides with the end of the last DKG phase.
func (m *Metadata) SetupFinalView() uint64 {
	return m.DKGPhaseFinalViews[DKGPhases-1]
}

// PhaseFinalView returns the last view of the given phase within this epoch.
func (m *Metadata) PhaseFinalView(phase flow.EpochPhase) (uint64, error) {
	switch phase {
	case flow.EpochPhaseStaking:
		return m.StakingAuctionFinalView, nil
	case flow.EpochPhaseSetup:
		return m.SetupFinalView(), nil
	case flow.EpochPhaseCommitted:
		return m.FinalView, nil
	}
	return 0, fmt.Errorf("no final view for phase %s", phase)
}

// CurrentPhaseFinalView returns the last view of the currently active phase.
func (m *Metadata) CurrentPhaseFinalView() uint64 {
	view, err := m.PhaseFinalView(m.Phase)
	if err != nil {
		// Phase is only ever set to one of the three defined phases
		panic(err)
	}
	return view
}

// Package epoch models the data handled by the epoch preparation protocol:
// the configurable epoch parameters and the per-epoch metadata snapshots
// derived from them.
package epoch

import (
	"errors"

	"github.com/hashicorp/go-multierror"
)

// DKGPhases is the number of phases the key-generation protocol runs through
// within the epoch setup phase.
const DKGPhases = 3

// Config holds the configurable epoch parameters. There is a single mutable
// instance, guarded by the epoch admin capability. Updates never affect the
// epoch that is underway; they are snapshotted into the metadata of the next
// epoch when it begins.
type Config struct {
	// NumViewsInEpoch is the total number of views in one epoch, spanning
	// all three phases.
	NumViewsInEpoch uint64
	// NumViewsInStakingAuction is the number of views in the staking auction
	// phase at the beginning of the epoch.
	NumViewsInStakingAuction uint64
	// NumViewsInDKGPhase is the number of views in each of the DKG phases
	// that subdivide the epoch setup phase.
	NumViewsInDKGPhase uint64
	// NumCollectorClusters is the number of collector clusters for which the
	// QC aggregator collects votes during the setup phase.
	NumCollectorClusters uint16
	// FLOWSupplyIncreasePercentage is the fraction by which the total token
	// supply increases per epoch, paid out as rewards at epoch commitment.
	FLOWSupplyIncreasePercentage float64
}

// DefaultConfig returns the epoch configuration used when none is supplied
// at bootstrapping.
func DefaultConfig() Config {
	return Config{
		NumViewsInEpoch:              4000,
		NumViewsInStakingAuction:     1600,
		NumViewsInDKGPhase:           500,
		NumCollectorClusters:         3,
		FLOWSupplyIncreasePercentage: 0.05,
	}
}

// Validate checks all configuration invariants and returns the combined
// violations, if any. A configuration that passes Validate always yields
// strictly increasing phase boundary views.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.NumViewsInEpoch == 0 {
		result = multierror.Append(result, errors.New("views in epoch must be positive"))
	}
	if c.NumViewsInStakingAuction == 0 {
		result = multierror.Append(result, errors.New("views in staking auction must be positive"))
	}
	if c.NumViewsInDKGPhase == 0 {
		result = multierror.Append(result, errors.New("views in DKG phase must be positive"))
	}
	if c.NumCollectorClusters == 0 {
		result = multierror.Append(result, errors.New("number of collector clusters must be positive"))
	}
	if c.FLOWSupplyIncreasePercentage < 0 || c.FLOWSupplyIncreasePercentage >= 1 {
		result = multierror.Append(result, errors.New("supply increase percentage must be in [0,1)"))
	}
	// the committed phase occupies the views left over after the staking
	// auction and the DKG, and must be non-empty
	if c.NumViewsInEpoch <= c.NumViewsInStakingAuction+DKGPhases*c.NumViewsInDKGPhase {
		result = multierror.Append(result, errors.New("views in epoch must exceed views in staking auction and DKG phases"))
	}
	return result.ErrorOrNil()
}

package module

import (
	"github.com/onflow/flow-epochs/model/flow"
)

// QCContractClient is the interface through which the epoch controller
// signals the cluster QC aggregator. Vote collection itself is outside this
// module; the controller only opens and closes the voting window.
type QCContractClient interface {

	// StartVoting opens QC vote collection for the given number of
	// collector clusters.
	StartVoting(clusters uint16) error

	// StopVoting closes QC vote collection.
	StopVoting() error
}

// StakingContractClient is the interface through which the epoch controller
// interacts with the staking contract.
type StakingContractClient interface {

	// ConsensusNodeIDs returns the identifiers of the currently staked
	// consensus nodes, which form the participant set of the next DKG
	// round.
	ConsensusNodeIDs() (flow.IdentifierList, error)

	// StartStakingAuction opens the staking auction for the given epoch.
	StartStakingAuction(counter uint64) error

	// PayRewards triggers reward distribution for the given epoch.
	PayRewards(counter uint64) error
}

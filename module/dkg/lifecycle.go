package dkg

import (
	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/model/messages"
	"github.com/onflow/flow-epochs/module"
)

// LifecycleClient binds a coordinator and its admin capability into the
// module.DKGClient interface consumed by the epoch controller. The epoch
// controller is the trusted driver of the DKG lifecycle, so it holds the
// admin capability through this client.
type LifecycleClient struct {
	coordinator *Coordinator
	admin       *Admin
}

var _ module.DKGClient = (*LifecycleClient)(nil)

// NewLifecycleClient creates a lifecycle client around the given coordinator
// and admin capability.
func NewLifecycleClient(coordinator *Coordinator, admin *Admin) *LifecycleClient {
	return &LifecycleClient{
		coordinator: coordinator,
		admin:       admin,
	}
}

// StartRound implements module.DKGClient.
func (lc *LifecycleClient) StartRound(participants flow.IdentifierList) error {
	return lc.coordinator.StartRound(lc.admin, participants)
}

// EndRound implements module.DKGClient. It force-ends the round: the epoch
// controller commits the epoch on view expiry whether or not the DKG
// completed, and records the outcome separately.
func (lc *LifecycleClient) EndRound() error {
	return lc.coordinator.ForceEndRound(lc.admin)
}

// Completed implements module.DKGClient.
func (lc *LifecycleClient) Completed() (messages.ResultVector, bool) {
	return lc.coordinator.CompletedResult()
}

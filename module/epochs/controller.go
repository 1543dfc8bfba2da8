// Package epochs implements the epoch preparation state machine: it advances
// a global epoch through its staking auction, setup and committed phases
// based on an externally driven view counter, and signals the staking, QC
// and DKG collaborators at each phase boundary.
package epochs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/onflow/flow-epochs/model/epoch"
	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/module"
	"github.com/onflow/flow-epochs/state/protocol"
	"github.com/onflow/flow-epochs/storage"
)

// Controller is the epoch state machine. Advance is expected to be called
// once per unit of progress (typically once per block); calls within the
// active phase are no-ops, and each phase boundary crossing performs exactly
// one transition with its side effects fired exactly once.
//
// All public operations are serialized and atomic: preconditions are checked
// before any mutation, and the state writes of one transition share one
// database transaction. Collaborator side effects run after the transition
// has been persisted; their failures are logged and do not roll the
// transition back.
type Controller struct {
	mu      sync.Mutex
	log     zerolog.Logger
	metrics module.EpochMetrics

	epochs  storage.EpochStates
	configs storage.EpochConfigs

	dkg      module.DKGClient
	qc       module.QCContractClient
	staking  module.StakingContractClient
	consumer protocol.Consumer

	current *epoch.Metadata
	config  epoch.Config
}

// Admin is the capability required for the privileged operations of one
// controller. It is issued exactly once, by NewController, and cannot be
// forged: the reference to the issuing controller is unexported.
type Admin struct {
	controller *Controller
}

// Bootstrap writes the configuration and the epoch metadata for the first
// epoch, starting in the staking auction phase at the given first view. It
// must be run once before a controller can be constructed over the store.
func Bootstrap(epochs storage.EpochStates, configs storage.EpochConfigs, firstView uint64, conf epoch.Config) error {
	meta, err := epoch.NewMetadata(0, firstView, conf)
	if err != nil {
		return fmt.Errorf("could not create epoch zero metadata: %w", err)
	}
	err = configs.Store(conf)
	if err != nil {
		return fmt.Errorf("could not store epoch configuration: %w", err)
	}
	err = epochs.Bootstrap(meta)
	if err != nil {
		return fmt.Errorf("could not bootstrap epoch state: %w", err)
	}
	return nil
}

// NewController creates a controller over a bootstrapped store and issues
// its admin capability. It fails with ErrNotBootstrapped if the store holds
// no epoch state.
func NewController(
	log zerolog.Logger,
	metrics module.EpochMetrics,
	epochs storage.EpochStates,
	configs storage.EpochConfigs,
	dkg module.DKGClient,
	qc module.QCContractClient,
	staking module.StakingContractClient,
	consumer protocol.Consumer,
) (*Controller, *Admin, error) {

	counter, err := epochs.CurrentCounter()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrNotBootstrapped
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not retrieve current epoch counter: %w", err)
	}
	current, err := epochs.ByCounter(counter)
	if err != nil {
		return nil, nil, fmt.Errorf("could not retrieve current epoch metadata: %w", err)
	}
	conf, err := configs.Retrieve()
	if err != nil {
		return nil, nil, fmt.Errorf("could not retrieve epoch configuration: %w", err)
	}

	c := &Controller{
		log:      log.With().Str("component", "epoch_controller").Logger(),
		metrics:  metrics,
		epochs:   epochs,
		configs:  configs,
		dkg:      dkg,
		qc:       qc,
		staking:  staking,
		consumer: consumer,
		current:  current,
		config:   conf,
	}
	c.metrics.CurrentEpochCounter(current.Counter)
	c.metrics.CurrentEpochPhase(current.Phase)

	admin := &Admin{controller: c}
	return c, admin, nil
}

// Advance compares the given view against the final view of the active
// phase. Within the phase it is a no-op; past the boundary it performs the
// next transition in the cycle StakingAuction -> EpochSetup ->
// EpochCommitted -> (counter+1) StakingAuction.
func (c *Controller) Advance(currentView uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if currentView <= c.current.CurrentPhaseFinalView() {
		return nil
	}

	switch c.current.Phase {
	case flow.EpochPhaseStaking:
		return c.transitionToSetup(currentView)
	case flow.EpochPhaseSetup:
		return c.transitionToCommitted(currentView)
	case flow.EpochPhaseCommitted:
		return c.transitionToNextEpoch(currentView)
	}
	return fmt.Errorf("epoch %d in undefined phase", c.current.Counter)
}

// transitionToSetup moves the current epoch into the setup phase, starts the
// DKG round for the next epoch and opens QC voting. Callers must hold the
// lock.
func (c *Controller) transitionToSetup(currentView uint64) error {
	meta := c.current
	meta.Phase = flow.EpochPhaseSetup
	err := c.epochs.UpdateMetadata(meta)
	if err != nil {
		meta.Phase = flow.EpochPhaseStaking
		return fmt.Errorf("could not persist setup phase transition: %w", err)
	}

	log := c.log.With().
		Uint64("epoch", meta.Counter).
		Uint64("view", currentView).
		Logger()
	log.Info().Msg("epoch setup phase started")

	nodeIDs, err := c.staking.ConsensusNodeIDs()
	if err != nil {
		log.Error().Err(err).Msg("could not retrieve consensus nodes, DKG round not started")
	} else {
		err = c.dkg.StartRound(nodeIDs)
		if err != nil {
			log.Error().Err(err).Msg("could not start DKG round")
		}
	}
	err = c.qc.StartVoting(meta.Config.NumCollectorClusters)
	if err != nil {
		log.Error().Err(err).Msg("could not start QC voting")
	}

	c.consumer.EpochSetupPhaseStarted(meta.Counter)
	c.metrics.CurrentEpochPhase(meta.Phase)
	c.metrics.EpochTransition(currentView)
	return nil
}

// transitionToCommitted moves the current epoch into the committed phase,
// records the DKG outcome, stops the DKG round and QC voting, and triggers
// reward distribution. Callers must hold the lock.
func (c *Controller) transitionToCommitted(currentView uint64) error {
	meta := c.current
	vector, completed := c.dkg.Completed()

	meta.Phase = flow.EpochPhaseCommitted
	meta.DKGCompleted = completed
	meta.DKGResult = vector
	err := c.epochs.UpdateMetadata(meta)
	if err != nil {
		meta.Phase = flow.EpochPhaseSetup
		meta.DKGCompleted = false
		meta.DKGResult = nil
		return fmt.Errorf("could not persist committed phase transition: %w", err)
	}

	log := c.log.With().
		Uint64("epoch", meta.Counter).
		Uint64("view", currentView).
		Bool("dkg_completed", completed).
		Logger()
	log.Info().Msg("epoch committed phase started")

	err = c.dkg.EndRound()
	if err != nil {
		log.Error().Err(err).Msg("could not end DKG round")
	}
	err = c.qc.StopVoting()
	if err != nil {
		log.Error().Err(err).Msg("could not stop QC voting")
	}
	err = c.staking.PayRewards(meta.Counter)
	if err != nil {
		log.Error().Err(err).Msg("could not pay epoch rewards")
	}

	c.consumer.EpochCommittedPhaseStarted(meta.Counter)
	c.metrics.CurrentEpochPhase(meta.Phase)
	c.metrics.EpochTransition(currentView)
	return nil
}

// transitionToNextEpoch wraps around to the next epoch: it snapshots the
// configuration in force into a fresh metadata record for counter+1 and
// opens the new staking auction. Callers must hold the lock.
func (c *Controller) transitionToNextEpoch(currentView uint64) error {
	prev := c.current
	next, err := epoch.NewMetadata(prev.Counter+1, prev.FinalView+1, c.config)
	if err != nil {
		return fmt.Errorf("could not create metadata for epoch %d: %w", prev.Counter+1, err)
	}
	err = c.epochs.TransitionToNextEpoch(next)
	if err != nil {
		return fmt.Errorf("could not persist epoch transition: %w", err)
	}
	c.current = next

	log := c.log.With().
		Uint64("epoch", next.Counter).
		Uint64("view", currentView).
		Logger()
	log.Info().Msg("epoch transition, staking auction started")

	err = c.staking.StartStakingAuction(next.Counter)
	if err != nil {
		log.Error().Err(err).Msg("could not start staking auction")
	}

	c.consumer.EpochTransition(next)
	c.metrics.CurrentEpochCounter(next.Counter)
	c.metrics.CurrentEpochPhase(next.Phase)
	c.metrics.EpochTransition(currentView)
	return nil
}

/*~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
Configuration updates
~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~*/

// SetNumViewsInEpoch updates the total number of views per epoch, effective
// from the next epoch.
func (c *Controller) SetNumViewsInEpoch(admin *Admin, views uint64) error {
	return c.updateConfig(admin, func(conf *epoch.Config) {
		conf.NumViewsInEpoch = views
	})
}

// SetNumViewsInStakingAuction updates the number of views in the staking
// auction phase, effective from the next epoch.
func (c *Controller) SetNumViewsInStakingAuction(admin *Admin, views uint64) error {
	return c.updateConfig(admin, func(conf *epoch.Config) {
		conf.NumViewsInStakingAuction = views
	})
}

// SetNumViewsInDKGPhase updates the number of views per DKG phase, effective
// from the next epoch.
func (c *Controller) SetNumViewsInDKGPhase(admin *Admin, views uint64) error {
	return c.updateConfig(admin, func(conf *epoch.Config) {
		conf.NumViewsInDKGPhase = views
	})
}

// SetNumCollectorClusters updates the number of collector clusters,
// effective from the next epoch.
func (c *Controller) SetNumCollectorClusters(admin *Admin, clusters uint16) error {
	return c.updateConfig(admin, func(conf *epoch.Config) {
		conf.NumCollectorClusters = clusters
	})
}

// SetFLOWSupplyIncreasePercentage updates the per-epoch supply increase,
// effective from the next epoch.
func (c *Controller) SetFLOWSupplyIncreasePercentage(admin *Admin, percentage float64) error {
	return c.updateConfig(admin, func(conf *epoch.Config) {
		conf.FLOWSupplyIncreasePercentage = percentage
	})
}

// updateConfig applies a single-field mutation to a copy of the current
// configuration, validates the result as a whole and persists it. The epoch
// underway keeps the snapshot it was created with; the update is first
// picked up by the next epoch's metadata.
func (c *Controller) updateConfig(admin *Admin, mutate func(*epoch.Config)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.checkAdmin(admin)
	if err != nil {
		return err
	}

	conf := c.config
	mutate(&conf)
	err = conf.Validate()
	if err != nil {
		return fmt.Errorf("rejecting configuration update: %w", err)
	}
	err = c.configs.Update(conf)
	if err != nil {
		return fmt.Errorf("could not persist configuration update: %w", err)
	}
	c.config = conf

	c.log.Info().Interface("config", conf).Msg("epoch configuration updated")
	return nil
}

/*~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
Queries
~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~*/

// EpochMetadata returns the metadata record for the given epoch counter,
// or storage.ErrNotFound if the counter never existed.
func (c *Controller) EpochMetadata(counter uint64) (*epoch.Metadata, error) {
	return c.epochs.ByCounter(counter)
}

// ConfigMetadata returns the configuration currently in force, which the
// next epoch will be created from.
func (c *Controller) ConfigMetadata() epoch.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// CurrentEpochCounter returns the counter of the epoch underway.
func (c *Controller) CurrentEpochCounter() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Counter
}

// ProposedEpochCounter returns the counter of the next epoch.
func (c *Controller) ProposedEpochCounter() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Counter + 1
}

// CurrentPhase returns the active phase of the epoch underway.
func (c *Controller) CurrentPhase() flow.EpochPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Phase
}

/*~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~*/

// checkAdmin verifies that the given capability is the one this controller
// issued.
func (c *Controller) checkAdmin(admin *Admin) error {
	if admin == nil || admin.controller != c {
		return fmt.Errorf("admin capability: %w", ErrInvalidCapability)
	}
	return nil
}

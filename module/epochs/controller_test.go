package epochs

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-epochs/model/epoch"
	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/model/messages"
	"github.com/onflow/flow-epochs/module/metrics"
	bstorage "github.com/onflow/flow-epochs/storage/badger"
	"github.com/onflow/flow-epochs/utils/unittest"
)

// countingDKGClient counts lifecycle calls and serves a canned outcome.
type countingDKGClient struct {
	started   int
	ended     int
	completed bool
	result    messages.ResultVector
	lastSet   flow.IdentifierList
}

func (c *countingDKGClient) StartRound(participants flow.IdentifierList) error {
	c.started++
	c.lastSet = participants
	return nil
}

func (c *countingDKGClient) EndRound() error {
	c.ended++
	return nil
}

func (c *countingDKGClient) Completed() (messages.ResultVector, bool) {
	return c.result, c.completed
}

type countingQCClient struct {
	started      int
	stopped      int
	lastClusters uint16
}

func (c *countingQCClient) StartVoting(clusters uint16) error {
	c.started++
	c.lastClusters = clusters
	return nil
}

func (c *countingQCClient) StopVoting() error {
	c.stopped++
	return nil
}

type countingStakingClient struct {
	nodeIDs  flow.IdentifierList
	auctions int
	rewards  int
}

func (c *countingStakingClient) ConsensusNodeIDs() (flow.IdentifierList, error) {
	return c.nodeIDs, nil
}

func (c *countingStakingClient) StartStakingAuction(counter uint64) error {
	c.auctions++
	return nil
}

func (c *countingStakingClient) PayRewards(counter uint64) error {
	c.rewards++
	return nil
}

type countingConsumer struct {
	transitions int
	setups      int
	commits     int
	lastEpoch   *epoch.Metadata
}

func (c *countingConsumer) EpochTransition(first *epoch.Metadata) {
	c.transitions++
	c.lastEpoch = first
}

func (c *countingConsumer) EpochSetupPhaseStarted(counter uint64)     { c.setups++ }
func (c *countingConsumer) EpochCommittedPhaseStarted(counter uint64) { c.commits++ }

// testController bundles a controller over a scratch database with its admin
// capability and its counting collaborators.
type testController struct {
	controller *Controller
	admin      *Admin
	dkg        *countingDKGClient
	qc         *countingQCClient
	staking    *countingStakingClient
	consumer   *countingConsumer
}

// newTestController bootstraps the store with the fixture configuration
// (epoch 300 views, auction 100, DKG phases 50 each) and a first view of 1,
// then builds a controller over it.
func newTestController(t *testing.T, db *badger.DB) *testController {
	epochs := bstorage.NewEpochStates(db)
	configs := bstorage.NewEpochConfigs(db)
	require.NoError(t, Bootstrap(epochs, configs, 1, unittest.EpochConfigFixture()))

	tc := &testController{
		dkg:      &countingDKGClient{},
		qc:       &countingQCClient{},
		staking:  &countingStakingClient{nodeIDs: unittest.IdentifierListFixture(4)},
		consumer: &countingConsumer{},
	}
	controller, admin, err := NewController(
		unittest.Logger(),
		metrics.NewNoopCollector(),
		epochs,
		configs,
		tc.dkg,
		tc.qc,
		tc.staking,
		tc.consumer,
	)
	require.NoError(t, err)
	tc.controller = controller
	tc.admin = admin
	return tc
}

func TestNewControllerNotBootstrapped(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		_, _, err := NewController(
			zerolog.Nop(),
			metrics.NewNoopCollector(),
			bstorage.NewEpochStates(db),
			bstorage.NewEpochConfigs(db),
			&countingDKGClient{},
			&countingQCClient{},
			&countingStakingClient{},
			&countingConsumer{},
		)
		require.ErrorIs(t, err, ErrNotBootstrapped)
	})
}

// Advancing through one full epoch must visit the phases in order and fire
// each collaborator side effect exactly once per boundary, no matter how many
// no-op calls land inside a phase.
func TestAdvanceFullCycle(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestController(t, db)

		assert.Equal(t, uint64(0), tc.controller.CurrentEpochCounter())
		assert.Equal(t, uint64(1), tc.controller.ProposedEpochCounter())
		assert.Equal(t, flow.EpochPhaseStaking, tc.controller.CurrentPhase())

		// views inside the staking auction (final view 100) are no-ops
		for _, view := range []uint64{1, 50, 100} {
			require.NoError(t, tc.controller.Advance(view))
		}
		assert.Equal(t, flow.EpochPhaseStaking, tc.controller.CurrentPhase())
		assert.Equal(t, 0, tc.dkg.started)

		// view 101 crosses into the setup phase
		require.NoError(t, tc.controller.Advance(101))
		assert.Equal(t, flow.EpochPhaseSetup, tc.controller.CurrentPhase())
		assert.Equal(t, 1, tc.dkg.started)
		assert.Equal(t, tc.staking.nodeIDs, tc.dkg.lastSet)
		assert.Equal(t, 1, tc.qc.started)
		assert.Equal(t, uint16(2), tc.qc.lastClusters)
		assert.Equal(t, 1, tc.consumer.setups)

		// repeated calls inside the setup phase (final view 250) do nothing
		for _, view := range []uint64{101, 150, 250} {
			require.NoError(t, tc.controller.Advance(view))
		}
		assert.Equal(t, 1, tc.dkg.started)
		assert.Equal(t, 1, tc.qc.started)

		// view 251 crosses into the committed phase
		tc.dkg.completed = true
		tc.dkg.result = unittest.ResultVectorFixture(4)
		require.NoError(t, tc.controller.Advance(251))
		assert.Equal(t, flow.EpochPhaseCommitted, tc.controller.CurrentPhase())
		assert.Equal(t, 1, tc.dkg.ended)
		assert.Equal(t, 1, tc.qc.stopped)
		assert.Equal(t, 1, tc.staking.rewards)
		assert.Equal(t, 1, tc.consumer.commits)

		// the DKG outcome is recorded on the epoch metadata
		meta, err := tc.controller.EpochMetadata(0)
		require.NoError(t, err)
		assert.True(t, meta.DKGCompleted)
		assert.Equal(t, tc.dkg.result, meta.DKGResult)

		// view 301 wraps around into epoch 1
		require.NoError(t, tc.controller.Advance(300))
		require.NoError(t, tc.controller.Advance(301))
		assert.Equal(t, uint64(1), tc.controller.CurrentEpochCounter())
		assert.Equal(t, flow.EpochPhaseStaking, tc.controller.CurrentPhase())
		assert.Equal(t, 1, tc.staking.auctions)
		assert.Equal(t, 1, tc.consumer.transitions)
		require.NotNil(t, tc.consumer.lastEpoch)
		assert.Equal(t, uint64(301), tc.consumer.lastEpoch.FirstView)

		// epoch 0 remains queryable as history
		meta, err = tc.controller.EpochMetadata(0)
		require.NoError(t, err)
		assert.Equal(t, flow.EpochPhaseCommitted, meta.Phase)
	})
}

// A failed DKG round must not block the epoch wrap-around: the metadata
// records the failure and the cycle continues.
func TestAdvanceIncompleteDKG(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestController(t, db)

		require.NoError(t, tc.controller.Advance(101))
		require.NoError(t, tc.controller.Advance(251))
		assert.Equal(t, flow.EpochPhaseCommitted, tc.controller.CurrentPhase())
		assert.Equal(t, 1, tc.dkg.ended)

		meta, err := tc.controller.EpochMetadata(0)
		require.NoError(t, err)
		assert.False(t, meta.DKGCompleted)
		assert.Nil(t, meta.DKGResult)

		require.NoError(t, tc.controller.Advance(301))
		assert.Equal(t, uint64(1), tc.controller.CurrentEpochCounter())
	})
}

// A view far past several boundaries still performs a single transition per
// call; the caller drives the machine forward one step at a time.
func TestAdvanceOneTransitionPerCall(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestController(t, db)

		require.NoError(t, tc.controller.Advance(10_000))
		assert.Equal(t, flow.EpochPhaseSetup, tc.controller.CurrentPhase())
		assert.Equal(t, uint64(0), tc.controller.CurrentEpochCounter())

		require.NoError(t, tc.controller.Advance(10_000))
		assert.Equal(t, flow.EpochPhaseCommitted, tc.controller.CurrentPhase())

		require.NoError(t, tc.controller.Advance(10_000))
		assert.Equal(t, uint64(1), tc.controller.CurrentEpochCounter())
		assert.Equal(t, flow.EpochPhaseStaking, tc.controller.CurrentPhase())
	})
}

// Configuration updates take effect from the next epoch only: the epoch
// underway keeps the snapshot it was created with.
func TestConfigUpdate(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestController(t, db)

		require.NoError(t, tc.controller.SetNumViewsInEpoch(tc.admin, 400))
		require.NoError(t, tc.controller.SetNumCollectorClusters(tc.admin, 7))
		assert.Equal(t, uint64(400), tc.controller.ConfigMetadata().NumViewsInEpoch)

		// epoch 0 still runs on the bootstrap snapshot
		meta, err := tc.controller.EpochMetadata(0)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), meta.Config.NumViewsInEpoch)
		assert.Equal(t, uint64(300), meta.FinalView)

		// drive into epoch 1, which picks the update up
		require.NoError(t, tc.controller.Advance(101))
		require.NoError(t, tc.controller.Advance(251))
		require.NoError(t, tc.controller.Advance(301))

		meta, err = tc.controller.EpochMetadata(1)
		require.NoError(t, err)
		assert.Equal(t, uint64(400), meta.Config.NumViewsInEpoch)
		assert.Equal(t, uint64(700), meta.FinalView)
		assert.Equal(t, uint16(7), meta.Config.NumCollectorClusters)

		// QC voting for epoch 1 only opens at its own setup boundary
		assert.Equal(t, uint16(2), tc.qc.lastClusters)
		require.NoError(t, tc.controller.Advance(402))
		assert.Equal(t, uint16(7), tc.qc.lastClusters)

		// an update that breaks the phase arithmetic is rejected wholesale
		err = tc.controller.SetNumViewsInEpoch(tc.admin, 10)
		require.Error(t, err)
		assert.Equal(t, uint64(400), tc.controller.ConfigMetadata().NumViewsInEpoch)
	})
}

func TestConfigUpdateCapability(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestController(t, db)

		// nil and foreign admin capabilities are rejected
		err := tc.controller.SetNumViewsInEpoch(nil, 400)
		require.ErrorIs(t, err, ErrInvalidCapability)
		err = tc.controller.SetNumViewsInEpoch(&Admin{}, 400)
		require.ErrorIs(t, err, ErrInvalidCapability)

		assert.Equal(t, uint64(300), tc.controller.ConfigMetadata().NumViewsInEpoch)
	})
}

// A controller constructed over an existing store resumes mid-cycle.
func TestControllerRecovery(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestController(t, db)
		require.NoError(t, tc.controller.Advance(101))
		require.NoError(t, tc.controller.SetNumViewsInDKGPhase(tc.admin, 60))

		resumed, _, err := NewController(
			unittest.Logger(),
			metrics.NewNoopCollector(),
			bstorage.NewEpochStates(db),
			bstorage.NewEpochConfigs(db),
			tc.dkg,
			tc.qc,
			tc.staking,
			tc.consumer,
		)
		require.NoError(t, err)

		assert.Equal(t, uint64(0), resumed.CurrentEpochCounter())
		assert.Equal(t, flow.EpochPhaseSetup, resumed.CurrentPhase())
		assert.Equal(t, uint64(60), resumed.ConfigMetadata().NumViewsInDKGPhase)

		// the resumed controller continues the cycle from where it stood
		require.NoError(t, resumed.Advance(251))
		assert.Equal(t, flow.EpochPhaseCommitted, resumed.CurrentPhase())
	})
}

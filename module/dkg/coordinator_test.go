package dkg

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/model/messages"
	"github.com/onflow/flow-epochs/module/metrics"
	bstorage "github.com/onflow/flow-epochs/storage/badger"
	"github.com/onflow/flow-epochs/utils/unittest"
)

// testCoordinator is a coordinator over a scratch database, with its admin
// capability and one claimed handle per committee member.
type testCoordinator struct {
	coordinator *Coordinator
	admin       *Admin
	committee   flow.IdentifierList
	handles     []*Participant
}

func newTestCoordinator(t *testing.T, db *badger.DB, committeeSize int) *testCoordinator {
	coordinator, admin, err := NewCoordinator(
		unittest.Logger(),
		metrics.NewNoopCollector(),
		bstorage.NewDKGState(db),
	)
	require.NoError(t, err)

	tc := &testCoordinator{
		coordinator: coordinator,
		admin:       admin,
		committee:   unittest.IdentifierListFixture(committeeSize),
	}
	for _, nodeID := range tc.committee {
		handle, err := coordinator.ClaimParticipant(admin, nodeID)
		require.NoError(t, err)
		tc.handles = append(tc.handles, handle)
	}
	return tc
}

func TestClaimParticipant(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestCoordinator(t, db, 3)

		// claims made in the fixture are reported
		claimed, err := tc.coordinator.Claimed(tc.committee[0])
		require.NoError(t, err)
		assert.True(t, claimed)

		// a claim, once issued, is never issuable again
		_, err = tc.coordinator.ClaimParticipant(tc.admin, tc.committee[0])
		require.ErrorIs(t, err, ErrAlreadyClaimed)

		// claiming requires the admin capability
		_, err = tc.coordinator.ClaimParticipant(nil, unittest.IdentifierFixture())
		require.ErrorIs(t, err, ErrInvalidCapability)
	})
}

func TestStartRound(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestCoordinator(t, db, 3)

		// an empty participant list is rejected
		err := tc.coordinator.StartRound(tc.admin, nil)
		require.ErrorIs(t, err, ErrInvalidCommittee)
		assert.False(t, tc.coordinator.RoundActive())

		// duplicates are rejected
		dup := flow.IdentifierList{tc.committee[0], tc.committee[1], tc.committee[0]}
		err = tc.coordinator.StartRound(tc.admin, dup)
		require.ErrorIs(t, err, ErrInvalidCommittee)

		// the admin capability is required
		err = tc.coordinator.StartRound(nil, tc.committee)
		require.ErrorIs(t, err, ErrInvalidCapability)

		require.NoError(t, tc.coordinator.StartRound(tc.admin, tc.committee))
		assert.True(t, tc.coordinator.RoundActive())
		assert.True(t, tc.coordinator.Registered(tc.committee[0]))
		assert.False(t, tc.coordinator.Registered(unittest.IdentifierFixture()))

		// a second round cannot start while the first is active
		err = tc.coordinator.StartRound(tc.admin, tc.committee)
		require.ErrorIs(t, err, ErrRoundActive)
	})
}

func TestPostMessage(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestCoordinator(t, db, 3)

		// posting requires an active round
		err := tc.coordinator.PostMessage(tc.handles[0], "hello")
		require.ErrorIs(t, err, ErrRoundNotActive)

		require.NoError(t, tc.coordinator.StartRound(tc.admin, tc.committee))

		// a nil handle is rejected
		err = tc.coordinator.PostMessage(nil, "hello")
		require.ErrorIs(t, err, ErrInvalidCapability)

		// a claimed handle for a node outside the round is rejected
		outsider := unittest.IdentifierFixture()
		outsiderHandle, err := tc.coordinator.ClaimParticipant(tc.admin, outsider)
		require.NoError(t, err)
		err = tc.coordinator.PostMessage(outsiderHandle, "hello")
		require.ErrorIs(t, err, ErrUnknownParticipant)

		// messages append in order, without deduplication
		require.NoError(t, tc.coordinator.PostMessage(tc.handles[0], "one"))
		require.NoError(t, tc.coordinator.PostMessage(tc.handles[1], "two"))
		require.NoError(t, tc.coordinator.PostMessage(tc.handles[0], "one"))

		board := tc.coordinator.Whiteboard(0)
		require.Len(t, board, 3)
		assert.Equal(t, messages.NewWhiteboardMessage(tc.committee[0], "one"), board[0])
		assert.Equal(t, messages.NewWhiteboardMessage(tc.committee[1], "two"), board[1])
		assert.Equal(t, messages.NewWhiteboardMessage(tc.committee[0], "one"), board[2])

		// reads page from an offset
		assert.Len(t, tc.coordinator.Whiteboard(2), 1)
		assert.Empty(t, tc.coordinator.Whiteboard(3))
	})
}

// The scenario from the protocol design: committee {A,B,C,D,E}, threshold
// strictly more than (5-1)/2 = 2. A, B and C submit V1; D submits V2. The
// round completes on C's submission with result V1; E may still submit
// afterwards and its submission tallies.
func TestSubmissionScenario(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestCoordinator(t, db, 5)
		require.NoError(t, tc.coordinator.StartRound(tc.admin, tc.committee))

		v1 := unittest.ResultVectorFixture(5)
		v2 := unittest.ResultVectorFixture(5)

		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[0], v1)) // A
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[1], v1)) // B
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[3], v2)) // D
		assert.False(t, tc.coordinator.Complete())

		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[2], v1)) // C
		require.True(t, tc.coordinator.Complete())
		result, ok := tc.coordinator.CompletedResult()
		require.True(t, ok)
		assert.Equal(t, v1, result)

		// E submits after completion; it is accepted and tallied
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[4], v1)) // E
		tallies := tc.coordinator.SubmissionTallies()
		require.Len(t, tallies, 2)
		counts := map[int]int{}
		for _, tally := range tallies {
			counts[tally.Count()]++
		}
		assert.Equal(t, map[int]int{4: 1, 1: 1}, counts)

		// per-node submissions are reported
		got, ok := tc.coordinator.SubmissionFor(tc.committee[3])
		require.True(t, ok)
		assert.Equal(t, v2, got)
		_, ok = tc.coordinator.SubmissionFor(unittest.IdentifierFixture())
		assert.False(t, ok)
	})
}

func TestDoubleSubmission(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestCoordinator(t, db, 3)
		require.NoError(t, tc.coordinator.StartRound(tc.admin, tc.committee))

		v1 := unittest.ResultVectorFixture(3)
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[0], v1))

		// a second submission always fails, with a different vector too,
		// and leaves the tallies untouched
		err := tc.coordinator.SubmitResult(tc.handles[0], v1)
		require.ErrorIs(t, err, ErrAlreadySubmitted)
		err = tc.coordinator.SubmitResult(tc.handles[0], unittest.ResultVectorFixture(3))
		require.ErrorIs(t, err, ErrAlreadySubmitted)

		tallies := tc.coordinator.SubmissionTallies()
		require.Len(t, tallies, 1)
		assert.Equal(t, 1, tallies[0].Count())
		got, ok := tc.coordinator.SubmissionFor(tc.committee[0])
		require.True(t, ok)
		assert.Equal(t, v1, got)
	})
}

func TestEndRound(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestCoordinator(t, db, 3)

		// no round to end
		err := tc.coordinator.EndRound(tc.admin)
		require.ErrorIs(t, err, ErrRoundNotActive)

		require.NoError(t, tc.coordinator.StartRound(tc.admin, tc.committee))

		// ending below the threshold is rejected
		err = tc.coordinator.EndRound(tc.admin)
		require.ErrorIs(t, err, ErrRoundIncomplete)
		assert.True(t, tc.coordinator.RoundActive())

		// force-ending succeeds regardless of completion
		require.NoError(t, tc.coordinator.ForceEndRound(tc.admin))
		assert.False(t, tc.coordinator.RoundActive())

		// round data remains queryable after the end
		assert.True(t, tc.coordinator.Registered(tc.committee[0]))

		// a normal end works once the threshold is reached
		require.NoError(t, tc.coordinator.StartRound(tc.admin, tc.committee))
		vector := unittest.ResultVectorFixture(3)
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[0], vector))
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[1], vector))
		require.NoError(t, tc.coordinator.EndRound(tc.admin))

		// no further submissions once the round has ended
		err = tc.coordinator.SubmitResult(tc.handles[2], vector)
		require.ErrorIs(t, err, ErrRoundNotActive)
	})
}

// A new round must clear all whiteboard and submission state of the
// previous one.
func TestStartRoundResets(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestCoordinator(t, db, 3)
		require.NoError(t, tc.coordinator.StartRound(tc.admin, tc.committee))

		vector := unittest.ResultVectorFixture(3)
		require.NoError(t, tc.coordinator.PostMessage(tc.handles[0], "stale"))
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[0], vector))
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[1], vector))
		require.True(t, tc.coordinator.Complete())
		require.NoError(t, tc.coordinator.EndRound(tc.admin))

		require.NoError(t, tc.coordinator.StartRound(tc.admin, tc.committee))
		assert.Empty(t, tc.coordinator.Whiteboard(0))
		assert.Empty(t, tc.coordinator.SubmissionTallies())
		assert.False(t, tc.coordinator.Complete())

		// the node that submitted last round may submit again this round
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[0], vector))
	})
}

// A coordinator constructed over an existing database resumes the persisted
// round, and previously claimed handles remain valid.
func TestCoordinatorRecovery(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tc := newTestCoordinator(t, db, 3)
		require.NoError(t, tc.coordinator.StartRound(tc.admin, tc.committee))
		require.NoError(t, tc.coordinator.PostMessage(tc.handles[0], "before restart"))
		vector := unittest.ResultVectorFixture(3)
		require.NoError(t, tc.coordinator.SubmitResult(tc.handles[0], vector))

		// "restart": a fresh coordinator over the same database
		resumed, admin, err := NewCoordinator(
			unittest.Logger(),
			metrics.NewNoopCollector(),
			bstorage.NewDKGState(db),
		)
		require.NoError(t, err)

		assert.True(t, resumed.RoundActive())
		require.Len(t, resumed.Whiteboard(0), 1)

		// handles issued before the restart still work
		require.NoError(t, resumed.PostMessage(tc.handles[1], "after restart"))
		require.NoError(t, resumed.SubmitResult(tc.handles[1], vector))
		assert.True(t, resumed.Complete())

		// claims made before the restart still block re-claiming
		_, err = resumed.ClaimParticipant(admin, tc.committee[0])
		require.ErrorIs(t, err, ErrAlreadyClaimed)
	})
}

// Package dkg implements the coordination half of a distributed key
// generation round: participant registration, an append-only whiteboard of
// opaque broadcast messages, and a quorum tally of final result submissions.
// The cryptographic protocol itself runs in the participating nodes; the
// coordinator only orders messages and counts results.
package dkg

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/onflow/flow-epochs/model/dkg"
	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/model/messages"
	"github.com/onflow/flow-epochs/module"
	"github.com/onflow/flow-epochs/storage"
)

// Coordinator manages DKG rounds. All public operations are serialized and
// atomic: every precondition is checked before any state is mutated, and all
// storage writes of one operation share one database transaction, so a
// failed operation has no effect.
//
// Privileged operations require the Admin capability issued at construction.
// Participant operations require a Participant handle, claimed once per node
// identity and valid for every future round the node is registered in.
type Coordinator struct {
	mu      sync.Mutex
	log     zerolog.Logger
	metrics module.DKGMetrics
	state   storage.DKGState
	round   *dkg.Round // nil until the first round starts
}

// Admin is the capability required for the privileged operations of one
// coordinator. It is issued exactly once, by NewCoordinator, and cannot be
// forged: the reference to the issuing coordinator is unexported.
type Admin struct {
	coordinator *Coordinator
}

// Participant is the handle a node needs to post messages and submit results.
// It is issued at most once per node identity, via ClaimParticipant, and is
// valid for every round the node is registered in. The fields are unexported
// so a handle cannot be forged; validity is anchored in the persisted claim
// set, so handles survive coordinator restarts.
type Participant struct {
	nodeID flow.Identifier
}

// NodeID returns the node identity this handle was claimed for.
func (p *Participant) NodeID() flow.Identifier {
	return p.nodeID
}

// NewCoordinator creates a coordinator backed by the given storage and
// issues its admin capability. If the storage holds a round from a previous
// process lifetime, the coordinator resumes it.
func NewCoordinator(log zerolog.Logger, metrics module.DKGMetrics, state storage.DKGState) (*Coordinator, *Admin, error) {
	c := &Coordinator{
		log:     log.With().Str("component", "dkg_coordinator").Logger(),
		metrics: metrics,
		state:   state,
	}
	round, err := state.GetRound()
	if err == nil {
		c.round = round
		c.log.Info().
			Uint64("round", round.Counter).
			Bool("active", round.Active).
			Msg("resumed persisted DKG round")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("could not load persisted round: %w", err)
	}
	admin := &Admin{coordinator: c}
	return c, admin, nil
}

// StartRound opens a new round with the given participant set, replacing all
// state of the previous round. The previous round, if any, must have ended.
// The participant set must be non-empty and free of duplicates.
func (c *Coordinator) StartRound(admin *Admin, participants flow.IdentifierList) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.checkAdmin(admin)
	if err != nil {
		return err
	}
	if c.round != nil && c.round.Active {
		return fmt.Errorf("cannot start round %d: %w", c.round.Counter+1, ErrRoundActive)
	}
	if len(participants) == 0 {
		return fmt.Errorf("empty participant list: %w", ErrInvalidCommittee)
	}
	seen := make(map[flow.Identifier]struct{}, len(participants))
	for _, nodeID := range participants {
		if _, dup := seen[nodeID]; dup {
			return fmt.Errorf("duplicate participant %v: %w", nodeID, ErrInvalidCommittee)
		}
		seen[nodeID] = struct{}{}
	}

	var counter uint64 = 0
	if c.round != nil {
		counter = c.round.Counter + 1
	}
	round := dkg.NewRound(counter, participants.Copy())
	err = c.state.SetRound(round)
	if err != nil {
		return fmt.Errorf("could not persist round: %w", err)
	}
	c.round = round

	c.metrics.DKGRoundStarted(len(participants))
	c.log.Info().
		Uint64("round", round.Counter).
		Int("participants", len(participants)).
		Msg("DKG round started")
	return nil
}

// PostMessage appends a message to the whiteboard on behalf of the handle's
// node. The content is opaque: it is neither validated nor deduplicated.
func (c *Coordinator) PostMessage(participant *Participant, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	nodeID, err := c.checkParticipant(participant)
	if err != nil {
		return err
	}

	c.round.Whiteboard = append(c.round.Whiteboard, messages.NewWhiteboardMessage(nodeID, content))
	err = c.state.SetRound(c.round)
	if err != nil {
		// drop the appended entry so memory matches storage
		c.round.Whiteboard = c.round.Whiteboard[:len(c.round.Whiteboard)-1]
		return fmt.Errorf("could not persist whiteboard message: %w", err)
	}

	c.metrics.DKGMessagePosted()
	return nil
}

// SubmitResult records the final result vector of the handle's node. A node
// may submit at most once per round; identical vectors from distinct nodes
// accumulate into a shared tally. Submissions are accepted until the round
// ends, even after the threshold has been crossed.
func (c *Coordinator) SubmitResult(participant *Participant, vector messages.ResultVector) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	nodeID, err := c.checkParticipant(participant)
	if err != nil {
		return err
	}
	if _, submitted := c.round.Submissions[nodeID]; submitted {
		return fmt.Errorf("node %v: %w", nodeID, ErrAlreadySubmitted)
	}

	c.round.Submissions[nodeID] = vector.Copy()
	err = c.state.SetRound(c.round)
	if err != nil {
		delete(c.round.Submissions, nodeID)
		return fmt.Errorf("could not persist submission: %w", err)
	}

	c.metrics.DKGResultSubmitted()
	log := c.log.Info().
		Uint64("round", c.round.Counter).
		Hex("node_id", nodeID[:]).
		Int("submissions", len(c.round.Submissions))
	if c.round.Complete() {
		log = log.Bool("complete", true)
	}
	log.Msg("DKG result submitted")
	return nil
}

// EndRound closes the current round. It fails with ErrRoundIncomplete if no
// result vector has crossed the submission threshold; use ForceEndRound to
// close a failed round. Round data remains queryable until the next round
// starts.
func (c *Coordinator) EndRound(admin *Admin) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.checkAdmin(admin)
	if err != nil {
		return err
	}
	if c.round == nil || !c.round.Active {
		return ErrRoundNotActive
	}
	if !c.round.Complete() {
		return fmt.Errorf("round %d: %w", c.round.Counter, ErrRoundIncomplete)
	}
	return c.closeRound()
}

// ForceEndRound closes the current round regardless of completion. It is the
// administrative escape hatch for failed rounds.
func (c *Coordinator) ForceEndRound(admin *Admin) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.checkAdmin(admin)
	if err != nil {
		return err
	}
	if c.round == nil || !c.round.Active {
		return ErrRoundNotActive
	}
	return c.closeRound()
}

// closeRound marks the round inactive and persists it. Callers must hold the
// lock.
func (c *Coordinator) closeRound() error {
	c.round.Active = false
	err := c.state.SetRound(c.round)
	if err != nil {
		c.round.Active = true
		return fmt.Errorf("could not persist round end: %w", err)
	}
	completed := c.round.Complete()
	c.metrics.DKGRoundEnded(completed)
	c.log.Info().
		Uint64("round", c.round.Counter).
		Bool("complete", completed).
		Msg("DKG round ended")
	return nil
}

// ClaimParticipant issues the participant handle for the given node
// identity. Each identity can be claimed exactly once, ever; the claim
// persists across rounds and restarts.
func (c *Coordinator) ClaimParticipant(admin *Admin, nodeID flow.Identifier) (*Participant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.checkAdmin(admin)
	if err != nil {
		return nil, err
	}
	err = c.state.InsertClaim(nodeID)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, fmt.Errorf("node %v: %w", nodeID, ErrAlreadyClaimed)
	}
	if err != nil {
		return nil, fmt.Errorf("could not persist claim: %w", err)
	}

	c.log.Info().Hex("node_id", nodeID[:]).Msg("participant handle claimed")
	return &Participant{nodeID: nodeID}, nil
}

/*~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
Queries
~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~*/

// RoundActive returns whether a round is currently active.
func (c *Coordinator) RoundActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.round != nil && c.round.Active
}

// Registered returns whether the given node is registered for the current
// round.
func (c *Coordinator) Registered(nodeID flow.Identifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.round != nil && c.round.Participants.Contains(nodeID)
}

// Claimed returns whether the participant handle for the given node identity
// has been claimed.
func (c *Coordinator) Claimed(nodeID flow.Identifier) (bool, error) {
	return c.state.HasClaim(nodeID)
}

// Whiteboard returns the whiteboard messages of the current round, in
// posting order, starting at the given index. Clients track their own read
// offset and pass it here to page through the board.
func (c *Coordinator) Whiteboard(fromIndex uint) []messages.WhiteboardMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round == nil || fromIndex >= uint(len(c.round.Whiteboard)) {
		return nil
	}
	board := make([]messages.WhiteboardMessage, len(c.round.Whiteboard)-int(fromIndex))
	copy(board, c.round.Whiteboard[fromIndex:])
	return board
}

// SubmissionFor returns the result vector the given node submitted in the
// current round, or false if it has not submitted.
func (c *Coordinator) SubmissionFor(nodeID flow.Identifier) (messages.ResultVector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round == nil {
		return nil, false
	}
	vector, ok := c.round.Submissions[nodeID]
	if !ok {
		return nil, false
	}
	return vector.Copy(), true
}

// SubmissionTallies returns the aggregate submissions of the current round,
// grouped by distinct result vector.
func (c *Coordinator) SubmissionTallies() []dkg.Tally {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round == nil {
		return nil
	}
	var tallies []dkg.Tally
	for _, tally := range c.round.Tallies() {
		tallies = append(tallies, tally)
	}
	return tallies
}

// Complete returns whether the current round has reached its submission
// threshold. Completion is monotone for the lifetime of the round.
func (c *Coordinator) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.round != nil && c.round.Complete()
}

// CompletedResult returns the result vector that crossed the submission
// threshold in the current round, or false if the round is incomplete.
func (c *Coordinator) CompletedResult() (messages.ResultVector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round == nil {
		return nil, false
	}
	return c.round.CompletedResult()
}

/*~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~*/

// checkAdmin verifies that the given capability is the one this coordinator
// issued.
func (c *Coordinator) checkAdmin(admin *Admin) error {
	if admin == nil || admin.coordinator != c {
		return fmt.Errorf("admin capability: %w", ErrInvalidCapability)
	}
	return nil
}

// checkParticipant verifies a participant operation: the handle's claim must
// exist in the persisted claim set, a round must be active, and the handle's
// node must be registered for it. Returns the node ID on success. Callers
// must hold the lock.
func (c *Coordinator) checkParticipant(participant *Participant) (flow.Identifier, error) {
	if participant == nil {
		return flow.ZeroID, fmt.Errorf("participant handle: %w", ErrInvalidCapability)
	}
	nodeID := participant.nodeID
	claimed, err := c.state.HasClaim(nodeID)
	if err != nil {
		return flow.ZeroID, fmt.Errorf("could not check participant claim: %w", err)
	}
	if !claimed {
		return flow.ZeroID, fmt.Errorf("participant handle for node %v: %w", nodeID, ErrInvalidCapability)
	}
	if c.round == nil || !c.round.Active {
		return flow.ZeroID, ErrRoundNotActive
	}
	if !c.round.Participants.Contains(nodeID) {
		return flow.ZeroID, fmt.Errorf("node %v: %w", nodeID, ErrUnknownParticipant)
	}
	return nodeID, nil
}

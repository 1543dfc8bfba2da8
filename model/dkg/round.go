// Package dkg models the state of one round of the distributed key
// generation protocol: the registered participants, the whiteboard of
// broadcast messages, and the final result submissions.
package dkg

import (
	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/model/messages"
)

// Round is the record of one DKG round. It is replaced wholesale when a new
// round starts; within a round the whiteboard and submission maps only grow.
type Round struct {
	// Counter distinguishes successive rounds, and doubles as the DKG
	// instance ID participants embed in their messages.
	Counter uint64
	// Active is true from round start until the round is ended by the admin.
	Active bool
	// Participants is the set of node IDs registered for this round, fixed
	// at round start.
	Participants flow.IdentifierList
	// Whiteboard is the append-only, ordered list of broadcast messages.
	Whiteboard []messages.WhiteboardMessage
	// Submissions maps each submitter to the result vector it submitted.
	// At most one entry per participant, immutable once set.
	Submissions map[flow.Identifier]messages.ResultVector
}

// NewRound creates an active round with the given participant set.
func NewRound(counter uint64, participants flow.IdentifierList) *Round {
	return &Round{
		Counter:      counter,
		Active:       true,
		Participants: participants,
		Submissions:  make(map[flow.Identifier]messages.ResultVector),
	}
}

// Tally is the aggregate view of one distinct submitted result vector.
type Tally struct {
	Vector     messages.ResultVector
	Submitters flow.IdentifierList
}

// Count returns the number of distinct participants that submitted this
// vector.
func (t Tally) Count() int {
	return len(t.Submitters)
}

// Threshold returns the number of identical submissions that must be
// strictly exceeded for the round to be complete: (N-1)/2 with N the size of
// the registered set.
func (r *Round) Threshold() int {
	return (len(r.Participants) - 1) / 2
}

// Tallies groups the submissions by result vector, keyed by the vector ID.
// Submitters appear in no particular order.
func (r *Round) Tallies() map[flow.Identifier]Tally {
	tallies := make(map[flow.Identifier]Tally)
	for nodeID, vector := range r.Submissions {
		vectorID := vector.ID()
		tally, ok := tallies[vectorID]
		if !ok {
			tally = Tally{Vector: vector}
		}
		tally.Submitters = append(tally.Submitters, nodeID)
		tallies[vectorID] = tally
	}
	return tallies
}

// CompletedResult returns the result vector submitted by strictly more than
// Threshold() distinct participants, if one exists. At most one vector can
// ever cross the threshold within a round.
func (r *Round) CompletedResult() (messages.ResultVector, bool) {
	for _, tally := range r.Tallies() {
		if tally.Count() > r.Threshold() {
			return tally.Vector, true
		}
	}
	return nil, false
}

// Complete returns whether some result vector has crossed the submission
// threshold. Completion is monotone within a round: submissions are never
// removed, so once Complete returns true it remains true until the round is
// replaced.
func (r *Round) Complete() bool {
	_, ok := r.CompletedResult()
	return ok
}

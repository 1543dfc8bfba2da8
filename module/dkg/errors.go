package dkg

import (
	"errors"
)

var (
	// ErrInvalidCapability is returned when a privileged operation is called
	// without the admin capability of this coordinator, or a participant
	// operation is called with a handle the coordinator did not issue.
	ErrInvalidCapability = errors.New("invalid capability")

	// ErrRoundActive is returned when a round is started while the previous
	// round is still active.
	ErrRoundActive = errors.New("round already active")

	// ErrRoundNotActive is returned when a participant operation is called
	// outside an active round.
	ErrRoundNotActive = errors.New("no active round")

	// ErrRoundIncomplete is returned when a round is ended before its
	// submission threshold is reached.
	ErrRoundIncomplete = errors.New("round has not reached submission threshold")

	// ErrInvalidCommittee is returned when a round is started with an empty
	// participant list or one containing duplicates.
	ErrInvalidCommittee = errors.New("invalid participant list")

	// ErrUnknownParticipant is returned when a node that is not registered
	// for the current round posts a message or submits a result.
	ErrUnknownParticipant = errors.New("node not registered for round")

	// ErrAlreadySubmitted is returned when a node submits a second result
	// within the same round.
	ErrAlreadySubmitted = errors.New("node already submitted for round")

	// ErrAlreadyClaimed is returned when a participant handle is claimed a
	// second time for the same node identity.
	ErrAlreadyClaimed = errors.New("participant handle already claimed")
)

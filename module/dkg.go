package module

import (
	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/model/messages"
)

// DKGClient is the interface through which the epoch controller drives the
// lifecycle of the DKG coordinator. It is the contract-to-contract surface;
// participants interact with the coordinator directly through their handles.
type DKGClient interface {

	// StartRound opens a new DKG round with the given participant set,
	// clearing all whiteboard and submission state of the previous round.
	// The participant set must be non-empty and free of duplicates.
	StartRound(participants flow.IdentifierList) error

	// EndRound closes the current round regardless of whether it reached
	// its submission threshold. Round data remains queryable until the next
	// round starts.
	EndRound() error

	// Completed returns the canonical result vector of the current round
	// and true if the round has reached its submission threshold, otherwise
	// nil and false.
	Completed() (messages.ResultVector, bool)
}

// DKGContractClient is the node-side interface for taking part in a DKG
// round: posting opaque protocol messages to the whiteboard, reading them
// back, and submitting the final result.
type DKGContractClient interface {

	// Broadcast posts a message to the whiteboard on behalf of this node.
	// Messages are visible to all participants in the order they were
	// posted.
	Broadcast(content string) error

	// ReadBroadcast reads whiteboard messages, in posting order, starting
	// at the given index.
	ReadBroadcast(fromIndex uint) ([]messages.WhiteboardMessage, error)

	// SubmitResult submits the node's final result vector. A node may
	// submit at most once per round.
	SubmitResult(vector messages.ResultVector) error
}

package storage

import (
	"github.com/onflow/flow-epochs/model/dkg"
	"github.com/onflow/flow-epochs/model/flow"
)

// DKGState persists the state of the DKG coordinator: the current round
// record and the set of node identities for which a participant handle has
// been claimed. Claims outlive rounds.
type DKGState interface {

	// SetRound stores the given round record, replacing any previous round
	// wholesale.
	SetRound(round *dkg.Round) error

	// GetRound returns the stored round record, or ErrNotFound if no round
	// was ever started.
	GetRound() (*dkg.Round, error)

	// InsertClaim marks the participant handle for the given node identity
	// as claimed. It errors with ErrAlreadyExists if the identity was
	// claimed before.
	InsertClaim(nodeID flow.Identifier) error

	// HasClaim returns whether the participant handle for the given node
	// identity has been claimed.
	HasClaim(nodeID flow.Identifier) (bool, error)
}

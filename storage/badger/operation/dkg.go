package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-epochs/model/dkg"
	"github.com/onflow/flow-epochs/model/flow"
)

// UpsertDKGRound stores the round record, replacing any previous round.
func UpsertDKGRound(round *dkg.Round) func(*badger.Txn) error {
	return upsert(makePrefix(codeDKGRound), round)
}

// RetrieveDKGRound retrieves the stored round record.
func RetrieveDKGRound(round *dkg.Round) func(*badger.Txn) error {
	return retrieve(makePrefix(codeDKGRound), round)
}

// InsertDKGClaim marks the participant handle for a node identity as
// claimed. Claims are never removed.
func InsertDKGClaim(nodeID flow.Identifier) func(*badger.Txn) error {
	return insert(makePrefix(codeDKGClaim, nodeID), true)
}

// CheckDKGClaim checks whether the participant handle for a node identity
// has been claimed.
func CheckDKGClaim(nodeID flow.Identifier, claimed *bool) func(*badger.Txn) error {
	return exists(makePrefix(codeDKGClaim, nodeID), claimed)
}

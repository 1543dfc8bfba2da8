package badger

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-epochs/model/dkg"
	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/storage"
	"github.com/onflow/flow-epochs/storage/badger/operation"
)

// DKGState implements storage.DKGState, persisting the current DKG round
// record and the set of claimed participant handles.
type DKGState struct {
	db *badger.DB
}

var _ storage.DKGState = (*DKGState)(nil)

func NewDKGState(db *badger.DB) *DKGState {
	return &DKGState{db: db}
}

func (ds *DKGState) SetRound(round *dkg.Round) error {
	return ds.db.Update(operation.UpsertDKGRound(round))
}

func (ds *DKGState) GetRound() (*dkg.Round, error) {
	var round dkg.Round
	err := ds.db.View(operation.RetrieveDKGRound(&round))
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (ds *DKGState) InsertClaim(nodeID flow.Identifier) error {
	return ds.db.Update(operation.InsertDKGClaim(nodeID))
}

func (ds *DKGState) HasClaim(nodeID flow.Identifier) (bool, error) {
	var claimed bool
	err := ds.db.View(operation.CheckDKGClaim(nodeID, &claimed))
	if err != nil {
		return false, err
	}
	return claimed, nil
}

// Package badger implements the storage interfaces on top of a badger
// key-value database. All writes belonging to one logical operation share a
// single badger transaction, so an operation either fully commits or leaves
// no trace.
package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-epochs/model/epoch"
	"github.com/onflow/flow-epochs/storage"
	"github.com/onflow/flow-epochs/storage/badger/operation"
)

// EpochStates implements storage.EpochStates, persisting the epoch metadata
// history and the current counter.
type EpochStates struct {
	db *badger.DB
}

var _ storage.EpochStates = (*EpochStates)(nil)

func NewEpochStates(db *badger.DB) *EpochStates {
	return &EpochStates{db: db}
}

func (es *EpochStates) Bootstrap(meta *epoch.Metadata) error {
	return es.db.Update(func(tx *badger.Txn) error {
		err := operation.InsertEpochCounter(meta.Counter)(tx)
		if err != nil {
			return fmt.Errorf("could not insert epoch counter: %w", err)
		}
		err = operation.InsertEpochMetadata(meta.Counter, meta)(tx)
		if err != nil {
			return fmt.Errorf("could not insert epoch metadata: %w", err)
		}
		return nil
	})
}

func (es *EpochStates) TransitionToNextEpoch(meta *epoch.Metadata) error {
	return es.db.Update(func(tx *badger.Txn) error {
		err := operation.InsertEpochMetadata(meta.Counter, meta)(tx)
		if err != nil {
			return fmt.Errorf("could not insert epoch metadata: %w", err)
		}
		err = operation.UpdateEpochCounter(meta.Counter)(tx)
		if err != nil {
			return fmt.Errorf("could not update epoch counter: %w", err)
		}
		return nil
	})
}

func (es *EpochStates) UpdateMetadata(meta *epoch.Metadata) error {
	return es.db.Update(operation.UpdateEpochMetadata(meta.Counter, meta))
}

func (es *EpochStates) ByCounter(counter uint64) (*epoch.Metadata, error) {
	var meta epoch.Metadata
	err := es.db.View(operation.RetrieveEpochMetadata(counter, &meta))
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (es *EpochStates) CurrentCounter() (uint64, error) {
	var counter uint64
	err := es.db.View(operation.RetrieveEpochCounter(&counter))
	if err != nil {
		return 0, err
	}
	return counter, nil
}

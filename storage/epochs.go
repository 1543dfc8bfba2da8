package storage

import (
	"github.com/onflow/flow-epochs/model/epoch"
)

// EpochStates persists the append-only history of epoch metadata records,
// keyed by epoch counter, together with the pointer to the current counter.
// The history grows without bound; implementations must keep reads by
// counter independent of history size.
type EpochStates interface {

	// Bootstrap writes the metadata of the first epoch and initializes the
	// current counter to it, in one atomic batch. It errors with
	// ErrAlreadyExists if the instance was bootstrapped before.
	Bootstrap(meta *epoch.Metadata) error

	// TransitionToNextEpoch appends the metadata of the next epoch and
	// advances the current counter to it, in one atomic batch. It errors
	// with ErrAlreadyExists if metadata for that counter was stored before.
	TransitionToNextEpoch(meta *epoch.Metadata) error

	// UpdateMetadata overwrites the stored metadata record with the same
	// counter, to persist phase changes and DKG results. It errors with
	// ErrNotFound if no epoch with that counter exists.
	UpdateMetadata(meta *epoch.Metadata) error

	// ByCounter returns the metadata record for the given epoch counter,
	// or ErrNotFound if the counter never existed.
	ByCounter(counter uint64) (*epoch.Metadata, error)

	// CurrentCounter returns the counter of the epoch that is underway, or
	// ErrNotFound if the instance was never bootstrapped.
	CurrentCounter() (uint64, error)
}

// EpochConfigs persists the singleton mutable epoch configuration.
type EpochConfigs interface {

	// Store writes the initial configuration. It errors with
	// ErrAlreadyExists if a configuration was stored before.
	Store(conf epoch.Config) error

	// Update overwrites the stored configuration. It errors with
	// ErrNotFound if no configuration was stored yet.
	Update(conf epoch.Config) error

	// Retrieve returns the stored configuration, or ErrNotFound.
	Retrieve() (epoch.Config, error)
}

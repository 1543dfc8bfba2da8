// Package events provides helper implementations of the protocol.Consumer
// interface: a fan-out distributor and a no-op consumer to embed in partial
// implementations.
package events

import (
	"sync"

	"github.com/onflow/flow-epochs/model/epoch"
	"github.com/onflow/flow-epochs/state/protocol"
)

// Distributor distributes epoch events to a list of subscribers.
type Distributor struct {
	subscribers []protocol.Consumer
	mu          sync.RWMutex
}

var _ protocol.Consumer = (*Distributor)(nil)

// NewDistributor returns a new events distributor.
func NewDistributor() *Distributor {
	return &Distributor{}
}

// AddConsumer adds a subscriber to the distributor.
func (d *Distributor) AddConsumer(consumer protocol.Consumer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, consumer)
}

func (d *Distributor) EpochTransition(first *epoch.Metadata) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, sub := range d.subscribers {
		sub.EpochTransition(first)
	}
}

func (d *Distributor) EpochSetupPhaseStarted(counter uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, sub := range d.subscribers {
		sub.EpochSetupPhaseStarted(counter)
	}
}

func (d *Distributor) EpochCommittedPhaseStarted(counter uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, sub := range d.subscribers {
		sub.EpochCommittedPhaseStarted(counter)
	}
}

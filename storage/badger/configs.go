package badger

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-epochs/model/epoch"
	"github.com/onflow/flow-epochs/storage"
	"github.com/onflow/flow-epochs/storage/badger/operation"
)

// EpochConfigs implements storage.EpochConfigs, persisting the singleton
// epoch configuration.
type EpochConfigs struct {
	db *badger.DB
}

var _ storage.EpochConfigs = (*EpochConfigs)(nil)

func NewEpochConfigs(db *badger.DB) *EpochConfigs {
	return &EpochConfigs{db: db}
}

func (ec *EpochConfigs) Store(conf epoch.Config) error {
	return ec.db.Update(operation.InsertEpochConfig(conf))
}

func (ec *EpochConfigs) Update(conf epoch.Config) error {
	return ec.db.Update(operation.UpdateEpochConfig(conf))
}

func (ec *EpochConfigs) Retrieve() (epoch.Config, error) {
	var conf epoch.Config
	err := ec.db.View(operation.RetrieveEpochConfig(&conf))
	if err != nil {
		return epoch.Config{}, err
	}
	return conf, nil
}

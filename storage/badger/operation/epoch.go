package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-epochs/model/epoch"
)

func InsertEpochCounter(counter uint64) func(*badger.Txn) error {
	return insert(makePrefix(codeEpochCounter), counter)
}

func UpdateEpochCounter(counter uint64) func(*badger.Txn) error {
	return update(makePrefix(codeEpochCounter), counter)
}

func RetrieveEpochCounter(counter *uint64) func(*badger.Txn) error {
	return retrieve(makePrefix(codeEpochCounter), counter)
}

func InsertEpochMetadata(counter uint64, meta *epoch.Metadata) func(*badger.Txn) error {
	return insert(makePrefix(codeEpochMetadata, counter), meta)
}

func UpdateEpochMetadata(counter uint64, meta *epoch.Metadata) func(*badger.Txn) error {
	return update(makePrefix(codeEpochMetadata, counter), meta)
}

func RetrieveEpochMetadata(counter uint64, meta *epoch.Metadata) func(*badger.Txn) error {
	return retrieve(makePrefix(codeEpochMetadata, counter), meta)
}

func InsertEpochConfig(conf epoch.Config) func(*badger.Txn) error {
	return insert(makePrefix(codeEpochConfig), conf)
}

func UpdateEpochConfig(conf epoch.Config) func(*badger.Txn) error {
	return update(makePrefix(codeEpochConfig), conf)
}

func RetrieveEpochConfig(conf *epoch.Config) func(*badger.Txn) error {
	return retrieve(makePrefix(codeEpochConfig), conf)
}

package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/onflow/flow-epochs/model/flow"
)

const (

	// codes for epoch controller state
	codeEpochCounter  = 1 // current epoch counter
	codeEpochMetadata = 2 // epoch metadata history, keyed by counter
	codeEpochConfig   = 3 // singleton epoch configuration

	// codes for DKG coordinator state
	codeDKGRound = 10 // current round record, replaced wholesale
	codeDKGClaim = 11 // claimed participant handles, keyed by node ID
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, keyToBinary(key)...)
	}
	return prefix
}

func keyToBinary(v interface{}) []byte {
	switch i := v.(type) {
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case flow.Identifier:
		return i[:]
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}

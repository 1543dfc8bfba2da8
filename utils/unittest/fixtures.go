package unittest

import (
	crand "crypto/rand"
	"fmt"
	"math/rand"

	"github.com/onflow/flow-epochs/model/epoch"
	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/model/messages"
)

func IdentifierFixture() flow.Identifier {
	var id flow.Identifier
	_, _ = crand.Read(id[:])
	return id
}

func IdentifierListFixture(n int) flow.IdentifierList {
	list := make(flow.IdentifierList, n)
	for i := 0; i < n; i++ {
		list[i] = IdentifierFixture()
	}
	return list
}

// EpochConfigFixture returns a small valid epoch configuration, so that
// tests can cross phase boundaries with low view numbers.
func EpochConfigFixture(opts ...func(*epoch.Config)) epoch.Config {
	conf := epoch.Config{
		NumViewsInEpoch:              300,
		NumViewsInStakingAuction:     100,
		NumViewsInDKGPhase:           50,
		NumCollectorClusters:         2,
		FLOWSupplyIncreasePercentage: 0.05,
	}
	for _, apply := range opts {
		apply(&conf)
	}
	return conf
}

func EpochMetadataFixture(counter uint64, firstView uint64) *epoch.Metadata {
	meta, err := epoch.NewMetadata(counter, firstView, EpochConfigFixture())
	if err != nil {
		panic(err)
	}
	return meta
}

// ResultVectorFixture returns a result vector with n random entries.
func ResultVectorFixture(n int) messages.ResultVector {
	vector := make(messages.ResultVector, 0, n)
	for i := 0; i < n; i++ {
		vector = append(vector, fmt.Sprintf("pubkey-%x", rand.Uint64()))
	}
	return vector
}

// WhiteboardMessageFixture returns a whiteboard message from a random node.
func WhiteboardMessageFixture() messages.WhiteboardMessage {
	return messages.NewWhiteboardMessage(
		IdentifierFixture(),
		fmt.Sprintf("dkg-payload-%x", rand.Uint64()),
	)
}

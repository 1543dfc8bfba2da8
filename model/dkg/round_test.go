package dkg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-epochs/model/dkg"
	"github.com/onflow/flow-epochs/model/messages"
	"github.com/onflow/flow-epochs/utils/unittest"
)

func TestThreshold(t *testing.T) {
	for _, tc := range []struct {
		participants int
		threshold    int
	}{
		{1, 0},
		{2, 0},
		{3, 1},
		{5, 2},
		{10, 4},
	} {
		round := dkg.NewRound(0, unittest.IdentifierListFixture(tc.participants))
		assert.Equal(t, tc.threshold, round.Threshold())
	}
}

func TestCompletedResult(t *testing.T) {
	participants := unittest.IdentifierListFixture(5)
	round := dkg.NewRound(0, participants)

	v1 := unittest.ResultVectorFixture(3)
	v2 := unittest.ResultVectorFixture(3)

	// threshold for N=5 is 2, so 3 identical submissions complete the round
	round.Submissions[participants[0]] = v1
	round.Submissions[participants[1]] = v1
	round.Submissions[participants[3]] = v2
	assert.False(t, round.Complete())

	round.Submissions[participants[2]] = v1
	require.True(t, round.Complete())
	result, ok := round.CompletedResult()
	require.True(t, ok)
	assert.Equal(t, v1, result)

	// a straggler submission after completion still tallies
	round.Submissions[participants[4]] = v1
	tallies := round.Tallies()
	assert.Len(t, tallies, 2)
	assert.Equal(t, 4, tallies[v1.ID()].Count())
	assert.Equal(t, 1, tallies[v2.ID()].Count())
}

// Equal vectors must share a tally even when submitted as distinct slices,
// and distinct vectors must never collide.
func TestVectorIdentity(t *testing.T) {
	v := unittest.ResultVectorFixture(4)
	assert.Equal(t, v.ID(), v.Copy().ID())

	w := v.Copy()
	w[0] = w[0] + "x"
	assert.NotEqual(t, v.ID(), w.ID())

	// length-prefixed encoding keeps ["ab","c"] and ["a","bc"] apart
	assert.NotEqual(t,
		messages.ResultVector{"ab", "c"}.ID(),
		messages.ResultVector{"a", "bc"}.ID(),
	)
}

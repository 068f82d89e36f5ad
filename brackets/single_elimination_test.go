package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGenerator(seed int64) *SingleElimination {
	return NewSingleElimination(rand.New(rand.NewSource(seed)))
}

func TestSeedRound1EvenCount(t *testing.T) {
	g := fixedGenerator(1)
	teamIDs := []int{10, 20, 30, 40, 50, 60}

	pairings := g.SeedRound1(teamIDs)

	require.Len(t, pairings, 3)

	seen := make(map[int]bool)
	for _, p := range pairings {
		require.False(t, p.IsBye(), "even team count must not produce byes")
		seen[p.TeamA] = true
		seen[*p.TeamB] = true
	}
	assert.Len(t, seen, len(teamIDs), "every team must appear exactly once")
	for _, id := range teamIDs {
		assert.True(t, seen[id], "team %d missing from round 1", id)
	}
}

func TestSeedRound1OddCountGetsOneBye(t *testing.T) {
	g := fixedGenerator(2)
	teamIDs := []int{1, 2, 3, 4, 5}

	pairings := g.SeedRound1(teamIDs)

	require.Len(t, pairings, 3)

	byes := 0
	for _, p := range pairings {
		if p.IsBye() {
			byes++
			require.NotNil(t, p.Winner())
			assert.Equal(t, p.TeamA, *p.Winner(), "bye winner must be the lone team")
		} else {
			assert.Nil(t, p.Winner(), "real pairings start undecided")
		}
	}
	assert.Equal(t, 1, byes)
	assert.True(t, pairings[len(pairings)-1].IsBye(), "the bye is the trailing slot")
}

func TestSeedRound1Degenerate(t *testing.T) {
	g := fixedGenerator(3)

	assert.Empty(t, g.SeedRound1(nil))
	assert.Empty(t, g.SeedRound1([]int{}))

	pairings := g.SeedRound1([]int{7})
	require.Len(t, pairings, 1)
	assert.True(t, pairings[0].IsBye())
	assert.Equal(t, 7, pairings[0].TeamA)
}

func TestSeedRound1DoesNotMutateInput(t *testing.T) {
	g := fixedGenerator(4)
	teamIDs := []int{1, 2, 3, 4}

	g.SeedRound1(teamIDs)

	assert.Equal(t, []int{1, 2, 3, 4}, teamIDs)
}

func TestSeedRound1ShuffleIsRoughlyUniform(t *testing.T) {
	g := fixedGenerator(42)
	teamIDs := []int{1, 2, 3, 4, 5}

	// With five teams the trailing slot is a bye. Under a uniform shuffle
	// every team should land there about 1/5 of the time.
	const iterations = 5000
	byeCounts := make(map[int]int)
	for i := 0; i < iterations; i++ {
		pairings := g.SeedRound1(teamIDs)
		bye := pairings[len(pairings)-1]
		byeCounts[bye.TeamA]++
	}

	require.Len(t, byeCounts, len(teamIDs), "every team must draw the bye eventually")
	expected := iterations / len(teamIDs)
	for id, count := range byeCounts {
		assert.InDelta(t, expected, count, float64(expected)*0.2,
			"team %d drew the bye %d times, expected around %d", id, count, expected)
	}
}

func TestPairWinnersPreservesOrder(t *testing.T) {
	g := fixedGenerator(5)

	pairings := g.PairWinners([]int{9, 4, 7, 2})

	require.Len(t, pairings, 2)
	assert.Equal(t, 9, pairings[0].TeamA)
	assert.Equal(t, 4, *pairings[0].TeamB)
	assert.Equal(t, 7, pairings[1].TeamA)
	assert.Equal(t, 2, *pairings[1].TeamB)
}

func TestPairWinnersOddCount(t *testing.T) {
	g := fixedGenerator(6)

	pairings := g.PairWinners([]int{3, 1, 8})

	require.Len(t, pairings, 2)
	assert.False(t, pairings[0].IsBye())
	require.True(t, pairings[1].IsBye())
	assert.Equal(t, 8, pairings[1].TeamA)
}

func TestPairWinnersFinished(t *testing.T) {
	g := fixedGenerator(7)

	assert.Nil(t, g.PairWinners([]int{5}), "a single winner means the bracket is done")
	assert.Nil(t, g.PairWinners(nil))
}

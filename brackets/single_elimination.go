package brackets

import (
	"math/rand"
	"time"
)

// Pairing is one seeded slot of a round. TeamB is nil for a bye, in which
// case TeamA advances without play.
type Pairing struct {
	TeamA int
	TeamB *int
}

func (p Pairing) IsBye() bool {
	return p.TeamB == nil
}

// Winner returns the pre-decided winner for a bye, nil for a real pairing.
func (p Pairing) Winner() *int {
	if p.TeamB == nil {
		w := p.TeamA
		return &w
	}
	return nil
}

type SingleElimination struct {
	rng *rand.Rand
}

// NewSingleElimination returns a generator backed by rng. Pass nil for a
// time-seeded source; tests pass a fixed seed.
func NewSingleElimination(rng *rand.Rand) *SingleElimination {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SingleElimination{rng: rng}
}

// SeedRound1 produces the round-1 pairings for an unordered team list:
// a uniform shuffle followed by walking the result two at a time. An odd
// trailing team becomes a bye. Zero teams seed no matches, a single team
// seeds one bye.
func (g *SingleElimination) SeedRound1(teamIDs []int) []Pairing {
	shuffled := make([]int, len(teamIDs))
	copy(shuffled, teamIDs)
	g.shuffle(shuffled)
	return pairSequential(shuffled)
}

// PairWinners seeds the next round from the previous round's winners. The
// order is preserved, never re-shuffled: bracket continuity depends on it.
// Fewer than two winners yield no pairings (the bracket is finished).
func (g *SingleElimination) PairWinners(winnerIDs []int) []Pairing {
	if len(winnerIDs) < 2 {
		return nil
	}
	return pairSequential(winnerIDs)
}

// shuffle is Fisher–Yates. A comparator-based shuffle is biased, this one
// is uniform over all permutations.
func (g *SingleElimination) shuffle(ids []int) {
	for i := len(ids) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

func pairSequential(ids []int) []Pairing {
	pairings := make([]Pairing, 0, (len(ids)+1)/2)
	for i := 0; i < len(ids); i += 2 {
		p := Pairing{TeamA: ids[i]}
		if i+1 < len(ids) {
			b := ids[i+1]
			p.TeamB = &b
		}
		pairings = append(pairings, p)
	}
	return pairings
}

package advisor

import (
	"context"
	rand "math/rand/v2"
	"sync"

	"github.com/lox/liarsbar/internal/game"
)

// Honest plays matching cards when it has them, bluffs a single card when
// it does not, and challenges claims that look unlikely given its own hand.
type Honest struct {
	mu  sync.Mutex
	rng *rand.Rand
	// BluffChallenge is the chance of challenging a claim that is not
	// implausible.
	BluffChallenge float64
}

// NewHonest creates an Honest advisor.
func NewHonest(rng *rand.Rand) *Honest {
	return &Honest{rng: rng, BluffChallenge: 0.2}
}

func (h *Honest) Decide(_ context.Context, v game.View) (game.Decision, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var matching, other []int
	for i, c := range v.Hand {
		if c.Matches(v.MainRank) {
			matching = append(matching, i+1)
		} else {
			other = append(other, i+1)
		}
	}

	if v.Claim != nil && h.doubts(v, len(matching)) {
		return game.Decision{Action: game.ActionChallenge, Reasoning: "claim looks unlikely"}, nil
	}
	if len(v.Hand) == 0 {
		return game.Decision{Action: game.ActionWait, Reasoning: "empty hand"}, nil
	}
	if len(matching) > 0 {
		n := min(len(matching), v.MaxPlayCards)
		return game.Decision{Action: game.ActionPlay, Indices: matching[:n], Reasoning: "playing true cards"}, nil
	}
	return game.Decision{
		Action:    game.ActionPlay,
		Indices:   []int{other[h.rng.IntN(len(other))]},
		Reasoning: "forced bluff",
	}, nil
}

// doubts reports whether the pending claim should be challenged.
func (h *Honest) doubts(v game.View, held int) bool {
	if len(v.Hand) == 0 {
		return h.rng.Float64() < 0.5
	}
	// Holding most of the matching cards makes a large claim unlikely.
	if held >= 3 && v.Claim.Quantity >= 2 {
		return true
	}
	return h.rng.Float64() < h.BluffChallenge
}

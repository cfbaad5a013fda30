package advisor

import (
	"context"
	rand "math/rand/v2"
	"sync"

	"github.com/lox/liarsbar/internal/game"
)

// Random makes a legal move without looking at anything but the viewer's
// hand and the pending claim. It is the fallback when a smarter advisor
// fails.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a Random advisor.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

// Decide never fails.
func (r *Random) Decide(_ context.Context, v game.View) (game.Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RandomMove(r.rng, v), nil
}

// RandomMove picks a legal move for v:
//   - with an empty hand, wait, or challenge a pending claim half the time
//   - facing a claim, challenge 40% of the time
//   - otherwise play one random card
func RandomMove(rng *rand.Rand, v game.View) game.Decision {
	if len(v.Hand) == 0 {
		if v.Claim != nil && rng.IntN(2) == 0 {
			return game.Decision{Action: game.ActionChallenge, Reasoning: "random challenge"}
		}
		return game.Decision{Action: game.ActionWait, Reasoning: "nothing to play"}
	}
	if v.Claim != nil && rng.Float64() < 0.4 {
		return game.Decision{Action: game.ActionChallenge, Reasoning: "random challenge"}
	}
	return game.Decision{
		Action:    game.ActionPlay,
		Indices:   []int{1 + rng.IntN(len(v.Hand))},
		Reasoning: "random card",
	}
}

package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/liarsbar/internal/card"
)

// guaranteedQualifying is how many main-rank or Joker cards every hand is
// dealt at minimum.
const guaranteedQualifying = 2

// Deal splits deck into hands for ids under the guaranteed rule: each player
// first gets two cards that are the main rank or a Joker (main rank
// preferred), then hands are filled to handSize from what is left and
// shuffled. The deck is not modified; the undealt cards are returned as
// remainder.
//
// Deal fails without dealing anything if the deck holds too few qualifying
// cards for every player.
func Deal(rng *rand.Rand, deck []card.Rank, main card.Rank, ids []string, handSize int) (map[string][]card.Rank, []card.Rank, error) {
	pool := make([]card.Rank, len(deck))
	copy(pool, deck)

	available := card.Count(pool, main) + card.Count(pool, card.Joker)
	if need := guaranteedQualifying * len(ids); available < need {
		return nil, nil, fmt.Errorf("deck holds %d %s/Joker cards, %d players need %d", available, main, len(ids), need)
	}

	hands := make(map[string][]card.Rank, len(ids))
	for _, id := range ids {
		hand := make([]card.Rank, 0, handSize)
		for _, want := range []card.Rank{main, card.Joker} {
			for len(hand) < guaranteedQualifying {
				i := indexOf(pool, want)
				if i < 0 {
					break
				}
				hand = append(hand, pool[i])
				pool = append(pool[:i], pool[i+1:]...)
			}
		}
		if len(hand) < guaranteedQualifying {
			return nil, nil, fmt.Errorf("could not give %s %d %s/Joker cards", id, guaranteedQualifying, main)
		}
		hands[id] = hand
	}

	for _, id := range ids {
		hand := hands[id]
		take := min(handSize-len(hand), len(pool))
		hand = append(hand, pool[:take]...)
		pool = pool[take:]
		card.Shuffle(rng, hand)
		hands[id] = hand
	}

	return hands, pool, nil
}

func indexOf(cards []card.Rank, r card.Rank) int {
	for i, c := range cards {
		if c == r {
			return i
		}
	}
	return -1
}

package card

import rand "math/rand/v2"

// minCopiesFloor keeps small tables from getting a deck too thin to run the
// guaranteed deal.
const minCopiesFloor = 5

// Spec sizes a deck for a number of active players.
type Spec struct {
	Players      int
	HandSize     int
	MaxPlayCards int
	BaseRanks    []Rank
}

// JokerCount returns ceil(players/2).
func (s Spec) JokerCount() int {
	if s.Players <= 0 {
		return 0
	}
	return (s.Players + 1) / 2
}

// CopiesPerRank returns how many copies of each base rank go in the deck:
// enough to cover every hand, never fewer than max(5, 2*MaxPlayCards).
func (s Spec) CopiesPerRank() int {
	if len(s.BaseRanks) == 0 {
		return 0
	}
	needed := s.Players*s.HandSize - s.JokerCount()
	if needed < 0 {
		needed = 0
	}
	perRank := (needed + len(s.BaseRanks) - 1) / len(s.BaseRanks)
	return max(perRank, max(minCopiesFloor, 2*s.MaxPlayCards))
}

// Size returns the number of cards Build will produce.
func (s Spec) Size() int {
	return s.CopiesPerRank()*len(s.BaseRanks) + s.JokerCount()
}

// Build returns a freshly shuffled deck. It never fails; a spec with no
// players yields an empty deck.
func Build(rng *rand.Rand, s Spec) []Rank {
	if s.Players <= 0 {
		return nil
	}

	copies := s.CopiesPerRank()
	jokers := s.JokerCount()
	deck := make([]Rank, 0, s.Size())
	for _, r := range s.BaseRanks {
		for i := 0; i < copies; i++ {
			deck = append(deck, r)
		}
	}
	for i := 0; i < jokers; i++ {
		deck = append(deck, Joker)
	}

	Shuffle(rng, deck)
	return deck
}

// Shuffle randomizes cards in place.
func Shuffle(rng *rand.Rand, cards []Rank) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

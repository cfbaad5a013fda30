package game

import (
	"fmt"

	"github.com/lox/liarsbar/internal/card"
)

// Rules is the fixed configuration of a table. It is read at start and at
// every reshuffle and never changes mid-game.
type Rules struct {
	MinPlayers   int
	MaxPlayers   int
	HandSize     int
	MaxPlayCards int
	Chambers     int
	LiveRounds   int
	BaseRanks    []card.Rank
}

// DefaultRules returns the standard table: 2-8 players, five-card hands,
// up to three cards per play and a six-chamber revolver with three live
// rounds.
func DefaultRules() Rules {
	ranks := make([]card.Rank, len(card.DefaultBaseRanks))
	copy(ranks, card.DefaultBaseRanks)
	return Rules{
		MinPlayers:   2,
		MaxPlayers:   8,
		HandSize:     5,
		MaxPlayCards: 3,
		Chambers:     6,
		LiveRounds:   3,
		BaseRanks:    ranks,
	}
}

// Validate reports the first problem with r.
func (r Rules) Validate() error {
	if r.MinPlayers < 2 {
		return fmt.Errorf("min players must be at least 2, got %d", r.MinPlayers)
	}
	if r.MaxPlayers < r.MinPlayers {
		return fmt.Errorf("max players (%d) must not be below min players (%d)", r.MaxPlayers, r.MinPlayers)
	}
	if r.HandSize < 2 {
		return fmt.Errorf("hand size must be at least 2, got %d", r.HandSize)
	}
	if r.MaxPlayCards < 1 {
		return fmt.Errorf("max play cards must be at least 1, got %d", r.MaxPlayCards)
	}
	if r.Chambers < 2 {
		return fmt.Errorf("revolver needs at least 2 chambers, got %d", r.Chambers)
	}
	if r.LiveRounds < 1 || r.LiveRounds >= r.Chambers {
		return fmt.Errorf("live rounds must be between 1 and %d, got %d", r.Chambers-1, r.LiveRounds)
	}
	if len(r.BaseRanks) == 0 {
		return fmt.Errorf("at least one base rank is required")
	}
	seen := make(map[card.Rank]bool, len(r.BaseRanks))
	for _, rank := range r.BaseRanks {
		if rank == "" || rank.IsJoker() {
			return fmt.Errorf("invalid base rank %q", rank)
		}
		if seen[rank] {
			return fmt.Errorf("duplicate base rank %q", rank)
		}
		seen[rank] = true
	}
	// Every table size must be able to give each player two main-rank or
	// Joker cards; the deck size depends only on the player count.
	for n := r.MinPlayers; n <= r.MaxPlayers; n++ {
		s := r.deckSpec(n)
		if have := s.CopiesPerRank() + s.JokerCount(); have < 2*n {
			return fmt.Errorf("a %d-player deck holds %d cards of a main rank or Joker, %d are needed", n, have, 2*n)
		}
	}
	return nil
}

func (r Rules) deckSpec(players int) card.Spec {
	return card.Spec{
		Players:      players,
		HandSize:     r.HandSize,
		MaxPlayCards: r.MaxPlayCards,
		BaseRanks:    r.BaseRanks,
	}
}

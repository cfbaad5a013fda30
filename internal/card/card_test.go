package card

import (
	"testing"

	"github.com/lox/liarsbar/internal/randutil"
)

func TestSpecSizing(t *testing.T) {
	tests := []struct {
		name    string
		players int
		copies  int
		jokers  int
		size    int
	}{
		{name: "heads up uses the floor", players: 2, copies: 6, jokers: 1, size: 19},
		{name: "three players", players: 3, copies: 6, jokers: 2, size: 20},
		{name: "five players", players: 5, copies: 8, jokers: 3, size: 27},
		{name: "full table", players: 8, copies: 12, jokers: 4, size: 40},
		{name: "no players", players: 0, copies: 6, jokers: 0, size: 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Spec{Players: tt.players, HandSize: 5, MaxPlayCards: 3, BaseRanks: DefaultBaseRanks}
			if got := s.CopiesPerRank(); got != tt.copies {
				t.Errorf("CopiesPerRank() = %d, want %d", got, tt.copies)
			}
			if got := s.JokerCount(); got != tt.jokers {
				t.Errorf("JokerCount() = %d, want %d", got, tt.jokers)
			}
			if got := s.Size(); got != tt.size {
				t.Errorf("Size() = %d, want %d", got, tt.size)
			}
		})
	}
}

func TestBuildComposition(t *testing.T) {
	rng := randutil.New(1)
	for players := 1; players <= 10; players++ {
		s := Spec{Players: players, HandSize: 5, MaxPlayCards: 3, BaseRanks: DefaultBaseRanks}
		deck := Build(rng, s)

		if len(deck) != s.Size() {
			t.Fatalf("players=%d: deck has %d cards, want %d", players, len(deck), s.Size())
		}
		if len(deck) < players*s.HandSize {
			t.Errorf("players=%d: deck of %d cannot fill every hand", players, len(deck))
		}
		for _, r := range s.BaseRanks {
			if got := Count(deck, r); got != s.CopiesPerRank() {
				t.Errorf("players=%d: %d copies of %s, want %d", players, got, r, s.CopiesPerRank())
			}
		}
		if got := Count(deck, Joker); got != s.JokerCount() {
			t.Errorf("players=%d: %d jokers, want %d", players, got, s.JokerCount())
		}
	}
}

func TestBuildWithoutPlayers(t *testing.T) {
	if deck := Build(randutil.New(1), Spec{BaseRanks: DefaultBaseRanks}); len(deck) != 0 {
		t.Errorf("expected empty deck, got %d cards", len(deck))
	}
}

func TestMatches(t *testing.T) {
	if !Rank("A").Matches("A") || !Joker.Matches("K") {
		t.Error("main rank and joker should match")
	}
	if Rank("Q").Matches("A") {
		t.Error("Q should not match main rank A")
	}
	if !AllMatch([]Rank{"K", Joker, "K"}, "K") {
		t.Error("K, Joker, K is a truthful K claim")
	}
	if AllMatch([]Rank{"K", "Q"}, "K") {
		t.Error("a single off-rank card makes the claim a lie")
	}
}

func TestFormat(t *testing.T) {
	if got := Format([]Rank{"A", Joker, "Q"}); got != "[1]A [2]Joker [3]Q" {
		t.Errorf("Format() = %q", got)
	}
	if got := Format(nil); got != "(empty)" {
		t.Errorf("Format(nil) = %q", got)
	}
}

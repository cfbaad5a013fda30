// Package card defines the card tokens used at the table and builds the
// procedurally sized stock that every hand is dealt from.
package card

import (
	"strconv"
	"strings"
)

// Rank is a card token. Base ranks are short strings such as "A"; the only
// non-base token is Joker.
type Rank string

// Joker is the wildcard. It counts as the main rank for every claim.
const Joker Rank = "Joker"

// DefaultBaseRanks are the ranks a main rank is drawn from.
var DefaultBaseRanks = []Rank{"A", "K", "Q"}

// String returns the token.
func (r Rank) String() string {
	return string(r)
}

// IsJoker reports whether r is the wildcard.
func (r Rank) IsJoker() bool {
	return r == Joker
}

// Matches reports whether r backs up a claim made against main.
func (r Rank) Matches(main Rank) bool {
	return r == main || r == Joker
}

// AllMatch reports whether every card in cards matches main. An empty
// slice matches trivially.
func AllMatch(cards []Rank, main Rank) bool {
	for _, c := range cards {
		if !c.Matches(main) {
			return false
		}
	}
	return true
}

// Count returns how many cards in cards equal r.
func Count(cards []Rank, r Rank) int {
	n := 0
	for _, c := range cards {
		if c == r {
			n++
		}
	}
	return n
}

// Format renders a hand the way players refer to it, with 1-based
// positions: "[1]A [2]Joker [3]Q".
func Format(hand []Rank) string {
	if len(hand) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	for i, c := range hand {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte(']')
		b.WriteString(string(c))
	}
	return b.String()
}

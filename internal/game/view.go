package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/lox/liarsbar/internal/card"
)

// Action is one of the three moves a player can make.
type Action string

const (
	ActionPlay      Action = "play"
	ActionChallenge Action = "challenge"
	ActionWait      Action = "wait"
)

// Decision is a chosen move. Indices are 1-based hand positions and are
// only used by play.
type Decision struct {
	Action    Action `json:"action"`
	Indices   []int  `json:"indices,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// String returns a short human readable form of the decision
func (d Decision) String() string {
	if d.Action == ActionPlay {
		return fmt.Sprintf("play %v", d.Indices)
	}
	return string(d.Action)
}

// ClaimView is the public part of a pending claim.
type ClaimView struct {
	Player   PlayerRef `json:"player"`
	Quantity int       `json:"quantity"`
}

// ChatLine is one recent table message, oldest first in a View.
type ChatLine struct {
	Name string    `json:"name"`
	Text string    `json:"text"`
	At   time.Time `json:"timestamp"`
}

// View is a read-only snapshot of a game as seen by one player: their own
// hand, everyone else's hand count. It is safe to hand to code running
// outside the table lock.
type View struct {
	Phase        Phase        `json:"phase"`
	Round        int          `json:"round"`
	MainRank     card.Rank    `json:"main_rank,omitempty"`
	Current      *PlayerRef   `json:"current,omitempty"`
	MaxPlayCards int          `json:"max_play_cards"`
	Players      []SeatStatus `json:"players"`
	Claim        *ClaimView   `json:"claim,omitempty"`
	DiscardCount int          `json:"discard_count"`
	You          *PlayerRef   `json:"you,omitempty"`
	Hand         []card.Rank  `json:"hand,omitempty"`
	RecentChat   []ChatLine   `json:"recent_chat,omitempty"`
}

// IsTurn reports whether the viewer is the player to act.
func (v View) IsTurn() bool {
	return v.Phase == Playing && v.You != nil && v.Current != nil && v.Current.ID == v.You.ID
}

// LegalActions lists the actions the viewer could take if it were their
// turn.
func (v View) LegalActions() []Action {
	var actions []Action
	if len(v.Hand) > 0 {
		actions = append(actions, ActionPlay)
	} else {
		actions = append(actions, ActionWait)
	}
	if v.Claim != nil {
		actions = append(actions, ActionChallenge)
	}
	return actions
}

// Check validates d against the snapshot with the same rules the game
// applies. A nil result does not guarantee the game will accept d, since
// the game may have moved on.
func (v View) Check(d Decision) error {
	switch d.Action {
	case ActionPlay:
		if len(v.Hand) == 0 {
			return ErrEmptyHand
		}
		return validateIndices(d.Indices, len(v.Hand), v.MaxPlayCards)
	case ActionChallenge:
		if v.Claim == nil {
			return ErrNoChallengeTarget
		}
		return nil
	case ActionWait:
		if len(v.Hand) > 0 {
			return ErrHandNotEmpty
		}
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, d.Action)
	}
}

// validateIndices checks count, then duplicates, then range.
func validateIndices(indices []int, handSize, maxPlay int) error {
	if len(indices) < 1 || len(indices) > maxPlay {
		return &PlayCountError{Got: len(indices), Max: maxPlay}
	}

	seen := make(map[int]bool, len(indices))
	var dups []int
	for _, i := range indices {
		if seen[i] && !slices.Contains(dups, i) {
			dups = append(dups, i)
		}
		seen[i] = true
	}
	if len(dups) > 0 {
		return &InvalidIndicesError{Indices: indices, Duplicates: dups, HandSize: handSize}
	}

	var bad []int
	for _, i := range indices {
		if i < 1 || i > handSize {
			bad = append(bad, i)
		}
	}
	if len(bad) > 0 {
		return &InvalidIndicesError{Indices: bad, HandSize: handSize}
	}
	return nil
}

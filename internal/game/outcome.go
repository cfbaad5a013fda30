package game

import (
	"time"

	"github.com/lox/liarsbar/internal/card"
	"github.com/lox/liarsbar/internal/revolver"
)

// OutcomeKind tags an outcome record.
type OutcomeKind string

const (
	KindJoin      OutcomeKind = "join"
	KindStart     OutcomeKind = "start"
	KindPlay      OutcomeKind = "play"
	KindChallenge OutcomeKind = "challenge"
	KindWait      OutcomeKind = "wait"
	KindReshuffle OutcomeKind = "reshuffle"
	KindGameEnd   OutcomeKind = "game_end"
)

// String returns the string representation of the kind
func (k OutcomeKind) String() string {
	return string(k)
}

// Outcome is the record produced by every state change. The concrete types
// are JoinOutcome, StartOutcome, PlayOutcome, ChallengeOutcome, WaitOutcome,
// ReshuffleOutcome and GameEndOutcome.
type Outcome interface {
	Kind() OutcomeKind
	Timestamp() time.Time
}

// ReshuffleTrigger says why a new hand was dealt mid-game.
type ReshuffleTrigger string

const (
	TriggerElimination ReshuffleTrigger = "elimination"
	TriggerHandsEmpty  ReshuffleTrigger = "hands_empty"
)

// EndReason says why the game ended.
type EndReason string

const (
	// EndLastStanding is the normal finish: one player left.
	EndLastStanding EndReason = "last_player_standing"
	// EndForced is a ForceEnd call.
	EndForced EndReason = "forced"
	// EndAnomaly means an integrity failure stopped the game.
	EndAnomaly EndReason = "anomaly"
)

// HandSnapshot is one player's private view of their hand. It is never part
// of a public outcome encoding.
type HandSnapshot struct {
	Player   PlayerRef   `json:"player"`
	Hand     []card.Rank `json:"hand"`
	MainRank card.Rank   `json:"main_rank"`
}

// SeatStatus is the public state of one seat.
type SeatStatus struct {
	Player     PlayerRef `json:"player"`
	Bot        bool      `json:"bot,omitempty"`
	Eliminated bool      `json:"eliminated"`
	HandCount  int       `json:"hand_count"`
}

// AcceptedClaim is a claim that was accepted without challenge; its cards
// went to the discard pile unseen.
type AcceptedClaim struct {
	Player   PlayerRef `json:"player"`
	Quantity int       `json:"quantity"`
}

// Resolution describes what happened after an action: who acts next, or
// the reshuffle or game end the action caused.
type Resolution struct {
	Next          *PlayerRef        `json:"next,omitempty"`
	NextHandEmpty bool              `json:"next_hand_empty,omitempty"`
	Reshuffle     *ReshuffleOutcome `json:"reshuffle,omitempty"`
	End           *GameEndOutcome   `json:"end,omitempty"`
}

// Reshuffled reports whether the action triggered a new deal.
func (r Resolution) Reshuffled() bool { return r.Reshuffle != nil }

// Ended reports whether the action ended the game.
func (r Resolution) Ended() bool { return r.End != nil }

// JoinOutcome is produced when a player sits down.
type JoinOutcome struct {
	Player  PlayerRef `json:"player"`
	Bot     bool      `json:"bot,omitempty"`
	Players int       `json:"players"`
	At      time.Time `json:"timestamp"`
}

func (o *JoinOutcome) Kind() OutcomeKind    { return KindJoin }
func (o *JoinOutcome) Timestamp() time.Time { return o.At }

// StartOutcome is produced when the first hand is dealt.
type StartOutcome struct {
	MainRank  card.Rank      `json:"main_rank"`
	First     PlayerRef      `json:"first"`
	TurnOrder []SeatStatus   `json:"turn_order"`
	DeckSize  int            `json:"deck_size"`
	Hands     []HandSnapshot `json:"-"`
	At        time.Time      `json:"timestamp"`
}

func (o *StartOutcome) Kind() OutcomeKind    { return KindStart }
func (o *StartOutcome) Timestamp() time.Time { return o.At }

// PlayOutcome is produced by Play. The played cards stay hidden.
type PlayOutcome struct {
	Player    PlayerRef      `json:"player"`
	Quantity  int            `json:"quantity"`
	HandLeft  int            `json:"hand_left"`
	Accepted  *AcceptedClaim `json:"accepted,omitempty"`
	Hands     []HandSnapshot `json:"-"`
	At        time.Time      `json:"timestamp"`
	Resolution
}

func (o *PlayOutcome) Kind() OutcomeKind    { return KindPlay }
func (o *PlayOutcome) Timestamp() time.Time { return o.At }

// Shot is one trigger pull.
type Shot struct {
	Player  PlayerRef       `json:"player"`
	Result  revolver.Result `json:"result"`
	Chamber int             `json:"chamber"`
}

// ChallengeOutcome is produced by Challenge.
type ChallengeOutcome struct {
	Challenger PlayerRef   `json:"challenger"`
	Claimant   PlayerRef   `json:"claimant"`
	Quantity   int         `json:"quantity"`
	Revealed   []card.Rank `json:"revealed"`
	MainRank   card.Rank   `json:"main_rank"`
	Truthful   bool        `json:"truthful"`
	Loser      PlayerRef   `json:"loser"`
	Shot       Shot        `json:"shot"`
	At         time.Time   `json:"timestamp"`
	Resolution
}

func (o *ChallengeOutcome) Kind() OutcomeKind    { return KindChallenge }
func (o *ChallengeOutcome) Timestamp() time.Time { return o.At }

// WaitOutcome is produced by Wait.
type WaitOutcome struct {
	Player   PlayerRef      `json:"player"`
	Accepted *AcceptedClaim `json:"accepted,omitempty"`
	At       time.Time      `json:"timestamp"`
	Resolution
}

func (o *WaitOutcome) Kind() OutcomeKind    { return KindWait }
func (o *WaitOutcome) Timestamp() time.Time { return o.At }

// ReshuffleOutcome is produced when a new hand is dealt mid-game.
type ReshuffleOutcome struct {
	Trigger    ReshuffleTrigger `json:"trigger"`
	Eliminated *PlayerRef       `json:"eliminated,omitempty"`
	MainRank   card.Rank        `json:"main_rank"`
	Starter    PlayerRef        `json:"starter"`
	TurnOrder  []SeatStatus     `json:"turn_order"`
	Round      int              `json:"round"`
	DeckSize   int              `json:"deck_size"`
	Hands      []HandSnapshot   `json:"-"`
	At         time.Time        `json:"timestamp"`
}

func (o *ReshuffleOutcome) Kind() OutcomeKind    { return KindReshuffle }
func (o *ReshuffleOutcome) Timestamp() time.Time { return o.At }

// Reason renders the trigger the way it is announced.
func (o *ReshuffleOutcome) Reason() string {
	if o.Trigger == TriggerElimination && o.Eliminated != nil {
		return o.Eliminated.Name + " was eliminated"
	}
	return "all hands are empty"
}

// GameEndOutcome is produced when the game moves to Ended. Winner is nil
// when nobody, or more than one player, is left.
type GameEndOutcome struct {
	Winner *PlayerRef `json:"winner,omitempty"`
	Reason EndReason  `json:"reason"`
	Detail string     `json:"detail,omitempty"`
	At     time.Time  `json:"timestamp"`
}

func (o *GameEndOutcome) Kind() OutcomeKind    { return KindGameEnd }
func (o *GameEndOutcome) Timestamp() time.Time { return o.At }

// Sequence flattens an outcome into the order it should be announced: the
// action itself, then any reshuffle, then any game end.
func Sequence(o Outcome) []Outcome {
	if o == nil {
		return nil
	}
	seq := []Outcome{o}
	if res := resolutionOf(o); res != nil {
		if res.Reshuffle != nil {
			seq = append(seq, res.Reshuffle)
		}
		if res.End != nil {
			seq = append(seq, res.End)
		}
	}
	return seq
}

// HandUpdates returns every private hand snapshot carried by o, including
// those of a nested reshuffle.
func HandUpdates(o Outcome) []HandSnapshot {
	var out []HandSnapshot
	switch v := o.(type) {
	case *StartOutcome:
		out = append(out, v.Hands...)
	case *PlayOutcome:
		out = append(out, v.Hands...)
	case *ReshuffleOutcome:
		out = append(out, v.Hands...)
	}
	if res := resolutionOf(o); res != nil && res.Reshuffle != nil {
		out = append(out, res.Reshuffle.Hands...)
	}
	return out
}

func resolutionOf(o Outcome) *Resolution {
	switch v := o.(type) {
	case *PlayOutcome:
		return &v.Resolution
	case *ChallengeOutcome:
		return &v.Resolution
	case *WaitOutcome:
		return &v.Resolution
	}
	return nil
}

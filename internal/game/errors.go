package game

import (
	"errors"
	"fmt"
	"strings"
)

// Usage errors. The game state is unchanged whenever one of these is
// returned.
var (
	ErrNotWaiting        = errors.New("game has already started")
	ErrNotPlaying        = errors.New("game is not in progress")
	ErrGameEnded         = errors.New("game has ended")
	ErrAlreadyJoined     = errors.New("player already joined")
	ErrTableFull         = errors.New("table is full")
	ErrPlayerNotFound    = errors.New("player has not joined")
	ErrEliminated        = errors.New("player has been eliminated")
	ErrEmptyHand         = errors.New("hand is empty, wait instead")
	ErrHandNotEmpty      = errors.New("wait is only allowed with an empty hand")
	ErrNoChallengeTarget = errors.New("there is no claim to challenge")
	ErrUnknownAction     = errors.New("unknown action")
)

// NotYourTurnError is returned when someone other than the current player
// tries to act.
type NotYourTurnError struct {
	Actor   string
	Current PlayerRef
}

func (e *NotYourTurnError) Error() string {
	return fmt.Sprintf("not your turn, waiting for %s", e.Current.Name)
}

// InvalidIndicesError names the offending card positions of a play.
type InvalidIndicesError struct {
	Indices    []int
	Duplicates []int
	HandSize   int
}

func (e *InvalidIndicesError) Error() string {
	if len(e.Duplicates) > 0 {
		return fmt.Sprintf("duplicate card positions %s", joinInts(e.Duplicates))
	}
	return fmt.Sprintf("card positions %s out of range, choose from 1 to %d", joinInts(e.Indices), e.HandSize)
}

// PlayCountError is returned when a play selects too few or too many cards.
type PlayCountError struct {
	Got int
	Max int
}

func (e *PlayCountError) Error() string {
	return fmt.Sprintf("must play between 1 and %d cards, got %d", e.Max, e.Got)
}

// NotEnoughPlayersError is returned by Start below the minimum table size.
type NotEnoughPlayersError struct {
	Have int
	Need int
}

func (e *NotEnoughPlayersError) Error() string {
	return fmt.Sprintf("need at least %d players to start, have %d", e.Need, e.Have)
}

// IntegrityError reports a broken invariant. Unlike usage errors, it ends
// the game (except at Start, where the deal is simply not applied).
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity failure during %s: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// IsIntegrity reports whether err is, or wraps, an IntegrityError.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

// Package advisor decides moves for non-human players. An Advisor only
// sees a read-only game.View; whatever it returns is validated again by
// the game before anything changes.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lox/liarsbar/internal/game"
)

// Advisor chooses a decision for the viewer of v.
type Advisor interface {
	Decide(ctx context.Context, v game.View) (game.Decision, error)
}

// Func adapts a function to the Advisor interface.
type Func func(ctx context.Context, v game.View) (game.Decision, error)

// Decide calls f.
func (f Func) Decide(ctx context.Context, v game.View) (game.Decision, error) {
	return f(ctx, v)
}

// ErrMalformed is returned when a reply contains no usable decision.
var ErrMalformed = errors.New("malformed decision")

// DecodeDecision extracts a decision object from a free-form reply such as
// `I'll bluff. {"action": "play", "indices": [2]}`. The outermost braces are
// decoded and the action is normalised to lower case.
func DecodeDecision(reply []byte) (game.Decision, error) {
	s := string(reply)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return game.Decision{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformed)
	}

	var d game.Decision
	if err := json.Unmarshal([]byte(s[start:end+1]), &d); err != nil {
		return game.Decision{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	d.Action = game.Action(strings.ToLower(strings.TrimSpace(string(d.Action))))

	switch d.Action {
	case game.ActionPlay:
		if len(d.Indices) == 0 {
			return game.Decision{}, fmt.Errorf("%w: play without indices", ErrMalformed)
		}
	case game.ActionChallenge, game.ActionWait:
		d.Indices = nil
	default:
		return game.Decision{}, fmt.Errorf("%w: unknown action %q", ErrMalformed, d.Action)
	}
	return d, nil
}

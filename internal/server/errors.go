package server

import (
	"errors"

	"github.com/lox/liarsbar/internal/advisor"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/table"
)

// errorCode maps an error to the code sent to clients.
func errorCode(err error) string {
	var (
		nyt *game.NotYourTurnError
		iie *game.InvalidIndicesError
		pce *game.PlayCountError
		nep *game.NotEnoughPlayersError
	)
	switch {
	case game.IsIntegrity(err):
		return "integrity_failure"
	case errors.As(err, &nyt):
		return "not_your_turn"
	case errors.As(err, &iie):
		return "invalid_indices"
	case errors.As(err, &pce):
		return "invalid_play_count"
	case errors.As(err, &nep):
		return "not_enough_players"
	case errors.Is(err, game.ErrNotWaiting):
		return "already_started"
	case errors.Is(err, game.ErrNotPlaying):
		return "not_started"
	case errors.Is(err, game.ErrGameEnded):
		return "game_ended"
	case errors.Is(err, game.ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, game.ErrTableFull):
		return "table_full"
	case errors.Is(err, game.ErrPlayerNotFound):
		return "not_joined"
	case errors.Is(err, game.ErrEliminated):
		return "eliminated"
	case errors.Is(err, game.ErrEmptyHand):
		return "empty_hand"
	case errors.Is(err, game.ErrHandNotEmpty):
		return "hand_not_empty"
	case errors.Is(err, game.ErrNoChallengeTarget):
		return "no_challenge_target"
	case errors.Is(err, game.ErrUnknownAction):
		return "invalid_action"
	case errors.Is(err, advisor.ErrMalformed):
		return "invalid_decision"
	case errors.Is(err, table.ErrTableExists):
		return "table_exists"
	case errors.Is(err, table.ErrTableNotFound):
		return "table_not_found"
	default:
		return "internal_error"
	}
}

package game

import (
	"errors"
	"fmt"

	"github.com/lox/liarsbar/internal/card"
)

// reshuffle deals a new hand to the remaining players without leaving the
// Playing phase. eliminated is the player whose elimination caused it, if
// any. The new deal is computed in full before anything is changed; on
// failure the game ends instead.
func (g *Game) reshuffle(trigger ReshuffleTrigger, eliminated string) (*ReshuffleOutcome, error) {
	active := g.roster.ActiveInTurnOrder()
	if len(active) == 0 {
		g.finish(EndAnomaly, "no active players left to deal to")
		return nil, &IntegrityError{Op: "reshuffle", Err: errors.New("no active players")}
	}

	main := g.pickMainRank()
	deck := card.Build(g.rng, g.rules.deckSpec(len(active)))
	hands, rest, err := Deal(g.rng, deck, main, active, g.rules.HandSize)
	if err != nil {
		g.finish(EndAnomaly, fmt.Sprintf("reshuffle deal failed: %v", err))
		return nil, &IntegrityError{Op: "reshuffle", Err: err}
	}

	starter := g.nextStarter(eliminated, active)
	g.applyDeal(main, hands, rest, len(deck))
	g.current = starter
	g.round++

	first := g.roster.At(starter)
	g.logger.Info("Reshuffled", "trigger", trigger, "round", g.round, "mainRank", main, "players", len(active), "starter", first.Name)

	out := &ReshuffleOutcome{
		Trigger:   trigger,
		MainRank:  main,
		Starter:   first.Ref(),
		TurnOrder: g.seats(),
		Round:     g.round,
		DeckSize:  len(deck),
		Hands:     g.handSnapshots(active),
		At:        g.clock.Now(),
	}
	if p := g.roster.Get(eliminated); p != nil {
		ref := p.Ref()
		out.Eliminated = &ref
	}
	return out, nil
}

// nextStarter scans forward from the eliminated player's slot, or from the
// current slot when nobody was eliminated, for the first active player.
// It falls back to the first active player in turn order.
func (g *Game) nextStarter(eliminated string, active []string) int {
	from := g.current
	if eliminated != "" {
		if slot := g.roster.SlotOf(eliminated); slot >= 0 {
			from = slot
		}
	}
	if idx, ok := g.roster.AdvanceFrom(from); ok {
		return idx
	}
	return g.roster.SlotOf(active[0])
}

package game

import (
	"errors"

	"github.com/lox/liarsbar/internal/card"
	"github.com/lox/liarsbar/internal/revolver"
)

// checkTurn returns the acting player if actor may act now.
func (g *Game) checkTurn(actor string) (*Player, error) {
	switch g.phase {
	case Waiting:
		return nil, ErrNotPlaying
	case Ended:
		return nil, ErrGameEnded
	}
	current := g.roster.At(g.current)
	if current == nil {
		g.finish(EndAnomaly, "current turn points at no player")
		return nil, &IntegrityError{Op: "turn check", Err: errors.New("current index points at no player")}
	}
	if actor != current.ID {
		if g.roster.Get(actor) == nil {
			return nil, ErrPlayerNotFound
		}
		return nil, &NotYourTurnError{Actor: actor, Current: current.Ref()}
	}
	if current.Eliminated {
		return nil, ErrEliminated
	}
	return current, nil
}

// Play puts 1-based hand positions face down as a new claim. A pending
// claim is accepted first.
//
// If an integrity failure ends the game, both the outcome and the error are
// returned.
func (g *Game) Play(actor string, indices []int) (*PlayOutcome, error) {
	p, err := g.checkTurn(actor)
	if err != nil {
		return nil, err
	}
	if len(p.Hand) == 0 {
		return nil, ErrEmptyHand
	}
	if err := validateIndices(indices, len(p.Hand), g.rules.MaxPlayCards); err != nil {
		return nil, err
	}

	out := &PlayOutcome{Player: p.Ref(), Quantity: len(indices), At: g.clock.Now()}
	out.Accepted = g.acceptClaim()

	picked := make(map[int]bool, len(indices))
	played := make([]card.Rank, 0, len(indices))
	for _, i := range indices {
		picked[i-1] = true
		played = append(played, p.Hand[i-1])
	}
	kept := make([]card.Rank, 0, len(p.Hand)-len(indices))
	for i, c := range p.Hand {
		if !picked[i] {
			kept = append(kept, c)
		}
	}
	p.Hand = kept
	g.claim = &Claim{Player: p.Ref(), Quantity: len(played), Cards: played}
	out.HandLeft = len(kept)

	g.logger.Debug("Play", "player", p.Name, "quantity", len(played), "handLeft", len(kept))

	err = g.passTurn(&out.Resolution)
	if out.Reshuffle == nil {
		out.Hands = []HandSnapshot{{Player: p.Ref(), Hand: cloneHand(p.Hand), MainRank: g.mainRank}}
	}
	return out, err
}

// Challenge reveals the pending claim. A truthful claim costs the
// challenger a trigger pull, a bluff costs the claimant one.
func (g *Game) Challenge(actor string) (*ChallengeOutcome, error) {
	p, err := g.checkTurn(actor)
	if err != nil {
		return nil, err
	}
	if g.claim == nil {
		return nil, ErrNoChallengeTarget
	}

	claim := g.claim
	truthful := card.AllMatch(claim.Cards, g.mainRank)
	loser := g.roster.Get(claim.Player.ID)
	if truthful {
		loser = p
	}
	if loser == nil {
		g.finish(EndAnomaly, "claimant "+claim.Player.Name+" is not seated")
		return nil, &IntegrityError{Op: "challenge", Err: errors.New("claimant is not seated")}
	}

	g.claim = nil
	g.discard = append(g.discard, claim.Cards...)

	out := &ChallengeOutcome{
		Challenger: p.Ref(),
		Claimant:   claim.Player,
		Quantity:   claim.Quantity,
		Revealed:   cloneHand(claim.Cards),
		MainRank:   g.mainRank,
		Truthful:   truthful,
		Loser:      loser.Ref(),
		At:         g.clock.Now(),
	}
	out.Shot = g.fire(loser)

	g.logger.Debug("Challenge", "challenger", p.Name, "claimant", claim.Player.Name, "truthful", truthful, "loser", loser.Name, "shot", out.Shot.Result)

	if out.Shot.Result == revolver.Hit {
		g.logger.Info("Player eliminated", "player", loser.Name, "remaining", g.roster.ActiveCount())
		if g.roster.IsGameOver() {
			out.End = g.finish(EndLastStanding, "")
			return out, nil
		}
		rs, err := g.reshuffle(TriggerElimination, loser.ID)
		out.Reshuffle = rs
		out.End = g.end
		return out, err
	}

	// The winner of the confrontation leads.
	if p.IsActive() {
		g.current = g.roster.SlotOf(p.ID)
		return out, g.settleTurn(&out.Resolution)
	}
	return out, g.passTurn(&out.Resolution)
}

// Wait passes with an empty hand, accepting any pending claim.
func (g *Game) Wait(actor string) (*WaitOutcome, error) {
	p, err := g.checkTurn(actor)
	if err != nil {
		return nil, err
	}
	if len(p.Hand) > 0 {
		return nil, ErrHandNotEmpty
	}

	out := &WaitOutcome{Player: p.Ref(), At: g.clock.Now()}
	out.Accepted = g.acceptClaim()
	g.logger.Debug("Wait", "player", p.Name)

	return out, g.passTurn(&out.Resolution)
}

// acceptClaim moves an unchallenged claim to the discard pile.
func (g *Game) acceptClaim() *AcceptedClaim {
	if g.claim == nil {
		return nil
	}
	acc := &AcceptedClaim{Player: g.claim.Player, Quantity: g.claim.Quantity}
	g.discard = append(g.discard, g.claim.Cards...)
	g.claim = nil
	return acc
}

// passTurn reshuffles when every active hand is empty, otherwise hands the
// turn to the next active player.
func (g *Game) passTurn(res *Resolution) error {
	if g.roster.AllActiveHandsEmpty() {
		return g.reshuffleInto(res, TriggerHandsEmpty, "")
	}
	next, ok := g.roster.AdvanceFrom(g.current)
	if !ok {
		res.End = g.finish(EndAnomaly, "no active player to pass the turn to")
		return &IntegrityError{Op: "advance", Err: errors.New("no active player found")}
	}
	g.current = next
	return g.settleTurn(res)
}

// settleTurn records the player now holding the turn, or reshuffles if
// every active hand is empty.
func (g *Game) settleTurn(res *Resolution) error {
	if g.roster.AllActiveHandsEmpty() {
		return g.reshuffleInto(res, TriggerHandsEmpty, "")
	}
	next := g.roster.At(g.current)
	ref := next.Ref()
	res.Next = &ref
	res.NextHandEmpty = len(next.Hand) == 0
	return nil
}

func (g *Game) reshuffleInto(res *Resolution, trigger ReshuffleTrigger, eliminated string) error {
	rs, err := g.reshuffle(trigger, eliminated)
	res.Reshuffle = rs
	if g.phase == Ended {
		res.End = g.end
	}
	return err
}

// fire pulls p's trigger. The pointer rotates even when p is already out.
func (g *Game) fire(p *Player) Shot {
	shot := Shot{Player: p.Ref(), Chamber: p.Revolver.Pointer()}
	round := p.Revolver.Pull()
	switch {
	case p.Eliminated:
		shot.Result = revolver.AlreadyEliminated
	case round == revolver.Live:
		p.Eliminated = true
		shot.Result = revolver.Hit
	default:
		shot.Result = revolver.Safe
	}
	g.logger.Debug("Trigger pulled", "player", p.Name, "chamber", shot.Chamber, "layout", p.Revolver.Chambers(), "result", shot.Result)
	return shot
}

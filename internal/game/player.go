package game

import (
	"github.com/lox/liarsbar/internal/card"
	"github.com/lox/liarsbar/internal/revolver"
)

// Player is a seat at the table. Players are only removed when the whole
// game is discarded; elimination just sets the flag.
type Player struct {
	ID         string
	Name       string
	Hand       []card.Rank
	Revolver   *revolver.Revolver
	Eliminated bool
	Bot        bool
}

// Ref returns the public identity of the player.
func (p *Player) Ref() PlayerRef {
	return PlayerRef{ID: p.ID, Name: p.Name}
}

// IsActive returns true if the player has not been eliminated
func (p *Player) IsActive() bool {
	return !p.Eliminated
}

// PlayerRef identifies a player in outcomes and views.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Claim is the pending, unrevealed play: Quantity cards the claimant says
// all match the main rank. Cards holds what was actually played.
type Claim struct {
	Player   PlayerRef
	Quantity int
	Cards    []card.Rank
}

func (c *Claim) clone() *Claim {
	if c == nil {
		return nil
	}
	cards := make([]card.Rank, len(c.Cards))
	copy(cards, c.Cards)
	return &Claim{Player: c.Player, Quantity: c.Quantity, Cards: cards}
}

func cloneHand(h []card.Rank) []card.Rank {
	out := make([]card.Rank, len(h))
	copy(out, h)
	return out
}

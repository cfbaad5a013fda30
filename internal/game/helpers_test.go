package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/card"
	"github.com/lox/liarsbar/internal/revolver"
)

// newStartedGame seats ids (name == id) and starts a seeded game.
func newStartedGame(t *testing.T, seed int64, ids ...string) *Game {
	t.Helper()
	g := newWaitingGame(t, seed, ids...)
	_, err := g.Start()
	require.NoError(t, err)
	return g
}

func newWaitingGame(t *testing.T, seed int64, ids ...string) *Game {
	t.Helper()
	g, err := New(DefaultRules(), WithSeed(seed))
	require.NoError(t, err)
	for _, id := range ids {
		_, err := g.Join(id, id, false)
		require.NoError(t, err)
	}
	return g
}

// rig replaces the dealt state with a known layout. The first id in order
// is to act.
func rig(t *testing.T, g *Game, main card.Rank, order []string, hands map[string][]card.Rank) {
	t.Helper()
	require.Equal(t, Playing, g.phase)
	g.roster.turnOrder = append([]string(nil), order...)
	g.current = 0
	g.mainRank = main
	g.claim = nil
	g.discard = nil
	g.remainder = nil
	total := 0
	for _, p := range g.roster.players {
		p.Hand = cloneHand(hands[p.ID])
		total += len(p.Hand)
	}
	g.deckSize = total
}

// load gives player id a revolver with a fixed layout.
func load(t *testing.T, g *Game, id string, pointer int, chambers ...revolver.Round) {
	t.Helper()
	r, err := revolver.FromChambers(chambers, pointer)
	require.NoError(t, err)
	g.roster.Get(id).Revolver = r
}

func blanks(n int) []revolver.Round {
	out := make([]revolver.Round, n)
	for i := range out {
		out[i] = revolver.Blank
	}
	return out
}

func allLive(n int) []revolver.Round {
	out := make([]revolver.Round, n)
	for i := range out {
		out[i] = revolver.Live
	}
	return out
}

func ranks(tokens ...string) []card.Rank {
	out := make([]card.Rank, len(tokens))
	for i, s := range tokens {
		out[i] = card.Rank(s)
	}
	return out
}

// requireConserved checks that every card of the last built deck is in a
// hand, the discard pile, the pending claim or the undealt remainder.
func requireConserved(t *testing.T, g *Game) {
	t.Helper()
	total := len(g.discard) + len(g.remainder)
	for _, p := range g.roster.players {
		total += len(p.Hand)
	}
	if g.claim != nil {
		total += len(g.claim.Cards)
	}
	require.Equal(t, g.deckSize, total, "cards not conserved")
}

// snapshot captures everything an action could change.
type snapshot struct {
	phase    Phase
	current  int
	round    int
	mainRank card.Rank
	claim    *Claim
	discard  []card.Rank
	hands    map[string][]card.Rank
	pointers map[string]int
	out      map[string]bool
}

func takeSnapshot(g *Game) snapshot {
	s := snapshot{
		phase:    g.phase,
		current:  g.current,
		round:    g.round,
		mainRank: g.mainRank,
		claim:    g.claim.clone(),
		discard:  cloneHand(g.discard),
		hands:    map[string][]card.Rank{},
		pointers: map[string]int{},
		out:      map[string]bool{},
	}
	for id, p := range g.roster.players {
		s.hands[id] = cloneHand(p.Hand)
		s.pointers[id] = p.Revolver.Pointer()
		s.out[id] = p.Eliminated
	}
	return s
}

package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/liarsbar/internal/card"
	"github.com/lox/liarsbar/internal/randutil"
	"github.com/lox/liarsbar/internal/revolver"
)

// Game is one table's round engine. See the package documentation for the
// lifecycle.
type Game struct {
	rules   Rules
	rng     *rand.Rand
	clock   quartz.Clock
	logger  *log.Logger
	creator string

	phase    Phase
	roster   *Roster
	current  int
	round    int
	mainRank card.Rank
	claim    *Claim
	discard  []card.Rank
	// remainder is the undealt part of the last built deck.
	remainder []card.Rank
	deckSize  int
	end       *GameEndOutcome
}

// Option configures a Game.
type Option func(*Game)

// WithRNG sets the random source for main ranks, decks, turn order and
// revolvers.
func WithRNG(rng *rand.Rand) Option {
	return func(g *Game) {
		g.rng = rng
	}
}

// WithSeed is WithRNG(randutil.New(seed)).
func WithSeed(seed int64) Option {
	return func(g *Game) {
		g.rng = randutil.New(seed)
	}
}

// WithClock sets the clock used for outcome timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(g *Game) {
		g.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithCreator records who opened the table.
func WithCreator(id string) Option {
	return func(g *Game) {
		g.creator = id
	}
}

// New creates a game in the Waiting phase.
func New(rules Rules, opts ...Option) (*Game, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	g := &Game{
		rules:  rules,
		phase:  Waiting,
		roster: newRoster(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = randutil.New(randutil.TimeSeed())
	}
	if g.clock == nil {
		g.clock = quartz.NewReal()
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	return g, nil
}

// Join seats a player. Revolvers are loaded here and kept for the whole
// game.
func (g *Game) Join(id, name string, bot bool) (*JoinOutcome, error) {
	switch g.phase {
	case Playing:
		return nil, ErrNotWaiting
	case Ended:
		return nil, ErrGameEnded
	}
	if g.roster.Get(id) != nil {
		return nil, ErrAlreadyJoined
	}
	if g.roster.Len() >= g.rules.MaxPlayers {
		return nil, ErrTableFull
	}

	p := &Player{
		ID:       id,
		Name:     name,
		Bot:      bot,
		Revolver: revolver.New(g.rng, g.rules.Chambers, g.rules.LiveRounds),
	}
	g.roster.add(p)
	g.logger.Debug("Player joined", "player", name, "id", id, "bot", bot, "players", g.roster.Len(), "liveRounds", p.Revolver.LiveRounds())

	return &JoinOutcome{Player: p.Ref(), Bot: bot, Players: g.roster.Len(), At: g.clock.Now()}, nil
}

// Start deals the first hand and fixes the turn order. A failed deal is an
// integrity error but leaves the game Waiting so the caller may retry.
func (g *Game) Start() (*StartOutcome, error) {
	switch g.phase {
	case Playing:
		return nil, ErrNotWaiting
	case Ended:
		return nil, ErrGameEnded
	}
	if n := g.roster.Len(); n < g.rules.MinPlayers {
		return nil, &NotEnoughPlayersError{Have: n, Need: g.rules.MinPlayers}
	}

	ids := g.roster.ActiveIDs()
	main := g.pickMainRank()
	deck := card.Build(g.rng, g.rules.deckSpec(len(ids)))
	hands, rest, err := Deal(g.rng, deck, main, ids, g.rules.HandSize)
	if err != nil {
		g.logger.Error("Initial deal failed", "error", err)
		return nil, &IntegrityError{Op: "start", Err: err}
	}

	order := make([]string, len(ids))
	for i, j := range g.rng.Perm(len(ids)) {
		order[i] = ids[j]
	}

	g.roster.turnOrder = order
	g.applyDeal(main, hands, rest, len(deck))
	g.current = 0
	g.round = 1
	g.phase = Playing

	first := g.roster.At(g.current)
	g.logger.Info("Game started", "players", len(ids), "mainRank", main, "deckSize", len(deck), "first", first.Name)

	return &StartOutcome{
		MainRank:  main,
		First:     first.Ref(),
		TurnOrder: g.seats(),
		DeckSize:  len(deck),
		Hands:     g.handSnapshots(ids),
		At:        g.clock.Now(),
	}, nil
}

// ForceEnd moves the game to Ended from any phase.
func (g *Game) ForceEnd(detail string) (*GameEndOutcome, error) {
	if g.phase == Ended {
		return nil, ErrGameEnded
	}
	return g.finish(EndForced, detail), nil
}

// Apply dispatches a Decision to Play, Challenge or Wait. When an integrity
// failure ends the game before an action outcome exists, the end record is
// returned as the outcome alongside the error.
func (g *Game) Apply(actor string, d Decision) (Outcome, error) {
	var (
		out Outcome
		err error
	)
	switch d.Action {
	case ActionPlay:
		var o *PlayOutcome
		if o, err = g.Play(actor, d.Indices); o != nil {
			out = o
		}
	case ActionChallenge:
		var o *ChallengeOutcome
		if o, err = g.Challenge(actor); o != nil {
			out = o
		}
	case ActionWait:
		var o *WaitOutcome
		if o, err = g.Wait(actor); o != nil {
			out = o
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, d.Action)
	}
	if out == nil && IsIntegrity(err) && g.end != nil {
		return g.end, err
	}
	return out, err
}

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// Rules returns the rules the game was created with.
func (g *Game) Rules() Rules { return g.rules }

// Creator returns the id passed to WithCreator.
func (g *Game) Creator() string { return g.creator }

// Roster exposes the players and turn order.
func (g *Game) Roster() *Roster { return g.roster }

// MainRank returns the main rank of the current hand.
func (g *Game) MainRank() card.Rank { return g.mainRank }

// Round returns how many hands have been dealt.
func (g *Game) Round() int { return g.round }

// CurrentIndex returns the turn-order slot of the player to act.
func (g *Game) CurrentIndex() int { return g.current }

// DeckSize returns the size of the most recently built deck.
func (g *Game) DeckSize() int { return g.deckSize }

// Discard returns a copy of the discard pile.
func (g *Game) Discard() []card.Rank { return cloneHand(g.discard) }

// Remainder returns a copy of the undealt cards.
func (g *Game) Remainder() []card.Rank { return cloneHand(g.remainder) }

// PendingClaim returns a copy of the unresolved claim, or nil.
func (g *Game) PendingClaim() *Claim { return g.claim.clone() }

// Result returns the end record once the game has ended.
func (g *Game) Result() *GameEndOutcome { return g.end }

// Current returns the player to act, or nil outside Playing.
func (g *Game) Current() *Player {
	if g.phase != Playing {
		return nil
	}
	return g.roster.At(g.current)
}

// Status returns the public view of the table.
func (g *Game) Status() View {
	v := View{
		Phase:        g.phase,
		Round:        g.round,
		MaxPlayCards: g.rules.MaxPlayCards,
		Players:      g.seats(),
		DiscardCount: len(g.discard),
	}
	if g.phase == Playing {
		v.MainRank = g.mainRank
		if p := g.Current(); p != nil {
			ref := p.Ref()
			v.Current = &ref
		}
	}
	if g.claim != nil {
		v.Claim = &ClaimView{Player: g.claim.Player, Quantity: g.claim.Quantity}
	}
	return v
}

// ViewFor returns the snapshot seen by player id.
func (g *Game) ViewFor(id string) (View, error) {
	p := g.roster.Get(id)
	if p == nil {
		return View{}, ErrPlayerNotFound
	}
	v := g.Status()
	ref := p.Ref()
	v.You = &ref
	v.Hand = cloneHand(p.Hand)
	return v, nil
}

// Hand returns the private hand snapshot of player id.
func (g *Game) Hand(id string) (HandSnapshot, error) {
	p := g.roster.Get(id)
	if p == nil {
		return HandSnapshot{}, ErrPlayerNotFound
	}
	return HandSnapshot{Player: p.Ref(), Hand: cloneHand(p.Hand), MainRank: g.mainRank}, nil
}

func (g *Game) pickMainRank() card.Rank {
	return g.rules.BaseRanks[g.rng.IntN(len(g.rules.BaseRanks))]
}

// applyDeal installs a successful deal. Every hand is cleared first, so
// eliminated players hold nothing.
func (g *Game) applyDeal(main card.Rank, hands map[string][]card.Rank, rest []card.Rank, deckSize int) {
	for _, p := range g.roster.players {
		p.Hand = nil
	}
	for id, hand := range hands {
		if len(hand) < g.rules.HandSize {
			g.logger.Warn("Deck ran short while dealing", "player", id, "cards", len(hand), "handSize", g.rules.HandSize)
		}
		g.roster.players[id].Hand = hand
	}
	g.mainRank = main
	g.remainder = cloneHand(rest)
	g.deckSize = deckSize
	g.discard = nil
	g.claim = nil
}

// finish moves the game to Ended and records why.
func (g *Game) finish(reason EndReason, detail string) *GameEndOutcome {
	g.phase = Ended
	out := &GameEndOutcome{Reason: reason, Detail: detail, At: g.clock.Now()}
	if w := g.roster.SoleWinner(); w != nil && reason != EndForced {
		ref := w.Ref()
		out.Winner = &ref
	}
	g.end = out

	switch reason {
	case EndAnomaly:
		g.logger.Error("Game ended abnormally", "detail", detail)
	default:
		winner := "none"
		if out.Winner != nil {
			winner = out.Winner.Name
		}
		g.logger.Info("Game ended", "reason", reason, "winner", winner)
	}
	return out
}

func (g *Game) seats() []SeatStatus {
	ids := g.roster.turnOrder
	if len(ids) == 0 {
		ids = g.roster.joinOrder
	}
	out := make([]SeatStatus, 0, len(ids))
	for _, id := range ids {
		p := g.roster.players[id]
		out = append(out, SeatStatus{
			Player:     p.Ref(),
			Bot:        p.Bot,
			Eliminated: p.Eliminated,
			HandCount:  len(p.Hand),
		})
	}
	return out
}

func (g *Game) handSnapshots(ids []string) []HandSnapshot {
	out := make([]HandSnapshot, 0, len(ids))
	for _, id := range ids {
		p := g.roster.players[id]
		out = append(out, HandSnapshot{Player: p.Ref(), Hand: cloneHand(p.Hand), MainRank: g.mainRank})
	}
	return out
}

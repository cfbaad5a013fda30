// Package table serialises access to one game per table and drives the
// bots sitting at it.
package table

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/liarsbar/internal/advisor"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/randutil"
)

// DefaultChatHistory is how many recent chat lines bots get to see.
const DefaultChatHistory = 10

// maxBotNames bounds the AI-N naming scheme.
const maxBotNames = 9

// Options configures a Table.
type Options struct {
	Rules       game.Rules
	Seed        int64
	Creator     string
	Notifier    Notifier
	ChatHistory int
	// BotDelay paces bot turns so humans can follow them.
	BotDelay time.Duration
	// NewBot builds the advisor for an added bot. Defaults to advisor.Honest.
	NewBot func(rng *rand.Rand) advisor.Advisor
	// Runner supplies retry limits for bot decisions. Its Advisor is
	// replaced per bot.
	Runner advisor.Runner
	Clock  quartz.Clock
	Logger *log.Logger
}

// Table is one exclusive-access unit: every mutation of its game happens
// under mu, bot advisors run outside it.
type Table struct {
	ID string

	mu       sync.Mutex
	game     *game.Game
	opts     Options
	rng      *rand.Rand
	bots     map[string]advisor.Advisor
	notifier Notifier
	clock    quartz.Clock
	logger   *log.Logger

	// seq counts applied state changes; a bot decision computed against
	// an older seq is stale.
	seq       uint64
	ctx       context.Context
	closeAll  context.CancelFunc
	cancelBot context.CancelFunc
	chat      []game.ChatLine
	wg        sync.WaitGroup
}

// New creates a table in the Waiting phase.
func New(id string, opts Options) (*Table, error) {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.ChatHistory <= 0 {
		opts.ChatHistory = DefaultChatHistory
	}
	if opts.Seed == 0 {
		opts.Seed = randutil.TimeSeed()
	}
	if opts.NewBot == nil {
		opts.NewBot = func(rng *rand.Rand) advisor.Advisor { return advisor.NewHonest(rng) }
	}
	if opts.Runner.MaxRetries == 0 {
		opts.Runner.MaxRetries = advisor.DefaultMaxRetries
	}
	if opts.Runner.AttemptTimeout == 0 {
		opts.Runner.AttemptTimeout = advisor.DefaultAttemptTimeout
	}

	logger := opts.Logger.WithPrefix("table").With("table", id)
	g, err := game.New(opts.Rules,
		game.WithSeed(opts.Seed),
		game.WithClock(opts.Clock),
		game.WithLogger(logger),
		game.WithCreator(opts.Creator),
	)
	if err != nil {
		return nil, err
	}

	rng := randutil.New(randutil.Derive(opts.Seed, 1))
	opts.Runner.Clock = opts.Clock
	opts.Runner.Logger = logger
	if opts.Runner.Fallback == nil {
		opts.Runner.Fallback = advisor.NewRandom(randutil.New(randutil.Derive(opts.Seed, 2)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger.Info("Table created", "seed", opts.Seed, "creator", opts.Creator)

	return &Table{
		ID:       id,
		game:     g,
		opts:     opts,
		rng:      rng,
		bots:     make(map[string]advisor.Advisor),
		notifier: opts.Notifier,
		clock:    opts.Clock,
		logger:   logger,
		ctx:      ctx,
		closeAll: cancel,
	}, nil
}

// Join seats a human player.
func (t *Table) Join(id, name string) (*game.JoinOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.game.Join(id, name, false)
	if err != nil {
		return nil, err
	}
	t.publish(out)
	return out, nil
}

// AddBots seats up to n bots named AI-1, AI-2, ... and returns who was
// added. It stops early, without error, when the table fills up.
func (t *Table) AddBots(n int) ([]game.PlayerRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ph := t.game.Phase(); ph != game.Waiting {
		if ph == game.Ended {
			return nil, game.ErrGameEnded
		}
		return nil, game.ErrNotWaiting
	}

	var added []game.PlayerRef
	for i := 0; i < n; i++ {
		if t.game.Roster().Len() >= t.opts.Rules.MaxPlayers {
			break
		}
		name, ok := t.nextBotName()
		if !ok {
			break
		}
		id := "bot-" + uuid.NewString()[:8]
		out, err := t.game.Join(id, name, true)
		if err != nil {
			return added, err
		}
		t.bots[id] = t.opts.NewBot(randutil.New(t.rng.Int64()))
		added = append(added, out.Player)
		t.publish(out)
	}
	if len(added) == 0 && n > 0 {
		return nil, game.ErrTableFull
	}
	return added, nil
}

// AddBot seats a bot driven by a.
func (t *Table) AddBot(id, name string, a advisor.Advisor) (*game.JoinOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.game.Join(id, name, true)
	if err != nil {
		return nil, err
	}
	t.bots[id] = a
	t.publish(out)
	return out, nil
}

func (t *Table) nextBotName() (string, bool) {
	taken := make(map[string]bool)
	for _, p := range t.game.Roster().Joined() {
		taken[p.Name] = true
	}
	for i := 1; i <= maxBotNames; i++ {
		name := "AI-" + strconv.Itoa(i)
		if !taken[name] {
			return name, true
		}
	}
	return "", false
}

// Start deals the first hand.
func (t *Table) Start() (*game.StartOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.game.Start()
	if err != nil {
		return nil, err
	}
	t.publish(out)
	return out, nil
}

// Act applies a human decision.
func (t *Table) Act(actor string, d game.Decision) (game.Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.apply(actor, d)
}

// Play, Challenge and Wait are shorthands for Act.
func (t *Table) Play(actor string, indices []int) (game.Outcome, error) {
	return t.Act(actor, game.Decision{Action: game.ActionPlay, Indices: indices})
}

func (t *Table) Challenge(actor string) (game.Outcome, error) {
	return t.Act(actor, game.Decision{Action: game.ActionChallenge})
}

func (t *Table) Wait(actor string) (game.Outcome, error) {
	return t.Act(actor, game.Decision{Action: game.ActionWait})
}

// apply is the single path every decision goes through. Callers hold mu.
func (t *Table) apply(actor string, d game.Decision) (game.Outcome, error) {
	out, err := t.game.Apply(actor, d)
	if out == nil {
		return nil, err
	}
	if err != nil {
		t.logger.Error("Game ended on integrity failure", "actor", actor, "error", err)
	}
	t.publish(out)
	return out, err
}

// ForceEnd ends the game from any phase and drops pending bot work.
func (t *Table) ForceEnd(reason string) (*game.GameEndOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.game.ForceEnd(reason)
	if err != nil {
		return nil, err
	}
	t.publish(out)
	return out, nil
}

// Chat records a table message. Only messages sent during play are kept.
func (t *Table) Chat(name, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.game.Phase() != game.Playing {
		return
	}
	t.chat = append(t.chat, game.ChatLine{Name: name, Text: text, At: t.clock.Now()})
	if over := len(t.chat) - t.opts.ChatHistory; over > 0 {
		t.chat = append([]game.ChatLine(nil), t.chat[over:]...)
	}
}

// Status returns the public view.
func (t *Table) Status() game.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Status()
}

// View returns what player id sees, including recent chat.
func (t *Table) View(id string) (game.View, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked(id)
}

func (t *Table) viewLocked(id string) (game.View, error) {
	v, err := t.game.ViewFor(id)
	if err != nil {
		return v, err
	}
	v.RecentChat = append([]game.ChatLine(nil), t.chat...)
	return v, nil
}

// Hand returns player id's private hand.
func (t *Table) Hand(id string) (game.HandSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Hand(id)
}

// Phase returns the game phase.
func (t *Table) Phase() game.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Phase()
}

// Result returns the end record once the game has ended.
func (t *Table) Result() *game.GameEndOutcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Result()
}

// Creator returns who opened the table.
func (t *Table) Creator() string {
	return t.opts.Creator
}

// Summary is a one-line description of a table.
type Summary struct {
	ID      string     `json:"id"`
	Phase   game.Phase `json:"phase"`
	Players int        `json:"players"`
	Bots    int        `json:"bots"`
	Round   int        `json:"round"`
}

// Summary describes the table for listings.
func (t *Table) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Summary{
		ID:      t.ID,
		Phase:   t.game.Phase(),
		Players: t.game.Roster().Len(),
		Bots:    len(t.bots),
		Round:   t.game.Round(),
	}
}

// Close stops all bot work. The game itself is left as is.
func (t *Table) Close() {
	t.closeAll()
}

// WaitIdle blocks until no bot goroutine is running. A game made only of
// bots therefore runs to completion before WaitIdle returns.
func (t *Table) WaitIdle() {
	t.wg.Wait()
}

// publish announces o, bumps the sequence number and hands the turn to a
// bot if one is up. Callers hold mu.
func (t *Table) publish(o game.Outcome) {
	t.seq++
	for _, step := range game.Sequence(o) {
		t.notifier.Broadcast(t.ID, step)
	}
	for _, h := range game.HandUpdates(o) {
		if _, bot := t.bots[h.Player.ID]; bot {
			continue
		}
		t.notifier.SendHand(t.ID, h)
	}
	t.scheduleBot()
}

// scheduleBot cancels any in-flight bot decision and, if a bot holds the
// turn, starts a new one. Callers hold mu.
func (t *Table) scheduleBot() {
	if t.cancelBot != nil {
		t.cancelBot()
		t.cancelBot = nil
	}
	if t.ctx.Err() != nil {
		return
	}

	cur := t.game.Current()
	if cur == nil {
		return
	}
	adv, ok := t.bots[cur.ID]
	if !ok {
		return
	}
	view, err := t.viewLocked(cur.ID)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(t.ctx)
	t.cancelBot = cancel
	seq := t.seq

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.runBot(ctx, seq, cur.ID, adv, view)
	}()
}

func (t *Table) runBot(ctx context.Context, seq uint64, id string, adv advisor.Advisor, view game.View) {
	if t.opts.BotDelay > 0 {
		timer := t.clock.NewTimer(t.opts.BotDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}

	runner := t.opts.Runner
	runner.Advisor = adv
	res, err := runner.Decide(ctx, view)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.seq || ctx.Err() != nil {
		t.logger.Debug("Discarding stale bot decision", "bot", view.You.Name, "decision", res.Decision)
		return
	}

	t.logger.Debug("Bot decided", "bot", view.You.Name, "decision", res.Decision, "attempts", res.Attempts, "fallback", res.Fallback, "reasoning", res.Decision.Reasoning)
	if _, err := t.apply(id, res.Decision); err != nil && !game.IsIntegrity(err) {
		// The view was current, so this is a bot bug; keep the game moving.
		t.logger.Warn("Bot decision rejected", "bot", view.You.Name, "decision", res.Decision, "error", err)
		fresh, verr := t.viewLocked(id)
		if verr != nil {
			return
		}
		if _, err := t.apply(id, advisor.RandomMove(t.rng, fresh)); err != nil {
			t.logger.Error("Fallback move rejected", "bot", view.You.Name, "error", err)
			t.forceEndLocked(fmt.Sprintf("bot %s could not move: %v", view.You.Name, err))
		}
	}
}

func (t *Table) forceEndLocked(reason string) {
	if out, err := t.game.ForceEnd(reason); err == nil {
		t.publish(out)
	}
}

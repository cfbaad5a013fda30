// Package simulator plays all-bot games to completion and tallies how they
// went.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/randutil"
	"github.com/lox/liarsbar/internal/revolver"
	"github.com/lox/liarsbar/internal/statistics"
	"github.com/lox/liarsbar/internal/table"
)

// ErrTimeout is returned when a game fails to finish in time.
var ErrTimeout = errors.New("game timed out")

// Config holds configuration for running simulations
type Config struct {
	Games   int
	Players int
	Seed    int64
	Workers int
	Timeout time.Duration
	// Clock times each game against Timeout. Table timers use
	// Options.Clock.
	Clock quartz.Clock
	// Options is the template for every table. Seed and Notifier are
	// replaced per game.
	Options table.Options
	Logger  *log.Logger
	// OnGame, when set, receives every finished game in seed order along
	// with its public outcome log.
	OnGame func(statistics.GameResult, []game.Outcome)
}

// Simulator runs all-bot games.
type Simulator struct {
	config Config
}

type played struct {
	result   statistics.GameResult
	outcomes []game.Outcome
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Seed == 0 {
		config.Seed = randutil.TimeSeed()
	}
	return &Simulator{config: config}
}

// Seed returns the base seed; game n is played with randutil.Derive(seed, n).
func (s *Simulator) Seed() int64 {
	return s.config.Seed
}

// Run plays every game and returns the aggregate statistics.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	games := make([]played, s.config.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for n := range games {
		g.Go(func() error {
			p, err := s.playGame(ctx, n)
			if err != nil {
				return fmt.Errorf("game %d: %w", n+1, err)
			}
			games[n] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, p := range games {
		stats.Add(p.result)
		if s.config.OnGame != nil {
			s.config.OnGame(p.result, p.outcomes)
		}
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playGame runs game n with timeout protection.
func (s *Simulator) playGame(ctx context.Context, n int) (played, error) {
	if err := ctx.Err(); err != nil {
		return played{}, err
	}
	seed := randutil.Derive(s.config.Seed, n)

	rec := &table.Recorder{}
	opts := s.config.Options
	opts.Seed = seed
	opts.Notifier = rec
	opts.Logger = s.config.Logger

	t, err := table.New(fmt.Sprintf("sim-%d", n+1), opts)
	if err != nil {
		return played{}, err
	}
	defer t.Close()

	if _, err := t.AddBots(s.config.Players); err != nil {
		return played{}, err
	}
	if _, err := t.Start(); err != nil {
		return played{}, err
	}

	done := make(chan struct{})
	go func() {
		t.WaitIdle()
		close(done)
	}()

	timer := s.config.Clock.NewTimer(s.config.Timeout, "simulator", "game")
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		_, _ = t.ForceEnd("simulation timeout")
		t.Close()
		<-done
		return played{}, fmt.Errorf("%w after %v (seed: %d)", ErrTimeout, s.config.Timeout, seed)
	case <-ctx.Done():
		t.Close()
		<-done
		return played{}, ctx.Err()
	}

	if t.Phase() != game.Ended {
		return played{}, fmt.Errorf("bots stopped in phase %s (seed: %d)", t.Phase(), seed)
	}

	s.config.Logger.Debug("Game finished", "game", n+1, "seed", seed, "outcomes", len(rec.Outcomes))
	return played{result: Tally(seed, rec.Outcomes), outcomes: rec.Outcomes}, nil
}

// Tally summarizes a game's public outcome log.
func Tally(seed int64, outcomes []game.Outcome) statistics.GameResult {
	r := statistics.GameResult{Seed: seed, WinnerSeat: -1}
	seats := make(map[string]int)

	for _, o := range outcomes {
		switch v := o.(type) {
		case *game.JoinOutcome:
			seats[v.Player.ID] = r.Players
			r.Players++
		case *game.StartOutcome:
			r.Rounds = 1
		case *game.PlayOutcome:
			r.Plays++
		case *game.WaitOutcome:
			r.Waits++
		case *game.ChallengeOutcome:
			r.Challenges++
			if !v.Truthful {
				r.Bluffs++
			}
			r.Shots++
			if v.Shot.Result == revolver.Hit {
				r.Hits++
			}
		case *game.ReshuffleOutcome:
			r.Rounds = v.Round
		case *game.GameEndOutcome:
			if v.Winner != nil {
				if seat, ok := seats[v.Winner.ID]; ok {
					r.WinnerSeat = seat
					r.Winner = v.Winner.Name
				}
			}
		}
	}
	return r
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lox/liarsbar/internal/config"
	"github.com/lox/liarsbar/internal/fileutil"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/render"
	"github.com/lox/liarsbar/internal/simulator"
	"github.com/lox/liarsbar/internal/statistics"
)

// SimulateCmd plays all-bot games in parallel.
type SimulateCmd struct {
	Games      int           `short:"n" default:"100" help:"Number of games to simulate"`
	Players    int           `short:"p" default:"4" help:"Bots per game"`
	Seed       int64         `default:"0" help:"Base RNG seed (0 for random)"`
	Workers    int           `default:"0" help:"Games played at once (0 for GOMAXPROCS)"`
	Timeout    time.Duration `default:"1m" help:"Per-game timeout"`
	Strategy   string        `help:"Bot strategy: honest or random (overrides config)"`
	Transcript bool          `short:"t" help:"Print every game's announcements"`
	NoColor    bool          `help:"Disable colored output"`
	Report     string        `type:"path" help:"Write per-game results as JSON to this file"`
}

// report is the JSON written by --report.
type report struct {
	Seed     int64                   `json:"seed"`
	Players  int                     `json:"players"`
	Strategy string                  `json:"strategy"`
	Games    []statistics.GameResult `json:"games"`
	Seats    []statistics.SeatStats  `json:"seats"`
}

func (c *SimulateCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if c.Strategy != "" {
		cfg.Bots.Strategy = c.Strategy
	}
	level := "warn"
	if cli.LogLevel != "" {
		level = cli.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.Players < cfg.Rules.MinPlayers || c.Players > cfg.Rules.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d", cfg.Rules.MinPlayers, cfg.Rules.MaxPlayers)
	}

	opts := cfg.TableOptions()
	opts.BotDelay = 0

	out := render.New(os.Stdout, !c.NoColor)
	var results []statistics.GameResult
	sim := simulator.New(simulator.Config{
		Games:   c.Games,
		Players: c.Players,
		Seed:    c.Seed,
		Workers: c.Workers,
		Timeout: c.Timeout,
		Options: opts,
		Logger:  newLogger(level),
		OnGame: func(r statistics.GameResult, outcomes []game.Outcome) {
			results = append(results, r)
			if !c.Transcript {
				return
			}
			fmt.Printf("--- seed %d ---\n", r.Seed)
			for _, o := range outcomes {
				fmt.Println(out.Outcome(o))
			}
			fmt.Println()
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, stats, sim.Seed(), c.Players, cfg.Bots.Strategy, time.Since(start))

	if c.Report != "" {
		return fileutil.WriteJSON(c.Report, report{
			Seed:     sim.Seed(),
			Players:  c.Players,
			Strategy: cfg.Bots.Strategy,
			Games:    results,
			Seats:    stats.Seats,
		})
	}
	return nil
}

func printSummary(w io.Writer, s *statistics.Statistics, seed int64, players int, strategy string, elapsed time.Duration) {
	fmt.Fprintf(w, "Simulated %d games of %d %s bots in %v (seed %d)\n",
		s.Games, players, strategy, elapsed.Round(time.Millisecond), seed)
	fmt.Fprintf(w, "Rounds per game: mean %.2f, sd %.2f, median %.1f, p95 %.1f\n",
		s.Mean(), s.StdDev(), s.Median(), s.Percentile(0.95))
	fmt.Fprintf(w, "Actions: %d plays, %d waits, %d challenges (%.1f%% caught a bluff), %d hits\n",
		s.Plays, s.Waits, s.Challenges, 100*s.BluffRate(), s.Hits)
	if s.Undecided > 0 {
		fmt.Fprintf(w, "Games without a winner: %d\n", s.Undecided)
	}

	rates := make([]string, len(s.Seats))
	for i := range s.Seats {
		rates[i] = fmt.Sprintf("AI-%d %.1f%%", i+1, 100*s.WinRate(i))
	}
	fmt.Fprintf(w, "Win rate by seat: %s\n", strings.Join(rates, ", "))
}

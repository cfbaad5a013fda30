package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"

	"github.com/lox/liarsbar/internal/config"
	"github.com/lox/liarsbar/internal/server"
	"github.com/lox/liarsbar/internal/table"
)

// ServeCmd runs the WebSocket server.
type ServeCmd struct {
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
	Seed *int64 `help:"Deterministic RNG seed (overrides config)"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.LogLevel != "" {
		cfg.Server.LogLevel = cli.LogLevel
	}
	if c.Seed != nil {
		cfg.Server.Seed = *c.Seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger := newLogger(cfg.Server.LogLevel)
	clock := quartz.NewReal()

	srv := server.NewServer(addr, clock, logger)
	opts := cfg.TableOptions()
	opts.Notifier = srv
	opts.Clock = clock
	opts.Logger = logger

	registry := table.NewRegistry(opts)
	defer registry.Close()
	srv.SetRegistry(registry)

	logger.Info("Starting Liar's Bar server",
		"addr", addr,
		"players", fmt.Sprintf("%d-%d", opts.Rules.MinPlayers, opts.Rules.MaxPlayers),
		"hand_size", opts.Rules.HandSize,
		"chambers", opts.Rules.Chambers,
		"live_rounds", opts.Rules.LiveRounds,
		"bots", cfg.Bots.Strategy,
		"seed", cfg.Server.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server...")
	}()
	return srv.ListenAndServe(ctx)
}

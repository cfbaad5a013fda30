// Package config loads the liarsbar HCL configuration.
package config

import (
	"fmt"
	rand "math/rand/v2"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/liarsbar/internal/advisor"
	"github.com/lox/liarsbar/internal/card"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/table"
)

// Config is the complete configuration. Every block is optional.
type Config struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Rules   *RulesSettings   `hcl:"rules,block"`
	Advisor *AdvisorSettings `hcl:"advisor,block"`
	Bots    *BotSettings     `hcl:"bots,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	ChatHistory int    `hcl:"chat_history,optional"`
	Seed        int64  `hcl:"seed,optional"`
}

// RulesSettings mirrors game.Rules.
type RulesSettings struct {
	MinPlayers   int      `hcl:"min_players,optional"`
	MaxPlayers   int      `hcl:"max_players,optional"`
	HandSize     int      `hcl:"hand_size,optional"`
	MaxPlayCards int      `hcl:"max_play_cards,optional"`
	Chambers     int      `hcl:"chambers,optional"`
	LiveRounds   int      `hcl:"live_rounds,optional"`
	BaseRanks    []string `hcl:"base_ranks,optional"`
}

// AdvisorSettings bounds bot decision making.
type AdvisorSettings struct {
	MaxRetries     int    `hcl:"max_retries,optional"`
	AttemptTimeout string `hcl:"attempt_timeout,optional"`
	RetryDelay     string `hcl:"retry_delay,optional"`
}

// BotSettings configures bots added to tables.
type BotSettings struct {
	Strategy       string  `hcl:"strategy,optional"`
	Delay          string  `hcl:"delay,optional"`
	BluffChallenge float64 `hcl:"bluff_challenge,optional"`
}

// Bot strategies.
const (
	StrategyHonest = "honest"
	StrategyRandom = "random"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename, falling back to defaults when it does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse decodes HCL source; filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var config Config
	if diags := gohcl.DecodeBody(body, nil, &config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills every unset value.
func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ChatHistory == 0 {
		c.Server.ChatHistory = table.DefaultChatHistory
	}

	def := game.DefaultRules()
	if c.Rules == nil {
		c.Rules = &RulesSettings{}
	}
	r := c.Rules
	if r.MinPlayers == 0 {
		r.MinPlayers = def.MinPlayers
	}
	if r.MaxPlayers == 0 {
		r.MaxPlayers = def.MaxPlayers
	}
	if r.HandSize == 0 {
		r.HandSize = def.HandSize
	}
	if r.MaxPlayCards == 0 {
		r.MaxPlayCards = def.MaxPlayCards
	}
	if r.Chambers == 0 {
		r.Chambers = def.Chambers
	}
	if r.LiveRounds == 0 {
		r.LiveRounds = def.LiveRounds
	}
	if len(r.BaseRanks) == 0 {
		for _, rank := range def.BaseRanks {
			r.BaseRanks = append(r.BaseRanks, rank.String())
		}
	}

	if c.Advisor == nil {
		c.Advisor = &AdvisorSettings{}
	}
	if c.Advisor.MaxRetries == 0 {
		c.Advisor.MaxRetries = advisor.DefaultMaxRetries
	}
	if c.Advisor.AttemptTimeout == "" {
		c.Advisor.AttemptTimeout = advisor.DefaultAttemptTimeout.String()
	}
	if c.Advisor.RetryDelay == "" {
		c.Advisor.RetryDelay = advisor.DefaultRetryDelay.String()
	}

	if c.Bots == nil {
		c.Bots = &BotSettings{}
	}
	if c.Bots.Strategy == "" {
		c.Bots.Strategy = StrategyHonest
	}
	if c.Bots.Delay == "" {
		c.Bots.Delay = "0s"
	}
	if c.Bots.BluffChallenge == 0 {
		c.Bots.BluffChallenge = 0.2
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	if c.Server.ChatHistory < 0 {
		return fmt.Errorf("chat history must not be negative")
	}
	if err := c.GameRules().Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Advisor.MaxRetries < 1 {
		return fmt.Errorf("advisor max_retries must be at least 1")
	}
	for name, v := range map[string]string{
		"advisor attempt_timeout": c.Advisor.AttemptTimeout,
		"advisor retry_delay":     c.Advisor.RetryDelay,
		"bots delay":              c.Bots.Delay,
	} {
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return fmt.Errorf("invalid %s %q", name, v)
		}
	}
	switch c.Bots.Strategy {
	case StrategyHonest, StrategyRandom:
	default:
		return fmt.Errorf("unknown bot strategy %q", c.Bots.Strategy)
	}
	if c.Bots.BluffChallenge < 0 || c.Bots.BluffChallenge > 1 {
		return fmt.Errorf("bots bluff_challenge must be between 0 and 1")
	}
	return nil
}

// ServerAddress returns the listen address.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameRules converts the rules block.
func (c *Config) GameRules() game.Rules {
	ranks := make([]card.Rank, len(c.Rules.BaseRanks))
	for i, r := range c.Rules.BaseRanks {
		ranks[i] = card.Rank(r)
	}
	return game.Rules{
		MinPlayers:   c.Rules.MinPlayers,
		MaxPlayers:   c.Rules.MaxPlayers,
		HandSize:     c.Rules.HandSize,
		MaxPlayCards: c.Rules.MaxPlayCards,
		Chambers:     c.Rules.Chambers,
		LiveRounds:   c.Rules.LiveRounds,
		BaseRanks:    ranks,
	}
}

// TableOptions builds the template for new tables. Call Validate first;
// unparseable durations fall back to zero.
func (c *Config) TableOptions() table.Options {
	return table.Options{
		Rules:       c.GameRules(),
		Seed:        c.Server.Seed,
		ChatHistory: c.Server.ChatHistory,
		BotDelay:    mustDuration(c.Bots.Delay),
		NewBot:      c.botFactory(),
		Runner: advisor.Runner{
			MaxRetries:     c.Advisor.MaxRetries,
			AttemptTimeout: mustDuration(c.Advisor.AttemptTimeout),
			RetryDelay:     mustDuration(c.Advisor.RetryDelay),
		},
	}
}

func (c *Config) botFactory() func(rng *rand.Rand) advisor.Advisor {
	strategy, bluff := c.Bots.Strategy, c.Bots.BluffChallenge
	return func(rng *rand.Rand) advisor.Advisor {
		if strategy == StrategyRandom {
			return advisor.NewRandom(rng)
		}
		h := advisor.NewHonest(rng)
		h.BluffChallenge = bluff
		return h
	}
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/advisor"
	"github.com/lox/liarsbar/internal/card"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/randutil"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "localhost", c.Server.Address)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "localhost:8080", c.ServerAddress())
	assert.Equal(t, 10, c.Server.ChatHistory)
	assert.Equal(t, game.DefaultRules(), c.GameRules())

	opts := c.TableOptions()
	assert.Equal(t, 3, opts.Runner.MaxRetries)
	assert.Equal(t, 20*time.Second, opts.Runner.AttemptTimeout)
	assert.Equal(t, time.Second, opts.Runner.RetryDelay)
	assert.Zero(t, opts.BotDelay)
	assert.IsType(t, &advisor.Honest{}, opts.NewBot(randutil.New(1)))
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liarsbar.hcl")
	src := `
server {
  port      = 9000
  log_level = "debug"
  seed      = 12
}

rules {
  max_players = 4
  live_rounds = 1
  base_ranks  = ["J", "Q", "K", "A"]
}

advisor {
  max_retries     = 5
  attempt_timeout = "3s"
}

bots {
  strategy = "random"
  delay    = "750ms"
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, "localhost", c.Server.Address)
	assert.Equal(t, "debug", c.Server.LogLevel)

	rules := c.GameRules()
	assert.Equal(t, 4, rules.MaxPlayers)
	assert.Equal(t, 1, rules.LiveRounds)
	assert.Equal(t, 6, rules.Chambers)
	assert.Equal(t, []card.Rank{"J", "Q", "K", "A"}, rules.BaseRanks)

	opts := c.TableOptions()
	assert.Equal(t, int64(12), opts.Seed)
	assert.Equal(t, 5, opts.Runner.MaxRetries)
	assert.Equal(t, 3*time.Second, opts.Runner.AttemptTimeout)
	assert.Equal(t, 750*time.Millisecond, opts.BotDelay)
	assert.IsType(t, &advisor.Random{}, opts.NewBot(randutil.New(1)))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`server { port = }`), "bad.hcl")
	assert.Error(t, err)

	_, err = Parse([]byte(`unknown { }`), "bad.hcl")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"port":        `server { port = 70000 }`,
		"log level":   `server { log_level = "loud" }`,
		"rules":       `rules { live_rounds = 6 }`,
		"timeout":     `advisor { attempt_timeout = "soon" }`,
		"strategy":    `bots { strategy = "psychic" }`,
		"bluff rate":  `bots { bluff_challenge = 2 }`,
		"negative":    `bots { delay = "-1s" }`,
		"joker ranks": `rules { base_ranks = ["A", "Joker"] }`,
		"short deck":  "rules {\n  hand_size = 2\n  max_play_cards = 1\n}",
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := Parse([]byte(src), "test.hcl")
			require.NoError(t, err)
			assert.Error(t, c.Validate())
		})
	}
}

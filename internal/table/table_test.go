package table

import (
	"context"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/advisor"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/randutil"
)

func newTestTable(t *testing.T, rec *Recorder, modify ...func(*Options)) *Table {
	t.Helper()
	opts := Options{Rules: game.DefaultRules(), Seed: 42, Notifier: rec}
	for _, m := range modify {
		m(&opts)
	}
	tbl, err := New("t1", opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		tbl.Close()
		tbl.WaitIdle()
	})
	return tbl
}

func kinds(outcomes []game.Outcome) []game.OutcomeKind {
	out := make([]game.OutcomeKind, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Kind()
	}
	return out
}

func TestJoinAndStartNotify(t *testing.T) {
	rec := &Recorder{}
	tbl := newTestTable(t, rec)

	_, err := tbl.Join("a", "Alice")
	require.NoError(t, err)
	_, err = tbl.Join("b", "Bob")
	require.NoError(t, err)
	_, err = tbl.Join("a", "Alice")
	assert.ErrorIs(t, err, game.ErrAlreadyJoined)

	start, err := tbl.Start()
	require.NoError(t, err)

	assert.Equal(t, []game.OutcomeKind{game.KindJoin, game.KindJoin, game.KindStart}, kinds(rec.Outcomes))
	require.Len(t, rec.Hands, 2)
	for _, h := range rec.Hands {
		assert.Equal(t, start.MainRank, h.MainRank)
		assert.Len(t, h.Hand, 5)
	}
}

func TestActRejectsOutOfTurn(t *testing.T) {
	rec := &Recorder{}
	tbl := newTestTable(t, rec)
	_, _ = tbl.Join("a", "Alice")
	_, _ = tbl.Join("b", "Bob")
	_, err := tbl.Start()
	require.NoError(t, err)

	cur := tbl.Status().Current
	require.NotNil(t, cur)
	other := "a"
	if cur.ID == "a" {
		other = "b"
	}
	published := len(rec.Outcomes)

	_, err = tbl.Play(other, []int{1})
	var nyt *game.NotYourTurnError
	require.ErrorAs(t, err, &nyt)
	assert.Equal(t, cur.Name, nyt.Current.Name)
	assert.Len(t, rec.Outcomes, published)

	out, err := tbl.Play(cur.ID, []int{1})
	require.NoError(t, err)
	assert.Equal(t, game.KindPlay, out.Kind())
	assert.Len(t, rec.Outcomes, published+1)
	assert.Len(t, rec.Hands, 3, "the player who played gets a fresh hand")
}

func TestAddBotsNames(t *testing.T) {
	tbl := newTestTable(t, &Recorder{})
	_, err := tbl.Join("h", "AI-2")
	require.NoError(t, err)

	added, err := tbl.AddBots(3)
	require.NoError(t, err)
	require.Len(t, added, 3)
	assert.Equal(t, "AI-1", added[0].Name)
	assert.Equal(t, "AI-3", added[1].Name)
	assert.Equal(t, "AI-4", added[2].Name)
	for _, p := range added {
		assert.Regexp(t, `^bot-[0-9a-f]{8}$`, p.ID)
	}

	v := tbl.Status()
	assert.Len(t, v.Players, 4)
	assert.True(t, v.Players[1].Bot)
	assert.Equal(t, 3, tbl.Summary().Bots)
}

func TestAddBotsStopsWhenFull(t *testing.T) {
	rules := game.DefaultRules()
	rules.MaxPlayers = 3
	tbl := newTestTable(t, &Recorder{}, func(o *Options) { o.Rules = rules })

	_, err := tbl.Join("h", "Human")
	require.NoError(t, err)
	added, err := tbl.AddBots(5)
	require.NoError(t, err)
	assert.Len(t, added, 2)

	_, err = tbl.AddBots(1)
	assert.ErrorIs(t, err, game.ErrTableFull)
}

func TestBotsPlayToCompletion(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		rec := &Recorder{}
		tbl := newTestTable(t, rec, func(o *Options) { o.Seed = seed })

		_, err := tbl.AddBots(4)
		require.NoError(t, err)
		_, err = tbl.Start()
		require.NoError(t, err)

		tbl.WaitIdle()

		require.Equal(t, game.Ended, tbl.Phase(), "seed %d", seed)
		res := tbl.Result()
		require.NotNil(t, res)
		assert.Equal(t, game.EndLastStanding, res.Reason)
		require.NotNil(t, res.Winner)

		last := rec.Outcomes[len(rec.Outcomes)-1]
		assert.Equal(t, game.KindGameEnd, last.Kind())
		assert.Empty(t, rec.Hands, "bots get no private hand messages")
	}
}

func TestHumanAndBotTakeTurns(t *testing.T) {
	rec := &Recorder{}
	tbl := newTestTable(t, rec, func(o *Options) { o.Seed = 7 })
	_, err := tbl.Join("h", "Human")
	require.NoError(t, err)
	_, err = tbl.AddBots(1)
	require.NoError(t, err)
	_, err = tbl.Start()
	require.NoError(t, err)

	rng := randutil.New(7)
	humanMoves := 0
	for i := 0; i < 5000; i++ {
		tbl.WaitIdle()
		if tbl.Phase() != game.Playing {
			break
		}
		v, err := tbl.View("h")
		require.NoError(t, err)
		require.True(t, v.IsTurn(), "bot left the turn hanging")

		_, err = tbl.Act("h", advisor.RandomMove(rng, v))
		require.NoError(t, err)
		humanMoves++
	}

	tbl.WaitIdle()
	assert.Equal(t, game.Ended, tbl.Phase())
	assert.Positive(t, humanMoves)
}

func TestStaleBotDecisionIsDiscarded(t *testing.T) {
	rec := &Recorder{}
	tbl := newTestTable(t, rec)

	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	blocking := advisor.Func(func(ctx context.Context, v game.View) (game.Decision, error) {
		entered <- struct{}{}
		<-release
		return advisor.RandomMove(randutil.New(1), v), nil
	})
	_, err := tbl.AddBot("b1", "One", blocking)
	require.NoError(t, err)
	_, err = tbl.AddBot("b2", "Two", blocking)
	require.NoError(t, err)

	_, err = tbl.Start()
	require.NoError(t, err)
	<-entered

	_, err = tbl.ForceEnd("closing time")
	require.NoError(t, err)
	close(release)
	tbl.WaitIdle()

	assert.Equal(t, []game.OutcomeKind{game.KindJoin, game.KindJoin, game.KindStart, game.KindGameEnd}, kinds(rec.Outcomes))
	assert.Equal(t, game.EndForced, tbl.Result().Reason)
}

func TestChatHistory(t *testing.T) {
	clock := quartz.NewMock(t)
	tbl := newTestTable(t, &Recorder{}, func(o *Options) {
		o.ChatHistory = 2
		o.Clock = clock
	})
	_, _ = tbl.Join("a", "Alice")
	_, _ = tbl.Join("b", "Bob")

	tbl.Chat("Alice", "before the game")
	_, err := tbl.Start()
	require.NoError(t, err)

	tbl.Chat("Alice", "one")
	tbl.Chat("Bob", "two")
	tbl.Chat("Alice", "three")

	v, err := tbl.View("b")
	require.NoError(t, err)
	require.Len(t, v.RecentChat, 2)
	assert.Equal(t, game.ChatLine{Name: "Bob", Text: "two", At: clock.Now()}, v.RecentChat[0])
	assert.Equal(t, "three", v.RecentChat[1].Text)
}

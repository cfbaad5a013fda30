package advisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/card"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/randutil"
)

func TestDecodeDecision(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    game.Decision
		wantErr bool
	}{
		{
			name:  "plain play",
			reply: `{"action":"play","indices":[1,3]}`,
			want:  game.Decision{Action: game.ActionPlay, Indices: []int{1, 3}},
		},
		{
			name:  "surrounded by prose",
			reply: "Thinking... I'll call it.\n{\"action\": \"Challenge\", \"reasoning\": \"too many kings\"} done",
			want:  game.Decision{Action: game.ActionChallenge, Reasoning: "too many kings"},
		},
		{
			name:  "wait drops indices",
			reply: `{"action":"wait","indices":[2]}`,
			want:  game.Decision{Action: game.ActionWait},
		},
		{name: "no json", reply: "I fold", wantErr: true},
		{name: "broken json", reply: `{"action": play}`, wantErr: true},
		{name: "unknown action", reply: `{"action":"raise"}`, wantErr: true},
		{name: "play without indices", reply: `{"action":"play"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDecision([]byte(tt.reply))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func views() []game.View {
	claim := &game.ClaimView{Player: game.PlayerRef{ID: "x", Name: "x"}, Quantity: 2}
	return []game.View{
		{MainRank: "K", MaxPlayCards: 3, Hand: []card.Rank{"K", "Q", "Joker", "A"}},
		{MainRank: "K", MaxPlayCards: 3, Hand: []card.Rank{"Q", "A"}, Claim: claim},
		{MainRank: "K", MaxPlayCards: 3, Claim: claim},
		{MainRank: "K", MaxPlayCards: 3},
		{MainRank: "K", MaxPlayCards: 2, Hand: []card.Rank{"K", "K", "K", "Joker"}, Claim: claim},
	}
}

func TestRandomMoveIsAlwaysLegal(t *testing.T) {
	rng := randutil.New(1)
	for i := 0; i < 500; i++ {
		for _, v := range views() {
			d := RandomMove(rng, v)
			require.NoError(t, v.Check(d), "view %+v decision %v", v, d)
		}
	}
}

func TestRandomEmptyHandWithoutClaimWaits(t *testing.T) {
	r := NewRandom(randutil.New(2))
	d, err := r.Decide(context.Background(), game.View{MaxPlayCards: 3})
	require.NoError(t, err)
	assert.Equal(t, game.ActionWait, d.Action)
}

func TestHonestIsAlwaysLegal(t *testing.T) {
	h := NewHonest(randutil.New(3))
	for i := 0; i < 200; i++ {
		for _, v := range views() {
			d, err := h.Decide(context.Background(), v)
			require.NoError(t, err)
			require.NoError(t, v.Check(d), "view %+v decision %v", v, d)
		}
	}
}

func TestHonestPlaysMatchingCards(t *testing.T) {
	h := NewHonest(randutil.New(4))
	v := game.View{MainRank: "K", MaxPlayCards: 3, Hand: []card.Rank{"Q", "K", "A", "Joker"}}
	d, err := h.Decide(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, game.Decision{Action: game.ActionPlay, Indices: []int{2, 4}, Reasoning: "playing true cards"}, d)
}

func TestHonestDoubtsLargeClaimWhenHoldingMatches(t *testing.T) {
	h := NewHonest(randutil.New(5))
	v := views()[4]
	d, err := h.Decide(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, game.ActionChallenge, d.Action)
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/advisor"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/table"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer("", quartz.NewReal(), log.New(io.Discard))
	reg := table.NewRegistry(table.Options{Rules: game.DefaultRules(), Seed: 3, Notifier: srv})
	srv.SetRegistry(reg)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		reg.Close()
		cancel()
	})
	return srv, ts
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(mt MessageType, data any) {
	c.t.Helper()
	msg, err := NewMessage(mt, data, time.Now())
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// expect reads until a message of type mt arrives and decodes its data.
func (c *wsClient) expect(mt MessageType, v any) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg Message
		require.NoError(c.t, c.conn.ReadJSON(&msg), "waiting for %s", mt)
		if msg.Type != mt {
			continue
		}
		if v != nil {
			require.NoError(c.t, json.Unmarshal(msg.Data, v))
		}
		return
	}
}

func (c *wsClient) auth(name string) string {
	c.t.Helper()
	c.send(MessageTypeAuth, AuthData{PlayerName: name})
	var resp AuthResponseData
	c.expect(MessageTypeAuthResponse, &resp)
	require.NotEmpty(c.t, resp.PlayerID)
	return resp.PlayerID
}

func TestServerHealth(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequiresAuth(t *testing.T) {
	_, ts := testServer(t)
	c := dial(t, ts)

	c.send(MessageTypeStart, nil)
	var e ErrorData
	c.expect(MessageTypeError, &e)
	assert.Equal(t, "not_authenticated", e.Code)

	c.send(MessageTypeAuth, AuthData{PlayerName: "  "})
	c.expect(MessageTypeError, &e)
	assert.Equal(t, "invalid_auth", e.Code)
}

func TestTableFlow(t *testing.T) {
	_, ts := testServer(t)

	alice := dial(t, ts)
	aliceID := alice.auth("Alice")
	alice.send(MessageTypeCreateTable, TableData{TableID: "room"})
	var created TableData
	alice.expect(MessageTypeTableCreated, &created)
	assert.Equal(t, "room", created.TableID)
	alice.expect(MessageType(game.KindJoin), nil)

	bob := dial(t, ts)
	bobID := bob.auth("Bob")
	bob.send(MessageTypeJoinTable, TableData{TableID: "room"})
	var joined game.JoinOutcome
	alice.expect(MessageType(game.KindJoin), &joined)
	assert.Equal(t, "Bob", joined.Player.Name)
	assert.Equal(t, 2, joined.Players)

	// A second live table at the same id is refused.
	bob.send(MessageTypeCreateTable, TableData{TableID: "room"})
	var e ErrorData
	bob.expect(MessageTypeError, &e)
	assert.Equal(t, "table_exists", e.Code)

	alice.send(MessageTypeStart, nil)
	var start game.StartOutcome
	alice.expect(MessageType(game.KindStart), &start)
	bob.expect(MessageType(game.KindStart), nil)

	var hand game.HandSnapshot
	bob.expect(MessageTypeHand, &hand)
	assert.Equal(t, bobID, hand.Player.ID)
	assert.Len(t, hand.Hand, 5)
	assert.Equal(t, start.MainRank, hand.MainRank)

	current, other := alice, bob
	if start.First.ID == bobID {
		current, other = bob, alice
	} else {
		require.Equal(t, aliceID, start.First.ID)
	}

	other.send(MessageTypeDecision, game.Decision{Action: "play", Indices: []int{1}})
	other.expect(MessageTypeError, &e)
	assert.Equal(t, "not_your_turn", e.Code)

	current.send(MessageTypeDecision, game.Decision{Action: "play", Indices: []int{1, 1}})
	current.expect(MessageTypeError, &e)
	assert.Equal(t, "invalid_indices", e.Code)

	current.send(MessageTypeDecision, game.Decision{Action: "fold"})
	current.expect(MessageTypeError, &e)
	assert.Equal(t, "invalid_decision", e.Code)

	current.send(MessageTypeDecision, game.Decision{Action: "play"})
	current.expect(MessageTypeError, &e)
	assert.Equal(t, "invalid_decision", e.Code)

	current.send(MessageTypeDecision, game.Decision{Action: " PLAY ", Indices: []int{1}})
	var play game.PlayOutcome
	other.expect(MessageType(game.KindPlay), &play)
	assert.Equal(t, 1, play.Quantity)
	require.NotNil(t, play.Next)
	assert.Equal(t, 4, play.HandLeft)

	other.send(MessageTypeStatus, nil)
	var status StatusData
	other.expect(MessageTypeStatus, &status)
	assert.Equal(t, "room", status.TableID)
	require.NotNil(t, status.View.Claim)
	assert.Equal(t, 1, status.View.Claim.Quantity)
	assert.Nil(t, status.View.Hand)

	resp, err := http.Get(ts.URL + "/tables")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list TableListData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Tables, 1)
	assert.Equal(t, "room", list.Tables[0].ID)

	alice.send(MessageTypeEndTable, nil)
	var end game.GameEndOutcome
	bob.expect(MessageType(game.KindGameEnd), &end)
	assert.Equal(t, game.EndForced, end.Reason)
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{&game.NotYourTurnError{}, "not_your_turn"},
		{&game.PlayCountError{}, "invalid_play_count"},
		{&game.NotEnoughPlayersError{}, "not_enough_players"},
		{&game.IntegrityError{Op: "x", Err: game.ErrEmptyHand}, "integrity_failure"},
		{game.ErrNoChallengeTarget, "no_challenge_target"},
		{game.ErrHandNotEmpty, "hand_not_empty"},
		{table.ErrTableNotFound, "table_not_found"},
		{advisor.ErrMalformed, "invalid_decision"},
		{io.EOF, "internal_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, errorCode(tt.err), "%v", tt.err)
	}
}

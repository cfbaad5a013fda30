package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/game"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(Options{Rules: game.DefaultRules(), Seed: 9})
	t.Cleanup(r.Close)

	tbl, err := r.Create("room", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", tbl.Creator())

	_, err = r.Create("room", "bob")
	assert.ErrorIs(t, err, ErrTableExists)

	got, err := r.Get("room")
	require.NoError(t, err)
	assert.Same(t, tbl, got)

	_, err = r.Get("nowhere")
	assert.ErrorIs(t, err, ErrTableNotFound)

	end, err := r.End("room", "creator left")
	require.NoError(t, err)
	assert.Equal(t, game.EndForced, end.Reason)

	_, err = r.End("room", "again")
	assert.ErrorIs(t, err, game.ErrGameEnded)

	// An ended game can be replaced.
	replacement, err := r.Create("room", "bob")
	require.NoError(t, err)
	assert.NotSame(t, tbl, replacement)
	assert.Equal(t, game.Waiting, replacement.Phase())

	assert.True(t, r.Delete("room"))
	assert.False(t, r.Delete("room"))
	_, err = r.End("room", "")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry(Options{Rules: game.DefaultRules()})
	t.Cleanup(r.Close)

	for _, id := range []string{"c", "a", "b"} {
		_, err := r.Create(id, "")
		require.NoError(t, err)
	}
	tbl, err := r.Get("a")
	require.NoError(t, err)
	_, err = tbl.Join("p", "P")
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, 1, list[0].Players)
	assert.Equal(t, game.Waiting, list[0].Phase)
	assert.Equal(t, "c", list[2].ID)
}

func TestRegistryRejectsBadRules(t *testing.T) {
	rules := game.DefaultRules()
	rules.MinPlayers = 0
	r := NewRegistry(Options{Rules: rules})
	_, err := r.Create("x", "")
	assert.Error(t, err)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
}

package table

import "github.com/lox/liarsbar/internal/game"

// Notifier receives everything a table announces. Calls are made while the
// table lock is held, in the order actions were applied, so implementations
// must not block or call back into the table.
type Notifier interface {
	// Broadcast delivers a public outcome to everyone at the table.
	Broadcast(tableID string, o game.Outcome)
	// SendHand delivers a private hand snapshot to one human player.
	SendHand(tableID string, h game.HandSnapshot)
}

// NopNotifier discards everything.
type NopNotifier struct{}

func (NopNotifier) Broadcast(string, game.Outcome)      {}
func (NopNotifier) SendHand(string, game.HandSnapshot) {}

// Recorder keeps every notification, in order. It is used by the simulator
// and by tests.
type Recorder struct {
	Outcomes []game.Outcome
	Hands    []game.HandSnapshot
}

func (r *Recorder) Broadcast(_ string, o game.Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Recorder) SendHand(_ string, h game.HandSnapshot) {
	r.Hands = append(r.Hands, h)
}

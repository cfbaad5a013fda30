package game

// Roster tracks who joined, who is still active and the fixed turn order.
// Eliminated players keep their turn-order slot so forward scans past them
// stay well defined.
type Roster struct {
	players   map[string]*Player
	joinOrder []string
	turnOrder []string
}

func newRoster() *Roster {
	return &Roster{players: make(map[string]*Player)}
}

func (r *Roster) add(p *Player) {
	r.players[p.ID] = p
	r.joinOrder = append(r.joinOrder, p.ID)
}

// Get returns the player with id, or nil.
func (r *Roster) Get(id string) *Player {
	return r.players[id]
}

// Len returns the number of joined players, eliminated or not.
func (r *Roster) Len() int {
	return len(r.joinOrder)
}

// Joined returns every player in join order.
func (r *Roster) Joined() []*Player {
	out := make([]*Player, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		out = append(out, r.players[id])
	}
	return out
}

// ActiveIDs returns the non-eliminated players in join order.
func (r *Roster) ActiveIDs() []string {
	var ids []string
	for _, id := range r.joinOrder {
		if r.players[id].IsActive() {
			ids = append(ids, id)
		}
	}
	return ids
}

// ActiveInTurnOrder returns the non-eliminated players ordered by turn
// order. Before the turn order is set it falls back to join order.
func (r *Roster) ActiveInTurnOrder() []string {
	if len(r.turnOrder) == 0 {
		return r.ActiveIDs()
	}
	var ids []string
	for _, id := range r.turnOrder {
		if p := r.players[id]; p != nil && p.IsActive() {
			ids = append(ids, id)
		}
	}
	return ids
}

// TurnOrder returns a copy of the turn order, eliminated players included.
func (r *Roster) TurnOrder() []string {
	out := make([]string, len(r.turnOrder))
	copy(out, r.turnOrder)
	return out
}

// SlotOf returns the turn-order index of id, or -1.
func (r *Roster) SlotOf(id string) int {
	for i, pid := range r.turnOrder {
		if pid == id {
			return i
		}
	}
	return -1
}

// At returns the player in turn-order slot i, or nil.
func (r *Roster) At(i int) *Player {
	if i < 0 || i >= len(r.turnOrder) {
		return nil
	}
	return r.players[r.turnOrder[i]]
}

// AdvanceFrom scans forward from index+1, wrapping, for one full lap and
// returns the first active slot. The lap ends on index itself, so a lone
// survivor finds their own slot. ok is false when nobody is active.
func (r *Roster) AdvanceFrom(index int) (int, bool) {
	n := len(r.turnOrder)
	if n == 0 {
		return 0, false
	}
	for step := 1; step <= n; step++ {
		i := ((index+step)%n + n) % n
		if p := r.players[r.turnOrder[i]]; p != nil && p.IsActive() {
			return i, true
		}
	}
	return 0, false
}

// ActiveCount returns how many players are still in.
func (r *Roster) ActiveCount() int {
	n := 0
	for _, p := range r.players {
		if p.IsActive() {
			n++
		}
	}
	return n
}

// IsGameOver is true when at most one player remains.
func (r *Roster) IsGameOver() bool {
	return r.ActiveCount() <= 1
}

// SoleWinner returns the last active player, or nil when zero or several
// remain.
func (r *Roster) SoleWinner() *Player {
	ids := r.ActiveIDs()
	if len(ids) != 1 {
		return nil
	}
	return r.players[ids[0]]
}

// AllActiveHandsEmpty reports whether every active player holds no cards.
func (r *Roster) AllActiveHandsEmpty() bool {
	for _, id := range r.ActiveIDs() {
		if len(r.players[id].Hand) > 0 {
			return false
		}
	}
	return true
}

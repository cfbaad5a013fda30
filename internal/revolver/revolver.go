// Package revolver models a player's personal revolver: a fixed chamber of
// live and blank rounds and a pointer that rotates one step per pull.
package revolver

import (
	"fmt"
	rand "math/rand/v2"
)

// Round is what sits in one chamber.
type Round string

const (
	Live  Round = "live"
	Blank Round = "blank"
)

// Result is the outcome of a trigger pull.
type Result int

const (
	// Safe means the chamber held a blank.
	Safe Result = iota
	// Hit means the chamber held a live round; the owner is eliminated.
	Hit
	// AlreadyEliminated means the owner was out before the pull.
	AlreadyEliminated
)

// String returns a lowercase name for the result.
func (r Result) String() string {
	switch r {
	case Safe:
		return "safe"
	case Hit:
		return "hit"
	case AlreadyEliminated:
		return "already_eliminated"
	default:
		return "unknown"
	}
}

// MarshalText encodes the result by name.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a result name.
func (r *Result) UnmarshalText(text []byte) error {
	for _, v := range []Result{Safe, Hit, AlreadyEliminated} {
		if v.String() == string(text) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("unknown result %q", text)
}

// Revolver holds the chamber sequence and the firing pointer.
// Invariant: 0 <= pointer < len(chambers).
type Revolver struct {
	chambers []Round
	pointer  int
}

// New loads live rounds into a chamber of the given size, shuffles it and
// spins to a random starting position. live is clamped so at least one
// blank remains, as a fully loaded revolver would make the game trivial.
func New(rng *rand.Rand, size, live int) *Revolver {
	if size < 1 {
		panic("revolver needs at least one chamber")
	}
	live = max(0, min(live, size-1))
	if size == 1 {
		live = 0
	}

	chambers := make([]Round, size)
	for i := range chambers {
		if i < live {
			chambers[i] = Live
		} else {
			chambers[i] = Blank
		}
	}
	rng.Shuffle(size, func(i, j int) {
		chambers[i], chambers[j] = chambers[j], chambers[i]
	})

	return &Revolver{chambers: chambers, pointer: rng.IntN(size)}
}

// FromChambers builds a revolver with an explicit layout and pointer.
func FromChambers(chambers []Round, pointer int) (*Revolver, error) {
	if len(chambers) == 0 {
		return nil, fmt.Errorf("revolver needs at least one chamber")
	}
	if pointer < 0 || pointer >= len(chambers) {
		return nil, fmt.Errorf("pointer %d out of range [0, %d)", pointer, len(chambers))
	}
	c := make([]Round, len(chambers))
	copy(c, chambers)
	return &Revolver{chambers: c, pointer: pointer}, nil
}

// Pull reads the current chamber and rotates the pointer. The pointer
// always advances, so the rotation sequence stays auditable.
func (r *Revolver) Pull() Round {
	round := r.chambers[r.pointer]
	r.pointer = (r.pointer + 1) % len(r.chambers)
	return round
}

// Pointer returns the index of the chamber the next pull will read.
func (r *Revolver) Pointer() int {
	return r.pointer
}

// Size returns the number of chambers.
func (r *Revolver) Size() int {
	return len(r.chambers)
}

// LiveRounds returns how many chambers hold a live round.
func (r *Revolver) LiveRounds() int {
	n := 0
	for _, c := range r.chambers {
		if c == Live {
			n++
		}
	}
	return n
}

// Chambers returns a copy of the chamber layout.
func (r *Revolver) Chambers() []Round {
	c := make([]Round, len(r.chambers))
	copy(c, r.chambers)
	return c
}

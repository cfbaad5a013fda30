package game

import "fmt"

// Phase is the lifecycle stage of a game. Transitions only go forward.
type Phase int

const (
	Waiting Phase = iota
	Playing
	Ended
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText lets phases appear by name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "waiting":
		*p = Waiting
	case "playing":
		*p = Playing
	case "ended":
		*p = Ended
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

package statistics

import (
	"fmt"
	"math"
	"sort"
)

// GameResult is the outcome of one simulated game.
type GameResult struct {
	// Seed replays the game.
	Seed    int64 `json:"seed"`
	Players int   `json:"players"`
	// WinnerSeat is the winner's join-order seat, -1 if nobody won.
	WinnerSeat int    `json:"winner_seat"`
	Winner     string `json:"winner,omitempty"`
	// Rounds counts deals, including the first.
	Rounds     int `json:"rounds"`
	Plays      int `json:"plays"`
	Waits      int `json:"waits"`
	Challenges int `json:"challenges"`
	// Bluffs counts challenges that exposed a false claim.
	Bluffs int `json:"bluffs"`
	Shots  int `json:"shots"`
	// Hits counts pulls that eliminated someone.
	Hits int `json:"hits"`
}

// SeatStats tracks results for one join-order seat.
type SeatStats struct {
	Games int `json:"games"`
	Wins  int `json:"wins"`
}

// Statistics aggregates simulated games.
type Statistics struct {
	Games   int
	Rounds  int
	Rounds2 int       // Sum of squares for variance calculation
	Values  []float64 // Rounds per game, for median/percentile calculation

	Decided   int // Games with a winner
	Undecided int // Games that were forced or aborted

	Plays      int
	Waits      int
	Challenges int
	Bluffs     int
	Shots      int
	Hits       int

	Seats []SeatStats
}

// Add incorporates a game result.
func (s *Statistics) Add(r GameResult) {
	s.Games++
	s.Rounds += r.Rounds
	s.Rounds2 += r.Rounds * r.Rounds
	s.Values = append(s.Values, float64(r.Rounds))

	s.Plays += r.Plays
	s.Waits += r.Waits
	s.Challenges += r.Challenges
	s.Bluffs += r.Bluffs
	s.Shots += r.Shots
	s.Hits += r.Hits

	for len(s.Seats) < r.Players {
		s.Seats = append(s.Seats, SeatStats{})
	}
	for i := 0; i < r.Players; i++ {
		s.Seats[i].Games++
	}
	if r.WinnerSeat >= 0 && r.WinnerSeat < r.Players {
		s.Decided++
		s.Seats[r.WinnerSeat].Wins++
	} else {
		s.Undecided++
	}
}

// Mean returns the mean number of rounds per game
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Rounds) / float64(s.Games)
}

// Variance returns the sample variance of rounds per game
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (float64(s.Rounds2) - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of rounds per game
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Median returns the median number of rounds
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the rounds value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// WinRate returns the share of games won from a join-order seat.
func (s *Statistics) WinRate(seat int) float64 {
	if seat < 0 || seat >= len(s.Seats) || s.Seats[seat].Games == 0 {
		return 0
	}
	return float64(s.Seats[seat].Wins) / float64(s.Seats[seat].Games)
}

// BluffRate returns the share of challenges that caught a bluff.
func (s *Statistics) BluffRate() float64 {
	if s.Challenges == 0 {
		return 0
	}
	return float64(s.Bluffs) / float64(s.Challenges)
}

// Validate checks the tallies are consistent with each other.
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)",
			len(s.Values), s.Games)
	}
	if s.Decided+s.Undecided != s.Games {
		return fmt.Errorf("decided (%d) plus undecided (%d) does not match games (%d)",
			s.Decided, s.Undecided, s.Games)
	}
	wins := 0
	for _, seat := range s.Seats {
		wins += seat.Wins
	}
	if wins != s.Decided {
		return fmt.Errorf("seat wins total (%d) does not match decided games (%d)", wins, s.Decided)
	}
	if s.Bluffs > s.Challenges {
		return fmt.Errorf("bluffs (%d) exceed challenges (%d)", s.Bluffs, s.Challenges)
	}
	if s.Hits > s.Shots {
		return fmt.Errorf("hits (%d) exceed shots (%d)", s.Hits, s.Shots)
	}
	if s.Shots != s.Challenges {
		return fmt.Errorf("shots (%d) do not match challenges (%d)", s.Shots, s.Challenges)
	}
	return nil
}

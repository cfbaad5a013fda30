// Package game implements the rules engine for Liar's Bar: a bluffing card
// game where every lost confrontation ends with a pull of the loser's
// personal revolver.
//
// The main type is Game, a single table's state machine. It moves through
// three phases, Waiting -> Playing -> Ended, and never goes back.
//
// # Basic Usage
//
//	g, err := game.New(game.DefaultRules(), game.WithSeed(42))
//	g.Join("alice", "Alice", false)
//	g.Join("bob", "Bob", false)
//	start, err := g.Start()
//	// Whoever start.First names must act.
//	play, err := g.Play(start.First.ID, []int{1, 2})
//	ch, err := g.Challenge(play.Next.ID)
//
// Each action returns a typed outcome (PlayOutcome, ChallengeOutcome,
// WaitOutcome) carrying only the fields relevant to that action. Follow-on
// effects such as an automatic reshuffle or the end of the game are attached
// as nested ReshuffleOutcome and GameEndOutcome values; Sequence flattens an
// outcome into the ordered list a presentation layer should announce.
//
// # Errors
//
// Usage errors (wrong phase, not your turn, bad card indices, ...) leave the
// game untouched. Integrity errors (see IsIntegrity) mean an invariant could
// not be upheld; the game is forced into the Ended phase and the returned
// outcome still describes how it ended.
//
// # Concurrency
//
// A Game is not safe for concurrent use. Callers serialize access per table,
// see the table package.
//
// # Deterministic Testing
//
// Randomness (main rank, deck order, turn order, revolver layout) comes from
// one injected *rand.Rand. WithSeed or WithRNG make a game reproducible.
package game

// Package render turns outcome records into text for terminals and logs.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/liarsbar/internal/card"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/revolver"
)

// Renderer formats outcomes. Styling follows the writer's terminal unless
// color is disabled.
type Renderer struct {
	header  lipgloss.Style
	name    lipgloss.Style
	success lipgloss.Style
	danger  lipgloss.Style
	info    lipgloss.Style
}

// New creates a Renderer for w.
func New(w io.Writer, color bool) *Renderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		header:  r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Bold(true),
		name:    r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("#96CEB4")),
		danger:  r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.Color("#626262")),
	}
}

// Plain is a Renderer without styling.
func Plain() *Renderer {
	return New(io.Discard, false)
}

// Sequence renders o and everything it caused, one line each.
func (r *Renderer) Sequence(o game.Outcome) string {
	var lines []string
	for _, step := range game.Sequence(o) {
		lines = append(lines, r.Outcome(step))
	}
	return strings.Join(lines, "\n")
}

// Outcome renders a single record without its nested follow-ups.
func (r *Renderer) Outcome(o game.Outcome) string {
	switch v := o.(type) {
	case *game.JoinOutcome:
		who := r.who(v.Player)
		if v.Bot {
			who += " (bot)"
		}
		return fmt.Sprintf("%s joined the table (%d players)", who, v.Players)

	case *game.StartOutcome:
		return fmt.Sprintf("%s Main rank %s. Turn order: %s. %s goes first.",
			r.header.Render("Game started."), r.rank(v.MainRank), r.order(v.TurnOrder), r.who(v.First))

	case *game.PlayOutcome:
		s := ""
		if v.Accepted != nil {
			s = fmt.Sprintf("%s's %s accepted. ", r.who(v.Accepted.Player), cards(v.Accepted.Quantity))
		}
		s += fmt.Sprintf("%s plays %s face down (%d left).", r.who(v.Player), cards(v.Quantity), v.HandLeft)
		return s + r.next(v.Resolution)

	case *game.ChallengeOutcome:
		verdict := r.danger.Render("Bluff!")
		if v.Truthful {
			verdict = r.success.Render("Truthful.")
		}
		return fmt.Sprintf("%s challenges %s. Revealed %s: %s %s%s",
			r.who(v.Challenger), r.who(v.Claimant), strings.Join(rankStrings(v.Revealed), " "),
			verdict, r.shot(v.Shot), r.next(v.Resolution))

	case *game.WaitOutcome:
		s := ""
		if v.Accepted != nil {
			s = fmt.Sprintf("%s's %s accepted. ", r.who(v.Accepted.Player), cards(v.Accepted.Quantity))
		}
		return s + fmt.Sprintf("%s waits.", r.who(v.Player)) + r.next(v.Resolution)

	case *game.ReshuffleOutcome:
		return fmt.Sprintf("%s (%s). Round %d, main rank %s. %s starts.",
			r.header.Render("Reshuffle"), v.Reason(), v.Round, r.rank(v.MainRank), r.who(v.Starter))

	case *game.GameEndOutcome:
		switch {
		case v.Reason == game.EndForced:
			if v.Detail != "" {
				return r.header.Render("Game ended: " + v.Detail)
			}
			return r.header.Render("Game ended.")
		case v.Winner != nil:
			return fmt.Sprintf("%s %s wins!", r.header.Render("Game over."), r.who(*v.Winner))
		default:
			return r.danger.Render("Game over with no winner: " + v.Detail)
		}
	}
	return fmt.Sprintf("%v", o)
}

// Hand renders a private hand snapshot.
func (r *Renderer) Hand(h game.HandSnapshot) string {
	return fmt.Sprintf("Your hand: %s (main rank %s)", card.Format(h.Hand), r.rank(h.MainRank))
}

// Status renders the public view of a table.
func (r *Renderer) Status(v game.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s round %d", r.header.Render(v.Phase.String()), v.Round)
	if v.MainRank != "" {
		fmt.Fprintf(&b, ", main rank %s", r.rank(v.MainRank))
	}
	b.WriteByte('\n')
	for _, s := range v.Players {
		marker := "  "
		if v.Current != nil && v.Current.ID == s.Player.ID {
			marker = "> "
		}
		state := fmt.Sprintf("%d cards", s.HandCount)
		if s.Eliminated {
			state = r.danger.Render("eliminated")
		}
		fmt.Fprintf(&b, "%s%s: %s\n", marker, r.who(s.Player), state)
	}
	if v.Claim != nil {
		fmt.Fprintf(&b, "Pending claim: %s, %s\n", r.who(v.Claim.Player), cards(v.Claim.Quantity))
	}
	if len(v.Hand) > 0 {
		fmt.Fprintf(&b, "Your hand: %s\n", card.Format(v.Hand))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) who(p game.PlayerRef) string {
	return r.name.Render(p.Name)
}

func (r *Renderer) rank(rank card.Rank) string {
	return r.header.Render(rank.String())
}

func (r *Renderer) order(seats []game.SeatStatus) string {
	names := make([]string, 0, len(seats))
	for _, s := range seats {
		if s.Eliminated {
			names = append(names, r.info.Render(s.Player.Name+" (out)"))
			continue
		}
		names = append(names, s.Player.Name)
	}
	return strings.Join(names, " -> ")
}

func (r *Renderer) shot(s game.Shot) string {
	switch s.Result {
	case revolver.Hit:
		return fmt.Sprintf("%s pulls the trigger... %s %s is eliminated.", r.who(s.Player), r.danger.Render("BANG!"), r.who(s.Player))
	case revolver.AlreadyEliminated:
		return fmt.Sprintf("%s is already out.", r.who(s.Player))
	default:
		return fmt.Sprintf("%s pulls the trigger... %s", r.who(s.Player), r.success.Render("click."))
	}
}

func (r *Renderer) next(res game.Resolution) string {
	if res.Next == nil {
		return ""
	}
	s := fmt.Sprintf(" Next: %s", r.who(*res.Next))
	if res.NextHandEmpty {
		s += r.info.Render(" (empty hand)")
	}
	return s + "."
}

func cards(n int) string {
	if n == 1 {
		return "1 card"
	}
	return fmt.Sprintf("%d cards", n)
}

func rankStrings(cards []card.Rank) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

package advisor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/liarsbar/internal/game"
)

// Defaults for Runner.
const (
	DefaultMaxRetries     = 3
	DefaultAttemptTimeout = 20 * time.Second
	DefaultRetryDelay     = time.Second
)

// Runner asks an Advisor for a decision with bounded retries and a per
// attempt timeout, then falls back to a random legal move. A decision is
// only accepted if it passes View.Check.
type Runner struct {
	Advisor        Advisor
	Fallback       Advisor
	MaxRetries     int
	AttemptTimeout time.Duration
	RetryDelay     time.Duration
	Clock          quartz.Clock
	Logger         *log.Logger
}

// Result is what a Runner settled on.
type Result struct {
	Decision game.Decision
	Attempts int
	Fallback bool
}

// NewRunner creates a Runner with default limits.
func NewRunner(a Advisor, fallback Advisor, clock quartz.Clock, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Runner{
		Advisor:        a,
		Fallback:       fallback,
		MaxRetries:     DefaultMaxRetries,
		AttemptTimeout: DefaultAttemptTimeout,
		RetryDelay:     DefaultRetryDelay,
		Clock:          clock,
		Logger:         logger.WithPrefix("advisor"),
	}
}

// Decide returns a decision for v. Advisor failures never surface; the
// only error is ctx ending before a decision was reached.
func (r *Runner) Decide(ctx context.Context, v game.View) (Result, error) {
	var lastErr error
	attempts := max(1, r.MaxRetries)
	for attempt := 1; r.Advisor != nil && attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		d, err := r.attempt(ctx, v)
		if err == nil {
			err = v.Check(d)
		}
		if err == nil {
			return Result{Decision: d, Attempts: attempt}, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		lastErr = err
		r.log().Warn("Advisor attempt failed", "attempt", attempt, "of", attempts, "error", err)
		if attempt < attempts {
			if err := r.sleep(ctx); err != nil {
				return Result{}, err
			}
		}
	}

	d, err := r.fallback(ctx, v)
	if err != nil {
		return Result{}, err
	}
	if lastErr != nil {
		r.log().Info("Using fallback decision", "decision", d, "lastError", lastErr)
	}
	return Result{Decision: d, Attempts: attempts, Fallback: true}, nil
}

// attempt runs one advisor call, abandoning it when the attempt timeout
// fires even if the advisor ignores its context.
func (r *Runner) attempt(ctx context.Context, v game.View) (game.Decision, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timedOut := make(chan struct{})
	if r.AttemptTimeout > 0 {
		timer := r.clock().AfterFunc(r.AttemptTimeout, func() {
			close(timedOut)
			cancel()
		})
		defer timer.Stop()
	}

	type reply struct {
		d   game.Decision
		err error
	}
	done := make(chan reply, 1)
	go func() {
		d, err := r.Advisor.Decide(ctx, v)
		done <- reply{d, err}
	}()

	select {
	case res := <-done:
		return res.d, res.err
	case <-timedOut:
		return game.Decision{}, fmt.Errorf("advisor timed out after %s", r.AttemptTimeout)
	case <-ctx.Done():
		return game.Decision{}, ctx.Err()
	}
}

func (r *Runner) sleep(ctx context.Context) error {
	if r.RetryDelay <= 0 {
		return nil
	}
	timer := r.clock().NewTimer(r.RetryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) fallback(ctx context.Context, v game.View) (game.Decision, error) {
	if r.Fallback != nil {
		d, err := r.Fallback.Decide(ctx, v)
		if err == nil && v.Check(d) == nil {
			return d, nil
		}
		if ctx.Err() != nil {
			return game.Decision{}, ctx.Err()
		}
		r.log().Warn("Fallback advisor gave no usable decision", "error", err)
	}
	return safeMove(v), nil
}

// safeMove is the move of last resort: it is always legal.
func safeMove(v game.View) game.Decision {
	if len(v.Hand) == 0 {
		return game.Decision{Action: game.ActionWait, Reasoning: "fallback"}
	}
	return game.Decision{Action: game.ActionPlay, Indices: []int{1}, Reasoning: "fallback"}
}

func (r *Runner) clock() quartz.Clock {
	if r.Clock == nil {
		return quartz.NewReal()
	}
	return r.Clock
}

func (r *Runner) log() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard)
	}
	return r.Logger
}

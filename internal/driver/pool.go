package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
)

// Pool runs multiple games concurrently, capping how many run at once so a
// self-play batch doesn't open more simultaneous model-client connections
// than the caller intends, per SPEC_FULL.md §5.
type Pool struct {
	Driver      *Driver
	Concurrency int
}

// NewPool builds a Pool bounded to concurrency simultaneous games.
// concurrency <= 0 is treated as 1.
func NewPool(d *Driver, concurrency int) *Pool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pool{Driver: d, Concurrency: concurrency}
}

// RunAll plays every game in states to completion, returning the first
// context-cancellation error encountered (if any). Per-game rules-engine or
// exhaustion outcomes are recorded on each GameState and never abort the
// batch; only ctx cancellation does.
func (p *Pool) RunAll(ctx context.Context, states []*match.GameState, hooks Hooks) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Concurrency)

	for _, gs := range states {
		gs := gs
		g.Go(func() error {
			return p.Driver.PlayGame(ctx, gs, hooks)
		})
	}

	return g.Wait()
}

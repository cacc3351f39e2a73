// Package driver is the Game Driver: it alternates plies through the
// Decision Loop until a game reaches a terminal result, per spec.md §4.7.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/notnil/chess"

	"github.com/randomtoy/chess-llm-arena/internal/decision"
	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
)

// PGN-style game results.
const (
	resultWhiteWins = "1-0"
	resultBlackWins = "0-1"
	resultDraw      = "1/2-1/2"
)

// Hooks are the driver's callbacks into the surrounding process (CLI output,
// observability, persistence). Both may be nil.
type Hooks struct {
	// OnMoveApplied fires after every successfully committed ply.
	OnMoveApplied func(gs *match.GameState)
	// OnGameEnd fires exactly once, however the game concludes.
	OnGameEnd func(gs *match.GameState)
}

// Driver runs one game at a time to completion.
type Driver struct {
	Loop *decision.Loop
}

// New builds a Driver around an already-configured Decision Loop.
func New(loop *decision.Loop) *Driver {
	return &Driver{Loop: loop}
}

// PlayGame alternates PlayPly calls until gs reaches a terminal result or ctx
// is cancelled, recording the outcome on gs.Termination. It never returns an
// error for an ordinary game end; it returns one only if ctx is cancelled
// before the game concludes.
func (d *Driver) PlayGame(ctx context.Context, gs *match.GameState, hooks Hooks) error {
	for {
		pos := gs.Position
		// Outcome/Method are the rules engine's own bookkeeping, updated as
		// each move is pushed through the underlying game: they already cover
		// checkmate, stalemate, insufficient material, and the automatic
		// fivefold-repetition / seventy-five-move draws, so they take
		// priority over our own IsTerminal check below.
		if pos.Outcome() != chess.NoOutcome {
			gs.Finish(string(pos.Outcome()), pos.Method())
			fireGameEnd(hooks, gs)
			return nil
		}
		if pos.IsTerminal() {
			gs.Finish(terminalResult(pos), pos.Method())
			fireGameEnd(hooks, gs)
			return nil
		}
		if claim, ok := claimableDraw(pos); ok {
			gs.Finish(resultDraw, claim)
			fireGameEnd(hooks, gs)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := d.Loop.PlayPly(ctx, gs)
		if err == nil {
			if hooks.OnMoveApplied != nil {
				hooks.OnMoveApplied(gs)
			}
			continue
		}

		var derr *decision.Error
		if errors.As(err, &derr) {
			switch {
			case errors.Is(derr, decision.ErrNoLegalMoves):
				gs.Finish(terminalResult(gs.Position), gs.Position.Method())
			default:
				gs.FinishError(fmt.Errorf("game driver: %w", err))
			}
			fireGameEnd(hooks, gs)
			return nil
		}

		gs.FinishError(err)
		fireGameEnd(hooks, gs)
		return err
	}
}

// terminalResult reports the PGN-style result of a position with no legal
// moves: the side to move loses on checkmate, otherwise it's a stalemate
// draw.
func terminalResult(pos match.Position) string {
	if !pos.IsCheckmate() {
		return resultDraw
	}
	if pos.Color() == chess.White {
		return resultBlackWins
	}
	return resultWhiteWins
}

// claimableDraw reports the first of the threefold-repetition or fifty-move
// claims EligibleDraws offers, if any. EligibleDraws always lists DrawOffer
// too, since either side could in principle offer a draw, but nobody is
// actually offering one here, so that entry is never an automatic claim.
func claimableDraw(pos match.Position) (chess.Method, bool) {
	for _, m := range pos.EligibleDraws() {
		if m == chess.ThreefoldRepetition || m == chess.FiftyMoveRule {
			return m, true
		}
	}
	return chess.NoMethod, false
}

func fireGameEnd(hooks Hooks, gs *match.GameState) {
	if hooks.OnGameEnd != nil {
		hooks.OnGameEnd(gs)
	}
}

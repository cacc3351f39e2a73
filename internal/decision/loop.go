// Package decision implements the Decision Loop: the per-ply state machine
// that takes a position from Start through Prompt, Await, Parse, Validate,
// Veto, and Commit (or a forced fallback), per spec.md §4.6.
package decision

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/randomtoy/chess-llm-arena/internal/analysis"
	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
	"github.com/randomtoy/chess-llm-arena/internal/modelclient"
	"github.com/randomtoy/chess-llm-arena/internal/observability"
	"github.com/randomtoy/chess-llm-arena/internal/parser"
	"github.com/randomtoy/chess-llm-arena/internal/promptbuilder"
	"github.com/randomtoy/chess-llm-arena/internal/tactics"
)

// Loop runs one ply at a time; all per-turn state lives in the TurnState it
// creates and discards, per spec.md §9's "no globals" guidance.
type Loop struct {
	Client modelclient.Client
	Sink   observability.EventSink
	RNG    promptbuilder.RNG
}

// New builds a Loop. sink may be nil, in which case events are discarded.
func New(client modelclient.Client, sink observability.EventSink, rng promptbuilder.RNG) *Loop {
	if sink == nil {
		sink = observability.NoopSink{}
	}
	return &Loop{Client: client, Sink: sink, RNG: rng}
}

func maxAttemptsFor(phase analysis.Phase) int {
	if phase == analysis.Endgame {
		return 5
	}
	return 3
}

// PlayPly runs the full state machine for gs's side to move, committing the
// resulting move into gs on success. It returns an error only for the two
// kinds spec.md §7 allows to escape the core.
func (l *Loop) PlayPly(ctx context.Context, gs *match.GameState) error {
	pos := gs.Position
	if pos.IsTerminal() {
		return &Error{Kind: KindNoLegalMoves, Reason: "position has no legal moves"}
	}

	player := gs.CurrentPlayer()
	phase, _ := analysis.DetectPhase(pos)
	legal := pos.LegalMoves()
	single := len(legal) == 1

	turn := match.NewTurnState(maxAttemptsFor(phase))
	seedAvoidMoves(turn, gs)

	l.Sink.TurnContext(observability.TurnContext{
		TurnID:     turn.TurnID.String(),
		Attempt:    turn.Attempt,
		Phase:      string(phase),
		FEN:        pos.FEN(),
		LegalCount: len(legal),
	})

	for {
		select {
		case <-ctx.Done():
			return &Error{Kind: KindRulesEngineError, Reason: "context cancelled mid-ply", Err: ctx.Err()}
		default:
		}

		params := modelclient.StandardParams
		if phase == analysis.Endgame {
			params = modelclient.EndgameParams
		}

		prompt := l.buildPrompt(gs, player, turn, phase)

		parseStart := time.Now()
		raw, err := l.Client.Call(ctx, prompt, player.ModelID, params)
		if err != nil {
			reason := fmt.Sprintf("transport error: %v", err)
			turn.RecordFailure(reason)
			l.Sink.ParseFailure(observability.ParseFailure{TurnID: turn.TurnID.String(), Attempt: turn.Attempt, Reason: reason})
			if turn.AttemptsExhausted() {
				return l.commitFallback(gs, player, turn, pos)
			}
			continue
		}

		result, perr := parser.Parse(raw, pos)
		parseMS := time.Since(parseStart).Milliseconds()
		if perr != nil {
			reason := perr.Error()
			turn.RecordFailure(reason)
			gs.FailedMoves[player.PlayerID][failedToken(perr, raw)] = struct{}{}
			l.Sink.ParseFailure(observability.ParseFailure{TurnID: turn.TurnID.String(), Attempt: turn.Attempt, Reason: reason})
			l.Sink.MoveValidation(observability.MoveValidation{TurnID: turn.TurnID.String(), Proposed: raw, ParsedVia: "none", Legal: false, ParseMS: parseMS})
			if turn.AttemptsExhausted() {
				return l.commitFallback(gs, player, turn, pos)
			}
			continue
		}

		l.Sink.MoveValidation(observability.MoveValidation{
			TurnID: turn.TurnID.String(), Proposed: result.Token, ParsedVia: "parser", Legal: true, ParseMS: parseMS,
		})

		if !single && turn.ForceApplyUCI == "" {
			verdict, verr := tactics.CheckBlunder(pos, result.Move.Engine)
			if verr != nil {
				return &Error{Kind: KindRulesEngineError, Err: verr}
			}
			if verdict.Veto {
				reason := tactics.DescribeVeto(verdict.Info)
				turn.RecordVeto(result.Token, verdict.Info, reason)
				l.Sink.Veto(observability.Veto{
					TurnID: turn.TurnID.String(), Proposed: result.Token,
					WorstDrop: verdict.Info.WorstDrop, Threshold: verdict.Info.Threshold, WorstReply: verdict.Info.WorstReplyUCI,
				})
				if turn.VetoExhausted() {
					return l.commitFallback(gs, player, turn, pos)
				}
				continue
			}
		}

		l.commit(gs, player, turn, result.Move, result.After, false)
		return nil
	}
}

// failedToken extracts the move text a failed parse attempted, for
// GameState.FailedMoves bookkeeping; it falls back to the raw response only
// when the parser never recognized any candidate token at all.
func failedToken(perr error, raw string) string {
	var pe *parser.Error
	if errors.As(perr, &pe) && pe.Token != "" {
		return pe.Token
	}
	return raw
}

// commitFallback implements the Exhausted and ForceFallback states, which
// spec.md §4.6 treats identically: select a safe fallback via the Tactical
// Filter and commit it, forced past any remaining veto.
func (l *Loop) commitFallback(gs *match.GameState, player match.PlayerBinding, turn *match.TurnState, pos match.Position) error {
	m, uci := tactics.SafeFallback(pos, turn.VetoedMoves)
	if m == nil {
		return &Error{Kind: KindNoLegalMoves, Reason: "no legal move available for safe fallback"}
	}
	mv, after, err := match.NewMove(pos, m)
	if err != nil {
		return &Error{Kind: KindRulesEngineError, Err: err}
	}
	turn.ForceApplyUCI = uci
	l.commit(gs, player, turn, mv, after, true)
	return nil
}

func (l *Loop) commit(gs *match.GameState, player match.PlayerBinding, turn *match.TurnState, mv match.Move, after match.Position, forcedFallback bool) {
	applyStart := time.Now()
	before := gs.Position
	delta := analysis.MaterialBalanceSTM(after) - analysis.MaterialBalanceSTM(before)

	gs.Commit(mv, after)
	gs.ClearFailedMoves(player.PlayerID)

	l.Sink.MoveApplied(observability.MoveApplied{
		TurnID:         turn.TurnID.String(),
		SAN:            mv.SAN,
		UCI:            mv.UCI,
		MaterialDelta:  delta,
		GaveCheck:      mv.GivesCheck,
		Mate:           mv.IsCheckmate,
		Stalemate:      after.IsStalemate(),
		ApplyMS:        time.Since(applyStart).Milliseconds(),
		PostFEN:        after.FEN(),
		ForcedFallback: forcedFallback,
	})
}

// buildPrompt assembles a promptbuilder.Input from the live game/turn state.
func (l *Loop) buildPrompt(gs *match.GameState, player match.PlayerBinding, turn *match.TurnState, phase analysis.Phase) string {
	pos := gs.Position
	opening := analysis.RecognizeOpening(gs.UCIHistory)
	materialTag := promptbuilder.MaterialTag(analysis.MaterialBalanceSTM(pos))

	lastSAN := ""
	if len(gs.SANHistory) > 0 {
		lastSAN = gs.SANHistory[len(gs.SANHistory)-1]
	}

	vetoedThisTurn := len(turn.VetoedMoves) > 0
	var safe []string
	if vetoedThisTurn {
		safe = tactics.SafeCandidates(pos, 3)
	}

	avoidSet := make(map[string]struct{})
	for _, uci := range turn.AvoidList() {
		avoidSet[uci] = struct{}{}
	}
	for token := range gs.FailedMovesFor(player.PlayerID) {
		avoidSet[token] = struct{}{}
	}
	avoid := make([]string, 0, len(avoidSet))
	for uci := range avoidSet {
		avoid = append(avoid, uci)
	}
	sort.Strings(avoid)

	in := promptbuilder.Input{
		Position:        pos,
		Phase:           phase,
		OpeningName:     opening,
		MaterialTag:     materialTag,
		LastSAN:         lastSAN,
		RecentSAN:       gs.SANHistory,
		VetoedThisTurn:  vetoedThisTurn,
		LastFailure:     turn.LastFailure,
		AvoidMoves:      avoid,
		SafeSuggestions: safe,
	}
	return promptbuilder.Build(in, l.RNG)
}

// seedAvoidMoves implements the Start state's oscillation seeding: if the
// last four plies form an ABAB cycle, avoid repeating our own previous move.
// Threefold-repetition-claimable avoidance is left to the authoritative
// EligibleDraws check the Game Driver performs; see spec.md §9's Open
// Question #3.
func seedAvoidMoves(turn *match.TurnState, gs *match.GameState) {
	h := gs.UCIHistory
	if len(h) < 4 {
		return
	}
	last4 := h[len(h)-4:]
	if last4[0] == last4[2] && last4[1] == last4[3] {
		turn.SeedAvoid(last4[2])
	}
}

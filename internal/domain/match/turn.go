package match

import (
	"sort"

	"github.com/google/uuid"
)

// BlunderInfo is the human-facing detail behind a Tactical Filter veto,
// folded into the next retry's prompt feedback.
type BlunderInfo struct {
	Threshold     int
	WorstDrop     int
	WorstReplyUCI string
	QueenSacFlag  bool
}

// TurnState is created at the start of each ply and discarded on commit.
// Field semantics follow spec.md §3 exactly.
type TurnState struct {
	TurnID      uuid.UUID
	Attempt     int
	MaxAttempts int

	VetoRetries    int
	VetoRetriesCap int

	// VetoedMoves maps a UCI string rejected by the Tactical Filter this ply
	// to how many times it has been rejected.
	VetoedMoves map[string]int
	// AvoidMoves holds UCI strings to steer the model away from for
	// oscillation/repetition suppression.
	AvoidMoves map[string]struct{}

	LastFailure     string
	LastBlunderInfo *BlunderInfo
	ForceApplyUCI   string // set on the emergency-fallback escape path
}

// NewTurnState starts a fresh turn, clearing the per-ply veto/avoid sets.
func NewTurnState(maxAttempts int) *TurnState {
	return &TurnState{
		TurnID:         uuid.New(),
		MaxAttempts:    maxAttempts,
		VetoRetriesCap: 2,
		VetoedMoves:    make(map[string]int),
		AvoidMoves:     make(map[string]struct{}),
	}
}

// SeedAvoid adds a UCI string to the avoid list (oscillation/repetition
// suppression, spec.md §4.6 Start state).
func (t *TurnState) SeedAvoid(uci string) {
	t.AvoidMoves[uci] = struct{}{}
}

// AvoidList returns the avoid set as a slice, for prompt rendering.
func (t *TurnState) AvoidList() []string {
	out := make([]string, 0, len(t.AvoidMoves))
	for u := range t.AvoidMoves {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// RecordVeto marks uci as vetoed this ply and increments the veto-retry
// counter; this never touches Attempt (invariant 4 in spec.md §3).
func (t *TurnState) RecordVeto(uci string, info BlunderInfo, reason string) {
	t.VetoedMoves[uci]++
	t.LastBlunderInfo = &info
	t.LastFailure = reason
	t.VetoRetries++
}

// VetoExhausted reports whether the veto-retry cap has been reached.
func (t *TurnState) VetoExhausted() bool {
	return t.VetoRetries >= t.VetoRetriesCap
}

// RecordFailure records a parse/illegality failure and advances Attempt.
func (t *TurnState) RecordFailure(reason string) {
	t.LastFailure = reason
	t.Attempt++
}

// AttemptsExhausted reports whether Attempt has reached MaxAttempts.
func (t *TurnState) AttemptsExhausted() bool {
	return t.Attempt >= t.MaxAttempts
}

// Package observability defines the structured events the Decision Loop and
// Game Driver emit, per spec.md §6. Sinks are external; the core only
// depends on the EventSink interface.
package observability

// TurnContext is emitted once at the start of each ply.
type TurnContext struct {
	TurnID     string
	Attempt    int
	Phase      string
	FEN        string
	LegalCount int
}

// MoveValidation is emitted once per parse attempt.
type MoveValidation struct {
	TurnID    string
	Proposed  string
	ParsedVia string
	Legal     bool
	ParseMS   int64
}

// MoveApplied is emitted once per committed move.
type MoveApplied struct {
	TurnID         string
	SAN            string
	UCI            string
	MaterialDelta  int
	GaveCheck      bool
	Mate           bool
	Stalemate      bool
	ApplyMS        int64
	PostFEN        string
	ForcedFallback bool
}

// ParseFailure is emitted whenever the Move Parser fails to recover a move,
// and also when the Model Client call itself fails.
type ParseFailure struct {
	TurnID  string
	Attempt int
	Reason  string
}

// Veto is emitted whenever the Tactical Filter rejects a legal move.
type Veto struct {
	TurnID     string
	Proposed   string
	WorstDrop  int
	Threshold  int
	WorstReply string
}

// EventSink receives every structured event the core emits. Implementations
// must not block the Decision Loop for long; a slow sink should buffer or
// drop rather than stall ply processing.
type EventSink interface {
	TurnContext(TurnContext)
	MoveValidation(MoveValidation)
	MoveApplied(MoveApplied)
	ParseFailure(ParseFailure)
	Veto(Veto)
}

// NoopSink discards every event; useful as a default and in tests that
// don't assert on observability.
type NoopSink struct{}

func (NoopSink) TurnContext(TurnContext)       {}
func (NoopSink) MoveValidation(MoveValidation) {}
func (NoopSink) MoveApplied(MoveApplied)       {}
func (NoopSink) ParseFailure(ParseFailure)     {}
func (NoopSink) Veto(Veto)                     {}

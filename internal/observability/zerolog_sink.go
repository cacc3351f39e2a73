package observability

import (
	"io"

	"github.com/rs/zerolog"
)

// ZerologSink emits every event as a structured zerolog entry, grounded on
// justinabrahms-ATChess and smilemakc-mbflow's use of rs/zerolog as their
// structured logger, replacing logger.py's hand-rolled JSON-file GameLogger.
type ZerologSink struct {
	log zerolog.Logger
}

// NewZerologSink wraps w in a zerolog.Logger with a timestamp and a
// "component=decision_loop" field already attached.
func NewZerologSink(w io.Writer) *ZerologSink {
	logger := zerolog.New(w).With().Timestamp().Str("component", "decision_loop").Logger()
	return &ZerologSink{log: logger}
}

func (s *ZerologSink) TurnContext(e TurnContext) {
	s.log.Info().
		Str("event", "turn_context").
		Str("turn_id", e.TurnID).
		Int("attempt", e.Attempt).
		Str("phase", e.Phase).
		Str("fen", e.FEN).
		Int("legal_count", e.LegalCount).
		Msg("turn started")
}

func (s *ZerologSink) MoveValidation(e MoveValidation) {
	s.log.Debug().
		Str("event", "move_validation").
		Str("turn_id", e.TurnID).
		Str("proposed", e.Proposed).
		Str("parsed_via", e.ParsedVia).
		Bool("legal", e.Legal).
		Int64("parse_ms", e.ParseMS).
		Msg("move validated")
}

func (s *ZerologSink) MoveApplied(e MoveApplied) {
	s.log.Info().
		Str("event", "move_applied").
		Str("turn_id", e.TurnID).
		Str("san", e.SAN).
		Str("uci", e.UCI).
		Int("material_delta", e.MaterialDelta).
		Bool("gave_check", e.GaveCheck).
		Bool("mate", e.Mate).
		Bool("stalemate", e.Stalemate).
		Int64("apply_ms", e.ApplyMS).
		Str("post_fen", e.PostFEN).
		Bool("forced_fallback", e.ForcedFallback).
		Msg("move applied")
}

func (s *ZerologSink) ParseFailure(e ParseFailure) {
	s.log.Warn().
		Str("event", "parse_failure").
		Str("turn_id", e.TurnID).
		Int("attempt", e.Attempt).
		Str("reason", e.Reason).
		Msg("parse failed")
}

func (s *ZerologSink) Veto(e Veto) {
	s.log.Warn().
		Str("event", "veto").
		Str("turn_id", e.TurnID).
		Str("proposed", e.Proposed).
		Int("worst_drop", e.WorstDrop).
		Int("threshold", e.Threshold).
		Str("worst_reply", e.WorstReply).
		Msg("move vetoed")
}

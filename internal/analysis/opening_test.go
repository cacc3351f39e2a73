package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randomtoy/chess-llm-arena/internal/analysis"
)

func TestRecognizeOpening_EmptyHistory(t *testing.T) {
	require.Equal(t, "Opening", analysis.RecognizeOpening(nil))
}

func TestRecognizeOpening_PrefersLongestSpecificMatch(t *testing.T) {
	history := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"}
	require.Equal(t, "Ruy Lopez", analysis.RecognizeOpening(history))
}

func TestRecognizeOpening_ShorterPrefixWhenLongerDoesNotMatch(t *testing.T) {
	history := []string{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4"}
	require.Equal(t, "Scotch Game", analysis.RecognizeOpening(history))
}

func TestRecognizeOpening_FallsBackToGeneralKingsPawn(t *testing.T) {
	history := []string{"e2e4", "e7e5", "b1a3"}
	require.Equal(t, "King's Pawn Game", analysis.RecognizeOpening(history))
}

func TestRecognizeOpening_UnknownPosition(t *testing.T) {
	history := []string{"a2a3", "a7a6"}
	require.Equal(t, "Unknown Opening or Custom Position", analysis.RecognizeOpening(history))
}

func TestRecognizeOpening_TranspositionReportsVariant(t *testing.T) {
	// Same three plies as Queen's Gambit but via move-order transposition
	// (c2c4 before d2d4 instead of after) should report as a variant.
	history := []string{"c2c4", "d7d5", "d2d4"}
	require.Equal(t, "Variant of Queen's Gambit", analysis.RecognizeOpening(history))
}

func TestCanonical_StripsVariantPrefix(t *testing.T) {
	require.Equal(t, "Queen's Gambit", analysis.Canonical("Variant of Queen's Gambit"))
	require.Equal(t, "Ruy Lopez", analysis.Canonical("Ruy Lopez"))
}

package promptbuilder_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randomtoy/chess-llm-arena/internal/analysis"
	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
	"github.com/randomtoy/chess-llm-arena/internal/promptbuilder"
)

// fixedRNG always returns the same value, clamped into range, so tests get
// deterministic sample sizes without depending on math/rand's sequence.
type fixedRNG struct{ v int }

func (r fixedRNG) IntN(n int) int {
	if r.v >= n {
		return n - 1
	}
	return r.v
}

func countLine(t *testing.T, prompt, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	t.Fatalf("no line with prefix %q in prompt:\n%s", prefix, prompt)
	return ""
}

func baseInput() promptbuilder.Input {
	return promptbuilder.Input{
		Position:    match.NewPosition(),
		Phase:       analysis.Opening,
		OpeningName: "Opening",
		MaterialTag: "material equal",
	}
}

func TestBuild_DefaultSampleSizeMatchesLowerBound(t *testing.T) {
	in := baseInput()
	prompt := promptbuilder.Build(in, fixedRNG{v: 0})

	sample := countLine(t, prompt, "legal_moves_sample: ")
	moves := strings.Split(sample, ", ")
	require.Len(t, moves, 12)
}

func TestBuild_VetoedWidensSampleBounds(t *testing.T) {
	in := baseInput()
	in.VetoedThisTurn = true
	prompt := promptbuilder.Build(in, fixedRNG{v: 0})

	sample := countLine(t, prompt, "legal_moves_sample: ")
	moves := strings.Split(sample, ", ")
	require.Len(t, moves, 16)
}

func TestBuild_StateSectionReflectsPosition(t *testing.T) {
	in := baseInput()
	in.LastSAN = "e4"
	in.RecentSAN = []string{"e4"}
	prompt := promptbuilder.Build(in, fixedRNG{v: 0})

	require.Equal(t, "White", countLine(t, prompt, "turn: "))
	require.Equal(t, "e4", countLine(t, prompt, "last_move_san: "))
	require.Equal(t, "e4", countLine(t, prompt, "pgn_tail: "))
}

func TestBuild_NoLastMoveShowsStartPlaceholder(t *testing.T) {
	in := baseInput()
	prompt := promptbuilder.Build(in, fixedRNG{v: 0})

	require.Equal(t, "(start)", countLine(t, prompt, "last_move_san: "))
	require.Equal(t, "(start)", countLine(t, prompt, "pgn_tail: "))
}

func TestBuild_AvoidMovesLineOnlyWhenPresent(t *testing.T) {
	in := baseInput()
	prompt := promptbuilder.Build(in, fixedRNG{v: 0})
	require.NotContains(t, prompt, "avoid_moves:")

	in.AvoidMoves = []string{"d2d4", "g1f3"}
	prompt = promptbuilder.Build(in, fixedRNG{v: 0})
	require.Equal(t, "d2d4, g1f3", countLine(t, prompt, "avoid_moves: "))
}

func TestBuild_SafeSuggestionsOnlyWhenVetoedAndNonEmpty(t *testing.T) {
	in := baseInput()
	in.SafeSuggestions = []string{"e2e4", "d2d4"}
	prompt := promptbuilder.Build(in, fixedRNG{v: 0})
	require.NotContains(t, prompt, "SAFE_SUGGESTIONS")

	in.VetoedThisTurn = true
	prompt = promptbuilder.Build(in, fixedRNG{v: 0})
	require.Contains(t, prompt, "SAFE_SUGGESTIONS")
	require.Contains(t, prompt, "e2e4, d2d4")
}

func TestBuild_InCheckAddsResolveCheckGuidance(t *testing.T) {
	in := baseInput()
	pos, err := match.FromFEN("4k3/8/8/8/8/8/8/4K2r w - - 0 1")
	require.NoError(t, err)
	in.Position = pos
	in.Phase = analysis.Endgame

	prompt := promptbuilder.Build(in, fixedRNG{v: 0})
	require.Contains(t, prompt, "You are in check")
}

func TestBuild_PositionInsightsIncludesCenterControl(t *testing.T) {
	in := baseInput()
	prompt := promptbuilder.Build(in, fixedRNG{v: 0})
	require.Equal(t, "center control W:0 B:0", countLine(t, prompt, "CENTER_CONTROL: "))
}

func TestBuild_EmitsAllSections(t *testing.T) {
	in := baseInput()
	prompt := promptbuilder.Build(in, fixedRNG{v: 0})

	for _, header := range []string{
		"=== STATE ===", "=== STRATEGY_GUIDE ===", "=== POSITION_INSIGHTS ===",
		"=== GAME_HISTORY_SUMMARY ===", "=== OPTIONS ===", "=== PROTOCOL ===",
	} {
		require.Contains(t, prompt, header)
	}
}

func TestMaterialTag_Equal(t *testing.T) {
	require.Equal(t, "material equal", promptbuilder.MaterialTag(0))
}

func TestMaterialTag_Positive(t *testing.T) {
	require.Equal(t, "material +3", promptbuilder.MaterialTag(3))
}

func TestMaterialTag_Negative(t *testing.T) {
	require.Equal(t, "material -2", promptbuilder.MaterialTag(-2))
}

func TestNewRNG_DeterministicForSameSeed(t *testing.T) {
	a := promptbuilder.NewRNG(42)
	b := promptbuilder.NewRNG(42)

	for i := 0; i < 10; i++ {
		require.Equal(t, a.IntN(100), b.IntN(100))
	}
}

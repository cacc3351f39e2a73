package match_test

import (
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"

	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
)

func TestNewPosition_IsStartingPosition(t *testing.T) {
	pos := match.NewPosition()

	require.Equal(t, "white", pos.SideToMove())
	require.Len(t, pos.LegalMoves(), 20)
	require.False(t, pos.IsTerminal())
}

func TestFromFEN_RoundTrips(t *testing.T) {
	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	pos, err := match.FromFEN(fen)
	require.NoError(t, err)
	require.Equal(t, "black", pos.SideToMove())
	require.Equal(t, fen, pos.FEN())
}

func TestFromFEN_RejectsGarbage(t *testing.T) {
	_, err := match.FromFEN("not a fen")
	require.Error(t, err)
}

func TestClone_IsIndependent(t *testing.T) {
	pos := match.NewPosition()
	clone := pos.Clone()

	after, err := clone.PushUCI("e2e4")
	require.NoError(t, err)

	require.Equal(t, "white", pos.SideToMove())
	require.Equal(t, "black", after.SideToMove())
}

func TestIsCheckmate_FoolsMate(t *testing.T) {
	pos, err := match.FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)

	require.True(t, pos.IsTerminal())
	require.True(t, pos.IsCheckmate())
	require.False(t, pos.IsStalemate())
}

func TestIsStalemate(t *testing.T) {
	// Classic stalemate: Black king boxed into a8 with no legal moves and not
	// in check.
	pos, err := match.FromFEN("k7/8/1Q6/8/8/8/8/7K b - - 0 1")
	require.NoError(t, err)

	require.True(t, pos.IsTerminal())
	require.True(t, pos.IsStalemate())
	require.False(t, pos.IsCheckmate())
}

func TestPushUCI_AdvancesPosition(t *testing.T) {
	pos := match.NewPosition()
	after, err := pos.PushUCI("e2e4")
	require.NoError(t, err)

	require.Contains(t, after.FEN(), "4P3")
	require.Equal(t, "black", after.SideToMove())
}

func TestPushUCI_RejectsIllegalMove(t *testing.T) {
	pos := match.NewPosition()
	_, err := pos.PushUCI("e2e5")
	require.Error(t, err)
}

func TestFullMoveAndHalfMoveClock(t *testing.T) {
	pos, err := match.FromFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 7")
	require.NoError(t, err)

	require.Equal(t, 7, pos.FullMoveNumber())
	require.Equal(t, 0, pos.HalfMoveClock())
}

func TestColor(t *testing.T) {
	pos := match.NewPosition()
	require.Equal(t, chess.White, pos.Color())
}

package decision_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/randomtoy/chess-llm-arena/internal/decision"
	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
	"github.com/randomtoy/chess-llm-arena/internal/modelclient"
)

// scriptedClient replies with a fixed queue of responses in order,
// regardless of the model id dialed, for deterministic Decision Loop tests.
type scriptedClient struct {
	replies []string
	calls   int
}

func (c *scriptedClient) Call(_ context.Context, _, _ string, _ modelclient.Params) (string, error) {
	if c.calls >= len(c.replies) {
		return "", modelclient.ErrTransport
	}
	r := c.replies[c.calls]
	c.calls++
	return r, nil
}

// fixedRNG always returns 0, so the legal-move sample is deterministic:
// promptbuilder.sampleMoves collapses to its lower bound.
type fixedRNG struct{}

func (fixedRNG) IntN(int) int { return 0 }

func newGameState() *match.GameState {
	white := match.PlayerBinding{PlayerID: "p1", ModelID: "gpt-4o"}
	black := match.PlayerBinding{PlayerID: "p2", ModelID: "claude-3-5-sonnet"}
	return match.NewGameState(uuid.New(), white, black)
}

func TestPlayPly_HappyOpeningMove(t *testing.T) {
	gs := newGameState()
	client := &scriptedClient{replies: []string{"REASONING: develop.\nMOVE: e2e4"}}
	l := decision.New(client, nil, fixedRNG{})

	err := l.PlayPly(context.Background(), gs)

	require.NoError(t, err)
	require.Equal(t, []string{"e2e4"}, gs.UCIHistory)
	require.Equal(t, 1, client.calls)
}

func TestPlayPly_BareSquareMoveLineFallsThroughToScan(t *testing.T) {
	gs := newGameState()
	client := &scriptedClient{replies: []string{"MOVE: e4"}}
	l := decision.New(client, nil, fixedRNG{})

	err := l.PlayPly(context.Background(), gs)

	require.NoError(t, err)
	require.Equal(t, []string{"e2e4"}, gs.UCIHistory)
	require.Equal(t, 1, client.calls)
}

func TestPlayPly_FailedMoveTokenFeedsRetryPrompt(t *testing.T) {
	gs := newGameState()
	client := &spyClient{replies: []string{
		"MOVE: e2e5", // illegal: e-pawn cannot reach the 5th rank in one move
		"MOVE: e2e4",
	}}
	l := decision.New(client, nil, fixedRNG{})

	err := l.PlayPly(context.Background(), gs)

	require.NoError(t, err)
	require.Len(t, client.prompts, 2)
	require.Contains(t, client.prompts[1], "avoid_moves: e2e5")
}

func TestPlayPly_IllegalMoveThenRecovery(t *testing.T) {
	gs := newGameState()
	client := &scriptedClient{replies: []string{
		"MOVE: e2e5", // illegal: e-pawn cannot reach the 5th rank in one move
		"MOVE: e2e4",
	}}
	l := decision.New(client, nil, fixedRNG{})

	err := l.PlayPly(context.Background(), gs)

	require.NoError(t, err)
	require.Equal(t, []string{"e2e4"}, gs.UCIHistory)
	require.Equal(t, 2, client.calls)
}

func TestPlayPly_ParseFallbackViaTokenScan(t *testing.T) {
	gs := newGameState()
	client := &scriptedClient{replies: []string{
		"I'm thinking about several options but my choice is e4, the classic reply.",
	}}
	l := decision.New(client, nil, fixedRNG{})

	err := l.PlayPly(context.Background(), gs)

	require.NoError(t, err)
	require.Len(t, gs.UCIHistory, 1)
}

func TestPlayPly_QueenHangVeto(t *testing.T) {
	// Black's knight already sits on f6, covering h5: moving the queen there
	// drops it for nothing next reply, which the Tactical Filter must veto
	// so that the retry commits the model's safe developing move instead.
	pos, err := match.FromFEN("rnbqkb1r/pppp1ppp/5n2/4p3/4P3/P7/1PPP1PPP/RNBQKBNR w KQkq - 0 3")
	require.NoError(t, err)

	gs := newGameState()
	gs.Position = pos

	client := &scriptedClient{replies: []string{
		"MOVE: d1h5", // Qh5: hangs the queen to ...Nxh5
		"MOVE: g1f3", // safe developing move once the sortie is vetoed
	}}
	l := decision.New(client, nil, fixedRNG{})

	err = l.PlayPly(context.Background(), gs)

	require.NoError(t, err)
	require.NotEqual(t, "d1h5", gs.UCIHistory[len(gs.UCIHistory)-1])
	require.Equal(t, "g1f3", gs.UCIHistory[len(gs.UCIHistory)-1])
}

// spyClient records every prompt it is asked to dispatch, then replies from
// a fixed queue; used to assert on the avoid_moves section the Start state
// seeds into the prompt.
type spyClient struct {
	replies []string
	prompts []string
}

func (c *spyClient) Call(_ context.Context, prompt, _ string, _ modelclient.Params) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if len(c.prompts) > len(c.replies) {
		return "", modelclient.ErrTransport
	}
	return c.replies[len(c.prompts)-1], nil
}

func TestPlayPly_OscillationBreak(t *testing.T) {
	gs := newGameState()
	// A history where White's move two-plies-ago repeats verbatim as White's
	// most recent move (with Black's in between mirroring likewise) is the
	// oscillation shape the Start state seeds an avoid entry for, regardless
	// of whether the position on the board still matches that history.
	gs.UCIHistory = []string{"g1f3", "g8f6", "g1f3", "g8f6"}

	client := &spyClient{replies: []string{"MOVE: e2e4"}}
	l := decision.New(client, nil, fixedRNG{})

	err := l.PlayPly(context.Background(), gs)

	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	require.Contains(t, client.prompts[0], "avoid_moves: g1f3")
}

func TestPlayPly_ForcedSingleLegalMove(t *testing.T) {
	// White king in the corner, checked along the h-file by a lone queen,
	// with the black king covering both other adjacent squares: Kg1 is the
	// only legal move, so the Tactical Filter must be bypassed entirely.
	pos, err := match.FromFEN("7q/8/8/8/8/6k1/8/7K w - - 0 1")
	require.NoError(t, err)

	gs := newGameState()
	gs.Position = pos

	client := &scriptedClient{replies: []string{"MOVE: h1g1"}}
	l := decision.New(client, nil, fixedRNG{})

	err = l.PlayPly(context.Background(), gs)

	require.NoError(t, err)
	require.Equal(t, []string{"h1g1"}, gs.UCIHistory)
	require.Equal(t, 1, client.calls)
}

func TestPlayPly_TerminalPositionReturnsNoLegalMoves(t *testing.T) {
	pos, err := match.FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)

	gs := newGameState()
	gs.Position = pos

	l := decision.New(&scriptedClient{}, nil, fixedRNG{})

	err = l.PlayPly(context.Background(), gs)

	var derr *decision.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, decision.KindNoLegalMoves, derr.Kind)
}

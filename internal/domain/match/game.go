package match

import (
	"github.com/google/uuid"
	"github.com/notnil/chess"
)

// PlayerBinding maps a logical player identifier to a side color and the
// model identifier the Model Client should dispatch to for that player.
type PlayerBinding struct {
	PlayerID string
	Color    chess.Color
	ModelID  string
}

// Termination describes how a game ended.
type Termination struct {
	Result string // "1-0", "0-1", "1/2-1/2", or "" while ongoing
	Method chess.Method
	Error  error // set only when the game ended via a fatal ply-level error
}

// GameState lives for the full game: move history, per-player failed-move
// memory, the player/color binding, and the eventual termination result.
type GameState struct {
	ID       uuid.UUID
	Position Position

	Bindings map[string]PlayerBinding // playerID -> binding
	order    []string                 // turn order, len 2

	SANHistory []string
	UCIHistory []string

	// FailedMoves persists across a player's attempts within a ply and is
	// cleared on that player's successful commit (invariant 3, spec.md §3).
	FailedMoves map[string]map[string]struct{}

	CurrentPlayerIndex int
	Termination        *Termination
}

// NewGameState starts a new game with two player bindings in move order.
func NewGameState(id uuid.UUID, white, black PlayerBinding) *GameState {
	white.Color, black.Color = chess.White, chess.Black
	return &GameState{
		ID:       id,
		Position: NewPosition(),
		Bindings: map[string]PlayerBinding{
			white.PlayerID: white,
			black.PlayerID: black,
		},
		order: []string{white.PlayerID, black.PlayerID},
		FailedMoves: map[string]map[string]struct{}{
			white.PlayerID: {},
			black.PlayerID: {},
		},
	}
}

// CurrentPlayer returns the player bound to the side to move. It reconciles
// the index against the live position rather than trusting it blindly,
// satisfying invariant 1 in spec.md §3.
func (gs *GameState) CurrentPlayer() PlayerBinding {
	want := gs.Position.Color()
	for _, id := range gs.order {
		if gs.Bindings[id].Color == want {
			return gs.Bindings[id]
		}
	}
	return PlayerBinding{}
}

// Opponent returns the other player's binding.
func (gs *GameState) Opponent(playerID string) PlayerBinding {
	for _, id := range gs.order {
		if id != playerID {
			return gs.Bindings[id]
		}
	}
	return PlayerBinding{}
}

// FailedMovesFor returns the persistent failed-move set for a player.
func (gs *GameState) FailedMovesFor(playerID string) map[string]struct{} {
	return gs.FailedMoves[playerID]
}

// ClearFailedMoves wipes a player's failed-move memory on successful commit.
func (gs *GameState) ClearFailedMoves(playerID string) {
	gs.FailedMoves[playerID] = map[string]struct{}{}
}

// Commit applies a validated move, appending to history and advancing the
// position. It is the only place GameState's live position changes.
func (gs *GameState) Commit(mv Move, after Position) {
	gs.Position = after
	gs.SANHistory = append(gs.SANHistory, mv.SAN)
	gs.UCIHistory = append(gs.UCIHistory, mv.UCI)
}

// LastMoves returns up to n of the most recent UCI moves, oldest first.
func (gs *GameState) LastMoves(n int) []string {
	if n > len(gs.UCIHistory) {
		n = len(gs.UCIHistory)
	}
	return gs.UCIHistory[len(gs.UCIHistory)-n:]
}

// Finish records the game's termination result.
func (gs *GameState) Finish(result string, method chess.Method) {
	gs.Termination = &Termination{Result: result, Method: method}
}

// FinishError records a fatal ply-level error ending the game.
func (gs *GameState) FinishError(err error) {
	gs.Termination = &Termination{Error: err}
}

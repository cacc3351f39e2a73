// Package match holds the value types shared by the move decision pipeline:
// positions, moves, and the per-turn / per-game state described by the
// pipeline's data model.
package match

import (
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// Position wraps a live chess game. It is treated as a value by every
// collaborator except the Decision Loop at Commit time: callers that need to
// look ahead clone it first via Clone (Push and PushUCI clone internally).
type Position struct {
	g *chess.Game
}

// NewPosition returns the standard starting position.
func NewPosition() Position {
	return Position{g: chess.NewGame(chess.UseNotation(chess.UCINotation{}))}
}

// FromFEN parses a FEN string into a Position.
func FromFEN(fen string) (Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return Position{}, err
	}
	return Position{g: chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))}, nil
}

// Raw exposes the underlying *chess.Game for packages that need the full
// rules-engine surface (PGN export, EligibleDraws, and similar). Prefer the
// typed accessors below where they suffice.
func (p Position) Raw() *chess.Game { return p.g }

// Clone returns an independent copy; mutating the clone never affects p.
func (p Position) Clone() Position {
	return Position{g: p.g.Clone()}
}

// SideToMove returns "white" or "black".
func (p Position) SideToMove() string {
	if p.g.Position().Turn() == chess.White {
		return "white"
	}
	return "black"
}

// Color returns the chess.Color to move.
func (p Position) Color() chess.Color {
	return p.g.Position().Turn()
}

// FEN returns the FEN string of the current position.
func (p Position) FEN() string {
	return p.g.Position().String()
}

// ASCII renders the board as an 8x8 grid, rank 8 first, FEN piece letters
// with '.' for empty squares.
func (p Position) ASCII() string {
	sm := p.g.Position().Board().SquareMap()
	var b strings.Builder
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			sq := chess.NewSquare(chess.File(f), chess.Rank(r))
			pc, ok := sm[sq]
			if !ok {
				b.WriteByte('.')
			} else {
				letter := pc.Type().String()
				if pc.Color() == chess.White {
					letter = strings.ToUpper(letter)
				}
				b.WriteString(letter)
			}
			if f < 7 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// LegalMoves returns every legal move in the current position.
func (p Position) LegalMoves() []*chess.Move {
	return p.g.ValidMoves()
}

// InCheck reports whether the side to move is in check.
func (p Position) InCheck() bool {
	sq, ok := KingSquare(p.g.Position(), p.Color())
	if !ok {
		return false
	}
	return Attackers(p.g.Position(), OtherColor(p.Color()), sq) > 0
}

// IsTerminal reports whether the side to move has no legal replies.
func (p Position) IsTerminal() bool {
	return len(p.LegalMoves()) == 0
}

// IsCheckmate reports terminal-and-in-check.
func (p Position) IsCheckmate() bool {
	return p.IsTerminal() && p.InCheck()
}

// IsStalemate reports terminal-and-not-in-check.
func (p Position) IsStalemate() bool {
	return p.IsTerminal() && !p.InCheck()
}

// Outcome and Method surface the rules engine's authoritative game-ending
// detection, which (unlike IsCheckmate/IsStalemate) also covers insufficient
// material and the automatic fivefold-repetition and seventy-five-move draws.
// Claimable threefold-repetition and fifty-move draws are listed by
// EligibleDraws instead.
func (p Position) Outcome() chess.Outcome { return p.g.Outcome() }
func (p Position) Method() chess.Method   { return p.g.Method() }

// EligibleDraws lists draw claims available in the current position.
func (p Position) EligibleDraws() []chess.Method {
	return p.g.EligibleDraws()
}

// FullMoveNumber parses the fullmove counter out of the FEN (field 6);
// notnil/chess does not expose it as a typed getter on Position.
func (p Position) FullMoveNumber() int {
	fields := strings.Fields(p.FEN())
	if len(fields) < 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// HalfMoveClock parses the halfmove clock out of the FEN (field 5).
func (p Position) HalfMoveClock() int {
	fields := strings.Fields(p.FEN())
	if len(fields) < 5 {
		return 0
	}
	n, err := strconv.Atoi(fields[4])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// PushUCI returns a new Position with the given UCI move applied; p itself
// is never mutated.
func (p Position) PushUCI(uci string) (Position, error) {
	c := p.Clone()
	if err := c.g.MoveStr(uci); err != nil {
		return Position{}, err
	}
	return c, nil
}

// Push returns a new Position with m applied; p itself is never mutated.
func (p Position) Push(m *chess.Move) (Position, error) {
	c := p.Clone()
	if err := c.g.Move(m); err != nil {
		return Position{}, err
	}
	return c, nil
}

// PGN renders the full move history as a PGN game text.
func (p Position) PGN() string {
	return p.g.String()
}


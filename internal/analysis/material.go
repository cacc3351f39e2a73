// Package analysis is the Position Analyzer: material balance, hanging
// pieces, threats, tactical density, phase classification, and opening
// recognition, grounded on games/chess_game.py's equivalent helpers.
package analysis

import (
	"github.com/notnil/chess"

	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
)

// PieceValue gives the standard material values; kings are excluded (0).
func PieceValue(pt chess.PieceType) int {
	switch pt {
	case chess.Pawn:
		return 1
	case chess.Knight, chess.Bishop:
		return 3
	case chess.Rook:
		return 5
	case chess.Queen:
		return 9
	default:
		return 0
	}
}

// MaterialBalance sums piece values from perspective's point of view:
// perspective's pieces count positive, the opponent's negative.
func MaterialBalance(pos match.Position, perspective chess.Color) int {
	total := 0
	for _, pc := range pos.Raw().Position().Board().SquareMap() {
		v := PieceValue(pc.Type())
		if pc.Color() == perspective {
			total += v
		} else {
			total -= v
		}
	}
	return total
}

// MaterialBalanceSTM is MaterialBalance from the side-to-move's perspective.
func MaterialBalanceSTM(pos match.Position) int {
	return MaterialBalance(pos, pos.Color())
}

// TotalMaterial sums every piece's value regardless of side (kings excluded).
func TotalMaterial(pos match.Position) int {
	total := 0
	for _, pc := range pos.Raw().Position().Board().SquareMap() {
		total += PieceValue(pc.Type())
	}
	return total
}

// PieceCount counts every piece on the board, including kings.
func PieceCount(pos match.Position) int {
	return len(pos.Raw().Position().Board().SquareMap())
}

// HasQueens reports whether either side still has a queen.
func HasQueens(pos match.Position) bool {
	for _, pc := range pos.Raw().Position().Board().SquareMap() {
		if pc.Type() == chess.Queen {
			return true
		}
	}
	return false
}

// MajorPieceCount counts rooks and queens for the given color.
func MajorPieceCount(pos match.Position, color chess.Color) int {
	n := 0
	for _, pc := range pos.Raw().Position().Board().SquareMap() {
		if pc.Color() == color && (pc.Type() == chess.Rook || pc.Type() == chess.Queen) {
			n++
		}
	}
	return n
}

package match

import "github.com/notnil/chess"

// OtherColor returns the opposing color.
func OtherColor(c chess.Color) chess.Color {
	if c == chess.White {
		return chess.Black
	}
	return chess.White
}

// KingSquare locates color's king. ok is false only for malformed positions.
func KingSquare(pos *chess.Position, color chess.Color) (sq chess.Square, ok bool) {
	for sq, pc := range pos.Board().SquareMap() {
		if pc.Type() == chess.King && pc.Color() == color {
			return sq, true
		}
	}
	return 0, false
}

// Attackers counts how many pieces of color attack sq in pos. Used for
// hanging-piece detection, in-check detection, and the tactical filter's
// queen-sac rule. notnil/chess exposes no public attackers-of-square query,
// so this walks the board directly the way a shallow tactical evaluator
// would in any engine.
func Attackers(pos *chess.Position, color chess.Color, sq chess.Square) int {
	board := pos.Board()
	sm := board.SquareMap()
	count := 0
	for from, pc := range sm {
		if pc.Color() != color {
			continue
		}
		if attacks(pc.Type(), color, from, sq, sm) {
			count++
		}
	}
	return count
}

// Defenders counts pieces of color that would recapture on sq, i.e.
// attackers of sq by color in the same position (symmetric to Attackers but
// named for readability at call sites that reason about "our defenders").
func Defenders(pos *chess.Position, color chess.Color, sq chess.Square) int {
	return Attackers(pos, color, sq)
}

// PieceAttacks reports whether the piece on `from` attacks `to` in pos.
func PieceAttacks(pos *chess.Position, from, to chess.Square) bool {
	pc, ok := pos.Board().SquareMap()[from]
	if !ok {
		return false
	}
	return attacks(pc.Type(), pc.Color(), from, to, pos.Board().SquareMap())
}

func attacks(pt chess.PieceType, color chess.Color, from, to chess.Square, occ map[chess.Square]chess.Piece) bool {
	df := int(to.File()) - int(from.File())
	dr := int(to.Rank()) - int(from.Rank())
	if df == 0 && dr == 0 {
		return false
	}
	switch pt {
	case chess.Pawn:
		dir := 1
		if color == chess.Black {
			dir = -1
		}
		return dr == dir && (df == 1 || df == -1)
	case chess.Knight:
		ad, ar := abs(df), abs(dr)
		return (ad == 1 && ar == 2) || (ad == 2 && ar == 1)
	case chess.King:
		return abs(df) <= 1 && abs(dr) <= 1
	case chess.Bishop:
		return abs(df) == abs(dr) && clearPath(from, to, occ)
	case chess.Rook:
		return (df == 0 || dr == 0) && clearPath(from, to, occ)
	case chess.Queen:
		return (df == 0 || dr == 0 || abs(df) == abs(dr)) && clearPath(from, to, occ)
	default:
		return false
	}
}

func clearPath(from, to chess.Square, occ map[chess.Square]chess.Piece) bool {
	df := sign(int(to.File()) - int(from.File()))
	dr := sign(int(to.Rank()) - int(from.Rank()))
	f, r := int(from.File())+df, int(from.Rank())+dr
	for f != int(to.File()) || r != int(to.Rank()) {
		sq := chess.NewSquare(chess.File(f), chess.Rank(r))
		if _, occupied := occ[sq]; occupied {
			return false
		}
		f += df
		r += dr
	}
	return true
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

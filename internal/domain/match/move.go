package match

import "github.com/notnil/chess"

// Move is a rules-engine move plus the derived booleans spec.md §3 asks for,
// computed once at construction time against the position it was played in
// and the position it produced.
type Move struct {
	Engine      *chess.Move
	UCI         string
	SAN         string
	IsCapture   bool
	IsCastling  bool
	GivesCheck  bool
	IsCheckmate bool
}

// NewMove builds a Move from a legal chess.Move, encoding it against before
// (for SAN) and evaluating the resulting position (for check/checkmate).
func NewMove(before Position, m *chess.Move) (Move, Position, error) {
	san := chess.AlgebraicNotation{}.Encode(before.g.Position(), m)
	uci := chess.UCINotation{}.Encode(before.g.Position(), m)

	after, err := before.Push(m)
	if err != nil {
		return Move{}, Position{}, err
	}

	mv := Move{
		Engine:      m,
		UCI:         uci,
		SAN:         san,
		IsCapture:   m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant),
		IsCastling:  m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle),
		GivesCheck:  after.InCheck(),
		IsCheckmate: after.IsCheckmate(),
	}
	return mv, after, nil
}

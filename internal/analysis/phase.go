package analysis

import (
	"github.com/notnil/chess"

	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
)

// Phase is one of opening/middlegame/endgame.
type Phase string

const (
	Opening    Phase = "opening"
	Middlegame Phase = "middlegame"
	Endgame    Phase = "endgame"
)

// PhaseInfo carries the statistics the classifier used, surfaced in prompts
// and logs.
type PhaseInfo struct {
	PieceCount         int
	TotalMaterial      int
	MaterialBalance    int
	MajorPieces        int // combined, both sides
	HasQueens          bool
	DevelopedMinorsSTM int
	FullMoveNumber     int
	AnyCastlingRights  bool
}

// developedMinorPieces counts knights/bishops of color no longer on their
// original starting square.
func developedMinorPieces(pos match.Position, color chess.Color) int {
	count := 0
	for sq, pc := range pos.Raw().Position().Board().SquareMap() {
		if pc.Color() != color {
			continue
		}
		if pc.Type() != chess.Knight && pc.Type() != chess.Bishop {
			continue
		}
		if !isOwnOrigin(color, pc.Type(), sq) {
			count++
		}
	}
	return count
}

func isOwnOrigin(color chess.Color, pt chess.PieceType, sq chess.Square) bool {
	if color == chess.White {
		switch pt {
		case chess.Knight:
			return sq == chess.B1 || sq == chess.G1
		case chess.Bishop:
			return sq == chess.C1 || sq == chess.F1
		}
	} else {
		switch pt {
		case chess.Knight:
			return sq == chess.B8 || sq == chess.G8
		case chess.Bishop:
			return sq == chess.C8 || sq == chess.F8
		}
	}
	return false
}

func anyCastlingRights(pos match.Position) bool {
	cr := pos.Raw().Position().CastleRights()
	return cr.CanCastle(chess.White, chess.KingSide) ||
		cr.CanCastle(chess.White, chess.QueenSide) ||
		cr.CanCastle(chess.Black, chess.KingSide) ||
		cr.CanCastle(chess.Black, chess.QueenSide)
}

// DetectPhase classifies the position per spec.md §4.1's priority order:
// endgame first, then opening, else middlegame.
func DetectPhase(pos match.Position) (Phase, PhaseInfo) {
	info := PhaseInfo{
		PieceCount:         PieceCount(pos),
		TotalMaterial:      TotalMaterial(pos),
		MaterialBalance:    MaterialBalanceSTM(pos),
		MajorPieces:        MajorPieceCount(pos, chess.White) + MajorPieceCount(pos, chess.Black),
		HasQueens:          HasQueens(pos),
		DevelopedMinorsSTM: developedMinorPieces(pos, pos.Color()),
		FullMoveNumber:     pos.FullMoveNumber(),
		AnyCastlingRights:  anyCastlingRights(pos),
	}

	if info.PieceCount <= 10 || info.TotalMaterial <= 20 || (!info.HasQueens && info.MajorPieces <= 2) {
		return Endgame, info
	}
	if info.FullMoveNumber <= 12 &&
		(info.DevelopedMinorsSTM <= 4 || info.AnyCastlingRights) &&
		info.PieceCount >= 28 {
		return Opening, info
	}
	return Middlegame, info
}

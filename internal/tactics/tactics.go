// Package tactics is the Tactical Filter: a shallow worst-case material
// lookahead that vetoes legal-but-unsound model moves and ranks safe
// fallbacks, per spec.md §4.3.
package tactics

import (
	"fmt"
	"sort"

	"github.com/notnil/chess"

	"github.com/randomtoy/chess-llm-arena/internal/analysis"
	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
)

const (
	blunderReplyCap  = 12
	fallbackReplyCap = 10
	queenSacDrop     = 8
	safeBonus        = 0.5
)

// Verdict is the outcome of a blunder check against a candidate move.
type Verdict struct {
	Veto       bool
	Info       match.BlunderInfo
	GivesCheck bool
}

// BaseThreshold implements spec.md §4.3's base_threshold table.
func BaseThreshold(phase analysis.Phase, density int) int {
	switch {
	case phase == analysis.Endgame && density <= 2:
		return 3
	case density >= 6:
		return 5
	default:
		return 4
	}
}

// CheckBlunder evaluates whether playing m in before would be a gross
// blunder. before is the position prior to the candidate move, with the
// candidate's side to move.
func CheckBlunder(before match.Position, m *chess.Move) (Verdict, error) {
	side := before.Color()
	baseline := analysis.MaterialBalance(before, side)

	after, err := before.Push(m)
	if err != nil {
		return Verdict{}, err
	}

	if after.IsCheckmate() {
		return Verdict{Veto: false, GivesCheck: true}, nil
	}

	givesCheck := after.InCheck()

	worstDrop, worstReplyUCI := worstCaseDrop(after, side, baseline, blunderReplyCap)

	queenSac := checkQueenSac(after, side, baseline)

	phase, _ := analysis.DetectPhase(before)
	density := analysis.TacticalDensity(before)
	threshold := BaseThreshold(phase, density)

	if baseline < -2 {
		threshold++
	}
	if evacuatesHanging(before, after, m) {
		threshold++
	}
	if pieceAt(before, m.S1()) == chess.Queen {
		threshold++
	}
	if givesCheck {
		threshold += 2
	}

	veto := queenSac || worstDrop >= threshold

	info := match.BlunderInfo{
		Threshold:     threshold,
		WorstDrop:     worstDrop,
		WorstReplyUCI: worstReplyUCI,
		QueenSacFlag:  queenSac,
	}
	return Verdict{Veto: veto, Info: info, GivesCheck: givesCheck}, nil
}

// worstCaseDrop enumerates up to cap opponent replies in pos (forcing
// captures first), and returns the largest material drop from side's
// perspective and the UCI of the reply that caused it.
func worstCaseDrop(pos match.Position, side chess.Color, baseline int, cap int) (int, string) {
	replies := orderForcingFirst(pos.LegalMoves())
	if len(replies) > cap {
		replies = replies[:cap]
	}
	worst := 0
	worstUCI := ""
	for _, r := range replies {
		after, err := pos.Push(r)
		if err != nil {
			continue
		}
		drop := baseline - analysis.MaterialBalance(after, side)
		if drop > worst {
			worst = drop
			worstUCI = chess.UCINotation{}.Encode(pos.Raw().Position(), r)
		}
	}
	return worst, worstUCI
}

// checkQueenSac implements the explicit queen-sacrifice rule: if side's
// queen is attacked in pos and some immediate opponent capture of it yields
// a one-ply material drop of at least queenSacDrop, flag it regardless of
// the general worst-case threshold.
func checkQueenSac(pos match.Position, side chess.Color, baseline int) bool {
	queenSq, ok := findQueen(pos, side)
	if !ok {
		return false
	}
	if match.Attackers(pos.Raw().Position(), match.OtherColor(side), queenSq) == 0 {
		return false
	}
	for _, r := range pos.LegalMoves() {
		if r.S2() != queenSq {
			continue
		}
		after, err := pos.Push(r)
		if err != nil {
			continue
		}
		drop := baseline - analysis.MaterialBalance(after, side)
		if drop >= queenSacDrop {
			return true
		}
	}
	return false
}

func findQueen(pos match.Position, color chess.Color) (chess.Square, bool) {
	for sq, pc := range pos.Raw().Position().Board().SquareMap() {
		if pc.Color() == color && pc.Type() == chess.Queen {
			return sq, true
		}
	}
	return 0, false
}

func pieceAt(pos match.Position, sq chess.Square) chess.PieceType {
	pc, ok := pos.Raw().Position().Board().SquareMap()[sq]
	if !ok {
		return chess.NoPieceType
	}
	return pc.Type()
}

// evacuatesHanging reports whether m moved a piece out of a hanging square
// in before to a square that is safe (attackers <= defenders) in after.
func evacuatesHanging(before, after match.Position, m *chess.Move) bool {
	side := before.Color()
	hangingBefore := analysis.HangingSet(before)
	if _, wasHanging := hangingBefore[m.S1()]; !wasHanging {
		return false
	}
	p := after.Raw().Position()
	a := match.Attackers(p, match.OtherColor(side), m.S2())
	d := match.Attackers(p, side, m.S2())
	return a <= d
}

// orderForcingFirst returns moves with captures first, preserving relative
// order otherwise, per spec.md §9's Open Question #2 resolution.
func orderForcingFirst(moves []*chess.Move) []*chess.Move {
	forcing := make([]*chess.Move, 0, len(moves))
	rest := make([]*chess.Move, 0, len(moves))
	for _, m := range moves {
		if m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant) {
			forcing = append(forcing, m)
		} else {
			rest = append(rest, m)
		}
	}
	return append(forcing, rest...)
}

// candidate is one ranked legal move.
type candidate struct {
	move  *chess.Move
	uci   string
	score float64
}

func rank(pos match.Position, cap int) []candidate {
	side := pos.Color()
	baseline := analysis.MaterialBalance(pos, side)
	hangingBefore := analysis.HangingSet(pos)

	cands := make([]candidate, 0, len(pos.LegalMoves()))
	for _, m := range pos.LegalMoves() {
		after, err := pos.Push(m)
		if err != nil {
			continue
		}
		worstDrop, _ := worstCaseDrop(after, side, baseline, cap)

		bonus := 0.0
		if _, wasHanging := hangingBefore[m.S1()]; wasHanging {
			p := after.Raw().Position()
			if match.Attackers(p, match.OtherColor(side), m.S2()) <= match.Attackers(p, side, m.S2()) {
				bonus = safeBonus
			}
		}

		cands = append(cands, candidate{
			move:  m,
			uci:   chess.UCINotation{}.Encode(pos.Raw().Position(), m),
			score: -(float64(worstDrop) - bonus),
		})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	return cands
}

// SafeFallback ranks every legal move not already vetoed this turn and
// returns the top-scoring one. If every legal move has been vetoed, it
// returns the first legal move unchanged so the game still makes progress.
func SafeFallback(pos match.Position, vetoed map[string]int) (*chess.Move, string) {
	cands := rank(pos, fallbackReplyCap)
	for _, c := range cands {
		if vetoed[c.uci] == 0 {
			return c.move, c.uci
		}
	}
	legal := pos.LegalMoves()
	if len(legal) == 0 {
		return nil, ""
	}
	first := legal[0]
	return first, chess.UCINotation{}.Encode(pos.Raw().Position(), first)
}

// SafeCandidates exposes the top limit UCI strings from the same ranking,
// for inclusion as retry-prompt hints after a veto.
func SafeCandidates(pos match.Position, limit int) []string {
	cands := rank(pos, fallbackReplyCap)
	if limit > len(cands) {
		limit = len(cands)
	}
	out := make([]string, 0, limit)
	for _, c := range cands[:limit] {
		out = append(out, c.uci)
	}
	return out
}

// DescribeVeto renders the human-readable reason recorded into
// TurnState.LastFailure on a veto, per spec.md §4.6.
func DescribeVeto(info match.BlunderInfo) string {
	reply := info.WorstReplyUCI
	extra := ""
	if reply != "" {
		extra = "; opponent reply " + reply
	}
	return fmt.Sprintf("Previous attempt likely blundered material (worst-case -%d vs threshold %d%s).", info.WorstDrop, info.Threshold, extra)
}

package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notnil/chess"

	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
)

// HangingSquares returns the squares of side-to-move pieces attacked more
// times than they are defended.
func HangingSquares(pos match.Position) []chess.Square {
	p := pos.Raw().Position()
	us := pos.Color()
	them := other(us)
	var out []chess.Square
	for sq, pc := range p.Board().SquareMap() {
		if pc.Color() != us || pc.Type() == chess.King {
			continue
		}
		if match.Attackers(p, them, sq) > match.Attackers(p, us, sq) {
			out = append(out, sq)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HangingSet is HangingSquares as a membership set, convenient for the
// tactical filter's "evacuates a hanging piece" checks.
func HangingSet(pos match.Position) map[chess.Square]struct{} {
	set := make(map[chess.Square]struct{})
	for _, sq := range HangingSquares(pos) {
		set[sq] = struct{}{}
	}
	return set
}

// CheckingPieces returns the squares of opponent pieces giving check to the
// side to move, empty if not in check.
func CheckingPieces(pos match.Position) []chess.Square {
	p := pos.Raw().Position()
	us := pos.Color()
	them := other(us)
	kingSq, ok := match.KingSquare(p, us)
	if !ok {
		return nil
	}
	var out []chess.Square
	for sq, pc := range p.Board().SquareMap() {
		if pc.Color() != them {
			continue
		}
		if match.PieceAttacks(p, sq, kingSq) {
			out = append(out, sq)
		}
	}
	return out
}

func other(c chess.Color) chess.Color {
	if c == chess.White {
		return chess.Black
	}
	return chess.White
}

// ThreatsText builds the human-readable threats summary spec.md §4.1 calls
// for: checkers if in check, hanging pieces with attacker/defender counts,
// and opponent pieces we attack with more attackers than defenders.
func ThreatsText(pos match.Position) string {
	p := pos.Raw().Position()
	us := pos.Color()
	them := other(us)
	var parts []string

	if pos.InCheck() {
		var names []string
		for _, sq := range CheckingPieces(pos) {
			pc := p.Board().SquareMap()[sq]
			names = append(names, fmt.Sprintf("%s on %s", pc.String(), sq.String()))
		}
		if len(names) > 0 {
			parts = append(parts, "In check from: "+strings.Join(names, ", ")+".")
		} else {
			parts = append(parts, "In check.")
		}
	}

	var hanging []string
	for _, sq := range HangingSquares(pos) {
		pc := p.Board().SquareMap()[sq]
		a := match.Attackers(p, them, sq)
		d := match.Attackers(p, us, sq)
		hanging = append(hanging, fmt.Sprintf("%s on %s (attacked %d, defended %d)", pc.String(), sq.String(), a, d))
	}
	if len(hanging) > 0 {
		parts = append(parts, "Hanging pieces: "+strings.Join(hanging, ", ")+".")
	}

	var wins []string
	for sq, pc := range p.Board().SquareMap() {
		if pc.Color() != them {
			continue
		}
		a := match.Attackers(p, us, sq)
		d := match.Attackers(p, them, sq)
		if a > d {
			wins = append(wins, fmt.Sprintf("%s on %s (attackers %d vs defenders %d)", pc.String(), sq.String(), a, d))
		}
	}
	sort.Strings(wins)
	if len(wins) > 0 {
		parts = append(parts, "Winning targets: "+strings.Join(wins, ", ")+".")
	}

	if len(parts) == 0 {
		return "No immediate tactical threats detected."
	}
	return strings.Join(parts, " ")
}

var centerSquares = [4]chess.Square{chess.D4, chess.D5, chess.E4, chess.E5}

// CenterControlText summarizes occupancy of d4/d5/e4/e5, one pawn-race signal
// spec.md §4.4 wants alongside threats and material balance.
func CenterControlText(pos match.Position) string {
	sm := pos.Raw().Position().Board().SquareMap()
	var white, black int
	for _, sq := range centerSquares {
		pc, ok := sm[sq]
		if !ok {
			continue
		}
		if pc.Color() == chess.White {
			white++
		} else {
			black++
		}
	}
	return fmt.Sprintf("center control W:%d B:%d", white, black)
}

// TacticalDensity counts legal captures plus legal checking moves, used as a
// proxy for how sharp the position is.
func TacticalDensity(pos match.Position) int {
	density := 0
	for _, m := range pos.LegalMoves() {
		if m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant) {
			density++
			continue
		}
		after, err := pos.Push(m)
		if err == nil && after.InCheck() {
			density++
		}
	}
	return density
}

// Package promptbuilder assembles the phase-aware, feedback-aware prompt
// sent to a model each attempt, per spec.md §4.4.
package promptbuilder

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/notnil/chess"

	"github.com/randomtoy/chess-llm-arena/internal/analysis"
	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
)

// RNG is the seedable source for legal-move sampling. *rand.Rand satisfies
// it directly; tests can substitute a fixed-sequence stub.
type RNG interface {
	IntN(n int) int
}

// NewRNG returns a *rand.Rand seeded deterministically from seed, the only
// source of nondeterminism spec.md §9 allows into prompt construction.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

const (
	sampleUpperDefault = 16
	sampleLowerDefault = 12
	sampleUpperVetoed  = 24
	sampleLowerVetoed  = 16
	safeSuggestionCap  = 3
	historyTailPlies   = 6
)

// Input aggregates everything the builder needs for one attempt's prompt.
// The Decision Loop constructs a fresh Input each time it calls Build.
type Input struct {
	Position Position

	Phase       analysis.Phase
	OpeningName string
	MaterialTag string

	LastSAN string
	// RecentSAN holds the game's SAN history; writeState shows only its tail.
	RecentSAN []string

	// VetoedThisTurn widens the legal-move sample and, when true, includes
	// the SAFE_SUGGESTIONS section.
	VetoedThisTurn  bool
	LastFailure     string
	AvoidMoves      []string
	SafeSuggestions []string
}

// Position is an alias for the full match.Position type, so an Input field
// of this type accepts a match.Position value directly.
type Position = match.Position

// Build assembles the full structured prompt. rng drives only the
// legal-move sample; every other section is a pure function of in.
func Build(in Input, rng RNG) string {
	pos := in.Position
	legal := sortedLegalUCI(pos)
	shown := sampleMoves(legal, in.VetoedThisTurn, rng)

	var b strings.Builder
	writeState(&b, in, shown)
	writeStrategyGuide(&b, in, pos)
	writeInsights(&b, in, pos)
	writeHistorySummary(&b, in)
	if in.VetoedThisTurn && len(in.SafeSuggestions) > 0 {
		writeSafeSuggestions(&b, in.SafeSuggestions)
	}
	writeOptions(&b)
	writeProtocol(&b)
	return b.String()
}

func sortedLegalUCI(pos match.Position) []string {
	moves := pos.LegalMoves()
	out := make([]string, 0, len(moves))
	enc := chess.UCINotation{}
	raw := pos.Raw().Position()
	for _, m := range moves {
		out = append(out, enc.Encode(raw, m))
	}
	sort.Strings(out)
	return out
}

// sampleMoves draws a random-sized, random-membership subset of legal,
// widening the bounds after a veto so the model sees more options, per
// spec.md §4.4's determinism note (sampling is the only nondeterminism).
func sampleMoves(legal []string, vetoed bool, rng RNG) []string {
	upperDefault := sampleUpperDefault
	if len(legal) < upperDefault {
		upperDefault = len(legal)
	}
	lowerDefault := sampleLowerDefault
	if lowerDefault > upperDefault {
		lowerDefault = upperDefault
	}

	upper, lower := upperDefault, lowerDefault
	if vetoed {
		upper = sampleUpperVetoed
		if upper > len(legal) {
			upper = len(legal)
		}
		lower = sampleLowerVetoed
		if lower > upper {
			lower = upper
		}
	}

	k := upper
	if lower != upper {
		k = lower + rng.IntN(upper-lower+1)
	}
	if k <= 0 || k >= len(legal) {
		return legal
	}
	return shuffleSample(legal, k, rng)
}

// shuffleSample returns k distinct elements of legal via partial
// Fisher-Yates, leaving legal itself untouched.
func shuffleSample(legal []string, k int, rng RNG) []string {
	pool := make([]string, len(legal))
	copy(pool, legal)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := make([]string, k)
	copy(out, pool[:k])
	sort.Strings(out)
	return out
}

func writeState(b *strings.Builder, in Input, shown []string) {
	pos := in.Position
	last := in.LastSAN
	if last == "" {
		last = "(start)"
	}
	fmt.Fprintf(b, "=== STATE ===\n")
	fmt.Fprintf(b, "turn: %s\n", titleCase(pos.SideToMove()))
	fmt.Fprintf(b, "move_number: %d\n", pos.FullMoveNumber())
	fmt.Fprintf(b, "fen: %s\n", pos.FEN())
	fmt.Fprintf(b, "pgn_tail: %s\n", sanTail(in.RecentSAN, historyTailPlies))
	fmt.Fprintf(b, "last_move_san: %s\n", last)
	fmt.Fprintf(b, "opening: %s\n", in.OpeningName)
	fmt.Fprintf(b, "phase: %s\n", in.Phase)
	fmt.Fprintf(b, "legal_moves_sample: %s\n", strings.Join(shown, ", "))
	if len(in.AvoidMoves) > 0 {
		fmt.Fprintf(b, "avoid_moves: %s\n", strings.Join(in.AvoidMoves, ", "))
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sanTail(history []string, maxPlies int) string {
	if len(history) == 0 {
		return "(start)"
	}
	tail := history
	if len(tail) > maxPlies {
		tail = tail[len(tail)-maxPlies:]
	}
	return strings.Join(tail, " ")
}

func writeStrategyGuide(b *strings.Builder, in Input, pos match.Position) {
	var guide string
	switch in.Phase {
	case analysis.Opening:
		guide = "Opening principles: develop pieces quickly, control the center " +
			"(e4/d4/e5/d5), ensure king safety (consider castling), and avoid " +
			"early queen sorties or loose pawn moves."
	case analysis.Endgame:
		guide = "Endgame principles: activate the king, create and push passed " +
			"pawns, use opposition and triangulation, and avoid stalemate tricks."
	default:
		guide = "Middlegame principles: improve your worst-placed piece, " +
			"coordinate forces, calculate tactics (pins, forks, discovered " +
			"attacks), and evaluate trades."
	}
	if pos.InCheck() {
		guide += " You are in check: consider only moves that resolve the check (block, capture, or move the king)."
	}
	fmt.Fprintf(b, "\n=== STRATEGY_GUIDE ===\n")
	fmt.Fprintf(b, "- %s\n", guide)
	fmt.Fprintf(b, "- Prefer moves that improve piece activity and king safety.\n")
	fmt.Fprintf(b, "- Calculate 1-2 moves ahead for opponent replies to avoid blunders.\n")
}

func writeInsights(b *strings.Builder, in Input, pos match.Position) {
	fmt.Fprintf(b, "\n=== POSITION_INSIGHTS ===\n")
	fmt.Fprintf(b, "THREATS: %s\n", analysis.ThreatsText(pos))
	fmt.Fprintf(b, "CENTER_CONTROL: %s\n", analysis.CenterControlText(pos))
	fmt.Fprintf(b, "EVAL_HINTS: %s\n", in.MaterialTag)
}

func writeHistorySummary(b *strings.Builder, in Input) {
	fmt.Fprintf(b, "\n=== GAME_HISTORY_SUMMARY ===\n")
	fmt.Fprintf(b, "Phase: %s; Opening: %s; %s\n", in.Phase, in.OpeningName, in.MaterialTag)
	if in.LastFailure != "" {
		fmt.Fprintf(b, "Previous attempt feedback: %s\n", in.LastFailure)
	}
}

func writeSafeSuggestions(b *strings.Builder, suggestions []string) {
	limit := safeSuggestionCap
	if limit > len(suggestions) {
		limit = len(suggestions)
	}
	fmt.Fprintf(b, "\n=== SAFE_SUGGESTIONS ===\n")
	fmt.Fprintf(b, "%s\n", strings.Join(suggestions[:limit], ", "))
}

func writeOptions(b *strings.Builder) {
	fmt.Fprintf(b, "\n=== OPTIONS ===\n")
	fmt.Fprintf(b, "Choose your move from the legal move sample above or propose "+
		"any other legal move if you believe it is superior. Prefer SAN or UCI. "+
		"If uncertain, consider SAFE_SUGGESTIONS.\n")
}

func writeProtocol(b *strings.Builder) {
	fmt.Fprintf(b, "\n=== PROTOCOL ===\n")
	fmt.Fprintf(b, "Respond with exactly two lines:\n")
	fmt.Fprintf(b, "REASONING: <concise step-by-step analysis>\n")
	fmt.Fprintf(b, "MOVE: <SAN or UCI>\n")
}

// MaterialTag renders the one-line balance phrase ("material +2", "material
// equal") used in POSITION_INSIGHTS and GAME_HISTORY_SUMMARY.
func MaterialTag(balance int) string {
	if balance == 0 {
		return "material equal"
	}
	if balance > 0 {
		return fmt.Sprintf("material +%d", balance)
	}
	return fmt.Sprintf("material %d", balance)
}

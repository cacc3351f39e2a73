// Package parser implements the Move Parser: it extracts a move token from a
// model's free-form reply and resolves it against the legal moves of a
// position, per spec.md §4.2.
package parser

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/notnil/chess"

	"github.com/randomtoy/chess-llm-arena/internal/domain/match"
)

// Result is a successfully parsed move: the normalized token for display and
// the resolved Move/Position.
type Result struct {
	Token string
	Move  match.Move
	After match.Position
}

// Error is returned when no legal move could be recovered; Reason is
// recorded into TurnState.LastFailure by the Decision Loop. Token, when
// non-empty, is the best candidate move text the cascade found before
// failing to resolve it, for GameState.FailedMoves bookkeeping.
type Error struct {
	Reason string
	Token  string
}

func (e *Error) Error() string { return e.Reason }

var (
	moveLineRe  = regexp.MustCompile(`(?im)^\s*MOVE\s*:\s*(.+?)\s*$`)
	jsonBlockRe = regexp.MustCompile(`\{[^{}]*\}`)
	bareSquare  = regexp.MustCompile(`^[a-h][1-8]$`)
	uciShape    = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][nbrqNBRQ]?$`)
	wordRe      = regexp.MustCompile(`[A-Za-z0-9+#=\-]+`)
)

// Parse extracts a move token from resp and resolves it to a legal move in
// pos. It implements the extraction cascade (JSON, last MOVE: line, wrapper
// stripping, bare-square rejection, tertiary SAN/UCI scan) followed by the
// parsing cascade (SAN first, then UCI shape, then SAN case variants).
func Parse(resp string, pos match.Position) (Result, error) {
	var lastCandidate string

	if token, ok := extractJSONMove(resp); ok {
		lastCandidate = token
		if r, err := resolve(token, pos); err == nil {
			return r, nil
		}
	}

	if token, ok := extractLastMoveLine(resp); ok {
		clean := stripWrappers(token)
		lastCandidate = clean
		// A bare square ("e4") is ambiguous with a pawn-push SAN, so it isn't
		// resolved here; the tertiary scan below still picks it up if it is
		// in fact a legal SAN or UCI token.
		if !bareSquare.MatchString(clean) {
			if r, err := resolve(clean, pos); err == nil {
				return r, nil
			}
		}
	}

	if token, ok := scanForLegalToken(resp, pos); ok {
		lastCandidate = token
		if r, err := resolve(token, pos); err == nil {
			return r, nil
		}
	}

	return Result{}, &Error{
		Reason: "Could not parse move. Respond with first line only: MOVE: <SAN or UCI>",
		Token:  lastCandidate,
	}
}

// extractJSONMove finds a `{"move":"..."}`-shaped object anywhere in text,
// case-insensitive on the key, and returns its value.
func extractJSONMove(text string) (string, bool) {
	for _, block := range jsonBlockRe.FindAllString(text, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(block), &obj); err != nil {
			continue
		}
		for k, v := range obj {
			if strings.EqualFold(k, "move") {
				if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
					return stripWrappers(s), true
				}
			}
		}
	}
	return "", false
}

// extractLastMoveLine returns the value of the last "MOVE:" line, tolerating
// models that restate intermediate candidate moves before their final one.
func extractLastMoveLine(text string) (string, bool) {
	matches := moveLineRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1][1], true
}

// stripWrappers removes common LLM formatting noise: backticks, asterisks,
// brackets, and trailing punctuation.
func stripWrappers(s string) string {
	s = strings.Trim(s, "`*[]() \t")
	s = strings.TrimRight(s, ".,;:")
	return strings.TrimSpace(s)
}

// scanForLegalToken is the tertiary fallback: it scans the whole response
// for any word matching a legal SAN or UCI string, preferring tokens with
// +/# and then the longest token.
func scanForLegalToken(text string, pos match.Position) (string, bool) {
	legal := pos.LegalMoves()
	sanSet := make(map[string]bool, len(legal))
	uciSet := make(map[string]bool, len(legal))
	enc := chess.AlgebraicNotation{}
	uciEnc := chess.UCINotation{}
	for _, m := range legal {
		sanSet[enc.Encode(pos.Raw().Position(), m)] = true
		uciSet[uciEnc.Encode(pos.Raw().Position(), m)] = true
	}

	var candidates []string
	for _, w := range wordRe.FindAllString(text, -1) {
		clean := stripWrappers(w)
		if sanSet[clean] || uciSet[clean] {
			candidates = append(candidates, clean)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		fi := strings.ContainsAny(candidates[i], "+#")
		fj := strings.ContainsAny(candidates[j], "+#")
		if fi != fj {
			return fi
		}
		return len(candidates[i]) > len(candidates[j])
	})
	return candidates[0], true
}

// resolve parses a token into a legal move: SAN first, then UCI shape, then
// SAN capitalization variants, per spec.md §4.2's parsing precedence.
func resolve(token string, pos match.Position) (Result, error) {
	token = stripWrappers(token)
	if token == "" {
		return Result{}, &Error{Reason: "empty move token"}
	}

	if m, err := (chess.AlgebraicNotation{}).Decode(pos.Raw().Position(), token); err == nil {
		return build(token, m, pos)
	}

	if uciShape.MatchString(token) {
		if m, err := (chess.UCINotation{}).Decode(pos.Raw().Position(), token); err == nil {
			return build(token, m, pos)
		}
	}

	for _, variant := range capitalizationVariants(token) {
		if m, err := (chess.AlgebraicNotation{}).Decode(pos.Raw().Position(), variant); err == nil {
			return build(variant, m, pos)
		}
	}

	return Result{}, &Error{Reason: "move not legal in current position: " + token}
}

func build(token string, m *chess.Move, pos match.Position) (Result, error) {
	mv, after, err := match.NewMove(pos, m)
	if err != nil {
		return Result{}, &Error{Reason: "move not legal in current position: " + token}
	}
	return Result{Token: mv.UCI, Move: mv, After: after}, nil
}

// capitalizationVariants tries the piece-letter-capitalized form (models
// frequently lowercase "nf3" when they mean "Nf3") and the all-lowercase form.
func capitalizationVariants(token string) []string {
	if token == "" {
		return nil
	}
	variants := make([]string, 0, 2)
	upperFirst := strings.ToUpper(token[:1]) + token[1:]
	if upperFirst != token {
		variants = append(variants, upperFirst)
	}
	lower := strings.ToLower(token)
	if lower != token {
		variants = append(variants, lower)
	}
	return variants
}

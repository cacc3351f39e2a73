package analysis

import "strings"

// openingEntry pairs a UCI move prefix with the opening name it identifies.
type openingEntry struct {
	prefix []string
	name   string
}

// openingTable is a fixed, sorted-by-descending-prefix-length list so
// specific variants match before their general parent, grounded on the
// original implementation's recognize_opening table.
var openingTable = sortedOpeningTable([]openingEntry{
	{[]string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"}, "Ruy Lopez"},
	{[]string{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4"}, "Scotch Game"},
	{[]string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4"}, "Italian Game"},
	{[]string{"e2e4", "e7e5", "g1f3", "g8f6"}, "Petroff Defense"},
	{[]string{"e2e4", "e7e5", "b1c3"}, "Vienna Game"},
	{[]string{"e2e4", "e7e5", "d1h5"}, "Scholar's Mate Attempt"},
	{[]string{"e2e4", "e7e5"}, "King's Pawn Game"},
	{[]string{"e2e4", "c7c5"}, "Sicilian Defense"},
	{[]string{"e2e4", "e7e6"}, "French Defense"},
	{[]string{"e2e4", "c7c6"}, "Caro-Kann Defense"},
	{[]string{"e2e4", "g8f6"}, "Alekhine Defense"},
	{[]string{"e2e4", "d7d6"}, "Pirc Defense"},
	{[]string{"e2e4", "d7d5"}, "Scandinavian Defense"},
	{[]string{"d2d4", "d7d5", "c2c4"}, "Queen's Gambit"},
	{[]string{"d2d4", "g8f6", "c2c4", "e7e6", "b1c3", "f8b4"}, "Nimzo-Indian Defense"},
	{[]string{"d2d4", "g8f6", "c2c4", "g7g6", "b1c3", "d7d5"}, "Grunfeld Defense"},
	{[]string{"d2d4", "g8f6", "c2c4", "g7g6"}, "King's Indian Defense"},
	{[]string{"d2d4", "g8f6", "c2c4", "c7c5"}, "Benoni Defense"},
	{[]string{"d2d4", "g8f6"}, "Indian Defenses (General)"},
	{[]string{"d2d4", "d7d5"}, "Queen's Pawn Game"},
	{[]string{"c2c4"}, "English Opening"},
	{[]string{"g1f3"}, "Reti Opening"},
	{[]string{"d2d4", "f7f5"}, "Dutch Defense"},
	{[]string{"f2f4"}, "Bird's Opening"},
	{[]string{"b2b4"}, "Polish Opening (Sokolsky)"},
	{[]string{"g2g4"}, "Grob's Attack"},
})

func sortedOpeningTable(entries []openingEntry) []openingEntry {
	sorted := make([]openingEntry, len(entries))
	copy(sorted, entries)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len(sorted[j].prefix) > len(sorted[j-1].prefix); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

// RecognizeOpening matches a UCI move-history prefix against the opening
// table, preferring the longest specific match; an exact-length set-equality
// match (transposition) is reported as "Variant of <name>".
func RecognizeOpening(uciHistory []string) string {
	if len(uciHistory) == 0 {
		return "Opening"
	}
	window := uciHistory
	if len(window) > 10 {
		window = window[:10]
	}
	for _, e := range openingTable {
		if len(window) < len(e.prefix) {
			continue
		}
		if equalPrefix(window, e.prefix) {
			return e.name
		}
		if sameSet(window[:len(e.prefix)], e.prefix) {
			return "Variant of " + e.name
		}
	}
	return "Unknown Opening or Custom Position"
}

func equalPrefix(moves, prefix []string) bool {
	for i, p := range prefix {
		if moves[i] != p {
			return false
		}
	}
	return true
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, m := range a {
		seen[m]++
	}
	for _, m := range b {
		if seen[m] == 0 {
			return false
		}
		seen[m]--
	}
	return true
}

// Canonical exposes the canonical name stripped of a "Variant of " prefix,
// useful when callers want to group statistics by base opening.
func Canonical(name string) string {
	return strings.TrimPrefix(name, "Variant of ")
}

package counter

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
)

// FoldMode selects how tokens are normalized before they enter the unique set.
// It never affects the total.
type FoldMode int

const (
	// Lower applies simple lowercase mapping (default)
	Lower FoldMode = iota
	// Fold applies full Unicode case folding ("Straße" and "STRASSE" collapse)
	Fold
	// Stem lowercases, then reduces English words to their Snowball stem
	Stem
)

// String returns the string representation of the fold mode.
func (f FoldMode) String() string {
	switch f {
	case Lower:
		return "lower"
	case Fold:
		return "fold"
	case Stem:
		return "stem"
	default:
		return "unknown"
	}
}

// ParseFoldMode converts a flag or config value into a FoldMode; empty means Lower.
func ParseFoldMode(s string) (FoldMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lower":
		return Lower, nil
	case "fold":
		return Fold, nil
	case "stem":
		return Stem, nil
	default:
		return Lower, fmt.Errorf("unknown fold mode %q (want lower, fold or stem)", s)
	}
}

// folder returns the normalization function for f.
// The cases.Caser it may hold is stateful, so each Tally gets its own.
func (f FoldMode) folder() func(string) string {
	switch f {
	case Fold:
		caser := cases.Fold()
		return caser.String
	case Stem:
		return stemToken
	default:
		return strings.ToLower
	}
}

// stemToken stems with the English stemmer, keeping the lowercased token when stemming fails.
func stemToken(tok string) string {
	lower := strings.ToLower(tok)
	stemmed, err := snowball.Stem(lower, "english", true)
	if err != nil || stemmed == "" {
		return lower
	}
	return stemmed
}

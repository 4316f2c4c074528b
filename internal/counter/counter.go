// Package counter provides the incremental token counter for the tally CLI tool.
//
// A Tally absorbs text one chunk at a time and keeps only running totals: the number of
// tokens seen and the set of distinct folded tokens. The token list itself is never kept,
// which is what allows arbitrarily large inputs to be counted in bounded memory (bounded by
// the vocabulary, not the input).
//
// Usage Example:
//
//	t := counter.New(counter.Config{})
//	t.Absorb("The quick brown fox")
//	t.Absorb("jumps over the lazy dog")
//	snap := t.Snapshot()
//	// snap.Total == 9, snap.Unique == 8
//
// Besides the pattern-based tokens, a Tally can sum auxiliary measures per chunk (BPE tokens,
// whitespace words, characters) through the Measure interface.
package counter

import (
	"fmt"
	"strings"
)

// Measure defines an auxiliary count computed independently for each absorbed chunk.
type Measure interface {
	// Count returns the number of units (BPE tokens, words, or characters) in given text.
	Count(text string) int

	// Name returns a human-readable name for this measure (for output and logging)
	Name() string
}

// MeasureKind represents the available auxiliary measures.
type MeasureKind int

const (
	// BPE uses tiktoken with cl100k_base encoding
	BPE MeasureKind = iota
	// Words counts words using whitespace splitting
	Words
	// Characters counts individual characters including whitespace
	Characters
)

// String returns the string representation of the measure kind.
func (k MeasureKind) String() string {
	switch k {
	case BPE:
		return "bpe"
	case Words:
		return "words"
	case Characters:
		return "characters"
	default:
		return "unknown"
	}
}

// ParseMeasureKind converts a flag or config value into a MeasureKind.
func ParseMeasureKind(s string) (MeasureKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bpe", "tiktoken":
		return BPE, nil
	case "words", "word":
		return Words, nil
	case "characters", "chars", "char":
		return Characters, nil
	default:
		return 0, fmt.Errorf("unknown measure %q (want bpe, words or characters)", s)
	}
}

// NewMeasure creates a Measure for the given kind.
// Returns an error if the measure cannot be initialized (e.g., tiktoken encoding fails).
func NewMeasure(kind MeasureKind) (Measure, error) {
	switch kind {
	case BPE:
		return NewBPEMeasure()
	case Words:
		return wordMeasure{}, nil
	case Characters:
		return charMeasure{}, nil
	default:
		return nil, fmt.Errorf("unsupported measure kind %d", int(kind))
	}
}

// NewMeasures builds measures from their names, preserving order and skipping duplicates.
func NewMeasures(names []string) ([]Measure, error) {
	seen := make(map[MeasureKind]bool, len(names))
	measures := make([]Measure, 0, len(names))
	for _, name := range names {
		kind, err := ParseMeasureKind(name)
		if err != nil {
			return nil, err
		}
		if seen[kind] {
			continue
		}
		seen[kind] = true

		m, err := NewMeasure(kind)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s measure: %w", kind, err)
		}
		measures = append(measures, m)
	}
	return measures, nil
}

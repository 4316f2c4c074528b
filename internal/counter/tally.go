package counter

import (
	"log/slog"

	"github.com/chriscorrea/tally/internal/pattern"
	"github.com/chriscorrea/tally/internal/token"
)

// Config holds the options of a counting session.
type Config struct {
	Store    *pattern.Store // pattern source; nil means pattern.Default()
	Fold     FoldMode       // normalization for the unique set
	Measures []Measure      // auxiliary per-chunk measures
}

// MeasureCount is the running sum of one auxiliary measure.
type MeasureCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time copy of a Tally's counts.
type Snapshot struct {
	Total    uint64         `json:"total"`
	Unique   uint64         `json:"unique"`
	Measures []MeasureCount `json:"measures,omitempty"`
}

// Tally accumulates token counts across chunks. It is owned by a single session and is not
// safe for concurrent use; only the pattern store it reads from is shared.
type Tally struct {
	store    *pattern.Store
	fold     func(string) string
	measures []Measure
	sums     []int64
	total    uint64
	unique   map[string]struct{}
}

// New creates an empty Tally.
func New(cfg Config) *Tally {
	store := cfg.Store
	if store == nil {
		store = pattern.Default()
	}
	return &Tally{
		store:    store,
		fold:     cfg.Fold.folder(),
		measures: cfg.Measures,
		sums:     make([]int64, len(cfg.Measures)),
		unique:   make(map[string]struct{}),
	}
}

// Absorb tokenizes text with the store's current pattern and adds the tokens to the counts.
// The pattern is fetched once per call, so a concurrent Set only affects later calls.
func (t *Tally) Absorb(text string) {
	p := t.store.Snapshot()

	var n uint64
	for tok := range token.Find(p, text) {
		n++
		t.unique[t.fold(tok.Text)] = struct{}{}
	}
	t.total += n

	for i, m := range t.measures {
		t.sums[i] += int64(m.Count(text))
	}

	slog.Debug("Chunk absorbed", "chunkLength", len(text), "tokens", n, "total", t.total, "unique", len(t.unique), "patternVersion", p.Version())
}

// Snapshot returns the current counts.
func (t *Tally) Snapshot() Snapshot {
	snap := Snapshot{
		Total:  t.total,
		Unique: uint64(len(t.unique)),
	}
	if len(t.measures) > 0 {
		snap.Measures = make([]MeasureCount, len(t.measures))
		for i, m := range t.measures {
			snap.Measures[i] = MeasureCount{Name: m.Name(), Count: t.sums[i]}
		}
	}
	return snap
}

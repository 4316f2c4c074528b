// Package app contains the core application logic for the tally CLI tool.
// It handles the main business logic separated from CLI concerns.
package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chriscorrea/tally/internal/counter"
	"github.com/chriscorrea/tally/internal/extract"
	"github.com/chriscorrea/tally/internal/fetch"
	"github.com/chriscorrea/tally/internal/pattern"
	"github.com/chriscorrea/tally/internal/preview"
	"github.com/chriscorrea/tally/internal/progress"
	"github.com/chriscorrea/tally/internal/stream"
)

// OutputFormat defines the output format for results
type OutputFormat int

const (
	// plaintext output format (default)
	Text OutputFormat = iota
	// JSON output format
	JSON
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case Text:
		return "Text"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// Config holds all configuration options for the tally application.
type Config struct {
	Sources       []string         // file paths, URLs, "-" for stdin, or literal text when Raw
	Raw           bool             // treat Sources as text to count
	Pattern       string           // token pattern; empty keeps the current one
	MatchTimeout  time.Duration    // per-match timeout; 0 keeps the current one, < 0 disables
	ChunkSize     int              // bytes per streamed chunk
	TextLimit     int              // chunk limit for in-memory text
	Fold          counter.FoldMode // normalization for unique tokens
	Measures      []string         // auxiliary measures (bpe, words, characters)
	Preview       bool             // show a preview of each streamed source
	PreviewLength int              // preview length in bytes
	Readable      bool             // count extracted readable text instead of raw HTML
	Extract       extract.Options  // extraction settings when Readable
	OutputFormat  OutputFormat
	Quiet         bool      // suppress progress and previews
	Status        io.Writer // progress and preview destination; nil means stderr
}

// Result is the outcome for one source.
type Result struct {
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	Bytes   int64  `json:"bytes"`
	Preview string `json:"preview,omitempty"`
	counter.Snapshot
}

// Run counts every source in cfg and returns the formatted report.
// Sources are processed one after another, each in its own counting session. The first
// failing source aborts the run: a partial count is never reported as a result.
//
// ctx allows for cancellation between chunks and of HTTP fetches.
func Run(ctx context.Context, cfg Config) (string, error) {
	if len(cfg.Sources) == 0 {
		return "", fmt.Errorf("no sources provided")
	}

	results, err := Count(ctx, cfg)
	if err != nil {
		return "", err
	}
	return Format(results, cfg.OutputFormat)
}

// Count runs the counting sessions and returns the raw results.
func Count(ctx context.Context, cfg Config) ([]Result, error) {
	store := pattern.Default()
	if cfg.MatchTimeout != 0 && cfg.MatchTimeout != store.MatchTimeout() {
		if err := store.SetMatchTimeout(cfg.MatchTimeout); err != nil {
			return nil, err
		}
	}
	if cfg.Pattern != "" && cfg.Pattern != store.Snapshot().String() {
		if err := store.Set(cfg.Pattern); err != nil {
			return nil, err
		}
	}

	measures, err := counter.NewMeasures(cfg.Measures)
	if err != nil {
		return nil, err
	}
	counterCfg := counter.Config{Store: store, Fold: cfg.Fold, Measures: measures}

	if cfg.Status == nil {
		cfg.Status = os.Stderr
	}

	results := make([]Result, 0, len(cfg.Sources))
	for i, source := range cfg.Sources {
		var (
			res Result
			err error
		)
		if cfg.Raw {
			res = countRaw(i, source, cfg, counterCfg)
		} else {
			res, err = countSource(ctx, source, cfg, counterCfg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to count %q: %w", source, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// countRaw counts literal text with the batch splitter.
func countRaw(i int, text string, cfg Config, counterCfg counter.Config) Result {
	return Result{
		Source:   fmt.Sprintf("text %d", i+1),
		Kind:     "text",
		Bytes:    int64(len(text)),
		Snapshot: stream.CountText(text, cfg.TextLimit, counterCfg),
	}
}

// countSource opens source and streams it through a counting session.
func countSource(ctx context.Context, source string, cfg Config, counterCfg counter.Config) (Result, error) {
	src, err := fetch.Open(ctx, source)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	res := Result{Source: src.Name, Kind: src.Kind.String(), Bytes: src.Size}

	if cfg.Readable {
		return countReadable(src, res, cfg, counterCfg)
	}

	bufSize := 64 * 1024
	if need := cfg.PreviewLength + utf8.UTFMax; cfg.Preview && need > bufSize {
		bufSize = need
	}
	br := bufio.NewReaderSize(src, bufSize)

	if cfg.Preview {
		text, err := preview.Peek(br, cfg.PreviewLength)
		if err != nil {
			// the preview is informational; counting decodes leniently and still works
			if !cfg.Quiet {
				fmt.Fprintf(cfg.Status, "Warning: no preview for %q: %v\n", src.Name, err)
			}
		} else {
			res.Preview = text
			if !cfg.Quiet {
				fmt.Fprintf(cfg.Status, "%s\n%s\n\n", src.Name, text)
			}
		}
	}

	display := progress.New(ctx, cfg.Status, src.Name, src.Size, cfg.Quiet)
	snap, err := stream.Count(ctx, br, src.Size, stream.Options{ChunkSize: cfg.ChunkSize, Counter: counterCfg}, display)
	display.Finish()
	if err != nil {
		return Result{}, err
	}

	res.Snapshot = snap
	return res, nil
}

// countReadable extracts the readable text of an HTML source and counts it in memory.
func countReadable(src *fetch.Source, res Result, cfg Config, counterCfg counter.Config) (Result, error) {
	opts := cfg.Extract
	if src.Kind == fetch.URL && opts.BaseURL == nil {
		opts.BaseURL, _ = url.Parse(src.Name) // ignore parse errors, will use nil
	}

	text, err := extract.Text(src, opts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract content: %w", err)
	}

	res.Kind += "+readable"
	res.Bytes = int64(len(text))
	if cfg.Preview {
		if p, err := preview.Preview([]byte(text), cfg.PreviewLength); err == nil {
			res.Preview = p
		}
	}
	res.Snapshot = stream.CountText(text, cfg.TextLimit, counterCfg)
	return res, nil
}

// Format renders results in the requested output format.
func Format(results []Result, format OutputFormat) (string, error) {
	if format == JSON {
		b, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode results: %w", err)
		}
		return string(b) + "\n", nil
	}

	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "%s: %d tokens, %d unique\n", r.Source, r.Total, r.Unique)
		for _, m := range r.Measures {
			fmt.Fprintf(&sb, "  %s: %d\n", m.Name, m.Count)
		}
	}
	return sb.String(), nil
}

package counter

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// BPEMeasure counts tiktoken tokens w/ cl100k_base encoding.
type BPEMeasure struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex // protects encoding access for thread safety
}

// NewBPEMeasure creates a BPEMeasure w/ cl100k_base encoding
func NewBPEMeasure() (*BPEMeasure, error) {
	slog.Debug("Initializing BPE measure with cl100k_base encoding")

	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cl100k_base encoding: %w", err)
	}

	return &BPEMeasure{encoding: encoding}, nil
}

// Count returns the number of BPE tokens in text. This can be called concurrently.
func (m *BPEMeasure) Count(text string) int {
	if text == "" {
		return 0
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// nil params mean no special tokens allowed/disallowed
	return len(m.encoding.Encode(text, nil, nil))
}

// Name returns the name of this measure.
func (m *BPEMeasure) Name() string {
	return "bpe"
}

// wordMeasure counts whitespace-separated fields.
type wordMeasure struct{}

func (wordMeasure) Count(text string) int {
	return len(strings.Fields(text))
}

func (wordMeasure) Name() string {
	return "words"
}

// charMeasure counts runes, not bytes.
type charMeasure struct{}

func (charMeasure) Count(text string) int {
	return utf8.RuneCountInString(text)
}

func (charMeasure) Name() string {
	return "characters"
}

// Package pattern holds the token-matching rule used by every counting session.
//
// A Pattern is an immutable compiled expression. A Store keeps the current Pattern behind a
// read-mostly lock so that concurrent sessions share it without blocking each other, and a
// rejected update never disturbs the pattern already in effect.
//
// Expressions use regexp2 (.NET) syntax. In custom expressions \b and \w follow .NET word
// characters (letters, Mn marks, decimal digits, connector punctuation). DefaultExpr is
// compiled with its word boundaries spelled out over the wider word class of letters, all
// marks, Nd and Nl numbers, connector punctuation and the joiners, so spacing marks
// (Devanagari, Tamil) and letter numbers (Ⅻ) tokenize as whole-word characters.
//
// Usage Example:
//
//	store := pattern.NewStore()
//	if err := store.Set(`\b[A-Za-z]+\b`); err != nil {
//		// store still holds the previous pattern
//	}
//	p := store.Snapshot()
package pattern

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultExpr matches maximal runs of Unicode letters and digits, or any single character that
// is neither whitespace, a letter nor a digit. Callers may rely on it staying stable.
const DefaultExpr = `\b[\p{L}\p{N}]+\b|[^\s\p{L}\p{N}]`

// wordClass approximates Unicode word characters: Alphabetic, marks, Nd, Pc and Join_Control.
const wordClass = `[\p{L}\p{M}\p{Nd}\p{Nl}\p{Pc}\u200C\u200D\u24B6-\u24E9]`

// wordBoundary is \b over wordClass.
const wordBoundary = `(?:(?<=` + wordClass + `)(?!` + wordClass + `)|(?<!` + wordClass + `)(?=` + wordClass + `))`

// DefaultMatchTimeout bounds a single match attempt. A pattern that backtracks past it stops
// matching the rest of the chunk.
const DefaultMatchTimeout = 5 * time.Second

// ErrInvalidPattern is returned when an expression fails to compile.
var ErrInvalidPattern = errors.New("invalid token pattern")

// Pattern is a compiled token expression. It is safe for concurrent use.
type Pattern struct {
	expr    string
	re      *regexp2.Regexp
	version uint64
}

// Compile parses expr into a Pattern with DefaultMatchTimeout.
// regexp2 is used instead of regexp because its \b and \w are Unicode-aware;
// RE2's \b only sees ASCII word characters.
func Compile(expr string) (*Pattern, error) {
	return CompileTimeout(expr, DefaultMatchTimeout)
}

// CompileTimeout is like Compile with an explicit match timeout; timeout <= 0 disables it.
func CompileTimeout(expr string, timeout time.Duration) (*Pattern, error) {
	src := expr
	if expr == DefaultExpr {
		src = strings.ReplaceAll(expr, `\b`, wordBoundary)
	}

	re, err := regexp2.Compile(src, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return &Pattern{expr: expr, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Pattern) String() string {
	return p.expr
}

// Version returns the store version this pattern was installed under (0 if never stored).
func (p *Pattern) Version() uint64 {
	return p.version
}

// Regexp exposes the compiled expression to the matcher.
func (p *Pattern) Regexp() *regexp2.Regexp {
	return p.re
}

package lib

import (
	"math"
	"math/big"
	"strings"

	"github.com/arnavsurve/storyscript/internal/compiler/types"
)

// Allocation sizes tried, smallest first, for integer Dynamic payloads.
var dynamicWidths = []struct {
	bytes int
	min   *big.Int
	max   *big.Int
}{
	{4, big.NewInt(math.MinInt32), big.NewInt(math.MaxInt32)},
	{8, big.NewInt(math.MinInt64), big.NewInt(math.MaxInt64)},
}

// Fallback width for integers wider than 64 bits.
const wideDynamicBytes = 16

// DynamicSize picks the allocation size for a Dynamic payload: the smallest of
// 4, 8 or 16 bytes that holds an integer, the text length otherwise.
func DynamicSize(payload string) int {
	n, ok := types.ParseInteger(payload)
	if !ok {
		return max(len(payload), 1)
	}
	for _, w := range dynamicWidths {
		if n.Cmp(w.min) >= 0 && n.Cmp(w.max) <= 0 {
			return w.bytes
		}
	}
	return wideDynamicBytes
}

// JoinTokens rebuilds source text from whitespace-split tokens.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}

// Unwrap strips one pair of enclosing parentheses.
func Unwrap(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "(") || !strings.HasSuffix(text, ")") {
		return text, false
	}
	return strings.TrimSpace(text[1 : len(text)-1]), true
}

// SplitArguments splits a comma separated argument list, ignoring commas nested in
// parentheses or string literals.
func SplitArguments(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var (
		args    []string
		depth   int
		inQuote bool
		start   int
	)
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\\' && inQuote:
			i++
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	return append(args, strings.TrimSpace(text[start:]))
}

// Quotes follows string literals across whitespace-split tokens. A backslash
// inside a literal escapes the next byte, so only unescaped quotes toggle.
type Quotes struct {
	open bool
}

// Inside reports whether a literal is still open.
func (q *Quotes) Inside() bool {
	return q.open
}

// Advance moves the state past tok.
func (q *Quotes) Advance(tok string) {
	for i := 0; i < len(tok); i++ {
		switch tok[i] {
		case '\\':
			if q.open {
				i++
			}
		case '"':
			q.open = !q.open
		}
	}
}

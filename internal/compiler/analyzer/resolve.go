package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/lib"
	"github.com/arnavsurve/storyscript/internal/compiler/symbols"
	"github.com/arnavsurve/storyscript/internal/compiler/token"
	"github.com/arnavsurve/storyscript/internal/compiler/types"
)

// maxResolveDepth bounds how far a chain of variable references is followed.
const maxResolveDepth = 32

// operand is a resolved right-hand side.
type operand struct {
	Text     string     // C expression to emit
	Value    string     // literal known at compile time, empty when runtime dependent
	Type     types.Type //
	Length   int        // String content bytes, Dynamic allocation bytes
	Capacity int        // buffer size of a String variable
	Input    *inputRequest
}

// copyLength is how many bytes copying a String operand takes. Content that is
// only known at run time is copied with its whole buffer.
func (op operand) copyLength() int {
	if op.Value == "" && op.Capacity > op.Length {
		return op.Capacity
	}
	return op.Length
}

// inputRequest is an `input <size> (prompt)` right-hand side.
type inputRequest struct {
	Size   int
	Prompt string
}

var (
	inputForm = regexp.MustCompile(`^\(?\s*([0-9]+)\s*\)?\s*(\(.*\))$`)

	// operators written without surrounding spaces, as in a+1 or (b*2)
	operatorSplit   = regexp.MustCompile(`[-+*/%<>=!&|()]+`)
	booleanOperator = regexp.MustCompile(`==|!=|<|>|&&|\|\||^!`)
)

// words translated when an expression is written out as C
var cWords = map[string]string{
	"and":   "&&",
	"or":    "||",
	"not":   "!",
	"true":  "1",
	"false": "0",
}

// resolve determines the emitted text, the compile-time value and the type of a
// right-hand side.
func (a *Analyzer) resolve(tokens []string) (operand, error) {
	if len(tokens) == 0 {
		return operand{}, exceptions.New(exceptions.InvalidSyntax, "Invalid value")
	}
	if tokens[0] == token.Input || strings.HasPrefix(tokens[0], token.Input+"(") {
		return a.resolveInput(tokens)
	}

	text := lib.JoinTokens(tokens)
	if len(tokens) == 1 {
		if v, ok := a.table.LookupVariable(text); ok {
			return a.resolveVariable(v)
		}
	}
	if op, ok := literal(text); ok {
		return op, nil
	}
	return a.resolveExpression(tokens)
}

func literal(text string) (operand, bool) {
	switch t := types.ClassifyLiteral(text); t {
	case types.String:
		content := types.StringContent(text)
		return operand{Text: types.QuoteC(content), Value: text, Type: t, Length: len(content)}, true
	case types.Dynamic:
		payload, _ := types.DynamicPayload(text)
		return operand{Text: payload, Value: text, Type: t, Length: lib.DynamicSize(payload)}, true
	case types.Boolean:
		return operand{Text: cWords[text], Value: cWords[text], Type: t}, true
	case types.Integer, types.Float:
		return operand{Text: text, Value: text, Type: t}, true
	}
	return operand{}, false
}

// resolveVariable follows a reference to the last value assigned to it. The
// emitted text stays the variable itself unless it is a scalar constant.
func (a *Analyzer) resolveVariable(v symbols.Variable) (operand, error) {
	if v.Deleted {
		return operand{}, exceptions.New(exceptions.NotDefinedException, "The variable %s was deleted.", v.Name)
	}
	op := operand{Text: a.reference(v), Type: v.Type, Length: v.Length}
	switch v.Type {
	case types.Dynamic:
		op.Length = v.Capacity
	case types.String:
		op.Capacity = v.Capacity
	}

	value := v.Value
	for depth := 0; depth < maxResolveDepth; depth++ {
		next, ok := a.table.LookupVariable(value)
		if !ok || next.Name == v.Name {
			break
		}
		value = next.Value
	}
	if _, ok := literal(value); ok {
		op.Value = value
		if v.Const && !v.Type.IsBuffer() {
			op.Text = value
		}
	}
	return op, nil
}

// resolveExpression types an operator expression from its operands. The text is
// re-emitted almost verbatim.
func (a *Analyzer) resolveExpression(tokens []string) (operand, error) {
	var isBool, isFloat bool
	for _, tok := range tokens {
		if strings.Contains(tok, `"`) {
			return operand{}, exceptions.New(exceptions.InvalidTypeException, "String values cannot be used in an expression")
		}
		if token.LogicalOperators.Contains(tok) || tok == "not" || booleanOperator.MatchString(tok) {
			isBool = true
		}
		if token.LogicalOperators.Contains(tok) || token.ArithmeticOperators.Contains(tok) || tok == "not" {
			continue
		}

		for _, piece := range operatorSplit.Split(tok, -1) {
			if piece == "" {
				continue
			}
			if v, ok := a.table.LookupVariable(piece); ok {
				if v.Deleted {
					return operand{}, exceptions.New(exceptions.NotDefinedException, "The variable %s was deleted.", v.Name)
				}
				switch v.Type {
				case types.String, types.Dynamic:
					return operand{}, exceptions.New(exceptions.InvalidTypeException, "%s variable %s cannot be used in an expression", v.Type, v.Name)
				case types.Float:
					isFloat = true
				}
				continue
			}
			switch types.ClassifyLiteral(piece) {
			case types.Integer, types.Boolean:
			case types.Float:
				isFloat = true
			default:
				return operand{}, exceptions.New(exceptions.InvalidSyntax, "Invalid value %q", piece)
			}
		}
	}

	op := operand{Text: a.cText(tokens), Type: types.Integer}
	switch {
	case isBool:
		op.Type = types.Boolean
	case isFloat:
		op.Type = types.Float
	}
	return op, nil
}

func (a *Analyzer) resolveInput(tokens []string) (operand, error) {
	rest := strings.TrimPrefix(lib.JoinTokens(tokens), token.Input)
	m := inputForm.FindStringSubmatch(strings.TrimSpace(rest))
	if m == nil {
		return operand{}, exceptions.New(exceptions.InvalidSyntax, "input needs a size and a parenthesized prompt")
	}
	size, err := strconv.Atoi(m[1])
	if err != nil || size <= 0 {
		return operand{}, exceptions.New(exceptions.InvalidValue, "input size must be a positive Integer")
	}
	prompt, _ := lib.Unwrap(m[2])
	return operand{Input: &inputRequest{Size: size, Prompt: prompt}}, nil
}

// cText joins tokens into C. Word operators and boolean constants outside string
// literals are translated and heap scalars are dereferenced.
func (a *Analyzer) cText(tokens []string) string {
	out := make([]string, len(tokens))
	var quotes lib.Quotes
	for i, tok := range tokens {
		out[i] = tok
		if !quotes.Inside() {
			if c, ok := cWords[tok]; ok {
				out[i] = c
			} else if v, ok := a.table.LookupVariable(tok); ok {
				out[i] = a.reference(v)
			}
		}
		quotes.Advance(tok)
	}
	return strings.Join(out, " ")
}

// reference is how v is read in generated code.
func (a *Analyzer) reference(v symbols.Variable) string {
	if v.Heap && !v.Type.IsBuffer() {
		return "*" + v.Name
	}
	return v.Name
}

// isZero reports whether op is a literal zero.
func isZero(op operand) bool {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(op.Value), "f"), 64)
	return err == nil && f == 0
}

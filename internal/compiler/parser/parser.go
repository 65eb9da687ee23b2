package parser

import (
	"strings"

	"github.com/arnavsurve/storyscript/internal/compiler/ast"
	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/lib"
	"github.com/arnavsurve/storyscript/internal/compiler/token"
)

// Names answers the symbol questions classification depends on.
type Names interface {
	IsVariable(name string) bool
	IsFunction(name string) bool
}

// Error messages
const (
	parenNeeded      = "Parenthesis is needed after a function name"
	closeParenNeeded = "Parenthesis is needed after an Argument input"
)

// keywords that may be written glued to their argument list, as in print("hi")
var gluedKeywords = []string{token.Print, token.Exit, token.Input}

// Parse classifies one statement. Empty input yields a nil statement.
func Parse(tokens []string, names Names) (ast.Statement, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	tokens = normalize(tokens)
	head := tokens[0]

	if strings.HasPrefix(head, token.Comment) {
		return &ast.CommentStatement{Raw: tokens}, nil
	}
	if names.IsVariable(head) {
		return parseVariableStatement(tokens)
	}
	if token.DeclarationKeywords.Contains(head) {
		return parseDeclaration(tokens)
	}

	switch head {
	case token.Print:
		args, err := parenthesized(tokens[1:])
		if err != nil {
			return nil, err
		}
		return &ast.PrintStatement{Raw: tokens, Arguments: args}, nil
	case token.Input:
		return &ast.InputStatement{Raw: tokens, Arguments: lib.JoinTokens(tokens[1:])}, nil
	case token.Exit:
		args, err := parenthesized(tokens[1:])
		if err != nil {
			return nil, err
		}
		return &ast.ExitStatement{Raw: tokens, Arguments: args}, nil
	case token.Delete:
		if len(tokens) != 2 {
			return nil, exceptions.New(exceptions.InvalidSyntax, "del takes exactly one variable name")
		}
		return &ast.DeleteStatement{Raw: tokens, Name: tokens[1]}, nil
	case token.Throw:
		if len(tokens) < 2 {
			return nil, exceptions.New(exceptions.InvalidSyntax, "throw needs an Exception name")
		}
		return &ast.ThrowStatement{Raw: tokens, Exception: tokens[1], Description: tokens[2:]}, nil
	case token.Define:
		return &ast.PragmaStatement{Raw: tokens, Arguments: tokens[1:]}, nil
	case token.If:
		return parseIf(tokens)
	case token.Switch:
		return parseSwitch(tokens)
	case token.LoopFor:
		return parseLoop(tokens)
	case token.Func:
		return parseFunction(tokens)
	case token.Namespace, token.Override:
		return nil, exceptions.New(exceptions.NotImplementedException, "This feature is not implemented")
	case token.Else, token.End, token.Then, token.Case, token.Default, token.Break, token.Heap:
		return nil, exceptions.New(exceptions.InvalidSyntax, "unexpected %q", head)
	}

	if call, ok := parseCall(tokens, names); ok {
		return call, nil
	}
	return &ast.PassThroughStatement{Raw: tokens}, nil
}

func normalize(tokens []string) []string {
	head := tokens[0]
	for _, kw := range gluedKeywords {
		if strings.HasPrefix(head, kw+"(") {
			out := make([]string, 0, len(tokens)+1)
			out = append(out, kw, head[len(kw):])
			return append(out, tokens[1:]...)
		}
	}
	return tokens
}

func parenthesized(tokens []string) (string, error) {
	text := lib.JoinTokens(tokens)
	if !strings.HasPrefix(text, "(") {
		return "", exceptions.New(exceptions.InvalidSyntax, parenNeeded)
	}
	if !strings.HasSuffix(text, ")") {
		return "", exceptions.New(exceptions.InvalidSyntax, closeParenNeeded)
	}
	inner, _ := lib.Unwrap(text)
	return inner, nil
}

// A statement led by a variable must assign to it.
func parseVariableStatement(tokens []string) (ast.Statement, error) {
	if len(tokens) < 2 || !isAssignOperator(tokens[1]) {
		return nil, exceptions.New(exceptions.InvalidSyntax,
			"%q must be followed by an assignment operator", tokens[0])
	}
	return &ast.ReassignmentStatement{
		Raw:      tokens,
		Name:     tokens[0],
		Operator: tokens[1],
		Value:    tokens[2:],
	}, nil
}

// var a = 3, int heap b = 5, string heap s 20, int c
func parseDeclaration(tokens []string) (ast.Statement, error) {
	stmt := &ast.DeclarationStatement{Raw: tokens, Keyword: tokens[0]}
	i := 1
	if i < len(tokens) && tokens[i] == token.Heap {
		stmt.Heap = true
		i++
	}
	if i >= len(tokens) || tokens[i] == token.Assign {
		return nil, exceptions.New(exceptions.InvalidSyntax, "a variable name is required after %q", stmt.Keyword)
	}
	stmt.Name = tokens[i]
	rest := tokens[i+1:]

	switch {
	case len(rest) == 0:
	case rest[0] == token.Assign:
		if len(rest) == 1 {
			return nil, exceptions.New(exceptions.InvalidSyntax, "Invalid value")
		}
		stmt.Initializer = rest[1:]
	case len(rest) == 1:
		stmt.Size = rest[0]
	default:
		return nil, exceptions.New(exceptions.InvalidSyntax, "unexpected %q in declaration of %s", rest[1], stmt.Name)
	}
	return stmt, nil
}

// func greet(a, b) print("hi") end
func parseFunction(tokens []string) (ast.Statement, error) {
	headerEnd := -1
	for i := 1; i < len(tokens); i++ {
		if strings.Contains(tokens[i], ")") {
			headerEnd = i
			break
		}
	}
	if headerEnd < 0 {
		return nil, exceptions.New(exceptions.InvalidSyntax, parenNeeded)
	}
	header := lib.JoinTokens(tokens[1 : headerEnd+1])
	open := strings.Index(header, "(")
	if open <= 0 || !strings.HasSuffix(header, ")") {
		return nil, exceptions.New(exceptions.InvalidSyntax, parenNeeded)
	}
	name := strings.TrimSpace(header[:open])
	inner, _ := lib.Unwrap(header[open:])

	body := tokens[headerEnd+1:]
	endAt := findEnd(body)
	if endAt < 0 {
		return nil, exceptions.New(exceptions.InvalidSyntax, "func %s needs a closing %q", name, token.End)
	}
	if err := noTrailing(body[endAt+1:]); err != nil {
		return nil, err
	}
	return &ast.FunctionStatement{
		Raw:       tokens,
		Name:      name,
		Arguments: lib.SplitArguments(inner),
		Body:      body[:endAt],
	}, nil
}

func parseCall(tokens []string, names Names) (*ast.CallStatement, bool) {
	text := lib.JoinTokens(tokens)
	open := strings.Index(text, "(")
	if open <= 0 {
		return nil, false
	}
	name := strings.TrimSpace(text[:open])
	if !names.IsFunction(name) {
		return nil, false
	}
	call := &ast.CallStatement{Raw: tokens, Name: name}
	if inner, ok := lib.Unwrap(strings.TrimSuffix(text[open:], ";")); ok {
		call.Arguments = lib.SplitArguments(inner)
		call.Parenthesized = true
	}
	return call, true
}

func noTrailing(rest []string) error {
	if len(rest) > 0 {
		return exceptions.New(exceptions.InvalidSyntax, "unexpected %q after %q", rest[0], token.End)
	}
	return nil
}

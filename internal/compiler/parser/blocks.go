package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arnavsurve/storyscript/internal/compiler/ast"
	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/lib"
	"github.com/arnavsurve/storyscript/internal/compiler/token"
)

// callHead matches a token that opens a call, like puts( or greet(x,.
var callHead = regexp.MustCompile(`^[A-Za-z_]\w*\(`)

// walker tracks string literals that were split across tokens and the nesting
// depth of block constructs.
type walker struct {
	depth  int
	quotes lib.Quotes
}

// structural reports whether tok is outside a string literal, then advances the
// quote state past tok.
func (w *walker) structural(tok string) bool {
	outside := !w.quotes.Inside()
	w.quotes.Advance(tok)
	return outside
}

// topLevel calls fn for every structural token of tokens at nesting depth 0 and
// stops at the first one fn accepts, returning its index or -1. Tokens are passed
// to fn before they change the depth, so fn sees the opener of a nested block and
// the end that closes the enclosing one.
func topLevel(tokens []string, fn func(i int, tok string) bool) int {
	var w walker
	for i, tok := range tokens {
		if !w.structural(tok) {
			continue
		}
		if w.depth == 0 && fn(i, tok) {
			return i
		}
		switch {
		case token.Openers.Contains(tok):
			w.depth++
		case tok == token.End && w.depth > 0:
			w.depth--
		}
	}
	return -1
}

// findEnd returns the index of the end that closes the block tokens belong to.
func findEnd(tokens []string) int {
	return topLevel(tokens, func(_ int, tok string) bool { return tok == token.End })
}

// SplitStatements splits a token stream on the conjunction token. Conjunctions
// inside nested blocks, conditions or string literals do not split, and neither
// does one in the value of an assignment unless a new statement follows it.
func SplitStatements(tokens []string) [][]string {
	var out [][]string
	start := 0
	topLevel(tokens, func(i int, tok string) bool {
		if tok != token.Conjunction {
			return false
		}
		stmt, next := tokens[start:i], tokens[i+1:]
		if j := topLevel(next, isConjunction); j >= 0 {
			next = next[:j]
		}
		if assigns(stmt) && len(next) > 0 && !startsStatement(next) {
			return false
		}
		out = appendStatement(out, stmt)
		start = i + 1
		return false
	})
	return appendStatement(out, tokens[start:])
}

func appendStatement(out [][]string, stmt []string) [][]string {
	if len(stmt) == 0 {
		return out
	}
	return append(out, stmt)
}

func isConjunction(_ int, tok string) bool {
	return tok == token.Conjunction
}

// assigns reports whether tokens form a declaration or an assignment.
func assigns(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	if token.DeclarationKeywords.Contains(tokens[0]) {
		return true
	}
	return len(tokens) > 1 && isAssignOperator(tokens[1])
}

// startsStatement reports whether tokens open a statement of their own rather
// than continue an expression.
func startsStatement(tokens []string) bool {
	tokens = normalize(tokens)
	head := tokens[0]
	switch {
	case token.IsKeyword(head), strings.HasPrefix(head, token.Comment):
		return true
	case len(tokens) > 1 && isAssignOperator(tokens[1]):
		return true
	case callHead.MatchString(head), strings.HasSuffix(tokens[len(tokens)-1], ";"):
		return true
	}
	return false
}

func isAssignOperator(tok string) bool {
	_, ok := token.AssignOperators[tok]
	return ok
}

// if <condition> then <statements> [else <statements>] end
func parseIf(tokens []string) (ast.Statement, error) {
	thenAt := topLevel(tokens[1:], func(_ int, tok string) bool { return tok == token.Then })
	if thenAt < 0 {
		return nil, exceptions.New(exceptions.InvalidSyntax, "if statement needs %q", token.Then)
	}
	thenAt++

	cond, err := ParseCondition(tokens[1:thenAt])
	if err != nil {
		return nil, err
	}

	body := tokens[thenAt+1:]
	elseAt := -1
	endAt := topLevel(body, func(i int, tok string) bool {
		switch tok {
		case token.Else:
			if elseAt >= 0 {
				err = exceptions.New(exceptions.InvalidSyntax, "if statement has more than one %q", token.Else)
				return true
			}
			elseAt = i
		case token.End:
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if endAt < 0 {
		return nil, exceptions.New(exceptions.InvalidSyntax, "if statement needs a closing %q", token.End)
	}
	if err := noTrailing(body[endAt+1:]); err != nil {
		return nil, err
	}

	stmt := &ast.IfStatement{Raw: tokens, Condition: cond}
	if elseAt < 0 {
		stmt.Then = SplitStatements(body[:endAt])
		return stmt, nil
	}
	stmt.Then = SplitStatements(body[:elseAt])
	stmt.Else = ast.Block(SplitStatements(body[elseAt+1 : endAt]))
	if stmt.Else == nil {
		stmt.Else = ast.Block{}
	}
	return stmt, nil
}

// ParseCondition splits a condition into clauses joined by a single combinator.
func ParseCondition(tokens []string) (ast.Condition, error) {
	var cond ast.Condition
	if len(tokens) == 0 {
		return cond, exceptions.New(exceptions.InvalidSyntax, "condition is empty")
	}

	var (
		clause []string
		w      walker
	)
	flush := func() error {
		if len(clause) == 0 {
			return exceptions.New(exceptions.InvalidSyntax, "condition has an empty clause")
		}
		c, err := parseClause(clause)
		if err != nil {
			return err
		}
		cond.Clauses = append(cond.Clauses, c)
		clause = nil
		return nil
	}

	for _, tok := range tokens {
		if w.structural(tok) {
			comb := ast.Single
			switch {
			case token.And.Contains(tok):
				comb = ast.And
			case token.Or.Contains(tok):
				comb = ast.Or
			}
			if comb != ast.Single {
				if cond.Combinator != ast.Single && cond.Combinator != comb {
					return cond, exceptions.New(exceptions.NotImplementedException, "mixing and/or in one condition is not supported")
				}
				cond.Combinator = comb
				if err := flush(); err != nil {
					return cond, err
				}
				continue
			}
		}
		clause = append(clause, tok)
	}
	return cond, flush()
}

func parseClause(tokens []string) (ast.Clause, error) {
	var w walker
	for i, tok := range tokens {
		if !w.structural(tok) || !token.RelationalOperators.Contains(tok) {
			continue
		}
		if i == 0 || i == len(tokens)-1 {
			return ast.Clause{}, exceptions.New(exceptions.InvalidSyntax, "operator %q is missing an operand", tok)
		}
		return ast.Clause{Left: tokens[:i], Operator: tok, Right: tokens[i+1:]}, nil
	}
	return ast.Clause{Left: tokens}, nil
}

// switch <subject> case <label>: <statements> break ... [default: <statements> break] end
func parseSwitch(tokens []string) (ast.Statement, error) {
	if len(tokens) < 2 || tokens[1] == token.Case || tokens[1] == token.End {
		return nil, exceptions.New(exceptions.InvalidSyntax, "switch needs a value to match")
	}
	stmt := &ast.SwitchStatement{Raw: tokens, Subject: tokens[1]}
	body := tokens[2:]

	var (
		err         error
		cur         *ast.CaseClause
		bodyStart   int
		expectLabel bool
		skipColon   bool
		seenDefault bool
	)
	open := func(label string) {
		cur = &ast.CaseClause{Label: label, Default: label == token.Default}
		if cur.Default {
			if seenDefault {
				err = exceptions.New(exceptions.InvalidSyntax, "switch has more than one default case")
			}
			seenDefault = true
		}
	}

	endAt := topLevel(body, func(i int, tok string) bool {
		if skipColon {
			skipColon = false
			if tok == ":" {
				bodyStart = i + 1
				return false
			}
		}
		switch {
		case expectLabel:
			label := strings.TrimSuffix(tok, ":")
			if label == "" {
				err = exceptions.New(exceptions.InvalidSyntax, "case needs a label")
				return true
			}
			open(label)
			expectLabel = false
			bodyStart = i + 1
			skipColon = !strings.HasSuffix(tok, ":")
		case cur == nil:
			switch tok {
			case token.Case:
				expectLabel = true
			case token.Default, token.Default + ":":
				open(token.Default)
				bodyStart = i + 1
				skipColon = tok == token.Default
			case token.End:
				return true
			default:
				err = exceptions.New(exceptions.InvalidSyntax, "expected %q in switch, got %q", token.Case, tok)
			}
		case tok == token.Break:
			cur.Body = SplitStatements(body[bodyStart:i])
			stmt.Cases = append(stmt.Cases, *cur)
			cur = nil
		case tok == token.End, tok == token.Case, tok == token.Default, tok == token.Default+":":
			err = exceptions.New(exceptions.InvalidSyntax, "case %s must end with %q", cur.Label, token.Break)
		}
		return err != nil
	})
	if err != nil {
		return nil, err
	}
	if endAt < 0 {
		return nil, exceptions.New(exceptions.InvalidSyntax, "switch needs a closing %q", token.End)
	}
	if err := noTrailing(body[endAt+1:]); err != nil {
		return nil, err
	}
	return stmt, nil
}

// loopfor <count> <statements> end
func parseLoop(tokens []string) (ast.Statement, error) {
	if len(tokens) < 2 {
		return nil, exceptions.New(exceptions.InvalidSyntax, "loopfor needs a count")
	}
	count, err := strconv.Atoi(tokens[1])
	if err != nil {
		return nil, exceptions.New(exceptions.InvalidValue, "Count must be an Integer. (Whole number)")
	}
	body := tokens[2:]
	endAt := findEnd(body)
	if endAt < 0 {
		return nil, exceptions.New(exceptions.InvalidSyntax, "loopfor needs a closing %q", token.End)
	}
	if err := noTrailing(body[endAt+1:]); err != nil {
		return nil, err
	}
	return &ast.LoopStatement{Raw: tokens, Count: count, Body: SplitStatements(body[:endAt])}, nil
}

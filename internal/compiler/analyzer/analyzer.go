// Package analyzer lowers classified StoryScript statements into C. It owns the
// type checks, the allocation strategy of every declaration and the recursive
// lowering of block statements.
package analyzer

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/arnavsurve/storyscript/internal/compiler/ast"
	"github.com/arnavsurve/storyscript/internal/compiler/emitter"
	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/parser"
	"github.com/arnavsurve/storyscript/internal/compiler/scope"
	"github.com/arnavsurve/storyscript/internal/compiler/token"
)

type Analyzer struct {
	table          *scope.Table
	out            *emitter.Emitter
	log            *slog.Logger
	autoReallocate bool
	ignoreInfo     bool
	loops          int // loop counters handed out so far
}

type Option func(*Analyzer)

// WithAutoReallocate controls whether heap strings are reallocated when a new value
// does not fit. It is on by default.
func WithAutoReallocate(enabled bool) Option {
	return func(a *Analyzer) {
		a.autoReallocate = enabled
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(a *Analyzer) {
		if log != nil {
			a.log = log
		}
	}
}

func New(table *scope.Table, out *emitter.Emitter, opts ...Option) *Analyzer {
	a := &Analyzer{
		table:          table,
		out:            out,
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		autoReallocate: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze lowers one source line. Statements chained with the conjunction token
// are lowered in order. The returned error is an *exceptions.Error carrying line.
func (a *Analyzer) Analyze(tokens []string, line int) error {
	statements := [][]string{tokens}
	if len(tokens) > 0 && !strings.HasPrefix(tokens[0], token.Comment) {
		statements = parser.SplitStatements(tokens)
	}
	for _, stmt := range statements {
		if err := a.analyzeStatement(stmt); err != nil {
			var exc *exceptions.Error
			if errors.As(err, &exc) {
				exc.AtLine(line)
			}
			return err
		}
	}
	return nil
}

// IgnoreInfo reports whether informational messages are suppressed.
func (a *Analyzer) IgnoreInfo() bool {
	return a.ignoreInfo
}

func (a *Analyzer) analyzeStatement(tokens []string) error {
	stmt, err := parser.Parse(tokens, a.table)
	if err != nil {
		return err
	}

	switch s := stmt.(type) {
	case nil:
		return nil
	case *ast.DeclarationStatement:
		return a.declare(s)
	case *ast.ReassignmentStatement:
		return a.reassign(s)
	case *ast.PrintStatement:
		return a.print(s)
	case *ast.InputStatement:
		return exceptions.New(exceptions.InvalidSyntax, "input must be assigned to a variable")
	case *ast.ExitStatement:
		return a.exit(s)
	case *ast.DeleteStatement:
		return a.delete(s)
	case *ast.ThrowStatement:
		return a.throw(s)
	case *ast.PragmaStatement:
		return a.pragma(s)
	case *ast.IfStatement:
		return a.lowerIf(s)
	case *ast.SwitchStatement:
		return a.lowerSwitch(s)
	case *ast.LoopStatement:
		return a.lowerLoop(s)
	case *ast.FunctionStatement:
		return a.function(s)
	case *ast.CallStatement:
		return a.call(s)
	case *ast.CommentStatement:
		a.out.Emit(s.String())
		return nil
	case *ast.PassThroughStatement:
		a.out.Emit(s.String())
		return nil
	default:
		return exceptions.New(exceptions.GeneralException, "unsupported statement %T", stmt)
	}
}

// lowerBlock lowers the statements of a nested block one indentation level deeper,
// followed by any trailer lines.
func (a *Analyzer) lowerBlock(block ast.Block, trailer ...string) error {
	a.out.Indent()
	defer a.out.Dedent()
	for _, stmt := range block {
		if err := a.analyzeStatement(stmt); err != nil {
			return err
		}
	}
	for _, text := range trailer {
		a.out.Emit(text)
	}
	return nil
}

func (a *Analyzer) info(msg string, args ...any) {
	if a.ignoreInfo {
		return
	}
	a.log.Info(msg, args...)
}

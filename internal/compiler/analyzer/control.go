package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arnavsurve/storyscript/internal/compiler/ast"
	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/token"
	"github.com/arnavsurve/storyscript/internal/compiler/types"
)

// loopCounterPrefix names the hidden index of a loopfor. User names cannot start
// with reservedPrefix, so counters never collide with declared variables.
const loopCounterPrefix = reservedPrefix + "loop_"

var charLiteral = regexp.MustCompile(`^'(\\?.)'$`)

// --- if / else ---

func (a *Analyzer) lowerIf(s *ast.IfStatement) error {
	cond, err := a.renderCondition(s.Condition)
	if err != nil {
		return err
	}

	a.out.Emitf("if (%s)", cond)
	a.out.Emit("{")
	if err := a.lowerBlock(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		a.out.Emit("} else {")
		if err := a.lowerBlock(s.Else); err != nil {
			return err
		}
	}
	a.out.Emit("}")
	return nil
}

func (a *Analyzer) renderCondition(cond ast.Condition) (string, error) {
	joiner := " && "
	if cond.Combinator == ast.Or {
		joiner = " || "
	}
	parts := make([]string, 0, len(cond.Clauses))
	for _, c := range cond.Clauses {
		part, err := a.renderClause(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, joiner), nil
}

// renderClause writes one comparison. Two String operands compare with strcmp.
func (a *Analyzer) renderClause(c ast.Clause) (string, error) {
	left, err := a.resolve(c.Left)
	if err != nil {
		return "", err
	}
	if left.Input != nil {
		return "", exceptions.New(exceptions.InvalidSyntax, "input cannot be used in a condition")
	}
	if c.Operator == "" {
		if left.Type == types.String {
			return "", exceptions.New(exceptions.InvalidTypeException, "a String cannot be used as a condition")
		}
		return left.Text, nil
	}

	right, err := a.resolve(c.Right)
	if err != nil {
		return "", err
	}
	if right.Input != nil {
		return "", exceptions.New(exceptions.InvalidSyntax, "input cannot be used in a condition")
	}

	switch ls, rs := left.Type == types.String, right.Type == types.String; {
	case ls && rs:
		a.out.Require("string.h")
		return fmt.Sprintf("strcmp(%s, %s) %s 0", left.Text, right.Text, c.Operator), nil
	case ls || rs:
		return "", exceptions.New(exceptions.InvalidTypeException, "cannot compare %s with %s", left.Type, right.Type)
	}
	return fmt.Sprintf("%s %s %s", left.Text, c.Operator, right.Text), nil
}

// --- switch ---

func (a *Analyzer) lowerSwitch(s *ast.SwitchStatement) error {
	subject, err := a.resolve([]string{s.Subject})
	if err != nil {
		return err
	}
	if subject.Type.IsBuffer() || subject.Input != nil {
		return exceptions.New(exceptions.InvalidTypeException, "cannot switch on a %s value", subject.Type)
	}

	a.out.Emitf("switch (%s)", subject.Text)
	a.out.Emit("{")
	for _, c := range s.Cases {
		if c.Default {
			a.out.Emit("default:")
		} else {
			label, err := a.caseLabel(c.Label)
			if err != nil {
				return err
			}
			a.out.Emitf("case %s:", label)
		}
		if err := a.lowerBlock(c.Body, token.Break+";"); err != nil {
			return err
		}
	}
	a.out.Emit("}")
	return nil
}

// caseLabel accepts a literal or a const scalar, the only values C allows as labels.
func (a *Analyzer) caseLabel(label string) (string, error) {
	if charLiteral.MatchString(label) {
		return label, nil
	}
	if v, ok := a.table.LookupVariable(label); ok && !v.Const {
		return "", exceptions.New(exceptions.InvalidValue, "case label %s must be a const or a literal", label)
	}
	op, err := a.resolve([]string{label})
	if err != nil {
		return "", err
	}
	if op.Type.IsBuffer() || op.Type == types.Float {
		return "", exceptions.New(exceptions.InvalidTypeException, "case label %s cannot be a %s", label, op.Type)
	}
	return op.Text, nil
}

// --- loopfor ---

func (a *Analyzer) lowerLoop(s *ast.LoopStatement) error {
	if s.Count < 0 {
		return exceptions.New(exceptions.InvalidValue, "Count must be an Integer. (Whole number)")
	}
	counter := a.loopCounter()
	a.out.Emitf("for (int %s = 0; %s < %d; %s++) {", counter, counter, s.Count, counter)
	if err := a.lowerBlock(s.Body); err != nil {
		return err
	}
	a.out.Emit("}")
	return nil
}

// loopCounter hands out the next unused counter name.
func (a *Analyzer) loopCounter() string {
	for {
		a.loops++
		name := fmt.Sprintf("%s%d", loopCounterPrefix, a.loops)
		if !a.table.IsDefined(name) {
			return name
		}
	}
}

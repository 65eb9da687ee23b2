package analyzer

import (
	"github.com/arnavsurve/storyscript/internal/compiler/ast"
	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/symbols"
	"github.com/arnavsurve/storyscript/internal/compiler/token"
	"github.com/arnavsurve/storyscript/internal/compiler/types"
)

// reallocSlack is how many unused bytes a heap String may keep before a shorter
// value shrinks its buffer.
const reallocSlack = 64

func (a *Analyzer) reassign(s *ast.ReassignmentStatement) error {
	v, ok := a.table.LookupVariable(s.Name)
	if !ok || v.Deleted {
		return exceptions.New(exceptions.NotDefinedException, "The variable %s is not defined.", s.Name)
	}
	if v.Const {
		return exceptions.New(exceptions.InvalidValue, "Cannot change the const variable %s", v.Name)
	}
	if len(s.Value) == 0 {
		return exceptions.New(exceptions.InvalidSyntax, "Invalid value")
	}

	op, err := a.resolve(s.Value)
	if err != nil {
		return err
	}
	if s.Operator != token.Assign {
		return a.compoundAssign(v, s.Operator, op)
	}
	if op.Input != nil {
		return a.readInput(v, op.Input)
	}
	if op.Type != v.Type {
		return exceptions.New(exceptions.InvalidValue, "Variable types doesn't match value type. (%s declared, %s given)", v.Type, op.Type)
	}

	switch v.Type {
	case types.String:
		return a.assignString(v, op)
	case types.Dynamic:
		if !a.table.IsVariable(op.Text) {
			a.out.Emitf("%s = (void*)%s;", v.Name, op.Text)
		} else {
			a.out.Emitf("%s = %s;", v.Name, op.Text)
		}
		return a.table.AssignVariable(v.Name, op.Value, v.Capacity, op.Length)
	}

	a.out.Emitf("%s = %s;", a.reference(v), op.Text)
	return a.table.AssignVariable(v.Name, op.Value, 0, 0)
}

// assignString copies a new value into an existing buffer. Heap buffers follow the
// reallocation policy; fixed buffers never grow.
func (a *Analyzer) assignString(v symbols.Variable, op operand) error {
	n, capacity := op.copyLength(), v.Capacity

	switch {
	case v.Heap && a.autoReallocate:
		if n > capacity || capacity-n > reallocSlack {
			capacity = max(n, 1)
			a.out.Emitf("%s = realloc(%s, %d);", v.Name, v.Name, capacity)
		}
	case v.Heap:
		a.info("To set a String, the new value must fit in the size it was declared with", "variable", v.Name, "capacity", capacity)
		if n > capacity {
			return exceptions.New(exceptions.InvalidValue, "The input string length is more than the Original Defined size. If you want a Dynamically allocated string, Please don't use \"--no-auto-reallocate\" option.")
		}
	default:
		if n > capacity {
			return exceptions.New(exceptions.InvalidValue, "The input string length is more than the Original Defined size. Use a heap allocated string if it has to grow.")
		}
	}

	a.out.Require("string.h")
	a.out.Emitf("memcpy(%s, %s, %d);", v.Name, op.Text, n)
	if n < capacity {
		a.out.Emitf("%s[%d] = '\\0';", v.Name, n)
	}
	return a.table.AssignVariable(v.Name, op.Value, capacity, op.Length)
}

// compoundAssign lowers +=, -=, *=, /= and %=.
func (a *Analyzer) compoundAssign(v symbols.Variable, operator string, op operand) error {
	if v.Type.IsBuffer() {
		return exceptions.New(exceptions.InvalidTypeException, "%s cannot be used on the %s variable %s", operator, v.Type, v.Name)
	}
	if op.Input != nil {
		return exceptions.New(exceptions.InvalidSyntax, "input can only be used with %q", token.Assign)
	}
	if op.Type != v.Type {
		return exceptions.New(exceptions.InvalidValue, "Variable types doesn't match value type. (%s declared, %s given)", v.Type, op.Type)
	}
	switch token.AssignOperators[operator] {
	case "/", "%":
		if isZero(op) {
			return exceptions.New(exceptions.DivideByZeroException, "%s cannot divide by zero", v.Name)
		}
		if operator == "%=" && v.Type == types.Float {
			return exceptions.New(exceptions.InvalidTypeException, "%%= cannot be used on the Float variable %s", v.Name)
		}
	}

	a.out.Emitf("%s %s %s;", a.reference(v), operator, op.Text)
	return a.table.AssignVariable(v.Name, "", 0, 0)
}

package scope

import (
	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/symbols"
	"github.com/arnavsurve/storyscript/internal/compiler/types"
)

// --- Table ---
// Table is the single flat namespace of a compilation run. It has exactly one
// writer, the analyzer, so it carries no locking.
type Table struct {
	Variables map[string]symbols.Variable
	Functions map[string]symbols.Function
}

func NewTable() *Table {
	t := &Table{
		Variables: make(map[string]symbols.Variable),
		Functions: make(map[string]symbols.Function),
	}
	t.Variables["true"] = symbols.Variable{Name: "true", Type: types.Boolean, Value: "1", Const: true}
	t.Variables["false"] = symbols.Variable{Name: "false", Type: types.Boolean, Value: "0", Const: true}
	return t
}

// DeclareVariable adds a variable. Names are never reused, even after del.
func (t *Table) DeclareVariable(v symbols.Variable) error {
	if t.IsDefined(v.Name) {
		return exceptions.New(exceptions.AlreadyDefined, "a Variable %q is already defined", v.Name)
	}
	t.Variables[v.Name] = v
	return nil
}

// LookupVariable returns a copy of the record, deleted or not.
func (t *Table) LookupVariable(name string) (symbols.Variable, bool) {
	v, ok := t.Variables[name]
	return v, ok
}

// AssignVariable stores a new value for an existing variable. The declared type,
// heap residency and constness are kept from the existing record.
func (t *Table) AssignVariable(name, value string, capacity, length int) error {
	v, ok := t.Variables[name]
	if !ok || v.Deleted {
		return exceptions.New(exceptions.NotDefinedException, "The variable %s is not defined.", name)
	}
	v.Value = value
	v.Capacity = capacity
	v.Length = length
	t.Variables[name] = v
	return nil
}

// DeleteVariable marks the variable as freed. The record stays so the name remains
// reserved and later uses can be reported.
func (t *Table) DeleteVariable(name string) error {
	v, ok := t.Variables[name]
	if !ok {
		return exceptions.New(exceptions.NotDefinedException, "The variable %s is not defined.", name)
	}
	if v.Deleted {
		return exceptions.New(exceptions.NotDefinedException, "The variable %s was already deleted.", name)
	}
	v.Deleted = true
	t.Variables[name] = v
	return nil
}

func (t *Table) DeclareFunction(f symbols.Function) error {
	if t.IsDefined(f.Name) {
		return exceptions.New(exceptions.AlreadyDefined, "a Function %q is already defined", f.Name)
	}
	t.Functions[f.Name] = f
	return nil
}

func (t *Table) LookupFunction(name string) (symbols.Function, bool) {
	f, ok := t.Functions[name]
	return f, ok
}

// IsDefined reports whether name is taken by a variable or a function.
func (t *Table) IsDefined(name string) bool {
	if _, ok := t.Variables[name]; ok {
		return true
	}
	_, ok := t.Functions[name]
	return ok
}

// IsVariable and IsFunction let the parser classify leading tokens.
func (t *Table) IsVariable(name string) bool {
	_, ok := t.Variables[name]
	return ok
}

func (t *Table) IsFunction(name string) bool {
	_, ok := t.Functions[name]
	return ok
}


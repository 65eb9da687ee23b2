package analyzer

import (
	"strconv"
	"strings"

	"github.com/arnavsurve/storyscript/internal/compiler/ast"
	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/lib"
	"github.com/arnavsurve/storyscript/internal/compiler/symbols"
	"github.com/arnavsurve/storyscript/internal/compiler/types"
)

const defaultDescription = "No Description provided"

// Pragma settings: #define interpret <setting> <value>
const (
	pragmaInterpret = "interpret"
	pragmaLegacy    = "interpet" // spelling accepted by older scripts
	settingInfo     = "ignoreInfo"
)

func (a *Analyzer) print(s *ast.PrintStatement) error {
	if strings.TrimSpace(s.Arguments) == "" {
		return exceptions.New(exceptions.InvalidSyntax, "print needs something to print")
	}
	a.out.Emitf("printf(%s);", s.Arguments)
	return nil
}

func (a *Analyzer) exit(s *ast.ExitStatement) error {
	arg := strings.TrimSpace(s.Arguments)
	if arg == "" {
		return exceptions.New(exceptions.InvalidValue, `Parameter "status" (int) required.`)
	}
	code, err := strconv.Atoi(arg)
	if strings.Contains(arg, `"`) || err != nil {
		return exceptions.New(exceptions.InvalidValue, "Exit code can only be integer.")
	}
	a.out.Emitf("exit(%d);", code)
	return nil
}

// delete frees a heap variable. The record stays so later uses are reported.
func (a *Analyzer) delete(s *ast.DeleteStatement) error {
	v, ok := a.table.LookupVariable(s.Name)
	if !ok {
		return exceptions.New(exceptions.NotDefinedException, "The variable %s is not defined.", s.Name)
	}
	if v.Deleted {
		return exceptions.New(exceptions.NotDefinedException, "The variable %s was already deleted.", s.Name)
	}
	if !v.Heap {
		return exceptions.New(exceptions.InvalidValue, "The variable %s is not heap allocated.", s.Name)
	}
	if err := a.table.DeleteVariable(s.Name); err != nil {
		return err
	}
	a.out.Emitf("free(%s);", s.Name)
	return nil
}

func (a *Analyzer) throw(s *ast.ThrowStatement) error {
	kind, ok := exceptions.Lookup(s.Exception)
	if !ok {
		return exceptions.New(exceptions.InvalidValue, "The Exception entered is not defined")
	}
	description := defaultDescription
	if len(s.Description) > 0 {
		text := lib.JoinTokens(s.Description)
		text = strings.TrimPrefix(text, `"`)
		text = strings.TrimSuffix(text, `"`)
		description = types.Unescape(text)
	}
	a.out.Emitf("raiseException(%d, %s);", kind.Code(), types.QuoteC(description))
	return nil
}

// pragma changes a setting of the compiler itself and emits nothing.
func (a *Analyzer) pragma(s *ast.PragmaStatement) error {
	args := s.Arguments
	if len(args) < 3 {
		return exceptions.New(exceptions.InvalidValue, "You needed to describe what you will change.")
	}
	if args[0] != pragmaInterpret && args[0] != pragmaLegacy {
		return exceptions.New(exceptions.InvalidValue, "unknown #define target %q", args[0])
	}
	if args[1] != settingInfo {
		return exceptions.New(exceptions.InvalidValue, "unknown interpreter setting %q", args[1])
	}
	enabled, err := strconv.ParseBool(args[2])
	if err != nil || len(args) > 3 {
		return exceptions.New(exceptions.InvalidValue, "%s takes true or false", settingInfo)
	}
	a.ignoreInfo = enabled
	a.log.Debug("interpreter setting changed", "setting", settingInfo, "value", enabled)
	return nil
}

// function registers a name and arity. Bodies are not compiled.
func (a *Analyzer) function(s *ast.FunctionStatement) error {
	if err := a.checkNewName(s.Name, "Function"); err != nil {
		return err
	}
	for _, arg := range s.Arguments {
		if !types.ValidateName(arg) {
			return exceptions.New(exceptions.InvalidValue, "argument %q of %s is not a valid name", arg, s.Name)
		}
	}
	a.log.Debug("function registered", "name", s.Name, "arity", len(s.Arguments))
	return a.table.DeclareFunction(symbols.Function{Name: s.Name, Arguments: s.Arguments, Body: s.Body})
}

func (a *Analyzer) call(s *ast.CallStatement) error {
	f, ok := a.table.LookupFunction(s.Name)
	if !ok {
		return exceptions.New(exceptions.NotDefinedException, "The function %s is not defined.", s.Name)
	}
	if s.Parenthesized && len(s.Arguments) != f.Arity() {
		return exceptions.New(exceptions.InvalidSyntax, "%s takes %d arguments, %d given", s.Name, f.Arity(), len(s.Arguments))
	}
	a.out.Emit(s.String())
	return nil
}

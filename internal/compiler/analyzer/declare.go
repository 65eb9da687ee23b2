package analyzer

import (
	"strconv"
	"strings"

	"github.com/arnavsurve/storyscript/internal/compiler/ast"
	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/symbols"
	"github.com/arnavsurve/storyscript/internal/compiler/token"
	"github.com/arnavsurve/storyscript/internal/compiler/types"
)

const (
	// reservedPrefix is kept for identifiers the compiler synthesizes.
	reservedPrefix = "__sts_"

	// defaultDynamicBytes is allocated for a Dynamic declared without a value.
	defaultDynamicBytes = 8
)

func (a *Analyzer) declare(s *ast.DeclarationStatement) error {
	if err := a.checkNewName(s.Name, "Variable"); err != nil {
		return err
	}

	declared, concrete := types.KeywordToType(s.Keyword)
	if concrete && declared.IsComposite() {
		return exceptions.New(exceptions.NotImplementedException, "%s variables are not implemented", declared)
	}
	isConst := s.Keyword == token.Const
	if isConst && s.Heap {
		return exceptions.New(exceptions.InvalidSyntax, "const variables cannot be heap allocated")
	}

	if !s.HasInitializer() {
		if types.IsInferred(s.Keyword) {
			return exceptions.New(exceptions.InvalidSyntax, "Initial value needed for %s keyword", s.Keyword)
		}
		return a.declareStorage(s, declared)
	}

	op, err := a.resolve(s.Initializer)
	if err != nil {
		return err
	}
	if op.Input != nil {
		if isConst {
			return exceptions.New(exceptions.InvalidValue, "const %s needs a value known at compile time", s.Name)
		}
		typ := types.String
		if concrete {
			typ = declared
		}
		return a.declareInput(s, typ, op.Input)
	}
	if concrete && declared != op.Type {
		return exceptions.New(exceptions.InvalidValue, "Variable types doesn't match value type. (%s declared, %s given)", declared, op.Type)
	}
	if isConst && op.Type == types.Dynamic {
		return exceptions.New(exceptions.InvalidTypeException, "const cannot hold a Dynamic")
	}

	v := symbols.Variable{Name: s.Name, Type: op.Type, Value: op.Value, Heap: s.Heap, Const: isConst}
	switch op.Type {
	case types.String:
		return a.declareString(v, op)
	case types.Dynamic:
		return a.declareDynamic(v, op)
	}

	if err := a.table.DeclareVariable(v); err != nil {
		return err
	}
	ctype := a.cType(op.Type)
	switch {
	case s.Heap:
		a.out.Emitf("%s *%s = (%s*)malloc(sizeof(%s));", ctype, v.Name, ctype, ctype)
		a.out.Emitf("*%s = %s;", v.Name, op.Text)
	case isConst:
		a.out.Emitf("const %s %s = %s;", ctype, v.Name, op.Text)
	default:
		a.out.Emitf("%s %s = %s;", ctype, v.Name, op.Text)
	}
	return nil
}

func (a *Analyzer) checkNewName(name, what string) error {
	if a.table.IsDefined(name) {
		return exceptions.New(exceptions.AlreadyDefined, "a %s %q is already defined", what, name)
	}
	if !types.ValidateName(name) {
		return exceptions.New(exceptions.InvalidValue, "a %s name cannot start with digits.", what)
	}
	if token.IsKeyword(name) {
		return exceptions.New(exceptions.InvalidValue, "%q is a reserved keyword", name)
	}
	if strings.HasPrefix(name, reservedPrefix) {
		return exceptions.New(exceptions.InvalidValue, "names starting with %q are reserved", reservedPrefix)
	}
	return nil
}

// cType spells t for C and registers the header it needs.
func (a *Analyzer) cType(t types.Type) string {
	if t == types.Boolean {
		a.out.Require("stdbool.h")
	}
	return types.CName(t)
}

// declareString sizes the buffer to the content: a fixed array on the stack, a
// malloc'd block filled with memcpy on the heap.
func (a *Analyzer) declareString(v symbols.Variable, op operand) error {
	fromLiteral := types.IsQuoted(op.Text)
	if v.Const && !fromLiteral {
		return exceptions.New(exceptions.InvalidValue, "const %s needs a String literal", v.Name)
	}
	n := op.copyLength()
	v.Length = op.Length
	v.Capacity = max(n, 1)
	if err := a.table.DeclareVariable(v); err != nil {
		return err
	}

	switch {
	case v.Heap:
		a.out.Require("string.h")
		a.out.Emitf("char *%s = (char*)malloc(%d);", v.Name, v.Capacity)
		a.out.Emitf("if (%s != NULL) memcpy(%s, %s, %d);", v.Name, v.Name, op.Text, n)
	case fromLiteral:
		prefix := ""
		if v.Const {
			prefix = "const "
		}
		a.out.Emitf("%schar %s[%d] = %s;", prefix, v.Name, v.Capacity, op.Text)
	default:
		a.out.Require("string.h")
		a.out.Emitf("char %s[%d];", v.Name, v.Capacity)
		a.out.Emitf("memcpy(%s, %s, %d);", v.Name, op.Text, n)
	}
	return nil
}

// declareDynamic allocates the smallest fitting block and stores the payload as a
// raw pointer value.
func (a *Analyzer) declareDynamic(v symbols.Variable, op operand) error {
	v.Capacity = op.Length
	if err := a.table.DeclareVariable(v); err != nil {
		return err
	}
	a.out.Emitf("void* %s = malloc(%d);", v.Name, v.Capacity)
	a.out.Emitf("%s = (void*)%s;", v.Name, op.Text)
	return nil
}

// declareStorage allocates a variable declared without a value.
func (a *Analyzer) declareStorage(s *ast.DeclarationStatement, typ types.Type) error {
	v := symbols.Variable{Name: s.Name, Type: typ, Heap: s.Heap}

	switch typ {
	case types.String:
		size, err := sizeToken(s.Size, s.Name)
		if err != nil {
			return err
		}
		v.Capacity = size
		if err := a.table.DeclareVariable(v); err != nil {
			return err
		}
		if s.Heap {
			a.out.Require("string.h")
			a.out.Emitf("char *%s = (char*)malloc(%d);", v.Name, size)
		} else {
			a.out.Emitf("char %s[%d];", v.Name, size)
		}
		return nil

	case types.Dynamic:
		v.Capacity = defaultDynamicBytes
		if s.Size != "" {
			size, err := sizeToken(s.Size, s.Name)
			if err != nil {
				return err
			}
			v.Capacity = size
		}
		if err := a.table.DeclareVariable(v); err != nil {
			return err
		}
		a.out.Emitf("void* %s = malloc(%d);", v.Name, v.Capacity)
		return nil
	}

	if s.Size != "" {
		return exceptions.New(exceptions.InvalidSyntax, "unexpected %q in declaration of %s", s.Size, s.Name)
	}
	if err := a.table.DeclareVariable(v); err != nil {
		return err
	}
	ctype := a.cType(typ)
	if s.Heap {
		a.out.Emitf("%s *%s = (%s*)malloc(sizeof(%s));", ctype, v.Name, ctype, ctype)
	} else {
		a.out.Emitf("%s %s;", ctype, v.Name)
	}
	return nil
}

// declareInput declares storage for the target of `= input ...` and reads into it.
func (a *Analyzer) declareInput(s *ast.DeclarationStatement, typ types.Type, req *inputRequest) error {
	switch typ {
	case types.String:
		size := strconv.Itoa(req.Size)
		if err := a.declareStorage(&ast.DeclarationStatement{Raw: s.Raw, Keyword: s.Keyword, Heap: s.Heap, Name: s.Name, Size: size}, typ); err != nil {
			return err
		}
	case types.Integer, types.Float:
		if err := a.declareStorage(&ast.DeclarationStatement{Raw: s.Raw, Keyword: s.Keyword, Heap: s.Heap, Name: s.Name}, typ); err != nil {
			return err
		}
	default:
		return exceptions.New(exceptions.InvalidTypeException, "input cannot read a %s", typ)
	}

	v, _ := a.table.LookupVariable(s.Name)
	return a.readInput(v, req)
}

// readInput emits the prompt and the scanf call that fills v.
func (a *Analyzer) readInput(v symbols.Variable, req *inputRequest) error {
	if req.Prompt != "" {
		a.out.Emitf("printf(%s);", req.Prompt)
	}
	switch v.Type {
	case types.String:
		width := max(v.Capacity-1, 1)
		a.out.Emitf(`scanf("%%%ds", %s);`, width, v.Name)
		return a.table.AssignVariable(v.Name, "", v.Capacity, v.Capacity)
	case types.Integer, types.Float:
		verb := "%d"
		if v.Type == types.Float {
			verb = "%f"
		}
		target := "&" + v.Name
		if v.Heap {
			target = v.Name
		}
		a.out.Emitf(`scanf("%s", %s);`, verb, target)
		return a.table.AssignVariable(v.Name, "", 0, 0)
	}
	return exceptions.New(exceptions.InvalidTypeException, "input cannot read a %s", v.Type)
}

func sizeToken(size, name string) (int, error) {
	if size == "" {
		return 0, exceptions.New(exceptions.InvalidSyntax, "%s needs a size when declared without a value", name)
	}
	n, err := strconv.Atoi(size)
	if err != nil || n <= 0 {
		return 0, exceptions.New(exceptions.InvalidValue, "size of %s must be a positive Integer, got %q", name, size)
	}
	return n, nil
}

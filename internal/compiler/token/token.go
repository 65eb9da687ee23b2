package token

import (
	mapset "github.com/deckarep/golang-set/v2"
)

const (
	// Block structure
	Then        = "then"
	Else        = "else"
	End         = "end"  // block-close
	Conjunction = "&&"   // statement separator inside blocks
	Case        = "case" // switch
	Default     = "default"
	Break       = "break"
	Heap        = "heap"
	Assign      = "="
	Comment     = "//"

	// Keywords
	If        = "if"
	Switch    = "switch"
	LoopFor   = "loopfor"
	Func      = "func"
	Print     = "print"
	Input     = "input"
	Exit      = "exit"
	Throw     = "throw"
	Delete    = "del"
	Define    = "#define"
	Var       = "var"
	Const     = "const"
	Namespace = "namespace"
	Override  = "override"
)

// Declarations start with one of these.
var DeclarationKeywords = mapset.NewThreadUnsafeSet(
	"var", "const", "int", "bool", "float", "string", "dynamic", "list", "dictionary", "tuple",
)

// Keywords is every reserved word of the language.
var Keywords = DeclarationKeywords.Union(mapset.NewThreadUnsafeSet(
	If, Else, Then, End, Func, Print, Input, Throw, Delete, Namespace, Define,
	LoopFor, Switch, Exit, Override, Case, Default, Break, Heap,
))

// Openers start a construct that is closed by End.
var Openers = mapset.NewThreadUnsafeSet(If, Switch, LoopFor, Func)

// AssignOperators maps a reassignment operator to the arithmetic operator it
// applies; plain assignment maps to "".
var AssignOperators = map[string]string{
	"=":  "",
	"+=": "+",
	"-=": "-",
	"*=": "*",
	"/=": "/",
	"%=": "%",
}

// RelationalOperators split a condition clause into its operands.
var RelationalOperators = mapset.NewThreadUnsafeSet(">", "<", "==", "!=", ">=", "<=")

// Condition combinators.
var (
	And = mapset.NewThreadUnsafeSet("and", "&&")
	Or  = mapset.NewThreadUnsafeSet("or", "||")
)

// ArithmeticOperators may appear between operands of an expression.
var ArithmeticOperators = mapset.NewThreadUnsafeSet("+", "-", "*", "/", "%")

// LogicalOperators make an expression Boolean.
var LogicalOperators = RelationalOperators.Union(And).Union(Or).Union(mapset.NewThreadUnsafeSet("!"))

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	return Keywords.Contains(word)
}

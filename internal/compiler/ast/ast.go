package ast

import (
	"strings"
)

// --- Interfaces ---
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is one classified source statement. The set of implementations is
// closed; the analyzer matches them exhaustively.
type Statement interface {
	Node
	statementNode()
}

// Raw keeps the tokens a statement was parsed from.
type Raw []string

func (r Raw) TokenLiteral() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

func (r Raw) String() string { return strings.Join(r, " ") }

// Block is a list of statements still in token form. Blocks are classified only
// when they are lowered, because earlier statements of the block may declare names
// that later ones use.
type Block [][]string

// --- Declarations and assignments ---

// DeclarationStatement -> int heap a = 5, var s = "hi", string heap buf 20
type DeclarationStatement struct {
	Raw
	Keyword     string // int, var, const, ...
	Heap        bool
	Name        string
	Initializer []string // nil when there is no "="
	Size        string   // optional size token when there is no initializer
}

func (ds *DeclarationStatement) statementNode() {}

// HasInitializer reports whether the declaration carries "= value".
func (ds *DeclarationStatement) HasInitializer() bool { return ds.Initializer != nil }

// ReassignmentStatement -> a = 5, a += 3
type ReassignmentStatement struct {
	Raw
	Name     string
	Operator string // =, +=, -=, *=, /=, %=
	Value    []string
}

func (rs *ReassignmentStatement) statementNode() {}

// --- Builtins ---

// PrintStatement -> print ("%d", a)
type PrintStatement struct {
	Raw
	Arguments string // parenthesized argument list as written
}

func (ps *PrintStatement) statementNode() {}

// InputStatement -> input 20 ("Name: ")
type InputStatement struct {
	Raw
	Arguments string
}

func (is *InputStatement) statementNode() {}

// ExitStatement -> exit (0)
type ExitStatement struct {
	Raw
	Arguments string
}

func (es *ExitStatement) statementNode() {}

// DeleteStatement -> del a
type DeleteStatement struct {
	Raw
	Name string
}

func (ds *DeleteStatement) statementNode() {}

// ThrowStatement -> throw NotDefinedException "missing"
type ThrowStatement struct {
	Raw
	Exception   string
	Description []string
}

func (ts *ThrowStatement) statementNode() {}

// PragmaStatement -> #define interpret ignoreInfo true
type PragmaStatement struct {
	Raw
	Arguments []string
}

func (ps *PragmaStatement) statementNode() {}

// --- Control flow ---

// Clause is one operand comparison of a condition. Operator is empty for a clause
// that is a plain boolean expression.
type Clause struct {
	Left     []string
	Operator string
	Right    []string
}

func (c Clause) String() string {
	if c.Operator == "" {
		return strings.Join(c.Left, " ")
	}
	return strings.Join(c.Left, " ") + " " + c.Operator + " " + strings.Join(c.Right, " ")
}

// Combinator joins the clauses of a condition. A condition uses one combinator.
type Combinator int

const (
	Single Combinator = iota
	And
	Or
)

type Condition struct {
	Combinator Combinator
	Clauses    []Clause
}

// IfStatement -> if a == 1 then ... else ... end
type IfStatement struct {
	Raw
	Condition Condition
	Then      Block
	Else      Block // nil without an else branch
}

func (is *IfStatement) statementNode() {}

// CaseClause is one case of a switch; Default marks the fallback group.
type CaseClause struct {
	Label   string
	Default bool
	Body    Block
}

// SwitchStatement -> switch a case 1: ... break default: ... break end
type SwitchStatement struct {
	Raw
	Subject string
	Cases   []CaseClause
}

func (ss *SwitchStatement) statementNode() {}

// LoopStatement -> loopfor 3 ... end
type LoopStatement struct {
	Raw
	Count int
	Body  Block
}

func (ls *LoopStatement) statementNode() {}

// --- Functions and pass-through ---

// FunctionStatement -> func greet(a, b) ... end
type FunctionStatement struct {
	Raw
	Name      string
	Arguments []string
	Body      []string
}

func (fs *FunctionStatement) statementNode() {}

// CallStatement -> greet(1, 2)
type CallStatement struct {
	Raw
	Name          string
	Arguments     []string
	Parenthesized bool // false when the argument list could not be isolated
}

func (cs *CallStatement) statementNode() {}

// CommentStatement -> // text
type CommentStatement struct {
	Raw
}

func (cs *CommentStatement) statementNode() {}

// PassThroughStatement is emitted as the rejoined source text.
type PassThroughStatement struct {
	Raw
}

func (ps *PassThroughStatement) statementNode() {}

package symbols

import "github.com/arnavsurve/storyscript/internal/compiler/types"

// Variable is the record kept for every declared name.
type Variable struct {
	Name  string
	Type  types.Type // fixed at declaration
	Value string     // last known value text, empty when only known at runtime
	Heap  bool
	Const bool

	// --- String / Dynamic specific info ---
	Capacity int // allocated bytes
	Length   int // bytes of the last known value

	Deleted bool // freed with del
}

// Function is registered by func; bodies are not compiled.
type Function struct {
	Name      string
	Arguments []string
	Body      []string
}

// Arity is the number of declared arguments.
func (f Function) Arity() int {
	return len(f.Arguments)
}

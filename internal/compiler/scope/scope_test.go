package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/symbols"
	"github.com/arnavsurve/storyscript/internal/compiler/types"
)

func kindOf(t *testing.T, err error) exceptions.Kind {
	t.Helper()
	exc, ok := err.(*exceptions.Error)
	require.True(t, ok, "error %v is not *exceptions.Error", err)
	return exc.Kind
}

func TestPreseededBooleans(t *testing.T) {
	table := NewTable()
	v, ok := table.LookupVariable("true")
	require.True(t, ok)
	assert.Equal(t, "1", v.Value)
	f, ok := table.LookupVariable("false")
	require.True(t, ok)
	assert.Equal(t, types.Boolean, f.Type)
	assert.True(t, f.Const)

	err := table.DeclareVariable(symbols.Variable{Name: "true", Type: types.Integer})
	assert.Equal(t, exceptions.AlreadyDefined, kindOf(t, err))
}

func TestDeclareAndAssign(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.DeclareVariable(symbols.Variable{Name: "s", Type: types.String, Heap: true, Capacity: 2}))

	require.NoError(t, table.AssignVariable("s", `"hello"`, 5, 5))
	v, _ := table.LookupVariable("s")
	assert.Equal(t, types.String, v.Type)
	assert.True(t, v.Heap)
	assert.Equal(t, 5, v.Capacity)

	err := table.AssignVariable("missing", "1", 0, 0)
	assert.Equal(t, exceptions.NotDefinedException, kindOf(t, err))

	err = table.DeclareVariable(symbols.Variable{Name: "s", Type: types.Integer})
	assert.Equal(t, exceptions.AlreadyDefined, kindOf(t, err))
}

func TestDeleteKeepsName(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.DeclareVariable(symbols.Variable{Name: "a", Type: types.Integer, Heap: true}))
	require.NoError(t, table.DeleteVariable("a"))

	v, ok := table.LookupVariable("a")
	require.True(t, ok)
	assert.True(t, v.Deleted)
	assert.True(t, table.IsDefined("a"))

	assert.Equal(t, exceptions.NotDefinedException, kindOf(t, table.DeleteVariable("a")))
	assert.Equal(t, exceptions.NotDefinedException, kindOf(t, table.DeleteVariable("b")))
	assert.Equal(t, exceptions.NotDefinedException, kindOf(t, table.AssignVariable("a", "1", 0, 0)))
}

func TestFunctions(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.DeclareFunction(symbols.Function{Name: "greet", Arguments: []string{"who"}}))
	f, ok := table.LookupFunction("greet")
	require.True(t, ok)
	assert.Equal(t, 1, f.Arity())
	assert.True(t, table.IsFunction("greet"))
	assert.False(t, table.IsVariable("greet"))

	err := table.DeclareVariable(symbols.Variable{Name: "greet", Type: types.Integer})
	assert.Equal(t, exceptions.AlreadyDefined, kindOf(t, err))
}

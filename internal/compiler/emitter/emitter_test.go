package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireKeepsOrder(t *testing.T) {
	e := NewEmitter()
	e.Require("string.h")
	e.Require("stdio.h")
	e.Require("stdbool.h")
	e.Require("string.h")
	assert.Equal(t, []string{"stdio.h", "stdlib.h", "string.h", "stdbool.h"}, e.Libraries())
}

func TestRender(t *testing.T) {
	e := NewEmitter()
	e.Emit("int a = 1;")
	e.Emit("if (a)")
	e.Emit("{")
	e.Indent()
	e.Emit("a = 2;")
	e.Emit("   ")
	e.Dedent()
	e.Emit("}")

	out := e.Render()
	assert.True(t, strings.HasPrefix(out, "#include <stdio.h>\n#include <stdlib.h>\n"))
	assert.Contains(t, out, "void raiseException(int code, char* description)")
	assert.Contains(t, out, "\t\tcase 103:\n\t\t\tprintf(\"NotDefinedException: %s\\n\", description);\n")
	assert.Contains(t, out, "int main() {\n\tint a = 1;\n\tif (a)\n\t{\n\t\ta = 2;\n\t}\n\treturn 0;\n}\n")
	assert.Equal(t, []string{"int a = 1;", "if (a)", "{", "a = 2;", "}"}, e.Body())

	// Render finalizes once
	assert.Equal(t, out, e.Render())
}

func TestRenderMinified(t *testing.T) {
	e := NewEmitter(WithMinified(true))
	e.Require("string.h")
	e.Emit("// comment")
	e.Emit("int a = 1;")

	lines := strings.Split(strings.TrimSpace(e.Render()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "#include <string.h>", lines[2])
	assert.NotContains(t, lines[3], "//")
	assert.True(t, strings.HasSuffix(lines[3], "int main() { int a = 1; return 0; }"))
}

func TestDedentStopsAtZero(t *testing.T) {
	e := NewEmitter()
	e.Dedent()
	e.Dedent()
	e.Emit("x;")
	assert.Contains(t, e.Render(), "int main() {\nx;\n")
}

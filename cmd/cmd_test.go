package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
)

func TestReportFailure(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	reportFailure(&buf, exceptions.New(exceptions.InvalidValue, "The variable a is not heap allocated.").AtLine(7))
	assert.Equal(t, "TRANSPILATION ERROR:\nWhile processing line 7\nInvalidValue: The variable a is not heap allocated.\n", buf.String())
}

func TestScaffoldProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, scaffoldProject(dir, "demo"))

	for _, name := range []string{"src/main.sts", "storyscript.yml", ".gitignore"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	cfg, err := os.ReadFile(filepath.Join(dir, "storyscript.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "name: demo")

	assert.Error(t, scaffoldProject(dir, "demo"))
}

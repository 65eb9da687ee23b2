package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
)

var rootCmd = &cobra.Command{
	Use:   "storyc",
	Short: "storyc compiles StoryScript into C",
	Long: `storyc is the compiler for StoryScript programs.

Commands:
  init   Scaffold a new StoryScript project
  build  Compile a (.sts) StoryScript source file into (.c) C
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and prints any failure.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		reportFailure(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(InitCmd, BuildCmd)
}

// reportFailure prints compile diagnostics in the same layout the generated
// program uses for runtime exceptions.
func reportFailure(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	var exc *exceptions.Error
	if errors.As(err, &exc) {
		red.Fprintln(w, "TRANSPILATION ERROR:")
		red.Fprintf(w, "While processing line %d\n", exc.Line)
		red.Fprintln(w, exc.Error())
		return
	}
	red.Fprintln(w, "Error:", err)
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arnavsurve/storyscript/internal/compiler"
	"github.com/arnavsurve/storyscript/internal/config"
	"github.com/arnavsurve/storyscript/internal/report"
)

type buildFlags struct {
	input            string
	output           string
	noAutoReallocate bool
	minified         bool
	configPath       string
	debug            bool
	quiet            bool
}

var build buildFlags

// build: compile .sts -> .c
var BuildCmd = &cobra.Command{
	Use:   "build -i <source.sts> -o <output.c>",
	Short: "Compile a StoryScript source file into C",
	Args:  cobra.NoArgs,
	RunE:  buildRun,
}

func init() {
	f := BuildCmd.Flags()
	f.StringVarP(&build.input, "input", "i", "", "StoryScript source file (.sts)")
	f.StringVarP(&build.output, "output", "o", "", "C file to write (defaults to the source name with .c)")
	f.BoolVar(&build.noAutoReallocate, "no-auto-reallocate", false, "fail instead of reallocating heap strings that change size")
	f.BoolVar(&build.minified, "minified", false, "write the C program without layout or comments")
	f.StringVar(&build.configPath, "config", config.FileName, "project config file")
	f.BoolVar(&build.debug, "debug", false, "log compiler internals")
	f.BoolVarP(&build.quiet, "quiet", "q", false, "only print errors")
}

func buildRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(build.configPath, !cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if cfg.Source == "" {
		return fmt.Errorf("an input file is required (-i)")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if wd, err := os.Getwd(); err == nil {
		log.Debug("build settings", "dir", wd, "auto_reallocate", cfg.AutoReallocation(), "minified", cfg.Minified)
	}

	rep := report.New(os.Stderr, build.quiet)
	if !build.quiet {
		fmt.Printf("↪ building %q ...\n", cfg.Source)
	}

	outFile, err := compiler.CompileAndWrite(cfg.Source, cfg.Output,
		compiler.WithAutoReallocate(cfg.AutoReallocation()),
		compiler.WithMinified(cfg.Minified),
		compiler.WithLogger(log),
		compiler.WithProgress(rep.Progress),
	)
	if err != nil {
		return err
	}

	if !build.quiet {
		color.Green("✔︎ wrote C to %s", outFile)
		rep.Summary(rep.Collect(cfg.Source, outFile))
	}
	return nil
}

// applyFlags overrides config values with flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Source = build.input
	}
	if flags.Changed("output") {
		cfg.Output = build.output
	}
	if flags.Changed("no-auto-reallocate") {
		enabled := !build.noAutoReallocate
		cfg.AutoReallocate = &enabled
	}
	if flags.Changed("minified") {
		cfg.Minified = build.minified
	}
	switch {
	case build.debug:
		cfg.LogLevel = "debug"
	case build.quiet:
		cfg.LogLevel = "warn"
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/arnavsurve/storyscript/internal/compiler/analyzer"
	"github.com/arnavsurve/storyscript/internal/compiler/emitter"
	"github.com/arnavsurve/storyscript/internal/compiler/lexer"
	"github.com/arnavsurve/storyscript/internal/compiler/scope"
)

const (
	SourceExt = ".sts"
	OutputExt = ".c"
)

type options struct {
	autoReallocate bool
	minified       bool
	log            *slog.Logger
	progress       func(done, total int)
}

type Option func(*options)

// WithAutoReallocate lets heap strings grow and shrink on reassignment.
func WithAutoReallocate(enabled bool) Option {
	return func(o *options) { o.autoReallocate = enabled }
}

func WithMinified(minified bool) Option {
	return func(o *options) { o.minified = minified }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithProgress is called after every source line.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) { o.progress = fn }
}

func CompileAndWrite(srcPath, outPath string, opts ...Option) (string, error) {
	if err := validateExtension(srcPath); err != nil {
		return "", err
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	out, err := Compile(f, opts...)
	if err != nil {
		return "", err
	}

	if outPath == "" {
		outPath = DefaultOutput(srcPath)
	}
	return outPath, writeOutput(out, outPath)
}

// Compile translates a whole program. The first diagnostic aborts the run and is
// returned as an *exceptions.Error carrying its line.
func Compile(r io.Reader, opts ...Option) (*emitter.Emitter, error) {
	o := &options{
		autoReallocate: true,
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	lines, err := lexer.ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	out := emitter.NewEmitter(emitter.WithMinified(o.minified))
	an := analyzer.New(scope.NewTable(), out,
		analyzer.WithAutoReallocate(o.autoReallocate),
		analyzer.WithLogger(o.log),
	)

	for i, line := range lines {
		if len(line.Tokens) > 0 && !(o.minified && line.IsComment()) {
			if err := analyzeLine(an, line, o.log); err != nil {
				return nil, err
			}
		}
		if o.progress != nil {
			o.progress(i+1, len(lines))
		}
	}

	out.Finalize()
	return out, nil
}

// analyzeLine runs one line. A panic only skips the line; symbol table changes made
// before it are kept.
func analyzeLine(an *analyzer.Analyzer, line lexer.Line, log *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("skipping line after an internal failure",
				"line", line.Number,
				"tokens", line.Tokens,
				"panic", r,
			)
			err = nil
		}
	}()
	return an.Analyze(line.Tokens, line.Number)
}

func validateExtension(path string) error {
	if filepath.Ext(path) != SourceExt {
		return fmt.Errorf("source must have %s extension", SourceExt)
	}
	return nil
}

// DefaultOutput places the C file next to the source.
func DefaultOutput(srcPath string) string {
	return strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + OutputExt
}

func writeOutput(out *emitter.Emitter, outPath string) error {
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(outPath, []byte(out.Render()), 0o644)
}

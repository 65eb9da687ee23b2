// Command run compiles every program under tests/ with storyc. Programs in
// tests/good must compile (and match tests/good/expected/<name>.c when present);
// programs in tests/bad must fail with a transpilation error.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
)

const (
	outDir         = "out"
	compileTimeout = 30 * time.Second // storyc through go run
	ccTimeout      = 10 * time.Second
)

var (
	pass = color.New(color.FgGreen).SprintFunc()
	fail = color.New(color.FgRed, color.Bold).SprintFunc()
)

type suite struct {
	dir   string
	title string
	check func(src, outPath, cc string) error
}

type failure struct {
	suite string
	file  string
	err   error
}

func main() {
	_ = os.RemoveAll(outDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cc, _ := exec.LookPath("cc")
	if cc == "" {
		fmt.Println("no C compiler on PATH, generated C is only compared")
	}

	suites := []suite{
		{dir: "tests/good", title: "good", check: expectSuccess},
		{dir: "tests/bad", title: "bad", check: expectFailure},
	}

	var failures []failure
	for _, s := range suites {
		files, _ := filepath.Glob(filepath.Join(s.dir, "*.sts"))
		fmt.Printf("\n%s programs (%d)\n", s.title, len(files))

		passed := 0
		for _, src := range files {
			name := strings.TrimSuffix(filepath.Base(src), ".sts")
			err := s.check(src, filepath.Join(outDir, name+".c"), cc)
			if err != nil {
				fmt.Printf("  %s %s\n", fail("FAIL"), name)
				failures = append(failures, failure{suite: s.title, file: src, err: err})
				continue
			}
			fmt.Printf("  %s %s\n", pass("ok"), name)
			passed++
		}
		fmt.Printf("%s: %d passed, %d failed\n", s.title, passed, len(files)-passed)
	}

	for _, f := range failures {
		fmt.Printf("\n--- %s (%s)\n%v\n", f.file, f.suite, f.err)
	}
	if len(failures) > 0 {
		os.Exit(1)
	}
}

func storyc(src, outPath string) ([]byte, error) {
	return run(compileTimeout, "go", "run", ".", "build", "--quiet", "-i", src, "-o", outPath)
}

// expectSuccess compiles src, compares it with its expectation file if there is
// one, and builds the C output when a compiler is available.
func expectSuccess(src, outPath, cc string) error {
	if out, err := storyc(src, outPath); err != nil {
		return fmt.Errorf("storyc: %w\n%s", err, out)
	}
	actual, err := os.ReadFile(outPath)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(src), ".sts")
	expectedPath := filepath.Join(filepath.Dir(src), "expected", name+".c")
	if expected, err := os.ReadFile(expectedPath); err == nil {
		if !bytes.Equal(normalizeNewlines(expected), normalizeNewlines(actual)) {
			return fmt.Errorf("output differs from %s\n--- expected\n%s\n--- actual\n%s", expectedPath, expected, actual)
		}
	}

	if cc == "" {
		return nil
	}
	if out, err := run(ccTimeout, cc, "-o", strings.TrimSuffix(outPath, ".c"), outPath); err != nil {
		return fmt.Errorf("cc: %w\n%s", err, out)
	}
	return nil
}

// expectFailure wants a non-zero exit reported as a transpilation error.
func expectFailure(src, outPath, _ string) error {
	out, err := storyc(src, outPath)
	switch {
	case err == nil:
		return fmt.Errorf("compiled without error\n%s", out)
	case !bytes.Contains(out, []byte("TRANSPILATION ERROR:")):
		return fmt.Errorf("failed without a transpilation error: %w\n%s", err, out)
	}
	return nil
}

func run(timeout time.Duration, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return out, fmt.Errorf("%s timed out after %v", name, timeout)
	}
	return out, err
}

func normalizeNewlines(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

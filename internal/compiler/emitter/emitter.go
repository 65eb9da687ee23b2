package emitter

import (
	"fmt"
	"io"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
)

// NOTES:
// - Body lines keep their indentation level; text is only laid out in Render, so
//   the minified layout is a rendering choice, not a second code path.
// - The library registry keeps first-registration order so output is deterministic.

const indentUnit = "\t"

// Libraries every generated program includes.
var baselineLibraries = []string{"stdio.h", "stdlib.h"}

type line struct {
	indent int
	text   string
}

// Emitter accumulates the generated C program: a header (includes, runtime
// support, entry point), the body statements and a footer.
type Emitter struct {
	header    []line
	body      []line
	footer    []line
	indent    int
	minified  bool
	finalized bool

	libraries []string
	required  mapset.Set[string]
}

type Option func(*Emitter)

// WithMinified renders the program without indentation or comments.
func WithMinified(minified bool) Option {
	return func(e *Emitter) {
		e.minified = minified
	}
}

func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{
		indent:   1, // inside main
		required: mapset.NewThreadUnsafeSet[string](),
	}
	for _, lib := range baselineLibraries {
		e.Require(lib)
	}
	e.footer = []line{{indent: 1, text: "return 0;"}, {indent: 0, text: "}"}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Emit Helpers ---

// Emit appends a body line at the current indentation. Empty text is dropped.
func (e *Emitter) Emit(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	e.body = append(e.body, line{indent: e.indent, text: text})
}

// Emitf formats and appends a body line.
func (e *Emitter) Emitf(format string, args ...any) {
	e.Emit(fmt.Sprintf(format, args...))
}

func (e *Emitter) Indent() {
	e.indent++
}

func (e *Emitter) Dedent() {
	if e.indent > 0 {
		e.indent--
	}
}

// Header appends a line to the header section.
func (e *Emitter) Header(text string) {
	e.header = append(e.header, line{text: text})
}

// Require registers a C header the generated code depends on.
func (e *Emitter) Require(lib string) {
	if e.required.Contains(lib) {
		return
	}
	e.required.Add(lib)
	e.libraries = append(e.libraries, lib)
}

// Libraries lists registered headers in registration order.
func (e *Emitter) Libraries() []string {
	out := make([]string, len(e.libraries))
	copy(out, e.libraries)
	return out
}

// Body returns the body lines without indentation, mainly for inspection.
func (e *Emitter) Body() []string {
	out := make([]string, len(e.body))
	for i, l := range e.body {
		out[i] = l.text
	}
	return out
}

// --- Emit Structure ---

// Finalize writes the include directives, the runtime support routine and the
// program entry point into the header. It is idempotent.
func (e *Emitter) Finalize() {
	if e.finalized {
		return
	}
	e.finalized = true
	for _, lib := range e.libraries {
		e.Header(fmt.Sprintf("#include <%s>", lib))
	}
	e.emitRaiseException()
	e.Header("int main() {")
}

func (e *Emitter) emitRaiseException() {
	e.Header("")
	e.Header("// Exception Raising")
	e.Header("void raiseException(int code, char* description)")
	e.Header("{")
	e.header = append(e.header, line{indent: 1, text: "switch(code)"}, line{indent: 1, text: "{"})
	for _, kind := range exceptions.All() {
		e.header = append(e.header,
			line{indent: 2, text: fmt.Sprintf("case %d:", kind.Code())},
			line{indent: 3, text: fmt.Sprintf(`printf("%s: %%s\n", description);`, kind)},
			line{indent: 3, text: "break;"},
		)
	}
	e.header = append(e.header, line{indent: 1, text: "}"}, line{indent: 1, text: "exit(code);"})
	e.Header("}")
	e.Header("")
}

// Render serializes header, body and footer.
func (e *Emitter) Render() string {
	e.Finalize()
	sections := [][]line{e.header, e.body, e.footer}
	if e.minified {
		return renderMinified(sections)
	}

	var b strings.Builder
	for _, section := range sections {
		for _, l := range section {
			if l.text != "" {
				b.WriteString(strings.Repeat(indentUnit, l.indent))
			}
			b.WriteString(l.text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Preprocessor directives keep their own line; everything else is joined.
func renderMinified(sections [][]line) string {
	var (
		b    strings.Builder
		code []string
	)
	for _, section := range sections {
		for _, l := range section {
			text := strings.TrimSpace(l.text)
			switch {
			case text == "", strings.HasPrefix(text, "//"):
			case strings.HasPrefix(text, "#"):
				b.WriteString(text)
				b.WriteString("\n")
			default:
				code = append(code, text)
			}
		}
	}
	b.WriteString(strings.Join(code, " "))
	b.WriteString("\n")
	return b.String()
}

// WriteTo writes the rendered program to w.
func (e *Emitter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, e.Render())
	return int64(n), err
}

func (e *Emitter) String() string {
	return e.Render()
}

package analyzer

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavsurve/storyscript/internal/compiler/emitter"
	"github.com/arnavsurve/storyscript/internal/compiler/exceptions"
	"github.com/arnavsurve/storyscript/internal/compiler/scope"
	"github.com/arnavsurve/storyscript/internal/compiler/symbols"
	"github.com/arnavsurve/storyscript/internal/compiler/types"
)

// --- Test Helper Functions ---

type fixture struct {
	a     *Analyzer
	table *scope.Table
	out   *emitter.Emitter
	line  int
}

func newFixture(opts ...Option) *fixture {
	table := scope.NewTable()
	out := emitter.NewEmitter()
	return &fixture{a: New(table, out, opts...), table: table, out: out}
}

// run analyzes each source line and fails the test on the first error.
func (f *fixture) run(t *testing.T, lines ...string) {
	t.Helper()
	for _, src := range lines {
		f.line++
		if err := f.a.Analyze(strings.Fields(src), f.line); err != nil {
			t.Fatalf("line %q: unexpected error: %v", src, err)
		}
	}
}

// fails analyzes src and checks the error kind.
func (f *fixture) fails(t *testing.T, src string, kind exceptions.Kind) *exceptions.Error {
	t.Helper()
	f.line++
	err := f.a.Analyze(strings.Fields(src), f.line)
	if err == nil {
		t.Fatalf("line %q: expected %s, got no error", src, kind)
	}
	exc, ok := err.(*exceptions.Error)
	if !ok {
		t.Fatalf("line %q: error is not *exceptions.Error. got=%T", src, err)
	}
	if exc.Kind != kind {
		t.Fatalf("line %q: expected %s, got %s (%s)", src, kind, exc.Kind, exc.Message)
	}
	return exc
}

// emitted returns body lines written since mark.
func (f *fixture) emitted(mark int) []string {
	return f.out.Body()[mark:]
}

func (f *fixture) mark() int {
	return len(f.out.Body())
}

func (f *fixture) variable(t *testing.T, name string) symbols.Variable {
	t.Helper()
	v, ok := f.table.LookupVariable(name)
	require.True(t, ok, "variable %s not declared", name)
	return v
}

// --- Declarations ---

func TestDeclareVarInteger(t *testing.T) {
	f := newFixture()
	f.run(t, "var a = 5")
	assert.Equal(t, []string{"int a = 5;"}, f.out.Body())

	v := f.variable(t, "a")
	assert.Equal(t, types.Integer, v.Type)
	assert.False(t, v.Heap)
	assert.Equal(t, "5", v.Value)
}

func TestDeclareHeapString(t *testing.T) {
	f := newFixture()
	f.run(t, `string heap s = "hi"`)
	assert.Equal(t, []string{
		"char *s = (char*)malloc(2);",
		`if (s != NULL) memcpy(s, "hi", 2);`,
	}, f.out.Body())
	assert.Contains(t, f.out.Libraries(), "string.h")

	v := f.variable(t, "s")
	assert.Equal(t, types.String, v.Type)
	assert.True(t, v.Heap)
	assert.Equal(t, 2, v.Capacity)
}

func TestDeclareStackString(t *testing.T) {
	f := newFixture()
	f.run(t, `string s = "a b\n"`, "string t = s", "string buf 16")
	assert.Equal(t, []string{
		`char s[4] = "a b\n";`,
		"char t[4];",
		"memcpy(t, s, 4);",
		"char buf[16];",
	}, f.out.Body())
	assert.Equal(t, 4, f.variable(t, "t").Capacity)
}

// A String without a known value is copied with its whole buffer.
func TestCopyStringOfUnknownContent(t *testing.T) {
	f := newFixture()
	f.run(t, "string s 20", "var t = s", "string heap h = s")
	assert.Equal(t, []string{
		"char s[20];",
		"char t[20];",
		"memcpy(t, s, 20);",
		"char *h = (char*)malloc(20);",
		"if (h != NULL) memcpy(h, s, 20);",
	}, f.out.Body())
	assert.Equal(t, 20, f.variable(t, "t").Capacity)

	mark := f.mark()
	f.run(t, "t = s")
	assert.Equal(t, []string{"memcpy(t, s, 20);"}, f.emitted(mark))

	f.run(t, "string small 4")
	f.fails(t, "small = s", exceptions.InvalidValue)
}

func TestDeclareScalars(t *testing.T) {
	f := newFixture()
	f.run(t,
		"float ratio = 2.5",
		"bool ready = true",
		"int heap n = 7",
		"int heap m = n",
		"int heap later",
		"int count",
	)
	assert.Equal(t, []string{
		"float ratio = 2.5;",
		"bool ready = 1;",
		"int *n = (int*)malloc(sizeof(int));",
		"*n = 7;",
		"int *m = (int*)malloc(sizeof(int));",
		"*m = *n;",
		"int *later = (int*)malloc(sizeof(int));",
		"int count;",
	}, f.out.Body())
	assert.Contains(t, f.out.Libraries(), "stdbool.h")
	assert.Equal(t, "7", f.variable(t, "m").Value)
}

func TestDeclareDynamic(t *testing.T) {
	f := newFixture()
	f.run(t,
		"dynamic d = new Dynamic(12)",
		"var big = new Dynamic(5000000000)",
		"dynamic heap huge = new Dynamic(99999999999999999999)",
		"dynamic empty",
	)
	assert.Equal(t, []string{
		"void* d = malloc(4);",
		"d = (void*)12;",
		"void* big = malloc(8);",
		"big = (void*)5000000000;",
		"void* huge = malloc(16);",
		"huge = (void*)99999999999999999999;",
		"void* empty = malloc(8);",
	}, f.out.Body())
	assert.Equal(t, 8, f.variable(t, "big").Capacity)
}

func TestDeclareConst(t *testing.T) {
	f := newFixture()
	f.run(t, "const limit = 3", `const greeting = "hey"`, "int n = limit")
	assert.Equal(t, []string{
		"const int limit = 3;",
		`const char greeting[3] = "hey";`,
		"int n = 3;",
	}, f.out.Body())

	f.fails(t, "limit = 4", exceptions.InvalidValue)
	f.fails(t, "limit += 1", exceptions.InvalidValue)
	f.fails(t, "true = 0", exceptions.InvalidValue)
	f.fails(t, "const heap c = 1", exceptions.InvalidSyntax)
	f.fails(t, "const d = new Dynamic(1)", exceptions.InvalidTypeException)
	f.fails(t, "const g = greeting", exceptions.InvalidValue)
}

func TestDeclareErrors(t *testing.T) {
	f := newFixture()
	f.run(t, "int a = 1")

	tests := []struct {
		src  string
		kind exceptions.Kind
	}{
		{"var a = 2", exceptions.AlreadyDefined},
		{`string a = "x"`, exceptions.AlreadyDefined},
		{"int heap a = 3", exceptions.AlreadyDefined},
		{"bool true = false", exceptions.AlreadyDefined},
		{"int 1x = 1", exceptions.InvalidValue},
		{"int if = 1", exceptions.InvalidValue},
		{"int __sts_loop_1 = 1", exceptions.InvalidValue},
		{`int b = "text"`, exceptions.InvalidValue},
		{"float c = 1", exceptions.InvalidValue},
		{"var d", exceptions.InvalidSyntax},
		{"string e", exceptions.InvalidSyntax},
		{"int g 4", exceptions.InvalidSyntax},
		{"string h 0", exceptions.InvalidValue},
		{"var i = nope", exceptions.InvalidSyntax},
		{"list l = 1", exceptions.NotImplementedException},
		{"dictionary m", exceptions.NotImplementedException},
	}
	for _, tt := range tests {
		f.fails(t, tt.src, tt.kind)
	}
	assert.Equal(t, []string{"int a = 1;"}, f.out.Body())
}

// --- Expressions ---

func TestDeclareExpressions(t *testing.T) {
	f := newFixture()
	f.run(t, "int a = 2", "bool ready = false", `string s = "x"`)
	mark := f.mark()

	f.run(t,
		"var sum = a + 2",
		"var scaled = a * 1.5",
		"var check = a > 2 and not ready",
		"var glued = (a+1)*3",
	)
	assert.Equal(t, []string{
		"int sum = a + 2;",
		"float scaled = a * 1.5;",
		"bool check = a > 2 && ! ready;",
		"int glued = (a+1)*3;",
	}, f.emitted(mark))
	assert.Equal(t, "", f.variable(t, "sum").Value)

	f.fails(t, "var bad = s + 1", exceptions.InvalidTypeException)
	f.fails(t, `var worse = a + "1"`, exceptions.InvalidTypeException)
	f.fails(t, "var unknown = b + 1", exceptions.InvalidSyntax)
}

// --- Reassignment ---

func TestCompoundAssign(t *testing.T) {
	f := newFixture()
	f.run(t, "int a = 1", "int heap b = 2", "float r = 1.0")
	mark := f.mark()

	f.run(t, "a += 3", "b += 3", "b -= a", "r /= 2.0", "a %= 2")
	assert.Equal(t, []string{"a += 3;", "*b += 3;", "*b -= a;", "r /= 2.0;", "a %= 2;"}, f.emitted(mark))
	assert.Equal(t, "", f.variable(t, "a").Value)

	f.run(t, `string s = "x"`, "dynamic d = new Dynamic(1)")
	f.fails(t, "s += 1", exceptions.InvalidTypeException)
	f.fails(t, "d += 1", exceptions.InvalidTypeException)
	f.fails(t, "a /= 0", exceptions.DivideByZeroException)
	f.fails(t, "r /= 0.0", exceptions.DivideByZeroException)
	f.fails(t, "r %= 2.0", exceptions.InvalidTypeException)
	f.fails(t, "a += 1.5", exceptions.InvalidValue)
}

func TestReassignTypeMismatchKeepsRecord(t *testing.T) {
	f := newFixture()
	f.run(t, "int a = 1")
	f.fails(t, `a = "one"`, exceptions.InvalidValue)
	f.fails(t, "a = 1.5", exceptions.InvalidValue)

	v := f.variable(t, "a")
	assert.Equal(t, types.Integer, v.Type)
	assert.Equal(t, "1", v.Value)
}

// Heap variables are written through the pointer for their whole lifetime, stack
// variables never are.
func TestHeapStackConsistency(t *testing.T) {
	f := newFixture()
	f.run(t, "int heap h = 1", "int s = 1")
	mark := f.mark()

	for i := 0; i < 5; i++ {
		f.run(t, "h = 4", "s = 4", "h *= 2", "s *= 2")
	}
	for _, line := range f.emitted(mark) {
		switch {
		case strings.Contains(line, "h "):
			assert.True(t, strings.HasPrefix(line, "*h "), line)
		case strings.Contains(line, "s "):
			assert.True(t, strings.HasPrefix(line, "s "), line)
		}
	}
}

func TestReassignHeapString(t *testing.T) {
	f := newFixture()
	f.run(t, `string heap s = "hi"`)

	mark := f.mark()
	f.run(t, `s = "hello, world"`)
	assert.Equal(t, []string{
		"s = realloc(s, 12);",
		`memcpy(s, "hello, world", 12);`,
	}, f.emitted(mark))

	mark = f.mark()
	f.run(t, `s = "yo"`)
	assert.Equal(t, []string{
		`memcpy(s, "yo", 2);`,
		`s[2] = '\0';`,
	}, f.emitted(mark))

	v := f.variable(t, "s")
	assert.Equal(t, 12, v.Capacity)
	assert.Equal(t, 2, v.Length)
}

// Capacity never drops below the current length, growth always reallocates, and a
// shrink only reallocates past the slack margin.
func TestHeapStringCapacityProperty(t *testing.T) {
	f := newFixture()
	f.run(t, `string heap s = "x"`)

	lengths := []int{1, 5, 200, 150, 10, 80, 3, 300, 299, 0, 64, 65, 1}
	for _, n := range lengths {
		before := f.variable(t, "s").Capacity
		mark := f.mark()
		f.run(t, `s = "`+strings.Repeat("x", n)+`"`)

		v := f.variable(t, "s")
		assert.GreaterOrEqual(t, v.Capacity, v.Length)
		assert.Equal(t, n, v.Length)

		reallocated := strings.HasPrefix(f.emitted(mark)[0], "s = realloc(")
		want := n > before || before-n > reallocSlack
		assert.Equal(t, want, reallocated, "length %d from capacity %d", n, before)
	}
}

func TestReassignWithoutAutoReallocate(t *testing.T) {
	var logs bytes.Buffer
	f := newFixture(WithAutoReallocate(false), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	f.run(t, `string heap s = "hello"`, `s = "hey"`)
	assert.NotContains(t, strings.Join(f.out.Body(), "\n"), "realloc")
	assert.Contains(t, logs.String(), "level=INFO")

	exc := f.fails(t, `s = "far too long"`, exceptions.InvalidValue)
	assert.Contains(t, exc.Message, "no-auto-reallocate")
	assert.Equal(t, 5, f.variable(t, "s").Capacity)

	logs.Reset()
	f.run(t, "#define interpret ignoreInfo true", `s = "hi"`)
	assert.True(t, f.a.IgnoreInfo())
	assert.Empty(t, logs.String())
}

func TestReassignStackString(t *testing.T) {
	f := newFixture()
	f.run(t, `string s = "hello"`)
	mark := f.mark()
	f.run(t, `s = "hey"`)
	assert.Equal(t, []string{`memcpy(s, "hey", 3);`, `s[3] = '\0';`}, f.emitted(mark))

	f.fails(t, `s = "hello world"`, exceptions.InvalidValue)
}

func TestReassignDynamic(t *testing.T) {
	f := newFixture()
	f.run(t, "dynamic heap d = new Dynamic(1)", "dynamic e = new Dynamic(2)")
	mark := f.mark()
	f.run(t, "d = new Dynamic(7)", "d = e")
	assert.Equal(t, []string{"d = (void*)7;", "d = e;"}, f.emitted(mark))
}

// --- input ---

func TestInput(t *testing.T) {
	f := newFixture()
	f.run(t,
		`string heap name = input 20 ("Name: ")`,
		`int age = input(4) ("Age: ")`,
		`float heap w = input 8 ("Weight: ")`,
		`name = input 20 ("Again: ")`,
	)
	assert.Equal(t, []string{
		"char *name = (char*)malloc(20);",
		`printf("Name: ");`,
		`scanf("%19s", name);`,
		"int age;",
		`printf("Age: ");`,
		`scanf("%d", &age);`,
		"float *w = (float*)malloc(sizeof(float));",
		`printf("Weight: ");`,
		`scanf("%f", w);`,
		`printf("Again: ");`,
		`scanf("%19s", name);`,
	}, f.out.Body())
	assert.Equal(t, "", f.variable(t, "age").Value)

	f.fails(t, `input 3 ("x")`, exceptions.InvalidSyntax)
	f.fails(t, `bool ok = input 1 ("y/n")`, exceptions.InvalidTypeException)
	f.fails(t, `string bad = input ("no size")`, exceptions.InvalidSyntax)
	f.fails(t, `age += input 2 ("n")`, exceptions.InvalidSyntax)
}

// --- Control flow ---

func TestIfStringComparison(t *testing.T) {
	f := newFixture()
	f.run(t, `string a = "x"`)
	mark := f.mark()
	f.run(t, `if a == "x" then print(a) end`)
	assert.Equal(t, []string{
		`if (strcmp(a, "x") == 0)`,
		"{",
		"printf(a);",
		"}",
	}, f.emitted(mark))
	assert.Contains(t, f.out.Libraries(), "string.h")

	f.fails(t, "if a == 1 then print(a) end", exceptions.InvalidTypeException)
	f.fails(t, "if a then print(a) end", exceptions.InvalidTypeException)
}

func TestIfElseNested(t *testing.T) {
	f := newFixture()
	f.run(t, "int n = 2", "const limit = 3", "bool ready = true")
	mark := f.mark()
	f.run(t, "if n < limit && ready then if n == 2 then n = 1 else n = 0 end && n += 1 else n = 5 end")
	assert.Equal(t, []string{
		"if (n < 3 && ready)",
		"{",
		"if (n == 2)",
		"{",
		"n = 1;",
		"} else {",
		"n = 0;",
		"}",
		"n += 1;",
		"} else {",
		"n = 5;",
		"}",
	}, f.emitted(mark))

	rendered := f.out.Render()
	assert.Contains(t, rendered, "\tif (n < 3 && ready)\n\t{\n\t\tif (n == 2)\n\t\t{\n\t\t\tn = 1;\n")
}

func TestIfOr(t *testing.T) {
	f := newFixture()
	f.run(t, "int n = 2")
	mark := f.mark()
	f.run(t, "if n == 1 or n == 2 then exit(1) end")
	assert.Equal(t, "if (n == 1 || n == 2)", f.emitted(mark)[0])
}

func TestSwitch(t *testing.T) {
	f := newFixture()
	f.run(t, "int n = 2")
	mark := f.mark()
	f.run(t, `switch n case 1: print("one") break default: print("many") break case 'c': n = 3 && n += 1 break end`)
	assert.Equal(t, []string{
		"switch (n)",
		"{",
		"case 1:",
		`printf("one");`,
		"break;",
		"default:",
		`printf("many");`,
		"break;",
		"case 'c':",
		"n = 3;",
		"n += 1;",
		"break;",
		"}",
	}, f.emitted(mark))

	f.run(t, `string s = "a"`, "int m = 1")
	f.fails(t, `switch s case 1: n = 1 break end`, exceptions.InvalidTypeException)
	f.fails(t, `switch n case m: n = 1 break end`, exceptions.InvalidValue)
	f.fails(t, `switch n case 1.5: n = 1 break end`, exceptions.InvalidTypeException)
}

func TestLoopCounters(t *testing.T) {
	f := newFixture()
	f.run(t, "int a = 0")
	mark := f.mark()
	f.run(t, "loopfor 2 loopfor 3 a += 1 end end", "loopfor 1 a -= 1 end")
	assert.Equal(t, []string{
		"for (int __sts_loop_1 = 0; __sts_loop_1 < 2; __sts_loop_1++) {",
		"for (int __sts_loop_2 = 0; __sts_loop_2 < 3; __sts_loop_2++) {",
		"a += 1;",
		"}",
		"}",
		"for (int __sts_loop_3 = 0; __sts_loop_3 < 1; __sts_loop_3++) {",
		"a -= 1;",
		"}",
	}, f.emitted(mark))

	f.fails(t, "loopfor 2.5 a += 1 end", exceptions.InvalidValue)
}

func TestBlockErrorsCarryLine(t *testing.T) {
	f := newFixture()
	f.run(t, "int a = 1")
	exc := f.fails(t, "loopfor 2 if a > 0 then del a end end", exceptions.InvalidValue)
	assert.Equal(t, f.line, exc.Line)
	assert.Equal(t, "The variable a is not heap allocated.", exc.Message)
}

// --- Builtins ---

func TestDelete(t *testing.T) {
	f := newFixture()
	f.run(t, "int heap a = 1", "int b = 2")
	mark := f.mark()
	f.run(t, "del a")
	assert.Equal(t, []string{"free(a);"}, f.emitted(mark))

	exc := f.fails(t, "del b", exceptions.InvalidValue)
	assert.Contains(t, exc.Message, "b")

	f.fails(t, "del a", exceptions.NotDefinedException)
	f.fails(t, "del c", exceptions.NotDefinedException)
	f.fails(t, "a = 2", exceptions.NotDefinedException)
	f.fails(t, "var x = a", exceptions.NotDefinedException)
	f.fails(t, "var y = a + 1", exceptions.NotDefinedException)
	f.fails(t, "int heap a = 1", exceptions.AlreadyDefined)
}

func TestThrow(t *testing.T) {
	f := newFixture()
	f.run(t,
		`throw NotDefinedException "missing"`,
		`throw GeneralException "it said \"no\"\n"`,
		"throw InvalidSyntax",
	)
	assert.Equal(t, []string{
		`raiseException(103, "missing");`,
		`raiseException(104, "it said \"no\"\n");`,
		`raiseException(100, "No Description provided");`,
	}, f.out.Body())

	exc := f.fails(t, "throw Oops", exceptions.InvalidValue)
	assert.Equal(t, "The Exception entered is not defined", exc.Message)
}

func TestPrintAndExit(t *testing.T) {
	f := newFixture()
	f.run(t, `print("%d items\n", 3)`, "exit(2)", "exit (0)")
	assert.Equal(t, []string{`printf("%d items\n", 3);`, "exit(2);", "exit(0);"}, f.out.Body())

	f.fails(t, "print()", exceptions.InvalidSyntax)
	f.fails(t, `print "x"`, exceptions.InvalidSyntax)
	exc := f.fails(t, "exit()", exceptions.InvalidValue)
	assert.Equal(t, `Parameter "status" (int) required.`, exc.Message)
	exc = f.fails(t, `exit("1")`, exceptions.InvalidValue)
	assert.Equal(t, "Exit code can only be integer.", exc.Message)
	f.fails(t, "exit(1.5)", exceptions.InvalidValue)
}

func TestPragma(t *testing.T) {
	f := newFixture()
	f.run(t, "#define interpret ignoreInfo true")
	assert.True(t, f.a.IgnoreInfo())
	f.run(t, "#define interpet ignoreInfo false")
	assert.False(t, f.a.IgnoreInfo())
	assert.Empty(t, f.out.Body())

	exc := f.fails(t, "#define interpret", exceptions.InvalidValue)
	assert.Equal(t, "You needed to describe what you will change.", exc.Message)
	f.fails(t, "#define interpret verbose true", exceptions.InvalidValue)
	f.fails(t, "#define interpret ignoreInfo maybe", exceptions.InvalidValue)
}

func TestFunctionsAndCalls(t *testing.T) {
	f := newFixture()
	f.run(t, `func greet(who, times) print("hi") end`, `greet("you", 2)`)
	assert.Equal(t, []string{`greet("you", 2)`}, f.out.Body())

	fn, ok := f.table.LookupFunction("greet")
	require.True(t, ok)
	assert.Equal(t, 2, fn.Arity())

	f.fails(t, "greet(1)", exceptions.InvalidSyntax)
	f.fails(t, "func greet() end", exceptions.AlreadyDefined)
	f.fails(t, "int greet = 1", exceptions.AlreadyDefined)
	f.fails(t, "func 2x() end", exceptions.InvalidValue)
}

func TestPassThroughAndChaining(t *testing.T) {
	f := newFixture()
	f.run(t,
		"// keep && this",
		"int a = 1 && a += 2 && puts(\"x\");",
		"a += 1 && printf(\"%d\", a);",
	)
	assert.Equal(t, []string{
		"// keep && this",
		"int a = 1;",
		"a += 2;",
		`puts("x");`,
		"a += 1;",
		`printf("%d", a);`,
	}, f.out.Body())

	f.fails(t, "a++;", exceptions.InvalidSyntax)
}

func TestConjunctionInValue(t *testing.T) {
	f := newFixture()
	f.run(t,
		"int a = 1 && int b = 2",
		"bool c = a > 1 && b > 2",
		"c = a < b && b > 0 && print(\"done\")",
	)
	assert.Equal(t, []string{
		"int a = 1;",
		"int b = 2;",
		"bool c = a > 1 && b > 2;",
		"c = a < b && b > 0;",
		`printf("done");`,
	}, f.out.Body())
	assert.Equal(t, types.Boolean, f.variable(t, "c").Type)

	f.fails(t, "b > 2", exceptions.InvalidSyntax)
}

func TestStrayKeywords(t *testing.T) {
	f := newFixture()
	f.fails(t, "end", exceptions.InvalidSyntax)
	f.fails(t, "namespace x", exceptions.NotImplementedException)
}

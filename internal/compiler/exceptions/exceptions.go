// Package exceptions defines the exception kinds shared by compile-time diagnostics
// and the emitted runtime raiseException routine.
package exceptions

import "fmt"

// Kind identifies an exception. Each kind has a fixed numeric code used by the
// generated program.
type Kind int

const (
	InvalidSyntax Kind = iota
	AlreadyDefined
	NotImplementedException
	NotDefinedException
	GeneralException
	DivideByZeroException
	InvalidValue
	InvalidTypeException
)

const baseCode = 100

var kindNames = []string{
	"InvalidSyntax",
	"AlreadyDefined",
	"NotImplementedException",
	"NotDefinedException",
	"GeneralException",
	"DivideByZeroException",
	"InvalidValue",
	"InvalidTypeException",
}

// All returns every kind in code order.
func All() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Code is the exit status the generated program uses for k.
func (k Kind) Code() int {
	return baseCode + int(k)
}

// Lookup finds a kind by its source-level name.
func Lookup(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Error is a compile-time diagnostic. Analysis operations return it as a soft result;
// the driver attaches the line number and aborts the run.
type Error struct {
	Kind    Kind
	Message string
	Line    int
}

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AtLine records the source line if none is set yet and returns e.
func (e *Error) AtLine(line int) *Error {
	if e.Line == 0 {
		e.Line = line
	}
	return e
}

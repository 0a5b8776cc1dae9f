// Package diag defines the three line-tagged failure surfaces of the
// transpiler: parse errors, unsupported-construct rejections, and adjuster
// non-convergence. None of them recover silently.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies which of the three failure surfaces produced a Diagnostic.
type Kind int

const (
	ParseError Kind = iota
	UnsupportedConstruct
	AdjusterNonConvergence
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case UnsupportedConstruct:
		return "unsupported construct"
	case AdjusterNonConvergence:
		return "cannot automatically translate"
	default:
		return "unknown"
	}
}

// Diagnostic is a line-tagged, user-facing failure. It wraps an underlying
// cause (possibly nil) with github.com/pkg/errors so a stack trace survives
// to the CLI boundary without the core packages importing the CLI.
type Diagnostic struct {
	Kind    Kind
	Line    int
	Message string
	cause   error
}

func (d *Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.cause }

// New builds a Diagnostic with no underlying cause.
func New(kind Kind, line int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Diagnostic to an existing error, preserving its stack via
// pkg/errors.
func Wrap(err error, kind Kind, line int, format string, args ...interface{}) *Diagnostic {
	msg := fmt.Sprintf(format, args...)
	return &Diagnostic{
		Kind:    kind,
		Line:    line,
		Message: msg,
		cause:   errors.Wrapf(err, "line %d", line),
	}
}

// ExpectedThing is the parse-level diagnostic for a malformed token sequence.
func ExpectedThing(line int, want, got string) *Diagnostic {
	return New(ParseError, line, "expected %s, got %q", want, got)
}

// UndeclaredID is the parse-level diagnostic for a use of an unknown identifier.
func UndeclaredID(line int, name string) *Diagnostic {
	return New(ParseError, line, "undeclared identifier %q", name)
}

// Unsupported reports a construct the analyzer cannot model, per spec.md §7.2:
// address of a non-lvalue, dereference of a non-pointer expression, more than
// one identifier inside a single address-of, multi-identifier deref targets.
func Unsupported(line int, format string, args ...interface{}) *Diagnostic {
	return New(UnsupportedConstruct, line, format, args...)
}

// NonConvergent reports that the adjuster's error set did not strictly shrink
// between passes; remaining is the error count still outstanding.
func NonConvergent(line int, remaining int) *Diagnostic {
	return New(AdjusterNonConvergence, line,
		"cannot automatically translate; manual intervention required (%d error(s) remaining)", remaining)
}

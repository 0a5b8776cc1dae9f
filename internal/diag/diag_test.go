package diag

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIncludesLineWhenPositive(t *testing.T) {
	d := New(ParseError, 12, "expected %s, got %q", "';'", "}")
	assert.Equal(t, `line 12: parse error: expected ';', got "}"`, d.Error())
}

func TestErrorOmitsLineWhenZero(t *testing.T) {
	d := New(AdjusterNonConvergence, 0, "cannot automatically translate; manual intervention required (3 error(s) remaining)")
	assert.Equal(t, "cannot automatically translate: cannot automatically translate; manual intervention required (3 error(s) remaining)", d.Error())
}

func TestWrapPreservesCauseViaUnwrap(t *testing.T) {
	cause := errors.New("boom")
	d := Wrap(cause, UnsupportedConstruct, 7, "dereference of a non-pointer expression")

	assert.Equal(t, `line 7: unsupported construct: dereference of a non-pointer expression`, d.Error())
	require.NotNil(t, d.Unwrap())
	assert.Contains(t, d.Unwrap().Error(), "boom")
	assert.Contains(t, pkgerrors.Cause(d.Unwrap()).Error(), "boom")
}

func TestExpectedThingFormatsWantAndGot(t *testing.T) {
	d := ExpectedThing(3, "identifier", "42")
	assert.Equal(t, ParseError, d.Kind)
	assert.Equal(t, 3, d.Line)
	assert.Contains(t, d.Error(), `expected identifier, got "42"`)
}

func TestUndeclaredIDNamesTheIdentifier(t *testing.T) {
	d := UndeclaredID(9, "foo")
	assert.Equal(t, ParseError, d.Kind)
	assert.Contains(t, d.Error(), `undeclared identifier "foo"`)
}

func TestUnsupportedUsesUnsupportedConstructKind(t *testing.T) {
	d := Unsupported(4, "address of a non-lvalue")
	assert.Equal(t, UnsupportedConstruct, d.Kind)
	assert.Contains(t, d.Error(), "address of a non-lvalue")
}

func TestNonConvergentReportsRemainingCount(t *testing.T) {
	d := NonConvergent(0, 2)
	assert.Equal(t, AdjusterNonConvergence, d.Kind)
	assert.Contains(t, d.Error(), "2 error(s) remaining")
}

func TestKindStringCoversAllThreeKinds(t *testing.T) {
	assert.Equal(t, "parse error", ParseError.String())
	assert.Equal(t, "unsupported construct", UnsupportedConstruct.String())
	assert.Equal(t, "cannot automatically translate", AdjusterNonConvergence.String())
}

package main

import (
	"flag"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonderc/internal/diag"
)

// withArgs parses args into flag.CommandLine's positional args and swaps fs
// for an in-memory filesystem for the duration of fn, restoring the previous
// fs afterward. The parsed argument list is not restored.
func withArgs(t *testing.T, args []string, fn func()) {
	t.Helper()
	prevFs := fs
	fs = afero.NewMemMapFs()
	defer func() { fs = prevFs }()

	require.NoError(t, flag.CommandLine.Parse(args))
	fn()
}

func TestReadInputReadsNamedFileViaFs(t *testing.T) {
	withArgs(t, []string{"input.c"}, func() {
		require.NoError(t, afero.WriteFile(fs, "input.c", []byte("int main(){ int n=0; }"), 0o644))

		got, err := readInput()
		require.NoError(t, err)
		assert.Equal(t, "int main(){ int n=0; }", got)
	})
}

func TestReadInputReturnsErrorForMissingFile(t *testing.T) {
	withArgs(t, []string{"missing.c"}, func() {
		_, err := readInput()
		assert.Error(t, err)
	})
}

func TestWriteOutputWritesToNamedFileViaFs(t *testing.T) {
	withArgs(t, nil, func() {
		*outputFile = "out.rs"
		defer func() { *outputFile = "" }()

		require.NoError(t, writeOutput("fn main() {}"))

		data, err := afero.ReadFile(fs, "out.rs")
		require.NoError(t, err)
		assert.Equal(t, "fn main() {}", string(data))
	})
}

func TestAsDiagnosticReturnsOutermostDiagnostic(t *testing.T) {
	inner := diag.New(diag.ParseError, 4, "expected ';'")
	wrapped := diag.Wrap(inner, diag.UnsupportedConstruct, 4, "outer context")

	var d *diag.Diagnostic
	assert.True(t, asDiagnostic(wrapped, &d))
	assert.Equal(t, wrapped, d)
}

func TestAsDiagnosticFalseForPlainError(t *testing.T) {
	var d *diag.Diagnostic
	assert.False(t, asDiagnostic(assertionError{}, &d))
}

type assertionError struct{}

func (assertionError) Error() string { return "not a diagnostic" }

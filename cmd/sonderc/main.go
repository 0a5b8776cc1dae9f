// Command sonderc translates a supported C subset into Rust, choosing the
// weakest ownership discipline (shared immutable borrow, exclusive mutable
// borrow, raw pointer, or Rc<RefCell<_>>) that keeps every aliasing pattern
// in the source sound.
//
// The flag set and stdin/file input selection are grounded on the teacher
// CLI's main.go (-o output file, -v verbose, filename-or-stdin input), with
// -c/-interp/-e/-runtime dropped since this tool has exactly one mode.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"sonderc/internal/diag"
	"sonderc/internal/pipeline"
)

var (
	outputFile = flag.String("o", "", "Output file (default: stdout)")
	verbose    = flag.Bool("v", false, "Verbose logging")
)

var fs afero.Fs = afero.NewOsFs()

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sonderc - C-subset to Rust ownership transpiler\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [file.c]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nWith no file argument, reads from stdin.\n")
	}
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	input, err := readInput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
		os.Exit(1)
	}

	result, err := pipeline.Translate(input, log)
	if err != nil {
		reportFailure(err)
		os.Exit(1)
	}

	if err := writeOutput(result.Source); err != nil {
		fmt.Fprintf(os.Stderr, "error writing output: %v\n", err)
		os.Exit(1)
	}
}

func readInput() (string, error) {
	if flag.NArg() > 0 {
		data, err := afero.ReadFile(fs, flag.Arg(0))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeOutput(rust string) error {
	if *outputFile == "" {
		_, err := fmt.Fprint(os.Stdout, rust)
		return err
	}
	return afero.WriteFile(fs, *outputFile, []byte(rust), 0o644)
}

// reportFailure prints a line-tagged diagnostic when the pipeline's error is
// one of the three documented failure surfaces, falling back to a plain
// message otherwise (spec.md §9's three-failure-surface contract).
func reportFailure(err error) {
	var d *diag.Diagnostic
	if asDiagnostic(err, &d) {
		fmt.Fprintf(os.Stderr, "sonderc: %s\n", d.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "sonderc: %v\n", err)
}

func asDiagnostic(err error, target **diag.Diagnostic) bool {
	for err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			*target = d
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

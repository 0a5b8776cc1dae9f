// Package pipeline wires the boundary adapters and the analysis core into
// the single driver spec.md §7 describes: parse, adjust to a fixed point,
// annotate, then emit. Every stage's errors are logged at Debug/Warn level
// via logrus before being returned, mirroring purple_go's compiler.go
// driver which logs each compilation phase as it runs rather than staying
// silent until a final result.
package pipeline

import (
	"bytes"

	"github.com/sirupsen/logrus"

	"sonderc/internal/adjuster"
	"sonderc/internal/annotator"
	"sonderc/internal/cast"
	"sonderc/internal/cparse"
	"sonderc/internal/emit"
	"sonderc/internal/runtimelib"
)

// Result is the complete output of a translation run.
type Result struct {
	Source     string
	Iterations int
}

// Translate parses src as the supported C subset and returns the
// corresponding Rust translation unit.
func Translate(src string, log *logrus.Logger) (*Result, error) {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}

	log.Debug("parsing source")
	prog, err := cparse.Parse(src)
	if err != nil {
		log.WithError(err).Warn("parse failed")
		return nil, err
	}

	log.Debug("running analyzer/checker/adjuster fixed-point loop")
	adj, err := adjuster.Run(prog, log)
	if err != nil {
		log.WithError(err).Warn("adjuster did not converge")
		return nil, err
	}
	log.WithField("iterations", adj.Iterations).Info("fixed point reached")

	log.Debug("annotating AST")
	ap := annotator.Annotate(adj.Program, adj.Ctx)

	rtConfig := runtimelib.NewConfig()
	cast.WalkProgram(adj.Program, func(n *cast.Node) bool {
		if n.Kind == cast.KCall {
			rtConfig.Need(n.Callee)
		}
		return true
	})

	var buf bytes.Buffer
	if err := emit.Emit(&buf, adj.Program, ap); err != nil {
		log.WithError(err).Warn("emit failed")
		return nil, err
	}
	if err := runtimelib.Generate(&buf, rtConfig); err != nil {
		log.WithError(err).Warn("runtime fragment emission failed")
		return nil, err
	}

	return &Result{Source: buf.String(), Iterations: adj.Iterations}, nil
}

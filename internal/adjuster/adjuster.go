// Package adjuster implements spec.md §4.3: the fixed-point engine that
// turns a BorrowError set into edits on an AnalysisContext (and, for
// insert_clone, the AST), then re-runs the analyzer and checker until the
// error set is empty or the fixed-point contract is violated.
//
// The cascading-ownership-propagation shape of set_rc is grounded on
// purple_go/pkg/analysis/ownership.go's OwnershipContext.TransferOwnership /
// ShareOwnership pair, which likewise flips a variable's class and lets that
// decision ripple to related bindings rather than staying purely local.
package adjuster

import (
	"sort"

	"github.com/sirupsen/logrus"

	"sonderc/internal/analyzer"
	"sonderc/internal/cast"
	"sonderc/internal/checker"
	"sonderc/internal/ctx"
	"sonderc/internal/diag"
)

// MaxIterations is the safety-belt cap of spec.md §4.3.
const MaxIterations = 8

// Result is the adjuster's final state: a converged (possibly unchanged)
// AnalysisContext and the (possibly edited) AST it corresponds to.
type Result struct {
	Ctx        *ctx.AnalysisContext
	Program    *cast.Program
	Iterations int
}

// Run drives the analyzer+checker+adjuster loop to a fixed point.
func Run(prog *cast.Program, log *logrus.Logger) (*Result, error) {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}

	c, errs := analyzer.AnalyzeProgram(prog)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	prevCount := -1
	for iter := 1; iter <= MaxIterations; iter++ {
		berrs := checker.Check(c)
		log.WithFields(logrus.Fields{"iteration": iter, "errors": len(berrs)}).Debug("adjuster pass")

		if len(berrs) == 0 {
			return &Result{Ctx: c, Program: prog, Iterations: iter}, nil
		}
		if prevCount >= 0 && len(berrs) >= prevCount {
			return nil, diag.NonConvergent(0, len(berrs))
		}
		prevCount = len(berrs)

		rc, raw, clones := partition(c, berrs)

		for _, v := range rc {
			setRC(c, v)
		}
		for _, pr := range raw {
			setRaw(c, pr.p1)
			setRaw(c, pr.p2)
		}

		if len(clones) > 0 {
			for _, cl := range clones {
				insertClone(prog, c, cl.v, cl.sites)
			}
			// insert_clone mutates the AST and forces a full restart: the
			// cloned variable has its own VarData, unreachable without
			// re-walking from scratch.
			c, errs = analyzer.AnalyzeProgram(prog)
			if len(errs) > 0 {
				return nil, errs[0]
			}
			continue
		}
	}

	final := checker.Check(c)
	return nil, diag.NonConvergent(0, len(final))
}

type rawPair struct{ p1, p2 ctx.VarID }
type clonePlan struct {
	v     ctx.VarID
	sites []int
}

// partition groups one pass's errors by edit primitive, in the order
// spec.md §4.3 mandates: set_rc first (they commute), then set_raw, then
// insert_clone.
func partition(c *ctx.AnalysisContext, errs []checker.BorrowError) (rc []ctx.VarID, raw []rawPair, clones []clonePlan) {
	seenRC := make(map[ctx.VarID]bool)
	seenRawPair := make(map[[2]ctx.VarID]bool)
	cloneSites := make(map[ctx.VarID][]int)
	cloneOrder := make([]ctx.VarID, 0)

	for _, e := range errs {
		switch e.Kind {
		case checker.MutMutOverlap, checker.MutConstOverlap, checker.ValueMutOverlap, checker.ValueConstOverlap:
			if !seenRC[e.V] {
				seenRC[e.V] = true
				rc = append(rc, e.V)
			}
		case checker.MutMutSameLine, checker.MutConstSameLine:
			e1, e2 := c.Edge(e.P1), c.Edge(e.P2)
			if e1 == nil || e2 == nil {
				continue
			}
			key := pairKey(e1.Borrower, e2.Borrower)
			if !seenRawPair[key] {
				seenRawPair[key] = true
				raw = append(raw, rawPair{p1: e1.Borrower, p2: e2.Borrower})
			}
		case checker.ValueMutSameLine, checker.ValueConstSameLine:
			if _, ok := cloneSites[e.V]; !ok {
				cloneOrder = append(cloneOrder, e.V)
			}
			cloneSites[e.V] = append(cloneSites[e.V], e.Sites...)
		}
	}

	for _, v := range cloneOrder {
		sites := dedupeSorted(cloneSites[v])
		clones = append(clones, clonePlan{v: v, sites: sites})
	}
	return rc, raw, clones
}

func pairKey(a, b ctx.VarID) [2]ctx.VarID {
	if a > b {
		a, b = b, a
	}
	return [2]ctx.VarID{a, b}
}

func dedupeSorted(xs []int) []int {
	seen := make(map[int]bool)
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}

// setRC implements set_rc(v): spec.md §4.3. Marks v as requiring shared
// interior mutability, clears its direct-mutation flag (mutation moves
// inside the wrapper), promotes every incoming edge to RcRefClone, and
// cascades to each borrower's own incoming edges so the wrapper discipline
// propagates up the pointer chain (the spec's documented safe default).
func setRC(c *ctx.AnalysisContext, v ctx.VarID) {
	cascadeRC(c, v, MaxIterations)
}

func cascadeRC(c *ctx.AnalysisContext, v ctx.VarID, depth int) {
	if depth <= 0 {
		return
	}
	vd := c.Var(v)
	if vd == nil || vd.RC {
		return
	}
	vd.RC = true
	vd.IsMut = false

	for _, id := range vd.PointedTo {
		e := c.Edge(id)
		if e == nil {
			continue
		}
		e.Kind = ctx.RcRefClone
		cascadeRC(c, e.Borrower, depth-1)
	}
}

// setRaw implements set_raw(p): demotes every outgoing edge of p to MutPtr
// or ConstPtr according to whether the edge was previously mutable.
func setRaw(c *ctx.AnalysisContext, p ctx.VarID) {
	vd := c.Var(p)
	if vd == nil {
		return
	}
	for _, id := range vd.PointsTo {
		e := c.Edge(id)
		if e == nil {
			continue
		}
		if e.Kind.IsMutableKind() {
			e.Kind = ctx.MutPtr
		} else {
			e.Kind = ctx.ConstPtr
		}
	}
}

// insertClone implements insert_clone(v, sites): synthesizes `v_clone = v`
// immediately after v's own declaration and rewrites the identifier at each
// conflicting site from v to v_clone.
//
// The clone is placed right after the declaration, not immediately before
// the earliest conflicting site: every existing statement keeps its original
// source line, so a synthetic declaration sharing a conflicting site's line
// would immediately recreate the very conflict it exists to remove (its own
// `= v` initializer is itself a use of v on that line). Placing it at the
// declaration instead, and shifting every later line down by one to make
// room, guarantees the clone's read of v happens strictly before any borrow
// of v that the original sites could possibly be contending with.
func insertClone(prog *cast.Program, c *ctx.AnalysisContext, v ctx.VarID, sites []int) {
	if len(sites) == 0 {
		return
	}
	vd := c.Var(v)
	if vd == nil {
		return
	}
	cloneName := vd.Name + "_clone"

	declLine := findDeclLine(prog, vd.Name)
	insertAt := declLine + 1

	// Rename against the original line numbers before shifting anything --
	// shiftLinesFrom below renumbers every node at or after insertAt,
	// including the conflicting sites themselves.
	siteSet := make(map[int]bool, len(sites))
	for _, s := range sites {
		siteSet[s] = true
	}
	cast.WalkProgram(prog, func(n *cast.Node) bool {
		if n.Kind == cast.KIdent && n.Name == vd.Name && siteSet[n.Line] {
			n.Name = cloneName
		}
		return true
	})

	shiftLinesFrom(prog, insertAt)

	decl := &cast.Node{
		Kind:     cast.KScalarDecl,
		Name:     cloneName,
		Line:     insertAt,
		DeclType: vd.Type,
		RHS:      &cast.Node{Kind: cast.KIdent, Name: vd.Name, Line: insertAt},
	}
	if isPointerType(vd.Type) {
		decl.Kind = cast.KPtrDecl
	}

	if !insertBefore(&prog.Statements, insertAt, decl) {
		prog.Statements = append(prog.Statements, decl)
	}
}

// findDeclLine returns the source line of name's declaring statement, or 0
// if none is found (defensively; every analyzed variable has one).
func findDeclLine(prog *cast.Program, name string) int {
	line := 0
	cast.WalkProgram(prog, func(n *cast.Node) bool {
		switch n.Kind {
		case cast.KScalarDecl, cast.KArrayDecl, cast.KPtrDecl, cast.KStructDecl:
			if n.Name == name {
				line = n.Line
				return false
			}
		}
		return true
	})
	return line
}

// shiftLinesFrom increments the Line of every node at or after from by one,
// opening up a fresh line number for a synthetic statement to occupy.
func shiftLinesFrom(prog *cast.Program, from int) {
	cast.WalkProgram(prog, func(n *cast.Node) bool {
		if n.Line >= from {
			n.Line++
		}
		return true
	})
}

func isPointerType(t cast.CType) bool { return t.PtrDepth > 0 }

// insertBefore finds the first statement at or after line in nodes (or a
// nested block reachable from them) and inserts newStmt immediately before
// it, per §9's "AST mutation during adjustment" design note: in-place
// sibling insertion, preserving every other node's line number. It reports
// whether such a statement was found; when none is, nothing is inserted.
func insertBefore(nodes *[]*cast.Node, line int, newStmt *cast.Node) bool {
	for i, s := range *nodes {
		if s.Line >= line {
			out := make([]*cast.Node, 0, len(*nodes)+1)
			out = append(out, (*nodes)[:i]...)
			out = append(out, newStmt)
			out = append(out, (*nodes)[i:]...)
			*nodes = out
			return true
		}
		if recurseInsert(s, line, newStmt) {
			return true
		}
	}
	return false
}

func recurseInsert(s *cast.Node, line int, newStmt *cast.Node) bool {
	switch s.Kind {
	case cast.KBlock:
		return insertBefore(&s.Children, line, newStmt)
	case cast.KIf:
		if s.Then != nil && insertBefore(&s.Then.Children, line, newStmt) {
			return true
		}
		if s.Else != nil {
			return insertBefore(&s.Else.Children, line, newStmt)
		}
	case cast.KWhile:
		if s.Body != nil {
			return insertBefore(&s.Body.Children, line, newStmt)
		}
	case cast.KFor:
		if s.Body != nil {
			return insertBefore(&s.Body.Children, line, newStmt)
		}
	}
	return false
}

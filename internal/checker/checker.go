// Package checker implements spec.md §4.2: a read-only pass over an
// AnalysisContext that classifies every aliasing conflict into a BorrowError.
// The checker never fails -- a malformed context is a program bug, not a
// user error (spec.md §4.2's "Failure semantics").
package checker

import "sonderc/internal/ctx"

// ErrorKind names one of the eight conflict shapes of spec.md §4.2's table.
type ErrorKind int

const (
	MutMutOverlap ErrorKind = iota
	MutConstOverlap
	MutMutSameLine
	MutConstSameLine
	ValueMutOverlap
	ValueConstOverlap
	ValueMutSameLine
	ValueConstSameLine
)

func (k ErrorKind) String() string {
	switch k {
	case MutMutOverlap:
		return "MutMutOverlap"
	case MutConstOverlap:
		return "MutConstOverlap"
	case MutMutSameLine:
		return "MutMutSameLine"
	case MutConstSameLine:
		return "MutConstSameLine"
	case ValueMutOverlap:
		return "ValueMutOverlap"
	case ValueConstOverlap:
		return "ValueConstOverlap"
	case ValueMutSameLine:
		return "ValueMutSameLine"
	case ValueConstSameLine:
		return "ValueConstSameLine"
	default:
		return "unknown"
	}
}

// BorrowError is one detected conflict. P1/P2 are the edges in conflict for
// the four reference-vs-reference kinds; P1 and V are the edge/variable for
// the four value-vs-reference kinds (V is also set for the pair kinds). Sites holds the AST usage lines the
// adjuster's insert_clone must rewrite for the two *SameLine value kinds.
type BorrowError struct {
	Kind  ErrorKind
	P1    ctx.EdgeID
	P2    ctx.EdgeID
	V     ctx.VarID
	Sites []int
}

// overlapKind is the result of comparing two inclusive line ranges, per
// spec.md §4.2's overlap predicate.
type overlapKind int

const (
	noOverlap overlapKind = iota
	sameLine
	strictOverlap
)

// compareRanges implements the symmetric overlap predicate: SameLine if a
// boundary coincides, Overlap on strict interior overlap, NoOverlap
// otherwise.
func compareRanges(a, b, c, d int) overlapKind {
	if a == d || c == b {
		return sameLine
	}
	if a < d && c < b {
		return strictOverlap
	}
	return noOverlap
}

// compareValueToPointer implements the asymmetric value-vs-pointer form:
// ptr.start == value.end is legal ("take reference then value expires"),
// not a conflict.
func compareValueToPointer(valueStart, valueEnd, ptrStart, ptrEnd int) overlapKind {
	if ptrStart == valueEnd {
		return noOverlap
	}
	if valueStart == ptrEnd {
		return sameLine
	}
	if valueStart < ptrEnd && ptrStart < valueEnd {
		return strictOverlap
	}
	return noOverlap
}

// Check runs the borrow checker over c and returns every BorrowError found,
// in a deterministic order (variables in declaration order, then edge pairs
// in edge-arena creation order).
func Check(c *ctx.AnalysisContext) []BorrowError {
	var errs []BorrowError
	for _, v := range c.Vars() {
		errs = append(errs, checkVar(c, v)...)
	}
	return errs
}

func checkVar(c *ctx.AnalysisContext, v *ctx.VarData) []BorrowError {
	var errs []BorrowError

	incoming := make([]*ctx.Reference, 0, len(v.PointedTo))
	for _, id := range v.PointedTo {
		if e := c.Edge(id); e != nil {
			incoming = append(incoming, e)
		}
	}

	// Reference-vs-reference conflicts: every unordered pair of distinct
	// incoming edges.
	for i := 0; i < len(incoming); i++ {
		for j := i + 1; j < len(incoming); j++ {
			e1, e2 := incoming[i], incoming[j]
			errs = append(errs, pairConflict(v.ID, e1, e2)...)
		}
	}

	// Value-vs-reference conflicts: the variable's own non-borrowed-through
	// usages against each mutable/const incoming edge.
	for _, e := range incoming {
		errs = append(errs, valueConflict(v, e)...)
	}

	return errs
}

func pairConflict(v ctx.VarID, e1, e2 *ctx.Reference) []BorrowError {
	if e1.Kind.IsRaw() || e2.Kind.IsRaw() {
		// A raw edge is no longer borrow-checked: demotion by set_raw is what
		// resolves the two *SameLine pair kinds.
		return nil
	}
	bothMut :=e1.Kind.IsMutableKind() && e2.Kind.IsMutableKind()
	oneMutOneConst := e1.Kind.IsMutableKind() != e2.Kind.IsMutableKind()
	if !bothMut && !oneMutOneConst {
		// Two const/shared borrows overlapping is legal (spec.md §9's open
		// question, resolved: asserted legal, not merely unchecked).
		return nil
	}
	ov := compareRanges(e1.Start, e1.End, e2.Start, e2.End)
	switch ov {
	case sameLine:
		if bothMut {
			return []BorrowError{{Kind: MutMutSameLine, P1: e1.ID, P2: e2.ID, V: v}}
		}
		return []BorrowError{{Kind: MutConstSameLine, P1: e1.ID, P2: e2.ID, V: v}}
	case strictOverlap:
		if bothMut {
			return []BorrowError{{Kind: MutMutOverlap, P1: e1.ID, P2: e2.ID, V: v}}
		}
		return []BorrowError{{Kind: MutConstOverlap, P1: e1.ID, P2: e2.ID, V: v}}
	default:
		return nil
	}
}

// valueConflict compares v's own direct usages (not through any of its own
// outgoing edges -- v is being read/written as a value, not as a borrower)
// against one incoming edge e.
func valueConflict(v *ctx.VarData, e *ctx.Reference) []BorrowError {
	if e.Kind == ctx.RcRefClone {
		// Shared interior mutability: access is runtime-checked by RefCell,
		// so the static value-vs-reference conflict no longer applies.
		return nil
	}

	var errs []BorrowError
	var sameLineSites []int
	var sawOverlap, sawSameLine bool

	seen := make(map[int]bool)
	for _, u := range v.Usages {
		if u.ViaEdge == e.ID {
			continue // this usage IS the access e models, not a second one
		}
		ov := compareValueToPointer(u.Line, u.Line, e.Start, e.End)
		switch ov {
		case sameLine:
			sawSameLine = true
			if !seen[u.Line] {
				seen[u.Line] = true
				sameLineSites = append(sameLineSites, u.Line)
			}
		case strictOverlap:
			sawOverlap = true
		}
	}

	if sawSameLine {
		if e.Kind.IsMutableKind() {
			errs = append(errs, BorrowError{Kind: ValueMutSameLine, P1: e.ID, V: v.ID, Sites: sameLineSites})
		} else {
			errs = append(errs, BorrowError{Kind: ValueConstSameLine, P1: e.ID, V: v.ID, Sites: sameLineSites})
		}
		return errs // same-line subsumes the overlap case for these sites.
	}
	if sawOverlap {
		if e.Kind.IsMutableKind() {
			errs = append(errs, BorrowError{Kind: ValueMutOverlap, P1: e.ID, V: v.ID})
		} else {
			errs = append(errs, BorrowError{Kind: ValueConstOverlap, P1: e.ID, V: v.ID})
		}
	}
	return errs
}

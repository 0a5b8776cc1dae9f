// Package annotator implements spec.md §4.4: a read-only re-walk of the
// final AnalysisContext and (possibly adjuster-edited) AST that decorates
// every pointer-relevant node with its resolved ownership kind. It makes no
// new decisions -- every choice already lives in the AnalysisContext.
package annotator

import (
	"sort"

	"sonderc/internal/cast"
	"sonderc/internal/ctx"
)

// Declaration decorates a scalar/array/struct declaration.
type Declaration struct {
	Node  *cast.Node
	ID    string
	IsMut bool
	Type  cast.CType
	RC    bool
}

// PtrDeclaration decorates a pointer declaration with the full chain of
// edge kinds from outermost pointer to leaf referent.
type PtrDeclaration struct {
	Node            *cast.Node
	ID              string
	IsMut           bool
	Type            cast.CType
	ReferenceKinds  []ctx.ReferenceKind
	AddressOfTarget string
	RC              bool
}

// DerefAssignment decorates `*...*p = expr`.
type DerefAssignment struct {
	Node           *cast.Node
	ID             string
	ReferenceKinds []ctx.ReferenceKind
	Count          int
}

// Deref decorates a read-position dereference.
type Deref struct {
	Node           *cast.Node
	ID             string
	ReferenceKinds []ctx.ReferenceKind
	Count          int
}

// Adr decorates an address-of expression.
type Adr struct {
	Node *cast.Node
	ID   string
}

// Id decorates a bare identifier reference.
type Id struct {
	Node *cast.Node
	ID   string
	RC   bool
}

// Assignment decorates a direct (non-deref) assignment.
type Assignment struct {
	Node *cast.Node
	Op   string
	ID   string
	RC   bool
}

// AnnotatedProgram is the annotator's output: every decoration keyed by the
// AST node it was computed for, plus the derived import set of spec.md
// §4.4's Program{imports} contract.
type AnnotatedProgram struct {
	Declarations     []Declaration
	PtrDeclarations  []PtrDeclaration
	DerefAssignments []DerefAssignment
	Derefs           []Deref
	Adrs             []Adr
	Ids              []Id
	Assignments      []Assignment

	Imports     []string // sorted, deduplicated Rust `use` paths
	NeedsUnsafe bool      // true iff any raw-pointer kind was chosen anywhere
}

// Annotate re-walks prog against the final c, producing the annotated AST.
func Annotate(prog *cast.Program, c *ctx.AnalysisContext) *AnnotatedProgram {
	ap := &AnnotatedProgram{}
	varByName := make(map[string]*ctx.VarData)
	for _, v := range c.Vars() {
		varByName[v.Name] = v // last declaration of a name wins for annotation lookups
	}

	importSet := make(map[string]bool)
	for _, v := range c.Vars() {
		if v.RC {
			importSet["std::rc::Rc"] = true
			importSet["std::cell::RefCell"] = true
		}
		for _, id := range v.PointsTo {
			if e := c.Edge(id); e != nil && e.Kind.IsRaw() {
				ap.NeedsUnsafe = true
			}
		}
	}

	cast.WalkProgram(prog, func(n *cast.Node) bool {
		switch n.Kind {
		case cast.KScalarDecl, cast.KArrayDecl, cast.KStructDecl:
			v := varByName[n.Name]
			if v == nil {
				return true
			}
			ap.Declarations = append(ap.Declarations, Declaration{
				Node: n, ID: n.Name, IsMut: v.IsMut, Type: v.Type, RC: v.RC,
			})

		case cast.KPtrDecl:
			v := varByName[n.Name]
			if v == nil {
				return true
			}
			kinds := chainKinds(c, v)
			pd := PtrDeclaration{
				Node: n, ID: n.Name, IsMut: v.IsMut, Type: v.Type,
				ReferenceKinds: kinds, RC: v.RC,
			}
			if n.RHS != nil && n.RHS.Kind == cast.KAddressOf {
				pd.AddressOfTarget = cast.RootIdent(n.RHS.Operand)
			}
			ap.PtrDeclarations = append(ap.PtrDeclarations, pd)

		case cast.KDerefAssign:
			root := cast.RootIdent(n.Operand)
			v := varByName[root]
			if v == nil {
				return true
			}
			ap.DerefAssignments = append(ap.DerefAssignments, DerefAssignment{
				Node: n, ID: root, ReferenceKinds: derefChainKinds(c, v, n.DerefCount), Count: n.DerefCount,
			})

		case cast.KDeref:
			root := cast.RootIdent(n.Operand)
			v := varByName[root]
			if v == nil {
				return true
			}
			ap.Derefs = append(ap.Derefs, Deref{
				Node: n, ID: root, ReferenceKinds: derefChainKinds(c, v, n.DerefCount), Count: n.DerefCount,
			})

		case cast.KAddressOf:
			ap.Adrs = append(ap.Adrs, Adr{Node: n, ID: cast.RootIdent(n.Operand)})

		case cast.KIdent:
			v := varByName[n.Name]
			rc := v != nil && v.RC
			ap.Ids = append(ap.Ids, Id{Node: n, ID: n.Name, RC: rc})

		case cast.KAssign, cast.KCompoundAssign:
			root := cast.RootIdent(n.LHS)
			v := varByName[root]
			rc := v != nil && v.RC
			ap.Assignments = append(ap.Assignments, Assignment{Node: n, Op: n.Op, ID: root, RC: rc})
		}
		return true
	})

	for imp := range importSet {
		ap.Imports = append(ap.Imports, imp)
	}
	sort.Strings(ap.Imports)

	return ap
}

// chainKinds returns the ordered reference-kind chain for a pointer
// variable's current binding, outermost pointer first -- spec.md §4.4's
// "full chain of edge kinds ... e.g. [MutBorrowed, ConstBorrowed] for
// int *const *".
func chainKinds(c *ctx.AnalysisContext, v *ctx.VarData) []ctx.ReferenceKind {
	var kinds []ctx.ReferenceKind
	cur := v
	depth := v.Type.PtrDepth
	if depth == 0 {
		depth = 1
	}
	for i := 0; i < depth && cur != nil && len(cur.PointsTo) > 0; i++ {
		e := c.Edge(cur.PointsTo[len(cur.PointsTo)-1])
		if e == nil {
			break
		}
		kinds = append(kinds, e.Kind)
		cur = c.Var(e.Referent)
	}
	return kinds
}

func derefChainKinds(c *ctx.AnalysisContext, v *ctx.VarData, count int) []ctx.ReferenceKind {
	var kinds []ctx.ReferenceKind
	cur := v
	for i := 0; i < count && cur != nil && len(cur.PointsTo) > 0; i++ {
		e := c.Edge(cur.PointsTo[len(cur.PointsTo)-1])
		if e == nil {
			break
		}
		kinds = append(kinds, e.Kind)
		cur = c.Var(e.Referent)
	}
	return kinds
}

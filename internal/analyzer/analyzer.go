// Package analyzer implements spec.md §4.1: a single forward walk of the AST
// that builds a complete AnalysisContext -- per-variable usage lists,
// reference edges, and live ranges -- ready for the borrow checker.
//
// The walk style (a scope-stack-carrying visitor with one method per
// statement/expression shape) is grounded on purple_go/pkg/compiler.Compiler,
// which carries the same `scopes []map[string]VarInfo` stack through its
// compileExpr/compileLet/... family of methods.
package analyzer

import (
	"sonderc/internal/cast"
	"sonderc/internal/ctx"
	"sonderc/internal/diag"
)

// Analyzer walks a cast.Program and populates an AnalysisContext.
type Analyzer struct {
	Ctx *ctx.AnalysisContext

	scopes []ctx.ScopeID
	errs   []error
}

// New creates an Analyzer writing into a fresh AnalysisContext.
func New() *Analyzer {
	return &Analyzer{Ctx: ctx.New()}
}

// Errors returns every diagnostic raised during the walk. A non-empty
// result means the caller should stop the pipeline: spec.md §7.2 unsupported
// constructs are fatal.
func (a *Analyzer) Errors() []error { return a.errs }

func (a *Analyzer) fail(d *diag.Diagnostic) {
	a.errs = append(a.errs, d)
}

func (a *Analyzer) pushScope() ctx.ScopeID {
	s := a.Ctx.NewScope()
	a.scopes = append(a.scopes, s)
	return s
}

func (a *Analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

func (a *Analyzer) scope() ctx.ScopeID {
	return a.scopes[len(a.scopes)-1]
}

// lookup resolves name against the scope stack, innermost first.
func (a *Analyzer) lookup(name string) *ctx.VarData {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if v := a.Ctx.LookupVar(name, a.scopes[i]); v != nil {
			return v
		}
	}
	return nil
}

// AnalyzeProgram runs the single forward pass described in spec.md §4.1
// over every struct definition and top-level statement.
func AnalyzeProgram(prog *cast.Program) (*ctx.AnalysisContext, []error) {
	a := New()
	a.pushScope() // file / global scope
	for _, s := range prog.Structs {
		a.declareStruct(s)
	}
	for _, stmt := range prog.Statements {
		a.statement(stmt)
	}
	a.popScope()
	return a.Ctx, a.errs
}

func (a *Analyzer) declareStruct(n *cast.Node) {
	sd := &ctx.StructData{Name: n.Name}
	for i, f := range n.Fields {
		sd.Fields = append(sd.Fields, ctx.FieldDefinition{
			ID:    i,
			Name:  f.Name,
			CType: f.CType,
		})
	}
	a.Ctx.DeclareStruct(sd)
}

// touch records one usage of v at line and, if v currently holds an
// outgoing reference (it is a pointer that has been bound), extends that
// reference's live range to line -- spec.md §4.1's "plain use of identifier"
// contract, applied uniformly everywhere an identifier is read or written.
func (a *Analyzer) touch(v *ctx.VarData, line int, kind ctx.UsageKind) {
	a.touchVia(v, line, kind, 0)
}

// touchVia is touch plus a provenance tag: via names the edge that was
// dereferenced to produce this usage (e.g. the immediate parent pointer's
// edge in a chain like **m=5), so the checker can recognize that this usage
// and that edge's live range describe the same access rather than two
// independent ones landing on the same line.
func (a *Analyzer) touchVia(v *ctx.VarData, line int, kind ctx.UsageKind, via ctx.EdgeID) {
	if v == nil {
		return
	}
	v.Usages = append(v.Usages, ctx.Usage{Line: line, Kind: kind, ViaEdge: via})
	if n := len(v.PointsTo); n > 0 {
		a.Ctx.ExtendLiveRange(v.PointsTo[n-1], line)
	}
}

// currentEdge returns the most recently created outgoing edge of v, i.e.
// its present binding, or nil if v holds no reference.
func (a *Analyzer) currentEdge(v *ctx.VarData) *ctx.Reference {
	if v == nil || len(v.PointsTo) == 0 {
		return nil
	}
	return a.Ctx.Edge(v.PointsTo[len(v.PointsTo)-1])
}

func (a *Analyzer) statement(n *cast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case cast.KScalarDecl, cast.KArrayDecl:
		v := a.Ctx.DeclareVar(n.Name, a.scope(), n.DeclType)
		if n.RHS != nil {
			a.expr(n.RHS, false)
			a.touch(v, n.Line, ctx.LValue)
			v.IsMut = true
		}

	case cast.KPtrDecl:
		v := a.Ctx.DeclareVar(n.Name, a.scope(), n.DeclType)
		a.touch(v, n.Line, ctx.LValue)
		if n.RHS != nil {
			a.bindPointer(v, n.RHS, n.Line)
		}

	case cast.KStructDecl:
		a.structDecl(n)

	case cast.KAssign:
		a.assign(n)

	case cast.KCompoundAssign:
		a.compoundAssign(n)

	case cast.KDerefAssign:
		a.derefAssign(n)

	case cast.KIf:
		a.expr(n.Cond, false)
		a.block(n.Then)
		if n.Else != nil {
			a.block(n.Else)
		}

	case cast.KWhile:
		a.expr(n.Cond, false)
		a.block(n.Body)

	case cast.KFor:
		a.statement(n.Init)
		if n.Cond != nil {
			a.expr(n.Cond, false)
		}
		if n.Post != nil {
			a.statement(n.Post)
		}
		a.block(n.Body)

	case cast.KBlock:
		a.block(n)

	case cast.KBreak:
		// no identifiers

	case cast.KReturn:
		if n.Operand != nil {
			a.expr(n.Operand, false)
		}

	case cast.KCall, cast.KPutchar:
		for _, arg := range n.Args {
			a.expr(arg, true)
		}

	case cast.KAssert:
		if n.Operand != nil {
			a.expr(n.Operand, false)
		}

	case cast.KAsm, cast.KGoto, cast.KLabel:
		// opaque / structural; no identifiers to track

	default:
		a.expr(n, false)
	}
}

func (a *Analyzer) block(n *cast.Node) {
	if n == nil {
		return
	}
	a.pushScope()
	for _, stmt := range n.Children {
		a.statement(stmt)
	}
	a.popScope()
}

// bindPointer implements the shared core of "pointer declared/assigned from
// an rvalue expression": address-of an lvalue creates a new ConstBorrowed
// edge; assignment from another pointer aliases that pointer's current
// referent; anything else is an unsupported construct per spec.md §7.2.
func (a *Analyzer) bindPointer(borrower *ctx.VarData, rhs *cast.Node, line int) {
	switch rhs.Kind {
	case cast.KAddressOf:
		referent, ok := a.resolveAddressOfTarget(rhs, line)
		if !ok {
			return
		}
		a.Ctx.NewEdge(borrower.ID, referent.ID, ctx.ConstBorrowed, line)

	case cast.KIdent:
		src := a.lookup(rhs.Name)
		if src == nil {
			a.fail(diag.UndeclaredID(rhs.Line, rhs.Name))
			return
		}
		a.touch(src, line, ctx.RValue)
		if e := a.currentEdge(src); e != nil {
			a.Ctx.NewEdge(borrower.ID, e.Referent, ctx.ConstBorrowed, line)
		}
		// else: src holds no reference yet (e.g. assigned NULL earlier) --
		// legal, simply leaves borrower with no edge until next rebinding.

	case cast.KIntLit:
		if rhs.IntVal == 0 {
			return // NULL assignment: no edge, not an error.
		}
		a.fail(diag.Unsupported(line, "pointer initialized from non-address-of, non-null integer"))

	default:
		a.fail(diag.Unsupported(line, "unsupported pointer initializer expression"))
	}
}

// resolveAddressOfTarget validates &lvalue and returns the referent
// VarData, recording the RValue usage the address-of contract requires.
func (a *Analyzer) resolveAddressOfTarget(addrOf *cast.Node, line int) (*ctx.VarData, bool) {
	operand := addrOf.Operand
	if operand == nil || !cast.IsLValue(operand) {
		a.fail(diag.Unsupported(addrOf.Line, "address-of applied to a non-lvalue expression"))
		return nil, false
	}
	root := cast.RootIdent(operand)
	v := a.lookup(root)
	if v == nil {
		a.fail(diag.UndeclaredID(addrOf.Line, root))
		return nil, false
	}
	a.touch(v, line, ctx.RValue)
	return v, true
}

func (a *Analyzer) structDecl(n *cast.Node) {
	sd := a.Ctx.Struct(n.DeclType.StructName)
	v := a.Ctx.DeclareVar(n.Name, a.scope(), n.DeclType)
	v.InstanceOfStruct = n.DeclType.StructName
	a.touch(v, n.Line, ctx.LValue)
	v.IsMut = true

	if sd == nil {
		return
	}
	for i, fv := range n.FieldValues {
		if i >= len(sd.Fields) {
			break
		}
		field := sd.Fields[i]
		if len(field.PtrType) > 0 || field.CType.PtrDepth > 0 {
			fieldVar := a.Ctx.DeclareVar(v.Name+"."+field.Name, a.scope(), field.CType)
			fieldVar.FieldOfStruct = v.ID
			a.touch(fieldVar, n.Line, ctx.LValue)
			fieldVar.IsMut = true
			if fv.Kind == cast.KAddressOf {
				a.bindPointer(fieldVar, fv, n.Line)
			}
			a.touch(v, n.Line, ctx.LValue)
		} else {
			a.expr(fv, false)
		}
	}
}

func (a *Analyzer) assign(n *cast.Node) {
	a.expr(n.RHS, false)

	root := cast.RootIdent(n.LHS)
	v := a.lookup(root)
	if v == nil {
		a.fail(diag.UndeclaredID(n.Line, root))
		return
	}

	if n.LHS.Kind == cast.KIdent && len(v.PointsTo) >= 0 && isPointerType(v.Type) {
		// Reassigning a pointer variable: pointer rebinding, per Invariant
		// §3.2's parenthetical -- this is an lvalue use of the pointer
		// itself, not of whatever it used to point to.
		a.touch(v, n.Line, ctx.LValue)
		v.IsMut = true
		a.bindPointer(v, n.RHS, n.Line)
		return
	}

	a.touch(v, n.Line, ctx.LValue)
	v.IsMut = true
	if n.LHS.Kind == cast.KFieldAccess {
		// "If x is a struct field, also record an LValue usage on the
		// containing struct variable."
		if owner := a.lookup(root); owner != nil {
			a.touch(owner, n.Line, ctx.LValue)
		}
	}
}

func isPointerType(t cast.CType) bool { return t.PtrDepth > 0 }

func (a *Analyzer) compoundAssign(n *cast.Node) {
	root := cast.RootIdent(n.LHS)
	v := a.lookup(root)
	if v == nil {
		a.fail(diag.UndeclaredID(n.Line, root))
		return
	}
	a.touch(v, n.Line, ctx.RValue)
	a.expr(n.RHS, false)
	a.touch(v, n.Line, ctx.LValue)
	v.IsMut = true
}

// derefAssign implements "*...*p = expr": walk the pointer chain outermost
// to innermost; every intermediate pointer's current edge is promoted to
// MutBorrowed (an LValue usage "through" it), and the final referent gets a
// direct LValue usage and is_mut=true.
func (a *Analyzer) derefAssign(n *cast.Node) {
	root := cast.RootIdent(n.Operand)
	if root == "" {
		a.fail(diag.Unsupported(n.Line, "deref-assignment target must be a single identifier chain"))
		return
	}
	v := a.lookup(root)
	if v == nil {
		a.fail(diag.UndeclaredID(n.Line, root))
		return
	}

	chain := a.Ctx.ChainDownwards(v.ID, n.DerefCount)
	if len(chain) < n.DerefCount+1 {
		a.fail(diag.Unsupported(n.Line, "*%s: pointer chain shorter than %d dereferences", root, n.DerefCount))
		return
	}

	for i, id := range chain[:len(chain)-1] {
		borrower := a.Ctx.Var(id)
		a.touchVia(borrower, n.Line, ctx.LValue, reachingEdge(a, chain, i))
		if e := a.currentEdge(borrower); e != nil && e.Kind == ctx.ConstBorrowed {
			e.Kind = ctx.MutBorrowed
		}
	}

	referent := a.Ctx.Var(chain[len(chain)-1])
	a.expr(n.RHS, false)
	a.touchVia(referent, n.Line, ctx.LValue, reachingEdge(a, chain, len(chain)-1))
	referent.IsMut = true
}

// reachingEdge returns the edge connecting chain[i-1] to chain[i] -- the
// reference that was just dereferenced to reach chain[i] -- or 0 for i==0,
// the chain's root, which is named directly rather than reached through a
// pointer.
func reachingEdge(a *Analyzer, chain []ctx.VarID, i int) ctx.EdgeID {
	if i == 0 {
		return 0
	}
	if e := a.currentEdge(a.Ctx.Var(chain[i-1])); e != nil {
		return e.ID
	}
	return 0
}

// expr records usages for every identifier reachable from n. asArg marks
// bare identifiers as FunctionArg usages instead of RValue, per spec.md §3's
// usage-kind set.
func (a *Analyzer) expr(n *cast.Node, asArg bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case cast.KIntLit, cast.KCharLit:
		// literals carry no identifier.

	case cast.KIdent:
		v := a.lookup(n.Name)
		if v == nil {
			a.fail(diag.UndeclaredID(n.Line, n.Name))
			return
		}
		if asArg {
			a.touch(v, n.Line, ctx.FunctionArg)
		} else {
			a.touch(v, n.Line, ctx.RValue)
		}

	case cast.KAddressOf:
		a.resolveAddressOfTarget(n, n.Line)

	case cast.KDeref:
		a.derefExpr(n)

	case cast.KFieldAccess:
		root := cast.RootIdent(n)
		if v := a.lookup(root); v != nil {
			a.touch(v, n.Line, ctx.RValue)
		} else {
			a.fail(diag.UndeclaredID(n.Line, root))
		}

	case cast.KCall, cast.KPutchar:
		for _, arg := range n.Args {
			a.expr(arg, true)
		}

	case cast.KBinOp:
		a.expr(n.LHS, false)
		a.expr(n.RHS, false)

	case cast.KUnaryOp:
		a.expr(n.Operand, false)

	default:
		for _, c := range n.Children {
			a.expr(c, false)
		}
	}
}

// derefExpr handles a read-position dereference (*p inside an expression,
// as opposed to the lvalue side of a deref-assignment). Unsupported when
// the dereferenced expression is not a single pointer-chain identifier, per
// spec.md §7.2 ("*(t + non_ptr)").
func (a *Analyzer) derefExpr(n *cast.Node) {
	root := cast.RootIdent(n.Operand)
	if root == "" {
		a.fail(diag.Unsupported(n.Line, "dereference of a non-pointer-chain expression"))
		return
	}
	v := a.lookup(root)
	if v == nil {
		a.fail(diag.UndeclaredID(n.Line, root))
		return
	}
	chain := a.Ctx.ChainDownwards(v.ID, n.DerefCount)
	if len(chain) < n.DerefCount+1 {
		a.fail(diag.Unsupported(n.Line, "*%s: pointer chain shorter than %d dereferences", root, n.DerefCount))
		return
	}
	for i, id := range chain[:len(chain)-1] {
		a.touchVia(a.Ctx.Var(id), n.Line, ctx.RValue, reachingEdge(a, chain, i))
	}
	a.touchVia(a.Ctx.Var(chain[len(chain)-1]), n.Line, ctx.RValue, reachingEdge(a, chain, len(chain)-1))
}

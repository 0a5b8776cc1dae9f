// Package emit renders an annotated AST as Rust source. It is a pure
// boundary adapter (spec.md §0): every ownership decision was already made
// by the analyzer/checker/adjuster/annotator pipeline; this package only
// chooses Rust syntax for decisions it is handed.
//
// The writer+indent-level shape is grounded on
// purple_go/pkg/codegen/codegen.go's CodeGenerator, which likewise holds an
// io.Writer and an indentLevel counter and walks the AST with one method per
// node shape, emitting through a single write helper.
package emit

import (
	"fmt"
	"io"
	"strings"

	"sonderc/internal/annotator"
	"sonderc/internal/cast"
	"sonderc/internal/ctx"
)

// Emitter renders an AnnotatedProgram to Rust source text.
type Emitter struct {
	w           io.Writer
	indentLevel int

	declByNode     map[*cast.Node]annotator.Declaration
	ptrDeclByNode  map[*cast.Node]annotator.PtrDeclaration
	derefAsgByNode map[*cast.Node]annotator.DerefAssignment
	derefByNode    map[*cast.Node]annotator.Deref
	assignByNode   map[*cast.Node]annotator.Assignment

	structs map[string]*cast.Node
}

// New returns an Emitter writing to w.
func New(w io.Writer) *Emitter {
	return &Emitter{
		w:              w,
		declByNode:     map[*cast.Node]annotator.Declaration{},
		ptrDeclByNode:  map[*cast.Node]annotator.PtrDeclaration{},
		derefAsgByNode: map[*cast.Node]annotator.DerefAssignment{},
		derefByNode:    map[*cast.Node]annotator.Deref{},
		assignByNode:   map[*cast.Node]annotator.Assignment{},
		structs:        map[string]*cast.Node{},
	}
}

// Emit writes the complete Rust translation unit for prog/ap to w.
func Emit(w io.Writer, prog *cast.Program, ap *annotator.AnnotatedProgram) error {
	e := New(w)
	e.index(ap)
	for _, s := range prog.Structs {
		e.structs[s.Name] = s
	}

	for _, imp := range ap.Imports {
		e.writeln("use %s;", imp)
	}
	if len(ap.Imports) > 0 {
		e.writeln("")
	}

	for _, s := range prog.Structs {
		e.structDef(s)
	}

	e.writeln("fn main() {")
	e.indentLevel++
	for _, stmt := range prog.Statements {
		e.statement(stmt)
	}
	e.indentLevel--
	e.writeln("}")
	return nil
}

func (e *Emitter) index(ap *annotator.AnnotatedProgram) {
	for _, d := range ap.Declarations {
		e.declByNode[d.Node] = d
	}
	for _, d := range ap.PtrDeclarations {
		e.ptrDeclByNode[d.Node] = d
	}
	for _, d := range ap.DerefAssignments {
		e.derefAsgByNode[d.Node] = d
	}
	for _, d := range ap.Derefs {
		e.derefByNode[d.Node] = d
	}
	for _, d := range ap.Assignments {
		e.assignByNode[d.Node] = d
	}
}

func (e *Emitter) writeln(format string, args ...interface{}) {
	fmt.Fprint(e.w, strings.Repeat("    ", e.indentLevel))
	fmt.Fprintf(e.w, format, args...)
	fmt.Fprintln(e.w)
}

func (e *Emitter) structDef(n *cast.Node) {
	e.writeln("struct %s {", n.Name)
	e.indentLevel++
	for _, f := range n.Fields {
		e.writeln("%s: %s,", f.Name, rustFieldType(f.CType))
	}
	e.indentLevel--
	e.writeln("}")
	e.writeln("")
}

func rustFieldType(t cast.CType) string {
	base := rustBaseType(t)
	for i := 0; i < t.PtrDepth; i++ {
		base = "*mut " + base // struct field pointer kind is resolved case-by-case at use sites, not in the schema
	}
	return base
}

func rustBaseType(t cast.CType) string {
	switch t.Kind {
	case cast.TInt:
		return "i32"
	case cast.TChar:
		return "u8"
	case cast.TVoid:
		return "()"
	case cast.TStruct:
		return t.StructName
	case cast.TArray:
		return fmt.Sprintf("[%s; %d]", rustBaseType(*t.ElemType), t.ArrayLen)
	default:
		return "i32"
	}
}

func (e *Emitter) statement(n *cast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case cast.KScalarDecl, cast.KArrayDecl:
		e.declStmt(n)
	case cast.KPtrDecl:
		e.ptrDeclStmt(n)
	case cast.KStructDecl:
		e.structDeclStmt(n)
	case cast.KAssign, cast.KCompoundAssign:
		e.assignStmt(n)
	case cast.KDerefAssign:
		e.derefAssignStmt(n)
	case cast.KIf:
		e.ifStmt(n)
	case cast.KWhile:
		e.writeln("while %s {", e.expr(n.Cond))
		e.indentLevel++
		e.block(n.Body)
		e.indentLevel--
		e.writeln("}")
	case cast.KFor:
		e.forStmt(n)
	case cast.KBlock:
		e.block(n)
	case cast.KBreak:
		e.writeln("break;")
	case cast.KReturn:
		if n.Operand != nil {
			e.writeln("return %s;", e.expr(n.Operand))
		} else {
			e.writeln("return;")
		}
	case cast.KCall:
		e.writeln("%s;", e.expr(n))
	case cast.KPutchar:
		for _, a := range n.Args {
			e.writeln("print!(\"{}\", %s as u8 as char);", e.expr(a))
		}
	case cast.KAssert:
		e.writeln("assert!(%s);", e.expr(n.Operand))
	case cast.KAsm:
		e.writeln("unsafe { asm!(%q); }", n.AsmBody)
	case cast.KGoto:
		e.writeln("// unsupported in safe Rust: goto %s (label preserved as a comment)", n.Name)
	case cast.KLabel:
		e.writeln("// label: %s", n.Name)
	default:
		e.writeln("%s;", e.expr(n))
	}
}

func (e *Emitter) block(n *cast.Node) {
	if n == nil {
		return
	}
	for _, s := range n.Children {
		e.statement(s)
	}
}

func (e *Emitter) declStmt(n *cast.Node) {
	d := e.declByNode[n]
	mut := ""
	if d.IsMut {
		mut = "mut "
	}
	typ := rustFieldType(n.DeclType)
	if d.RC {
		typ = fmt.Sprintf("Rc<RefCell<%s>>", typ)
	}
	if n.RHS == nil {
		e.writeln("let %s%s: %s = Default::default();", mut, n.Name, typ)
		return
	}
	rhs := e.expr(n.RHS)
	if d.RC {
		rhs = fmt.Sprintf("Rc::new(RefCell::new(%s))", rhs)
	}
	e.writeln("let %s%s: %s = %s;", mut, n.Name, typ, rhs)
}

func (e *Emitter) ptrDeclStmt(n *cast.Node) {
	pd := e.ptrDeclByNode[n]
	mut := ""
	if pd.IsMut {
		mut = "mut "
	}
	typ := rustRefType(pd.ReferenceKinds, rustBaseType(n.DeclType))
	if n.RHS == nil {
		e.writeln("let %s%s: %s; // uninitialized pointer", mut, n.Name, typ)
		return
	}
	e.writeln("let %s%s: %s = %s;", mut, n.Name, typ, e.referenceExpr(pd.ReferenceKinds, pd.AddressOfTarget, n.RHS))
}

// rustRefType renders the outermost-first chain of reference kinds as a
// nested Rust type, e.g. [MutBorrowed, ConstBorrowed] over int -> &mut &i32.
func rustRefType(kinds []ctx.ReferenceKind, base string) string {
	t := base
	for i := len(kinds) - 1; i >= 0; i-- {
		switch kinds[i] {
		case ctx.ConstBorrowed:
			t = "&" + t
		case ctx.MutBorrowed:
			t = "&mut " + t
		case ctx.ConstPtr:
			t = "*const " + t
		case ctx.MutPtr:
			t = "*mut " + t
		case ctx.RcRefClone:
			t = fmt.Sprintf("Rc<RefCell<%s>>", t)
		}
	}
	return t
}

func (e *Emitter) referenceExpr(kinds []ctx.ReferenceKind, addrTarget string, rhs *cast.Node) string {
	if len(kinds) == 0 {
		return e.expr(rhs)
	}
	switch kinds[0] {
	case ctx.RcRefClone:
		if addrTarget != "" {
			return fmt.Sprintf("%s.clone()", addrTarget)
		}
		return fmt.Sprintf("%s.clone()", e.expr(rhs))
	case ctx.MutBorrowed:
		if addrTarget != "" {
			return fmt.Sprintf("&mut %s", addrTarget)
		}
		return e.expr(rhs)
	case ctx.ConstPtr, ctx.MutPtr:
		if addrTarget != "" {
			return fmt.Sprintf("&%s as *const _ as %s", addrTarget, rustRefKind(kinds[0]))
		}
		return e.expr(rhs)
	default:
		if addrTarget != "" {
			return fmt.Sprintf("&%s", addrTarget)
		}
		return e.expr(rhs)
	}
}

func rustRefKind(k ctx.ReferenceKind) string {
	if k == ctx.MutPtr {
		return "*mut _"
	}
	return "*const _"
}

func (e *Emitter) structDeclStmt(n *cast.Node) {
	d := e.declByNode[n]
	mut := ""
	if d.IsMut {
		mut = "mut "
	}
	sd := e.structs[n.DeclType.StructName]
	var fields []string
	for i, fv := range n.FieldValues {
		name := "_"
		if sd != nil && i < len(sd.Fields) {
			name = sd.Fields[i].Name
		}
		fields = append(fields, fmt.Sprintf("%s: %s", name, e.expr(fv)))
	}
	e.writeln("let %s%s = %s { %s };", mut, n.Name, n.DeclType.StructName, strings.Join(fields, ", "))
}

func (e *Emitter) assignStmt(n *cast.Node) {
	a := e.assignByNode[n]
	lhs := e.expr(n.LHS)
	rhs := e.expr(n.RHS)
	if a.RC {
		e.writeln("*%s.borrow_mut() = %s;", lhs, rhs)
		return
	}
	if n.Op != "" {
		e.writeln("%s %s %s;", lhs, n.Op, rhs)
		return
	}
	e.writeln("%s = %s;", lhs, rhs)
}

func (e *Emitter) derefAssignStmt(n *cast.Node) {
	da := e.derefAsgByNode[n]
	lhs := derefExprText(cast.RootIdent(n.Operand), da.ReferenceKinds, da.Count)
	e.writeln("%s = %s;", lhs, e.expr(n.RHS))
}

// derefExprText renders count levels of dereference over root, wrapping
// raw-pointer levels in the unsafe block spec.md §4.4 requires and
// unwrapping Rc<RefCell<_>> levels via borrow_mut/borrow.
func derefExprText(root string, kinds []ctx.ReferenceKind, count int) string {
	expr := root
	needsUnsafe := false
	for i := 0; i < count; i++ {
		var k ctx.ReferenceKind
		if i < len(kinds) {
			k = kinds[i]
		}
		switch k {
		case ctx.RcRefClone:
			expr = fmt.Sprintf("(*%s.borrow_mut())", expr)
		case ctx.ConstPtr, ctx.MutPtr:
			expr = fmt.Sprintf("(*%s)", expr)
			needsUnsafe = true
		default:
			expr = fmt.Sprintf("(*%s)", expr)
		}
	}
	if needsUnsafe {
		return fmt.Sprintf("unsafe { %s }", expr)
	}
	return expr
}

func (e *Emitter) ifStmt(n *cast.Node) {
	e.writeln("if %s {", e.expr(n.Cond))
	e.indentLevel++
	e.block(n.Then)
	e.indentLevel--
	if n.Else != nil {
		e.writeln("} else {")
		e.indentLevel++
		e.block(n.Else)
		e.indentLevel--
	}
	e.writeln("}")
}

func (e *Emitter) forStmt(n *cast.Node) {
	init := ""
	if n.Init != nil {
		init = strings.TrimSuffix(e.exprOfStatement(n.Init), ";")
	}
	cond := "true"
	if n.Cond != nil {
		cond = e.expr(n.Cond)
	}
	post := ""
	if n.Post != nil {
		post = strings.TrimSuffix(e.exprOfStatement(n.Post), ";")
	}
	if init != "" {
		e.writeln("%s;", init)
	}
	e.writeln("while %s {", cond)
	e.indentLevel++
	e.block(n.Body)
	if post != "" {
		e.writeln("%s;", post)
	}
	e.indentLevel--
	e.writeln("}")
}

// exprOfStatement renders a declaration or assignment used in a for-header
// position as a single expression-like line, for inlining before/after the
// translated while-loop.
func (e *Emitter) exprOfStatement(n *cast.Node) string {
	switch n.Kind {
	case cast.KScalarDecl, cast.KArrayDecl:
		d := e.declByNode[n]
		mut := ""
		if d.IsMut {
			mut = "mut "
		}
		return fmt.Sprintf("let %s%s = %s;", mut, n.Name, e.expr(n.RHS))
	case cast.KAssign:
		return fmt.Sprintf("%s = %s;", e.expr(n.LHS), e.expr(n.RHS))
	case cast.KCompoundAssign:
		return fmt.Sprintf("%s %s %s;", e.expr(n.LHS), n.Op, e.expr(n.RHS))
	default:
		return e.expr(n) + ";"
	}
}

func (e *Emitter) expr(n *cast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case cast.KIntLit:
		return fmt.Sprintf("%d", n.IntVal)
	case cast.KCharLit:
		return fmt.Sprintf("%d", n.CharVal)
	case cast.KIdent:
		return n.Name
	case cast.KFieldAccess:
		return fmt.Sprintf("%s.%s", e.expr(n.Base), n.Name)
	case cast.KAddressOf:
		return fmt.Sprintf("&%s", e.expr(n.Operand))
	case cast.KDeref:
		d := e.derefByNode[n]
		return derefExprText(cast.RootIdent(n.Operand), d.ReferenceKinds, d.Count)
	case cast.KCall:
		return fmt.Sprintf("%s(%s)", n.Callee, e.argList(n.Args))
	case cast.KBinOp:
		return fmt.Sprintf("(%s %s %s)", e.expr(n.LHS), n.Op, e.expr(n.RHS))
	case cast.KUnaryOp:
		return fmt.Sprintf("%s%s", n.Op, e.expr(n.Operand))
	case cast.KAssign:
		return fmt.Sprintf("%s = %s", e.expr(n.LHS), e.expr(n.RHS))
	default:
		return ""
	}
}

func (e *Emitter) argList(args []*cast.Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = e.expr(a)
	}
	return strings.Join(parts, ", ")
}

// Package cparse is a recursive-descent parser over internal/lexer's token
// stream, producing an internal/cast.Program. It is a pure boundary
// adapter (spec.md §0): it makes no ownership decisions and performs no
// analysis beyond what is needed to shape the AST the analyzer consumes.
//
// The cursor shape (peek/advance/expect over a flat sequence, one parseX
// method per grammar production) is grounded on
// purple_go/pkg/parser/parser.go's Parser, generalized from a single
// S-expression form to the C subset's statement/expression grammar.
package cparse

import (
	"github.com/pkg/errors"

	"sonderc/internal/cast"
	"sonderc/internal/lexer"
)

// Parser consumes a token slice and builds a cast.Program.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// New returns a Parser over toks (as produced by lexer.Tokenize).
func New(toks []lexer.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse tokenizes src and parses it into a Program in one call.
func Parse(src string) (*cast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(toks).ParseProgram()
}

func (p *Parser) peek() lexer.Token { return p.toks[p.pos] }

func (p *Parser) peekKind() lexer.Kind { return p.toks[p.pos].Kind }

// peekAtKind looks ahead off tokens from the cursor, clamped to the final
// (EOF) token so lookahead near the end of input never indexes out of range.
func (p *Parser) peekAtKind(off int) lexer.Kind {
	i := p.pos + off
	if i >= len(p.toks) {
		i = len(p.toks) - 1
	}
	return p.toks[i].Kind
}

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k lexer.Kind) bool { return p.peekKind() == k }

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, errors.Errorf("parse: expected %s on line %d", what, p.peek().Line)
	}
	return p.advance(), nil
}

// ParseProgram parses every top-level struct definition and statement. The
// subset's single-translation-unit grammar has exactly one function body
// (conventionally `main`); its signature is discarded and its block's
// statements are flattened directly into the Program, matching
// cast.Program's "one flat statement list" shape.
func (p *Parser) ParseProgram() (*cast.Program, error) {
	prog := &cast.Program{}
	for !p.at(lexer.EOF) {
		if p.at(lexer.KwStruct) && p.peekAtKind(2) == lexer.LBrace {
			sd, err := p.structDef()
			if err != nil {
				return nil, err
			}
			prog.Structs = append(prog.Structs, sd)
			continue
		}
		if p.isFunctionHeader() {
			body, err := p.functionDef()
			if err != nil {
				return nil, err
			}
			prog.Statements = append(prog.Statements, body.Children...)
			continue
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// isFunctionHeader reports whether the cursor sits at `<type> <ident> (`,
// the only shape that distinguishes a function definition from a
// declaration statement at top level.
func (p *Parser) isFunctionHeader() bool {
	switch p.peekKind() {
	case lexer.KwInt, lexer.KwChar, lexer.KwVoid:
	default:
		return false
	}
	off := 1
	for p.peekAtKind(off) == lexer.Star {
		off++
	}
	return p.peekAtKind(off) == lexer.Ident && p.peekAtKind(off+1) == lexer.LParen
}

func (p *Parser) functionDef() (*cast.Node, error) {
	if _, err := p.typeSpec(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Ident, "function name"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	for !p.at(lexer.RParen) {
		p.advance() // parameter lists are not modeled; the subset's sole function takes none
	}
	p.advance() // ')'
	return p.block()
}

func (p *Parser) structDef() (*cast.Node, error) {
	line := p.advance().Line // 'struct'
	name, err := p.expect(lexer.Ident, "struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	var fields []cast.FieldDecl
	for !p.at(lexer.RBrace) {
		ft, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		fn, err := p.expect(lexer.Ident, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		fields = append(fields, cast.FieldDecl{Name: fn.Text, CType: ft})
	}
	p.advance() // '}'
	if p.at(lexer.Semi) {
		p.advance()
	}
	return &cast.Node{Kind: cast.KStructDef, Name: name.Text, Line: line, Fields: fields}, nil
}

// typeSpec parses a base type plus any leading '*' pointer-depth markers.
// Array brackets are parsed separately by the declaration production since
// they follow the identifier in C's `int arr[10]` order.
func (p *Parser) typeSpec() (cast.CType, error) {
	var t cast.CType
	switch p.peekKind() {
	case lexer.KwInt:
		p.advance()
		t.Kind = cast.TInt
	case lexer.KwChar:
		p.advance()
		t.Kind = cast.TChar
	case lexer.KwVoid:
		p.advance()
		t.Kind = cast.TVoid
	case lexer.KwStruct:
		p.advance()
		name, err := p.expect(lexer.Ident, "struct name")
		if err != nil {
			return t, err
		}
		t.Kind = cast.TStruct
		t.StructName = name.Text
	default:
		return t, errors.Errorf("parse: expected type on line %d", p.peek().Line)
	}
	for p.at(lexer.Star) {
		p.advance()
		t.PtrDepth++
	}
	return t, nil
}

func (p *Parser) statement() (*cast.Node, error) {
	switch p.peekKind() {
	case lexer.KwIf:
		return p.ifStmt()
	case lexer.KwWhile:
		return p.whileStmt()
	case lexer.KwFor:
		return p.forStmt()
	case lexer.LBrace:
		return p.block()
	case lexer.KwBreak:
		line := p.advance().Line
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		return &cast.Node{Kind: cast.KBreak, Line: line}, nil
	case lexer.KwReturn:
		line := p.advance().Line
		var operand *cast.Node
		if !p.at(lexer.Semi) {
			var err error
			operand, err = p.expr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		return &cast.Node{Kind: cast.KReturn, Line: line, Operand: operand}, nil
	case lexer.KwPutchar:
		return p.callLike(cast.KPutchar)
	case lexer.KwAssert:
		line := p.advance().Line
		if _, err := p.expect(lexer.LParen, "'('"); err != nil {
			return nil, err
		}
		operand, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		return &cast.Node{Kind: cast.KAssert, Line: line, Operand: operand}, nil
	case lexer.KwAsm:
		return p.asmStmt()
	case lexer.KwGoto:
		line := p.advance().Line
		name, err := p.expect(lexer.Ident, "label name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		return &cast.Node{Kind: cast.KGoto, Line: line, Name: name.Text}, nil
	case lexer.KwInt, lexer.KwChar, lexer.KwVoid:
		return p.declaration()
	case lexer.KwStruct:
		if p.peekAtKind(2) == lexer.Star {
			return p.declaration() // `struct Name* var ...`: a pointer declaration
		}
		return p.structInstance()
	case lexer.Star:
		return p.derefAssignStmt()
	case lexer.Ident:
		if p.peekAtKind(1) == lexer.Colon {
			name := p.advance()
			p.advance() // ':'
			return &cast.Node{Kind: cast.KLabel, Name: name.Text, Line: name.Line}, nil
		}
		return p.exprStatement()
	default:
		return nil, errors.Errorf("parse: unexpected token on line %d", p.peek().Line)
	}
}

func (p *Parser) block() (*cast.Node, error) {
	line := p.advance().Line // '{'
	blk := &cast.Node{Kind: cast.KBlock, Line: line}
	for !p.at(lexer.RBrace) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		blk.Children = append(blk.Children, s)
	}
	p.advance() // '}'
	return blk, nil
}

// blockOrSingle wraps a lone statement in a KBlock so the analyzer's block()
// always sees a uniform shape for if/while/for bodies.
func (p *Parser) blockOrSingle() (*cast.Node, error) {
	if p.at(lexer.LBrace) {
		return p.block()
	}
	s, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &cast.Node{Kind: cast.KBlock, Line: s.Line, Children: []*cast.Node{s}}, nil
}

func (p *Parser) ifStmt() (*cast.Node, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	then, err := p.blockOrSingle()
	if err != nil {
		return nil, err
	}
	n := &cast.Node{Kind: cast.KIf, Line: line, Cond: cond, Then: then}
	if p.at(lexer.KwElse) {
		p.advance()
		els, err := p.blockOrSingle()
		if err != nil {
			return nil, err
		}
		n.Else = els
	}
	return n, nil
}

func (p *Parser) whileStmt() (*cast.Node, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.blockOrSingle()
	if err != nil {
		return nil, err
	}
	return &cast.Node{Kind: cast.KWhile, Line: line, Cond: cond, Body: body}, nil
}

func (p *Parser) forStmt() (*cast.Node, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var init *cast.Node
	if !p.at(lexer.Semi) {
		var err error
		init, err = p.forClause()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	var cond *cast.Node
	if !p.at(lexer.Semi) {
		var err error
		cond, err = p.expr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	var post *cast.Node
	if !p.at(lexer.RParen) {
		var err error
		post, err = p.forClause()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.blockOrSingle()
	if err != nil {
		return nil, err
	}
	return &cast.Node{Kind: cast.KFor, Line: line, Init: init, Cond: cond, Post: post, Body: body}, nil
}

// forClause parses the init/post slots of a for-header: either a declaration
// or an assignment/compound-assign, without the trailing statement
// terminator the caller already handles with explicit ';'/')' matching.
func (p *Parser) forClause() (*cast.Node, error) {
	switch p.peekKind() {
	case lexer.KwInt, lexer.KwChar, lexer.KwVoid:
		return p.declarationNoSemi()
	default:
		return p.assignLike(false)
	}
}

func (p *Parser) callLike(kind cast.Kind) (*cast.Node, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var args []*cast.Node
	for !p.at(lexer.RParen) {
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.advance() // ')'
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return &cast.Node{Kind: kind, Line: line, Args: args}, nil
}

func (p *Parser) asmStmt() (*cast.Node, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	body, err := p.expect(lexer.StrLit, "asm body")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return &cast.Node{Kind: cast.KAsm, Line: line, AsmBody: body.Text}, nil
}

// declaration parses a scalar/array/pointer declaration statement (with its
// trailing ';') for top-level and block position.
func (p *Parser) declaration() (*cast.Node, error) {
	n, err := p.declarationNoSemi()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) declarationNoSemi() (*cast.Node, error) {
	line := p.peek().Line
	t, err := p.typeSpec()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.Ident, "declared name")
	if err != nil {
		return nil, err
	}

	if p.at(lexer.LBracket) {
		p.advance()
		lenTok, err := p.expect(lexer.IntLit, "array length")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
			return nil, err
		}
		arrType := cast.CType{Kind: cast.TArray, ElemType: &t, ArrayLen: int(lenTok.IntVal)}
		n := &cast.Node{Kind: cast.KArrayDecl, Name: name.Text, Line: line, DeclType: arrType}
		if p.at(lexer.Assign) {
			p.advance()
			rhs, err := p.expr()
			if err != nil {
				return nil, err
			}
			n.RHS = rhs
		}
		return n, nil
	}

	kind := cast.KScalarDecl
	if t.PtrDepth > 0 {
		kind = cast.KPtrDecl
	}
	n := &cast.Node{Kind: kind, Name: name.Text, Line: line, DeclType: t}
	if p.at(lexer.Assign) {
		p.advance()
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		n.RHS = rhs
	}
	return n, nil
}

// structInstance parses `struct Name var = { ... };` or a bare
// `struct Name var;`.
func (p *Parser) structInstance() (*cast.Node, error) {
	line := p.advance().Line // 'struct'
	typeName, err := p.expect(lexer.Ident, "struct type name")
	if err != nil {
		return nil, err
	}
	varName, err := p.expect(lexer.Ident, "variable name")
	if err != nil {
		return nil, err
	}
	n := &cast.Node{
		Kind: cast.KStructDecl, Name: varName.Text, Line: line,
		DeclType: cast.CType{Kind: cast.TStruct, StructName: typeName.Text},
	}
	if p.at(lexer.Assign) {
		p.advance()
		if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
			return nil, err
		}
		for !p.at(lexer.RBrace) {
			v, err := p.expr()
			if err != nil {
				return nil, err
			}
			n.FieldValues = append(n.FieldValues, v)
			if p.at(lexer.Comma) {
				p.advance()
			}
		}
		p.advance() // '}'
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return n, nil
}

// derefAssignStmt parses `*...*lvalue = expr;`, counting the leading stars.
func (p *Parser) derefAssignStmt() (*cast.Node, error) {
	line := p.peek().Line
	count := 0
	for p.at(lexer.Star) {
		p.advance()
		count++
	}
	operand, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Assign, "'='"); err != nil {
		return nil, err
	}
	rhs, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return &cast.Node{Kind: cast.KDerefAssign, Line: line, Operand: operand, DerefCount: count, RHS: rhs}, nil
}

func (p *Parser) exprStatement() (*cast.Node, error) {
	n, err := p.assignLike(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return n, nil
}

// assignLike parses an assignment, compound-assignment, or a bare
// expression statement (a lone call). noTerminator callers (for-clauses)
// pass false for semi handling, which this function never consumes itself
// -- the caller always matches its own terminator.
func (p *Parser) assignLike(_ bool) (*cast.Node, error) {
	lhs, err := p.expr()
	if err != nil {
		return nil, err
	}

	switch p.peekKind() {
	case lexer.Assign:
		line := p.advance().Line
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &cast.Node{Kind: cast.KAssign, Line: line, LHS: lhs, RHS: rhs}, nil
	case lexer.PlusAssign, lexer.MinusAssign, lexer.StarAssign, lexer.SlashAssign:
		op := p.advance()
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &cast.Node{Kind: cast.KCompoundAssign, Line: op.Line, LHS: lhs, Op: compoundOpText(op.Kind), RHS: rhs}, nil
	default:
		return lhs, nil
	}
}

func compoundOpText(k lexer.Kind) string {
	switch k {
	case lexer.PlusAssign:
		return "+="
	case lexer.MinusAssign:
		return "-="
	case lexer.StarAssign:
		return "*="
	case lexer.SlashAssign:
		return "/="
	default:
		return "?="
	}
}

// --- expressions: precedence-climbing over ||, &&, equality, relational,
// additive, multiplicative, then unary/postfix/primary. ---

func (p *Parser) expr() (*cast.Node, error) { return p.orExpr() }

func (p *Parser) orExpr() (*cast.Node, error) {
	return p.binLevel([]lexer.Kind{lexer.OrOr}, p.andExpr)
}

func (p *Parser) andExpr() (*cast.Node, error) {
	return p.binLevel([]lexer.Kind{lexer.AndAnd}, p.equalityExpr)
}

func (p *Parser) equalityExpr() (*cast.Node, error) {
	return p.binLevel([]lexer.Kind{lexer.Eq, lexer.Ne}, p.relExpr)
}

func (p *Parser) relExpr() (*cast.Node, error) {
	return p.binLevel([]lexer.Kind{lexer.Lt, lexer.Gt, lexer.Le, lexer.Ge}, p.addExpr)
}

func (p *Parser) addExpr() (*cast.Node, error) {
	return p.binLevel([]lexer.Kind{lexer.Plus, lexer.Minus}, p.mulExpr)
}

func (p *Parser) mulExpr() (*cast.Node, error) {
	return p.binLevel([]lexer.Kind{lexer.Star, lexer.Slash, lexer.Percent}, p.unary)
}

func (p *Parser) binLevel(ops []lexer.Kind, next func() (*cast.Node, error)) (*cast.Node, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for matches(p.peekKind(), ops) {
		op := p.advance()
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = &cast.Node{Kind: cast.KBinOp, Line: op.Line, LHS: lhs, RHS: rhs, Op: opText(op.Kind)}
	}
	return lhs, nil
}

func matches(k lexer.Kind, set []lexer.Kind) bool {
	for _, s := range set {
		if k == s {
			return true
		}
	}
	return false
}

func opText(k lexer.Kind) string {
	switch k {
	case lexer.OrOr:
		return "||"
	case lexer.AndAnd:
		return "&&"
	case lexer.Eq:
		return "=="
	case lexer.Ne:
		return "!="
	case lexer.Lt:
		return "<"
	case lexer.Gt:
		return ">"
	case lexer.Le:
		return "<="
	case lexer.Ge:
		return ">="
	case lexer.Plus:
		return "+"
	case lexer.Minus:
		return "-"
	case lexer.Star:
		return "*"
	case lexer.Slash:
		return "/"
	case lexer.Percent:
		return "%"
	default:
		return "?"
	}
}

func (p *Parser) unary() (*cast.Node, error) {
	switch p.peekKind() {
	case lexer.Bang, lexer.Minus:
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &cast.Node{Kind: cast.KUnaryOp, Line: op.Line, Op: opTextUnary(op.Kind), Operand: operand}, nil
	case lexer.Amp:
		line := p.advance().Line
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &cast.Node{Kind: cast.KAddressOf, Line: line, Operand: operand}, nil
	case lexer.Star:
		line := p.advance().Line
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if operand.Kind == cast.KDeref {
			return &cast.Node{Kind: cast.KDeref, Line: line, Operand: operand.Operand, DerefCount: operand.DerefCount + 1}, nil
		}
		return &cast.Node{Kind: cast.KDeref, Line: line, Operand: operand, DerefCount: 1}, nil
	default:
		return p.postfix()
	}
}

func opTextUnary(k lexer.Kind) string {
	if k == lexer.Bang {
		return "!"
	}
	return "-"
}

func (p *Parser) postfix() (*cast.Node, error) {
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peekKind() {
		case lexer.Dot:
			line := p.advance().Line
			field, err := p.expect(lexer.Ident, "field name")
			if err != nil {
				return nil, err
			}
			n = &cast.Node{Kind: cast.KFieldAccess, Line: line, Base: n, Name: field.Text}
		case lexer.Arrow:
			// p->f desugars to (*p).f: one dereference then a field access.
			line := p.advance().Line
			field, err := p.expect(lexer.Ident, "field name")
			if err != nil {
				return nil, err
			}
			deref := &cast.Node{Kind: cast.KDeref, Line: line, Operand: n, DerefCount: 1}
			n = &cast.Node{Kind: cast.KFieldAccess, Line: line, Base: deref, Name: field.Text}
		default:
			return n, nil
		}
	}
}

func (p *Parser) primary() (*cast.Node, error) {
	t := p.peek()
	switch t.Kind {
	case lexer.IntLit:
		p.advance()
		return &cast.Node{Kind: cast.KIntLit, Line: t.Line, IntVal: t.IntVal}, nil
	case lexer.CharLit:
		p.advance()
		return &cast.Node{Kind: cast.KCharLit, Line: t.Line, CharVal: t.CharVal}, nil
	case lexer.LParen:
		p.advance()
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return n, nil
	case lexer.Ident:
		if p.peekAtKind(1) == lexer.LParen {
			return p.call()
		}
		p.advance()
		return &cast.Node{Kind: cast.KIdent, Line: t.Line, Name: t.Text}, nil
	case lexer.KwPutchar:
		return p.callLikeExpr(cast.KPutchar)
	default:
		return nil, errors.Errorf("parse: unexpected token in expression on line %d", t.Line)
	}
}

func (p *Parser) call() (*cast.Node, error) {
	callee := p.advance()
	line := p.advance().Line // '('
	var args []*cast.Node
	for !p.at(lexer.RParen) {
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.advance() // ')'
	return &cast.Node{Kind: cast.KCall, Line: line, Callee: callee.Text, Args: args}, nil
}

func (p *Parser) callLikeExpr(kind cast.Kind) (*cast.Node, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var args []*cast.Node
	for !p.at(lexer.RParen) {
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(lexer.Comma) {
			p.advance()
		}
	}
	p.advance() // ')'
	return &cast.Node{Kind: kind, Line: line, Args: args}, nil
}

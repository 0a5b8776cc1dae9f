package cast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootIdent(t *testing.T) {
	x := &Node{Kind: KIdent, Name: "x"}
	field := &Node{Kind: KFieldAccess, Base: x, Name: "f"}
	nested := &Node{Kind: KFieldAccess, Base: field, Name: "g"}

	assert.Equal(t, "x", RootIdent(x))
	assert.Equal(t, "x", RootIdent(field))
	assert.Equal(t, "x", RootIdent(nested))
	assert.Equal(t, "", RootIdent(&Node{Kind: KIntLit}))
}

func TestIsLValue(t *testing.T) {
	assert.True(t, IsLValue(&Node{Kind: KIdent}))
	assert.True(t, IsLValue(&Node{Kind: KFieldAccess, Base: &Node{Kind: KIdent}}))
	assert.False(t, IsLValue(&Node{Kind: KIntLit}))
	assert.False(t, IsLValue(&Node{Kind: KDeref}))
}

func TestWalkVisitsEveryDescendant(t *testing.T) {
	lhs := &Node{Kind: KIdent, Name: "x"}
	rhs := &Node{Kind: KIntLit, IntVal: 1}
	assign := &Node{Kind: KAssign, LHS: lhs, RHS: rhs}

	var seen []Kind
	Walk(assign, func(n *Node) bool {
		seen = append(seen, n.Kind)
		return true
	})

	assert.Equal(t, []Kind{KAssign, KIdent, KIntLit}, seen)
}

func TestWalkStopsDescendingWhenVisitReturnsFalse(t *testing.T) {
	child := &Node{Kind: KIdent}
	block := &Node{Kind: KBlock, Children: []*Node{child}}

	var seen []Kind
	Walk(block, func(n *Node) bool {
		seen = append(seen, n.Kind)
		return false
	})

	assert.Equal(t, []Kind{KBlock}, seen)
}

func TestWalkProgramVisitsStructsThenStatements(t *testing.T) {
	sd := &Node{Kind: KStructDef, Name: "Test"}
	stmt := &Node{Kind: KScalarDecl, Name: "x"}
	prog := &Program{Structs: []*Node{sd}, Statements: []*Node{stmt}}

	var seen []Kind
	WalkProgram(prog, func(n *Node) bool {
		seen = append(seen, n.Kind)
		return true
	})

	assert.Equal(t, []Kind{KStructDef, KScalarDecl}, seen)
}

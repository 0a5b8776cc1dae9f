package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonderc/internal/cparse"
	"sonderc/internal/ctx"
)

func analyze(t *testing.T, src string) *ctx.AnalysisContext {
	t.Helper()
	prog, err := cparse.Parse(src)
	require.NoError(t, err)
	c, errs := AnalyzeProgram(prog)
	require.Empty(t, errs)
	return c
}

func TestAddressOfCreatesConstBorrowedEdge(t *testing.T) {
	c := analyze(t, `int main(){ int n=0; int* g=&n; }`)

	n := c.LookupVar("n", 1)
	g := c.LookupVar("g", 1)
	require.NotNil(t, n)
	require.NotNil(t, g)
	require.Len(t, g.PointsTo, 1)

	e := c.Edge(g.PointsTo[0])
	assert.Equal(t, ctx.ConstBorrowed, e.Kind)
	assert.Equal(t, n.ID, e.Referent)
}

func TestDerefAssignPromotesIntermediatesToMutBorrowed(t *testing.T) {
	c := analyze(t, `int main(){ int n=0; int* p=&n; int** m=&p; **m=5; }`)

	p := c.LookupVar("p", 1)
	m := c.LookupVar("m", 1)
	require.NotNil(t, p)
	require.NotNil(t, m)

	mEdge := c.Edge(m.PointsTo[0])
	assert.Equal(t, ctx.MutBorrowed, mEdge.Kind, "m's edge to p is the intermediate link in **m=5 and must be promoted")

	n := c.LookupVar("n", 1)
	assert.True(t, n.IsMut)
}

func TestPointerRebindingAppendsNewEdgeWithoutClosingOld(t *testing.T) {
	c := analyze(t, `int main(){ int n=0; int p=3; int* h=&n; h=&p; }`)

	h := c.LookupVar("h", 1)
	require.Len(t, h.PointsTo, 2)

	e1 := c.Edge(h.PointsTo[0])
	e2 := c.Edge(h.PointsTo[1])
	n := c.LookupVar("n", 1)
	p := c.LookupVar("p", 1)
	assert.Equal(t, n.ID, e1.Referent)
	assert.Equal(t, p.ID, e2.Referent)
}

func TestUndeclaredIdentifierIsFatal(t *testing.T) {
	prog, err := cparse.Parse(`int main(){ n = 1; }`)
	require.NoError(t, err)
	_, errs := AnalyzeProgram(prog)
	assert.NotEmpty(t, errs)
}

func TestStructFieldLiteralDeclaresFieldVars(t *testing.T) {
	c := analyze(t, `struct Test{int m; int j;}; int main(){ struct Test x = {0,2}; }`)
	x := c.LookupVar("x", 1)
	require.NotNil(t, x)
	assert.Equal(t, "Test", x.InstanceOfStruct)
	assert.True(t, x.IsMut)

	sd := c.Struct("Test")
	require.NotNil(t, sd)
	require.Len(t, sd.Fields, 2)
}

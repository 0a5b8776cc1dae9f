package adjuster

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonderc/internal/cast"
	"sonderc/internal/checker"
	"sonderc/internal/cparse"
	"sonderc/internal/ctx"
)

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestRunConvergesOnLegalChainedBorrows(t *testing.T) {
	prog, err := cparse.Parse(`
int main(){
	int n=0;
	int* g=&n;
	int* p=&n;
	int** m=&p;
	**m=5;
}`)
	require.NoError(t, err)

	res, err := Run(prog, silentLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations, "scenario 1 requires no adjustment at all")

	n := res.Ctx.LookupVar("n", 1)
	require.NotNil(t, n)
	assert.False(t, n.RC)
}

func TestRunPromotesToRCOnValuePointerOverlap(t *testing.T) {
	prog, err := cparse.Parse(`
int main(){
	int t=0;
	int* g=&t;
	t=1;
	*g=2;
}`)
	require.NoError(t, err)

	res, err := Run(prog, silentLogger())
	require.NoError(t, err)

	tVar := res.Ctx.LookupVar("t", 1)
	require.NotNil(t, tVar)
	assert.True(t, tVar.RC, "value/pointer overlap on t must resolve by promoting t to shared-interior-mutable")

	finalErrs := checker.Check(res.Ctx)
	assert.Empty(t, finalErrs)
}

func TestRunInsertsCloneOnDerefAssignSameLineAlias(t *testing.T) {
	prog, err := cparse.Parse(`
void main(){
	int k=3;
	int* y=&k;
	*y=k+6;
}`)
	require.NoError(t, err)

	res, err := Run(prog, silentLogger())
	require.NoError(t, err)

	var foundCloneDecl bool
	for _, s := range res.Program.Statements {
		if s.Name == "k_clone" {
			foundCloneDecl = true
		}
	}
	assert.True(t, foundCloneDecl, "insert_clone must synthesize a k_clone declaration")

	finalErrs := checker.Check(res.Ctx)
	assert.Empty(t, finalErrs)
}

func TestRunHandlesTwoConstBorrowsWithMutableRHSRead(t *testing.T) {
	prog, err := cparse.Parse(`
int main(){
	int n=0;
	int* g=&n;
	int* b=&n;
	int k=*g;
	int y=9;
	*b=y;
}`)
	require.NoError(t, err)

	res, err := Run(prog, silentLogger())
	require.NoError(t, err)

	finalErrs := checker.Check(res.Ctx)
	assert.Empty(t, finalErrs)
}

func TestRunHandlesLateRebindingWithoutRC(t *testing.T) {
	prog, err := cparse.Parse(`
int main(){
	int n=0;
	int p=3;
	int* h=&n;
	h=&p;
}`)
	require.NoError(t, err)

	res, err := Run(prog, silentLogger())
	require.NoError(t, err)

	h := res.Ctx.LookupVar("h", 1)
	require.NotNil(t, h)
	require.Len(t, h.PointsTo, 2, "h is rebound from n onto p mid-function")

	n := res.Ctx.LookupVar("n", 1)
	require.NotNil(t, n)
	assert.False(t, n.RC, "late rebinding onto a fresh pointer requires no RC")
}

func TestSetRCCascadesUpPointerChain(t *testing.T) {
	c := ctx.New()
	s := c.NewScope()
	ptrType := cast.CType{Kind: cast.TInt, PtrDepth: 1}
	scalarType := cast.CType{Kind: cast.TInt}
	outer := c.DeclareVar("outer", s, ptrType)
	inner := c.DeclareVar("inner", s, ptrType)
	leaf := c.DeclareVar("leaf", s, scalarType)
	c.NewEdge(inner.ID, leaf.ID, ctx.ConstBorrowed, 1)
	c.NewEdge(outer.ID, inner.ID, ctx.ConstBorrowed, 1)

	setRC(c, leaf.ID)

	assert.True(t, leaf.RC)
	assert.True(t, inner.RC, "set_rc must cascade to the borrower of an RC'd variable's incoming edge")
	assert.True(t, outer.RC)
}

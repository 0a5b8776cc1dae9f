package cparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonderc/internal/cast"
)

func TestParseFlattensFunctionBodyIntoProgram(t *testing.T) {
	prog, err := Parse(`int main(){ int n=0; int* g=&n; }`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
	assert.Equal(t, cast.KScalarDecl, prog.Statements[0].Kind)
	assert.Equal(t, cast.KPtrDecl, prog.Statements[1].Kind)
	assert.Equal(t, "g", prog.Statements[1].Name)
	assert.Equal(t, cast.KAddressOf, prog.Statements[1].RHS.Kind)
}

func TestParseDerefAssignCountsStars(t *testing.T) {
	prog, err := Parse(`int main(){ int n=0; int* p=&n; int** m=&p; **m=5; }`)
	require.NoError(t, err)
	last := prog.Statements[len(prog.Statements)-1]
	require.Equal(t, cast.KDerefAssign, last.Kind)
	assert.Equal(t, 2, last.DerefCount)
	assert.Equal(t, "m", cast.RootIdent(last.Operand))
}

func TestParseIfElseAndWhile(t *testing.T) {
	prog, err := Parse(`int main(){
		int n = 0;
		if (n == 0) { n = 1; } else { n = 2; }
		while (n != 0) { n = 0; }
	}`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 3)
	assert.Equal(t, cast.KIf, prog.Statements[1].Kind)
	assert.NotNil(t, prog.Statements[1].Else)
	assert.Equal(t, cast.KWhile, prog.Statements[2].Kind)
}

func TestParseStructDefAndLiteral(t *testing.T) {
	prog, err := Parse(`struct Test{int m; int j;}; int main(){ struct Test x = {0,2}; }`)
	require.NoError(t, err)
	require.Len(t, prog.Structs, 1)
	assert.Equal(t, "Test", prog.Structs[0].Name)
	require.Len(t, prog.Structs[0].Fields, 2)

	require.Len(t, prog.Statements, 1)
	decl := prog.Statements[0]
	assert.Equal(t, cast.KStructDecl, decl.Kind)
	require.Len(t, decl.FieldValues, 2)
	assert.EqualValues(t, 0, decl.FieldValues[0].IntVal)
	assert.EqualValues(t, 2, decl.FieldValues[1].IntVal)
}

func TestParseFieldAccessAndArrow(t *testing.T) {
	prog, err := Parse(`struct Pt{int x;}; int main(){ struct Pt a = {1}; struct Pt* p = &a; int v = p->x; }`)
	require.NoError(t, err)
	last := prog.Statements[len(prog.Statements)-1]
	require.Equal(t, cast.KScalarDecl, last.Kind)
	require.Equal(t, cast.KFieldAccess, last.RHS.Kind)
	assert.Equal(t, cast.KDeref, last.RHS.Base.Kind)
}

func TestParseForLoop(t *testing.T) {
	prog, err := Parse(`int main(){ int sum = 0; for (int i = 0; i < 10; i += 1) { sum += i; } }`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
	forNode := prog.Statements[1]
	require.Equal(t, cast.KFor, forNode.Kind)
	assert.Equal(t, cast.KScalarDecl, forNode.Init.Kind)
	assert.Equal(t, cast.KCompoundAssign, forNode.Post.Kind)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(`int main(){ )( }`)
	assert.Error(t, err)
}

func TestParseAsmRequiresStringLiteralBody(t *testing.T) {
	prog, err := Parse(`int main(){ asm("nop"); }`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	asm := prog.Statements[0]
	assert.Equal(t, cast.KAsm, asm.Kind)
	assert.Equal(t, "nop", asm.AsmBody)
}

func TestParseAsmRejectsNonStringBody(t *testing.T) {
	_, err := Parse(`int main(){ asm(nop); }`)
	assert.Error(t, err)
}

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeDeclarationAndAssignment(t *testing.T) {
	toks, err := Tokenize("int n = 0;")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KwInt, Ident, Assign, IntLit, Semi, EOF}, kinds(toks))
	assert.Equal(t, "n", toks[1].Text)
	assert.EqualValues(t, 0, toks[3].IntVal)
}

func TestTokenizePointerDeclaration(t *testing.T) {
	toks, err := Tokenize("int* g = &n;")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KwInt, Star, Ident, Assign, Amp, Ident, Semi, EOF}, kinds(toks))
}

func TestTokenizeMultiCharOperators(t *testing.T) {
	toks, err := Tokenize("x += 1; if (x == 1 && y != 2) {}")
	require.NoError(t, err)
	assert.Contains(t, kinds(toks), PlusAssign)
	assert.Contains(t, kinds(toks), Eq)
	assert.Contains(t, kinds(toks), AndAnd)
	assert.Contains(t, kinds(toks), Ne)
}

func TestTokenizeTracksLineNumbers(t *testing.T) {
	toks, err := Tokenize("int a;\nint b;\n")
	require.NoError(t, err)
	require.True(t, len(toks) >= 6)
	assert.Equal(t, 1, toks[0].Line)
	// "int b" starts on line 2.
	var bLine int
	for _, tok := range toks {
		if tok.Kind == Ident && tok.Text == "b" {
			bLine = tok.Line
		}
	}
	assert.Equal(t, 2, bLine)
}

func TestTokenizeCharLiteralWithEscape(t *testing.T) {
	toks, err := Tokenize("char c = '\\n';")
	require.NoError(t, err)
	require.Equal(t, CharLit, toks[3].Kind)
	assert.Equal(t, byte('\n'), toks[3].CharVal)
}

func TestTokenizeSkipsComments(t *testing.T) {
	toks, err := Tokenize("int a; // trailing\n/* block */ int b;")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KwInt, Ident, Semi, KwInt, Ident, Semi, EOF}, kinds(toks))
}

func TestTokenizeRejectsUnknownCharacter(t *testing.T) {
	_, err := Tokenize("int a = 1 $ 2;")
	assert.Error(t, err)
}

func TestTokenizeStringLiteral(t *testing.T) {
	toks, err := Tokenize(`asm("nop");`)
	require.NoError(t, err)
	assert.Equal(t, []Kind{KwAsm, LParen, StrLit, RParen, Semi, EOF}, kinds(toks))
	assert.Equal(t, "nop", toks[2].Text)
}

func TestTokenizeStringLiteralRejectsUnterminated(t *testing.T) {
	_, err := Tokenize(`asm("nop);`)
	assert.Error(t, err)
}

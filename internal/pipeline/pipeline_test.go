package pipeline

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// TestTranslateChainedMutableBorrowsRequiresNoAdjustment is scenario 1 of
// spec.md's end-to-end scenarios: fully legal chained mutable borrows,
// converging without any RC promotion, raw demotion, or clone insertion.
func TestTranslateChainedMutableBorrowsRequiresNoAdjustment(t *testing.T) {
	res, err := Translate(`int main(){ int n=0; int* g=&n; int* p=&n; int** m=&p; **m=5; }`, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.Contains(t, res.Source, "= 5;")
	assert.NotContains(t, res.Source, "Rc<")
	assert.NotContains(t, res.Source, "unsafe")
}

// TestTranslateValueAndPointerOverlapPromotesToRC is scenario 2: the adjuster
// must promote t to shared-interior-mutable and rewrite g's borrow as a
// clone of that cell.
func TestTranslateValueAndPointerOverlapPromotesToRC(t *testing.T) {
	res, err := Translate(`int main(){ int t=0; int* g=&t; t=1; *g=2; }`, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Iterations)
	assert.Contains(t, res.Source, "Rc<RefCell<i32>>")
	assert.Contains(t, res.Source, "Rc::new(RefCell::new(0))")
	assert.Contains(t, res.Source, "(*g.borrow_mut()) = 2;")
}

// TestTranslateDerefAssignSameLineAliasInsertsClone is scenario 3: k is read
// and written on the same line its pointer is used, so the adjuster clones k
// for the rhs read rather than promoting it to RC.
func TestTranslateDerefAssignSameLineAliasInsertsClone(t *testing.T) {
	res, err := Translate(`void main(){ int k=3; int* y=&k; *y=k+6; }`, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Iterations)
	assert.Contains(t, res.Source, "k_clone")
	assert.NotContains(t, res.Source, "Rc<", "this scenario resolves via clone, not RC promotion")
}

// TestTranslateTwoConstBorrowsWithMutableRHSReadPromotesToRC is scenario 4:
// two overlapping borrows of n, one of which becomes mutable via a
// deref-assignment, must resolve by promoting n to shared-interior-mutable.
func TestTranslateTwoConstBorrowsWithMutableRHSReadPromotesToRC(t *testing.T) {
	res, err := Translate(`int main(){ int n=0; int* g=&n; int* b=&n; int k=*g; int y=9; *b=y; }`, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Iterations)
	assert.Contains(t, res.Source, "Rc<RefCell<i32>>")
	assert.Contains(t, res.Source, "Rc::new(RefCell::new(0))")
	assert.Contains(t, res.Source, "(*b.borrow_mut()) = y;")
}

// TestTranslateMultiLevelWithLateRebindingRequiresNoRC is scenario 5: h's
// indirection touches g through a double pointer but no variable's static
// usages conflict with any reference's live range, so no RC is required.
func TestTranslateMultiLevelWithLateRebindingRequiresNoRC(t *testing.T) {
	res, err := Translate(`int main(){ int n=0; int* g=&n; int* k=&n; int** h=&g; int p=3; *h=&p; }`, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.NotContains(t, res.Source, "Rc<")
}

// TestTranslateStructFieldLiteralRecordsSchemaAndEmitsFieldInitializers is
// scenario 6: the struct schema is recorded and the declaration is emitted
// with its literal field initializers in declaration order.
func TestTranslateStructFieldLiteralRecordsSchemaAndEmitsFieldInitializers(t *testing.T) {
	res, err := Translate(`struct Test{int m; int j;}; int main(){ struct Test x = {0,2}; }`, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.Contains(t, res.Source, "struct Test {")
	assert.Contains(t, res.Source, "m: i32,")
	assert.Contains(t, res.Source, "j: i32,")
	assert.Contains(t, res.Source, "let x = Test { m: 0, j: 2 };")
}

func TestTranslateRejectsUnparseableSource(t *testing.T) {
	_, err := Translate(`int main(){ this is not valid C`, quietLogger())
	assert.Error(t, err)
}

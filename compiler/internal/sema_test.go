package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSema(content string, opts Options) (*Sema, *DiagEngine) {
	src := NewSource("test.c", content)
	diag := NewDiagEngine(src, nil, false)
	return NewSema(diag, NewTypeContext(), opts), diag
}

func identToken(name string, col int) Token {
	return Token{Type: IdentifierTP, Row: 1, Col: col, Offset: col - 1, Content: name}
}

func TestSema_DeclareVariable(t *testing.T) {
	sema, diag := newTestSema("int a; int a;", Options{})
	decl, err := sema.DeclareVariable(identToken("a", 5), sema.types.IntTy())
	require.NoError(t, err)
	assert.Equal(t, "a", decl.Name)
	assert.Nil(t, decl.Type(), "declarations are statements")

	_, err = sema.DeclareVariable(identToken("a", 12), sema.types.IntTy())
	require.Error(t, err)
	d, ok := err.(*Diagnostic)
	require.True(t, ok)
	assert.Equal(t, DiagErrRedefinition, d.ID)
	assert.Equal(t, 12, d.Loc.Col)
	require.Len(t, diag.Diagnostics(), 2)
	note := diag.Diagnostics()[1]
	assert.Equal(t, DiagNotePreviousDefinition, note.ID)
	assert.Equal(t, 5, note.Loc.Col)
}

func TestSema_WarnShadow(t *testing.T) {
	testData := []struct {
		warnShadow    bool
		expectedDiags int
	}{
		{warnShadow: false, expectedDiags: 0},
		{warnShadow: true, expectedDiags: 2},
	}
	for _, data := range testData {
		sema, diag := newTestSema("int a; { int a; }", Options{WarnShadow: data.warnShadow})
		_, err := sema.DeclareVariable(identToken("a", 5), sema.types.IntTy())
		require.NoError(t, err)
		sema.EnterScope()
		_, err = sema.DeclareVariable(identToken("a", 14), sema.types.IntTy())
		require.NoError(t, err)
		sema.ExitScope()
		assert.Len(t, diag.Diagnostics(), data.expectedDiags)
		assert.Nil(t, diag.Err())
	}
}

func TestSema_ReferenceVariable(t *testing.T) {
	sema, diag := newTestSema("x;", Options{})
	_, err := sema.ReferenceVariable(identToken("x", 1))
	require.Error(t, err)
	assert.Equal(t, DiagErrUndefinedVariable, err.(*Diagnostic).ID)
	assert.Equal(t, 1, diag.ErrorCount())

	decl, err := sema.DeclareVariable(identToken("y", 1), sema.types.IntTy())
	require.NoError(t, err)
	ref, err := sema.ReferenceVariable(identToken("y", 3))
	require.NoError(t, err)
	assert.Same(t, decl.Symbol, ref.Symbol)
	assert.Same(t, sema.types.IntTy(), ref.Type())
}

func TestSema_Assign(t *testing.T) {
	sema, _ := newTestSema("", Options{})
	assignToken := Token{Type: AssignTP, Content: "="}
	_, err := sema.DeclareVariable(identToken("a", 1), sema.types.IntTy())
	require.NoError(t, err)
	lhs, err := sema.ReferenceVariable(identToken("a", 1))
	require.NoError(t, err)
	one := sema.Number(Token{Type: NumberTP, Content: "1", Value: 1})

	assign, err := sema.Assign(lhs, one, assignToken)
	require.NoError(t, err)
	assert.Same(t, lhs, assign.LHS)
	assert.Equal(t, sema.types.IntTy(), assign.Type())

	sum := sema.Binary(AddOpAst, lhs, one, Token{Type: AddTP, Content: "+"})
	_, err = sema.Assign(sum, one, assignToken)
	require.Error(t, err)
	assert.Equal(t, DiagErrNotAssignable, err.(*Diagnostic).ID)

	_, err = sema.Assign(one, one, assignToken)
	require.Error(t, err)
}

func TestSema_IfStmtRequiresCondAndThen(t *testing.T) {
	sema, _ := newTestSema("", Options{})
	one := sema.Number(Token{Type: NumberTP, Content: "1", Value: 1})
	_, err := sema.IfStmt(nil, one, nil, Token{})
	assert.Error(t, err)
	_, err = sema.IfStmt(one, nil, nil, Token{})
	assert.Error(t, err)
	ifStmt, err := sema.IfStmt(one, one, nil, Token{})
	require.NoError(t, err)
	assert.Nil(t, ifStmt.Else)
}

func TestSema_Loops(t *testing.T) {
	sema, _ := newTestSema("", Options{})
	outer := sema.OpenLoop(Token{Type: ForTP})
	inner := sema.OpenLoop(Token{Type: ForTP})
	assert.Equal(t, LoopID(0), outer)
	assert.Equal(t, LoopID(1), inner)

	brk := sema.BreakStmt(inner, Token{Type: BreakTP})
	innerLoop := sema.ForStmt(inner, nil, nil, nil, brk)
	outerLoop := sema.ForStmt(outer, nil, nil, nil, innerLoop)
	prog := sema.Program([]Node{outerLoop})
	assert.Same(t, innerLoop, prog.Loop(brk.Target))
	assert.Same(t, outerLoop, prog.Loop(outer))
	assert.Same(t, brk, innerLoop.Body)
}

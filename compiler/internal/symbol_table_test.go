package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_DeclareAndResolve(t *testing.T) {
	types := NewTypeContext()
	scope := NewScope()
	assert.Equal(t, 1, scope.Depth())

	x, err := scope.Declare("x", types.IntTy(), Token{Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, VariableSymbolKind, x.Kind)
	assert.Same(t, types.IntTy(), x.Ty)

	resolved, err := scope.Resolve("x")
	require.NoError(t, err)
	assert.Same(t, x, resolved)

	_, err = scope.Resolve("y")
	assert.True(t, errors.Is(err, ErrUndefinedVariable))
}

func TestScope_Nesting(t *testing.T) {
	types := NewTypeContext()
	scope := NewScope()
	outer, err := scope.Declare("x", types.IntTy(), Token{})
	require.NoError(t, err)

	scope.EnterScope()
	assert.Equal(t, 2, scope.Depth())
	inner, err := scope.Declare("x", types.IntTy(), Token{})
	require.NoError(t, err, "shadowing an outer declaration is legal")
	y, err := scope.Declare("y", types.IntTy(), Token{})
	require.NoError(t, err)

	resolved, err := scope.Resolve("x")
	require.NoError(t, err)
	assert.Same(t, inner, resolved)
	_, ok := scope.ResolveInCurrent("y")
	assert.True(t, ok)

	prev, err := scope.Declare("y", types.IntTy(), Token{})
	assert.True(t, errors.Is(err, ErrRedeclaration))
	assert.Same(t, y, prev)

	scope.ExitScope()
	resolved, err = scope.Resolve("x")
	require.NoError(t, err)
	assert.Same(t, outer, resolved)
	_, err = scope.Resolve("y")
	assert.True(t, errors.Is(err, ErrUndefinedVariable))
	_, ok = scope.ResolveInCurrent("y")
	assert.False(t, ok)
}

func TestScope_ExitGlobalPanics(t *testing.T) {
	scope := NewScope()
	scope.EnterScope()
	scope.ExitScope()
	assert.Panics(t, func() { scope.ExitScope() })
}

func TestTypeContext_Interning(t *testing.T) {
	types := NewTypeContext()
	ty := types.IntTy()
	assert.Same(t, ty, types.IntTy())
	assert.Equal(t, 4, ty.Size)
	assert.Equal(t, 4, ty.Align)
	assert.Equal(t, "int", ty.String())
	assert.NotSame(t, ty, NewTypeContext().IntTy())
	var none *CType
	assert.Equal(t, "<none>", none.String())
}

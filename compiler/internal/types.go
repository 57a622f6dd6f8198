package internal

type TypeKind int

const (
	IntTypeKind TypeKind = iota
)

func (k TypeKind) String() string {
	switch k {
	case IntTypeKind:
		return "int"
	}
	return "unknown"
}

// CType is an immutable type descriptor. Handles are shared, compare them by pointer.
type CType struct {
	Kind  TypeKind
	Size  int
	Align int
}

func (t *CType) String() string {
	if t == nil {
		return "<none>"
	}
	return t.Kind.String()
}

// TypeContext interns the types of one compilation. It is created when the compilation
// starts and dropped with it, so nothing is shared between two compilations.
type TypeContext struct {
	interned map[TypeKind]*CType
}

func NewTypeContext() *TypeContext {
	return &TypeContext{interned: map[TypeKind]*CType{}}
}

func (tc *TypeContext) IntTy() *CType {
	return tc.intern(IntTypeKind, 4, 4)
}

func (tc *TypeContext) intern(kind TypeKind, size, align int) *CType {
	ty, ok := tc.interned[kind]
	if ok {
		return ty
	}
	ty = &CType{Kind: kind, Size: size, Align: align}
	tc.interned[kind] = ty
	return ty
}

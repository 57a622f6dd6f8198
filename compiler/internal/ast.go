package internal

// In this file, we defined all ast of tinycc. A program is a list of top level statements which
// are all lowered into the body of main. Nodes are only built by Sema.

// Node is implemented by the ast types of this file only.
type Node interface {
	node()
	Type() *CType
	Token() Token
}

type nodeBase struct {
	// Ty is nil for statements.
	Ty  *CType
	Tok Token
}

func (n *nodeBase) node() {}

func (n *nodeBase) Type() *CType {
	return n.Ty
}

func (n *nodeBase) Token() Token {
	return n.Tok
}

// LoopID indexes Program.Loops. break and continue refer to their loop by LoopID.
type LoopID int

type Program struct {
	nodeBase
	Stmts []Node
	Loops []*ForStmt
}

func (prog *Program) Loop(id LoopID) *ForStmt {
	return prog.Loops[id]
}

type BlockStmt struct {
	nodeBase
	Stmts []Node
}

// DeclStmt holds VariableDecl and, for initialized declarators, the AssignExpr right after it.
type DeclStmt struct {
	nodeBase
	Decls []Node
}

type IfStmt struct {
	nodeBase
	Cond Node
	Then Node
	// Else can be nil.
	Else Node
}

// ForStmt parts other than Body can be nil, a missing Cond loops forever.
type ForStmt struct {
	nodeBase
	ID   LoopID
	Init Node
	Cond Node
	Inc  Node
	Body Node
}

type BreakStmt struct {
	nodeBase
	Target LoopID
}

type ContinueStmt struct {
	nodeBase
	Target LoopID
}

type VariableDecl struct {
	nodeBase
	Name   string
	Symbol *Symbol
}

type AssignExpr struct {
	nodeBase
	LHS *VariableExpr
	RHS Node
}

type BinaryExpr struct {
	nodeBase
	Op  OpAst
	LHS Node
	RHS Node
}

type NumberExpr struct {
	nodeBase
	Value int32
}

type VariableExpr struct {
	nodeBase
	Name   string
	Symbol *Symbol
}

type OpCode int

const (
	AddOpTP OpCode = iota
	MinusOpTP
	MultiplyOpTP
	DivideOpTP
	ModOpTP
	LeftShiftOpTP
	RightShiftOpTP
	LessOpTP
	LessEqualOpTP
	GreaterOpTP
	GreaterEqualOpTP
	EqualOpTP
	NotEqualOpTP
	BitAndOpTP
	BitXorOpTP
	BitOrOpTP
	LogicalAndOpTP
	LogicalOrOpTP
)

// OpAst describes a binary operator. A higher priority binds tighter, all operators are
// left associative.
type OpAst struct {
	Op       OpCode
	priority int
	Name     string
}

func (op OpAst) String() string {
	return op.Name
}

func (op OpAst) IsShortCircuit() bool {
	return op.Op == LogicalAndOpTP || op.Op == LogicalOrOpTP
}

func (op OpAst) IsComparison() bool {
	switch op.Op {
	case LessOpTP, LessEqualOpTP, GreaterOpTP, GreaterEqualOpTP, EqualOpTP, NotEqualOpTP:
		return true
	}
	return false
}

var (
	LogicalOrOpAst    = OpAst{Op: LogicalOrOpTP, priority: 1, Name: "||"}
	LogicalAndOpAst   = OpAst{Op: LogicalAndOpTP, priority: 2, Name: "&&"}
	BitOrOpAst        = OpAst{Op: BitOrOpTP, priority: 3, Name: "|"}
	BitXorOpAst       = OpAst{Op: BitXorOpTP, priority: 4, Name: "^"}
	BitAndOpAst       = OpAst{Op: BitAndOpTP, priority: 5, Name: "&"}
	EqualOpAst        = OpAst{Op: EqualOpTP, priority: 6, Name: "=="}
	NotEqualOpAst     = OpAst{Op: NotEqualOpTP, priority: 6, Name: "!="}
	LessOpAst         = OpAst{Op: LessOpTP, priority: 7, Name: "<"}
	LessEqualOpAst    = OpAst{Op: LessEqualOpTP, priority: 7, Name: "<="}
	GreaterOpAst      = OpAst{Op: GreaterOpTP, priority: 7, Name: ">"}
	GreaterEqualOpAst = OpAst{Op: GreaterEqualOpTP, priority: 7, Name: ">="}
	LeftShiftOpAst    = OpAst{Op: LeftShiftOpTP, priority: 8, Name: "<<"}
	RightShiftOpAst   = OpAst{Op: RightShiftOpTP, priority: 8, Name: ">>"}
	AddOpAst          = OpAst{Op: AddOpTP, priority: 9, Name: "+"}
	MinusOpAst        = OpAst{Op: MinusOpTP, priority: 9, Name: "-"}
	MultiplyOpAst     = OpAst{Op: MultiplyOpTP, priority: 10, Name: "*"}
	DivideOpAst       = OpAst{Op: DivideOpTP, priority: 10, Name: "/"}
	ModOpAst          = OpAst{Op: ModOpTP, priority: 10, Name: "%"}
)

var tokenOpAstMap = map[TokenType]OpAst{
	LogicalOrTP:    LogicalOrOpAst,
	LogicalAndTP:   LogicalAndOpAst,
	BitOrTP:        BitOrOpAst,
	BitXorTP:       BitXorOpAst,
	BitAndTP:       BitAndOpAst,
	EqualEqualTP:   EqualOpAst,
	NotEqualTP:     NotEqualOpAst,
	LessTP:         LessOpAst,
	LessEqualTP:    LessEqualOpAst,
	GreaterTP:      GreaterOpAst,
	GreaterEqualTP: GreaterEqualOpAst,
	LeftShiftTP:    LeftShiftOpAst,
	RightShiftTP:   RightShiftOpAst,
	AddTP:          AddOpAst,
	MinusTP:        MinusOpAst,
	MultiplyTP:     MultiplyOpAst,
	DivideTP:       DivideOpAst,
	ModTP:          ModOpAst,
}

package internal

import (
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// printfFormat is how main shows the value of the last top level statement.
const printfFormat = "Expr value = %d\n"

type loopTargets struct {
	breakTo    *ir.Block
	continueTo *ir.Block
}

// CodeGenerator lowers a Program into the function main of an LLVM module. Variables live in
// stack slots allocated at the top of the entry block and are accessed with load and store,
// only && and || need phi nodes.
type CodeGenerator struct {
	types  *TypeContext
	opts   Options
	module *ir.Module
	fn     *ir.Func
	printf *ir.Func
	format *ir.Global

	entry *ir.Block
	// block is where instructions are appended.
	block *ir.Block
	// allocas is the number of stack slots at the head of entry.
	allocas int
	slots   map[*Symbol]*ir.InstAlloca
	loops   map[LoopID]loopTargets
	// names keeps local names of blocks and slots unique in main.
	names   map[string]bool
	counter map[string]int
}

func NewCodeGenerator(types *TypeContext, opts Options) *CodeGenerator {
	return &CodeGenerator{
		types:   types,
		opts:    opts,
		slots:   map[*Symbol]*ir.InstAlloca{},
		loops:   map[LoopID]loopTargets{},
		names:   map[string]bool{},
		counter: map[string]int{},
	}
}

func (g *CodeGenerator) Generate(prog *Program, sourceName string) (*ir.Module, error) {
	g.module = ir.NewModule()
	g.module.SourceFilename = sourceName
	if g.opts.TargetTriple != "" {
		g.module.TargetTriple = g.opts.TargetTriple
	}
	g.declarePrintf()
	g.fn = g.module.NewFunc("main", types.I32)
	g.entry = g.newBlock("entry")
	g.startBlock(g.entry)
	var last value.Value
	for _, stmt := range prog.Stmts {
		v, err := g.generate(stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	if last != nil {
		g.block.NewCall(g.printf, g.formatString(), last)
	}
	if g.block.Term != nil {
		return nil, g.internalError("main already terminated in block %s", g.block.Name())
	}
	g.block.NewRet(constant.NewInt(types.I32, 0))
	err := g.fn.AssignIDs()
	if err != nil {
		return nil, err
	}
	return g.module, nil
}

func (g *CodeGenerator) declarePrintf() {
	g.printf = g.module.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	g.printf.Sig.Variadic = true
	g.format = g.module.NewGlobalDef(".str", constant.NewCharArrayFromString(printfFormat+"\x00"))
	g.format.Immutable = true
	g.format.Linkage = enum.LinkagePrivate
}

func (g *CodeGenerator) formatString() constant.Constant {
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(g.format.ContentType, g.format, zero, zero)
}

// generate lowers node at the insertion block. Statements yield no value, expressions,
// blocks and declarations yield the value of what they end with.
func (g *CodeGenerator) generate(node Node) (value.Value, error) {
	switch n := node.(type) {
	case *BlockStmt:
		return g.generateStmts(n.Stmts)
	case *DeclStmt:
		return g.generateStmts(n.Decls)
	case *VariableDecl:
		return nil, g.generateVariableDecl(n)
	case *IfStmt:
		return nil, g.generateIfStmt(n)
	case *ForStmt:
		return nil, g.generateForStmt(n)
	case *BreakStmt:
		return nil, g.generateJump(n.Target, true)
	case *ContinueStmt:
		return nil, g.generateJump(n.Target, false)
	case *AssignExpr:
		return g.generateAssignExpr(n)
	case *BinaryExpr:
		return g.generateBinaryExpr(n)
	case *NumberExpr:
		return constant.NewInt(types.I32, int64(n.Value)), nil
	case *VariableExpr:
		slot, err := g.slotOf(n.Symbol)
		if err != nil {
			return nil, err
		}
		return g.block.NewLoad(g.irType(n.Ty), slot), nil
	}
	return nil, g.internalError("unexpected node %T", node)
}

func (g *CodeGenerator) generateStmts(stmts []Node) (value.Value, error) {
	var last value.Value
	for _, stmt := range stmts {
		v, err := g.generate(stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (g *CodeGenerator) generateVariableDecl(decl *VariableDecl) error {
	ty := decl.Symbol.Ty
	alloca := ir.NewAlloca(g.irType(ty))
	alloca.SetName(g.uniqueName(decl.Name))
	alloca.Align = ir.Align(ty.Align)
	insts := append(g.entry.Insts, nil)
	copy(insts[g.allocas+1:], insts[g.allocas:])
	insts[g.allocas] = alloca
	g.entry.Insts = insts
	g.allocas++
	g.slots[decl.Symbol] = alloca
	return nil
}

func (g *CodeGenerator) generateAssignExpr(assign *AssignExpr) (value.Value, error) {
	v, err := g.generate(assign.RHS)
	if err != nil {
		return nil, err
	}
	slot, err := g.slotOf(assign.LHS.Symbol)
	if err != nil {
		return nil, err
	}
	g.block.NewStore(v, slot)
	return v, nil
}

// generateIfStmt:
//
//	br if.cond
//	if.cond: cond, br cond != 0, if.then, if.else (if.last without else)
//	if.then: then, br if.last
//	if.else: else, br if.last
//	if.last:
func (g *CodeGenerator) generateIfStmt(stmt *IfStmt) error {
	condBlock, thenBlock := g.newBlock("if.cond"), g.newBlock("if.then")
	var elseBlock *ir.Block
	if stmt.Else != nil {
		elseBlock = g.newBlock("if.else")
	}
	lastBlock := g.newBlock("if.last")
	falseBlock := lastBlock
	if elseBlock != nil {
		falseBlock = elseBlock
	}

	err := g.br(condBlock)
	if err != nil {
		return err
	}
	g.startBlock(condBlock)
	err = g.generateCondition(stmt.Cond, thenBlock, falseBlock)
	if err != nil {
		return err
	}

	g.startBlock(thenBlock)
	_, err = g.generate(stmt.Then)
	if err != nil {
		return err
	}
	err = g.br(lastBlock)
	if err != nil {
		return err
	}

	if elseBlock != nil {
		g.startBlock(elseBlock)
		_, err = g.generate(stmt.Else)
		if err != nil {
			return err
		}
		err = g.br(lastBlock)
		if err != nil {
			return err
		}
	}
	g.startBlock(lastBlock)
	return nil
}

// generateForStmt:
//
//	br for.init
//	for.init: init, br for.cond
//	for.cond: cond, br cond != 0, for.body, for.last (br for.body without cond)
//	for.body: body, br for.inc
//	for.inc: inc, br for.cond
//	for.last:
func (g *CodeGenerator) generateForStmt(stmt *ForStmt) error {
	initBlock, condBlock := g.newBlock("for.init"), g.newBlock("for.cond")
	incBlock, bodyBlock := g.newBlock("for.inc"), g.newBlock("for.body")
	lastBlock := g.newBlock("for.last")

	err := g.br(initBlock)
	if err != nil {
		return err
	}
	g.startBlock(initBlock)
	if stmt.Init != nil {
		_, err = g.generate(stmt.Init)
		if err != nil {
			return err
		}
	}
	err = g.br(condBlock)
	if err != nil {
		return err
	}

	g.startBlock(condBlock)
	if stmt.Cond != nil {
		err = g.generateCondition(stmt.Cond, bodyBlock, lastBlock)
	} else {
		err = g.br(bodyBlock)
	}
	if err != nil {
		return err
	}

	g.loops[stmt.ID] = loopTargets{breakTo: lastBlock, continueTo: incBlock}
	defer delete(g.loops, stmt.ID)
	g.startBlock(bodyBlock)
	_, err = g.generate(stmt.Body)
	if err != nil {
		return err
	}
	err = g.br(incBlock)
	if err != nil {
		return err
	}

	g.startBlock(incBlock)
	if stmt.Inc != nil {
		_, err = g.generate(stmt.Inc)
		if err != nil {
			return err
		}
	}
	err = g.br(condBlock)
	if err != nil {
		return err
	}
	g.startBlock(lastBlock)
	return nil
}

// generateJump branches to the target of loop and opens an unreachable block for whatever
// follows the jump in the same block.
func (g *CodeGenerator) generateJump(loop LoopID, isBreak bool) error {
	targets, ok := g.loops[loop]
	if !ok {
		return g.internalError("jump to loop %d outside of it", loop)
	}
	target, deadName := targets.continueTo, "for.continue.death"
	if isBreak {
		target, deadName = targets.breakTo, "for.break.death"
	}
	err := g.br(target)
	if err != nil {
		return err
	}
	g.startBlock(g.newBlock(deadName))
	return nil
}

// generateCondition ends the current block with a branch on cond != 0.
func (g *CodeGenerator) generateCondition(cond Node, trueBlock, falseBlock *ir.Block) error {
	v, err := g.generate(cond)
	if err != nil {
		return err
	}
	if g.block.Term != nil {
		return g.internalError("block %s already terminated", g.block.Name())
	}
	g.block.NewCondBr(g.truth(v), trueBlock, falseBlock)
	return nil
}

func (g *CodeGenerator) generateBinaryExpr(expr *BinaryExpr) (value.Value, error) {
	if expr.Op.IsShortCircuit() {
		return g.generateShortCircuit(expr)
	}
	x, err := g.generate(expr.LHS)
	if err != nil {
		return nil, err
	}
	y, err := g.generate(expr.RHS)
	if err != nil {
		return nil, err
	}
	nsw := []enum.OverflowFlag{enum.OverflowFlagNSW}
	switch expr.Op.Op {
	case AddOpTP:
		inst := g.block.NewAdd(x, y)
		inst.OverflowFlags = nsw
		return inst, nil
	case MinusOpTP:
		inst := g.block.NewSub(x, y)
		inst.OverflowFlags = nsw
		return inst, nil
	case MultiplyOpTP:
		inst := g.block.NewMul(x, y)
		inst.OverflowFlags = nsw
		return inst, nil
	case DivideOpTP:
		return g.block.NewSDiv(x, y), nil
	case ModOpTP:
		return g.block.NewSRem(x, y), nil
	case LeftShiftOpTP:
		return g.block.NewShl(x, y), nil
	case RightShiftOpTP:
		return g.block.NewAShr(x, y), nil
	case BitAndOpTP:
		return g.block.NewAnd(x, y), nil
	case BitOrOpTP:
		return g.block.NewOr(x, y), nil
	case BitXorOpTP:
		return g.block.NewXor(x, y), nil
	case LessOpTP:
		return g.compare(enum.IPredSLT, x, y), nil
	case LessEqualOpTP:
		return g.compare(enum.IPredSLE, x, y), nil
	case GreaterOpTP:
		return g.compare(enum.IPredSGT, x, y), nil
	case GreaterEqualOpTP:
		return g.compare(enum.IPredSGE, x, y), nil
	case EqualOpTP:
		return g.compare(enum.IPredEQ, x, y), nil
	case NotEqualOpTP:
		return g.compare(enum.IPredNE, x, y), nil
	}
	return nil, g.internalError("unexpected operator %s", expr.Op)
}

// generateShortCircuit lowers && and ||:
//
//	lhs != 0 ? land.rhs : land.short (swapped for ||)
//	land.rhs: rhs, zext rhs != 0, br land.merge
//	land.short: br land.merge
//	land.merge: phi [rhs result, block that ended land.rhs], [0 or 1, land.short]
//
// The right operand may open blocks of its own, so the incoming block of its phi edge is
// the insertion block after lowering it.
func (g *CodeGenerator) generateShortCircuit(expr *BinaryExpr) (value.Value, error) {
	prefix, shortValue := "land", int64(0)
	if expr.Op.Op == LogicalOrOpTP {
		prefix, shortValue = "lor", 1
	}
	x, err := g.generate(expr.LHS)
	if err != nil {
		return nil, err
	}
	rhsBlock, shortBlock := g.newBlock(prefix+".rhs"), g.newBlock(prefix+".short")
	mergeBlock := g.newBlock(prefix + ".merge")
	if g.block.Term != nil {
		return nil, g.internalError("block %s already terminated", g.block.Name())
	}
	if shortValue == 0 {
		g.block.NewCondBr(g.truth(x), rhsBlock, shortBlock)
	} else {
		g.block.NewCondBr(g.truth(x), shortBlock, rhsBlock)
	}

	g.startBlock(rhsBlock)
	y, err := g.generate(expr.RHS)
	if err != nil {
		return nil, err
	}
	rhsValue := g.block.NewZExt(g.truth(y), types.I32)
	rhsExit := g.block
	err = g.br(mergeBlock)
	if err != nil {
		return nil, err
	}

	g.startBlock(shortBlock)
	err = g.br(mergeBlock)
	if err != nil {
		return nil, err
	}

	g.startBlock(mergeBlock)
	phi := g.block.NewPhi(
		ir.NewIncoming(rhsValue, rhsExit),
		ir.NewIncoming(constant.NewInt(types.I32, shortValue), shortBlock),
	)
	return phi, nil
}

func (g *CodeGenerator) compare(pred enum.IPred, x, y value.Value) value.Value {
	return g.block.NewZExt(g.block.NewICmp(pred, x, y), types.I32)
}

// truth turns an i32 into the i1 that branches take.
func (g *CodeGenerator) truth(v value.Value) value.Value {
	return g.block.NewICmp(enum.IPredNE, v, constant.NewInt(types.I32, 0))
}

func (g *CodeGenerator) br(target *ir.Block) error {
	if g.block.Term != nil {
		return g.internalError("block %s already terminated", g.block.Name())
	}
	g.block.NewBr(target)
	return nil
}

func (g *CodeGenerator) newBlock(name string) *ir.Block {
	return ir.NewBlock(g.uniqueName(name))
}

// startBlock appends block to main and moves the insertion point there.
func (g *CodeGenerator) startBlock(block *ir.Block) {
	block.Parent = g.fn
	g.fn.Blocks = append(g.fn.Blocks, block)
	g.block = block
}

func (g *CodeGenerator) uniqueName(base string) string {
	for {
		name := base
		if n := g.counter[base]; n > 0 {
			name = base + strconv.Itoa(n)
		}
		g.counter[base]++
		if !g.names[name] {
			g.names[name] = true
			return name
		}
	}
}

func (g *CodeGenerator) slotOf(symbol *Symbol) (*ir.InstAlloca, error) {
	slot, ok := g.slots[symbol]
	if !ok {
		return nil, g.internalError("no stack slot for variable %s", symbol.Name)
	}
	return slot, nil
}

func (g *CodeGenerator) irType(ty *CType) types.Type {
	if ty == nil || ty.Size == 4 {
		return types.I32
	}
	return types.NewInt(uint64(ty.Size * 8))
}

func (g *CodeGenerator) internalError(format string, args ...interface{}) error {
	return fmt.Errorf("codegen: internal error: "+format, args...)
}

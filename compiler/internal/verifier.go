package internal

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// VerifyModule checks the structure of every function with a body in m. Declarations
// like printf are skipped.
func VerifyModule(m *ir.Module) error {
	for _, f := range m.Funcs {
		if len(f.Blocks) == 0 {
			continue
		}
		err := VerifyFunc(f)
		if err != nil {
			return err
		}
	}
	return nil
}

func makeVerifyError(f *ir.Func, block *ir.Block, format string, args ...interface{}) error {
	where := "@" + f.Name()
	if block != nil {
		where += ": block " + block.Name()
	}
	return errors.New(fmt.Sprintf("verifier: %s: %s", where, fmt.Sprintf(format, args...)))
}

type instPos struct {
	block *ir.Block
	index int
}

// VerifyFunc checks that f has blocks, each ending in a terminator that targets blocks of f,
// that phis lead their block with one incoming edge per predecessor, and that instruction
// operands are defined in f, earlier in the block when used from the same block.
func VerifyFunc(f *ir.Func) error {
	if len(f.Blocks) == 0 {
		return makeVerifyError(f, nil, "function has no blocks")
	}
	inFunc := make(map[*ir.Block]bool, len(f.Blocks))
	defined := map[value.Value]instPos{}
	for _, block := range f.Blocks {
		inFunc[block] = true
		for i, inst := range block.Insts {
			v, ok := inst.(value.Value)
			if ok {
				defined[v] = instPos{block: block, index: i}
			}
		}
	}
	for _, block := range f.Blocks {
		if block.Term == nil {
			return makeVerifyError(f, block, "missing terminator")
		}
		for _, succ := range block.Term.Succs() {
			if !inFunc[succ] {
				return makeVerifyError(f, block, "branch to block %s outside of the function", succ.Name())
			}
		}
	}
	preds := Predecessors(f)
	for _, block := range f.Blocks {
		seenNonPhi := false
		for i, inst := range block.Insts {
			phi, isPhi := inst.(*ir.InstPhi)
			if isPhi {
				if seenNonPhi {
					return makeVerifyError(f, block, "phi is not at the start of the block")
				}
				err := verifyPhi(f, block, phi, preds[block])
				if err != nil {
					return err
				}
			} else {
				seenNonPhi = true
			}
			for _, operand := range instOperands(inst) {
				err := verifyOperand(f, block, i, operand, defined, isPhi)
				if err != nil {
					return err
				}
			}
		}
		for _, operand := range termOperands(block.Term) {
			err := verifyOperand(f, block, len(block.Insts), operand, defined, false)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func verifyPhi(f *ir.Func, block *ir.Block, phi *ir.InstPhi, preds []*ir.Block) error {
	incoming := map[*ir.Block]bool{}
	for _, inc := range phi.Incs {
		var pred value.Value = inc.Pred
		predBlock, ok := pred.(*ir.Block)
		if !ok {
			return makeVerifyError(f, block, "phi incoming edge from a non block value")
		}
		if incoming[predBlock] {
			return makeVerifyError(f, block, "phi has two incoming edges from block %s", predBlock.Name())
		}
		incoming[predBlock] = true
	}
	if len(incoming) != len(preds) {
		return makeVerifyError(f, block, "phi has %d incoming blocks, but the block has %d predecessors",
			len(incoming), len(preds))
	}
	for _, pred := range preds {
		if !incoming[pred] {
			return makeVerifyError(f, block, "phi misses an incoming edge from predecessor %s", pred.Name())
		}
	}
	return nil
}

func verifyOperand(f *ir.Func, block *ir.Block, index int, operand value.Value, defined map[value.Value]instPos,
	fromPhi bool) error {
	if _, ok := operand.(ir.Instruction); !ok {
		return nil
	}
	pos, ok := defined[operand]
	if !ok {
		return makeVerifyError(f, block, "operand %s is not defined in the function", operand.Ident())
	}
	if !fromPhi && pos.block == block && pos.index >= index {
		return makeVerifyError(f, block, "operand %s is used before it is defined", operand.Ident())
	}
	return nil
}

// Predecessors maps each block of f to the distinct blocks branching to it, in block order.
func Predecessors(f *ir.Func) map[*ir.Block][]*ir.Block {
	preds := map[*ir.Block][]*ir.Block{}
	for _, block := range f.Blocks {
		if block.Term == nil {
			continue
		}
		seen := map[*ir.Block]bool{}
		for _, succ := range block.Term.Succs() {
			if seen[succ] {
				continue
			}
			seen[succ] = true
			preds[succ] = append(preds[succ], block)
		}
	}
	return preds
}

// instOperands lists the value operands of the instructions the code generator emits.
func instOperands(inst ir.Instruction) []value.Value {
	switch inst := inst.(type) {
	case *ir.InstLoad:
		return []value.Value{inst.Src}
	case *ir.InstStore:
		return []value.Value{inst.Src, inst.Dst}
	case *ir.InstAdd:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstSub:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstMul:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstSDiv:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstSRem:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstShl:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstAShr:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstAnd:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstOr:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstXor:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstICmp:
		return []value.Value{inst.X, inst.Y}
	case *ir.InstZExt:
		return []value.Value{inst.From}
	case *ir.InstCall:
		return inst.Args
	case *ir.InstPhi:
		operands := make([]value.Value, 0, len(inst.Incs))
		for _, inc := range inst.Incs {
			operands = append(operands, inc.X)
		}
		return operands
	}
	return nil
}

func termOperands(term ir.Terminator) []value.Value {
	switch term := term.(type) {
	case *ir.TermRet:
		if term.X == nil {
			return nil
		}
		return []value.Value{term.X}
	case *ir.TermCondBr:
		return []value.Value{term.Cond}
	}
	return nil
}

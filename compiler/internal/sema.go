package internal

import (
	"errors"
	"fmt"
)

// Sema is called by the parser while it parses. It checks names and lvalues, reports through
// the DiagEngine and builds the ast. Every error it returns has already been reported.
type Sema struct {
	diag       *DiagEngine
	types      *TypeContext
	scope      *Scope
	loops      []*ForStmt
	warnShadow bool
}

func NewSema(diag *DiagEngine, types *TypeContext, opts Options) *Sema {
	return &Sema{diag: diag, types: types, scope: NewScope(), warnShadow: opts.WarnShadow}
}

func (sema *Sema) EnterScope() {
	sema.scope.EnterScope()
}

func (sema *Sema) ExitScope() {
	sema.scope.ExitScope()
}

func (sema *Sema) DeclareVariable(tok Token, ty *CType) (*VariableDecl, error) {
	name := tok.Content
	if prev, ok := sema.scope.ResolveInCurrent(name); ok {
		d := sema.diag.ReportAt(tok, DiagErrRedefinition, name)
		sema.diag.ReportAt(prev.Tok, DiagNotePreviousDefinition)
		return nil, d
	}
	if sema.warnShadow {
		if outer, ok := sema.scope.resolveOuter(name); ok {
			sema.diag.ReportAt(tok, DiagWarnShadowedVariable, name)
			sema.diag.ReportAt(outer.Tok, DiagNotePreviousDefinition)
		}
	}
	symbol, err := sema.scope.Declare(name, ty, tok)
	if err != nil {
		return nil, err
	}
	return &VariableDecl{nodeBase: nodeBase{Tok: tok}, Name: name, Symbol: symbol}, nil
}

func (sema *Sema) ReferenceVariable(tok Token) (*VariableExpr, error) {
	symbol, err := sema.scope.Resolve(tok.Content)
	if errors.Is(err, ErrUndefinedVariable) {
		return nil, sema.diag.ReportAt(tok, DiagErrUndefinedVariable, tok.Content)
	}
	if err != nil {
		return nil, err
	}
	return &VariableExpr{nodeBase: nodeBase{Ty: symbol.Ty, Tok: tok}, Name: symbol.Name, Symbol: symbol}, nil
}

// Assign only accepts a variable on the left, tok is the '=' token.
func (sema *Sema) Assign(lhs Node, rhs Node, tok Token) (*AssignExpr, error) {
	variable, ok := lhs.(*VariableExpr)
	if !ok {
		return nil, sema.diag.ReportAt(tok, DiagErrNotAssignable)
	}
	return &AssignExpr{nodeBase: nodeBase{Ty: variable.Ty, Tok: tok}, LHS: variable, RHS: rhs}, nil
}

func (sema *Sema) Binary(op OpAst, lhs Node, rhs Node, tok Token) *BinaryExpr {
	return &BinaryExpr{nodeBase: nodeBase{Ty: sema.types.IntTy(), Tok: tok}, Op: op, LHS: lhs, RHS: rhs}
}

func (sema *Sema) Number(tok Token) *NumberExpr {
	ty := tok.Ty
	if ty == nil {
		ty = sema.types.IntTy()
	}
	return &NumberExpr{nodeBase: nodeBase{Ty: ty, Tok: tok}, Value: tok.Value}
}

func (sema *Sema) IfStmt(cond, then, els Node, tok Token) (*IfStmt, error) {
	if cond == nil || then == nil {
		return nil, fmt.Errorf("%s: if statement without condition or body", sema.diag.LocationOf(tok))
	}
	return &IfStmt{nodeBase: nodeBase{Tok: tok}, Cond: cond, Then: then, Else: els}, nil
}

func (sema *Sema) BlockStmt(stmts []Node, tok Token) *BlockStmt {
	return &BlockStmt{nodeBase: nodeBase{Tok: tok}, Stmts: stmts}
}

func (sema *Sema) DeclStmt(decls []Node, tok Token) *DeclStmt {
	return &DeclStmt{nodeBase: nodeBase{Tok: tok}, Decls: decls}
}

// OpenLoop reserves the loop before its body is parsed, so break and continue inside the body
// can already refer to it.
func (sema *Sema) OpenLoop(tok Token) LoopID {
	id := LoopID(len(sema.loops))
	sema.loops = append(sema.loops, &ForStmt{nodeBase: nodeBase{Tok: tok}, ID: id})
	return id
}

func (sema *Sema) ForStmt(id LoopID, init, cond, inc, body Node) *ForStmt {
	loop := sema.loops[id]
	loop.Init, loop.Cond, loop.Inc, loop.Body = init, cond, inc, body
	return loop
}

func (sema *Sema) BreakStmt(target LoopID, tok Token) *BreakStmt {
	return &BreakStmt{nodeBase: nodeBase{Tok: tok}, Target: target}
}

func (sema *Sema) ContinueStmt(target LoopID, tok Token) *ContinueStmt {
	return &ContinueStmt{nodeBase: nodeBase{Tok: tok}, Target: target}
}

func (sema *Sema) Program(stmts []Node) *Program {
	return &Program{Stmts: stmts, Loops: sema.loops}
}

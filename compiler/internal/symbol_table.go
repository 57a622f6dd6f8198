package internal

import (
	"errors"
	"fmt"
)

var (
	ErrRedeclaration     = errors.New("redeclaration")
	ErrUndefinedVariable = errors.New("undefined variable")
)

type SymbolKind int

const (
	VariableSymbolKind SymbolKind = iota
)

type Symbol struct {
	Kind SymbolKind
	Ty   *CType
	Name string
	// Tok is where the symbol is declared, used for notes pointing at the previous definition.
	Tok Token
}

type Env map[string]*Symbol

// Scope is the stack of environments visible at the current parse position. The first
// one is the global environment and lives as long as the Scope.
type Scope struct {
	envs []Env
}

func NewScope() *Scope {
	return &Scope{envs: []Env{{}}}
}

func (scope *Scope) EnterScope() {
	scope.envs = append(scope.envs, Env{})
}

func (scope *Scope) ExitScope() {
	if len(scope.envs) <= 1 {
		panic("scope: exit of the global scope")
	}
	scope.envs = scope.envs[:len(scope.envs)-1]
}

func (scope *Scope) Depth() int {
	return len(scope.envs)
}

// Declare adds name to the innermost environment. Shadowing an outer declaration is fine,
// declaring twice in the same environment returns ErrRedeclaration along with the existing symbol.
func (scope *Scope) Declare(name string, ty *CType, tok Token) (*Symbol, error) {
	current := scope.envs[len(scope.envs)-1]
	if prev, ok := current[name]; ok {
		return prev, fmt.Errorf("%w: %s", ErrRedeclaration, name)
	}
	symbol := &Symbol{Kind: VariableSymbolKind, Ty: ty, Name: name, Tok: tok}
	current[name] = symbol
	return symbol, nil
}

// Resolve looks name up from the innermost environment outwards.
func (scope *Scope) Resolve(name string) (*Symbol, error) {
	for i := len(scope.envs) - 1; i >= 0; i-- {
		if symbol, ok := scope.envs[i][name]; ok {
			return symbol, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUndefinedVariable, name)
}

func (scope *Scope) ResolveInCurrent(name string) (*Symbol, bool) {
	symbol, ok := scope.envs[len(scope.envs)-1][name]
	return symbol, ok
}

// resolveOuter finds name in any environment but the innermost one.
func (scope *Scope) resolveOuter(name string) (*Symbol, bool) {
	for i := len(scope.envs) - 2; i >= 0; i-- {
		if symbol, ok := scope.envs[i][name]; ok {
			return symbol, true
		}
	}
	return nil, false
}

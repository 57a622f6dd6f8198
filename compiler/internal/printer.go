package internal

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sanity-io/litter"
)

// PrintProgram writes prog back in a compact source like form, one line per top level
// statement. Binary and assignment expressions are fully parenthesized.
func PrintProgram(w io.Writer, prog *Program) error {
	buf := &strings.Builder{}
	for _, stmt := range prog.Stmts {
		printNode(buf, stmt)
		buf.WriteByte('\n')
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func printNode(buf *strings.Builder, node Node) {
	switch n := node.(type) {
	case *BlockStmt:
		if len(n.Stmts) == 0 {
			buf.WriteString("{ }")
			return
		}
		buf.WriteString("{ ")
		for _, stmt := range n.Stmts {
			printNode(buf, stmt)
			buf.WriteString("; ")
		}
		buf.WriteString("}")
	case *DeclStmt:
		for i, decl := range n.Decls {
			if i > 0 {
				buf.WriteString(", ")
			}
			printNode(buf, decl)
		}
	case *VariableDecl:
		buf.WriteString(n.Symbol.Ty.String() + " " + n.Name)
	case *IfStmt:
		buf.WriteString("if ")
		printNode(buf, n.Cond)
		buf.WriteByte(' ')
		printNode(buf, n.Then)
		if n.Else != nil {
			buf.WriteString(" else ")
			printNode(buf, n.Else)
		}
	case *ForStmt:
		buf.WriteString("for (")
		printOptionalNode(buf, n.Init)
		buf.WriteString("; ")
		printOptionalNode(buf, n.Cond)
		buf.WriteString("; ")
		printOptionalNode(buf, n.Inc)
		buf.WriteString(") ")
		printNode(buf, n.Body)
	case *BreakStmt:
		buf.WriteString("break")
	case *ContinueStmt:
		buf.WriteString("continue")
	case *AssignExpr:
		buf.WriteString("(" + n.LHS.Name + " = ")
		printNode(buf, n.RHS)
		buf.WriteString(")")
	case *BinaryExpr:
		buf.WriteString("(")
		printNode(buf, n.LHS)
		buf.WriteString(" " + n.Op.Name + " ")
		printNode(buf, n.RHS)
		buf.WriteString(")")
	case *NumberExpr:
		buf.WriteString(strconv.Itoa(int(n.Value)))
	case *VariableExpr:
		buf.WriteString(n.Name)
	default:
		buf.WriteString("<?>")
	}
}

func printOptionalNode(buf *strings.Builder, node Node) {
	if node != nil {
		printNode(buf, node)
	}
}

var dumpOptions = litter.Options{
	StripPackageNames: true,
	HideZeroValues:    true,
	FieldExclusions:   regexp.MustCompile(`^Symbol$`),
}

// DumpProgram renders every node of prog with its fields.
func DumpProgram(prog *Program) string {
	return dumpOptions.Sdump(prog)
}

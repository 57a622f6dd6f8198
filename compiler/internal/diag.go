package internal

import (
	"fmt"
	"io"
	"strings"
)

type DiagKind int

const (
	NoteDiagKind DiagKind = iota
	WarningDiagKind
	ErrorDiagKind
)

func (k DiagKind) String() string {
	switch k {
	case NoteDiagKind:
		return "note"
	case WarningDiagKind:
		return "warning"
	case ErrorDiagKind:
		return "error"
	}
	return ""
}

type DiagID int

const (
	DiagErrUnknownChar DiagID = iota
	DiagErrNumberTooLarge
	DiagErrExpectedToken
	DiagErrExpectedExpr
	DiagErrRedefinition
	DiagErrUndefinedVariable
	DiagErrNotAssignable
	DiagErrBreakOutsideLoop
	DiagErrContinueOutsideLoop
	DiagWarnShadowedVariable
	DiagNotePreviousDefinition
)

type diagDesc struct {
	kind   DiagKind
	format string
}

// diagCatalog is the mapping from diag id to its kind and message format.
var diagCatalog = map[DiagID]diagDesc{
	DiagErrUnknownChar:         {ErrorDiagKind, "unknown character '%c'"},
	DiagErrNumberTooLarge:      {ErrorDiagKind, "integer literal '%s' is too large"},
	DiagErrExpectedToken:       {ErrorDiagKind, "expected '%s', but found '%s'"},
	DiagErrExpectedExpr:        {ErrorDiagKind, "expected expression, but found '%s'"},
	DiagErrRedefinition:        {ErrorDiagKind, "redefinition of '%s'"},
	DiagErrUndefinedVariable:   {ErrorDiagKind, "use of undeclared identifier '%s'"},
	DiagErrNotAssignable:       {ErrorDiagKind, "expression is not assignable"},
	DiagErrBreakOutsideLoop:    {ErrorDiagKind, "'break' statement not in loop statement"},
	DiagErrContinueOutsideLoop: {ErrorDiagKind, "'continue' statement not in loop statement"},
	DiagWarnShadowedVariable:   {WarningDiagKind, "declaration shadows a variable '%s' in an outer scope"},
	DiagNotePreviousDefinition: {NoteDiagKind, "previous definition is here"},
}

// Location points into a Source. Row and Col are 1-based.
type Location struct {
	File   string
	Row    int
	Col    int
	Offset int
}

func (loc Location) String() string {
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Row, loc.Col)
}

// Diagnostic is one reported message. Error kind diagnostics are returned as errors
// by every stage of the compilation.
type Diagnostic struct {
	Loc     Location
	Kind    DiagKind
	ID      DiagID
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Loc, d.Kind, d.Message)
}

const (
	colorReset   = "\x1b[0m"
	colorBold    = "\x1b[1m"
	colorRed     = "\x1b[1;31m"
	colorMagenta = "\x1b[1;35m"
	colorBlack   = "\x1b[1;30m"
	colorGreen   = "\x1b[1;32m"
)

// DiagEngine prints diagnostics as they are reported and remembers them. It never stops
// the process, the caller decides what an error means.
type DiagEngine struct {
	src   *Source
	out   io.Writer
	color bool
	diags []*Diagnostic
	first *Diagnostic
}

func NewDiagEngine(src *Source, out io.Writer, color bool) *DiagEngine {
	if out == nil {
		out = io.Discard
	}
	return &DiagEngine{src: src, out: out, color: color}
}

func (engine *DiagEngine) Report(loc Location, id DiagID, args ...interface{}) *Diagnostic {
	desc, ok := diagCatalog[id]
	if !ok {
		panic(fmt.Sprintf("unknown diag id %d", id))
	}
	d := &Diagnostic{
		Loc:     loc,
		Kind:    desc.kind,
		ID:      id,
		Message: fmt.Sprintf(desc.format, args...),
	}
	engine.diags = append(engine.diags, d)
	if d.Kind == ErrorDiagKind && engine.first == nil {
		engine.first = d
	}
	engine.print(d)
	return d
}

func (engine *DiagEngine) ReportAt(token Token, id DiagID, args ...interface{}) *Diagnostic {
	return engine.Report(engine.LocationOf(token), id, args...)
}

func (engine *DiagEngine) LocationOf(token Token) Location {
	loc := Location{Row: token.Row, Col: token.Col, Offset: token.Offset}
	if engine.src != nil {
		loc.File = engine.src.Name
	}
	return loc
}

// Err returns the first error reported, nil if there is none.
func (engine *DiagEngine) Err() error {
	if engine.first == nil {
		return nil
	}
	return engine.first
}

func (engine *DiagEngine) ErrorCount() int {
	count := 0
	for _, d := range engine.diags {
		if d.Kind == ErrorDiagKind {
			count++
		}
	}
	return count
}

func (engine *DiagEngine) Diagnostics() []*Diagnostic {
	return engine.diags
}

// print writes the diagnostic like:
//
//	test.c:1:1: error: use of undeclared identifier 'x'
//	x;
//	^
func (engine *DiagEngine) print(d *Diagnostic) {
	buf := &strings.Builder{}
	buf.WriteString(engine.paint(colorBold, d.Loc.String()+": "))
	switch d.Kind {
	case ErrorDiagKind:
		buf.WriteString(engine.paint(colorRed, "error: "))
	case WarningDiagKind:
		buf.WriteString(engine.paint(colorMagenta, "warning: "))
	default:
		buf.WriteString(engine.paint(colorBlack, "note: "))
	}
	buf.WriteString(engine.paint(colorBold, d.Message))
	buf.WriteByte('\n')
	if engine.src != nil {
		line := engine.src.LineAt(d.Loc.Offset)
		buf.WriteString(line)
		buf.WriteByte('\n')
		buf.WriteString(caretPadding(line, d.Loc.Col))
		buf.WriteString(engine.paint(colorGreen, "^"))
		buf.WriteByte('\n')
	}
	io.WriteString(engine.out, buf.String())
}

func (engine *DiagEngine) paint(color, s string) string {
	if !engine.color {
		return s
	}
	return color + s + colorReset
}

// caretPadding keeps tabs of the source line so the caret lines up under the column.
func caretPadding(line string, col int) string {
	pad := make([]byte, 0, col)
	for i := 0; i < col-1; i++ {
		if i < len(line) && line[i] == '\t' {
			pad = append(pad, '\t')
			continue
		}
		pad = append(pad, ' ')
	}
	return string(pad)
}

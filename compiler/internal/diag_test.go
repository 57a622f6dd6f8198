package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagEngine_Report(t *testing.T) {
	src := NewSource("test.c", "int a;\nx;\n")
	buf := &bytes.Buffer{}
	engine := NewDiagEngine(src, buf, false)

	d := engine.Report(Location{File: "test.c", Row: 2, Col: 1, Offset: 7}, DiagErrUndefinedVariable, "x")
	assert.Equal(t, "test.c:2:1: error: use of undeclared identifier 'x'\nx;\n^\n", buf.String())
	assert.Equal(t, "test.c:2:1: error: use of undeclared identifier 'x'", d.Error())
	assert.Equal(t, ErrorDiagKind, d.Kind)
	assert.Equal(t, d, engine.Err())
	assert.Equal(t, 1, engine.ErrorCount())
}

func TestDiagEngine_FirstErrorWins(t *testing.T) {
	src := NewSource("test.c", "int a; int a;")
	engine := NewDiagEngine(src, nil, false)
	engine.ReportAt(Token{Row: 1, Col: 5, Offset: 4}, DiagWarnShadowedVariable, "a")
	assert.Nil(t, engine.Err(), "warnings are not errors")

	first := engine.ReportAt(Token{Row: 1, Col: 12, Offset: 11}, DiagErrRedefinition, "a")
	engine.ReportAt(Token{Row: 1, Col: 5, Offset: 4}, DiagNotePreviousDefinition)
	engine.ReportAt(Token{Row: 1, Col: 1, Offset: 0}, DiagErrExpectedExpr, "int")
	assert.Same(t, first, engine.Err())
	assert.Equal(t, 2, engine.ErrorCount())
	require.Len(t, engine.Diagnostics(), 4)
	assert.Equal(t, "test.c:1:12", first.Loc.String())
	assert.Equal(t, "note", engine.Diagnostics()[2].Kind.String())
	assert.Equal(t, "previous definition is here", engine.Diagnostics()[2].Message)
}

func TestDiagEngine_Color(t *testing.T) {
	src := NewSource("test.c", "1 = 2;")
	buf := &bytes.Buffer{}
	engine := NewDiagEngine(src, buf, true)
	engine.ReportAt(Token{Row: 1, Col: 3, Offset: 2}, DiagErrNotAssignable)
	assert.Contains(t, buf.String(), colorRed+"error: "+colorReset)
	assert.Contains(t, buf.String(), "\n1 = 2;\n  "+colorGreen+"^"+colorReset+"\n")
}

func TestDiagEngine_UnknownIDPanics(t *testing.T) {
	engine := NewDiagEngine(nil, nil, false)
	assert.Panics(t, func() { engine.Report(Location{}, DiagID(1000)) })
}

func TestCaretPadding(t *testing.T) {
	testData := []struct {
		line     string
		col      int
		expected string
	}{
		{line: "abc", col: 1, expected: ""},
		{line: "abc", col: 3, expected: "  "},
		{line: "\tab", col: 3, expected: "\t "},
		{line: "", col: 2, expected: " "},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, caretPadding(data.line, data.col), data)
	}
}

package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinycc/util"
)

const exampleProgram = "int a = 1, b; if (a == 1) { b = 2; } else { b = 3; } b;"

func newTestLexer(content string) (*Lexer, *DiagEngine) {
	src := NewSource("test.c", content)
	diag := NewDiagEngine(src, nil, false)
	return NewLexer(src, diag, NewTypeContext()), diag
}

func tokenTypes(tokens []Token) []TokenType {
	tps := make([]TokenType, 0, len(tokens))
	for _, token := range tokens {
		tps = append(tps, token.Type)
	}
	return tps
}

func TestLexer_NextToken(t *testing.T) {
	testData := []struct {
		content  string
		expected []TokenType
	}{
		{content: "int a = 1, b;", expected: []TokenType{IntTP, IdentifierTP, AssignTP, NumberTP, CommaTP, IdentifierTP, SemiColonTP, EOFTP}},
		{content: "a==b!=c<=d>=e", expected: []TokenType{IdentifierTP, EqualEqualTP, IdentifierTP, NotEqualTP, IdentifierTP,
			LessEqualTP, IdentifierTP, GreaterEqualTP, IdentifierTP, EOFTP}},
		{content: "a<<b>>c&&d||e", expected: []TokenType{IdentifierTP, LeftShiftTP, IdentifierTP, RightShiftTP, IdentifierTP,
			LogicalAndTP, IdentifierTP, LogicalOrTP, IdentifierTP, EOFTP}},
		{content: "a<b>c&d|e^f%g", expected: []TokenType{IdentifierTP, LessTP, IdentifierTP, GreaterTP, IdentifierTP, BitAndTP,
			IdentifierTP, BitOrTP, IdentifierTP, BitXorTP, IdentifierTP, ModTP, IdentifierTP, EOFTP}},
		{content: "+-*/(){}", expected: []TokenType{AddTP, MinusTP, MultiplyTP, DivideTP, LeftParentThesesTP,
			RightParentThesesTP, LeftBraceTP, RightBraceTP, EOFTP}},
		{content: "if else for break continue iff _x1 int2", expected: []TokenType{IfTP, ElseTP, ForTP, BreakTP, ContinueTP,
			IdentifierTP, IdentifierTP, IdentifierTP, EOFTP}},
		{content: " \t\r\n", expected: []TokenType{EOFTP}},
		{content: "a = = b", expected: []TokenType{IdentifierTP, AssignTP, AssignTP, IdentifierTP, EOFTP}},
	}
	for _, data := range testData {
		lexer, diag := newTestLexer(data.content)
		assert.Equal(t, data.expected, tokenTypes(lexer.Tokenize()), data.content)
		assert.Empty(t, diag.Diagnostics(), data.content)
	}
}

func TestLexer_ExampleProgram(t *testing.T) {
	lexer, diag := newTestLexer(exampleProgram)
	tokens := lexer.Tokenize()
	assert.Len(t, tokens, 29)
	assert.Equal(t, EOFTP, tokens[len(tokens)-1].Type)
	assert.Nil(t, diag.Err())
}

func TestLexer_Position(t *testing.T) {
	lexer, _ := newTestLexer("int a;\n  b = 10;")
	tokens := lexer.Tokenize()
	require.Len(t, tokens, 8)
	assert.Equal(t, Token{Type: IntTP, Row: 1, Col: 1, Offset: 0, Content: "int"}, tokens[0])
	b := tokens[3]
	assert.Equal(t, "b", b.Content)
	assert.Equal(t, 2, b.Row)
	assert.Equal(t, 3, b.Col)
	assert.Equal(t, 9, b.Offset)
	number := tokens[5]
	assert.Equal(t, NumberTP, number.Type)
	assert.Equal(t, int32(10), number.Value)
	assert.Equal(t, 7, number.Col)
	assert.Equal(t, IntTypeKind, number.Ty.Kind)
}

func TestLexer_RoundTrip(t *testing.T) {
	testData := []string{
		exampleProgram,
		"int a;\n\tfor (a = 0; a < 10; a = a + 1) {\r\n  a;\n}\n",
		"  x  $  y\n",
		"",
	}
	for _, content := range testData {
		lexer, _ := newTestLexer(content)
		buf := &strings.Builder{}
		last := 0
		for _, token := range lexer.Tokenize() {
			gap := content[last:token.Offset]
			for i := 0; i < len(gap); i++ {
				assert.True(t, util.IsWhiteSpace(gap[i]), content)
			}
			buf.WriteString(gap)
			buf.WriteString(token.Content)
			last = token.Offset + len(token.Content)
		}
		buf.WriteString(content[last:])
		assert.Equal(t, content, buf.String())
	}
}

func TestLexer_UnknownCharacter(t *testing.T) {
	lexer, diag := newTestLexer("a $ !b")
	tokens := lexer.Tokenize()
	assert.Equal(t, []TokenType{IdentifierTP, UnknownTP, UnknownTP, IdentifierTP, EOFTP}, tokenTypes(tokens))
	assert.Equal(t, "$", tokens[1].Content)
	assert.Equal(t, "!", tokens[2].Content)
	require.Len(t, diag.Diagnostics(), 2)
	assert.Equal(t, DiagErrUnknownChar, diag.Diagnostics()[0].ID)
	assert.Equal(t, "unknown character '$'", diag.Diagnostics()[0].Message)
	assert.Equal(t, 3, diag.Diagnostics()[0].Loc.Col)
}

func TestLexer_NumberTooLarge(t *testing.T) {
	lexer, diag := newTestLexer("2147483647")
	token := lexer.NextToken()
	assert.Equal(t, int32(2147483647), token.Value)
	assert.Nil(t, diag.Err())

	lexer, diag = newTestLexer("2147483648")
	token = lexer.NextToken()
	assert.Equal(t, NumberTP, token.Type)
	require.Len(t, diag.Diagnostics(), 1)
	assert.Equal(t, DiagErrNumberTooLarge, diag.Diagnostics()[0].ID)
}

func TestLexer_EOFIsIdempotent(t *testing.T) {
	lexer, _ := newTestLexer("a ")
	assert.Equal(t, IdentifierTP, lexer.NextToken().Type)
	for i := 0; i < 3; i++ {
		token := lexer.NextToken()
		assert.Equal(t, EOFTP, token.Type)
		assert.Equal(t, "", token.Content)
		assert.Equal(t, 2, token.Offset)
	}
}

func TestLexer_SaveRestoreState(t *testing.T) {
	lexer, diag := newTestLexer("a = $")
	assert.Equal(t, "a", lexer.NextToken().Content)
	lexer.SaveState()
	assert.Equal(t, AssignTP, lexer.NextToken().Type)
	assert.Equal(t, UnknownTP, lexer.NextToken().Type)
	lexer.RestoreState()
	// Nothing is reported while speculating.
	assert.Empty(t, diag.Diagnostics())

	token := lexer.NextToken()
	assert.Equal(t, AssignTP, token.Type)
	assert.Equal(t, 3, token.Col)
	assert.Equal(t, UnknownTP, lexer.NextToken().Type)
	assert.Len(t, diag.Diagnostics(), 1)
}

func TestLexer_SaveStateTwicePanics(t *testing.T) {
	lexer, _ := newTestLexer("a b")
	lexer.SaveState()
	assert.Panics(t, func() { lexer.SaveState() })
	lexer.RestoreState()
	assert.Panics(t, func() { lexer.RestoreState() })
}

func TestToken_Dump(t *testing.T) {
	lexer, _ := newTestLexer("\n  abc")
	assert.Equal(t, `[ "abc": row = 2, col = 3 ]`, lexer.NextToken().Dump())
}

func TestTokenType_String(t *testing.T) {
	assert.Equal(t, "<=", LessEqualTP.String())
	assert.Equal(t, "continue", ContinueTP.String())
	assert.Equal(t, ";", SemiColonTP.String())
	assert.Equal(t, "identifier", IdentifierTP.String())
	assert.Equal(t, "TokenType(100)", TokenType(100).String())
	assert.Equal(t, "<eof>", Token{Type: EOFTP}.Spelling())
}

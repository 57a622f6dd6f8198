package internal

import (
	"fmt"
	"strconv"

	"tinycc/util"
)

// A simple pull based Lexer for tinycc.

// tinycc has those elements:
// * KeyWord: int, if, else, for, break, continue.
// * Symbol: + - * / % ( ) { } ; = , == != < <= > >= << >> & | ^ && ||.
// * Constant: decimal integer.
// * Identifier: letters, digits, underscore, not starting with a digit.

type TokenType int

const (
	IdentifierTP        TokenType = iota // varA
	NumberTP                             // 1010
	IntTP                                // int
	IfTP                                 // if
	ElseTP                               // else
	ForTP                                // for
	BreakTP                              // break
	ContinueTP                           // continue
	AddTP                                // +
	MinusTP                              // -
	MultiplyTP                           // *
	DivideTP                             // /
	ModTP                                // %
	LeftParentThesesTP                   // (
	RightParentThesesTP                  // )
	LeftBraceTP                          // {
	RightBraceTP                         // }
	SemiColonTP                          // ;
	AssignTP                             // =
	CommaTP                              // ,
	EqualEqualTP                         // ==
	NotEqualTP                           // !=
	LessTP                               // <
	LessEqualTP                          // <=
	GreaterTP                            // >
	GreaterEqualTP                       // >=
	LeftShiftTP                          // <<
	RightShiftTP                         // >>
	BitAndTP                             // &
	BitOrTP                              // |
	BitXorTP                             // ^
	LogicalAndTP                         // &&
	LogicalOrTP                          // ||
	EOFTP
	UnknownTP
)

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"int":      IntTP,
	"if":       IfTP,
	"else":     ElseTP,
	"for":      ForTP,
	"break":    BreakTP,
	"continue": ContinueTP,
}

// doubleSymbolTokenTPMap must be tried before simpleSymbolTokenTPMap, since "<" is a prefix of "<=" and so on.
var doubleSymbolTokenTPMap = map[string]TokenType{
	"==": EqualEqualTP,
	"!=": NotEqualTP,
	"<=": LessEqualTP,
	">=": GreaterEqualTP,
	"<<": LeftShiftTP,
	">>": RightShiftTP,
	"&&": LogicalAndTP,
	"||": LogicalOrTP,
}

var simpleSymbolTokenTPMap = map[string]TokenType{
	"+": AddTP,
	"-": MinusTP,
	"*": MultiplyTP,
	"/": DivideTP,
	"%": ModTP,
	"(": LeftParentThesesTP,
	")": RightParentThesesTP,
	"{": LeftBraceTP,
	"}": RightBraceTP,
	";": SemiColonTP,
	"=": AssignTP,
	",": CommaTP,
	"<": LessTP,
	">": GreaterTP,
	"&": BitAndTP,
	"|": BitOrTP,
	"^": BitXorTP,
}

var tokenSpelling = map[TokenType]string{
	IdentifierTP: "identifier",
	NumberTP:     "number",
	EOFTP:        "eof",
	UnknownTP:    "unknown",
}

func init() {
	for _, m := range []map[string]TokenType{keyWordTokenTPMap, doubleSymbolTokenTPMap, simpleSymbolTokenTPMap} {
		for spelling, tp := range m {
			tokenSpelling[tp] = spelling
		}
	}
}

func (tp TokenType) String() string {
	spelling, ok := tokenSpelling[tp]
	if !ok {
		return fmt.Sprintf("TokenType(%d)", int(tp))
	}
	return spelling
}

type Token struct {
	Type    TokenType
	Row     int
	Col     int
	Offset  int
	Content string
	// Value and Ty are only set for NumberTP.
	Value int32
	Ty    *CType
}

// Spelling is what the user wrote, used in diagnostics.
func (t Token) Spelling() string {
	if t.Type == EOFTP {
		return "<eof>"
	}
	return t.Content
}

func (t Token) Dump() string {
	return fmt.Sprintf("[ \"%s\": row = %d, col = %d ]", t.Content, t.Row, t.Col)
}

type lexerState struct {
	pos       int
	lineStart int
	end       int
	row       int
}

// Lexer hands out one token per NextToken call. One level of lookahead is supported by
// SaveState and RestoreState, a saved state must be restored before the next save.
type Lexer struct {
	lexerState
	buf   []byte
	diag  *DiagEngine
	types *TypeContext

	saved    lexerState
	hasSaved bool
}

func NewLexer(src *Source, diag *DiagEngine, types *TypeContext) *Lexer {
	return &Lexer{
		lexerState: lexerState{end: len(src.Content), row: 1},
		buf:        src.Content,
		diag:       diag,
		types:      types,
	}
}

func (lexer *Lexer) NextToken() Token {
	lexer.trimSpace()
	token := Token{Row: lexer.row, Col: lexer.pos - lexer.lineStart + 1, Offset: lexer.pos}
	if !lexer.hasRemainCharacters() {
		token.Type = EOFTP
		return token
	}
	b := lexer.buf[lexer.pos]
	switch {
	case util.IsNumber(b):
		return lexer.tokenNumber(token)
	case util.IsLetterOrUnderscore(b):
		return lexer.tokenKeywordOrIdentifier(token)
	default:
		return lexer.tokenSymbol(token)
	}
}

// Tokenize drains the lexer, the last token is always EOFTP.
func (lexer *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		token := lexer.NextToken()
		tokens = append(tokens, token)
		if token.Type == EOFTP {
			return tokens
		}
	}
}

func (lexer *Lexer) SaveState() {
	if lexer.hasSaved {
		panic("lexer: state saved twice without restore")
	}
	lexer.saved, lexer.hasSaved = lexer.lexerState, true
}

func (lexer *Lexer) RestoreState() {
	if !lexer.hasSaved {
		panic("lexer: restore without a saved state")
	}
	lexer.lexerState, lexer.hasSaved = lexer.saved, false
}

// trimSpace steps forward over continuous white space and keeps row and line start up to date.
func (lexer *Lexer) trimSpace() {
	for lexer.hasRemainCharacters() {
		b := lexer.buf[lexer.pos]
		if !util.IsWhiteSpace(b) {
			return
		}
		lexer.pos++
		if b == '\n' {
			lexer.row++
			lexer.lineStart = lexer.pos
		}
	}
}

func (lexer *Lexer) hasRemainCharacters() bool {
	return lexer.pos < lexer.end
}

func (lexer *Lexer) tokenNumber(token Token) Token {
	start := lexer.pos
	for lexer.hasRemainCharacters() && util.IsNumber(lexer.buf[lexer.pos]) {
		lexer.pos++
	}
	token.Type, token.Content, token.Ty = NumberTP, string(lexer.buf[start:lexer.pos]), lexer.types.IntTy()
	v, err := strconv.ParseInt(token.Content, 10, 32)
	if err != nil {
		lexer.report(token, DiagErrNumberTooLarge, token.Content)
	}
	token.Value = int32(v)
	return token
}

func (lexer *Lexer) tokenKeywordOrIdentifier(token Token) Token {
	start := lexer.pos
	for lexer.hasRemainCharacters() && util.IsLetterOrUnderscoreOrNumber(lexer.buf[lexer.pos]) {
		lexer.pos++
	}
	token.Content = string(lexer.buf[start:lexer.pos])
	tp, isKeyWord := keyWordTokenTPMap[token.Content]
	if !isKeyWord {
		tp = IdentifierTP
	}
	token.Type = tp
	return token
}

func (lexer *Lexer) tokenSymbol(token Token) Token {
	if lexer.pos+1 < lexer.end {
		symbol := string(lexer.buf[lexer.pos : lexer.pos+2])
		if tp, ok := doubleSymbolTokenTPMap[symbol]; ok {
			lexer.pos += 2
			token.Type, token.Content = tp, symbol
			return token
		}
	}
	symbol := string(lexer.buf[lexer.pos])
	lexer.pos++
	token.Content = symbol
	tp, ok := simpleSymbolTokenTPMap[symbol]
	if !ok {
		token.Type = UnknownTP
		lexer.report(token, DiagErrUnknownChar, symbol[0])
		return token
	}
	token.Type = tp
	return token
}

// report is silent while speculating, the same token is lexed again after RestoreState.
func (lexer *Lexer) report(token Token, id DiagID, args ...interface{}) {
	if lexer.hasSaved {
		return
	}
	lexer.diag.ReportAt(token, id, args...)
}

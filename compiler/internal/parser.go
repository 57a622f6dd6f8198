package internal

// Parser is a one pass recursive descent parser. It pulls tokens from the Lexer and hands
// every construct to Sema as soon as it is complete, so there is no separate checking pass.
//
// program    := stmt*
// stmt       := ";" | block | declStmt | ifStmt | forStmt | "break" ";" | "continue" ";" | expr ";"
// block      := "{" stmt* "}"
// declStmt   := "int" declarator ("," declarator)* ";"
// declarator := identifier ("=" expr)?
// ifStmt     := "if" "(" expr ")" stmt ("else" stmt)?
// forStmt    := "for" "(" (declStmt | expr? ";") expr? ";" expr? ")" stmt
type Parser struct {
	lexer *Lexer
	sema  *Sema
	// currentToken is the next token not consumed yet.
	currentToken Token
	// loops is the stack of loops enclosing the current position, innermost last.
	loops []LoopID
}

func NewParser(lexer *Lexer, sema *Sema) *Parser {
	parser := &Parser{lexer: lexer, sema: sema}
	parser.currentToken = lexer.NextToken()
	return parser
}

func (parser *Parser) ParseProgram() (*Program, error) {
	err := parser.sema.diag.Err()
	if err != nil {
		return nil, err
	}
	var stmts []Node
	for parser.currentToken.Type != EOFTP {
		stmt, err := parser.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return parser.sema.Program(stmts), nil
}

// stepForward consumes the current token. Once any error is reported, it is returned so that
// parsing stops right there.
func (parser *Parser) stepForward() error {
	parser.currentToken = parser.lexer.NextToken()
	return parser.sema.diag.Err()
}

func (parser *Parser) expectToken(expected TokenType) (Token, error) {
	token := parser.currentToken
	if token.Type != expected {
		return token, parser.sema.diag.ReportAt(token, DiagErrExpectedToken, expected.String(), token.Spelling())
	}
	return token, parser.stepForward()
}

// peekToken returns the token after the current one without consuming anything.
func (parser *Parser) peekToken() Token {
	parser.lexer.SaveState()
	token := parser.lexer.NextToken()
	parser.lexer.RestoreState()
	return token
}

func (parser *Parser) parseStmt() (Node, error) {
	switch parser.currentToken.Type {
	case SemiColonTP:
		token := parser.currentToken
		err := parser.stepForward()
		if err != nil {
			return nil, err
		}
		return parser.sema.BlockStmt(nil, token), nil
	case LeftBraceTP:
		return parser.parseBlockStmt()
	case IntTP:
		return parser.parseDeclStmt()
	case IfTP:
		return parser.parseIfStmt()
	case ForTP:
		return parser.parseForStmt()
	case BreakTP, ContinueTP:
		return parser.parseJumpStmt()
	}
	expr, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(SemiColonTP)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

func (parser *Parser) parseBlockStmt() (Node, error) {
	token, err := parser.expectToken(LeftBraceTP)
	if err != nil {
		return nil, err
	}
	parser.sema.EnterScope()
	defer parser.sema.ExitScope()
	var stmts []Node
	for parser.currentToken.Type != RightBraceTP && parser.currentToken.Type != EOFTP {
		stmt, err := parser.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	_, err = parser.expectToken(RightBraceTP)
	if err != nil {
		return nil, err
	}
	return parser.sema.BlockStmt(stmts, token), nil
}

// parseDeclStmt parses "int a = 1, b;". A name is declared before its initializer is parsed.
func (parser *Parser) parseDeclStmt() (Node, error) {
	token, err := parser.expectToken(IntTP)
	if err != nil {
		return nil, err
	}
	ty := parser.sema.types.IntTy()
	var decls []Node
	for {
		nameToken, err := parser.expectToken(IdentifierTP)
		if err != nil {
			return nil, err
		}
		decl, err := parser.sema.DeclareVariable(nameToken, ty)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
		if parser.currentToken.Type == AssignTP {
			assign, err := parser.parseAssignTo(nameToken)
			if err != nil {
				return nil, err
			}
			decls = append(decls, assign)
		}
		if parser.currentToken.Type != CommaTP {
			break
		}
		err = parser.stepForward()
		if err != nil {
			return nil, err
		}
	}
	_, err = parser.expectToken(SemiColonTP)
	if err != nil {
		return nil, err
	}
	return parser.sema.DeclStmt(decls, token), nil
}

func (parser *Parser) parseIfStmt() (Node, error) {
	token, err := parser.expectToken(IfTP)
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(LeftParentThesesTP)
	if err != nil {
		return nil, err
	}
	cond, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(RightParentThesesTP)
	if err != nil {
		return nil, err
	}
	then, err := parser.parseStmt()
	if err != nil {
		return nil, err
	}
	var els Node
	if parser.currentToken.Type == ElseTP {
		err = parser.stepForward()
		if err != nil {
			return nil, err
		}
		els, err = parser.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	ifStmt, err := parser.sema.IfStmt(cond, then, els, token)
	if err != nil {
		return nil, err
	}
	return ifStmt, nil
}

// parseForStmt opens a scope around the whole loop, a declaration in init is visible
// in the other parts and the body only.
func (parser *Parser) parseForStmt() (Node, error) {
	token, err := parser.expectToken(ForTP)
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(LeftParentThesesTP)
	if err != nil {
		return nil, err
	}
	parser.sema.EnterScope()
	defer parser.sema.ExitScope()
	var init, cond, inc Node
	switch parser.currentToken.Type {
	case IntTP:
		init, err = parser.parseDeclStmt()
	case SemiColonTP:
		err = parser.stepForward()
	default:
		init, err = parser.parseExprFollowedBy(SemiColonTP)
	}
	if err != nil {
		return nil, err
	}
	if parser.currentToken.Type != SemiColonTP {
		cond, err = parser.parseExprFollowedBy(SemiColonTP)
	} else {
		err = parser.stepForward()
	}
	if err != nil {
		return nil, err
	}
	if parser.currentToken.Type != RightParentThesesTP {
		inc, err = parser.parseExprFollowedBy(RightParentThesesTP)
	} else {
		err = parser.stepForward()
	}
	if err != nil {
		return nil, err
	}
	id := parser.sema.OpenLoop(token)
	parser.loops = append(parser.loops, id)
	body, err := parser.parseStmt()
	parser.loops = parser.loops[:len(parser.loops)-1]
	if err != nil {
		return nil, err
	}
	return parser.sema.ForStmt(id, init, cond, inc, body), nil
}

func (parser *Parser) parseJumpStmt() (Node, error) {
	token := parser.currentToken
	if len(parser.loops) == 0 {
		id := DiagErrBreakOutsideLoop
		if token.Type == ContinueTP {
			id = DiagErrContinueOutsideLoop
		}
		return nil, parser.sema.diag.ReportAt(token, id)
	}
	err := parser.stepForward()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(SemiColonTP)
	if err != nil {
		return nil, err
	}
	target := parser.loops[len(parser.loops)-1]
	if token.Type == BreakTP {
		return parser.sema.BreakStmt(target, token), nil
	}
	return parser.sema.ContinueStmt(target, token), nil
}

func (parser *Parser) parseExprFollowedBy(tp TokenType) (Node, error) {
	expr, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(tp)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

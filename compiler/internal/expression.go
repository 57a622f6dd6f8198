package internal

type binaryOp struct {
	OpAst
	token Token
}

// buildExpressionsTree folds terms and the operators between them into one tree by
// precedence climbing. len(terms) is always len(ops) + 1.
func (parser *Parser) buildExpressionsTree(ops []*binaryOp, terms []Node) Node {
	if len(ops) == 0 {
		return terms[0]
	}
	ret, _ := parser.buildExpressionsTree0(ops, terms, 0, 0)
	return ret
}

func (parser *Parser) buildExpressionsTree0(ops []*binaryOp, terms []Node, loc int, minPriority int) (Node, int) {
	lhs := terms[loc]
	i := loc
	for i < len(ops) && ops[i].priority >= minPriority {
		op := ops[i]
		rhs := terms[i+1]
		j := i + 1
		for j < len(ops) && ops[j].priority > op.priority {
			rhs, j = parser.buildExpressionsTree0(ops, terms, j, ops[j].priority)
		}
		lhs = parser.sema.Binary(op.OpAst, lhs, rhs, op.token)
		terms[j] = lhs
		i = j
	}
	return lhs, i
}

// parseExpr parses an assignment or a binary expression. "a = ..." is told apart from
// "a == ..." or "a + ..." by peeking at the token after the identifier.
func (parser *Parser) parseExpr() (Node, error) {
	if parser.currentToken.Type == IdentifierTP && parser.peekToken().Type == AssignTP {
		nameToken := parser.currentToken
		err := parser.stepForward()
		if err != nil {
			return nil, err
		}
		return parser.parseAssignTo(nameToken)
	}
	lhs, err := parser.parseBinaryExpr()
	if err != nil {
		return nil, err
	}
	if parser.currentToken.Type != AssignTP {
		return lhs, nil
	}
	assignToken := parser.currentToken
	err = parser.stepForward()
	if err != nil {
		return nil, err
	}
	rhs, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	assign, err := parser.sema.Assign(lhs, rhs, assignToken)
	if err != nil {
		return nil, err
	}
	return assign, nil
}

// parseAssignTo parses "= expr" for the variable named by nameToken.
func (parser *Parser) parseAssignTo(nameToken Token) (Node, error) {
	lhs, err := parser.sema.ReferenceVariable(nameToken)
	if err != nil {
		return nil, err
	}
	assignToken, err := parser.expectToken(AssignTP)
	if err != nil {
		return nil, err
	}
	rhs, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	assign, err := parser.sema.Assign(lhs, rhs, assignToken)
	if err != nil {
		return nil, err
	}
	return assign, nil
}

func (parser *Parser) parseBinaryExpr() (Node, error) {
	term, err := parser.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	var ops []*binaryOp
	terms := []Node{term}
	for {
		opAst, ok := tokenOpAstMap[parser.currentToken.Type]
		if !ok {
			break
		}
		op := &binaryOp{OpAst: opAst, token: parser.currentToken}
		err = parser.stepForward()
		if err != nil {
			return nil, err
		}
		term, err = parser.parsePrimaryExpr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		terms = append(terms, term)
	}
	return parser.buildExpressionsTree(ops, terms), nil
}

func (parser *Parser) parsePrimaryExpr() (Node, error) {
	token := parser.currentToken
	switch token.Type {
	case LeftParentThesesTP:
		err := parser.stepForward()
		if err != nil {
			return nil, err
		}
		return parser.parseExprFollowedBy(RightParentThesesTP)
	case IdentifierTP:
		err := parser.stepForward()
		if err != nil {
			return nil, err
		}
		variable, err := parser.sema.ReferenceVariable(token)
		if err != nil {
			return nil, err
		}
		return variable, nil
	case NumberTP:
		err := parser.stepForward()
		if err != nil {
			return nil, err
		}
		return parser.sema.Number(token), nil
	}
	return nil, parser.sema.diag.ReportAt(token, DiagErrExpectedExpr, token.Spelling())
}

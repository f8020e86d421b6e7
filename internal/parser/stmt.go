package parser

import (
	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/source"
	"spice/internal/token"
)

func (p *Parser) parseBlock() (*ast.Block, bool) {
	start, loc := p.here()
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return nil, false
	}
	b := &ast.Block{Loc: loc}
	for !p.at(token.RBrace) {
		if p.at(token.EOF) {
			return nil, p.fail(diag.SynUnexpectedToken, "expected '}'")
		}
		s, ok := p.parseStmt()
		if !ok {
			return nil, false
		}
		b.Stmts = append(b.Stmts, s)
	}
	p.advance()
	b.Span = p.spanFrom(start)
	return b, true
}

func (p *Parser) parseStmt() (ast.Stmt, bool) {
	_, loc := p.here()
	switch p.peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		p.advance()
		cond, ok := p.parseCondition()
		if !ok {
			return nil, false
		}
		body, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		return &ast.WhileStmt{Loc: loc, Cond: cond, Body: body}, true
	case token.KwDo:
		p.advance()
		body, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' after do block"); !ok {
			return nil, false
		}
		cond, ok := p.parseExpr()
		if !ok || !p.expectSemicolon() {
			return nil, false
		}
		return &ast.DoWhileStmt{Loc: loc, Body: body, Cond: cond}, true
	case token.KwFor:
		return p.parseFor()
	case token.KwForeach:
		return p.parseForeach()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwFallthrough:
		p.advance()
		if !p.expectSemicolon() {
			return nil, false
		}
		return &ast.FallthroughStmt{Loc: loc}, true
	case token.KwBreak, token.KwContinue:
		isBreak := p.advance().Kind == token.KwBreak
		count := 1
		if p.at(token.IntLit) {
			v, _, err := parseIntLiteral(p.advance().Text)
			if err != nil {
				return nil, p.fail(diag.SynBadLiteral, "invalid break/continue count")
			}
			count = int(v)
		}
		if !p.expectSemicolon() {
			return nil, false
		}
		if isBreak {
			return &ast.BreakStmt{Loc: loc, Count: count}, true
		}
		return &ast.ContinueStmt{Loc: loc, Count: count}, true
	case token.KwReturn:
		p.advance()
		r := &ast.ReturnStmt{Loc: loc}
		if !p.at(token.Semicolon) {
			var ok bool
			if r.Value, ok = p.parseExpr(); !ok {
				return nil, false
			}
		}
		if !p.expectSemicolon() {
			return nil, false
		}
		return r, true
	case token.KwUnsafe:
		p.advance()
		body, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		return &ast.UnsafeStmt{Loc: loc, Body: body}, true
	case token.KwAssert:
		p.advance()
		cond, ok := p.parseExpr()
		if !ok || !p.expectSemicolon() {
			return nil, false
		}
		return &ast.AssertStmt{Loc: loc, Cond: cond, Text: p.text(cond.Span)}, true
	}

	if p.lookahead(p.looksLikeDecl) {
		d, ok := p.parseDeclStmt()
		if !ok || !p.expectSemicolon() {
			return nil, false
		}
		return d, true
	}
	x, ok := p.parseExpr()
	if !ok || !p.expectSemicolon() {
		return nil, false
	}
	return &ast.ExprStmt{Loc: loc, X: x}, true
}

// looksLikeDecl checks for `T name =` or `T name ;`.
func (p *Parser) looksLikeDecl() bool {
	if _, ok := p.parseDataType(); !ok || !p.at(token.Ident) {
		return false
	}
	next := p.peekAt(1).Kind
	return next == token.Assign || next == token.Semicolon
}

// parseDeclStmt parses `T name [= value]` without the trailing ';'.
func (p *Parser) parseDeclStmt() (*ast.DeclStmt, bool) {
	_, loc := p.here()
	dt, ok := p.parseDataType()
	if !ok {
		return nil, false
	}
	name, ok := p.expectIdent("a variable name")
	if !ok {
		return nil, false
	}
	d := &ast.DeclStmt{Loc: loc, Type: dt, Name: name.Text}
	if p.eat(token.Assign) {
		if d.Value, ok = p.parseExpr(); !ok {
			return nil, false
		}
	} else if !p.atAny(token.Semicolon, token.Comma, token.Colon) {
		return nil, p.fail(diag.SynExpectSemicolon, "expected ';' or '='")
	}
	return d, true
}

// parseCondition parses an expression where `{` starts the body, not a struct literal.
func (p *Parser) parseCondition() (*ast.Expr, bool) {
	return withStructLit(p, false, p.parseExpr)
}

func (p *Parser) parseIf() (ast.Stmt, bool) {
	_, loc := p.here()
	p.advance()
	cond, ok := p.parseCondition()
	if !ok {
		return nil, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	s := &ast.IfStmt{Loc: loc, Cond: cond, Then: then}
	if p.eat(token.KwElse) {
		if p.at(token.KwIf) {
			s.Else, ok = p.parseIf()
		} else {
			s.Else, ok = p.parseBlock()
		}
		if !ok {
			return nil, false
		}
	}
	return s, true
}

func (p *Parser) parseFor() (ast.Stmt, bool) {
	_, loc := p.here()
	p.advance()
	if p.at(token.LParen) {
		if s, ok := try(p, func() (*ast.ForStmt, bool) {
			p.advance()
			s, ok := p.parseForHeader(loc)
			if !ok {
				return nil, false
			}
			_, ok = p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'")
			return s, ok && p.at(token.LBrace)
		}); ok {
			return p.finishFor(s)
		}
	}
	s, ok := p.parseForHeader(loc)
	if !ok {
		return nil, false
	}
	return p.finishFor(s)
}

func (p *Parser) finishFor(s *ast.ForStmt) (ast.Stmt, bool) {
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	s.Body = body
	return s, true
}

func (p *Parser) parseForHeader(loc source.CodeLoc) (*ast.ForStmt, bool) {
	return withStructLit(p, false, func() (*ast.ForStmt, bool) {
		s := &ast.ForStmt{Loc: loc}
		if !p.at(token.Semicolon) {
			if p.lookahead(p.looksLikeDecl) {
				d, ok := p.parseDeclStmt()
				if !ok {
					return nil, false
				}
				s.Init = d
			} else {
				_, initLoc := p.here()
				x, ok := p.parseExpr()
				if !ok {
					return nil, false
				}
				s.Init = &ast.ExprStmt{Loc: initLoc, X: x}
			}
		}
		if !p.expectSemicolon() {
			return nil, false
		}
		var ok bool
		if !p.at(token.Semicolon) {
			if s.Cond, ok = p.parseExpr(); !ok {
				return nil, false
			}
		}
		if !p.expectSemicolon() {
			return nil, false
		}
		if !p.atAny(token.LBrace, token.RParen) {
			if s.Step, ok = p.parseExpr(); !ok {
				return nil, false
			}
		}
		return s, true
	})
}

func (p *Parser) parseForeach() (ast.Stmt, bool) {
	_, loc := p.here()
	p.advance()
	parens := p.eat(token.LParen)
	s, ok := withStructLit(p, parens, func() (*ast.ForeachStmt, bool) {
		s := &ast.ForeachStmt{Loc: loc}
		first, ok := p.parseDeclStmt()
		if !ok {
			return nil, false
		}
		if p.eat(token.Comma) {
			s.Index = first
			if s.Item, ok = p.parseDeclStmt(); !ok {
				return nil, false
			}
		} else {
			s.Item = first
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in foreach"); !ok {
			return nil, false
		}
		if s.X, ok = p.parseExpr(); !ok {
			return nil, false
		}
		return s, true
	})
	if !ok {
		return nil, false
	}
	if parens {
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
			return nil, false
		}
	}
	if s.Body, ok = p.parseBlock(); !ok {
		return nil, false
	}
	return s, true
}

func (p *Parser) parseSwitch() (ast.Stmt, bool) {
	_, loc := p.here()
	p.advance()
	x, ok := p.parseCondition()
	if !ok {
		return nil, false
	}
	s := &ast.SwitchStmt{Loc: loc, X: x}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return nil, false
	}
	for !p.at(token.RBrace) {
		_, caseLoc := p.here()
		switch {
		case p.eat(token.KwCase):
			c := &ast.CaseClause{Loc: caseLoc}
			for {
				v, ok := p.parseCondition()
				if !ok {
					return nil, false
				}
				c.Values = append(c.Values, v)
				if !p.eat(token.Comma) {
					break
				}
			}
			if c.Body, ok = p.parseBlock(); !ok {
				return nil, false
			}
			s.Cases = append(s.Cases, c)
		case p.eat(token.KwDefault):
			if s.Default != nil {
				return nil, p.fail(diag.SynUnexpectedToken, "duplicate default branch")
			}
			if s.Default, ok = p.parseBlock(); !ok {
				return nil, false
			}
		default:
			return nil, p.fail(diag.SynUnexpectedToken, "expected 'case' or 'default'")
		}
	}
	p.advance()
	return s, true
}

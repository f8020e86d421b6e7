package parser

import (
	"strconv"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/source"
	"spice/internal/token"
)

var assignOps = map[token.Kind]ast.Op{
	token.Assign:        ast.OpAssign,
	token.PlusAssign:    ast.OpPlusAssign,
	token.MinusAssign:   ast.OpMinusAssign,
	token.StarAssign:    ast.OpMulAssign,
	token.SlashAssign:   ast.OpDivAssign,
	token.PercentAssign: ast.OpRemAssign,
	token.ShlAssign:     ast.OpShlAssign,
	token.ShrAssign:     ast.OpShrAssign,
	token.AmpAssign:     ast.OpAndAssign,
	token.PipeAssign:    ast.OpOrAssign,
	token.CaretAssign:   ast.OpXorAssign,
}

type binaryOp struct {
	op   ast.Op
	prec int
}

var binaryOps = map[token.Kind]binaryOp{
	token.OrOr:    {ast.OpLogicalOr, 1},
	token.AndAnd:  {ast.OpLogicalAnd, 2},
	token.Pipe:    {ast.OpBitOr, 3},
	token.Caret:   {ast.OpBitXor, 4},
	token.Amp:     {ast.OpBitAnd, 5},
	token.EqEq:    {ast.OpEq, 6},
	token.BangEq:  {ast.OpNotEq, 6},
	token.Lt:      {ast.OpLess, 7},
	token.Gt:      {ast.OpGreater, 7},
	token.LtEq:    {ast.OpLessEq, 7},
	token.GtEq:    {ast.OpGreaterEq, 7},
	token.Shl:     {ast.OpShl, 8},
	token.Shr:     {ast.OpShr, 8},
	token.Plus:    {ast.OpAdd, 9},
	token.Minus:   {ast.OpSub, 9},
	token.Star:    {ast.OpMul, 10},
	token.Slash:   {ast.OpDiv, 10},
	token.Percent: {ast.OpRem, 10},
}

var prefixOps = map[token.Kind]ast.Op{
	token.Minus:      ast.OpNeg,
	token.PlusPlus:   ast.OpPreInc,
	token.MinusMinus: ast.OpPreDec,
	token.Bang:       ast.OpNot,
	token.Tilde:      ast.OpBitNot,
	token.Star:       ast.OpDeref,
	token.Amp:        ast.OpAddrOf,
}

var builtinCalls = map[token.Kind]ast.ExprKind{
	token.KwPrintf:  ast.ExprPrintf,
	token.KwPanic:   ast.ExprPanic,
	token.KwSyscall: ast.ExprSyscall,
	token.KwJoin:    ast.ExprJoin,
	token.KwTid:     ast.ExprTid,
}

func (p *Parser) parseExpr() (*ast.Expr, bool) {
	return p.parseAssign()
}

// parseAssign is right-associative: a = b = c.
func (p *Parser) parseAssign() (*ast.Expr, bool) {
	start := p.peek().Span
	lhs, ok := p.parseTernary()
	if !ok {
		return nil, false
	}
	op, isAssign := assignOps[p.peek().Kind]
	if !isAssign {
		return lhs, true
	}
	p.advance()
	rhs, ok := p.parseAssign()
	if !ok {
		return nil, false
	}
	e := p.newExpr(ast.ExprAssign, start)
	e.Op, e.X, e.Y = op, lhs, rhs
	return e, true
}

func (p *Parser) parseTernary() (*ast.Expr, bool) {
	start := p.peek().Span
	cond, ok := p.parseBinary(1)
	if !ok || !p.eat(token.Question) {
		return cond, ok
	}
	then, ok := p.parseTernary()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in ternary expression"); !ok {
		return nil, false
	}
	els, ok := p.parseTernary()
	if !ok {
		return nil, false
	}
	e := p.newExpr(ast.ExprTernary, start)
	e.X, e.Y, e.Z = cond, then, els
	return e, true
}

// parseBinary is precedence climbing over binaryOps; all levels are left-associative.
func (p *Parser) parseBinary(minPrec int) (*ast.Expr, bool) {
	start := p.peek().Span
	lhs, ok := p.parseCast()
	if !ok {
		return nil, false
	}
	for {
		bin, isBin := binaryOps[p.peek().Kind]
		if !isBin || bin.prec < minPrec {
			return lhs, true
		}
		p.advance()
		rhs, ok := p.parseBinary(bin.prec + 1)
		if !ok {
			return nil, false
		}
		e := p.newExpr(ast.ExprBinary, start)
		e.Op, e.X, e.Y = bin.op, lhs, rhs
		lhs = e
	}
}

// parseCast handles `(T) operand`. Parenthesized plain names are only a cast
// when an operand directly follows, so `(a) - b` stays a subtraction.
func (p *Parser) parseCast() (*ast.Expr, bool) {
	if !p.at(token.LParen) {
		return p.parsePrefix()
	}
	start := p.peek().Span
	dt, isCast := try(p, func() (*ast.DataType, bool) {
		p.advance()
		dt, ok := p.parseDataType()
		if !ok {
			return nil, false
		}
		if !p.eat(token.RParen) {
			return nil, false
		}
		plainName := dt.Base == ast.BaseNamed && len(dt.Suffixes) == 0 && len(dt.Templates) == 0
		if plainName {
			return dt, p.atAny(token.Ident, token.IntLit, token.DoubleLit, token.CharLit, token.StringLit, token.KwTrue, token.KwFalse)
		}
		return dt, p.startsOperand()
	})
	if !isCast {
		return p.parsePrefix()
	}
	operand, ok := p.parseCast()
	if !ok {
		return nil, false
	}
	e := p.newExpr(ast.ExprCast, start)
	e.Type, e.X = dt, operand
	return e, true
}

func (p *Parser) startsOperand() bool {
	switch p.peek().Kind {
	case token.Ident, token.IntLit, token.DoubleLit, token.CharLit, token.StringLit,
		token.KwTrue, token.KwFalse, token.KwNil, token.LParen, token.LBracket,
		token.Minus, token.PlusPlus, token.MinusMinus, token.Bang, token.Tilde, token.Star, token.Amp,
		token.KwSizeof, token.KwAlignof, token.KwLen, token.KwTid, token.KwJoin, token.KwF, token.KwP:
		return true
	default:
		return false
	}
}

func (p *Parser) parsePrefix() (*ast.Expr, bool) {
	op, isPrefix := prefixOps[p.peek().Kind]
	if !isPrefix {
		return p.parsePostfix()
	}
	start := p.advance().Span
	operand, ok := p.parseCast()
	if !ok {
		return nil, false
	}
	e := p.newExpr(ast.ExprPrefix, start)
	e.Op, e.X = op, operand
	return e, true
}

func (p *Parser) parsePostfix() (*ast.Expr, bool) {
	start := p.peek().Span
	x, ok := p.parseAtom()
	if !ok {
		return nil, false
	}
	for {
		switch p.peek().Kind {
		case token.LBracket:
			p.advance()
			idx, ok := withStructLit(p, true, p.parseExpr)
			if !ok {
				return nil, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']'"); !ok {
				return nil, false
			}
			e := p.newExpr(ast.ExprIndex, start)
			e.X, e.Y = x, idx
			x = e
		case token.Dot:
			p.advance()
			name, ok := p.expectIdent("a member name")
			if !ok {
				return nil, false
			}
			e := p.newExpr(ast.ExprMember, start)
			e.X, e.Name = x, name.Text
			x = e
			if lit, isLit, ok := p.tryStructLit(x, start); !ok {
				return nil, false
			} else if isLit {
				x = lit
			}
		case token.PlusPlus, token.MinusMinus:
			op := ast.OpPostInc
			if p.advance().Kind == token.MinusMinus {
				op = ast.OpPostDec
			}
			e := p.newExpr(ast.ExprPostfix, start)
			e.Op, e.X = op, x
			x = e
		case token.LParen:
			call, ok := p.parseCall(x, nil, start)
			if !ok {
				return nil, false
			}
			x = call
		case token.Lt:
			if x.Kind != ast.ExprIdent && x.Kind != ast.ExprMember {
				return x, true
			}
			templates, isCall := try(p, func() ([]*ast.DataType, bool) {
				list, ok := p.parseTemplateList()
				return list, ok && p.at(token.LParen)
			})
			if !isCall {
				return x, true
			}
			call, ok := p.parseCall(x, templates, start)
			if !ok {
				return nil, false
			}
			x = call
		default:
			return x, true
		}
	}
}

func (p *Parser) parseCall(callee *ast.Expr, templates []*ast.DataType, start source.Span) (*ast.Expr, bool) {
	args, ok := p.parseArgs()
	if !ok {
		return nil, false
	}
	e := p.newExpr(ast.ExprCall, start)
	e.X, e.Templates, e.Args = callee, templates, args
	return e, true
}

// parseArgs parses `(a, b)`.
func (p *Parser) parseArgs() ([]*ast.Expr, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	return withStructLit(p, true, func() ([]*ast.Expr, bool) {
		var args []*ast.Expr
		for !p.at(token.RParen) {
			a, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			args = append(args, a)
			if !p.eat(token.Comma) {
				break
			}
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
			return nil, false
		}
		return args, true
	})
}

// tryStructLit turns `Name{...}` or `Name<T>{...}` into a struct literal when
// x is an identifier path and struct literals are allowed here.
func (p *Parser) tryStructLit(x *ast.Expr, start source.Span) (*ast.Expr, bool, bool) {
	if p.noStructLit {
		return nil, false, true
	}
	path, isPath := identPath(x)
	if !isPath {
		return nil, false, true
	}
	var templates []*ast.DataType
	if p.at(token.Lt) {
		list, ok := try(p, func() ([]*ast.DataType, bool) {
			list, ok := p.parseTemplateList()
			return list, ok && p.at(token.LBrace)
		})
		if !ok {
			return nil, false, true
		}
		templates = list
	}
	if !p.at(token.LBrace) {
		return nil, false, true
	}
	dt := p.nodes.NewType(ast.BaseNamed, x.Span, x.Loc)
	dt.Path = path
	dt.Templates = templates
	p.advance()
	var args []*ast.Expr
	for !p.at(token.RBrace) {
		a, ok := p.parseExpr()
		if !ok {
			return nil, false, false
		}
		args = append(args, a)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "expected '}'"); !ok {
		return nil, false, false
	}
	e := p.newExpr(ast.ExprStructLit, start)
	e.Type, e.Args = dt, args
	return e, true, true
}

func identPath(x *ast.Expr) ([]string, bool) {
	switch x.Kind {
	case ast.ExprIdent:
		return []string{x.Name}, true
	case ast.ExprMember:
		prefix, ok := identPath(x.X)
		if !ok {
			return nil, false
		}
		return append(prefix, x.Name), true
	default:
		return nil, false
	}
}

func (p *Parser) parseAtom() (*ast.Expr, bool) {
	start := p.peek().Span
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		v, width, err := parseIntLiteral(tok.Text)
		if err != nil {
			return nil, p.failAt(tok, diag.SynBadLiteral, "invalid integer literal '"+tok.Text+"'")
		}
		kind := ast.ExprIntLit
		switch width {
		case WidthShort:
			kind = ast.ExprShortLit
		case WidthLong:
			kind = ast.ExprLongLit
		}
		e := p.newExpr(kind, start)
		e.Lit = ast.Const{Kind: ast.ConstInt, Int: v}
		return e, true
	case token.DoubleLit:
		p.advance()
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.failAt(tok, diag.SynBadLiteral, "invalid double literal '"+tok.Text+"'")
		}
		e := p.newExpr(ast.ExprDoubleLit, start)
		e.Lit = ast.Const{Kind: ast.ConstDouble, Double: v}
		return e, true
	case token.CharLit:
		p.advance()
		c, ok := p.unquoteChar(tok)
		if !ok {
			return nil, false
		}
		e := p.newExpr(ast.ExprCharLit, start)
		e.Lit = ast.Const{Kind: ast.ConstChar, Int: int64(c)}
		return e, true
	case token.StringLit:
		p.advance()
		s, ok := p.unquote(tok)
		if !ok {
			return nil, false
		}
		e := p.newExpr(ast.ExprStringLit, start)
		e.Lit = ast.Const{Kind: ast.ConstString, Str: s}
		return e, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		e := p.newExpr(ast.ExprBoolLit, start)
		e.Lit = ast.Const{Kind: ast.ConstBool, Bool: tok.Kind == token.KwTrue}
		return e, true
	case token.KwNil:
		p.advance()
		list, ok := p.parseTemplateList()
		if !ok {
			return nil, false
		}
		if len(list) != 1 {
			return nil, p.fail(diag.SynExpectType, "nil takes exactly one type")
		}
		e := p.newExpr(ast.ExprNil, start)
		e.Type = list[0]
		return e, true
	case token.Ident:
		p.advance()
		e := p.newExpr(ast.ExprIdent, start)
		e.Name = tok.Text
		if lit, isLit, ok := p.tryStructLit(e, start); !ok {
			return nil, false
		} else if isLit {
			return lit, true
		}
		return e, true
	case token.LParen:
		p.advance()
		inner, ok := withStructLit(p, true, p.parseExpr)
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
			return nil, false
		}
		inner.Span = p.spanFrom(start)
		return inner, true
	case token.LBracket:
		return p.parseArrayLit()
	case token.KwSizeof, token.KwAlignof:
		return p.parseSizeof()
	case token.KwLen:
		p.advance()
		args, ok := p.parseArgs()
		if !ok {
			return nil, false
		}
		if len(args) != 1 {
			return nil, p.failAt(tok, diag.SynUnexpectedToken, "len takes exactly one argument")
		}
		e := p.newExpr(ast.ExprLen, start)
		e.X = args[0]
		return e, true
	case token.KwPrintf, token.KwPanic, token.KwSyscall, token.KwJoin, token.KwTid:
		p.advance()
		args, ok := p.parseArgs()
		if !ok {
			return nil, false
		}
		e := p.newExpr(builtinCalls[tok.Kind], start)
		e.Args = args
		return e, true
	case token.KwThread:
		p.advance()
		body, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		e := p.newExpr(ast.ExprThread, start)
		e.Body = body
		return e, true
	case token.KwF, token.KwP:
		return p.parseLambda()
	default:
		return nil, p.fail(diag.SynUnexpectedToken, "expected an expression")
	}
}

func (p *Parser) parseArrayLit() (*ast.Expr, bool) {
	start := p.advance().Span
	items, ok := withStructLit(p, true, func() ([]*ast.Expr, bool) {
		var items []*ast.Expr
		for !p.at(token.RBracket) {
			it, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			items = append(items, it)
			if !p.eat(token.Comma) {
				break
			}
		}
		_, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']'")
		return items, ok
	})
	if !ok {
		return nil, false
	}
	e := p.newExpr(ast.ExprArrayLit, start)
	e.Args = items
	return e, true
}

// parseSizeof accepts a type or an expression. A bare name is parsed as an
// expression and resolved to a type later if it names one.
func (p *Parser) parseSizeof() (*ast.Expr, bool) {
	tok := p.advance()
	start := tok.Span
	kind := ast.ExprSizeof
	if tok.Kind == token.KwAlignof {
		kind = ast.ExprAlignof
	}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	e := p.newExpr(kind, start)
	dt, isType := try(p, func() (*ast.DataType, bool) {
		dt, ok := p.parseDataType()
		if !ok || !p.at(token.RParen) {
			return nil, false
		}
		plainName := dt.Base == ast.BaseNamed && len(dt.Suffixes) == 0 && len(dt.Templates) == 0 && len(dt.Path) == 1
		return dt, !plainName
	})
	if isType {
		e.Type = dt
	} else {
		x, ok := withStructLit(p, true, p.parseExpr)
		if !ok {
			return nil, false
		}
		e.X = x
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
		return nil, false
	}
	e.Span = p.spanFrom(start)
	return e, true
}

func (p *Parser) parseLambda() (*ast.Expr, bool) {
	start, loc := p.here()
	fn := &ast.FuncLit{Loc: loc}
	if p.advance().Kind == token.KwP {
		fn.IsProc = true
	} else {
		ret, ok := p.parseReturnType()
		if !ok {
			return nil, false
		}
		fn.Return = ret
	}
	var ok bool
	if fn.Params, ok = p.parseParams(); !ok {
		return nil, false
	}
	if fn.Body, ok = p.parseBlock(); !ok {
		return nil, false
	}
	fn.Span = p.spanFrom(start)
	e := p.newExpr(ast.ExprLambda, start)
	e.Func = fn
	return e, true
}

// newExpr allocates a node spanning from start to the last consumed token.
func (p *Parser) newExpr(kind ast.ExprKind, start source.Span) *ast.Expr {
	return p.nodes.NewExpr(kind, p.spanFrom(start), p.loc(start))
}

// failAt reports at a token that was already consumed.
func (p *Parser) failAt(tok token.Token, code diag.Code, msg string) bool {
	if p.trying > 0 || p.err != nil {
		return false
	}
	p.err = diag.NewParserError(p.loc(tok.Span), code, msg)
	return false
}

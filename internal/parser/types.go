package parser

import (
	"strconv"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/token"
	"spice/internal/types"
)

var primitiveBases = map[token.Kind]ast.BaseKind{
	token.KwDouble: ast.BaseDouble,
	token.KwInt:    ast.BaseInt,
	token.KwShort:  ast.BaseShort,
	token.KwLong:   ast.BaseLong,
	token.KwByte:   ast.BaseByte,
	token.KwChar:   ast.BaseChar,
	token.KwString: ast.BaseString,
	token.KwBool:   ast.BaseBool,
	token.KwDyn:    ast.BaseDyn,
}

var specifierKeywords = map[token.Kind]types.Specifiers{
	token.KwConst:    types.SpecConst,
	token.KwPublic:   types.SpecPublic,
	token.KwHeap:     types.SpecHeap,
	token.KwVolatile: types.SpecVolatile,
	token.KwInline:   types.SpecInline,
}

func (p *Parser) parseSpecifiers() types.Specifiers {
	var spec types.Specifiers
	for {
		s, ok := specifierKeywords[p.peek().Kind]
		if !ok {
			return spec
		}
		p.advance()
		spec |= s
	}
}

// parseDataType parses `[specifiers] base [<templates>] {* | & | [N]}`.
func (p *Parser) parseDataType() (*ast.DataType, bool) {
	start := p.peek().Span
	spec := p.parseSpecifiers()
	dt, ok := p.parseBaseType()
	if !ok {
		return nil, false
	}
	dt.Spec = spec
	for {
		switch p.peek().Kind {
		case token.Star:
			p.advance()
			dt.Suffixes = append(dt.Suffixes, ast.TypeSuffix{Kind: ast.SuffixPtr})
			continue
		case token.Amp:
			p.advance()
			dt.Suffixes = append(dt.Suffixes, ast.TypeSuffix{Kind: ast.SuffixRef})
			continue
		case token.LBracket:
			p.advance()
			suffix := ast.TypeSuffix{Kind: ast.SuffixArray}
			if p.at(token.IntLit) {
				tok := p.advance()
				n, err := strconv.ParseInt(tok.Text, 0, 32)
				if err != nil || n <= 0 {
					return nil, p.fail(diag.SynBadLiteral, "invalid array size")
				}
				suffix.Size = int(n)
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']'"); !ok {
				return nil, false
			}
			dt.Suffixes = append(dt.Suffixes, suffix)
			continue
		}
		break
	}
	dt.Span = p.spanFrom(start)
	dt.Loc = p.loc(dt.Span)
	return dt, true
}

func (p *Parser) parseBaseType() (*ast.DataType, bool) {
	sp, loc := p.here()
	tok := p.peek()
	if base, ok := primitiveBases[tok.Kind]; ok {
		p.advance()
		return p.nodes.NewType(base, sp, loc), true
	}
	switch tok.Kind {
	case token.Ident:
		dt := p.nodes.NewType(ast.BaseNamed, sp, loc)
		dt.Path = append(dt.Path, p.advance().Text)
		for p.at(token.Dot) && p.peekAt(1).Kind == token.Ident {
			p.advance()
			dt.Path = append(dt.Path, p.advance().Text)
		}
		if p.at(token.Lt) {
			list, ok := p.parseTemplateList()
			if !ok {
				return nil, false
			}
			dt.Templates = list
		}
		return dt, true
	case token.KwF:
		p.advance()
		dt := p.nodes.NewType(ast.BaseFunction, sp, loc)
		ret, ok := p.parseReturnType()
		if !ok {
			return nil, false
		}
		dt.Return = ret
		if dt.Params, ok = p.parseTypeList(); !ok {
			return nil, false
		}
		return dt, true
	case token.KwP:
		p.advance()
		dt := p.nodes.NewType(ast.BaseProcedure, sp, loc)
		var ok bool
		if dt.Params, ok = p.parseTypeList(); !ok {
			return nil, false
		}
		return dt, true
	default:
		return nil, p.fail(diag.SynExpectType, "expected a data type")
	}
}

// parseReturnType parses the `<R>` after `f`.
func (p *Parser) parseReturnType() (*ast.DataType, bool) {
	if _, ok := p.expect(token.Lt, diag.SynExpectType, "expected '<' before the return type"); !ok {
		return nil, false
	}
	ret, ok := p.parseDataType()
	if !ok {
		return nil, false
	}
	if !p.expectCloseAngle() {
		return nil, false
	}
	return ret, true
}

// parseTemplateList parses `<T, U>`.
func (p *Parser) parseTemplateList() ([]*ast.DataType, bool) {
	if _, ok := p.expect(token.Lt, diag.SynUnexpectedToken, "expected '<'"); !ok {
		return nil, false
	}
	var list []*ast.DataType
	for {
		dt, ok := p.parseDataType()
		if !ok {
			return nil, false
		}
		list = append(list, dt)
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.expectCloseAngle() {
		return nil, false
	}
	return list, true
}

// parseTypeList parses `(T, U)` as used by function types.
func (p *Parser) parseTypeList() ([]*ast.DataType, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	var list []*ast.DataType
	for !p.at(token.RParen) {
		dt, ok := p.parseDataType()
		if !ok {
			return nil, false
		}
		list = append(list, dt)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
		return nil, false
	}
	return list, true
}

package parser

import (
	"path"
	"strings"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/source"
	"spice/internal/token"
	"spice/internal/types"
)

// parseDecl picks the top-level construct by its first tokens.
func (p *Parser) parseDecl() (ast.Decl, bool) {
	switch p.peek().Kind {
	case token.KwImport:
		return p.parseImport()
	case token.KwExt:
		return p.parseExt()
	}

	m := p.mark()
	spec := p.parseSpecifiers()
	switch {
	case p.at(token.KwType):
		return p.parseTypeDecl(spec)
	case p.looksLikeFunc():
		return p.parseFuncDecl(spec)
	}
	p.reset(m)
	if p.peek().Kind.IsKeyword() && !p.peek().Kind.IsPrimitiveType() && !p.atAny(token.KwDyn, token.KwF, token.KwP) {
		if _, ok := specifierKeywords[p.peek().Kind]; !ok {
			return nil, p.fail(diag.SynUnexpectedTopLevel, "unexpected top-level construct")
		}
	}
	return p.parseGlobalVar()
}

// looksLikeFunc distinguishes `f<int> name(` from a global of function type.
func (p *Parser) looksLikeFunc() bool {
	switch p.peek().Kind {
	case token.KwP:
		return p.peekAt(1).Kind == token.Ident
	case token.KwF:
		return p.lookahead(func() bool {
			p.advance()
			_, ok := p.parseReturnType()
			return ok && p.at(token.Ident)
		})
	}
	return false
}

func (p *Parser) parseImport() (ast.Decl, bool) {
	start := p.advance().Span
	tok, ok := p.expect(token.StringLit, diag.SynUnexpectedToken, "expected the import path as a string")
	if !ok {
		return nil, false
	}
	importPath, ok := p.unquote(tok)
	if !ok {
		return nil, false
	}
	d := &ast.ImportDecl{Path: importPath}
	if p.eat(token.KwAs) {
		name, ok := p.expectIdent("an import alias")
		if !ok {
			return nil, false
		}
		d.Alias = name.Text
	} else {
		d.Alias = strings.TrimSuffix(path.Base(importPath), ".spice")
	}
	if !p.expectSemicolon() {
		return nil, false
	}
	d.Loc = p.loc(start)
	return d, true
}

func (p *Parser) parseExt() (ast.Decl, bool) {
	start := p.advance().Span
	d := &ast.ExtDecl{Loc: p.loc(start)}
	switch {
	case p.eat(token.KwF):
		ret, ok := p.parseReturnType()
		if !ok {
			return nil, false
		}
		d.Return = ret
	case p.eat(token.KwP):
		d.IsProc = true
	default:
		return nil, p.fail(diag.SynUnexpectedToken, "expected 'f' or 'p' after 'ext'")
	}
	name, ok := p.expectIdent("a function name")
	if !ok {
		return nil, false
	}
	d.Name = name.Text
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	for !p.at(token.RParen) {
		if p.eat(token.Ellipsis) {
			d.Variadic = true
			break
		}
		dt, ok := p.parseDataType()
		if !ok {
			return nil, false
		}
		d.Params = append(d.Params, dt)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
		return nil, false
	}
	if !p.expectSemicolon() {
		return nil, false
	}
	return d, true
}

func (p *Parser) parseGlobalVar() (ast.Decl, bool) {
	_, loc := p.here()
	dt, ok := p.parseDataType()
	if !ok {
		return nil, false
	}
	name, ok := p.expectIdent("a variable name")
	if !ok {
		return nil, false
	}
	d := &ast.GlobalVarDecl{Loc: loc, Type: dt, Name: name.Text}
	if p.eat(token.Assign) {
		if d.Value, ok = p.parseExpr(); !ok {
			return nil, false
		}
	}
	if !p.expectSemicolon() {
		return nil, false
	}
	return d, true
}

func (p *Parser) parseFuncDecl(spec types.Specifiers) (ast.Decl, bool) {
	start := p.peek().Span
	d := &ast.FuncDecl{Spec: spec}
	if p.eat(token.KwP) {
		d.IsProc = true
	} else {
		p.advance()
		ret, ok := p.parseReturnType()
		if !ok {
			return nil, false
		}
		d.Return = ret
	}
	name, ok := p.expectIdent("a function name")
	if !ok {
		return nil, false
	}
	d.Loc = p.loc(name.Span)
	var templates []*ast.DataType
	if p.at(token.Lt) {
		if templates, ok = p.parseTemplateList(); !ok {
			return nil, false
		}
	}
	if p.eat(token.Dot) {
		// struct templates on the receiver are implied by the struct
		d.Receiver = name.Text
		if name, ok = p.expectMethodName(); !ok {
			return nil, false
		}
		templates = nil
		if p.at(token.Lt) {
			if templates, ok = p.parseTemplateList(); !ok {
				return nil, false
			}
		}
	}
	d.Name = name.Text
	d.Templates = templates
	if d.Params, ok = p.parseParams(); !ok {
		return nil, false
	}
	if d.Body, ok = p.parseBlock(); !ok {
		return nil, false
	}
	d.Span = p.spanFrom(start)
	return d, true
}

func (p *Parser) expectMethodName() (token.Token, bool) {
	return p.expectIdent("a method name")
}

func (p *Parser) parseParams() ([]*ast.Param, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	var params []*ast.Param
	for !p.at(token.RParen) {
		_, loc := p.here()
		dt, ok := p.parseDataType()
		if !ok {
			return nil, false
		}
		name, ok := p.expectIdent("a parameter name")
		if !ok {
			return nil, false
		}
		param := &ast.Param{Loc: loc, Type: dt, Name: name.Text}
		if p.eat(token.Assign) {
			if param.Default, ok = p.parseTernary(); !ok {
				return nil, false
			}
		}
		params = append(params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
		return nil, false
	}
	return params, true
}

// parseTypeDecl handles `type Name ...` for structs, interfaces, enums and generic types.
func (p *Parser) parseTypeDecl(spec types.Specifiers) (ast.Decl, bool) {
	p.advance()
	name, ok := p.expectIdent("a type name")
	if !ok {
		return nil, false
	}
	loc := p.loc(name.Span)
	var templates []*ast.DataType
	if p.at(token.Lt) {
		if templates, ok = p.parseTemplateList(); !ok {
			return nil, false
		}
	}
	switch p.peek().Kind {
	case token.KwStruct:
		p.advance()
		return p.parseStructBody(&ast.StructDecl{Loc: loc, Spec: spec, Name: name.Text, Templates: templates}, name.Span)
	case token.KwInterface:
		p.advance()
		return p.parseInterfaceBody(&ast.InterfaceDecl{Loc: loc, Spec: spec, Name: name.Text, Templates: templates})
	case token.KwEnum:
		p.advance()
		return p.parseEnumBody(&ast.EnumDecl{Loc: loc, Spec: spec, Name: name.Text})
	}
	if len(templates) > 0 {
		return nil, p.fail(diag.SynUnexpectedToken, "expected 'struct' or 'interface' after a template list")
	}
	d := &ast.GenericTypeDecl{Loc: loc, Name: name.Text}
	if !p.eat(token.KwDyn) {
		for {
			dt, ok := p.parseDataType()
			if !ok {
				return nil, false
			}
			d.Conditions = append(d.Conditions, dt)
			if !p.eat(token.Pipe) {
				break
			}
		}
	}
	if !p.expectSemicolon() {
		return nil, false
	}
	return d, true
}

func (p *Parser) parseStructBody(d *ast.StructDecl, nameSpan source.Span) (ast.Decl, bool) {
	if p.eat(token.Colon) {
		for {
			dt, ok := p.parseDataType()
			if !ok {
				return nil, false
			}
			d.Interfaces = append(d.Interfaces, dt)
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return nil, false
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		_, loc := p.here()
		dt, ok := p.parseDataType()
		if !ok {
			return nil, false
		}
		name, ok := p.expectIdent("a field name")
		if !ok {
			return nil, false
		}
		f := &ast.FieldDecl{Loc: loc, Type: dt, Name: name.Text}
		if p.eat(token.Assign) {
			if f.Default, ok = p.parseTernary(); !ok {
				return nil, false
			}
		}
		if !p.expectSemicolon() {
			return nil, false
		}
		d.Fields = append(d.Fields, f)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "expected '}'"); !ok {
		return nil, false
	}
	d.Span = p.spanFrom(nameSpan)
	return d, true
}

func (p *Parser) parseInterfaceBody(d *ast.InterfaceDecl) (ast.Decl, bool) {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return nil, false
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		sig := &ast.Signature{}
		switch {
		case p.eat(token.KwP):
			sig.IsProc = true
		case p.eat(token.KwF):
			ret, ok := p.parseReturnType()
			if !ok {
				return nil, false
			}
			sig.Return = ret
		default:
			return nil, p.fail(diag.SynUnexpectedToken, "expected a method signature")
		}
		name, ok := p.expectMethodName()
		if !ok {
			return nil, false
		}
		sig.Loc = p.loc(name.Span)
		sig.Name = name.Text
		if p.at(token.Lt) {
			if sig.Templates, ok = p.parseTemplateList(); !ok {
				return nil, false
			}
		}
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
			return nil, false
		}
		for !p.at(token.RParen) {
			dt, ok := p.parseDataType()
			if !ok {
				return nil, false
			}
			p.eat(token.Ident) // parameter names are optional in signatures
			sig.Params = append(sig.Params, dt)
			if !p.eat(token.Comma) {
				break
			}
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'"); !ok {
			return nil, false
		}
		if !p.expectSemicolon() {
			return nil, false
		}
		d.Methods = append(d.Methods, sig)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "expected '}'"); !ok {
		return nil, false
	}
	return d, true
}

func (p *Parser) parseEnumBody(d *ast.EnumDecl) (ast.Decl, bool) {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return nil, false
	}
	for !p.at(token.RBrace) {
		name, ok := p.expectIdent("an enum item name")
		if !ok {
			return nil, false
		}
		item := &ast.EnumItem{Loc: p.loc(name.Span), Name: name.Text}
		if p.eat(token.Assign) {
			tok, ok := p.expect(token.IntLit, diag.SynBadLiteral, "expected an integer enum value")
			if !ok {
				return nil, false
			}
			v, _, err := parseIntLiteral(tok.Text)
			if err != nil {
				return nil, p.fail(diag.SynBadLiteral, "invalid enum value")
			}
			item.Value, item.HasValue = v, true
		}
		d.Items = append(d.Items, item)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "expected '}'"); !ok {
		return nil, false
	}
	return d, true
}

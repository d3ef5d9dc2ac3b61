// Package parser implements a hand-rolled recursive-descent statement
// parser with a Pratt expression parser on top, consuming the token stream
// internal/lexer produces (including its synthesized NEWLINE/INDENT/DEDENT)
// and producing the internal/ast tree.
package parser

import (
	"fmt"
	"strconv"

	"hc/internal/ast"
	"hc/internal/errors"
	"hc/internal/lexer"
	"hc/internal/token"
)

// Parser holds parse state over a single token stream.
type Parser struct {
	filename string
	tokens   []token.Token
	pos      int
	errs     []errors.CompilerError
}

// Parse lexes and parses src, returning the top-level statement list and
// any lexical, indentation, or syntax errors encountered. Parsing continues
// past the first error on a best-effort basis so multiple diagnostics can be
// reported in one pass.
func Parse(filename, src string) (*ast.StatementList, []errors.CompilerError) {
	tokens, lexErrs := lexer.Lex(filename, src)
	p := &Parser{filename: filename, tokens: tokens, errs: append([]errors.CompilerError{}, lexErrs...)}
	prog := p.parseStatementListUntil(token.EOF)
	return prog, p.errs
}

func (p *Parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *Parser) curKind() token.Kind { return p.tokens[p.pos].Kind }

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.curKind() == k }

func (p *Parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.check(k) {
		return p.advance()
	}
	t := p.cur()
	p.errorf(t.Position, errors.ErrorUnexpectedToken,
		"Syntax error at '%s' on line %d, col %d", tokenText(t), t.Position.Line, t.Position.Column)
	return t
}

func tokenText(t token.Token) string {
	if t.Kind == token.NEWLINE {
		return "\n"
	}
	if t.Kind == token.EOF {
		return "EOF"
	}
	return t.Lexeme
}

func (p *Parser) errorf(pos token.Position, code, format string, args ...interface{}) {
	p.errs = append(p.errs, errors.CompilerError{
		Level:    errors.Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	})
}

// skipNewlines consumes any run of blank NEWLINE tokens, which can appear
// between statements when the source has blank lines.
func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// parseStatementListUntil parses statements until the stop token (DEDENT or
// EOF) is reached.
func (p *Parser) parseStatementListUntil(stop token.Kind) *ast.StatementList {
	list := &ast.StatementList{}
	p.skipNewlines()
	for !p.check(stop) && !p.check(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			list.Append(stmt)
		}
		p.skipNewlines()
	}
	return list
}

// parseBlock expects NEWLINE INDENT <statements> DEDENT, reporting
// "Expected indented block on line N" if no indent follows.
func (p *Parser) parseBlock(headerLine int) *ast.StatementList {
	p.match(token.NEWLINE)
	if !p.check(token.INDENT) {
		p.errorf(p.cur().Position, errors.ErrorExpectedIndentedBlock,
			"Expected indented block on line %d", headerLine)
		return &ast.StatementList{}
	}
	p.advance() // INDENT
	body := p.parseStatementListUntil(token.DEDENT)
	p.match(token.DEDENT)
	return body
}

func (p *Parser) parseStatement() ast.Stmt {
	t := p.cur()
	switch t.Kind {
	case token.INIT:
		return p.parseInit()
	case token.FOREVER:
		return p.parseForever()
	case token.WHILE:
		return p.parseWhile()
	case token.IF:
		return p.parseIf()
	case token.OUTPUT:
		return p.parseOutput()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseInit() ast.Stmt {
	pos := p.cur().Position
	p.advance() // init
	name := p.expect(token.IDENT)
	p.expect(token.AT)
	numTok := p.expect(token.NUMBER)
	addr, _ := strconv.Atoi(numTok.Lexeme)
	p.match(token.NEWLINE)
	return &ast.InitialValueDeclaration{Position: pos, Name: name.Lexeme, Address: addr}
}

func (p *Parser) parseForever() ast.Stmt {
	pos := p.cur().Position
	p.advance() // forever
	body := p.parseBlock(pos.Line)
	return &ast.Forever{Position: pos, Body: body}
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.cur().Position
	p.advance() // while
	cond := p.parseExpr()
	body := p.parseBlock(pos.Line)
	return &ast.While{Position: pos, Cond: cond, Body: body}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.cur().Position
	p.advance() // if
	cond := p.parseExpr()
	then := p.parseBlock(pos.Line)
	var elseBody *ast.StatementList
	save := p.pos
	p.skipNewlines()
	if p.check(token.ELSE) {
		elsePos := p.cur().Position
		p.advance()
		elseBody = p.parseBlock(elsePos.Line)
	} else {
		p.pos = save
	}
	return &ast.If{Position: pos, Cond: cond, Then: then, Else: elseBody}
}

func (p *Parser) parseOutput() ast.Stmt {
	pos := p.cur().Position
	p.advance() // output
	e := p.parseExpr()
	p.match(token.NEWLINE)
	return &ast.Output{Position: pos, Expr: e}
}

// parseExprStatement handles `NAME = EXPR`, `NAME += EXPR`, `NAME -= EXPR`,
// and bare expression statements.
func (p *Parser) parseExprStatement() ast.Stmt {
	pos := p.cur().Position
	if p.check(token.IDENT) {
		nameTok := p.cur()
		switch p.tokens[p.pos+1].Kind {
		case token.EQUAL:
			p.advance()
			p.advance()
			rhs := p.parseExpr()
			p.match(token.NEWLINE)
			return &ast.ExprLine{Position: pos, Expr: &ast.Assignment{Position: pos, Name: nameTok.Lexeme, Expr: rhs}}
		case token.PLUS_EQUAL:
			p.advance()
			p.advance()
			rhs := p.parseExpr()
			p.match(token.NEWLINE)
			combined := &ast.Binary{Position: pos, Op: ast.OpAdd, Left: &ast.VariableRef{Position: pos, Name: nameTok.Lexeme}, Right: rhs}
			return &ast.ExprLine{Position: pos, Expr: &ast.Assignment{Position: pos, Name: nameTok.Lexeme, Expr: combined}}
		case token.MINUS_EQUAL:
			p.advance()
			p.advance()
			rhs := p.parseExpr()
			p.match(token.NEWLINE)
			combined := &ast.Binary{Position: pos, Op: ast.OpSubtract, Left: &ast.VariableRef{Position: pos, Name: nameTok.Lexeme}, Right: rhs}
			return &ast.ExprLine{Position: pos, Expr: &ast.Assignment{Position: pos, Name: nameTok.Lexeme, Expr: combined}}
		}
	}
	e := p.parseExpr()
	p.match(token.NEWLINE)
	return &ast.ExprLine{Position: pos, Expr: e}
}

// ---- Pratt expression parser ----
//
// Precedence, lowest to highest: || , && , == != , < <= > >= , + - , * ,
// unary - ! , primary.

type precedence int

const (
	precNone precedence = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
)

func binPrec(k token.Kind) precedence {
	switch k {
	case token.OR_OR:
		return precOr
	case token.AND_AND:
		return precAnd
	case token.EQUAL_EQUAL, token.BANG_EQUAL:
		return precEquality
	case token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL:
		return precRelational
	case token.PLUS, token.MINUS:
		return precAdditive
	case token.STAR:
		return precMultiplicative
	default:
		return precNone
	}
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(precOr)
}

func (p *Parser) parseBinary(min precedence) ast.Expr {
	left := p.parseUnary()
	for {
		prec := binPrec(p.curKind())
		if prec == precNone || prec < min {
			return left
		}
		opTok := p.advance()
		right := p.parseBinary(prec + 1)
		left = combineBinary(opTok, left, right)
	}
}

func combineBinary(op token.Token, left, right ast.Expr) ast.Expr {
	pos := op.Position
	switch op.Kind {
	case token.OR_OR:
		return &ast.Logical{Position: pos, Kind_: ast.LogicalOrKind, Left: left, Right: right}
	case token.AND_AND:
		return &ast.Logical{Position: pos, Kind_: ast.LogicalAndKind, Left: left, Right: right}
	case token.EQUAL_EQUAL:
		return &ast.Compare{Position: pos, Op: ast.CmpEq, Left: left, Right: right}
	case token.BANG_EQUAL:
		return &ast.Compare{Position: pos, Op: ast.CmpNe, Left: left, Right: right}
	case token.LESS:
		return &ast.Compare{Position: pos, Op: ast.CmpLt, Left: left, Right: right}
	case token.LESS_EQUAL:
		return &ast.Compare{Position: pos, Op: ast.CmpLe, Left: left, Right: right}
	case token.GREATER:
		return &ast.Compare{Position: pos, Op: ast.CmpGt, Left: left, Right: right}
	case token.GREATER_EQUAL:
		return &ast.Compare{Position: pos, Op: ast.CmpGe, Left: left, Right: right}
	case token.PLUS:
		return &ast.Binary{Position: pos, Op: ast.OpAdd, Left: left, Right: right}
	case token.MINUS:
		return &ast.Binary{Position: pos, Op: ast.OpSubtract, Left: left, Right: right}
	case token.STAR:
		return &ast.Binary{Position: pos, Op: ast.OpMultiply, Left: left, Right: right}
	default:
		return left
	}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.check(token.MINUS) {
		pos := p.advance().Position
		operand := p.parseUnary()
		return &ast.Negate{Position: pos, Operand: operand}
	}
	if p.check(token.BANG) {
		pos := p.advance().Position
		operand := p.parseUnary()
		return &ast.LogicalNot{Position: pos, Operand: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.NUMBER:
		p.advance()
		v, _ := strconv.Atoi(t.Lexeme)
		return &ast.Number{Position: t.Position, Value: v}
	case token.IDENT:
		p.advance()
		return &ast.VariableRef{Position: t.Position, Name: t.Lexeme}
	case token.INPUT:
		p.advance()
		return &ast.Input{Position: t.Position}
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	default:
		p.errorf(t.Position, errors.ErrorUnexpectedToken,
			"Syntax error at '%s' on line %d, col %d", tokenText(t), t.Position.Line, t.Position.Column)
		p.advance()
		return &ast.Number{Position: t.Position, Value: 0}
	}
}

// Package parser implements the recursive-descent parser of spec §4.1/§6,
// in the shape of the teacher's internal/parser/parser.go hand-written
// descent parser (no parser-generator dependency — the teacher never
// imports one either).
package parser

import (
	"strconv"

	"graphest/internal/ast"
	engerrors "graphest/internal/errors"
	"graphest/internal/lexer"
)

// Parser turns a token stream into a single relation Expr (spec §6's `rel`
// production).
type Parser struct {
	tokens  []lexer.Token
	current int
	source  string
}

func New(source string) (*Parser, error) {
	scanner := lexer.NewScanner(source)
	tokens := scanner.ScanTokens()
	return &Parser{tokens: tokens, source: source}, nil
}

// Parse parses the entire token stream as one relation expression. Trailing
// tokens after a complete expression are a ParseError.
func (p *Parser) Parse() (expr ast.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*engerrors.EngineError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()
	expr = p.parseOr()
	if !p.check(lexer.TokenEOF) {
		p.fail("end of input", "unexpected trailing input")
	}
	return expr, nil
}

// --- token helpers ---

func (p *Parser) peek() lexer.Token { return p.tokens[p.current] }

func (p *Parser) previous() lexer.Token { return p.tokens[p.current-1] }

func (p *Parser) isAtEnd() bool { return p.peek().Type == lexer.TokenEOF }

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() && t != lexer.TokenEOF {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, expected string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(expected, "unexpected token "+string(p.peek().Type))
	return lexer.Token{}
}

func (p *Parser) fail(expected, message string) {
	panic(engerrors.Parse(p.peek().Offset, expected, message))
}

// --- grammar: rel := or ---

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.match(lexer.TokenOr) {
		offset := p.previous().Offset
		right := p.parseAnd()
		left = &ast.Logical{Base: baseAt(offset), Op: ast.OpOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	for p.match(lexer.TokenAnd) {
		offset := p.previous().Offset
		right := p.parseNot()
		left = &ast.Logical{Base: baseAt(offset), Op: ast.OpAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.match(lexer.TokenNot) {
		offset := p.previous().Offset
		operand := p.parseNot()
		return &ast.Not{Base: baseAt(offset), Operand: operand}
	}
	return p.parseCmp()
}

var cmpTokens = map[lexer.TokenType]ast.CompareOp{
	lexer.TokenEq: ast.CmpEq,
	lexer.TokenLt: ast.CmpLt,
	lexer.TokenLe: ast.CmpLe,
	lexer.TokenGt: ast.CmpGt,
	lexer.TokenGe: ast.CmpGe,
}

// parseCmp implements "cmp := add (cmpop add)+ | add", expanding a chain
// a ⋈1 b ⋈2 c ... into (a ⋈1 b) && (b ⋈2 c) && ... per spec §4.1.
func (p *Parser) parseCmp() ast.Expr {
	first := p.parseAdd()
	operands := []ast.Expr{first}
	ops := []ast.CompareOp{}
	for {
		op, ok := cmpTokens[p.peek().Type]
		if !ok {
			break
		}
		offset := p.peek().Offset
		p.advance()
		_ = offset
		ops = append(ops, op)
		operands = append(operands, p.parseAdd())
	}
	if len(ops) == 0 {
		return first
	}
	var result ast.Expr
	for i, op := range ops {
		c := &ast.Compare{Base: baseAt(operands[i].Pos()), Op: op, Left: operands[i], Right: operands[i+1]}
		if result == nil {
			result = c
		} else {
			result = &ast.Logical{Base: baseAt(result.Pos()), Op: ast.OpAnd, Left: result, Right: c}
		}
	}
	return result
}

func (p *Parser) parseAdd() ast.Expr {
	left := p.parseMul()
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) {
		opTok := p.advance()
		op := ast.OpAdd
		if opTok.Type == lexer.TokenMinus {
			op = ast.OpSub
		}
		right := p.parseMul()
		left = &ast.Binary{Base: baseAt(opTok.Offset), Op: op, Left: left, Right: right}
	}
	return left
}

// startsUnary reports whether the current token can begin an implicitly
// multiplied operand (spec §4.1: "2 x y / z means ((2·x)·y) / z"). A '-' is
// left to parseAdd as subtraction, and a '|' to parseAtom as the closing bar
// of an absolute value, so neither starts an implicit product.
func (p *Parser) startsUnary() bool {
	switch p.peek().Type {
	case lexer.TokenNumber, lexer.TokenIdent, lexer.TokenLParen,
		lexer.TokenFloorL, lexer.TokenCeilL, lexer.TokenLBrack:
		return true
	}
	return false
}

func (p *Parser) parseMul() ast.Expr {
	left := p.parseUnary()
	for {
		if p.check(lexer.TokenStar) || p.check(lexer.TokenSlash) {
			opTok := p.advance()
			op := ast.OpMul
			if opTok.Type == lexer.TokenSlash {
				op = ast.OpDiv
			}
			right := p.parseUnary()
			left = &ast.Binary{Base: baseAt(opTok.Offset), Op: op, Left: left, Right: right}
			continue
		}
		if p.startsUnary() {
			offset := p.peek().Offset
			right := p.parseUnary()
			left = &ast.Binary{Base: baseAt(offset), Op: ast.OpImplicit, Left: left, Right: right}
			continue
		}
		break
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.match(lexer.TokenMinus) {
		offset := p.previous().Offset
		operand := p.parseUnary()
		return &ast.Unary{Base: baseAt(offset), Operand: operand}
	}
	return p.parsePow()
}

// parsePow implements "pow := atom ('^' unary)?", right-associative since
// the exponent recurses through unary back into pow.
func (p *Parser) parsePow() ast.Expr {
	left := p.parseAtom()
	if p.match(lexer.TokenCaret) {
		offset := p.previous().Offset
		right := p.parseUnary()
		return &ast.Binary{Base: baseAt(offset), Op: ast.OpPow, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAtom() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenNumber:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.failAt(tok.Offset, "number", "invalid numeric literal "+tok.Lexeme)
		}
		return &ast.Number{Base: baseAt(tok.Offset), Value: v}
	case lexer.TokenIdent:
		p.advance()
		if p.check(lexer.TokenLParen) {
			return p.finishCall(tok)
		}
		return &ast.Ident{Base: baseAt(tok.Offset), Name: tok.Lexeme}
	case lexer.TokenLParen:
		p.advance()
		inner := p.parseOr()
		p.consume(lexer.TokenRParen, ")")
		return inner
	case lexer.TokenPipe:
		p.advance()
		inner := p.parseAdd()
		p.consume(lexer.TokenPipe, "|")
		return &ast.Abs{Base: baseAt(tok.Offset), Operand: inner}
	case lexer.TokenFloorL:
		p.advance()
		inner := p.parseAdd()
		p.consume(lexer.TokenFloorR, "⌋")
		return &ast.Floor{Base: baseAt(tok.Offset), Operand: inner}
	case lexer.TokenCeilL:
		p.advance()
		inner := p.parseAdd()
		p.consume(lexer.TokenCeilR, "⌉")
		return &ast.Ceil{Base: baseAt(tok.Offset), Operand: inner}
	case lexer.TokenLBrack:
		p.advance()
		var elems []ast.Expr
		if !p.check(lexer.TokenRBrack) {
			elems = append(elems, p.parseOr())
			for p.match(lexer.TokenComma) {
				elems = append(elems, p.parseOr())
			}
		}
		p.consume(lexer.TokenRBrack, "]")
		return &ast.List{Base: baseAt(tok.Offset), Elements: elems}
	default:
		p.failAt(tok.Offset, "expression", "unexpected token "+string(tok.Type))
		return nil
	}
}

func (p *Parser) finishCall(nameTok lexer.Token) ast.Expr {
	p.consume(lexer.TokenLParen, "(")
	var args []ast.Expr
	if !p.check(lexer.TokenRParen) {
		args = append(args, p.parseOr())
		for p.match(lexer.TokenComma) {
			args = append(args, p.parseOr())
		}
	}
	p.consume(lexer.TokenRParen, ")")
	return &ast.Call{Base: baseAt(nameTok.Offset), Name: nameTok.Lexeme, Args: args}
}

func (p *Parser) failAt(offset int, expected, message string) {
	panic(engerrors.Parse(offset, expected, message))
}

func baseAt(offset int) ast.Base { return ast.Base{Offset: offset} }

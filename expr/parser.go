package expr

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/grimdal/m88k/lexer"
)

// Parser reads expressions from a token source.
type Parser struct {
	lex *lexer.Lexer
}

// NewParser creates an expression parser over the given token source.
func NewParser(lex *lexer.Lexer) *Parser {
	return &Parser{lex: lex}
}

// Starts reports whether a token can begin an expression.
func Starts(tok lexer.Token) bool {
	switch tok.Kind {
	case lexer.Integer, lexer.Identifier, lexer.Eval, lexer.Minus, lexer.LParen:
		return true
	}
	return false
}

// Parse reads one expression. Adjacent constants are folded; a symbol
// plus or minus a constant stays a BinaryAdd so later stages can
// inspect the constant part.
func (p *Parser) Parse() (Expr, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		var neg bool
		switch p.lex.Peek().Kind {
		case lexer.Plus:
		case lexer.Minus:
			neg = true
		default:
			return left, nil
		}
		p.lex.Next()
		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		if neg {
			c, ok := right.(*Constant)
			if !ok {
				return nil, fmt.Errorf("expected constant after '-'")
			}
			right = &Constant{Value: -c.Value}
		}
		if lc, ok := left.(*Constant); ok {
			if rc, ok := right.(*Constant); ok {
				left = &Constant{Value: lc.Value + rc.Value}
				continue
			}
		}
		left = &BinaryAdd{LHS: left, RHS: right}
	}
}

func (p *Parser) primary() (Expr, error) {
	tok := p.lex.Peek()
	switch tok.Kind {
	case lexer.Integer:
		p.lex.Next()
		return &Constant{Value: tok.Val}, nil

	case lexer.Minus:
		p.lex.Next()
		next := p.lex.Peek()
		if next.IsNot(lexer.Integer) {
			return nil, fmt.Errorf("expected integer after '-'")
		}
		p.lex.Next()
		return &Constant{Value: -next.Val}, nil

	case lexer.Eval:
		p.lex.Next()
		val, err := evalConstant(tok.Text)
		if err != nil {
			return nil, fmt.Errorf("bad $() expression: %w", err)
		}
		return &Constant{Value: val}, nil

	case lexer.LParen:
		p.lex.Next()
		inner, err := p.Parse()
		if err != nil {
			return nil, err
		}
		if p.lex.Peek().IsNot(lexer.RParen) {
			return nil, fmt.Errorf("expected ')'")
		}
		p.lex.Next()
		return inner, nil

	case lexer.Identifier:
		p.lex.Next()
		if v := variantFunc(tok.Text); v != None && p.lex.Peek().Is(lexer.LParen) {
			return p.variantRef(v)
		}
		return &SymbolRef{Name: tok.Text}, nil
	}
	return nil, fmt.Errorf("expected expression")
}

// variantRef parses the parenthesised symbol of hi16(...) / lo16(...).
func (p *Parser) variantRef(v Variant) (Expr, error) {
	p.lex.Next() // '('
	name := p.lex.Peek()
	if name.IsNot(lexer.Identifier) {
		return nil, fmt.Errorf("expected symbol in %s()", v)
	}
	p.lex.Next()
	if p.lex.Peek().IsNot(lexer.RParen) {
		return nil, fmt.Errorf("expected ')' after %s(%s", v, name.Text)
	}
	p.lex.Next()
	return &SymbolRef{Name: name.Text, Variant: v}, nil
}

func variantFunc(name string) Variant {
	switch name {
	case "hi16":
		return AbsHi
	case "lo16":
		return AbsLo
	}
	return None
}

// evalConstant evaluates a $( ... ) group as a Starlark expression at
// assembly time. Only integer results are accepted.
func evalConstant(src string) (int64, error) {
	thread := &starlark.Thread{Name: "asm-expr"}
	val, err := starlark.Eval(thread, "expr", src, nil)
	if err != nil {
		return 0, err
	}
	i, ok := val.(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("not an integer: %s", val)
	}
	v, ok := i.Int64()
	if !ok {
		return 0, fmt.Errorf("integer out of range: %s", i)
	}
	return v, nil
}

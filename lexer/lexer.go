// Package lexer provides the token source for the M88k assembler: typed
// tokens with source locations, single-token lookahead and push-back.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the type of a lexical token.
type Kind int

const (
	// EOF marks the end of the input.
	EOF Kind = iota
	// EndOfStatement is a newline or ';' separating statements.
	EndOfStatement
	// Identifier is a name, mnemonic or directive ("add", "r3", ".requires_88110").
	Identifier
	// Integer is a decimal or hexadecimal literal.
	Integer
	// Eval is a $( ... ) compile-time expression group; Text holds the inner source.
	Eval
	// Percent is the register sigil '%'.
	Percent
	// Comma separates operands.
	Comma
	// Colon terminates a label.
	Colon
	// Less and Greater delimit bitfield and rotate groups.
	Less
	Greater
	// LBrac and RBrac delimit scaled-register operands.
	LBrac
	RBrac
	// LParen and RParen group sub-expressions.
	LParen
	RParen
	Plus
	Minus
	// Unknown is any rune the lexer does not recognise.
	Unknown
)

// Loc is a position in the source text.
type Loc struct {
	Line int
	Col  int
}

func (l Loc) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

// Token is one lexical token with its source location.
type Token struct {
	Kind Kind
	Text string
	Val  int64 // value of an Integer token
	Loc  Loc
}

// Is reports whether the token has the given kind.
func (t Token) Is(k Kind) bool { return t.Kind == k }

// IsNot reports whether the token does not have the given kind.
func (t Token) IsNot(k Kind) bool { return t.Kind != k }

// Lexer scans assembly source into tokens. It supports one-token
// lookahead via Peek and push-back via UnLex.
type Lexer struct {
	src    string
	pos    int
	line   int
	col    int
	pushed []Token
}

// New creates a lexer over the given source text.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	if len(l.pushed) == 0 {
		l.pushed = append(l.pushed, l.scan())
	}
	return l.pushed[len(l.pushed)-1]
}

// Next consumes and returns the next token.
func (l *Lexer) Next() Token {
	if n := len(l.pushed); n > 0 {
		tok := l.pushed[n-1]
		l.pushed = l.pushed[:n-1]
		return tok
	}
	return l.scan()
}

// UnLex pushes a token back onto the stream. The next Peek or Next
// returns it again. Used by speculative parses such as register
// resolution with restore-on-failure.
func (l *Lexer) UnLex(tok Token) {
	l.pushed = append(l.pushed, tok)
}

// EatToEndOfStatement discards tokens up to, but not including, the next
// end-of-statement marker. Statement-level error recovery resumes there.
func (l *Lexer) EatToEndOfStatement() {
	for {
		tok := l.Peek()
		if tok.Is(EndOfStatement) || tok.Is(EOF) {
			return
		}
		l.Next()
	}
}

func (l *Lexer) loc() Loc { return Loc{Line: l.line, Col: l.col} }

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) scan() Token {
	// Skip horizontal whitespace and comments.
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
		case c == ';':
			// Comment runs to end of line; the newline itself still
			// produces an EndOfStatement token.
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		default:
			goto scan
		}
	}
scan:
	start := l.loc()
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Loc: start}
	}

	c := l.advance()
	switch {
	case c == '\n':
		return Token{Kind: EndOfStatement, Text: "\n", Loc: start}
	case isIdentStart(c):
		return l.scanIdentifier(start, c)
	case c >= '0' && c <= '9':
		return l.scanInteger(start, c)
	}

	switch c {
	case '%':
		return Token{Kind: Percent, Text: "%", Loc: start}
	case ',':
		return Token{Kind: Comma, Text: ",", Loc: start}
	case ':':
		return Token{Kind: Colon, Text: ":", Loc: start}
	case '<':
		return Token{Kind: Less, Text: "<", Loc: start}
	case '>':
		return Token{Kind: Greater, Text: ">", Loc: start}
	case '[':
		return Token{Kind: LBrac, Text: "[", Loc: start}
	case ']':
		return Token{Kind: RBrac, Text: "]", Loc: start}
	case '(':
		return Token{Kind: LParen, Text: "(", Loc: start}
	case ')':
		return Token{Kind: RParen, Text: ")", Loc: start}
	case '+':
		return Token{Kind: Plus, Text: "+", Loc: start}
	case '-':
		return Token{Kind: Minus, Text: "-", Loc: start}
	case '$':
		if l.pos < len(l.src) && l.src[l.pos] == '(' {
			return l.scanEvalGroup(start)
		}
	}
	return Token{Kind: Unknown, Text: string(c), Loc: start}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *Lexer) scanIdentifier(start Loc, first byte) Token {
	var sb strings.Builder
	sb.WriteByte(first)
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		sb.WriteByte(l.advance())
	}
	return Token{Kind: Identifier, Text: sb.String(), Loc: start}
}

func (l *Lexer) scanInteger(start Loc, first byte) Token {
	var sb strings.Builder
	sb.WriteByte(first)
	base := 10
	if first == '0' && l.pos < len(l.src) && (l.src[l.pos] == 'x' || l.src[l.pos] == 'X') {
		base = 16
		l.advance()
		sb.Reset()
	}
	digits := "0123456789"
	if base == 16 {
		digits = "0123456789abcdefABCDEF"
	}
	for l.pos < len(l.src) && strings.IndexByte(digits, l.src[l.pos]) >= 0 {
		sb.WriteByte(l.advance())
	}
	text := sb.String()
	val, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return Token{Kind: Unknown, Text: text, Loc: start}
	}
	return Token{Kind: Integer, Text: text, Val: val, Loc: start}
}

// scanEvalGroup captures the raw text of a $( ... ) group, honouring
// nested parentheses. The '$' has been consumed; the opening '(' has not.
func (l *Lexer) scanEvalGroup(start Loc) Token {
	l.advance() // '('
	depth := 1
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\n' {
			break
		}
		l.advance()
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return Token{Kind: Eval, Text: sb.String(), Loc: start}
			}
		}
		if c != ')' || depth > 0 {
			sb.WriteByte(c)
		}
	}
	return Token{Kind: Unknown, Text: "$(" + sb.String(), Loc: start}
}

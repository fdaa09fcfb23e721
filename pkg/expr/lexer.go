// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/actionlang/actionlang/pkg/ctxval"
)

// MaxExpressionLength bounds the raw source length of an expression
// (spec §3: "Expression trees have ... source length ≤ 21,000
// characters").
const MaxExpressionLength = 21000

// bracketKind marks what a StartGroup/StartIndex/StartParameters opened,
// so its matching close can be validated.
type bracketKind int

const (
	bracketGroup bracketKind = iota
	bracketIndex
	bracketParameters
)

// Lexer turns an expression string into a stream of Tokens. An unexpected
// sequence never panics or returns a Go error from Next — it yields a
// KindUnexpected token, exactly as spec §4.C requires, so that the parser
// (not the lexer) is responsible for turning that into a positioned
// error.
type Lexer struct {
	src    string
	pos    int // byte offset of the next unread rune
	stack  []bracketKind
	prev   Kind
	hasPrev bool
}

// NewLexer constructs a Lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// TooLong reports whether src exceeds MaxExpressionLength.
func (l *Lexer) TooLong() bool { return len(l.src) > MaxExpressionLength }

// Next returns the next token, or ok=false at end of input.
func (l *Lexer) Next() (Token, bool) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return Token{}, false
	}

	start := l.pos
	c := l.src[l.pos]

	var tok Token
	switch {
	case c == '(':
		l.pos++
		if l.hasPrev && l.prev == KindFunction {
			l.stack = append(l.stack, bracketParameters)
			tok = Token{Kind: KindStartParameters, Raw: "(", Index: start}
		} else {
			l.stack = append(l.stack, bracketGroup)
			tok = Token{Kind: KindStartGroup, Raw: "(", Index: start}
		}
	case c == '[':
		l.pos++
		l.stack = append(l.stack, bracketIndex)
		tok = Token{Kind: KindStartIndex, Raw: "[", Index: start}
	case c == ')':
		l.pos++
		tok = l.closeBracket(start, bracketGroup, KindEndGroup, bracketParameters, KindEndParameters)
	case c == ']':
		l.pos++
		tok = l.closeBracket(start, bracketIndex, KindEndIndex, bracketIndex, KindEndIndex)
	case c == ',':
		l.pos++
		tok = Token{Kind: KindSeparator, Raw: ",", Index: start}
	case c == '.':
		l.pos++
		tok = Token{Kind: KindDereference, Raw: ".", Index: start}
	case c == '*':
		l.pos++
		tok = Token{Kind: KindWildcard, Raw: "*", Index: start}
	case c == '!':
		if l.peekAt(1) == '=' {
			l.pos += 2
			tok = Token{Kind: KindNotEqual, Raw: "!=", Index: start}
		} else {
			l.pos++
			tok = Token{Kind: KindNot, Raw: "!", Index: start}
		}
	case c == '=':
		if l.peekAt(1) == '=' {
			l.pos += 2
			tok = Token{Kind: KindEqual, Raw: "==", Index: start}
		} else {
			l.pos++
			tok = Token{Kind: KindUnexpected, Raw: "=", Index: start}
		}
	case c == '<':
		if l.peekAt(1) == '=' {
			l.pos += 2
			tok = Token{Kind: KindLessThanOrEqual, Raw: "<=", Index: start}
		} else {
			l.pos++
			tok = Token{Kind: KindLessThan, Raw: "<", Index: start}
		}
	case c == '>':
		if l.peekAt(1) == '=' {
			l.pos += 2
			tok = Token{Kind: KindGreaterThanOrEqual, Raw: ">=", Index: start}
		} else {
			l.pos++
			tok = Token{Kind: KindGreaterThan, Raw: ">", Index: start}
		}
	case c == '&':
		if l.peekAt(1) == '&' {
			l.pos += 2
			tok = Token{Kind: KindAnd, Raw: "&&", Index: start}
		} else {
			l.pos++
			tok = Token{Kind: KindUnexpected, Raw: "&", Index: start}
		}
	case c == '|':
		if l.peekAt(1) == '|' {
			l.pos += 2
			tok = Token{Kind: KindOr, Raw: "||", Index: start}
		} else {
			l.pos++
			tok = Token{Kind: KindUnexpected, Raw: "|", Index: start}
		}
	case c == '\'':
		tok = l.lexString(start)
	case isDigit(c) || (c == '-' && isDigit(l.peekAt(1))):
		tok = l.lexNumber(start)
	case isIdentStart(c):
		tok = l.lexIdentOrKeyword(start)
	default:
		l.pos++
		tok = Token{Kind: KindUnexpected, Raw: l.src[start:l.pos], Index: start}
	}

	l.prev = tok.Kind
	l.hasPrev = true
	return tok, true
}

func (l *Lexer) closeBracket(start int, wantGroup bracketKind, groupKind Kind, wantParams bracketKind, paramsKind Kind) Token {
	if len(l.stack) == 0 {
		return Token{Kind: KindUnexpected, Raw: l.src[start:l.pos], Index: start}
	}
	top := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]

	switch {
	case top == bracketGroup && groupKind == KindEndGroup:
		return Token{Kind: KindEndGroup, Raw: l.src[start:l.pos], Index: start}
	case top == bracketParameters && groupKind == KindEndGroup:
		return Token{Kind: KindEndParameters, Raw: l.src[start:l.pos], Index: start}
	case top == bracketIndex && groupKind == KindEndIndex:
		return Token{Kind: KindEndIndex, Raw: l.src[start:l.pos], Index: start}
	default:
		return Token{Kind: KindUnexpected, Raw: l.src[start:l.pos], Index: start}
	}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) peekAt(offset int) byte {
	i := l.pos + offset
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '-'
}

func (l *Lexer) lexString(start int) Token {
	l.pos++ // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{Kind: KindUnexpected, Raw: l.src[start:l.pos], Index: start}
		}
		c := l.src[l.pos]
		if c == '\'' {
			if l.peekAt(1) == '\'' {
				sb.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++ // closing quote
			break
		}
		sb.WriteByte(c)
		l.pos++
	}
	return Token{
		Kind:    KindString,
		Raw:     l.src[start:l.pos],
		Index:   start,
		Literal: ctxval.NewString(sb.String()),
	}
}

func (l *Lexer) lexNumber(start int) Token {
	if l.src[l.pos] == '-' {
		l.pos++
	}
	if strings.HasPrefix(l.src[l.pos:], "Infinity") {
		l.pos += len("Infinity")
		raw := l.src[start:l.pos]
		sign := 1.0
		if raw[0] == '-' {
			sign = -1.0
		}
		return Token{Kind: KindNumber, Raw: raw, Index: start, Literal: ctxval.NewNumber(sign * math.Inf(1))}
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' && isDigit(l.peekAt(1)) {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}
	raw := l.src[start:l.pos]
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Token{Kind: KindUnexpected, Raw: raw, Index: start}
	}
	return Token{Kind: KindNumber, Raw: raw, Index: start, Literal: ctxval.NewNumber(n)}
}

func (l *Lexer) lexIdentOrKeyword(start int) Token {
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	raw := l.src[start:l.pos]
	upper := strings.ToUpper(raw)

	switch upper {
	case "NULL":
		return Token{Kind: KindNull, Raw: raw, Index: start, Literal: ctxval.Null}
	case "TRUE":
		return Token{Kind: KindBoolean, Raw: raw, Index: start, Literal: ctxval.NewBool(true)}
	case "FALSE":
		return Token{Kind: KindBoolean, Raw: raw, Index: start, Literal: ctxval.NewBool(false)}
	case "NAN":
		return Token{Kind: KindNumber, Raw: raw, Index: start, Literal: ctxval.NewNumber(math.NaN())}
	case "INFINITY":
		return Token{Kind: KindNumber, Raw: raw, Index: start, Literal: ctxval.NewNumber(math.Inf(1))}
	}

	// Peek past whitespace for '(' to classify Function vs NamedContext vs
	// PropertyName (PropertyName is decided by the parser/legality check
	// based on the preceding Dereference token, not by the lexer itself).
	save := l.pos
	for save < len(l.src) && (l.src[save] == ' ' || l.src[save] == '\t') {
		save++
	}
	if save < len(l.src) && l.src[save] == '(' {
		return Token{Kind: KindFunction, Raw: raw, Index: start}
	}
	if l.hasPrev && l.prev == KindDereference {
		return Token{Kind: KindPropertyName, Raw: raw, Index: start}
	}
	return Token{Kind: KindNamedContext, Raw: raw, Index: start}
}

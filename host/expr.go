// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"strconv"
)

var (
	errExprParse    = errors.New("expression syntax error")
	errDivideByZero = errors.New("division by zero")
)

type resolver interface {
	resolveIdentifier(s string) (int64, error)
}

type binaryOp struct {
	symbol string
	eval   func(a, b int64) (int64, error)
}

// Binary operators grouped by precedence, lowest first. Operators within a
// group associate to the left.
var binaryOps = [][]binaryOp{
	{{"|", func(a, b int64) (int64, error) { return a | b, nil }}},
	{{"^", func(a, b int64) (int64, error) { return a ^ b, nil }}},
	{{"&", func(a, b int64) (int64, error) { return a & b, nil }}},
	{
		{"<<", func(a, b int64) (int64, error) { return a << uint64(b), nil }},
		{">>", func(a, b int64) (int64, error) { return a >> uint64(b), nil }},
	},
	{
		{"+", func(a, b int64) (int64, error) { return a + b, nil }},
		{"-", func(a, b int64) (int64, error) { return a - b, nil }},
	},
	{
		{"*", func(a, b int64) (int64, error) { return a * b, nil }},
		{"/", func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, errDivideByZero
			}
			return a / b, nil
		}},
		{"%", func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, errDivideByZero
			}
			return a % b, nil
		}},
	},
}

// An exprParser evaluates integer expressions typed at the host prompt.
// Numbers may be written as $hex, %binary, 0x/0b/0d-prefixed or plain
// decimal ('c' gives a character code). Identifiers are resolved by the
// host. When hexMode is set, unprefixed numbers are hexadecimal.
type exprParser struct {
	hexMode bool
	t       tstring
	r       resolver
}

func newExprParser() *exprParser {
	return &exprParser{}
}

// Parse evaluates 'expr', using 'r' to look up identifiers.
func (p *exprParser) Parse(expr string, r resolver) (int64, error) {
	p.t, p.r = tstring(expr), r
	defer func() { p.t, p.r = "", nil }()

	v, err := p.parseBinary(0)
	if err != nil {
		return 0, err
	}
	if p.t = p.t.consumeWhitespace(); len(p.t) > 0 {
		return 0, errExprParse
	}
	return v, nil
}

func (p *exprParser) parseBinary(level int) (int64, error) {
	if level == len(binaryOps) {
		return p.parseUnary()
	}

	a, err := p.parseBinary(level + 1)
	if err != nil {
		return 0, err
	}

	for {
		op := p.matchOp(binaryOps[level])
		if op == nil {
			return a, nil
		}
		b, err := p.parseBinary(level + 1)
		if err != nil {
			return 0, err
		}
		if a, err = op.eval(a, b); err != nil {
			return 0, err
		}
	}
}

// Consume and return the first operator in 'ops' found at the head of the
// remaining input.
func (p *exprParser) matchOp(ops []binaryOp) *binaryOp {
	p.t = p.t.consumeWhitespace()
	for i := range ops {
		if p.t.hasPrefix(ops[i].symbol) {
			p.t = p.t.consume(len(ops[i].symbol))
			return &ops[i]
		}
	}
	return nil
}

func (p *exprParser) parseUnary() (int64, error) {
	p.t = p.t.consumeWhitespace()
	if len(p.t) == 0 {
		return 0, errExprParse
	}

	switch p.t[0] {
	case '-', '+', '~':
		c := p.t[0]
		p.t = p.t.consume(1)
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch c {
		case '-':
			return -v, nil
		case '~':
			return ^v, nil
		default:
			return v, nil
		}
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (int64, error) {
	t := p.t
	switch c := t[0]; {
	case c == '(':
		p.t = t.consume(1)
		v, err := p.parseBinary(0)
		if err != nil {
			return 0, err
		}
		if p.t = p.t.consumeWhitespace(); len(p.t) == 0 || p.t[0] != ')' {
			return 0, errExprParse
		}
		p.t = p.t.consume(1)
		return v, nil

	case c == '\'':
		if len(t) < 3 || t[2] != '\'' {
			return 0, errExprParse
		}
		p.t = t.consume(3)
		return int64(t[1]), nil

	case c == '$':
		return p.parseNumber(t.consume(1), 16, hexadecimal)

	case c == '%':
		return p.parseNumber(t.consume(1), 2, binary)

	case c == '0' && len(t) > 1 && (t[1] == 'x' || t[1] == 'b' || t[1] == 'd'):
		switch t[1] {
		case 'x':
			return p.parseNumber(t.consume(2), 16, hexadecimal)
		case 'b':
			return p.parseNumber(t.consume(2), 2, binary)
		default:
			return p.parseNumber(t.consume(2), 10, decimal)
		}

	case decimal(c):
		if p.hexMode {
			return p.parseNumber(t, 16, hexadecimal)
		}
		return p.parseNumber(t, 10, decimal)

	case identifierStart(c):
		id, remain := t.consumeWhile(identifier)
		if p.hexMode && id.scanWhile(hexadecimal) == len(id) {
			return p.parseNumber(t, 16, hexadecimal)
		}
		p.t = remain
		return p.r.resolveIdentifier(string(id))

	default:
		return 0, errExprParse
	}
}

func (p *exprParser) parseNumber(t tstring, base int, fn func(c byte) bool) (int64, error) {
	num, remain := t.consumeWhile(fn)
	if len(num) == 0 {
		return 0, errExprParse
	}
	v, err := strconv.ParseInt(string(num), base, 64)
	if err != nil {
		return 0, errExprParse
	}
	p.t = remain
	return v, nil
}

//
// tstring
//

type tstring string

func (t tstring) consume(n int) tstring {
	return t[n:]
}

func (t tstring) hasPrefix(s string) bool {
	return len(t) >= len(s) && string(t[:len(s)]) == s
}

func (t tstring) consumeWhitespace() tstring {
	return t.consume(t.scanWhile(whitespace))
}

func (t tstring) scanWhile(fn func(c byte) bool) int {
	i := 0
	for ; i < len(t) && fn(t[i]); i++ {
	}
	return i
}

func (t tstring) consumeWhile(fn func(c byte) bool) (consumed, remain tstring) {
	i := t.scanWhile(fn)
	return t[:i], t[i:]
}

func whitespace(c byte) bool {
	return c == ' ' || c == '\t'
}

func decimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func hexadecimal(c byte) bool {
	return decimal(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func binary(c byte) bool {
	return c == '0' || c == '1'
}

func identifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '.'
}

func identifier(c byte) bool {
	return identifierStart(c) || decimal(c)
}

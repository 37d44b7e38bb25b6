package wires

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Parse reads one statement per line. Blank lines and '#' comments are
// skipped.
func Parse(src []byte) ([]Statement, error) {
	return parseLines(bytes.NewReader(src))
}

func parseLines(r io.Reader) ([]Statement, error) {
	var stmts []Statement
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(stripComment(s.Text()))
		if text == "" {
			continue
		}
		st, err := ParseStatement(text)
		if err != nil {
			return stmts, errors.Wrapf(err, "line %d", line)
		}
		st.Line = line
		stmts = append(stmts, st)
	}
	if err := s.Err(); err != nil {
		return stmts, errors.Wrap(err, "reading circuit")
	}
	return stmts, nil
}

// ParseStatement parses a single "<expr> -> <wire>" line.
func ParseStatement(s string) (Statement, error) {
	toks := lex(s)
	if len(toks) < 3 {
		return Statement{}, malformed("%q: want at least 3 tokens, got %d", s, len(toks))
	}
	arrow := len(toks) - 2
	if toks[arrow].kind != tokArrow {
		return Statement{}, malformed("%q: expected -> before destination", s)
	}
	dst := toks[arrow+1]
	if dst.kind != tokIdent {
		return Statement{}, malformed("%q: destination %q is not a wire name", s, dst.text)
	}

	expr, err := parseExpr(toks[:arrow])
	if err != nil {
		return Statement{}, malformed("%q: %v", s, err)
	}
	return Statement{Wire: dst.text, Expr: expr}, nil
}

func parseExpr(toks []token) (Expr, error) {
	switch len(toks) {
	case 1:
		x, err := parseOperand(toks[0])
		if err != nil {
			return nil, err
		}
		return ExprValue{X: x}, nil
	case 2:
		if toks[0].kind != tokNot {
			return nil, errors.Errorf("unexpected token %q", toks[0].text)
		}
		x, err := parseOperand(toks[1])
		if err != nil {
			return nil, err
		}
		return ExprNot{X: x}, nil
	case 3:
		if toks[1].kind != tokOp {
			return nil, errors.Errorf("unknown operator %q", toks[1].text)
		}
		a, err := parseOperand(toks[0])
		if err != nil {
			return nil, err
		}
		b, err := parseOperand(toks[2])
		if err != nil {
			return nil, err
		}
		return ExprBinary{Op: toks[1].op, A: a, B: b}, nil
	default:
		return nil, errors.Errorf("expression has %d tokens", len(toks))
	}
}

func parseOperand(t token) (Operand, error) {
	switch t.kind {
	case tokIdent:
		return Ref(t.text), nil
	case tokNumber:
		v, err := strconv.ParseUint(t.text, 10, 16)
		if err != nil {
			return Operand{}, errors.Errorf("invalid 16-bit value %q", t.text)
		}
		return Literal(uint16(v)), nil
	default:
		return Operand{}, errors.Errorf("unexpected token %q", t.text)
	}
}

// Lexer

type tokenKind int

const (
	tokInvalid tokenKind = iota
	tokIdent
	tokNumber
	tokNot
	tokOp
	tokArrow
)

type token struct {
	kind tokenKind
	text string
	op   Op
}

var keywords = map[string]Op{
	"AND":    OpAnd,
	"OR":     OpOr,
	"LSHIFT": OpLShift,
	"RSHIFT": OpRShift,
}

func lex(s string) []token {
	fields := strings.Fields(s)
	toks := make([]token, 0, len(fields))
	for _, f := range fields {
		toks = append(toks, classify(f))
	}
	return toks
}

func classify(f string) token {
	if f == "->" {
		return token{kind: tokArrow, text: f}
	}
	if f == "NOT" {
		return token{kind: tokNot, text: f}
	}
	if op, ok := keywords[f]; ok {
		return token{kind: tokOp, text: f, op: op}
	}
	if isNumber(f) {
		return token{kind: tokNumber, text: f}
	}
	if isIdent(f) {
		return token{kind: tokIdent, text: f}
	}
	return token{kind: tokInvalid, text: f}
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isIdent(s string) bool {
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return s != ""
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}

// Package literal parses the literal subset of Python expression syntax:
// strings, numbers, True/False/None, lists and tuples. Nothing else is
// accepted, which is the point: input files are data, and no expression in
// them can ever be evaluated or executed.
package literal

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports a parse failure with a 1-based source position.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

// Parse reads src as a single literal expression. Whitespace and # comments
// are allowed anywhere between tokens; anything after the top-level value is
// an error.
func Parse(src string) (Value, error) {
	p := &parser{src: []rune(src), line: 1, col: 1}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after top-level value", p.peek())
	}
	return v, nil
}

type parser struct {
	src  []rune
	pos  int
	line int
	col  int
}

const eof = rune(-1)

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return eof
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(offset int) rune {
	if p.pos+offset >= len(p.src) {
		return eof
	}
	return p.src[p.pos+offset]
}

func (p *parser) next() rune {
	if p.eof() {
		return eof
	}
	r := p.src[p.pos]
	p.pos++
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

func (p *parser) errorf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Line: p.line, Col: p.col, Msg: fmt.Sprintf(format, args...)}
}

// skipSpace consumes whitespace and # comments.
func (p *parser) skipSpace() {
	for {
		switch r := p.peek(); r {
		case ' ', '\t', '\r', '\n':
			p.next()
		case '#':
			for p.peek() != '\n' && p.peek() != eof {
				p.next()
			}
		default:
			return
		}
	}
}

func (p *parser) parseValue() (Value, error) {
	switch r := p.peek(); {
	case r == eof:
		return nil, p.errorf("unexpected end of input")
	case r == '[':
		items, err := p.parseSeq('[', ']')
		if err != nil {
			return nil, err
		}
		return List{Items: items}, nil
	case r == '(':
		items, err := p.parseSeq('(', ')')
		if err != nil {
			return nil, err
		}
		return Tuple{Items: items}, nil
	case r == '\'' || r == '"':
		return p.parseString()
	case r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.':
		return p.parseNumber()
	case isNameStart(r):
		return p.parseName()
	default:
		return nil, p.errorf("unexpected character %q", r)
	}
}

func (p *parser) parseSeq(open, close rune) ([]Value, error) {
	p.next() // consume open
	var items []Value
	for {
		p.skipSpace()
		if p.peek() == eof {
			return nil, p.errorf("unexpected end of input, %q is not closed", open)
		}
		if p.peek() == close {
			p.next()
			return items, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.next()
		case close:
			p.next()
			return items, nil
		case eof:
			return nil, p.errorf("unexpected end of input, %q is not closed", open)
		default:
			return nil, p.errorf("expected ',' or %q, got %q", close, p.peek())
		}
	}
}

func (p *parser) parseString() (Value, error) {
	q := p.next()
	triple := p.peek() == q && p.peekAt(1) == q
	if triple {
		p.next()
		p.next()
	}
	var b strings.Builder
	for {
		r := p.peek()
		switch {
		case r == eof:
			return nil, p.errorf("unterminated string")
		case r == q && !triple:
			p.next()
			return String{Value: b.String()}, nil
		case r == q && triple && p.peekAt(1) == q && p.peekAt(2) == q:
			p.next()
			p.next()
			p.next()
			return String{Value: b.String()}, nil
		case r == '\n' && !triple:
			return nil, p.errorf("newline in string")
		case r == '\\':
			p.next()
			if err := p.readEscape(&b); err != nil {
				return nil, err
			}
		default:
			b.WriteRune(p.next())
		}
	}
}

// readEscape handles the character after a backslash. Unrecognized escapes
// keep the backslash verbatim, matching Python.
func (p *parser) readEscape(b *strings.Builder) error {
	switch r := p.next(); r {
	case eof:
		return p.errorf("unterminated string")
	case '\\', '\'', '"':
		b.WriteRune(r)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\n':
		// line continuation, emits nothing
	case 'x':
		return p.readHexEscape(b, 2)
	case 'u':
		return p.readHexEscape(b, 4)
	case 'U':
		return p.readHexEscape(b, 8)
	default:
		b.WriteByte('\\')
		b.WriteRune(r)
	}
	return nil
}

func (p *parser) readHexEscape(b *strings.Builder, digits int) error {
	var code rune
	for i := 0; i < digits; i++ {
		r := p.next()
		d, ok := hexDigit(r)
		if !ok {
			return p.errorf("invalid hex escape in string")
		}
		code = code<<4 | d
	}
	b.WriteRune(code)
	return nil
}

func hexDigit(r rune) (rune, bool) {
	switch {
	case r >= '0' && r <= '9':
		return r - '0', true
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10, true
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10, true
	}
	return 0, false
}

// parseNumber accepts decimal integers and floats, with optional sign,
// exponent, and underscore digit separators.
func (p *parser) parseNumber() (Value, error) {
	line, col := p.line, p.col
	var raw strings.Builder
	if p.peek() == '+' || p.peek() == '-' {
		raw.WriteRune(p.next())
	}
	isFloat := false
	for {
		r := p.peek()
		if r >= '0' && r <= '9' || r == '_' {
			raw.WriteRune(p.next())
			continue
		}
		if r == '.' {
			isFloat = true
			raw.WriteRune(p.next())
			continue
		}
		if r == 'e' || r == 'E' {
			isFloat = true
			raw.WriteRune(p.next())
			if p.peek() == '+' || p.peek() == '-' {
				raw.WriteRune(p.next())
			}
			continue
		}
		break
	}
	text := strings.ReplaceAll(raw.String(), "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf("invalid number %q", raw.String())}
		}
		return Float{Value: f}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf("invalid number %q", raw.String())}
	}
	return Int{Value: n}, nil
}

// parseName accepts exactly True, False and None. Any other identifier is an
// error rather than a lookup: names are where code execution would start.
func (p *parser) parseName() (Value, error) {
	line, col := p.line, p.col
	var name strings.Builder
	for isNamePart(p.peek()) {
		name.WriteRune(p.next())
	}
	switch name.String() {
	case "True":
		return Bool{Value: true}, nil
	case "False":
		return Bool{Value: false}, nil
	case "None":
		return None{}, nil
	}
	return nil, &SyntaxError{Line: line, Col: col,
		Msg: fmt.Sprintf("unexpected identifier %q, only literal values are allowed", name.String())}
}

func isNameStart(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_'
}

func isNamePart(r rune) bool {
	return isNameStart(r) || r >= '0' && r <= '9'
}

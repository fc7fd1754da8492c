package parser

import (
	"strings"

	"github.com/pwall567/kjson-yaml/pkg/node"
)

// child is a node under construction within a line: a scalar, a flow
// container, or an alias. A child consumes as much of the current line as it
// can; when the line runs out before its delimiter, the surrounding block
// feeds it further lines through continuation.
type child interface {
	// add consumes characters from the current line.
	add(l *Line) error
	// continuation consumes a following line.
	continuation(l *Line) error
	// terminated reports whether the syntactic delimiter has been seen.
	terminated() bool
	// complete reports whether the child may be materialized even without
	// its delimiter (true for plain scalars at dedent).
	complete() bool
	// value materializes the typed node.
	value() node.Node
}

// textual is implemented by scalar children whose raw text can serve as a
// mapping key.
type textual interface {
	text() string
}

// plainScalar recognizes unquoted scalars. In flow mode it additionally
// stops, terminated, at any flow indicator.
type plainScalar struct {
	ctx  *context
	b    strings.Builder
	flow bool
	term bool
}

func newPlainScalar(ctx *context, flow bool) *plainScalar {
	return &plainScalar{ctx: ctx, flow: flow}
}

// add consumes scalar characters up to a colon-with-whitespace, a comment,
// the line end, or (in flow mode) a flow indicator. Trailing whitespace is
// trimmed; the cursor is left on the stopping character.
func (p *plainScalar) add(l *Line) error {
	start := l.index
	for !l.atEnd() {
		ch := l.peek()
		if ch == '#' && (l.index == 0 || isSpace(l.text[l.index-1])) {
			break
		}
		if ch == ':' && (l.index+1 >= len(l.text) || isSpace(l.text[l.index+1])) {
			break
		}
		if p.flow && (ch == ',' || ch == '[' || ch == ']' || ch == '{' || ch == '}') {
			p.term = true
			break
		}
		l.advance()
	}
	end := l.index
	l.backSkipSpaces()
	if l.index < start {
		l.index = start // nothing consumed; keep the indentation out
	}
	p.b.WriteString(l.text[start:l.index])
	l.index = end
	return nil
}

func (p *plainScalar) continuation(l *Line) error {
	if p.b.Len() > 0 {
		p.b.WriteByte(' ')
	}
	return p.add(l)
}

func (p *plainScalar) terminated() bool { return p.term }
func (p *plainScalar) complete() bool   { return true }

// text trims the whitespace a continuation join may have left trailing.
func (p *plainScalar) text() string {
	return strings.TrimRight(p.b.String(), " \t")
}

func (p *plainScalar) value() node.Node {
	n, implied := classifyScalar(p.text(), p.ctx.tag, p.ctx.doc.minorVersion)
	if implied != "" && p.ctx.tag == "" {
		p.ctx.tag = implied
	}
	return n
}

// singleQuotedScalar recognizes '...' scalars, where '' is a literal
// apostrophe. Unterminated lines are legal and join with a single space.
type singleQuotedScalar struct {
	b    strings.Builder
	term bool
}

func (s *singleQuotedScalar) add(l *Line) error {
	for !l.atEnd() {
		ch := l.peek()
		l.advance()
		if ch == '\'' {
			if !l.atEnd() && l.peek() == '\'' {
				s.b.WriteByte('\'')
				l.advance()
				continue
			}
			s.term = true
			return nil
		}
		s.b.WriteByte(ch)
	}
	return nil
}

func (s *singleQuotedScalar) continuation(l *Line) error {
	if t := s.b.String(); len(t) > 0 && !strings.HasSuffix(t, " ") {
		s.b.WriteByte(' ')
	}
	return s.add(l)
}

func (s *singleQuotedScalar) terminated() bool { return s.term }
func (s *singleQuotedScalar) complete() bool   { return s.term }
func (s *singleQuotedScalar) text() string     { return s.b.String() }
func (s *singleQuotedScalar) value() node.Node { return node.String(s.b.String()) }

// doubleQuotedScalar recognizes "..." scalars with the full YAML 1.2 escape
// set. A backslash as the last character of a line suppresses the joining
// space on continuation.
type doubleQuotedScalar struct {
	b         strings.Builder
	term      bool
	escapedNL bool
}

func (d *doubleQuotedScalar) add(l *Line) error {
	for !l.atEnd() {
		ch := l.peek()
		switch ch {
		case '"':
			l.advance()
			d.term = true
			return nil
		case '\\':
			l.advance()
			if l.atEnd() {
				d.escapedNL = true
				return nil
			}
			if err := d.readEscape(l); err != nil {
				return err
			}
		default:
			d.b.WriteByte(ch)
			l.advance()
		}
	}
	return nil
}

func (d *doubleQuotedScalar) readEscape(l *Line) error {
	ch := l.peek()
	l.advance()
	switch ch {
	case '0':
		d.b.WriteByte(0x00)
	case 'a':
		d.b.WriteByte(0x07)
	case 'b':
		d.b.WriteByte(0x08)
	case 't', '\t':
		d.b.WriteByte(0x09)
	case 'n':
		d.b.WriteByte(0x0A)
	case 'v':
		d.b.WriteByte(0x0B)
	case 'f':
		d.b.WriteByte(0x0C)
	case 'r':
		d.b.WriteByte(0x0D)
	case 'e':
		d.b.WriteByte(0x1B)
	case ' ':
		d.b.WriteByte(' ')
	case '"':
		d.b.WriteByte('"')
	case '/':
		d.b.WriteByte('/')
	case '\\':
		d.b.WriteByte('\\')
	case 'N':
		d.b.WriteRune('\u0085')
	case '_':
		d.b.WriteRune('\u00a0')
	case 'L':
		d.b.WriteRune('\u2028')
	case 'P':
		d.b.WriteRune('\u2029')
	case 'x':
		v, ok := l.matchHexDigits(2)
		if !ok {
			return errorf(l, "Illegal hex character in escape sequence")
		}
		d.b.WriteRune(v)
	case 'u':
		v, ok := l.matchHexDigits(4)
		if !ok {
			return errorf(l, "Illegal unicode escape sequence")
		}
		d.b.WriteRune(v)
	case 'U':
		v, ok := l.matchHexDigits(8)
		if !ok {
			return errorf(l, "Illegal unicode escape sequence")
		}
		if v > 0x10FFFF {
			return errorf(l, "Unicode code point out of range")
		}
		d.b.WriteRune(v)
	default:
		l.revert()
		return errorf(l, "Illegal escape sequence '\\%c'", ch)
	}
	return nil
}

func (d *doubleQuotedScalar) continuation(l *Line) error {
	if d.escapedNL {
		d.escapedNL = false
	} else if t := d.b.String(); len(t) > 0 && !strings.HasSuffix(t, " ") {
		d.b.WriteByte(' ')
	}
	return d.add(l)
}

func (d *doubleQuotedScalar) terminated() bool { return d.term }
func (d *doubleQuotedScalar) complete() bool   { return d.term }
func (d *doubleQuotedScalar) text() string     { return d.b.String() }
func (d *doubleQuotedScalar) value() node.Node { return node.String(d.b.String()) }

// aliasChild is a resolved *name reference; its value is the previously
// anchored node itself.
type aliasChild struct {
	n node.Node
}

func (a *aliasChild) add(*Line) error          { return nil }
func (a *aliasChild) continuation(*Line) error { return nil }
func (a *aliasChild) terminated() bool         { return true }
func (a *aliasChild) complete() bool           { return true }
func (a *aliasChild) value() node.Node         { return a.n }

// incompleteError describes a child that reached a dedent or the end of
// input without its delimiter.
func incompleteError(l *Line, c child) error {
	switch c.(type) {
	case *singleQuotedScalar:
		return errorf(l, "Unterminated single-quoted scalar")
	case *doubleQuotedScalar:
		return errorf(l, "Unterminated double-quoted scalar")
	case *flowSequence:
		return errorf(l, "Unterminated flow sequence")
	case *flowMapping:
		return errorf(l, "Unterminated flow mapping")
	}
	return errorf(l, "Incomplete scalar")
}

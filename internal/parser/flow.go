package parser

import (
	"github.com/pwall567/kjson-yaml/pkg/node"
)

// Flow containers run a small state machine across lines until their closing
// delimiter.
const (
	flowItem  = iota // expecting the next value (or key, in a mapping)
	flowAfter        // the current child has stopped consuming on this line
	flowChild        // the current child spans additional lines
	flowComma        // a finished child awaits its separator on a new line
	flowClosed
)

// newFlowChild dispatches on the character at the cursor to create the child
// for a flow value position.
func newFlowChild(l *Line, ctx *context) (child, error) {
	switch l.peek() {
	case '[':
		l.advance()
		return newFlowSequence(ctx), nil
	case '{':
		l.advance()
		return newFlowMapping(ctx), nil
	case '"':
		l.advance()
		return &doubleQuotedScalar{}, nil
	case '\'':
		l.advance()
		return &singleQuotedScalar{}, nil
	case '*':
		l.advance()
		if !l.matchWhile(isAnchorChar) {
			return nil, errorf(l, "Alias name missing")
		}
		name := l.matched()
		v, ok := ctx.doc.anchors[name]
		if !ok {
			return nil, errorf(l, "Can't locate alias %q", name)
		}
		return &aliasChild{n: v}, nil
	}
	return newPlainScalar(ctx, true), nil
}

// flowSequence parses [...] across one or more lines. A ':' after an entry
// upgrades that entry to a mapping key, and the closing ']' then wraps the
// key and its value in a single-property mapping; this is a pragmatic
// interpretation kept for compatibility.
type flowSequence struct {
	ctx        *context
	seq        *node.Seq
	state      int
	cur        child
	curCtx     *context
	pendKey    string
	hasPendKey bool
}

func newFlowSequence(ctx *context) *flowSequence {
	return &flowSequence{ctx: ctx, seq: node.NewSeq(), state: flowItem}
}

func (f *flowSequence) add(l *Line) error          { return f.run(l) }
func (f *flowSequence) continuation(l *Line) error { return f.run(l) }
func (f *flowSequence) terminated() bool           { return f.state == flowClosed }
func (f *flowSequence) complete() bool             { return f.state == flowClosed }
func (f *flowSequence) value() node.Node           { return f.seq }

func (f *flowSequence) run(l *Line) error {
	for {
		switch f.state {
		case flowClosed:
			return nil

		case flowChild:
			if err := f.cur.continuation(l); err != nil {
				return err
			}
			f.state = flowAfter

		case flowItem:
			l.skipSpaces()
			if l.atEndOfData() {
				return nil
			}
			if f.curCtx == nil {
				f.curCtx = f.ctx.childIndex(f.seq.Len())
			}
			if err := processNodeProperties(l, f.curCtx); err != nil {
				return err
			}
			l.skipSpaces()
			if l.atEndOfData() {
				return nil
			}
			switch l.peek() {
			case ']':
				l.advance()
				// an empty entry before the closing bracket is dropped,
				// unless it is the value of an upgraded key
				if f.hasPendKey {
					f.flush(nil)
				}
				f.curCtx = nil
				f.state = flowClosed
			case ',':
				l.advance()
				f.flush(nil)
			default:
				c, err := newFlowChild(l, f.curCtx)
				if err != nil {
					return err
				}
				f.cur = c
				if err := c.add(l); err != nil {
					return err
				}
				f.state = flowAfter
			}

		case flowAfter, flowComma:
			if f.state == flowAfter && !f.cur.terminated() {
				// a flow-plain entry stopped without a delimiter: a comment
				// or line end suspends it, a ':' upgrades it to a key
				if l.atEndOfData() {
					f.state = flowChild
					return nil
				}
				if l.matchColon() {
					if err := f.upgradeKey(l); err != nil {
						return err
					}
					f.state = flowItem
					continue
				}
				return errorf(l, "Unexpected character in flow sequence")
			}
			l.skipSpaces()
			if l.atEndOfData() {
				f.state = flowComma
				return nil
			}
			switch {
			case l.match(','):
				f.flush(f.cur.value())
				f.state = flowItem
			case l.match(']'):
				f.flush(f.cur.value())
				f.state = flowClosed
			case l.matchColon():
				if err := f.upgradeKey(l); err != nil {
					return err
				}
				f.state = flowItem
			default:
				return errorf(l, "Unexpected character in flow sequence")
			}
		}
	}
}

// flush completes the current entry with the given value, wrapping it in a
// single-property mapping when a key upgrade is pending.
func (f *flowSequence) flush(v node.Node) {
	f.curCtx.saveNodeProperties(v)
	if f.hasPendKey {
		m := node.NewMap()
		m.Add(f.pendKey, v)
		f.seq.Append(m)
		f.hasPendKey = false
	} else {
		f.seq.Append(v)
	}
	f.cur = nil
	f.curCtx = nil
}

// upgradeKey turns the just-read entry into a mapping key.
func (f *flowSequence) upgradeKey(l *Line) error {
	if f.hasPendKey {
		return errorf(l, "Unexpected ':' in flow sequence")
	}
	f.pendKey = stringifyKey(f.cur.value())
	f.hasPendKey = true
	f.cur = nil
	return nil
}

// flowMapping parses {...} across one or more lines.
type flowMapping struct {
	ctx       *context
	m         *node.Map
	state     int
	roleKey   bool
	cur       child
	curQuoted bool
	key       string
	valCtx    *context
	propCtx   *context // properties seen before the key, applied to the value
}

func newFlowMapping(ctx *context) *flowMapping {
	return &flowMapping{ctx: ctx, m: node.NewMap(), state: flowItem, roleKey: true}
}

func (f *flowMapping) add(l *Line) error          { return f.run(l) }
func (f *flowMapping) continuation(l *Line) error { return f.run(l) }
func (f *flowMapping) terminated() bool           { return f.state == flowClosed }
func (f *flowMapping) complete() bool             { return f.state == flowClosed }
func (f *flowMapping) value() node.Node           { return f.m }

func (f *flowMapping) run(l *Line) error {
	for {
		switch f.state {
		case flowClosed:
			return nil

		case flowChild:
			if err := f.cur.continuation(l); err != nil {
				return err
			}
			f.state = flowAfter

		case flowItem:
			l.skipSpaces()
			if l.atEndOfData() {
				return nil
			}
			if f.roleKey {
				if err := f.keyItem(l); err != nil {
					return err
				}
			} else {
				if err := f.valueItem(l); err != nil {
					return err
				}
			}

		case flowAfter, flowComma:
			if f.state == flowAfter && !f.cur.terminated() {
				if l.atEndOfData() {
					f.state = flowChild
					return nil
				}
				if !f.roleKey {
					return errorf(l, "Unexpected character in flow mapping")
				}
				// a plain key stopped at its ':'
			}
			if f.roleKey {
				if err := f.afterKey(l); err != nil {
					return err
				}
			} else {
				if err := f.afterValue(l); err != nil {
					return err
				}
			}
			if f.state == flowComma {
				return nil // the separator is on a following line
			}
		}
	}
}

// keyItem reads the start of a mapping entry: an optional run of node
// properties (which will attach to the entry's value) followed by the key
// scalar or the closing brace.
func (f *flowMapping) keyItem(l *Line) error {
	if f.propCtx == nil {
		f.propCtx = &context{doc: f.ctx.doc}
	}
	if err := processNodeProperties(l, f.propCtx); err != nil {
		return err
	}
	l.skipSpaces()
	if l.atEndOfData() {
		return nil
	}
	switch l.peek() {
	case '}':
		l.advance()
		f.state = flowClosed
		return nil
	case ',':
		return errorf(l, "Flow mapping key missing")
	case '"':
		l.advance()
		f.cur = &doubleQuotedScalar{}
		f.curQuoted = true
	case '\'':
		l.advance()
		f.cur = &singleQuotedScalar{}
	default:
		f.cur = newPlainScalar(f.ctx, true)
	}
	if err := f.cur.add(l); err != nil {
		return err
	}
	f.state = flowAfter
	return nil
}

// afterKey expects the ':' separating a key from its value. For
// double-quoted keys a ':' without following whitespace also separates, a
// concession the block path does not make. A ',' or '}' instead completes
// the entry with a null value.
func (f *flowMapping) afterKey(l *Line) error {
	l.skipSpaces()
	if l.atEndOfData() {
		f.state = flowComma
		return nil
	}
	if l.matchColon() || (f.curQuoted && l.match(':')) {
		return f.beginValue(l)
	}
	switch {
	case l.match(','):
		if err := f.nullEntry(l); err != nil {
			return err
		}
		f.state = flowItem
	case l.match('}'):
		if err := f.nullEntry(l); err != nil {
			return err
		}
		f.state = flowClosed
	default:
		return errorf(l, "Expected ':' in flow mapping")
	}
	return nil
}

func (f *flowMapping) beginValue(l *Line) error {
	key, err := f.keyText(l)
	if err != nil {
		return err
	}
	f.key = key
	f.valCtx = f.ctx.childName(key)
	f.valCtx.anchor = f.propCtx.anchor
	f.valCtx.tag = f.propCtx.tag
	f.propCtx = nil
	f.cur = nil
	f.curQuoted = false
	f.roleKey = false
	f.state = flowItem
	return nil
}

// nullEntry completes an entry whose value was omitted.
func (f *flowMapping) nullEntry(l *Line) error {
	key, err := f.keyText(l)
	if err != nil {
		return err
	}
	f.key = key
	f.valCtx = f.ctx.childName(key)
	f.valCtx.anchor = f.propCtx.anchor
	f.valCtx.tag = f.propCtx.tag
	f.propCtx = nil
	f.cur = nil
	f.curQuoted = false
	f.flush(nil)
	return nil
}

func (f *flowMapping) keyText(l *Line) (string, error) {
	t, ok := f.cur.(textual)
	if !ok {
		return "", errorf(l, "Illegal key in flow mapping")
	}
	key := t.text()
	if f.m.Contains(key) {
		return "", errorf(l, "Duplicate key %q", key)
	}
	return key, nil
}

// valueItem reads the start of an entry's value: node properties, then the
// value child, or a separator completing the entry with a null value.
func (f *flowMapping) valueItem(l *Line) error {
	if err := processNodeProperties(l, f.valCtx); err != nil {
		return err
	}
	l.skipSpaces()
	if l.atEndOfData() {
		return nil
	}
	switch l.peek() {
	case '}':
		l.advance()
		f.flush(nil)
		f.state = flowClosed
		return nil
	case ',':
		l.advance()
		f.flush(nil)
		f.roleKey = true
		f.state = flowItem
		return nil
	}
	c, err := newFlowChild(l, f.valCtx)
	if err != nil {
		return err
	}
	f.cur = c
	if err := c.add(l); err != nil {
		return err
	}
	f.state = flowAfter
	return nil
}

func (f *flowMapping) afterValue(l *Line) error {
	l.skipSpaces()
	if l.atEndOfData() {
		f.state = flowComma
		return nil
	}
	switch {
	case l.match(','):
		f.flush(f.cur.value())
		f.roleKey = true
		f.state = flowItem
	case l.match('}'):
		f.flush(f.cur.value())
		f.state = flowClosed
	default:
		return errorf(l, "Unexpected character in flow mapping")
	}
	return nil
}

// flush completes the current entry with the given value.
func (f *flowMapping) flush(v node.Node) {
	f.valCtx.saveNodeProperties(v)
	f.m.Add(f.key, v)
	f.cur = nil
	f.valCtx = nil
}

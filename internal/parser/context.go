package parser

import (
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"

	"github.com/pwall567/kjson-yaml/pkg/node"
)

// docContext is the state shared by every context of one document: tag
// handle declarations, materialized anchors, the pointer-to-tag map, and the
// declared YAML version.
type docContext struct {
	tagHandles      map[string]string
	anchors         map[string]node.Node
	tagMap          map[string]string
	majorVersion    int
	minorVersion    int
	versionDeclared bool
}

func newDocContext() *docContext {
	return &docContext{
		tagHandles: map[string]string{
			"!":  "!",
			"!!": tagPrefix,
		},
		anchors:      make(map[string]node.Node),
		tagMap:       make(map[string]string),
		majorVersion: 1,
		minorVersion: 2,
	}
}

// context is the per-node-position view of a document: the JSON pointer of
// the node being built, plus the anchor and tag waiting to be attached to
// it. Descending into a mapping entry or sequence element produces a child
// context with an extended pointer and cleared pending properties, so a
// pending anchor can never leak to a sibling.
type context struct {
	doc     *docContext
	pointer string
	anchor  string
	tag     string
}

func newContext() *context {
	return &context{doc: newDocContext()}
}

// childName descends into the mapping entry for name.
func (c *context) childName(name string) *context {
	return &context{doc: c.doc, pointer: c.pointer + "/" + jsonpointer.Escape(name)}
}

// childIndex descends into the sequence element at index.
func (c *context) childIndex(index int) *context {
	return &context{doc: c.doc, pointer: c.pointer + "/" + strconv.Itoa(index)}
}

// saveNodeProperties records the pending anchor and tag against the node
// just materialized at this position. Anchors are recorded only here, after
// the node is fully built, which is what makes self-referential aliases
// fail.
func (c *context) saveNodeProperties(v node.Node) {
	if c.anchor != "" {
		c.doc.anchors[c.anchor] = v
		c.anchor = ""
	}
	if c.tag != "" {
		c.doc.tagMap[c.pointer] = c.tag
		c.tag = ""
	}
}

// isAnchorChar admits the characters of an anchor or alias name: anything
// except whitespace and flow indicators.
func isAnchorChar(b byte) bool {
	switch b {
	case ' ', '\t', ',', '[', ']', '{', '}':
		return false
	}
	return true
}

func isTagHandleChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || isDigit(b) || b == '-'
}

// isTagSuffixChar admits URI characters of a tag shorthand suffix.
func isTagSuffixChar(b byte) bool {
	if isTagHandleChar(b) {
		return true
	}
	switch b {
	case '#', ';', '/', '?', ':', '@', '&', '=', '+', '$', ',',
		'_', '.', '~', '*', '\'', '(', ')', '[', ']', '!':
		return true
	}
	return false
}

// processNodeProperties consumes any run of anchor (&name) and tag tokens at
// the cursor, in any order, storing them as the context's pending
// properties.
func processNodeProperties(l *Line, c *context) error {
	for {
		l.skipSpaces()
		if l.atEnd() {
			return nil
		}
		switch l.peek() {
		case '&':
			l.advance()
			if !l.matchWhile(isAnchorChar) {
				return errorf(l, "Anchor name missing")
			}
			if c.anchor != "" {
				return errorf(l, "Duplicate anchor")
			}
			c.anchor = l.matched()
		case '!':
			tag, err := readTag(l, c)
			if err != nil {
				return err
			}
			if c.tag != "" {
				return errorf(l, "Duplicate tag")
			}
			c.tag = tag
		default:
			return nil
		}
	}
}

// readTag reads a tag token at the cursor (positioned on the '!') and
// resolves it to a URI: verbatim !<uri> tags are stored literally, shorthand
// tags are resolved through the declared handles with %HH decoding applied
// to the suffix.
func readTag(l *Line, c *context) (string, error) {
	l.advance() // '!'
	if l.match('<') {
		start := l.index
		for !l.atEnd() && l.peek() != '>' {
			l.advance()
		}
		if l.atEnd() {
			return "", errorf(l, "Unterminated verbatim tag")
		}
		uri := l.text[start:l.index]
		l.advance() // '>'
		return uri, nil
	}
	handle := "!"
	if l.match('!') {
		handle = "!!"
	} else {
		// A run of handle characters closed by '!' names a declared handle;
		// otherwise the run is the start of the suffix.
		j := l.index
		for j < len(l.text) && isTagHandleChar(l.text[j]) {
			j++
		}
		if j > l.index && j < len(l.text) && l.text[j] == '!' {
			handle = "!" + l.text[l.index:j] + "!"
			l.index = j + 1
		}
	}
	prefix, ok := c.doc.tagHandles[handle]
	if !ok {
		return "", errorf(l, "Tag handle %s not declared", handle)
	}
	var suffix strings.Builder
	for !l.atEnd() {
		ch := l.peek()
		if ch == '%' {
			l.advance()
			v, ok := l.matchHexDigits(2)
			if !ok {
				return "", errorf(l, "Illegal percent sequence in tag")
			}
			suffix.WriteByte(byte(v))
			continue
		}
		if !isTagSuffixChar(ch) {
			break
		}
		suffix.WriteByte(ch)
		l.advance()
	}
	return prefix + suffix.String(), nil
}

// stringifyKey coerces a non-scalar mapping key to its string form: strings
// are used as-is, anything else through its JSON rendering.
func stringifyKey(n node.Node) string {
	if n == nil {
		return "null"
	}
	if s, ok := n.(node.String); ok {
		return string(s)
	}
	return node.ToJSON(n)
}

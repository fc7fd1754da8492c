package parser

import (
	"strings"
	"testing"

	"github.com/pwall567/kjson-yaml/pkg/node"
)

// Test helpers

func parseString(t *testing.T, input string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func parseFails(t *testing.T, input string) *ParseError {
	t.Helper()
	_, err := Parse(strings.NewReader(input), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	return pe
}

func assertMap(t *testing.T, n node.Node) *node.Map {
	t.Helper()
	m, ok := n.(*node.Map)
	if !ok {
		t.Fatalf("expected *node.Map, got %T", n)
	}
	return m
}

func assertSeq(t *testing.T, n node.Node) *node.Seq {
	t.Helper()
	s, ok := n.(*node.Seq)
	if !ok {
		t.Fatalf("expected *node.Seq, got %T", n)
	}
	return s
}

func assertString(t *testing.T, n node.Node, expected string) {
	t.Helper()
	s, ok := n.(node.String)
	if !ok {
		t.Fatalf("expected node.String, got %T", n)
	}
	if string(s) != expected {
		t.Errorf("expected %q, got %q", expected, string(s))
	}
}

func assertInt(t *testing.T, n node.Node, expected int32) {
	t.Helper()
	i, ok := n.(node.Int)
	if !ok {
		t.Fatalf("expected node.Int, got %T", n)
	}
	if int32(i) != expected {
		t.Errorf("expected %d, got %d", expected, int32(i))
	}
}

func assertBool(t *testing.T, n node.Node, expected bool) {
	t.Helper()
	b, ok := n.(node.Bool)
	if !ok {
		t.Fatalf("expected node.Bool, got %T", n)
	}
	if bool(b) != expected {
		t.Errorf("expected %v, got %v", expected, bool(b))
	}
}

func assertNull(t *testing.T, n node.Node) {
	t.Helper()
	if n != nil {
		t.Fatalf("expected nil node, got %T", n)
	}
}

func assertDecimal(t *testing.T, n node.Node, expected string) {
	t.Helper()
	d, ok := n.(node.Decimal)
	if !ok {
		t.Fatalf("expected node.Decimal, got %T", n)
	}
	if d.String() != expected {
		t.Errorf("expected %s, got %s", expected, d.String())
	}
}

func mapEntry(t *testing.T, m *node.Map, key string) node.Node {
	t.Helper()
	n, ok := m.Get(key)
	if !ok {
		t.Fatalf("key %q missing (keys: %v)", key, m.Keys())
	}
	return n
}

func seqItem(t *testing.T, s *node.Seq, i int) node.Node {
	t.Helper()
	n, ok := s.Get(i)
	if !ok {
		t.Fatalf("index %d out of range (len %d)", i, s.Len())
	}
	return n
}

// Empty documents

func TestParseEmptyDocument(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   \n  \n"},
		{"comments only", "# comment\n# another comment\n"},
		{"marker only", "---\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseString(t, tt.input)
			assertNull(t, doc.Root)
			if doc.MajorVersion != 1 || doc.MinorVersion != 2 {
				t.Errorf("expected version 1.2, got %d.%d", doc.MajorVersion, doc.MinorVersion)
			}
		})
	}
}

// Root-level scalars

func TestParseScalars(t *testing.T) {
	t.Run("strings", func(t *testing.T) {
		assertString(t, parseString(t, "hello").Root, "hello")
		assertString(t, parseString(t, "hello world").Root, "hello world")
		assertString(t, parseString(t, `"double quoted"`).Root, "double quoted")
		assertString(t, parseString(t, `'single quoted'`).Root, "single quoted")
		assertString(t, parseString(t, `'it''s working'`).Root, "it's working")
		assertString(t, parseString(t, `"say \"hi\""`).Root, `say "hi"`)
		assertString(t, parseString(t, "a#b").Root, "a#b")
		assertString(t, parseString(t, "trimmed   # comment").Root, "trimmed")
	})

	t.Run("numbers", func(t *testing.T) {
		assertInt(t, parseString(t, "42").Root, 42)
		assertInt(t, parseString(t, "-17").Root, -17)
		assertInt(t, parseString(t, "0").Root, 0)
		assertInt(t, parseString(t, "0x1F").Root, 31)
		assertInt(t, parseString(t, "0o17").Root, 15)
		assertDecimal(t, parseString(t, "3.14").Root, "3.14")
		assertDecimal(t, parseString(t, "-2.5").Root, "-2.5")
		if _, ok := parseString(t, "3000000000").Root.(node.Long); !ok {
			t.Error("expected node.Long for 3000000000")
		}
	})

	t.Run("booleans and null", func(t *testing.T) {
		assertBool(t, parseString(t, "true").Root, true)
		assertBool(t, parseString(t, "false").Root, false)
		assertNull(t, parseString(t, "null").Root)
		assertNull(t, parseString(t, "~").Root)
	})
}

// Block sequences

func TestBlockSequence(t *testing.T) {
	doc := parseString(t, "- Mark McGwire\n- Sammy Sosa\n- Ken Griffey\n")
	s := assertSeq(t, doc.Root)
	if s.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", s.Len())
	}
	assertString(t, seqItem(t, s, 0), "Mark McGwire")
	assertString(t, seqItem(t, s, 1), "Sammy Sosa")
	assertString(t, seqItem(t, s, 2), "Ken Griffey")
}

func TestNestedSequence(t *testing.T) {
	doc := parseString(t, "- - a\n  - b\n- c\n")
	s := assertSeq(t, doc.Root)
	if s.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", s.Len())
	}
	inner := assertSeq(t, seqItem(t, s, 0))
	assertString(t, seqItem(t, inner, 0), "a")
	assertString(t, seqItem(t, inner, 1), "b")
	assertString(t, seqItem(t, s, 1), "c")
}

func TestSequenceItemOnFollowingLine(t *testing.T) {
	doc := parseString(t, "-\n  abc\n- def\n")
	s := assertSeq(t, doc.Root)
	assertString(t, seqItem(t, s, 0), "abc")
	assertString(t, seqItem(t, s, 1), "def")
}

// Block mappings

func TestBlockMapping(t *testing.T) {
	doc := parseString(t, "hr: 65\navg: 0.278\nrbi: 147\n")
	m := assertMap(t, doc.Root)
	if m.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", m.Len())
	}
	assertInt(t, mapEntry(t, m, "hr"), 65)
	assertDecimal(t, mapEntry(t, m, "avg"), "0.278")
	assertInt(t, mapEntry(t, m, "rbi"), 147)
}

func TestMappingInsertionOrder(t *testing.T) {
	doc := parseString(t, "hr: 65\navg: 0.278\nrbi: 147\n")
	m := assertMap(t, doc.Root)
	keys := m.Keys()
	expected := []string{"hr", "avg", "rbi"}
	for i, k := range expected {
		if keys[i] != k {
			t.Errorf("key %d: expected %q, got %q", i, k, keys[i])
		}
	}
}

func TestNestedMapping(t *testing.T) {
	doc := parseString(t, "a:\n  b: 1\n  c: 2\nd: 3\n")
	m := assertMap(t, doc.Root)
	inner := assertMap(t, mapEntry(t, m, "a"))
	assertInt(t, mapEntry(t, inner, "b"), 1)
	assertInt(t, mapEntry(t, inner, "c"), 2)
	assertInt(t, mapEntry(t, m, "d"), 3)
}

func TestMappingWithSequenceValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"indented", "key:\n  - a\n  - b\n"},
		{"same column", "key:\n- a\n- b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := assertMap(t, parseString(t, tt.input).Root)
			s := assertSeq(t, mapEntry(t, m, "key"))
			assertString(t, seqItem(t, s, 0), "a")
			assertString(t, seqItem(t, s, 1), "b")
		})
	}
}

func TestSequenceOfMappings(t *testing.T) {
	doc := parseString(t, "- name: x\n  value: 1\n- name: y\n  value: 2\n")
	s := assertSeq(t, doc.Root)
	if s.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", s.Len())
	}
	m0 := assertMap(t, seqItem(t, s, 0))
	assertString(t, mapEntry(t, m0, "name"), "x")
	assertInt(t, mapEntry(t, m0, "value"), 1)
	m1 := assertMap(t, seqItem(t, s, 1))
	assertString(t, mapEntry(t, m1, "name"), "y")
}

func TestMappingNullValues(t *testing.T) {
	doc := parseString(t, "a:\nb: 1\n")
	m := assertMap(t, doc.Root)
	assertNull(t, mapEntry(t, m, "a"))
	assertInt(t, mapEntry(t, m, "b"), 1)
}

func TestQuotedKeys(t *testing.T) {
	doc := parseString(t, "\"a key\": 1\n'b key': 2\n")
	m := assertMap(t, doc.Root)
	assertInt(t, mapEntry(t, m, "a key"), 1)
	assertInt(t, mapEntry(t, m, "b key"), 2)
}

func TestColonWithoutSpaceIsPlain(t *testing.T) {
	doc := parseString(t, "a:b\n")
	assertString(t, doc.Root, "a:b")
}

// Explicit (complex) keys

func TestExplicitKey(t *testing.T) {
	doc := parseString(t, "? key\n: val\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, "key"), "val")
}

func TestExplicitKeyNonString(t *testing.T) {
	// a non-string key is coerced through its JSON rendering
	doc := parseString(t, "? [a, b]\n: v\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, `["a","b"]`), "v")
}

// Multi-line scalars

func TestPlainScalarContinuation(t *testing.T) {
	doc := parseString(t, "a: one\n  two\n  three\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, "a"), "one two three")
}

func TestDoubleQuotedContinuation(t *testing.T) {
	doc := parseString(t, "a: \"one\n  two\"\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, "a"), "one two")
}

func TestDoubleQuotedEscapedNewline(t *testing.T) {
	doc := parseString(t, "a: \"one\\\n  two\"\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, "a"), "onetwo")
}

func TestSingleQuotedContinuation(t *testing.T) {
	doc := parseString(t, "a: 'one\n  two'\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, "a"), "one two")
}

func TestDoubleQuotedEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tab and newline", `"a\tb\nc"`, "a\tb\nc"},
		{"null and bell", `"\0\a"`, "\x00\x07"},
		{"carriage return", `"\r"`, "\r"},
		{"escape char", `"\e"`, "\x1b"},
		{"slash", `"a\/b"`, "a/b"},
		{"backslash", `"a\\b"`, `a\b`},
		{"hex", `"\x41"`, "A"},
		{"hex high", `"\xE9"`, "é"},
		{"unicode 4", `"\u0041"`, "A"},
		{"unicode 8", `"\U0001F600"`, "😀"},
		{"nel", `"\N"`, "\u0085"},
		{"nbsp", `"\_"`, "\u00a0"},
		{"line sep", `"\L"`, "\u2028"},
		{"para sep", `"\P"`, "\u2029"},
		{"escaped space", `"a\ b"`, "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertString(t, parseString(t, tt.input).Root, tt.expected)
		})
	}
}

// Block scalars

func TestLiteralBlockScalar(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strip", "s: |-\n  line1\n  line2\n", "line1\nline2"},
		{"clip", "s: |\n  line1\n  line2\n", "line1\nline2\n"},
		{"keep", "s: |+\n  line1\n\n", "line1\n\n"},
		{"inner indent", "s: |\n  a\n    b\n", "a\n  b\n"},
		{"blank interior", "s: |\n  a\n\n  b\n", "a\n\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := assertMap(t, parseString(t, tt.input).Root)
			assertString(t, mapEntry(t, m, "s"), tt.expected)
		})
	}
}

func TestFoldedBlockScalar(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"fold", "s: >\n  a\n  b\n", "a b\n"},
		{"paragraphs", "s: >\n  a\n\n  b\n", "a\n\nb\n"},
		{"strip", "s: >-\n  a\n  b\n", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := assertMap(t, parseString(t, tt.input).Root)
			assertString(t, mapEntry(t, m, "s"), tt.expected)
		})
	}
}

// Chomping invariants: strip never ends with a newline, clip ends with
// exactly one, keep preserves the original count.
func TestChompingInvariants(t *testing.T) {
	content := "s: |%s\n  text\n\n\n"
	for _, tt := range []struct {
		indicator string
		expected  string
	}{
		{"-", "text"},
		{"", "text\n"},
		{"+", "text\n\n\n"},
	} {
		m := assertMap(t, parseString(t, strings.Replace(content, "%s", tt.indicator, 1)).Root)
		assertString(t, mapEntry(t, m, "s"), tt.expected)
	}
}

func TestRootBlockScalar(t *testing.T) {
	doc := parseString(t, "|\n  abc\n  def\n")
	assertString(t, doc.Root, "abc\ndef\n")
}

// Anchors and aliases

func TestAnchorAlias(t *testing.T) {
	doc := parseString(t, "a: &X\n  street: 21 Wonder St\nb: *X\n")
	m := assertMap(t, doc.Root)
	a := mapEntry(t, m, "a")
	b := mapEntry(t, m, "b")
	inner := assertMap(t, a)
	assertString(t, mapEntry(t, inner, "street"), "21 Wonder St")
	// the alias resolves to the identical node
	if a != b {
		t.Error("alias should resolve to the same node as the anchor")
	}
}

func TestAnchorScalar(t *testing.T) {
	doc := parseString(t, "a: &n 5\nb: *n\n")
	m := assertMap(t, doc.Root)
	assertInt(t, mapEntry(t, m, "a"), 5)
	assertInt(t, mapEntry(t, m, "b"), 5)
}

func TestAnchorInSequence(t *testing.T) {
	doc := parseString(t, "- &first one\n- two\n- *first\n")
	s := assertSeq(t, doc.Root)
	assertString(t, seqItem(t, s, 0), "one")
	assertString(t, seqItem(t, s, 2), "one")
}

func TestSelfReferentialAnchorFails(t *testing.T) {
	// anchors are recorded only once the node is complete, so a
	// self-reference cannot resolve
	pe := parseFails(t, "a: &a\n  b: *a\n")
	if !strings.Contains(pe.Message, "Can't locate alias") {
		t.Errorf("unexpected message: %s", pe.Message)
	}
}

// Tags

func TestTagShorthand(t *testing.T) {
	doc := parseString(t, "- !!str 5\n- !!int 14.0\n- plain\n")
	s := assertSeq(t, doc.Root)
	assertString(t, seqItem(t, s, 0), "5")
	assertInt(t, seqItem(t, s, 1), 14)
	assertString(t, seqItem(t, s, 2), "plain")
	if tag := doc.TagMap["/0"]; tag != "tag:yaml.org,2002:str" {
		t.Errorf("unexpected tag for /0: %q", tag)
	}
	if tag := doc.TagMap["/1"]; tag != "tag:yaml.org,2002:int" {
		t.Errorf("unexpected tag for /1: %q", tag)
	}
	if _, ok := doc.TagMap["/2"]; ok {
		t.Error("untagged node should not appear in the tag map")
	}
}

func TestVerbatimTag(t *testing.T) {
	doc := parseString(t, "a: !<tag:example.com,2000:x> v\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, "a"), "v")
	if tag := doc.TagMap["/a"]; tag != "tag:example.com,2000:x" {
		t.Errorf("unexpected tag: %q", tag)
	}
}

func TestFloatTagForcesDecimal(t *testing.T) {
	doc := parseString(t, "x: !!float 3\n")
	m := assertMap(t, doc.Root)
	assertDecimal(t, mapEntry(t, m, "x"), "3")
}

func TestPercentEncodedTagSuffix(t *testing.T) {
	doc := parseString(t, "a: !e%21f v\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, "a"), "v")
	if tag := doc.TagMap["/a"]; tag != "!e!f" {
		t.Errorf("unexpected tag: %q", tag)
	}
}

// Float specials keep their text but are tagged as floats.
func TestFloatSpecials(t *testing.T) {
	doc := parseString(t, "x: .nan\ny: -.inf\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, "x"), ".nan")
	assertString(t, mapEntry(t, m, "y"), "-.inf")
	if tag := doc.TagMap["/x"]; tag != "tag:yaml.org,2002:float" {
		t.Errorf("unexpected tag for /x: %q", tag)
	}
	if tag := doc.TagMap["/y"]; tag != "tag:yaml.org,2002:float" {
		t.Errorf("unexpected tag for /y: %q", tag)
	}
}

// Errors

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"standalone colon", ": v\n", "Standalone mapping value"},
		{"unknown alias", "a: *missing\n", "Can't locate alias"},
		{"multiple documents", "a: 1\n---\nb: 2\n", "Multiple documents not allowed"},
		{"unterminated double quote", "a: \"unterminated\n", "Unterminated double-quoted scalar"},
		{"unterminated flow", "a: [1, 2\n", "Unterminated flow sequence"},
		{"undeclared tag handle", "a: !x!t v\n", "Tag handle !x! not declared"},
		{"content in sequence", "- a\nb: 1\n", "Unexpected content in sequence"},
		{"data after scalar", "a: 1\n  b: 2\n", "Illegal data following scalar"},
		{"data after document end", "a\n...\nb\n", "Illegal data following document end"},
		{"bad escape", `a: "\q"` + "\n", "Illegal escape sequence"},
		{"bad block scalar header", "a: |x\n  t\n", "Illegal character in block scalar header"},
		{"explicit key without value", "? k\n", "Block mapping value missing"},
		{"bad percent encoding", "a: !e%zz v\n", "Illegal percent sequence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := parseFails(t, tt.input)
			if !strings.Contains(pe.Message, tt.message) {
				t.Errorf("expected message containing %q, got %q", tt.message, pe.Message)
			}
		})
	}
}

func TestDuplicateKeyError(t *testing.T) {
	pe := parseFails(t, "a: 1\nb: 2\na: 3\n")
	if !strings.Contains(pe.Message, "Duplicate key") {
		t.Errorf("unexpected message: %s", pe.Message)
	}
	if pe.Line != 3 {
		t.Errorf("expected error at line 3, got %d", pe.Line)
	}
}

func TestErrorPosition(t *testing.T) {
	pe := parseFails(t, "a: *nope\n")
	if pe.Line != 1 {
		t.Errorf("expected line 1, got %d", pe.Line)
	}
	if pe.Column < 1 {
		t.Errorf("expected a 1-based column, got %d", pe.Column)
	}
	if !strings.Contains(pe.Error(), "at 1:") {
		t.Errorf("Error() should carry the position, got %q", pe.Error())
	}
}

// Comments

func TestComments(t *testing.T) {
	doc := parseString(t, "# header\na: 1 # trailing\n# between\nb: 2\n")
	m := assertMap(t, doc.Root)
	assertInt(t, mapEntry(t, m, "a"), 1)
	assertInt(t, mapEntry(t, m, "b"), 2)
}

func TestCommentInsideLiteralScalar(t *testing.T) {
	// an indented '#' line is scalar content, not a comment
	doc := parseString(t, "s: |\n  # not a comment\n")
	m := assertMap(t, doc.Root)
	assertString(t, mapEntry(t, m, "s"), "# not a comment\n")
}

// Marker-line content

func TestContentOnSeparatorLine(t *testing.T) {
	doc := parseString(t, "--- abc\n")
	assertString(t, doc.Root, "abc")
}

package yaml

import (
	"strconv"

	"github.com/go-openapi/jsonpointer"
	"github.com/pkg/errors"

	"github.com/pwall567/kjson-yaml/internal/parser"
	"github.com/pwall567/kjson-yaml/pkg/node"
)

// Default tag URIs of the YAML 1.2 core schema.
const (
	TagPrefix = "tag:yaml.org,2002:"
	NullTag   = TagPrefix + "null"
	BoolTag   = TagPrefix + "bool"
	IntTag    = TagPrefix + "int"
	FloatTag  = TagPrefix + "float"
	StrTag    = TagPrefix + "str"
	SeqTag    = TagPrefix + "seq"
	MapTag    = TagPrefix + "map"
)

// Document is one parsed YAML document: the root value, the YAML version in
// force (defaulting to 1.2), and the recorded tags. A Document is immutable
// once produced.
type Document struct {
	root   node.Node
	major  int
	minor  int
	tagMap map[string]string
}

func newDocument(d *parser.Document) *Document {
	return &Document{
		root:   d.Root,
		major:  d.MajorVersion,
		minor:  d.MinorVersion,
		tagMap: d.TagMap,
	}
}

// Root returns the document's root value; nil for an empty document.
func (d *Document) Root() node.Node {
	return d.root
}

// MajorVersion returns the YAML major version, normally 1.
func (d *Document) MajorVersion() int {
	return d.major
}

// MinorVersion returns the YAML minor version, 2 unless declared otherwise
// by a %YAML directive.
func (d *Document) MinorVersion() int {
	return d.minor
}

// TagMap returns a copy of the pointer-to-tag map recorded during parsing,
// mainly for debugging; GetTag is the query interface.
func (d *Document) TagMap() map[string]string {
	m := make(map[string]string, len(d.tagMap))
	for k, v := range d.tagMap {
		m[k] = v
	}
	return m
}

// String renders the document root as compact JSON.
func (d *Document) String() string {
	return node.ToJSON(d.root)
}

// GetTag returns the tag URI of the node addressed by the given JSON
// pointer: the explicitly recorded tag if one was parsed, otherwise the
// default tag for the node's value kind. A pointer that does not resolve to
// a node is an error.
func (d *Document) GetTag(pointer string) (string, error) {
	if tag, ok := d.tagMap[pointer]; ok {
		return tag, nil
	}
	p, err := jsonpointer.New(pointer)
	if err != nil {
		return "", errors.Wrapf(err, "invalid JSON pointer %q", pointer)
	}
	cur := d.root
	for _, token := range p.DecodedTokens() {
		switch v := cur.(type) {
		case *node.Map:
			n, ok := v.Get(token)
			if !ok {
				return "", errors.Errorf("Node does not exist: %q", pointer)
			}
			cur = n
		case *node.Seq:
			i, err := strconv.Atoi(token)
			if err != nil {
				return "", errors.Errorf("Node does not exist: %q", pointer)
			}
			n, ok := v.Get(i)
			if !ok {
				return "", errors.Errorf("Node does not exist: %q", pointer)
			}
			cur = n
		default:
			return "", errors.Errorf("Node does not exist: %q", pointer)
		}
	}
	return DefaultTag(cur), nil
}

// DefaultTag returns the YAML 1.2 core-schema tag corresponding to a value's
// kind.
func DefaultTag(n node.Node) string {
	switch node.KindOf(n) {
	case node.KindBool:
		return BoolTag
	case node.KindInt, node.KindLong:
		return IntTag
	case node.KindDecimal:
		return FloatTag
	case node.KindString:
		return StrTag
	case node.KindSeq:
		return SeqTag
	case node.KindMap:
		return MapTag
	}
	return NullTag
}

// Package yaml parses YAML 1.2 text into a JSON-superset value tree with
// per-node tag and anchor metadata, navigable by JSON pointers.
//
// The parser targets YAML used as a configuration or schema carrier (for
// example OpenAPI or JSON Schema documents written in YAML): the result is
// the value model of package node, plus a Document wrapper that answers tag
// queries for any node addressed by a JSON pointer.
//
// # Thread safety
//
// All functions in this package are safe for concurrent use by multiple
// goroutines. Each call creates its own parser with no shared mutable state.
//
// # Parsing APIs
//
//   - Parse(string) / ParseReader(io.Reader) / ParseFile(path) - parse a
//     single document
//   - ParseStream(string) / ParseStreamReader(io.Reader) - parse a stream of
//     ---/... delimited documents
//   - Validate(string) - check syntax, discarding the result
//
// Example:
//
//	doc, err := yaml.Parse(`
//	hr: 65
//	avg: 0.278
//	`)
//	if err != nil {
//	    // handle error
//	}
//	root := doc.Root().(*node.Map)
//	tag, _ := doc.GetTag("/avg") // "tag:yaml.org,2002:float"
package yaml

import (
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/pkg/errors"

	"github.com/pwall567/kjson-yaml/internal/parser"
)

// ParseError is the structured failure produced by the parser, carrying the
// 1-based line and column of the offending input. Use errors.As to recover
// it from any error returned by this package.
type ParseError = parser.ParseError

type options struct {
	logger log.Logger
}

// ParseOption configures a parse call.
type ParseOption func(*options)

// WithLogger directs parser warnings (unrecognized directives, unexpected
// YAML minor versions) to the given logger. The default discards them.
func WithLogger(logger log.Logger) ParseOption {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts []ParseOption) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Parse parses a single YAML document from a string.
//
// The result is a Document whose root may be any of the node kinds,
// including nil for an empty document. Multi-document input is an error;
// use ParseStream for that.
func Parse(input string, opts ...ParseOption) (*Document, error) {
	return ParseReader(strings.NewReader(input), opts...)
}

// ParseReader parses a single YAML document from an io.Reader. The reader
// must supply UTF-8 text; a leading byte order mark is skipped.
func ParseReader(r io.Reader, opts ...ParseOption) (*Document, error) {
	o := applyOptions(opts)
	d, err := parser.Parse(r, o.logger)
	if err != nil {
		return nil, err
	}
	return newDocument(d), nil
}

// ParseFile parses a single YAML document from the file at path.
func ParseFile(path string, opts ...ParseOption) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening YAML file %s", path)
	}
	defer f.Close()
	doc, err := ParseReader(f, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing YAML file %s", path)
	}
	return doc, nil
}

// ParseStream parses a multi-document YAML stream from a string, returning
// one Document per ---/... delimited section. At least one document is
// always returned: an empty input yields a single document with a nil root.
//
// Example:
//
//	docs, err := yaml.ParseStream("---\nabc\n---\ndef\n...\n")
//	// docs[0].Root() is node.String("abc"), docs[1].Root() is node.String("def")
func ParseStream(input string, opts ...ParseOption) ([]*Document, error) {
	return ParseStreamReader(strings.NewReader(input), opts...)
}

// ParseStreamReader parses a multi-document YAML stream from an io.Reader.
func ParseStreamReader(r io.Reader, opts ...ParseOption) ([]*Document, error) {
	o := applyOptions(opts)
	ds, err := parser.ParseStream(r, o.logger)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, len(ds))
	for i, d := range ds {
		docs[i] = newDocument(d)
	}
	return docs, nil
}

// Validate checks whether input is a syntactically valid YAML document,
// discarding the parsed result.
func Validate(input string) error {
	_, err := Parse(input)
	return err
}

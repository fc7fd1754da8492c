// Package parser implements the line-oriented YAML 1.2 parser. A framer
// reads decoded lines and dispatches directive and document-marker lines;
// content lines drive a stack of indentation-based block state machines,
// with flow containers and multi-line scalars consuming continuation lines
// within their enclosing block.
package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/go-kit/log"

	"github.com/pwall567/kjson-yaml/pkg/node"
)

// Document is the result of parsing one ---/... delimited section: the root
// value (nil for an empty document), the YAML version in force, and the map
// from JSON pointer to explicit or inferred tag URI.
type Document struct {
	Root         node.Node
	MajorVersion int
	MinorVersion int
	TagMap       map[string]string
}

// Framer states, one set per document.
const (
	frameInitial   = iota // before directives or content
	frameDirective        // at least one directive seen
	frameMain             // document content open
	frameEnded            // '...' seen in single-document mode
)

// framer owns the per-document context and outer block, and turns the line
// stream into one document (or, in stream mode, a list of them).
type framer struct {
	logger     log.Logger
	stream     bool
	state      int
	ctx        *context
	outer      *initialBlock
	lineNumber int
	docs       []*Document
}

// Parse consumes the reader and produces exactly one document, whose root
// may be nil. A second '---' in the input is an error; use ParseStream for
// multi-document input.
func Parse(r io.Reader, logger log.Logger) (*Document, error) {
	docs, err := run(r, logger, false)
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

func run(r io.Reader, logger log.Logger, stream bool) ([]*Document, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	f := &framer{logger: logger, stream: stream}
	f.reset()
	br := bufio.NewReader(r)
	first := true
	for {
		s, err := br.ReadString('\n')
		if len(s) > 0 {
			s = strings.TrimSuffix(s, "\n")
			s = strings.TrimSuffix(s, "\r")
			if first {
				// the character source owns decoding; only the UTF-8 byte
				// order mark is recognized here
				s = strings.TrimPrefix(s, "\ufeff")
				first = false
			}
			if perr := f.processLine(s); perr != nil {
				return nil, perr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return f.finish()
}

// reset prepares the framer for a fresh document.
func (f *framer) reset() {
	f.ctx = newContext()
	f.outer = newInitialBlock(f.ctx, 0)
	f.state = frameInitial
}

func (f *framer) processLine(text string) error {
	f.lineNumber++
	if f.state != frameEnded {
		if isDocSeparator(text) {
			return f.docSeparator(text)
		}
		if isDocEnd(text) {
			return f.docEnd(text)
		}
	}
	switch f.state {
	case frameInitial, frameDirective:
		if strings.HasPrefix(text, "%") {
			if err := f.processDirectiveLine(text); err != nil {
				return err
			}
			f.state = frameDirective
			return nil
		}
		l := newLine(f.lineNumber, text)
		if l.atEndOfData() {
			return nil
		}
		if f.state == frameDirective {
			return errorf(l, "Illegal data following directives")
		}
		f.state = frameMain
		return f.outer.processLine(l)
	case frameMain:
		l := newLine(f.lineNumber, text)
		if l.atEndOfData() {
			return f.outer.processBlankLine(l)
		}
		return f.outer.processLine(l)
	}
	// frameEnded: only blank lines are tolerated
	l := newLine(f.lineNumber, text)
	if l.atEndOfData() {
		return nil
	}
	return errorf(l, "Illegal data following document end")
}

// concludeDocument materializes the current document and appends it.
func (f *framer) concludeDocument() error {
	l := newLine(f.lineNumber, "")
	root, err := f.outer.conclude(l)
	if err != nil {
		return err
	}
	doc := f.ctx.doc
	f.docs = append(f.docs, &Document{
		Root:         root,
		MajorVersion: doc.majorVersion,
		MinorVersion: doc.minorVersion,
		TagMap:       doc.tagMap,
	})
	return nil
}

// finish concludes the open document at the end of input. An empty input
// still yields one document with a nil root.
func (f *framer) finish() ([]*Document, error) {
	switch f.state {
	case frameMain:
		if err := f.concludeDocument(); err != nil {
			return nil, err
		}
	case frameInitial, frameDirective:
		if !f.stream || len(f.docs) == 0 {
			if err := f.concludeDocument(); err != nil {
				return nil, err
			}
		}
	}
	return f.docs, nil
}

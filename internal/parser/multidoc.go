package parser

import (
	"io"
	"strings"

	"github.com/go-kit/log"
)

// ParseStream consumes the reader as a multi-document stream, producing one
// document per ---/... delimited section. At least one document is always
// returned: an empty input yields a single document with a nil root.
func ParseStream(r io.Reader, logger log.Logger) ([]*Document, error) {
	return run(r, logger, true)
}

// Document markers are only recognized at column zero, and must be followed
// by whitespace or the line end.
func isDocSeparator(text string) bool {
	return text == "---" || strings.HasPrefix(text, "--- ") || strings.HasPrefix(text, "---\t")
}

func isDocEnd(text string) bool {
	return text == "..." || strings.HasPrefix(text, "... ") || strings.HasPrefix(text, "...\t")
}

// docSeparator handles a '---' line: it opens an explicit document, closing
// the previous one first in stream mode. Content may follow the marker on
// the same line.
func (f *framer) docSeparator(text string) error {
	if f.state == frameMain {
		if !f.stream {
			l := newLine(f.lineNumber, text)
			return errorf(l, "Multiple documents not allowed")
		}
		if err := f.concludeDocument(); err != nil {
			return err
		}
		f.reset()
	}
	f.state = frameMain
	l := newLine(f.lineNumber, text)
	l.index = 3
	l.skipSpaces()
	if l.atEndOfData() {
		return nil
	}
	return f.outer.processLine(l)
}

// docEnd handles a '...' line: it closes the current document, which may be
// empty. In stream mode the framer returns to the initial state so the next
// document may carry its own directives; in single-document mode any further
// content is an error.
func (f *framer) docEnd(text string) error {
	if err := f.concludeDocument(); err != nil {
		return err
	}
	if f.stream {
		f.reset()
	} else {
		f.state = frameEnded
	}
	l := newLine(f.lineNumber, text)
	l.index = 3
	l.skipSpaces()
	if !l.atEndOfData() {
		return errorf(l, "Illegal data following document end")
	}
	return nil
}

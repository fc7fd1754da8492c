package parser

import (
	"github.com/go-kit/log/level"
)

// processDirectiveLine handles a '%'-prefixed line above the document body.
//
// Supported directives:
//
//	%YAML major.minor   - declares the YAML version (major must be 1)
//	%TAG handle prefix  - declares a tag shorthand handle
//
// Unknown directives are warned about and skipped.
func (f *framer) processDirectiveLine(text string) error {
	l := newLine(f.lineNumber, text)
	l.advance() // '%'
	if !l.matchWhile(func(b byte) bool { return !isSpace(b) }) {
		return errorf(l, "Illegal directive")
	}
	name := l.matched()
	switch name {
	case "YAML":
		return f.processYAMLDirective(l)
	case "TAG":
		return f.processTAGDirective(l)
	}
	level.Warn(f.logger).Log("msg", "Unrecognized directive ignored",
		"directive", "%"+name, "line", f.lineNumber)
	return nil
}

// processYAMLDirective reads "%YAML major.minor". A major version other than
// 1 is fatal; a 1.x minor other than 1 or 2 is warned about but accepted.
func (f *framer) processYAMLDirective(l *Line) error {
	doc := f.ctx.doc
	if doc.versionDeclared {
		return errorf(l, "Duplicate %%YAML directive")
	}
	l.skipSpaces()
	major, ok := l.matchDecimalDigits()
	if !ok {
		return errorf(l, "Illegal %%YAML directive")
	}
	if !l.match('.') {
		return errorf(l, "Illegal %%YAML directive")
	}
	minor, ok := l.matchDecimalDigits()
	if !ok {
		return errorf(l, "Illegal %%YAML directive")
	}
	if !l.atEndOfData() {
		return errorf(l, "Illegal %%YAML directive")
	}
	if major != 1 {
		return errorf(l, "%%YAML version must be 1.x")
	}
	if minor != 1 && minor != 2 {
		level.Warn(f.logger).Log("msg", "Unexpected YAML version",
			"major", major, "minor", minor, "line", f.lineNumber)
	}
	doc.majorVersion = major
	doc.minorVersion = minor
	doc.versionDeclared = true
	return nil
}

// processTAGDirective reads "%TAG handle prefix" and declares the handle.
func (f *framer) processTAGDirective(l *Line) error {
	l.skipSpaces()
	if !l.match('!') {
		return errorf(l, "Illegal %%TAG handle")
	}
	handle := "!"
	if l.match('!') {
		handle = "!!"
	} else if l.matchWhile(isTagHandleChar) {
		name := l.matched()
		if !l.match('!') {
			return errorf(l, "Illegal %%TAG handle")
		}
		handle = "!" + name + "!"
	}
	l.skipSpaces()
	if !l.matchWhile(func(b byte) bool { return !isSpace(b) }) {
		return errorf(l, "Illegal %%TAG directive")
	}
	prefix := l.matched()
	if !l.atEndOfData() {
		return errorf(l, "Illegal %%TAG directive")
	}
	f.ctx.doc.tagHandles[handle] = prefix
	return nil
}

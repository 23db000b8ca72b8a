// Package frontmatter extracts delimited metadata blocks from the head of
// content files through an ordered registry of parsers.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

var (
	// ErrMissingClosingDelimiter indicates the document started with a front matter
	// delimiter but did not contain a closing delimiter.
	ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

	// ErrInvalidFrontMatter indicates the front matter block could not be decoded.
	ErrInvalidFrontMatter = errors.New("invalid front matter")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FrontMatter is the structured header of a content file.
type FrontMatter struct {
	Marker string
	Parser string
	Fields *value.Scope
	// BodyOffset is the byte offset immediately after the closing marker line.
	BodyOffset int
}

// ParseError locates a front matter decode failure in its source file.
type ParseError struct {
	File   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Style captures formatting details needed for stable rewriting.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// block is the raw result of splitting a delimited header off a document.
type block struct {
	raw        []byte
	body       []byte
	bodyOffset int
	startLine  int // 1-based line of the first raw byte
}

// splitDelimited separates a marker delimited block from the body. The marker
// must open the document (after an optional UTF-8 BOM) on a line of its own.
// had is false when the document does not start with the marker.
func splitDelimited(content []byte, marker string) (b block, had bool, style Style, err error) {
	style = detectStyle(content)
	start := 0
	if bytes.HasPrefix(content, utf8BOM) {
		start = len(utf8BOM)
	}

	nl := style.Newline
	open := []byte(marker + nl)
	if !bytes.HasPrefix(content[start:], open) {
		return block{body: content}, false, style, nil
	}

	fmStart := start + len(open)
	closeLine := []byte(marker + nl)
	if bytes.HasPrefix(content[fmStart:], closeLine) || string(content[fmStart:]) == marker {
		off := min(fmStart+len(closeLine), len(content))
		return block{raw: []byte{}, body: content[off:], bodyOffset: off, startLine: 2}, true, style, nil
	}

	closeSeq := []byte(nl + marker)
	rest := content[fmStart:]
	for searchFrom := 0; ; {
		idx := bytes.Index(rest[searchFrom:], closeSeq)
		if idx < 0 {
			return block{}, false, style, ErrMissingClosingDelimiter
		}
		idx += searchFrom
		after := idx + len(closeSeq)
		// The closing marker must end its line (or the document).
		if after == len(rest) || bytes.HasPrefix(rest[after:], []byte(nl)) {
			off := fmStart + after
			if after < len(rest) {
				off += len(nl)
			}
			return block{
				raw:        rest[:idx+len(nl)],
				body:       content[off:],
				bodyOffset: off,
				startLine:  2,
			}, true, style, nil
		}
		searchFrom = after
	}
}

// hasMarker reports whether header opens with marker, ignoring a leading BOM.
// It never reads past len(header).
func hasMarker(header []byte, marker string) bool {
	header = bytes.TrimPrefix(header, utf8BOM)
	return bytes.HasPrefix(header, []byte(marker))
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			if i > 0 && content[i-1] == '\r' {
				newline = "\r\n"
			}
			break
		}
	}

	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}

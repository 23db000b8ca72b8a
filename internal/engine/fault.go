package engine

import (
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
)

// Fault is a runtime evaluation failure.
type Fault struct {
	Span   diag.Span
	Reason string
	// ParserMessages holds the diagnostics of a nested parse that failed
	// (an include that does not parse).
	ParserMessages []diag.Message
	Err            error
}

func (f *Fault) Error() string {
	if f.Span.IsZero() {
		return f.Reason
	}
	return f.Span.String() + ": " + f.Reason
}

func (f *Fault) Unwrap() error { return f.Err }

func messageFromError(err error, path string, lineOffset int) diag.Message {
	span, reason := spanFromError(err, path, lineOffset)
	return diag.Message{Severity: diag.SeverityError, Span: span, Text: reason}
}

// spanFromError extracts the location text/template prefixes its errors
// with ("template: name:line[:col]: reason").
func spanFromError(err error, path string, lineOffset int) (diag.Span, string) {
	msg := err.Error()
	span := diag.FileSpan(path)

	rest, ok := strings.CutPrefix(msg, "template: "+path+":")
	if !ok {
		return span, strings.TrimPrefix(msg, "template: ")
	}
	line, rest, ok := leadingInt(rest)
	if !ok {
		return span, strings.TrimPrefix(rest, " ")
	}
	span.Line = line + lineOffset
	if after, found := strings.CutPrefix(rest, ":"); found {
		if col, r, ok := leadingInt(after); ok {
			span.Column = col
			rest = r
		}
	}
	return span, strings.TrimPrefix(rest, ": ")
}

func leadingInt(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}

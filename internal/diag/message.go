package diag

import (
	"fmt"
	"log/slog"
	"strings"
)

// Severity of a diagnostic message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// IsError reports whether s fails the build.
func (s Severity) IsError() bool {
	return s >= SeverityError
}

func (s Severity) level() slog.Level {
	switch s {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Span locates a diagnostic in a source file. Line and Column are 1-based;
// zero means unknown.
type Span struct {
	File   string
	Line   int
	Column int
}

// FileSpan returns a span covering the whole of file.
func FileSpan(file string) Span {
	return Span{File: file}
}

// IsZero reports whether the span carries no location at all.
func (s Span) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

func (s Span) String() string {
	var b strings.Builder
	b.WriteString(s.File)
	if s.Line > 0 {
		fmt.Fprintf(&b, "(%d", s.Line)
		if s.Column > 0 {
			fmt.Fprintf(&b, ",%d", s.Column)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Message is a single diagnostic.
type Message struct {
	Severity Severity
	Span     Span
	Text     string
}

func (m Message) String() string {
	if m.Span.IsZero() {
		return fmt.Sprintf("%s: %s", m.Severity, m.Text)
	}
	return fmt.Sprintf("%s: %s: %s", m.Span, m.Severity, m.Text)
}

package logfields

import (
	"log/slog"
	"slices"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyRoot       = "root"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyInclude    = "include"
	KeySeverity   = "severity"
	KeyLine       = "line"
	KeyColumn     = "column"
	KeyCount      = "count"
	KeyParser     = "parser"
	KeyName       = "name"
	KeyError      = "error"
	KeyStalePages = "stale_pages"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Root(r string) slog.Attr         { return slog.String(KeyRoot, r) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Include(name string) slog.Attr   { return slog.String(KeyInclude, name) }
func Severity(s string) slog.Attr     { return slog.String(KeySeverity, s) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Column(n int) slog.Attr          { return slog.Int(KeyColumn, n) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Parser(name string) slog.Attr    { return slog.String(KeyParser, name) }
func Name(n string) slog.Attr         { return slog.String(KeyName, n) }

// Duration renders d as fractional milliseconds under KeyDurationMS.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

// StalePages lists the pages a change invalidates.
func StalePages(pages []string) slog.Attr {
	return slog.Any(KeyStalePages, slices.Clone(pages))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

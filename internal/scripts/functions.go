package scripts

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/engine"
	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// SiteFunctionNames lists the functions available to trusted site scripts.
var SiteFunctionNames = []string{"log_info", "log_warn", "log_error", "file_exists"}

func (m *Manager) newSiteFunctions() *value.Scope {
	s := value.NewScope()
	bind := func(name string, fn engine.Func) {
		_ = s.SetReadOnly(name, value.Object(fn), true)
	}
	bind("log_info", m.logFunc(diag.SeverityInfo))
	bind("log_warn", m.logFunc(diag.SeverityWarning))
	bind("log_error", m.logFunc(diag.SeverityError))
	bind("file_exists", m.fileExists)
	return s
}

func (m *Manager) logFunc(sev diag.Severity) engine.Func {
	return func(ctx *engine.Context, args ...any) (any, error) {
		m.diag.Record(diag.Message{
			Severity: sev,
			Span:     diag.FileSpan(ctx.CurrentSourceFile()),
			Text:     fmt.Sprint(args...),
		})
		return "", nil
	}
}

func (m *Manager) fileExists(_ *engine.Context, args ...any) (any, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("file_exists expects 1 argument, got %d", len(args))
	}
	name, ok := args[0].(string)
	if !ok {
		return false, fmt.Errorf("file_exists expects a string, got %T", args[0])
	}
	if m.siteRoot == "" || !validIncludeName(name) {
		return false, nil
	}
	_, err := os.Stat(filepath.Join(m.siteRoot, filepath.FromSlash(name)))
	return err == nil, nil
}

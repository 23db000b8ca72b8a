package scripts

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/engine"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// Flags modify how Import treats a script.
type Flags uint8

const (
	FlagNone Flags = 0
	// FlagAllowSiteFunctions pushes the site functions scope beneath the
	// import target. Includes are rejected.
	FlagAllowSiteFunctions Flags = 1 << iota
	// FlagExpect makes a missing script file an error.
	FlagExpect
	// FlagUntrusted rejects includes.
	FlagUntrusted
)

// StatementPath is the pseudo path of scripts imported with ImportStatement.
const StatementPath = "__script__"

// Reserved variable names bound by the evaluator itself.
const (
	SiteVar = "site"
	PageVar = "page"
)

// ErrReservedName is reported when front matter assigns site or page.
var ErrReservedName = errors.New("reserved variable name")

// Page is what Evaluate and RunFrontMatter need from a content item.
type Page interface {
	// Scope holds the page variables.
	Scope() *value.Scope
	SiteValue() value.Value
	PageValue() value.Value
	SetContent(content string)
	AddDependencies(paths []string)
	SourcePath() string
}

// ScriptInstance is a parsed script or page.
type ScriptInstance struct {
	Path        string
	HasErrors   bool
	Messages    []diag.Message
	FrontMatter *frontmatter.FrontMatter
	// FrontMatterParser names the registry parser that produced FrontMatter.
	FrontMatterParser string
	Unit              *engine.Unit
}

// ImportResult is what a successful import produced.
type ImportResult struct {
	// Output is the trimmed output of the script.
	Output string
}

// Manager evaluates scripts against a single shared context.
type Manager struct {
	engine        *engine.Engine
	registry      *frontmatter.Registry
	diag          *diag.Aggregator
	ctx           *engine.Context
	globals       *value.Scope
	siteFunctions *value.Scope
	metaDirs      []string
	siteRoot      string
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry sets the front matter registry (DefaultRegistry otherwise).
func WithRegistry(r *frontmatter.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithMetaDirs sets the meta directories searched for includes, highest priority first.
func WithMetaDirs(dirs ...string) Option {
	return func(m *Manager) { m.metaDirs = dirs }
}

// WithSiteRoot sets the directory file_exists resolves against.
func WithSiteRoot(root string) Option {
	return func(m *Manager) { m.siteRoot = root }
}

// NewManager returns a manager recording diagnostics on agg.
func NewManager(agg *diag.Aggregator, opts ...Option) *Manager {
	if agg == nil {
		panic("scripts: NewManager requires an aggregator")
	}
	m := &Manager{
		engine:   engine.New(engine.WithFuncs(SiteFunctionNames...)),
		registry: frontmatter.DefaultRegistry(),
		diag:     agg,
		ctx:      engine.NewContext(),
		globals:  value.NewScope(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.siteFunctions = m.newSiteFunctions()
	m.ctx.PushGlobal(m.globals)
	return m
}

func (m *Manager) Registry() *frontmatter.Registry  { return m.registry }
func (m *Manager) Context() *engine.Context         { return m.ctx }
func (m *Manager) SiteFunctions() *value.Scope      { return m.siteFunctions }
func (m *Manager) Globals() *value.Scope            { return m.globals }
func (m *Manager) Aggregator() *diag.Aggregator     { return m.diag }
func (m *Manager) newIncludes() *FromIncludes       { return NewFromIncludes(m.diag, m.metaDirs...) }
func (m *Manager) newUnauthorized() engine.Resolver { return NewUnauthorized(m.diag) }

// Parse parses text. In ModeFrontMatterAndContent a leading front matter block
// is split off through the registry first; a block that fails to decode is
// reported and the whole text is parsed as the body.
func (m *Manager) Parse(text, path string, mode engine.Mode) *ScriptInstance {
	inst := &ScriptInstance{Path: path}
	opts := engine.ParseOptions{Mode: mode}

	if (mode == engine.ModeFrontMatterAndContent || mode == engine.ModeFrontMatterOnly) && len(text) > 3 {
		fm, parser, err := m.registry.Parse(text, path)
		switch {
		case err != nil:
			m.recordFrontMatterError(path, err)
		case fm != nil:
			inst.FrontMatter = fm
			inst.FrontMatterParser = parser
			opts.StartOffset = fm.BodyOffset
			opts.FrontMatterMarker = fm.Marker
		}
	}
	if mode == engine.ModeFrontMatterOnly {
		return inst
	}
	if mode == engine.ModeFrontMatterAndContent {
		opts.Mode = engine.ModeDefault
	}

	parsed := m.engine.Parse(text, path, opts)
	if parsed.HasErrors {
		inst.HasErrors = true
		inst.Messages = parsed.Messages
		m.diag.RecordAll(parsed.Messages)
		return inst
	}
	inst.Unit = parsed.Unit
	return inst
}

func (m *Manager) recordFrontMatterError(path string, err error) {
	span := diag.FileSpan(path)
	var perr *frontmatter.ParseError
	if errors.As(err, &perr) {
		span.Line = perr.Line
		span.Column = perr.Column
		err = perr.Err
	}
	m.diag.Error(span, "%v", err)
}

// Import evaluates text as a script whose variables land in target.
func (m *Manager) Import(text, path string, target *value.Scope, flags Flags) (ImportResult, bool) {
	if target == nil {
		panic("scripts: Import requires a target scope")
	}
	parsed := m.engine.Parse(text, path, engine.ParseOptions{Mode: engine.ModeScriptOnly})
	if parsed.HasErrors {
		m.diag.RecordAll(parsed.Messages)
		return ImportResult{}, false
	}

	ctx := m.ctx
	withFuncs := flags&FlagAllowSiteFunctions != 0
	if withFuncs {
		ctx.PushGlobal(m.siteFunctions)
	}
	ctx.PushGlobal(target)
	ctx.PushSourceFile(path)

	prevOutput, prevResolver := ctx.EnableOutput, ctx.Resolver
	ctx.EnableOutput = false
	if flags&(FlagAllowSiteFunctions|FlagUntrusted) != 0 {
		ctx.Resolver = m.newUnauthorized()
	} else {
		ctx.Resolver = m.newIncludes()
	}

	defer func() {
		ctx.EnableOutput, ctx.Resolver = prevOutput, prevResolver
		ctx.PopSourceFile()
		ctx.PopGlobal()
		if withFuncs {
			ctx.PopGlobal()
		}
	}()

	out, err := m.engine.Evaluate(parsed.Unit, ctx)
	if err != nil {
		m.reportFault(path, err)
		return ImportResult{}, false
	}
	return ImportResult{Output: out}, true
}

// ImportStatement imports a single bare statement.
func (m *Manager) ImportStatement(statement string, target *value.Scope, flags Flags) (ImportResult, bool) {
	return m.Import("{{ "+statement+" }}", StatementPath, target, flags)
}

// ImportFile imports the script at path. A missing file is only an error
// with FlagExpect.
func (m *Manager) ImportFile(path string, target *value.Scope, flags Flags) (ImportResult, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if flags&FlagExpect != 0 {
				m.diag.Error(diag.FileSpan(path), "the script %s does not exist", path)
				return ImportResult{}, false
			}
			return ImportResult{}, true
		}
		m.diag.Error(diag.FileSpan(path), "unable to read script %s: %v", path, err)
		return ImportResult{}, false
	}
	return m.Import(string(data), path, target, flags)
}

// Evaluate renders a parsed page. site and page are bound read-only into the
// innermost scope for the duration of the call; include dependencies reach
// the page only when evaluation succeeds.
func (m *Manager) Evaluate(page Page, unit *engine.Unit, sourcePath string, extra *value.Scope) bool {
	if page == nil || unit == nil {
		panic("scripts: Evaluate requires a page and a unit")
	}
	ctx := m.ctx
	if extra != nil {
		ctx.PushGlobal(extra)
	}
	ctx.PushSourceFile(sourcePath)

	prevOutput, prevResolver := ctx.EnableOutput, ctx.Resolver
	includes := m.newIncludes()
	ctx.EnableOutput = true
	ctx.Resolver = includes

	top := ctx.CurrentGlobal()
	_ = top.SetReadOnly(SiteVar, page.SiteValue(), true)
	_ = top.SetReadOnly(PageVar, page.PageValue(), true)

	defer func() {
		top.Remove(SiteVar)
		top.Remove(PageVar)
		ctx.EnableOutput, ctx.Resolver = prevOutput, prevResolver
		ctx.ResetOutput()
		ctx.PopSourceFile()
		if extra != nil {
			ctx.PopGlobal()
		}
	}()

	out, err := m.engine.Evaluate(unit, ctx)
	if err != nil {
		m.reportFault(sourcePath, err)
		return false
	}
	page.AddDependencies(includes.Dependencies())
	page.SetContent(out)
	return true
}

// RunFrontMatter applies the front matter bindings to the page scope. String
// values containing a template are rendered first, so they may refer to site.
func (m *Manager) RunFrontMatter(fm *frontmatter.FrontMatter, page Page) bool {
	if fm == nil || page == nil {
		panic("scripts: RunFrontMatter requires front matter and a page")
	}
	ctx := m.ctx
	scope := page.Scope()
	path := page.SourcePath()

	ctx.PushGlobal(scope)
	ctx.PushSourceFile(path)
	prevOutput, prevResolver := ctx.EnableOutput, ctx.Resolver
	includes := m.newIncludes()
	ctx.EnableOutput = false
	ctx.Resolver = includes
	_ = scope.SetReadOnly(SiteVar, page.SiteValue(), true)

	defer func() {
		scope.Remove(SiteVar)
		ctx.EnableOutput, ctx.Resolver = prevOutput, prevResolver
		ctx.PopSourceFile()
		ctx.PopGlobal()
	}()

	names := fm.Fields.Keys()
	for _, name := range names {
		if name == SiteVar || name == PageVar {
			m.diag.Error(diag.FileSpan(path), "%v: %s cannot be assigned in front matter", ErrReservedName, name)
			return false
		}
	}

	// Plain values are bound first; templated strings may refer to them.
	var templated []string
	for _, name := range names {
		v, _ := fm.Fields.Get(name)
		if v.Kind() == value.KindString && strings.Contains(v.Str(), "{{") {
			templated = append(templated, name)
			continue
		}
		if err := scope.Set(name, v); err != nil {
			m.diag.Error(diag.FileSpan(path), "front matter variable %s: %v", name, err)
			return false
		}
	}
	for _, name := range templated {
		v, _ := fm.Fields.Get(name)
		rendered, ok := m.renderString(v.Str(), path)
		if !ok {
			return false
		}
		if err := scope.Set(name, value.String(rendered)); err != nil {
			m.diag.Error(diag.FileSpan(path), "front matter variable %s: %v", name, err)
			return false
		}
	}
	page.AddDependencies(includes.Dependencies())
	return true
}

func (m *Manager) renderString(text, path string) (string, bool) {
	parsed := m.engine.Parse(text, path, engine.ParseOptions{Mode: engine.ModeDefault})
	if parsed.HasErrors {
		m.diag.RecordAll(parsed.Messages)
		return "", false
	}
	out, err := m.engine.Evaluate(parsed.Unit, m.ctx)
	if err != nil {
		m.reportFault(path, err)
		return "", false
	}
	return out, true
}

func (m *Manager) reportFault(path string, err error) {
	var fault *engine.Fault
	if !errors.As(err, &fault) {
		m.diag.Error(diag.FileSpan(path), "%v", err)
		return
	}
	m.diag.Logger().Debug("Script evaluation failed",
		logfields.File(fault.Span.File),
		logfields.Line(fault.Span.Line),
		logfields.Error(err))
	m.diag.Error(fault.Span, "%s", fault.Reason)
	m.diag.RecordAll(fault.ParserMessages)
}

package scripts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

type fakePage struct {
	path    string
	scope   *value.Scope
	site    *value.Scope
	content string
	deps    sets.Set[string]
}

func newFakePage(path string) *fakePage {
	site := value.NewScope()
	_ = site.Set("title", value.String("My Site"))
	return &fakePage{path: path, scope: value.NewScope(), site: site, deps: sets.New[string]()}
}

func (p *fakePage) Scope() *value.Scope            { return p.scope }
func (p *fakePage) SiteValue() value.Value         { return value.Mapping(p.site) }
func (p *fakePage) PageValue() value.Value         { return value.Mapping(p.scope) }
func (p *fakePage) SetContent(content string)      { p.content = content }
func (p *fakePage) AddDependencies(paths []string) { p.deps.Merge(sets.New(paths...)) }
func (p *fakePage) SourcePath() string             { return p.path }

type fixture struct {
	root    string
	meta    string
	agg     *diag.Aggregator
	manager *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	meta := filepath.Join(root, "_meta")
	require.NoError(t, os.MkdirAll(filepath.Join(meta, IncludesDir), 0o755))
	agg := diag.NewAggregator(nil)
	return &fixture{
		root:    root,
		meta:    meta,
		agg:     agg,
		manager: NewManager(agg, WithMetaDirs(meta), WithSiteRoot(root)),
	}
}

func (f *fixture) writeInclude(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(f.meta, IncludesDir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func (f *fixture) depths() (int, int) {
	ctx := f.manager.Context()
	return ctx.GlobalDepth(), ctx.SourceFileDepth()
}

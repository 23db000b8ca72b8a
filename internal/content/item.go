package content

import (
	"fmt"
	"os"
	"path"
	"strings"

	derrors "git.home.luguber.info/inful/sitebuilder/internal/content/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/scripts"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// ItemKind tells static files from templated pages.
type ItemKind int

const (
	ItemStatic ItemKind = iota
	ItemTemplated
)

func (k ItemKind) String() string {
	if k == ItemTemplated {
		return "templated"
	}
	return "static"
}

// Page variable names set on every templated item.
const (
	VarPath    = "path"
	VarURL     = "url"
	VarExt     = "ext"
	VarSummary = "summary"
)

// Item is a discovered content file.
type Item struct {
	Root         string // Content root the file was found under
	RelativePath string // Normalized, slash separated path relative to Root
	Path         string // Absolute path to the file
	Kind         ItemKind
	FrontMatter  *frontmatter.FrontMatter
	Script       *scripts.ScriptInstance
	Dependencies sets.Set[string]
	Content      string // Evaluated output for pages (empty until evaluation succeeds), raw bytes for loaded static files
	Summary      string

	vars   *value.Scope
	site   *value.Scope
	loaded bool
}

// NewItem returns a static item. site is the scope exposed as "site" to the
// item's scripts.
func NewItem(root, rel, absPath string, site *value.Scope) *Item {
	return &Item{
		Root:         root,
		RelativePath: rel,
		Path:         absPath,
		Kind:         ItemStatic,
		Dependencies: sets.New[string](),
		vars:         value.NewScope(),
		site:         site,
	}
}

// MarkTemplated turns the item into a page and seeds its variables. Content
// stays empty until an evaluation succeeds.
func (it *Item) MarkTemplated() {
	it.Kind = ItemTemplated
	it.Content = ""
	it.loaded = true
	_ = it.vars.Set(VarPath, value.String(it.RelativePath))
	_ = it.vars.Set(VarURL, value.String(it.URL()))
	_ = it.vars.Set(VarExt, value.String(it.Ext()))
}

// IsTemplated reports whether the item is a page.
func (it *Item) IsTemplated() bool { return it.Kind == ItemTemplated }

// Ext returns the lower-cased file extension including the dot.
func (it *Item) Ext() string {
	return strings.ToLower(path.Ext(it.RelativePath))
}

// URL returns the site URL of the item.
func (it *Item) URL() string {
	return "/" + it.RelativePath
}

// Title returns the "title" page variable, if it is a string.
func (it *Item) Title() string {
	v, ok := it.vars.Get("title")
	if !ok || v.Kind() != value.KindString {
		return ""
	}
	return v.Str()
}

// LoadContent reads the file into Content. It is a no-op when already loaded.
func (it *Item) LoadContent() error {
	if it.loaded {
		return nil
	}
	data, err := os.ReadFile(it.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, it.Path, err)
	}
	it.Content = string(data)
	it.loaded = true
	return nil
}

// SetSummary stores the summary on the item and as a page variable.
func (it *Item) SetSummary(s string) {
	it.Summary = s
	_ = it.vars.Set(VarSummary, value.String(s))
}

// DependencyList returns the dependencies sorted.
func (it *Item) DependencyList() []string {
	return sets.Sorted(it.Dependencies)
}

// scripts.Page

func (it *Item) Scope() *value.Scope { return it.vars }

func (it *Item) SiteValue() value.Value {
	if it.site == nil {
		return value.Null
	}
	return value.Mapping(it.site)
}

func (it *Item) PageValue() value.Value { return value.Mapping(it.vars) }

func (it *Item) SetContent(content string) {
	it.Content = content
	it.loaded = true
}

func (it *Item) AddDependencies(paths []string) {
	for _, p := range paths {
		it.Dependencies.Add(p)
	}
}

func (it *Item) SourcePath() string { return it.Path }

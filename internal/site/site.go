package site

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/scripts"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// Site variable names.
const (
	VarTitle   = "title"
	VarBaseURL = "base_url"
	VarParams  = "params"
)

// Site is a loaded site: its pages, static files and diagnostics.
type Site struct {
	Root   string
	Config *config.Config

	Pages       []*content.Item
	StaticFiles []*content.Item

	diag        *diag.Aggregator
	scripts     *scripts.Manager
	classifier  *content.Classifier
	scope       *value.Scope
	contentDirs []string
	metaDirs    []string
	configNames sets.Set[string]
}

// Option configures a Site.
type Option func(*Site)

// WithAggregator sets the aggregator diagnostics are recorded on.
func WithAggregator(agg *diag.Aggregator) Option {
	return func(s *Site) {
		if agg != nil {
			s.diag = agg
		}
	}
}

// New prepares a site rooted at root. cfg may be nil for defaults.
func New(root string, cfg *config.Config, opts ...Option) (*Site, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve site root").
			WithContext("root", root).
			Build()
	}

	registry, err := frontmatter.NewRegistry(cfg.FrontMatter...)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "front matter parsers").Build()
	}

	s := &Site{
		Root:   abs,
		Config: cfg,
		diag:   diag.NewAggregator(slog.Default()),
		scope:  value.NewScope(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.configNames = configFileNames(cfg, abs)
	s.contentDirs = s.computeContentDirectories()
	for _, dir := range s.contentDirs {
		s.metaDirs = append(s.metaDirs, filepath.Join(dir, cfg.MetaDir))
	}
	s.classifier = content.NewClassifier(registry.Markers()...)
	s.scripts = scripts.NewManager(s.diag,
		scripts.WithRegistry(registry),
		scripts.WithMetaDirs(s.metaDirs...),
		scripts.WithSiteRoot(abs),
	)
	return s, nil
}

// configFileNames lists the file names the walker treats as site
// configuration: the configured name and, when it lives under root, the
// file the configuration was actually read from.
func configFileNames(cfg *config.Config, root string) sets.Set[string] {
	names := sets.New(cfg.ConfigFilename)
	if cfg.Source == "" {
		return names
	}
	rel, err := filepath.Rel(root, cfg.Source)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return names
	}
	names.Add(filepath.Base(cfg.Source))
	return names
}

func (s *Site) computeContentDirectories() []string {
	dirs := []string{s.Root}
	dirs = append(dirs, s.Config.ThemeRoots(s.Root)...)
	if builtin := s.Config.BuiltinRoot(s.Root); builtin != "" {
		if info, err := os.Stat(builtin); err == nil && info.IsDir() {
			dirs = append(dirs, builtin)
		}
	}
	return dirs
}

// ContentDirectories lists the content roots in priority order.
func (s *Site) ContentDirectories() []string {
	return append([]string(nil), s.contentDirs...)
}

// MetaDirectories lists the meta directory of each content root, in the same order.
func (s *Site) MetaDirectories() []string {
	return append([]string(nil), s.metaDirs...)
}

func (s *Site) Aggregator() *diag.Aggregator { return s.diag }
func (s *Site) Scripts() *scripts.Manager    { return s.scripts }
func (s *Site) Scope() *value.Scope          { return s.scope }

// HasErrors reports whether any error was recorded since the site was created.
func (s *Site) HasErrors() bool { return s.diag.HasErrors() }

// Page returns the page with the given relative path.
func (s *Site) Page(rel string) (*content.Item, bool) {
	rel = content.NormalizePath(rel)
	for _, p := range s.Pages {
		if p.RelativePath == rel {
			return p, true
		}
	}
	return nil, false
}

// StaticFile returns the static file with the given relative path.
func (s *Site) StaticFile(rel string) (*content.Item, bool) {
	rel = content.NormalizePath(rel)
	for _, f := range s.StaticFiles {
		if f.RelativePath == rel {
			return f, true
		}
	}
	return nil, false
}

// resetScope rebuilds the site variables from the configuration.
func (s *Site) resetScope() {
	for _, k := range s.scope.Keys() {
		s.scope.Remove(k)
	}
	_ = s.scope.Set(VarTitle, value.String(s.Config.Title))
	_ = s.scope.Set(VarBaseURL, value.String(s.Config.BaseURL))
	_ = s.scope.Set(VarParams, value.Of(s.Config.Params))
}

// runInitScript imports the configured init script into the site scope.
func (s *Site) runInitScript() {
	if s.Config.InitScript == "" {
		return
	}
	path := s.Config.InitScript
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}
	s.scripts.ImportFile(path, s.scope, scripts.FlagAllowSiteFunctions|scripts.FlagExpect)
}

package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Root    string           `short:"r" help:"Site root directory" default:"." type:"path"`
	Config  string           `short:"c" help:"Configuration file path (defaults to <root>/config.yml)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Load the site and write it to the output directory"`
	Inspect InspectCmd `cmd:"" help:"Load the site and describe its content items"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild the site whenever content changes"`
	Init    InitCmd    `cmd:"" help:"Write a default configuration file"`
}

// AfterApply runs after flag parsing; installs the flag-level logger until
// the site configuration is known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// ConfigPath returns the configuration file the CLI refers to.
func (c *CLI) ConfigPath() string {
	if c.Config != "" {
		return c.Config
	}
	return filepath.Join(c.Root, config.DefaultFilename)
}

// LoadConfig loads the configuration. A missing default file yields defaults,
// an explicitly named missing file is an error.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if c.Config != "" {
		return config.Load(c.Config)
	}
	return config.LoadSite(c.Root)
}

// NewLogger builds the logger described by cfg. --verbose forces debug.
func NewLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level := cfg.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// session bundles a configured site with its metrics registry.
type session struct {
	cfg      *config.Config
	site     *site.Site
	logger   *slog.Logger
	registry *prom.Registry
}

// openSite loads the configuration, installs the configured logger and
// prepares (but does not load) the site.
func openSite(g *Global, root *CLI) (*session, error) {
	cfg, err := root.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(os.Stderr, cfg.Logging, root.Verbose)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}

	registry := prom.NewRegistry()
	agg := diag.NewAggregator(logger).WithRecorder(metrics.NewPrometheusRecorder(registry))
	s, err := site.New(root.Root, cfg, site.WithAggregator(agg))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, site: s, logger: logger, registry: registry}, nil
}

// exportMetrics writes the textfile configured in metrics.textfile, if any.
func (s *session) exportMetrics() {
	if s.cfg.Metrics.Textfile == "" {
		return
	}
	path := s.cfg.Metrics.Textfile
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.site.Root, path)
	}
	if err := metrics.WriteTextfile(path, s.registry); err != nil {
		s.logger.Warn("Failed to export metrics", logfields.Path(path), logfields.Error(err))
	}
}

func out(g *Global) io.Writer {
	if g != nil && g.Out != nil {
		return g.Out
	}
	return os.Stdout
}

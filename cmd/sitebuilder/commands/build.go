package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output   string `short:"o" help:"Output directory (overrides output.directory)"`
	Clean    bool   `help:"Remove the output directory before writing"`
	DryRun   bool   `name:"dry-run" help:"Load and evaluate the site without writing output"`
	CacheDir string `name:"cache-dir" help:"Directory keeping page fingerprints between builds"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, err := openSite(g, root)
	if err != nil {
		return err
	}
	return RunBuild(ctx, g, sess, b)
}

// RunBuild loads the site and writes it out. A site with recorded errors is
// reported as a content error and nothing is written.
func RunBuild(ctx context.Context, g *Global, sess *session, opts *BuildCmd) error {
	defer sess.exportMetrics()

	s := sess.site
	if err := s.Load(ctx); err != nil {
		return err
	}
	if s.HasErrors() {
		return ferrors.ContentError(fmt.Sprintf("site has %d error(s)", s.Aggregator().ErrorCount())).
			WithContext("root", s.Root).
			Build()
	}

	if opts.CacheDir != "" {
		if err := updateFingerprints(sess, opts.CacheDir); err != nil {
			sess.logger.Warn("Fingerprint cache not updated", logfields.Path(opts.CacheDir), logfields.Error(err))
		}
	}

	if opts.DryRun {
		_, _ = fmt.Fprintf(out(g), "Loaded %d pages and %d static files\n", len(s.Pages), len(s.StaticFiles))
		return nil
	}

	dir := opts.Output
	if dir == "" {
		dir = sess.cfg.OutputRoot(s.Root)
	}
	w := output.New(dir,
		output.WithClean(opts.Clean || sess.cfg.Output.Clean),
		output.WithLogger(sess.logger))
	res, err := w.Write(ctx, s.Pages, s.StaticFiles)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out(g), "Built %d pages and %d static files into %s\n", res.Pages, res.Static, dir)
	return nil
}

// updateFingerprints reports pages made stale since the previous build and
// stores the fingerprints of this one.
func updateFingerprints(sess *session, dir string) error {
	prev, err := incremental.LoadTracker(dir)
	if err != nil {
		return err
	}
	prev.WithLogger(sess.logger)
	if prev.Len() > 0 {
		changed := prev.Changed()
		stale := prev.StalePages(changed)
		sess.logger.Info("Changes since previous build",
			logfields.Count(len(changed)),
			logfields.Stage("incremental"),
			logfields.StalePages(stale))
	}

	next := incremental.NewTracker().WithLogger(sess.logger)
	next.SetRunID(sess.site.Aggregator().RunID())
	if err := next.RecordAll(sess.site.Pages); err != nil {
		return err
	}
	return next.Save(dir)
}

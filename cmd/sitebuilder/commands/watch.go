package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd rebuilds the site whenever a file below a content root changes.
type WatchCmd struct {
	Output   string        `short:"o" help:"Output directory (overrides output.directory)"`
	Debounce time.Duration `default:"300ms" help:"Quiet period before a rebuild starts"`
}

func (wc *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, err := openSite(g, root)
	if err != nil {
		return err
	}

	dir := wc.Output
	if dir == "" {
		dir = sess.cfg.OutputRoot(sess.site.Root)
	}
	absOut, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	r := &rebuilder{sess: sess, writer: output.New(absOut, output.WithLogger(sess.logger))}
	r.rebuild(ctx, nil)

	w, err := watch.New(sess.site.ContentDirectories(),
		watch.WithDebounce(wc.Debounce),
		watch.WithLogger(sess.logger),
		watch.WithIgnore(func(p string) bool { return withinDir(absOut, p) }))
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	sess.logger.Info("Watching for changes", logfields.Count(len(sess.site.ContentDirectories())))
	return w.Run(ctx, func(changed []string) { r.rebuild(ctx, changed) })
}

// rebuilder reloads the whole site on each batch; it only runs on the
// watcher's goroutine.
type rebuilder struct {
	sess    *session
	writer  *output.Writer
	tracker *incremental.Tracker
}

func (r *rebuilder) rebuild(ctx context.Context, changed []string) {
	logger := r.sess.logger
	if r.tracker != nil && len(changed) > 0 {
		logger.Info("Change detected; rebuilding site",
			logfields.Count(len(changed)),
			logfields.StalePages(r.tracker.StalePages(changed)))
	}

	s := r.sess.site
	s.Aggregator().Reset()
	s.Aggregator().ClearErrors()
	if err := s.Load(ctx); err != nil {
		logger.Warn("Reload interrupted", logfields.Error(err))
		return
	}
	defer r.sess.exportMetrics()

	if s.HasErrors() {
		logger.Warn("Site has errors; output not updated", logfields.Count(s.Aggregator().ErrorCount()))
		return
	}
	if _, err := r.writer.Write(ctx, s.Pages, s.StaticFiles); err != nil {
		logger.Warn("Rebuild failed", logfields.Error(err))
		return
	}

	tracker := incremental.NewTracker().WithLogger(logger)
	tracker.SetRunID(s.Aggregator().RunID())
	if err := tracker.RecordAll(s.Pages); err != nil {
		logger.Debug("Fingerprinting incomplete", logfields.Error(err))
	}
	r.tracker = tracker
}

func withinDir(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

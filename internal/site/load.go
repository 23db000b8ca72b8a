package site

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	derrors "git.home.luguber.info/inful/sitebuilder/internal/content/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/engine"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// Load discovers every content root and prepares the templated pages.
// Content problems are recorded on the aggregator and never returned; the
// only error is ctx's when the walk is cancelled.
func (s *Site) Load(ctx context.Context) error {
	start := time.Now()
	s.Pages = nil
	s.StaticFiles = nil

	runID := uuid.NewString()
	s.diag.SetRunID(runID)
	logger := s.diag.Logger()
	logger.Info("Loading site", logfields.Root(s.Root), logfields.Count(len(s.contentDirs)))

	s.resetScope()
	s.runInitScript()

	loaded := sets.New[string]()
	for _, root := range s.contentDirs {
		if err := s.walkRoot(ctx, root, loaded); err != nil {
			return err
		}
	}

	slices.SortStableFunc(s.Pages, byRelativePath)
	slices.SortStableFunc(s.StaticFiles, byRelativePath)

	rec := s.diag.Recorder()
	rec.AddItems("page", len(s.Pages))
	rec.AddItems("static", len(s.StaticFiles))
	rec.ObserveLoadDuration(time.Since(start))

	logger.Info("Site loaded",
		logfields.Count(len(s.Pages)),
		logfields.Duration(time.Since(start)),
		logfields.Stage("load"))
	return nil
}

func byRelativePath(a, b *content.Item) int {
	return content.Compare(a.RelativePath, b.RelativePath)
}

// walkRoot walks root breadth first. loaded holds the relative paths claimed
// by earlier roots.
func (s *Site) walkRoot(ctx context.Context, root string, loaded sets.Set[string]) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		s.diag.Logger().Debug("Content root not found", logfields.Root(root))
		return nil
	}

	queue := []string{root}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		dir := queue[0]
		queue = queue[1:]
		queue = s.loadDirectory(root, dir, queue, loaded)
	}
	return nil
}

func (s *Site) loadDirectory(root, dir string, queue []string, loaded sets.Set[string]) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.diag.Error(diag.FileSpan(dir), "%v: %v", derrors.ErrDirReadFailed, err)
		return queue
	}

	for _, entry := range entries {
		name := entry.Name()
		if s.configNames.Has(name) {
			continue
		}
		full := filepath.Join(dir, name)

		if isDir(entry, full) {
			if !strings.HasPrefix(name, s.Config.ExcludePrefix) {
				queue = append(queue, full)
			}
			continue
		}

		rel, err := filepath.Rel(root, full)
		if err != nil {
			s.diag.Error(diag.FileSpan(full), "%v: %v", derrors.ErrInvalidRelativePath, err)
			continue
		}
		rel = content.NormalizePath(rel)
		if !loaded.AddIfAbsent(rel) {
			continue
		}

		clock := time.Now()
		page := s.loadItem(root, rel, full)
		if page != nil {
			s.diag.GetContentStat(page.RelativePath).Add(metrics.PhaseLoadParse, time.Since(clock))
			s.Pages = append(s.Pages, page)
		}
	}
	return queue
}

func isDir(entry fs.DirEntry, full string) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir()
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}

// loadItem classifies a file. Static files are appended to StaticFiles and
// nil is returned; a templated file is parsed and prepared. A page whose
// template does not parse is dropped.
func (s *Site) loadItem(root, rel, full string) *content.Item {
	kind, text, err := s.sniff(full)
	if err != nil {
		s.diag.Error(diag.FileSpan(full), "%v", err)
		return nil
	}

	item := content.NewItem(root, rel, full, s.scope)
	if kind != content.KindFrontMatterCandidate {
		s.StaticFiles = append(s.StaticFiles, item)
		return nil
	}

	inst := s.scripts.Parse(text, full, engine.ModeFrontMatterAndContent)
	if inst.HasErrors {
		return nil
	}
	item.MarkTemplated()
	item.Script = inst
	item.FrontMatter = inst.FrontMatter
	s.prepare(item)
	return item
}

// sniff classifies full and, for candidates, reads it whole. The file is
// closed before sniff returns.
func (s *Site) sniff(full string) (content.Kind, string, error) {
	f, err := os.Open(full)
	if err != nil {
		return content.KindPlainStatic, "", fmt.Errorf("%w: %w", derrors.ErrFileOpenFailed, err)
	}
	defer f.Close()

	kind, err := s.classifier.Sniff(f)
	if err != nil {
		return kind, "", fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, full, err)
	}
	if kind != content.KindFrontMatterCandidate {
		return kind, "", nil
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return kind, "", fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, full, err)
	}
	return kind, string(data), nil
}

// prepare runs front matter, evaluates the page and extracts its summary.
func (s *Site) prepare(page *content.Item) bool {
	stat := s.diag.GetContentStat(page.RelativePath)
	if page.FrontMatter != nil && !s.scripts.RunFrontMatter(page.FrontMatter, page) {
		return false
	}

	clock := time.Now()
	if !s.scripts.Evaluate(page, page.Script.Unit, page.Path, value.NewScope()) {
		return false
	}
	stat.Add(metrics.PhaseEvaluate, time.Since(clock))

	clock = time.Now()
	page.SetSummary(ExtractSummary(page.Content))
	stat.Add(metrics.PhaseSummary, time.Since(clock))
	return true
}

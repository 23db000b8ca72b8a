// Package output writes a loaded site to a directory: static files are copied,
// pages are written from their evaluated content and Markdown pages are
// rendered to HTML.
package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// Writer writes items below an output directory.
type Writer struct {
	dir      string
	clean    bool
	renderer *markdown.Renderer
	logger   *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithClean removes the output directory before writing.
func WithClean(clean bool) Option {
	return func(w *Writer) { w.clean = clean }
}

// WithRenderer overrides the Markdown renderer.
func WithRenderer(r *markdown.Renderer) Option {
	return func(w *Writer) { w.renderer = r }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// New returns a writer targeting dir.
func New(dir string, opts ...Option) *Writer {
	w := &Writer{
		dir:      dir,
		renderer: markdown.New(markdown.Options{HeadingIDs: true}),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Result summarizes a write.
type Result struct {
	Pages  int
	Static int
	Files  []string // Written paths relative to the output directory, slash separated
}

// Write emits pages and static files. It stops at the first failure.
func (w *Writer) Write(ctx context.Context, pages, static []*content.Item) (*Result, error) {
	if err := w.prepareDir(); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rel, err := w.writePage(page)
		if err != nil {
			return res, err
		}
		res.Pages++
		res.Files = append(res.Files, rel)
	}
	for _, item := range static {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := w.copyStatic(item); err != nil {
			return res, err
		}
		res.Static++
		res.Files = append(res.Files, item.RelativePath)
	}

	w.logger.Info("Output written",
		logfields.Path(w.dir),
		slog.Int("pages", res.Pages),
		slog.Int("static", res.Static))
	return res, nil
}

func (w *Writer) prepareDir() error {
	if strings.TrimSpace(w.dir) == "" {
		return ferrors.ValidationError("output directory is empty").Build()
	}
	abs, err := filepath.Abs(w.dir)
	if err != nil {
		return fsError("resolve output directory", w.dir, err)
	}
	if abs == filepath.Dir(abs) {
		return ferrors.ValidationError("refusing to write to filesystem root").
			WithContext("path", abs).
			Build()
	}
	if w.clean {
		if err := os.RemoveAll(abs); err != nil {
			return fsError("clean output directory", abs, err)
		}
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return fsError("create output directory", abs, err)
	}
	return nil
}

func (w *Writer) target(rel string) (string, error) {
	dst := filepath.Join(w.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", fsError("create directory", filepath.Dir(dst), err)
	}
	return dst, nil
}

func (w *Writer) writePage(page *content.Item) (string, error) {
	rel := page.RelativePath
	body := []byte(page.Content)
	if markdown.IsMarkdown(rel) {
		html, err := w.renderer.Render(body)
		if err != nil {
			return "", ferrors.WrapError(err, ferrors.CategoryContent, "render markdown").
				WithContext("path", rel).
				Build()
		}
		rel = markdown.OutputPath(rel)
		body = html
	}
	dst, err := w.target(rel)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, body, 0o600); err != nil {
		return "", fsError("write page", dst, err)
	}
	w.logger.Debug("Page written", logfields.Path(rel))
	return rel, nil
}

func (w *Writer) copyStatic(item *content.Item) error {
	dst, err := w.target(item.RelativePath)
	if err != nil {
		return err
	}
	if err := copyFile(item.Path, dst); err != nil {
		return fsError("copy static file", item.Path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func fsError(op, path string, err error) error {
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, fmt.Sprintf("%s failed", op)).
		WithContext("path", path).
		Build()
}

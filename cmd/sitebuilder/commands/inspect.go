package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// InspectCmd implements the 'inspect' command.
type InspectCmd struct {
	Paths   []string `arg:"" optional:"" help:"Relative paths of the items to describe (all when omitted)"`
	Timings bool     `help:"Show per item phase timings"`
}

func (i *InspectCmd) Run(g *Global, root *CLI) error {
	sess, err := openSite(g, root)
	if err != nil {
		return err
	}
	if err := sess.site.Load(context.Background()); err != nil {
		return err
	}
	return RunInspect(out(g), sess.site, i)
}

// RunInspect writes a description of the loaded site's items to w.
func RunInspect(w io.Writer, s *site.Site, opts *InspectCmd) error {
	items := selectItems(s, opts.Paths)
	if items == nil {
		return ferrors.NewError(ferrors.CategoryNotFound, "no content item matches").
			WithContext("paths", strings.Join(opts.Paths, ",")).
			Build()
	}

	md := markdown.New(markdown.Options{})
	for _, it := range items {
		if it.IsTemplated() {
			describePage(w, s, it, md, opts.Timings)
		} else {
			_, _ = fmt.Fprintf(w, "static %s\n", it.RelativePath)
		}
	}

	for _, msg := range s.Aggregator().Messages() {
		_, _ = fmt.Fprintln(w, msg.String())
	}
	if s.HasErrors() {
		return ferrors.ContentError(fmt.Sprintf("site has %d error(s)", s.Aggregator().ErrorCount())).Build()
	}
	return nil
}

func selectItems(s *site.Site, paths []string) []*content.Item {
	if len(paths) == 0 {
		all := make([]*content.Item, 0, len(s.Pages)+len(s.StaticFiles))
		all = append(all, s.Pages...)
		return append(all, s.StaticFiles...)
	}
	var items []*content.Item
	for _, p := range paths {
		rel := content.NormalizePath(p)
		if page, ok := s.Page(rel); ok {
			items = append(items, page)
		} else if file, ok := s.StaticFile(rel); ok {
			items = append(items, file)
		}
	}
	return items
}

func describePage(w io.Writer, s *site.Site, it *content.Item, md *markdown.Renderer, timings bool) {
	_, _ = fmt.Fprintf(w, "page %s\n", it.RelativePath)
	_, _ = fmt.Fprintf(w, "  url: %s\n", it.URL())
	if title := it.Title(); title != "" {
		_, _ = fmt.Fprintf(w, "  title: %s\n", title)
	}
	if it.Summary != "" {
		_, _ = fmt.Fprintf(w, "  summary: %s\n", it.Summary)
	}

	if fm := it.FrontMatter; fm != nil && fm.Fields != nil && fm.Fields.Len() > 0 {
		_, _ = fmt.Fprintf(w, "  front matter (%s):\n", fm.Parser)
		data, err := frontmatter.SerializeScope(fm.Fields, frontmatter.Style{Newline: "\n"})
		if err == nil {
			for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
				_, _ = fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	if deps := it.DependencyList(); len(deps) > 0 {
		_, _ = fmt.Fprintln(w, "  dependencies:")
		for _, d := range deps {
			_, _ = fmt.Fprintf(w, "    - %s\n", d)
		}
	}

	if markdown.IsMarkdown(it.RelativePath) {
		if links := md.ExtractLinks([]byte(it.Content)); len(links) > 0 {
			_, _ = fmt.Fprintln(w, "  links:")
			for _, l := range links {
				_, _ = fmt.Fprintf(w, "    - %s %s\n", l.Kind, l.Destination)
			}
		}
	}

	if timings {
		stat := s.Aggregator().Stats().GetContentStat(it.RelativePath)
		_, _ = fmt.Fprintf(w, "  timings: load_parse=%s evaluate=%s summary=%s\n",
			stat.LoadParse, stat.Evaluate, stat.Summary)
	}
}

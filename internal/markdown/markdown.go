// Package markdown renders evaluated Markdown pages to HTML.
package markdown

import (
	"bytes"
	"path"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Extensions recognized as Markdown sources.
var Extensions = []string{".md", ".markdown"}

// IsMarkdown reports whether a content path is a Markdown source.
func IsMarkdown(p string) bool {
	return slices.Contains(Extensions, strings.ToLower(path.Ext(p)))
}

// Renderer converts Markdown to HTML. The zero value is not usable; call New.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a renderer with GitHub flavored extensions and raw HTML
// passthrough, since page bodies routinely come out of templates with markup.
func New(opts Options) *Renderer {
	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	}
	if opts.HeadingIDs {
		rendererOpts = append(rendererOpts, goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	}
	return &Renderer{md: goldmark.New(rendererOpts...)}
}

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExtractLinks parses a Markdown body and returns its link-like constructs in
// document order, followed by reference definitions sorted by label.
func (r *Renderer) ExtractLinks(body []byte) []Link {
	ctx := parser.NewContext()
	root := r.md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})

	refs := ctx.References()
	slices.SortFunc(refs, func(a, b parser.Reference) int {
		return strings.Compare(string(a.Label()), string(b.Label()))
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return links
}

// OutputPath maps a Markdown content path to its rendered HTML path. Other
// paths are returned unchanged.
func OutputPath(p string) string {
	if !IsMarkdown(p) {
		return p
	}
	return strings.TrimSuffix(p, path.Ext(p)) + ".html"
}

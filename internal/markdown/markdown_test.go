package markdown

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := New(Options{})

	out, err := r.Render([]byte("# Title\n\nHello *world*\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<h1>Title</h1>")
	require.Contains(t, string(out), "<em>world</em>")
}

func TestRender_PassesRawHTML(t *testing.T) {
	r := New(Options{})

	out, err := r.Render([]byte("<div class=\"note\">kept</div>\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), `<div class="note">kept</div>`)
}

func TestRender_GFMTable(t *testing.T) {
	r := New(Options{})

	out, err := r.Render([]byte("| a | b |\n| - | - |\n| 1 | 2 |\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
}

func TestRender_HeadingIDs(t *testing.T) {
	r := New(Options{HeadingIDs: true})

	out, err := r.Render([]byte("## Getting Started\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), `id="getting-started"`)
}

func TestExtractLinks(t *testing.T) {
	r := New(Options{})
	body := []byte("See [guide](guide.md) and ![logo](img/logo.png).\n\n<https://example.com>\n\n[b]: b.md\n[a]: a.md\n")

	got := r.ExtractLinks(body)
	want := []Link{
		{Kind: LinkKindInline, Destination: "guide.md"},
		{Kind: LinkKindImage, Destination: "img/logo.png"},
		{Kind: LinkKindAuto, Destination: "https://example.com"},
		{Kind: LinkKindReferenceDefinition, Destination: "a.md"},
		{Kind: LinkKindReferenceDefinition, Destination: "b.md"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"index.md", "index.html"},
		{"docs/Guide.MARKDOWN", "docs/Guide.html"},
		{"style.css", "style.css"},
		{"page.html", "page.html"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, OutputPath(tt.in))
		})
	}
}

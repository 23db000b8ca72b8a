package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/testutil"
)

func staticItem(t *testing.T, root, rel, body string) *content.Item {
	t.Helper()
	return content.NewItem(root, rel, testutil.WriteFile(t, root, rel, body), nil)
}

func pageItem(root, rel, evaluated string) *content.Item {
	it := content.NewItem(root, rel, filepath.Join(root, filepath.FromSlash(rel)), nil)
	it.MarkTemplated()
	it.SetContent(evaluated)
	return it
}

func TestWriter_Write(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "site")

	pages := []*content.Item{
		pageItem(root, "index.html", "<p>home</p>"),
		pageItem(root, "docs/guide.md", "# Guide\n\ntext\n"),
	}
	static := []*content.Item{
		staticItem(t, root, "css/site.css", "body{}"),
	}

	res, err := New(out).Write(context.Background(), pages, static)
	require.NoError(t, err)
	require.Equal(t, 2, res.Pages)
	require.Equal(t, 1, res.Static)
	require.Equal(t, []string{"index.html", "docs/guide.html", "css/site.css"}, res.Files)

	testutil.NewFileAssertions(t, out).
		AssertFileEquals("index.html", "<p>home</p>").
		AssertFileContains("docs/guide.html", `<h1 id="guide">Guide</h1>`).
		AssertFileEquals("css/site.css", "body{}").
		AssertFileNotExists("docs/guide.md")
}

func TestWriter_Clean(t *testing.T) {
	out := t.TempDir()
	stale := filepath.Join(out, "old.html")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))

	_, err := New(out).Write(context.Background(), nil, nil)
	require.NoError(t, err)
	require.FileExists(t, stale)

	_, err = New(out, WithClean(true)).Write(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NoFileExists(t, stale)
	require.DirExists(t, out)
}

func TestWriter_MissingStaticSource(t *testing.T) {
	root := t.TempDir()
	missing := content.NewItem(root, "gone.png", filepath.Join(root, "gone.png"), nil)

	_, err := New(t.TempDir()).Write(context.Background(), nil, []*content.Item{missing})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestWriter_RejectsBadDirectory(t *testing.T) {
	tests := []struct {
		name string
		dir  string
	}{
		{"empty", ""},
		{"root", string(filepath.Separator)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dir).Write(context.Background(), nil, nil)
			require.Error(t, err)
			require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
		})
	}
}

func TestWriter_CanceledContext(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(t.TempDir()).Write(ctx, []*content.Item{pageItem(root, "a.html", "a")}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

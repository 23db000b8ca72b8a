package incremental

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/testutil"
)

func loadTracked(t *testing.T, root string) *Tracker {
	t.Helper()
	s, err := site.New(root, nil, site.WithAggregator(diag.NewAggregator(nil)))
	require.NoError(t, err)
	require.NoError(t, s.Load(context.Background()))
	require.False(t, s.HasErrors())

	tr := NewTracker()
	require.NoError(t, tr.RecordAll(s.Pages))
	return tr
}

func TestTracker_StalePages(t *testing.T) {
	root := t.TempDir()
	header := testutil.WriteFile(t, root, "_meta/includes/header.html", "<h1>{{ .page.title }}</h1>")
	footer := testutil.WriteFile(t, root, "_meta/includes/footer.html", "<footer/>")
	a := testutil.WriteFile(t, root, "a.html", "+++\ntitle = \"A\"\n+++\n{{ include \"header.html\" }}")
	testutil.WriteFile(t, root, "b.html", "+++\ntitle = \"B\"\n+++\n{{ include \"header.html\" }}{{ include \"footer.html\" }}")
	testutil.WriteFile(t, root, "c.html", "+++\ntitle = \"C\"\n+++\nplain")

	tr := loadTracked(t, root)
	require.Equal(t, 3, tr.Len())

	tests := []struct {
		name    string
		changed []string
		want    []string
	}{
		{"shared include", []string{header}, []string{"a.html", "b.html"}},
		{"single include", []string{footer}, []string{"b.html"}},
		{"page source", []string{a}, []string{"a.html"}},
		{"unrelated", []string{filepath.Join(root, "other.txt")}, []string{}},
		{"nothing", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.StalePages(tt.changed)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("stale pages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTracker_Changed(t *testing.T) {
	root := t.TempDir()
	header := testutil.WriteFile(t, root, "_meta/includes/header.html", "<h1>{{ .page.title }}</h1>")
	page := testutil.WriteFile(t, root, "a.html", "+++\ntitle = \"A\"\n+++\n{{ include \"header.html\" }}")

	tr := loadTracked(t, root)
	require.Empty(t, tr.Changed())

	require.NoError(t, os.WriteFile(header, []byte("<h2>{{ .page.title }}</h2>"), 0o600))
	require.Equal(t, []string{header}, tr.Changed())

	require.NoError(t, os.WriteFile(page, []byte("+++\ntitle = \"A2\"\n+++\n{{ include \"header.html\" }}"), 0o600))
	require.ElementsMatch(t, []string{page, header}, tr.Changed())

	require.NoError(t, os.Remove(page))
	require.Contains(t, tr.Changed(), page)
}

func TestTracker_SaveAndLoad(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "_meta/includes/header.html", "<h1/>")
	testutil.WriteFile(t, root, "a.html", "+++\n+++\n{{ include \"header.html\" }}")

	tr := loadTracked(t, root)
	tr.SetRunID("run-1")

	cacheDir := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, tr.Save(cacheDir))

	loaded, err := LoadTracker(cacheDir)
	require.NoError(t, err)
	require.Equal(t, tr.Len(), loaded.Len())

	want, _ := tr.Page("a.html")
	got, ok := loaded.Page("a.html")
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, loaded.Changed())
}

func TestLoadTracker_MissingState(t *testing.T) {
	tr, err := LoadTracker(t.TempDir())
	require.NoError(t, err)
	require.Zero(t, tr.Len())
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	p := testutil.WriteFile(t, dir, "f.md", "+++\nx = 1\n+++\nbody")

	fp1, err := Fingerprint(p, 12)
	require.NoError(t, err)
	require.NotEmpty(t, fp1)

	fp2, err := Fingerprint(p, 12)
	require.NoError(t, err)
	require.Equal(t, fp1, fp2)

	fp3, err := Fingerprint(p, 1000)
	require.NoError(t, err)
	fp4, err := Fingerprint(p, 0)
	require.NoError(t, err)
	require.Equal(t, fp4, fp3)

	_, err = Fingerprint(filepath.Join(dir, "missing.md"), 0)
	require.ErrorIs(t, err, ErrMissingSource)
}

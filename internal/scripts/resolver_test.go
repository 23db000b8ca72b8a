package scripts

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/engine"
)

func TestFromIncludes_RejectsEscapingNames(t *testing.T) {
	tests := []string{"../secret", "a/../../b", "/etc/passwd", `\windows`, "", "   "}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			agg := diag.NewAggregator(nil)
			r := NewFromIncludes(agg, t.TempDir())
			path, ok := r.Resolve(engine.NewContext(), diag.FileSpan("p.html"), name)
			require.False(t, ok)
			require.Empty(t, path)
			require.True(t, agg.HasErrors())
			require.Equal(t, "p.html", agg.Messages()[0].Span.File)
		})
	}
}

func TestFromIncludes_PriorityOrder(t *testing.T) {
	site := t.TempDir()
	theme := t.TempDir()
	builtin := t.TempDir()
	write := func(dir, name, content string) {
		p := filepath.Join(dir, IncludesDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	write(theme, "a.html", "theme-a")
	write(builtin, "a.html", "builtin-a")
	write(builtin, "b.html", "builtin-b")
	write(site, "c.html", "site-c")

	r := NewFromIncludes(diag.NewAggregator(nil), site, theme, builtin)
	ctx := engine.NewContext()

	for name, want := range map[string]string{"a.html": "theme-a", "b.html": "builtin-b", "c.html": "site-c"} {
		path, ok := r.Resolve(ctx, diag.Span{}, name)
		require.True(t, ok)
		text, err := r.Load(ctx, diag.Span{}, path)
		require.NoError(t, err)
		require.Equal(t, want, text)
	}
	require.Len(t, r.Dependencies(), 3)
}

func TestFromIncludes_MissingFallsBackToSiteCandidate(t *testing.T) {
	site := t.TempDir()
	r := NewFromIncludes(diag.NewAggregator(nil), site, t.TempDir())
	path, ok := r.Resolve(engine.NewContext(), diag.Span{}, "nope.html")
	require.True(t, ok)
	require.Equal(t, filepath.Join(site, IncludesDir, "nope.html"), path)

	_, err := r.Load(engine.NewContext(), diag.Span{}, path)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Empty(t, r.Dependencies())
}

func TestFromIncludes_NoMetaDirs(t *testing.T) {
	agg := diag.NewAggregator(nil)
	_, ok := NewFromIncludes(agg).Resolve(engine.NewContext(), diag.Span{}, "x")
	require.False(t, ok)
	require.True(t, agg.HasErrors())
}

func TestUnauthorized_RejectsEverything(t *testing.T) {
	agg := diag.NewAggregator(nil)
	u := NewUnauthorized(agg)
	_, ok := u.Resolve(engine.NewContext(), diag.FileSpan("s"), "x.html")
	require.False(t, ok)
	require.Contains(t, agg.Messages()[0].Text, "x.html")

	_, err := u.Load(engine.NewContext(), diag.Span{}, "x")
	require.ErrorIs(t, err, ErrIncludeNotAllowed)
}

func TestFromIncludes_SandboxProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	meta := t.TempDir()
	root := filepath.Join(meta, IncludesDir)

	segment := gen.OneConstOf("a", "dir", "x y", "..", ".", "", "...")
	name := gen.SliceOfN(4, segment, reflect.TypeOf("")).Map(func(parts []string) string {
		return strings.Join(parts, "/")
	})
	prefix := gen.OneConstOf("", "/", `\`, " ")

	properties.Property("accepted names stay under the includes directory", prop.ForAll(
		func(p, n string) bool {
			r := NewFromIncludes(diag.NewAggregator(nil), meta)
			path, ok := r.Resolve(engine.NewContext(), diag.Span{}, p+n)
			if !ok {
				return path == ""
			}
			rel, err := filepath.Rel(root, path)
			return err == nil && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
		},
		prefix, name,
	))

	properties.Property("names containing .. are always rejected", prop.ForAll(
		func(a, b string) bool {
			agg := diag.NewAggregator(nil)
			_, ok := NewFromIncludes(agg, meta).Resolve(engine.NewContext(), diag.Span{}, a+".."+b)
			return !ok && agg.HasErrors()
		},
		gen.AlphaString(), gen.AlphaString(),
	))

	properties.TestingRun(t)
}

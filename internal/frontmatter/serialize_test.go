package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

func TestSerializeScope_Empty(t *testing.T) {
	out, err := SerializeScope(value.NewScope(), Style{Newline: "\n"})
	require.NoError(t, err)
	require.Empty(t, out)

	out, err = SerializeScope(nil, Style{})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSerializeScope_KeepsScopeOrder(t *testing.T) {
	s := value.NewScope()
	require.NoError(t, s.Set("title", value.String("Guide")))
	require.NoError(t, s.Set("weight", value.Number(3)))
	require.NoError(t, s.Set("draft", value.Bool(false)))
	require.NoError(t, s.Set("ratio", value.Number(0.5)))

	out, err := SerializeScope(s, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "title: Guide\nweight: 3\ndraft: false\nratio: 0.5\n", string(out))
}

func TestSerializeScope_Nested(t *testing.T) {
	inner := value.NewScope()
	require.NoError(t, inner.Set("b", value.Number(2)))
	require.NoError(t, inner.Set("a", value.Null))

	s := value.NewScope()
	require.NoError(t, s.Set("outer", value.Mapping(inner)))
	require.NoError(t, s.Set("tags", value.Sequence(value.String("go"), value.String("web"))))

	out, err := SerializeScope(s, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "outer:\n  b: 2\n  a: null\ntags:\n  - go\n  - web\n", string(out))
}

func TestSerializeScope_CRLF(t *testing.T) {
	s := value.NewScope()
	require.NoError(t, s.Set("a", value.String("one")))

	out, err := SerializeScope(s, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "a: one\r\n", string(out))
}

func TestSerializeScope_RoundTripsParsedTOML(t *testing.T) {
	fm, _, err := DefaultRegistry().Parse("+++\ntitle = \"T\"\ncount = 2\n+++\nbody", "p.md")
	require.NoError(t, err)

	out, err := SerializeScope(fm.Fields, Style{})
	require.NoError(t, err)
	require.Contains(t, string(out), "title: T\n")
	require.Contains(t, string(out), "count: 2\n")
}

package content

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		lead []byte
		want Kind
	}{
		{name: "empty", lead: nil, want: KindPlainStatic},
		{name: "plain html", lead: []byte("<html><body>"), want: KindPlainStatic},
		{name: "template opener", lead: []byte("{{ .title }}"), want: KindFrontMatterCandidate},
		{name: "toml marker", lead: []byte("+++\ntitle = 1"), want: KindFrontMatterCandidate},
		{name: "yaml marker not enabled", lead: []byte("---\ntitle: x"), want: KindPlainStatic},
		{name: "bom then opener", lead: []byte("\xEF\xBB\xBF{{ x }}"), want: KindFrontMatterCandidate},
		{name: "partial bom", lead: []byte("\xEF\xBB"), want: KindPlainStatic},
		{name: "opener with zero byte", lead: []byte("{{\x00\x01"), want: KindBinary},
		{name: "single brace", lead: []byte("{"), want: KindPlainStatic},
		{name: "opener not at start", lead: []byte(" {{ x }}"), want: KindPlainStatic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.lead))
		})
	}
}

func TestClassifier_CustomMarkers(t *testing.T) {
	c := NewClassifier("+++", "---", "")
	require.Equal(t, KindFrontMatterCandidate, c.Classify([]byte("---\na: 1\n---\n")))
	require.Equal(t, KindBinary, c.Classify([]byte("---\x00")))
	require.Equal(t, KindPlainStatic, c.Classify([]byte("plain")))
}

func TestSniff_RewindsAndToleratesShortReads(t *testing.T) {
	for _, in := range []string{"", "{{", "{{ a long template that exceeds the window }}"} {
		r := strings.NewReader(in)
		_, err := Sniff(r)
		require.NoError(t, err)

		rest, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, in, string(rest))
	}
}

func TestSniff_OnlyInspectsWindow(t *testing.T) {
	in := append([]byte("{{ x }}"), bytes.Repeat([]byte(" "), SniffWindow)...)
	in = append(in, 0)
	kind, err := Sniff(bytes.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, KindFrontMatterCandidate, kind)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error)       { return 0, errors.New("boom") }
func (failingReader) Seek(int64, int) (int64, error) { return 0, nil }

func TestSniff_ReadError(t *testing.T) {
	_, err := Sniff(failingReader{})
	require.Error(t, err)
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "static", KindPlainStatic.String())
	require.Equal(t, "binary", KindBinary.String())
	require.Equal(t, "candidate", KindFrontMatterCandidate.String())
	require.Equal(t, "kind(9)", Kind(9).String())
}

func TestClassifyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(16)
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("short buffers classify without reading past their length", prop.ForAll(
		func(b []byte, n int) bool {
			// A capped slice panics on any read beyond len.
			capped := b[:n:n]
			k := Classify(capped)
			return k == KindPlainStatic || k == KindBinary || k == KindFrontMatterCandidate
		},
		gen.SliceOfN(SniffWindow, gen.OneConstOf(byte('{'), byte('+'), byte(0), byte(0xEF), byte(0xBB), byte(0xBF), byte('a'))),
		gen.IntRange(0, SniffWindow-1),
	))

	body := gen.SliceOfN(SniffWindow-5, gen.UInt8Range(1, 255))
	properties.Property("bom and opener without zero byte is a candidate", prop.ForAll(
		func(b []byte) bool {
			lead := append([]byte("\xEF\xBB\xBF{{"), b...)[:SniffWindow]
			return Classify(lead) == KindFrontMatterCandidate
		},
		body,
	))

	properties.Property("a zero byte inside the window makes it binary", prop.ForAll(
		func(b []byte, pos int) bool {
			lead := append([]byte("\xEF\xBB\xBF{{"), b...)[:SniffWindow]
			lead[5+pos%(SniffWindow-5)] = 0
			return Classify(lead) == KindBinary
		},
		body, gen.IntRange(0, SniffWindow),
	))

	properties.TestingRun(t)
}

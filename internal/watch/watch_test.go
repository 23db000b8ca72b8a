package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreEvent(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/site/index.html", false},
		{"/site/.hidden", true},
		{"/site/page.md~", true},
		{"/site/.page.md.swp", true},
		{"/site/page.md.swx", true},
		{"/site/#page.md#", true},
		{"/site/Thumbs.db", true},
		{"/site/_meta/includes/header.html", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, shouldIgnoreEvent(tt.path))
		})
	}
}

func TestWatcher_BatchesChanges(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	w, err := New([]string{root, filepath.Join(root, "missing")},
		WithDebounce(50*time.Millisecond),
		WithIgnore(func(p string) bool { return strings.HasSuffix(p, ".tmp") }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(changed []string) { batches <- changed })
	}()

	a := filepath.Join(root, "a.html")
	b := filepath.Join(sub, "b.html")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.tmp"), []byte("x"), 0o600))

	seen := map[string]bool{}
	deadline := time.After(3 * time.Second)
	for !seen[a] || !seen[b] {
		select {
		case batch := <-batches:
			for _, p := range batch {
				require.False(t, strings.HasSuffix(p, ".tmp"), "ignored path delivered: %s", p)
				seen[p] = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for changes, saw %v", seen)
		}
	}

	cancel()
	require.NoError(t, <-done)
}

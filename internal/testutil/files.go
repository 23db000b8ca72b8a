// Package testutil holds filesystem helpers shared by the package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes body to root/rel, creating parent directories, and returns
// the absolute path.
func WriteFile(t testing.TB, root, rel, body string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// FileAssertions checks the state of a directory tree.
type FileAssertions struct {
	t       testing.TB
	baseDir string
}

// NewFileAssertions creates a new file assertions helper rooted at baseDir.
func NewFileAssertions(t testing.TB, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// AssertFileExists validates that a file exists.
func (fa *FileAssertions) AssertFileExists(rel string) *FileAssertions {
	fa.t.Helper()
	full := filepath.Join(fa.baseDir, filepath.FromSlash(rel))
	if stat, err := os.Stat(full); err != nil {
		fa.t.Errorf("Expected file to exist: %s", full)
	} else if stat.IsDir() {
		fa.t.Errorf("Expected %s to be a file, but it's a directory", full)
	}
	return fa
}

// AssertFileNotExists validates that nothing exists at rel.
func (fa *FileAssertions) AssertFileNotExists(rel string) *FileAssertions {
	fa.t.Helper()
	full := filepath.Join(fa.baseDir, filepath.FromSlash(rel))
	if _, err := os.Stat(full); err == nil {
		fa.t.Errorf("Expected file to be absent: %s", full)
	}
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(rel, expected string) *FileAssertions {
	fa.t.Helper()
	full := filepath.Join(fa.baseDir, filepath.FromSlash(rel))

	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(full)
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", full, err)
		return fa
	}
	if !strings.Contains(string(data), expected) {
		fa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s", rel, expected, string(data))
	}
	return fa
}

// AssertFileEquals validates the exact content of a file.
func (fa *FileAssertions) AssertFileEquals(rel, expected string) *FileAssertions {
	fa.t.Helper()
	full := filepath.Join(fa.baseDir, filepath.FromSlash(rel))

	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(full)
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", full, err)
		return fa
	}
	if string(data) != expected {
		fa.t.Errorf("Unexpected content in %s\nwant: %q\n got: %q", rel, expected, string(data))
	}
	return fa
}

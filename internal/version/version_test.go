package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if BuildTime == "" || GitCommit == "" {
		t.Error("build metadata should be initialized")
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "sitebuilder "+Version) {
		t.Errorf("unexpected version line: %s", s)
	}
	if !strings.Contains(s, GitCommit) {
		t.Errorf("version line lacks commit: %s", s)
	}
}

// Package incremental tracks content fingerprints of pages and the files they
// include so that rebuilds can be limited to stale pages.
package incremental

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/inful/mdfp"
)

// ErrMissingSource is returned when a fingerprinted file no longer exists.
var ErrMissingSource = errors.New("fingerprint source missing")

// PageRecord is the fingerprint state of one page.
type PageRecord struct {
	Source       string            `json:"source"`
	Fingerprint  string            `json:"fingerprint"`
	BodyOffset   int               `json:"body_offset,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Fingerprint computes the mdfp fingerprint of a file. The first bodyOffset
// bytes are hashed as the front matter part; pass 0 for files without one.
func Fingerprint(path string, bodyOffset int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissingSource, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if bodyOffset < 0 || bodyOffset > len(data) {
		bodyOffset = 0
	}
	return mdfp.CalculateFingerprintFromParts(string(data[:bodyOffset]), string(data[bodyOffset:])), nil
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

package scripts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/engine"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// IncludesDir is the subdirectory of a meta directory that holds includes.
const IncludesDir = "includes"

// ErrIncludeNotAllowed is returned by Unauthorized.Load.
var ErrIncludeNotAllowed = errors.New("include statement is not allowed from this context")

// Unauthorized rejects every include.
type Unauthorized struct {
	diag *diag.Aggregator
}

// NewUnauthorized returns a resolver that records an error for each include attempt.
func NewUnauthorized(agg *diag.Aggregator) *Unauthorized {
	return &Unauthorized{diag: agg}
}

func (u *Unauthorized) Resolve(_ *engine.Context, caller diag.Span, name string) (string, bool) {
	u.diag.Error(caller, "%s: %s", ErrIncludeNotAllowed.Error(), name)
	u.diag.Recorder().IncIncludeResult(metrics.ResultRejected)
	return "", false
}

func (u *Unauthorized) Load(*engine.Context, diag.Span, string) (string, error) {
	return "", ErrIncludeNotAllowed
}

// FromIncludes resolves include names against the includes directory of each
// meta directory, in priority order, and records every loaded file.
type FromIncludes struct {
	diag     *diag.Aggregator
	metaDirs []string
	loaded   sets.Set[string]
}

// NewFromIncludes returns a resolver searching metaDirs in order.
func NewFromIncludes(agg *diag.Aggregator, metaDirs ...string) *FromIncludes {
	return &FromIncludes{diag: agg, metaDirs: metaDirs, loaded: sets.New[string]()}
}

// Resolve rejects names that could escape the includes directory. The first
// meta directory holding the include wins; when none does, the highest
// priority candidate is returned so that Load reports the missing file.
func (r *FromIncludes) Resolve(_ *engine.Context, caller diag.Span, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if !validIncludeName(name) {
		r.diag.Error(caller, "the include name %q cannot contain '..' or start with '/' or '\\'", name)
		r.diag.Recorder().IncIncludeResult(metrics.ResultRejected)
		return "", false
	}
	if len(r.metaDirs) == 0 {
		r.diag.Error(caller, "no include directory is configured to resolve %q", name)
		r.diag.Recorder().IncIncludeResult(metrics.ResultRejected)
		return "", false
	}

	rel := filepath.FromSlash(name)
	first := ""
	for _, dir := range r.metaDirs {
		candidate := filepath.Join(dir, IncludesDir, rel)
		if first == "" {
			first = candidate
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			r.diag.Recorder().IncIncludeResult(metrics.ResultResolved)
			return candidate, true
		}
	}
	r.diag.Recorder().IncIncludeResult(metrics.ResultResolved)
	return first, true
}

// Load reads path and records it as a dependency.
func (r *FromIncludes) Load(_ *engine.Context, _ diag.Span, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read include %s: %w", path, err)
	}
	r.loaded.Add(path)
	return string(data), nil
}

// Dependencies returns every include loaded so far, sorted.
func (r *FromIncludes) Dependencies() []string {
	return sets.Sorted(r.loaded)
}

func validIncludeName(name string) bool {
	if name == "" || strings.Contains(name, "..") {
		return false
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return false
	}
	return !filepath.IsAbs(name)
}

package incremental

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// StateFilename is the name of the persisted tracker state inside a cache directory.
const StateFilename = "fingerprints.json"

// State is the persisted form of a Tracker.
type State struct {
	RunID     string                `json:"run_id,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
	Pages     map[string]PageRecord `json:"pages"`
}

// Tracker maps pages to the fingerprints of their source and dependencies.
type Tracker struct {
	pages  map[string]PageRecord
	runID  string
	logger *slog.Logger
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		pages:  make(map[string]PageRecord),
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (t *Tracker) WithLogger(logger *slog.Logger) *Tracker {
	t.logger = logger
	return t
}

// SetRunID tags the state with the load run that produced it.
func (t *Tracker) SetRunID(id string) { t.runID = id }

// Len returns the number of tracked pages.
func (t *Tracker) Len() int { return len(t.pages) }

// Record fingerprints a page and every dependency it reported. Dependencies
// that cannot be read are recorded with an empty fingerprint so that any later
// appearance marks the page stale.
func (t *Tracker) Record(page *content.Item) error {
	if page == nil || !page.IsTemplated() {
		return nil
	}
	offset := 0
	if page.FrontMatter != nil {
		offset = page.FrontMatter.BodyOffset
	}
	fp, err := Fingerprint(page.Path, offset)
	if err != nil {
		return err
	}

	rec := PageRecord{
		Source:       cleanPath(page.Path),
		Fingerprint:  fp,
		BodyOffset:   offset,
		Dependencies: make(map[string]string),
	}
	for _, dep := range page.DependencyList() {
		dfp, derr := Fingerprint(dep, 0)
		if derr != nil {
			t.logger.Debug("Dependency not fingerprinted",
				logfields.Path(page.RelativePath), logfields.Include(dep), logfields.Error(derr))
		}
		rec.Dependencies[cleanPath(dep)] = dfp
	}
	t.pages[page.RelativePath] = rec
	return nil
}

// RecordAll records every page and returns the first error encountered.
func (t *Tracker) RecordAll(pages []*content.Item) error {
	var firstErr error
	for _, p := range pages {
		if err := t.Record(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Page returns the record for a page.
func (t *Tracker) Page(rel string) (PageRecord, bool) {
	rec, ok := t.pages[rel]
	return rec, ok
}

// StalePages lists, in sorted order, the pages whose source or one of whose
// dependencies is among the changed paths.
func (t *Tracker) StalePages(changed []string) []string {
	if len(changed) == 0 {
		return nil
	}
	lookup := sets.New[string]()
	for _, c := range changed {
		lookup.Add(cleanPath(c))
	}

	stale := make([]string, 0)
	for rel, rec := range t.pages {
		if lookup.Has(rec.Source) {
			stale = append(stale, rel)
			continue
		}
		for dep := range rec.Dependencies {
			if lookup.Has(dep) {
				stale = append(stale, rel)
				break
			}
		}
	}
	slices.SortFunc(stale, content.Compare)
	return stale
}

// Changed re-fingerprints every tracked file and returns the sorted set of
// paths whose fingerprint differs from the recorded one.
func (t *Tracker) Changed() []string {
	changed := sets.New[string]()
	seen := sets.New[string]()
	for _, rel := range slices.Sorted(maps.Keys(t.pages)) {
		rec := t.pages[rel]
		if seen.AddIfAbsent(rec.Source) {
			if t.sourceChanged(rel, rec) {
				changed.Add(rec.Source)
			}
		}
		for dep, fp := range rec.Dependencies {
			if !seen.AddIfAbsent(dep) {
				continue
			}
			cur, _ := Fingerprint(dep, 0)
			if cur != fp {
				changed.Add(dep)
			}
		}
	}
	return sets.Sorted(changed)
}

func (t *Tracker) sourceChanged(rel string, rec PageRecord) bool {
	cur, err := Fingerprint(rec.Source, rec.BodyOffset)
	if err != nil {
		t.logger.Debug("Page source unreadable", logfields.Path(rel), logfields.Error(err))
		return true
	}
	return cur != rec.Fingerprint
}

// Save writes the tracker state to dir/StateFilename.
func (t *Tracker) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	state := State{RunID: t.runID, Timestamp: time.Now().UTC(), Pages: t.pages}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, StateFilename), data, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// LoadTracker reads a tracker persisted by Save. A missing state file yields
// an empty tracker.
func LoadTracker(dir string) (*Tracker, error) {
	t := NewTracker()
	data, err := os.ReadFile(filepath.Join(dir, StateFilename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if state.Pages != nil {
		t.pages = state.Pages
	}
	t.runID = state.RunID
	return t, nil
}

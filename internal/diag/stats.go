package diag

import (
	"sort"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// ContentStat holds the accumulated phase durations of one content item.
type ContentStat struct {
	Path      string
	LoadParse time.Duration
	Evaluate  time.Duration
	Summary   time.Duration

	recorder metrics.Recorder
}

// Add accumulates d into the given phase.
func (s *ContentStat) Add(phase metrics.Phase, d time.Duration) {
	switch phase {
	case metrics.PhaseLoadParse:
		s.LoadParse += d
	case metrics.PhaseEvaluate:
		s.Evaluate += d
	case metrics.PhaseSummary:
		s.Summary += d
	default:
		return
	}
	if s.recorder != nil {
		s.recorder.ObservePhaseDuration(phase, d)
	}
}

// Total is the sum of all phases.
func (s *ContentStat) Total() time.Duration {
	return s.LoadParse + s.Evaluate + s.Summary
}

// Stats keeps ContentStat records keyed by item identity.
type Stats struct {
	recorder metrics.Recorder
	content  map[string]*ContentStat
}

func newStats(rec metrics.Recorder) *Stats {
	return &Stats{recorder: rec, content: make(map[string]*ContentStat)}
}

// GetContentStat returns the record for key, creating it on first access.
func (s *Stats) GetContentStat(key string) *ContentStat {
	if stat, ok := s.content[key]; ok {
		return stat
	}
	stat := &ContentStat{Path: key, recorder: s.recorder}
	s.content[key] = stat
	return stat
}

// Len returns the number of tracked items.
func (s *Stats) Len() int {
	return len(s.content)
}

// All returns the records sorted by path.
func (s *Stats) All() []*ContentStat {
	out := make([]*ContentStat, 0, len(s.content))
	for _, stat := range s.content {
		out = append(out, stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Reset drops all records.
func (s *Stats) Reset() {
	s.content = make(map[string]*ContentStat)
}

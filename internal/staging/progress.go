package staging

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Stage names the phase a preview is in. Progress is keyed by a
// caller-supplied correlation id, independent of the staging batch id,
// so a client can poll while the upload request is still in flight.
type Stage string

const (
	StageReceived    Stage = "received"
	StageParsing     Stage = "parsing"
	StageCorrelating Stage = "correlating"
	StageStaging     Stage = "staging"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Progress is a point-in-time snapshot of a running preview.
type Progress struct {
	Stage   Stage `json:"stage"`
	Percent int   `json:"percent"`
}

// ProgressTracker stores transient progress records. Entries are
// refreshed on every update and garbage-collected a grace window after
// the last one, completion included.
type ProgressTracker struct {
	records *cache.Cache
}

// NewProgressTracker creates a tracker whose records live for the given
// grace window after their last update.
func NewProgressTracker(grace time.Duration) *ProgressTracker {
	return &ProgressTracker{records: cache.New(grace, time.Minute)}
}

// Update records the current stage and percent for a correlation id.
// An empty correlation id means the caller did not ask for progress.
func (t *ProgressTracker) Update(correlationID string, stage Stage, percent int) {
	if correlationID == "" {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.records.Set(correlationID, Progress{Stage: stage, Percent: percent}, cache.DefaultExpiration)
}

// Get returns the progress snapshot for a correlation id.
func (t *ProgressTracker) Get(correlationID string) (Progress, bool) {
	v, ok := t.records.Get(correlationID)
	if !ok {
		return Progress{}, false
	}
	return v.(Progress), true
}

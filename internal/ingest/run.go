package ingest

import (
	"time"

	"github.com/Randallflagg19/travel/internal/metrics"
)

type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDiscovering Phase = "discovering"
	PhaseImporting   Phase = "importing"
	PhaseDone        Phase = "done"
)

type Stage string

const (
	StageList   Stage = "list"
	StageInsert Stage = "insert"
)

// ErrorEntry is one recorded failure. Kind is empty for folder listing errors.
type ErrorEntry struct {
	Stage    Stage  `json:"stage"`
	Folder   string `json:"folder"`
	Kind     string `json:"kind"`
	Resource string `json:"resource,omitempty"`
	Message  string `json:"message"`
}

// Summary is the result of an import run. Errors holds at most the configured
// number of entries; ErrorCount is exact.
type Summary struct {
	Prefix     string       `json:"prefix"`
	Phase      Phase        `json:"phase"`
	Scanned    int          `json:"scanned"`
	Inserted   int          `json:"inserted"`
	Repaired   int          `json:"repaired"`
	Folders    int          `json:"folders"`
	ErrorCount int          `json:"error_count"`
	Errors     []ErrorEntry `json:"errors"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// tally is what one (folder, kind) unit contributes to a run.
type tally struct {
	scanned  int
	inserted int
	repaired int
	errors   []ErrorEntry
}

func (t *tally) fail(e ErrorEntry) {
	t.errors = append(t.errors, e)
}

type run struct {
	summary   Summary
	maxErrors int
}

func newRun(prefix string, maxErrors int, now time.Time) *run {
	return &run{
		summary: Summary{
			Prefix:    prefix,
			Phase:     PhaseIdle,
			Errors:    []ErrorEntry{},
			StartedAt: now,
		},
		maxErrors: maxErrors,
	}
}

func (r *run) addError(e ErrorEntry) {
	r.summary.ErrorCount++
	metrics.ImportErrors.WithLabelValues(string(e.Stage)).Inc()
	if len(r.summary.Errors) < r.maxErrors {
		r.summary.Errors = append(r.summary.Errors, e)
	}
}

func (r *run) merge(t tally) {
	r.summary.Scanned += t.scanned
	r.summary.Inserted += t.inserted
	r.summary.Repaired += t.repaired
	for _, e := range t.errors {
		r.addError(e)
	}
	metrics.ImportAssets.WithLabelValues("scanned").Add(float64(t.scanned))
	metrics.ImportAssets.WithLabelValues("inserted").Add(float64(t.inserted))
	metrics.ImportAssets.WithLabelValues("repaired").Add(float64(t.repaired))
}

package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"filemanager/internal/core/browser"
)

type ReportStatus string

const (
	ReportSuccess ReportStatus = "success"
	ReportFailure ReportStatus = "failure"
	ReportWarning ReportStatus = "warning"
)

// ReportEntry records one mutating operation.
type ReportEntry struct {
	Op     string       `json:"op"`
	Path   string       `json:"path"`
	Dest   string       `json:"dest,omitempty"`
	Status ReportStatus `json:"status"`
	Kind   string       `json:"kind,omitempty"`
	Error  string       `json:"error,omitempty"`
	// Remaining lists what a partial delete left behind.
	Remaining []string  `json:"remaining,omitempty"`
	At        time.Time `json:"at"`
}

type Report struct {
	Root      string        `json:"root"`
	StartedAt time.Time     `json:"started_at"`
	Entries   []ReportEntry `json:"entries"`
}

func NewReport(root string) *Report {
	return &Report{Root: root, StartedAt: time.Now()}
}

func (r *Report) AddSuccess(op, path, dest string) {
	r.Entries = append(r.Entries, ReportEntry{Op: op, Path: path, Dest: dest, Status: ReportSuccess, At: time.Now()})
}

// AddFailure records err. A partial delete counts as a warning since part of
// the work was done.
func (r *Report) AddFailure(op, path, dest string, err error) {
	e := ReportEntry{
		Op:     op,
		Path:   path,
		Dest:   dest,
		Status: ReportFailure,
		Kind:   browser.KindOf(err).Error(),
		Error:  err.Error(),
		At:     time.Now(),
	}
	var pf *browser.PartialFailureError
	if errors.As(err, &pf) {
		e.Status = ReportWarning
		e.Remaining = pf.Remaining
	}
	r.Entries = append(r.Entries, e)
}

func (r *Report) Counts() (successes, warnings, failures int) {
	for _, e := range r.Entries {
		switch e.Status {
		case ReportSuccess:
			successes++
		case ReportWarning:
			warnings++
		case ReportFailure:
			failures++
		}
	}
	return
}

// Summary renders the counts for the footer.
func (r *Report) Summary() string {
	s, w, f := r.Counts()
	return fmt.Sprintf("%d ok, %d partial, %d failed", s, w, f)
}

func (r *Report) Dump(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

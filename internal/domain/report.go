package domain

import "time"

// CheckState classifies the outcome of reconciling one derived field of
// one driver.
type CheckState string

const (
	// CheckOK means the stored value already matched its source.
	CheckOK CheckState = "ok"
	// CheckRepaired means drift was found and conditionally written back.
	CheckRepaired CheckState = "repaired"
	// CheckConflict means the sources contradict each other and nothing
	// was written; manual resolution required.
	CheckConflict CheckState = "conflict"
	// CheckFailed means the check itself could not complete, e.g. the
	// optimistic update lost every retry or the store errored.
	CheckFailed CheckState = "failed"
)

// FieldCheck is the reconciliation outcome for a single derived field,
// with enough detail (observed vs. expected) for manual inspection.
type FieldCheck struct {
	State  CheckState `json:"state"`
	Detail string     `json:"detail,omitempty"`
}

// DriverReport collects the per-field outcomes for one driver.
type DriverReport struct {
	DriverID        int64      `json:"driver_id"`
	RatingAggregate FieldCheck `json:"rating_aggregate"`
	Photo           FieldCheck `json:"photo"`
}

// ReportSummary totals the pass outcomes across all checked fields.
type ReportSummary struct {
	Checked   int `json:"checked"`
	Repaired  int `json:"repaired"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}

// Report is the structured result of one reconciliation pass.
type Report struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Drivers    []DriverReport `json:"drivers"`
	Summary    ReportSummary  `json:"summary"`
}

// Add folds one field check into the report for the given driver report
// and updates the summary counters.
func (r *Report) Add(check FieldCheck) {
	r.Summary.Checked++

	switch check.State {
	case CheckRepaired:
		r.Summary.Repaired++
	case CheckConflict:
		r.Summary.Conflicts++
	case CheckFailed:
		r.Summary.Failed++
	}
}

// PhotoState is the outcome of a single photo reference reconciliation.
type PhotoState string

const (
	PhotoUnchanged PhotoState = "unchanged"
	PhotoRepaired  PhotoState = "repaired"
	PhotoConflict  PhotoState = "conflict"
)

// PhotoReconciliation describes what the photo reconciler did for one
// driver. Reference is the stored-or-repaired reference, when any.
type PhotoReconciliation struct {
	State     PhotoState `json:"state"`
	Reference string     `json:"reference,omitempty"`
	Detail    string     `json:"detail,omitempty"`
}

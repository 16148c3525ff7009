package models

import "time"

// PushStatus classifies the outcome of mirroring a local write to the sheet.
type PushStatus string

const (
	PushStatusOK       PushStatus = "ok"
	PushStatusSkipped  PushStatus = "skipped"
	PushStatusFailed   PushStatus = "failed"
	PushStatusNotFound PushStatus = "not_found"
)

// PushResult is returned alongside every teacher/student write. A failed push
// never fails the write itself.
type PushResult struct {
	Status    PushStatus `json:"status"`
	Action    string     `json:"action,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	RowNumber int        `json:"rowNumber,omitempty"`
}

// OK reports whether the sheet acknowledged the write.
func (r PushResult) OK() bool { return r.Status == PushStatusOK }

// PullRowError records one sheet row that could not be reconciled.
type PullRowError struct {
	RowNumber int    `json:"rowNumber"`
	Key       string `json:"key"`
	Reason    string `json:"reason"`
}

// PullResult aggregates one sheet-to-store reconciliation run.
type PullResult struct {
	Tab        string         `json:"tab"`
	Rows       int            `json:"rows"`
	Created    int            `json:"created"`
	Updated    int            `json:"updated"`
	Failed     int            `json:"failed"`
	Errors     []PullRowError `json:"errors,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

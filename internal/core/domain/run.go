package domain

import "time"

type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

type Run struct {
	ID             string    `json:"id"`
	Trigger        string    `json:"trigger"`
	SourceURL      string    `json:"source_url,omitempty"`
	Artifact       string    `json:"artifact,omitempty"`
	Status         RunStatus `json:"status"`
	Establishments int       `json:"establishments"`
	MatchedRows    int       `json:"matched_rows"`
	FormatErrors   int       `json:"format_errors"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RunSummary carries the outcome counters of a finished run.
type RunSummary struct {
	SourceURL      string
	Artifact       string
	Establishments int
	MatchedRows    int
	FormatErrors   int
}

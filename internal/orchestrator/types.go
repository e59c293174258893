package orchestrator

import "time"

// Status values used across BootstrapResult and PhaseResult.
const (
	StatusOK         = "ok"
	StatusError      = "error"
	StatusInProgress = "in-progress"
	StatusSkipped    = "skipped"
)

// Phase names, in execution order.
const (
	PhaseContentType = "content_type"
	PhaseNotify      = "notify"
)

// BootstrapResult is the aggregate result of a full bootstrap run. It is not
// modified after RunBootstrap returns.
type BootstrapResult struct {
	Status      string                 `json:"status"` // "ok", "error", "in-progress"
	Outcome     string                 `json:"outcome,omitempty"`
	ContentType *ContentTypeSummary    `json:"contentType,omitempty"`
	Phases      map[string]PhaseResult `json:"phases"`
	StartedAt   time.Time              `json:"startedAt"`
	FinishedAt  time.Time              `json:"finishedAt"`

	err error
}

// Err returns the first phase failure, or nil.
func (r *BootstrapResult) Err() error {
	return r.err
}

// ContentTypeSummary describes the content type as last seen by the run.
type ContentTypeSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version int    `json:"version"`
	Status  string `json:"status"`
}

// PhaseResult represents the outcome of a single bootstrap phase.
type PhaseResult struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "error", "skipped"
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ProbeResult is returned by RunDeepHealth for each dependency.
type ProbeResult struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

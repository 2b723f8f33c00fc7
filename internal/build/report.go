package build

import (
	"encoding/json"
	"time"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailed  Outcome = "failed"
)

// Issue is one document- or link-scoped problem collected during a build.
// Issues never abort the build; they are reported alongside the artifact.
type Issue struct {
	Severity string         `json:"severity"`
	Category string         `json:"category"`
	Message  string         `json:"message"`
	Context  map[string]any `json:"context,omitempty"`
}

// Report captures high-level metrics about one build run.
type Report struct {
	BuildID string    `json:"build_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`

	Scanned  int `json:"scanned"`
	Rendered int `json:"rendered"`
	Excluded int `json:"excluded"`

	Issues  []Issue `json:"issues,omitempty"`
	Outcome Outcome `json:"outcome"`

	StageDurations map[string]time.Duration `json:"stage_durations_ns,omitempty"`
}

// AddIssue records an error as a structured report issue.
func (r *Report) AddIssue(err error) {
	if err == nil {
		return
	}
	issue := Issue{
		Severity: string(apperrors.SeverityError),
		Category: string(apperrors.GetCategory(err)),
		Message:  err.Error(),
	}
	if be, ok := err.(*apperrors.BuildError); ok {
		issue.Severity = string(be.Severity)
		issue.Message = be.Message
		if be.Cause != nil {
			issue.Message += ": " + be.Cause.Error()
		}
		if len(be.Context) > 0 {
			issue.Context = be.Context
		}
	}
	r.Issues = append(r.Issues, issue)
}

// Duration returns the wall time of the build.
func (r *Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// finalize derives the overall outcome from the collected issues.
func (r *Report) finalize(failed bool) {
	switch {
	case failed:
		r.Outcome = OutcomeFailed
	case len(r.Issues) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// MarshalPayload serializes the report for the build history store.
func (r *Report) MarshalPayload() ([]byte, error) {
	return json.Marshal(r)
}

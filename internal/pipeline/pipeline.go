// Package pipeline runs the ordered, fail-fast release step sequence for a
// single tag.
package pipeline

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lunaryorn/tagship/internal/artifact"
)

// Status is the lifecycle state of a run or a single step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Run is one complete execution of the step sequence for a single tag.
type Run struct {
	ID         string
	Tag        string
	Version    string
	Status     Status
	Steps      []StepResult
	Artifact   *artifact.Artifact
	StartedAt  time.Time
	FinishedAt time.Time
}

// StepResult records the outcome of one step.
type StepResult struct {
	Name     string
	Status   Status
	Duration time.Duration
	Error    string
}

// NewRun creates a pending run for the given tag. The version is the tag
// name without its leading "v".
func NewRun(tag string) *Run {
	return &Run{
		ID:      uuid.NewString(),
		Tag:     tag,
		Version: strings.TrimPrefix(tag, "v"),
		Status:  StatusPending,
	}
}

// Duration returns the total wall-clock duration of the run.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailedStep returns the first failed step, or nil if none failed.
func (r *Run) FailedStep() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StatusFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

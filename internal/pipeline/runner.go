package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lunaryorn/tagship/internal/artifact"
	"github.com/lunaryorn/tagship/internal/publish"
	"github.com/lunaryorn/tagship/internal/secrets"
	"github.com/lunaryorn/tagship/internal/workspace"
)

// Runner executes the configured step sequence for one tag: the build steps
// in order, artifact verification, then publication. The first failure
// aborts everything after it, so a failed run never publishes.
type Runner struct {
	root      string
	config    *workspace.Config
	publisher publish.Publisher
	out       io.Writer
	verbose   bool
	redact    []string
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Publisher performs the final publish step. Nil skips publication.
	Publisher publish.Publisher
	// Out receives runner and step output. Defaults to os.Stdout.
	Out io.Writer
	// Verbose enables detailed output.
	Verbose bool
	// Redact lists secret values masked in step output.
	Redact []string
}

// NewRunner creates a runner for the workspace rooted at root.
func NewRunner(root string, config *workspace.Config, opts RunnerOptions) *Runner {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Runner{
		root:      root,
		config:    config,
		publisher: opts.Publisher,
		out:       out,
		verbose:   opts.Verbose,
		redact:    opts.Redact,
	}
}

// Run executes the full pipeline for tag. The returned Run records every
// step outcome even when the pipeline fails.
func (r *Runner) Run(ctx context.Context, tag string) (*Run, error) {
	run := NewRun(tag)
	run.Status = StatusRunning
	run.StartedAt = time.Now()

	stepOut := io.Writer(r.out)
	if len(r.redact) > 0 {
		redactor := secrets.NewRedactor(r.out, r.redact...)
		defer func() { _ = redactor.Flush() }()
		stepOut = redactor
	}

	executor, err := NewExecutor(r.root, stepOut, []string{
		"TAGSHIP_TAG=" + run.Tag,
		"TAGSHIP_VERSION=" + run.Version,
		"TAGSHIP_RUN_ID=" + run.ID,
	})
	if err != nil {
		run.Status = StatusFailed
		run.FinishedAt = time.Now()
		return run, err
	}

	for i, step := range r.config.Steps {
		fmt.Fprintf(r.out, "▶️  Step %d/%d: %s\n", i+1, len(r.config.Steps), step.Name)
		if r.verbose {
			fmt.Fprintf(r.out, "   $ %s\n", step.Run)
		}

		started := time.Now()
		err := executor.RunStep(ctx, step)
		result := StepResult{
			Name:     step.Name,
			Status:   StatusSucceeded,
			Duration: time.Since(started),
		}
		if err != nil {
			result.Status = StatusFailed
			result.Error = err.Error()
			run.Steps = append(run.Steps, result)
			r.skipRemaining(run, i+1)
			run.Status = StatusFailed
			run.FinishedAt = time.Now()
			return run, fmt.Errorf("step %q failed: %w", step.Name, err)
		}
		run.Steps = append(run.Steps, result)
	}

	art, err := artifact.Describe(filepath.Join(r.root, r.config.ArtifactPath()))
	if err != nil {
		run.Status = StatusFailed
		run.FinishedAt = time.Now()
		return run, fmt.Errorf("packaging did not produce the expected artifact: %w", err)
	}
	run.Artifact = art
	if r.verbose {
		fmt.Fprintf(r.out, "📦 Artifact: %s (%d bytes, sha256 %s)\n", art.Name, art.Size, art.SHA256)
	}

	if r.publisher != nil {
		fmt.Fprintf(r.out, "🚀 Publishing %s to release %s...\n", art.Name, run.Tag)
		result, err := r.publisher.Publish(ctx, &publish.Options{
			Tag:       run.Tag,
			Owner:     r.config.Repository.Owner,
			Repo:      r.config.Repository.Name,
			Artifact:  art,
			Overwrite: r.config.Publish.Overwrite,
			Draft:     r.config.Publish.Draft,
			Verbose:   r.verbose,
		})
		if err != nil {
			run.Status = StatusFailed
			run.FinishedAt = time.Now()
			return run, fmt.Errorf("publish failed: %w", err)
		}
		if result.Replaced {
			fmt.Fprintf(r.out, "   Replaced existing asset\n")
		}
		if result.AssetURL != "" {
			fmt.Fprintf(r.out, "   Asset: %s\n", result.AssetURL)
		}
	}

	run.Status = StatusSucceeded
	run.FinishedAt = time.Now()
	return run, nil
}

// skipRemaining marks configured steps after index from as skipped.
func (r *Runner) skipRemaining(run *Run, from int) {
	for _, step := range r.config.Steps[from:] {
		run.Steps = append(run.Steps, StepResult{
			Name:   step.Name,
			Status: StatusSkipped,
		})
	}
}

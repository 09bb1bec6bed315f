package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lunaryorn/tagship/internal/pipeline"
	"github.com/lunaryorn/tagship/internal/publish"
	"github.com/lunaryorn/tagship/internal/secrets"
	"github.com/lunaryorn/tagship/internal/toolchain"
	"github.com/lunaryorn/tagship/internal/trigger"
	"github.com/lunaryorn/tagship/internal/workspace"
)

var (
	runVerbose bool
	runForce   bool
	runDryRun  bool
)

var runCmd = &cobra.Command{
	Use:   "run <tag>",
	Short: "Run the release pipeline for a tag",
	Long: `Run the full release pipeline for the given tag: every configured step
in order, artifact verification, and publication.

Steps run one at a time and the first failure aborts the run; nothing is
published for a failed run. A tag that already completed successfully is
skipped unless --force is given.

Examples:
  tagship run v1.12                # Full pipeline for v1.12
  tagship run v1.12 --force        # Re-run a completed tag
  tagship run v1.12 --dry-run      # Build and package, skip publication
  tagship run v1.12 --verbose      # Show step commands and artifact details`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Show detailed output")
	runCmd.Flags().BoolVarP(&runForce, "force", "f", false, "Re-run even if the tag already completed")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Run all build steps but skip publication")
}

func runRun(cmd *cobra.Command, args []string) error {
	tag := args[0]
	ctx := cmd.Context()

	root, config, err := loadWorkspace()
	if err != nil {
		return err
	}

	if !trigger.Matches(config.Trigger.TagPattern, tag) {
		return fmt.Errorf("tag %q does not match trigger pattern %q", tag, config.Trigger.TagPattern)
	}

	store, err := trigger.OpenStore(root)
	if err != nil {
		return err
	}

	if store.Completed(tag) && !runForce {
		fmt.Printf("⏭️  Tag %s already released, nothing to do (use --force to re-run)\n", tag)
		return nil
	}

	opts := executeOptions{
		verbose: runVerbose,
		dryRun:  runDryRun,
	}
	run, err := executePipeline(ctx, root, config, store, tag, opts)
	if err != nil {
		if run != nil {
			if failed := run.FailedStep(); failed != nil {
				return fmt.Errorf("❌ Pipeline failed at step %q: %w", failed.Name, err)
			}
		}
		return fmt.Errorf("❌ Pipeline failed: %w", err)
	}

	fmt.Printf("✅ Released %s in %s\n", tag, run.Duration().Round(time.Millisecond))
	return nil
}

// executeOptions controls a single pipeline execution.
type executeOptions struct {
	verbose bool
	dryRun  bool
}

// executePipeline runs the pipeline for a tag and records the outcome in the
// run-state store. The serve and watch commands share it with run.
func executePipeline(ctx context.Context, root string, config *workspace.Config, store *trigger.Store, tag string, opts executeOptions) (*pipeline.Run, error) {
	if len(config.Toolchain.Requires) > 0 {
		if _, err := toolchain.Check(config.Toolchain.Requires); err != nil {
			return nil, err
		}
		if opts.verbose {
			fmt.Printf("🔧 Toolchain OK: %v\n", config.Toolchain.Requires)
		}
	}

	var (
		publisher publish.Publisher
		redact    []string
	)
	if opts.dryRun {
		fmt.Println("🧪 Dry run: publication disabled")
	} else {
		var err error
		publisher, redact, err = buildPublisher(config)
		if err != nil {
			return nil, err
		}
	}

	runner := pipeline.NewRunner(root, config, pipeline.RunnerOptions{
		Publisher: publisher,
		Verbose:   opts.verbose,
		Redact:    redact,
	})

	fmt.Printf("🚢 Releasing %s (%s, %d steps)\n", tag, config.Project.Name, len(config.Steps))
	run, runErr := runner.Run(ctx, tag)

	// Dry runs never publish, so they must not count towards the
	// once-per-tag guarantee.
	if !opts.dryRun {
		record := trigger.Record{
			RunID:       run.ID,
			Tag:         run.Tag,
			Status:      string(run.Status),
			CompletedAt: time.Now(),
		}
		if run.Artifact != nil {
			record.Artifact = run.Artifact.Name
		}
		if err := store.Put(record); err != nil {
			fmt.Printf("⚠️  Failed to record run state: %v\n", err)
		}
	}

	if runErr != nil {
		return run, runErr
	}
	return run, nil
}

// buildPublisher constructs the configured publisher and returns the secret
// values that must be redacted from step output.
func buildPublisher(config *workspace.Config) (publish.Publisher, []string, error) {
	factoryConfig := publish.FactoryConfig{Dir: config.Publish.Dir}

	var redact []string
	if config.Publish.Publisher == "github" {
		token, err := secrets.Token()
		if err != nil {
			return nil, nil, err
		}
		factoryConfig.Token = token
		redact = append(redact, token)
	}

	publisher, err := publish.GetPublisher(config.Publish.Publisher, factoryConfig)
	if err != nil {
		return nil, nil, err
	}
	return publisher, redact, nil
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lunaryorn/tagship/internal/trigger"
	"github.com/lunaryorn/tagship/internal/watcher"
)

var (
	watchVerbose bool
	watchDryRun  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the local repository for new tags",
	Long: `Watches .git/refs/tags in the workspace and runs the pipeline whenever a
tag matching the trigger pattern is created. This is the local counterpart
of 'tagship serve' for workflows without a webhook.

Examples:
  tagship watch
  tagship watch --dry-run      # Build on new tags, never publish`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Show detailed output")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "Run build steps but skip publication")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, config, err := loadWorkspace()
	if err != nil {
		return err
	}

	store, err := trigger.OpenStore(root)
	if err != nil {
		return err
	}

	tagWatcher, err := watcher.NewTagWatcher(root, watcher.DefaultDebounce)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tagWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start tag watcher: %w", err)
	}
	defer tagWatcher.Stop()

	fmt.Printf("👀 Watching for tags matching %q (Ctrl+C to stop)\n", config.Trigger.TagPattern)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n👋 Stopped watching.")
			return nil
		case err := <-tagWatcher.Errors():
			fmt.Printf("⚠️  Watch error: %v\n", err)
		case event := <-tagWatcher.Events():
			triggerEvent := trigger.Event{Tag: event.Tag, ReceivedAt: time.Now()}
			if !trigger.ShouldRun(triggerEvent, config.Trigger.TagPattern, store) {
				if watchVerbose {
					fmt.Printf("⏭️  Ignoring tag %s\n", event.Tag)
				}
				continue
			}

			fmt.Printf("🔔 New tag: %s\n", event.Tag)
			opts := executeOptions{verbose: watchVerbose, dryRun: watchDryRun}
			if _, err := executePipeline(ctx, root, config, store, event.Tag, opts); err != nil {
				fmt.Printf("❌ Run for %s failed: %v\n", event.Tag, err)
				continue
			}
			fmt.Printf("✅ Released %s\n", event.Tag)
		}
	}
}

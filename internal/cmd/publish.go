package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lunaryorn/tagship/internal/artifact"
	"github.com/lunaryorn/tagship/internal/publish"
	"github.com/lunaryorn/tagship/internal/trigger"
	"github.com/lunaryorn/tagship/internal/ui"
)

var (
	publishOverwrite bool
	publishYes       bool
)

var publishCmd = &cobra.Command{
	Use:   "publish <tag>",
	Short: "Publish an already packaged artifact for a tag",
	Long: `Attaches the packaged artifact to the release for the given tag without
running any build steps. The artifact must already exist at the configured
path, e.g. from an earlier 'tagship run --dry-run' or 'tagship pack'.

Examples:
  tagship publish v1.12
  tagship publish v1.12 --overwrite --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().BoolVar(&publishOverwrite, "overwrite", false, "Replace an existing asset with the same name")
	publishCmd.Flags().BoolVarP(&publishYes, "yes", "y", false, "Do not ask for confirmation")
}

func runPublish(cmd *cobra.Command, args []string) error {
	tag := args[0]
	ctx := cmd.Context()

	root, config, err := loadWorkspace()
	if err != nil {
		return err
	}

	if !trigger.Matches(config.Trigger.TagPattern, tag) {
		return fmt.Errorf("tag %q does not match trigger pattern %q", tag, config.Trigger.TagPattern)
	}

	art, err := artifact.Describe(filepath.Join(root, config.ArtifactPath()))
	if err != nil {
		return fmt.Errorf("no packaged artifact to publish: %w", err)
	}

	overwrite := publishOverwrite || config.Publish.Overwrite
	if overwrite && !publishYes {
		ok, err := ui.Confirm(fmt.Sprintf("Replace the %s asset on release %s if it exists", art.Name, tag), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	publisher, _, err := buildPublisher(config)
	if err != nil {
		return err
	}

	fmt.Printf("🚀 Publishing %s to release %s...\n", art.Name, tag)
	result, err := publisher.Publish(ctx, &publish.Options{
		Tag:       tag,
		Owner:     config.Repository.Owner,
		Repo:      config.Repository.Name,
		Artifact:  art,
		Overwrite: overwrite,
		Draft:     config.Publish.Draft,
	})
	if err != nil {
		return fmt.Errorf("❌ Publish failed: %w", err)
	}

	if result.Replaced {
		fmt.Println("   Replaced existing asset")
	}
	fmt.Printf("✅ Published: %s\n", result.AssetURL)
	return nil
}

package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tagship",
	Short: "Tagship - tag-triggered release pipelines",
	Long: `Tagship runs a release pipeline when a version tag appears: it executes
the configured build steps in order, verifies the packaged artifact, and
attaches it to a release for the tag. Any failing step aborts the run and
nothing is published.

The pipeline is described by a tagship.yaml file in the workspace root.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

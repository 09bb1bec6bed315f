package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lunaryorn/tagship/internal/secrets"
	"github.com/lunaryorn/tagship/internal/toolchain"
	"github.com/lunaryorn/tagship/internal/trigger"
)

var statusCmd = &cobra.Command{
	Use:   "status [tag]",
	Short: "Show workspace and pipeline run status",
	Long: `Without a tag, shows the workspace health: trigger pattern, publish token
presence, and the versions of the required tools. With a tag, shows the
recorded outcome for that tag. Use 'tagship status --forget <tag>' to clear
a record so the tag can trigger again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

var statusForget bool

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusForget, "forget", false, "Clear the record for the given tag")
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, config, err := loadWorkspace()
	if err != nil {
		return err
	}

	store, err := trigger.OpenStore(root)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if statusForget {
			return fmt.Errorf("--forget requires a tag")
		}

		fmt.Printf("Project:   %s\n", config.Project.Name)
		fmt.Printf("Trigger:   %s\n", config.Trigger.TagPattern)
		if secrets.HasToken() {
			fmt.Println("Token:     ✅ present")
		} else {
			fmt.Printf("Token:     ❌ missing (set %s)\n", secrets.TokenEnvVars[0])
		}
		for _, name := range config.Toolchain.Requires {
			version, err := toolchain.Version(cmd.Context(), name)
			if err != nil {
				fmt.Printf("Tool:      ❌ %s not found\n", name)
				continue
			}
			fmt.Printf("Tool:      ✅ %s\n", version)
		}
		return nil
	}

	tag := args[0]
	if statusForget {
		if err := store.Forget(tag); err != nil {
			return err
		}
		fmt.Printf("✅ Cleared record for %s\n", tag)
		return nil
	}

	record, ok := store.Get(tag)
	if !ok {
		fmt.Printf("Tag %s has not run yet\n", tag)
		return nil
	}

	fmt.Printf("Tag:       %s\n", record.Tag)
	fmt.Printf("Status:    %s\n", record.Status)
	fmt.Printf("Run ID:    %s\n", record.RunID)
	if record.Artifact != "" {
		fmt.Printf("Artifact:  %s\n", record.Artifact)
	}
	fmt.Printf("Completed: %s\n", record.CompletedAt.Format("2006-01-02 15:04:05"))
	return nil
}

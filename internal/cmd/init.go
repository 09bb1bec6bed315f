package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lunaryorn/tagship/internal/ui"
	"github.com/lunaryorn/tagship/internal/workspace"
)

var (
	initOwner string
	initRepo  string
	initYes   bool
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a tagship.yaml in the current directory",
	Long: `Creates a tagship.yaml scaffold with a typical build-compile-package step
sequence. Missing values are prompted for interactively unless --yes is set.

Examples:
  tagship init my-extension --owner me --repo my-extension
  tagship init                     # prompt for everything`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initOwner, "owner", "", "Repository owner on the hosting platform")
	initCmd.Flags().StringVar(&initRepo, "repo", "", "Repository name on the hosting platform")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept defaults without prompting")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(cwd, workspace.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", workspace.ConfigFileName)
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		name = filepath.Base(cwd)
	}
	if err := workspace.ValidateName(name); err != nil {
		if initYes {
			return fmt.Errorf("invalid project name %q: %w", name, err)
		}
		name, err = ui.AskText("Project name", "")
		if err != nil {
			return err
		}
		if err := workspace.ValidateName(name); err != nil {
			return fmt.Errorf("invalid project name %q: %w", name, err)
		}
	}

	owner, repo := initOwner, initRepo
	if !initYes {
		if owner == "" {
			if owner, err = ui.AskText("Repository owner", ""); err != nil {
				return err
			}
		}
		if repo == "" {
			if repo, err = ui.AskText("Repository name", name); err != nil {
				return err
			}
		}
	}
	if owner == "" || repo == "" {
		return fmt.Errorf("repository owner and name are required (use --owner and --repo)")
	}

	config := workspace.NewConfig(name)
	config.Repository = workspace.RepositoryConfig{Owner: owner, Name: repo}
	config.Toolchain.Requires = []string{"npm", "make"}
	config.Steps = []workspace.StepConfig{
		{Name: "install", Run: "npm ci"},
		{Name: "compile", Run: "npm run compile"},
		{Name: "package", Run: "make dist"},
	}
	config.Artifact.Dir = "dist"
	config.Artifact.Name = name + ".zip"

	if err := config.Save(cwd); err != nil {
		return err
	}

	fmt.Printf("✅ Created %s\n", workspace.ConfigFileName)
	fmt.Println("   Edit the steps to match your build, then check it with 'tagship validate'.")
	return nil
}

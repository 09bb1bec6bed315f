package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lunaryorn/tagship/internal/artifact"
)

var (
	packFrom     string
	packChecksum bool
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Package the build output into the release archive",
	Long: `Zips the build output directory into the artifact named in tagship.yaml.

This is the built-in packaging step for workspaces without their own
packaging command; a configured "package" step takes its place in full runs.

Examples:
  tagship pack                 # Package ./build into the artifact
  tagship pack --from out      # Package ./out instead
  tagship pack --checksum      # Also write a .sha256 file`,
	RunE: runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVar(&packFrom, "from", "build", "Directory with the files to package")
	packCmd.Flags().BoolVar(&packChecksum, "checksum", false, "Write a sha256 checksum file next to the archive")
}

func runPack(cmd *cobra.Command, args []string) error {
	root, config, err := loadWorkspace()
	if err != nil {
		return err
	}

	if config.ArtifactName() == "" {
		return fmt.Errorf("no artifact name configured (set artifact.name or project.uuid)")
	}

	srcDir := filepath.Join(root, packFrom)
	destPath := filepath.Join(root, config.ArtifactPath())

	fmt.Printf("📦 Packaging %s -> %s\n", packFrom, config.ArtifactPath())

	art, err := artifact.Pack(srcDir, destPath, true)
	if err != nil {
		return fmt.Errorf("❌ Packaging failed: %w", err)
	}

	fmt.Printf("✅ Packaged %s (%d bytes)\n", art.Name, art.Size)
	fmt.Printf("   sha256: %s\n", art.SHA256)

	if packChecksum {
		path, err := art.WriteChecksumFile()
		if err != nil {
			return err
		}
		fmt.Printf("   Checksum file: %s\n", path)
	}

	return nil
}

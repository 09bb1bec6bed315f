package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunaryorn/tagship/internal/workspace"
)

// findWorkspaceRoot walks up from the working directory until it finds a
// tagship.yaml.
func findWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, workspace.ConfigFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("not a tagship workspace (no %s found)", workspace.ConfigFileName)
}

// loadWorkspace locates the workspace root and loads its configuration.
func loadWorkspace() (string, *workspace.Config, error) {
	root, err := findWorkspaceRoot()
	if err != nil {
		return "", nil, err
	}

	config, err := workspace.LoadConfig(root)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load %s: %w", workspace.ConfigFileName, err)
	}

	return root, config, nil
}

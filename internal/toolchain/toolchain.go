// Package toolchain verifies the external tools the pipeline steps depend
// on before any step runs, so a missing runtime fails the run early instead
// of halfway through.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Tool is an external command the pipeline requires.
type Tool struct {
	// Name is the executable name looked up in PATH.
	Name string
	// Path is where the executable was found, empty when missing.
	Path string
}

// Check looks up every required tool in PATH. It returns all findings and
// an error naming the missing tools, if any.
func Check(required []string) ([]Tool, error) {
	tools := make([]Tool, 0, len(required))
	var missing []string

	for _, name := range required {
		tool := Tool{Name: name}
		if path, err := exec.LookPath(name); err == nil {
			tool.Path = path
		} else {
			missing = append(missing, name)
		}
		tools = append(tools, tool)
	}

	if len(missing) > 0 {
		return tools, fmt.Errorf("required tools not found in PATH: %s", strings.Join(missing, ", "))
	}

	return tools, nil
}

// Version runs "<name> --version" and returns the first output line.
func Version(ctx context.Context, name string) (string, error) {
	cmd := exec.CommandContext(ctx, name, "--version")

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", name, err)
	}

	version := strings.TrimSpace(string(output))
	if i := strings.IndexByte(version, '\n'); i >= 0 {
		version = version[:i]
	}
	return version, nil
}

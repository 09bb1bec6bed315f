package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/lunaryorn/tagship/internal/workspace"
)

// Executor runs step commands in a POSIX shell.
type Executor struct {
	workspaceRoot string
	shellPath     string
	env           []string
	out           io.Writer
}

// NewExecutor creates an executor rooted at workspaceRoot. Step output is
// written to out, which may redact secrets. extraEnv entries are appended to
// the process environment of every step.
func NewExecutor(workspaceRoot string, out io.Writer, extraEnv []string) (*Executor, error) {
	shellPath, err := findShell()
	if err != nil {
		return nil, fmt.Errorf("shell not found: %w", err)
	}

	return &Executor{
		workspaceRoot: workspaceRoot,
		shellPath:     shellPath,
		env:           append(os.Environ(), extraEnv...),
		out:           out,
	}, nil
}

// RunStep executes a single step command and fails if it exits non-zero.
func (e *Executor) RunStep(ctx context.Context, step workspace.StepConfig) error {
	cmd := exec.CommandContext(ctx, e.shellPath, "-c", step.Run)
	cmd.Dir = e.workspaceRoot
	if step.Dir != "" {
		cmd.Dir = filepath.Join(e.workspaceRoot, step.Dir)
	}
	cmd.Env = e.env
	cmd.Stdout = e.out
	cmd.Stderr = e.out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("step command failed: %w", err)
	}

	return nil
}

// findShell locates a POSIX shell.
func findShell() (string, error) {
	if path, err := exec.LookPath("sh"); err == nil {
		return path, nil
	}
	if path, err := exec.LookPath("bash"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("neither sh nor bash found in PATH")
}

package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunaryorn/tagship/pkg/xos"
)

// LocalPublisher copies release assets into a directory on the local
// filesystem, one subdirectory per tag. Useful for dry runs and air-gapped
// setups without a hosting platform.
type LocalPublisher struct {
	baseDir string
}

// NewLocalPublisher creates a publisher rooted at baseDir.
func NewLocalPublisher(baseDir string) *LocalPublisher {
	return &LocalPublisher{baseDir: baseDir}
}

// Name returns the publisher name.
func (p *LocalPublisher) Name() string {
	return "local"
}

// Publish copies the artifact to {baseDir}/{tag}/{name} together with a
// checksum file.
func (p *LocalPublisher) Publish(_ context.Context, opts *Options) (*Result, error) {
	releaseDir := filepath.Join(p.baseDir, opts.Tag)
	if err := os.MkdirAll(releaseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create release directory: %w", err)
	}

	target := filepath.Join(releaseDir, opts.Artifact.Name)
	replaced := false
	if _, err := os.Stat(target); err == nil {
		if !opts.Overwrite {
			return nil, fmt.Errorf("asset %s already published for %s (enable overwrite to replace it)", opts.Artifact.Name, opts.Tag)
		}
		replaced = true
	}

	if err := xos.CopyFile(opts.Artifact.Path, target, 0644); err != nil {
		return nil, fmt.Errorf("failed to copy artifact: %w", err)
	}

	checksum := fmt.Sprintf("%s  %s\n", opts.Artifact.SHA256, opts.Artifact.Name)
	if err := xos.WriteFile(target+".sha256", []byte(checksum), 0644); err != nil {
		return nil, fmt.Errorf("failed to write checksum: %w", err)
	}

	return &Result{
		ReleaseURL: releaseDir,
		AssetURL:   target,
		Replaced:   replaced,
	}, nil
}

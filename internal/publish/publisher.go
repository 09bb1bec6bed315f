// Package publish attaches the packaged artifact to a release record for
// the triggering tag.
package publish

import (
	"context"
	"fmt"
	"sort"

	"github.com/lunaryorn/tagship/internal/artifact"
)

// Options contains options for publishing a release asset.
type Options struct {
	// Tag is the tag name the release is associated with.
	Tag string
	// Owner and Repo identify the hosting-platform repository.
	Owner string
	Repo  string
	// Artifact is the packaged archive to attach.
	Artifact *artifact.Artifact
	// Overwrite replaces an existing asset with the same name instead of
	// failing.
	Overwrite bool
	// Draft creates the release as a draft when it does not exist yet.
	Draft bool
	// Verbose enables detailed output.
	Verbose bool
}

// Result describes the published release asset.
type Result struct {
	// ReleaseURL is a browsable URL of the release record.
	ReleaseURL string
	// AssetURL is the download URL of the attached asset.
	AssetURL string
	// Replaced is true when an existing asset with the same name was
	// overwritten.
	Replaced bool
}

// Publisher is the interface that all publishers must implement.
type Publisher interface {
	// Publish attaches the artifact to the release for the tag.
	Publish(ctx context.Context, opts *Options) (*Result, error)

	// Name returns the publisher name (e.g., "github").
	Name() string
}

// FactoryConfig carries the credentials and targets publishers need.
type FactoryConfig struct {
	// Token is the opaque publish credential, required by "github".
	Token string
	// Dir is the target directory, required by "local".
	Dir string
}

// Registry of available publishers.
var publishers = map[string]func(cfg FactoryConfig) (Publisher, error){
	"github": func(cfg FactoryConfig) (Publisher, error) {
		if cfg.Token == "" {
			return nil, fmt.Errorf("github publisher requires a token")
		}
		return NewGitHubPublisher(cfg.Token), nil
	},
	"local": func(cfg FactoryConfig) (Publisher, error) {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("local publisher requires a target directory")
		}
		return NewLocalPublisher(cfg.Dir), nil
	},
}

// GetPublisher returns a publisher instance by name.
func GetPublisher(name string, cfg FactoryConfig) (Publisher, error) {
	factory, ok := publishers[name]
	if !ok {
		return nil, fmt.Errorf("unknown publisher: %s", name)
	}
	return factory(cfg)
}

// RegisterPublisher adds a new publisher to the registry.
func RegisterPublisher(name string, factory func(cfg FactoryConfig) (Publisher, error)) {
	publishers[name] = factory
}

// ListPublishers returns all registered publisher names, sorted.
func ListPublishers() []string {
	names := make([]string, 0, len(publishers))
	for name := range publishers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

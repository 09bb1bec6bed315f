// Package workspace provides release workspace configuration management.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lunaryorn/tagship/pkg/xos"
)

const ConfigFileName = "tagship.yaml"

// DefaultTagPattern matches version tags like v1.2 or v23.
const DefaultTagPattern = "v*"

// Config represents the release workspace configuration.
type Config struct {
	Version    string           `yaml:"version"`
	Project    ProjectMetadata  `yaml:"project"`
	Repository RepositoryConfig `yaml:"repository"`
	Trigger    TriggerConfig    `yaml:"trigger"`
	Toolchain  ToolchainConfig  `yaml:"toolchain,omitempty"`
	Steps      []StepConfig     `yaml:"steps"`
	Artifact   ArtifactConfig   `yaml:"artifact"`
	Publish    PublishConfig    `yaml:"publish"`
}

// ProjectMetadata contains project-level metadata.
type ProjectMetadata struct {
	Name string `yaml:"name"`
	// UUID is the extension UUID, e.g. "jetbrains-search-provider@swsnr.de".
	// When set, the default artifact name is "<uuid>.shell-extension.zip".
	UUID string `yaml:"uuid,omitempty"`
}

// RepositoryConfig identifies the hosting-platform repository releases are
// published to.
type RepositoryConfig struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

// TriggerConfig controls which tags start a pipeline run.
type TriggerConfig struct {
	// TagPattern is a glob matched against tag names, default "v*".
	TagPattern string `yaml:"tagPattern,omitempty"`
}

// ToolchainConfig lists external tools the pipeline steps depend on.
type ToolchainConfig struct {
	Requires []string `yaml:"requires,omitempty"`
}

// StepConfig is one named shell step of the pipeline.
type StepConfig struct {
	Name string `yaml:"name"`
	Run  string `yaml:"run"`
	// Dir is the working directory relative to the workspace root.
	Dir string `yaml:"dir,omitempty"`
}

// ArtifactConfig describes the archive the packaging step must produce.
type ArtifactConfig struct {
	// Dir is the directory the packaging step writes into, relative to the
	// workspace root.
	Dir string `yaml:"dir,omitempty"`
	// Name is the literal artifact file name. Empty means derived from the
	// project UUID.
	Name string `yaml:"name,omitempty"`
}

// PublishConfig controls the publish step.
type PublishConfig struct {
	// Publisher names the registered publisher, e.g. "github" or "local".
	Publisher string `yaml:"publisher,omitempty"`
	// Overwrite replaces an existing release asset with the same name.
	Overwrite bool `yaml:"overwrite,omitempty"`
	Draft     bool `yaml:"draft,omitempty"`
	// Dir is the target directory for the "local" publisher.
	Dir string `yaml:"dir,omitempty"`
}

// NewConfig creates a new workspace configuration with defaults filled in.
func NewConfig(name string) *Config {
	return &Config{
		Version: "1",
		Project: ProjectMetadata{Name: name},
		Trigger: TriggerConfig{TagPattern: DefaultTagPattern},
		Publish: PublishConfig{Publisher: "github", Overwrite: true},
	}
}

// LoadConfig loads the workspace configuration from the given directory.
func LoadConfig(dir string) (*Config, error) {
	return LoadConfigFrom(filepath.Join(dir, ConfigFileName))
}

// LoadConfigFrom loads the workspace configuration from the specified file.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

// Save saves the configuration to the default location in dir.
func (c *Config) Save(dir string) error {
	return c.SaveTo(filepath.Join(dir, ConfigFileName))
}

// SaveTo saves the configuration to the specified file atomically.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := xos.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Trigger.TagPattern == "" {
		c.Trigger.TagPattern = DefaultTagPattern
	}
	if c.Publish.Publisher == "" {
		c.Publish.Publisher = "github"
	}
}

// ArtifactName returns the literal file name of the release artifact.
func (c *Config) ArtifactName() string {
	if c.Artifact.Name != "" {
		return c.Artifact.Name
	}
	if c.Project.UUID != "" {
		return c.Project.UUID + ".shell-extension.zip"
	}
	return ""
}

// ArtifactPath returns the artifact path relative to the workspace root.
func (c *Config) ArtifactPath() string {
	return filepath.Join(c.Artifact.Dir, c.ArtifactName())
}

// StepNames returns the configured step names in order.
func (c *Config) StepNames() []string {
	names := make([]string, 0, len(c.Steps))
	for _, step := range c.Steps {
		names = append(names, step.Name)
	}
	return names
}

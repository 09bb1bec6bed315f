package workspace

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	// namePattern matches valid kebab-case names.
	namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// Validator validates workspace configurations.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(config *Config) error {
	if err := v.validateProject(&config.Project); err != nil {
		return fmt.Errorf("project validation failed: %w", err)
	}

	if err := v.validateRepository(&config.Repository); err != nil {
		return fmt.Errorf("repository validation failed: %w", err)
	}

	if err := v.validateTrigger(&config.Trigger); err != nil {
		return fmt.Errorf("trigger validation failed: %w", err)
	}

	if err := v.validateSteps(config.Steps); err != nil {
		return fmt.Errorf("steps validation failed: %w", err)
	}

	if config.ArtifactName() == "" {
		return fmt.Errorf("artifact name is required (set artifact.name or project.uuid)")
	}

	return nil
}

func (v *Validator) validateProject(p *ProjectMetadata) error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}

	if err := ValidateName(p.Name); err != nil {
		return fmt.Errorf("invalid project name: %w", err)
	}

	if p.UUID != "" && !strings.Contains(p.UUID, "@") {
		return fmt.Errorf("extension uuid %q must contain '@'", p.UUID)
	}

	return nil
}

func (v *Validator) validateRepository(r *RepositoryConfig) error {
	if r.Owner == "" {
		return fmt.Errorf("repository owner is required")
	}
	if r.Name == "" {
		return fmt.Errorf("repository name is required")
	}
	return nil
}

func (v *Validator) validateTrigger(t *TriggerConfig) error {
	pattern := t.TagPattern
	if pattern == "" {
		pattern = DefaultTagPattern
	}

	// path.Match reports malformed patterns regardless of the name matched.
	if _, err := path.Match(pattern, "v1.0"); err != nil {
		return fmt.Errorf("invalid tag pattern %q: %w", pattern, err)
	}

	return nil
}

func (v *Validator) validateSteps(steps []StepConfig) error {
	if len(steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	seen := make(map[string]bool, len(steps))
	for i, step := range steps {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i+1)
		}
		if err := ValidateName(step.Name); err != nil {
			return fmt.Errorf("step %d: invalid name: %w", i+1, err)
		}
		if step.Run == "" {
			return fmt.Errorf("step %q: run command is required", step.Name)
		}
		if seen[step.Name] {
			return fmt.Errorf("step %q: duplicate step name", step.Name)
		}
		seen[step.Name] = true
	}

	return nil
}

// ValidateName validates a name follows kebab-case convention.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name must be kebab-case (lowercase letters, numbers, and hyphens only, starting with a letter)")
	}
	return nil
}

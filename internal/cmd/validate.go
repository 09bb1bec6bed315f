package cmd

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/lunaryorn/tagship/internal/workspace"
)

//go:embed schemas/tagship-config.v1.schema.json
var schemaFS embed.FS

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate tagship.yaml configuration",
	Long: `Validates the tagship.yaml configuration file against the JSON Schema,
then runs semantic checks (step names, tag pattern, artifact name).`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	root, err := findWorkspaceRoot()
	if err != nil {
		return err
	}
	configPath := filepath.Join(root, workspace.ConfigFileName)

	fmt.Printf("🔍 Validating %s...\n", configPath)

	schemaBytes, err := schemaFS.ReadFile("schemas/tagship-config.v1.schema.json")
	if err != nil {
		return fmt.Errorf("failed to load JSON schema: %w", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)

	// The schema validator speaks JSON, so round-trip the YAML document.
	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", workspace.ConfigFileName, err)
	}
	var document any
	if err := yaml.Unmarshal(configBytes, &document); err != nil {
		return fmt.Errorf("failed to parse %s: %w", workspace.ConfigFileName, err)
	}
	documentJSON, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to convert config to JSON: %w", err)
	}
	documentLoader := gojsonschema.NewBytesLoader(documentJSON)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		fmt.Println("\n❌ Validation failed with the following errors:")
		fmt.Println()
		for i, desc := range result.Errors() {
			fmt.Printf("%d. %s\n", i+1, desc.String())
			fmt.Printf("   Field: %s\n", desc.Field())
			fmt.Printf("   Type: %s\n\n", desc.Type())
		}
		return fmt.Errorf("validation failed with %d errors", len(result.Errors()))
	}

	config, err := workspace.LoadConfig(root)
	if err != nil {
		return err
	}
	if err := workspace.NewValidator().Validate(config); err != nil {
		return fmt.Errorf("❌ Semantic validation failed: %w", err)
	}

	fmt.Printf("✅ %s is valid!\n", workspace.ConfigFileName)
	fmt.Printf("   Artifact: %s\n", config.ArtifactName())
	fmt.Printf("   Steps: %v\n", config.StepNames())
	return nil
}

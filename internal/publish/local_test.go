package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lunaryorn/tagship/internal/artifact"
)

func testArtifact(t *testing.T, content string) *artifact.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "my-extension.zip")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	art, err := artifact.Describe(path)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	return art
}

func TestLocalPublisher_Publish(t *testing.T) {
	baseDir := t.TempDir()
	publisher := NewLocalPublisher(baseDir)
	art := testArtifact(t, "archive content")

	result, err := publisher.Publish(context.Background(), &Options{
		Tag:      "v1.0",
		Artifact: art,
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if result.Replaced {
		t.Error("first publish must not report replaced")
	}

	published := filepath.Join(baseDir, "v1.0", "my-extension.zip")
	data, err := os.ReadFile(published)
	if err != nil {
		t.Fatalf("published asset missing: %v", err)
	}
	if string(data) != "archive content" {
		t.Errorf("asset content mismatch: %q", data)
	}

	checksum, err := os.ReadFile(published + ".sha256")
	if err != nil {
		t.Fatalf("checksum file missing: %v", err)
	}
	want := art.SHA256 + "  my-extension.zip\n"
	if string(checksum) != want {
		t.Errorf("checksum file: got %q, want %q", checksum, want)
	}
}

func TestLocalPublisher_OverwriteSemantics(t *testing.T) {
	baseDir := t.TempDir()
	publisher := NewLocalPublisher(baseDir)
	art := testArtifact(t, "first")

	if _, err := publisher.Publish(context.Background(), &Options{Tag: "v1.0", Artifact: art}); err != nil {
		t.Fatalf("first publish failed: %v", err)
	}

	// Re-publish without overwrite fails and changes nothing.
	replacement := testArtifact(t, "second")
	if _, err := publisher.Publish(context.Background(), &Options{Tag: "v1.0", Artifact: replacement}); err == nil {
		t.Fatal("expected duplicate publish to fail without overwrite")
	}

	// With overwrite the asset is replaced.
	result, err := publisher.Publish(context.Background(), &Options{Tag: "v1.0", Artifact: replacement, Overwrite: true})
	if err != nil {
		t.Fatalf("overwrite publish failed: %v", err)
	}
	if !result.Replaced {
		t.Error("overwrite publish must report replaced")
	}

	data, err := os.ReadFile(filepath.Join(baseDir, "v1.0", "my-extension.zip"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("asset not replaced: %q", data)
	}
}

func TestGetPublisher(t *testing.T) {
	if _, err := GetPublisher("github", FactoryConfig{}); err == nil {
		t.Error("github publisher without token must fail")
	}
	if _, err := GetPublisher("local", FactoryConfig{}); err == nil {
		t.Error("local publisher without dir must fail")
	}
	if _, err := GetPublisher("nope", FactoryConfig{}); err == nil {
		t.Error("unknown publisher must fail")
	}

	p, err := GetPublisher("local", FactoryConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("GetPublisher failed: %v", err)
	}
	if p.Name() != "local" {
		t.Errorf("unexpected publisher: %s", p.Name())
	}

	names := ListPublishers()
	if len(names) < 2 || names[0] != "github" || names[1] != "local" {
		t.Errorf("unexpected publisher list: %v", names)
	}
}

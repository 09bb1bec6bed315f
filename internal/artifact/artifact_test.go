package artifact

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my-extension@example.com.shell-extension.zip")
	content := []byte("not really a zip, but content enough")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	art, err := Describe(path)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if art.Name != "my-extension@example.com.shell-extension.zip" {
		t.Errorf("unexpected name: %q", art.Name)
	}
	if art.Size != int64(len(content)) {
		t.Errorf("size: got %d, want %d", art.Size, len(content))
	}

	sum := sha256.Sum256(content)
	if art.SHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("checksum mismatch: %s", art.SHA256)
	}
}

func TestDescribe_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Describe(filepath.Join(dir, "missing.zip")); err == nil {
		t.Error("expected error for missing artifact")
	}

	empty := filepath.Join(dir, "empty.zip")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Describe(empty); err == nil {
		t.Error("expected error for empty artifact")
	}

	if _, err := Describe(dir); err == nil {
		t.Error("expected error for directory")
	}
}

func TestPack(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "extension.js"), "var x = 1;")
	writeFile(t, filepath.Join(src, "metadata.json"), "{}")
	writeFile(t, filepath.Join(src, "schemas", "gschemas.compiled"), "bin")
	// Hidden files stay out of the archive.
	writeFile(t, filepath.Join(src, ".eslintrc"), "{}")
	writeFile(t, filepath.Join(src, ".git", "HEAD"), "ref")

	dest := filepath.Join(t.TempDir(), "dist", "out.zip")
	art, err := Pack(src, dest, false)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if art.Path != dest {
		t.Errorf("unexpected artifact path: %q", art.Path)
	}

	reader, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer reader.Close()

	var names []string
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)

	want := []string{"extension.js", "metadata.json", "schemas/gschemas.compiled"}
	if len(names) != len(want) {
		t.Fatalf("archive entries: got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestPack_EmptyDir(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.zip")
	if _, err := Pack(t.TempDir(), dest, false); err == nil {
		t.Error("expected error for empty source directory")
	}
}

func TestWriteChecksumFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.zip")
	writeFile(t, path, "content")

	art, err := Describe(path)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	checksumPath, err := art.WriteChecksumFile()
	if err != nil {
		t.Fatalf("WriteChecksumFile failed: %v", err)
	}

	data, err := os.ReadFile(checksumPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := art.SHA256 + "  out.zip\n"
	if string(data) != want {
		t.Errorf("checksum file: got %q, want %q", data, want)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

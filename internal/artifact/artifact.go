// Package artifact handles the packaged release archive: producing it,
// locating it, and describing it with size and checksum metadata.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Artifact describes a packaged release archive on disk.
type Artifact struct {
	// Path is the absolute path of the archive file.
	Path string
	// Name is the literal file name attached to the release.
	Name string
	// Size is the archive size in bytes.
	Size int64
	// SHA256 is the hex-encoded checksum of the archive.
	SHA256 string
}

// Describe stats and checksums the archive at path. It fails if the file
// does not exist or is empty.
func Describe(path string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("artifact not found at %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("artifact path %s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("artifact %s is empty", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return nil, fmt.Errorf("failed to checksum artifact: %w", err)
	}

	return &Artifact{
		Path:   path,
		Name:   filepath.Base(path),
		Size:   info.Size(),
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// WriteChecksumFile writes "<sha256>  <name>" next to the archive, in the
// format sha256sum accepts.
func (a *Artifact) WriteChecksumFile() (string, error) {
	path := a.Path + ".sha256"
	content := fmt.Sprintf("%s  %s\n", a.SHA256, a.Name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write checksum file: %w", err)
	}
	return path, nil
}

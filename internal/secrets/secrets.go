// Package secrets resolves the publish credential from the environment and
// keeps it out of pipeline logs.
package secrets

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// TokenEnvVars are checked in order for the publish token.
var TokenEnvVars = []string{"TAGSHIP_TOKEN", "GITHUB_TOKEN"}

// Token returns the publish token from the environment.
func Token() (string, error) {
	for _, name := range TokenEnvVars {
		if value := os.Getenv(name); value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("no publish token found (set %s)", TokenEnvVars[0])
}

// HasToken reports whether a publish token is present in the environment.
func HasToken() bool {
	_, err := Token()
	return err == nil
}

// Redactor is an io.Writer that replaces occurrences of configured secret
// values with a placeholder before forwarding to the underlying writer.
// Pipes deliver process output in arbitrary chunks, so the last bytes that
// could start a secret stay buffered between writes. Call Flush once the
// stream ends to emit any held-back data.
type Redactor struct {
	w       io.Writer
	secrets [][]byte
	hold    int
	pending []byte
}

const placeholder = "***"

// NewRedactor wraps w, masking every non-empty value in secrets.
func NewRedactor(w io.Writer, secrets ...string) *Redactor {
	r := &Redactor{w: w}
	for _, s := range secrets {
		if s != "" {
			r.secrets = append(r.secrets, []byte(s))
			if len(s)-1 > r.hold {
				r.hold = len(s) - 1
			}
		}
	}
	return r
}

func (r *Redactor) Write(p []byte) (int, error) {
	if len(r.secrets) == 0 {
		return r.w.Write(p)
	}

	r.pending = append(r.pending, p...)
	if err := r.flush(false); err != nil {
		return 0, err
	}
	// Report the original length so callers never see a short write.
	return len(p), nil
}

// Flush writes out any held-back data. Call it when no further writes
// follow; a secret can no longer complete at that point.
func (r *Redactor) Flush() error {
	return r.flush(true)
}

// flush masks and forwards pending data. Unless final, the trailing bytes
// that could be the start of a secret stay buffered until the next write;
// a newline in that tail flushes through it since tokens never span lines.
func (r *Redactor) flush(final bool) error {
	masked := r.pending
	for _, secret := range r.secrets {
		masked = bytes.ReplaceAll(masked, secret, []byte(placeholder))
	}

	keep := 0
	if !final {
		keep = r.hold
		if keep > len(masked) {
			keep = len(masked)
		}
		if i := bytes.LastIndexByte(masked[len(masked)-keep:], '\n'); i >= 0 {
			keep = keep - i - 1
		}
	}

	out := masked[:len(masked)-keep]
	r.pending = append(r.pending[:0], masked[len(masked)-keep:]...)
	if len(out) == 0 {
		return nil
	}
	_, err := r.w.Write(out)
	return err
}

package secrets

import (
	"bytes"
	"strings"
	"testing"
)

func TestToken_Precedence(t *testing.T) {
	t.Setenv("TAGSHIP_TOKEN", "tagship-token")
	t.Setenv("GITHUB_TOKEN", "github-token")

	token, err := Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "tagship-token" {
		t.Errorf("TAGSHIP_TOKEN should win: got %q", token)
	}
}

func TestToken_Fallback(t *testing.T) {
	t.Setenv("TAGSHIP_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "github-token")

	token, err := Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "github-token" {
		t.Errorf("expected fallback to GITHUB_TOKEN, got %q", token)
	}
}

func TestToken_Missing(t *testing.T) {
	t.Setenv("TAGSHIP_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	if _, err := Token(); err == nil {
		t.Error("expected error when no token is set")
	}
	if HasToken() {
		t.Error("HasToken should be false")
	}
}

func TestRedactor(t *testing.T) {
	var buf bytes.Buffer
	r := NewRedactor(&buf, "hunter2", "")

	n, err := r.Write([]byte("token is hunter2, repeat hunter2\n"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len("token is hunter2, repeat hunter2\n") {
		t.Errorf("Write must report the original length, got %d", n)
	}

	got := buf.String()
	if strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked: %q", got)
	}
	if got != "token is ***, repeat ***\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestRedactor_SecretSplitAcrossWrites(t *testing.T) {
	var buf bytes.Buffer
	r := NewRedactor(&buf, "hunter2")

	// Pipes hand process output over in fixed-size copy chunks, so the
	// token can land split over two writes.
	filler := strings.Repeat("0", 32765)
	if _, err := r.Write([]byte(filler + "hun")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := r.Write([]byte("ter2\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	got := buf.String()
	if strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked across the write boundary (tail: %q)", got[len(got)-16:])
	}
	if !strings.HasSuffix(got, "***\n") {
		t.Errorf("expected masked token at the end, got tail %q", got[len(got)-16:])
	}
	if len(got) != len(filler)+len("***\n") {
		t.Errorf("output length %d, want %d", len(got), len(filler)+len("***\n"))
	}
}

func TestRedactor_FlushEmitsHeldBackData(t *testing.T) {
	var buf bytes.Buffer
	r := NewRedactor(&buf, "hunter2")

	if _, err := r.Write([]byte("no newline")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if buf.String() != "no newline" {
		t.Errorf("trailing data lost: %q", buf.String())
	}
}

func TestRedactor_NoSecrets(t *testing.T) {
	var buf bytes.Buffer
	r := NewRedactor(&buf)

	if _, err := r.Write([]byte("plain output")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.String() != "plain output" {
		t.Errorf("output modified without secrets: %q", buf.String())
	}
}

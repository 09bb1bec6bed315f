// Package webhook receives VCS push events over HTTP and turns matching
// tag pushes into pipeline runs.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lunaryorn/tagship/internal/trigger"
)

// maxBodySize bounds webhook payloads; push events are small.
const maxBodySize = 1 << 20

// RunFunc starts a pipeline run for a triggering event.
type RunFunc func(event trigger.Event)

// Handler accepts push webhooks, verifies their signature, and filters them
// through the tag pattern and the run-state store.
type Handler struct {
	pattern string
	secret  []byte
	store   *trigger.Store
	run     RunFunc
}

// NewHandler creates a webhook handler. secret is the shared HMAC key; an
// empty secret disables signature verification. run is called once for each
// accepted event; the handler reserves the event's tag in the store first,
// and run is responsible for releasing it with store.End when finished.
func NewHandler(pattern string, secret []byte, store *trigger.Store, run RunFunc) *Handler {
	return &Handler{
		pattern: pattern,
		secret:  secret,
		store:   store,
		run:     run,
	}
}

// Router builds the HTTP routing for the handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.health)
	r.Post("/hooks/push", h.handlePush)
	return r
}

// pushPayload is the subset of the push-event body the handler reads.
type pushPayload struct {
	Ref     string `json:"ref"`
	After   string `json:"after"`
	Deleted bool   `json:"deleted"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handlePush(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	if len(h.secret) > 0 {
		if err := verifySignature(h.secret, body, r.Header.Get("X-Hub-Signature-256")); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
	}

	var payload pushPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return
	}

	tag, ok := trigger.ParseRef(payload.Ref)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"ignored": "not a tag push"})
		return
	}

	event := trigger.Event{
		Tag:        tag,
		Commit:     payload.After,
		Deleted:    payload.Deleted,
		ReceivedAt: time.Now(),
	}
	if !trigger.ShouldRun(event, h.pattern, h.store) {
		writeJSON(w, http.StatusOK, map[string]string{
			"ignored": fmt.Sprintf("tag %s does not trigger", tag),
		})
		return
	}

	// Reserve the tag before responding. Hosting platforms redeliver
	// webhooks, and a redelivery arriving while the first run is still in
	// flight must not start a second one.
	if h.store != nil && !h.store.Begin(tag) {
		writeJSON(w, http.StatusOK, map[string]string{
			"ignored": fmt.Sprintf("a run for tag %s is already in progress", tag),
		})
		return
	}

	h.run(event)
	writeJSON(w, http.StatusAccepted, map[string]string{"run": tag})
}

// verifySignature checks the hex HMAC-SHA256 signature header against the
// body.
func verifySignature(secret, body []byte, header string) error {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return fmt.Errorf("missing or malformed signature header")
	}

	got, err := hex.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return fmt.Errorf("malformed signature header")
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return fmt.Errorf("signature mismatch")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

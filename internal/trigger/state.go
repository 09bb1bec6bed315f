package trigger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lunaryorn/tagship/pkg/xos"
)

// StateDirName is the workspace-relative directory holding run state.
const StateDirName = ".tagship"

const stateFileName = "state.json"

// Record is the persisted outcome of one pipeline run.
type Record struct {
	RunID       string    `json:"runId"`
	Tag         string    `json:"tag"`
	Status      string    `json:"status"`
	Artifact    string    `json:"artifact,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

// Store persists run records so each tag triggers at most one successful
// run. Writes go through an atomic rename, so a crash mid-write never
// corrupts the state file.
type Store struct {
	path string

	mu       sync.Mutex
	records  map[string]Record // tag -> latest record
	inflight map[string]struct{}
}

// OpenStore loads the run-state store of the workspace rooted at root,
// creating an empty one if none exists.
func OpenStore(root string) (*Store, error) {
	s := &Store{
		path:     filepath.Join(root, StateDirName, stateFileName),
		records:  make(map[string]Record),
		inflight: make(map[string]struct{}),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run state: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse run state: %w", err)
	}
	for _, record := range records {
		s.records[record.Tag] = record
	}

	return s, nil
}

// Completed reports whether a successful run is recorded for the tag.
func (s *Store) Completed(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[tag]
	return ok && record.Status == "succeeded"
}

// Begin reserves the tag for a run. It returns false when a run for the
// tag is already in flight, so a redelivered event cannot start a second
// concurrent run while the first one is still going. Release the
// reservation with End once the run finishes.
func (s *Store) Begin(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[tag]; ok {
		return false
	}
	s.inflight[tag] = struct{}{}
	return true
}

// End releases the reservation taken by Begin.
func (s *Store) End(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, tag)
}

// InFlight reports whether a run for the tag is currently reserved.
func (s *Store) InFlight(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.inflight[tag]
	return ok
}

// Get returns the latest record for the tag.
func (s *Store) Get(tag string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[tag]
	return record, ok
}

// Put records the outcome of a run and persists the store.
func (s *Store) Put(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Tag] = record
	return s.save()
}

// Forget drops the record for a tag, allowing it to trigger again.
func (s *Store) Forget(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[tag]; !ok {
		return nil
	}
	delete(s.records, tag)
	return s.save()
}

// save writes all records atomically. Callers must hold s.mu.
func (s *Store) save() error {
	records := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := xos.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run state: %w", err)
	}

	return nil
}

// Package trigger decides which tag events start a pipeline run. A tag
// triggers when its name matches the configured glob pattern and no
// successful run for it is recorded yet.
package trigger

import (
	"path"
	"strings"
	"time"
)

const tagRefPrefix = "refs/tags/"

// Event is a tag-push event received from a VCS host or a local watcher.
type Event struct {
	// Tag is the bare tag name, e.g. "v1.12".
	Tag string
	// Commit is the commit the tag points at, if known.
	Commit string
	// Deleted is true for tag-deletion pushes, which never trigger.
	Deleted bool
	// ReceivedAt is when the event arrived.
	ReceivedAt time.Time
}

// ParseRef extracts the tag name from a full ref like "refs/tags/v1.12".
// It returns false for refs that are not tags.
func ParseRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, tagRefPrefix) {
		return "", false
	}
	tag := strings.TrimPrefix(ref, tagRefPrefix)
	if tag == "" {
		return "", false
	}
	return tag, true
}

// Matches reports whether the tag name matches the glob pattern. Malformed
// patterns never match; pattern validity is checked at config load.
func Matches(pattern, tag string) bool {
	ok, err := path.Match(pattern, tag)
	return err == nil && ok
}

// ShouldRun decides whether an event starts a run: the tag must match the
// pattern, the event must not be a deletion, no completed run for the tag
// may be recorded in the store, and no run for it may be in flight.
func ShouldRun(event Event, pattern string, store *Store) bool {
	if event.Deleted || !Matches(pattern, event.Tag) {
		return false
	}
	if store != nil && (store.Completed(event.Tag) || store.InFlight(event.Tag)) {
		return false
	}
	return true
}

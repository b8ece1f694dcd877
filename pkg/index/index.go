// Package index maps task IDs to the calendar events mirroring them.
package index

import "sync"

// EventIndex is safe for concurrent use.
type EventIndex struct {
	mappings map[string]string
	mu       sync.RWMutex
}

// NewEventIndex returns an empty index.
func NewEventIndex() *EventIndex {
	return &EventIndex{mappings: make(map[string]string)}
}

// Get returns the event ID for taskID, or "" when the task is not mirrored.
func (idx *EventIndex) Get(taskID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.mappings[taskID]
}

// Set records eventID as the event mirroring taskID.
func (idx *EventIndex) Set(taskID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.mappings[taskID] = eventID
}

// Remove forgets taskID and returns the event ID it pointed to.
func (idx *EventIndex) Remove(taskID string) string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	eventID := idx.mappings[taskID]
	delete(idx.mappings, taskID)
	return eventID
}

// Len returns the number of mirrored tasks.
func (idx *EventIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.mappings)
}

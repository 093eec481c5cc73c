package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrRecordNotFound is returned when an id is absent from its collection
var ErrRecordNotFound = errors.New("record not found")

// Snapshot slot names
const (
	SlotCustomers = "customers"
	SlotUsers     = "users"
	SlotChargers  = "chargers"
)

// holder owns the current value of one collection. Writers swap in a new
// value; readers get the value they observed together with its version.
// Read-modify-swap sequences must be serialized by the caller.
type holder[C ~[]E, E any] struct {
	mu      sync.RWMutex
	items   C
	version uint64
}

func (h *holder[C, E]) current() (C, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.items, h.version
}

func (h *holder[C, E]) swap(next C) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = next
	h.version++
}

// marshal encodes the current collection for a snapshot slot
func (h *holder[C, E]) marshal() ([]byte, uint64, error) {
	items, version := h.current()
	if items == nil {
		items = C{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, version, nil
}

// unmarshal replaces the collection with a stored snapshot. Malformed data is an error.
func (h *holder[C, E]) unmarshal(data []byte) error {
	var items C
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&items); err != nil {
		return fmt.Errorf("malformed snapshot: %w", err)
	}
	if items == nil {
		items = C{}
	}
	h.swap(items)
	return nil
}

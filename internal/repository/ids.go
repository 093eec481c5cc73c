package repository

import (
	"strconv"
	"sync"
	"time"
)

// Id prefixes per collection
const (
	CustomerIDPrefix = ""
	UserIDPrefix     = "u"
	ChargerIDPrefix  = "c-"
	NoteIDPrefix     = "note-"
	ProposalIDPrefix = "p-"
)

// IDGenerator issues timestamp-derived ids that are strictly increasing
// within the process, so two creations in the same millisecond never collide.
type IDGenerator struct {
	mu    sync.Mutex
	clock func() time.Time
	last  int64
}

// NewIDGenerator creates a generator reading time from clock
func NewIDGenerator(clock func() time.Time) *IDGenerator {
	if clock == nil {
		clock = time.Now
	}
	return &IDGenerator{clock: clock}
}

// Next returns prefix followed by a millisecond timestamp. taken reports ids
// already present in the target collection; those are skipped.
func (g *IDGenerator) Next(prefix string, taken func(id string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.clock().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	for {
		id := prefix + strconv.FormatInt(n, 10)
		if taken == nil || !taken(id) {
			g.last = n
			return id
		}
		n++
	}
}

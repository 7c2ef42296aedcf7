package observer

import (
	"log"
	"sync"
)

// EventCounter tallies what the observer has seen and acted on.
type EventCounter struct {
	mu          sync.Mutex
	observed    int
	invalidated int
}

func NewEventCounter() *EventCounter {
	return &EventCounter{}
}

func (ec *EventCounter) CountObserved() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.observed++
}

func (ec *EventCounter) CountInvalidated() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.invalidated++
}

func (ec *EventCounter) Observed() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.observed
}

func (ec *EventCounter) PrintCounts(logger *log.Logger) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	logger.Printf("Transactions observed: %d, cache entries invalidated: %d", ec.observed, ec.invalidated)
}

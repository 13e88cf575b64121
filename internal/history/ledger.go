package history

import (
	"encoding/json"
	"sync"

	"github.com/Adrien7782/BankVocabulary/internal/models"
)

// Capacity is the number of past session results kept per scope.
const Capacity = 4

// Ledger is the bounded, most-recent-first list of finished session results
// for the active scope. It is observable so a persistence adapter can mirror
// it into the scope's storage key.
type Ledger struct {
	mu          sync.Mutex
	entries     []models.SessionResult
	nextID      int
	watchers    map[int]func()
	nextWatcher int
}

func NewLedger() *Ledger {
	return &Ledger{
		nextID:   1,
		watchers: make(map[int]func()),
	}
}

// Insert prepends the result and silently evicts the oldest entry beyond
// Capacity.
func (l *Ledger) Insert(result models.SessionResult) {
	l.mu.Lock()
	l.entries = append([]models.SessionResult{result}, l.entries...)
	if len(l.entries) > Capacity {
		l.entries = l.entries[:Capacity]
	}
	if result.ID >= l.nextID {
		l.nextID = result.ID + 1
	}
	l.mu.Unlock()

	l.notify()
}

// Restore replaces the ledger with previously persisted entries and
// recomputes the id counter so future inserts never collide with restored
// ids.
func (l *Ledger) Restore(entries []models.SessionResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	l.entries = append([]models.SessionResult(nil), entries...)

	l.nextID = 1
	for _, entry := range l.entries {
		if entry.ID >= l.nextID {
			l.nextID = entry.ID + 1
		}
	}
}

func (l *Ledger) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.nextID = 1
	l.mu.Unlock()

	l.notify()
}

func (l *Ledger) Entries() []models.SessionResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.SessionResult(nil), l.entries...)
}

// Entry returns the i-th most recent result.
func (l *Ledger) Entry(i int) (models.SessionResult, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.entries) {
		return models.SessionResult{}, false
	}
	return l.entries[i], true
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) NextID() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID
}

func (l *Ledger) Watch(fn func()) (cancel func()) {
	l.mu.Lock()
	id := l.nextWatcher
	l.nextWatcher++
	l.watchers[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.watchers, id)
		l.mu.Unlock()
	}
}

func (l *Ledger) MarshalState() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return json.Marshal(l.entries)
}

func (l *Ledger) notify() {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.watchers))
	for _, fn := range l.watchers {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

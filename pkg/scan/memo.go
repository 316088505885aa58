package scan

import (
	"context"
	"sync"

	"github.com/matzehuels/renoma/pkg/lint"
)

// Outcome is the analysis result for one name@version.
type Outcome struct {
	Diagnostics []lint.Diagnostic
	// Title is the graph path of the first record analyzed for this key.
	Title string
	// Persisted is set when the diagnostics came from the persistent cache.
	Persisted bool
	Err       error
}

// HasIssues reports whether the analysis found anything to show.
func (o Outcome) HasIssues() bool { return len(o.Diagnostics) > 0 || o.Err != nil }

// Entry is a memo slot that is resolved exactly once.
type Entry struct {
	done chan struct{}
	out  Outcome
}

// Wait blocks until the entry is resolved or ctx is done.
func (e *Entry) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-e.done:
		return e.out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (e *Entry) resolve(o Outcome) {
	e.out = o
	close(e.done)
}

// Memo memoizes outcomes by name@version for the lifetime of one run.
// Entries are never evicted.
type Memo struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewMemo creates an empty memo.
func NewMemo() *Memo {
	return &Memo{entries: make(map[string]*Entry)}
}

// Claim returns the entry for key. The first caller for a key is its owner
// and must resolve it; every later caller gets the same entry and waits.
func (m *Memo) Claim(key string) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		return e, false
	}
	e := &Entry{done: make(chan struct{})}
	m.entries[key] = e
	return e, true
}

// Get returns the resolved outcome for key. Pending entries are reported
// as absent.
func (m *Memo) Get(key string) (Outcome, bool) {
	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return Outcome{}, false
	}
	select {
	case <-e.done:
		return e.out, true
	default:
		return Outcome{}, false
	}
}

// Set stores a resolved outcome for key unless one is already present.
func (m *Memo) Set(key string, o Outcome) {
	if e, owner := m.Claim(key); owner {
		e.resolve(o)
	}
}

// Len returns the number of keys seen.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

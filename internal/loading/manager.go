// Package loading tracks the lifecycle of a single asset load and publishes it
// as an ordered event stream.
//
// A Manager counts items the way a loading manager in a scene graph engine
// does: the first item started while idle emits Start, every finished item
// emits Progress, and reaching loaded == total emits Complete. Sub-resources
// (embedded textures) are items too, so the totals grow while loading.
package loading

import (
	"fmt"
	"sync"
)

// Kind identifies a lifecycle event.
type Kind int

const (
	KindStart Kind = iota
	KindProgress
	KindComplete
	KindError
	KindBytes
	KindFailed
)

var kindNames = [...]string{"start", "progress", "complete", "error", "bytes", "failed"}

// String returns the lowercase event name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is a single lifecycle notification.
type Event struct {
	Kind   Kind
	URL    string
	Loaded int // Items loaded so far
	Total  int // Items known so far

	// Transfer progress, set on KindBytes. BytesTotal is -1 when unknown.
	BytesLoaded int64
	BytesTotal  int64

	Err error // Set on KindError and KindFailed
}

// DefaultBuffer is the subscriber channel capacity used by Subscribe.
const DefaultBuffer = 64

// Manager tracks one load operation. It is safe for concurrent use.
// Subscribers must drain their channels; emission blocks on a full channel.
type Manager struct {
	mu      sync.Mutex
	loading bool
	loaded  int
	total   int
	failed  bool
	closed  bool
	subs    []chan Event
}

// NewManager creates an idle manager.
func NewManager() *Manager {
	return &Manager{}
}

// Subscribe returns a channel receiving every event emitted from now on.
// The channel is closed by Close.
func (m *Manager) Subscribe() <-chan Event {
	return m.SubscribeBuffered(DefaultBuffer)
}

// SubscribeBuffered is Subscribe with an explicit channel capacity.
func (m *Manager) SubscribeBuffered(size int) <-chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Event, size)
	if m.closed {
		close(ch)
		return ch
	}
	m.subs = append(m.subs, ch)
	return ch
}

// ItemStart registers a new item. The first item started while idle emits Start.
func (m *Manager) ItemStart(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed || m.closed {
		return
	}

	m.total++
	if !m.loading {
		m.loading = true
		m.emit(Event{Kind: KindStart, URL: url, Loaded: m.loaded, Total: m.total})
	}
}

// ItemEnd marks an item as finished, emitting Progress and, once every known
// item has finished, Complete.
func (m *Manager) ItemEnd(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed || m.closed {
		return
	}

	m.loaded++
	m.emit(Event{Kind: KindProgress, URL: url, Loaded: m.loaded, Total: m.total})

	if m.loaded == m.total {
		m.loading = false
		m.emit(Event{Kind: KindComplete, URL: url, Loaded: m.loaded, Total: m.total})
	}
}

// ItemError reports a failed item. The item is not counted as loaded.
func (m *Manager) ItemError(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed || m.closed {
		return
	}
	m.emit(Event{Kind: KindError, URL: url, Loaded: m.loaded, Total: m.total, Err: err})
}

// Bytes reports transfer progress of an item. total is -1 when unknown.
func (m *Manager) Bytes(url string, loaded, total int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed || m.closed {
		return
	}
	m.emit(Event{
		Kind:        KindBytes,
		URL:         url,
		Loaded:      m.loaded,
		Total:       m.total,
		BytesLoaded: loaded,
		BytesTotal:  total,
	})
}

// Fail moves the manager into its terminal failed state. Only the first call
// emits; every later item call is ignored so Complete can never follow.
func (m *Manager) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed || m.closed {
		return
	}
	m.failed = true
	m.loading = false
	m.emit(Event{Kind: KindFailed, Loaded: m.loaded, Total: m.total, Err: err})
}

// Close ends the event stream and closes every subscriber channel.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
}

// Counts returns the loaded and total item counts.
func (m *Manager) Counts() (loaded, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded, m.total
}

// Loading reports whether items are in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Failed reports whether Fail has been called.
func (m *Manager) Failed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed
}

// emit must be called with mu held.
func (m *Manager) emit(ev Event) {
	for _, ch := range m.subs {
		ch <- ev
	}
}

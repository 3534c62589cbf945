package command

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"editcmd/internal/logging"
)

// DefaultHistoryMax is the default number of entries kept.
const DefaultHistoryMax = 50

// Entry is one recorded command invocation.
type Entry struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Scope string    `json:"scope,omitempty"`
	At    time.Time `json:"at"`
}

// Sink persists recorded entries.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// History is a bounded record of executed commands with a recording gate.
// Nested invocations made while a suppression window is open are not recorded.
type History struct {
	mu        sync.Mutex
	max       int
	recording bool
	entries   []Entry
	sink      Sink
	now       func() time.Time
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithSink forwards every recorded entry to s.
func WithSink(s Sink) HistoryOption {
	return func(h *History) { h.sink = s }
}

// NewHistory creates an empty, recording history keeping at most max
// entries. A max of zero or less means DefaultHistoryMax.
func NewHistory(max int, opts ...HistoryOption) *History {
	if max <= 0 {
		max = DefaultHistoryMax
	}
	h := &History{max: max, recording: true, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record appends cmd when recording, evicting the oldest entries past max.
// It reports whether an entry was added.
func (h *History) Record(ctx context.Context, cmd Command) bool {
	if cmd == nil {
		return false
	}
	meta := cmd.Meta()

	h.mu.Lock()
	if !h.recording {
		h.mu.Unlock()
		logging.HistoryDebug("not recording nested call: %s", meta.Name)
		return false
	}
	e := Entry{ID: uuid.NewString(), Name: meta.Name, Scope: meta.Scope, At: h.now()}
	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
	}
	sink := h.sink
	h.mu.Unlock()

	logging.HistoryDebug("recorded %s", e.Name)
	if sink != nil {
		if err := sink.Append(ctx, e); err != nil {
			logging.HistoryWarn("failed to persist history entry %s: %v", e.Name, err)
		}
	}
	return true
}

// Suppress closes the recording gate and returns a function restoring the
// gate to its previous value. Use it with defer so the gate is restored on
// every exit path; nested windows restore in order.
func (h *History) Suppress() (restore func()) {
	h.mu.Lock()
	prev := h.recording
	h.recording = false
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.recording = prev
			h.mu.Unlock()
		})
	}
}

// Recording reports whether Record currently adds entries.
func (h *History) Recording() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recording
}

// Max returns the entry cap.
func (h *History) Max() int { return h.max }

// Entries returns the recorded entries, oldest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Names returns the recorded command names, oldest first.
func (h *History) Names() []string {
	entries := h.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Clear drops all entries and reopens the recording gate.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	h.recording = true
}

// Start is the lifecycle hook run when the command subsystem starts.
func (h *History) Start() {
	h.Clear()
	logging.HistoryDebug("history started (max=%d)", h.max)
}

// Stop is the lifecycle hook run when the command subsystem stops.
func (h *History) Stop() {
	h.Clear()
	logging.HistoryDebug("history stopped")
}

package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Record is a captured log record.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// recordStore collects records from a handler and all of its
// WithAttrs descendants.
type recordStore struct {
	mu      sync.Mutex
	t       *testing.T
	records []Record
}

func (s *recordStore) add(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	if s.t != nil {
		s.t.Logf("[%s] %s %v", r.Level, r.Message, r.Attrs)
	}
}

// CaptureHandler is a slog.Handler that records everything it
// receives so tests can assert on messages and attributes.
type CaptureHandler struct {
	store *recordStore
	attrs []slog.Attr
}

// NewTestLogger returns a logger whose records the handler captures.
// Captured records are echoed through t.Logf so failures show the
// log stream under -v.
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{store: &recordStore{t: t}}
	return slog.New(h), h
}

// Enabled captures every level.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.store.add(Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs returns a child handler writing to the same store.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CaptureHandler{store: h.store, attrs: merged}
}

// WithGroup is a no-op; tests here assert on ungrouped keys.
func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of everything captured so far.
func (h *CaptureHandler) Records() []Record {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	out := make([]Record, len(h.store.records))
	copy(out, h.store.records)
	return out
}

// ContainsMessage reports whether any captured message contains msg.
func (h *CaptureHandler) ContainsMessage(msg string) bool {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, msg) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any captured record carries the
// attribute. Integer attrs are stored as int64, so pass int64 values.
func (h *CaptureHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// CountLevel returns how many records were captured at the level.
func (h *CaptureHandler) CountLevel(level slog.Level) int {
	n := 0
	for _, r := range h.Records() {
		if r.Level == level {
			n++
		}
	}
	return n
}

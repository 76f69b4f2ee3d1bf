package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func fillBuffer(rb *RingBuffer, modules ...string) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, m := range modules {
		rb.Write(LogEntry{Timestamp: base.Add(time.Duration(i) * time.Second), Module: m, Message: m})
	}
}

func messages(entries []LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message + "@" + e.Timestamp.Format("05")
	}
	return out
}

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer(3)
	fillBuffer(rb, "a", "b", "c", "d", "e")

	if rb.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", rb.Count())
	}
	got := messages(rb.ReadAll())
	want := []string{"c@02", "d@03", "e@04"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReadAll()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRingBufferTail(t *testing.T) {
	rb := NewRingBuffer(4)
	fillBuffer(rb, "api", "exposure", "api", "slots", "exposure", "exposure")

	tests := []struct {
		name   string
		module string
		limit  int
		want   []string
	}{
		{"all", "", 0, []string{"api@02", "slots@03", "exposure@04", "exposure@05"}},
		{"newest two", "", 2, []string{"exposure@04", "exposure@05"}},
		{"module", "exposure", 0, []string{"exposure@04", "exposure@05"}},
		{"module limited", "exposure", 1, []string{"exposure@05"}},
		{"evicted module", "pipeline", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := messages(rb.Tail(tt.module, tt.limit))
			if len(got) != len(tt.want) {
				t.Fatalf("Tail() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tail()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

type failingHandler struct {
	slog.Handler
	err error
}

func (f failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (f failingHandler) Handle(context.Context, slog.Record) error { return f.err }

func TestMultiHandlerJoinsErrors(t *testing.T) {
	errA := errors.New("journal closed")
	rb := NewRingBuffer(4)
	mutex.Lock()
	saved := logBuffer
	logBuffer = rb
	mutex.Unlock()
	defer func() {
		mutex.Lock()
		logBuffer = saved
		mutex.Unlock()
	}()

	h := NewMultiHandler(failingHandler{err: errA}, NewBufferHandler(slog.LevelInfo))
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "frame processed", 0)
	r.AddAttrs(slog.String("module", "pipeline"))

	err := h.Handle(context.Background(), r)
	if !errors.Is(err, errA) {
		t.Errorf("Handle() error = %v, want %v", err, errA)
	}
	if rb.Count() != 1 {
		t.Errorf("buffer handler skipped after failure: count %d", rb.Count())
	}
}

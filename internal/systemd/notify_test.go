package systemd

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

type recorder struct {
	mu     sync.Mutex
	states []string
}

func (r *recorder) notify(state string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return true, nil
}

func (r *recorder) count(state string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.states {
		if s == state {
			n++
		}
	}
	return n
}

func newTestNotifier(rec *recorder, interval time.Duration, err error) *Notifier {
	return &Notifier{
		logger:   slog.Default(),
		notify:   rec.notify,
		watchdog: func() (time.Duration, error) { return interval, err },
	}
}

func TestLifecycleMessages(t *testing.T) {
	rec := &recorder{}
	n := newTestNotifier(rec, 0, nil)

	n.Ready()
	n.Status("iso=100 shutter=1500")
	n.Stopping()

	want := []string{daemon.SdNotifyReady, "STATUS=iso=100 shutter=1500", daemon.SdNotifyStopping}
	if len(rec.states) != len(want) {
		t.Fatalf("states = %v, want %v", rec.states, want)
	}
	for i := range want {
		if rec.states[i] != want[i] {
			t.Errorf("state %d = %q, want %q", i, rec.states[i], want[i])
		}
	}
}

func TestWatchWithoutWatchdog(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"disabled", nil},
		{"lookup error", errors.New("bad WATCHDOG_USEC")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			done := make(chan struct{})
			go func() {
				newTestNotifier(rec, 0, tt.err).Watch(context.Background(), func() bool { return true })
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("Watch did not return")
			}
			if rec.count(daemon.SdNotifyWatchdog) != 0 {
				t.Error("pinged without a watchdog")
			}
		})
	}
}

func TestWatchPingsWhileAlive(t *testing.T) {
	rec := &recorder{}
	n := newTestNotifier(rec, 20*time.Millisecond, nil)

	var alive atomic.Bool
	alive.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Watch(ctx, alive.Load)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for rec.count(daemon.SdNotifyWatchdog) < 2 {
		select {
		case <-deadline:
			t.Fatal("no watchdog pings")
		case <-time.After(5 * time.Millisecond):
		}
	}

	alive.Store(false)
	time.Sleep(30 * time.Millisecond)
	stalled := rec.count(daemon.SdNotifyWatchdog)
	time.Sleep(60 * time.Millisecond)
	if got := rec.count(daemon.SdNotifyWatchdog); got != stalled {
		t.Errorf("pinged while stalled: %d -> %d", stalled, got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}

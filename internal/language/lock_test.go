package language

import (
	"testing"
	"time"
)

type fakeTimer struct {
	fn      func()
	d       time.Duration
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{fn: f, d: d}
	s.timers = append(s.timers, t)
	return t
}

// fire runs a timer even if it was stopped, like a timer that had already
// expired when Stop was called.
func (s *fakeScheduler) fire(i int) {
	s.timers[i].fn()
}

func TestLockInitialState(t *testing.T) {
	l := NewLock(&fakeScheduler{}, nil)
	want := State{Status: Detecting}
	if got := l.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
}

func TestLockTransitions(t *testing.T) {
	tests := []struct {
		name    string
		events  func(l *Lock)
		want    State
		pending bool
	}{
		{
			name:   "lang sets detecting",
			events: func(l *Lock) { l.Detected("en") },
			want:   State{Provisional: "en", Status: Detecting, Display: "en"},
		},
		{
			name:   "lock without provisional is final",
			events: func(l *Lock) { l.Locked("de") },
			want:   State{Provisional: "de", Status: Final, Display: "de"},
		},
		{
			name:   "lock equal to provisional is final",
			events: func(l *Lock) { l.Detected("en"); l.Locked("en") },
			want:   State{Provisional: "en", Status: Final, Display: "en"},
		},
		{
			name:   "detector names compare equal to codes",
			events: func(l *Lock) { l.Detected("english"); l.Locked("en") },
			want:   State{Provisional: "en", Status: Final, Display: "en"},
		},
		{
			name:    "different lock is a mismatch",
			events:  func(l *Lock) { l.Detected("en"); l.Locked("fr") },
			want:    State{Provisional: "fr", Status: Mismatch, Display: "fr"},
			pending: true,
		},
		{
			name:   "new lang during mismatch returns to detecting",
			events: func(l *Lock) { l.Detected("en"); l.Locked("fr"); l.Detected("es") },
			want:   State{Provisional: "es", Status: Detecting, Display: "es"},
		},
		{
			name:   "relock with the new baseline is final",
			events: func(l *Lock) { l.Detected("en"); l.Locked("fr"); l.Locked("fr") },
			want:   State{Provisional: "fr", Status: Final, Display: "fr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLock(&fakeScheduler{}, nil)
			tt.events(l)
			if got := l.State(); got != tt.want {
				t.Errorf("State() = %+v, want %+v", got, tt.want)
			}
			if l.Pending() != tt.pending {
				t.Errorf("Pending() = %v, want %v", l.Pending(), tt.pending)
			}
		})
	}
}

func TestLockMismatchSettles(t *testing.T) {
	sched := &fakeScheduler{}
	l := NewLock(sched, nil)

	l.Detected("en")
	l.Locked("fr")

	if len(sched.timers) != 1 {
		t.Fatalf("scheduled %d timers, want 1", len(sched.timers))
	}
	if sched.timers[0].d != MismatchWindow {
		t.Errorf("timer duration = %v, want %v", sched.timers[0].d, MismatchWindow)
	}

	sched.fire(0)

	want := State{Provisional: "fr", Status: Final, Display: "fr"}
	if got := l.State(); got != want {
		t.Errorf("State() after settle = %+v, want %+v", got, want)
	}
	if l.Pending() {
		t.Error("Pending() should be false after settle")
	}
}

func TestLockCancelIgnoresLateFire(t *testing.T) {
	sched := &fakeScheduler{}
	l := NewLock(sched, nil)

	l.Detected("en")
	l.Locked("fr")
	l.Cancel()

	if !sched.timers[0].stopped {
		t.Error("Cancel() should stop the pending timer")
	}

	// a timer that already fired must not settle a cancelled lock
	sched.fire(0)
	if got := l.State().Status; got != Mismatch {
		t.Errorf("status = %v, want mismatch to survive a stale fire", got)
	}
}

func TestLockStaleTimerAfterNewMismatch(t *testing.T) {
	sched := &fakeScheduler{}
	l := NewLock(sched, nil)

	l.Detected("en")
	l.Locked("fr")
	l.Locked("de")

	if len(sched.timers) != 2 {
		t.Fatalf("scheduled %d timers, want 2", len(sched.timers))
	}

	sched.fire(0)
	if got := l.State(); got.Status != Mismatch || got.Display != "de" {
		t.Errorf("stale timer changed state: %+v", got)
	}

	sched.fire(1)
	if got := l.State().Status; got != Final {
		t.Errorf("status = %v, want final", got)
	}
}

func TestLockMismatchRealTimer(t *testing.T) {
	loop := make(chan func(), 1)
	l := NewLock(SystemScheduler, func(f func()) { loop <- f })

	l.Detected("en")
	start := time.Now()
	l.Locked("fr")

	if got := l.State(); got.Status != Mismatch || got.Display != "fr" {
		t.Fatalf("State() = %+v, want mismatch showing fr", got)
	}

	select {
	case f := <-loop:
		if elapsed := time.Since(start); elapsed < MismatchWindow {
			t.Errorf("settled after %v, want at least %v", elapsed, MismatchWindow)
		}
		if got := l.State(); got.Status != Mismatch || got.Display != "fr" {
			t.Errorf("State() before settle = %+v", got)
		}
		f()
	case <-time.After(3 * time.Second):
		t.Fatal("mismatch never settled")
	}

	if got := l.State(); got.Status != Final || got.Display != "fr" {
		t.Errorf("State() = %+v, want final showing fr", got)
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{Detecting: "detecting", Mismatch: "mismatch", Final: "final", Status(9): "unknown"} {
		if s.String() != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}

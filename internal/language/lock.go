package language

import "time"

// MismatchWindow is how long a lock that contradicts the provisional guess
// stays flagged before settling.
const MismatchWindow = 1200 * time.Millisecond

type Status int

const (
	Detecting Status = iota
	Mismatch
	Final
)

func (s Status) String() string {
	switch s {
	case Detecting:
		return "detecting"
	case Mismatch:
		return "mismatch"
	case Final:
		return "final"
	default:
		return "unknown"
	}
}

// State is the observable lock state. Provisional and Display are codes,
// empty until the server reports something.
type State struct {
	Provisional string
	Status      Status
	Display     string
}

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d, on a goroutine of its choosing.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler is backed by time.AfterFunc.
var SystemScheduler Scheduler = systemScheduler{}

// Lock tracks provisional versus locked source language. It is not safe for
// concurrent use: every method, and every func handed to post, must run on
// the owner's goroutine.
type Lock struct {
	state State
	sched Scheduler
	post  func(func())

	timer Timer
	gen   uint64 // bumped on every cancel; a fired timer from an older gen is ignored
}

// NewLock returns a Lock in Detecting. post moves the settle step of a
// mismatch back onto the owner's goroutine; nil runs it in place.
func NewLock(sched Scheduler, post func(func())) *Lock {
	if sched == nil {
		sched = SystemScheduler
	}
	if post == nil {
		post = func(f func()) { f() }
	}
	return &Lock{sched: sched, post: post}
}

func (l *Lock) State() State {
	return l.state
}

// Pending reports whether a mismatch settle is scheduled.
func (l *Lock) Pending() bool {
	return l.timer != nil
}

// Detected records a provisional language from a lang event.
func (l *Lock) Detected(code string) {
	l.Cancel()
	code = Normalize(code)
	l.state = State{Provisional: code, Status: Detecting, Display: code}
}

// Locked applies a lang_locked event. A lock that agrees with the provisional
// guess (or arrives without one) is final at once; a contradicting lock is a
// Mismatch for MismatchWindow and then Final. The locked language is shown
// in both cases and becomes the new provisional baseline.
func (l *Lock) Locked(code string) {
	l.Cancel()
	code = Normalize(code)

	mismatch := l.state.Provisional != "" && l.state.Provisional != code
	l.state.Provisional = code
	l.state.Display = code
	if !mismatch {
		l.state.Status = Final
		return
	}

	l.state.Status = Mismatch
	gen := l.gen
	l.timer = l.sched.AfterFunc(MismatchWindow, func() {
		l.post(func() { l.settle(gen) })
	})
}

func (l *Lock) settle(gen uint64) {
	if gen != l.gen {
		return
	}
	l.timer = nil
	l.state.Status = Final
}

// Cancel drops any pending settle. A timer that already fired and is queued
// on post becomes a no-op.
func (l *Lock) Cancel() {
	l.gen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

// Package link implements the volume synchronization engine: a single
// background task that keeps two audio endpoints at the same volume.
package link

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jmsalzman/volink/internal/device"
)

// Default timing and comparison parameters.
const (
	// DefaultPollInterval is the idle delay between ticks.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultRecoveryInterval is the longer idle used while a device is
	// unavailable or after a tick failure.
	DefaultRecoveryInterval = 500 * time.Millisecond
	// DefaultTolerance is the absolute volume difference below which a
	// change is ignored.
	DefaultTolerance = 0.001
	// stopGracePeriod bounds how long Stop waits for the task to exit.
	stopGracePeriod = 1 * time.Second
)

// Direction indicates which endpoint's change was propagated.
type Direction string

const (
	// DirectionAToB means slot A changed and was written to slot B.
	DirectionAToB Direction = "a-to-b"
	// DirectionBToA means slot B changed and was written to slot A.
	DirectionBToA Direction = "b-to-a"
)

// Event describes one successful volume propagation.
type Event struct {
	Time      time.Time
	Direction Direction
	FromID    string
	FromName  string
	ToID      string
	ToName    string
	Volume    float64
}

// SlotStatus is a point-in-time view of one endpoint slot.
type SlotStatus struct {
	ID         string
	Name       string
	Available  bool
	LastVolume *float64
}

// Status is a point-in-time view of the linker.
type Status struct {
	Running     bool
	Enabled     bool
	A           *SlotStatus
	B           *SlotStatus
	LastSyncAt  time.Time
	LastError   string
	LastErrorAt time.Time
}

// Linker owns two endpoint slots and a single background polling task that
// detects which side changed and mirrors the new value to the other side.
// All state is guarded by one mutex; every public operation holds it for its
// full duration, so slot swaps and enable toggles never interleave with a
// tick's read-decide-write sequence.
type Linker struct {
	mu     sync.Mutex
	logger *slog.Logger

	a, b *device.Endpoint

	enabled bool
	running bool
	// syncing is the re-entrancy guard: the tick body is skipped entirely
	// while it is set. Under the single-task design it is a safety net for
	// future event-driven wake-ups, but its contract is honored regardless.
	syncing bool

	// Last observed volume per slot. nil means "no baseline yet" and forces
	// the change-detected path on the next comparison. Reset at task start
	// only; swapping an endpoint does not clear the slot's baseline.
	lastA, lastB *float64

	poll      time.Duration
	recovery  time.Duration
	tolerance float64

	onSync func(Event)

	lastSyncAt  time.Time
	lastErr     string
	lastErrAt   time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a linker for the given endpoint slots. Either slot may be nil;
// synchronization pauses until both are set. Linking starts enabled.
func New(a, b *device.Endpoint, logger *slog.Logger) *Linker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Linker{
		logger:    logger,
		a:         a,
		b:         b,
		enabled:   true,
		poll:      DefaultPollInterval,
		recovery:  DefaultRecoveryInterval,
		tolerance: DefaultTolerance,
	}
}

// SetPollInterval sets the idle delay between ticks.
func (l *Linker) SetPollInterval(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.poll = d
}

// SetRecoveryInterval sets the idle delay used on unavailable/error paths.
func (l *Linker) SetRecoveryInterval(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recovery = d
}

// SetTolerance sets the absolute difference below which changes are ignored.
func (l *Linker) SetTolerance(tol float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tolerance = tol
}

// SetSyncCallback registers a callback invoked after each successful
// propagation. The callback runs on the polling goroutine, outside the
// linker's critical section.
func (l *Linker) SetSyncCallback(fn func(Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onSync = fn
}

// SetEndpoints atomically replaces both slots. Either may be nil. The
// per-slot volume baselines are intentionally left untouched (matching the
// reference behavior): the tick after a swap may compare against the
// previous device's baseline once.
func (l *Linker) SetEndpoints(a, b *device.Endpoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a = a
	l.b = b
}

// SetEnabled toggles whether ticks perform any comparison or writes. It does
// not stop the background task and does not reset volume baselines.
func (l *Linker) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// Enabled reports whether linking is enabled.
func (l *Linker) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Running reports whether the background task is active.
func (l *Linker) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Start launches the background polling task. Calling Start while the task
// is running is a no-op: at most one task exists per linker.
func (l *Linker) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.lastA = nil
	l.lastB = nil
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	go l.run(l.stopCh, l.doneCh)
	l.logger.Info("volume linker started", "poll", l.poll, "tolerance", l.tolerance)
}

// Stop signals the task to exit and waits up to a fixed grace period for it
// to finish. It returns after the grace period whether or not the task
// confirmed exit; a task stuck inside a hung device call is not killed.
// Stopping a linker that is not running is a no-op.
func (l *Linker) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopCh)
	doneCh := l.doneCh
	l.mu.Unlock()

	select {
	case <-doneCh:
		l.logger.Info("volume linker stopped")
	case <-time.After(stopGracePeriod):
		l.logger.Warn("volume linker did not confirm exit within grace period")
	}
}

// Status returns a snapshot of the linker's state.
func (l *Linker) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := Status{
		Running:     l.running,
		Enabled:     l.enabled,
		LastSyncAt:  l.lastSyncAt,
		LastError:   l.lastErr,
		LastErrorAt: l.lastErrAt,
	}
	if l.a != nil {
		st.A = &SlotStatus{ID: l.a.ID(), Name: l.a.Name(), Available: l.a.Available(), LastVolume: copyPtr(l.lastA)}
	}
	if l.b != nil {
		st.B = &SlotStatus{ID: l.b.ID(), Name: l.b.Name(), Available: l.b.Available(), LastVolume: copyPtr(l.lastB)}
	}
	return st
}

func (l *Linker) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		delay, ev := l.tick()
		if ev != nil {
			l.mu.Lock()
			cb := l.onSync
			l.mu.Unlock()
			if cb != nil {
				cb(*ev)
			}
		}
		select {
		case <-stopCh:
			return
		case <-time.After(delay):
		}
	}
}

// tick executes one iteration of the synchronization loop and returns the
// idle delay before the next one, plus the propagation event if one
// occurred. The whole body runs inside the critical section.
func (l *Linker) tick() (delay time.Duration, ev *Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// A single bad iteration must never terminate the task: force the
	// guard clear, record the error and back off.
	defer func() {
		if r := recover(); r != nil {
			l.syncing = false
			l.lastErr = fmt.Sprintf("tick failed: %v", r)
			l.lastErrAt = time.Now()
			l.logger.Error("sync tick failed", "error", r)
			delay = l.recovery
			ev = nil
		}
	}()

	if !l.enabled {
		return l.poll, nil
	}
	if l.a == nil || l.b == nil {
		return l.poll, nil
	}

	// Best-effort recovery of transiently disconnected devices.
	if !l.a.Available() {
		if !l.a.Initialize() {
			return l.recovery, nil
		}
		l.logger.Info("device recovered", "device", l.a.Name())
	}
	if !l.b.Available() {
		if !l.b.Initialize() {
			return l.recovery, nil
		}
		l.logger.Info("device recovered", "device", l.b.Name())
	}

	if l.syncing {
		return l.poll, nil
	}

	curA, okA := l.a.Volume()
	curB, okB := l.b.Volume()
	if !okA || !okB {
		return l.poll, nil
	}

	switch {
	case l.lastA == nil || math.Abs(curA-*l.lastA) > l.tolerance:
		// A changed (or first observation): push A's value to B. A wins
		// when both sides changed in the same tick.
		l.syncing = true
		ok := l.b.SetVolume(curA)
		l.lastA = ptr(curA)
		l.lastB = ptr(curA)
		l.syncing = false
		if ok {
			l.lastSyncAt = time.Now()
			l.logger.Debug("volume propagated", "from", l.a.Name(), "to", l.b.Name(), "volume", curA)
			ev = &Event{
				Time:      l.lastSyncAt,
				Direction: DirectionAToB,
				FromID:    l.a.ID(),
				FromName:  l.a.Name(),
				ToID:      l.b.ID(),
				ToName:    l.b.Name(),
				Volume:    curA,
			}
		} else {
			l.logger.Warn("volume write skipped", "device", l.b.Name())
		}
	case l.lastB == nil || math.Abs(curB-*l.lastB) > l.tolerance:
		l.syncing = true
		ok := l.a.SetVolume(curB)
		l.lastB = ptr(curB)
		l.lastA = ptr(curB)
		l.syncing = false
		if ok {
			l.lastSyncAt = time.Now()
			l.logger.Debug("volume propagated", "from", l.b.Name(), "to", l.a.Name(), "volume", curB)
			ev = &Event{
				Time:      l.lastSyncAt,
				Direction: DirectionBToA,
				FromID:    l.b.ID(),
				FromName:  l.b.Name(),
				ToID:      l.a.ID(),
				ToName:    l.a.Name(),
				Volume:    curB,
			}
		} else {
			l.logger.Warn("volume write skipped", "device", l.a.Name())
		}
	default:
		// No change beyond tolerance: absorb drift without writing.
		l.lastA = ptr(curA)
		l.lastB = ptr(curB)
	}

	return l.poll, ev
}

func ptr(v float64) *float64 { return &v }

func copyPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

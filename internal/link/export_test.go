package link

import "time"

// Tick exposes a single synchronization pass to tests so the polling
// algorithm can be exercised deterministically, without goroutine timing.
func (l *Linker) Tick() (time.Duration, *Event) {
	return l.tick()
}

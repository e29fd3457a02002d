package syncutil

import "time"

// AtomicTime is a time.Time that can be loaded and stored by multiple
// goroutines.
type AtomicTime = Atomic[time.Time]

// NewAtomicTime creates a new AtomicTime with an initial value.
func NewAtomicTime(initial time.Time) *AtomicTime {
	return NewAtomic(initial)
}

// StoreNow sets the value to the current time.
func StoreNow(a *AtomicTime) {
	a.Store(time.Now())
}

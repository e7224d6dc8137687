package reservation

import "time"

// Clock supplies the evaluation instant used for temporal classification.
// Injected so tests control "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// Package clock provides an injectable time source so services that depend
// on "now" (lead recency scoring, workflow timing) stay testable.
// This is part of the platform layer and contains no business logic.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock (UTC).
func System() Clock {
	return systemClock{}
}

// Fixed returns a Clock that always reports the given instant. Test helper.
type Fixed struct {
	Instant time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.Instant }

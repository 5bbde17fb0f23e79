package lifespan

import "time"

// --------------------------------------------------------------------------
// Lifespan Type
// --------------------------------------------------------------------------

// Lifespan describes how long a stored value stays alive. All fields are
// additive, so {Hours: 1, Minutes: 30} is one and a half hours.
// The zero value means "no lifespan given" and callers are expected to
// substitute their own default.
type Lifespan struct {
	Days         int64
	Hours        int64
	Minutes      int64
	Seconds      int64
	Milliseconds int64
}

// Millis returns a Lifespan for a raw millisecond count.
func Millis(ms int64) Lifespan {
	return Lifespan{Milliseconds: ms}
}

// Of returns a Lifespan for a time.Duration, truncated to milliseconds.
func Of(d time.Duration) Lifespan {
	return Millis(d.Milliseconds())
}

// --------------------------------------------------------------------------
// Conversion
// --------------------------------------------------------------------------

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Millis converts the Lifespan to a total millisecond count.
func (l Lifespan) Millis() int64 {
	return l.Days*msPerDay +
		l.Hours*msPerHour +
		l.Minutes*msPerMinute +
		l.Seconds*msPerSecond +
		l.Milliseconds
}

// Duration converts the Lifespan to a time.Duration.
func (l Lifespan) Duration() time.Duration {
	return time.Duration(l.Millis()) * time.Millisecond
}

// IsZero reports whether no component of the Lifespan is set.
func (l Lifespan) IsZero() bool {
	return l == Lifespan{}
}

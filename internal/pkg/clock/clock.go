// Package clock lets services read the current time through an interface so
// tests can pin it.
package clock

import "time"

// Clocker abstracts time.Now.
type Clocker interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func New() System { return System{} }

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns T. Advance moves it forward.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time { return f.T }

func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }

// Package types contains special types used across the backend.
package types

import (
	"fmt"
	"time"
)

// Window is a statistics time window ending now.
type Window string

const (
	WindowDay   Window = "24h"
	WindowWeek  Window = "7d"
	WindowMonth Window = "30d"
)

// ErrWindowInvalid is returned when a string is not one of the defined
// statistic windows.
var ErrWindowInvalid = fmt.Errorf("the window must be one of %q, %q, %q", WindowDay, WindowWeek, WindowMonth)

// Valid reports whether the window is one of the defined windows.
func (w Window) Valid() bool {
	return w == WindowDay || w == WindowWeek || w == WindowMonth
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	}

	return 0
}

// Start returns the point in time the window begins at, relative to now.
func (w Window) Start(now time.Time) time.Time {
	return now.In(time.UTC).Add(-w.Duration())
}

func (w Window) String() string {
	return string(w)
}

// UnmarshalParam binds a query or URI parameter to a Window.
func (w *Window) UnmarshalParam(p string) error {
	parsed := Window(p)
	if !parsed.Valid() {
		return ErrWindowInvalid
	}

	*w = parsed
	return nil
}

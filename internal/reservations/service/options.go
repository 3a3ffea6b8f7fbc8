package service

import "time"

type settings struct {
	now func() time.Time
}

type Option func(*settings)

// WithClock replaces time.Now. "Today" is derived from it in the configured location.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

func applyOptions(opts []Option) settings {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

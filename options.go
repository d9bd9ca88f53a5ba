package deepzoom

import (
	"github.com/sirupsen/logrus"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSync makes Update compute orbits in the calling goroutine.
func WithSync(sync bool) Option {
	return func(m *Manager) {
		m.sync = sync
	}
}

// WithMaxTextureWidth sets the maximum texture width. Values < 1 are ignored.
// The default is DefaultMaxTextureWidth.
func WithMaxTextureWidth(width int) Option {
	return func(m *Manager) {
		if width > 0 {
			m.maxWidth = width
		}
	}
}

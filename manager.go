// Copyright 2020 Aleksandr Demakin. All rights reserved.

package deepzoom

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/avdva/deepzoom/bigfloat"
	"github.com/avdva/deepzoom/orbit"
)

// Manager owns a reference orbit and its texture.
// Only one computation may be in flight. Updates arriving meanwhile are not queued:
// the last view is checked again, when the computation completes.
// All methods are safe for concurrent use.
type Manager struct {
	backend  TextureBackend
	logger   logrus.FieldLogger
	sync     bool
	maxWidth int

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	idle    *sync.Cond
	orbit   *orbit.Orbit
	tex     Texture
	enabled bool
	status  Status
	busy    bool
	closed  bool
	latest  View
}

// NewManager returns a new idle manager.
func NewManager(backend TextureBackend, opts ...Option) *Manager {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := &Manager{
		backend:  backend,
		logger:   logger,
		maxWidth: DefaultMaxTextureWidth,
		orbit:    orbit.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.idle = sync.NewCond(&m.mu)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Update is called every frame with the current view.
// It starts a computation, if the view needs deep zoom and the orbit is stale.
// In sync mode the computation runs before Update returns.
func (m *Manager) Update(v View) {
	m.mu.Lock()
	m.latest = v
	start := m.checkLocked()
	m.mu.Unlock()
	if !start {
		return
	}
	if m.sync {
		m.run(v)
	} else {
		go m.run(v)
	}
}

// checkLocked applies the latest view to the state.
// It returns true, if the caller must run a computation for it.
func (m *Manager) checkLocked() bool {
	v := m.latest
	if m.closed || m.status == StatusError {
		return false
	}
	if !ShouldUseDeepZoom(v.ZoomLog) {
		// the texture is kept, zooming in again may reuse it.
		m.enabled = false
		if !m.busy {
			m.status = StatusIdle
		}
		return false
	}
	if m.busy {
		return false
	}
	if m.tex.IsZero() || m.orbit.NeedsUpdate(v.CenterRe, v.CenterIm, v.ZoomLog, v.Iterations) {
		m.busy = true
		m.status = StatusComputing
		m.logger.WithFields(viewFields(v)).Debug("orbit computation started")
		return true
	}
	if m.status == StatusIdle {
		m.status = StatusReady
		m.enabled = true
	}
	return false
}

func (m *Manager) run(v View) {
	for {
		o := orbit.New()
		var err error
		if m.sync {
			o.ComputeSync(v.CenterRe, v.CenterIm, v.ZoomLog, v.Iterations)
		} else {
			err = o.Compute(m.ctx, v.CenterRe, v.CenterIm, v.ZoomLog, v.Iterations)
		}
		if err != nil {
			m.finish(func() {
				m.status = StatusIdle
				m.logger.WithFields(viewFields(v)).Debugf("orbit computation aborted: %v", err)
			})
			return
		}
		if err = m.install(o); err != nil {
			m.fail(v, err)
			return
		}
		next := false
		m.finish(func() {
			m.status = StatusReady
			m.enabled = true
			m.logger.WithFields(viewFields(v)).WithField("length", o.Len()).Debug("orbit ready")
			next = m.checkLocked()
		})
		if !next {
			return
		}
		m.mu.Lock()
		v = m.latest
		m.mu.Unlock()
	}
}

// finish runs f under the lock and wakes up waiters.
// busy is cleared before f, so f may start a new computation.
func (m *Manager) finish(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = false
	f()
	if !m.busy {
		m.idle.Broadcast()
	}
}

// install packs the orbit and replaces the current texture.
// The old texture is released before the new one is created, in between the manager is disabled.
func (m *Manager) install(o *orbit.Orbit) error {
	if !m.backend.SupportsFloatTextures() {
		return ErrNoFloatTextures
	}
	width, height := TextureSize(o.Len(), m.maxWidth)
	texels := PackOrbit(o, width, height)
	m.releaseTexture()
	h, err := m.backend.CreateArrayTexture(width, height, TextureLayers, texels)
	if err != nil {
		return fmt.Errorf("texture creation failed: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orbit = o
	m.tex = Texture{
		Handle: h,
		Width:  width,
		Height: height,
		Layers: TextureLayers,
		Length: o.Len(),
	}
	return nil
}

func (m *Manager) fail(v View, err error) {
	m.releaseTexture()
	m.finish(func() {
		m.orbit = orbit.New()
		m.status = StatusError
		m.enabled = false
	})
	m.logger.WithFields(viewFields(v)).WithError(err).Warn("deep zoom disabled")
}

func (m *Manager) releaseTexture() {
	m.mu.Lock()
	old := m.tex
	m.tex = Texture{}
	m.enabled = false
	m.mu.Unlock()
	if !old.IsZero() {
		m.backend.DeleteTexture(old.Handle)
	}
}

// Snapshot returns the state to render the current frame with.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Enabled:     m.enabled,
		Status:      m.status,
		Reference:   m.orbit.ReferenceHiLo(),
		Texture:     m.tex,
		OrbitLength: m.tex.Length,
	}
}

// Status returns the current status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// HasDeepZoom returns true, if the current frame can be rendered with perturbation.
func (m *Manager) HasDeepZoom() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled && m.status == StatusReady
}

// SupportsDeepZoom returns true, if deep zoom is possible at all.
func (m *Manager) SupportsDeepZoom() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status != StatusError && m.backend.SupportsFloatTextures()
}

// Reset leaves the error state, if the backend supports float textures now.
// It returns true if the manager went idle.
func (m *Manager) Reset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusError || !m.backend.SupportsFloatTextures() {
		return false
	}
	m.status = StatusIdle
	m.logger.Debug("deep zoom reset")
	return true
}

// Wait blocks until no computation is in flight.
func (m *Manager) Wait() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.busy {
		m.idle.Wait()
	}
}

// Close aborts the computation in flight and releases the texture.
// Updates after Close are ignored.
func (m *Manager) Close() {
	m.cancel()
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.Wait()
	m.releaseTexture()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = StatusIdle
}

func viewFields(v View) logrus.Fields {
	return logrus.Fields{
		"zoom":       v.ZoomLog,
		"limbs":      bigfloat.Limbs(v.ZoomLog),
		"iterations": v.Iterations,
	}
}

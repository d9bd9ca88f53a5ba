// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package deepzoom decides when the reference orbit of a Mandelbrot view must be
// recomputed and packs it into a float texture for a perturbation shading stage.
//
// The shading stage queries Snapshot once per frame. While HasDeepZoom is false
// it must render with standard precision.
package deepzoom

import (
	"errors"
	"fmt"

	"github.com/avdva/deepzoom/ds"
)

// DeepZoomThreshold is the zoom depth, after which the double-single camera arithmetic
// loses too many bits, and the perturbation path takes over.
const DeepZoomThreshold = 13

var (
	// ErrNoFloatTextures is returned, if the backend cannot store float32 texels.
	ErrNoFloatTextures = errors.New("float textures are not supported")
)

// ShouldUseDeepZoom returns true, if a view with given zoom depth needs perturbation rendering.
func ShouldUseDeepZoom(zoomLog float64) bool {
	return zoomLog > DeepZoomThreshold
}

// View is what the camera reports every frame.
type View struct {
	CenterRe, CenterIm float64
	// ZoomLog is log2 of the magnification.
	ZoomLog    float64
	Iterations int
}

// Status is the state of a Manager.
type Status int

const (
	// StatusIdle means no computation is in flight, and no orbit is bound.
	StatusIdle Status = iota
	// StatusComputing means an orbit computation is in flight.
	StatusComputing
	// StatusReady means the texture holds an orbit for the current view.
	StatusReady
	// StatusError means packing failed. Only Reset leaves this state.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusComputing:
		return "computing"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Snapshot is the per-frame state consumed by the shading stage.
type Snapshot struct {
	// Enabled is true, if the texture and the reference point may be used.
	Enabled bool
	Status  Status
	// Reference is the reference point as (re, im) double-single pairs.
	Reference   [2]ds.Pair
	Texture     Texture
	OrbitLength int
}

// Copyright 2020 Aleksandr Demakin. All rights reserved.

// viewer is an interactive Mandelbrot explorer.
// Drag to pan, scroll to zoom, R resets the view.
package main

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/avdva/deepzoom"
	"github.com/avdva/deepzoom/memtex"
	"github.com/avdva/deepzoom/render"
	"github.com/avdva/deepzoom/view"
)

const zoomPerWheelStep = 0.25

type game struct {
	cam      *view.Camera
	manager  *deepzoom.Manager
	renderer *render.Renderer
	logger   logrus.FieldLogger

	dragging     bool
	lastX, lastY int
	dirty        bool
	lastDeep     bool
	lastTex      deepzoom.TextureHandle

	frame  *image.RGBA
	mode   render.Mode
	screen *ebiten.Image
}

func main() {
	var width, height int
	var debug bool
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cmd := &cobra.Command{
		Use:          "viewer",
		Short:        "Interactive Mandelbrot explorer",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				logger.SetLevel(logrus.DebugLevel)
			}
			return run(width, height, logger)
		},
	}
	cmd.Flags().IntVar(&width, "width", 640, "Window width")
	cmd.Flags().IntVar(&height, "height", 480, "Window height")
	cmd.Flags().BoolVar(&debug, "debug", false, "Debug logging")
	if err := cmd.Execute(); err != nil {
		logger.WithError(err).Error("viewer failed")
		os.Exit(1)
	}
}

func run(width, height int, logger *logrus.Logger) error {
	backend := memtex.New(true)
	g := &game{
		cam:      view.NewCamera(width, height),
		manager:  deepzoom.NewManager(backend, deepzoom.WithLogger(logger)),
		renderer: render.New(backend, render.WithLogger(logger)),
		logger:   logger,
		dirty:    true,
	}
	defer g.manager.Close()
	ebiten.SetWindowTitle("deepzoom")
	ebiten.SetWindowSize(width, height)
	ebiten.SetTPS(30)
	return ebiten.RunGame(g)
}

func (g *game) Update() error {
	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.dragging && (x != g.lastX || y != g.lastY) {
			g.cam.Pan(float64(x-g.lastX), float64(y-g.lastY))
			g.dirty = true
		}
		g.dragging = true
		g.lastX, g.lastY = x, y
	} else if g.dragging {
		g.dragging = false
		g.dirty = true
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.ZoomAt(float64(x)+0.5, float64(y)+0.5, wy*zoomPerWheelStep)
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.cam = view.NewCamera(g.cam.Width, g.cam.Height)
		g.dirty = true
	}

	// the orbit is not recomputed while the user drags.
	if !g.dragging {
		g.manager.Update(g.cam.View())
	}
	// a texture stays usable while its replacement is computed.
	snap := g.manager.Snapshot()
	snap.Enabled = snap.Enabled && !g.dragging
	if snap.Enabled != g.lastDeep || snap.Texture.Handle != g.lastTex {
		g.lastDeep, g.lastTex = snap.Enabled, snap.Texture.Handle
		g.dirty = true
	}
	if !g.dirty {
		return nil
	}
	g.dirty = false
	field, err := g.renderer.Field(context.Background(), g.cam, snap)
	if err != nil {
		return err
	}
	g.frame = field.Image()
	g.mode = field.Mode
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.frame == nil {
		return
	}
	b := g.frame.Bounds()
	if g.screen == nil || g.screen.Bounds() != b {
		if g.screen != nil {
			g.screen.Deallocate()
		}
		g.screen = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.screen.WritePixels(g.frame.Pix)
	screen.DrawImage(g.screen, nil)
	re, im := g.cam.Center()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%.17g %+.17gi\nzoom 2^%.2f, %d iterations\n%s, %s",
		re, im, g.cam.ZoomLog, g.cam.MaxIter(), g.mode, g.manager.Status()))
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cam.Width, g.cam.Height
}

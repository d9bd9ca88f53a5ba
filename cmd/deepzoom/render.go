package main

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/avdva/deepzoom"
	"github.com/avdva/deepzoom/memtex"
	"github.com/avdva/deepzoom/render"
	"github.com/avdva/deepzoom/view"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the view into a PNG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.Context())
		},
	}
	flags := cmd.Flags()
	flags.Int("width", 0, "Image width")
	flags.Int("height", 0, "Image height")
	flags.Int("workers", 0, "Tiles rendered in parallel, 0 uses all CPUs")
	flags.Int("tile-size", 0, "Tile side in pixels")
	flags.Bool("no-float-textures", false, "Pretend float textures are unsupported")
	flags.StringP("output", "o", "", "Output file")
	_ = a.v.BindPFlag("render.width", flags.Lookup("width"))
	_ = a.v.BindPFlag("render.height", flags.Lookup("height"))
	_ = a.v.BindPFlag("render.workers", flags.Lookup("workers"))
	_ = a.v.BindPFlag("render.tile_size", flags.Lookup("tile-size"))
	_ = a.v.BindPFlag("render.no_float_textures", flags.Lookup("no-float-textures"))
	_ = a.v.BindPFlag("render.output", flags.Lookup("output"))
	return cmd
}

func (a *app) camera() (*view.Camera, error) {
	c, err := a.cfg.center()
	if err != nil {
		return nil, err
	}
	cam := view.NewCamera(a.cfg.Render.Width, a.cfg.Render.Height)
	cam.SetCenter(c.Float64())
	cam.ZoomLog = a.cfg.View.Zoom
	cam.Iterations = a.cfg.View.Iterations
	return cam, nil
}

func (a *app) render(ctx context.Context) error {
	cam, err := a.camera()
	if err != nil {
		return err
	}
	backend := memtex.New(!a.cfg.Render.NoFloatTextures)
	m := deepzoom.NewManager(backend,
		deepzoom.WithSync(true),
		deepzoom.WithLogger(a.logger),
		deepzoom.WithMaxTextureWidth(a.cfg.Render.MaxTextureWidth))
	defer m.Close()
	m.Update(cam.View())
	if deepzoom.ShouldUseDeepZoom(cam.ZoomLog) && !m.HasDeepZoom() {
		a.logger.WithField("status", m.Status()).Warn("deep zoom unavailable, the image may be pixelated")
	}

	r := render.New(backend,
		render.WithLogger(a.logger),
		render.WithWorkers(a.cfg.Render.Workers),
		render.WithTileSize(a.cfg.Render.TileSize))
	field, err := r.Field(ctx, cam, m.Snapshot())
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}
	if err := savePNG(a.cfg.Render.Output, field); err != nil {
		return err
	}
	a.logger.WithFields(logrus.Fields{
		"file": a.cfg.Render.Output,
		"mode": field.Mode,
		"iter": field.MaxIter,
	}).Info("image saved")
	return nil
}

func savePNG(path string, field *render.Field) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := png.Encode(f, field.Image()); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return f.Close()
}

package main

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/avdva/deepzoom/orbit"
	"github.com/avdva/deepzoom/view"
)

func newOrbitCmd(a *app) *cobra.Command {
	var plotPath string
	cmd := &cobra.Command{
		Use:   "orbit",
		Short: "Compute the reference orbit of the view center",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.orbit(cmd.Context())
			if err != nil {
				return err
			}
			cRe, cIm := o.Center()
			printf(cmd, "center:    %g %+gi\n", cRe, cIm)
			printf(cmd, "limbs:     %d\n", o.Precision())
			printf(cmd, "length:    %d of %d\n", o.Len(), o.IterLimit())
			printf(cmd, "escaped:   %v\n", o.Escaped())
			ref := o.ReferenceHiLo()
			printf(cmd, "reference: %#v, %#v\n", ref[0], ref[1])
			if plotPath == "" {
				return nil
			}
			return savePlot(o, plotPath)
		},
	}
	cmd.Flags().StringVar(&plotPath, "plot", "", "Save a plot of |Z(n)| into the file")
	return cmd
}

func (a *app) orbit(ctx context.Context) (*orbit.Orbit, error) {
	c, err := a.cfg.center()
	if err != nil {
		return nil, err
	}
	iter := a.cfg.View.Iterations
	if iter == 0 {
		iter = view.AutoIterations(a.cfg.View.Zoom)
	}
	o := orbit.New()
	if err := o.ComputeFrom(ctx, c, a.cfg.View.Zoom, iter); err != nil {
		return nil, fmt.Errorf("orbit computation failed: %w", err)
	}
	return o, nil
}

func savePlot(o *orbit.Orbit, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Reference orbit, %d limbs", o.Precision())
	p.X.Label.Text = "n"
	p.Y.Label.Text = "|Z(n)|"
	re, im, _, _ := o.Samples()
	pts := make(plotter.XYs, len(re))
	for i := range re {
		pts[i].X = float64(i)
		pts[i].Y = math.Hypot(re[i], im[i])
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to create plot: %w", err)
	}
	p.Add(line)
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

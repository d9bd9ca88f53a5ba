package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/avdva/deepzoom"
	"github.com/avdva/deepzoom/bigfloat"
	"github.com/avdva/deepzoom/view"
)

func newLimbsCmd(a *app) *cobra.Command {
	var from, to, step float64
	cmd := &cobra.Command{
		Use:   "limbs",
		Short: "Print the precision used for zoom depths",
		RunE: func(cmd *cobra.Command, args []string) error {
			if step <= 0 {
				return errors.New("step must be positive")
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "zoom\tlimbs\tbits\tdeep\titerations")
			for z := from; z <= to; z += step {
				limbs := bigfloat.Limbs(z)
				deep := "no"
				switch {
				case z > bigfloat.MaxZoomLog():
					deep = "degraded"
				case deepzoom.ShouldUseDeepZoom(z):
					deep = "yes"
				}
				fmt.Fprintf(w, "%g\t%d\t%d\t%s\t%d\n", z, limbs, limbs*bigfloat.LimbBits, deep, view.AutoIterations(z))
			}
			return w.Flush()
		},
	}
	flags := cmd.Flags()
	flags.Float64Var(&from, "from", 0, "First zoom depth")
	flags.Float64Var(&to, "to", 400, "Last zoom depth")
	flags.Float64Var(&step, "step", 25, "Zoom depth step")
	return cmd
}

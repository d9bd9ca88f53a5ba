// Copyright 2020 Aleksandr Demakin. All rights reserved.

// deepzoom renders Mandelbrot views and inspects reference orbits.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v       *viper.Viper
	cfgPath string
	cfg     *Config
	logger  *logrus.Logger
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:          "deepzoom",
		Short:        "Deep zoom Mandelbrot renderer",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.v, a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = setupLogger(cfg.Log, stderr)
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "Configuration file path (yaml)")
	flags.String("re", "", "Real part of the center")
	flags.String("im", "", "Imaginary part of the center")
	flags.Float64("zoom", 0, "Zoom depth, log2 of the magnification")
	flags.Int("iterations", 0, "Iteration target, 0 derives it from the zoom")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	setDefaults(a.v)
	_ = a.v.BindPFlag("view.re", flags.Lookup("re"))
	_ = a.v.BindPFlag("view.im", flags.Lookup("im"))
	_ = a.v.BindPFlag("view.zoom", flags.Lookup("zoom"))
	_ = a.v.BindPFlag("view.iterations", flags.Lookup("iterations"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	a.v.SetEnvPrefix("DEEPZOOM")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newRenderCmd(a),
		newOrbitCmd(a),
		newLimbsCmd(a),
		newConfigCmd(a),
	)
	return root
}

func setupLogger(cfg LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

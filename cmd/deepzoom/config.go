package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/avdva/deepzoom"
	"github.com/avdva/deepzoom/bigfloat"
)

// Config is the configuration of all subcommands.
type Config struct {
	View   ViewConfig   `yaml:"view" mapstructure:"view"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ViewConfig selects the region of the plane.
type ViewConfig struct {
	// Re and Im are decimal strings, so that centers deeper than float64 survive.
	Re         string  `yaml:"re" mapstructure:"re"`
	Im         string  `yaml:"im" mapstructure:"im"`
	Zoom       float64 `yaml:"zoom" mapstructure:"zoom"`
	Iterations int     `yaml:"iterations" mapstructure:"iterations"`
}

// RenderConfig controls image output.
type RenderConfig struct {
	Width           int    `yaml:"width" mapstructure:"width"`
	Height          int    `yaml:"height" mapstructure:"height"`
	Workers         int    `yaml:"workers" mapstructure:"workers"`
	TileSize        int    `yaml:"tile_size" mapstructure:"tile_size"`
	MaxTextureWidth int    `yaml:"max_texture_width" mapstructure:"max_texture_width"`
	NoFloatTextures bool   `yaml:"no_float_textures" mapstructure:"no_float_textures"`
	Output          string `yaml:"output" mapstructure:"output"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("view.re", "-0.5")
	v.SetDefault("view.im", "0")
	v.SetDefault("view.zoom", 0.0)
	v.SetDefault("view.iterations", 0)

	v.SetDefault("render.width", 800)
	v.SetDefault("render.height", 600)
	v.SetDefault("render.workers", 0)
	v.SetDefault("render.tile_size", 64)
	v.SetDefault("render.max_texture_width", deepzoom.DefaultMaxTextureWidth)
	v.SetDefault("render.no_float_textures", false)
	v.SetDefault("render.output", "mandel.png")

	v.SetDefault("log.level", "info")
}

func loadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("bad image size %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.TileSize <= 0 {
		return errors.New("tile size must be positive")
	}
	if c.View.Iterations < 0 {
		return errors.New("iterations must not be negative")
	}
	if _, err := c.center(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// center parses the view center with the precision its zoom requires.
func (c *Config) center() (bigfloat.Complex, error) {
	prec := bigfloat.Limbs(c.View.Zoom)
	re, err := bigfloat.ParseExact(strings.TrimSpace(c.View.Re), prec)
	if err != nil {
		return bigfloat.Complex{}, fmt.Errorf("bad real part: %w", err)
	}
	im, err := bigfloat.ParseExact(strings.TrimSpace(c.View.Im), prec)
	if err != nil {
		return bigfloat.Complex{}, fmt.Errorf("bad imaginary part: %w", err)
	}
	return bigfloat.NewComplex(re, im), nil
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestConfigDefaults(t *testing.T) {
	a := assert.New(t)
	out, err := execute(t, "config")
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	a.Equal("-0.5", cfg.View.Re)
	a.Equal("0", cfg.View.Im)
	a.Equal(800, cfg.Render.Width)
	a.Equal(600, cfg.Render.Height)
	a.Equal(4096, cfg.Render.MaxTextureWidth)
	a.Equal("info", cfg.Log.Level)
}

func TestConfigSources(t *testing.T) {
	a := assert.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "deepzoom.yaml")
	data := []byte("view:\n  re: \"-0.75\"\n  zoom: 10\nrender:\n  width: 320\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("DEEPZOOM_RENDER_HEIGHT", "240")

	out, err := execute(t, "config", "--config", path, "--zoom", "30")
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	a.Equal("-0.75", cfg.View.Re)
	// flags win over the file.
	a.Equal(30.0, cfg.View.Zoom)
	a.Equal(320, cfg.Render.Width)
	a.Equal(240, cfg.Render.Height)
}

func TestConfigErrors(t *testing.T) {
	a := assert.New(t)
	_, err := execute(t, "config", "--re", "abc")
	a.Error(err)
	_, err = execute(t, "config", "--log-level", "loud")
	a.Error(err)
	_, err = execute(t, "config", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	a.Error(err)
	_, err = execute(t, "render", "--width=-1")
	a.Error(err)
}

func TestLimbs(t *testing.T) {
	a := assert.New(t)
	out, err := execute(t, "limbs", "--from", "0", "--to", "400", "--step", "100")
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	a.Len(lines, 6)
	a.Contains(string(lines[0]), "limbs")
	a.Contains(string(lines[2]), "144")
	a.Contains(string(lines[5]), "degraded")
	_, err = execute(t, "limbs", "--step", "0")
	a.Error(err)
}

func TestRender(t *testing.T) {
	a := assert.New(t)
	for _, args := range [][]string{
		{"--zoom", "2"},
		{"--zoom", "15", "--re", "-0.7436438870371587", "--im", "0.1318259042053"},
		{"--zoom", "15", "--no-float-textures"},
	} {
		path := filepath.Join(t.TempDir(), "out.png")
		args = append([]string{"render", "--width", "16", "--height", "12", "--iterations", "100", "-o", path}, args...)
		_, err := execute(t, args...)
		require.NoError(t, err)
		f, err := os.Open(path)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		a.Equal(16, img.Bounds().Dx())
		a.Equal(12, img.Bounds().Dy())
	}
}

func TestRenderIterationCap(t *testing.T) {
	a := assert.New(t)
	path := filepath.Join(t.TempDir(), "out.png")
	_, err := execute(t, "render", "--width", "4", "--height", "3", "--zoom", "15", "--iterations", "60000", "-o", path)
	require.NoError(t, err)
	st, err := os.Stat(path)
	require.NoError(t, err)
	a.Greater(st.Size(), int64(0))
}

func TestOrbit(t *testing.T) {
	a := assert.New(t)
	path := filepath.Join(t.TempDir(), "orbit.png")
	out, err := execute(t, "orbit", "--zoom", "100", "--iterations", "50", "--plot", path)
	require.NoError(t, err)
	a.Contains(out, "limbs:     6")
	a.Contains(out, "length:    100 of 100")
	a.Contains(out, "escaped:   false")
	st, err := os.Stat(path)
	require.NoError(t, err)
	a.Greater(st.Size(), int64(0))

	out, err = execute(t, "orbit", "--re", "2", "--iterations", "50")
	require.NoError(t, err)
	a.Contains(out, "escaped:   true")
}

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadFormats(t *testing.T) {
	want := Config{AssetDir: "assets", StorePath: "bakes.db", PreviewSize: 128, HighPoly: true}
	for name, body := range map[string]string{
		"c.json": `{"asset_dir":"assets","store_path":"bakes.db","preview_size":128,"high_poly":true}`,
		"c.yaml": "asset_dir: assets\nstore_path: bakes.db\npreview_size: 128\nhigh_poly: true\n",
		"c.yml":  "asset_dir: assets\nstore_path: bakes.db\npreview_size: 128\nhigh_poly: true\n",
		"c.toml": "asset_dir = \"assets\"\nstore_path = \"bakes.db\"\npreview_size = 128\nhigh_poly = true\n",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Load(writeFile(t, name, body))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "c.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = Load(writeFile(t, "c.json", "{"))
	assert.ErrorContains(t, err, "config: parse")
}

func TestResolveDefaults(t *testing.T) {
	base := t.TempDir()
	c := Config{StorePath: "bakes.db"}
	c.Resolve(Flags{BaseDir: base})

	assert.Equal(t, filepath.Join(base, "Assets"), c.AssetDir)
	assert.Equal(t, filepath.Join(base, "Previews"), c.OutputDir)
	assert.Equal(t, filepath.Join(base, "bakes.db"), c.StorePath)
	assert.Equal(t, 256, c.PreviewSize)
	assert.Equal(t, 2, c.Supersample)
	assert.Equal(t, runtime.NumCPU(), c.Workers)
	assert.True(t, c.LowPoly())
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	base := t.TempDir()
	c := Config{BaseDir: "/elsewhere", AssetDir: "/abs/assets", PreviewSize: 64, Workers: 2}
	c.Resolve(Flags{BaseDir: base, OutputDir: "out", StorePath: ":memory:", HighPoly: true, Size: 512, Workers: 8})

	assert.Equal(t, base, c.BaseDir)
	assert.Equal(t, "/abs/assets", c.AssetDir)
	assert.Equal(t, filepath.Join(base, "out"), c.OutputDir)
	assert.Equal(t, ":memory:", c.StorePath)
	assert.Equal(t, 512, c.PreviewSize)
	assert.Equal(t, 8, c.Workers)
	assert.False(t, c.LowPoly())
}

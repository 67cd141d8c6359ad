package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"folio/internal/theme"
)

func TestLoadSettingsDefaults(t *testing.T) {
	base := t.TempDir()

	settings, err := LoadSettings(LoadOptions{BaseDir: base})
	require.NoError(t, err)
	require.Equal(t, theme.DefaultDarknessThreshold, settings.DarknessThreshold)
	require.Equal(t, theme.DefaultMinimumContrastRatio, settings.MinimumContrastRatio)
	require.Equal(t, QuantizerMedianCut, settings.Quantizer)
	require.Equal(t, filepath.Join(base, "themes.db"), settings.DBPath)
	require.Equal(t, theme.DefaultOptions(), settings.SynthesisOptions())
}

func TestLoadSettingsLayers(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "config.yaml"), []byte(
		"darkness_threshold: 0.4\nminimum_contrast_ratio: 4.5\nquantizer: kmeans\n",
	), 0o644))

	t.Setenv("FOLIO_MINIMUM_CONTRAST_RATIO", "7")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("darkness-threshold", theme.DefaultDarknessThreshold, "")
	require.NoError(t, flags.Parse([]string{"--darkness-threshold=0.5"}))

	settings, err := LoadSettings(LoadOptions{
		BaseDir: base,
		Flags:   map[string]*pflag.Flag{KeyDarknessThreshold: flags.Lookup("darkness-threshold")},
	})
	require.NoError(t, err)
	require.Equal(t, 0.5, settings.DarknessThreshold)
	require.Equal(t, 7.0, settings.MinimumContrastRatio)
	require.Equal(t, QuantizerKMeans, settings.Quantizer)
}

func TestLoadSettingsExplicitTOML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "folio.toml")
	require.NoError(t, os.WriteFile(file, []byte("color_count = 6\nworkers = 3\n"), 0o644))

	settings, err := LoadSettings(LoadOptions{ConfigFile: file, BaseDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, 6, settings.ColorCount)
	require.Equal(t, 3, settings.WorkerCount())
}

func TestLoadSettingsIgnoreNearExtremes(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "config.yaml"), []byte("ignore_near_white: true\n"), 0o644))
	t.Setenv("FOLIO_IGNORE_NEAR_BLACK", "true")

	settings, err := LoadSettings(LoadOptions{BaseDir: base})
	require.NoError(t, err)

	options := settings.QuantizeOptions()
	require.True(t, options.IgnoreNearWhite)
	require.True(t, options.IgnoreNearBlack)
	require.Positive(t, options.WorkerCount)
}

func TestLoadSettingsRejectsUnknownQuantizer(t *testing.T) {
	t.Setenv("FOLIO_QUANTIZER", "octree")

	_, err := LoadSettings(LoadOptions{BaseDir: t.TempDir()})
	require.Error(t, err)
}

func TestSynthesisOptionsResetsOutOfRange(t *testing.T) {
	settings := Settings{DarknessThreshold: -1, MinimumContrastRatio: 40, ColorCount: 0}
	require.Equal(t, theme.DefaultOptions(), settings.SynthesisOptions())
}

func TestResolvePathsCreatesDirectories(t *testing.T) {
	base := filepath.Join(t.TempDir(), "folio")

	paths, err := ResolvePaths(AppSlug, base)
	require.NoError(t, err)
	require.Equal(t, base, paths.BaseDir)
	require.DirExists(t, paths.CoverCacheDir)
}

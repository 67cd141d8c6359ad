package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"folio/internal/db"
	"folio/internal/palette"
	"folio/internal/theme"
	"folio/internal/themestore"
)

func newTestThemeService(t *testing.T) (*ThemeService, string) {
	t.Helper()

	database, err := db.Bootstrap(context.Background(), db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cacheDir := filepath.Join(t.TempDir(), "covers")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))

	extractor := palette.NewExtractor(palette.DefaultQuantizeOptions())
	synthesizer := theme.NewSynthesizer(extractor, extractor)
	covers := NewCoverService(cacheDir, zerolog.Nop())

	return NewThemeService(covers, synthesizer, themestore.NewRepository(database), zerolog.Nop()), cacheDir
}

func writeCoverPNG(t *testing.T, path string, fill color.NRGBA) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}

func TestGenerateFromArtworkCachesByHash(t *testing.T) {
	t.Parallel()

	service, _ := newTestThemeService(t)
	path := filepath.Join(t.TempDir(), "Night Train", "cover.png")
	writeCoverPNG(t, path, color.NRGBA{R: 10, G: 10, B: 30, A: 255})

	first, err := service.GenerateFromArtwork(path, theme.DefaultOptions())
	require.NoError(t, err)
	require.False(t, first.Cached)
	require.Equal(t, "Night Train", first.Theme.Title)
	require.Equal(t, sourceImage, first.Source)
	require.NoError(t, first.Theme.Validate())
	require.Positive(t, first.BytesRead)

	second, err := service.GenerateFromArtwork(path, theme.DefaultOptions())
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Theme, second.Theme)

	other := theme.DefaultOptions()
	other.MinimumContrastRatio = 4.5
	third, err := service.GenerateFromArtwork(path, other)
	require.NoError(t, err)
	require.False(t, third.Cached)
	require.Equal(t, 2, service.cacheSize())
}

func TestGenerateFromArtworkMissingFile(t *testing.T) {
	t.Parallel()

	service, _ := newTestThemeService(t)
	_, err := service.GenerateFromArtwork(filepath.Join(t.TempDir(), "missing.png"), theme.DefaultOptions())
	require.Error(t, err)
}

func TestThemeCacheEvictsOldest(t *testing.T) {
	t.Parallel()

	service, _ := newTestThemeService(t)
	for i := 0; i < maxThemeCacheEntries+5; i++ {
		service.storeCachedTheme(buildThemeCacheKey(string(rune('a'+i%26))+string(rune('0'+i/26)), theme.DefaultOptions()), theme.DefaultTheme("x"))
	}
	require.Equal(t, maxThemeCacheEntries, service.cacheSize())
}

func TestSaveAndEditThemes(t *testing.T) {
	t.Parallel()

	service, _ := newTestThemeService(t)
	ctx := context.Background()

	preset, err := service.Preset("dusk")
	require.NoError(t, err)
	saved, err := service.Save(ctx, preset)
	require.NoError(t, err)
	require.Equal(t, sourcePreset, saved.Source)

	edited, err := service.Edit(ctx, saved.Theme.Title, map[theme.Role]string{
		theme.RoleDarkAccent:  "#e0b000",
		theme.RoleDarkPrimary: "not-a-color",
	})
	require.NoError(t, err)
	require.Equal(t, saved.ID, edited.ID)
	require.Equal(t, "E0B000", edited.Theme.DarkAccent)
	require.Equal(t, saved.Theme.DarkPrimary, edited.Theme.DarkPrimary)
	require.Equal(t, sourceParams, edited.Source)

	fresh, err := service.Edit(ctx, "Brand New", map[theme.Role]string{theme.RoleDefaultAccent: "101010"})
	require.NoError(t, err)
	expected := theme.DefaultTheme("Brand New")
	expected.DefaultAccent = "101010"
	require.Equal(t, expected, fresh.Theme)

	records, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NoError(t, service.Delete(ctx, "Brand New"))
	_, err = service.Get(ctx, "Brand New")
	require.ErrorIs(t, err, themestore.ErrThemeNotFound)
}

func TestFindByArtworkUsesLibraryAndCachePaths(t *testing.T) {
	t.Parallel()

	service, _ := newTestThemeService(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "Foundation", "cover.png")
	writeCoverPNG(t, path, color.NRGBA{R: 200, G: 180, B: 40, A: 255})

	result, err := service.GenerateFromArtwork(path, theme.DefaultOptions())
	require.NoError(t, err)
	saved, err := service.Save(ctx, result)
	require.NoError(t, err)

	found, err := service.FindByArtwork(ctx, path)
	require.NoError(t, err)
	require.Equal(t, saved.ID, found.ID)

	cachedPath, err := service.covers.ExtractCover(path)
	require.NoError(t, err)
	fromCache, err := service.FindByArtwork(ctx, filepath.Base(cachedPath))
	require.NoError(t, err)
	require.Equal(t, saved.ID, fromCache.ID)

	other := filepath.Join(t.TempDir(), "Other", "cover.png")
	writeCoverPNG(t, other, color.NRGBA{R: 5, G: 90, B: 200, A: 255})
	_, err = service.FindByArtwork(ctx, other)
	require.ErrorIs(t, err, themestore.ErrThemeNotFound)
}

package themestore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"folio/internal/db"
	"folio/internal/theme"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	database, err := db.Bootstrap(context.Background(), db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewRepository(database)
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, SaveInput{
		Theme:       theme.DefaultTheme("Dune"),
		ArtworkHash: "abc123",
		ArtworkPath: "/books/Dune/cover.jpg",
		Source:      "image",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(saved.ID)
	require.NoError(t, err)
	require.Equal(t, theme.DefaultTheme("Dune"), saved.Theme)
	require.Equal(t, "image", saved.Source)

	loaded, err := repo.Get(ctx, "dune")
	require.NoError(t, err)
	require.Equal(t, saved, loaded)
}

func TestSaveUpsertsByTitle(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	first, err := repo.Save(ctx, SaveInput{Theme: theme.DefaultTheme("Dune")})
	require.NoError(t, err)
	require.Equal(t, "params", first.Source)

	clock = clock.Add(time.Hour)
	updated := theme.DefaultTheme("Dune")
	updated.DefaultAccent = "E0B000"
	second, err := repo.Save(ctx, SaveInput{Theme: updated, ArtworkHash: "feed"})
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.NotEqual(t, first.UpdatedAt, second.UpdatedAt)
	require.Equal(t, "E0B000", second.Theme.DefaultAccent)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestSaveRejectsIncompleteTheme(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, SaveInput{Theme: theme.Theme{Title: "Half", DefaultPrimary: "000000"}})
	require.Error(t, err)

	_, err = repo.Save(ctx, SaveInput{Theme: theme.DefaultTheme("   ")})
	require.Error(t, err)
}

func TestGetByArtworkHash(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, SaveInput{Theme: theme.DefaultTheme("Emma"), ArtworkHash: "c0ffee"})
	require.NoError(t, err)

	record, err := repo.GetByArtworkHash(ctx, "c0ffee")
	require.NoError(t, err)
	require.Equal(t, "Emma", record.Theme.Title)

	_, err = repo.GetByArtworkHash(ctx, "missing")
	require.ErrorIs(t, err, ErrThemeNotFound)
	_, err = repo.GetByArtworkHash(ctx, "")
	require.ErrorIs(t, err, ErrThemeNotFound)
}

func TestListOrdersByTitle(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	for _, title := range []string{"middlemarch", "Anna Karenina", "Beloved"} {
		_, err := repo.Save(ctx, SaveInput{Theme: theme.DefaultTheme(title)})
		require.NoError(t, err)
	}

	records, err := repo.List(ctx)
	require.NoError(t, err)

	titles := make([]string, 0, len(records))
	for _, record := range records {
		titles = append(titles, record.Theme.Title)
	}
	require.Equal(t, []string{"Anna Karenina", "Beloved", "middlemarch"}, titles)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, SaveInput{Theme: theme.DefaultTheme("Dune")})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "Dune"))
	require.ErrorIs(t, repo.Delete(ctx, "Dune"), ErrThemeNotFound)

	_, err = repo.Get(ctx, "Dune")
	require.ErrorIs(t, err, ErrThemeNotFound)
}

func TestOverviewCountsSources(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	empty, err := repo.Overview(ctx)
	require.NoError(t, err)
	require.Zero(t, empty.Total)
	require.Empty(t, empty.LastUpdatedAt)

	for title, source := range map[string]string{"A": "image", "B": "image", "C": "preset"} {
		_, err := repo.Save(ctx, SaveInput{Theme: theme.DefaultTheme(title), Source: source})
		require.NoError(t, err)
	}

	overview, err := repo.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, overview.Total)
	require.Equal(t, map[string]int{"image": 2, "preset": 1}, overview.BySource)
	require.NotEmpty(t, overview.LastUpdatedAt)
}

func TestConcurrentSavesOnFileDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := db.Bootstrap(ctx, filepath.Join(t.TempDir(), "themes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	repo := NewRepository(database)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers*4)
	for worker := 0; worker < writers; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				title := fmt.Sprintf("Book %d-%d", worker, i)
				_, err := repo.Save(ctx, SaveInput{Theme: theme.DefaultTheme(title), Source: "image"})
				errs <- err
			}
		}(worker)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, writers*4)
}

package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBootstrapAppliesMigrationsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "folio.db")

	database, err := Bootstrap(ctx, path)
	require.NoError(t, err)

	applied, err := AppliedMigrations(ctx, database)
	require.NoError(t, err)
	require.Equal(t, []string{
		"migrations/0001_themes.sql",
		"migrations/0002_theme_sources.sql",
		"migrations/0003_library_roots.sql",
	}, applied)
	require.NoError(t, database.Close())

	reopened, err := Bootstrap(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	again, err := AppliedMigrations(ctx, reopened)
	require.NoError(t, err)
	require.Equal(t, applied, again)
}

func TestBootstrapInMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := Bootstrap(ctx, MemoryPath)
	require.NoError(t, err)
	defer database.Close()

	var count int
	require.NoError(t, database.QueryRowContext(ctx, "SELECT COUNT(1) FROM themes").Scan(&count))
	require.Zero(t, count)
}

func TestOpenAppliesPragmasToEveryConnection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := Open(ctx, filepath.Join(t.TempDir(), "folio.db"))
	require.NoError(t, err)
	defer database.Close()

	first, err := database.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := database.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for _, conn := range []*sql.Conn{first, second} {
		var timeout, foreignKeys int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys))
		require.Equal(t, 5000, timeout)
		require.Equal(t, 1, foreignKeys)
	}
}

// Package themestore persists synthesized themes in SQLite, one row per title.
package themestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/internal/theme"
)

var ErrThemeNotFound = errors.New("theme not found")

const themeColumns = `id, title,
	default_background, default_primary, default_secondary, default_accent,
	dark_background, dark_primary, dark_secondary, dark_accent,
	artwork_hash, artwork_path, source, created_at, updated_at`

// Record is a stored theme plus where it came from.
type Record struct {
	ID          string      `json:"id" yaml:"id" toml:"id"`
	Theme       theme.Theme `json:"theme" yaml:"theme" toml:"theme"`
	ArtworkHash string      `json:"artworkHash,omitempty" yaml:"artworkHash,omitempty" toml:"artworkHash,omitempty"`
	ArtworkPath string      `json:"artworkPath,omitempty" yaml:"artworkPath,omitempty" toml:"artworkPath,omitempty"`
	Source      string      `json:"source" yaml:"source" toml:"source"`
	CreatedAt   string      `json:"createdAt" yaml:"createdAt" toml:"createdAt"`
	UpdatedAt   string      `json:"updatedAt" yaml:"updatedAt" toml:"updatedAt"`
}

type SaveInput struct {
	Theme       theme.Theme
	ArtworkHash string
	ArtworkPath string
	Source      string
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database, now: time.Now}
}

// Save inserts the theme or replaces the colors of the row with the same title.
// The row keeps its id and created_at across updates.
func (r *Repository) Save(ctx context.Context, input SaveInput) (Record, error) {
	title := strings.TrimSpace(input.Theme.Title)
	if title == "" {
		return Record{}, errors.New("theme title is required")
	}
	if err := input.Theme.Validate(); err != nil {
		return Record{}, fmt.Errorf("save theme: %w", err)
	}

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = "params"
	}

	t := input.Theme
	stamp := r.now().UTC().Format(time.RFC3339Nano)
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO themes(`+themeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			default_background = excluded.default_background,
			default_primary = excluded.default_primary,
			default_secondary = excluded.default_secondary,
			default_accent = excluded.default_accent,
			dark_background = excluded.dark_background,
			dark_primary = excluded.dark_primary,
			dark_secondary = excluded.dark_secondary,
			dark_accent = excluded.dark_accent,
			artwork_hash = excluded.artwork_hash,
			artwork_path = excluded.artwork_path,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		uuid.NewString(),
		title,
		t.DefaultBackground,
		t.DefaultPrimary,
		t.DefaultSecondary,
		t.DefaultAccent,
		t.DarkBackground,
		t.DarkPrimary,
		t.DarkSecondary,
		t.DarkAccent,
		input.ArtworkHash,
		input.ArtworkPath,
		source,
		stamp,
		stamp,
	)
	if err != nil {
		return Record{}, fmt.Errorf("upsert theme %q: %w", title, err)
	}

	return r.Get(ctx, title)
}

// Get looks a theme up by title, ignoring case.
func (r *Repository) Get(ctx context.Context, title string) (Record, error) {
	row := r.db.QueryRowContext(
		ctx,
		"SELECT "+themeColumns+" FROM themes WHERE title = ?",
		strings.TrimSpace(title),
	)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrThemeNotFound
		}
		return Record{}, fmt.Errorf("get theme %q: %w", title, err)
	}

	return record, nil
}

// GetByArtworkHash returns the most recently updated theme built from the artwork.
func (r *Repository) GetByArtworkHash(ctx context.Context, hash string) (Record, error) {
	if strings.TrimSpace(hash) == "" {
		return Record{}, ErrThemeNotFound
	}

	row := r.db.QueryRowContext(
		ctx,
		"SELECT "+themeColumns+" FROM themes WHERE artwork_hash = ? ORDER BY updated_at DESC LIMIT 1",
		hash,
	)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrThemeNotFound
		}
		return Record{}, fmt.Errorf("get theme by artwork %s: %w", hash, err)
	}

	return record, nil
}

func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT "+themeColumns+" FROM themes ORDER BY title COLLATE NOCASE",
	)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate theme rows: %w", err)
	}

	return records, nil
}

func (r *Repository) Delete(ctx context.Context, title string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM themes WHERE title = ?", strings.TrimSpace(title))
	if err != nil {
		return fmt.Errorf("delete theme %q: %w", title, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted theme count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrThemeNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	t := &record.Theme
	err := row.Scan(
		&record.ID,
		&t.Title,
		&t.DefaultBackground,
		&t.DefaultPrimary,
		&t.DefaultSecondary,
		&t.DefaultAccent,
		&t.DarkBackground,
		&t.DarkPrimary,
		&t.DarkSecondary,
		&t.DarkAccent,
		&record.ArtworkHash,
		&record.ArtworkPath,
		&record.Source,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	return record, err
}

// Package library keeps the list of folders that scan and watch operate on.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrRootNotFound = errors.New("library root not found")
	ErrRootExists   = errors.New("library root already added")
)

type Root struct {
	ID            int64  `json:"id"`
	Path          string `json:"path"`
	Enabled       bool   `json:"enabled"`
	LastScannedAt string `json:"lastScannedAt,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

type RootRepository struct {
	db *sql.DB
}

func NewRootRepository(database *sql.DB) *RootRepository {
	return &RootRepository{db: database}
}

func (r *RootRepository) List(ctx context.Context) ([]Root, error) {
	return r.query(ctx, "SELECT id, path, enabled, last_scanned_at, created_at FROM library_roots ORDER BY path COLLATE NOCASE")
}

func (r *RootRepository) ListEnabled(ctx context.Context) ([]Root, error) {
	return r.query(ctx, "SELECT id, path, enabled, last_scanned_at, created_at FROM library_roots WHERE enabled = 1 ORDER BY path COLLATE NOCASE")
}

func (r *RootRepository) query(ctx context.Context, statement string) ([]Root, error) {
	rows, err := r.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("list library roots: %w", err)
	}
	defer rows.Close()

	roots := make([]Root, 0)
	for rows.Next() {
		var root Root
		var enabledInt int
		if err := rows.Scan(&root.ID, &root.Path, &enabledInt, &root.LastScannedAt, &root.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan library root row: %w", err)
		}
		root.Enabled = enabledInt == 1
		roots = append(roots, root)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library root rows: %w", err)
	}

	return roots, nil
}

// Add stores path as an absolute, cleaned directory path.
func (r *RootRepository) Add(ctx context.Context, path string) (Root, error) {
	cleaned, err := NormalizePath(path)
	if err != nil {
		return Root{}, err
	}

	if _, err := r.Get(ctx, cleaned); err == nil {
		return Root{}, ErrRootExists
	} else if !errors.Is(err, ErrRootNotFound) {
		return Root{}, err
	}

	if _, err := r.db.ExecContext(ctx, "INSERT INTO library_roots(path, enabled) VALUES (?, 1)", cleaned); err != nil {
		return Root{}, fmt.Errorf("insert library root: %w", err)
	}

	return r.Get(ctx, cleaned)
}

func (r *RootRepository) Get(ctx context.Context, path string) (Root, error) {
	cleaned, err := NormalizePath(path)
	if err != nil {
		return Root{}, err
	}

	var root Root
	var enabledInt int
	err = r.db.QueryRowContext(
		ctx,
		"SELECT id, path, enabled, last_scanned_at, created_at FROM library_roots WHERE path = ?",
		cleaned,
	).Scan(&root.ID, &root.Path, &enabledInt, &root.LastScannedAt, &root.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Root{}, ErrRootNotFound
		}
		return Root{}, fmt.Errorf("get library root %s: %w", cleaned, err)
	}

	root.Enabled = enabledInt == 1
	return root, nil
}

func (r *RootRepository) SetEnabled(ctx context.Context, path string, enabled bool) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}

	return r.update(ctx, "UPDATE library_roots SET enabled = ? WHERE path = ?", path, enabledInt)
}

func (r *RootRepository) MarkScanned(ctx context.Context, path string, at time.Time) error {
	return r.update(ctx, "UPDATE library_roots SET last_scanned_at = ? WHERE path = ?", path, at.UTC().Format(time.RFC3339))
}

func (r *RootRepository) Delete(ctx context.Context, path string) error {
	cleaned, err := NormalizePath(path)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM library_roots WHERE path = ?", cleaned)
	if err != nil {
		return fmt.Errorf("delete library root %s: %w", cleaned, err)
	}

	return requireAffected(result)
}

func (r *RootRepository) update(ctx context.Context, statement string, path string, value any) error {
	cleaned, err := NormalizePath(path)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, statement, value, cleaned)
	if err != nil {
		return fmt.Errorf("update library root %s: %w", cleaned, err)
	}

	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected library root count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRootNotFound
	}
	return nil
}

func NormalizePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is required")
	}

	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

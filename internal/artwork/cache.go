package artwork

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// CacheFilename names a cached cover by its content hash.
func CacheFilename(hash string, mime string) string {
	ext, ok := mimeExtensions[strings.ToLower(strings.TrimSpace(mime))]
	if !ok {
		ext = ".img"
	}
	return strings.ToLower(strings.TrimSpace(hash)) + ext
}

// HashFromCacheFilename returns the hash part of a CacheFilename result, or
// "" when the name was not produced by it.
func HashFromCacheFilename(filename string) string {
	name := strings.TrimSpace(filepath.Base(filename))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !IsValidHash(base) {
		return ""
	}
	return strings.ToLower(base)
}

// WriteCache stores the raw cover bytes under dir and returns the written
// path. Existing files with the same hash are left alone.
func WriteCache(dir string, art Artwork) (string, error) {
	if len(art.Data) == 0 {
		return "", ErrNoArtwork
	}
	if !IsValidHash(art.Hash) {
		return "", errors.New("artwork hash is invalid")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cover cache dir: %w", err)
	}

	path := filepath.Join(dir, CacheFilename(art.Hash, art.MimeType))
	if info, err := os.Stat(path); err == nil && !info.IsDir() && info.Size() == int64(len(art.Data)) {
		return path, nil
	}

	tmp, err := os.CreateTemp(dir, ".cover-*")
	if err != nil {
		return "", fmt.Errorf("create cover temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(art.Data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write cover temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close cover temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("move cover into cache: %w", err)
	}

	return path, nil
}

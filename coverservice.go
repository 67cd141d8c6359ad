package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"folio/internal/artwork"
)

type CoverService struct {
	coverCacheDir string
	logger        zerolog.Logger
}

func NewCoverService(coverCacheDir string, logger zerolog.Logger) *CoverService {
	return &CoverService{coverCacheDir: strings.TrimSpace(coverCacheDir), logger: logger}
}

// Load reads artwork from a library path, or from a cover cache entry when
// the path does not exist as given.
func (s *CoverService) Load(requestedPath string) (artwork.Artwork, error) {
	resolvedPath, err := s.resolveArtworkPath(requestedPath)
	if err != nil {
		return artwork.Artwork{}, err
	}

	return artwork.Load(resolvedPath)
}

// ExtractCover copies the artwork of path into the cover cache and returns the
// cached file path.
func (s *CoverService) ExtractCover(requestedPath string) (string, error) {
	if s.coverCacheDir == "" {
		return "", errors.New("cover cache dir is not configured")
	}

	art, err := s.Load(requestedPath)
	if err != nil {
		return "", err
	}

	cachedPath, err := artwork.WriteCache(s.coverCacheDir, art)
	if err != nil {
		return "", fmt.Errorf("cache cover %s: %w", requestedPath, err)
	}

	s.logger.Debug().Str("path", art.Path).Str("cached", cachedPath).Msg("cover cached")
	return cachedPath, nil
}

// CachedHash reports the content hash encoded in a cover cache file name.
// Paths outside the cache dir report false.
func (s *CoverService) CachedHash(requestedPath string) (string, bool) {
	resolvedPath, err := s.resolveCoverPath(strings.TrimSpace(requestedPath))
	if err != nil {
		return "", false
	}
	hash := artwork.HashFromCacheFilename(resolvedPath)
	return hash, hash != ""
}

func (s *CoverService) resolveArtworkPath(requestedPath string) (string, error) {
	trimmed := strings.TrimSpace(requestedPath)
	if trimmed == "" {
		return "", errors.New("artwork path is required")
	}

	info, err := os.Stat(trimmed)
	if err == nil {
		if info.IsDir() {
			return "", errors.New("requested path is a directory")
		}
		return filepath.Abs(trimmed)
	}
	if !errors.Is(err, os.ErrNotExist) || filepath.IsAbs(trimmed) {
		return "", err
	}

	cachedPath, cacheErr := s.resolveCoverPath(trimmed)
	if cacheErr != nil {
		return "", err
	}
	return cachedPath, nil
}

// resolveCoverPath confines a relative name to the cover cache dir.
func (s *CoverService) resolveCoverPath(requestedPath string) (string, error) {
	cacheDir := strings.TrimSpace(s.coverCacheDir)
	if cacheDir == "" {
		return "", errors.New("cover cache dir is not configured")
	}

	cacheDirAbs, err := filepath.Abs(filepath.Clean(cacheDir))
	if err != nil {
		return "", err
	}

	cleanRequested := filepath.Clean(requestedPath)
	if !filepath.IsAbs(cleanRequested) {
		cleanRequested = filepath.Join(cacheDirAbs, cleanRequested)
	}

	resolvedPath, err := filepath.Abs(cleanRequested)
	if err != nil {
		return "", err
	}

	relativeToCache, err := filepath.Rel(cacheDirAbs, resolvedPath)
	if err != nil {
		return "", err
	}

	if relativeToCache == ".." || strings.HasPrefix(relativeToCache, ".."+string(os.PathSeparator)) || filepath.IsAbs(relativeToCache) {
		return "", errors.New("requested path is outside cover cache dir")
	}

	info, err := os.Stat(resolvedPath)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return "", errors.New("requested path is a directory")
	}

	return resolvedPath, nil
}

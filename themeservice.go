package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/artwork"
	"folio/internal/theme"
	"folio/internal/themestore"
)

const maxThemeCacheEntries = 96

const (
	sourceImage   = "image"
	sourceDefault = "default"
	sourceParams  = "params"
	sourcePreset  = "preset"
)

type themeCacheEntry struct {
	theme    theme.Theme
	cachedAt time.Time
}

type SynthesisResult struct {
	Theme       theme.Theme
	ArtworkHash string
	ArtworkPath string
	Source      string
	BytesRead   int64
	Cached      bool
}

type ThemeService struct {
	covers      *CoverService
	synthesizer *theme.Synthesizer
	store       *themestore.Repository
	logger      zerolog.Logger
	cacheMu     sync.RWMutex
	cache       map[string]themeCacheEntry
}

func NewThemeService(
	covers *CoverService,
	synthesizer *theme.Synthesizer,
	store *themestore.Repository,
	logger zerolog.Logger,
) *ThemeService {
	return &ThemeService{
		covers:      covers,
		synthesizer: synthesizer,
		store:       store,
		logger:      logger,
		cache:       make(map[string]themeCacheEntry),
	}
}

// GenerateFromArtwork synthesizes a theme for the artwork at path. Audiobooks
// without embedded artwork get the default theme rather than an error.
func (s *ThemeService) GenerateFromArtwork(path string, options theme.Options) (SynthesisResult, error) {
	art, err := s.covers.Load(path)
	if err != nil {
		if errors.Is(err, artwork.ErrNoArtwork) {
			s.logger.Warn().Str("path", path).Msg("no embedded artwork, using default theme")
			return SynthesisResult{
				Theme:       s.synthesizer.Synthesize(theme.Default{Title: artwork.Title(path)}, options),
				ArtworkPath: path,
				Source:      sourceDefault,
			}, nil
		}
		return SynthesisResult{}, fmt.Errorf("load artwork: %w", err)
	}

	normalized := theme.NormalizeOptions(options)
	cacheKey := buildThemeCacheKey(art.Hash, normalized)
	result := SynthesisResult{
		ArtworkHash: art.Hash,
		ArtworkPath: art.Path,
		Source:      sourceImage,
		BytesRead:   int64(art.Size()),
	}

	if cached, ok := s.loadCachedTheme(cacheKey); ok {
		cached.Title = art.Title
		result.Theme = cached
		result.Cached = true
		return result, nil
	}

	synthesized := s.synthesizer.Synthesize(theme.FromImage{Title: art.Title, Image: art.Image}, normalized)
	s.storeCachedTheme(cacheKey, synthesized)

	result.Theme = synthesized
	return result, nil
}

func buildThemeCacheKey(hash string, options theme.Options) string {
	return fmt.Sprintf(
		"%s|dt:%0.4f|mc:%0.4f|cc:%d",
		hash,
		options.DarknessThreshold,
		options.MinimumContrastRatio,
		options.ColorCount,
	)
}

func (s *ThemeService) loadCachedTheme(cacheKey string) (theme.Theme, bool) {
	s.cacheMu.RLock()
	entry, ok := s.cache[cacheKey]
	s.cacheMu.RUnlock()
	if !ok {
		return theme.Theme{}, false
	}

	return entry.theme, true
}

func (s *ThemeService) storeCachedTheme(cacheKey string, synthesized theme.Theme) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache[cacheKey] = themeCacheEntry{
		theme:    synthesized,
		cachedAt: time.Now(),
	}

	if len(s.cache) <= maxThemeCacheEntries {
		return
	}

	oldestKey := ""
	var oldestAt time.Time
	for key, entry := range s.cache {
		if oldestKey == "" || entry.cachedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.cachedAt
		}
	}

	if oldestKey != "" {
		delete(s.cache, oldestKey)
	}
}

func (s *ThemeService) cacheSize() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return len(s.cache)
}

func (s *ThemeService) Save(ctx context.Context, result SynthesisResult) (themestore.Record, error) {
	if s.store == nil {
		return themestore.Record{}, errors.New("theme store is not configured")
	}

	return s.store.Save(ctx, themestore.SaveInput{
		Theme:       result.Theme,
		ArtworkHash: result.ArtworkHash,
		ArtworkPath: result.ArtworkPath,
		Source:      result.Source,
	})
}

func (s *ThemeService) Preset(name string) (SynthesisResult, error) {
	preset, err := s.synthesizer.Preset(name)
	if err != nil {
		return SynthesisResult{}, err
	}
	return SynthesisResult{Theme: preset, Source: sourcePreset}, nil
}

// Edit overrides roles of a stored theme, starting from the default theme when
// title is not stored yet. Invalid values are dropped by the synthesizer.
func (s *ThemeService) Edit(ctx context.Context, title string, values map[theme.Role]string) (themestore.Record, error) {
	if s.store == nil {
		return themestore.Record{}, errors.New("theme store is not configured")
	}

	base := theme.DefaultTheme(title)
	record, err := s.store.Get(ctx, title)
	switch {
	case err == nil:
		base = record.Theme
	case !errors.Is(err, themestore.ErrThemeNotFound):
		return themestore.Record{}, err
	}

	overrides := s.synthesizer.Synthesize(theme.FromParams{Title: base.Title, Values: values}, theme.DefaultOptions())
	merged := theme.Merge(base, overrides)

	return s.store.Save(ctx, themestore.SaveInput{
		Theme:       merged,
		ArtworkHash: record.ArtworkHash,
		ArtworkPath: record.ArtworkPath,
		Source:      sourceParams,
	})
}

func (s *ThemeService) Get(ctx context.Context, title string) (themestore.Record, error) {
	if s.store == nil {
		return themestore.Record{}, errors.New("theme store is not configured")
	}
	return s.store.Get(ctx, title)
}

// FindByArtwork returns the stored theme synthesized from the artwork at path.
func (s *ThemeService) FindByArtwork(ctx context.Context, path string) (themestore.Record, error) {
	if s.store == nil {
		return themestore.Record{}, errors.New("theme store is not configured")
	}

	hash, ok := s.covers.CachedHash(path)
	if !ok {
		art, err := s.covers.Load(path)
		if err != nil {
			return themestore.Record{}, fmt.Errorf("load artwork: %w", err)
		}
		hash = art.Hash
	}

	return s.store.GetByArtworkHash(ctx, hash)
}

func (s *ThemeService) List(ctx context.Context) ([]themestore.Record, error) {
	if s.store == nil {
		return nil, errors.New("theme store is not configured")
	}
	return s.store.List(ctx)
}

func (s *ThemeService) Delete(ctx context.Context, title string) error {
	if s.store == nil {
		return errors.New("theme store is not configured")
	}
	return s.store.Delete(ctx, title)
}

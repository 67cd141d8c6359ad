package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/artwork"
	"folio/internal/theme"
	"folio/internal/watcher"
)

type WatchRequest struct {
	Roots    []string
	Options  theme.Options
	Save     bool
	Debounce time.Duration
}

type WatchService struct {
	themes *ThemeService
	logger zerolog.Logger
}

func NewWatchService(themes *ThemeService, logger zerolog.Logger) *WatchService {
	return &WatchService{themes: themes, logger: logger}
}

// Watch synthesizes themes for artwork that appears or changes under the
// roots until ctx is cancelled. onTheme sees every synthesized result.
func (s *WatchService) Watch(ctx context.Context, request WatchRequest, onTheme func(SynthesisResult)) error {
	if len(request.Roots) == 0 {
		return errors.New("no directories to watch")
	}

	w, err := watcher.New(
		watcher.WithDebounce(request.Debounce),
		watcher.WithFilter(artwork.IsSupported),
		watcher.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range request.Roots {
		if err := w.Add(root); err != nil {
			return err
		}
	}

	s.logger.Info().Strs("roots", w.Roots()).Msg("watching for artwork")

	return w.Run(ctx, func(path string) {
		result, err := s.themes.GenerateFromArtwork(path, request.Options)
		if err != nil {
			s.logger.Warn().Str("path", path).Err(err).Msg("synthesize watched artwork")
			return
		}
		if request.Save {
			if _, err := s.themes.Save(ctx, result); err != nil {
				s.logger.Warn().Str("path", path).Err(err).Msg("save watched theme")
				return
			}
		}
		if onTheme != nil {
			onTheme(result)
		}
	})
}

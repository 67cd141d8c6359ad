package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"folio/internal/library"
	"folio/internal/scanner"
	"folio/internal/theme"
)

type ScanRequest struct {
	Roots   []string
	Options theme.Options
	Save    bool
}

type LibraryScanService struct {
	scanner *scanner.Service
	themes  *ThemeService
	roots   *library.RootRepository
	logger  zerolog.Logger
}

func NewLibraryScanService(scanService *scanner.Service, themes *ThemeService, roots *library.RootRepository, logger zerolog.Logger) *LibraryScanService {
	return &LibraryScanService{scanner: scanService, themes: themes, roots: roots, logger: logger}
}

// Scan synthesizes a theme for every artwork source under the requested
// roots, or under the enabled library roots when none are given.
func (s *LibraryScanService) Scan(ctx context.Context, request ScanRequest) (scanner.Summary, error) {
	roots, fromLibrary, err := s.resolveRoots(ctx, request.Roots)
	if err != nil {
		return scanner.Summary{}, err
	}

	summary, err := s.scanner.Scan(ctx, roots, func(ctx context.Context, path string) (int64, error) {
		result, err := s.themes.GenerateFromArtwork(path, request.Options)
		if err != nil {
			return 0, err
		}
		if request.Save {
			if _, err := s.themes.Save(ctx, result); err != nil {
				return result.BytesRead, err
			}
		}
		s.logger.Debug().Str("path", path).Str("title", result.Theme.Title).Bool("cached", result.Cached).Msg("theme synthesized")
		return result.BytesRead, nil
	})
	if err != nil {
		return summary, err
	}

	if fromLibrary {
		scannedAt := time.Now()
		for _, root := range roots {
			if err := s.roots.MarkScanned(ctx, root, scannedAt); err != nil {
				s.logger.Warn().Str("root", root).Err(err).Msg("record scan time")
			}
		}
	}

	return summary, nil
}

func (s *LibraryScanService) GetStatus() scanner.Status {
	return s.scanner.GetStatus()
}

func (s *LibraryScanService) resolveRoots(ctx context.Context, requested []string) ([]string, bool, error) {
	if len(requested) > 0 {
		return requested, false, nil
	}
	if s.roots == nil {
		return nil, false, errors.New("no directories given")
	}

	enabled, err := s.roots.ListEnabled(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(enabled) == 0 {
		return nil, false, errors.New("no directories given and no library roots enabled")
	}

	paths := make([]string, 0, len(enabled))
	for _, root := range enabled {
		paths = append(paths, root.Path)
	}
	return paths, true, nil
}

func FormatScanSummary(summary scanner.Summary) string {
	var builder strings.Builder
	fmt.Fprintf(
		&builder,
		"%s sources, %s themed, %s failed, %s read in %s",
		humanize.Comma(int64(summary.FilesSeen)),
		humanize.Comma(int64(summary.Processed)),
		humanize.Comma(int64(summary.Failed)),
		humanize.Bytes(uint64(summary.BytesRead)),
		summary.Duration.Round(time.Millisecond),
	)
	for _, failure := range summary.Failures {
		fmt.Fprintf(&builder, "\n  %s: %v", failure.Path, failure.Error)
	}
	return builder.String()
}

// Package scanner walks library folders for cover artwork and hands each
// book's artwork to a handler on a bounded worker pool.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/remeh/sizedwaitgroup"
	"github.com/rs/zerolog"

	"folio/internal/artwork"
)

var ErrScanRunning = errors.New("scan already in progress")

type Progress struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
	Percent int    `json:"percent"`
	Status  string `json:"status"`
	At      string `json:"at"`
}

type Status struct {
	Running       bool   `json:"running"`
	LastRunAt     string `json:"lastRunAt"`
	LastError     string `json:"lastError,omitempty"`
	LastFilesSeen int    `json:"lastFilesSeen"`
	LastProcessed int    `json:"lastProcessed"`
	LastFailed    int    `json:"lastFailed"`
	LastBytesRead int64  `json:"lastBytesRead"`
}

type Failure struct {
	Path  string
	Error error
}

type Summary struct {
	FilesSeen int
	Processed int
	Failed    int
	BytesRead int64
	Duration  time.Duration
	Failures  []Failure
}

// Handler processes one artwork source and reports how many bytes it read.
type Handler func(ctx context.Context, path string) (int64, error)

type Emitter func(progress Progress)

type Service struct {
	mu         sync.Mutex
	running    bool
	lastRun    time.Time
	lastError  string
	lastResult Summary
	emit       Emitter
	workers    int
	logger     zerolog.Logger
}

func NewService(workers int, logger zerolog.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{workers: workers, logger: logger}
}

func (s *Service) SetEmitter(emitter Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit = emitter
}

func (s *Service) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:       s.running,
		LastError:     s.lastError,
		LastFilesSeen: s.lastResult.FilesSeen,
		LastProcessed: s.lastResult.Processed,
		LastFailed:    s.lastResult.Failed,
		LastBytesRead: s.lastResult.BytesRead,
	}
	if !s.lastRun.IsZero() {
		status.LastRunAt = s.lastRun.UTC().Format(time.RFC3339)
	}

	return status
}

// Scan collects artwork under every root and runs handle for each source.
// Handler failures are counted, not returned; only walk errors and
// cancellation fail the scan.
func (s *Service) Scan(ctx context.Context, roots []string, handle Handler) (Summary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Summary{}, ErrScanRunning
	}
	s.running = true
	s.lastError = ""
	s.mu.Unlock()

	started := time.Now()
	summary, err := s.performScan(ctx, roots, handle)
	summary.Duration = time.Since(started)

	s.mu.Lock()
	s.running = false
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastRun = time.Now().UTC()
		s.lastResult = summary
	}
	s.mu.Unlock()

	if err != nil {
		s.emitProgress("failed", err.Error(), 100, "failed")
		return summary, err
	}

	s.emitProgress("done", fmt.Sprintf(
		"Scan complete: %d sources, %d processed, %d failed",
		summary.FilesSeen,
		summary.Processed,
		summary.Failed,
	), 100, "completed")

	return summary, nil
}

func (s *Service) performScan(ctx context.Context, roots []string, handle Handler) (Summary, error) {
	s.emitProgress("start", "Collecting artwork", 5, "running")

	sources := make([]string, 0)
	for _, root := range roots {
		found, err := Collect(root)
		if err != nil {
			return Summary{}, err
		}
		sources = append(sources, found...)
	}

	summary := Summary{FilesSeen: len(sources)}
	if len(sources) == 0 {
		return summary, nil
	}

	var resultMu sync.Mutex
	completed := 0
	wg := sizedwaitgroup.New(s.workers)
	for _, source := range sources {
		if err := wg.AddWithContext(ctx); err != nil {
			break
		}

		go func(path string) {
			defer wg.Done()

			read, err := handle(ctx, path)

			resultMu.Lock()
			summary.BytesRead += read
			if err != nil {
				summary.Failed++
				summary.Failures = append(summary.Failures, Failure{Path: path, Error: err})
			} else {
				summary.Processed++
			}
			completed++
			percent := 10 + (completed*85)/len(sources)
			resultMu.Unlock()

			if err != nil {
				s.logger.Warn().Str("path", path).Err(err).Msg("artwork failed")
			}
			s.emitProgress("scan", path, percent, "running")
		}(source)
	}
	wg.Wait()

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Path < summary.Failures[j].Path
	})

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *Service) emitProgress(phase string, message string, percent int, status string) {
	s.mu.Lock()
	emitter := s.emit
	s.mu.Unlock()

	if emitter == nil {
		return
	}

	emitter(Progress{
		Phase:   phase,
		Message: message,
		Percent: percent,
		Status:  status,
		At:      time.Now().UTC().Format(time.RFC3339),
	})
}

// Collect returns one artwork source per directory under root, sorted by
// path. A directory prefers cover-like image names, then any image, then its
// first audiobook file. Hidden directories are skipped.
func Collect(root string) ([]string, error) {
	byDir := make(map[string][]string)

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil
		}

		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if artwork.IsSupported(path) {
			dir := filepath.Dir(path)
			byDir[dir] = append(byDir[dir], path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk root %s: %w", root, err)
	}

	sources := make([]string, 0, len(byDir))
	for _, files := range byDir {
		sources = append(sources, pickSource(files))
	}
	sort.Strings(sources)

	return sources, nil
}

func pickSource(files []string) string {
	sort.Strings(files)

	var firstImage, firstAudio string
	for _, file := range files {
		switch artwork.KindOf(file) {
		case artwork.KindImage:
			if artwork.IsGenericName(file) {
				return file
			}
			if firstImage == "" {
				firstImage = file
			}
		case artwork.KindAudio:
			if firstAudio == "" {
				firstAudio = file
			}
		}
	}

	if firstImage != "" {
		return firstImage
	}
	return firstAudio
}

package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()

	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestCollectPicksOneSourcePerDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"Dune/01.m4b",
		"Dune/cover.jpg",
		"Dune/poster.png",
		"Emma/emma.m4b",
		"Emma/notes.txt",
		"Loose/b-side.png",
		"Loose/a-side.png",
		".hidden/cover.jpg",
	)

	sources, err := Collect(root)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := []string{
		filepath.Join(root, "Dune", "cover.jpg"),
		filepath.Join(root, "Emma", "emma.m4b"),
		filepath.Join(root, "Loose", "a-side.png"),
	}
	if len(sources) != len(want) {
		t.Fatalf("expected %d sources, got %v", len(want), sources)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Fatalf("source %d: expected %q, got %q", i, want[i], sources[i])
		}
	}
}

func TestCollectMissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := Collect(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected missing root to fail")
	}
}

func TestScanCountsResults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "A/cover.jpg", "B/cover.png", "C/book.mp3")

	service := NewService(2, zerolog.Nop())

	var progressMu sync.Mutex
	phases := make([]string, 0)
	service.SetEmitter(func(progress Progress) {
		progressMu.Lock()
		phases = append(phases, progress.Phase)
		progressMu.Unlock()
	})

	failing := filepath.Join(root, "C", "book.mp3")
	summary, err := service.Scan(context.Background(), []string{root}, func(_ context.Context, path string) (int64, error) {
		if path == failing {
			return 0, errors.New("no cover")
		}
		return 100, nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if summary.FilesSeen != 3 || summary.Processed != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.BytesRead != 200 {
		t.Fatalf("expected 200 bytes read, got %d", summary.BytesRead)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Path != failing {
		t.Fatalf("unexpected failures %+v", summary.Failures)
	}

	status := service.GetStatus()
	if status.Running || status.LastProcessed != 2 || status.LastRunAt == "" {
		t.Fatalf("unexpected status %+v", status)
	}

	progressMu.Lock()
	defer progressMu.Unlock()
	if phases[0] != "start" || phases[len(phases)-1] != "done" {
		t.Fatalf("unexpected progress phases %v", phases)
	}
}

func TestScanStopsOnCancel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "A/cover.jpg", "B/cover.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := NewService(1, zerolog.Nop())
	_, err := service.Scan(ctx, []string{root}, func(context.Context, string) (int64, error) {
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if service.GetStatus().LastError == "" {
		t.Fatal("expected last error to be recorded")
	}
}

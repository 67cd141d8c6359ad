package watcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncerDropsFiringOvertakenByLaterWrite(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pending := newDebouncer(ctx, 20*time.Millisecond)
	defer pending.stop()

	pending.touch("cover.png")
	first := <-pending.ready

	// A write lands after the timer fired but before Run drained the firing.
	pending.touch("cover.png")
	require.False(t, pending.settle(first))

	second := <-pending.ready
	require.True(t, pending.settle(second))
	require.False(t, pending.settle(second))

	select {
	case extra := <-pending.ready:
		t.Fatalf("expected one delivery, got another for %s", extra.path)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pending := newDebouncer(ctx, 30*time.Millisecond)
	defer pending.stop()

	for i := 0; i < 5; i++ {
		pending.touch("cover.png")
	}

	fired := <-pending.ready
	require.Equal(t, "cover.png", fired.path)
	require.True(t, pending.settle(fired))

	select {
	case extra := <-pending.ready:
		t.Fatalf("expected a single firing, got another for %s", extra.path)
	case <-time.After(80 * time.Millisecond):
	}
}

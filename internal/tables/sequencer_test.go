package tables

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
)

type memorySequencer struct {
	mu     sync.Mutex
	counts map[string]int
	fail   bool
}

func newMemorySequencer() *memorySequencer {
	return &memorySequencer{counts: make(map[string]int)}
}

func (s *memorySequencer) Next(_ context.Context, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "sequencer down")
	}
	s.counts[day]++
	return s.counts[day], nil
}

func TestFallbackSequencerPrefersPrimary(t *testing.T) {
	primary := newMemorySequencer()
	secondary := newMemorySequencer()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})

	seq, err := NewFallbackSequencer(primary, secondary, logg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := seq.Next(context.Background(), "2026-08-31")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 from primary, got %d (err %v)", n, err)
	}
	if len(secondary.counts) != 0 {
		t.Fatal("expected the fallback to stay untouched")
	}
}

func TestFallbackSequencerFallsBack(t *testing.T) {
	primary := newMemorySequencer()
	primary.fail = true
	secondary := newMemorySequencer()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})

	seq, err := NewFallbackSequencer(primary, secondary, logg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := seq.Next(context.Background(), "2026-08-31")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 from fallback, got %d (err %v)", n, err)
	}
}

func TestSequenceResetsPerDay(t *testing.T) {
	seq := newMemorySequencer()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, err := seq.Next(ctx, "2026-08-30")
		if err != nil || n != i {
			t.Fatalf("expected %d, got %d (err %v)", i, n, err)
		}
	}
	n, err := seq.Next(ctx, "2026-08-31")
	if err != nil || n != 1 {
		t.Fatalf("expected new day to restart at 1, got %d (err %v)", n, err)
	}
}

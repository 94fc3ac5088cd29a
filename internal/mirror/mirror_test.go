package mirror

import (
	"context"
	"io"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func newTestMirror(t *testing.T, load Loader[string]) *Mirror[string] {
	t.Helper()
	m, err := New(Params[string]{Resource: "test", Load: load, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error building mirror: %v", err)
	}
	return m
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	snapshots := [][]string{{"a"}, {"a", "b"}}
	var calls int
	m := newTestMirror(t, func(context.Context) ([]string, error) {
		defer func() { calls++ }()
		return snapshots[calls], nil
	})

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	if got := m.Items(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected [a], got %v", got)
	}
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	if got := m.Items(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %v", got)
	}
	if !m.Loaded() {
		t.Fatal("expected mirror to report loaded")
	}
}

func TestApplyFailureLeavesCacheUntouched(t *testing.T) {
	m := newTestMirror(t, func(context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	before := m.Items()

	opErr := pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	err := m.Apply(context.Background(), func(context.Context) error {
		return opErr
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected the mutation error, got %v", err)
	}
	if got := m.Items(); !reflect.DeepEqual(got, before) {
		t.Fatalf("cache changed after failed mutation: before %v, after %v", before, got)
	}
}

func TestApplySuccessReloads(t *testing.T) {
	snapshot := []string{"a"}
	m := newTestMirror(t, func(context.Context) ([]string, error) {
		out := make([]string, len(snapshot))
		copy(out, snapshot)
		return out, nil
	})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}

	err := m.Apply(context.Background(), func(context.Context) error {
		snapshot = []string{"a", "b"}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected apply error: %v", err)
	}
	if got := m.Items(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected reconciled snapshot, got %v", got)
	}
}

func TestStaleRefreshResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	m := newTestMirror(t, func(context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	})

	done := make(chan error, 1)
	go func() {
		done <- m.Refresh(context.Background())
	}()
	<-started

	// A second refresh finishes while the first is still blocked.
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}

	if got := m.Items(); !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Fatalf("expected the newer snapshot to win, got %v", got)
	}
}

func TestRefreshErrorKeepsOldSnapshot(t *testing.T) {
	var fail bool
	m := newTestMirror(t, func(context.Context) ([]string, error) {
		if fail {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend down")
		}
		return []string{"a"}, nil
	})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}

	fail = true
	if err := m.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := m.Items(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected old snapshot preserved, got %v", got)
	}
}

func TestResetDropsSnapshot(t *testing.T) {
	m := newTestMirror(t, func(context.Context) ([]string, error) {
		return []string{"a"}, nil
	})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	m.Reset()
	if m.Loaded() || m.Len() != 0 {
		t.Fatalf("expected empty mirror after reset, loaded=%v len=%d", m.Loaded(), m.Len())
	}
}

func TestNewValidatesParams(t *testing.T) {
	if _, err := New(Params[string]{Load: func(context.Context) ([]string, error) { return nil, nil }, Logger: testLogger()}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing resource, got %v", err)
	}
	if _, err := New(Params[string]{Resource: "x", Logger: testLogger()}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing loader, got %v", err)
	}
}

package favorites

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mvgarcia/taproom/pkg/brewapi"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type stubBackend struct {
	favorites []brewapi.FavoriteProduct
	adds      int
	removes   int
}

func (s *stubBackend) ListFavorites(context.Context) ([]brewapi.FavoriteProduct, error) {
	out := make([]brewapi.FavoriteProduct, len(s.favorites))
	copy(out, s.favorites)
	return out, nil
}

func (s *stubBackend) AddFavorite(_ context.Context, productID string) error {
	s.adds++
	for _, f := range s.favorites {
		if f.ID == productID {
			return nil
		}
	}
	s.favorites = append(s.favorites, brewapi.FavoriteProduct{ID: productID})
	return nil
}

func (s *stubBackend) RemoveFavorite(_ context.Context, productID string) error {
	s.removes++
	for i, f := range s.favorites {
		if f.ID == productID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "not a favorite")
}

func newTestService(t *testing.T, backend Backend) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{Backend: backend, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return service
}

func TestAddIsIdempotent(t *testing.T) {
	backend := &stubBackend{}
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Add(ctx, "7"); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := service.Add(ctx, "7"); err != nil {
		t.Fatalf("unexpected repeat add error: %v", err)
	}
	if backend.adds != 1 {
		t.Fatalf("expected exactly one backend add, got %d", backend.adds)
	}
	if got := len(service.Items()); got != 1 {
		t.Fatalf("expected a single favorite, got %d", got)
	}
}

func TestRemoveUnknownIsNoOp(t *testing.T) {
	backend := &stubBackend{}
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Remove(ctx, "missing"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if backend.removes != 0 {
		t.Fatalf("expected no backend remove, got %d", backend.removes)
	}
}

func TestToggleFlipsMembership(t *testing.T) {
	backend := &stubBackend{}
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Toggle(ctx, "7"); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	if !service.Contains("7") {
		t.Fatal("expected product to be favorite after toggle")
	}
	if err := service.Toggle(ctx, "7"); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	if service.Contains("7") {
		t.Fatal("expected product to be removed after second toggle")
	}
}

func TestLoadSeedsCache(t *testing.T) {
	backend := &stubBackend{favorites: []brewapi.FavoriteProduct{{ID: "1"}, {ID: "2"}}}
	service := newTestService(t, backend)

	if err := service.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if !service.Contains("2") {
		t.Fatal("expected loaded favorite to be cached")
	}
	if err := service.Add(context.Background(), "2"); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if backend.adds != 0 {
		t.Fatalf("expected cached favorite to skip the backend, got %d adds", backend.adds)
	}
}

// Package favorites keeps the shopper's favorite-products mirror. The
// collection behaves as a set: repeated adds and removes of the same
// product are no-ops.
package favorites

import (
	"context"

	"github.com/mvgarcia/taproom/internal/mirror"
	"github.com/mvgarcia/taproom/pkg/brewapi"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/metrics"
)

// Backend is the slice of the API client the favorites need.
type Backend interface {
	ListFavorites(ctx context.Context) ([]brewapi.FavoriteProduct, error)
	AddFavorite(ctx context.Context, productID string) error
	RemoveFavorite(ctx context.Context, productID string) error
}

// ServiceParams wires the favorites dependencies.
type ServiceParams struct {
	Backend Backend
	Logger  *logger.Logger
	Metrics *metrics.MirrorMetrics
}

// Service exposes favorite-set operations over a reconciled mirror.
type Service struct {
	backend Backend
	logger  *logger.Logger
	mirror  *mirror.Mirror[brewapi.FavoriteProduct]
}

// NewService validates params and builds the favorites service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	m, err := mirror.New(mirror.Params[brewapi.FavoriteProduct]{
		Resource: "favorites",
		Load:     params.Backend.ListFavorites,
		Logger:   params.Logger,
		Metrics:  params.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Service{backend: params.Backend, logger: params.Logger, mirror: m}, nil
}

// Load pulls the favorites from the backend into the mirror.
func (s *Service) Load(ctx context.Context) error {
	return s.mirror.Refresh(ctx)
}

// Add marks a product as favorite. Adding a product that is already
// cached as favorite skips the backend call entirely.
func (s *Service) Add(ctx context.Context, productID string) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if s.Contains(productID) {
		return nil
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.AddFavorite(ctx, productID)
	})
}

// Remove unmarks a product. Removing a product that is not cached as
// favorite is a no-op.
func (s *Service) Remove(ctx context.Context, productID string) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !s.Contains(productID) {
		return nil
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.RemoveFavorite(ctx, productID)
	})
}

// Toggle flips a product's favorite state.
func (s *Service) Toggle(ctx context.Context, productID string) error {
	if s.Contains(productID) {
		return s.Remove(ctx, productID)
	}
	return s.Add(ctx, productID)
}

// Contains reports whether the product is cached as favorite.
func (s *Service) Contains(productID string) bool {
	_, ok := s.mirror.Find(func(f brewapi.FavoriteProduct) bool {
		return f.ID == productID
	})
	return ok
}

// Items returns the cached favorites.
func (s *Service) Items() []brewapi.FavoriteProduct {
	return s.mirror.Items()
}

// Reset drops the mirror, typically on logout.
func (s *Service) Reset() {
	s.mirror.Reset()
}

// Package reviews keeps per-product review mirrors. The backend holds
// at most one review per (user, product) pair, so submitting always
// goes through the create endpoint and lets the backend upsert.
package reviews

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mvgarcia/taproom/internal/mirror"
	"github.com/mvgarcia/taproom/pkg/brewapi"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/metrics"
)

// Backend is the slice of the API client the reviews need.
type Backend interface {
	ListProductReviews(ctx context.Context, productID string) ([]brewapi.Review, error)
	ListUserReviews(ctx context.Context) ([]brewapi.Review, error)
	CreateReview(ctx context.Context, productID string, rating int, comment string) error
	DeleteReview(ctx context.Context, slug string) error
	AverageRating(ctx context.Context, productID string) (float64, error)
}

// ServiceParams wires the reviews dependencies.
type ServiceParams struct {
	Backend Backend
	Logger  *logger.Logger
	Metrics *metrics.MirrorMetrics
}

// ReviewInput carries a review submission.
type ReviewInput struct {
	ProductID string `validate:"required"`
	Rating    int    `validate:"gte=1,lte=5"`
	Comment   string `validate:"max=2000"`
}

// Service exposes review operations, one mirror per viewed product.
type Service struct {
	backend  Backend
	logger   *logger.Logger
	metrics  *metrics.MirrorMetrics
	validate *validator.Validate

	mu      sync.Mutex
	mirrors map[string]*mirror.Mirror[brewapi.Review]
}

// NewService validates params and builds the reviews service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{
		backend:  params.Backend,
		logger:   params.Logger,
		metrics:  params.Metrics,
		validate: validator.New(),
		mirrors:  make(map[string]*mirror.Mirror[brewapi.Review]),
	}, nil
}

func (s *Service) mirrorFor(productID string) (*mirror.Mirror[brewapi.Review], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.mirrors[productID]; ok {
		return m, nil
	}
	m, err := mirror.New(mirror.Params[brewapi.Review]{
		Resource: "reviews",
		Load: func(ctx context.Context) ([]brewapi.Review, error) {
			return s.backend.ListProductReviews(ctx, productID)
		},
		Logger:  s.logger,
		Metrics: s.metrics,
	})
	if err != nil {
		return nil, err
	}
	s.mirrors[productID] = m
	return m, nil
}

// Load pulls a product's reviews into its mirror.
func (s *Service) Load(ctx context.Context, productID string) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	m, err := s.mirrorFor(productID)
	if err != nil {
		return err
	}
	return m.Refresh(ctx)
}

// Submit creates or replaces the caller's review of a product. The
// backend keys reviews by (user, product), so this is an upsert.
func (s *Service) Submit(ctx context.Context, in ReviewInput) error {
	if err := s.validate.Struct(in); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid review")
	}
	m, err := s.mirrorFor(in.ProductID)
	if err != nil {
		return err
	}
	return m.Apply(ctx, func(ctx context.Context) error {
		return s.backend.CreateReview(ctx, in.ProductID, in.Rating, in.Comment)
	})
}

// Remove deletes a review by slug and reconciles the product mirror.
func (s *Service) Remove(ctx context.Context, productID, reviewSlug string) error {
	if productID == "" || reviewSlug == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and review slug are required")
	}
	m, err := s.mirrorFor(productID)
	if err != nil {
		return err
	}
	return m.Apply(ctx, func(ctx context.Context) error {
		return s.backend.DeleteReview(ctx, reviewSlug)
	})
}

// ForProduct returns the cached reviews of a product.
func (s *Service) ForProduct(productID string) []brewapi.Review {
	s.mu.Lock()
	m, ok := s.mirrors[productID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return m.Items()
}

// Mine fetches the caller's reviews straight from the backend; the
// per-product mirrors stay untouched.
func (s *Service) Mine(ctx context.Context) ([]brewapi.Review, error) {
	return s.backend.ListUserReviews(ctx)
}

// Average fetches a product's mean rating.
func (s *Service) Average(ctx context.Context, productID string) (float64, error) {
	if productID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.backend.AverageRating(ctx, productID)
}

// Reset drops every cached mirror, typically on logout.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirrors = make(map[string]*mirror.Mirror[brewapi.Review])
}

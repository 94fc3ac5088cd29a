// Package cart keeps the shopper's cart mirror. The backend owns the
// cart; every mutation round-trips and reconciles by reloading.
package cart

import (
	"context"
	"sync"

	"github.com/mvgarcia/taproom/internal/mirror"
	"github.com/mvgarcia/taproom/pkg/brewapi"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/metrics"
	"github.com/mvgarcia/taproom/pkg/money"
)

// Backend is the slice of the API client the cart needs.
type Backend interface {
	GetCart(ctx context.Context) (brewapi.Cart, error)
	CreateCart(ctx context.Context) (brewapi.Cart, error)
	AddCartItem(ctx context.Context, cartSlug, productID, productSlug, companyID string) error
	RemoveCartItem(ctx context.Context, cartSlug, itemSlug string) error
	UpdateCartItem(ctx context.Context, cartSlug, itemSlug string, quantity int) error
	ClearCart(ctx context.Context, cartSlug string) error
}

// ServiceParams wires the cart dependencies.
type ServiceParams struct {
	Backend Backend
	Logger  *logger.Logger
	Metrics *metrics.MirrorMetrics
}

// Service exposes cart operations over a reconciled mirror.
type Service struct {
	backend Backend
	logger  *logger.Logger

	mu     sync.RWMutex
	slug   string
	mirror *mirror.Mirror[brewapi.CartItem]
}

// NewService validates params and builds the cart service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}

	s := &Service{backend: params.Backend, logger: params.Logger}
	m, err := mirror.New(mirror.Params[brewapi.CartItem]{
		Resource: "cart",
		Load:     s.loadItems,
		Logger:   params.Logger,
		Metrics:  params.Metrics,
	})
	if err != nil {
		return nil, err
	}
	s.mirror = m
	return s, nil
}

// loadItems fetches the cart snapshot and remembers its slug so later
// mutations can address it.
func (s *Service) loadItems(ctx context.Context) ([]brewapi.CartItem, error) {
	cart, err := s.backend.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.slug = cart.Slug
	s.mu.Unlock()
	return cart.Items, nil
}

// Load pulls the cart from the backend into the mirror.
func (s *Service) Load(ctx context.Context) error {
	return s.mirror.Refresh(ctx)
}

// ensureCart returns the cart slug, provisioning a cart when the
// session has none yet.
func (s *Service) ensureCart(ctx context.Context) (string, error) {
	s.mu.RLock()
	slug := s.slug
	s.mu.RUnlock()
	if slug != "" {
		return slug, nil
	}

	if err := s.mirror.Refresh(ctx); err != nil {
		return "", err
	}
	s.mu.RLock()
	slug = s.slug
	s.mu.RUnlock()
	if slug != "" {
		return slug, nil
	}

	created, err := s.backend.CreateCart(ctx)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.slug = created.Slug
	s.mu.Unlock()
	s.logger.Info(s.logger.WithResource(ctx, "cart"), "provisioned session cart")
	return created.Slug, nil
}

// Add puts one unit of the product into the cart.
func (s *Service) Add(ctx context.Context, product brewapi.Product) error {
	if product.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	slug, err := s.ensureCart(ctx)
	if err != nil {
		return err
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.AddCartItem(ctx, slug, product.ID, product.Slug, product.CompanyID)
	})
}

// Remove drops a cart line.
func (s *Service) Remove(ctx context.Context, itemSlug string) error {
	if itemSlug == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item slug is required")
	}
	slug, err := s.ensureCart(ctx)
	if err != nil {
		return err
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.RemoveCartItem(ctx, slug, itemSlug)
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, itemSlug string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, itemSlug)
	}
	slug, err := s.ensureCart(ctx)
	if err != nil {
		return err
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.UpdateCartItem(ctx, slug, itemSlug, quantity)
	})
}

// Clear drops every cart line.
func (s *Service) Clear(ctx context.Context) error {
	slug, err := s.ensureCart(ctx)
	if err != nil {
		return err
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.ClearCart(ctx, slug)
	})
}

// Items returns the cached cart lines.
func (s *Service) Items() []brewapi.CartItem {
	return s.mirror.Items()
}

// ItemCount sums the quantities across all lines.
func (s *Service) ItemCount() int {
	var count int
	for _, item := range s.mirror.Items() {
		count += item.Quantity
	}
	return count
}

// Subtotal sums the line totals of the cached snapshot.
func (s *Service) Subtotal() money.Cents {
	var total money.Cents
	for _, item := range s.mirror.Items() {
		total += item.Total()
	}
	return total
}

// Reset drops the mirror, typically on logout.
func (s *Service) Reset() {
	s.mu.Lock()
	s.slug = ""
	s.mu.Unlock()
	s.mirror.Reset()
}

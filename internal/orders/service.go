// Package orders keeps the pedido mirror for the POS admin screens and
// guards the linear status flow before calls reach the backend.
package orders

import (
	"context"
	"fmt"

	"github.com/mvgarcia/taproom/internal/mirror"
	"github.com/mvgarcia/taproom/pkg/brewapi"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/metrics"
)

// Backend is the slice of the API client the orders need.
type Backend interface {
	ListOrders(ctx context.Context) ([]brewapi.Order, error)
	SearchOrders(ctx context.Context, origin brewapi.OrderOrigin, tableSlug string) ([]brewapi.Order, error)
	CreateOrderFromTable(ctx context.Context, tableSlug, companyID string, method enums.PaymentMethod) (brewapi.Order, error)
	CreateOrderFromCart(ctx context.Context, cartSlug string, method enums.PaymentMethod, customer brewapi.Customer) (brewapi.Order, error)
	UpdateOrderStatus(ctx context.Context, orderSlug string, status enums.OrderStatus) error
}

// ServiceParams wires the orders dependencies.
type ServiceParams struct {
	Backend Backend
	Logger  *logger.Logger
	Metrics *metrics.MirrorMetrics
}

// Service exposes pedido operations over a reconciled mirror.
type Service struct {
	backend Backend
	logger  *logger.Logger
	mirror  *mirror.Mirror[brewapi.Order]
}

// NewService validates params and builds the orders service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	m, err := mirror.New(mirror.Params[brewapi.Order]{
		Resource: "orders",
		Load:     params.Backend.ListOrders,
		Logger:   params.Logger,
		Metrics:  params.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Service{backend: params.Backend, logger: params.Logger, mirror: m}, nil
}

// Load pulls the orders from the backend into the mirror.
func (s *Service) Load(ctx context.Context) error {
	return s.mirror.Refresh(ctx)
}

// Items returns the cached orders.
func (s *Service) Items() []brewapi.Order {
	return s.mirror.Items()
}

// Get returns the cached order with the given slug.
func (s *Service) Get(slug string) (brewapi.Order, bool) {
	return s.mirror.Find(func(o brewapi.Order) bool {
		return o.Slug == slug
	})
}

// ByStatus filters the cached orders by status.
func (s *Service) ByStatus(status enums.OrderStatus) []brewapi.Order {
	var out []brewapi.Order
	for _, o := range s.mirror.Items() {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// Search queries the backend by origin and table, bypassing the mirror.
func (s *Service) Search(ctx context.Context, origin brewapi.OrderOrigin, tableSlug string) ([]brewapi.Order, error) {
	return s.backend.SearchOrders(ctx, origin, tableSlug)
}

// CreateFromTable closes a mesa's open items into a pedido.
func (s *Service) CreateFromTable(ctx context.Context, tableSlug, companyID string, method enums.PaymentMethod) (brewapi.Order, error) {
	var created brewapi.Order
	err := s.mirror.Apply(ctx, func(ctx context.Context) error {
		order, err := s.backend.CreateOrderFromTable(ctx, tableSlug, companyID, method)
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return brewapi.Order{}, err
	}
	s.logger.Info(s.logger.WithTableSlug(ctx, tableSlug), "order created from table")
	return created, nil
}

// CreateFromCart turns the session cart into a pedido.
func (s *Service) CreateFromCart(ctx context.Context, cartSlug string, method enums.PaymentMethod, customer brewapi.Customer) (brewapi.Order, error) {
	var created brewapi.Order
	err := s.mirror.Apply(ctx, func(ctx context.Context) error {
		order, err := s.backend.CreateOrderFromCart(ctx, cartSlug, method, customer)
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return brewapi.Order{}, err
	}
	return created, nil
}

// UpdateStatus advances an order along the linear flow. Transitions
// the flow disallows are rejected locally before any backend call.
func (s *Service) UpdateStatus(ctx context.Context, orderSlug string, next enums.OrderStatus) error {
	if !next.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "order status is invalid")
	}
	if current, ok := s.Get(orderSlug); ok && !current.Status.CanTransitionTo(next) {
		return pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", current.Status, next),
		)
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.UpdateOrderStatus(ctx, orderSlug, next)
	})
}

// Reset drops the mirror, typically on logout.
func (s *Service) Reset() {
	s.mirror.Reset()
}

// Package tables drives the mesa lifecycle at the POS: free tables get
// occupied by their first item, checks are settled per table, and
// temporary tabs disappear once paid.
package tables

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/mvgarcia/taproom/internal/mirror"
	"github.com/mvgarcia/taproom/pkg/brewapi"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/metrics"
	"github.com/mvgarcia/taproom/pkg/money"
)

// Backend is the slice of the API client the tables need.
type Backend interface {
	ListTables(ctx context.Context) ([]brewapi.Table, error)
	GetTable(ctx context.Context, slug string) (brewapi.Table, error)
	CreateTable(ctx context.Context, in brewapi.TableInput) (brewapi.Table, error)
	DeleteTable(ctx context.Context, slug string) error
	AddTableItem(ctx context.Context, tableSlug, productID, productSlug string, quantity int) error
	RemoveTableItem(ctx context.Context, tableSlug, productID string) error
	CancelTableOrder(ctx context.Context, tableSlug string) error
	RecordTablePayment(ctx context.Context, tableSlug string, amount money.Cents, totalPeople int) error
	CreateOrderFromTable(ctx context.Context, tableSlug, companyID string, method enums.PaymentMethod) (brewapi.Order, error)
	RecordStockOutflow(ctx context.Context, items []brewapi.OrderItem) error
	IncrementStock(ctx context.Context, slug string, quantity int) error
}

// ServiceParams wires the tables dependencies.
type ServiceParams struct {
	Backend Backend
	Logger  *logger.Logger
	Metrics *metrics.MirrorMetrics
}

// Service exposes mesa operations over a reconciled mirror.
type Service struct {
	backend  Backend
	logger   *logger.Logger
	mirror   *mirror.Mirror[brewapi.Table]
	validate *validator.Validate
}

// NewService validates params and builds the tables service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	m, err := mirror.New(mirror.Params[brewapi.Table]{
		Resource: "tables",
		Load:     params.Backend.ListTables,
		Logger:   params.Logger,
		Metrics:  params.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Service{backend: params.Backend, logger: params.Logger, mirror: m, validate: validator.New()}, nil
}

// Load pulls the tables from the backend into the mirror.
func (s *Service) Load(ctx context.Context) error {
	return s.mirror.Refresh(ctx)
}

// Items returns the cached tables.
func (s *Service) Items() []brewapi.Table {
	return s.mirror.Items()
}

// Get returns the cached table with the given slug.
func (s *Service) Get(slug string) (brewapi.Table, bool) {
	return s.mirror.Find(func(t brewapi.Table) bool {
		return t.Slug == slug
	})
}

// Occupied returns the cached tables with an open check.
func (s *Service) Occupied() []brewapi.Table {
	var out []brewapi.Table
	for _, t := range s.mirror.Items() {
		if t.Status == enums.TableStatusOccupied {
			out = append(out, t)
		}
	}
	return out
}

// Create registers a mesa. Named tabs (NotNumeric) are temporary and
// deleted again once their check is settled.
func (s *Service) Create(ctx context.Context, in brewapi.TableInput) error {
	if err := s.validate.Struct(in); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid table")
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		_, err := s.backend.CreateTable(ctx, in)
		return err
	})
}

// Delete removes a mesa. Tables with an open check cannot be deleted.
func (s *Service) Delete(ctx context.Context, slug string) error {
	if table, ok := s.Get(slug); ok && table.Status == enums.TableStatusOccupied {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "table has an open check")
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.DeleteTable(ctx, slug)
	})
}

// AddItem puts quantity units of a product on the table's check. The
// backend flips a free table to occupied on its first item.
func (s *Service) AddItem(ctx context.Context, tableSlug string, product brewapi.Product, quantity int) error {
	if product.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if product.Stock < quantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").WithDetails(product.Slug)
	}
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.AddTableItem(ctx, tableSlug, product.ID, product.Slug, quantity)
	})
}

// RemoveItem drops a product line from the table's check.
func (s *Service) RemoveItem(ctx context.Context, tableSlug, productID string) error {
	return s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.RemoveTableItem(ctx, tableSlug, productID)
	})
}

// CancelOrder voids the table's open check and returns every line to
// stock. Restock failures are collected so one failed line does not
// hide the others; the cancellation itself still goes through.
func (s *Service) CancelOrder(ctx context.Context, tableSlug string) error {
	table, ok := s.Get(tableSlug)
	if !ok {
		loaded, err := s.backend.GetTable(ctx, tableSlug)
		if err != nil {
			return err
		}
		table = loaded
	}

	var restockErr error
	for _, item := range table.Items {
		if item.ProductSlug == "" || item.Quantity <= 0 {
			continue
		}
		if err := s.backend.IncrementStock(ctx, item.ProductSlug, item.Quantity); err != nil {
			restockErr = multierr.Append(restockErr, err)
		}
	}
	if restockErr != nil {
		s.logger.Error(s.logger.WithTableSlug(ctx, tableSlug), "failed to restock canceled items", restockErr)
	}

	if err := s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.CancelTableOrder(ctx, tableSlug)
	}); err != nil {
		return multierr.Append(restockErr, err)
	}
	return restockErr
}

// ConfirmShare settles the next share of a split check: the payment is
// recorded against the mesa on the backend first, then the session
// advances. The running totals survive a POS restart that way.
func (s *Service) ConfirmShare(ctx context.Context, session *PaymentSession, method enums.PaymentMethod) (SharePayment, error) {
	if session == nil {
		return SharePayment{}, pkgerrors.New(pkgerrors.CodeValidation, "payment session is required")
	}
	if !method.IsValid() {
		return SharePayment{}, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	amount, ok := session.NextShare()
	if !ok {
		return SharePayment{}, pkgerrors.New(pkgerrors.CodeStateConflict, "check is already fully paid")
	}
	if err := s.mirror.Apply(ctx, func(ctx context.Context) error {
		return s.backend.RecordTablePayment(ctx, session.TableSlug(), amount, len(session.Shares()))
	}); err != nil {
		return SharePayment{}, err
	}
	return session.ConfirmShare(method)
}

// Settle closes the table's check: it creates the pedido, records the
// stock outflow, and frees the table. Temporary named tabs are deleted
// outright; numbered tables stay and return to free.
func (s *Service) Settle(ctx context.Context, tableSlug, companyID string, method enums.PaymentMethod) (brewapi.Order, error) {
	table, ok := s.Get(tableSlug)
	if !ok {
		loaded, err := s.backend.GetTable(ctx, tableSlug)
		if err != nil {
			return brewapi.Order{}, err
		}
		table = loaded
	}
	if len(table.Items) == 0 {
		return brewapi.Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "table has no open check")
	}

	order, err := s.backend.CreateOrderFromTable(ctx, tableSlug, companyID, method)
	if err != nil {
		return brewapi.Order{}, err
	}

	if err := s.backend.RecordStockOutflow(ctx, table.Items); err != nil {
		// The sale went through; the ledger entry can be replayed later.
		s.logger.Error(s.logger.WithTableSlug(ctx, tableSlug), "failed to record stock outflow", err)
	}

	if table.NotNumeric {
		err = s.mirror.Apply(ctx, func(ctx context.Context) error {
			return s.backend.DeleteTable(ctx, tableSlug)
		})
	} else {
		err = s.mirror.Refresh(ctx)
	}
	if err != nil {
		return order, err
	}

	s.logger.Info(s.logger.WithTableSlug(ctx, tableSlug), "table check settled")
	return order, nil
}

// Reset drops the mirror, typically on logout.
func (s *Service) Reset() {
	s.mirror.Reset()
}

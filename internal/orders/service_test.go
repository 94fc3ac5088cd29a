package orders

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mvgarcia/taproom/pkg/brewapi"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type stubBackend struct {
	orders        []brewapi.Order
	statusUpdates int
}

func (s *stubBackend) ListOrders(context.Context) ([]brewapi.Order, error) {
	out := make([]brewapi.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func (s *stubBackend) SearchOrders(_ context.Context, origin brewapi.OrderOrigin, tableSlug string) ([]brewapi.Order, error) {
	return s.orders, nil
}

func (s *stubBackend) CreateOrderFromTable(_ context.Context, tableSlug, _ string, method enums.PaymentMethod) (brewapi.Order, error) {
	order := brewapi.Order{
		Slug:          fmt.Sprintf("pedido-%d", len(s.orders)+1),
		Status:        enums.OrderStatusPending,
		PaymentMethod: method,
	}
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *stubBackend) CreateOrderFromCart(_ context.Context, _ string, method enums.PaymentMethod, customer brewapi.Customer) (brewapi.Order, error) {
	order := brewapi.Order{
		Slug:          fmt.Sprintf("pedido-%d", len(s.orders)+1),
		Status:        enums.OrderStatusPending,
		PaymentMethod: method,
		Customer:      &customer,
	}
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *stubBackend) UpdateOrderStatus(_ context.Context, orderSlug string, status enums.OrderStatus) error {
	s.statusUpdates++
	for i, o := range s.orders {
		if o.Slug == orderSlug {
			s.orders[i].Status = status
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func newTestService(t *testing.T, backend Backend) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{Backend: backend, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return service
}

func TestStatusFlowAdvances(t *testing.T) {
	backend := &stubBackend{orders: []brewapi.Order{{Slug: "pedido-1", Status: enums.OrderStatusPending}}}
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Load(ctx); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if err := service.UpdateStatus(ctx, "pedido-1", enums.OrderStatusInProgress); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if err := service.UpdateStatus(ctx, "pedido-1", enums.OrderStatusDelivered); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	order, ok := service.Get("pedido-1")
	if !ok || order.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered order, got %+v ok=%v", order, ok)
	}
}

func TestStatusFlowRejectsBackwardMoves(t *testing.T) {
	backend := &stubBackend{orders: []brewapi.Order{{Slug: "pedido-1", Status: enums.OrderStatusDelivered}}}
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Load(ctx); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	err := service.UpdateStatus(ctx, "pedido-1", enums.OrderStatusPending)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if backend.statusUpdates != 0 {
		t.Fatalf("expected no backend call for rejected transition, got %d", backend.statusUpdates)
	}
}

func TestStatusFlowRejectsCancelingInProgress(t *testing.T) {
	backend := &stubBackend{orders: []brewapi.Order{{Slug: "pedido-1", Status: enums.OrderStatusInProgress}}}
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Load(ctx); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	err := service.UpdateStatus(ctx, "pedido-1", enums.OrderStatusCanceled)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCreateFromTableReconciles(t *testing.T) {
	backend := &stubBackend{}
	service := newTestService(t, backend)
	ctx := context.Background()

	order, err := service.CreateFromTable(ctx, "mesa-01", "1", enums.PaymentMethodPix)
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", order.Status)
	}
	if got := len(service.Items()); got != 1 {
		t.Fatalf("expected mirror to hold the new order, got %d", got)
	}
}

func TestByStatusFilters(t *testing.T) {
	backend := &stubBackend{orders: []brewapi.Order{
		{Slug: "pedido-1", Status: enums.OrderStatusPending},
		{Slug: "pedido-2", Status: enums.OrderStatusDelivered},
		{Slug: "pedido-3", Status: enums.OrderStatusPending},
	}}
	service := newTestService(t, backend)
	if err := service.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if got := len(service.ByStatus(enums.OrderStatusPending)); got != 2 {
		t.Fatalf("expected 2 pending orders, got %d", got)
	}
}

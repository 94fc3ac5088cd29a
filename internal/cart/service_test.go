package cart

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mvgarcia/taproom/pkg/brewapi"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/money"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

// stubBackend keeps a server-side cart in memory, mimicking the
// backend's mutate-then-read contract.
type stubBackend struct {
	cart        brewapi.Cart
	created     bool
	failNextAdd error
	gets        int
}

func (s *stubBackend) GetCart(context.Context) (brewapi.Cart, error) {
	s.gets++
	return s.cart, nil
}

func (s *stubBackend) CreateCart(context.Context) (brewapi.Cart, error) {
	s.created = true
	s.cart = brewapi.Cart{Slug: "carrinho-1"}
	return s.cart, nil
}

func (s *stubBackend) AddCartItem(_ context.Context, _, productID, productSlug, companyID string) error {
	if s.failNextAdd != nil {
		err := s.failNextAdd
		s.failNextAdd = nil
		return err
	}
	for i, item := range s.cart.Items {
		if item.ProductID == productID {
			s.cart.Items[i].Quantity++
			return nil
		}
	}
	s.cart.Items = append(s.cart.Items, brewapi.CartItem{
		ProductID:   productID,
		ProductSlug: productSlug,
		CompanyID:   companyID,
		Slug:        "item-" + productID,
		UnitPrice:   money.Cents(1000),
		Quantity:    1,
	})
	return nil
}

func (s *stubBackend) RemoveCartItem(_ context.Context, _, itemSlug string) error {
	for i, item := range s.cart.Items {
		if item.Slug == itemSlug {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
}

func (s *stubBackend) UpdateCartItem(_ context.Context, _, itemSlug string, quantity int) error {
	for i, item := range s.cart.Items {
		if item.Slug == itemSlug {
			s.cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
}

func (s *stubBackend) ClearCart(context.Context, string) error {
	s.cart.Items = nil
	return nil
}

func newTestService(t *testing.T, backend Backend) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{Backend: backend, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return service
}

func TestAddUpdateRemoveReconciles(t *testing.T) {
	backend := &stubBackend{cart: brewapi.Cart{Slug: "carrinho-1"}}
	service := newTestService(t, backend)
	ctx := context.Background()

	beer := brewapi.Product{ID: "7", Slug: "ipa-artesanal", CompanyID: "1"}
	if err := service.Add(ctx, beer); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if got := service.ItemCount(); got != 1 {
		t.Fatalf("expected 1 item, got %d", got)
	}

	items := service.Items()
	if err := service.UpdateQuantity(ctx, items[0].Slug, 3); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if got := service.Subtotal(); got != money.Cents(3000) {
		t.Fatalf("expected subtotal 3000, got %d", got)
	}

	if err := service.Remove(ctx, items[0].Slug); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if got := service.ItemCount(); got != 0 {
		t.Fatalf("expected empty cart, got %d items", got)
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	backend := &stubBackend{cart: brewapi.Cart{Slug: "carrinho-1"}}
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Add(ctx, brewapi.Product{ID: "7"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	items := service.Items()
	if err := service.UpdateQuantity(ctx, items[0].Slug, 0); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if got := len(service.Items()); got != 0 {
		t.Fatalf("expected line removed, got %d lines", got)
	}
}

func TestAddProvisionsCartWhenMissing(t *testing.T) {
	backend := &stubBackend{}
	service := newTestService(t, backend)

	if err := service.Add(context.Background(), brewapi.Product{ID: "7"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if !backend.created {
		t.Fatal("expected a cart to be provisioned")
	}
}

func TestFailedAddLeavesCacheUntouched(t *testing.T) {
	backend := &stubBackend{cart: brewapi.Cart{Slug: "carrinho-1"}}
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Add(ctx, brewapi.Product{ID: "7"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	before := service.Items()

	backend.failNextAdd = pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	if err := service.Add(ctx, brewapi.Product{ID: "8"}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}

	after := service.Items()
	if len(after) != len(before) {
		t.Fatalf("cache changed after failed mutation: before %d lines, after %d", len(before), len(after))
	}
}

func TestClearEmptiesCart(t *testing.T) {
	backend := &stubBackend{cart: brewapi.Cart{Slug: "carrinho-1"}}
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Add(ctx, brewapi.Product{ID: "7"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := service.Clear(ctx); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	if got := service.ItemCount(); got != 0 {
		t.Fatalf("expected empty cart, got %d items", got)
	}
}

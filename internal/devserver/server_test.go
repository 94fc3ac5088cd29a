package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mvgarcia/taproom/internal/localstore"
	"github.com/mvgarcia/taproom/internal/tables"
	"github.com/mvgarcia/taproom/pkg/config"
	"github.com/mvgarcia/taproom/pkg/db"
	"github.com/mvgarcia/taproom/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	client, err := db.New(context.Background(), config.LocalStoreConfig{
		Path: filepath.Join(t.TempDir(), "taproom.db"),
	}, logg)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store, err := localstore.NewStore(localstore.StoreParams{Client: client, Logger: logg, DefaultTables: 3})
	if err != nil {
		t.Fatalf("unexpected error building store: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("unexpected migrate error: %v", err)
	}

	sequencer, err := tables.NewLocalSequencer(store)
	if err != nil {
		t.Fatalf("unexpected sequencer error: %v", err)
	}

	server, err := NewServer(ServerParams{
		Store:     store,
		Sequencer: sequencer,
		Logger:    logg,
		Config:    config.DevServerConfig{Port: "0"},
	})
	if err != nil {
		t.Fatalf("unexpected server error: %v", err)
	}

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("unexpected request error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("unexpected http error: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		raw, _ := io.ReadAll(resp.Body)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				t.Fatalf("unexpected decode error for %s: %v", raw, err)
			}
		}
	}
	return resp.StatusCode
}

func registerAndLogin(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	var created struct {
		Token string `json:"token"`
	}
	status := doJSON(t, ts, http.MethodPost, "/usuarios/", "", map[string]string{
		"name":      "Garçom",
		"email":     "garcom@taproom.dev",
		"password":  "segredo1",
		"user_type": "physical",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", status)
	}
	if created.Token == "" {
		t.Fatal("expected a bearer token on register")
	}
	return created.Token
}

func createProduct(t *testing.T, ts *httptest.Server, token, name string, price float64, stock int) productWire {
	t.Helper()
	var product productWire
	status := doJSON(t, ts, http.MethodPost, "/produtos/", token, map[string]any{
		"nome":         name,
		"venda":        price,
		"custo":        price / 2,
		"estoque":      stock,
		"is_available": true,
	}, &product)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from create product, got %d", status)
	}
	return product
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	ts := newTestServer(t)

	status := doJSON(t, ts, http.MethodGet, "/mesas/", "", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	status = doJSON(t, ts, http.MethodGet, "/mesas/", "bogus", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus token, got %d", status)
	}
	status = doJSON(t, ts, http.MethodGet, "/produtos/", "", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("expected catalog to stay public, got %d", status)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts)

	var login struct {
		Token    string `json:"token"`
		UserType string `json:"user_type"`
	}
	status := doJSON(t, ts, http.MethodPost, "/login/", "", map[string]string{
		"email":    "garcom@taproom.dev",
		"password": "segredo1",
	}, &login)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d", status)
	}
	if login.Token == "" || login.UserType != "physical" {
		t.Fatalf("unexpected login payload %+v", login)
	}

	status = doJSON(t, ts, http.MethodPost, "/login/", "", map[string]string{
		"email":    "garcom@taproom.dev",
		"password": "errada",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 from bad password, got %d", status)
	}

	status = doJSON(t, ts, http.MethodGet, "/get-user-token/", login.Token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from get-user-token, got %d", status)
	}
}

func TestTableLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "Chopp Pilsen", 18.50, 10)

	var table tableWire
	status := doJSON(t, ts, http.MethodPost, "/mesas/mesa-01/adicionar-item/", token, map[string]any{
		"produto_id": product.ID,
		"quantidade": 2,
	}, &table)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from add item, got %d", status)
	}
	if table.Status != "Ocupada" || len(table.Items) != 1 {
		t.Fatalf("unexpected table after add %+v", table)
	}
	if table.Items[0].UnitPrice != 18.50 || table.Items[0].Quantity != 2 {
		t.Fatalf("unexpected item %+v", table.Items[0])
	}

	var order orderRecord
	status = doJSON(t, ts, http.MethodPost, "/pedidos/mesa/mesa-01/criar/", token, map[string]string{
		"metodo_pagamento": "pix",
	}, &order)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from create order, got %d", status)
	}
	if order.Total != 37.00 || order.Status != "pendente" || order.PaymentMethod != "pix" {
		t.Fatalf("unexpected order %+v", order)
	}

	var freed tableWire
	status = doJSON(t, ts, http.MethodGet, "/mesas/mesa-01/", token, nil, &freed)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from get table, got %d", status)
	}
	if freed.Status != "Livre" || len(freed.Items) != 0 {
		t.Fatalf("expected settled table to be free, got %+v", freed)
	}
}

func TestFirstItemAssignsOrderNumber(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "Lager", 12.00, 10)

	var table tableWire
	status := doJSON(t, ts, http.MethodPost, "/mesas/mesa-01/adicionar-item/", token, map[string]any{
		"produto_id": product.ID,
		"quantidade": 1,
	}, &table)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from add item, got %d", status)
	}
	if table.Order < 1 {
		t.Fatalf("expected a daily order number on first item, got pedido=%d", table.Order)
	}
	assigned := table.Order

	// A second item keeps the number already drawn.
	doJSON(t, ts, http.MethodPost, "/mesas/mesa-01/adicionar-item/", token, map[string]any{
		"produto_id": product.ID,
		"quantidade": 1,
	}, &table)
	if table.Order != assigned {
		t.Fatalf("expected pedido %d to stick, got %d", assigned, table.Order)
	}

	// The settled check carries the same number in its slug.
	var order orderRecord
	status = doJSON(t, ts, http.MethodPost, "/pedidos/mesa/mesa-01/criar/", token, map[string]string{
		"metodo_pagamento": "pix",
	}, &order)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from create order, got %d", status)
	}
	if want := fmt.Sprintf("-%d", assigned); !strings.HasSuffix(order.Slug, want) {
		t.Fatalf("expected order slug to end in %q, got %q", want, order.Slug)
	}
}

func TestRemovingLastItemClearsOrderNumber(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "Porter", 15.00, 10)

	var table tableWire
	doJSON(t, ts, http.MethodPost, "/mesas/mesa-01/adicionar-item/", token, map[string]any{
		"produto_id": product.ID,
		"quantidade": 1,
	}, &table)
	if table.Order < 1 {
		t.Fatalf("expected a daily order number on first item, got pedido=%d", table.Order)
	}

	status := doJSON(t, ts, http.MethodPost, "/mesas/mesa-01/remover-item/", token, map[string]any{
		"produto_id": product.ID,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from remove item, got %d", status)
	}

	var freed tableWire
	doJSON(t, ts, http.MethodGet, "/mesas/mesa-01/", token, nil, &freed)
	if freed.Status != "Livre" || freed.Order != 0 {
		t.Fatalf("expected free table with pedido=0, got %+v", freed)
	}
}

func TestSplitPaymentOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "Chopp Pilsen", 18.50, 10)

	doJSON(t, ts, http.MethodPost, "/mesas/mesa-01/adicionar-item/", token, map[string]any{
		"produto_id": product.ID,
		"quantidade": 2,
	}, nil)

	var table tableWire
	status := doJSON(t, ts, http.MethodPost, "/mesas/mesa-01/registrar-pagamento/", token, map[string]any{
		"valor":         18.50,
		"total_pessoas": 2,
	}, &table)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from payment, got %d", status)
	}
	if table.PeoplePaid != 1 || table.TotalPeople != 2 || table.AmountPaid != 18.50 {
		t.Fatalf("unexpected split state after first share %+v", table)
	}

	doJSON(t, ts, http.MethodPost, "/mesas/mesa-01/registrar-pagamento/", token, map[string]any{
		"valor": 18.50,
	}, &table)
	if table.PeoplePaid != 2 || table.AmountPaid != 37.00 {
		t.Fatalf("unexpected split state after second share %+v", table)
	}

	status = doJSON(t, ts, http.MethodPost, "/mesas/mesa-01/registrar-pagamento/", token, map[string]any{
		"valor": 0,
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-positive amount, got %d", status)
	}

	// Settling the check resets the split counters with the table.
	doJSON(t, ts, http.MethodPost, "/pedidos/mesa/mesa-01/criar/", token, map[string]string{
		"metodo_pagamento": "pix",
	}, nil)
	var freed tableWire
	doJSON(t, ts, http.MethodGet, "/mesas/mesa-01/", token, nil, &freed)
	if freed.PeoplePaid != 0 || freed.AmountPaid != 0 || freed.TotalPeople != 1 {
		t.Fatalf("expected split counters reset, got %+v", freed)
	}
}

func TestCreateOrderOnEmptyTableRejected(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)

	status := doJSON(t, ts, http.MethodPost, "/pedidos/mesa/mesa-01/criar/", token, map[string]string{
		"metodo_pagamento": "dinheiro",
	}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty table, got %d", status)
	}
}

func TestOrderStatusTransitionGuard(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "IPA Artesanal", 22.00, 5)

	doJSON(t, ts, http.MethodPost, "/mesas/mesa-02/adicionar-item/", token, map[string]any{
		"produto_id": product.ID,
		"quantidade": 1,
	}, nil)
	var order orderRecord
	doJSON(t, ts, http.MethodPost, "/pedidos/mesa/mesa-02/criar/", token, map[string]string{
		"metodo_pagamento": "cartao_credito",
	}, &order)

	path := fmt.Sprintf("/pedidos/%s/atualizar-status/", order.Slug)
	status := doJSON(t, ts, http.MethodPut, path, token, map[string]string{"status": "entregue"}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 skipping em-andamento, got %d", status)
	}

	var updated orderRecord
	status = doJSON(t, ts, http.MethodPut, path, token, map[string]string{"status": "em-andamento"}, &updated)
	if status != http.StatusOK {
		t.Fatalf("expected 200 advancing status, got %d", status)
	}
	if updated.Status != "em-andamento" {
		t.Fatalf("unexpected status %q", updated.Status)
	}

	status = doJSON(t, ts, http.MethodPut, path, token, map[string]string{"status": "entregue"}, &updated)
	if status != http.StatusOK || updated.Status != "entregue" {
		t.Fatalf("expected delivery to land, got %d %+v", status, updated)
	}
}

func TestDailyOrderNumbersIncrement(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "Stout", 25.00, 10)

	slugs := make([]string, 0, 2)
	for _, mesa := range []string{"mesa-01", "mesa-02"} {
		doJSON(t, ts, http.MethodPost, "/mesas/"+mesa+"/adicionar-item/", token, map[string]any{
			"produto_id": product.ID,
			"quantidade": 1,
		}, nil)
		var order orderRecord
		status := doJSON(t, ts, http.MethodPost, "/pedidos/mesa/"+mesa+"/criar/", token, map[string]string{
			"metodo_pagamento": "dinheiro",
		}, &order)
		if status != http.StatusCreated {
			t.Fatalf("expected 201 from create order, got %d", status)
		}
		slugs = append(slugs, order.Slug)
	}
	if slugs[0] == slugs[1] {
		t.Fatalf("expected distinct order slugs, got %q twice", slugs[0])
	}
}

func TestStockEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "Weiss", 20.00, 4)

	status := doJSON(t, ts, http.MethodPost, "/produtos/"+product.Slug+"/incrementar-estoque/", token, map[string]int{"quantidade": 6}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from increment, got %d", status)
	}
	status = doJSON(t, ts, http.MethodPost, "/produtos/"+product.Slug+"/decrementar-estoque/", token, map[string]int{"quantidade": 3}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from decrement, got %d", status)
	}

	var fetched productWire
	doJSON(t, ts, http.MethodGet, "/produtos/"+product.Slug+"/", "", nil, &fetched)
	if fetched.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", fetched.Stock)
	}

	status = doJSON(t, ts, http.MethodPost, "/produtos/"+product.Slug+"/decrementar-estoque/", token, map[string]int{"quantidade": 100}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized draw, got %d", status)
	}

	status = doJSON(t, ts, http.MethodPost, "/estoques/", token, []map[string]any{
		{"produto": product.ID, "quantidade": 2, "tipo": "saida"},
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from ledger post, got %d", status)
	}
}

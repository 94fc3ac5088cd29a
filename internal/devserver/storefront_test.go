package devserver

import (
	"net/http"
	"testing"
)

func TestCartCheckoutOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "Lager", 10.00, 20)

	var cart cartWire
	status := doJSON(t, ts, http.MethodPost, "/carrinhos/", token, map[string]string{"slug": "carrinho-1"}, &cart)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from create cart, got %d", status)
	}

	for i := 0; i < 2; i++ {
		status = doJSON(t, ts, http.MethodPost, "/carrinhos/"+cart.Slug+"/adicionar-item/", token, map[string]any{
			"produto_id": product.ID,
			"quantidade": 1,
		}, nil)
		if status != http.StatusCreated && status != http.StatusOK {
			t.Fatalf("expected add to succeed, got %d", status)
		}
	}

	var carts []cartWire
	doJSON(t, ts, http.MethodGet, "/carrinhos/", token, nil, &carts)
	if len(carts) != 1 || len(carts[0].Items) != 1 || carts[0].Items[0].Quantity != 2 {
		t.Fatalf("expected one merged line of quantity 2, got %+v", carts)
	}

	var order orderRecord
	status = doJSON(t, ts, http.MethodPost, "/pedidos/carrinho/"+cart.Slug+"/criar/", token, map[string]any{
		"metodo_pagamento": "pix",
		"cliente":          map[string]string{"nome": "Maria"},
	}, &order)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from checkout, got %d", status)
	}
	if order.Total != 20.00 || order.Status != "pendente" {
		t.Fatalf("unexpected order %+v", order)
	}

	doJSON(t, ts, http.MethodGet, "/carrinhos/", token, nil, &carts)
	if len(carts) != 1 || len(carts[0].Items) != 0 {
		t.Fatalf("expected checkout to empty the cart, got %+v", carts)
	}
}

func TestReviewUpsertAndAverage(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "Porter", 15.00, 5)

	var first reviewEntry
	status := doJSON(t, ts, http.MethodPost, "/avaliacoes/criar/", token, map[string]any{
		"produto_id": product.ID,
		"rating":     3,
		"comentario": "ok",
	}, &first)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from first review, got %d", status)
	}

	var second reviewEntry
	status = doJSON(t, ts, http.MethodPost, "/avaliacoes/criar/", token, map[string]any{
		"produto_id": product.ID,
		"rating":     5,
		"comentario": "excelente",
	}, &second)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from repeat review, got %d", status)
	}
	if second.Slug != first.Slug || second.Rating != 5 {
		t.Fatalf("expected upsert onto the same review, got %+v", second)
	}

	var list []reviewEntry
	doJSON(t, ts, http.MethodGet, "/avaliacoes/produto/"+product.ID+"/", "", nil, &list)
	if len(list) != 1 || list[0].Comment != "excelente" {
		t.Fatalf("expected one review after upsert, got %+v", list)
	}

	var media struct {
		Media float64 `json:"media"`
	}
	doJSON(t, ts, http.MethodGet, "/avaliacoes/media/"+product.ID+"/", "", nil, &media)
	if media.Media != 5 {
		t.Fatalf("expected average 5, got %v", media.Media)
	}

	status = doJSON(t, ts, http.MethodPost, "/avaliacoes/criar/", token, map[string]any{
		"produto_id": product.ID,
		"rating":     0,
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range rating, got %d", status)
	}
}

func TestFavoritesAreASet(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)
	product := createProduct(t, ts, token, "Witbier", 17.00, 8)

	for i := 0; i < 2; i++ {
		status := doJSON(t, ts, http.MethodPost, "/favoritos/adicionar/", token, map[string]string{
			"produto_id": product.ID,
		}, nil)
		if status != http.StatusCreated {
			t.Fatalf("expected 201 from add favorite, got %d", status)
		}
	}

	var favorites []favoriteWire
	doJSON(t, ts, http.MethodGet, "/favoritos/", token, nil, &favorites)
	if len(favorites) != 1 || favorites[0].ProductName != "Witbier" {
		t.Fatalf("expected a single favorite, got %+v", favorites)
	}

	status := doJSON(t, ts, http.MethodDelete, "/favoritos/remover/"+product.ID+"/", token, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 from remove favorite, got %d", status)
	}
	doJSON(t, ts, http.MethodGet, "/favoritos/", token, nil, &favorites)
	if len(favorites) != 0 {
		t.Fatalf("expected empty favorites, got %+v", favorites)
	}
}

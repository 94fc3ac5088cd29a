package devserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/money"
)

// The online storefront surface (favorites, reviews, carts) is kept in
// memory: it exists so a terminal can exercise the full client against
// the dev server, not to persist shopper state across restarts.

type favoriteWire struct {
	Product     string  `json:"produto"`
	ProductName string  `json:"produto_nome"`
	Price       float64 `json:"produto_preco"`
	Image       string  `json:"imagem"`
	Description string  `json:"descricao"`
}

type reviewEntry struct {
	ID        string `json:"id"`
	ProductID string `json:"produto"`
	UserID    string `json:"usuario"`
	UserName  string `json:"usuario_nome"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comentario"`
	Date      string `json:"data"`
	Slug      string `json:"slug"`
}

type cartLine struct {
	ID          string  `json:"id"`
	Product     string  `json:"produto"`
	ProductName string  `json:"produto_nome"`
	Quantity    int     `json:"quantidade"`
	UnitPrice   float64 `json:"preco_unitario"`
	CompanyID   string  `json:"empresa_id"`
	Slug        string  `json:"slug"`
	ProductSlug string  `json:"produto_slug"`

	unitCents int64
}

type cartState struct {
	ID    string
	Slug  string
	Items []cartLine
}

type cartWire struct {
	ID    string     `json:"id"`
	Slug  string     `json:"slug"`
	Items []cartLine `json:"itens"`
}

// favorites

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	s.mu.Lock()
	ids := make([]string, 0, len(s.favorites[user.ID.String()]))
	for id := range s.favorites[user.ID.String()] {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	out := make([]favoriteWire, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		product, err := s.store.GetProductByID(r.Context(), parsed)
		if err != nil {
			continue
		}
		out = append(out, favoriteWire{
			Product:     product.ID.String(),
			ProductName: product.Name,
			Price:       money.Cents(product.PriceCents).Float(),
			Image:       product.Image,
			Description: product.Description,
		})
	}
	writeSuccess(w, out)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"produto_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	id, err := uuid.Parse(body.ProductID)
	if err != nil {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
		return
	}
	if _, err := s.store.GetProductByID(r.Context(), id); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}

	user := requestUser(r)
	s.mu.Lock()
	if s.favorites[user.ID.String()] == nil {
		s.favorites[user.ID.String()] = make(map[string]bool)
	}
	s.favorites[user.ID.String()][id.String()] = true
	s.mu.Unlock()

	writeCreated(w, map[string]string{"detail": "favorited"})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	delete(s.favorites[user.ID.String()], id)
	s.mu.Unlock()

	writeJSON(w, http.StatusNoContent, nil)
}

// reviews; one review per user and product, repeats overwrite

func (s *Server) handleListProductReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	s.mu.Lock()
	out := make([]reviewEntry, 0)
	for _, review := range s.reviews {
		if review.ProductID == productID {
			out = append(out, review)
		}
	}
	s.mu.Unlock()

	writeSuccess(w, out)
}

func (s *Server) handleListUserReviews(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	s.mu.Lock()
	out := make([]reviewEntry, 0)
	for _, review := range s.reviews {
		if review.UserID == user.ID.String() {
			out = append(out, review)
		}
	}
	s.mu.Unlock()

	writeSuccess(w, out)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"produto_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comentario"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5"))
		return
	}
	id, err := uuid.Parse(body.ProductID)
	if err != nil {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
		return
	}
	if _, err := s.store.GetProductByID(r.Context(), id); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}

	user := requestUser(r)
	now := time.Now().Format(time.RFC3339)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, review := range s.reviews {
		if review.ProductID == body.ProductID && review.UserID == user.ID.String() {
			s.reviews[i].Rating = body.Rating
			s.reviews[i].Comment = body.Comment
			s.reviews[i].Date = now
			writeSuccess(w, s.reviews[i])
			return
		}
	}
	review := reviewEntry{
		ID:        uuid.NewString(),
		ProductID: body.ProductID,
		UserID:    user.ID.String(),
		UserName:  user.Name,
		Rating:    body.Rating,
		Comment:   body.Comment,
		Date:      now,
		Slug:      fmt.Sprintf("avaliacao-%s", uuid.NewString()[:8]),
	}
	s.reviews = append(s.reviews, review)
	writeCreated(w, review)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comentario"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5"))
		return
	}

	user := requestUser(r)
	slug := chi.URLParam(r, "slug")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, review := range s.reviews {
		if review.Slug == slug && review.UserID == user.ID.String() {
			s.reviews[i].Rating = body.Rating
			s.reviews[i].Comment = body.Comment
			s.reviews[i].Date = time.Now().Format(time.RFC3339)
			writeSuccess(w, s.reviews[i])
			return
		}
	}
	writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeNotFound, "review not found"))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	slug := chi.URLParam(r, "slug")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, review := range s.reviews {
		if review.Slug == slug && review.UserID == user.ID.String() {
			s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
			writeJSON(w, http.StatusNoContent, nil)
			return
		}
	}
	writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeNotFound, "review not found"))
}

func (s *Server) handleAverageRating(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	s.mu.Lock()
	var sum, count int
	for _, review := range s.reviews {
		if review.ProductID == productID {
			sum += review.Rating
			count++
		}
	}
	s.mu.Unlock()

	var media float64
	if count > 0 {
		media = float64(sum) / float64(count)
	}
	writeSuccess(w, map[string]float64{"media": media})
}

// carts; one open cart per user

func (s *Server) cartFor(userID string) *cartState {
	if s.carts[userID] == nil {
		s.carts[userID] = &cartState{}
	}
	return s.carts[userID]
}

func (s *Server) handleGetCarts(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	s.mu.Lock()
	cart := s.carts[user.ID.String()]
	out := make([]cartWire, 0, 1)
	if cart != nil && cart.Slug != "" {
		items := make([]cartLine, len(cart.Items))
		copy(items, cart.Items)
		out = append(out, cartWire{ID: cart.ID, Slug: cart.Slug, Items: items})
	}
	s.mu.Unlock()

	writeSuccess(w, out)
}

func (s *Server) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Slug string `json:"slug"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if body.Slug == "" {
		body.Slug = fmt.Sprintf("carrinho-%d", time.Now().UnixMilli())
	}

	user := requestUser(r)
	s.mu.Lock()
	cart := s.cartFor(user.ID.String())
	if cart.Slug == "" {
		cart.ID = uuid.NewString()
		cart.Slug = body.Slug
		cart.Items = nil
	}
	out := cartWire{ID: cart.ID, Slug: cart.Slug, Items: append([]cartLine(nil), cart.Items...)}
	s.mu.Unlock()

	writeCreated(w, out)
}

func (s *Server) userCart(userID, slug string) (*cartState, error) {
	cart := s.carts[userID]
	if cart == nil || cart.Slug == "" || cart.Slug != slug {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return cart, nil
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"produto_id"`
		Quantity  int    `json:"quantidade"`
		CompanyID string `json:"empresa_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if body.Quantity < 1 {
		body.Quantity = 1
	}
	id, err := uuid.Parse(body.ProductID)
	if err != nil {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
		return
	}
	product, err := s.store.GetProductByID(r.Context(), id)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}

	user := requestUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, err := s.userCart(user.ID.String(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	for i, line := range cart.Items {
		if line.Product == product.ID.String() {
			cart.Items[i].Quantity += body.Quantity
			writeSuccess(w, map[string]string{"detail": "item added"})
			return
		}
	}
	cart.Items = append(cart.Items, cartLine{
		ID:          uuid.NewString(),
		Product:     product.ID.String(),
		ProductName: product.Name,
		Quantity:    body.Quantity,
		UnitPrice:   money.Cents(product.PriceCents).Float(),
		CompanyID:   body.CompanyID,
		Slug:        fmt.Sprintf("%s-%s", cart.Slug, product.Slug),
		ProductSlug: product.Slug,
		unitCents:   product.PriceCents,
	})
	writeCreated(w, map[string]string{"detail": "item added"})
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemSlug string `json:"item_slug"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}

	user := requestUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, err := s.userCart(user.ID.String(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	for i, line := range cart.Items {
		if line.Slug == body.ItemSlug {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			writeSuccess(w, map[string]string{"detail": "item removed"})
			return
		}
	}
	writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart"))
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemSlug string `json:"item_slug"`
		Quantity int    `json:"quantidade"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if body.Quantity < 1 {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1"))
		return
	}

	user := requestUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, err := s.userCart(user.ID.String(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	for i, line := range cart.Items {
		if line.Slug == body.ItemSlug {
			cart.Items[i].Quantity = body.Quantity
			writeSuccess(w, map[string]string{"detail": "item updated"})
			return
		}
	}
	writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart"))
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	cart, err := s.userCart(user.ID.String(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	cart.Items = nil
	writeSuccess(w, map[string]string{"detail": "cart cleared"})
}

func (s *Server) handleCreateOrderFromCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PaymentMethod string `json:"metodo_pagamento"`
		Customer      struct {
			Name    string `json:"nome"`
			Phone   string `json:"telefone"`
			Address string `json:"endereco"`
		} `json:"cliente"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	method, err := enums.ParsePaymentMethod(body.PaymentMethod)
	if err != nil {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required"))
		return
	}

	user := requestUser(r)
	s.mu.Lock()
	cart, cartErr := s.userCart(user.ID.String(), chi.URLParam(r, "slug"))
	if cartErr != nil {
		s.mu.Unlock()
		writeError(r.Context(), s.logger, w, cartErr)
		return
	}
	if len(cart.Items) == 0 {
		s.mu.Unlock()
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty"))
		return
	}
	lines := append([]cartLine(nil), cart.Items...)
	cart.Items = nil
	s.mu.Unlock()

	var totalCents int64
	items := make([]orderItemWire, 0, len(lines))
	for _, line := range lines {
		totalCents += line.unitCents * int64(line.Quantity)
		items = append(items, orderItemWire{
			ID:          line.ID,
			ProductID:   line.Product,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Slug:        line.Slug,
			ProductSlug: line.ProductSlug,
		})
	}

	order := orderRecord{
		ID:            uuid.NewString(),
		Date:          time.Now().Format(time.RFC3339),
		Status:        enums.OrderStatusPending.String(),
		Items:         items,
		Total:         money.Cents(totalCents).Float(),
		PaymentMethod: method.String(),
		Slug:          fmt.Sprintf("pedido-online-%s", uuid.NewString()[:8]),
		origin:        "online",
	}

	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	writeCreated(w, order)
}

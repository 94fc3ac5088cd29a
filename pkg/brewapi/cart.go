package brewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

type cartItemPayload struct {
	ID          flexID    `json:"id"`
	Product     flexID    `json:"produto"`
	ProductName string    `json:"produto_nome"`
	Quantity    int       `json:"quantidade"`
	UnitPrice   flexCents `json:"preco_unitario"`
	CompanyID   flexID    `json:"empresa_id"`
	Slug        string    `json:"slug"`
	ProductSlug string    `json:"produto_slug"`
}

type cartPayload struct {
	ID    flexID            `json:"id"`
	Slug  string            `json:"slug"`
	Items []cartItemPayload `json:"itens"`
}

func (p cartItemPayload) toCartItem() CartItem {
	return CartItem{
		ProductID:   p.Product.String(),
		Name:        p.ProductName,
		UnitPrice:   p.UnitPrice.Cents(),
		Quantity:    p.Quantity,
		ProductSlug: p.ProductSlug,
		Slug:        p.Slug,
		CompanyID:   p.CompanyID.String(),
	}
}

// Cart is the session cart snapshot: its slug plus its lines.
type Cart struct {
	Slug  string
	Items []CartItem
}

// GetCart fetches the session cart. The backend keeps one cart per
// session; an empty list means no cart exists yet.
func (c *Client) GetCart(ctx context.Context) (Cart, error) {
	var payload []cartPayload
	if err := c.do(ctx, http.MethodGet, "/carrinhos/", nil, &payload); err != nil {
		return Cart{}, err
	}
	if len(payload) == 0 {
		return Cart{}, nil
	}
	first := payload[0]
	items := make([]CartItem, 0, len(first.Items))
	for _, item := range first.Items {
		items = append(items, item.toCartItem())
	}
	return Cart{Slug: first.Slug, Items: items}, nil
}

// CreateCart provisions a cart for the current session.
func (c *Client) CreateCart(ctx context.Context) (Cart, error) {
	body := map[string]any{"slug": fmt.Sprintf("carrinho-%d", time.Now().UnixMilli())}
	var payload cartPayload
	if err := c.do(ctx, http.MethodPost, "/carrinhos/", body, &payload); err != nil {
		return Cart{}, err
	}
	return Cart{Slug: payload.Slug}, nil
}

// AddCartItem puts one unit of a product into the cart.
func (c *Client) AddCartItem(ctx context.Context, cartSlug, productID, productSlug, companyID string) error {
	if strings.TrimSpace(cartSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart slug is required")
	}
	body := map[string]any{
		"produto_id": productID,
		"slug":       productSlug,
		"quantidade": 1,
		"empresa_id": companyID,
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/carrinhos/%s/adicionar-item/", url.PathEscape(cartSlug)), body, nil)
}

// RemoveCartItem drops a cart line by its item slug.
func (c *Client) RemoveCartItem(ctx context.Context, cartSlug, itemSlug string) error {
	if strings.TrimSpace(cartSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart slug is required")
	}
	body := map[string]any{"item_slug": itemSlug}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/carrinhos/%s/remover-item/", url.PathEscape(cartSlug)), body, nil)
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, cartSlug, itemSlug string, quantity int) error {
	if strings.TrimSpace(cartSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart slug is required")
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	body := map[string]any{"item_slug": itemSlug, "quantidade": quantity}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/carrinhos/%s/atualizar-item/", url.PathEscape(cartSlug)), body, nil)
}

// ClearCart cancels the open cart order, dropping every line.
func (c *Client) ClearCart(ctx context.Context, cartSlug string) error {
	if strings.TrimSpace(cartSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart slug is required")
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/carrinhos/%s/cancelar-pedido/", url.PathEscape(cartSlug)), nil, nil)
}

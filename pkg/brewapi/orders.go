package brewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

type orderItemPayload struct {
	ID          flexID    `json:"id"`
	ProductID   flexID    `json:"produto_id"`
	ProductName string    `json:"produto_nome"`
	Quantity    int       `json:"quantidade"`
	UnitPrice   flexCents `json:"preco_unitario"`
	Slug        string    `json:"slug"`
	ProductSlug string    `json:"produto_slug"`
	CompanyID   flexID    `json:"empresa_id"`
}

type orderCustomerPayload struct {
	Name    string `json:"nome"`
	Phone   string `json:"telefone"`
	Address string `json:"endereco"`
}

type orderPayload struct {
	ID            flexID                `json:"id"`
	Date          string                `json:"data"`
	Status        string                `json:"status"`
	Items         []orderItemPayload    `json:"items"`
	Total         flexCents             `json:"total"`
	PaymentMethod string                `json:"metodo_pagamento"`
	Customer      *orderCustomerPayload `json:"cliente"`
	Slug          string                `json:"slug"`
}

func (p orderPayload) toOrder() Order {
	status, err := enums.ParseOrderStatus(p.Status)
	if err != nil {
		status = enums.OrderStatusPending
	}
	items := make([]OrderItem, 0, len(p.Items))
	for _, item := range p.Items {
		unit := item.UnitPrice.Cents()
		items = append(items, OrderItem{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			Name:        item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			Total:       unit.Mul(item.Quantity),
			Slug:        item.Slug,
			ProductSlug: item.ProductSlug,
			CompanyID:   item.CompanyID.String(),
		})
	}
	order := Order{
		ID:     p.ID.String(),
		Date:   p.Date,
		Status: status,
		Items:  items,
		Total:  p.Total.Cents(),
		Slug:   p.Slug,
	}
	if method, methodErr := enums.ParsePaymentMethod(p.PaymentMethod); methodErr == nil {
		order.PaymentMethod = method
	}
	if p.Customer != nil {
		order.Customer = &Customer{
			Name:    p.Customer.Name,
			Phone:   p.Customer.Phone,
			Address: p.Customer.Address,
		}
	}
	return order
}

// OrderOrigin filters order searches by sales channel.
type OrderOrigin string

const (
	OrderOriginPhysical OrderOrigin = "fisica"
	OrderOriginOnline   OrderOrigin = "online"
)

// ListOrders fetches all orders visible to the session.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var payload []orderPayload
	if err := c.do(ctx, http.MethodGet, "/pedidos/", nil, &payload); err != nil {
		return nil, err
	}
	return mapOrders(payload), nil
}

// SearchOrders filters orders by origin and/or mesa slug.
func (c *Client) SearchOrders(ctx context.Context, origin OrderOrigin, tableSlug string) ([]Order, error) {
	params := url.Values{}
	if origin != "" {
		params.Set("origem", string(origin))
	}
	if tableSlug != "" {
		params.Set("mesa_slug", tableSlug)
	}
	path := "/pedidos-search/"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var payload []orderPayload
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return mapOrders(payload), nil
}

// CreateOrderFromTable turns a mesa's open items into a pedido.
func (c *Client) CreateOrderFromTable(ctx context.Context, tableSlug, companyID string, method enums.PaymentMethod) (Order, error) {
	if strings.TrimSpace(tableSlug) == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "table slug is required")
	}
	if !method.IsValid() {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	body := map[string]any{
		"empresa_id":       companyID,
		"metodo_pagamento": method.String(),
	}
	var payload orderPayload
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/pedidos/mesa/%s/criar/", url.PathEscape(tableSlug)), body, &payload); err != nil {
		return Order{}, err
	}
	return payload.toOrder(), nil
}

// CreateOrderFromCart turns the session cart into a pedido.
func (c *Client) CreateOrderFromCart(ctx context.Context, cartSlug string, method enums.PaymentMethod, customer Customer) (Order, error) {
	if strings.TrimSpace(cartSlug) == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "cart slug is required")
	}
	if !method.IsValid() {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	body := map[string]any{
		"metodo_pagamento": method.String(),
		"cliente": map[string]any{
			"nome":     customer.Name,
			"telefone": customer.Phone,
			"endereco": customer.Address,
		},
	}
	var payload orderPayload
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/pedidos/carrinho/%s/criar/", url.PathEscape(cartSlug)), body, &payload); err != nil {
		return Order{}, err
	}
	return payload.toOrder(), nil
}

// UpdateOrderStatus moves a pedido to the given status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderSlug string, status enums.OrderStatus) error {
	if strings.TrimSpace(orderSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order slug is required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "order status is invalid")
	}
	body := map[string]any{"status": status.String()}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/pedidos/%s/atualizar-status/", url.PathEscape(orderSlug)), body, nil)
}

// RecordStockOutflow writes outbound ledger entries for sold items.
func (c *Client) RecordStockOutflow(ctx context.Context, items []OrderItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no items to record")
	}
	payload := make([]map[string]any, 0, len(items))
	for _, item := range items {
		payload = append(payload, map[string]any{
			"empresa":    item.CompanyID,
			"produto":    item.ProductID,
			"quantidade": item.Quantity,
			"tipo":       enums.MovementOut.String(),
		})
	}
	return c.do(ctx, http.MethodPost, "/estoques/", payload, nil)
}

func mapOrders(payload []orderPayload) []Order {
	orders := make([]Order, 0, len(payload))
	for _, p := range payload {
		orders = append(orders, p.toOrder())
	}
	return orders
}

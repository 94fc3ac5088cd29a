package brewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/money"
)

type tableItemPayload struct {
	ID          flexID    `json:"id"`
	ProductID   flexID    `json:"produto_id"`
	Quantity    int       `json:"quantidade"`
	UnitPrice   flexCents `json:"preco_unitario"`
	ProductName string    `json:"produto_nome"`
	ProductSlug string    `json:"produto_slug"`
	Slug        string    `json:"slug"`
}

type tablePayload struct {
	ID          flexID             `json:"id"`
	Company     flexID             `json:"empresa"`
	Number      string             `json:"numero"`
	Name        string             `json:"nome"`
	Status      string             `json:"status"`
	OrderNumber int                `json:"pedido"`
	Slug        string             `json:"slug"`
	NotNumeric  bool               `json:"not_numerico"`
	TotalPeople int                `json:"total_pessoas"`
	PeoplePaid  int                `json:"pessoas_pagaram"`
	AmountPaid  flexCents          `json:"valor_pago"`
	Items       []tableItemPayload `json:"items"`
}

func (p tablePayload) toTable() Table {
	status, err := enums.ParseTableStatus(p.Status)
	if err != nil {
		status = enums.TableStatusFree
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
		})
	}
	return Table{
		ID:          p.ID.String(),
		Name:        p.Name,
		Number:      p.Number,
		Slug:        p.Slug,
		Occupied:    status == enums.TableStatusOccupied,
		Status:      status,
		OrderNumber: p.OrderNumber,
		NotNumeric:  p.NotNumeric,
		TotalPeople: p.TotalPeople,
		PeoplePaid:  p.PeoplePaid,
		AmountPaid:  p.AmountPaid.Cents(),
		Items:       items,
	}
}

// TableInput carries the writable mesa fields.
type TableInput struct {
	Name       string `validate:"required"`
	Number     string
	CompanyID  string
	NotNumeric bool
}

// ListTables fetches every mesa.
func (c *Client) ListTables(ctx context.Context) ([]Table, error) {
	var payload []tablePayload
	if err := c.do(ctx, http.MethodGet, "/mesas/", nil, &payload); err != nil {
		return nil, err
	}
	tables := make([]Table, 0, len(payload))
	for _, p := range payload {
		tables = append(tables, p.toTable())
	}
	return tables, nil
}

// GetTable fetches one mesa by slug.
func (c *Client) GetTable(ctx context.Context, slug string) (Table, error) {
	if strings.TrimSpace(slug) == "" {
		return Table{}, pkgerrors.New(pkgerrors.CodeValidation, "table slug is required")
	}
	var payload tablePayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/mesas/%s/", url.PathEscape(slug)), nil, &payload); err != nil {
		return Table{}, err
	}
	return payload.toTable(), nil
}

// CreateTable registers a mesa.
func (c *Client) CreateTable(ctx context.Context, in TableInput) (Table, error) {
	body := map[string]any{
		"nome":         in.Name,
		"numero":       in.Number,
		"empresa":      in.CompanyID,
		"not_numerico": in.NotNumeric,
	}
	var payload tablePayload
	if err := c.do(ctx, http.MethodPost, "/mesas/", body, &payload); err != nil {
		return Table{}, err
	}
	return payload.toTable(), nil
}

// DeleteTable removes the mesa identified by slug.
func (c *Client) DeleteTable(ctx context.Context, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "table slug is required")
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/mesas/%s/", url.PathEscape(slug)), nil, nil)
}

// AddTableItem puts quantity units of a product onto the mesa's order.
func (c *Client) AddTableItem(ctx context.Context, tableSlug, productID, productSlug string, quantity int) error {
	if strings.TrimSpace(tableSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "table slug is required")
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	body := map[string]any{
		"produto_id":   productID,
		"quantidade":   quantity,
		"produto_slug": productSlug,
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/mesas/%s/adicionar-item/", url.PathEscape(tableSlug)), body, nil)
}

// RemoveTableItem drops a product line from the mesa's order.
func (c *Client) RemoveTableItem(ctx context.Context, tableSlug, productID string) error {
	if strings.TrimSpace(tableSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "table slug is required")
	}
	body := map[string]any{"produto_id": productID}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/mesas/%s/remover-item/", url.PathEscape(tableSlug)), body, nil)
}

// RecordTablePayment registers one paid share of the mesa's check, so
// the running split totals live on the backend rather than the POS.
func (c *Client) RecordTablePayment(ctx context.Context, tableSlug string, amount money.Cents, totalPeople int) error {
	if strings.TrimSpace(tableSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "table slug is required")
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	body := map[string]any{
		"valor":         amount.Float(),
		"total_pessoas": totalPeople,
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/mesas/%s/registrar-pagamento/", url.PathEscape(tableSlug)), body, nil)
}

// CancelTableOrder clears every line of the mesa's open order.
func (c *Client) CancelTableOrder(ctx context.Context, tableSlug string) error {
	if strings.TrimSpace(tableSlug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "table slug is required")
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/mesas/%s/cancelar-pedido/", url.PathEscape(tableSlug)), nil, nil)
}

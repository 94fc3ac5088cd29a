package brewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/money"
)

type productPayload struct {
	ID          flexID    `json:"id"`
	Name        string    `json:"nome"`
	Description string    `json:"descricao"`
	Cost        flexCents `json:"custo"`
	Price       flexCents `json:"venda"`
	Code        string    `json:"codigo"`
	Stock       flexInt   `json:"estoque"`
	Company     flexID    `json:"empresa"`
	Category    string    `json:"categoria"`
	Image       string    `json:"imagem"`
	Slug        string    `json:"slug"`
	Available   bool      `json:"is_available"`
}

func (p productPayload) toProduct() Product {
	return Product{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Code:        p.Code,
		Cost:        p.Cost.Cents(),
		Price:       p.Price.Cents(),
		Stock:       p.Stock.Int(),
		Category:    p.Category,
		CompanyID:   p.Company.String(),
		Image:       p.Image,
		Slug:        p.Slug,
		Available:   p.Available,
	}
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string `validate:"required"`
	Description string
	Cost        money.Cents `validate:"gte=0"`
	Price       money.Cents `validate:"gte=0"`
	Code        string
	Stock       int `validate:"gte=0"`
	CompanyID   string
	Category    string
	Image       string
	Available   bool
}

func (in ProductInput) payload() map[string]any {
	return map[string]any{
		"nome":         in.Name,
		"descricao":    in.Description,
		"custo":        in.Cost.Float(),
		"venda":        in.Price.Float(),
		"codigo":       in.Code,
		"estoque":      in.Stock,
		"empresa":      in.CompanyID,
		"categoria":    in.Category,
		"imagem":       in.Image,
		"is_available": in.Available,
	}
}

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var payload []productPayload
	if err := c.do(ctx, http.MethodGet, "/produtos/", nil, &payload); err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, p.toProduct())
	}
	return products, nil
}

// GetProduct fetches one product by slug.
func (c *Client) GetProduct(ctx context.Context, slug string) (Product, error) {
	if strings.TrimSpace(slug) == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	var payload productPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/produtos/%s/", url.PathEscape(slug)), nil, &payload); err != nil {
		return Product{}, err
	}
	return payload.toProduct(), nil
}

// GetProductByID fetches one product by its numeric backend id.
func (c *Client) GetProductByID(ctx context.Context, id string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var payload productPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/produtos/id/%s/", url.PathEscape(id)), nil, &payload); err != nil {
		return Product{}, err
	}
	return payload.toProduct(), nil
}

// CreateProduct registers a new catalog product.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var payload productPayload
	if err := c.do(ctx, http.MethodPost, "/produtos/", in.payload(), &payload); err != nil {
		return Product{}, err
	}
	return payload.toProduct(), nil
}

// UpdateProduct replaces the product identified by slug.
func (c *Client) UpdateProduct(ctx context.Context, slug string, in ProductInput) (Product, error) {
	if strings.TrimSpace(slug) == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	var payload productPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/produtos/%s/", url.PathEscape(slug)), in.payload(), &payload); err != nil {
		return Product{}, err
	}
	return payload.toProduct(), nil
}

// DeleteProduct removes the product identified by slug.
func (c *Client) DeleteProduct(ctx context.Context, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/produtos/%s/", url.PathEscape(slug)), nil, nil)
}

// IncrementStock returns quantity units of the product to stock.
func (c *Client) IncrementStock(ctx context.Context, slug string, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	body := map[string]any{"quantidade": quantity}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/produtos/%s/incrementar-estoque/", url.PathEscape(slug)), body, nil)
}

// DecrementStock draws quantity units of the product from stock.
func (c *Client) DecrementStock(ctx context.Context, slug string, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	body := map[string]any{"quantidade": quantity}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/produtos/%s/decrementar-estoque/", url.PathEscape(slug)), body, nil)
}

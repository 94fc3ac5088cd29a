package brewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

type categoryPayload struct {
	ID          flexID `json:"id"`
	Name        string `json:"nome"`
	Description string `json:"descricao"`
	Slug        string `json:"slug"`
}

func (p categoryPayload) toCategory() Category {
	return Category{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Slug:        p.Slug,
	}
}

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string `validate:"required"`
	Description string
}

// ListCategories fetches all product categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var payload []categoryPayload
	if err := c.do(ctx, http.MethodGet, "/categorias/", nil, &payload); err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(payload))
	for _, p := range payload {
		categories = append(categories, p.toCategory())
	}
	return categories, nil
}

// CreateCategory registers a new category.
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	body := map[string]any{"nome": in.Name, "descricao": in.Description}
	var payload categoryPayload
	if err := c.do(ctx, http.MethodPost, "/categorias/", body, &payload); err != nil {
		return Category{}, err
	}
	return payload.toCategory(), nil
}

// UpdateCategory renames the category identified by slug.
func (c *Client) UpdateCategory(ctx context.Context, slug string, in CategoryInput) (Category, error) {
	if strings.TrimSpace(slug) == "" {
		return Category{}, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}
	body := map[string]any{"nome": in.Name, "descricao": in.Description}
	var payload categoryPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/categorias/%s/", url.PathEscape(slug)), body, &payload); err != nil {
		return Category{}, err
	}
	return payload.toCategory(), nil
}

// DeleteCategory removes the category identified by slug.
func (c *Client) DeleteCategory(ctx context.Context, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/categorias/%s/", url.PathEscape(slug)), nil, nil)
}

package brewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

type favoritePayload struct {
	Product     flexID    `json:"produto"`
	ProductName string    `json:"produto_nome"`
	Price       flexCents `json:"produto_preco"`
	Image       string    `json:"imagem"`
	Description string    `json:"descricao"`
}

// ListFavorites fetches the authenticated user's favorite products.
func (c *Client) ListFavorites(ctx context.Context) ([]FavoriteProduct, error) {
	var payload []favoritePayload
	if err := c.do(ctx, http.MethodGet, "/favoritos/", nil, &payload); err != nil {
		return nil, err
	}
	favorites := make([]FavoriteProduct, 0, len(payload))
	for _, p := range payload {
		favorites = append(favorites, FavoriteProduct{
			ID:          p.Product.String(),
			Name:        p.ProductName,
			Price:       p.Price.Cents(),
			Image:       p.Image,
			Description: p.Description,
		})
	}
	return favorites, nil
}

// AddFavorite marks a product as favorite. The backend treats repeats
// as a no-op, keeping the collection a set.
func (c *Client) AddFavorite(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	body := map[string]any{"produto_id": productID}
	return c.do(ctx, http.MethodPost, "/favoritos/adicionar/", body, nil)
}

// RemoveFavorite unmarks a product.
func (c *Client) RemoveFavorite(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/favoritos/remover/%s/", url.PathEscape(productID)), nil, nil)
}

package brewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

type reviewPayload struct {
	ID       flexID `json:"id"`
	Product  flexID `json:"produto"`
	User     flexID `json:"usuario"`
	UserName string `json:"usuario_nome"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comentario"`
	Date     string `json:"data"`
	Slug     string `json:"slug"`
}

func (p reviewPayload) toReview() Review {
	return Review{
		ID:        p.ID.String(),
		ProductID: p.Product.String(),
		UserID:    p.User.String(),
		UserName:  p.UserName,
		Rating:    p.Rating,
		Comment:   p.Comment,
		Date:      p.Date,
		Slug:      p.Slug,
	}
}

// ListProductReviews fetches every review of one product.
func (c *Client) ListProductReviews(ctx context.Context, productID string) ([]Review, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var payload []reviewPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/avaliacoes/produto/%s/", url.PathEscape(productID)), nil, &payload); err != nil {
		return nil, err
	}
	return mapReviews(payload), nil
}

// ListUserReviews fetches the authenticated user's reviews.
func (c *Client) ListUserReviews(ctx context.Context) ([]Review, error) {
	var payload []reviewPayload
	if err := c.do(ctx, http.MethodGet, "/avaliacoes/usuario/", nil, &payload); err != nil {
		return nil, err
	}
	return mapReviews(payload), nil
}

// CreateReview submits a review. The backend upserts per
// (user, product), so repeated calls replace the earlier review.
func (c *Client) CreateReview(ctx context.Context, productID string, rating int, comment string) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	body := map[string]any{
		"produto_id": productID,
		"rating":     rating,
		"comentario": comment,
	}
	return c.do(ctx, http.MethodPost, "/avaliacoes/criar/", body, nil)
}

// UpdateReview edits an existing review by slug.
func (c *Client) UpdateReview(ctx context.Context, slug string, rating int, comment string) error {
	if strings.TrimSpace(slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "review slug is required")
	}
	body := map[string]any{"rating": rating, "comentario": comment}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/avaliacoes/editar/%s/", url.PathEscape(slug)), body, nil)
}

// DeleteReview removes a review by slug.
func (c *Client) DeleteReview(ctx context.Context, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "review slug is required")
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/avaliacoes/remover/%s/", url.PathEscape(slug)), nil, nil)
}

// AverageRating fetches the mean rating of a product.
func (c *Client) AverageRating(ctx context.Context, productID string) (float64, error) {
	if strings.TrimSpace(productID) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var payload struct {
		Average float64 `json:"media"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/avaliacoes/media/%s/", url.PathEscape(productID)), nil, &payload); err != nil {
		return 0, err
	}
	return payload.Average, nil
}

func mapReviews(payload []reviewPayload) []Review {
	reviews := make([]Review, 0, len(payload))
	for _, p := range payload {
		reviews = append(reviews, p.toReview())
	}
	return reviews
}

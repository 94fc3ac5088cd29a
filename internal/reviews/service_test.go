package reviews

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mvgarcia/taproom/pkg/brewapi"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

// stubBackend upserts reviews per product the way the real backend
// does: one review per user, keyed here by a fixed test user.
type stubBackend struct {
	byProduct map[string][]brewapi.Review
	creates   int
}

func newStubBackend() *stubBackend {
	return &stubBackend{byProduct: make(map[string][]brewapi.Review)}
}

func (s *stubBackend) ListProductReviews(_ context.Context, productID string) ([]brewapi.Review, error) {
	out := make([]brewapi.Review, len(s.byProduct[productID]))
	copy(out, s.byProduct[productID])
	return out, nil
}

func (s *stubBackend) ListUserReviews(context.Context) ([]brewapi.Review, error) {
	var mine []brewapi.Review
	for _, reviews := range s.byProduct {
		for _, r := range reviews {
			if r.UserID == "test-user" {
				mine = append(mine, r)
			}
		}
	}
	return mine, nil
}

func (s *stubBackend) CreateReview(_ context.Context, productID string, rating int, comment string) error {
	s.creates++
	for i, r := range s.byProduct[productID] {
		if r.UserID == "test-user" {
			s.byProduct[productID][i].Rating = rating
			s.byProduct[productID][i].Comment = comment
			return nil
		}
	}
	s.byProduct[productID] = append(s.byProduct[productID], brewapi.Review{
		ProductID: productID,
		UserID:    "test-user",
		Rating:    rating,
		Comment:   comment,
		Slug:      fmt.Sprintf("review-%s", productID),
	})
	return nil
}

func (s *stubBackend) DeleteReview(_ context.Context, slug string) error {
	for productID, reviews := range s.byProduct {
		for i, r := range reviews {
			if r.Slug == slug {
				s.byProduct[productID] = append(reviews[:i], reviews[i+1:]...)
				return nil
			}
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
}

func (s *stubBackend) AverageRating(_ context.Context, productID string) (float64, error) {
	reviews := s.byProduct[productID]
	if len(reviews) == 0 {
		return 0, nil
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), nil
}

func newTestService(t *testing.T, backend Backend) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{Backend: backend, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return service
}

func TestSubmitTwiceKeepsSingleReview(t *testing.T) {
	backend := newStubBackend()
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Submit(ctx, ReviewInput{ProductID: "7", Rating: 4, Comment: "boa"}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if err := service.Submit(ctx, ReviewInput{ProductID: "7", Rating: 5, Comment: "excelente"}); err != nil {
		t.Fatalf("unexpected second submit error: %v", err)
	}

	reviews := service.ForProduct("7")
	if len(reviews) != 1 {
		t.Fatalf("expected one review after resubmit, got %d", len(reviews))
	}
	if reviews[0].Rating != 5 || reviews[0].Comment != "excelente" {
		t.Fatalf("expected updated review, got %+v", reviews[0])
	}
}

func TestSubmitValidatesRating(t *testing.T) {
	service := newTestService(t, newStubBackend())
	cases := []int{0, -1, 6}
	for _, rating := range cases {
		err := service.Submit(context.Background(), ReviewInput{ProductID: "7", Rating: rating})
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for rating %d, got %v", rating, err)
		}
	}
}

func TestRemoveReconcilesMirror(t *testing.T) {
	backend := newStubBackend()
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Submit(ctx, ReviewInput{ProductID: "7", Rating: 3}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	reviews := service.ForProduct("7")
	if err := service.Remove(ctx, "7", reviews[0].Slug); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if got := len(service.ForProduct("7")); got != 0 {
		t.Fatalf("expected no reviews after removal, got %d", got)
	}
}

func TestAverageDelegatesToBackend(t *testing.T) {
	backend := newStubBackend()
	service := newTestService(t, backend)
	ctx := context.Background()

	if err := service.Submit(ctx, ReviewInput{ProductID: "7", Rating: 4}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	avg, err := service.Average(ctx, "7")
	if err != nil {
		t.Fatalf("unexpected average error: %v", err)
	}
	if avg != 4 {
		t.Fatalf("expected average 4, got %f", avg)
	}
}

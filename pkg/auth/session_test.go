package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mvgarcia/taproom/pkg/brewapi"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func newTestSession(t *testing.T, store TokenStore) *Session {
	t.Helper()
	session, err := NewSession(SessionParams{Store: store, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error building session: %v", err)
	}
	return session
}

func TestSessionLoginCachesTokenAndUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 3, "name": "Barkeep", "user_type": "physical", "slug": "barkeep", "token": "tok-1"}`))
	}))
	defer server.Close()

	session := newTestSession(t, nil)
	api, err := brewapi.New(server.URL, brewapi.WithTokenSource(session))
	if err != nil {
		t.Fatalf("unexpected error building client: %v", err)
	}
	session.Bind(api)

	user, err := session.Login(context.Background(), "bar@taproom.dev", "s3cret")
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if user.Name != "Barkeep" {
		t.Fatalf("expected user snapshot, got %+v", user)
	}
	token, err := session.Token(context.Background())
	if err != nil || token != "tok-1" {
		t.Fatalf("expected cached token tok-1, got %q (err %v)", token, err)
	}
	if cached, ok := session.User(); !ok || cached.ID != "3" {
		t.Fatalf("expected cached user, got %+v ok=%v", cached, ok)
	}
}

func TestSessionTokenFallsBackToStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "token"))
	if err != nil {
		t.Fatalf("unexpected error building store: %v", err)
	}
	if err := store.Save(context.Background(), "persisted-token"); err != nil {
		t.Fatalf("unexpected error saving token: %v", err)
	}

	session := newTestSession(t, store)
	token, err := session.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected token error: %v", err)
	}
	if token != "persisted-token" {
		t.Fatalf("expected persisted token, got %q", token)
	}
}

func TestSessionIgnoresExpiredJWT(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("unexpected error signing token: %v", err)
	}

	store, err := NewFileStore(filepath.Join(t.TempDir(), "token"))
	if err != nil {
		t.Fatalf("unexpected error building store: %v", err)
	}
	if err := store.Save(context.Background(), signed); err != nil {
		t.Fatalf("unexpected error saving token: %v", err)
	}

	session := newTestSession(t, store)
	token, err := session.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected token error: %v", err)
	}
	if token != "" {
		t.Fatalf("expected expired token to be dropped, got %q", token)
	}
}

func TestSessionTokenRederivesFromBackend(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("unexpected error signing token: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-user-token/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		// The stale token still rides along so the backend can judge it.
		if got := r.Header.Get("Authorization"); got != "Bearer "+signed {
			t.Fatalf("expected stale token on the wire, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 3, "name": "Barkeep", "user_type": "physical", "slug": "barkeep", "token": "fresh-tok"}`))
	}))
	defer server.Close()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "token"))
	if err != nil {
		t.Fatalf("unexpected error building store: %v", err)
	}
	if err := store.Save(context.Background(), signed); err != nil {
		t.Fatalf("unexpected error saving token: %v", err)
	}

	session := newTestSession(t, store)
	api, err := brewapi.New(server.URL, brewapi.WithTokenSource(session))
	if err != nil {
		t.Fatalf("unexpected error building client: %v", err)
	}
	session.Bind(api)

	token, err := session.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected token error: %v", err)
	}
	if token != "fresh-tok" {
		t.Fatalf("expected re-derived token, got %q", token)
	}
	persisted, err := store.Load(context.Background())
	if err != nil || persisted != "fresh-tok" {
		t.Fatalf("expected re-derived token persisted, got %q (err %v)", persisted, err)
	}
}

func TestSessionUnauthorizedHookClearsEverywhere(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "token"))
	if err != nil {
		t.Fatalf("unexpected error building store: %v", err)
	}

	session := newTestSession(t, store)
	if err := session.SetToken(context.Background(), "stale"); err != nil {
		t.Fatalf("unexpected error seeding token: %v", err)
	}

	session.HandleUnauthorized(context.Background())

	token, err := session.Token(context.Background())
	if err != nil || token != "" {
		t.Fatalf("expected cleared token, got %q (err %v)", token, err)
	}
	persisted, err := store.Load(context.Background())
	if err != nil || persisted != "" {
		t.Fatalf("expected cleared store, got %q (err %v)", persisted, err)
	}
}

func TestSessionLoginWithoutClient(t *testing.T) {
	session := newTestSession(t, nil)
	if _, err := session.Login(context.Background(), "a@b.c", "pw"); !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

// Package auth caches the backend session token and keeps it off the
// global scope; every component that needs credentials receives the
// session explicitly.
package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mvgarcia/taproom/pkg/brewapi"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
)

// SessionParams wires the session dependencies.
type SessionParams struct {
	Store  TokenStore
	Logger *logger.Logger
}

// Session holds the bearer token and the logged-in user snapshot. It
// implements brewapi.TokenSource, so the HTTP client pulls credentials
// from here on every call.
type Session struct {
	mu         sync.RWMutex
	token      string
	user       brewapi.User
	store      TokenStore
	api        *brewapi.Client
	logger     *logger.Logger
	rederiving atomic.Bool
}

// NewSession builds a session cache. Store may be nil, in which case
// the token lives only in process memory.
func NewSession(params SessionParams) (*Session, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Session{store: params.Store, logger: params.Logger}, nil
}

// Bind attaches the backend client used for login and logout calls.
// The client is constructed after the session because it needs the
// session as its token source.
func (s *Session) Bind(api *brewapi.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = api
}

// Token returns the cached bearer token, falling back to the persisted
// copy and then to the backend's session endpoint. An empty token with
// a nil error means anonymous: the transport simply omits the
// credential and the backend decides what that means.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token != "" && !tokenExpired(token) {
		return token, nil
	}

	var stored string
	if s.store != nil {
		loaded, err := s.store.Load(ctx)
		if err != nil {
			return "", err
		}
		stored = loaded
	}
	if stored != "" && !tokenExpired(stored) {
		s.mu.Lock()
		s.token = stored
		s.mu.Unlock()
		return stored, nil
	}
	if stored == "" {
		stored = token
	}
	return s.rederiveToken(ctx, stored)
}

// rederiveToken asks the backend what token the session currently has
// when neither cache holds a usable one. That request goes through the
// same client this source feeds, so while it is in flight the source
// hands the candidate token straight through instead of recursing; the
// backend is the authority on whether the candidate still works.
func (s *Session) rederiveToken(ctx context.Context, candidate string) (string, error) {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()
	if api == nil || candidate == "" {
		return "", nil
	}
	if !s.rederiving.CompareAndSwap(false, true) {
		return candidate, nil
	}
	defer s.rederiving.Store(false)

	user, err := api.CurrentUser(ctx)
	if err != nil || user.Token == "" || tokenExpired(user.Token) {
		return "", nil
	}

	s.mu.Lock()
	s.token = user.Token
	if user.ID != "" {
		s.user = user
	}
	s.mu.Unlock()
	if s.store != nil {
		if saveErr := s.store.Save(ctx, user.Token); saveErr != nil {
			s.logger.Warn(ctx, "failed to persist re-derived session token")
		}
	}
	return user.Token, nil
}

// Authenticated reports whether a usable token is cached.
func (s *Session) Authenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// User returns the logged-in user snapshot, if any.
func (s *Session) User() (brewapi.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user.ID != ""
}

// SetToken seeds the session with an externally obtained token.
func (s *Session) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if s.store != nil {
		return s.store.Save(ctx, token)
	}
	return nil
}

// Login authenticates against the backend and caches the resulting
// token and user snapshot.
func (s *Session) Login(ctx context.Context, email, password string) (brewapi.User, error) {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()
	if api == nil {
		return brewapi.User{}, pkgerrors.New(pkgerrors.CodeInternal, "session has no backend client bound")
	}

	user, err := api.Login(ctx, email, password)
	if err != nil {
		return brewapi.User{}, err
	}

	s.mu.Lock()
	s.token = user.Token
	s.user = user
	s.mu.Unlock()

	if s.store != nil {
		if saveErr := s.store.Save(ctx, user.Token); saveErr != nil {
			// The live session still works; the token just will not
			// survive a restart.
			s.logger.Warn(s.logger.WithUserID(ctx, user.ID), "failed to persist session token")
		}
	}
	s.logger.Info(s.logger.WithUserID(ctx, user.ID), "session established")
	return user, nil
}

// Register creates an account and, when the backend answers with a
// token, establishes the session in the same call.
func (s *Session) Register(ctx context.Context, name, email, password string, userType enums.UserType) (brewapi.User, error) {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()
	if api == nil {
		return brewapi.User{}, pkgerrors.New(pkgerrors.CodeInternal, "session has no backend client bound")
	}

	user, err := api.Register(ctx, name, email, password, userType)
	if err != nil {
		return brewapi.User{}, err
	}
	if user.Token != "" {
		s.mu.Lock()
		s.token = user.Token
		s.user = user
		s.mu.Unlock()
		if s.store != nil {
			_ = s.store.Save(ctx, user.Token)
		}
	}
	return user, nil
}

// Logout invalidates the backend session and drops every cached copy
// of the token. The local caches are cleared even when the backend
// call fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()

	var apiErr error
	if api != nil {
		apiErr = api.Logout(ctx)
	}
	s.clear(ctx)
	return apiErr
}

// HandleUnauthorized is wired as the client's 401 hook: the backend
// declared the token dead, so drop it everywhere.
func (s *Session) HandleUnauthorized(ctx context.Context) {
	s.logger.Warn(ctx, "backend rejected session token, clearing cached credentials")
	s.clear(ctx)
}

func (s *Session) clear(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = brewapi.User{}
	s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			s.logger.Warn(ctx, "failed to clear persisted session token")
		}
	}
}

// tokenExpired inspects JWT-shaped tokens for a past exp claim. Opaque
// tokens are assumed valid until the backend says otherwise.
func tokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

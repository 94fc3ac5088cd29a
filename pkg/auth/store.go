package auth

import (
	"context"
	"errors"
	"os"
	"strings"

	stdredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/redis"
)

// TokenStore mirrors the bearer token outside process memory so a
// terminal restart does not force a fresh login.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// FileStore keeps the token in a mode-0600 file next to the terminal.
type FileStore struct {
	path string
}

// NewFileStore builds a file-backed token store.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token path is required")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context) (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read token file")
	}
	return strings.TrimSpace(string(raw)), nil
}

func (s *FileStore) Save(_ context.Context, token string) error {
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write token file")
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove token file")
	}
	return nil
}

// RedisStore shares the token across terminals of one venue.
type RedisStore struct {
	client     *redis.Client
	terminalID string
}

// NewRedisStore builds a redis-backed token store keyed by terminal.
func NewRedisStore(client *redis.Client, terminalID string) (*RedisStore, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redis client is required")
	}
	if strings.TrimSpace(terminalID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terminal id is required")
	}
	return &RedisStore{client: client, terminalID: terminalID}, nil
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.client.SessionTokenKey(s.terminalID))
	if err != nil {
		if errors.Is(err, stdredis.Nil) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session token")
	}
	return token, nil
}

func (s *RedisStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.client.SessionTokenKey(s.terminalID), token, 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session token")
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.client.SessionTokenKey(s.terminalID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session token")
	}
	return nil
}

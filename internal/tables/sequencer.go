package tables

import (
	"context"
	"time"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/redis"
)

// DayKey formats the date key the daily order sequence is scoped to.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Sequencer issues daily order numbers. Numbers restart at 1 each day
// and must never repeat within one; the issuing store is the single
// point that increments, so two terminals can never draw the same
// number.
type Sequencer interface {
	Next(ctx context.Context, day string) (int, error)
}

const sequenceName = "orders"

// Keys linger for two days so a sequence survives until its day is over
// in every timezone the venue cares about.
const sequenceTTL = 48 * time.Hour

// RedisSequencer issues numbers from an atomic date-keyed counter.
type RedisSequencer struct {
	client *redis.Client
}

// NewRedisSequencer builds a redis-backed sequencer.
func NewRedisSequencer(client *redis.Client) (*RedisSequencer, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redis client is required")
	}
	return &RedisSequencer{client: client}, nil
}

func (s *RedisSequencer) Next(ctx context.Context, day string) (int, error) {
	if day == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "day is required")
	}
	n, err := s.client.IncrWithTTL(ctx, s.client.SequenceKey(sequenceName, day), sequenceTTL)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment order sequence")
	}
	return int(n), nil
}

// CounterStore is the persistent fallback counter, implemented by the
// local store.
type CounterStore interface {
	NextOrderNumber(ctx context.Context, day string) (int, error)
}

// LocalSequencer issues numbers from the local store's counter row.
type LocalSequencer struct {
	store CounterStore
}

// NewLocalSequencer builds a store-backed sequencer.
func NewLocalSequencer(store CounterStore) (*LocalSequencer, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counter store is required")
	}
	return &LocalSequencer{store: store}, nil
}

func (s *LocalSequencer) Next(ctx context.Context, day string) (int, error) {
	if day == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "day is required")
	}
	return s.store.NextOrderNumber(ctx, day)
}

// FallbackSequencer draws from the primary and falls back to the
// secondary when the primary is unreachable.
type FallbackSequencer struct {
	primary   Sequencer
	secondary Sequencer
	logger    *logger.Logger
}

// NewFallbackSequencer chains two sequencers.
func NewFallbackSequencer(primary, secondary Sequencer, logg *logger.Logger) (*FallbackSequencer, error) {
	if primary == nil || secondary == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both sequencers are required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &FallbackSequencer{primary: primary, secondary: secondary, logger: logg}, nil
}

func (s *FallbackSequencer) Next(ctx context.Context, day string) (int, error) {
	n, err := s.primary.Next(ctx, day)
	if err == nil {
		return n, nil
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		return 0, err
	}
	s.logger.Warn(ctx, "primary sequencer unavailable, using local counter")
	return s.secondary.Next(ctx, day)
}

package oracle

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/nao1215/kakusu/internal/model"
	"golang.org/x/crypto/sha3"
)

// VerdictStore persists lookup results. database.Store implements it.
type VerdictStore interface {
	// CachedVerdicts returns the verdicts stored under key if they are not
	// older than maxAge. ok is false on a miss.
	CachedVerdicts(ctx context.Context, key string, maxAge time.Duration) (v model.Verdicts, ok bool, err error)
	// StoreVerdicts saves v under key.
	StoreVerdicts(ctx context.Context, key string, oracle model.OracleID, q model.Query, v model.Verdicts) error
}

// CacheKey returns the cache key of a lookup: the hex SHA3-256 of the oracle
// ID and the query fields.
func CacheKey(oracle model.OracleID, q model.Query) string {
	sum := sha3.Sum256([]byte(strings.Join([]string{
		string(oracle), q.Surname, q.GivenName, string(q.Gender),
	}, "\x00")))
	return hex.EncodeToString(sum[:])
}

type cached struct {
	source Source
	store  VerdictStore
	ttl    time.Duration
	settings
}

// Cached puts store in front of source. A store error is logged and treated
// as a miss; only successful, non-empty lookups are written back.
func Cached(source Source, store VerdictStore, ttl time.Duration, opts ...Option) Source {
	return &cached{source: source, store: store, ttl: ttl, settings: newSettings(opts)}
}

func (c *cached) ID() model.OracleID {
	return c.source.ID()
}

func (c *cached) Lookup(ctx context.Context, q model.Query) (model.Verdicts, error) {
	key := CacheKey(c.source.ID(), q)

	v, ok, err := c.store.CachedVerdicts(ctx, key, c.ttl)
	if err != nil {
		c.logger.Warn("failed to read verdict cache", "oracle", c.source.ID(), "error", err)
	}
	c.observer.ObserveCache(c.source.ID(), ok)
	if ok {
		return v, nil
	}

	v, err = c.source.Lookup(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(v) > 0 {
		if err := c.store.StoreVerdicts(ctx, key, c.source.ID(), q, v); err != nil {
			c.logger.Warn("failed to write verdict cache", "oracle", c.source.ID(), "error", err)
		}
	}
	return v, nil
}

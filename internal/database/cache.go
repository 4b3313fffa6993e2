package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/countries/internal/core"
	"github.com/JonMunkholm/countries/internal/metrics"
)

const (
	cacheKeyPrefix = "countries:"
	genKeyPrefix   = cacheKeyPrefix + "gen:"
)

// errStaleLoad aborts a cache refill whose load raced with an invalidation.
var errStaleLoad = errors.New("cache generation changed during load")

// CachedRepository is a read-through Redis cache in front of another
// Repository. Only select-by-code results are cached; listings and existence
// checks always reach the backing store so uniqueness decisions never rely on
// cached data. Redis failures are logged and bypassed.
//
// Every cache key has a generation counter that invalidation increments. A
// miss records the generation before loading and refills only if it is
// unchanged, so a load that overlapped an update or delete is never cached.
type CachedRepository struct {
	next    core.Repository
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	// pending collects keys to drop once the surrounding transaction commits.
	// nil outside a transaction.
	pending *[]string
}

// CacheOption configures a CachedRepository.
type CacheOption func(*CachedRepository)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedRepository) {
		c.logger = logger
	}
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *CachedRepository) {
		c.metrics = m
	}
}

// NewCachedRepository wraps next with a cache stored in client.
func NewCachedRepository(next core.Repository, client *redis.Client, ttl time.Duration, opts ...CacheOption) *CachedRepository {
	c := &CachedRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(kind core.CodeKind, code string) string {
	return cacheKeyPrefix + kind.String() + ":" + code
}

func genKey(key string) string {
	return genKeyPrefix + strings.TrimPrefix(key, cacheKeyPrefix)
}

func countryKeys(c core.Country) []string {
	return []string{
		cacheKey(core.KindAlpha2, c.IsoAlpha2),
		cacheKey(core.KindAlpha3, c.IsoAlpha3),
		cacheKey(core.KindNumeric, c.IsoNumeric),
	}
}

// InTx delegates to the backing store's transaction when it has one. Inside
// the transaction reads bypass the cache and invalidations wait for commit.
func (c *CachedRepository) InTx(ctx context.Context, fn func(ctx context.Context, repo core.Repository) error) error {
	if c.pending != nil {
		return fn(ctx, c)
	}

	var keys []string
	run := func(ctx context.Context, repo core.Repository) error {
		scoped := *c
		scoped.next = repo
		scoped.pending = &keys
		return fn(ctx, &scoped)
	}

	var err error
	if tx, ok := c.next.(core.Transactor); ok {
		err = tx.InTx(ctx, run)
	} else {
		err = run(ctx, c.next)
	}
	if err != nil {
		return err
	}
	c.invalidate(ctx, keys...)
	return nil
}

func (c *CachedRepository) SelectAll(ctx context.Context) ([]core.Country, error) {
	return c.next.SelectAll(ctx)
}

func (c *CachedRepository) SelectByAlpha2(ctx context.Context, alpha2 string) (*core.Country, error) {
	return c.selectCached(ctx, core.KindAlpha2, alpha2, c.next.SelectByAlpha2)
}

func (c *CachedRepository) SelectByAlpha3(ctx context.Context, alpha3 string) (*core.Country, error) {
	return c.selectCached(ctx, core.KindAlpha3, alpha3, c.next.SelectByAlpha3)
}

func (c *CachedRepository) SelectByNumeric(ctx context.Context, numeric string) (*core.Country, error) {
	return c.selectCached(ctx, core.KindNumeric, numeric, c.next.SelectByNumeric)
}

func (c *CachedRepository) selectCached(
	ctx context.Context,
	kind core.CodeKind,
	code string,
	load func(context.Context, string) (*core.Country, error),
) (*core.Country, error) {
	if c.pending != nil {
		return load(ctx, code)
	}

	key := cacheKey(kind, code)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var country core.Country
		if jsonErr := json.Unmarshal(raw, &country); jsonErr == nil {
			c.metrics.IncrementCache("hit")
			return &country, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt cache entry", "key", key)
		c.metrics.IncrementCache("error")
	case errors.Is(err, redis.Nil):
		c.metrics.IncrementCache("miss")
	default:
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		c.metrics.IncrementCache("error")
	}

	gen, genErr := c.client.Get(ctx, genKey(key)).Result()
	canRefill := genErr == nil || errors.Is(genErr, redis.Nil)
	if !canRefill {
		c.logger.WarnContext(ctx, "cache generation read failed", "key", key, "error", genErr)
	}

	country, err := load(ctx, code)
	if err != nil {
		return nil, err
	}
	if canRefill {
		c.store(ctx, key, gen, *country)
	}
	return country, nil
}

// store caches country under all three of its codes, provided the generation
// of key still equals gen. WATCH makes an invalidation that lands between the
// check and the write abort the write.
func (c *CachedRepository) store(ctx context.Context, key, gen string, country core.Country) {
	raw, err := json.Marshal(country)
	if err != nil {
		return
	}

	watched := genKey(key)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, watched).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, k := range countryKeys(country) {
				pipe.Set(ctx, k, raw, c.ttl)
			}
			return nil
		})
		return err
	}, watched)

	switch {
	case err == nil:
	case errors.Is(err, errStaleLoad), errors.Is(err, redis.TxFailedErr):
		c.logger.DebugContext(ctx, "skipped stale cache refill", "key", key)
	default:
		c.logger.WarnContext(ctx, "cache write failed", "code", country.IsoAlpha2, "error", err)
	}
}

func (c *CachedRepository) invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if c.pending != nil {
		*c.pending = append(*c.pending, keys...)
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, genKey(key))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}

func (c *CachedRepository) ExistsByAlpha2(ctx context.Context, alpha2 string) (bool, error) {
	return c.next.ExistsByAlpha2(ctx, alpha2)
}

func (c *CachedRepository) ExistsByAlpha3(ctx context.Context, alpha3 string) (bool, error) {
	return c.next.ExistsByAlpha3(ctx, alpha3)
}

func (c *CachedRepository) ExistsByNumeric(ctx context.Context, numeric string) (bool, error) {
	return c.next.ExistsByNumeric(ctx, numeric)
}

func (c *CachedRepository) ExistsByName(ctx context.Context, shortName, fullName string) (bool, error) {
	return c.next.ExistsByName(ctx, shortName, fullName)
}

func (c *CachedRepository) ExistsByNameExcept(ctx context.Context, shortName, fullName, exceptAlpha2 string) (bool, error) {
	return c.next.ExistsByNameExcept(ctx, shortName, fullName, exceptAlpha2)
}

func (c *CachedRepository) ExistsByAnyCode(ctx context.Context, code string) (bool, error) {
	return c.next.ExistsByAnyCode(ctx, code)
}

func (c *CachedRepository) Save(ctx context.Context, country core.Country) error {
	return c.next.Save(ctx, country)
}

func (c *CachedRepository) Update(ctx context.Context, code string, country core.Country) error {
	if err := c.next.Update(ctx, code, country); err != nil {
		return err
	}
	c.invalidate(ctx, append(countryKeys(country), cacheKey(core.Classify(code), code))...)
	return nil
}

func (c *CachedRepository) DeleteByCode(ctx context.Context, code string) error {
	// Look the record up first so every one of its codes can be dropped.
	existing, lookupErr := core.Resolve(ctx, c.next, code)
	if lookupErr != nil && !errors.Is(lookupErr, core.ErrNotFound) {
		return fmt.Errorf("resolve before delete: %w", lookupErr)
	}

	if err := c.next.DeleteByCode(ctx, code); err != nil {
		return err
	}

	keys := []string{cacheKey(core.Classify(code), code)}
	if existing != nil {
		keys = countryKeys(*existing)
	}
	c.invalidate(ctx, keys...)
	return nil
}

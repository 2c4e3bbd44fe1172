package profile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	applog "github.com/janisto/devconnector-api/internal/platform/logging"
)

const (
	cachePrefix     = "devconnector:profile:"
	cacheListKey    = cachePrefix + "list"
	DefaultCacheTTL = time.Minute

	loadTimeout = 10 * time.Second
)

// errStaleLoad marks a load that overlapped a write to the same key.
var errStaleLoad = errors.New("cache generation moved during load")

func ownerKey(ownerID string) string {
	return cachePrefix + "owner:" + ownerID
}

// genKey holds the write generation for key. The hash tag keeps both in one
// cluster slot so they can be watched together.
func genKey(key string) string {
	return "{" + key + "}:gen"
}

// CachedService serves the public reads (List, GetByOwnerID) through Redis and
// coalesces concurrent misses. Every write through it bumps the generation of
// the owner's entry and the list, then drops both. A load only fills the cache
// if the generation it started under is still current. Redis failures fall
// back to the wrapped Service.
type CachedService struct {
	Service
	rdb   redis.UniversalClient
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedService wraps next. A non-positive ttl uses DefaultCacheTTL.
func NewCachedService(next Service, rdb redis.UniversalClient, ttl time.Duration) *CachedService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedService{Service: next, rdb: rdb, ttl: ttl}
}

func (c *CachedService) List(ctx context.Context) ([]Profile, error) {
	var out []Profile
	err := c.cached(ctx, cacheListKey, &out, func(ctx context.Context) (any, error) {
		return c.Service.List(ctx)
	})
	return out, err
}

func (c *CachedService) GetByOwnerID(ctx context.Context, rawID string) (*Profile, error) {
	if !ValidOwnerID(rawID) {
		return c.Service.GetByOwnerID(ctx, rawID)
	}
	var out Profile
	err := c.cached(ctx, ownerKey(rawID), &out, func(ctx context.Context) (any, error) {
		return c.Service.GetByOwnerID(ctx, rawID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// cached decodes key into dst, loading it on a miss. Concurrent misses share
// one load, which runs detached from any single caller's cancellation; each
// caller still returns as soon as its own ctx is done.
func (c *CachedService) cached(ctx context.Context, key string, dst any, load func(context.Context) (any, error)) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dst); jsonErr == nil {
			return nil
		}
		applog.LogWarn(ctx, "cache entry undecodable", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		applog.LogWarn(ctx, "cache read failed", zap.String("key", key), zap.Error(err))
	}

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return c.fill(loadCtx, key, load)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dst)
	}
}

// fill loads key and stores the encoded result unless a write bumped the
// key's generation in the meantime.
func (c *CachedService) fill(ctx context.Context, key string, load func(context.Context) (any, error)) ([]byte, error) {
	gen, genErr := c.generation(ctx, key)
	if genErr != nil {
		applog.LogWarn(ctx, "cache generation read failed", zap.String("key", key), zap.Error(genErr))
	}
	val, err := load(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(val)
	if err != nil {
		return nil, errors.Wrap(err, "encode cache entry")
	}
	if genErr != nil {
		return b, nil
	}
	switch err := c.store(ctx, key, gen, b); {
	case err == nil:
	case errors.Is(err, errStaleLoad), errors.Is(err, redis.TxFailedErr):
		applog.LoggerFromContext(ctx).Debug("cache fill skipped after concurrent write", zap.String("key", key))
	default:
		applog.LogWarn(ctx, "cache write failed", zap.String("key", key), zap.Error(err))
	}
	return b, nil
}

func (c *CachedService) generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// store writes b under key only while the generation still equals gen.
func (c *CachedService) store(ctx context.Context, key string, gen int64, b []byte) error {
	gk := genKey(key)
	return c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, c.ttl)
			return nil
		})
		return err
	}, gk)
}

// invalidate runs after the write committed and ignores request cancellation.
func (c *CachedService) invalidate(ctx context.Context, ownerID string) {
	ctx = context.WithoutCancel(ctx)
	keys := []string{ownerKey(ownerID), cacheListKey}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, genKey(key))
			pipe.Del(ctx, key)
		}
		return nil
	})
	for _, key := range keys {
		c.group.Forget(key)
	}
	if err != nil {
		applog.LogWarn(ctx, "cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (c *CachedService) Upsert(ctx context.Context, ownerID string, fields Fields) (*Profile, error) {
	defer c.invalidate(ctx, ownerID)
	return c.Service.Upsert(ctx, ownerID, fields)
}

func (c *CachedService) DeleteCascade(ctx context.Context, ownerID string) error {
	defer c.invalidate(ctx, ownerID)
	return c.Service.DeleteCascade(ctx, ownerID)
}

func (c *CachedService) AddExperience(ctx context.Context, ownerID string, in ExperienceInput) (*Profile, error) {
	defer c.invalidate(ctx, ownerID)
	return c.Service.AddExperience(ctx, ownerID, in)
}

func (c *CachedService) RemoveExperience(ctx context.Context, ownerID, expID string) (*Profile, error) {
	defer c.invalidate(ctx, ownerID)
	return c.Service.RemoveExperience(ctx, ownerID, expID)
}

func (c *CachedService) AddEducation(ctx context.Context, ownerID string, in EducationInput) (*Profile, error) {
	defer c.invalidate(ctx, ownerID)
	return c.Service.AddEducation(ctx, ownerID, in)
}

func (c *CachedService) RemoveEducation(ctx context.Context, ownerID, eduID string) (*Profile, error) {
	defer c.invalidate(ctx, ownerID)
	return c.Service.RemoveEducation(ctx, ownerID, eduID)
}

var _ Service = (*CachedService)(nil)

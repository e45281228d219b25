package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CachedStore is a read-through Redis cache in front of another Store.
// Document reads are cached under the path's version counter and query results
// under the collection's. Every committed write bumps both, so a fill that
// raced with a write lands on a key nobody reads again.
// Redis failures are logged and the call falls through to the wrapped store.
type CachedStore struct {
	next Store
	rdb  *redis.Client
	ttl  time.Duration
	log  *logrus.Logger
}

func NewCachedStore(next Store, rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *CachedStore {
	return &CachedStore{next: next, rdb: rdb, ttl: ttl, log: log}
}

// NewRedisClient parses a host:port or redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func docVersionKey(path string) string {
	return "ver:doc:" + path
}

func versionKey(collection string) string {
	return "ver:" + collection
}

// docKey resolves the cache key of the current version of path.
func (c *CachedStore) docKey(ctx context.Context, path string) (string, error) {
	version, err := c.rdb.Get(ctx, docVersionKey(path)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("doc:%s:%d", path, version), nil
}

func (c *CachedStore) Get(ctx context.Context, path string) (Snapshot, error) {
	key, err := c.docKey(ctx, path)
	if err != nil {
		c.log.Warnf("Cache version read failed for %s: %v", path, err)
		return c.next.Get(ctx, path)
	}

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var s Snapshot
		if err := json.Unmarshal([]byte(cached), &s); err == nil {
			return s, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warnf("Cache read failed for %s: %v", path, err)
	}

	s, err := c.next.Get(ctx, path)
	if err != nil {
		return s, err
	}
	c.put(ctx, key, s)
	return s, nil
}

func (c *CachedStore) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	version, err := c.rdb.Get(ctx, versionKey(collection)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warnf("Cache version read failed for %s: %v", collection, err)
		return c.next.Query(ctx, collection, q)
	}

	rawQuery, err := json.Marshal(q)
	if err != nil {
		return c.next.Query(ctx, collection, q)
	}
	key := fmt.Sprintf("query:%s:%d:%x", collection, version, sha256.Sum256(rawQuery))

	if cached, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var out []Snapshot
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return out, nil
		}
	}

	out, err := c.next.Query(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, out)
	return out, nil
}

func (c *CachedStore) Set(ctx context.Context, path string, data Document, merge bool) error {
	return c.Commit(ctx, NewBatch().Set(path, data, merge))
}

func (c *CachedStore) Update(ctx context.Context, path string, data Document) error {
	return c.Commit(ctx, NewBatch().Update(path, data))
}

func (c *CachedStore) Delete(ctx context.Context, path string) error {
	return c.Commit(ctx, NewBatch().Delete(path))
}

func (c *CachedStore) Increment(ctx context.Context, path, field string, delta decimal.Decimal) error {
	return c.Commit(ctx, NewBatch().Increment(path, field, delta))
}

// Commit writes through and then bumps the version of every touched path and collection.
func (c *CachedStore) Commit(ctx context.Context, b *Batch) error {
	if err := c.next.Commit(ctx, b); err != nil {
		return err
	}

	paths := make(map[string]struct{})
	collections := make(map[string]struct{})
	for _, op := range b.Ops() {
		paths[op.Path] = struct{}{}
		collection, _ := Split(op.Path)
		collections[collection] = struct{}{}
	}

	pipe := c.rdb.TxPipeline()
	for path := range paths {
		pipe.Incr(ctx, docVersionKey(path))
	}
	for collection := range collections {
		pipe.Incr(ctx, versionKey(collection))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Errorf("Cache invalidation failed after batch of %d operations: %v", b.Len(), err)
	}
	return nil
}

func (c *CachedStore) put(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.SetEx(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warnf("Cache write failed for %s: %v", key, err)
	}
}

package ddsreader

import (
	"bytes"
	"context"
	"encoding/gob"
	"sync"

	"github.com/coocood/freecache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// HashKeyStore remembers every key seen while decoding a Value or
// DisposeByKey so a later DisposeByKeyHash can be resolved back to the
// original key. The default implementation (mapHashKeyStore) is
// grow-only. lruHashKeyStore and redisHashKeyStore trade that guarantee
// for bounded memory and cross-process durability respectively: a hash
// may fail to resolve if its mapping was evicted or expired.
type HashKeyStore[K any] interface {
	Remember(h KeyHash, k K)
	Resolve(ctx context.Context, h KeyHash) (K, bool)
}

// mapHashKeyStore is the plain grow-only map implementation.
type mapHashKeyStore[K any] struct {
	mu sync.Mutex
	m  map[KeyHash]K
}

// newMapHashKeyStore constructs the default HashKeyStore.
func newMapHashKeyStore[K any]() *mapHashKeyStore[K] {
	return &mapHashKeyStore[K]{m: make(map[KeyHash]K)}
}

func (s *mapHashKeyStore[K]) Remember(h KeyHash, k K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[h] = k
}

func (s *mapHashKeyStore[K]) Resolve(_ context.Context, h KeyHash) (K, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.m[h]
	return k, ok
}

// lruHashKeyStore bounds memory by evicting least-recently-used entries.
// Keys are gob-encoded; K must therefore be a gob-encodable type.
type lruHashKeyStore[K any] struct {
	cache *freecache.Cache
}

// newLRUHashKeyStore wraps a freecache.Cache (sized in bytes) as a
// HashKeyStore.
func newLRUHashKeyStore[K any](sizeBytes int) *lruHashKeyStore[K] {
	return &lruHashKeyStore[K]{cache: freecache.NewCache(sizeBytes)}
}

// NewLRUHashKeyStore is the exported constructor for readers that want a
// bounded-memory hash-to-key map instead of the grow-only default.
func NewLRUHashKeyStore[K any](sizeBytes int) HashKeyStore[K] {
	return newLRUHashKeyStore[K](sizeBytes)
}

func (s *lruHashKeyStore[K]) Remember(h KeyHash, k K) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(k); err != nil {
		log.Warn().Err(err).Msg("ddsreader: failed to encode key for lru hash store")
		return
	}
	if err := s.cache.Set(h[:], buf.Bytes(), 0); err != nil {
		log.Warn().Err(err).Msg("ddsreader: failed to store key in lru hash store")
	}
}

func (s *lruHashKeyStore[K]) Resolve(_ context.Context, h KeyHash) (K, bool) {
	var zero K
	raw, err := s.cache.Get(h[:])
	if err != nil {
		return zero, false
	}
	var k K
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&k); err != nil {
		log.Warn().Err(err).Msg("ddsreader: failed to decode key from lru hash store")
		return zero, false
	}
	return k, true
}

// redisHashKeyStore persists hash->key mappings in Redis so a restarted
// participant process can still resolve a DisposeByKeyHash for keys it
// saw in a previous run. Concurrent misses for the same hash are
// coalesced with singleflight so a burst of dispose-by-hash traffic for
// an unseen key does not stampede Redis.
type redisHashKeyStore[K any] struct {
	client    redis.UniversalClient
	keyPrefix string
	group     singleflight.Group
}

// newRedisHashKeyStore builds a Redis-backed HashKeyStore. keyPrefix
// namespaces the Redis keyspace, typically the topic name.
func newRedisHashKeyStore[K any](client redis.UniversalClient, keyPrefix string) *redisHashKeyStore[K] {
	return &redisHashKeyStore[K]{client: client, keyPrefix: keyPrefix}
}

// NewRedisHashKeyStore is the exported constructor for readers that need
// hash-to-key resolution to survive a process restart.
func NewRedisHashKeyStore[K any](client redis.UniversalClient, keyPrefix string) HashKeyStore[K] {
	return newRedisHashKeyStore[K](client, keyPrefix)
}

func (s *redisHashKeyStore[K]) redisKey(h KeyHash) string {
	return s.keyPrefix + ":hashkey:" + h.String()
}

func (s *redisHashKeyStore[K]) Remember(h KeyHash, k K) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(k); err != nil {
		log.Warn().Err(err).Msg("ddsreader: failed to encode key for redis hash store")
		return
	}
	ctx := context.Background()
	if err := s.client.Set(ctx, s.redisKey(h), buf.Bytes(), 0).Err(); err != nil {
		log.Warn().Err(err).Str("hash", h.String()).Msg("ddsreader: failed to persist key to redis")
	}
}

func (s *redisHashKeyStore[K]) Resolve(ctx context.Context, h KeyHash) (K, bool) {
	var zero K
	v, err, _ := s.group.Do(h.String(), func() (any, error) {
		raw, err := s.client.Get(ctx, s.redisKey(h)).Bytes()
		if err != nil {
			return nil, err
		}
		var k K
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&k); err != nil {
			return nil, err
		}
		return k, nil
	})
	if err != nil {
		return zero, false
	}
	return v.(K), true
}

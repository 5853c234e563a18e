package properties

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedStore memoizes found values. Misses and property listings are never
// cached since they change while the pipeline is still running.
type CachedStore struct {
	next  Store
	cache *cache.Cache
}

func NewCachedStore(next Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if strings.HasSuffix(key, ":"+PropertiesKey) {
		return s.next.Get(ctx, key)
	}
	if cached, found := s.cache.Get(key); found {
		return cached.(json.RawMessage), nil
	}
	v, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, v, cache.DefaultExpiration)
	return v, nil
}

// Set writes through and drops the cached entry.
func (s *CachedStore) Set(ctx context.Context, key string, value any) error {
	w, ok := s.next.(Writer)
	if !ok {
		return ErrReadOnly
	}
	s.cache.Delete(key)
	return w.Set(ctx, key, value)
}

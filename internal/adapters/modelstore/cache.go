package modelstore

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

// Cache defaults.
const (
	DefaultCacheSize = 8
	DefaultCacheTTL  = time.Hour
)

type cacheKind string

const (
	cacheBinary     cacheKind = "binary"
	cacheClassifier cacheKind = "classifier"
)

type cacheKey struct {
	kind cacheKind
	name string
}

type cacheItem struct {
	key       cacheKey
	value     interface{}
	element   *list.Element
	expiresAt time.Time
}

// CachingLoader keeps recently loaded predictors in an LRU cache with TTL.
// Failed loads are never cached.
type CachingLoader struct {
	next    ports.ModelLoader
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	items   map[cacheKey]*cacheItem
	lruList *list.List
	hits    uint64
	misses  uint64
}

// NewCachingLoader wraps next. Non-positive size or ttl select the defaults.
func NewCachingLoader(next ports.ModelLoader, maxSize int, ttl time.Duration) (*CachingLoader, error) {
	if next == nil {
		return nil, errors.New("model loader is required")
	}
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingLoader{
		next:    next,
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[cacheKey]*cacheItem),
		lruList: list.New(),
	}, nil
}

// LoadBinary implements ports.ModelLoader.
func (c *CachingLoader) LoadBinary(ctx context.Context, name string) (ports.BinaryPredictor, error) {
	key := cacheKey{kind: cacheBinary, name: name}
	if v, ok := c.get(key); ok {
		return v.(ports.BinaryPredictor), nil
	}
	predictor, err := c.next.LoadBinary(ctx, name)
	if err != nil {
		return nil, err
	}
	c.set(key, predictor)
	return predictor, nil
}

// LoadClassifier implements ports.ModelLoader.
func (c *CachingLoader) LoadClassifier(ctx context.Context, name string) (ports.TypeClassifier, error) {
	key := cacheKey{kind: cacheClassifier, name: name}
	if v, ok := c.get(key); ok {
		return v.(ports.TypeClassifier), nil
	}
	classifier, err := c.next.LoadClassifier(ctx, name)
	if err != nil {
		return nil, err
	}
	c.set(key, classifier)
	return classifier, nil
}

func (c *CachingLoader) get(key cacheKey) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		c.misses++
		return nil, false
	}
	if c.now().After(item.expiresAt) {
		c.removeItem(item)
		c.misses++
		return nil, false
	}

	c.lruList.MoveToFront(item.element)
	c.hits++
	return item.value, true
}

func (c *CachingLoader) set(key cacheKey, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if existing, exists := c.items[key]; exists {
		existing.value = value
		existing.expiresAt = expiresAt
		c.lruList.MoveToFront(existing.element)
		return
	}

	item := &cacheItem{key: key, value: value, expiresAt: expiresAt}
	item.element = c.lruList.PushFront(item)
	c.items[key] = item

	if len(c.items) > c.maxSize {
		if oldest := c.lruList.Back(); oldest != nil {
			c.removeItem(oldest.Value.(*cacheItem))
		}
	}
}

func (c *CachingLoader) removeItem(item *cacheItem) {
	delete(c.items, item.key)
	c.lruList.Remove(item.element)
}

// Len returns the number of cached predictors.
func (c *CachingLoader) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the hit and miss counts.
func (c *CachingLoader) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear drops every cached predictor.
func (c *CachingLoader) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[cacheKey]*cacheItem)
	c.lruList.Init()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const keyPrefix = "slot-template:"

// invalidationReplay is how long after a save the key is deleted a second
// time, covering readers on other instances that loaded the old row before
// the save committed.
const invalidationReplay = 2 * time.Second

// RedisClient is the subset of *redis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// TemplateCache is a read-through Redis cache in front of a TemplateStore.
// Redis failures are logged and fall back to the store; they never fail a
// request. Only templates are cached, appointments always hit the ledger.
//
// A reader only fills the cache if no save for the same doctor happened while
// it was reading the store, so an old row never overwrites an invalidation.
type TemplateCache struct {
	next   ports.TemplateStore
	client RedisClient
	cb     *gobreaker.CircuitBreaker
	ttl    time.Duration

	// mu serialises fills against invalidations and guards generations.
	mu          sync.Mutex
	generations map[string]uint64
}

var _ ports.TemplateStore = (*TemplateCache)(nil)

func NewTemplateCache(next ports.TemplateStore, client RedisClient, cb *gobreaker.CircuitBreaker, ttl time.Duration) *TemplateCache {
	return &TemplateCache{
		next:   next,
		client: client,
		cb:     cb,
		ttl:    ttl,

		generations: make(map[string]uint64),
	}
}

func (c *TemplateCache) FindTemplate(ctx context.Context, doctorID string) (*domain.DaySlotTemplate, error) {
	if tmpl, ok := c.lookup(ctx, doctorID); ok {
		return tmpl, nil
	}

	gen := c.generation(doctorID)
	tmpl, err := c.next.FindTemplate(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, tmpl, gen)
	return tmpl, nil
}

// SaveTemplate writes to the store first, then drops the cached copy.
func (c *TemplateCache) SaveTemplate(ctx context.Context, tmpl domain.DaySlotTemplate) error {
	if err := c.next.SaveTemplate(ctx, tmpl); err != nil {
		return err
	}

	c.mu.Lock()
	c.generations[tmpl.DoctorID]++
	c.invalidate(ctx, tmpl.DoctorID)
	c.mu.Unlock()

	time.AfterFunc(invalidationReplay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), invalidationReplay)
		defer cancel()
		c.invalidate(ctx, tmpl.DoctorID)
	})
	return nil
}

func (c *TemplateCache) invalidate(ctx context.Context, doctorID string) {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Del(ctx, keyPrefix+doctorID).Err()
	})
	if err != nil {
		log.Printf("cache: failed to invalidate template for doctor %s: %v", doctorID, err)
	}
}

func (c *TemplateCache) generation(doctorID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[doctorID]
}

func (c *TemplateCache) lookup(ctx context.Context, doctorID string) (*domain.DaySlotTemplate, bool) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		raw, err := c.client.Get(ctx, keyPrefix+doctorID).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return raw, err
	})
	if err != nil {
		log.Printf("cache: template lookup for doctor %s failed: %v", doctorID, err)
		return nil, false
	}
	raw, _ := res.([]byte)
	if raw == nil {
		return nil, false
	}

	var tmpl domain.DaySlotTemplate
	if err := json.Unmarshal(raw, &tmpl); err != nil {
		log.Printf("cache: dropping unreadable template for doctor %s: %v", doctorID, err)
		return nil, false
	}
	return &tmpl, true
}

// store caches tmpl unless a save for the doctor happened after gen was read.
func (c *TemplateCache) store(ctx context.Context, tmpl *domain.DaySlotTemplate, gen uint64) {
	raw, err := json.Marshal(tmpl)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[tmpl.DoctorID] != gen {
		return
	}
	_, err = c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, keyPrefix+tmpl.DoctorID, string(raw), c.ttl).Err()
	})
	if err != nil {
		log.Printf("cache: failed to cache template for doctor %s: %v", tmpl.DoctorID, err)
	}
}

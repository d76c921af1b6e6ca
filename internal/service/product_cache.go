package service

import (
	"context"
	"encoding/json"
	"time"

	"stockbook/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const productCacheTTL = 5 * time.Minute

// ProductCache is the read-through product cache. Entries hold the full
// model including the live quantity, so every committed write that changes
// a product — catalog edits AND ledger writes (movements, sale deductions,
// refund restocks) — must invalidate the affected entries. A missed
// invalidation serves stale stock for up to the TTL.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Product, bool)
	Set(ctx context.Context, p *model.Product)
	Invalidate(ctx context.Context, ids ...uuid.UUID)
}

type redisProductCache struct {
	rdb *redis.Client
}

func NewProductCache(rdb *redis.Client) ProductCache {
	return &redisProductCache{rdb: rdb}
}

func productCacheKey(id uuid.UUID) string { return "product:" + id.String() }

func (c *redisProductCache) Get(ctx context.Context, id uuid.UUID) (*model.Product, bool) {
	raw, err := c.rdb.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *redisProductCache) Set(ctx context.Context, p *model.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productCacheKey(p.ID), raw, productCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", p.ID.String()).Msg("product cache write failed")
	}
}

func (c *redisProductCache) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productCacheKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("product cache invalidation failed")
	}
}

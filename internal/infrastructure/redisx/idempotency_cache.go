package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// KeyIdemMovement idem:movement:{len(business_id)}:{business_id}:{idempotency_key} -> IdempotentResult JSON.
// El prefijo de longitud evita colisiones cuando el business_id contiene ':'.
const KeyIdemMovement = "idem:movement:%d:%s:%s"

var _ inventory.IdempotencyCache = (*IdempotencyCache)(nil)

type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// IdempotencyCache atajo en Redis para claves de idempotencia. La fuente de verdad sigue siendo
// la clave guardada en stock_movements; aquí solo se evita abrir la transacción en reintentos.
type IdempotencyCache struct {
	rdb kv
}

// NewIdempotencyCache construye la caché sobre un cliente Redis.
func NewIdempotencyCache(rdb *redis.Client) *IdempotencyCache {
	return &IdempotencyCache{rdb: rdb}
}

// Get devuelve (nil, nil) si la clave no está cacheada.
func (c *IdempotencyCache) Get(ctx context.Context, businessID, key string) (*inventory.IdempotentResult, error) {
	s, err := c.rdb.Get(ctx, cacheKey(businessID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get idempotency: %w", err)
	}
	var res inventory.IdempotentResult
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		return nil, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return &res, nil
}

// Put guarda el resultado entregado con vencimiento ttl.
func (c *IdempotencyCache) Put(ctx context.Context, businessID, key string, result inventory.IdempotentResult, ttl time.Duration) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, cacheKey(businessID, key), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set idempotency: %w", err)
	}
	return nil
}

func cacheKey(businessID, key string) string {
	return fmt.Sprintf(KeyIdemMovement, len(businessID), businessID, key)
}

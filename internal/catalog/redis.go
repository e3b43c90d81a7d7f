package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisCatalogKey = "safe-dialog:catalog"

// RedisStore keeps the catalog as a single JSON document in Redis, preserving
// the whole-catalog load/save contract.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(address, password string, db int, log zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		log:    log.With().Str("component", "catalog").Logger(),
	}, nil
}

// Load fetches the catalog document. Missing key or unparsable content yields
// an empty catalog.
func (r *RedisStore) Load() Catalog {
	data, err := r.client.Get(context.Background(), redisCatalogKey).Bytes()
	if err == redis.Nil {
		return Catalog{}
	}
	if err != nil {
		r.log.Warn().Err(err).Msg("catalog fetch failed, starting empty")
		return Catalog{}
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		r.log.Warn().Err(err).Msg("catalog parse failed, starting empty")
		return Catalog{}
	}
	return c
}

// Save overwrites the catalog document. No TTL: entries live until deleted.
func (r *RedisStore) Save(c Catalog) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := r.client.Set(context.Background(), redisCatalogKey, data, 0).Err(); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

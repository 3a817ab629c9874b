package registry

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	redisInfra "github.com/quillcheck/engine/internal/infra/redis"
)

const cacheTTL = 12 * time.Hour

// Resolver resolves source ids through the registry with a Redis
// read-through cache. Label lookups run on every check response, so cache
// misses are the exception.
type Resolver struct {
	client *Client
	cache  *redisInfra.Client
}

func NewResolver(client *Client, cache *redisInfra.Client) *Resolver {
	return &Resolver{
		client: client,
		cache:  cache,
	}
}

// Resolve returns registry metadata for a source id, or nil when the registry
// does not know the id. Registry failures degrade to an unresolved source
// rather than failing the whole check.
func (r *Resolver) Resolve(ctx context.Context, sourceID string) *SourceInfo {
	key := "source_registry:" + sourceID

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, key).Result()
		if err == nil {
			var info SourceInfo
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return &info
			}
		} else if err != goredis.Nil {
			log.Warn().Err(err).Str("sourceId", sourceID).Msg("Registry cache read failed")
		}
	}

	info, err := r.client.Resolve(ctx, sourceID)
	if err != nil {
		log.Warn().Err(err).Str("sourceId", sourceID).Msg("Failed to resolve source, returning id only")
		return nil
	}
	if info == nil {
		return nil
	}

	if r.cache != nil {
		if payload, err := json.Marshal(info); err == nil {
			if err := r.cache.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("sourceId", sourceID).Msg("Registry cache write failed")
			}
		}
	}

	return info
}

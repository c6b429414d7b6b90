package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON is GetOrLoad for JSON-encoded values. A cached payload that no
// longer decodes into T (schema drift after a deploy) is dropped and reloaded.
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (*T, error)) (*T, error) {
	var fresh *T
	loader := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		fresh = v
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, loader)
	if err != nil {
		return nil, err
	}
	if fresh != nil {
		return fresh, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err == nil {
		return &out, nil
	}

	_ = c.Invalidate(ctx, key)
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

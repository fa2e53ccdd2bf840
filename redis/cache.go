package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"text2phenotype.com/hmmtag/types"
)

const TagCacheDB DB = 3

// TagCache keeps sentence taggings in Redis. Entries expire after ttl; zero keeps them forever.
type TagCache struct {
	client Client
	ttl    time.Duration
}

func NewTagCache(client Client, ttl time.Duration) *TagCache {
	return &TagCache{client: client, ttl: ttl}
}

func (cache *TagCache) GetTags(c context.Context, key string) ([]types.Alternative, bool, error) {
	b, err := cache.client.get(c, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var alternatives []types.Alternative
	if err := json.Unmarshal(b, &alternatives); err != nil {
		return nil, false, err
	}
	return alternatives, true, nil
}

func (cache *TagCache) SetTags(c context.Context, key string, alternatives []types.Alternative) error {
	b, err := json.Marshal(alternatives)
	if err != nil {
		return err
	}
	return cache.client.client.Set(c, key, b, cache.ttl).Err()
}

func (cache *TagCache) Close() error {
	return cache.client.Close()
}

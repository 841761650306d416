package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendNull  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Dir           string
	RedisAddr     string
	MongoURI      string
	MongoDatabase string
}

// Open returns the backend named by opts.Backend. An empty backend means
// file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNull:
		return NewNullCache(), nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	case BackendMongo:
		db := opts.MongoDatabase
		if db == "" {
			db = "optima"
		}
		c, err := NewMongoCache(ctx, opts.MongoURI, db)
		if err != nil {
			return nil, fmt.Errorf("mongo cache: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Clearer is implemented by backends that can drop all entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear empties c if the backend supports it.
func Clear(ctx context.Context, c Cache) error {
	switch b := c.(type) {
	case *FileCache:
		return b.Clear()
	case Clearer:
		return b.Clear(ctx)
	case NullCache:
		return nil
	default:
		return fmt.Errorf("cache backend %T cannot be cleared", c)
	}
}

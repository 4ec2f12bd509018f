package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Backends lists every backend name in the order they are documented.
var Backends = []string{BackendFile, BackendNone, BackendRedis, BackendMongo}

// Options selects and configures a cache backend.
type Options struct {
	Backend string
	Dir     string
	Redis   RedisOptions
	Mongo   MongoOptions
}

// Open returns the cache selected by opts.Backend. An empty backend means
// the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		c, err = openBackend(NewFileCache(opts.Dir))
	case BackendNone:
		c = NewNullCache()
	case BackendRedis:
		c, err = openBackend(NewRedisCache(ctx, opts.Redis))
	case BackendMongo:
		c, err = openBackend(NewMongoCache(ctx, opts.Mongo))
	default:
		err = fmt.Errorf("%w %q (valid: %v)", ErrUnknownBackend, opts.Backend, Backends)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// openBackend converts a concrete constructor result to a Cache without
// producing a non-nil interface around a nil pointer.
func openBackend[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

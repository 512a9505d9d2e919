package cliconfig

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGuard/session"
)

// OpenBackend opens the configured session storage. The returned close function is
// never nil.
func (f *File) OpenBackend(ctx context.Context) (session.Backend, func() error, error) {
	switch f.Session.Storage {
	case StorageRedis:
		ttl, err := f.redisTTL()
		if err != nil {
			return nil, nil, err
		}
		rdb := redis.NewClient(&redis.Options{Addr: f.Session.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", f.Session.RedisAddr, err)
		}
		return session.NewRedisBackend(rdb, f.Session.RedisPrefix, ttl), rdb.Close, nil
	default:
		fb, err := session.NewFileBackend(f.Session.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fb, func() error { return nil }, nil
	}
}

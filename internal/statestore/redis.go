package statestore

import (
	"context"
	"errors"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// keyPrefix namespaces state keys in a shared Redis database.
const keyPrefix = "social:state:"

// Redis is a Store shared by every server instance pointing at the same
// Redis database.
type Redis struct{ c *rdb.Client }

// NewRedis connects to the Redis server at addr.
func NewRedis(addr string, db int) *Redis {
	return &Redis{c: rdb.NewClient(&rdb.Options{Addr: addr, DB: db})}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *Redis) Put(ctx context.Context, state, provider string, ttl time.Duration) error {
	return r.c.Set(ctx, keyPrefix+state, provider, ttl).Err()
}

// Consume uses GETDEL so two concurrent callbacks cannot both succeed.
func (r *Redis) Consume(ctx context.Context, state string) (string, error) {
	provider, err := r.c.GetDel(ctx, keyPrefix+state).Result()
	if errors.Is(err, rdb.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return provider, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.c.Close()
}

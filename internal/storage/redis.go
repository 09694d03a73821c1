package storage

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*Redis)(nil)

// Redis is a Store backed by a Redis server. It lets several storefront
// processes share one cart namespace the way browser tabs share one origin:
// slot writes are plain SET/DEL on prefixed keys, and change notification is
// a pub/sub message carrying the slot name.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the Redis server at url (redis://...) and verifies the
// connection with a short ping.
func NewRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}

	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) key(slot string) string     { return r.prefix + ":" + slot }
func (r *Redis) channel(slot string) string { return r.prefix + ":changed:" + slot }

// Get returns the slot contents.
func (r *Redis) Get(ctx context.Context, slot string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get slot %q", slot)
	}
	return data, nil
}

// Set replaces the slot contents and publishes a change notification.
func (r *Redis) Set(ctx context.Context, slot string, data []byte) error {
	if err := r.client.Set(ctx, r.key(slot), data, 0).Err(); err != nil {
		return errors.Wrapf(err, "set slot %q", slot)
	}
	// Best effort: a dropped notification only delays a passive reader until
	// its next explicit read.
	_ = r.client.Publish(ctx, r.channel(slot), slot).Err()
	return nil
}

// Delete removes the slot and publishes a change notification.
func (r *Redis) Delete(ctx context.Context, slot string) error {
	if err := r.client.Del(ctx, r.key(slot)).Err(); err != nil {
		return errors.Wrapf(err, "delete slot %q", slot)
	}
	_ = r.client.Publish(ctx, r.channel(slot), slot).Err()
	return nil
}

// Watch subscribes to change notifications for slot.
func (r *Redis) Watch(ctx context.Context, slot string) (<-chan struct{}, error) {
	sub := r.client.Subscribe(ctx, r.channel(slot))

	// Force the subscription to be established before returning, so callers
	// do not miss writes that happen immediately after Watch.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, errors.Wrapf(err, "subscribe slot %q", slot)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer func() { _ = sub.Close() }()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}

// Ping reports Redis reachability.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"organica/internal/models"

	"github.com/redis/go-redis/v9"
)

const clearCartAttempts = 3

// RedisStore keeps session state in Redis as JSON values that expire with the session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:cart", sessionID)
}

func wishlistKey(sessionID string) string {
	return fmt.Sprintf("session:%s:wishlist", sessionID)
}

func (r *RedisStore) LoadCart(ctx context.Context, sessionID string) (*models.CartState, error) {
	return r.getCart(ctx, r.client, cartKey(sessionID))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) getCart(ctx context.Context, c getter, key string) (*models.CartState, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewCartState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart failed: %w", err)
	}

	cart := models.NewCartState()
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return cart, nil
}

func (r *RedisStore) SaveCart(ctx context.Context, sessionID string, cart *models.CartState) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart failed: %w", err)
	}
	return nil
}

// ClearCartIfVersion runs a WATCH/MULTI transaction so a concurrent write
// between the version check and the reset aborts the reset.
func (r *RedisStore) ClearCartIfVersion(ctx context.Context, sessionID, token string, version int64) (bool, error) {
	key := cartKey(sessionID)

	for attempt := 0; attempt < clearCartAttempts; attempt++ {
		cleared := false
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			cart, err := r.getCart(ctx, tx, key)
			if err != nil {
				return err
			}
			if cart.Token != token || cart.Version != version {
				return nil
			}
			cart.Reset()
			data, err := json.Marshal(cart)
			if err != nil {
				return fmt.Errorf("marshal cart failed: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, r.ttl)
				return nil
			})
			if err == nil {
				cleared = true
			}
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("redis clear cart failed: %w", err)
		}
		return cleared, nil
	}
	return false, nil
}

func (r *RedisStore) LoadWishlist(ctx context.Context, sessionID string) (*models.WishlistState, error) {
	data, err := r.client.Get(ctx, wishlistKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewWishlistState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get wishlist failed: %w", err)
	}

	wishlist := models.NewWishlistState()
	if err := json.Unmarshal(data, wishlist); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist failed: %w", err)
	}
	return wishlist, nil
}

func (r *RedisStore) SaveWishlist(ctx context.Context, sessionID string, wishlist *models.WishlistState) error {
	data, err := json.Marshal(wishlist)
	if err != nil {
		return fmt.Errorf("marshal wishlist failed: %w", err)
	}
	if err := r.client.Set(ctx, wishlistKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set wishlist failed: %w", err)
	}
	return nil
}

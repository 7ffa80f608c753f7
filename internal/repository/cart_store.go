package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"shoestore-service/internal/models"
)

const cartKeyPrefix = "cart:"

// RedisCartStore keeps shopper carts as JSON documents with a sliding TTL
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

// Get returns the stored cart, or an empty one when none exists
func (s *RedisCartStore) Get(ctx context.Context, cartID string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, cartKeyPrefix+cartID).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.Cart{ID: cartID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	cart.ID = cartID
	return &cart, nil
}

func (s *RedisCartStore) Save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return s.client.Set(ctx, cartKeyPrefix+cart.ID, data, s.ttl).Err()
}

func (s *RedisCartStore) Delete(ctx context.Context, cartID string) error {
	return s.client.Del(ctx, cartKeyPrefix+cartID).Err()
}

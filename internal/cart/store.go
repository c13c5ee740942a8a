package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/paolomureddu/agrikmzero-backend/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type cartKeyer interface {
	CartKey(sessionID string) string
}

// Store persists carts as JSON blobs in Redis, one key per cart session.
// Every write refreshes the TTL so active carts never expire mid-shopping.
type Store struct {
	kv    kvStore
	keyer cartKeyer
	ttl   time.Duration
}

// NewStore builds a cart store on top of the Redis client.
func NewStore(client *redisclient.Client, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &Store{kv: client, keyer: client, ttl: ttl}, nil
}

// Load fetches the cart for the session, returning an empty cart when absent.
func (s *Store) Load(ctx context.Context, sessionID string) (Cart, error) {
	raw, err := s.kv.Get(ctx, s.keyer.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return Cart{}, nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	cart := Cart{}
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		// a corrupt blob should not lock the user out of their cart
		return Cart{}, nil
	}
	return cart, nil
}

// Save writes the cart back, deleting the key when the cart emptied out.
func (s *Store) Save(ctx context.Context, sessionID string, cart Cart) error {
	key := s.keyer.CartKey(sessionID)
	if len(cart) == 0 {
		if err := s.kv.Del(ctx, key); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.kv.Set(ctx, key, string(raw), s.ttl); err != nil {
		return fmt.Errorf("storing cart: %w", err)
	}
	return nil
}

// Delete removes the cart key entirely.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.keyer.CartKey(sessionID)); err != nil {
		return fmt.Errorf("deleting cart: %w", err)
	}
	return nil
}

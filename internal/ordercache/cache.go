package ordercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pos-checkout/internal/posapi"
)

// Cache mirrors backend order state in Redis with typed keys. It is passed
// as a constructor dependency, never reached through a global, and every
// order mutation is followed by Invalidate + Put of the fresh detail.
type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache { return &Cache{rdb: rdb} }

func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func (c *Cache) PutOrder(ctx context.Context, o *posapi.Order) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(keyOrderDetail, o.ID), b, TTLOrderDetail).Err()
}

func (c *Cache) GetOrder(ctx context.Context, orderID string) (*posapi.Order, bool, error) {
	s, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrderDetail, orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var o posapi.Order
	if err := json.Unmarshal([]byte(s), &o); err != nil {
		return nil, false, err
	}
	return &o, true, nil
}

func (c *Cache) InvalidateOrder(ctx context.Context, orderID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf(keyOrderDetail, orderID)).Err()
}

func (c *Cache) PutPaymentMethods(ctx context.Context, methods []posapi.PaymentMethod) error {
	b, err := json.Marshal(methods)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPaymentMethods, b, TTLPaymentMethods).Err()
}

func (c *Cache) GetPaymentMethods(ctx context.Context) ([]posapi.PaymentMethod, bool, error) {
	s, err := c.rdb.Get(ctx, keyPaymentMethods).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var methods []posapi.PaymentMethod
	if err := json.Unmarshal([]byte(s), &methods); err != nil {
		return nil, false, err
	}
	return methods, true, nil
}

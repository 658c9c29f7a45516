package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const orderDetailTTL = 5 * time.Minute

// OrderCache keeps serialized order detail responses in Redis so repeated
// reads of the same order skip the database. A nil *OrderCache is a valid
// no-op, which keeps Redis optional at deploy time.
type OrderCache struct {
	rdb *redis.Client
}

func NewOrderCache(rdb *redis.Client) *OrderCache {
	if rdb == nil {
		return nil
	}
	return &OrderCache{rdb: rdb}
}

func orderDetailKey(orderID int) string {
	return fmt.Sprintf("order:detail:%d", orderID)
}

// GetOrder loads a cached order detail into dest. The second return is
// false on a miss or any Redis error; callers fall through to the source.
func (c *OrderCache) GetOrder(ctx context.Context, orderID int, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, orderDetailKey(orderID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *OrderCache) SetOrder(ctx context.Context, orderID int, v any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, orderDetailKey(orderID), raw, orderDetailTTL)
}

// InvalidateOrder drops the cached detail after any mutation so the next
// read reflects the new state.
func (c *OrderCache) InvalidateOrder(ctx context.Context, orderID int) {
	if c == nil {
		return
	}
	c.rdb.Del(ctx, orderDetailKey(orderID))
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	dom "kanban/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyList  = "task:list"
	keyItem  = "task:item:"
	keyEpoch = "task:epoch"
)

var errStaleEpoch = errors.New("cache epoch moved")

// TaskCache is a read-through cache of the task list and individual tasks in
// Redis. Writers must call Invalidate after every successful write.
//
// Readers take Epoch before reading the store and hand it to SetList/SetTask.
// Invalidate bumps the epoch, so a fill that raced a write is dropped instead
// of caching the pre-write state.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list or nil on a miss.
func (c *TaskCache) GetList(ctx context.Context) ([]dom.Task, error) {
	var list []dom.Task
	ok, err := c.get(ctx, keyList, &list)
	if err != nil || !ok {
		return nil, err
	}
	if list == nil {
		list = []dom.Task{}
	}
	return list, nil
}

// Epoch returns the invalidation counter. A missing key counts as 0.
func (c *TaskCache) Epoch(ctx context.Context) (int64, error) {
	n, err := c.rdb.Get(ctx, keyEpoch).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// SetList stores the list unless an invalidation happened after epoch was read.
func (c *TaskCache) SetList(ctx context.Context, epoch int64, list []dom.Task) error {
	if list == nil {
		list = []dom.Task{}
	}
	return c.set(ctx, epoch, keyList, list)
}

// GetTask returns the cached task or nil on a miss.
func (c *TaskCache) GetTask(ctx context.Context, id string) (*dom.Task, error) {
	var t dom.Task
	ok, err := c.get(ctx, keyItem+id, &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

// SetTask stores a single task unless an invalidation happened after epoch was read.
func (c *TaskCache) SetTask(ctx context.Context, epoch int64, t dom.Task) error {
	return c.set(ctx, epoch, keyItem+t.ID, t)
}

// Invalidate bumps the epoch and drops the list and the given tasks in one
// transaction.
func (c *TaskCache) Invalidate(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, keyList)
	for _, id := range ids {
		keys = append(keys, keyItem+id)
	}
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, keyEpoch)
		p.Del(ctx, keys...)
		return nil
	})
	return err
}

func (c *TaskCache) get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

// set writes key only while the epoch still equals epoch. WATCH aborts the
// write if an Invalidate lands between the check and EXEC.
func (c *TaskCache) set(ctx context.Context, epoch int64, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, keyEpoch).Int64()
		if errors.Is(err, redis.Nil) {
			cur, err = 0, nil
		}
		if err != nil {
			return err
		}
		if cur != epoch {
			return errStaleEpoch
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, c.ttl)
			return nil
		})
		return err
	}, keyEpoch)
	if errors.Is(err, errStaleEpoch) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

package cache

import (
	"context"
	"testing"
	"time"

	dom "kanban/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*TaskCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTaskCache(rdb, time.Minute), mr
}

func TestTaskCache_ListRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	got, err := c.GetList(ctx)
	if err != nil || got != nil {
		t.Fatalf("miss: got %v, %v", got, err)
	}

	list := []dom.Task{{ID: "a", Title: "A", Column: dom.ColumnTodo, Status: dom.StatusPending}}
	if err := c.SetList(ctx, 0, list); err != nil {
		t.Fatalf("SetList: %v", err)
	}
	got, err = c.GetList(ctx)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" || got[0].Column != dom.ColumnTodo {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestTaskCache_EmptyListIsAHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	if err := c.SetList(ctx, 0, nil); err != nil {
		t.Fatalf("SetList: %v", err)
	}
	got, err := c.GetList(ctx)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if got == nil {
		t.Fatal("cached empty list must not read back as a miss")
	}
}

func TestTaskCache_InvalidateDropsListAndItems(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_ = c.SetList(ctx, 0, []dom.Task{{ID: "a"}, {ID: "b"}})
	_ = c.SetTask(ctx, 0, dom.Task{ID: "a", Title: "A"})
	_ = c.SetTask(ctx, 0, dom.Task{ID: "b", Title: "B"})

	if err := c.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if mr.Exists(keyList) || mr.Exists(keyItem+"a") {
		t.Fatal("list and item a must be gone")
	}
	if !mr.Exists(keyItem + "b") {
		t.Fatal("item b must survive")
	}
	if got, _ := c.GetTask(ctx, "a"); got != nil {
		t.Fatalf("expected miss, got %+v", got)
	}
}

func TestTaskCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	_ = c.SetTask(ctx, 0, dom.Task{ID: "x"})
	mr.FastForward(2 * time.Minute)
	if got, _ := c.GetTask(ctx, "x"); got != nil {
		t.Fatal("entry must expire after ttl")
	}
}

func TestTaskCache_InvalidateBumpsEpoch(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	e0, err := c.Epoch(ctx)
	if err != nil || e0 != 0 {
		t.Fatalf("fresh epoch = %d, %v", e0, err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if e1, _ := c.Epoch(ctx); e1 != e0+1 {
		t.Fatalf("epoch = %d, want %d", e1, e0+1)
	}
}

func TestTaskCache_FillAfterInvalidateIsDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	epoch, _ := c.Epoch(ctx)
	// a write commits and invalidates while the reader is still on the store
	if err := c.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if err := c.SetList(ctx, epoch, []dom.Task{{ID: "a", Column: dom.ColumnTodo}}); err != nil {
		t.Fatalf("SetList: %v", err)
	}
	if err := c.SetTask(ctx, epoch, dom.Task{ID: "a"}); err != nil {
		t.Fatalf("SetTask: %v", err)
	}
	if mr.Exists(keyList) || mr.Exists(keyItem+"a") {
		t.Fatal("fill taken before the invalidation must not be cached")
	}

	fresh, _ := c.Epoch(ctx)
	if err := c.SetList(ctx, fresh, []dom.Task{{ID: "a", Column: dom.ColumnDoing}}); err != nil {
		t.Fatalf("SetList: %v", err)
	}
	if !mr.Exists(keyList) {
		t.Fatal("fill with the current epoch must be cached")
	}
}

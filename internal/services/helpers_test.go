package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"optilab/internal/repositories"
	"optilab/internal/workflow"
	"optilab/pkg/constants"
	"optilab/pkg/eventbus"
	"optilab/pkg/types"
	"optilab/pkg/utils"
)

var (
	branchX = types.Actor{ID: "X", Username: "Филиал X", Role: constants.RoleBranch}
	branchY = types.Actor{ID: "Y", Username: "Филиал Y", Role: constants.RoleBranch}
	lab     = types.Actor{ID: "lab", Username: "Лаборатория", Role: constants.RoleLab}
	admin   = types.Actor{ID: "admin", Username: "Админ", Role: constants.RoleAdmin}

	// понедельник
	t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	hits int
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	c.hits++
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	}
	c.sets++
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

type testEnv struct {
	store  *repositories.MemoryStore
	cache  *fakeCache
	bus    *eventbus.Bus
	clock  *testClock
	jobs   JobServiceInterface
	spares SparePartServiceInterface
	stats  StatsServiceInterface
	over   OverdueServiceInterface
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	env := &testEnv{
		store: repositories.NewMemoryStore(),
		cache: newFakeCache(),
		bus:   eventbus.New(logger),
		clock: &testClock{now: t0},
	}
	cal := workflow.NewCalendar(time.UTC, env.clock.Now)
	base := NewBaseService(env.cache, env.bus, logger)
	env.jobs = NewJobService(base, env.store, env.store, cal, logger)
	env.spares = NewSparePartService(base, env.store, cal, logger)
	env.stats = NewStatsService(base, env.store, cal, time.Minute, logger)
	env.over = NewOverdueService(base, env.store, cal, constants.DefaultOverdueThresholdHours, logger)
	t.Cleanup(env.bus.Wait)
	return env
}

func as(actor types.Actor) context.Context {
	return utils.WithActor(context.Background(), actor)
}

func statusPtr(s constants.JobStatus) *constants.JobStatus { return &s }

func strPtr(s string) *string { return &s }

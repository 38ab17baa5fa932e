// Package servicetest 提供 Service 层测试用的内存替身
// 缓存任务同步执行，广播只做记录，测试可以直接断言
package servicetest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"buddies_chat_server/pkg/errorx"
)

// FakeCache AsyncCacheService 的内存替身
// SubmitTask 同步执行，失效和回写的效果立即可见
type FakeCache struct {
	mu      sync.Mutex
	data    map[string]string
	sets    map[string][]string
	Deleted []string // 被删除过的键，按调用顺序
}

// NewFakeCache 创建空缓存
func NewFakeCache() *FakeCache {
	return &FakeCache{
		data: make(map[string]string),
		sets: make(map[string][]string),
	}
}

func (c *FakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *FakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *FakeCache) GetOrError(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", errorx.Newf(errorx.CodeNotFound, "缓存键不存在 %s", key)
	}
	return v, nil
}

func (c *FakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.Deleted = append(c.Deleted, key)
	return nil
}

func (c *FakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
			c.Deleted = append(c.Deleted, key)
		}
	}
	return nil
}

func (c *FakeCache) AddToSet(ctx context.Context, key string, members ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range members {
		if s, ok := m.(string); ok {
			c.sets[key] = append(c.sets[key], s)
		}
	}
	return nil
}

func (c *FakeCache) GetSetMembers(ctx context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sets[key]...), nil
}

func (c *FakeCache) RemoveFromSet(ctx context.Context, key string, members ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	remove := make(map[string]struct{}, len(members))
	for _, m := range members {
		if s, ok := m.(string); ok {
			remove[s] = struct{}{}
		}
	}
	kept := c.sets[key][:0]
	for _, s := range c.sets[key] {
		if _, ok := remove[s]; !ok {
			kept = append(kept, s)
		}
	}
	c.sets[key] = kept
	return nil
}

// SubmitTask 同步执行，测试里不需要等待异步任务
func (c *FakeCache) SubmitTask(action func()) {
	action()
}

// Has 键是否存在
func (c *FakeCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// WasDeleted 某个键是否被删除过
func (c *FakeCache) WasDeleted(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.Deleted {
		if k == key {
			return true
		}
	}
	return false
}

// BroadcastRecord 一次广播调用的记录
type BroadcastRecord struct {
	Channel string
	Event   string
	Payload json.RawMessage
}

// JoinRecord 一次 JoinUserChannels 调用的记录
type JoinRecord struct {
	Target  string
	UserIds []string
}

// FakeBroadcaster chat.Broadcaster 的记录替身
type FakeBroadcaster struct {
	mu     sync.Mutex
	Events []BroadcastRecord
	Joins  []JoinRecord
	// Err 非 nil 时 Broadcast 返回该错误，验证广播失败不影响写结果
	Err error
}

// NewFakeBroadcaster 创建空记录的广播替身
func NewFakeBroadcaster() *FakeBroadcaster {
	return &FakeBroadcaster{}
}

func (b *FakeBroadcaster) Broadcast(ctx context.Context, channel, event string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.Events = append(b.Events, BroadcastRecord{Channel: channel, Event: event, Payload: data})
	return nil
}

func (b *FakeBroadcaster) JoinUserChannels(target string, userIds []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Joins = append(b.Joins, JoinRecord{Target: target, UserIds: append([]string(nil), userIds...)})
}

// EventsFor 返回指定频道收到的全部事件名
func (b *FakeBroadcaster) EventsFor(channel string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, rec := range b.Events {
		if rec.Channel == channel {
			out = append(out, rec.Event)
		}
	}
	return out
}

package repository

import (
	"context"
	"sync"
)

// 持久化快照的键，互相独立，任一缺失不影响其余键的读取
const (
	CustomersKey = "customer_tracker_pro_v1"
	DarkModeKey  = "ctp_dark"
	ViewModeKey  = "ctp_view"
)

// KVStore 键值快照存储
// Load 读取失败时返回 ok=false，由调用方回退默认值；Save 的错误由调用方记录后忽略
type KVStore interface {
	Load(ctx context.Context, key string) ([]byte, bool)
	Save(ctx context.Context, key string, value []byte) error
}

// MemoryStore 内存键值存储，用于测试和无数据库环境
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load 读取键值
func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), value...), true
}

// Save 写入键值
func (s *MemoryStore) Save(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

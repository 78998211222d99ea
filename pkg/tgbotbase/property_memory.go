package tgbotbase

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type memoryPropertyKey struct {
	name string
	user UserID
	chat ChatID
}

// MemoryPropertyStorage is a process-local PropertyStorage used when no Redis is configured
type MemoryPropertyStorage struct {
	mu    sync.RWMutex
	props map[memoryPropertyKey]string
}

var _ PropertyStorage = &MemoryPropertyStorage{}

func NewMemoryPropertyStorage() *MemoryPropertyStorage {
	return &MemoryPropertyStorage{props: make(map[memoryPropertyKey]string)}
}

func (m *MemoryPropertyStorage) SetPropertyForUserInChat(ctx context.Context, name string, user UserID, chat ChatID, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[memoryPropertyKey{name: name, user: user, chat: chat}] = fmt.Sprint(value)
	return nil
}

func (m *MemoryPropertyStorage) SetPropertyForUser(ctx context.Context, name string, user UserID, value interface{}) error {
	return m.SetPropertyForUserInChat(ctx, name, user, ChatID(user), value)
}

func (m *MemoryPropertyStorage) SetPropertyForChat(ctx context.Context, name string, chat ChatID, value interface{}) error {
	return m.SetPropertyForUserInChat(ctx, name, 0, chat, value)
}

func (m *MemoryPropertyStorage) GetProperty(ctx context.Context, name string, user UserID, chat ChatID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, uc := range lookupOrder(user, chat) {
		if v, found := m.props[memoryPropertyKey{name: name, user: UserID(uc[0]), chat: ChatID(uc[1])}]; found {
			return v, nil
		}
	}
	return "", nil
}

func (m *MemoryPropertyStorage) GetEveryHavingProperty(ctx context.Context, name string) ([]PropertyValue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	props := make([]PropertyValue, 0)
	for k, v := range m.props {
		if k.name != name {
			continue
		}
		props = append(props, PropertyValue{Value: v, User: k.user, Chat: k.chat})
	}
	sort.Slice(props, func(i, j int) bool {
		if props[i].Chat != props[j].Chat {
			return props[i].Chat < props[j].Chat
		}
		return props[i].User < props[j].User
	})
	return props, nil
}

package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memory implements Store with in-process maps. It exists as a test double:
// it loses data on restart and offers no cross-process consistency, so it
// must never back a production deployment.
type Memory struct {
	mu       sync.RWMutex
	entities map[string]map[string]string
	expiry   map[string]time.Time
	sets     map[string]map[string]struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entities: make(map[string]map[string]string),
		expiry:   make(map[string]time.Time),
		sets:     make(map[string]map[string]struct{}),
	}
}

// evict drops an entity whose expiry has passed. Callers hold mu.
func (m *Memory) evict(entity string) {
	if exp, ok := m.expiry[entity]; ok && time.Now().After(exp) {
		delete(m.entities, entity)
		delete(m.expiry, entity)
	}
}

func (m *Memory) SetAttribute(_ context.Context, entity, attribute, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evict(entity)
	attrs, ok := m.entities[entity]
	if !ok {
		attrs = make(map[string]string)
		m.entities[entity] = attrs
	}
	attrs[attribute] = value
	if ttl > 0 {
		m.expiry[entity] = time.Now().Add(ttl)
	}
	return nil
}

func (m *Memory) GetAttribute(_ context.Context, entity, attribute string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evict(entity)
	val, ok := m.entities[entity][attribute]
	return val, ok, nil
}

func (m *Memory) GetAllAttributes(_ context.Context, entity string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evict(entity)
	attrs := make(map[string]string, len(m.entities[entity]))
	for k, v := range m.entities[entity] {
		attrs[k] = v
	}
	return attrs, nil
}

func (m *Memory) DeleteAttribute(_ context.Context, entity, attribute string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entities[entity], attribute)
	return nil
}

func (m *Memory) DeleteEntity(_ context.Context, entity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entities, entity)
	delete(m.expiry, entity)
	return nil
}

func (m *Memory) ScanEntities(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entities []string
	for entity := range m.entities {
		m.evict(entity)
		if _, ok := m.entities[entity]; ok && strings.HasPrefix(entity, prefix) {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}

func (m *Memory) AddToSet(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	set[member] = struct{}{}
	return nil
}

func (m *Memory) RemoveFromSet(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets[key], member)
	return nil
}

func (m *Memory) SetMembers(_ context.Context, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		members = append(members, member)
	}
	return members, nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)

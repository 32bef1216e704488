// Package history manages per-session conversation transcripts in the
// key-attribute store. It is the only component that reads or mutates a
// session's message namespace.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Timtroll/llm/internal/domain"
	"github.com/Timtroll/llm/internal/store"
)

const slotPrefix = "message:"

// Key builds the storage entity id for a user's session.
func Key(username, sessionID string) string {
	return "history:" + username + ":" + sessionID
}

// Manager reads, appends and trims session transcripts.
type Manager struct {
	store store.Store
	ttl   time.Duration
}

// NewManager creates a history manager. Each appended message carries the
// given TTL so abandoned sessions self-evict.
func NewManager(s store.Store, ttl time.Duration) *Manager {
	return &Manager{store: s, ttl: ttl}
}

// Append writes a message under a unique slot within the session namespace.
// The slot key combines the message timestamp with a random suffix so two
// concurrent writers never overwrite each other, they interleave.
func (m *Manager) Append(ctx context.Context, key string, msg domain.Message) error {
	slot := slotPrefix + msg.Timestamp + ":" + uuid.NewString()[:8]
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := m.store.SetAttribute(ctx, key, slot, string(payload), m.ttl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Load reads every message in the session namespace, sorted by timestamp
// ascending. Write order is irrelevant, ordering is imposed at read time.
// Slots that fail to parse are skipped rather than poisoning the session.
func (m *Manager) Load(ctx context.Context, key string) ([]domain.Message, error) {
	attrs, err := m.store.GetAllAttributes(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	messages := make([]domain.Message, 0, len(attrs))
	for slot, value := range attrs {
		if !strings.HasPrefix(slot, slotPrefix) {
			continue
		}
		var msg domain.Message
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
	return messages, nil
}

// Reset deletes the entire session namespace.
func (m *Manager) Reset(ctx context.Context, key string) error {
	if err := m.store.DeleteEntity(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// PruneRole deletes every stored message with the given role. Used by the
// single-assistant-turn presentation mode, which keeps exactly one assistant
// entry per exchange.
func (m *Manager) PruneRole(ctx context.Context, key string, role domain.Role) error {
	attrs, err := m.store.GetAllAttributes(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	for slot, value := range attrs {
		if !strings.HasPrefix(slot, slotPrefix) {
			continue
		}
		var msg domain.Message
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			continue
		}
		if msg.Role != role {
			continue
		}
		if err := m.store.DeleteAttribute(ctx, key, slot); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	return nil
}

// Package store provides the key-attribute store used for conversation
// history, user accounts and model metadata. Entities are namespaced hash
// maps (history:<user>:<session>, user:<name>, model:<name>) with optional
// per-write expiry.
package store

import (
	"context"
	"time"
)

// Store is the entity-attribute-value interface backing all persistence.
// The production drivers are Redis and SQLite; Memory exists only as a test
// double and must not be used as the production store.
type Store interface {
	// SetAttribute writes one attribute of an entity. A non-zero ttl
	// refreshes the entity's expiry.
	SetAttribute(ctx context.Context, entity, attribute, value string, ttl time.Duration) error

	// GetAttribute reads one attribute. The bool reports whether the
	// attribute exists.
	GetAttribute(ctx context.Context, entity, attribute string) (string, bool, error)

	// GetAllAttributes reads every attribute of an entity. A missing entity
	// yields an empty map, not an error.
	GetAllAttributes(ctx context.Context, entity string) (map[string]string, error)

	// DeleteAttribute removes one attribute from an entity.
	DeleteAttribute(ctx context.Context, entity, attribute string) error

	// DeleteEntity removes the entity and all its attributes.
	DeleteEntity(ctx context.Context, entity string) error

	// ScanEntities lists entity ids beginning with the given prefix.
	ScanEntities(ctx context.Context, prefix string) ([]string, error)

	// AddToSet, RemoveFromSet and SetMembers maintain plain string sets,
	// used for the model directory index.
	AddToSet(ctx context.Context, key, member string) error
	RemoveFromSet(ctx context.Context, key, member string) error
	SetMembers(ctx context.Context, key string) ([]string, error)

	Close() error
}

// New creates a store for the given driver.
func New(driver, redisURL, sqlitePath string) (Store, error) {
	if driver == "sqlite" {
		return NewSQLiteStore(sqlitePath)
	}
	return NewRedisStore(redisURL)
}

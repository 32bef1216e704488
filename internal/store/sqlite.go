package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store on a single SQLite database. It is the
// embedded alternative to Redis for single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS eav (
			entity TEXT NOT NULL,
			attribute TEXT NOT NULL,
			value TEXT NOT NULL,
			expires_at INTEGER,
			PRIMARY KEY (entity, attribute)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_eav_entity ON eav(entity)`,
		`CREATE TABLE IF NOT EXISTS eav_sets (
			key TEXT NOT NULL,
			member TEXT NOT NULL,
			PRIMARY KEY (key, member)
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// purgeExpired drops attributes of an entity whose expiry has passed.
// Expiry is enforced lazily on access, there is no background sweeper.
func (s *SQLiteStore) purgeExpired(ctx context.Context, entity string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM eav WHERE entity = ? AND expires_at IS NOT NULL AND expires_at < ?`,
		entity, time.Now().UnixMilli())
	return err
}

func (s *SQLiteStore) SetAttribute(ctx context.Context, entity, attribute, value string, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO eav (entity, attribute, value, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(entity, attribute) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		entity, attribute, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", entity, attribute, err)
	}
	return nil
}

func (s *SQLiteStore) GetAttribute(ctx context.Context, entity, attribute string) (string, bool, error) {
	if err := s.purgeExpired(ctx, entity); err != nil {
		return "", false, fmt.Errorf("failed to purge %s: %w", entity, err)
	}
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM eav WHERE entity = ? AND attribute = ?`,
		entity, attribute).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s.%s: %w", entity, attribute, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) GetAllAttributes(ctx context.Context, entity string) (map[string]string, error) {
	if err := s.purgeExpired(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to purge %s: %w", entity, err)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT attribute, value FROM eav WHERE entity = ?`, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to get attributes of %s: %w", entity, err)
	}
	defer rows.Close()

	attrs := make(map[string]string)
	for rows.Next() {
		var attribute, value string
		if err := rows.Scan(&attribute, &value); err != nil {
			return nil, fmt.Errorf("failed to scan attribute of %s: %w", entity, err)
		}
		attrs[attribute] = value
	}
	return attrs, rows.Err()
}

func (s *SQLiteStore) DeleteAttribute(ctx context.Context, entity, attribute string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM eav WHERE entity = ? AND attribute = ?`, entity, attribute)
	if err != nil {
		return fmt.Errorf("failed to delete %s.%s: %w", entity, attribute, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteEntity(ctx context.Context, entity string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM eav WHERE entity = ?`, entity)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	return nil
}

func (s *SQLiteStore) ScanEntities(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT entity FROM eav
		 WHERE entity LIKE ? AND (expires_at IS NULL OR expires_at >= ?)`,
		prefix+"%", time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s*: %w", prefix, err)
	}
	defer rows.Close()

	var entities []string
	for rows.Next() {
		var entity string
		if err := rows.Scan(&entity); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func (s *SQLiteStore) AddToSet(ctx context.Context, key, member string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO eav_sets (key, member) VALUES (?, ?)`, key, member)
	if err != nil {
		return fmt.Errorf("failed to add to set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) RemoveFromSet(ctx context.Context, key, member string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM eav_sets WHERE key = ? AND member = ?`, key, member)
	if err != nil {
		return fmt.Errorf("failed to remove from set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member FROM eav_sets WHERE key = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read set %s: %w", key, err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("failed to scan member of %s: %w", key, err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)

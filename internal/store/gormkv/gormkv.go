// Package gormkv is the SQL-backed KV store. One row per key; every write
// is an upsert that fully replaces the row, so readers never observe a
// partial value.
package gormkv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvEntry struct {
	Key       string         `gorm:"column:key;primaryKey;size:128"`
	Value     datatypes.JSON `gorm:"column:value"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (kvEntry) TableName() string { return "kv_entries" }

type Store struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a file-backed SQLite store. Use ":memory:"
// for tests.
func OpenSQLite(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	return newStore(db)
}

// OpenPostgres connects with a full DSN.
func OpenPostgres(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newStore(db)
}

// New wraps an existing gorm handle, migrating the KV table. The journal
// shares the same handle when the SQL backend is active.
func New(db *gorm.DB) (*Store, error) {
	return newStore(db)
}

func newStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle so sibling components (the finish
// journal) can live in the same database.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) GetString(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false, fmt.Errorf("decode value for %q: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) SetString(ctx context.Context, key, value string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	return s.set(ctx, key, raw)
}

func (s *Store) GetStringList(ctx context.Context, key string) ([]string, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode list for %q: %w", key, err)
	}
	return v, nil
}

func (s *Store) SetStringList(ctx context.Context, key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode list for %q: %w", key, err)
	}
	return s.set(ctx, key, raw)
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).
		Where("key IN ?", keys).
		Delete(&kvEntry{}).Error; err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) get(ctx context.Context, key string) (datatypes.JSON, bool, error) {
	var row kvEntry
	err := s.db.WithContext(ctx).
		Where("key = ?", key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *Store) set(ctx context.Context, key string, raw []byte) error {
	row := kvEntry{Key: key, Value: datatypes.JSON(raw), UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

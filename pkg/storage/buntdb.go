package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/raykavin/coviddash/pkg/core"
	"github.com/tidwall/buntdb"
)

// BuntCache implements the core.Cache interface using BuntDB
type BuntCache struct {
	db *buntdb.DB
}

// CacheFromMemory creates an in-memory cache
func CacheFromMemory() (*BuntCache, error) {
	return NewBuntCache(":memory:")
}

// CacheFromFile creates a file-based cache
func CacheFromFile(file string) (*BuntCache, error) {
	return NewBuntCache(file)
}

// NewBuntCache creates a new BuntDB cache instance
func NewBuntCache(sourceFile string) (*BuntCache, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	return &BuntCache{db: db}, nil
}

var _ core.Cache = (*BuntCache)(nil)

// Get returns the cached response stored under key. Expired entries are
// reported as missing.
func (b *BuntCache) Get(key string) ([]byte, bool, error) {
	var content string

	err := b.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(key)
		if err != nil {
			return err
		}
		content = value
		return nil
	})

	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return []byte(content), true, nil
}

// Set stores value under key for ttl
func (b *BuntCache) Set(key string, value []byte, ttl time.Duration) error {
	var opts *buntdb.SetOptions
	if ttl > 0 {
		opts = &buntdb.SetOptions{Expires: true, TTL: ttl}
	}

	return b.db.Update(func(tx *buntdb.Tx) error {
		if _, _, err := tx.Set(key, string(value), opts); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
		return nil
	})
}

// Delete removes key from the cache, missing keys are ignored
func (b *BuntCache) Delete(key string) error {
	err := b.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		return err
	})

	if err != nil && !errors.Is(err, buntdb.ErrNotFound) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Len counts the live entries of the cache
func (b *BuntCache) Len() (int, error) {
	var count int
	err := b.db.View(func(tx *buntdb.Tx) error {
		var err error
		count, err = tx.Len()
		return err
	})
	return count, err
}

// Close closes the database connection
func (b *BuntCache) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bolt stores values in a single bucket of a bbolt database.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the database file at path.
func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewBolt(db), nil
}

// NewBolt wraps an already open database.
func NewBolt(db *bolt.DB) *Bolt {
	return &Bolt{db: db}
}

// Set saves value under key.
func (s *Bolt) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
}

// Get retrieves the value under key.
func (s *Bolt) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}

		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		// v is only valid inside the transaction.
		value = string(v)
		found = true
		return nil
	})

	return value, found, err
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

package session

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("session")

// BoltStore is a file-backed [Store] using a single bolt bucket.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the bolt database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt: %v", ErrStoreUnavailable, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create bucket: %v", ErrStoreUnavailable, err)
	}

	return &BoltStore{db: db}, nil
}

// Get reads key inside a read-only transaction.
func (s *BoltStore) Get(_ context.Context, key string) (string, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v != nil {
			// v is only valid inside the transaction.
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return "", ErrNotFound
	}
	return value, nil
}

// Set writes key in its own update transaction.
func (s *BoltStore) Set(_ context.Context, key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BoltStore) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

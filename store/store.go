// Package store keeps a library of named patches in a bbolt database.
package store

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/gordonklaus/kiwi/atom"
)

var ErrNotFound = errors.New("patch not found")

const bucketPatches = "patches"

var initDB = map[string]func(*bolt.Tx) error{
	"initialize patch table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketPatches))
		return err
	},
}

// Store is a patch library.  Patches are stored as YAML.
type Store struct {
	db *bolt.DB
}

// Open opens the library at path, creating it if needed.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	return &Store{db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save stores d under name, replacing any patch of that name.
func (s *Store) Save(name string, d atom.Dict) error {
	if name == "" {
		return errors.New("store: empty patch name")
	}
	data, err := atom.Marshal(d)
	if err != nil {
		return fmt.Errorf("store: %s: %w", name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPatches)).Put([]byte(name), data)
	})
}

// Load returns the patch called name.
func (s *Store) Load(name string) (atom.Dict, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketPatches)).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	d, err := atom.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", name, err)
	}
	return d, nil
}

// List returns the names of the stored patches in order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPatches)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// Delete removes the patch called name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketPatches))
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return b.Delete([]byte(name))
	})
}

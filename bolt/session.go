package bolt

import (
	"time"

	"github.com/boltdb/bolt"
)

var sessionBucket = []byte("session")

// SessionStore persists the auth session in a bolt file so it survives
// process restarts. It implements auth.Store.
type SessionStore struct {
	store *bolt.DB
}

func Open(path string) (*SessionStore, error) {
	store, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = store.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &SessionStore{store: store}, nil
}

func (s *SessionStore) Close() error {
	return s.store.Close()
}

func (s *SessionStore) Get(key string) (string, error) {
	var value string
	err := s.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)

		if data := bucket.Get([]byte(key)); data != nil {
			value = string(data)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

func (s *SessionStore) Set(key, value string) error {
	return s.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)
		return bucket.Put([]byte(key), []byte(value))
	})
}

func (s *SessionStore) Delete(keys ...string) error {
	return s.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)

		for _, key := range keys {
			if err := bucket.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

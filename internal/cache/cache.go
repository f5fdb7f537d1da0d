// Package cache provides a persistent completion cache so re-running a
// conversion does not repeat identical backend calls.
package cache

import (
	"context"
	"crypto/sha256"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/EricWay1024/lazy-latex/internal/backend"
	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

var bucketCompletions = []byte("completions")

// Store is a bbolt-backed key/value store of completions keyed by the
// SHA-256 of the prompt pair.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		logger.Error("failed to open cache database", err, logger.String("path", path))
		return nil, types.NewAppError(types.ErrInternal, "failed to open cache database", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCompletions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, types.NewAppError(types.ErrInternal, "failed to create cache bucket", err)
	}

	logger.Info("completion cache opened", logger.String("path", path))
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(system, user string) []byte {
	h := sha256.New()
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(user))
	return h.Sum(nil)
}

// Get returns the cached completion for a prompt pair, if any.
func (s *Store) Get(system, user string) (string, bool) {
	var value []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketCompletions).Get(key(system, user)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if value == nil {
		return "", false
	}
	return string(value), true
}

// Put stores a completion for a prompt pair. Failures are logged, not
// returned: a broken cache must never fail a conversion.
func (s *Store) Put(system, user, completion string) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCompletions).Put(key(system, user), []byte(completion))
	})
	if err != nil {
		logger.Warn("failed to store completion in cache", logger.Err(err))
	}
}

// CachingBackend decorates a backend with the completion cache.
type CachingBackend struct {
	inner backend.Backend
	store *Store
}

// Wrap returns a backend that consults the store before calling inner.
func Wrap(inner backend.Backend, store *Store) *CachingBackend {
	return &CachingBackend{inner: inner, store: store}
}

// Name returns the decorated backend's name.
func (c *CachingBackend) Name() string {
	return c.inner.Name()
}

// Complete returns the cached completion when present, otherwise delegates
// and stores the fresh result. Errors are never cached.
func (c *CachingBackend) Complete(ctx context.Context, system, user string) (string, error) {
	if cached, ok := c.store.Get(system, user); ok {
		logger.Debug("completion cache hit", logger.Int("length", len(cached)))
		return cached, nil
	}

	result, err := c.inner.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}

	c.store.Put(system, user, result)
	return result, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/vitaldiary/entryvault/internal/errors"
)

// BadgerAdapter implements Adapter on an embedded BadgerDB store, the
// durable store for a single local installation. Keys are laid out as
// "namespace/id". Safe for concurrent use.
type BadgerAdapter struct {
	db *badger.DB
}

// NewBadgerAdapter opens (or creates) the store at path. SyncWrites is on:
// a wrapped key record acknowledged but lost to a crash would strand every
// envelope, so write latency is the right trade.
func NewBadgerAdapter(path string) (*BadgerAdapter, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &BadgerAdapter{db: db}, nil
}

// Close releases the underlying store.
func (b *BadgerAdapter) Close() error {
	return b.db.Close()
}

// Get returns the value stored under (namespace, id).
func (b *BadgerAdapter) Get(ctx context.Context, namespace, id string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(namespace, id))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", namespace, id, err)
	}
	return value, nil
}

// Put stores value under (namespace, id), replacing any previous value.
func (b *BadgerAdapter) Put(ctx context.Context, namespace, id string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storeKey(namespace, id), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", namespace, id, err)
	}
	return nil
}

// Delete removes (namespace, id). Deleting an absent id is not an error.
func (b *BadgerAdapter) Delete(ctx context.Context, namespace, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(storeKey(namespace, id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", namespace, id, err)
	}
	return nil
}

// List returns the ids present in namespace, in lexicographic order.
func (b *BadgerAdapter) List(ctx context.Context, namespace string) ([]string, error) {
	prefix := []byte(namespace + "/")
	var ids []string

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, namespace+"/"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", namespace, err)
	}
	return ids, nil
}

// storeKey builds the flat key for (namespace, id).
func storeKey(namespace, id string) []byte {
	return []byte(namespace + "/" + id)
}

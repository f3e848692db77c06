// Package storage provides the opaque key-value persistence contract the
// vault writes through, plus an embedded BadgerDB implementation and an
// in-memory implementation for tests.
//
// The vault assumes nothing beyond "last successful Put wins"; there are
// no transactional guarantees in the contract even when an implementation
// happens to offer them.
package storage

import (
	"context"
)

// Namespaces used by the vault.
const (
	// NamespaceKeyring holds the single wrapped key record.
	NamespaceKeyring = "keyring"
	// NamespaceEntries holds one encrypted envelope per record id.
	NamespaceEntries = "entries"
	// NamespaceAudit holds audit events.
	NamespaceAudit = "audit"
)

// Adapter is the persistence contract consumed by the vault. Values are
// text-safe byte payloads; binary material is run through the encoding
// codec before it reaches an adapter.
type Adapter interface {
	// Get returns the value stored under (namespace, id), or
	// errors.ErrNotFound when absent.
	Get(ctx context.Context, namespace, id string) ([]byte, error)

	// Put stores value under (namespace, id), replacing any previous value.
	Put(ctx context.Context, namespace, id string, value []byte) error

	// Delete removes (namespace, id). Deleting an absent id is not an error.
	Delete(ctx context.Context, namespace, id string) error

	// List returns the ids present in namespace, in lexicographic order.
	List(ctx context.Context, namespace string) ([]string, error)
}

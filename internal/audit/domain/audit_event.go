// Package domain defines the audit event model.
//
// Audit events are deliberately content-free: they carry an action, an
// outcome, a timestamp and at most a coarse error category. They never
// include entry content, record identifiers' payloads, passphrases,
// derived keys or ciphertext, so a leaked audit trail reveals usage
// patterns at worst.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the key-lifecycle or crypto operation being audited.
type Action string

const (
	ActionInitialize   Action = "initialize"
	ActionUnlock       Action = "unlock"
	ActionGenerateKey  Action = "generate_key"
	ActionWrapKey      Action = "wrap_key"
	ActionUnwrapKey    Action = "unwrap_key"
	ActionEncryptEntry Action = "encrypt_entry"
	ActionDecryptEntry Action = "decrypt_entry"
	ActionDeleteEntry  Action = "delete_entry"
	ActionRotateStart  Action = "rotate_start"
	ActionRotateCommit Action = "rotate_commit"
	ActionReset        Action = "reset"
)

// Outcome records whether the audited operation succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Coarse error categories attached to failure events. Categories are the
// only failure detail an event may carry; raw error text never appears.
const (
	ErrorKindBackendUnavailable = "backend_unavailable"
	ErrorKindInvalidRecord      = "invalid_record"
	ErrorKindUnwrapFailed       = "unwrap_failed"
	ErrorKindIntegrity          = "integrity"
	ErrorKindRotation           = "rotation"
	ErrorKindLocked             = "locked"
	ErrorKindStorage            = "storage"
	ErrorKindInvalidInput       = "invalid_input"
	ErrorKindInternal           = "internal"
)

// Event is one audited operation.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Outcome   Outcome   `json:"outcome"`
	ErrorKind string    `json:"errorKind,omitempty"`
}

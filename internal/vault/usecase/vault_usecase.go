package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	auditDomain "github.com/vitaldiary/entryvault/internal/audit/domain"
	auditUseCase "github.com/vitaldiary/entryvault/internal/audit/usecase"
	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
	cryptoService "github.com/vitaldiary/entryvault/internal/crypto/service"
	apperrors "github.com/vitaldiary/entryvault/internal/errors"
	"github.com/vitaldiary/entryvault/internal/vault/repository"
)

// vaultUseCase implements Vault.
//
// mu guards the unwrapped DEK and the selected backend: encrypt and
// decrypt paths hold the read lock, Initialize, RotatePassphrase, Reset
// and Close hold the write lock. recordLocks serializes operations on the
// same record id so concurrent writes to one entry cannot interleave
// their Put calls; operations on different records do not contend.
type vaultUseCase struct {
	keyringRepo  repository.KeyringRepository
	envelopeRepo repository.EnvelopeRepository
	keyManager   cryptoService.KeyManager
	deriver      cryptoService.KeyDeriver
	selector     cryptoService.BackendSelector
	emitter      auditUseCase.Emitter
	logger       *slog.Logger
	algorithm    cryptoDomain.Algorithm
	kdfParams    cryptoDomain.KdfParams

	mu       sync.RWMutex
	dek      []byte
	backend  cryptoService.CipherBackend
	rotating atomic.Bool

	recordLocks sync.Map // record id -> *sync.Mutex
}

// NewVault creates a Vault. algorithm is the configured AEAD algorithm for
// new envelopes and key wraps; kdfParams is the configured derivation
// floor, raised element-wise over persisted params on rotation.
func NewVault(
	keyringRepo repository.KeyringRepository,
	envelopeRepo repository.EnvelopeRepository,
	keyManager cryptoService.KeyManager,
	deriver cryptoService.KeyDeriver,
	selector cryptoService.BackendSelector,
	emitter auditUseCase.Emitter,
	logger *slog.Logger,
	algorithm cryptoDomain.Algorithm,
	kdfParams cryptoDomain.KdfParams,
) Vault {
	return &vaultUseCase{
		keyringRepo:  keyringRepo,
		envelopeRepo: envelopeRepo,
		keyManager:   keyManager,
		deriver:      deriver,
		selector:     selector,
		emitter:      emitter,
		logger:       logger,
		algorithm:    algorithm,
		kdfParams:    kdfParams,
	}
}

// Initialize unlocks the vault with passphrase, generating key material on
// a first run.
func (v *vaultUseCase) Initialize(ctx context.Context, passphrase []byte) error {
	if len(passphrase) == 0 {
		v.emitter.Record(ctx, auditDomain.ActionInitialize, auditDomain.OutcomeFailure, auditDomain.ErrorKindInvalidInput)
		return apperrors.Wrap(apperrors.ErrInvalidInput, "empty passphrase")
	}

	backend, err := v.selector.SelectBackend(v.algorithm)
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionInitialize, auditDomain.OutcomeFailure, auditDomain.ErrorKindBackendUnavailable)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	record, err := v.keyringRepo.Get(ctx)
	switch {
	case err == nil:
		return v.unlockLocked(ctx, passphrase, record, backend)
	case apperrors.Is(err, apperrors.ErrNotFound):
		return v.firstRunLocked(ctx, passphrase, backend)
	default:
		v.emitter.Record(ctx, auditDomain.ActionInitialize, auditDomain.OutcomeFailure, errorKind(err))
		return err
	}
}

// firstRunLocked generates the DEK and salt, wraps the DEK under the
// derived KEK and persists the record. Caller holds the write lock.
func (v *vaultUseCase) firstRunLocked(
	ctx context.Context,
	passphrase []byte,
	backend cryptoService.CipherBackend,
) error {
	dek, err := v.keyManager.GenerateDek()
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionGenerateKey, auditDomain.OutcomeFailure, auditDomain.ErrorKindInternal)
		return err
	}
	v.emitter.Record(ctx, auditDomain.ActionGenerateKey, auditDomain.OutcomeSuccess, "")

	salt, err := v.keyManager.GenerateSalt()
	if err != nil {
		cryptoDomain.Zero(dek)
		return err
	}

	kek, err := v.deriver.Derive(passphrase, salt, v.kdfParams)
	if err != nil {
		cryptoDomain.Zero(dek)
		v.emitter.Record(ctx, auditDomain.ActionInitialize, auditDomain.OutcomeFailure, errorKind(err))
		return err
	}

	record, err := v.keyManager.Wrap(dek, kek, salt, v.algorithm, v.kdfParams)
	cryptoDomain.Zero(kek)
	if err != nil {
		cryptoDomain.Zero(dek)
		v.emitter.Record(ctx, auditDomain.ActionWrapKey, auditDomain.OutcomeFailure, errorKind(err))
		return err
	}
	v.emitter.Record(ctx, auditDomain.ActionWrapKey, auditDomain.OutcomeSuccess, "")

	if err := v.keyringRepo.Save(ctx, &record); err != nil {
		cryptoDomain.Zero(dek)
		v.emitter.Record(ctx, auditDomain.ActionInitialize, auditDomain.OutcomeFailure, auditDomain.ErrorKindStorage)
		return err
	}

	v.installKeyLocked(dek, backend)
	v.emitter.Record(ctx, auditDomain.ActionInitialize, auditDomain.OutcomeSuccess, "")
	v.logger.Info("vault initialized", slog.String("algorithm", string(v.algorithm)))
	return nil
}

// unlockLocked derives the KEK from passphrase using the persisted salt
// and parameters and unwraps the DEK. Caller holds the write lock.
func (v *vaultUseCase) unlockLocked(
	ctx context.Context,
	passphrase []byte,
	record *cryptoDomain.WrappedKeyRecord,
	backend cryptoService.CipherBackend,
) error {
	kek, err := v.deriver.Derive(passphrase, record.Salt, record.KdfParams)
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionUnlock, auditDomain.OutcomeFailure, errorKind(err))
		return err
	}

	dek, err := v.keyManager.Unwrap(record, kek)
	cryptoDomain.Zero(kek)
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionUnwrapKey, auditDomain.OutcomeFailure, errorKind(err))
		return err
	}
	v.emitter.Record(ctx, auditDomain.ActionUnwrapKey, auditDomain.OutcomeSuccess, "")

	v.installKeyLocked(dek, backend)
	v.emitter.Record(ctx, auditDomain.ActionUnlock, auditDomain.OutcomeSuccess, "")
	return nil
}

// installKeyLocked replaces the in-memory DEK, zeroing any previous one.
// Caller holds the write lock.
func (v *vaultUseCase) installKeyLocked(dek []byte, backend cryptoService.CipherBackend) {
	cryptoDomain.Zero(v.dek)
	v.dek = dek
	v.backend = backend
}

// EncryptEntry encrypts entry and persists the envelope under recordID.
func (v *vaultUseCase) EncryptEntry(
	ctx context.Context,
	recordID string,
	entry map[string]any,
) (*cryptoDomain.EncryptedEnvelope, error) {
	if recordID == "" {
		v.emitter.Record(ctx, auditDomain.ActionEncryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindInvalidInput)
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "empty record id")
	}

	lock := v.recordLock(recordID)
	lock.Lock()
	defer lock.Unlock()

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.dek == nil {
		v.emitter.Record(ctx, auditDomain.ActionEncryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindLocked)
		return nil, cryptoDomain.ErrVaultLocked
	}

	// encoding/json sorts map keys, so equal entries serialize to equal
	// bytes independent of insertion order.
	plaintext, err := json.Marshal(entry)
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionEncryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindInvalidInput)
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	defer cryptoDomain.Zero(plaintext)

	cipher, err := v.backend.CreateCipher(v.dek)
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionEncryptEntry, auditDomain.OutcomeFailure, errorKind(err))
		return nil, err
	}

	// The record id rides along as AAD so an envelope copied under a
	// different id fails authentication.
	sealed, nonce, err := cipher.Encrypt(plaintext, []byte(recordID))
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionEncryptEntry, auditDomain.OutcomeFailure, errorKind(err))
		return nil, err
	}

	ciphertext, tag := cryptoService.SplitAuthTag(sealed)
	envelope := &cryptoDomain.EncryptedEnvelope{
		RecordID:   recordID,
		Version:    cryptoDomain.EnvelopeVersion,
		Algorithm:  v.backend.Algorithm(),
		Nonce:      nonce,
		Ciphertext: ciphertext,
		AuthTag:    tag,
		CreatedAt:  time.Now().UTC(),
	}

	if err := v.envelopeRepo.Save(ctx, envelope); err != nil {
		v.emitter.Record(ctx, auditDomain.ActionEncryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindStorage)
		return nil, err
	}

	v.emitter.Record(ctx, auditDomain.ActionEncryptEntry, auditDomain.OutcomeSuccess, "")
	return envelope, nil
}

// DecryptEntry authenticates and decrypts envelope.
func (v *vaultUseCase) DecryptEntry(
	ctx context.Context,
	envelope *cryptoDomain.EncryptedEnvelope,
) (map[string]any, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.decryptLocked(ctx, envelope)
}

// GetEntry loads and decrypts the stored envelope for recordID.
func (v *vaultUseCase) GetEntry(ctx context.Context, recordID string) (map[string]any, error) {
	lock := v.recordLock(recordID)
	lock.Lock()
	defer lock.Unlock()

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.dek == nil {
		v.emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindLocked)
		return nil, cryptoDomain.ErrVaultLocked
	}

	envelope, err := v.envelopeRepo.Get(ctx, recordID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			v.emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeFailure, errorKind(err))
		}
		return nil, err
	}
	return v.decryptLocked(ctx, envelope)
}

// decryptLocked decrypts envelope with the in-memory DEK. Caller holds at
// least the read lock.
func (v *vaultUseCase) decryptLocked(
	ctx context.Context,
	envelope *cryptoDomain.EncryptedEnvelope,
) (map[string]any, error) {
	if v.dek == nil {
		v.emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindLocked)
		return nil, cryptoDomain.ErrVaultLocked
	}

	if err := envelope.Validate(); err != nil {
		v.emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindIntegrity)
		return nil, err
	}

	backend := v.backend
	if envelope.Algorithm != backend.Algorithm() {
		selected, err := v.selector.SelectBackend(envelope.Algorithm)
		if err != nil {
			v.emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindBackendUnavailable)
			return nil, err
		}
		backend = selected
	}

	cipher, err := backend.CreateCipher(v.dek)
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeFailure, errorKind(err))
		return nil, err
	}

	sealed := cryptoService.JoinAuthTag(envelope.Ciphertext, envelope.AuthTag)
	plaintext, err := cipher.Decrypt(sealed, envelope.Nonce, []byte(envelope.RecordID))
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindIntegrity)
		return nil, apperrors.Wrap(cryptoDomain.ErrIntegrityCheckFailed, "envelope authentication failed")
	}
	defer cryptoDomain.Zero(plaintext)

	var entry map[string]any
	if err := json.Unmarshal(plaintext, &entry); err != nil {
		v.emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindIntegrity)
		return nil, apperrors.Wrap(cryptoDomain.ErrIntegrityCheckFailed, "authenticated payload is not a valid entry")
	}

	v.emitter.Record(ctx, auditDomain.ActionDecryptEntry, auditDomain.OutcomeSuccess, "")
	return entry, nil
}

// DeleteEntry removes the stored envelope for recordID.
func (v *vaultUseCase) DeleteEntry(ctx context.Context, recordID string) error {
	lock := v.recordLock(recordID)
	lock.Lock()
	defer lock.Unlock()

	if err := v.envelopeRepo.Delete(ctx, recordID); err != nil {
		v.emitter.Record(ctx, auditDomain.ActionDeleteEntry, auditDomain.OutcomeFailure, auditDomain.ErrorKindStorage)
		return err
	}
	v.emitter.Record(ctx, auditDomain.ActionDeleteEntry, auditDomain.OutcomeSuccess, "")
	return nil
}

// RotatePassphrase re-wraps the DEK under a key derived from
// newPassphrase with a fresh salt. Envelopes are untouched: the DEK does
// not change, so nothing needs re-encryption.
func (v *vaultUseCase) RotatePassphrase(ctx context.Context, oldPassphrase, newPassphrase []byte) error {
	if len(oldPassphrase) == 0 || len(newPassphrase) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "empty passphrase")
	}

	if !v.rotating.CompareAndSwap(false, true) {
		v.emitter.Record(ctx, auditDomain.ActionRotateStart, auditDomain.OutcomeFailure, auditDomain.ErrorKindRotation)
		return cryptoDomain.ErrRotationInProgress
	}
	defer v.rotating.Store(false)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.emitter.Record(ctx, auditDomain.ActionRotateStart, auditDomain.OutcomeSuccess, "")

	record, err := v.keyringRepo.Get(ctx)
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionRotateCommit, auditDomain.OutcomeFailure, errorKind(err))
		return apperrors.Wrap(cryptoDomain.ErrRotationAborted, "no wrapped key record to rotate")
	}

	oldKek, err := v.deriver.Derive(oldPassphrase, record.Salt, record.KdfParams)
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionRotateCommit, auditDomain.OutcomeFailure, errorKind(err))
		return apperrors.Wrap(cryptoDomain.ErrRotationAborted, err.Error())
	}

	dek, err := v.keyManager.Unwrap(record, oldKek)
	cryptoDomain.Zero(oldKek)
	if err != nil {
		// Nothing has been mutated; the current passphrase stays valid.
		v.emitter.Record(ctx, auditDomain.ActionRotateCommit, auditDomain.OutcomeFailure, auditDomain.ErrorKindUnwrapFailed)
		return fmt.Errorf("%w: %w", cryptoDomain.ErrRotationAborted, err)
	}

	backend := v.backend
	if backend == nil {
		backend, err = v.selector.SelectBackend(v.algorithm)
		if err != nil {
			cryptoDomain.Zero(dek)
			v.emitter.Record(ctx, auditDomain.ActionRotateCommit, auditDomain.OutcomeFailure, auditDomain.ErrorKindBackendUnavailable)
			return apperrors.Wrap(cryptoDomain.ErrRotationAborted, err.Error())
		}
	}

	newSalt, err := v.keyManager.GenerateSalt()
	if err != nil {
		cryptoDomain.Zero(dek)
		v.emitter.Record(ctx, auditDomain.ActionRotateCommit, auditDomain.OutcomeFailure, auditDomain.ErrorKindInternal)
		return apperrors.Wrap(cryptoDomain.ErrRotationAborted, err.Error())
	}

	// Derivation cost never goes down across rotations.
	params := record.KdfParams.Strongest(v.kdfParams)

	newKek, err := v.deriver.Derive(newPassphrase, newSalt, params)
	if err != nil {
		cryptoDomain.Zero(dek)
		v.emitter.Record(ctx, auditDomain.ActionRotateCommit, auditDomain.OutcomeFailure, errorKind(err))
		return apperrors.Wrap(cryptoDomain.ErrRotationAborted, err.Error())
	}

	newRecord, err := v.keyManager.Wrap(dek, newKek, newSalt, v.algorithm, params)
	cryptoDomain.Zero(newKek)
	if err != nil {
		cryptoDomain.Zero(dek)
		v.emitter.Record(ctx, auditDomain.ActionRotateCommit, auditDomain.OutcomeFailure, errorKind(err))
		return apperrors.Wrap(cryptoDomain.ErrRotationAborted, err.Error())
	}

	// Single replacing Put: either the old record or the new one is
	// authoritative, never both.
	if err := v.keyringRepo.Save(ctx, &newRecord); err != nil {
		cryptoDomain.Zero(dek)
		v.emitter.Record(ctx, auditDomain.ActionRotateCommit, auditDomain.OutcomeFailure, auditDomain.ErrorKindStorage)
		return apperrors.Wrap(cryptoDomain.ErrRotationAborted, err.Error())
	}

	v.installKeyLocked(dek, backend)
	v.emitter.Record(ctx, auditDomain.ActionRotateCommit, auditDomain.OutcomeSuccess, "")
	v.logger.Info("passphrase rotated")
	return nil
}

// Reset deletes all persisted state and zeroes in-memory key material.
func (v *vaultUseCase) Reset(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.keyringRepo.Delete(ctx); err != nil {
		v.emitter.Record(ctx, auditDomain.ActionReset, auditDomain.OutcomeFailure, auditDomain.ErrorKindStorage)
		return err
	}

	ids, err := v.envelopeRepo.List(ctx)
	if err != nil {
		v.emitter.Record(ctx, auditDomain.ActionReset, auditDomain.OutcomeFailure, auditDomain.ErrorKindStorage)
		return err
	}
	for _, id := range ids {
		if err := v.envelopeRepo.Delete(ctx, id); err != nil {
			v.emitter.Record(ctx, auditDomain.ActionReset, auditDomain.OutcomeFailure, auditDomain.ErrorKindStorage)
			return err
		}
	}

	v.installKeyLocked(nil, nil)
	v.emitter.Record(ctx, auditDomain.ActionReset, auditDomain.OutcomeSuccess, "")
	v.logger.Info("vault reset")
	return nil
}

// Close zeroes in-memory key material and locks the vault.
func (v *vaultUseCase) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.installKeyLocked(nil, nil)
}

// recordLock returns the mutex for recordID, creating it on first use.
func (v *vaultUseCase) recordLock(recordID string) *sync.Mutex {
	lock, _ := v.recordLocks.LoadOrStore(recordID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// errorKind maps an error to the coarse category an audit event carries.
func errorKind(err error) string {
	switch {
	case apperrors.Is(err, cryptoDomain.ErrBackendUnavailable), apperrors.Is(err, apperrors.ErrUnavailable):
		return auditDomain.ErrorKindBackendUnavailable
	case apperrors.Is(err, cryptoDomain.ErrUnwrapFailed):
		return auditDomain.ErrorKindUnwrapFailed
	case apperrors.Is(err, cryptoDomain.ErrIntegrityCheckFailed):
		return auditDomain.ErrorKindIntegrity
	case apperrors.Is(err, cryptoDomain.ErrInvalidWrappedRecord),
		apperrors.Is(err, cryptoDomain.ErrInvalidSalt),
		apperrors.Is(err, cryptoDomain.ErrInvalidKdfParams):
		return auditDomain.ErrorKindInvalidRecord
	case apperrors.Is(err, cryptoDomain.ErrRotationAborted), apperrors.Is(err, cryptoDomain.ErrRotationInProgress):
		return auditDomain.ErrorKindRotation
	case apperrors.Is(err, cryptoDomain.ErrVaultLocked):
		return auditDomain.ErrorKindLocked
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return auditDomain.ErrorKindInvalidInput
	case apperrors.Is(err, apperrors.ErrNotFound):
		return auditDomain.ErrorKindStorage
	default:
		return auditDomain.ErrorKindInternal
	}
}

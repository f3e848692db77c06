package usecase_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	auditRepository "github.com/vitaldiary/entryvault/internal/audit/repository"
	auditUseCase "github.com/vitaldiary/entryvault/internal/audit/usecase"
	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
	cryptoService "github.com/vitaldiary/entryvault/internal/crypto/service"
	"github.com/vitaldiary/entryvault/internal/encoding"
	apperrors "github.com/vitaldiary/entryvault/internal/errors"
	"github.com/vitaldiary/entryvault/internal/storage"
	vaultRepository "github.com/vitaldiary/entryvault/internal/vault/repository"
	"github.com/vitaldiary/entryvault/internal/vault/usecase"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testKdfParams keeps derivation cheap; production costs are exercised by
// the deriver's own tests.
func testKdfParams() cryptoDomain.KdfParams {
	return cryptoDomain.KdfParams{Time: 1, MemoryKiB: 8 * 1024, Threads: 1}
}

func newTestVault(t *testing.T, adapter storage.Adapter) usecase.Vault {
	t.Helper()
	return newTestVaultWithDeriver(t, adapter, cryptoService.NewArgon2Deriver())
}

func newTestVaultWithDeriver(
	t *testing.T,
	adapter storage.Adapter,
	deriver cryptoService.KeyDeriver,
) usecase.Vault {
	t.Helper()

	codec := encoding.NewStdCodec()
	selector := cryptoService.NewCapabilityProbe(false, false)
	emitter := auditUseCase.NewEmitter(
		auditRepository.NewStorageEventRepository(adapter), slog.Default(), true,
	)

	return usecase.NewVault(
		vaultRepository.NewStorageKeyringRepository(adapter, codec),
		vaultRepository.NewStorageEnvelopeRepository(adapter, codec),
		cryptoService.NewKeyManager(selector),
		deriver,
		selector,
		emitter,
		slog.Default(),
		cryptoDomain.AESGCM,
		testKdfParams(),
	)
}

func TestVault_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("empty passphrase is rejected", func(t *testing.T) {
		vault := newTestVault(t, storage.NewMemoryAdapter())
		defer vault.Close()

		err := vault.Initialize(ctx, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("operations before initialize fail locked", func(t *testing.T) {
		vault := newTestVault(t, storage.NewMemoryAdapter())
		defer vault.Close()

		_, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"pain": 7})
		assert.ErrorIs(t, err, cryptoDomain.ErrVaultLocked)

		_, err = vault.GetEntry(ctx, "entry-1")
		assert.ErrorIs(t, err, cryptoDomain.ErrVaultLocked)
	})

	t.Run("first run persists a wrapped key record", func(t *testing.T) {
		adapter := storage.NewMemoryAdapter()
		vault := newTestVault(t, adapter)
		defer vault.Close()

		require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))

		record, err := vaultRepository.NewStorageKeyringRepository(adapter, encoding.NewStdCodec()).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.AESGCM, record.Algorithm)
		assert.Len(t, record.Salt, cryptoDomain.SaltSize)
		assert.Equal(t, testKdfParams(), record.KdfParams)
	})

	t.Run("restart with correct passphrase unlocks", func(t *testing.T) {
		adapter := storage.NewMemoryAdapter()
		vault := newTestVault(t, adapter)
		require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))
		envelope, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"pain": float64(7), "notes": "back"})
		require.NoError(t, err)
		vault.Close()

		restarted := newTestVault(t, adapter)
		defer restarted.Close()
		require.NoError(t, restarted.Initialize(ctx, []byte("correct-horse")))

		entry, err := restarted.DecryptEntry(ctx, envelope)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"pain": float64(7), "notes": "back"}, entry)
	})

	t.Run("wrong passphrase yields unwrap failed", func(t *testing.T) {
		adapter := storage.NewMemoryAdapter()
		vault := newTestVault(t, adapter)
		require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))
		vault.Close()

		restarted := newTestVault(t, adapter)
		defer restarted.Close()

		err := restarted.Initialize(ctx, []byte("wrong-horse"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnwrapFailed)
	})
}

func TestVault_EncryptDecrypt(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		vault := newTestVault(t, storage.NewMemoryAdapter())
		defer vault.Close()
		require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))

		entry := map[string]any{"pain": float64(7), "notes": "back"}
		envelope, err := vault.EncryptEntry(ctx, "entry-2026-08-30", entry)
		require.NoError(t, err)

		assert.Equal(t, "entry-2026-08-30", envelope.RecordID)
		assert.NotContains(t, string(envelope.Ciphertext), "back")

		got, err := vault.DecryptEntry(ctx, envelope)
		require.NoError(t, err)
		assert.Equal(t, entry, got)
	})

	t.Run("envelope is persisted and readable via get", func(t *testing.T) {
		vault := newTestVault(t, storage.NewMemoryAdapter())
		defer vault.Close()
		require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))

		_, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"notes": "stored"})
		require.NoError(t, err)

		entry, err := vault.GetEntry(ctx, "entry-1")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"notes": "stored"}, entry)
	})

	t.Run("single-bit tamper fails integrity check", func(t *testing.T) {
		vault := newTestVault(t, storage.NewMemoryAdapter())
		defer vault.Close()
		require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))

		fields := map[string]func(e *cryptoDomain.EncryptedEnvelope) []byte{
			"ciphertext": func(e *cryptoDomain.EncryptedEnvelope) []byte { return e.Ciphertext },
			"nonce":      func(e *cryptoDomain.EncryptedEnvelope) []byte { return e.Nonce },
			"auth tag":   func(e *cryptoDomain.EncryptedEnvelope) []byte { return e.AuthTag },
		}
		for name, field := range fields {
			t.Run(name, func(t *testing.T) {
				envelope, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"notes": "original"})
				require.NoError(t, err)

				field(envelope)[0] ^= 0x01
				_, err = vault.DecryptEntry(ctx, envelope)
				assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityCheckFailed)
			})
		}
	})

	t.Run("envelope bound to its record id", func(t *testing.T) {
		vault := newTestVault(t, storage.NewMemoryAdapter())
		defer vault.Close()
		require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))

		envelope, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"notes": "mine"})
		require.NoError(t, err)

		envelope.RecordID = "entry-2"
		_, err = vault.DecryptEntry(ctx, envelope)
		assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityCheckFailed)
	})

	t.Run("fresh nonce per encryption", func(t *testing.T) {
		vault := newTestVault(t, storage.NewMemoryAdapter())
		defer vault.Close()
		require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))

		entry := map[string]any{"notes": "same content"}
		first, err := vault.EncryptEntry(ctx, "entry-1", entry)
		require.NoError(t, err)
		second, err := vault.EncryptEntry(ctx, "entry-1", entry)
		require.NoError(t, err)

		assert.NotEqual(t, first.Nonce, second.Nonce)
		assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
	})

	t.Run("concurrent encrypts on distinct records", func(t *testing.T) {
		vault := newTestVault(t, storage.NewMemoryAdapter())
		defer vault.Close()
		require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))

		var g errgroup.Group
		for i := 0; i < 8; i++ {
			id := string(rune('a' + i))
			g.Go(func() error {
				if _, err := vault.EncryptEntry(ctx, id, map[string]any{"id": id}); err != nil {
					return err
				}
				_, err := vault.GetEntry(ctx, id)
				return err
			})
		}
		require.NoError(t, g.Wait())
	})
}

func TestVault_DeleteEntry(t *testing.T) {
	ctx := context.Background()

	vault := newTestVault(t, storage.NewMemoryAdapter())
	defer vault.Close()
	require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))

	_, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"notes": "gone soon"})
	require.NoError(t, err)

	require.NoError(t, vault.DeleteEntry(ctx, "entry-1"))

	_, err = vault.GetEntry(ctx, "entry-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, vault.DeleteEntry(ctx, "entry-1"))
}

func TestVault_RotatePassphrase(t *testing.T) {
	ctx := context.Background()

	t.Run("rotation leaves envelopes untouched and changes the salt", func(t *testing.T) {
		adapter := storage.NewMemoryAdapter()
		vault := newTestVault(t, adapter)
		defer vault.Close()
		require.NoError(t, vault.Initialize(ctx, []byte("passphrase-a")))

		_, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"pain": float64(7), "notes": "back"})
		require.NoError(t, err)

		storedBefore, err := adapter.Get(ctx, storage.NamespaceEntries, "entry-1")
		require.NoError(t, err)
		keyringRepo := vaultRepository.NewStorageKeyringRepository(adapter, encoding.NewStdCodec())
		recordBefore, err := keyringRepo.Get(ctx)
		require.NoError(t, err)

		require.NoError(t, vault.RotatePassphrase(ctx, []byte("passphrase-a"), []byte("passphrase-b")))

		storedAfter, err := adapter.Get(ctx, storage.NamespaceEntries, "entry-1")
		require.NoError(t, err)
		assert.Equal(t, storedBefore, storedAfter)

		recordAfter, err := keyringRepo.Get(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, recordBefore.Salt, recordAfter.Salt)
		assert.NotEqual(t, recordBefore.WrappedDek, recordAfter.WrappedDek)
	})

	t.Run("after rotation only the new passphrase unlocks", func(t *testing.T) {
		adapter := storage.NewMemoryAdapter()
		vault := newTestVault(t, adapter)
		require.NoError(t, vault.Initialize(ctx, []byte("passphrase-a")))
		envelope, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"notes": "survives rotation"})
		require.NoError(t, err)
		require.NoError(t, vault.RotatePassphrase(ctx, []byte("passphrase-a"), []byte("passphrase-b")))
		vault.Close()

		old := newTestVault(t, adapter)
		defer old.Close()
		assert.ErrorIs(t, old.Initialize(ctx, []byte("passphrase-a")), cryptoDomain.ErrUnwrapFailed)

		fresh := newTestVault(t, adapter)
		defer fresh.Close()
		require.NoError(t, fresh.Initialize(ctx, []byte("passphrase-b")))

		entry, err := fresh.DecryptEntry(ctx, envelope)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"notes": "survives rotation"}, entry)
	})

	t.Run("wrong current passphrase aborts before mutation", func(t *testing.T) {
		adapter := storage.NewMemoryAdapter()
		vault := newTestVault(t, adapter)
		defer vault.Close()
		require.NoError(t, vault.Initialize(ctx, []byte("passphrase-a")))

		err := vault.RotatePassphrase(ctx, []byte("wrong"), []byte("passphrase-b"))
		assert.ErrorIs(t, err, cryptoDomain.ErrRotationAborted)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnwrapFailed)

		vault.Close()
		fresh := newTestVault(t, adapter)
		defer fresh.Close()
		assert.NoError(t, fresh.Initialize(ctx, []byte("passphrase-a")))
	})

	t.Run("rotation without a key record aborts", func(t *testing.T) {
		vault := newTestVault(t, storage.NewMemoryAdapter())
		defer vault.Close()

		err := vault.RotatePassphrase(ctx, []byte("a"), []byte("b"))
		assert.ErrorIs(t, err, cryptoDomain.ErrRotationAborted)
	})

	t.Run("concurrent rotation is rejected", func(t *testing.T) {
		adapter := storage.NewMemoryAdapter()
		setup := newTestVault(t, adapter)
		require.NoError(t, setup.Initialize(ctx, []byte("passphrase-a")))
		setup.Close()

		deriver := &gatedDeriver{
			inner:   cryptoService.NewArgon2Deriver(),
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		vault := newTestVaultWithDeriver(t, adapter, deriver)
		defer vault.Close()

		done := make(chan error, 1)
		go func() {
			done <- vault.RotatePassphrase(ctx, []byte("passphrase-a"), []byte("passphrase-b"))
		}()
		<-deriver.entered

		err := vault.RotatePassphrase(ctx, []byte("passphrase-a"), []byte("passphrase-c"))
		assert.ErrorIs(t, err, cryptoDomain.ErrRotationInProgress)

		close(deriver.release)
		require.NoError(t, <-done)
	})
}

// gatedDeriver blocks the first derivation until released, keeping a
// rotation in flight long enough to observe.
type gatedDeriver struct {
	inner   cryptoService.KeyDeriver
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (d *gatedDeriver) Derive(passphrase, salt []byte, params cryptoDomain.KdfParams) ([]byte, error) {
	d.once.Do(func() {
		close(d.entered)
		<-d.release
	})
	return d.inner.Derive(passphrase, salt, params)
}

func TestVault_Reset(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemoryAdapter()
	vault := newTestVault(t, adapter)
	defer vault.Close()
	require.NoError(t, vault.Initialize(ctx, []byte("correct-horse")))

	_, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"notes": "wiped"})
	require.NoError(t, err)

	require.NoError(t, vault.Reset(ctx))

	_, err = adapter.Get(ctx, storage.NamespaceKeyring, "active")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	ids, err := adapter.List(ctx, storage.NamespaceEntries)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = vault.EncryptEntry(ctx, "entry-2", map[string]any{"notes": "locked out"})
	assert.ErrorIs(t, err, cryptoDomain.ErrVaultLocked)

	// A reset installation starts over as a first run.
	require.NoError(t, vault.Initialize(ctx, []byte("brand-new")))
}

func TestVault_AuditTrailIsContentFree(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemoryAdapter()
	vault := newTestVault(t, adapter)
	defer vault.Close()

	passphrase := []byte("hunter2-super-secret")
	require.NoError(t, vault.Initialize(ctx, passphrase))
	envelope, err := vault.EncryptEntry(ctx, "entry-1", map[string]any{"notes": "sharp back pain"})
	require.NoError(t, err)
	_, err = vault.DecryptEntry(ctx, envelope)
	require.NoError(t, err)
	require.NoError(t, vault.RotatePassphrase(ctx, passphrase, []byte("another-secret")))

	ids, err := adapter.List(ctx, storage.NamespaceAudit)
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	for _, id := range ids {
		raw, err := adapter.Get(ctx, storage.NamespaceAudit, id)
		require.NoError(t, err)
		assert.False(t, bytes.Contains(raw, []byte("hunter2")))
		assert.False(t, bytes.Contains(raw, []byte("another-secret")))
		assert.False(t, bytes.Contains(raw, []byte("back pain")))
		assert.False(t, bytes.Contains(raw, []byte("entry-1")))
	}
}

package commands

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	auditRepository "github.com/vitaldiary/entryvault/internal/audit/repository"
	auditUseCase "github.com/vitaldiary/entryvault/internal/audit/usecase"
	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
	cryptoService "github.com/vitaldiary/entryvault/internal/crypto/service"
	"github.com/vitaldiary/entryvault/internal/encoding"
	"github.com/vitaldiary/entryvault/internal/storage"
	vaultRepository "github.com/vitaldiary/entryvault/internal/vault/repository"
	vaultUseCase "github.com/vitaldiary/entryvault/internal/vault/usecase"
)

// testEnv wires a vault over an in-memory adapter for command tests.
type testEnv struct {
	adapter   storage.Adapter
	vault     vaultUseCase.Vault
	keyring   vaultRepository.KeyringRepository
	envelopes vaultRepository.EnvelopeRepository
	audit     auditRepository.EventRepository
	selector  cryptoService.BackendSelector
	logger    *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	adapter := storage.NewMemoryAdapter()
	codec := encoding.NewStdCodec()
	selector := cryptoService.NewCapabilityProbe(false, false)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	keyring := vaultRepository.NewStorageKeyringRepository(adapter, codec)
	envelopes := vaultRepository.NewStorageEnvelopeRepository(adapter, codec)
	audit := auditRepository.NewStorageEventRepository(adapter)

	vault := vaultUseCase.NewVault(
		keyring,
		envelopes,
		cryptoService.NewKeyManager(selector),
		cryptoService.NewArgon2Deriver(),
		selector,
		auditUseCase.NewEmitter(audit, logger, true),
		logger,
		cryptoDomain.AESGCM,
		cryptoDomain.KdfParams{Time: 1, MemoryKiB: 8 * 1024, Threads: 1},
	)
	t.Cleanup(vault.Close)

	return &testEnv{
		adapter:   adapter,
		vault:     vault,
		keyring:   keyring,
		envelopes: envelopes,
		audit:     audit,
		selector:  selector,
		logger:    logger,
	}
}

// testIO returns an IOTuple fed by input with a capturing output buffer.
func testIO(input string) (IOTuple, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return IOTuple{Reader: bytes.NewBufferString(input), Writer: out}, out
}

package commands

import (
	"context"
	"fmt"

	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
	cryptoService "github.com/vitaldiary/entryvault/internal/crypto/service"
	apperrors "github.com/vitaldiary/entryvault/internal/errors"
	vaultRepository "github.com/vitaldiary/entryvault/internal/vault/repository"
)

// RunStatus prints the installation state: whether key material exists,
// which algorithm and derivation parameters protect it, whether the
// configured cipher backend is usable, and how many entries are stored.
// No passphrase is required; nothing here needs the unwrapped key.
func RunStatus(
	ctx context.Context,
	keyringRepo vaultRepository.KeyringRepository,
	envelopeRepo vaultRepository.EnvelopeRepository,
	selector cryptoService.BackendSelector,
	algorithm cryptoDomain.Algorithm,
	io IOTuple,
) error {
	if _, err := selector.SelectBackend(algorithm); err != nil {
		fmt.Fprintf(io.Writer, "Backend:    %s (unavailable)\n", algorithm)
	} else {
		fmt.Fprintf(io.Writer, "Backend:    %s\n", algorithm)
	}

	record, err := keyringRepo.Get(ctx)
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		fmt.Fprintln(io.Writer, "Vault:      not initialized")
	case err != nil:
		return fmt.Errorf("failed to read key record: %w", err)
	default:
		fmt.Fprintln(io.Writer, "Vault:      initialized")
		fmt.Fprintf(io.Writer, "Wrapped:    %s, created %s\n",
			record.Algorithm, record.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(io.Writer, "KDF:        argon2id time=%d memory=%dKiB threads=%d\n",
			record.KdfParams.Time, record.KdfParams.MemoryKiB, record.KdfParams.Threads)
	}

	ids, err := envelopeRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	fmt.Fprintf(io.Writer, "Entries:    %d\n", len(ids))
	return nil
}

package commands

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/vitaldiary/entryvault/internal/errors"
	vaultRepository "github.com/vitaldiary/entryvault/internal/vault/repository"
	vaultUseCase "github.com/vitaldiary/entryvault/internal/vault/usecase"
)

// RunInit unlocks the vault, creating its key material on a first run.
// The strength policy applies only when a new installation is being
// created; unlocking an existing one accepts whatever passphrase wraps
// the key.
func RunInit(
	ctx context.Context,
	vault vaultUseCase.Vault,
	keyringRepo vaultRepository.KeyringRepository,
	logger *slog.Logger,
	io IOTuple,
	passphrase string,
) error {
	passphrase, err := resolvePassphrase(io, "Passphrase", passphrase)
	if err != nil {
		return err
	}

	_, err = keyringRepo.Get(ctx)
	firstRun := apperrors.Is(err, apperrors.ErrNotFound)
	if firstRun {
		if err := validateNewPassphrase(passphrase); err != nil {
			return err
		}
	}

	if err := vault.Initialize(ctx, []byte(passphrase)); err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	if firstRun {
		logger.Info("vault created")
		fmt.Fprintln(io.Writer, "Vault created and unlocked.")
	} else {
		fmt.Fprintln(io.Writer, "Vault unlocked.")
	}
	return nil
}

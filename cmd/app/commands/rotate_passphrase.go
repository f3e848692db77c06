package commands

import (
	"context"
	"fmt"
	"log/slog"

	vaultUseCase "github.com/vitaldiary/entryvault/internal/vault/usecase"
)

// RunRotatePassphrase re-wraps the vault key under a new passphrase.
// Encrypted entries are untouched; only the wrapped key record changes.
func RunRotatePassphrase(
	ctx context.Context,
	vault vaultUseCase.Vault,
	logger *slog.Logger,
	io IOTuple,
	oldPassphrase, newPassphrase string,
) error {
	oldPassphrase, err := resolvePassphrase(io, "Current passphrase", oldPassphrase)
	if err != nil {
		return err
	}
	newPassphrase, err = resolvePassphrase(io, "New passphrase", newPassphrase)
	if err != nil {
		return err
	}

	if err := validateNewPassphrase(newPassphrase); err != nil {
		return err
	}

	if err := vault.RotatePassphrase(ctx, []byte(oldPassphrase), []byte(newPassphrase)); err != nil {
		return fmt.Errorf("failed to rotate passphrase: %w", err)
	}

	logger.Info("passphrase rotated")
	fmt.Fprintln(io.Writer, "Passphrase rotated.")
	return nil
}

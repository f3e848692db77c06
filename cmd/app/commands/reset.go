package commands

import (
	"context"
	"fmt"
	"log/slog"

	vaultUseCase "github.com/vitaldiary/entryvault/internal/vault/usecase"
)

// RunReset deletes the wrapped key record and every encrypted entry,
// making all stored data unrecoverable. Without the confirmed flag the
// user must type "reset" to proceed.
func RunReset(
	ctx context.Context,
	vault vaultUseCase.Vault,
	logger *slog.Logger,
	io IOTuple,
	confirmed bool,
) error {
	if !confirmed {
		fmt.Fprint(io.Writer, "This permanently destroys all encrypted data. Type 'reset' to confirm: ")
		answer, err := readLine(io.Reader)
		if err != nil {
			return err
		}
		if answer != "reset" {
			fmt.Fprintln(io.Writer, "Aborted.")
			return nil
		}
	}

	if err := vault.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset vault: %w", err)
	}

	logger.Info("vault reset")
	fmt.Fprintln(io.Writer, "Vault reset. All encrypted data is gone.")
	return nil
}

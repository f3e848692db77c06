package commands

import (
	"context"
	"fmt"
	"log/slog"

	vaultUseCase "github.com/vitaldiary/entryvault/internal/vault/usecase"
)

// RunDeleteEntry removes the stored envelope for recordID. Deleting an
// absent entry is not an error.
func RunDeleteEntry(
	ctx context.Context,
	vault vaultUseCase.Vault,
	logger *slog.Logger,
	io IOTuple,
	recordID string,
) error {
	if err := vault.DeleteEntry(ctx, recordID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	logger.Info("entry deleted")
	fmt.Fprintf(io.Writer, "Entry %s deleted.\n", recordID)
	return nil
}
